package geometry

import (
	"math"
	"strings"

	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

type PathType string
type Pole int

const (
	GreatCircle PathType = "GREAT_CIRCLE"
	RhumbLine   PathType = "RHUMB_LINE"
	Linear      PathType = "LINEAR"
)

const (
	PoleNone Pole = iota
	PoleNorth
	PoleSouth
)

// below this value two angles in radians are considered the same
const nearZeroThreshold = 1e-15

func (p PathType) String() string {
	return string(p)
}

func ParsePathType(value string) PathType {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	normalizedValue = strings.ReplaceAll(normalizedValue, "-", "_")
	switch normalizedValue {
	case "GREAT_CIRCLE", "GREATCIRCLE":
		return GreatCircle
	case "RHUMB_LINE", "RHUMBLINE", "RHUMB":
		return RhumbLine
	case "LINEAR":
		return Linear
	}
	return ""
}

func (p Pole) String() string {
	switch p {
	case PoleNorth:
		return "NORTH"
	case PoleSouth:
		return "SOUTH"
	}
	return "NONE"
}

// Latitude of the pole, 90 for the north pole and -90 for the south pole
func (p Pole) Latitude() float64 {
	if p == PoleSouth {
		return -90
	}
	return 90
}

// A geographic position expressed in degrees. Longitude is not normalized, so values outside [-180, 180]
// can be used to represent geometry unrolled around the date line.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func NewLocation(latitude, longitude float64) Location {
	return Location{Latitude: latitude, Longitude: longitude}
}

func FromLatLng(ll s2.LatLng) Location {
	return Location{Latitude: ll.Lat.Degrees(), Longitude: ll.Lng.Degrees()}
}

func (l Location) LatLng() s2.LatLng {
	return s2.LatLngFromDegrees(l.Latitude, l.Longitude)
}

func (l Location) Equals(other Location) bool {
	return l.Latitude == other.Latitude && l.Longitude == other.Longitude
}

func NormalizedLatitude(degrees float64) float64 {
	lat := math.Mod(degrees, 180)
	if lat > 90 {
		return 180 - lat
	} else if lat < -90 {
		return -180 - lat
	}
	return lat
}

func NormalizedLongitude(degrees float64) float64 {
	lon := math.Mod(degrees, 360)
	if lon > 180 {
		return lon - 360
	} else if lon < -180 {
		return lon + 360
	}
	return lon
}

func signum(value float64) float64 {
	if value > 0 {
		return 1
	} else if value < 0 {
		return -1
	}
	return 0
}

func clamp(value, min, max float64) float64 {
	return math.Max(min, math.Min(max, value))
}

// Computes the location at the given fraction of the path between a and b, following the given path type
func Interpolate(pathType PathType, amount float64, a, b Location) Location {
	switch pathType {
	case GreatCircle:
		return interpolateGreatCircle(amount, a, b)
	case RhumbLine:
		return interpolateRhumb(amount, a, b)
	}
	return interpolateLinear(amount, a, b)
}

func interpolateGreatCircle(amount float64, a, b Location) Location {
	if a.Equals(b) {
		return a
	}

	t := clamp(amount, 0, 1)
	p := s2.Interpolate(t, s2.PointFromLatLng(a.LatLng()), s2.PointFromLatLng(b.LatLng()))
	return FromLatLng(s2.LatLngFromPoint(p))
}

func interpolateRhumb(amount float64, a, b Location) Location {
	if a.Equals(b) {
		return a
	}

	azimuth := RhumbAzimuth(a, b)
	distance := RhumbDistance(a, b)
	return RhumbLocation(a, azimuth, clamp(amount, 0, 1)*distance)
}

// Linear interpolation in latitude and longitude. The short way across the date line is taken when the two
// longitudes are more than 180 degrees apart.
func interpolateLinear(amount float64, a, b Location) Location {
	t := clamp(amount, 0, 1)

	lon2 := b.Longitude
	wrapped := false
	if math.Abs(lon2-a.Longitude) > 180 {
		wrapped = true
		if lon2 > a.Longitude {
			lon2 -= 360
		} else {
			lon2 += 360
		}
	}

	lat := a.Latitude + t*(b.Latitude-a.Latitude)
	lon := a.Longitude + t*(lon2-a.Longitude)
	if wrapped {
		lon = NormalizedLongitude(lon)
	}

	return Location{Latitude: lat, Longitude: lon}
}

// Angular distance in radians along the great circle joining the two locations
func GreatCircleDistance(a, b Location) float64 {
	return a.LatLng().Distance(b.LatLng()).Radians()
}

// Initial azimuth in degrees, clockwise from north, of the great circle path from a to b
func GreatCircleAzimuth(a, b Location) float64 {
	lat1 := a.Latitude * s1.Degree.Radians()
	lat2 := b.Latitude * s1.Degree.Radians()
	lon1 := a.Longitude * s1.Degree.Radians()
	lon2 := b.Longitude * s1.Degree.Radians()

	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	if lon1 == lon2 {
		if lat1 > lat2 {
			return 180
		}
		return 0
	}

	y := math.Cos(lat2) * math.Sin(lon2-lon1)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(lon2-lon1)
	azimuth := math.Atan2(y, x)
	if math.IsNaN(azimuth) {
		return 0
	}

	return (s1.Angle(azimuth) * s1.Radian).Degrees()
}

// Location reached travelling along a great circle from origin with the given initial azimuth (degrees) for the
// given angular distance (radians)
func GreatCircleLocation(origin Location, azimuth float64, distance float64) Location {
	if distance == 0 {
		return origin
	}

	lat := origin.Latitude * s1.Degree.Radians()
	lon := origin.Longitude * s1.Degree.Radians()
	az := azimuth * s1.Degree.Radians()

	endLat := math.Asin(math.Sin(lat)*math.Cos(distance) + math.Cos(lat)*math.Sin(distance)*math.Cos(az))
	endLon := lon + math.Atan2(
		math.Sin(distance)*math.Sin(az),
		math.Cos(lat)*math.Cos(distance)-math.Sin(lat)*math.Sin(distance)*math.Cos(az),
	)

	if math.IsNaN(endLat) || math.IsNaN(endLon) {
		return origin
	}

	return Location{
		Latitude:  NormalizedLatitude((s1.Angle(endLat) * s1.Radian).Degrees()),
		Longitude: NormalizedLongitude((s1.Angle(endLon) * s1.Radian).Degrees()),
	}
}

// isometric latitude of a latitude in radians, clamped short of the poles
func isometricLatitude(lat float64) float64 {
	lat = clamp(lat, -math.Pi/2+1e-12, math.Pi/2-1e-12)
	return math.Log(math.Tan(lat/2 + math.Pi/4))
}

func shortestLongitudeDelta(dLon float64) float64 {
	if math.Abs(dLon) > math.Pi {
		if dLon > 0 {
			return -(2*math.Pi - dLon)
		}
		return 2*math.Pi + dLon
	}
	return dLon
}

// Azimuth in degrees of the rhumb line (line of constant heading) from a to b
func RhumbAzimuth(a, b Location) float64 {
	lat1 := a.Latitude * s1.Degree.Radians()
	lat2 := b.Latitude * s1.Degree.Radians()
	lon1 := a.Longitude * s1.Degree.Radians()
	lon2 := b.Longitude * s1.Degree.Radians()

	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	dLon := shortestLongitudeDelta(lon2 - lon1)
	dPhi := isometricLatitude(lat2) - isometricLatitude(lat1)

	azimuth := math.Atan2(dLon, dPhi)
	if math.IsNaN(azimuth) {
		return 0
	}

	return (s1.Angle(azimuth) * s1.Radian).Degrees()
}

// Angular length in radians of the rhumb line from a to b
func RhumbDistance(a, b Location) float64 {
	lat1 := a.Latitude * s1.Degree.Radians()
	lat2 := b.Latitude * s1.Degree.Radians()
	lon1 := a.Longitude * s1.Degree.Radians()
	lon2 := b.Longitude * s1.Degree.Radians()

	if lat1 == lat2 && lon1 == lon2 {
		return 0
	}

	dLat := lat2 - lat1
	dLon := shortestLongitudeDelta(lon2 - lon1)

	var q float64
	if math.Abs(dLat) < nearZeroThreshold {
		q = math.Cos(lat1)
	} else {
		q = dLat / (isometricLatitude(lat2) - isometricLatitude(lat1))
	}

	distance := math.Sqrt(dLat*dLat + q*q*dLon*dLon)
	if math.IsNaN(distance) {
		return 0
	}
	return distance
}

// Location reached travelling along a rhumb line from origin with the given azimuth (degrees) for the given
// angular distance (radians)
func RhumbLocation(origin Location, azimuth float64, distance float64) Location {
	if distance == 0 {
		return origin
	}

	lat := origin.Latitude * s1.Degree.Radians()
	lon := origin.Longitude * s1.Degree.Radians()
	az := azimuth * s1.Degree.Radians()

	endLat := lat + distance*math.Cos(az)
	dPhi := isometricLatitude(endLat) - isometricLatitude(lat)
	q := (endLat - lat) / dPhi
	if math.Abs(endLat-lat) < 1e-12 || math.IsNaN(q) || math.IsInf(q, 0) || q == 0 {
		q = math.Cos(lat)
	}

	// latitude passing over either pole
	if math.Abs(endLat) > math.Pi/2 {
		if endLat > 0 {
			endLat = math.Pi - endLat
		} else {
			endLat = -math.Pi - endLat
		}
	}

	dLon := distance * math.Sin(az) / q
	endLon := math.Mod(lon+dLon+math.Pi, 2*math.Pi) - math.Pi

	return Location{
		Latitude:  NormalizedLatitude((s1.Angle(endLat) * s1.Radian).Degrees()),
		Longitude: NormalizedLongitude((s1.Angle(endLon) * s1.Radian).Degrees()),
	}
}
