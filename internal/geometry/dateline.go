package geometry

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/golang/geo/s1"
	"github.com/golang/geo/s2"
)

// tolerance in radians used to decide whether a point lies on a great circle arc
const arcTolerance = 1e-9

// Returns true if any pair of consecutive locations crosses the date line, that is the longitudes have different
// signs and are more than 180 degrees apart
func LocationsCrossDateLine(locations []Location) bool {
	for i := 1; i < len(locations); i++ {
		if segmentCrossesDateLine(locations[i-1], locations[i]) {
			return true
		}
	}
	return false
}

func segmentCrossesDateLine(a, b Location) bool {
	if signum(a.Longitude) == signum(b.Longitude) {
		return false
	}
	delta := math.Abs(a.Longitude - b.Longitude)
	return delta > 180 && delta < 360
}

// Computes the latitude at which the segment from p0 to p1, interpolated with the given path type, crosses the
// given meridian. The second return value is false if the segment does not cross the meridian.
func IntersectionWithMeridian(p0, p1 Location, meridian float64, pathType PathType) (float64, bool) {
	if pathType == GreatCircle {
		return greatCircleIntersectionWithMeridian(p0, p1, meridian)
	}

	// unroll the segment so that it follows the short way around the globe
	lon0 := p0.Longitude
	lon1 := p1.Longitude
	if math.Abs(lon1-lon0) > 180 {
		if lon1 > lon0 {
			lon1 -= 360
		} else {
			lon1 += 360
		}
	}

	minLon := math.Min(lon0, lon1)
	maxLon := math.Max(lon0, lon1)
	m := meridian
	for m > maxLon && m-360 >= minLon {
		m -= 360
	}
	for m < minLon && m+360 <= maxLon {
		m += 360
	}
	if m < minLon || m > maxLon {
		return 0, false
	}

	if lon1 == lon0 {
		return p0.Latitude, true
	}

	t := (m - lon0) / (lon1 - lon0)
	if pathType == RhumbLine {
		psi0 := isometricLatitude(p0.Latitude * s1.Degree.Radians())
		psi1 := isometricLatitude(p1.Latitude * s1.Degree.Radians())
		psi := psi0 + t*(psi1-psi0)
		lat := 2*math.Atan(math.Exp(psi)) - math.Pi/2
		return (s1.Angle(lat) * s1.Radian).Degrees(), true
	}

	return p0.Latitude + t*(p1.Latitude-p0.Latitude), true
}

// Intersects the plane of the great circle through p0 and p1 with the half plane of the meridian
func greatCircleIntersectionWithMeridian(p0, p1 Location, meridian float64) (float64, bool) {
	a := s2.PointFromLatLng(p0.LatLng())
	b := s2.PointFromLatLng(p1.LatLng())

	m := meridian * s1.Degree.Radians()
	meridianDirection := r3.Vector{X: math.Cos(m), Y: math.Sin(m), Z: 0}
	meridianNormal := r3.Vector{X: -math.Sin(m), Y: math.Cos(m), Z: 0}

	arcNormal := a.PointCross(b).Vector
	direction := arcNormal.Cross(meridianNormal)
	if direction.Norm() < nearZeroThreshold {
		// the arc lies in the meridian plane
		return p0.Latitude, true
	}
	direction = direction.Normalize()
	if direction.Dot(meridianDirection) < 0 {
		direction = direction.Mul(-1)
	}

	crossing := s2.Point{Vector: direction}
	arc := float64(a.Angle(b.Vector))
	if math.Abs(float64(a.Angle(crossing.Vector))+float64(crossing.Angle(b.Vector))-arc) > arcTolerance {
		return 0, false
	}

	return s2.LatLngFromPoint(crossing).Lat.Degrees(), true
}

// Finds the locations of minimum and maximum latitude reachable along the great circle arcs joining consecutive
// locations. An arc between two locations at the same latitude bulges towards the nearest pole, so the extremes
// may lie between the vertices.
func GreatCircleArcExtremeLocations(locations []Location) (Location, Location) {
	var minLocation, maxLocation Location
	found := false

	for i := 1; i < len(locations); i++ {
		arcMin, arcMax := greatCircleArcExtremeForTwoLocations(locations[i-1], locations[i])
		if !found || arcMin.Latitude < minLocation.Latitude {
			minLocation = arcMin
		}
		if !found || arcMax.Latitude > maxLocation.Latitude {
			maxLocation = arcMax
		}
		found = true
	}

	if !found && len(locations) == 1 {
		return locations[0], locations[0]
	}

	return minLocation, maxLocation
}

func greatCircleArcExtremeForTwoLocations(begin, end Location) (Location, Location) {
	minLocation, maxLocation := begin, begin
	if end.Latitude < minLocation.Latitude {
		minLocation = end
	}
	if end.Latitude > maxLocation.Latitude {
		maxLocation = end
	}

	if begin.Equals(end) {
		return minLocation, maxLocation
	}

	arcDistance := GreatCircleDistance(begin, end)
	for _, extreme := range greatCircleExtremeLocations(begin, GreatCircleAzimuth(begin, end)) {
		// the extreme belongs to the arc only if it lies between begin and end
		d := GreatCircleDistance(begin, extreme) + GreatCircleDistance(extreme, end)
		if math.Abs(d-arcDistance) > arcTolerance {
			continue
		}
		if extreme.Latitude < minLocation.Latitude {
			minLocation = extreme
		}
		if extreme.Latitude > maxLocation.Latitude {
			maxLocation = extreme
		}
	}

	return minLocation, maxLocation
}

// The two locations of extreme latitude on the full great circle through location with the given azimuth. They are
// 90 degrees away from the equator crossings (Snyder, Map Projections - A Working Manual, eq. 5-5).
func greatCircleExtremeLocations(location Location, azimuth float64) [2]Location {
	lat0 := location.Latitude * s1.Degree.Radians()
	az := azimuth * s1.Degree.Radians()

	distance := math.Atan(-math.Tan(lat0) / math.Cos(az))

	return [2]Location{
		GreatCircleLocation(location, azimuth, distance+math.Pi/2),
		GreatCircleLocation(location, azimuth, distance-math.Pi/2),
	}
}
