package geometry

import (
	"fmt"
	"math"

	"github.com/golang/geo/r1"
)

// A geographic rectangle bounded by two latitudes and two longitudes, in degrees
type Sector struct {
	MinLatitude  float64 `json:"minLatitude"`
	MaxLatitude  float64 `json:"maxLatitude"`
	MinLongitude float64 `json:"minLongitude"`
	MaxLongitude float64 `json:"maxLongitude"`
}

// The sector covering the whole globe
var FullSphere = Sector{MinLatitude: -90, MaxLatitude: 90, MinLongitude: -180, MaxLongitude: 180}

func NewSector(minLatitude, maxLatitude, minLongitude, maxLongitude float64) Sector {
	return Sector{
		MinLatitude:  minLatitude,
		MaxLatitude:  maxLatitude,
		MinLongitude: minLongitude,
		MaxLongitude: maxLongitude,
	}
}

func (s Sector) String() string {
	return fmt.Sprintf("(%g, %g, %g, %g)", s.MinLatitude, s.MaxLatitude, s.MinLongitude, s.MaxLongitude)
}

func (s Sector) latitudes() r1.Interval {
	return r1.Interval{Lo: s.MinLatitude, Hi: s.MaxLatitude}
}

func (s Sector) longitudes() r1.Interval {
	return r1.Interval{Lo: s.MinLongitude, Hi: s.MaxLongitude}
}

func (s Sector) DeltaLatitude() float64 {
	return s.latitudes().Length()
}

func (s Sector) DeltaLongitude() float64 {
	return s.longitudes().Length()
}

func (s Sector) CentroidLatitude() float64 {
	return s.latitudes().Center()
}

func (s Sector) CentroidLongitude() float64 {
	return s.longitudes().Center()
}

func (s Sector) Centroid() Location {
	return Location{Latitude: s.CentroidLatitude(), Longitude: s.CentroidLongitude()}
}

// A sector is empty when it collapses to a single point
func (s Sector) IsEmpty() bool {
	return s.MinLatitude == s.MaxLatitude && s.MinLongitude == s.MaxLongitude
}

func (s Sector) IsFullSphere() bool {
	return s == FullSphere
}

// Returns true if the two sectors share at least one point, edges included
func (s Sector) Intersects(other Sector) bool {
	return s.latitudes().Intersects(other.latitudes()) && s.longitudes().Intersects(other.longitudes())
}

// Returns true if the interiors of the two sectors intersect. Sectors sharing only an edge do not overlap.
func (s Sector) Overlaps(other Sector) bool {
	return s.MinLongitude < other.MaxLongitude && s.MaxLongitude > other.MinLongitude &&
		s.MinLatitude < other.MaxLatitude && s.MaxLatitude > other.MinLatitude
}

// Returns true if other lies entirely within this sector, edges included
func (s Sector) Contains(other Sector) bool {
	return s.latitudes().ContainsInterval(other.latitudes()) && s.longitudes().ContainsInterval(other.longitudes())
}

func (s Sector) ContainsLocation(location Location) bool {
	return s.latitudes().Contains(location.Latitude) && s.longitudes().Contains(location.Longitude)
}

// Smallest sector containing both sectors
func (s Sector) Union(other Sector) Sector {
	lat := s.latitudes().Union(other.latitudes())
	lon := s.longitudes().Union(other.longitudes())
	return Sector{MinLatitude: lat.Lo, MaxLatitude: lat.Hi, MinLongitude: lon.Lo, MaxLongitude: lon.Hi}
}

// Corners in counter clockwise order starting from the south west one
func (s Sector) Corners() [4]Location {
	return [4]Location{
		{Latitude: s.MinLatitude, Longitude: s.MinLongitude},
		{Latitude: s.MinLatitude, Longitude: s.MaxLongitude},
		{Latitude: s.MaxLatitude, Longitude: s.MaxLongitude},
		{Latitude: s.MaxLatitude, Longitude: s.MinLongitude},
	}
}

// Computes the smallest sector containing all the given locations. Longitudes are taken as they are, without
// accounting for the date line.
func BoundingSector(locations []Location) Sector {
	if len(locations) == 0 {
		return Sector{}
	}

	lat := r1.EmptyInterval()
	lon := r1.EmptyInterval()
	for _, l := range locations {
		lat = lat.AddPoint(l.Latitude)
		lon = lon.AddPoint(l.Longitude)
	}

	return Sector{MinLatitude: lat.Lo, MaxLatitude: lat.Hi, MinLongitude: lon.Lo, MaxLongitude: lon.Hi}
}

// Computes the two sectors bounding a loop that crosses the date line: one on the eastern side extending to +180
// and one on the western side extending to -180. Returns nil if the locations collapse to a point.
func SplitBoundingSectors(locations []Location) []Sector {
	if len(locations) == 0 || BoundingSector(locations).IsEmpty() {
		return nil
	}

	minLat, maxLat := 90.0, -90.0
	minLon, maxLon := 180.0, -180.0

	for i, l := range locations {
		minLat = math.Min(minLat, l.Latitude)
		maxLat = math.Max(maxLat, l.Latitude)

		lon := l.Longitude
		if lon >= 0 && lon < minLon {
			minLon = lon
		}
		if lon <= 0 && lon > maxLon {
			maxLon = lon
		}

		if i > 0 {
			lastLon := locations[i-1].Longitude
			if signum(lon) != signum(lastLon) && math.Abs(lon-lastLon) < 180 {
				// crossing the prime meridian too
				minLon = 0
				maxLon = 0
			}
		}
	}

	return []Sector{
		{MinLatitude: minLat, MaxLatitude: maxLat, MinLongitude: minLon, MaxLongitude: 180},
		{MinLatitude: minLat, MaxLatitude: maxLat, MinLongitude: -180, MaxLongitude: maxLon},
	}
}
