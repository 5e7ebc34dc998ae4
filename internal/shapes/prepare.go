package shapes

import (
	"math"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/golang/geo/s1"
	"github.com/golang/glog"
)

// Geometry derived from the boundaries of a shape at a given revision. A Prepared value is never modified once
// built, a change to the shape produces a new one.
type Prepared struct {
	Shape         Shape
	Revision      uint64
	PathType      geometry.PathType
	EdgeTolerance float64
	Globe         *globe.Globe

	Boundaries       [][]geometry.Location // boundaries as generated by the shape
	Locations        []geometry.Location   // outer boundary after edge subdivision
	Pole             geometry.Pole         // pole enclosed by Locations
	Sectors          []geometry.Sector     // bounding sectors, two when the shape crosses the date line
	Sector           geometry.Sector       // union of Sectors
	InteriorGeometry [][]geometry.Location // loops to fill
	OutlineGeometry  [][]geometry.Location // paths to stroke
}

// Runs the whole geometry preparation of a shape: boundary generation, edge subdivision, pole and date line
// handling and bounding sectors. Shapes with fewer than two boundary locations produce empty geometry.
func Prepare(shape Shape, g *globe.Globe) *Prepared {
	p := &Prepared{
		Shape:         shape,
		Revision:      shape.Revision(),
		PathType:      shape.PathType(),
		EdgeTolerance: shape.EdgeTolerance(),
		Globe:         g,
	}

	p.Boundaries = shape.ComputeBoundaries(g)
	if len(p.Boundaries) == 0 || len(p.Boundaries[0]) < 2 {
		glog.V(2).Infof("shape %q has degenerate boundaries, skipping", shape.DisplayName())
		return p
	}
	if len(p.Boundaries) > 1 {
		glog.V(2).Infof("shape %q: %d inner boundaries are left to the renderer", shape.DisplayName(), len(p.Boundaries)-1)
	}

	closed := shape.IsClosed()
	p.Locations = InterpolateLocations(p.Boundaries[0], p.PathType, p.EdgeTolerance, closed)

	if closed {
		var spansEquator bool
		p.Pole, spansEquator = containsPole(p.Locations)
		if p.Pole != geometry.PoleNone && spansEquator {
			glog.V(1).Infof("shape %q spans both hemispheres, assuming it encloses the %s pole only",
				shape.DisplayName(), p.Pole)
		}
	}

	p.Sectors = ComputeSectors(p.Locations, p.Pole, p.PathType)
	for i, s := range p.Sectors {
		if i == 0 {
			p.Sector = s
		} else {
			p.Sector = p.Sector.Union(s)
		}
	}

	p.InteriorGeometry, p.OutlineGeometry = ComputeGeometry(p.Locations, p.Pole, p.PathType, closed)

	return p
}

// Returns true if the preparation produced no geometry
func (p *Prepared) IsEmpty() bool {
	return len(p.Sectors) == 0
}

// Returns true if any of the bounding sectors intersects sector
func (p *Prepared) Intersects(sector geometry.Sector) bool {
	for _, s := range p.Sectors {
		if s.Intersects(sector) {
			return true
		}
	}
	return false
}

// Returns true if the prepared geometry is still valid for the shape on the given globe
func (p *Prepared) IsCurrent(g *globe.Globe) bool {
	return p.Globe == g &&
		p.Revision == p.Shape.Revision() &&
		p.PathType == p.Shape.PathType() &&
		p.EdgeTolerance == p.Shape.EdgeTolerance()
}

// Determines which pole, if any, is enclosed by a closed loop. The edge from the last location back to the first
// is tested too.
func ContainsPole(locations []geometry.Location) geometry.Pole {
	pole, _ := containsPole(locations)
	return pole
}

// The second return value is true when the loop spans the equator, in which case the enclosed pole is only a guess
func containsPole(locations []geometry.Location) (geometry.Pole, bool) {
	if len(locations) < 2 {
		return geometry.PoleNone, false
	}

	// a loop enclosing a pole crosses the date line an odd number of times
	enclosed := false
	minLatitude := 90.0
	maxLatitude := -90.0

	prev := locations[0]
	for _, next := range locations[1:] {
		if geometry.LocationsCrossDateLine([]geometry.Location{prev, next}) {
			enclosed = !enclosed
		}
		minLatitude = math.Min(minLatitude, next.Latitude)
		maxLatitude = math.Max(maxLatitude, next.Latitude)
		prev = next
	}

	// closing edge, never crosses if the loop is already closed
	if geometry.LocationsCrossDateLine([]geometry.Location{locations[0], prev}) {
		enclosed = !enclosed
	}

	if !enclosed {
		return geometry.PoleNone, false
	}

	switch {
	case minLatitude > 0:
		return geometry.PoleNorth, false
	case maxLatitude < 0:
		return geometry.PoleSouth, false
	case math.Abs(maxLatitude) >= math.Abs(minLatitude):
		return geometry.PoleNorth, true
	default:
		return geometry.PoleSouth, true
	}
}

// Rewrites a loop enclosing a pole so that it runs up to the pole and back along the date line, producing a loop
// that can be filled in a flat latitude/longitude space. Loops without a pole are returned unchanged.
func CutAlongDateLine(locations []geometry.Location, pole geometry.Pole, pathType geometry.PathType) []geometry.Location {
	if pole == geometry.PoleNone || len(locations) == 0 {
		return locations
	}

	poleLat := pole.Latitude()
	newLocations := make([]geometry.Location, 0, len(locations)+5)

	prev := locations[len(locations)-1]
	for _, next := range locations {
		newLocations = append(newLocations, prev)

		if geometry.LocationsCrossDateLine([]geometry.Location{prev, next}) {
			lat := dateLineLatitude(prev, next, pathType)
			thisSideLon := 180.0
			if prev.Longitude < 0 {
				thisSideLon = -180
			}
			otherSideLon := -thisSideLon

			// up to the pole on this side of the date line and back down on the other one
			newLocations = append(newLocations,
				geometry.NewLocation(lat, thisSideLon),
				geometry.NewLocation(poleLat, thisSideLon),
				geometry.NewLocation(poleLat, otherSideLon),
				geometry.NewLocation(lat, otherSideLon),
			)
		}

		prev = next
	}
	newLocations = append(newLocations, prev)

	return newLocations
}

// Latitude at which a segment known to cross the date line meets it
func dateLineLatitude(prev, next geometry.Location, pathType geometry.PathType) float64 {
	if lat, ok := geometry.IntersectionWithMeridian(prev, next, 180, pathType); ok {
		return lat
	}
	if lat, ok := geometry.IntersectionWithMeridian(prev, next, 180, geometry.Linear); ok {
		return lat
	}
	return (prev.Latitude + next.Latitude) / 2
}

// Makes a path crossing the date line continuous by offsetting by 360 degrees the longitudes past each crossing.
// A second copy shifted back by 360 degrees is returned when an offset was applied, so that the shape is drawn on
// both sides of the date line.
func RepeatAroundDateline(locations []geometry.Location) [][]geometry.Location {
	if len(locations) == 0 {
		return nil
	}

	lonOffset := 0.0
	applyOffset := false

	newLocations := make([]geometry.Location, 0, len(locations))
	prev := locations[0]
	newLocations = append(newLocations, prev)

	for _, next := range locations[1:] {
		if geometry.LocationsCrossDateLine([]geometry.Location{prev, next}) {
			if lonOffset == 0 {
				lonOffset = 360
				if prev.Longitude < 0 {
					lonOffset = -360
				}
			}
			applyOffset = !applyOffset
		}

		if applyOffset {
			newLocations = append(newLocations, geometry.NewLocation(next.Latitude, next.Longitude+lonOffset))
		} else {
			newLocations = append(newLocations, next)
		}
		prev = next
	}

	group := [][]geometry.Location{newLocations}
	if lonOffset != 0 {
		shifted := make([]geometry.Location, len(newLocations))
		for i, l := range newLocations {
			shifted[i] = geometry.NewLocation(l.Latitude, l.Longitude-lonOffset)
		}
		group = append(group, shifted)
	}

	return group
}

// Subdivides the edges of a path until the latitude span of every edge is within the tolerance. The tolerance is
// tightened near the poles. A closed path gets its closing edge subdivided and ends with its first location.
func InterpolateLocations(locations []geometry.Location, pathType geometry.PathType, tolerance float64, closed bool) []geometry.Location {
	if len(locations) == 0 {
		return nil
	}
	if tolerance <= 0 {
		tolerance = DefaultEdgeTolerance
	} else if tolerance < MinEdgeTolerance {
		tolerance = MinEdgeTolerance
	}

	first := locations[0]
	result := []geometry.Location{first}

	prev := first
	for _, next := range locations[1:] {
		result = subdivideEdge(prev, next, pathType, tolerance, result)
		result = append(result, next)
		prev = next
	}

	if closed {
		result = subdivideEdge(prev, first, pathType, tolerance, result)
		result = append(result, first)
	}

	return result
}

// Maximum latitude span allowed for an edge whose most polar latitude is absLatitude
func EdgeThreshold(tolerance, absLatitude float64) float64 {
	return tolerance * (0.1 + math.Cos(absLatitude*s1.Degree.Radians()))
}

// Appends the interior points of the subdivided edge from start to end, excluding both end points
func subdivideEdge(start, end geometry.Location, pathType geometry.PathType, tolerance float64, locations []geometry.Location) []geometry.Location {
	middle := geometry.Interpolate(pathType, 0.5, start, end)

	minLatitude := math.Min(start.Latitude, math.Min(end.Latitude, middle.Latitude))
	maxLatitude := math.Max(start.Latitude, math.Max(end.Latitude, middle.Latitude))
	absLatitude := math.Max(math.Abs(minLatitude), math.Abs(maxLatitude))

	if maxLatitude-minLatitude > EdgeThreshold(tolerance, absLatitude) {
		locations = subdivideEdge(start, middle, pathType, tolerance, locations)
		locations = append(locations, middle)
		return subdivideEdge(middle, end, pathType, tolerance, locations)
	}

	return append(locations, middle)
}

// Computes the bounding sectors of the subdivided locations of a shape
func ComputeSectors(locations []geometry.Location, pole geometry.Pole, pathType geometry.PathType) []geometry.Sector {
	if len(locations) == 0 {
		return nil
	}

	sector := geometry.BoundingSector(locations)

	var sectors []geometry.Sector
	switch {
	case pole == geometry.PoleNorth:
		// from the extreme latitude of the shape to the pole, all around the globe
		sectors = []geometry.Sector{geometry.NewSector(sector.MinLatitude, 90, -180, 180)}
	case pole == geometry.PoleSouth:
		sectors = []geometry.Sector{geometry.NewSector(-90, sector.MaxLatitude, -180, 180)}
	case geometry.LocationsCrossDateLine(locations):
		sectors = geometry.SplitBoundingSectors(locations)
	case !sector.IsEmpty():
		sectors = []geometry.Sector{sector}
	}

	if len(sectors) == 0 {
		return nil
	}

	// great circle arcs may reach beyond the latitudes of their end points
	if pathType == geometry.GreatCircle {
		minExtreme, maxExtreme := geometry.GreatCircleArcExtremeLocations(locations)
		for i, s := range sectors {
			sectors[i] = geometry.NewSector(
				math.Max(-90, math.Min(s.MinLatitude, minExtreme.Latitude)),
				math.Min(90, math.Max(s.MaxLatitude, maxExtreme.Latitude)),
				s.MinLongitude,
				s.MaxLongitude,
			)
		}
	}

	return sectors
}

// Computes the loops to fill and the paths to stroke. Open paths have no interior.
func ComputeGeometry(locations []geometry.Location, pole geometry.Pole, pathType geometry.PathType, closed bool) ([][]geometry.Location, [][]geometry.Location) {
	if len(locations) == 0 {
		return nil, nil
	}

	var interior, outline [][]geometry.Location

	switch {
	case pole != geometry.PoleNone:
		// the interior wraps around the pole, the outline only has to deal with the date line
		interior = [][]geometry.Location{CutAlongDateLine(locations, pole, pathType)}
		outline = RepeatAroundDateline(locations)
	case geometry.LocationsCrossDateLine(locations):
		repeated := RepeatAroundDateline(locations)
		interior = repeated
		outline = repeated
	default:
		interior = [][]geometry.Location{locations}
		outline = [][]geometry.Location{locations}
	}

	if !closed {
		interior = nil
	}

	return interior, outline
}
