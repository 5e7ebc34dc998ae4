package shapes

import (
	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/golang/glog"
)

// Edge tolerances in degrees below which an edge is not subdivided further
const (
	DefaultEdgeTolerance = 1.0
	MinEdgeTolerance     = 1e-3
	MaxEdgeTolerance     = 180.0
)

// Produces the boundary loops of a shape. Each loop is a list of locations, the first one being the outer boundary.
type BoundaryGenerator interface {
	ComputeBoundaries(g *globe.Globe) [][]geometry.Location
}

// A shape draped on the surface of the globe. Implementations only generate their boundaries, every other step of
// the geometry preparation is shared.
type Shape interface {
	BoundaryGenerator
	DisplayName() string
	PathType() geometry.PathType
	EdgeTolerance() float64
	// false for open paths, which have no closing edge and no interior
	IsClosed() bool
	IsEnabled() bool
	// incremented every time a property affecting the boundaries changes
	Revision() uint64
	Attributes() *Attributes
}

// State shared by every surface shape
type shapeBase struct {
	displayName   string
	pathType      geometry.PathType
	edgeTolerance float64
	enabled       bool
	attributes    *Attributes
	revision      uint64
}

func newShapeBase(displayName string, attributes *Attributes) shapeBase {
	if attributes == nil {
		attributes = DefaultAttributes()
	}
	return shapeBase{
		displayName:   displayName,
		pathType:      geometry.GreatCircle,
		edgeTolerance: DefaultEdgeTolerance,
		enabled:       true,
		attributes:    attributes,
		revision:      1,
	}
}

func (s *shapeBase) DisplayName() string {
	return s.displayName
}

func (s *shapeBase) PathType() geometry.PathType {
	return s.pathType
}

func (s *shapeBase) EdgeTolerance() float64 {
	return s.edgeTolerance
}

func (s *shapeBase) IsEnabled() bool {
	return s.enabled
}

func (s *shapeBase) Revision() uint64 {
	return s.revision
}

func (s *shapeBase) Attributes() *Attributes {
	return s.attributes
}

func (s *shapeBase) touch() {
	s.revision++
}

func (s *shapeBase) SetDisplayName(name string) {
	s.displayName = name
	s.touch()
}

func (s *shapeBase) SetPathType(pathType geometry.PathType) {
	if pathType == "" {
		pathType = geometry.GreatCircle
	}
	s.pathType = pathType
	s.touch()
}

// Sets the edge tolerance in degrees, non positive values restore the default. Other values are clamped to
// [MinEdgeTolerance, MaxEdgeTolerance].
func (s *shapeBase) SetEdgeTolerance(tolerance float64) {
	switch {
	case tolerance <= 0:
		tolerance = DefaultEdgeTolerance
	case tolerance < MinEdgeTolerance:
		glog.V(1).Infof("shape %q: edge tolerance %g raised to %g", s.displayName, tolerance, MinEdgeTolerance)
		tolerance = MinEdgeTolerance
	case tolerance > MaxEdgeTolerance:
		glog.V(1).Infof("shape %q: edge tolerance %g lowered to %g", s.displayName, tolerance, MaxEdgeTolerance)
		tolerance = MaxEdgeTolerance
	}
	s.edgeTolerance = tolerance
	s.touch()
}

func (s *shapeBase) SetEnabled(enabled bool) {
	s.enabled = enabled
	s.touch()
}

func (s *shapeBase) SetAttributes(attributes *Attributes) {
	if attributes == nil {
		attributes = DefaultAttributes()
	}
	s.attributes = attributes
	s.touch()
}

func copyLocations(locations []geometry.Location) []geometry.Location {
	if locations == nil {
		return nil
	}
	c := make([]geometry.Location, len(locations))
	copy(c, locations)
	return c
}
