package shapes

import (
	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
)

// A closed shape defined by user supplied boundaries. The first boundary is the outer one, the others are holes.
type Polygon struct {
	shapeBase
	boundaries [][]geometry.Location
}

func NewPolygon(boundaries [][]geometry.Location, attributes *Attributes) *Polygon {
	p := &Polygon{shapeBase: newShapeBase("Surface Polygon", attributes)}
	p.boundaries = copyBoundaries(boundaries)
	return p
}

func (p *Polygon) IsClosed() bool {
	return true
}

func (p *Polygon) Boundaries() [][]geometry.Location {
	return copyBoundaries(p.boundaries)
}

func (p *Polygon) SetBoundaries(boundaries [][]geometry.Location) {
	p.boundaries = copyBoundaries(boundaries)
	p.touch()
}

func (p *Polygon) ComputeBoundaries(_ *globe.Globe) [][]geometry.Location {
	return copyBoundaries(p.boundaries)
}

// An open path. It has no closing edge and is never filled.
type Polyline struct {
	shapeBase
	locations []geometry.Location
}

func NewPolyline(locations []geometry.Location, attributes *Attributes) *Polyline {
	p := &Polyline{shapeBase: newShapeBase("Surface Polyline", attributes)}
	p.locations = copyLocations(locations)
	return p
}

func (p *Polyline) IsClosed() bool {
	return false
}

func (p *Polyline) Locations() []geometry.Location {
	return copyLocations(p.locations)
}

func (p *Polyline) SetLocations(locations []geometry.Location) {
	p.locations = copyLocations(locations)
	p.touch()
}

func (p *Polyline) ComputeBoundaries(_ *globe.Globe) [][]geometry.Location {
	if len(p.locations) == 0 {
		return nil
	}
	return [][]geometry.Location{copyLocations(p.locations)}
}

func copyBoundaries(boundaries [][]geometry.Location) [][]geometry.Location {
	if boundaries == nil {
		return nil
	}
	c := make([][]geometry.Location, 0, len(boundaries))
	for _, b := range boundaries {
		c = append(c, copyLocations(b))
	}
	return c
}
