package shapes

import (
	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
)

// A rectangle of the given width and height in meters centered on a location. The width runs east and the height
// north, both rotated counterclockwise by the heading in degrees.
type Rectangle struct {
	shapeBase
	center  geometry.Location
	width   float64
	height  float64
	heading float64
}

func NewRectangle(center geometry.Location, width, height, heading float64, attributes *Attributes) *Rectangle {
	return &Rectangle{
		shapeBase: newShapeBase("Surface Rectangle", attributes),
		center:    center,
		width:     width,
		height:    height,
		heading:   heading,
	}
}

func (r *Rectangle) IsClosed() bool {
	return true
}

func (r *Rectangle) Center() geometry.Location {
	return r.center
}

func (r *Rectangle) Width() float64 {
	return r.width
}

func (r *Rectangle) Height() float64 {
	return r.height
}

func (r *Rectangle) Heading() float64 {
	return r.heading
}

func (r *Rectangle) SetCenter(center geometry.Location) {
	r.center = center
	r.touch()
}

func (r *Rectangle) SetSize(width, height float64) {
	r.width = width
	r.height = height
	r.touch()
}

func (r *Rectangle) SetHeading(heading float64) {
	r.heading = heading
	r.touch()
}

func (r *Rectangle) ComputeBoundaries(g *globe.Globe) [][]geometry.Location {
	if r.width <= 0 || r.height <= 0 {
		return nil
	}

	halfWidth := 0.5 * r.width
	halfHeight := 0.5 * r.height
	globeRadius := g.RadiusAt(r.center.Latitude, r.center.Longitude)

	return [][]geometry.Location{{
		offsetLocation(r.center, -halfWidth, -halfHeight, r.heading, globeRadius),
		offsetLocation(r.center, halfWidth, -halfHeight, r.heading, globeRadius),
		offsetLocation(r.center, halfWidth, halfHeight, r.heading, globeRadius),
		offsetLocation(r.center, -halfWidth, halfHeight, r.heading, globeRadius),
	}}
}

// The area enclosed by a geographic sector
type SectorShape struct {
	shapeBase
	sector geometry.Sector
}

func NewSectorShape(sector geometry.Sector, attributes *Attributes) *SectorShape {
	return &SectorShape{
		shapeBase: newShapeBase("Surface Sector", attributes),
		sector:    sector,
	}
}

func (s *SectorShape) IsClosed() bool {
	return true
}

func (s *SectorShape) Sector() geometry.Sector {
	return s.sector
}

func (s *SectorShape) SetSector(sector geometry.Sector) {
	s.sector = sector
	s.touch()
}

func (s *SectorShape) ComputeBoundaries(_ *globe.Globe) [][]geometry.Location {
	sector := s.sector
	return [][]geometry.Location{{
		geometry.NewLocation(sector.MinLatitude, sector.MinLongitude),
		geometry.NewLocation(sector.MaxLatitude, sector.MinLongitude),
		geometry.NewLocation(sector.MaxLatitude, sector.MaxLongitude),
		geometry.NewLocation(sector.MinLatitude, sector.MaxLongitude),
	}}
}
