package quadtree

import (
	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/levels"
	"github.com/ecopia-map/surface_tiler/internal/shapes"
)

type INode interface {
	GetSector() geometry.Sector
	GetLevel() *levels.Level
	GetRow() int
	GetColumn() int
	Key() TileKey
	TileKey() string
}

// A quadtree node carrying the shapes to draw in it
type IShapeNode interface {
	INode
	AddSurfaceShape(shape *shapes.Prepared)
	AddAllSurfaceShapes(shapes []*shapes.Prepared)
	GetShapes() []*shapes.Prepared
	HasShapes() bool
	ClearShapes()
	ShapeSector() (geometry.Sector, bool)
}
