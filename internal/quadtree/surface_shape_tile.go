package quadtree

import (
	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/levels"
	"github.com/ecopia-map/surface_tiler/internal/shapes"
)

// A tile together with the shapes assigned to it in the current frame
type SurfaceShapeTile struct {
	*Tile
	surfaceShapes []*shapes.Prepared
	shapeSet      map[shapes.Shape]struct{}
	shapeSector   geometry.Sector
	hasSector     bool
}

func NewSurfaceShapeTile(sector geometry.Sector, level *levels.Level, row, column int) *SurfaceShapeTile {
	return &SurfaceShapeTile{
		Tile:     NewTile(sector, level, row, column),
		shapeSet: make(map[shapes.Shape]struct{}),
	}
}

func newSurfaceShapeTileFrom(tile *Tile) *SurfaceShapeTile {
	return &SurfaceShapeTile{Tile: tile, shapeSet: make(map[shapes.Shape]struct{})}
}

// Adds a shape to the tile and grows the aggregate sector. Adding the same shape twice has no effect.
func (t *SurfaceShapeTile) AddSurfaceShape(p *shapes.Prepared) {
	if p == nil {
		return
	}
	if _, ok := t.shapeSet[p.Shape]; ok {
		return
	}

	t.shapeSet[p.Shape] = struct{}{}
	t.surfaceShapes = append(t.surfaceShapes, p)

	for _, s := range p.Sectors {
		if t.hasSector {
			t.shapeSector = t.shapeSector.Union(s)
		} else {
			t.shapeSector = s
			t.hasSector = true
		}
	}
}

func (t *SurfaceShapeTile) AddAllSurfaceShapes(prepared []*shapes.Prepared) {
	for _, p := range prepared {
		t.AddSurfaceShape(p)
	}
}

func (t *SurfaceShapeTile) GetShapes() []*shapes.Prepared {
	return t.surfaceShapes
}

func (t *SurfaceShapeTile) HasShapes() bool {
	return len(t.surfaceShapes) > 0
}

// Empties the shape list, keeping its storage for the next frame
func (t *SurfaceShapeTile) ClearShapes() {
	for i := range t.surfaceShapes {
		t.surfaceShapes[i] = nil
	}
	t.surfaceShapes = t.surfaceShapes[:0]
	clear(t.shapeSet)
	t.shapeSector = geometry.Sector{}
	t.hasSector = false
}

// Union of the sectors of the assigned shapes. The second return value is false when no shape is assigned.
func (t *SurfaceShapeTile) ShapeSector() (geometry.Sector, bool) {
	return t.shapeSector, t.hasSector
}

// Splits the tile in four children with no shapes
func (t *SurfaceShapeTile) SubdivideShapeTile(nextLevel *levels.Level) [4]*SurfaceShapeTile {
	var children [4]*SurfaceShapeTile
	for i, c := range t.Tile.Subdivide(nextLevel) {
		children[i] = newSurfaceShapeTileFrom(c)
	}
	return children
}

// Top level tiles of a level, ready to receive shapes
func CreateSurfaceShapeTilesForLevel(level *levels.Level, sector geometry.Sector, origin geometry.Location) []*SurfaceShapeTile {
	tiles := CreateTilesForLevel(level, sector, origin)
	result := make([]*SurfaceShapeTile, len(tiles))
	for i, t := range tiles {
		result[i] = newSurfaceShapeTileFrom(t)
	}
	return result
}
