package pkg

import (
	"errors"
	"fmt"
	"time"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/io"
	"github.com/ecopia-map/surface_tiler/internal/levels"
	"github.com/ecopia-map/surface_tiler/internal/metrics"
	"github.com/ecopia-map/surface_tiler/internal/quadtree"
	"github.com/ecopia-map/surface_tiler/internal/scene"
	"github.com/ecopia-map/surface_tiler/internal/shapes"
	"github.com/ecopia-map/surface_tiler/internal/tiler"
	"github.com/golang/glog"
)

var ErrMissingDrawContext = errors.New("draw context, globe and view are required")

// Receives the leaf tiles of a frame
type TileRenderer interface {
	RenderTiles(dc *scene.DrawContext, tiles []*quadtree.SurfaceShapeTile) error
}

type TileRendererFunc func(dc *scene.DrawContext, tiles []*quadtree.SurfaceShapeTile) error

func (f TileRendererFunc) RenderTiles(dc *scene.DrawContext, tiles []*quadtree.SurfaceShapeTile) error {
	return f(dc, tiles)
}

// Assembles the surface shapes submitted for a frame into a view dependent quadtree of tiles. The tree is rebuilt
// on every frame, only the level set, the top level grid and the geometry cache outlive a frame.
// Not safe for concurrent use.
type SurfaceShapeTileBuilder struct {
	options       *tiler.BuilderOptions
	levels        *levels.LevelSet
	topLevelTiles []*quadtree.SurfaceShapeTile
	cache         *shapes.GeometryCache
	metrics       *metrics.BuilderMetrics

	surfaceShapes []shapes.Shape
	shapeSet      map[shapes.Shape]struct{}
	tiles         []*quadtree.SurfaceShapeTile
}

// Creates a builder from the given options. m may be nil.
func NewSurfaceShapeTileBuilder(opts *tiler.BuilderOptions, m *metrics.BuilderMetrics) (*SurfaceShapeTileBuilder, error) {
	if opts == nil {
		opts = tiler.DefaultBuilderOptions()
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	opts = opts.Copy()

	levelSet, err := levels.NewLevelSet(geometry.FullSphere, opts.LevelZeroDelta(), opts.MaximumSubdivisionDepth,
		opts.TileWidth, opts.TileHeight)
	if err != nil {
		return nil, err
	}

	origin := geometry.NewLocation(geometry.FullSphere.MinLatitude, geometry.FullSphere.MinLongitude)

	return &SurfaceShapeTileBuilder{
		options:       opts,
		levels:        levelSet,
		topLevelTiles: quadtree.CreateSurfaceShapeTilesForLevel(levelSet.FirstLevel(), levelSet.Sector, origin),
		cache:         shapes.NewGeometryCache(),
		metrics:       m,
		shapeSet:      make(map[shapes.Shape]struct{}),
	}, nil
}

func (b *SurfaceShapeTileBuilder) GetLevels() *levels.LevelSet {
	return b.levels
}

func (b *SurfaceShapeTileBuilder) GetCache() *shapes.GeometryCache {
	return b.cache
}

func (b *SurfaceShapeTileBuilder) GetOptions() *tiler.BuilderOptions {
	return b.options.Copy()
}

// Leaf tiles of the last BuildTiles call, empty once the frame has been rendered or cleared
func (b *SurfaceShapeTileBuilder) GetTiles() []*quadtree.SurfaceShapeTile {
	return b.tiles
}

func (b *SurfaceShapeTileBuilder) GetTopLevelTiles() []*quadtree.SurfaceShapeTile {
	return b.topLevelTiles
}

// Submits a shape for the current frame. Nil and disabled shapes are ignored, as well as shapes already submitted.
func (b *SurfaceShapeTileBuilder) InsertSurfaceShape(shape shapes.Shape) {
	if shape == nil || !shape.IsEnabled() {
		return
	}
	if _, ok := b.shapeSet[shape]; ok {
		return
	}
	b.shapeSet[shape] = struct{}{}
	b.surfaceShapes = append(b.surfaceShapes, shape)
	b.metrics.ShapeInserted()
}

// Number of shapes submitted for the current frame
func (b *SurfaceShapeTileBuilder) Len() int {
	return len(b.surfaceShapes)
}

// Builds the leaf tiles of the submitted shapes for the view of dc. Returns no tiles when the viewport is empty or
// nothing was submitted.
func (b *SurfaceShapeTileBuilder) BuildTiles(dc *scene.DrawContext) ([]*quadtree.SurfaceShapeTile, error) {
	if dc == nil || dc.Globe == nil || dc.View == nil {
		return nil, ErrMissingDrawContext
	}

	start := time.Now()
	b.clearTiles()

	if !dc.View.HasViewport() || len(b.surfaceShapes) == 0 {
		return nil, nil
	}

	prepared, err := b.prepareShapes(dc)
	if err != nil {
		return nil, err
	}

	touched := b.assignToTopLevelTiles(prepared)
	for _, tile := range touched {
		b.addTileOrDescendants(dc, tile, nil)
	}

	if removed := b.cache.Prune(dc.FrameNumber); removed > 0 {
		glog.V(2).Infof("frame %d: pruned %d cached geometries", dc.FrameNumber, removed)
		b.metrics.CacheEvictions(removed)
	}

	b.metrics.ObserveFrame(time.Since(start), len(b.tiles))
	glog.V(1).Infof("frame %d: %d shapes, %d top level tiles touched, %d leaf tiles",
		dc.FrameNumber, len(b.surfaceShapes), len(touched), len(b.tiles))

	return b.tiles, nil
}

// Builds the tiles of the frame, hands them to renderer and clears the frame state
func (b *SurfaceShapeTileBuilder) DoRender(dc *scene.DrawContext, renderer TileRenderer) error {
	tiles, err := b.BuildTiles(dc)
	if err != nil {
		return err
	}

	if len(tiles) > 0 && renderer != nil {
		err = renderer.RenderTiles(dc, tiles)
	}

	b.Clear()

	if err != nil {
		return fmt.Errorf("rendering frame %d: %w", dc.FrameNumber, err)
	}
	return nil
}

// Drops the submitted shapes and the tiles of the current frame
func (b *SurfaceShapeTileBuilder) Clear() {
	b.clearTiles()
	for i := range b.surfaceShapes {
		b.surfaceShapes[i] = nil
	}
	b.surfaceShapes = b.surfaceShapes[:0]
	clear(b.shapeSet)
}

func (b *SurfaceShapeTileBuilder) clearTiles() {
	for _, tile := range b.tiles {
		tile.ClearShapes()
	}
	b.tiles = nil
	for _, tile := range b.topLevelTiles {
		tile.ClearShapes()
	}
}

// Returns the prepared geometry of every submitted shape, in submission order, refreshing the stale cache entries
func (b *SurfaceShapeTileBuilder) prepareShapes(dc *scene.DrawContext) ([]*shapes.Prepared, error) {
	stale := b.cache.Stale(b.surfaceShapes, dc.Globe)
	b.metrics.CacheHits(len(b.surfaceShapes) - len(stale))
	b.metrics.CacheMisses(len(stale))

	if b.options.PrepareWorkers > 1 && len(stale) > 1 {
		results, err := io.PrepareShapes(dc.Globe, stale, b.options.PrepareWorkers)
		if err != nil {
			return nil, err
		}
		for _, p := range results {
			b.cache.Store(p, dc.FrameNumber)
		}
	}

	prepared := make([]*shapes.Prepared, 0, len(b.surfaceShapes))
	for _, s := range b.surfaceShapes {
		p, _ := b.cache.Get(s, dc.Globe, dc.FrameNumber)
		prepared = append(prepared, p)
	}

	return prepared, nil
}

// Adds every shape to the top level tiles it intersects and returns the touched tiles, each listed once, in grid
// order of first touch
func (b *SurfaceShapeTileBuilder) assignToTopLevelTiles(prepared []*shapes.Prepared) []*quadtree.SurfaceShapeTile {
	touchedSet := make(map[quadtree.TileKey]struct{})
	var touched []*quadtree.SurfaceShapeTile

	for _, p := range prepared {
		if p.IsEmpty() {
			continue
		}

		assigned := false
		for _, tile := range b.topLevelTiles {
			if !p.Intersects(tile.Sector) {
				continue
			}
			tile.AddSurfaceShape(p)
			assigned = true

			if _, ok := touchedSet[tile.Key()]; !ok {
				touchedSet[tile.Key()] = struct{}{}
				touched = append(touched, tile)
			}
		}

		if !assigned {
			glog.V(2).Infof("shape %q intersects no top level tile", p.Shape.DisplayName())
		}
	}

	return touched
}

func (b *SurfaceShapeTileBuilder) addTileOrDescendants(dc *scene.DrawContext, tile, parent *quadtree.SurfaceShapeTile) {
	if !b.isTileVisible(dc, tile) {
		tile.ClearShapes()
		return
	}

	if parent != nil {
		addIntersectingShapes(tile, parent)
	}

	if !tile.HasShapes() {
		return
	}

	if b.meetsRenderCriteria(dc, tile) {
		b.tiles = append(b.tiles, tile)
		return
	}

	nextLevel := tile.Level.NextLevel()
	for _, child := range tile.SubdivideShapeTile(nextLevel) {
		b.addTileOrDescendants(dc, child, tile)
	}

	// only leaves keep their shapes
	tile.ClearShapes()
}

func (b *SurfaceShapeTileBuilder) isTileVisible(dc *scene.DrawContext, tile *quadtree.SurfaceShapeTile) bool {
	if limits := dc.Globe.ProjectionLimits(); limits != nil && !tile.Sector.Overlaps(*limits) {
		return false
	}

	tile.Update(dc.Globe)
	return tile.IntersectsFrustum(dc.View.Frustum())
}

func (b *SurfaceShapeTileBuilder) meetsRenderCriteria(dc *scene.DrawContext, tile *quadtree.SurfaceShapeTile) bool {
	return tile.Level.IsLastLevel() || tile.Level.NextLevel() == nil || !tile.MustSubdivide(dc, b.options.SplitScale)
}

// Copies into tile the shapes of parent that intersect it
func addIntersectingShapes(tile, parent *quadtree.SurfaceShapeTile) {
	parentSector, ok := parent.ShapeSector()
	if !ok {
		return
	}

	if tile.Sector.Contains(parentSector) {
		tile.AddAllSurfaceShapes(parent.GetShapes())
		return
	}

	for _, p := range parent.GetShapes() {
		if p.Intersects(tile.Sector) {
			tile.AddSurfaceShape(p)
		}
	}
}
