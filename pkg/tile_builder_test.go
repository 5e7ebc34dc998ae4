package pkg

import (
	"errors"
	"sort"
	"testing"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/ecopia-map/surface_tiler/internal/metrics"
	"github.com/ecopia-map/surface_tiler/internal/projections"
	"github.com/ecopia-map/surface_tiler/internal/quadtree"
	"github.com/ecopia-map/surface_tiler/internal/scene"
	"github.com/ecopia-map/surface_tiler/internal/shapes"
	"github.com/ecopia-map/surface_tiler/internal/tiler"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"seehuhn.de/go/geom/rect"
)

var testViewport = rect.Rect{URx: 1024, URy: 768}

func newDrawContext(g *globe.Globe, lat, lon, altitude float64, viewport rect.Rect) *scene.DrawContext {
	view := scene.NewLookAtView(g, geometry.NewLocation(lat, lon), altitude, scene.DefaultFieldOfView, viewport)
	return scene.NewDrawContext(g, view)
}

func newBuilder(t *testing.T, modify func(o *tiler.BuilderOptions)) *SurfaceShapeTileBuilder {
	t.Helper()
	opts := tiler.DefaultBuilderOptions()
	if modify != nil {
		modify(opts)
	}
	b, err := NewSurfaceShapeTileBuilder(opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func namedCircle(name string, lat, lon, radius float64) *shapes.Circle {
	c := shapes.NewCircle(geometry.NewLocation(lat, lon), radius, nil)
	c.SetDisplayName(name)
	return c
}

func tileKeys(tiles []*quadtree.SurfaceShapeTile) []string {
	keys := make([]string, len(tiles))
	for i, tile := range tiles {
		keys[i] = tile.TileKey()
	}
	sort.Strings(keys)
	return keys
}

func TestNewSurfaceShapeTileBuilder(t *testing.T) {
	b := newBuilder(t, nil)
	if got := len(b.GetTopLevelTiles()); got != 32 {
		t.Errorf("top level tiles = %d, want 32", got)
	}
	if b.GetLevels().NumLevels != 15 {
		t.Errorf("levels = %d, want 15", b.GetLevels().NumLevels)
	}

	opts := tiler.DefaultBuilderOptions()
	opts.TopLevelRows = 0
	if _, err := NewSurfaceShapeTileBuilder(opts, nil); !errors.Is(err, tiler.ErrInvalidOptions) {
		t.Errorf("invalid options error = %v", err)
	}
}

func TestBuildTiles_MissingDrawContext(t *testing.T) {
	b := newBuilder(t, nil)
	b.InsertSurfaceShape(namedCircle("c", 0, 0, 1e5))
	g := globe.NewGlobe(nil)

	for _, dc := range []*scene.DrawContext{nil, {View: newDrawContext(g, 0, 0, 1e7, testViewport).View}, {Globe: g}} {
		if _, err := b.BuildTiles(dc); !errors.Is(err, ErrMissingDrawContext) {
			t.Errorf("BuildTiles(%+v) error = %v", dc, err)
		}
	}
	if b.Len() != 1 {
		t.Error("a failed build should not drop the submitted shapes")
	}
}

func TestBuildTiles_NothingToDo(t *testing.T) {
	g := globe.NewGlobe(nil)
	b := newBuilder(t, nil)

	tiles, err := b.BuildTiles(newDrawContext(g, 0, 0, 1e7, testViewport))
	if err != nil || tiles != nil {
		t.Errorf("empty intake: %v, %v", tiles, err)
	}

	b.InsertSurfaceShape(namedCircle("c", 0, 0, 1e5))
	tiles, err = b.BuildTiles(newDrawContext(g, 0, 0, 1e7, rect.Rect{}))
	if err != nil || tiles != nil {
		t.Errorf("zero viewport: %v, %v", tiles, err)
	}
}

func TestInsertSurfaceShape(t *testing.T) {
	b := newBuilder(t, nil)
	c := namedCircle("c", 0, 0, 1e5)
	disabled := namedCircle("d", 0, 0, 1e5)
	disabled.SetEnabled(false)

	b.InsertSurfaceShape(nil)
	b.InsertSurfaceShape(c)
	b.InsertSurfaceShape(c)
	b.InsertSurfaceShape(disabled)

	if b.Len() != 1 {
		t.Errorf("Len() = %d, want 1", b.Len())
	}
}

func TestBuildTiles_ZeroSplitScaleStopsAtLastLevel(t *testing.T) {
	const depth = 4
	g := globe.NewGlobe(nil)
	b := newBuilder(t, func(o *tiler.BuilderOptions) {
		o.MaximumSubdivisionDepth = depth
		o.SplitScale = 0
	})

	region := shapes.NewSectorShape(geometry.NewSector(-30, 30, -60, 60), nil)
	region.SetPathType(geometry.Linear)
	b.InsertSurfaceShape(region)

	tiles, err := b.BuildTiles(newDrawContext(g, 0, 0, 1e7, testViewport))
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) == 0 {
		t.Fatal("no tiles built")
	}

	touched := 0
	for _, tile := range b.GetTopLevelTiles() {
		if tile.Sector.Intersects(region.Sector()) {
			touched++
		}
	}
	if maxTiles := touched * 1 << (2 * (depth - 1)); len(tiles) > maxTiles {
		t.Errorf("%d tiles, more than %d", len(tiles), maxTiles)
	}

	for _, tile := range tiles {
		if tile.GetLevel().LevelNumber != depth-1 {
			t.Errorf("tile %s is not at the last level", tile.TileKey())
		}
		if got := tile.GetShapes(); len(got) != 1 || got[0].Shape != region {
			t.Errorf("tile %s shapes = %v", tile.TileKey(), got)
		}
	}

	if err := VerifyTiles(tiles, b.GetLevels()); err != nil {
		t.Error(err)
	}
}

func TestBuildTiles_ResolutionLimitsDepth(t *testing.T) {
	g := globe.NewGlobe(nil)
	b := newBuilder(t, nil)
	b.InsertSurfaceShape(namedCircle("wide", 0, 0, 2e6))

	tiles, err := b.BuildTiles(newDrawContext(g, 0, 0, 1e7, testViewport))
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) == 0 {
		t.Fatal("no tiles built")
	}
	for _, tile := range tiles {
		if tile.GetLevel().IsLastLevel() {
			t.Errorf("tile %s reached the last level from a distant view", tile.TileKey())
		}
		if tile.GetLevel().IsFirstLevel() {
			t.Errorf("tile %s was not refined", tile.TileKey())
		}
	}
}

func TestBuildTiles_PullForwardKeepsIntersectingShapes(t *testing.T) {
	g := globe.NewGlobe(nil)
	b := newBuilder(t, func(o *tiler.BuilderOptions) {
		o.MaximumSubdivisionDepth = 5
		o.SplitScale = 0
	})

	a := namedCircle("a", 10, 10, 1e5)
	c := namedCircle("c", 30, 30, 1e5)
	b.InsertSurfaceShape(a)
	b.InsertSurfaceShape(c)

	tiles, err := b.BuildTiles(newDrawContext(g, 20, 20, 1e7, testViewport))
	if err != nil {
		t.Fatal(err)
	}

	holders := map[string]int{}
	for _, tile := range tiles {
		for _, p := range tile.GetShapes() {
			holders[p.Shape.DisplayName()]++
			if !p.Intersects(tile.Sector) {
				t.Errorf("tile %s holds %q which does not intersect it", tile.TileKey(), p.Shape.DisplayName())
			}
		}
		if len(tile.GetShapes()) != 1 {
			t.Errorf("tile %s holds %d shapes, the circles are far apart", tile.TileKey(), len(tile.GetShapes()))
		}
	}
	if holders["a"] == 0 || holders["c"] == 0 {
		t.Errorf("shape holders = %v", holders)
	}

	// both circles share the top level tile 0..45, 0..45
	if len(tiles) >= 2*4*4*4*4 {
		t.Errorf("%d tiles, the small circles should prune most of the tree", len(tiles))
	}
}

func TestBuildTiles_ProjectionLimits(t *testing.T) {
	g := globe.NewGlobe(projections.NewUPS(geometry.PoleNorth))
	b := newBuilder(t, func(o *tiler.BuilderOptions) { o.MaximumSubdivisionDepth = 4 })

	b.InsertSurfaceShape(namedCircle("south", -30, 0, 1e5))
	tiles, err := b.BuildTiles(newDrawContext(g, 90, 0, 1e7, testViewport))
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) != 0 {
		t.Errorf("southern shape produced %v on a north polar globe", tileKeys(tiles))
	}

	b.Clear()
	b.InsertSurfaceShape(namedCircle("north", 80, 0, 1e5))
	tiles, err = b.BuildTiles(newDrawContext(g, 90, 0, 1e7, testViewport))
	if err != nil {
		t.Fatal(err)
	}
	if len(tiles) == 0 {
		t.Error("northern shape produced no tiles")
	}
}

func TestBuildTiles_ParallelPreparationMatchesSerial(t *testing.T) {
	g := globe.NewGlobe(nil)
	input := []shapes.Shape{
		namedCircle("a", 10, 10, 3e5),
		namedCircle("b", -20, 40, 5e5),
		namedCircle("c", 0, 179.5, 2e5),
		shapes.NewSectorShape(geometry.NewSector(5, 15, -30, -10), nil),
	}

	build := func(workers int) []string {
		b := newBuilder(t, func(o *tiler.BuilderOptions) {
			o.MaximumSubdivisionDepth = 5
			o.PrepareWorkers = workers
		})
		for _, s := range input {
			b.InsertSurfaceShape(s)
		}
		tiles, err := b.BuildTiles(newDrawContext(g, 0, 20, 1.5e7, testViewport))
		if err != nil {
			t.Fatal(err)
		}
		if b.GetCache().Len() != len(input) {
			t.Errorf("workers=%d: cache holds %d entries", workers, b.GetCache().Len())
		}
		return tileKeys(tiles)
	}

	serial, parallel := build(1), build(4)
	if len(serial) == 0 || len(serial) != len(parallel) {
		t.Fatalf("serial %d tiles, parallel %d tiles", len(serial), len(parallel))
	}
	for i := range serial {
		if serial[i] != parallel[i] {
			t.Fatalf("tile sets differ at %d: %s vs %s", i, serial[i], parallel[i])
		}
	}
}

func TestDoRender(t *testing.T) {
	g := globe.NewGlobe(nil)
	m := metrics.NewBuilderMetrics()
	b, err := NewSurfaceShapeTileBuilder(tiler.DefaultBuilderOptions(), m)
	if err != nil {
		t.Fatal(err)
	}
	dc := newDrawContext(g, 10, 10, 1e7, testViewport)

	keep := namedCircle("keep", 10, 10, 2e5)
	drop := namedCircle("drop", -10, -10, 2e5)
	b.InsertSurfaceShape(keep)
	b.InsertSurfaceShape(drop)

	var rendered []*quadtree.SurfaceShapeTile
	shapeCount := 0
	err = b.DoRender(dc, TileRendererFunc(func(dc *scene.DrawContext, tiles []*quadtree.SurfaceShapeTile) error {
		rendered = tiles
		for _, tile := range tiles {
			shapeCount += len(tile.GetShapes())
		}
		return nil
	}))
	if err != nil {
		t.Fatal(err)
	}
	if len(rendered) == 0 || shapeCount == 0 {
		t.Fatal("renderer received no tiles")
	}

	if b.Len() != 0 || len(b.GetTiles()) != 0 {
		t.Error("frame state not cleared after rendering")
	}
	for _, tile := range rendered {
		if tile.HasShapes() {
			t.Errorf("tile %s keeps shapes after rendering", tile.TileKey())
		}
	}

	if got := testutil.ToFloat64(m.FramesTotal); got != 1 {
		t.Errorf("frames = %v", got)
	}
	if got := testutil.ToFloat64(m.CacheMissesTotal); got != 2 {
		t.Errorf("cache misses = %v", got)
	}

	// next frame: the cached geometry of keep is reused, drop is pruned
	dc.NextFrame()
	b.InsertSurfaceShape(keep)
	renderErr := errors.New("lost context")
	err = b.DoRender(dc, TileRendererFunc(func(*scene.DrawContext, []*quadtree.SurfaceShapeTile) error {
		return renderErr
	}))
	if !errors.Is(err, renderErr) {
		t.Errorf("DoRender error = %v", err)
	}
	if b.Len() != 0 {
		t.Error("frame state not cleared after a render error")
	}
	if got := testutil.ToFloat64(m.CacheHitsTotal); got != 1 {
		t.Errorf("cache hits = %v", got)
	}
	if b.GetCache().Len() != 1 {
		t.Errorf("cache holds %d entries, want 1", b.GetCache().Len())
	}
	if got := testutil.ToFloat64(m.CacheEvictionsTotal); got != 1 {
		t.Errorf("evictions = %v", got)
	}
}

func TestBuildTiles_RebuildsEveryFrame(t *testing.T) {
	g := globe.NewGlobe(nil)
	b := newBuilder(t, func(o *tiler.BuilderOptions) { o.MaximumSubdivisionDepth = 6 })
	dc := newDrawContext(g, 0, 0, 1e7, testViewport)

	c := namedCircle("c", 5, 5, 3e5)
	b.InsertSurfaceShape(c)

	first, err := b.BuildTiles(dc)
	if err != nil {
		t.Fatal(err)
	}
	firstKeys := tileKeys(first)

	c.SetCenter(geometry.NewLocation(-40, -100))
	dc.NextFrame()
	second, err := b.BuildTiles(dc)
	if err != nil {
		t.Fatal(err)
	}

	for _, tile := range first {
		if tile.HasShapes() && !tile.Sector.Intersects(geometry.NewSector(-50, -30, -110, -90)) {
			t.Errorf("tile %s of the previous frame still holds shapes", tile.TileKey())
		}
	}
	if len(second) > 0 && tileKeys(second)[0] == firstKeys[0] {
		t.Error("moved shape produced the same tiles")
	}
	for _, tile := range second {
		if tile.GetShapes()[0].Revision != c.Revision() {
			t.Error("stale geometry used after the shape changed")
		}
	}
}

func TestVerifyTiles(t *testing.T) {
	g := globe.NewGlobe(nil)
	b := newBuilder(t, nil)
	level := b.GetLevels().FirstLevel()

	inside := quadtree.NewSurfaceShapeTile(geometry.NewSector(0, 45, 0, 45), level, 2, 4)
	inside.AddSurfaceShape(shapes.Prepare(namedCircle("in", 10, 10, 1e5), g))

	if err := VerifyTiles([]*quadtree.SurfaceShapeTile{inside}, b.GetLevels()); err != nil {
		t.Errorf("valid tiles rejected: %v", err)
	}

	empty := quadtree.NewSurfaceShapeTile(geometry.NewSector(0, 45, 45, 90), level, 2, 5)
	outside := quadtree.NewSurfaceShapeTile(geometry.NewSector(-45, 0, 0, 45), level, 1, 4)
	outside.AddSurfaceShape(shapes.Prepare(namedCircle("out", 10, 10, 1e5), g))

	tests := []struct {
		name  string
		tiles []*quadtree.SurfaceShapeTile
	}{
		{"duplicate", []*quadtree.SurfaceShapeTile{inside, inside}},
		{"empty", []*quadtree.SurfaceShapeTile{empty}},
		{"shape outside", []*quadtree.SurfaceShapeTile{outside}},
		{"nil tile", []*quadtree.SurfaceShapeTile{nil}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := VerifyTiles(tt.tiles, b.GetLevels()); !errors.Is(err, ErrInvalidTiles) {
				t.Errorf("VerifyTiles = %v, want ErrInvalidTiles", err)
			}
		})
	}

	other := newBuilder(t, nil)
	if err := VerifyTiles([]*quadtree.SurfaceShapeTile{inside}, other.GetLevels()); !errors.Is(err, ErrInvalidTiles) {
		t.Error("tile of another level set accepted")
	}
}
