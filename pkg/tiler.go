package pkg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/io"
	"github.com/ecopia-map/surface_tiler/internal/metrics"
	"github.com/ecopia-map/surface_tiler/internal/quadtree"
	"github.com/ecopia-map/surface_tiler/internal/scene"
	"github.com/ecopia-map/surface_tiler/internal/tiler"
	"github.com/ecopia-map/surface_tiler/pkg/algorithm_manager"
	"github.com/ecopia-map/surface_tiler/tools"
	"github.com/golang/geo/s1"
	"seehuhn.de/go/geom/rect"
)

var ErrNoInputFiles = errors.New("no GeoJSON files to process")

type ITiler interface {
	RunTiler(opts *tiler.TilerOptions) error
}

type Tiler struct {
	fileFinder       tools.FileFinder
	algorithmManager algorithm_manager.AlgorithmManager
}

func NewTiler(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager) ITiler {
	return &Tiler{
		fileFinder:       fileFinder,
		algorithmManager: algorithmManager,
	}
}

// Loads the input shapes, builds the tiles of a single frame and writes them to the output folder
func (t *Tiler) RunTiler(opts *tiler.TilerOptions) error {
	tools.LogOutput("Preparing list of files to process...")

	files, err := t.fileFinder.GetShapeFilesToProcess(opts)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return ErrNoInputFiles
	}

	builder, err := NewSurfaceShapeTileBuilder(opts.Builder, t.algorithmManager.GetMetrics())
	if err != nil {
		return err
	}

	for i, filePath := range files {
		tools.LogOutput("Processing file " + strconv.Itoa(i+1) + "/" + strconv.Itoa(len(files)))
		if err := t.loadShapes(builder, filePath); err != nil {
			return err
		}
	}
	tools.LogOutput("> submitted", builder.Len(), "shapes")

	dc := t.newDrawContext(opts.View)

	rendered := false
	renderer := TileRendererFunc(func(dc *scene.DrawContext, tiles []*quadtree.SurfaceShapeTile) error {
		rendered = true
		return t.exportTiles(opts, builder, dc, tiles)
	})

	tools.LogOutput("> building tiles...")
	if err := builder.DoRender(dc, renderer); err != nil {
		return err
	}
	if !rendered {
		tools.LogOutput("> no tile is visible from the given view")
		if err := t.exportTiles(opts, builder, dc, nil); err != nil {
			return err
		}
	}

	if opts.Metrics {
		return metrics.WriteText(os.Stdout, t.algorithmManager.GetGatherer())
	}

	return nil
}

func (t *Tiler) loadShapes(builder *SurfaceShapeTileBuilder, filePath string) error {
	tools.LogOutput("> reading shapes from", filepath.Base(filePath))
	loaded, err := t.algorithmManager.GetShapeLoader().LoadShapes(filePath)
	if err != nil {
		return err
	}
	for _, s := range loaded {
		builder.InsertSurfaceShape(s)
	}
	return nil
}

func (t *Tiler) newDrawContext(view *tiler.ViewOptions) *scene.DrawContext {
	g := t.algorithmManager.GetGlobe()
	if view == nil {
		view = &tiler.ViewOptions{}
	}

	fov := s1.Angle(view.FieldOfView) * s1.Degree
	if fov <= 0 {
		fov = scene.DefaultFieldOfView
	}
	viewport := rect.Rect{URx: float64(view.Width), URy: float64(view.Height)}
	target := geometry.NewLocation(view.Latitude, view.Longitude)

	dc := scene.NewDrawContext(g, scene.NewLookAtView(g, target, view.Altitude, fov, viewport))
	dc.NextFrame()
	return dc
}

func (t *Tiler) exportTiles(opts *tiler.TilerOptions, builder *SurfaceShapeTileBuilder, dc *scene.DrawContext, tiles []*quadtree.SurfaceShapeTile) error {
	tools.LogOutput("> built", len(tiles), "leaf tiles")

	if opts.Verify {
		tools.LogOutput("> verifying tiles...")
		if err := VerifyTiles(tiles, builder.GetLevels()); err != nil {
			return err
		}
	}

	if opts.BuildOptions == nil || opts.BuildOptions.Output == "" {
		return nil
	}

	doc := io.NewTileDocument(tiles, dc.FrameNumber, dc.Globe.DisplayName(), builder.GetLevels().NumLevels)
	file, err := io.WriteTileDocument(opts.BuildOptions.Output, doc)
	if err != nil {
		return fmt.Errorf("writing tiles: %w", err)
	}
	tools.LogOutput("> tiles written to", file)
	return nil
}
