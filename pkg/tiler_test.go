package pkg

import (
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/io"
	"github.com/ecopia-map/surface_tiler/internal/tiler"
	"github.com/ecopia-map/surface_tiler/pkg/algorithm_manager"
	"github.com/ecopia-map/surface_tiler/tools"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

const testShapes = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "field"},
      "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [20, 0], [20, 20], [0, 20], [0, 0]]]}
    },
    {
      "type": "Feature",
      "properties": {"shape": "circle", "name": "zone", "radius": 100000},
      "geometry": {"type": "Point", "coordinates": [25, 15]}
    }
  ]
}`

func newBuildOptions(input, output string) *tiler.TilerOptions {
	builder := tiler.DefaultBuilderOptions()
	builder.MaximumSubdivisionDepth = 6
	return &tiler.TilerOptions{
		Input:      input,
		Projection: tiler.ProjectionWgs84,
		PathType:   geometry.GreatCircle,
		Verify:     true,
		Command:    tools.CommandBuild,
		Builder:    builder,
		View: &tiler.ViewOptions{
			Latitude:    10,
			Longitude:   10,
			Altitude:    1e7,
			FieldOfView: 45,
			Width:       1024,
			Height:      768,
		},
		BuildOptions: &tiler.TilerBuildOptions{Output: output},
	}
}

func TestTiler_RunTiler(t *testing.T) {
	tools.DisableLogger()
	defer tools.EnableLogger()

	dir := t.TempDir()
	input := filepath.Join(dir, "shapes.geojson")
	if err := os.WriteFile(input, []byte(testShapes), 0666); err != nil {
		t.Fatal(err)
	}
	output := filepath.Join(dir, "out")

	opts := newBuildOptions(input, output)
	am, err := algorithm_manager.NewAlgorithmManager(opts)
	if err != nil {
		t.Fatal(err)
	}

	if err := NewTiler(tools.NewStandardFileFinder(), am).RunTiler(opts); err != nil {
		t.Fatalf("RunTiler() error = %v", err)
	}

	content, err := os.ReadFile(filepath.Join(output, io.TilesFileName))
	if err != nil {
		t.Fatal(err)
	}
	var doc io.TileDocument
	if err := json.Unmarshal(content, &doc); err != nil {
		t.Fatal(err)
	}

	if len(doc.Tiles) == 0 {
		t.Error("no tiles written")
	}
	if len(doc.Shapes) != 2 {
		t.Errorf("shapes = %d, want 2", len(doc.Shapes))
	}
	if doc.NumLevels != 6 {
		t.Errorf("levels = %d, want 6", doc.NumLevels)
	}
	if doc.Projection != am.GetGlobe().DisplayName() {
		t.Errorf("projection = %q", doc.Projection)
	}

	if got := testutil.ToFloat64(am.GetMetrics().FramesTotal); got != 1 {
		t.Errorf("frames = %v, want 1", got)
	}
	if got := testutil.ToFloat64(am.GetMetrics().ShapesInserted); got != 2 {
		t.Errorf("inserted shapes = %v, want 2", got)
	}
}

func TestTiler_RunTilerWithoutInput(t *testing.T) {
	tools.DisableLogger()
	defer tools.EnableLogger()

	dir := t.TempDir()
	opts := newBuildOptions(dir, filepath.Join(dir, "out"))
	opts.FolderProcessing = true

	am, err := algorithm_manager.NewAlgorithmManager(opts)
	if err != nil {
		t.Fatal(err)
	}
	if err := NewTiler(tools.NewStandardFileFinder(), am).RunTiler(opts); !errors.Is(err, ErrNoInputFiles) {
		t.Errorf("RunTiler() error = %v, want ErrNoInputFiles", err)
	}
}

func TestTilerProject_RoundTrip(t *testing.T) {
	tools.DisableLogger()
	defer tools.EnableLogger()

	for _, projection := range []tiler.Projection{tiler.ProjectionNorthPolar, tiler.ProjectionNorthUPS} {
		t.Run(projection.String(), func(t *testing.T) {
			opts := &tiler.TilerOptions{
				Projection:     projection,
				Command:        tools.CommandProject,
				ProjectOptions: &tiler.TilerProjectOptions{Latitude: 75, Longitude: 30},
			}
			am, err := algorithm_manager.NewAlgorithmManager(opts)
			if err != nil {
				t.Fatal(err)
			}
			project := NewTilerProject(am)

			if err := project.RunTiler(opts); err != nil {
				t.Fatal(err)
			}
			forward := project.LastResult()

			opts.ProjectOptions = &tiler.TilerProjectOptions{Inverse: true, X: forward.Point.X, Y: forward.Point.Y}
			if err := project.RunTiler(opts); err != nil {
				t.Fatal(err)
			}
			inverse := project.LastResult()

			if math.Abs(inverse.Location.Latitude-75) > 1e-6 || math.Abs(inverse.Location.Longitude-30) > 1e-6 {
				t.Errorf("inverse = %v, want (75, 30)", inverse.Location)
			}
		})
	}

	if err := NewTilerProject(nil).RunTiler(&tiler.TilerOptions{}); !errors.Is(err, ErrMissingProjectOptions) {
		t.Errorf("RunTiler() error = %v, want ErrMissingProjectOptions", err)
	}
}
