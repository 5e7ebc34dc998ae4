package tiler

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
)

func TestParseProjection(t *testing.T) {
	tests := []struct {
		in   string
		want Projection
		pole geometry.Pole
	}{
		{"wgs84", ProjectionWgs84, geometry.PoleNone},
		{" north-polar ", ProjectionNorthPolar, geometry.PoleNorth},
		{"SOUTH_POLAR", ProjectionSouthPolar, geometry.PoleSouth},
		{"ups-north", ProjectionNorthUPS, geometry.PoleNorth},
		{"south_ups", ProjectionSouthUPS, geometry.PoleSouth},
		{"mercator", "", geometry.PoleNone},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseProjection(tt.in)
			if got != tt.want {
				t.Errorf("ParseProjection(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if got.Pole() != tt.pole {
				t.Errorf("Pole() = %v, want %v", got.Pole(), tt.pole)
			}
		})
	}
}

func TestBuilderOptions_Validate(t *testing.T) {
	if err := DefaultBuilderOptions().Validate(); err != nil {
		t.Fatalf("defaults are invalid: %v", err)
	}

	tests := []struct {
		name   string
		modify func(o *BuilderOptions)
	}{
		{"no rows", func(o *BuilderOptions) { o.TopLevelRows = 0 }},
		{"no columns", func(o *BuilderOptions) { o.TopLevelColumns = -1 }},
		{"no depth", func(o *BuilderOptions) { o.MaximumSubdivisionDepth = 0 }},
		{"no tile width", func(o *BuilderOptions) { o.TileWidth = 0 }},
		{"negative split scale", func(o *BuilderOptions) { o.SplitScale = -1 }},
		{"zero tolerance", func(o *BuilderOptions) { o.EdgeTolerance = 0 }},
		{"no workers", func(o *BuilderOptions) { o.PrepareWorkers = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := DefaultBuilderOptions()
			tt.modify(o)
			if err := o.Validate(); !errors.Is(err, ErrInvalidOptions) {
				t.Errorf("Validate() = %v, want ErrInvalidOptions", err)
			}
		})
	}

	zero := DefaultBuilderOptions()
	zero.SplitScale = 0
	if err := zero.Validate(); err != nil {
		t.Errorf("zero split scale should be accepted: %v", err)
	}
}

func TestBuilderOptions_LevelZeroDelta(t *testing.T) {
	d := DefaultBuilderOptions().LevelZeroDelta()
	if d.Latitude != 45 || d.Longitude != 45 {
		t.Errorf("LevelZeroDelta = %v, want 45x45", d)
	}
}

func TestTilerOptions_Copy(t *testing.T) {
	opt := &TilerOptions{
		Input:        "in",
		Builder:      DefaultBuilderOptions(),
		View:         &ViewOptions{Width: 10},
		BuildOptions: &TilerBuildOptions{Output: "out"},
	}
	c := opt.Copy()
	c.Builder.SplitScale = 3
	c.View.Width = 20
	c.BuildOptions.Output = "other"

	if opt.Builder.SplitScale != 1.9 || opt.View.Width != 10 || opt.BuildOptions.Output != "out" {
		t.Error("Copy shares nested options with the original")
	}
	if c.ProjectOptions != nil {
		t.Error("nil nested options should stay nil")
	}
}

func TestApplyEnv(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".env")
	content := "SURFACE_TILER_MAX_DEPTH=6\nSURFACE_TILER_SPLIT_SCALE=2.5\nSURFACE_TILER_PREPARE_WORKERS=4\nOTHER=1\n"
	if err := os.WriteFile(file, []byte(content), 0666); err != nil {
		t.Fatal(err)
	}

	lookup, err := EnvFileLookup(file)
	if err != nil {
		t.Fatal(err)
	}

	o := DefaultBuilderOptions()
	if err := ApplyEnv(o, lookup); err != nil {
		t.Fatal(err)
	}
	if o.MaximumSubdivisionDepth != 6 || o.SplitScale != 2.5 || o.PrepareWorkers != 4 {
		t.Errorf("options = %+v", o)
	}
	if o.TopLevelRows != 4 {
		t.Error("unset variables should keep defaults")
	}
}

func TestApplyEnv_InvalidValue(t *testing.T) {
	lookup := func(key string) (string, bool) {
		if key == EnvPrefix+"TILE_WIDTH" {
			return "wide", true
		}
		return "", false
	}
	o := DefaultBuilderOptions()
	if err := ApplyEnv(o, lookup); err == nil {
		t.Error("expected a parse error")
	}
	if o.TileWidth != 32 {
		t.Errorf("TileWidth changed to %d", o.TileWidth)
	}
}

func TestLoadEnvFiles(t *testing.T) {
	const key = EnvPrefix + "TEST_LOAD_ENV"
	file := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(file, []byte(key+"=loaded\n"), 0666); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(key) })

	LoadEnvFiles(filepath.Join(t.TempDir(), "missing.env"), file)

	if got := os.Getenv(key); got != "loaded" {
		t.Errorf("%s = %q, want loaded", key, got)
	}
}
