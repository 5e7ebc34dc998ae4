package tiler

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang/glog"
	"github.com/joho/godotenv"
)

const EnvPrefix = "SURFACE_TILER_"

// Loads the given .env files into the process environment. Missing files are skipped and variables already set
// are not overridden.
func LoadEnvFiles(files ...string) {
	for _, f := range files {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			glog.Warningf("cannot load %s: %v", f, err)
		}
	}
}

// Overrides the builder options with the SURFACE_TILER_* variables found by lookup
func ApplyEnv(opt *BuilderOptions, lookup func(string) (string, bool)) error {
	ints := []struct {
		name   string
		target *int
	}{
		{"TOP_LEVEL_ROWS", &opt.TopLevelRows},
		{"TOP_LEVEL_COLUMNS", &opt.TopLevelColumns},
		{"MAX_DEPTH", &opt.MaximumSubdivisionDepth},
		{"TILE_WIDTH", &opt.TileWidth},
		{"TILE_HEIGHT", &opt.TileHeight},
		{"PREPARE_WORKERS", &opt.PrepareWorkers},
	}
	floats := []struct {
		name   string
		target *float64
	}{
		{"SPLIT_SCALE", &opt.SplitScale},
		{"DETAIL_HINT_ORIGIN", &opt.DetailHintOrigin},
		{"EDGE_TOLERANCE", &opt.EdgeTolerance},
	}

	var errs []error
	for _, v := range ints {
		value, ok := lookup(EnvPrefix + v.name)
		if !ok || value == "" {
			continue
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, v.name, err))
			continue
		}
		*v.target = n
	}
	for _, v := range floats {
		value, ok := lookup(EnvPrefix + v.name)
		if !ok || value == "" {
			continue
		}
		f, err := strconv.ParseFloat(value, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, v.name, err))
			continue
		}
		*v.target = f
	}

	return errors.Join(errs...)
}

// Returns a lookup function over a .env file content, for callers that must not touch the process environment
func EnvFileLookup(file string) (func(string) (string, bool), error) {
	values, err := godotenv.Read(file)
	if err != nil {
		return nil, err
	}
	return func(key string) (string, bool) {
		v, ok := values[key]
		return v, ok
	}, nil
}
