package tiler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
)

var ErrInvalidOptions = errors.New("invalid builder options")

type Projection string

const (
	ProjectionWgs84      Projection = "WGS84"
	ProjectionNorthPolar Projection = "NORTH_POLAR"
	ProjectionSouthPolar Projection = "SOUTH_POLAR"
	ProjectionNorthUPS   Projection = "NORTH_UPS"
	ProjectionSouthUPS   Projection = "SOUTH_UPS"
)

func (p Projection) String() string {
	return string(p)
}

func ParseProjection(value string) Projection {
	normalizedValue := strings.Trim(strings.ToUpper(value), " ")
	normalizedValue = strings.ReplaceAll(normalizedValue, "-", "_")
	switch normalizedValue {
	case "WGS84", "3D", "ELLIPSOID":
		return ProjectionWgs84
	case "NORTH_POLAR", "POLAR_NORTH":
		return ProjectionNorthPolar
	case "SOUTH_POLAR", "POLAR_SOUTH":
		return ProjectionSouthPolar
	case "NORTH_UPS", "UPS_NORTH":
		return ProjectionNorthUPS
	case "SOUTH_UPS", "UPS_SOUTH":
		return ProjectionSouthUPS
	}
	return ""
}

// Pole of the polar projections, PoleNone for the ellipsoid
func (p Projection) Pole() geometry.Pole {
	switch p {
	case ProjectionNorthPolar, ProjectionNorthUPS:
		return geometry.PoleNorth
	case ProjectionSouthPolar, ProjectionSouthUPS:
		return geometry.PoleSouth
	}
	return geometry.PoleNone
}

// Contains the options of the surface shape tile builder
type BuilderOptions struct {
	TopLevelRows            int     // Rows of the fixed top level grid
	TopLevelColumns         int     // Columns of the fixed top level grid
	MaximumSubdivisionDepth int     // Number of levels, the deepest tiles are at level MaximumSubdivisionDepth-1
	TileWidth               int     // Tile width in texels
	TileHeight              int     // Tile height in texels
	SplitScale              float64 // Ratio of cell size to pixel size above which a tile is split
	DetailHintOrigin        float64 // Baseline detail control, kept for callers tuning SplitScale from a detail hint
	EdgeTolerance           float64 // Default edge subdivision tolerance in degrees applied to loaded shapes
	PrepareWorkers          int     // Geometry preparation goroutines, 1 prepares on the calling goroutine
}

func DefaultBuilderOptions() *BuilderOptions {
	return &BuilderOptions{
		TopLevelRows:            4,
		TopLevelColumns:         8,
		MaximumSubdivisionDepth: 15,
		TileWidth:               32,
		TileHeight:              32,
		SplitScale:              1.9,
		DetailHintOrigin:        1.1,
		EdgeTolerance:           1,
		PrepareWorkers:          1,
	}
}

func (opt *BuilderOptions) Copy() *BuilderOptions {
	newOpt := *opt
	return &newOpt
}

func (opt *BuilderOptions) Validate() error {
	switch {
	case opt.TopLevelRows < 1 || opt.TopLevelColumns < 1:
		return fmt.Errorf("%w: top level grid %dx%d", ErrInvalidOptions, opt.TopLevelRows, opt.TopLevelColumns)
	case opt.MaximumSubdivisionDepth < 1:
		return fmt.Errorf("%w: maximum subdivision depth %d", ErrInvalidOptions, opt.MaximumSubdivisionDepth)
	case opt.TileWidth < 1 || opt.TileHeight < 1:
		return fmt.Errorf("%w: tile size %dx%d", ErrInvalidOptions, opt.TileWidth, opt.TileHeight)
	case opt.SplitScale < 0:
		return fmt.Errorf("%w: split scale %v", ErrInvalidOptions, opt.SplitScale)
	case opt.EdgeTolerance <= 0:
		return fmt.Errorf("%w: edge tolerance %v", ErrInvalidOptions, opt.EdgeTolerance)
	case opt.PrepareWorkers < 1:
		return fmt.Errorf("%w: prepare workers %d", ErrInvalidOptions, opt.PrepareWorkers)
	}
	return nil
}

// Extent of a top level tile
func (opt *BuilderOptions) LevelZeroDelta() geometry.Location {
	return geometry.NewLocation(180/float64(opt.TopLevelRows), 360/float64(opt.TopLevelColumns))
}

// Camera used by the command line tool to build a single frame
type ViewOptions struct {
	Latitude    float64 // Latitude of the looked at location
	Longitude   float64 // Longitude of the looked at location
	Altitude    float64 // Eye altitude in meters
	FieldOfView float64 // Horizontal field of view in degrees
	Width       int     // Viewport width in pixels
	Height      int     // Viewport height in pixels
}

// Contains the options of the command line tool
type TilerOptions struct {
	Input             string            // Input GeoJSON file/folder
	FolderProcessing  bool              // Enables the processing of all GeoJSON files in folder
	Recursive         bool              // Recursive lookup of GeoJSON files in subfolders
	Projection        Projection        // Projection of the globe
	PathType          geometry.PathType // Path type of shapes that do not specify one
	SimplifyThreshold float64           // Douglas-Peucker threshold in degrees, 0 disables simplification
	Verify            bool              // Checks the emitted tiles
	Metrics           bool              // Dumps the collected metrics at the end of the run

	Command        string
	Builder        *BuilderOptions
	View           *ViewOptions
	BuildOptions   *TilerBuildOptions
	ProjectOptions *TilerProjectOptions
}

type TilerBuildOptions struct {
	Output string // Output folder of tiles.json
}

type TilerProjectOptions struct {
	Inverse   bool    // Converts X/Y into a geographic location
	Latitude  float64 // Input latitude of a forward projection
	Longitude float64 // Input longitude of a forward projection
	X         float64 // Input easting of an inverse projection
	Y         float64 // Input northing of an inverse projection
}

func (opt *TilerOptions) Copy() *TilerOptions {
	newOpt := *opt

	if opt.Builder != nil {
		newOpt.Builder = opt.Builder.Copy()
	}

	if opt.View != nil {
		viewOpt := *opt.View
		newOpt.View = &viewOpt
	}

	if opt.BuildOptions != nil {
		buildOpt := *opt.BuildOptions
		newOpt.BuildOptions = &buildOpt
	}

	if opt.ProjectOptions != nil {
		projectOpt := *opt.ProjectOptions
		newOpt.ProjectOptions = &projectOpt
	}

	return &newOpt
}
