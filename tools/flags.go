package tools

import (
	"flag"

	"github.com/golang/glog"
)

const (
	CommandBuild   = "build"
	CommandProject = "project"
)

type FlagsGlobal struct {
	Help    *bool `json:"help"`
	Version *bool `json:"version"`
}

type TilerFlags struct {
	Input        *string `json:"input"`
	Projection   *string `json:"projection"`
	PathType     *string `json:"path_type"`
	Silent       *bool
	LogTimestamp *bool
	Help         *bool
	Version      *bool
}

type FlagsForCommandBuild struct {
	TilerFlags
	Output                    *string
	FolderProcessing          *bool
	RecursiveFolderProcessing *bool
	Latitude                  *float64
	Longitude                 *float64
	Altitude                  *float64
	FieldOfView               *float64 `json:"fov"`
	Width                     *int
	Height                    *int
	MaxDepth                  *int     `json:"max_depth"`
	SplitScale                *float64 `json:"split_scale"`
	EdgeTolerance             *float64 `json:"edge_tolerance"`
	Workers                   *int
	Simplify                  *float64
	Verify                    *bool
	Metrics                   *bool
}

type FlagsForCommandProject struct {
	TilerFlags
	Inverse   *bool
	Latitude  *float64
	Longitude *float64
	X         *float64
	Y         *float64
}

func ParseFlagsGlobal() FlagsGlobal {
	help := defineBoolFlag("help", "h", false, "Displays this help.")
	version := defineBoolFlag("version", "", false, "Displays the version of surface_tiler.")

	flag.Parse()

	return FlagsGlobal{
		Help:    help,
		Version: version,
	}
}

func defineTilerFlags(flagCommand *flag.FlagSet, inputUsage string) TilerFlags {
	return TilerFlags{
		Input:        defineStringFlagCommand(flagCommand, "input", "i", "", inputUsage),
		Projection:   defineStringFlagCommand(flagCommand, "projection", "p", "WGS84", "Globe projection, one of 'WGS84', 'NORTH_POLAR', 'SOUTH_POLAR', 'NORTH_UPS', 'SOUTH_UPS'."),
		PathType:     defineStringFlagCommand(flagCommand, "path-type", "", "GREAT_CIRCLE", "Path type of shapes that do not specify one, one of 'GREAT_CIRCLE', 'RHUMB_LINE', 'LINEAR'."),
		Silent:       defineBoolFlagCommand(flagCommand, "silent", "s", false, "Use to suppress all the non-error messages."),
		LogTimestamp: defineBoolFlagCommand(flagCommand, "timestamp", "t", false, "Adds timestamp to log messages."),
		Help:         defineBoolFlagCommand(flagCommand, "help", "h", false, "Displays this help."),
		Version:      defineBoolFlagCommand(flagCommand, "version", "v", false, "Displays the version of surface_tiler."),
	}
}

func ParseFlagsForCommandBuild(args []string) FlagsForCommandBuild {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-build", flag.ExitOnError)

	tilerFlags := defineTilerFlags(flagCommand, "Specifies the input GeoJSON file/folder.")
	output := defineStringFlagCommand(flagCommand, "output", "o", "", "Specifies the output folder where to write tiles.json.")
	folderProcessing := defineBoolFlagCommand(flagCommand, "folder", "f", false, "Enables processing of all GeoJSON files from input folder. Input must be a folder if specified")
	recursiveFolderProcessing := defineBoolFlagCommand(flagCommand, "recursive", "r", false, "Enables recursive lookup for all GeoJSON files inside the subfolders")
	latitude := defineFloat64FlagCommand(flagCommand, "lat", "", 0, "Latitude in degrees of the location the view looks at.")
	longitude := defineFloat64FlagCommand(flagCommand, "lon", "", 0, "Longitude in degrees of the location the view looks at.")
	altitude := defineFloat64FlagCommand(flagCommand, "altitude", "a", 1e7, "Eye altitude in meters.")
	fov := defineFloat64FlagCommand(flagCommand, "fov", "", 45, "Horizontal field of view in degrees.")
	width := defineIntFlagCommand(flagCommand, "width", "", 1024, "Viewport width in pixels.")
	height := defineIntFlagCommand(flagCommand, "height", "", 768, "Viewport height in pixels.")
	maxDepth := defineIntFlagCommand(flagCommand, "max-depth", "", 0, "Maximum subdivision depth, 0 keeps the configured value.")
	splitScale := defineFloat64FlagCommand(flagCommand, "split-scale", "", -1, "Ratio of texel to pixel size above which tiles are split, negative keeps the configured value.")
	edgeTolerance := defineFloat64FlagCommand(flagCommand, "edge-tolerance", "", 0, "Edge subdivision tolerance in degrees, 0 keeps the configured value.")
	workers := defineIntFlagCommand(flagCommand, "workers", "w", 0, "Number of geometry preparation goroutines, 0 keeps the configured value.")
	simplify := defineFloat64FlagCommand(flagCommand, "simplify", "", 0, "Douglas-Peucker simplification threshold in degrees applied to the input geometries, 0 disables it.")
	verify := defineBoolFlagCommand(flagCommand, "verify", "", false, "Checks the consistency of the built tiles.")
	metrics := defineBoolFlagCommand(flagCommand, "metrics", "m", false, "Prints the collected metrics at the end of the run.")

	flagCommand.Parse(args)

	return FlagsForCommandBuild{
		TilerFlags:                tilerFlags,
		Output:                    output,
		FolderProcessing:          folderProcessing,
		RecursiveFolderProcessing: recursiveFolderProcessing,
		Latitude:                  latitude,
		Longitude:                 longitude,
		Altitude:                  altitude,
		FieldOfView:               fov,
		Width:                     width,
		Height:                    height,
		MaxDepth:                  maxDepth,
		SplitScale:                splitScale,
		EdgeTolerance:             edgeTolerance,
		Workers:                   workers,
		Simplify:                  simplify,
		Verify:                    verify,
		Metrics:                   metrics,
	}
}

func ParseFlagsForCommandProject(args []string) FlagsForCommandProject {
	glog.V(1).Infoln(FmtJSONString(args))

	flagCommand := flag.NewFlagSet("command-project", flag.ExitOnError)

	tilerFlags := defineTilerFlags(flagCommand, "Unused by this command.")
	inverse := defineBoolFlagCommand(flagCommand, "inverse", "", false, "Converts -x/-y into a geographic location instead of projecting -lat/-lon.")
	latitude := defineFloat64FlagCommand(flagCommand, "lat", "", 0, "Latitude in degrees to project.")
	longitude := defineFloat64FlagCommand(flagCommand, "lon", "", 0, "Longitude in degrees to project.")
	x := defineFloat64FlagCommand(flagCommand, "x", "", 0, "Easting in meters to unproject.")
	y := defineFloat64FlagCommand(flagCommand, "y", "", 0, "Northing in meters to unproject.")

	flagCommand.Parse(args)

	return FlagsForCommandProject{
		TilerFlags: tilerFlags,
		Inverse:    inverse,
		Latitude:   latitude,
		Longitude:  longitude,
		X:          x,
		Y:          y,
	}
}

func defineBoolFlag(name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flag.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flag.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineStringFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagCommand.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagCommand.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineFloat64FlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue float64, usage string) *float64 {
	var output float64
	flagCommand.Float64Var(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.Float64Var(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}

func defineBoolFlagCommand(flagCommand *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagCommand.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagCommand.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
