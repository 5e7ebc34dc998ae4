/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/tiler"
	"github.com/ecopia-map/surface_tiler/pkg"
	"github.com/ecopia-map/surface_tiler/pkg/algorithm_manager"
	"github.com/ecopia-map/surface_tiler/tools"
	"github.com/golang/glog"
)

const VERSION = "0.3.0"

const logo = `
                  __                   _   _ _
 ___ _   _ _ __ / _| __ _  ___ ___  | |_(_) | ___ _ __
/ __| | | | '__| |_ / _' |/ __/ _ \ | __| | |/ _ \ '__|
\__ \ |_| | |  |  _| (_| | (_|  __/ | |_| | |  __/ |
|___/\__,_|_|  |_|  \__,_|\___\___|  \__|_|_|\___|_|
  Surface shape tiles for virtual globes
  Copyright YYYY - ecopia-map
`

func main() {
	log.SetPrefix("[surface_tiler] ")
	log.SetFlags(log.LUTC | log.Ldate | log.Lmicroseconds | log.Lshortfile)
	defer glog.Flush()

	flagsGlobal := tools.ParseFlagsGlobal()
	glog.V(1).Infoln(tools.FmtJSONString(flagsGlobal))

	if *flagsGlobal.Help {
		showHelp()
		return
	}
	if *flagsGlobal.Version {
		printVersion()
		return
	}

	envFiles := []string{".env"}
	if root, err := tools.GetRootFolder(); err == nil {
		envFiles = append(envFiles, filepath.Join(root, ".env"))
	} else {
		glog.Warningln(err)
	}
	tiler.LoadEnvFiles(envFiles...)

	args := flag.Args()
	if len(args) == 0 {
		log.Fatal("Please specify a subcommand [build|project].")
	}
	cmd, args := args[0], args[1:]

	switch cmd {
	case tools.CommandBuild:
		mainCommandBuild(args)
	case tools.CommandProject:
		mainCommandProject(args)
	default:
		log.Fatalf("Unrecognized command [%q]. Command must be one of [build|project]", cmd)
	}
}

// Handles the flags shared by every command, returns false if the command should not run
func setupCommand(flags tools.TilerFlags) bool {
	// Prints the command line flag description
	if *flags.Help {
		showHelp()
		return false
	}

	if *flags.Version {
		printVersion()
		return false
	}

	// set logging and timestamp logging
	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	if *flags.LogTimestamp {
		tools.EnableLoggerTimestamp()
	}

	return true
}

func mainCommandBuild(args []string) {
	// Retrieve command line args
	flags := tools.ParseFlagsForCommandBuild(args)
	if !setupCommand(flags.TilerFlags) {
		return
	}

	builderOptions := tiler.DefaultBuilderOptions()
	if err := tiler.ApplyEnv(builderOptions, os.LookupEnv); err != nil {
		log.Fatal("Error reading environment: ", err)
	}
	if *flags.MaxDepth > 0 {
		builderOptions.MaximumSubdivisionDepth = *flags.MaxDepth
	}
	if *flags.SplitScale >= 0 {
		builderOptions.SplitScale = *flags.SplitScale
	}
	if *flags.EdgeTolerance > 0 {
		builderOptions.EdgeTolerance = *flags.EdgeTolerance
	}
	if *flags.Workers > 0 {
		builderOptions.PrepareWorkers = *flags.Workers
	}

	// Put args inside a TilerOptions struct
	opts := tiler.TilerOptions{
		Input:             *flags.Input,
		FolderProcessing:  *flags.FolderProcessing,
		Recursive:         *flags.RecursiveFolderProcessing,
		Projection:        tiler.ParseProjection(*flags.Projection),
		PathType:          geometry.ParsePathType(*flags.PathType),
		SimplifyThreshold: *flags.Simplify,
		Verify:            *flags.Verify,
		Metrics:           *flags.Metrics,
		Command:           tools.CommandBuild,
		Builder:           builderOptions,
		View: &tiler.ViewOptions{
			Latitude:    *flags.Latitude,
			Longitude:   *flags.Longitude,
			Altitude:    *flags.Altitude,
			FieldOfView: *flags.FieldOfView,
			Width:       *flags.Width,
			Height:      *flags.Height,
		},
		BuildOptions: &tiler.TilerBuildOptions{
			Output: *flags.Output,
		},
	}

	// Validate TilerOptions
	if msg, res := validateOptionsForCommandBuild(&opts); !res {
		log.Fatal("Error parsing input parameters: " + msg)
	}

	algorithmManager, err := algorithm_manager.NewAlgorithmManager(&opts)
	if err != nil {
		log.Fatal("Error preparing the tiler: ", err)
	}

	// Starts the tiler
	defer timeTrack(time.Now(), "build")
	err = pkg.NewTiler(tools.NewStandardFileFinder(), algorithmManager).RunTiler(&opts)

	if err != nil {
		log.Fatal("Error while tiling: ", err)
	} else {
		tools.LogOutput("Build Completed")
	}
}

// Validates the input options provided to the command line tool checking
// that the input exists and the view and builder settings are usable
func validateOptionsForCommandBuild(opts *tiler.TilerOptions) (string, bool) {
	if _, err := os.Stat(opts.Input); os.IsNotExist(err) {
		return "Input file/folder not found", false
	}
	if opts.BuildOptions.Output == "" {
		return "Output folder is required", false
	}

	if opts.Projection == "" {
		return "projection should be one of WGS84, NORTH_POLAR, SOUTH_POLAR, NORTH_UPS, SOUTH_UPS", false
	}
	if opts.PathType == "" {
		return "path-type should be one of GREAT_CIRCLE, RHUMB_LINE, LINEAR", false
	}

	if opts.View.Latitude < -90 || opts.View.Latitude > 90 || opts.View.Longitude < -180 || opts.View.Longitude > 180 {
		return "view location out of range", false
	}
	if opts.View.Width < 0 || opts.View.Height < 0 {
		return "viewport size cannot be negative", false
	}
	if opts.View.FieldOfView <= 0 || opts.View.FieldOfView >= 180 {
		return "fov should be between 0 and 180 degrees", false
	}
	if opts.SimplifyThreshold < 0 {
		return "simplify threshold cannot be negative", false
	}

	if err := opts.Builder.Validate(); err != nil {
		return err.Error(), false
	}

	return "", true
}

func mainCommandProject(args []string) {
	flags := tools.ParseFlagsForCommandProject(args)
	if !setupCommand(flags.TilerFlags) {
		return
	}

	opts := tiler.TilerOptions{
		Projection: tiler.ParseProjection(*flags.Projection),
		Command:    tools.CommandProject,
		ProjectOptions: &tiler.TilerProjectOptions{
			Inverse:   *flags.Inverse,
			Latitude:  *flags.Latitude,
			Longitude: *flags.Longitude,
			X:         *flags.X,
			Y:         *flags.Y,
		},
	}

	if opts.Projection == "" {
		log.Fatal("Error parsing input parameters: unrecognized projection " + *flags.Projection)
	}

	algorithmManager, err := algorithm_manager.NewAlgorithmManager(&opts)
	if err != nil {
		log.Fatal("Error preparing the projection: ", err)
	}

	if err := pkg.NewTilerProject(algorithmManager).RunTiler(&opts); err != nil {
		log.Fatal("Error while projecting: ", err)
	}
}

func timeTrack(start time.Time, name string) {
	elapsed := time.Since(start)
	tools.LogOutput(fmt.Sprintf("%s took %s", name, elapsed))
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("surface_tiler prepares surface shapes read from GeoJSON files and assembles them into view dependent tiles")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Usage: surface_tiler [flags] build|project [command flags]")
	fmt.Println("Run a command with -help to list its flags.")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
