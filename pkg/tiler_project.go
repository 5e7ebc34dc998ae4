package pkg

import (
	"errors"
	"fmt"

	"github.com/ecopia-map/surface_tiler/internal/geometry"
	"github.com/ecopia-map/surface_tiler/internal/tiler"
	"github.com/ecopia-map/surface_tiler/pkg/algorithm_manager"
	"github.com/ecopia-map/surface_tiler/tools"
	"github.com/golang/geo/r3"
)

var ErrMissingProjectOptions = errors.New("project options are required")

// Result of the project command
type ProjectionResult struct {
	Location geometry.Location
	Point    r3.Vector
}

type TilerProject struct {
	algorithmManager algorithm_manager.AlgorithmManager
	lastResult       *ProjectionResult
}

func NewTilerProject(algorithmManager algorithm_manager.AlgorithmManager) *TilerProject {
	return &TilerProject{algorithmManager: algorithmManager}
}

// Projects a single location, or unprojects a single point, with the globe of the configured projection
func (t *TilerProject) RunTiler(opts *tiler.TilerOptions) error {
	if opts.ProjectOptions == nil {
		return ErrMissingProjectOptions
	}
	p := opts.ProjectOptions
	g := t.algorithmManager.GetGlobe()

	var result ProjectionResult
	if p.Inverse {
		location, _ := g.ComputeLocationFromPoint(r3.Vector{X: p.X, Y: p.Y})
		result = ProjectionResult{Location: location, Point: r3.Vector{X: p.X, Y: p.Y}}
	} else {
		result = ProjectionResult{
			Location: geometry.NewLocation(p.Latitude, p.Longitude),
			Point:    g.ComputePointFromLocation(p.Latitude, p.Longitude, 0),
		}
	}
	t.lastResult = &result

	tools.LogOutput("> projection", g.DisplayName())
	fmt.Printf("lat=%.9f lon=%.9f x=%.3f y=%.3f z=%.3f\n",
		result.Location.Latitude, result.Location.Longitude, result.Point.X, result.Point.Y, result.Point.Z)

	return nil
}

func (t *TilerProject) LastResult() *ProjectionResult {
	return t.lastResult
}
