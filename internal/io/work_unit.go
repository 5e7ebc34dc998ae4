package io

import (
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/ecopia-map/surface_tiler/internal/shapes"
)

// Contains the minimal data needed to prepare the geometry of a single shape
type WorkUnit struct {
	Shape shapes.Shape
	Globe *globe.Globe
}
