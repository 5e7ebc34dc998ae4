package algorithm_manager

import (
	"fmt"

	"github.com/ecopia-map/surface_tiler/internal/data"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/ecopia-map/surface_tiler/internal/metrics"
	"github.com/ecopia-map/surface_tiler/internal/projections"
	"github.com/ecopia-map/surface_tiler/internal/tiler"
	"github.com/prometheus/client_golang/prometheus"
)

type StandardAlgorithmManager struct {
	options  *tiler.TilerOptions
	globe    *globe.Globe
	loader   data.ShapeLoader
	metrics  *metrics.BuilderMetrics
	registry *prometheus.Registry
}

func NewAlgorithmManager(opts *tiler.TilerOptions) (AlgorithmManager, error) {
	g, err := NewGlobe(opts.Projection)
	if err != nil {
		return nil, err
	}

	loaderOptions := data.DefaultLoaderOptions()
	if opts.PathType != "" {
		loaderOptions.PathType = opts.PathType
	}
	if opts.Builder != nil {
		loaderOptions.EdgeTolerance = opts.Builder.EdgeTolerance
	}
	loaderOptions.SimplifyThreshold = opts.SimplifyThreshold

	registry := prometheus.NewRegistry()
	builderMetrics := metrics.NewBuilderMetrics()
	if err := builderMetrics.Register(registry); err != nil {
		return nil, err
	}

	return &StandardAlgorithmManager{
		options:  opts,
		globe:    g,
		loader:   data.NewGeoJSONLoader(loaderOptions),
		metrics:  builderMetrics,
		registry: registry,
	}, nil
}

// Creates the globe of the given projection, an empty projection selects the ellipsoid
func NewGlobe(projection tiler.Projection) (*globe.Globe, error) {
	switch projection {
	case "", tiler.ProjectionWgs84:
		return globe.NewGlobe(nil), nil
	case tiler.ProjectionNorthPolar, tiler.ProjectionSouthPolar:
		return globe.NewGlobe(projections.NewPolarEquidistant(projection.Pole())), nil
	case tiler.ProjectionNorthUPS, tiler.ProjectionSouthUPS:
		return globe.NewGlobe(projections.NewUPS(projection.Pole())), nil
	}
	return nil, fmt.Errorf("unrecognized projection %q", projection)
}

func (m *StandardAlgorithmManager) GetGlobe() *globe.Globe {
	return m.globe
}

func (m *StandardAlgorithmManager) GetShapeLoader() data.ShapeLoader {
	return m.loader
}

func (m *StandardAlgorithmManager) GetMetrics() *metrics.BuilderMetrics {
	return m.metrics
}

func (m *StandardAlgorithmManager) GetGatherer() prometheus.Gatherer {
	return m.registry
}
