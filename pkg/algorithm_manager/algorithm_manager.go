package algorithm_manager

import (
	"github.com/ecopia-map/surface_tiler/internal/data"
	"github.com/ecopia-map/surface_tiler/internal/globe"
	"github.com/ecopia-map/surface_tiler/internal/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

type AlgorithmManager interface {
	GetGlobe() *globe.Globe
	GetShapeLoader() data.ShapeLoader
	GetMetrics() *metrics.BuilderMetrics
	GetGatherer() prometheus.Gatherer
}
