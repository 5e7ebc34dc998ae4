package metrics

import (
	"io"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

// Collectors of the tile builder. A nil *BuilderMetrics is valid and records nothing.
type BuilderMetrics struct {
	FramesTotal         prometheus.Counter
	BuildDurationMs     prometheus.Histogram
	LeafTiles           prometheus.Gauge
	LeafTilesPerFrame   prometheus.Histogram
	ShapesInserted      prometheus.Counter
	CacheHitsTotal      prometheus.Counter
	CacheMissesTotal    prometheus.Counter
	CacheEvictionsTotal prometheus.Counter
}

func NewBuilderMetrics() *BuilderMetrics {
	return &BuilderMetrics{
		FramesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "surface_tiler_frames_total",
			Help: "Total number of frames built",
		}),
		BuildDurationMs: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "surface_tiler_build_duration_ms",
			Help:    "Tile build duration in milliseconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 50, 100, 500},
		}),
		LeafTiles: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "surface_tiler_leaf_tiles",
			Help: "Number of leaf tiles emitted by the last frame",
		}),
		LeafTilesPerFrame: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "surface_tiler_leaf_tiles_per_frame",
			Help:    "Distribution of the number of leaf tiles per frame",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		ShapesInserted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "surface_tiler_shapes_inserted_total",
			Help: "Total number of shapes accepted for tiling",
		}),
		CacheHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "surface_tiler_geometry_cache_hits_total",
			Help: "Total geometry cache hits",
		}),
		CacheMissesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "surface_tiler_geometry_cache_misses_total",
			Help: "Total geometry cache misses",
		}),
		CacheEvictionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "surface_tiler_geometry_cache_evictions_total",
			Help: "Total geometry cache entries pruned",
		}),
	}
}

func (m *BuilderMetrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.FramesTotal,
		m.BuildDurationMs,
		m.LeafTiles,
		m.LeafTilesPerFrame,
		m.ShapesInserted,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.CacheEvictionsTotal,
	}
}

// Registers every collector, returning the first registration error
func (m *BuilderMetrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *BuilderMetrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.collectors()...)
}

func (m *BuilderMetrics) ObserveFrame(elapsed time.Duration, leafTiles int) {
	if m == nil {
		return
	}
	m.FramesTotal.Inc()
	m.BuildDurationMs.Observe(float64(elapsed.Microseconds()) / 1000)
	m.LeafTiles.Set(float64(leafTiles))
	m.LeafTilesPerFrame.Observe(float64(leafTiles))
}

func (m *BuilderMetrics) ShapeInserted() {
	if m == nil {
		return
	}
	m.ShapesInserted.Inc()
}

func (m *BuilderMetrics) CacheHits(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CacheHitsTotal.Add(float64(n))
}

func (m *BuilderMetrics) CacheMisses(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CacheMissesTotal.Add(float64(n))
}

func (m *BuilderMetrics) CacheEvictions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.CacheEvictionsTotal.Add(float64(n))
}

// Writes every metric family of the gatherer in the Prometheus text format
func WriteText(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
