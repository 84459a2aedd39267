package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineCollector bundles Prometheus metrics for the ISL planning
// pipeline and provides helpers to wire them into HTTP handlers.
type PipelineCollector struct {
	gatherer prometheus.Gatherer

	StageDurations *prometheus.HistogramVec

	Satellites       prometheus.Gauge
	IslLinks         prometheus.Gauge
	RoutesInstalled  prometheus.Gauge
	RoutesSkipped    prometheus.Gauge
	MeshConnectivity prometheus.Gauge
}

// NewPipelineCollector registers pipeline Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when nil.
func NewPipelineCollector(reg prometheus.Registerer) (*PipelineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "isl_pipeline_stage_duration_seconds",
		Help:    "Wall-clock duration of each ISL planning stage.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
	}, []string{"stage"})
	durations, err := registerHistogramVec(reg, durations, "isl_pipeline_stage_duration_seconds")
	if err != nil {
		return nil, err
	}

	satellites, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "isl_constellation_satellites",
		Help: "Number of satellites in the planned constellation.",
	}), "isl_constellation_satellites")
	if err != nil {
		return nil, err
	}
	links, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "isl_links",
		Help: "Number of unique ISL links in the planned mesh.",
	}), "isl_links")
	if err != nil {
		return nil, err
	}
	installed, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "isl_routes_installed",
		Help: "Host routes installed across the constellation by the last plan.",
	}), "isl_routes_installed")
	if err != nil {
		return nil, err
	}
	skipped, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "isl_routes_skipped",
		Help: "Ordered pairs the last plan could not install a route for.",
	}), "isl_routes_skipped")
	if err != nil {
		return nil, err
	}
	connectivity, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "isl_mesh_connectivity_ratio",
		Help: "Fraction of ordered satellite pairs that are mutually reachable.",
	}), "isl_mesh_connectivity_ratio")
	if err != nil {
		return nil, err
	}

	return &PipelineCollector{
		gatherer:         gatherer,
		StageDurations:   durations,
		Satellites:       satellites,
		IslLinks:         links,
		RoutesInstalled:  installed,
		RoutesSkipped:    skipped,
		MeshConnectivity: connectivity,
	}, nil
}

// ObserveStage records the duration of one pipeline stage.
func (c *PipelineCollector) ObserveStage(stage string, d time.Duration) {
	if c == nil || c.StageDurations == nil {
		return
	}
	c.StageDurations.WithLabelValues(stage).Observe(d.Seconds())
}

// SetPlanCounts drives the gauges from a finished plan.
func (c *PipelineCollector) SetPlanCounts(satellites, links, installed, skipped int, connectivity float64) {
	if c == nil {
		return
	}
	if c.Satellites != nil {
		c.Satellites.Set(float64(satellites))
	}
	if c.IslLinks != nil {
		c.IslLinks.Set(float64(links))
	}
	if c.RoutesInstalled != nil {
		c.RoutesInstalled.Set(float64(installed))
	}
	if c.RoutesSkipped != nil {
		c.RoutesSkipped.Set(float64(skipped))
	}
	if c.MeshConnectivity != nil {
		c.MeshConnectivity.Set(connectivity)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PipelineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
