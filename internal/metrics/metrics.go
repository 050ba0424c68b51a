// Package metrics exposes ephemeris engine activity as Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements ephemeris.Recorder on top of Prometheus collectors.
type Collector struct {
	gatherer prometheus.Gatherer

	Computations        *prometheus.CounterVec
	LunarFallbacks      *prometheus.CounterVec
	AzimuthDegenerates  prometheus.Counter
	TerminatorEstimates prometheus.Counter
	ComputeDuration     prometheus.Histogram
}

// NewCollector registers the metrics against reg, defaulting to the global
// Prometheus registry when nil. Registering twice against the same registry
// returns the existing collectors.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	computations, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skylight_ephemeris_computations_total",
		Help: "Total number of ephemeris computations, labeled by solar model.",
	}, []string{"solar_model"}), "skylight_ephemeris_computations_total")
	if err != nil {
		return nil, err
	}

	fallbacks, err := register(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skylight_lunar_fallbacks_total",
		Help: "Lunar provider failures replaced by fallback values, labeled by provider.",
	}, []string{"provider"}), "skylight_lunar_fallbacks_total")
	if err != nil {
		return nil, err
	}

	degenerate, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skylight_azimuth_degenerate_total",
		Help: "Solar positions within the zenith/nadir degeneracy threshold.",
	}), "skylight_azimuth_degenerate_total")
	if err != nil {
		return nil, err
	}

	estimates, err := register(reg, prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skylight_terminator_estimates_total",
		Help: "Terminator longitudes computed with the time-of-day estimate.",
	}), "skylight_terminator_estimates_total")
	if err != nil {
		return nil, err
	}

	duration, err := register(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skylight_compute_duration_seconds",
		Help:    "Ephemeris computation latency in seconds.",
		Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.01},
	}), "skylight_compute_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:            gatherer,
		Computations:        computations,
		LunarFallbacks:      fallbacks,
		AzimuthDegenerates:  degenerate,
		TerminatorEstimates: estimates,
		ComputeDuration:     duration,
	}, nil
}

// ObserveCompute records one computation and its duration.
func (c *Collector) ObserveCompute(solarModel string, d time.Duration) {
	if c == nil {
		return
	}
	c.Computations.WithLabelValues(solarModel).Inc()
	c.ComputeDuration.Observe(d.Seconds())
}

// LunarFallback records a lunar provider failure.
func (c *Collector) LunarFallback(provider string) {
	if c == nil {
		return
	}
	c.LunarFallbacks.WithLabelValues(provider).Inc()
}

// AzimuthDegenerate records an undefined solar azimuth.
func (c *Collector) AzimuthDegenerate() {
	if c == nil {
		return
	}
	c.AzimuthDegenerates.Inc()
}

// TerminatorEstimated records use of the simplified terminator estimate.
func (c *Collector) TerminatorEstimated() {
	if c == nil {
		return
	}
	c.TerminatorEstimates.Inc()
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T, name string) (T, error) {
	if err := reg.Register(c); err != nil {
		var zero T
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
			return zero, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return zero, err
	}
	return c, nil
}
