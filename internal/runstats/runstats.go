// Package runstats aggregates finished descents into Prometheus metrics.
// Nothing is served; the registry is written in the text exposition format
// for a node_exporter textfile collector or for ad-hoc inspection.
package runstats

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/san-kum/descentsim/internal/sim"
)

const namespace = "descentsim"

type Collector struct {
	registry   *prometheus.Registry
	runs       *prometheus.CounterVec
	touchdown  prometheus.Histogram
	flightTime prometheus.Histogram
	fuelLeft   prometheus.Histogram
	peakG      prometheus.Histogram
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished descents by controller and outcome.",
		}, []string{"controller", "outcome"}),
		touchdown: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "touchdown_velocity_mps",
			Help:      "Vertical speed at touchdown.",
			Buckets:   []float64{2, 4, 6, 8, 10, 12, 20, 50, 100},
		}),
		flightTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "flight_time_seconds",
			Help:      "Simulated time from entry interface to the end of the run.",
			Buckets:   prometheus.LinearBuckets(60, 20, 8),
		}),
		fuelLeft: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fuel_remaining_ratio",
			Help:      "Fraction of descent propellant left at the end of the run.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 10),
		}),
		peakG: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "peak_g_load",
			Help:      "Peak deceleration in Earth g.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
		}),
	}

	c.registry.MustRegister(c.runs, c.touchdown, c.flightTime, c.fuelLeft, c.peakG)
	return c
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Record adds one run. Only conclusive runs contribute a touchdown speed.
func (c *Collector) Record(controller string, sum *sim.Summary) {
	c.runs.WithLabelValues(controller, sum.Outcome.String()).Inc()
	c.flightTime.Observe(sum.Time)
	c.peakG.Observe(sum.PeakGLoad)
	if sum.FuelMax > 0 {
		c.fuelLeft.Observe(sum.FinalFuel / sum.FuelMax)
	}
	if sum.Outcome.Conclusive() {
		c.touchdown.Observe(sum.FinalVelocity)
	}
}

// WriteTextfile atomically writes the registry to path.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}
