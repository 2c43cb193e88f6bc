package tracking

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/helixml/mt2mw/domain/migration"
)

const metricsNamespace = "mt2mw"

// MetricsReporter counts events per kind in a Prometheus registry and can
// export them as a node-exporter textfile.
type MetricsReporter struct {
	registry *prometheus.Registry
	events   *prometheus.CounterVec
	duration prometheus.Gauge
	finished prometheus.Gauge
}

// NewMetricsReporter creates a MetricsReporter with its own registry.
func NewMetricsReporter() *MetricsReporter {
	r := &MetricsReporter{
		registry: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "events_total",
			Help:      "Migration events by kind.",
		}, []string{"kind"}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of the last run.",
		}),
		finished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}
	r.registry.MustRegister(r.events, r.duration, r.finished)
	return r
}

// Registry returns the registry holding the run metrics.
func (r *MetricsReporter) Registry() *prometheus.Registry { return r.registry }

// OnEvent counts the event.
func (r *MetricsReporter) OnEvent(_ context.Context, event migration.Event) error {
	r.events.WithLabelValues(event.Kind().String()).Inc()
	return nil
}

// Finish records the run duration and completion time.
func (r *MetricsReporter) Finish(started, finished time.Time) {
	r.duration.Set(finished.Sub(started).Seconds())
	r.finished.Set(float64(finished.Unix()))
}

// WriteTextfile writes the metrics to path in the text exposition format.
func (r *MetricsReporter) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
