package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	PassCount            prometheus.Counter
	EntriesFetched       prometheus.Counter
	NotificationsSent    prometheus.Counter
	NotificationFailures prometheus.Counter
	FetchFailures        prometheus.Counter
	PassDuration         prometheus.Histogram
	SeenSetSize          prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics on the default registerer
func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith creates new Prometheus metrics on the given registerer
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		PassCount: factory.NewCounter(prometheus.CounterOpts{
			Name: "status_monitor_pass_count",
			Help: "Total number of feed processing passes",
		}),
		EntriesFetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "status_monitor_entries_fetched",
			Help: "Total number of feed entries fetched",
		}),
		NotificationsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "status_monitor_notifications_sent",
			Help: "Total number of incident notifications sent",
		}),
		NotificationFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "status_monitor_notification_failures",
			Help: "Total number of incident notifications that failed to send",
		}),
		FetchFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "status_monitor_fetch_failures",
			Help: "Total number of failed feed fetch or parse attempts",
		}),
		PassDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "status_monitor_pass_duration_seconds",
			Help:    "Time spent per feed processing pass",
			Buckets: prometheus.DefBuckets,
		}),
		SeenSetSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "status_monitor_seen_set_size",
			Help: "Number of incident ids currently held in the seen-set",
		}),
	}
}
