// Package metrics holds the Prometheus instruments. The set is built
// once and passed by reference, never registered globally.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Set groups the bot's Prometheus instruments.
type Set struct {
	UpdatesTotal      *prometheus.CounterVec
	DuplicatesTotal   prometheus.Counter
	CommitFailures    prometheus.Counter
	DeliveryFailures  prometheus.Counter
	HandleDuration    prometheus.Histogram
	AnalyticsRequests prometheus.Counter
}

// New creates and registers the instrument set on the given registerer.
func New(reg prometheus.Registerer) *Set {
	factory := promauto.With(reg)
	return &Set{
		UpdatesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "dailybot_updates_total",
			Help: "Inbound updates by handling branch.",
		}, []string{"branch"}),
		DuplicatesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "dailybot_duplicate_updates_total",
			Help: "Updates short-circuited as redeliveries.",
		}),
		CommitFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "dailybot_commit_failures_total",
			Help: "Profile/event transactions that failed to commit.",
		}),
		DeliveryFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "dailybot_delivery_failures_total",
			Help: "Outbound replies that failed after the state committed.",
		}),
		HandleDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "dailybot_handle_duration_seconds",
			Help:    "Time spent handling one inbound update.",
			Buckets: prometheus.DefBuckets,
		}),
		AnalyticsRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "dailybot_analytics_requests_total",
			Help: "Requests served by the analytics read endpoint.",
		}),
	}
}
