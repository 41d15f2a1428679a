package metrics

import "github.com/prometheus/client_golang/prometheus"

// Result label values
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
	ResultInvalid = "invalid"
)

// Prometheus metrics for the best-effort side effects. Failures here never
// fail a request, so these counters are the only place they add up.
var (
	PushDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "push_deliveries_total",
			Help: "Push notification deliveries by operation and result",
		},
		[]string{"op", "result"},
	)

	PushProviderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "push_provider_request_duration_seconds",
			Help:    "Duration of push provider calls",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	StaleTokensPrunedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "push_stale_tokens_pruned_total",
			Help: "Device tokens removed after the provider reported them unregistered",
		},
	)

	LiveSyncWritesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "live_sync_writes_total",
			Help: "Live store projection writes by collection and result",
		},
		[]string{"collection", "result"},
	)

	EngagementEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_events_total",
			Help: "Engagement stream events processed by result",
		},
		[]string{"result"},
	)
)

// Register registers all Prometheus metrics with the default registry.
func Register() {
	prometheus.MustRegister(PushDeliveriesTotal)
	prometheus.MustRegister(PushProviderDuration)
	prometheus.MustRegister(StaleTokensPrunedTotal)
	prometheus.MustRegister(LiveSyncWritesTotal)
	prometheus.MustRegister(EngagementEventsTotal)
}
