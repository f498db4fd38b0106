package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	FormEventsTotal      *prometheus.CounterVec
	RemoteCallsTotal     *prometheus.CounterVec
	RateCacheLookups     *prometheus.CounterVec
	SuppressedMessages   *prometheus.CounterVec
	StaleRateResponses   prometheus.Counter
	ItemSyncJobsEnqueued prometheus.Counter
}

// NewMetrics registers the collectors on reg. Pass prometheus.DefaultRegisterer
// in the server and a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		FormEventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "form_events_total",
				Help: "Total number of form events handled, by event",
			},
			[]string{"event"},
		),

		RemoteCallsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "erp_remote_calls_total",
				Help: "Total number of ERP remote method calls, by method and outcome",
			},
			[]string{"method", "outcome"},
		),

		RateCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_lookups_total",
				Help: "Exchange rate cache lookups, by result",
			},
			[]string{"result"},
		),

		SuppressedMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "suppressed_validation_messages_total",
				Help: "Host validation messages swallowed by the exchange rate filter",
			},
			[]string{"primitive"},
		),

		StaleRateResponses: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "stale_rate_responses_total",
				Help: "Rate responses discarded because a newer request superseded them",
			},
		),

		ItemSyncJobsEnqueued: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "item_sync_jobs_enqueued_total",
				Help: "Total number of EFRIS item sync jobs accepted by the ERP",
			},
		),
	}
}
