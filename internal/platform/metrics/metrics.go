package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the pledge service.
type Metrics struct {
	PledgesCreated  prometheus.Counter
	PledgesRejected *prometheus.CounterVec
	TotalCacheHits  prometheus.Counter
	TotalCacheMiss  prometheus.Counter
	EmailsSent      prometheus.Counter
	EmailsFailed    prometheus.Counter
	RequestLatency  *prometheus.HistogramVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		PledgesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pledge_pledges_created_total",
			Help: "Total number of pledges persisted",
		}),
		PledgesRejected: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "pledge_pledges_rejected_total",
			Help: "Total number of pledge submissions rejected, by reason",
		}, []string{"reason"}),
		TotalCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pledge_total_cache_hits_total",
			Help: "Cache hits serving the running pledge total",
		}),
		TotalCacheMiss: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pledge_total_cache_misses_total",
			Help: "Cache misses serving the running pledge total",
		}),
		EmailsSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pledge_thank_you_emails_sent_total",
			Help: "Thank-you emails delivered by the mail worker",
		}),
		EmailsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "pledge_thank_you_emails_failed_total",
			Help: "Thank-you email deliveries that errored",
		}),
		RequestLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "pledge_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// NewForTest creates metrics on a private registry so parallel tests do not
// collide on promauto's default registerer.
func NewForTest() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		PledgesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "pledge_pledges_created_total",
		}),
		PledgesRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "pledge_pledges_rejected_total",
		}, []string{"reason"}),
		TotalCacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "pledge_total_cache_hits_total",
		}),
		TotalCacheMiss: factory.NewCounter(prometheus.CounterOpts{
			Name: "pledge_total_cache_misses_total",
		}),
		EmailsSent: factory.NewCounter(prometheus.CounterOpts{
			Name: "pledge_thank_you_emails_sent_total",
		}),
		EmailsFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "pledge_thank_you_emails_failed_total",
		}),
		RequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name: "pledge_http_request_duration_seconds",
		}, []string{"route", "method"}),
	}
}
