// Package metrics holds the process wide prometheus collectors.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "itemdeck_http_requests_total",
		Help: "The total number of HTTP requests",
	}, []string{"method", "code"})

	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itemdeck_http_request_duration_seconds",
		Help:    "The latency of HTTP requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})

	// Items
	ItemsPageSize = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "itemdeck_items_page_size",
		Help:    "The number of items returned per page",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 500, 1000},
	})

	ItemsGenerateDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "itemdeck_items_generate_duration_seconds",
		Help:    "The latency of item page generation",
		Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
	}, []string{"filtered"})

	// State
	StateReplaces = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "itemdeck_state_replaces_total",
		Help: "The total number of state replace attempts by result",
	}, []string{"result"})

	StateVersion = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "itemdeck_state_version",
		Help: "The last state version written by this process",
	})

	// Events
	EventsPublished = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "itemdeck_events_published_total",
		Help: "The total number of events published",
	}, []string{"result"})

	PublishLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name: "itemdeck_publish_latency_seconds",
		Help: "The latency of event publishing",
	})

	// Realtime
	WatchClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "itemdeck_watch_clients",
		Help: "The number of connected state watch clients",
	})

	WatchDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itemdeck_watch_dropped_total",
		Help: "The total number of watch clients dropped for being too slow",
	})

	// Rate limiting
	RateLimited = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "itemdeck_rate_limited_total",
		Help: "The total number of requests rejected by the rate limiter",
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests)
	prometheus.MustRegister(HTTPDuration)
	prometheus.MustRegister(ItemsPageSize)
	prometheus.MustRegister(ItemsGenerateDuration)
	prometheus.MustRegister(StateReplaces)
	prometheus.MustRegister(StateVersion)
	prometheus.MustRegister(EventsPublished)
	prometheus.MustRegister(PublishLatency)
	prometheus.MustRegister(WatchClients)
	prometheus.MustRegister(WatchDropped)
	prometheus.MustRegister(RateLimited)
}

// ObservePublish records one publish attempt. It matches the OnPublish
// callback of pubsub.PublisherOptions.
func ObservePublish(_ string, err error, latency time.Duration) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	EventsPublished.WithLabelValues(result).Inc()
	PublishLatency.Observe(latency.Seconds())
}
