// Package metrics holds the Prometheus collectors shared by the cache,
// coordinator and storage layers.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Cache events
const (
	EventOptimistic = "optimistic"
	EventConfirm    = "confirm"
	EventRollback   = "rollback"
	EventRefresh    = "refresh"
	EventStale      = "stale_discarded"
	EventLoadError  = "load_error"
)

var (
	// Cache Metrics
	CacheEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_cache_events_total",
			Help: "Total number of cache store events",
		},
		[]string{"store", "event"}, // optimistic, confirm, rollback, refresh, stale_discarded
	)

	CacheItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lifeos_cache_items",
			Help: "Number of items currently visible in a cache store",
		},
		[]string{"store"},
	)

	PendingMutations = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lifeos_cache_pending_mutations",
			Help: "Optimistic mutations awaiting confirmation",
		},
		[]string{"store"},
	)

	// Coordinator Metrics
	MutationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_mutations_total",
			Help: "Total number of coordinated mutations",
		},
		[]string{"collection", "action", "outcome"}, // success, failure, invalid
	)

	// Storage Metrics
	RemoteCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lifeos_remote_call_duration_seconds",
			Help:    "Duration of persistence provider calls",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"backend", "operation"},
	)

	RevalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lifeos_revalidations_total",
			Help: "Total number of scheduled revalidation runs",
		},
		[]string{"status"}, // ok, error
	)
)

// TrackCacheEvent increments the cache event counter.
func TrackCacheEvent(store, event string) {
	CacheEventsTotal.WithLabelValues(store, event).Inc()
}

// SetCacheState records the visible item and pending mutation counts.
func SetCacheState(store string, items, pending int) {
	CacheItems.WithLabelValues(store).Set(float64(items))
	PendingMutations.WithLabelValues(store).Set(float64(pending))
}

// TrackMutation increments the coordinator mutation counter.
func TrackMutation(collection, action, outcome string) {
	MutationsTotal.WithLabelValues(collection, action, outcome).Inc()
}

// TrackRemoteCall times a provider call; call ObserveDuration when it returns.
func TrackRemoteCall(backend, operation string) *prometheus.Timer {
	return prometheus.NewTimer(RemoteCallDuration.WithLabelValues(backend, operation))
}

// TrackRevalidation records the outcome of one scheduled revalidation.
func TrackRevalidation(status string) {
	RevalidationsTotal.WithLabelValues(status).Inc()
}

// Handler exposes the default registry for scraping.
func Handler() http.Handler {
	return promhttp.Handler()
}
