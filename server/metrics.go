package server

import (
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Adapted from store/postgres/metrics.go's promauto-vec convention: counters
// and histograms registered once at package init, labelled where a route
// breakdown is useful.
var (
	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "registryindex",
		Subsystem: "server",
		Name:      "cache_hits_total",
		Help:      "Page cache hits, by whether they were still within the soft-fresh window.",
	}, []string{"fresh"})

	renderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "registryindex",
		Subsystem: "server",
		Name:      "render_duration_seconds",
		Help:      "Foreground page render duration, by route.",
	}, []string{"route"})

	refreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "registryindex",
		Subsystem: "server",
		Name:      "background_refreshes_total",
		Help:      "Successful background cache refreshes.",
	})

	refreshFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "registryindex",
		Subsystem: "server",
		Name:      "background_refresh_failures_total",
		Help:      "Background cache refreshes that errored.",
	})

	watchdogTripsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "registryindex",
		Subsystem: "server",
		Name:      "watchdog_trips_total",
		Help:      "Times the watchdog detected a liveness lag (always 0 or 1, since a trip exits the process).",
	})
)

// lastOKResponse and backgroundLiveness are unix-second timestamps updated
// on the hot path; the watchdog polls them without holding a lock.
var (
	lastOKResponse     atomic.Int64
	backgroundLiveness atomic.Int64
)
