package postgres

import (
	"errors"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Adapted from claircore's datastore/postgres/store_metrics.go: one
// histogram + counter pair labelled by query name and success, instead of
// loading query text from embedded files per call (our queries are built
// with goqu or are short const strings defined beside the methods that use
// them).
var (
	queryLabels = []string{"query", "success"}
	queryTimer  = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "registryindex",
		Subsystem: "store_postgres",
		Name:      "query_duration_seconds",
		Help:      "Database query duration for the noted query.",
	}, queryLabels)
	queryCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "registryindex",
		Subsystem: "store_postgres",
		Name:      "query_total",
		Help:      "Database query count for the noted query.",
	}, queryLabels)
)

// timeQuery wraps a store method body, recording its duration and
// success/failure under name. Call pattern:
//
//	defer timeQuery("TopKeyword")(&err)
func timeQuery(name string) func(err *error) {
	var success string
	timer := prometheus.NewTimer(prometheus.ObserverFunc(func(v float64) {
		queryTimer.WithLabelValues(name, success).Observe(v)
	}))
	return func(err *error) {
		success = strconv.FormatBool(errors.Is(*err, nil))
		queryCounter.WithLabelValues(name, success).Inc()
		timer.ObserveDuration()
	}
}
