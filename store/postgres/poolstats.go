package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// poolCollector is a prometheus.Collector that exposes pgxpool.Stat.
//
// Adapted from claircore's pkg/poolstats.Collector, trimmed to the subset
// of gauges this service's single pool needs and ported from pgx/v4's
// pgxpool.Stat to v5's (method set is identical).
type poolCollector struct {
	name string
	pool *pgxpool.Pool

	acquiredConnsDesc *prometheus.Desc
	idleConnsDesc     *prometheus.Desc
	maxConnsDesc      *prometheus.Desc
	totalConnsDesc    *prometheus.Desc
}

var staticPoolLabels = []string{"application_name"}

func newPoolCollector(pool *pgxpool.Pool, appname string) *poolCollector {
	return &poolCollector{
		name: appname,
		pool: pool,
		acquiredConnsDesc: prometheus.NewDesc(
			"registryindex_pgxpool_acquired_conns",
			"Number of currently acquired connections in the pool.",
			staticPoolLabels, nil),
		idleConnsDesc: prometheus.NewDesc(
			"registryindex_pgxpool_idle_conns",
			"Number of currently idle conns in the pool.",
			staticPoolLabels, nil),
		maxConnsDesc: prometheus.NewDesc(
			"registryindex_pgxpool_max_conns",
			"Maximum size of the pool.",
			staticPoolLabels, nil),
		totalConnsDesc: prometheus.NewDesc(
			"registryindex_pgxpool_total_conns",
			"Total number of resources currently in the pool.",
			staticPoolLabels, nil),
	}
}

func (c *poolCollector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

func (c *poolCollector) Collect(metrics chan<- prometheus.Metric) {
	s := c.pool.Stat()
	metrics <- prometheus.MustNewConstMetric(c.acquiredConnsDesc, prometheus.GaugeValue, float64(s.AcquiredConns()), c.name)
	metrics <- prometheus.MustNewConstMetric(c.idleConnsDesc, prometheus.GaugeValue, float64(s.IdleConns()), c.name)
	metrics <- prometheus.MustNewConstMetric(c.maxConnsDesc, prometheus.GaugeValue, float64(s.MaxConns()), c.name)
	metrics <- prometheus.MustNewConstMetric(c.totalConnsDesc, prometheus.GaugeValue, float64(s.TotalConns()), c.name)
}
