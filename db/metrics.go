package db

import (
	"database/sql"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RegisterPoolMetrics exposes connection pool gauges for the given
// connection. Call once per process.
func RegisterPoolMetrics(conn *sql.DB) {
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "linksaver_db_open_connections",
		Help: "Open connections in the database pool.",
	}, func() float64 {
		return float64(conn.Stats().OpenConnections)
	})
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "linksaver_db_in_use_connections",
		Help: "Connections currently in use.",
	}, func() float64 {
		return float64(conn.Stats().InUse)
	})
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "linksaver_db_idle_connections",
		Help: "Idle connections in the pool.",
	}, func() float64 {
		return float64(conn.Stats().Idle)
	})
	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "linksaver_db_wait_count_total",
		Help: "Total number of connections waited for.",
	}, func() float64 {
		return float64(conn.Stats().WaitCount)
	})
}
