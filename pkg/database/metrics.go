package database

import (
	"database/sql"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// DBStatsCollector implements prometheus.Collector for database/sql
// connection pool statistics.
type DBStatsCollector struct {
	db   *sql.DB
	name string

	maxOpen           *prometheus.Desc
	open              *prometheus.Desc
	inUse             *prometheus.Desc
	idle              *prometheus.Desc
	waitCount         *prometheus.Desc
	waitDuration      *prometheus.Desc
	maxIdleClosed     *prometheus.Desc
	maxIdleTimeClosed *prometheus.Desc
	maxLifetimeClosed *prometheus.Desc
}

// NewDBStatsCollector creates a collector exporting the statistics of db
// labeled with name.
func NewDBStatsCollector(db *sql.DB, name string) *DBStatsCollector {
	labels := []string{"db"}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc("newsdesk_db_"+metric, help, labels, nil)
	}
	return &DBStatsCollector{
		db:                db,
		name:              name,
		maxOpen:           desc("max_open_connections", "Maximum number of open connections allowed"),
		open:              desc("open_connections", "Number of established connections"),
		inUse:             desc("in_use_connections", "Number of connections currently in use"),
		idle:              desc("idle_connections", "Number of idle connections"),
		waitCount:         desc("wait_count_total", "Total number of connections waited for"),
		waitDuration:      desc("wait_duration_seconds_total", "Total time blocked waiting for a connection"),
		maxIdleClosed:     desc("max_idle_closed_total", "Connections closed due to SetMaxIdleConns"),
		maxIdleTimeClosed: desc("max_idle_time_closed_total", "Connections closed due to SetConnMaxIdleTime"),
		maxLifetimeClosed: desc("max_lifetime_closed_total", "Connections closed due to SetConnMaxLifetime"),
	}
}

// Describe sends the descriptors of all metrics to ch.
func (c *DBStatsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxOpen
	ch <- c.open
	ch <- c.inUse
	ch <- c.idle
	ch <- c.waitCount
	ch <- c.waitDuration
	ch <- c.maxIdleClosed
	ch <- c.maxIdleTimeClosed
	ch <- c.maxLifetimeClosed
}

// Collect reads the current statistics.
func (c *DBStatsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.db.Stats()

	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v, c.name)
	}
	counter := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, v, c.name)
	}
	gauge(c.maxOpen, float64(s.MaxOpenConnections))
	gauge(c.open, float64(s.OpenConnections))
	gauge(c.inUse, float64(s.InUse))
	gauge(c.idle, float64(s.Idle))
	counter(c.waitCount, float64(s.WaitCount))
	counter(c.waitDuration, s.WaitDuration.Seconds())
	counter(c.maxIdleClosed, float64(s.MaxIdleClosed))
	counter(c.maxIdleTimeClosed, float64(s.MaxIdleTimeClosed))
	counter(c.maxLifetimeClosed, float64(s.MaxLifetimeClosed))
}

// RegisterDBMetrics registers a collector for db with reg. Registering a
// second collector under the same name is not an error; the first one is kept.
func RegisterDBMetrics(reg prometheus.Registerer, db *sql.DB, name string) error {
	err := reg.Register(NewDBStatsCollector(db, name))
	var already prometheus.AlreadyRegisteredError
	if errors.As(err, &already) {
		return nil
	}
	return err
}
