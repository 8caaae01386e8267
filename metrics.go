package arith

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/pior/arith/wire"
)

// MetricsCollector exposes ServerStats as Prometheus metrics.
// Values are read from Server.Stats on every scrape.
type MetricsCollector struct {
	server *Server

	sessionsTotal  *prometheus.Desc
	sessionsActive *prometheus.Desc
	sessionsMax    *prometheus.Desc
	responsesTotal *prometheus.Desc
	stopsTotal     *prometheus.Desc
	sessionErrors  *prometheus.Desc
}

var _ prometheus.Collector = (*MetricsCollector)(nil)

// NewMetricsCollector creates a collector for server.
func NewMetricsCollector(server *Server) *MetricsCollector {
	return &MetricsCollector{
		server: server,
		sessionsTotal: prometheus.NewDesc(
			"arith_sessions_total",
			"Total number of accepted sessions",
			nil, nil,
		),
		sessionsActive: prometheus.NewDesc(
			"arith_sessions_active",
			"Number of sessions currently being served",
			nil, nil,
		),
		sessionsMax: prometheus.NewDesc(
			"arith_sessions_max",
			"Maximum number of concurrent sessions",
			nil, nil,
		),
		responsesTotal: prometheus.NewDesc(
			"arith_responses_total",
			"Total number of responses sent",
			[]string{"status"}, // RESULT, UNKNOWN, BAD_DATA
			nil,
		),
		stopsTotal: prometheus.NewDesc(
			"arith_stops_total",
			"Total number of sessions ended by STOP",
			nil, nil,
		),
		sessionErrors: prometheus.NewDesc(
			"arith_session_errors_total",
			"Total number of sessions ended by an I/O failure",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.sessionsTotal
	ch <- c.sessionsActive
	ch <- c.sessionsMax
	ch <- c.responsesTotal
	ch <- c.stopsTotal
	ch <- c.sessionErrors
}

// Collect implements prometheus.Collector.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	stats := c.server.Stats()

	ch <- prometheus.MustNewConstMetric(c.sessionsTotal, prometheus.CounterValue, float64(stats.SessionsAccepted))
	ch <- prometheus.MustNewConstMetric(c.sessionsActive, prometheus.GaugeValue, float64(stats.ActiveSessions))
	ch <- prometheus.MustNewConstMetric(c.sessionsMax, prometheus.GaugeValue, float64(stats.MaxSessions))
	ch <- prometheus.MustNewConstMetric(c.responsesTotal, prometheus.CounterValue, float64(stats.Results), string(wire.StatusResult))
	ch <- prometheus.MustNewConstMetric(c.responsesTotal, prometheus.CounterValue, float64(stats.Unknowns), string(wire.StatusUnknown))
	ch <- prometheus.MustNewConstMetric(c.responsesTotal, prometheus.CounterValue, float64(stats.BadData), string(wire.StatusBadData))
	ch <- prometheus.MustNewConstMetric(c.stopsTotal, prometheus.CounterValue, float64(stats.Stops))
	ch <- prometheus.MustNewConstMetric(c.sessionErrors, prometheus.CounterValue, float64(stats.SessionErrors))
}
