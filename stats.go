package arith

import (
	"sync/atomic"

	"github.com/pior/arith/wire"
)

// ServerStats contains statistics about a server.
// All fields are safe for concurrent access.
//
// For Prometheus integration, see MetricsCollector.
type ServerStats struct {
	// Lifetime counters
	SessionsAccepted uint64 // Connections accepted
	Requests         uint64 // Request lines answered
	Results          uint64 // RESULT responses
	Unknowns         uint64 // UNKNOWN responses
	BadData          uint64 // BAD_DATA responses
	Stops            uint64 // Sessions ended by STOP
	SessionErrors    uint64 // Sessions ended by an I/O failure

	// Current state gauges
	ActiveSessions int32 // Sessions currently being served
	MaxSessions    int32 // Session slot limit
}

// ClientStats contains statistics about client operations.
// All fields are safe for concurrent access.
type ClientStats struct {
	Requests uint64 // Total round trips attempted
	Results  uint64 // RESULT responses
	Unknowns uint64 // UNKNOWN responses
	BadData  uint64 // BAD_DATA responses
	Errors   uint64 // Transport, parse and circuit breaker errors
}

// serverStatsCollector provides internal methods for updating server stats.
// Not exported - sessions update their own stats.
type serverStatsCollector struct {
	stats *ServerStats
}

func newServerStatsCollector() *serverStatsCollector {
	return &serverStatsCollector{
		stats: &ServerStats{},
	}
}

func (c *serverStatsCollector) recordAccept() {
	atomic.AddUint64(&c.stats.SessionsAccepted, 1)
}

func (c *serverStatsCollector) recordResponse(status wire.Status) {
	atomic.AddUint64(&c.stats.Requests, 1)
	switch status {
	case wire.StatusResult:
		atomic.AddUint64(&c.stats.Results, 1)
	case wire.StatusUnknown:
		atomic.AddUint64(&c.stats.Unknowns, 1)
	case wire.StatusBadData:
		atomic.AddUint64(&c.stats.BadData, 1)
	}
}

func (c *serverStatsCollector) recordStop() {
	atomic.AddUint64(&c.stats.Stops, 1)
}

func (c *serverStatsCollector) recordSessionError() {
	atomic.AddUint64(&c.stats.SessionErrors, 1)
}

func (c *serverStatsCollector) snapshot() ServerStats {
	return ServerStats{
		SessionsAccepted: atomic.LoadUint64(&c.stats.SessionsAccepted),
		Requests:         atomic.LoadUint64(&c.stats.Requests),
		Results:          atomic.LoadUint64(&c.stats.Results),
		Unknowns:         atomic.LoadUint64(&c.stats.Unknowns),
		BadData:          atomic.LoadUint64(&c.stats.BadData),
		Stops:            atomic.LoadUint64(&c.stats.Stops),
		SessionErrors:    atomic.LoadUint64(&c.stats.SessionErrors),
	}
}

// clientStatsCollector provides internal methods for updating client stats.
// Not exported - client updates its own stats.
type clientStatsCollector struct {
	stats *ClientStats
}

func newClientStatsCollector() *clientStatsCollector {
	return &clientStatsCollector{
		stats: &ClientStats{},
	}
}

func (c *clientStatsCollector) recordResponse(status wire.Status) {
	atomic.AddUint64(&c.stats.Requests, 1)
	switch status {
	case wire.StatusResult:
		atomic.AddUint64(&c.stats.Results, 1)
	case wire.StatusUnknown:
		atomic.AddUint64(&c.stats.Unknowns, 1)
	case wire.StatusBadData:
		atomic.AddUint64(&c.stats.BadData, 1)
	}
}

func (c *clientStatsCollector) recordError() {
	atomic.AddUint64(&c.stats.Requests, 1)
	atomic.AddUint64(&c.stats.Errors, 1)
}

func (c *clientStatsCollector) snapshot() ClientStats {
	return ClientStats{
		Requests: atomic.LoadUint64(&c.stats.Requests),
		Results:  atomic.LoadUint64(&c.stats.Results),
		Unknowns: atomic.LoadUint64(&c.stats.Unknowns),
		BadData:  atomic.LoadUint64(&c.stats.BadData),
		Errors:   atomic.LoadUint64(&c.stats.Errors),
	}
}
