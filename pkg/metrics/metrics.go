package metrics

import (
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"alumni-portal/pkg/rbac"

	"github.com/labstack/echo/v4"
)

const decisionAllowed = "allowed"

// Metrics holds request and authorization counters.
// Thread-safe via atomics and mutex.
type Metrics struct {
	TotalRequests     int64
	ActiveRequests    int64
	TotalErrors       int64
	TotalLatencyMs    int64
	MaxLatencyMs      int64
	StartTime         time.Time
	EndpointCounts    map[string]int64
	EndpointLatencies map[string]int64 // total ms per endpoint
	StatusCodes       map[int]int64
	Decisions         map[string]int64 // "allowed" or a deny reason
	mu                sync.Mutex
}

func New() *Metrics {
	m := &Metrics{}
	m.Reset()
	return m
}

// Middleware tracks request count, latency, active connections, and error rates
func (m *Metrics) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			atomic.AddInt64(&m.ActiveRequests, 1)
			defer atomic.AddInt64(&m.ActiveRequests, -1)
			start := time.Now()

			err := next(c)
			if err != nil {
				// Let the error handler write the status before it is read.
				c.Error(err)
				err = nil
			}

			latencyMs := time.Since(start).Milliseconds()
			atomic.AddInt64(&m.TotalRequests, 1)
			atomic.AddInt64(&m.TotalLatencyMs, latencyMs)

			// Update max latency (lock-free CAS loop)
			for {
				current := atomic.LoadInt64(&m.MaxLatencyMs)
				if latencyMs <= current {
					break
				}
				if atomic.CompareAndSwapInt64(&m.MaxLatencyMs, current, latencyMs) {
					break
				}
			}

			statusCode := c.Response().Status
			path := c.Path()
			if path == "" {
				path = c.Request().URL.Path
			}
			endpoint := fmt.Sprintf("%s %s", c.Request().Method, path)

			m.mu.Lock()
			m.EndpointCounts[endpoint]++
			m.EndpointLatencies[endpoint] += latencyMs
			m.StatusCodes[statusCode]++
			if statusCode >= 400 {
				atomic.AddInt64(&m.TotalErrors, 1)
			}
			m.mu.Unlock()

			return err
		}
	}
}

// ObserveDecision counts a guard decision by outcome.
func (m *Metrics) ObserveDecision(_ echo.Context, d rbac.Decision) {
	key := decisionAllowed
	if !d.Allowed {
		key = string(d.Reason)
	}

	m.mu.Lock()
	m.Decisions[key]++
	m.mu.Unlock()
}

// Reset clears every counter and restarts the uptime clock.
func (m *Metrics) Reset() {
	atomic.StoreInt64(&m.TotalRequests, 0)
	atomic.StoreInt64(&m.ActiveRequests, 0)
	atomic.StoreInt64(&m.TotalErrors, 0)
	atomic.StoreInt64(&m.TotalLatencyMs, 0)
	atomic.StoreInt64(&m.MaxLatencyMs, 0)

	m.mu.Lock()
	m.EndpointCounts = make(map[string]int64)
	m.EndpointLatencies = make(map[string]int64)
	m.StatusCodes = make(map[int]int64)
	m.Decisions = make(map[string]int64)
	m.StartTime = time.Now()
	m.mu.Unlock()
}

// Snapshot is a point-in-time snapshot of performance data
type Snapshot struct {
	TotalRequests  int64            `json:"total_requests"`
	ActiveRequests int64            `json:"active_requests"`
	TotalErrors    int64            `json:"total_errors"`
	ErrorRate      float64          `json:"error_rate_pct"`
	AvgLatencyMs   float64          `json:"avg_latency_ms"`
	MaxLatencyMs   int64            `json:"max_latency_ms"`
	RequestsPerSec float64          `json:"requests_per_sec"`
	UptimeSeconds  float64          `json:"uptime_seconds"`
	EndpointCounts map[string]int64 `json:"endpoint_counts"`
	EndpointAvgMs  map[string]int64 `json:"endpoint_avg_latency_ms"`
	StatusCodes    map[int]int64    `json:"status_codes"`
	Decisions      map[string]int64 `json:"decisions"`
}

func (m *Metrics) Snapshot() Snapshot {
	total := atomic.LoadInt64(&m.TotalRequests)
	errors := atomic.LoadInt64(&m.TotalErrors)
	totalLatency := atomic.LoadInt64(&m.TotalLatencyMs)

	var avgLatency float64
	if total > 0 {
		avgLatency = float64(totalLatency) / float64(total)
	}

	var errorRate float64
	if total > 0 {
		errorRate = float64(errors) / float64(total) * 100
	}

	m.mu.Lock()
	uptime := time.Since(m.StartTime).Seconds()
	endpointCounts := make(map[string]int64, len(m.EndpointCounts))
	endpointAvg := make(map[string]int64, len(m.EndpointLatencies))
	for k, v := range m.EndpointCounts {
		endpointCounts[k] = v
		if v > 0 {
			endpointAvg[k] = m.EndpointLatencies[k] / v
		}
	}
	statusCodes := make(map[int]int64, len(m.StatusCodes))
	for k, v := range m.StatusCodes {
		statusCodes[k] = v
	}
	decisions := make(map[string]int64, len(m.Decisions))
	for k, v := range m.Decisions {
		decisions[k] = v
	}
	m.mu.Unlock()

	var rps float64
	if uptime > 0 {
		rps = float64(total) / uptime
	}

	return Snapshot{
		TotalRequests:  total,
		ActiveRequests: atomic.LoadInt64(&m.ActiveRequests),
		TotalErrors:    errors,
		ErrorRate:      errorRate,
		AvgLatencyMs:   avgLatency,
		MaxLatencyMs:   atomic.LoadInt64(&m.MaxLatencyMs),
		RequestsPerSec: rps,
		UptimeSeconds:  uptime,
		EndpointCounts: endpointCounts,
		EndpointAvgMs:  endpointAvg,
		StatusCodes:    statusCodes,
		Decisions:      decisions,
	}
}

// Handler serves the snapshot as JSON.
func (m *Metrics) Handler(c echo.Context) error {
	return c.JSON(http.StatusOK, m.Snapshot())
}
