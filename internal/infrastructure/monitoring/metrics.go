package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Execution outcomes
const (
	OutcomeCreated = "created"
	OutcomeReused  = "reused"
	OutcomeFailed  = "failed"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	RequestSize     *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Run configuration metrics
	Configurations  prometheus.Gauge
	StoreOperations *prometheus.CounterVec
	Executions      *prometheus.CounterVec

	// Terminal metrics
	TerminalsActive prometheus.Gauge
	TerminalsTotal  prometheus.Counter

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	gatherer prometheus.Gatherer

	// Snapshot for the JSON health endpoint
	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current metric values for the JSON API
type Snapshot struct {
	TotalRequests   int64   `json:"total_requests"`
	TotalErrors     int64   `json:"total_errors"`
	Executions      int64   `json:"executions"`
	TerminalsActive int64   `json:"terminals_active"`
	WSConnections   int64   `json:"ws_connections"`
	AvgLatencyMs    float64 `json:"avg_latency_ms"`
	UptimeSeconds   float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a collector on a fresh registry
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(prometheus.NewRegistry())
}

// NewMetricsWithRegistry registers all collectors on reg. Pass
// prometheus.DefaultRegisterer to expose them with the Go runtime metrics.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		startTime: time.Now(),
		gatherer:  prometheus.DefaultGatherer,

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runconfig_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runconfig_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		RequestSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runconfig_http_request_size_bytes",
				Help:    "HTTP request size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "runconfig_http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Run configuration metrics
		Configurations: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "runconfig_configurations",
				Help: "Number of stored run configurations after the last write",
			},
		),
		StoreOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runconfig_store_operations_total",
				Help: "Total number of configuration store operations",
			},
			[]string{"op", "status"},
		),
		Executions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runconfig_executions_total",
				Help: "Total number of run configuration executions",
			},
			[]string{"outcome"},
		),

		// Terminal metrics
		TerminalsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "runconfig_terminals_active",
				Help: "Number of live terminal sessions",
			},
		),
		TerminalsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "runconfig_terminals_total",
				Help: "Total number of terminal sessions created",
			},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "runconfig_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "runconfig_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	m.Uptime = factory.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "runconfig_uptime_seconds",
			Help: "Daemon uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}

	return m
}

// Handler serves the registry in Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, reqSize, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.RequestSize.WithLabelValues(method, path).Observe(float64(reqSize))
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status != "" && (status[0] == '4' || status[0] == '5') {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// RecordStoreOp records a configuration store operation
func (m *Metrics) RecordStoreOp(op string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StoreOperations.WithLabelValues(op, status).Inc()
}

// RecordExecution records the outcome of running a configuration
func (m *Metrics) RecordExecution(outcome string) {
	m.Executions.WithLabelValues(outcome).Inc()

	if outcome != OutcomeFailed {
		m.mu.Lock()
		m.snapshot.Executions++
		m.mu.Unlock()
	}
}

// TerminalOpened records a new terminal session
func (m *Metrics) TerminalOpened() {
	m.TerminalsActive.Inc()
	m.TerminalsTotal.Inc()

	m.mu.Lock()
	m.snapshot.TerminalsActive++
	m.mu.Unlock()
}

// TerminalClosed records a terminal session ending
func (m *Metrics) TerminalClosed() {
	m.TerminalsActive.Dec()

	m.mu.Lock()
	m.snapshot.TerminalsActive--
	m.mu.Unlock()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.WSConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.WSConnections--
	m.mu.Unlock()
}

// Snapshot returns the current values for the JSON API
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	s := m.snapshot
	m.mu.RUnlock()

	if s.TotalRequests > 0 {
		s.AvgLatencyMs = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
