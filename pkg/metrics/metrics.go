// Package metrics exports evaluator activity to Prometheus.
package metrics

import (
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds Prometheus metric descriptors for the evaluator. It
// implements eval.Observer.
type Metrics struct {
	registry  *prometheus.Registry
	startTime time.Time

	evaluationsTotal    prometheus.Counter
	functionCallsTotal  *prometheus.CounterVec
	functionErrorsTotal *prometheus.CounterVec
	traceDiscardedTotal prometheus.Counter
	uptimeSeconds       prometheus.Gauge
	memoryHeapBytes     prometheus.Gauge
	goroutines          prometheus.Gauge
}

// New creates the metrics on their own registry, so several instances
// (one per test, say) never collide.
func New(startTime time.Time) *Metrics {
	m := &Metrics{
		registry:  prometheus.NewRegistry(),
		startTime: startTime,
		evaluationsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "softcode_evaluations_total",
			Help: "Top-level evaluations since start.",
		}),
		functionCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "softcode_function_calls_total",
			Help: "Function invocations by kind (builtin or user).",
		}, []string{"kind"}),
		functionErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "softcode_function_errors_total",
			Help: "Function calls rejected, by reason.",
		}, []string{"reason"}),
		traceDiscardedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "softcode_trace_lines_discarded_total",
			Help: "Trace lines dropped by the trace output limit.",
		}),
		uptimeSeconds: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "softcode_uptime_seconds",
			Help: "Process uptime in seconds.",
		}),
		memoryHeapBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "softcode_memory_heap_bytes",
			Help: "Go heap memory allocated in bytes.",
		}),
		goroutines: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "softcode_goroutines",
			Help: "Number of active goroutines.",
		}),
	}

	m.registry.MustRegister(
		m.evaluationsTotal,
		m.functionCallsTotal,
		m.functionErrorsTotal,
		m.traceDiscardedTotal,
		m.uptimeSeconds,
		m.memoryHeapBytes,
		m.goroutines,
	)
	return m
}

// Evaluated counts one top-level evaluation.
func (m *Metrics) Evaluated() { m.evaluationsTotal.Inc() }

// FunctionCalled counts a function that passed its checks and ran.
func (m *Metrics) FunctionCalled(_ string, user bool) {
	kind := "builtin"
	if user {
		kind = "user"
	}
	m.functionCallsTotal.WithLabelValues(kind).Inc()
}

// FunctionFailed counts a call rejected for reason.
func (m *Metrics) FunctionFailed(_ string, reason string) {
	m.functionErrorsTotal.WithLabelValues(reason).Inc()
}

// TraceDiscarded counts dropped trace lines.
func (m *Metrics) TraceDiscarded(lines int) {
	m.traceDiscardedTotal.Add(float64(lines))
}

// Update refreshes the process gauges.
func (m *Metrics) Update() {
	m.uptimeSeconds.Set(time.Since(m.startTime).Seconds())

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)
	m.memoryHeapBytes.Set(float64(mem.HeapAlloc))
	m.goroutines.Set(float64(runtime.NumGoroutine()))
}

// Registry exposes the underlying registry for tests and embedding.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns an http.Handler that updates metrics before serving them.
func (m *Metrics) Handler() http.Handler {
	h := promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.Update()
		h.ServeHTTP(w, r)
	})
}
