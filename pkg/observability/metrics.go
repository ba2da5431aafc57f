// Package observability provides Prometheus metrics and OpenTelemetry
// tracing for hawkbit applications.
package observability

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/designcise/hawkbit/internal"
)

// DurationBuckets are the histogram buckets for pass durations, 1ms to 10s.
var DurationBuckets = []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// DefaultPendingTTL is how long a pass start is kept without a matching
// system.shutdown before it is dropped.
const DefaultPendingTTL = 10 * time.Minute

// MetricsOption configures Metrics.
type MetricsOption func(*Metrics)

// WithPendingTTL sets how long a pass start is kept without a matching
// system.shutdown. Non-positive values keep the default.
func WithPendingTTL(d time.Duration) MetricsOption {
	return func(m *Metrics) {
		if d > 0 {
			m.ttl = d
		}
	}
}

// Metrics records lifecycle phases as Prometheus metrics. It is an event
// listener; register it on the app's event sink with Subscribe.
type Metrics struct {
	phases   *prometheus.CounterVec
	errors   *prometheus.CounterVec
	duration *prometheus.HistogramVec
	pending  prometheus.Gauge
	gatherer prometheus.Gatherer
	started  sync.Map // lifecycle id -> time.Time
	ttl      time.Duration
	swept    atomic.Int64 // unix nanos of the last sweep
}

// NewMetrics creates the lifecycle metrics and registers them on reg.
// A nil reg uses a fresh registry, which Handler then serves.
func NewMetrics(reg prometheus.Registerer, opts ...MetricsOption) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		phases: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hawkbit_lifecycle_phases_total",
				Help: "Lifecycle phases emitted",
			},
			[]string{"phase"},
		),
		errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hawkbit_lifecycle_errors_total",
				Help: "Errors translated by the lifecycle, by response status",
			},
			[]string{"status"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hawkbit_lifecycle_duration_seconds",
				Help:    "Time from request.received to system.shutdown",
				Buckets: DurationBuckets,
			},
			[]string{"outcome"},
		),
		pending: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "hawkbit_lifecycle_pending",
			Help: "Passes started and not yet shut down",
		}),
		ttl: DefaultPendingTTL,
	}
	for _, opt := range opts {
		opt(m)
	}

	for _, c := range []prometheus.Collector{m.phases, m.errors, m.duration, m.pending} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m, nil
}

// Subscribe registers the metrics listener for every phase on sink.
func (m *Metrics) Subscribe(sink internal.EventSink) {
	sink.AddListener(internal.PhaseAny, m.Listen)
}

// Listen records e. It never fails, so it cannot disturb the lifecycle.
func (m *Metrics) Listen(e *internal.Event) error {
	m.phases.WithLabelValues(e.Name).Inc()

	l := e.Lifecycle()
	switch e.Name {
	case internal.PhaseRequestReceived:
		if l == nil {
			return nil
		}
		now := time.Now()
		m.sweep(now)
		if _, loaded := m.started.LoadOrStore(l.ID(), now); !loaded {
			m.pending.Inc()
		}
	case internal.PhaseRuntimeError:
		if e.Err != nil {
			m.errors.WithLabelValues(strconv.Itoa(internal.StatusFromError(e.Err))).Inc()
		}
	case internal.PhaseShutdown:
		if l == nil {
			return nil
		}
		v, ok := m.started.LoadAndDelete(l.ID())
		if !ok {
			return nil
		}
		m.pending.Dec()
		outcome := "ok"
		if l.IsError() {
			outcome = "error"
		}
		m.duration.WithLabelValues(outcome).Observe(time.Since(v.(time.Time)).Seconds())
	}
	return nil
}

// sweep drops pass starts older than the TTL. Passes handled without a
// shutdown, like App.Handle, never reach system.shutdown. It runs at most
// once per TTL.
func (m *Metrics) sweep(now time.Time) {
	last := m.swept.Load()
	if now.UnixNano()-last < int64(m.ttl) || !m.swept.CompareAndSwap(last, now.UnixNano()) {
		return
	}
	m.started.Range(func(id, v any) bool {
		if now.Sub(v.(time.Time)) > m.ttl {
			if _, ok := m.started.LoadAndDelete(id); ok {
				m.pending.Dec()
			}
		}
		return true
	})
}

// Handler serves the registry the metrics were registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Check gathers the registry and reports collection failures. It fits
// health.CheckFunc.
func (m *Metrics) Check(_ context.Context) error {
	if _, err := m.gatherer.Gather(); err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	return nil
}
