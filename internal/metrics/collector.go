// Package metrics records per-operation timings in memory and exports them
// to Prometheus.
package metrics

import (
	"math"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Operation names for the collector.
const (
	OpEmbedding   = "embedding"
	OpTermExtract = "term_extract"
	OpStoreSearch = "store_search"
	OpGenerate    = "generate"
	OpAsk         = "ask"
)

// Question outcomes.
const (
	OutcomeAnswered = "answered"
	OutcomeNotFound = "not_found"
	OutcomeFailed   = "failed"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64   `json:"count"`
	Errors      int64   `json:"errors"`
	TotalTimeMs int64   `json:"total_time_ms"`
	AvgTimeMs   float64 `json:"avg_time_ms"`
	MinTimeMs   int64   `json:"min_time_ms"`
	MaxTimeMs   int64   `json:"max_time_ms"`
}

// Snapshot is the full statistics view at a point in time.
type Snapshot struct {
	UptimeSeconds float64                       `json:"uptime_seconds"`
	Operations    map[string]*OperationSnapshot `json:"operations"`
	Outcomes      map[string]int64              `json:"outcomes"`
}

// Collector aggregates runtime statistics. All methods are safe for concurrent use.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
	outcomes  map[string]int64

	registry  *prometheus.Registry
	durations *prometheus.HistogramVec
	errors    *prometheus.CounterVec
	questions *prometheus.CounterVec
}

// NewCollector creates a collector with its own Prometheus registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
		outcomes:  make(map[string]int64),
		registry:  registry,
		durations: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "eventqa",
			Name:      "operation_duration_seconds",
			Help:      "Duration of pipeline operations",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		}, []string{"op"}),
		errors: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventqa",
			Name:      "operation_errors_total",
			Help:      "Pipeline operations that returned an error",
		}, []string{"op"}),
		questions: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: "eventqa",
			Name:      "questions_total",
			Help:      "Questions handled, by outcome",
		}, []string{"outcome"}),
	}
}

// Registry returns the Prometheus registry the collector exports to.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// getOrCreate returns existing metrics or creates new ones for an operation.
// Caller must hold write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// RecordTiming records one run of op. A non-nil err also counts as an error.
func (c *Collector) RecordTiming(op string, duration time.Duration, err error) {
	if c == nil {
		return
	}
	c.durations.WithLabelValues(op).Observe(duration.Seconds())
	if err != nil {
		c.errors.WithLabelValues(op).Inc()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration
	if err != nil {
		m.Errors++
	}
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Time starts a timer for op; call the returned func with the outcome error.
func (c *Collector) Time(op string) func(error) {
	start := time.Now()
	return func(err error) {
		c.RecordTiming(op, time.Since(start), err)
	}
}

// RecordOutcome counts a handled question.
func (c *Collector) RecordOutcome(outcome string) {
	if c == nil {
		return
	}
	c.questions.WithLabelValues(outcome).Inc()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[outcome]++
}

func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}
	return &OperationSnapshot{
		Count:       m.Count,
		Errors:      m.Errors,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snap := Snapshot{
		UptimeSeconds: time.Since(c.startTime).Seconds(),
		Operations:    make(map[string]*OperationSnapshot, len(c.ops)),
		Outcomes:      make(map[string]int64, len(c.outcomes)),
	}
	for op, m := range c.ops {
		if s := snapshotOp(m); s != nil {
			snap.Operations[op] = s
		}
	}
	for k, v := range c.outcomes {
		snap.Outcomes[k] = v
	}
	return snap
}
