// Package metrics provides in-memory runtime statistics collection for
// the vectorize worker.
package metrics

import (
	"math"
	"sync"
	"time"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot represents the full worker statistics at a point in time.
type Snapshot struct {
	UptimeSeconds float64

	Embedding    *OperationSnapshot
	BlobPut      *OperationSnapshot
	VectorUpsert *OperationSnapshot
	DBQuery      *OperationSnapshot
	Search       *OperationSnapshot

	MessagesProcessed int64
	MessagesSkipped   int64
	MessagesRetried   int64
}

// Operation names for the collector.
const (
	OpEmbedding    = "embedding"
	OpBlobPut      = "blob_put"
	OpVectorUpsert = "vector_upsert"
	OpDBQuery      = "db_query"
	OpSearch       = "search"
)

// Message outcomes for the collector.
const (
	OutcomeProcessed = "processed"
	OutcomeSkipped   = "skipped"
	OutcomeRetried   = "retried"
)

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
	outcomes  map[string]int64
}

// NewCollector creates a new metrics collector.
func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
		outcomes:  make(map[string]int64),
	}
}

// RecordTiming records timing for an operation.
func (c *Collector) RecordTiming(op string, duration time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}

	m.Count++
	m.TotalTime += duration
	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// RecordOutcome counts a consumed message by its outcome.
func (c *Collector) RecordOutcome(outcome string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.outcomes[outcome]++
}

// snapshotOp creates a snapshot for an operation, returning nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}
	return &OperationSnapshot{
		Count:       m.Count,
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

	return Snapshot{
		UptimeSeconds:     time.Since(c.startTime).Seconds(),
		Embedding:         snapshotOp(c.ops[OpEmbedding]),
		BlobPut:           snapshotOp(c.ops[OpBlobPut]),
		VectorUpsert:      snapshotOp(c.ops[OpVectorUpsert]),
		DBQuery:           snapshotOp(c.ops[OpDBQuery]),
		Search:            snapshotOp(c.ops[OpSearch]),
		MessagesProcessed: c.outcomes[OutcomeProcessed],
		MessagesSkipped:   c.outcomes[OutcomeSkipped],
		MessagesRetried:   c.outcomes[OutcomeRetried],
	}
}
