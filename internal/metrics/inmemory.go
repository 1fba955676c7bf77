package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	GenerationsRequested      uint64
	GenerationsCompleted      uint64
	GenerationSlotsDegraded   uint64
	GenerationDurationCount   uint64
	GenerationDurationTotalNs int64
	EntitlementsDenied        uint64
	BillingEventsProcessed    map[string]uint64
	BillingEventsRejected     map[string]uint64
	UsageEventsPublished      map[string]uint64
	UsageEventsProcessed      map[string]uint64
	UsageQueueDepth           int64
}

// InMemoryRecorder stores metrics in memory for tests.
type InMemoryRecorder struct {
	generationsRequested      uint64
	generationsCompleted      uint64
	generationSlotsDegraded   uint64
	generationDurationCount   uint64
	generationDurationTotalNs int64
	entitlementsDenied        uint64
	usageQueueDepth           int64

	mu                     sync.Mutex
	billingEventsProcessed map[string]uint64
	billingEventsRejected  map[string]uint64
	usageEventsPublished   map[string]uint64
	usageEventsProcessed   map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{
		billingEventsProcessed: make(map[string]uint64),
		billingEventsRejected:  make(map[string]uint64),
		usageEventsPublished:   make(map[string]uint64),
		usageEventsProcessed:   make(map[string]uint64),
	}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		GenerationsRequested:      atomic.LoadUint64(&m.generationsRequested),
		GenerationsCompleted:      atomic.LoadUint64(&m.generationsCompleted),
		GenerationSlotsDegraded:   atomic.LoadUint64(&m.generationSlotsDegraded),
		GenerationDurationCount:   atomic.LoadUint64(&m.generationDurationCount),
		GenerationDurationTotalNs: atomic.LoadInt64(&m.generationDurationTotalNs),
		EntitlementsDenied:        atomic.LoadUint64(&m.entitlementsDenied),
		BillingEventsProcessed:    copyCounters(m.billingEventsProcessed),
		BillingEventsRejected:     copyCounters(m.billingEventsRejected),
		UsageEventsPublished:      copyCounters(m.usageEventsPublished),
		UsageEventsProcessed:      copyCounters(m.usageEventsProcessed),
		UsageQueueDepth:           atomic.LoadInt64(&m.usageQueueDepth),
	}
}

// IncGenerationRequested increments the generation request counter.
func (m *InMemoryRecorder) IncGenerationRequested() {
	atomic.AddUint64(&m.generationsRequested, 1)
}

// IncGenerationCompleted increments the completed generation counter.
func (m *InMemoryRecorder) IncGenerationCompleted() {
	atomic.AddUint64(&m.generationsCompleted, 1)
}

// IncGenerationSlotDegraded increments the degraded slot counter.
func (m *InMemoryRecorder) IncGenerationSlotDegraded() {
	atomic.AddUint64(&m.generationSlotsDegraded, 1)
}

// ObserveGenerationDuration records generation batch duration.
func (m *InMemoryRecorder) ObserveGenerationDuration(duration time.Duration) {
	atomic.AddUint64(&m.generationDurationCount, 1)
	atomic.AddInt64(&m.generationDurationTotalNs, duration.Nanoseconds())
}

// IncEntitlementDenied increments the entitlement denial counter.
func (m *InMemoryRecorder) IncEntitlementDenied() {
	atomic.AddUint64(&m.entitlementsDenied, 1)
}

// IncBillingEventProcessed increments the processed counter for an event type.
func (m *InMemoryRecorder) IncBillingEventProcessed(eventType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.billingEventsProcessed[eventType]++
}

// IncBillingEventRejected increments the rejected counter for a reason.
func (m *InMemoryRecorder) IncBillingEventRejected(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.billingEventsRejected[reason]++
}

// IncUsageEventPublished increments the published counter for a status.
func (m *InMemoryRecorder) IncUsageEventPublished(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usageEventsPublished[status]++
}

// IncUsageEventProcessed increments the processed counter for a status.
func (m *InMemoryRecorder) IncUsageEventProcessed(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.usageEventsProcessed[status]++
}

// ObserveUsageBatchSize records a processed batch size. Only counts are kept.
func (m *InMemoryRecorder) ObserveUsageBatchSize(size int) {}

// SetUsageQueueDepth records the usage stream depth.
func (m *InMemoryRecorder) SetUsageQueueDepth(depth int64) {
	atomic.StoreInt64(&m.usageQueueDepth, depth)
}

func copyCounters(src map[string]uint64) map[string]uint64 {
	dst := make(map[string]uint64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
