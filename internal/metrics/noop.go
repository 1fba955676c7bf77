package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncGenerationRequested is a no-op.
func (n *NoopRecorder) IncGenerationRequested() {}

// IncGenerationCompleted is a no-op.
func (n *NoopRecorder) IncGenerationCompleted() {}

// IncGenerationSlotDegraded is a no-op.
func (n *NoopRecorder) IncGenerationSlotDegraded() {}

// ObserveGenerationDuration is a no-op.
func (n *NoopRecorder) ObserveGenerationDuration(duration time.Duration) {}

// IncEntitlementDenied is a no-op.
func (n *NoopRecorder) IncEntitlementDenied() {}

// IncBillingEventProcessed is a no-op.
func (n *NoopRecorder) IncBillingEventProcessed(eventType string) {}

// IncBillingEventRejected is a no-op.
func (n *NoopRecorder) IncBillingEventRejected(reason string) {}

// IncUsageEventPublished is a no-op.
func (n *NoopRecorder) IncUsageEventPublished(status string) {}

// IncUsageEventProcessed is a no-op.
func (n *NoopRecorder) IncUsageEventProcessed(status string) {}

// ObserveUsageBatchSize is a no-op.
func (n *NoopRecorder) ObserveUsageBatchSize(size int) {}

// SetUsageQueueDepth is a no-op.
func (n *NoopRecorder) SetUsageQueueDepth(depth int64) {}
