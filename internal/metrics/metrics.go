// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Generation metrics
	IncGenerationRequested()
	IncGenerationCompleted()
	IncGenerationSlotDegraded()
	ObserveGenerationDuration(duration time.Duration)

	// Entitlement metrics
	IncEntitlementDenied()

	// Billing metrics
	IncBillingEventProcessed(eventType string)
	IncBillingEventRejected(reason string) // reason: "signature" or "payload"

	// Usage pipeline metrics
	IncUsageEventPublished(status string) // status: "success" or "dropped"
	IncUsageEventProcessed(status string) // status: "success", "failed", "skipped"
	ObserveUsageBatchSize(size int)
	SetUsageQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
