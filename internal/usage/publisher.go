// Package usage provides generation usage event capture and processing.
package usage

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/listkit/listkit/internal/metrics"
)

const (
	// StreamKey is the Redis stream for usage events.
	StreamKey = "stream:usage_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:usage_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// PublishTimeout is the max time to wait for Redis publish.
	PublishTimeout = 100 * time.Millisecond
)

// EventPayload is the compressed event format for the Redis stream.
type EventPayload struct {
	UserID      string `json:"uid"` // user_id
	ListingID   string `json:"lid"` // listing_id
	ContentDone int    `json:"cd"`  // variants generated
	ContentFail int    `json:"cf"`  // variants degraded
	DurationMS  int64  `json:"d"`   // wall time for the batch
	OccurredAt  int64  `json:"t"`   // Unix milliseconds
}

// ValidateEventPayload checks that a payload carries the required fields.
func ValidateEventPayload(p EventPayload) error {
	if p.UserID == "" {
		return fmt.Errorf("missing user id")
	}
	if p.ListingID == "" {
		return fmt.Errorf("missing listing id")
	}
	if p.ContentDone < 0 || p.ContentFail < 0 {
		return fmt.Errorf("negative content counts")
	}
	if p.OccurredAt <= 0 {
		return fmt.Errorf("missing occurred_at")
	}
	return nil
}

// Publisher enqueues usage events to the Redis stream.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new usage event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "usage.publisher"),
		metrics: recorder,
	}
}

// Publish adds a usage event to the stream synchronously.
func (p *Publisher) Publish(ctx context.Context, event EventPayload) (string, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return "", fmt.Errorf("marshal event: %w", err)
	}

	result, err := p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{
			"payload": string(data),
		},
	}).Result()
	if err != nil {
		return "", fmt.Errorf("xadd: %w", err)
	}

	return result, nil
}

// PublishAsync publishes without blocking the request path.
// Failures are logged and dropped; generation responses never wait on this.
func (p *Publisher) PublishAsync(event EventPayload) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), PublishTimeout)
		defer cancel()

		streamID, err := p.Publish(ctx, event)
		if err != nil {
			p.logger.Warn("failed to publish usage event",
				"listing_id", event.ListingID,
				"error", err,
			)
			p.metrics.IncUsageEventPublished("dropped")
			return
		}

		p.logger.Debug("usage event published",
			"listing_id", event.ListingID,
			"stream_id", streamID,
		)
		p.metrics.IncUsageEventPublished("success")
	}()
}
