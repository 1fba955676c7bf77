package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/listkit/listkit/internal/model"
)

// UsageEventRepository provides database access for generation usage events.
type UsageEventRepository struct {
	repo *Repository
}

// NewUsageEventRepository creates a new UsageEventRepository.
func NewUsageEventRepository(repo *Repository) *UsageEventRepository {
	return &UsageEventRepository{repo: repo}
}

// BulkInsert inserts usage events with idempotency via ON CONFLICT DO NOTHING.
// The stream can redeliver events after a worker crash, so event_id dedupes.
func (r *UsageEventRepository) BulkInsert(ctx context.Context, events []*model.UsageEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}

	query := `
		INSERT INTO usage_events (
			id, event_id, user_id, listing_id, content_done, content_fail,
			duration_ms, occurred_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (event_id) DO NOTHING
	`

	for _, event := range events {
		batch.Queue(query,
			event.ID,
			event.EventID,
			event.UserID,
			event.ListingID,
			event.ContentDone,
			event.ContentFail,
			event.DurationMS,
			event.OccurredAt,
		)
	}

	results := r.repo.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := 0; i < len(events); i++ {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("batch insert usage event %d: %w", i, err)
		}
	}

	return nil
}
