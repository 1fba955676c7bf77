package testutil

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/listkit/listkit/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 550550

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetCoreSchema drops and recreates all application tables for tests.
func ResetCoreSchema(ctx context.Context, pool *pgxpool.Pool) error {
	root, err := ProjectRoot()
	if err != nil {
		return err
	}

	downPath := filepath.Join(root, "migrations", "000001_core.down.sql")
	upPath := filepath.Join(root, "migrations", "000001_core.up.sql")

	downSQL, err := os.ReadFile(downPath)
	if err != nil {
		return fmt.Errorf("read down migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(downSQL)); err != nil {
		return fmt.Errorf("apply down migration: %w", err)
	}

	upSQL, err := os.ReadFile(upPath)
	if err != nil {
		return fmt.Errorf("read up migration: %w", err)
	}
	if _, err := pool.Exec(ctx, string(upSQL)); err != nil {
		return fmt.Errorf("apply up migration: %w", err)
	}

	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user row with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	return &model.User{
		ID:           ulid.Make().String(),
		Name:         "Test Agent",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$dGVzdHNhbHQ$dGVzdGhhc2g",
		CreatedAt:    time.Now().UTC(),
	}
}

// NewTestSubscriptionShell creates the empty subscription row that
// registration inserts for every user.
func NewTestSubscriptionShell(t testing.TB, userID string) *model.Subscription {
	t.Helper()
	now := time.Now().UTC()
	return &model.Subscription{
		ID:        ulid.Make().String(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTestListing creates a listing with sensible defaults.
func NewTestListing(t testing.TB, userID string) *model.Listing {
	t.Helper()
	return &model.Listing{
		ID:          ulid.Make().String(),
		UserID:      userID,
		Address:     "12 Oak Ln, Springfield",
		Price:       "$450,000",
		Beds:        3,
		Baths:       2,
		Sqft:        1600,
		Description: "Sun-filled craftsman near the park",
		Features:    "new roof, fenced yard",
		CreatedAt:   time.Now().UTC(),
	}
}

// NewTestGeneration creates a generation row for a listing.
func NewTestGeneration(t testing.TB, listingID string, contentType model.ContentType) *model.Generation {
	t.Helper()
	return &model.Generation{
		ID:          ulid.Make().String(),
		ListingID:   listingID,
		ContentType: contentType,
		Content:     "generated " + string(contentType) + " copy",
		CreatedAt:   time.Now().UTC(),
	}
}

// NewTestUsageEvent creates a usage event with a unique stream event ID.
func NewTestUsageEvent(t testing.TB, userID, listingID string) *model.UsageEvent {
	t.Helper()
	return &model.UsageEvent{
		ID:          ulid.Make().String(),
		EventID:     UniqueID("evt"),
		UserID:      userID,
		ListingID:   listingID,
		ContentDone: 6,
		ContentFail: 0,
		DurationMS:  1200,
		OccurredAt:  time.Now().UTC(),
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
