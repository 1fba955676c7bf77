//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/testutil"
)

// ============================================================================
// Repository Integration Tests
// ============================================================================

func TestIntegrationRegisterUser(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("register"))
	sub := testutil.NewTestSubscriptionShell(t, user.ID)

	if err := repo.RegisterUser(ctx, user, sub); err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}

	retrieved, err := repo.GetUserByEmail(ctx, user.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail failed: %v", err)
	}
	if retrieved.ID != user.ID {
		t.Errorf("ID mismatch: got %q, want %q", retrieved.ID, user.ID)
	}
	if retrieved.PasswordHash != user.PasswordHash {
		t.Error("PasswordHash not persisted")
	}

	// Registration also creates the profile and subscription shells
	if _, err := repo.GetProfileByUserID(ctx, user.ID); err != nil {
		t.Errorf("profile shell missing: %v", err)
	}
	shell, err := repo.GetSubscriptionByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("subscription shell missing: %v", err)
	}
	if shell.Status != "" || shell.StripeCustomerID != "" {
		t.Errorf("subscription shell not empty: %+v", shell)
	}
}

func TestIntegrationRegisterUser_DuplicateEmail(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	email := testutil.UniqueEmail("dup")
	first := testutil.NewTestUser(t, email)
	if err := repo.RegisterUser(ctx, first, testutil.NewTestSubscriptionShell(t, first.ID)); err != nil {
		t.Fatalf("RegisterUser (first) failed: %v", err)
	}

	second := testutil.NewTestUser(t, email)
	err := repo.RegisterUser(ctx, second, testutil.NewTestSubscriptionShell(t, second.ID))
	if !errors.Is(err, ErrEmailExists) {
		t.Errorf("Expected ErrEmailExists, got: %v", err)
	}
}

func TestIntegrationUpsertProfile(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	userID := registerTestUser(t, ctx, repo)

	profile := &model.AgentProfile{
		UserID:    userID,
		AgentName: "Dana Reed",
		Brokerage: "Reed Realty",
		Phone:     "555-0100",
		Tone:      model.ToneLuxury,
		UpdatedAt: time.Now().UTC(),
	}
	if err := repo.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertProfile failed: %v", err)
	}

	profile.Brokerage = "Reed & Co"
	profile.Tone = model.ToneInvestor
	if err := repo.UpsertProfile(ctx, profile); err != nil {
		t.Fatalf("UpsertProfile (update) failed: %v", err)
	}

	retrieved, err := repo.GetProfileByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetProfileByUserID failed: %v", err)
	}
	if retrieved.Brokerage != "Reed & Co" {
		t.Errorf("Brokerage mismatch: got %q", retrieved.Brokerage)
	}
	if retrieved.Tone != model.ToneInvestor {
		t.Errorf("Tone mismatch: got %q", retrieved.Tone)
	}
}

func TestIntegrationSubscriptionLifecycle(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	userID := registerTestUser(t, ctx, repo)

	if err := repo.SetSubscriptionCustomerID(ctx, userID, "cus_123"); err != nil {
		t.Fatalf("SetSubscriptionCustomerID failed: %v", err)
	}

	if err := repo.ActivateSubscription(ctx, userID, "sub_123", "monthly"); err != nil {
		t.Fatalf("ActivateSubscription failed: %v", err)
	}

	sub, err := repo.GetSubscriptionByCustomerID(ctx, "cus_123")
	if err != nil {
		t.Fatalf("GetSubscriptionByCustomerID failed: %v", err)
	}
	if sub.Status != model.SubscriptionStatusActive || sub.Plan != "monthly" {
		t.Errorf("subscription = %+v, want active monthly", sub)
	}

	periodEnd := time.Now().Add(30 * 24 * time.Hour).UTC().Truncate(time.Second)
	if err := repo.UpdateSubscriptionStatus(ctx, sub.ID, "past_due", &periodEnd); err != nil {
		t.Fatalf("UpdateSubscriptionStatus failed: %v", err)
	}

	updated, err := repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetSubscriptionByUserID failed: %v", err)
	}
	if updated.Status != "past_due" {
		t.Errorf("Status mismatch: got %q", updated.Status)
	}
	if updated.CurrentPeriodEnd == nil || !updated.CurrentPeriodEnd.Equal(periodEnd) {
		t.Errorf("CurrentPeriodEnd mismatch: got %v, want %v", updated.CurrentPeriodEnd, periodEnd)
	}

	// Status-only update keeps the stored period end
	if err := repo.UpdateSubscriptionStatus(ctx, sub.ID, "canceled", nil); err != nil {
		t.Fatalf("UpdateSubscriptionStatus (nil period) failed: %v", err)
	}
	canceled, err := repo.GetSubscriptionByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("GetSubscriptionByUserID failed: %v", err)
	}
	if canceled.CurrentPeriodEnd == nil || !canceled.CurrentPeriodEnd.Equal(periodEnd) {
		t.Errorf("CurrentPeriodEnd lost on status-only update: got %v", canceled.CurrentPeriodEnd)
	}
}

func TestIntegrationUsageCredits_DuplicatePayment(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	userID := registerTestUser(t, ctx, repo)

	paymentID := testutil.UniqueID("pi")
	credit := &model.UsageCredit{
		ID:              ulid.Make().String(),
		UserID:          userID,
		Credits:         1,
		StripePaymentID: paymentID,
		CreatedAt:       time.Now().UTC(),
	}
	if err := repo.CreateUsageCredit(ctx, credit); err != nil {
		t.Fatalf("CreateUsageCredit failed: %v", err)
	}

	replay := &model.UsageCredit{
		ID:              ulid.Make().String(),
		UserID:          userID,
		Credits:         1,
		StripePaymentID: paymentID,
		CreatedAt:       time.Now().UTC(),
	}
	err := repo.CreateUsageCredit(ctx, replay)
	if !errors.Is(err, ErrDuplicatePayment) {
		t.Errorf("Expected ErrDuplicatePayment, got: %v", err)
	}

	total, err := repo.SumCreditsByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("SumCreditsByUserID failed: %v", err)
	}
	if total != 1 {
		t.Errorf("credits = %d, want 1 after replay", total)
	}
}

func TestIntegrationListingsAndGenerations(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	userID := registerTestUser(t, ctx, repo)

	listing := testutil.NewTestListing(t, userID)
	if err := repo.CreateListing(ctx, listing); err != nil {
		t.Fatalf("CreateListing failed: %v", err)
	}

	var generations []*model.Generation
	for _, ct := range model.ContentTypes() {
		generations = append(generations, testutil.NewTestGeneration(t, listing.ID, ct))
	}
	if err := repo.CreateGenerations(ctx, generations); err != nil {
		t.Fatalf("CreateGenerations failed: %v", err)
	}

	retrieved, err := repo.GetListingByID(ctx, listing.ID)
	if err != nil {
		t.Fatalf("GetListingByID failed: %v", err)
	}
	if retrieved.Address != listing.Address {
		t.Errorf("Address mismatch: got %q, want %q", retrieved.Address, listing.Address)
	}
	if len(retrieved.Generations) != len(model.ContentTypes()) {
		t.Fatalf("generations = %d, want %d", len(retrieved.Generations), len(model.ContentTypes()))
	}

	count, err := repo.CountListingsByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("CountListingsByUserID failed: %v", err)
	}
	if count != 1 {
		t.Errorf("listing count = %d, want 1", count)
	}

	listed, err := repo.ListListingsByUserID(ctx, userID)
	if err != nil {
		t.Fatalf("ListListingsByUserID failed: %v", err)
	}
	if len(listed) != 1 || listed[0].ID != listing.ID {
		t.Errorf("listed = %+v, want the created listing", listed)
	}
}

func TestIntegrationUsageEvents_BulkInsertIdempotent(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)
	userID := registerTestUser(t, ctx, repo)

	events := NewUsageEventRepository(repo)

	event := testutil.NewTestUsageEvent(t, userID, testutil.UniqueID("listing"))
	if err := events.BulkInsert(ctx, []*model.UsageEvent{event}); err != nil {
		t.Fatalf("BulkInsert failed: %v", err)
	}

	// Stream redelivery: same event_id, new row ID
	replay := *event
	replay.ID = ulid.Make().String()
	if err := events.BulkInsert(ctx, []*model.UsageEvent{&replay}); err != nil {
		t.Fatalf("BulkInsert (replay) failed: %v", err)
	}

	var count int
	err := repo.Pool().QueryRow(ctx,
		`SELECT COUNT(*) FROM usage_events WHERE event_id = $1`, event.EventID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count usage_events: %v", err)
	}
	if count != 1 {
		t.Errorf("usage_events rows = %d, want 1 after redelivery", count)
	}
}

// ============================================================================
// Helpers
// ============================================================================

func newRepoTestEnv(t *testing.T) (context.Context, *Repository) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	dbURL := testutil.RequireEnv(t, "DATABASE_URL")

	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetCoreSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset core schema: %v", err)
	}

	return ctx, repo
}

func registerTestUser(t *testing.T, ctx context.Context, repo *Repository) string {
	t.Helper()
	user := testutil.NewTestUser(t, testutil.UniqueEmail("user"))
	if err := repo.RegisterUser(ctx, user, testutil.NewTestSubscriptionShell(t, user.ID)); err != nil {
		t.Fatalf("RegisterUser failed: %v", err)
	}
	return user.ID
}
