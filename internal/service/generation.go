package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/listkit/listkit/internal/genai"
	"github.com/listkit/listkit/internal/metrics"
	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/repository"
	"github.com/listkit/listkit/internal/usage"
)

// Generation service errors.
var (
	ErrNotEntitled    = errors.New("no active subscription or available credits")
	ErrMissingAddress = errors.New("address is required")
	ErrListingMissing = errors.New("listing not found")
)

const defaultAgentName = "Agent"

// GenerationStore defines the persistence operations the generation
// service depends on.
type GenerationStore interface {
	GetProfileByUserID(ctx context.Context, userID string) (*model.AgentProfile, error)
	CreateListing(ctx context.Context, listing *model.Listing) error
	CreateGenerations(ctx context.Context, generations []*model.Generation) error
	GetListingByID(ctx context.Context, id string) (*model.Listing, error)
	ListListingsByUserID(ctx context.Context, userID string) ([]*model.Listing, error)
}

// ContentGenerator produces one piece of marketing copy for a listing.
// *genai.Client satisfies it.
type ContentGenerator interface {
	Generate(ctx context.Context, contentType model.ContentType, listing genai.ListingInput) (string, error)
}

// UsagePublisher records completed generation batches off the request path.
type UsagePublisher interface {
	PublishAsync(event usage.EventPayload)
}

// GenerationService runs the six-variant content generation flow.
type GenerationService struct {
	store        GenerationStore
	entitlements *EntitlementChecker
	generator    ContentGenerator
	publisher    UsagePublisher
	logger       *slog.Logger
	metrics      metrics.Recorder
}

// NewGenerationService creates a new GenerationService.
func NewGenerationService(
	store GenerationStore,
	entitlements *EntitlementChecker,
	generator ContentGenerator,
	publisher UsagePublisher,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *GenerationService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &GenerationService{
		store:        store,
		entitlements: entitlements,
		generator:    generator,
		publisher:    publisher,
		logger:       logger.With("component", "service.generation"),
		metrics:      recorder,
	}
}

// GenerateInput defines the property details for a generation request.
type GenerateInput struct {
	UserID      string
	Address     string
	Price       string
	Beds        int
	Baths       float64
	Sqft        int
	Description string
	Features    string
}

// Generate gates on entitlement, persists the listing, then fans out one
// model call per content type. A failed slot degrades to the sentinel text
// instead of failing the batch; the listing is returned with all six
// generations in fixed order.
func (s *GenerationService) Generate(ctx context.Context, input GenerateInput) (*model.Listing, error) {
	if strings.TrimSpace(input.Address) == "" {
		return nil, ErrMissingAddress
	}

	s.metrics.IncGenerationRequested()

	ent, err := s.entitlements.Check(ctx, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("check entitlement: %w", err)
	}
	if !ent.Allowed {
		return nil, ErrNotEntitled
	}

	profile := s.loadProfile(ctx, input.UserID)

	now := time.Now().UTC()
	listing := &model.Listing{
		ID:          ulid.Make().String(),
		UserID:      input.UserID,
		Address:     strings.TrimSpace(input.Address),
		Price:       strings.TrimSpace(input.Price),
		Beds:        input.Beds,
		Baths:       input.Baths,
		Sqft:        input.Sqft,
		Description: input.Description,
		Features:    input.Features,
		CreatedAt:   now,
	}
	if err := s.store.CreateListing(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}

	prompt := genai.ListingInput{
		Address:     listing.Address,
		Price:       listing.Price,
		Beds:        listing.Beds,
		Baths:       listing.Baths,
		Sqft:        listing.Sqft,
		Description: listing.Description,
		Features:    listing.Features,
		AgentName:   profile.AgentName,
		Brokerage:   profile.Brokerage,
		Tone:        profile.Tone,
	}

	start := time.Now()
	contents, failed := s.fanOut(ctx, listing.ID, prompt)
	duration := time.Since(start)

	types := model.ContentTypes()
	generations := make([]*model.Generation, len(types))
	for i, ct := range types {
		generations[i] = &model.Generation{
			ID:          ulid.Make().String(),
			ListingID:   listing.ID,
			ContentType: ct,
			Content:     contents[i],
			CreatedAt:   time.Now().UTC(),
		}
	}
	if err := s.store.CreateGenerations(ctx, generations); err != nil {
		return nil, fmt.Errorf("persist generations: %w", err)
	}
	listing.Generations = generations

	s.metrics.IncGenerationCompleted()
	s.metrics.ObserveGenerationDuration(duration)
	s.logger.Info("generation batch complete",
		"listing_id", listing.ID,
		"degraded_slots", failed,
		"duration_ms", duration.Milliseconds(),
	)

	if s.publisher != nil {
		s.publisher.PublishAsync(usage.EventPayload{
			UserID:      input.UserID,
			ListingID:   listing.ID,
			ContentDone: len(types) - failed,
			ContentFail: failed,
			DurationMS:  duration.Milliseconds(),
			OccurredAt:  time.Now().UnixMilli(),
		})
	}

	return listing, nil
}

// fanOut runs one generator call per content type concurrently and returns
// the results in ContentTypes order plus the number of degraded slots.
func (s *GenerationService) fanOut(ctx context.Context, listingID string, prompt genai.ListingInput) ([]string, int) {
	types := model.ContentTypes()
	contents := make([]string, len(types))

	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := 0

	for i, ct := range types {
		wg.Add(1)
		go func(i int, ct model.ContentType) {
			defer wg.Done()

			content, err := s.generator.Generate(ctx, ct, prompt)
			if err != nil {
				s.logger.Warn("content slot degraded",
					"listing_id", listingID,
					"content_type", ct,
					"error", err,
				)
				s.metrics.IncGenerationSlotDegraded()
				mu.Lock()
				failed++
				mu.Unlock()
				content = genai.SentinelFailure
			}
			contents[i] = content
		}(i, ct)
	}
	wg.Wait()

	return contents, failed
}

// loadProfile fetches the agent profile, substituting defaults for the
// shell row or a missing one so generation never blocks on settings.
func (s *GenerationService) loadProfile(ctx context.Context, userID string) *model.AgentProfile {
	profile, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			s.logger.Warn("profile lookup failed, using defaults", "user_id", userID, "error", err)
		}
		profile = &model.AgentProfile{UserID: userID}
	}
	if strings.TrimSpace(profile.AgentName) == "" {
		profile.AgentName = defaultAgentName
	}
	if !profile.Tone.IsValid() {
		profile.Tone = model.ToneLuxury
	}
	return profile
}

// GetListing returns one of the user's listings with its generations.
// Listings owned by other users are reported as missing, not forbidden.
func (s *GenerationService) GetListing(ctx context.Context, userID, listingID string) (*model.Listing, error) {
	listing, err := s.store.GetListingByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, repository.ErrListingNotFound) {
			return nil, ErrListingMissing
		}
		return nil, err
	}
	if listing.UserID != userID {
		return nil, ErrListingMissing
	}
	return listing, nil
}

// ListListings returns the user's listings, newest first.
func (s *GenerationService) ListListings(ctx context.Context, userID string) ([]*model.Listing, error) {
	return s.store.ListListingsByUserID(ctx, userID)
}
