package service

import (
	"context"
	"sync"
	"time"

	"github.com/listkit/listkit/internal/billing"
	"github.com/listkit/listkit/internal/genai"
	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/repository"
	"github.com/listkit/listkit/internal/usage"
)

type activation struct {
	userID string
	subID  string
	plan   string
}

type statusUpdate struct {
	id        string
	status    string
	periodEnd *time.Time
}

// fakeStore implements the service store interfaces in memory.
type fakeStore struct {
	mu sync.Mutex

	usersByID    map[string]*model.User
	usersByEmail map[string]*model.User
	registerErr  error

	sub           *model.Subscription
	subErr        error
	subByCustomer map[string]*model.Subscription

	creditsTotal int
	creditsErr   error
	listingCount int

	profile    *model.AgentProfile
	profileErr error
	upserted   *model.AgentProfile

	listingsByID     map[string]*model.Listing
	createdListings  []*model.Listing
	createListingErr error
	createdGens      [][]*model.Generation

	activations   []activation
	credits       []*model.UsageCredit
	creditInsErr  error
	statusUpdates []statusUpdate
	customerIDs   map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		usersByID:     make(map[string]*model.User),
		usersByEmail:  make(map[string]*model.User),
		subByCustomer: make(map[string]*model.Subscription),
		listingsByID:  make(map[string]*model.Listing),
		customerIDs:   make(map[string]string),
	}
}

func (f *fakeStore) RegisterUser(ctx context.Context, user *model.User, sub *model.Subscription) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.registerErr != nil {
		return f.registerErr
	}
	if _, exists := f.usersByEmail[user.Email]; exists {
		return repository.ErrEmailExists
	}
	f.usersByID[user.ID] = user
	f.usersByEmail[user.Email] = user
	return nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	if user, ok := f.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if user, ok := f.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeStore) GetSubscriptionByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	if f.subErr != nil {
		return nil, f.subErr
	}
	if f.sub == nil {
		return nil, repository.ErrSubscriptionNotFound
	}
	return f.sub, nil
}

func (f *fakeStore) GetSubscriptionByCustomerID(ctx context.Context, customerID string) (*model.Subscription, error) {
	if sub, ok := f.subByCustomer[customerID]; ok {
		return sub, nil
	}
	return nil, repository.ErrSubscriptionNotFound
}

func (f *fakeStore) SetSubscriptionCustomerID(ctx context.Context, userID, customerID string) error {
	f.customerIDs[userID] = customerID
	return nil
}

func (f *fakeStore) ActivateSubscription(ctx context.Context, userID, stripeSubID, plan string) error {
	f.activations = append(f.activations, activation{userID: userID, subID: stripeSubID, plan: plan})
	return nil
}

func (f *fakeStore) UpdateSubscriptionStatus(ctx context.Context, id, status string, periodEnd *time.Time) error {
	f.statusUpdates = append(f.statusUpdates, statusUpdate{id: id, status: status, periodEnd: periodEnd})
	return nil
}

func (f *fakeStore) CreateUsageCredit(ctx context.Context, credit *model.UsageCredit) error {
	if f.creditInsErr != nil {
		return f.creditInsErr
	}
	for _, existing := range f.credits {
		if existing.StripePaymentID == credit.StripePaymentID {
			return repository.ErrDuplicatePayment
		}
	}
	f.credits = append(f.credits, credit)
	return nil
}

func (f *fakeStore) SumCreditsByUserID(ctx context.Context, userID string) (int, error) {
	if f.creditsErr != nil {
		return 0, f.creditsErr
	}
	return f.creditsTotal, nil
}

func (f *fakeStore) CountListingsByUserID(ctx context.Context, userID string) (int, error) {
	return f.listingCount, nil
}

func (f *fakeStore) GetProfileByUserID(ctx context.Context, userID string) (*model.AgentProfile, error) {
	if f.profileErr != nil {
		return nil, f.profileErr
	}
	if f.profile == nil {
		return nil, repository.ErrProfileNotFound
	}
	return f.profile, nil
}

func (f *fakeStore) UpsertProfile(ctx context.Context, profile *model.AgentProfile) error {
	f.upserted = profile
	return nil
}

func (f *fakeStore) CreateListing(ctx context.Context, listing *model.Listing) error {
	if f.createListingErr != nil {
		return f.createListingErr
	}
	f.createdListings = append(f.createdListings, listing)
	f.listingsByID[listing.ID] = listing
	return nil
}

func (f *fakeStore) GetListingByID(ctx context.Context, id string) (*model.Listing, error) {
	if listing, ok := f.listingsByID[id]; ok {
		return listing, nil
	}
	return nil, repository.ErrListingNotFound
}

func (f *fakeStore) ListListingsByUserID(ctx context.Context, userID string) ([]*model.Listing, error) {
	var out []*model.Listing
	for _, l := range f.createdListings {
		if l.UserID == userID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) CreateGenerations(ctx context.Context, generations []*model.Generation) error {
	f.createdGens = append(f.createdGens, generations)
	return nil
}

// fakeSessions implements SessionStore in memory.
type fakeSessions struct {
	mu       sync.Mutex
	sessions map[string]*model.AuthContext
}

func newFakeSessions() *fakeSessions {
	return &fakeSessions{sessions: make(map[string]*model.AuthContext)}
}

func (f *fakeSessions) CreateSession(ctx context.Context, tokenHash string, authCtx *model.AuthContext, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[tokenHash] = authCtx
	return nil
}

func (f *fakeSessions) DeleteSession(ctx context.Context, tokenHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, tokenHash)
	return nil
}

// fakeGenerator returns canned content per content type.
type fakeGenerator struct {
	mu     sync.Mutex
	fn     func(contentType model.ContentType, listing genai.ListingInput) (string, error)
	inputs []genai.ListingInput
}

func (f *fakeGenerator) Generate(ctx context.Context, contentType model.ContentType, listing genai.ListingInput) (string, error) {
	f.mu.Lock()
	f.inputs = append(f.inputs, listing)
	f.mu.Unlock()
	if f.fn != nil {
		return f.fn(contentType, listing)
	}
	return string(contentType) + " copy", nil
}

// fakePublisher records usage events.
type fakePublisher struct {
	mu     sync.Mutex
	events []usage.EventPayload
}

func (f *fakePublisher) PublishAsync(event usage.EventPayload) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

// fakeGateway implements BillingGateway.
type fakeGateway struct {
	customersCreated []string
	checkoutParams   []billing.CheckoutParams
	customerID       string
	checkoutURL      string
}

func (f *fakeGateway) CreateCustomer(ctx context.Context, email, userID string) (string, error) {
	f.customersCreated = append(f.customersCreated, email)
	return f.customerID, nil
}

func (f *fakeGateway) CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (string, error) {
	f.checkoutParams = append(f.checkoutParams, params)
	return f.checkoutURL, nil
}
