package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/listkit/listkit/internal/auth"
	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/repository"
)

// Account service errors.
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrPasswordTooShort   = errors.New("password must be at least 8 characters")
	ErrEmailExists        = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

// AccountStore defines the persistence operations the account service uses.
type AccountStore interface {
	RegisterUser(ctx context.Context, user *model.User, sub *model.Subscription) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionStore defines the session cache operations the account service uses.
// *cache.Cache satisfies it.
type SessionStore interface {
	CreateSession(ctx context.Context, tokenHash string, authCtx *model.AuthContext, ttl time.Duration) error
	DeleteSession(ctx context.Context, tokenHash string) error
}

// AccountService handles registration, login and logout.
type AccountService struct {
	store      AccountStore
	sessions   SessionStore
	sessionTTL time.Duration
	logger     *slog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(store AccountStore, sessions SessionStore, sessionTTL time.Duration, logger *slog.Logger) *AccountService {
	return &AccountService{
		store:      store,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		logger:     logger.With("component", "service.account"),
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a user account with its profile and subscription shells.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(input.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Name:         strings.TrimSpace(input.Name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	sub := &model.Subscription{
		ID:        ulid.Make().String(),
		UserID:    user.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.RegisterUser(ctx, user, sub); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("register user: %w", err)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	return user, nil
}

// Login verifies credentials and opens a session.
// The returned token is the only copy; the cache stores its hash.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return "", nil, ErrInvalidCredentials
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return "", nil, fmt.Errorf("generate session token: %w", err)
	}

	tokenHash := auth.QuickHash(token)
	authCtx := &model.AuthContext{
		UserID:    user.ID,
		Email:     user.Email,
		SessionID: tokenHash,
	}
	if err := s.sessions.CreateSession(ctx, tokenHash, authCtx, s.sessionTTL); err != nil {
		return "", nil, fmt.Errorf("create session: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID)

	return token, user, nil
}

// Logout removes the session for the given token. Unknown tokens are a no-op.
func (s *AccountService) Logout(ctx context.Context, token string) error {
	return s.sessions.DeleteSession(ctx, auth.QuickHash(token))
}
