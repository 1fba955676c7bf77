package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/listkit/listkit/internal/model"
)

const (
	// sessionPrefix is the Redis key prefix for sessions.
	sessionPrefix = "session:"
)

// storedSession is the session record kept in Redis.
// Keys are derived from a hash of the opaque token, never the token itself.
type storedSession struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid"`
	Email     string `json:"email"`
	CreatedAt int64  `json:"iat"`
}

// CreateSession stores a session for the given token hash with a TTL.
func (c *Cache) CreateSession(ctx context.Context, tokenHash string, auth *model.AuthContext, ttl time.Duration) error {
	key := sessionPrefix + tokenHash

	stored := storedSession{
		SessionID: auth.SessionID,
		UserID:    auth.UserID,
		Email:     auth.Email,
		CreatedAt: time.Now().Unix(),
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// GetSession retrieves a session by token hash.
// Returns nil if not found or expired (not an error).
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*model.AuthContext, error) {
	key := sessionPrefix + tokenHash

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		// Miss or expired session
		return nil, nil //nolint:nilerr
	}

	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		// Corrupted entry - treat as miss
		return nil, nil //nolint:nilerr
	}

	return &model.AuthContext{
		SessionID: stored.SessionID,
		UserID:    stored.UserID,
		Email:     stored.Email,
	}, nil
}

// DeleteSession removes a session by token hash. Used on logout.
func (c *Cache) DeleteSession(ctx context.Context, tokenHash string) error {
	key := sessionPrefix + tokenHash
	return c.client.Del(ctx, key).Err()
}
