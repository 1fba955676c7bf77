package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// SessionCookieName is the cookie carrying the session token for browser clients.
const SessionCookieName = "listkit_session"

// sessionTokenBytes is the entropy of a session token (256 bits).
const sessionTokenBytes = 32

// GenerateSessionToken creates a cryptographically secure opaque session token.
// Encoded as hex for header and cookie transport (64 chars).
func GenerateSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
