package model

// AuthContext carries the authenticated identity for a request.
// Populated by the session middleware from the Redis session store.
type AuthContext struct {
	UserID    string
	Email     string
	SessionID string
}
