package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/listkit/listkit/internal/auth"
	"github.com/listkit/listkit/internal/cache"
)

// SessionAuthConfig holds configuration for the session auth middleware.
type SessionAuthConfig struct {
	Logger *slog.Logger
	Cache  *cache.Cache
}

// SessionAuth returns a middleware that authenticates requests against the
// Redis session store. The token comes from the Authorization header or the
// session cookie; its hash is the lookup key, so the raw token never lands
// in Redis or logs.
func SessionAuth(cfg SessionAuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := extractSessionToken(r)
			if token == "" {
				logAuthFailure(cfg.Logger, r, "missing_token")
				writeAuthError(w)
				return
			}

			authCtx, err := cfg.Cache.GetSession(r.Context(), auth.QuickHash(token))
			if err != nil {
				cfg.Logger.Error("session lookup failed",
					slog.String("error", err.Error()),
					slog.String("request_id", GetRequestID(r.Context())),
				)
				writeAuthError(w)
				return
			}
			if authCtx == nil {
				logAuthFailure(cfg.Logger, r, "invalid_or_expired_session")
				writeAuthError(w)
				return
			}

			if entry := logEntryFrom(r.Context()); entry != nil {
				entry.userID = authCtx.UserID
			}

			ctx := auth.ContextWithAuth(r.Context(), authCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// extractSessionToken reads the session token from the request.
// Supports "Authorization: Bearer <token>" and the session cookie.
func extractSessionToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}

	cookie, err := r.Cookie(auth.SessionCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func logAuthFailure(logger *slog.Logger, r *http.Request, reason string) {
	logger.Warn("authentication failed",
		slog.String("reason", reason),
		slog.String("ip", r.RemoteAddr),
		slog.String("endpoint", r.Method+" "+r.URL.Path),
		slog.String("request_id", GetRequestID(r.Context())),
	)
}

// writeAuthError writes a 401 Unauthorized response.
// Uses the same message for all auth failures to prevent enumeration.
func writeAuthError(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":{"code":"UNAUTHORIZED","message":"Invalid or missing session"}}`))
}
