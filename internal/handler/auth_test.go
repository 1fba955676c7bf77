package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/listkit/listkit/internal/auth"
	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/repository"
	"github.com/listkit/listkit/internal/service"
)

// accountStore backs the account service for handler tests.
type accountStore struct {
	byEmail map[string]*model.User
}

func (s *accountStore) RegisterUser(ctx context.Context, user *model.User, sub *model.Subscription) error {
	if _, exists := s.byEmail[user.Email]; exists {
		return repository.ErrEmailExists
	}
	s.byEmail[user.Email] = user
	return nil
}

func (s *accountStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	if user, ok := s.byEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

type sessionRecorder struct {
	created map[string]*model.AuthContext
}

func (s *sessionRecorder) CreateSession(ctx context.Context, tokenHash string, authCtx *model.AuthContext, ttl time.Duration) error {
	s.created[tokenHash] = authCtx
	return nil
}

func (s *sessionRecorder) DeleteSession(ctx context.Context, tokenHash string) error {
	delete(s.created, tokenHash)
	return nil
}

func newAuthHandler() (*AuthHandler, *accountStore, *sessionRecorder) {
	store := &accountStore{byEmail: make(map[string]*model.User)}
	sessions := &sessionRecorder{created: make(map[string]*model.AuthContext)}
	svc := service.NewAccountService(store, sessions, time.Hour, slog.Default())
	return NewAuthHandler(svc, slog.Default(), time.Hour, false), store, sessions
}

func postJSON(target, body string) (*httptest.ResponseRecorder, *http.Request) {
	req := httptest.NewRequest(http.MethodPost, target, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	return httptest.NewRecorder(), req
}

func TestRegister(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"valid", `{"name":"Dana","email":"dana@example.com","password":"longenough"}`, http.StatusCreated},
		{"invalid json", `{`, http.StatusBadRequest},
		{"bad email", `{"email":"nope","password":"longenough"}`, http.StatusBadRequest},
		{"short password", `{"email":"dana@example.com","password":"abc"}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _, _ := newAuthHandler()
			rec, req := postJSON("/api/v1/auth/register", tt.body)

			h.Register(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	h, _, _ := newAuthHandler()

	body := `{"email":"dana@example.com","password":"longenough"}`
	rec, req := postJSON("/api/v1/auth/register", body)
	h.Register(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register status = %d", rec.Code)
	}

	rec, req = postJSON("/api/v1/auth/register", body)
	h.Register(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("second register status = %d, want 409", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	h, _, sessions := newAuthHandler()

	rec, req := postJSON("/api/v1/auth/register", `{"email":"dana@example.com","password":"longenough"}`)
	h.Register(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d", rec.Code)
	}

	t.Run("wrong password", func(t *testing.T) {
		rec, req := postJSON("/api/v1/auth/login", `{"email":"dana@example.com","password":"wrong"}`)
		h.Login(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("success sets cookie and returns token", func(t *testing.T) {
		rec, req := postJSON("/api/v1/auth/login", `{"email":"dana@example.com","password":"longenough"}`)
		h.Login(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
		}

		var resp struct {
			Token string `json:"token"`
			User  struct {
				Email string `json:"email"`
			} `json:"user"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.Token == "" || resp.User.Email != "dana@example.com" {
			t.Errorf("response = %+v", resp)
		}

		var sessionCookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == auth.SessionCookieName {
				sessionCookie = c
			}
		}
		if sessionCookie == nil {
			t.Fatal("session cookie not set")
		}
		if sessionCookie.Value != resp.Token || !sessionCookie.HttpOnly {
			t.Errorf("cookie = %+v", sessionCookie)
		}

		if sessions.created[auth.QuickHash(resp.Token)] == nil {
			t.Error("session not stored under token hash")
		}
	})
}

func TestLogout(t *testing.T) {
	h, _, sessions := newAuthHandler()

	rec, req := postJSON("/api/v1/auth/register", `{"email":"dana@example.com","password":"longenough"}`)
	h.Register(rec, req)

	rec, req = postJSON("/api/v1/auth/login", `{"email":"dana@example.com","password":"longenough"}`)
	h.Login(rec, req)

	var resp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode login: %v", err)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+resp.Token)
	h.Logout(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if len(sessions.created) != 0 {
		t.Error("session survives logout")
	}

	// Cleared cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.SessionCookieName && c.MaxAge >= 0 {
			t.Errorf("cookie not expired: %+v", c)
		}
	}

	// Logging out again is a no-op
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	h.Logout(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Errorf("repeat logout status = %d, want 204", rec.Code)
	}
}
