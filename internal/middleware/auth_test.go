package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/tilespeak/internal/model"
)

type mockAuthenticator struct {
	authenticateFn func(ctx context.Context, token string) (*model.User, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if m.authenticateFn != nil {
		return m.authenticateFn(ctx, token)
	}
	return nil, model.NewInvalidTokenError()
}

func validAuthenticator(token string, user *model.User) *mockAuthenticator {
	return &mockAuthenticator{
		authenticateFn: func(ctx context.Context, got string) (*model.User, error) {
			if got == token {
				return user, nil
			}
			return nil, model.NewInvalidTokenError()
		},
	}
}

func TestAuthMiddleware_ValidToken_AttachesUser(t *testing.T) {
	user := &model.User{ID: "user-1"}
	mw := NewAuthMiddleware(validAuthenticator("tok-1", user))

	var gotUser *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/project/create", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotUser == nil || gotUser.ID != "user-1" {
		t.Errorf("context user = %+v, want user-1", gotUser)
	}
}

func TestAuthMiddleware_InvalidToken_Returns401(t *testing.T) {
	mw := NewAuthMiddleware(&mockAuthenticator{})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/project/create", nil)
	req.Header.Set("Authorization", "Bearer bogus")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid authentication.") {
		t.Errorf("body = %q, want invalid authentication message", rec.Body.String())
	}
}

func TestAuthMiddleware_MissingToken_Returns401(t *testing.T) {
	mw := NewAuthMiddleware(&mockAuthenticator{
		authenticateFn: func(ctx context.Context, token string) (*model.User, error) {
			if token == "" {
				return nil, model.NewNoTokenError()
			}
			return nil, model.NewInvalidTokenError()
		},
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/project/create", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No token provided.") {
		t.Errorf("body = %q, want no token message", rec.Body.String())
	}
}

func TestAuthMiddleware_AuthRouteWithoutHeader_PassesThrough(t *testing.T) {
	mw := NewAuthMiddleware(&mockAuthenticator{})

	reached := false
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		if _, err := UserFromContext(r.Context()); err == nil {
			t.Error("auth route without header must not carry a user")
		}
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if !reached {
		t.Fatal("auth route must pass through without a token")
	}
}

func TestAuthMiddleware_AuthRouteWithHeader_Validated(t *testing.T) {
	user := &model.User{ID: "user-1"}
	mw := NewAuthMiddleware(validAuthenticator("tok-1", user))

	var gotUser *model.User
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.Header.Set("Authorization", "Bearer tok-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if gotUser == nil || gotUser.ID != "user-1" {
		t.Errorf("context user = %+v, want user-1", gotUser)
	}
}

func TestUserFromContext_Missing(t *testing.T) {
	if _, err := UserFromContext(context.Background()); err == nil {
		t.Error("expected error for missing user")
	}
}

func TestUserIDFromContext(t *testing.T) {
	ctx := ContextWithUser(context.Background(), &model.User{ID: "user-9"})
	id, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "user-9" {
		t.Errorf("id = %q, want user-9", id)
	}
}
