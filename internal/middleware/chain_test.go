package middleware

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tilespeak/internal/model"
)

// chainAuthenticator は固定トークンのみ受け付けるテスト用Authenticator。
type chainAuthenticator struct{}

func (chainAuthenticator) Authenticate(ctx context.Context, token string) (*model.User, error) {
	if token == "chain-token" {
		return &model.User{ID: "user-chain"}, nil
	}
	if token == "" {
		return nil, model.NewNoTokenError()
	}
	return nil, model.NewInvalidTokenError()
}

// newChainRouter は本番同等のミドルウェア順でルーターを組み立てる。
func newChainRouter() chi.Router {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     100,
		GeneralBurst:    100,
		SynthesisRate:   100,
		SynthesisBurst:  100,
		CleanupInterval: time.Minute,
	})

	r := chi.NewRouter()
	r.Use(NewRecoveryMiddleware())
	r.Use(NewSecurityHeadersMiddleware())
	r.Use(NewLoggingMiddleware(logger))
	r.Use(NewBodyLimitMiddleware(1 << 20))
	r.Use(NewCORSMiddleware("http://localhost:3000"))
	r.Use(NewAuthMiddleware(chainAuthenticator{}))
	r.Use(rl.GeneralMiddleware())

	r.Post("/api/v1/auth/login", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/api/v1/project/create", func(w http.ResponseWriter, r *http.Request) {
		user, err := UserFromContext(r.Context())
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(user.ID))
	})
	r.Get("/api/v1/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})
	return r
}

func TestMiddlewareChain_AuthorizedRequest(t *testing.T) {
	router := newChainRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/project/create", nil)
	req.Header.Set("Authorization", "Bearer chain-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "user-chain" {
		t.Errorf("body = %q, want authenticated user id", rec.Body.String())
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers on response")
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://localhost:3000" {
		t.Error("expected CORS headers on response")
	}
}

func TestMiddlewareChain_UnauthorizedRequest(t *testing.T) {
	router := newChainRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/project/create", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "No token provided.") {
		t.Errorf("body = %q, want no token message", rec.Body.String())
	}
}

func TestMiddlewareChain_AuthRoutePassesWithoutToken(t *testing.T) {
	router := newChainRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestMiddlewareChain_PreflightRequest(t *testing.T) {
	router := newChainRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/project/create", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
}

func TestMiddlewareChain_PanicRecovered(t *testing.T) {
	router := newChainRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/panic", nil)
	req.Header.Set("Authorization", "Bearer chain-token")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}
