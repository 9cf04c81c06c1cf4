package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/todolite/todolite-go/internal/crypto"
)

const testSecret = "test-secret"

func authProtected(t *testing.T) (http.Handler, *Identity) {
	t.Helper()

	var got Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := IdentityFromContext(r.Context())
		if !ok {
			t.Error("IdentityFromContext() missing identity in protected handler")
		}
		got = identity
		w.WriteHeader(http.StatusOK)
	})

	return JWTAuth(testSecret)(next), &got
}

func TestJWTAuthMissingToken(t *testing.T) {
	handler, _ := authProtected(t)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	handler, _ := authProtected(t)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Authorization", "Basic abc123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestJWTAuthInvalidToken(t *testing.T) {
	handler, _ := authProtected(t)

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	handler, _ := authProtected(t)

	token, err := crypto.GenerateToken(1, "user@example.com", testSecret, -time.Minute)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
}

func TestJWTAuthValidToken(t *testing.T) {
	handler, got := authProtected(t)

	token, err := crypto.GenerateToken(42, "user@example.com", testSecret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken() unexpected error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/todos", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if got.UserID != 42 {
		t.Errorf("identity UserID = %d, want 42", got.UserID)
	}
	if got.Email != "user@example.com" {
		t.Errorf("identity Email = %q, want %q", got.Email, "user@example.com")
	}
}
