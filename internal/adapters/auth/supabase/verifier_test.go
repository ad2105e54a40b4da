package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestVerifier(t *testing.T, handler http.HandlerFunc) *Verifier {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		BaseURL: srv.URL,
		AnonKey: "anon-key",
		Timeout: time.Second,
	})
	if err != nil {
		t.Fatalf("NewClient error: %v", err)
	}
	return NewVerifier(client)
}

func TestVerify_MapsClaims(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/v1/user" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Errorf("unexpected auth header %q", got)
		}
		if got := r.Header.Get("apikey"); got != "anon-key" {
			t.Errorf("unexpected apikey header %q", got)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":    "user-1",
			"email": "ana@example.com",
			"user_metadata": map[string]any{
				"full_name": "Ana",
				"role":      "shelter",
			},
		})
	})

	claims, err := v.Verify(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("Verify error: %v", err)
	}
	if claims.UserID != "user-1" || claims.Email != "ana@example.com" || claims.InitialRole != "shelter" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestVerify_UnauthorizedToken(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"invalid token"}`, http.StatusUnauthorized)
	})

	_, err := v.Verify(context.Background(), "bad-token")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestVerify_EmptyToken(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("no request expected for empty token")
	})

	if _, err := v.Verify(context.Background(), "   "); !errors.Is(err, ErrTokenEmpty) {
		t.Fatalf("expected ErrTokenEmpty, got %v", err)
	}
}

func TestVerify_MissingUserID(t *testing.T) {
	v := newTestVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"email": "x@example.com"})
	})

	if _, err := v.Verify(context.Background(), "tok-1"); err == nil {
		t.Fatalf("expected error for missing user id")
	}
}
