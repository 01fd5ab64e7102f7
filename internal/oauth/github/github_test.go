package github

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func newTestStrategy(t *testing.T, user map[string]any, emails []map[string]any) *Strategy {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("token endpoint got %s", r.Method)
		}
		_ = r.ParseForm()
		if r.PostFormValue("code") != "the-code" {
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "bad_verification_code"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]string{"access_token": "at-1", "token_type": "bearer"})
	})
	mux.HandleFunc("/user", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer at-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_ = json.NewEncoder(w).Encode(user)
	})
	mux.HandleFunc("/emails", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(emails)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	s := New("cid", "csecret", "http://localhost/auth/github/callback", nil)
	s.AuthEndpoint = srv.URL + "/authorize"
	s.TokenEndpoint = srv.URL + "/token"
	s.UserEndpoint = srv.URL + "/user"
	s.EmailEndpoint = srv.URL + "/emails"
	return s
}

func TestAuthURL(t *testing.T) {
	t.Parallel()
	s := New("cid", "sec", "http://localhost/cb", nil)

	raw, err := s.AuthURL(context.Background(), "the-state", "ignored-nonce")
	if err != nil {
		t.Fatal(err)
	}
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	if q.Get("client_id") != "cid" || q.Get("state") != "the-state" {
		t.Fatalf("bad query: %s", raw)
	}
	if !strings.Contains(q.Get("scope"), "user:email") {
		t.Fatalf("default scope missing: %q", q.Get("scope"))
	}
	if q.Get("nonce") != "" {
		t.Fatalf("github must not send nonce")
	}
}

func TestExchange_ProfileWithEmail(t *testing.T) {
	t.Parallel()
	s := newTestStrategy(t, map[string]any{
		"id": 12345, "login": "anadev", "name": "Ana", "email": "ana@example.com",
	}, nil)

	p, err := s.Exchange(context.Background(), "the-code", "")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if p.ID != "12345" || p.DisplayName != "Ana" || p.Email != "ana@example.com" {
		t.Fatalf("profile: %+v", p)
	}
}

func TestExchange_EmailFallback(t *testing.T) {
	t.Parallel()
	s := newTestStrategy(t, map[string]any{
		"id": 7, "login": "anadev", "name": "", "email": "",
	}, []map[string]any{
		{"email": "old@example.com", "primary": false, "verified": true},
		{"email": "ana@example.com", "primary": true, "verified": true},
	})

	p, err := s.Exchange(context.Background(), "the-code", "")
	if err != nil {
		t.Fatal(err)
	}
	// primary+verified gana; sin name cae al login.
	if p.Email != "ana@example.com" {
		t.Fatalf("email: %q", p.Email)
	}
	if p.DisplayName != "anadev" {
		t.Fatalf("display name: %q", p.DisplayName)
	}
}

func TestExchange_NoEmailAnywhere(t *testing.T) {
	t.Parallel()
	s := newTestStrategy(t, map[string]any{"id": 8, "login": "ghost"}, []map[string]any{})

	p, err := s.Exchange(context.Background(), "the-code", "")
	if err != nil {
		t.Fatal(err)
	}
	// El perfil queda sin email; el centinela lo pone la capa de
	// identidad, no la estrategia.
	if p.Email != "" {
		t.Fatalf("email should be empty, got %q", p.Email)
	}
}

func TestExchange_BadCode(t *testing.T) {
	t.Parallel()
	s := newTestStrategy(t, map[string]any{"id": 1}, nil)

	if _, err := s.Exchange(context.Background(), "wrong-code", ""); err == nil {
		t.Fatal("expected error for rejected code")
	}
}
