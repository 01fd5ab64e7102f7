package oauth

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStateSigner_RoundTrip(t *testing.T) {
	t.Parallel()
	s := NewStateSigner([]byte("secret"))

	tok, err := s.Sign(StateClaims{Provider: "google", Nonce: "n-123"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	claims, err := s.Parse(tok)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if claims.Provider != "google" || claims.Nonce != "n-123" {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestStateSigner_RejectsTamperAndForeignKey(t *testing.T) {
	t.Parallel()
	s := NewStateSigner([]byte("secret"))
	tok, err := s.Sign(StateClaims{Provider: "github", Nonce: "n"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := s.Parse(tok + "x"); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("tampered: got %v, want ErrStateInvalid", err)
	}

	other := NewStateSigner([]byte("other-secret"))
	if _, err := other.Parse(tok); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("foreign key: got %v, want ErrStateInvalid", err)
	}
}

func TestStateSigner_Expiry(t *testing.T) {
	t.Parallel()
	s := &StateSigner{Secret: []byte("secret"), TTL: -1 * time.Minute}
	// TTL <= 0 cae al default, así que forzamos un token ya vencido
	// firmándolo a mano con un TTL mínimo y esperando.
	s.TTL = 1 * time.Nanosecond
	tok, err := s.Sign(StateClaims{Provider: "google", Nonce: "n"})
	if err != nil {
		t.Fatal(err)
	}
	time.Sleep(1100 * time.Millisecond) // exp tiene granularidad de segundos

	if _, err := s.Parse(tok); !errors.Is(err, ErrStateExpired) {
		t.Fatalf("got %v, want ErrStateExpired", err)
	}
}

func TestStateSigner_RequiresProviderAndNonce(t *testing.T) {
	t.Parallel()
	s := NewStateSigner([]byte("secret"))
	tok, err := s.Sign(StateClaims{Provider: "", Nonce: ""})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Parse(tok); !errors.Is(err, ErrStateInvalid) {
		t.Fatalf("got %v, want ErrStateInvalid", err)
	}
}

func TestRegistry(t *testing.T) {
	t.Parallel()
	r := NewRegistry()
	if _, ok := r.Get("google"); ok {
		t.Fatal("empty registry returned a strategy")
	}
	r.Register(stubStrategy("google"))
	r.Register(stubStrategy("facebook"))

	if _, ok := r.Get("google"); !ok {
		t.Fatal("google not found")
	}
	names := r.Names()
	if len(names) != 2 || names[0] != "facebook" || names[1] != "google" {
		t.Fatalf("Names() = %v", names)
	}
}

type stubStrategy string

func (s stubStrategy) Name() string { return string(s) }
func (s stubStrategy) AuthURL(_ context.Context, state, nonce string) (string, error) {
	return "https://example.com?state=" + state, nil
}
func (s stubStrategy) Exchange(_ context.Context, code, nonce string) (*Profile, error) {
	return &Profile{ID: "stub"}, nil
}
