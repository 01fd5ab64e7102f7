package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/trackshare/trackauth/internal/domain/types"
	"github.com/trackshare/trackauth/internal/store"
)

func TestInsert_ProviderUniqueness(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	u := &types.User{ID: "1", Provider: "google", ProviderID: "sub"}
	if err := s.Insert(ctx, u); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := s.Insert(ctx, &types.User{ID: "2", Provider: "google", ProviderID: "sub"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
	// Mismo sujeto en otro proveedor sí entra.
	if err := s.Insert(ctx, &types.User{ID: "3", Provider: "github", ProviderID: "sub"}); err != nil {
		t.Fatalf("other provider: %v", err)
	}
}

func TestInsert_LocalEmailUniqueness(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	if err := s.Insert(ctx, &types.User{ID: "1", Email: "a@b.com", Password: "hash"}); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	err := s.Insert(ctx, &types.User{ID: "2", Email: "a@b.com", Password: "hash2"})
	if !errors.Is(err, store.ErrDuplicate) {
		t.Fatalf("got %v, want ErrDuplicate", err)
	}
	// Una cuenta social con el mismo email no choca con la local: la
	// unicidad de email aplica solo a cuentas con password.
	if err := s.Insert(ctx, &types.User{ID: "3", Email: "a@b.com", Provider: "google", ProviderID: "x"}); err != nil {
		t.Fatalf("social insert: %v", err)
	}
}

func TestFind_MissReturnsNil(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	u, err := s.FindByEmail(ctx, "nadie@example.com")
	if err != nil || u != nil {
		t.Fatalf("miss should be (nil, nil), got (%v, %v)", u, err)
	}
	u, err = s.FindByProviderID(ctx, "google", "nope")
	if err != nil || u != nil {
		t.Fatalf("miss should be (nil, nil), got (%v, %v)", u, err)
	}
}
