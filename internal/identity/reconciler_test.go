package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/trackshare/trackauth/internal/domain/types"
	"github.com/trackshare/trackauth/internal/store"
	"github.com/trackshare/trackauth/internal/store/memory"
)

func TestReconcile_CreatesAndReuses(t *testing.T) {
	t.Parallel()
	st := memory.New()
	rec := NewReconciler(st)
	ctx := context.Background()

	p := ProviderProfile{ID: "sub-123", DisplayName: "Ana", Email: "ana@example.com"}

	u1, created, err := rec.Reconcile(ctx, "google", p)
	if err != nil {
		t.Fatalf("first Reconcile: %v", err)
	}
	if !created {
		t.Fatalf("first Reconcile should create")
	}
	if u1.Provider != "google" || u1.ProviderID != "sub-123" {
		t.Fatalf("provider fields not persisted: %+v", u1)
	}

	// Segundo login del mismo sujeto: mismo usuario, sin crear.
	u2, created, err := rec.Reconcile(ctx, "google", p)
	if err != nil {
		t.Fatalf("second Reconcile: %v", err)
	}
	if created {
		t.Fatalf("second Reconcile should not create")
	}
	if u2.ID != u1.ID {
		t.Fatalf("got user %s, want %s", u2.ID, u1.ID)
	}
	if st.Len() != 1 {
		t.Fatalf("store has %d users, want 1", st.Len())
	}
}

func TestReconcile_SameSubjectDifferentProvider(t *testing.T) {
	t.Parallel()
	st := memory.New()
	rec := NewReconciler(st)
	ctx := context.Background()

	p := ProviderProfile{ID: "42", DisplayName: "Ana"}
	u1, _, err := rec.Reconcile(ctx, "github", p)
	if err != nil {
		t.Fatal(err)
	}
	u2, _, err := rec.Reconcile(ctx, "facebook", p)
	if err != nil {
		t.Fatal(err)
	}
	// Mismo id de sujeto en proveedores distintos son identidades
	// distintas.
	if u1.ID == u2.ID {
		t.Fatalf("expected two distinct users")
	}
}

func TestReconcile_EmailSentinel(t *testing.T) {
	t.Parallel()
	rec := NewReconciler(memory.New())

	u, _, err := rec.Reconcile(context.Background(), "github", ProviderProfile{ID: "99", DisplayName: "Sin Mail"})
	if err != nil {
		t.Fatal(err)
	}
	if u.Email != types.NoEmail {
		t.Fatalf("got email %q, want sentinel %q", u.Email, types.NoEmail)
	}
}

func TestReconcile_ConcurrentSingleRecord(t *testing.T) {
	t.Parallel()
	st := memory.New()
	rec := NewReconciler(st)
	p := ProviderProfile{ID: "race-sub", DisplayName: "Ana"}

	const n = 16
	ids := make([]string, n)
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			u, _, err := rec.Reconcile(context.Background(), "google", p)
			if err != nil {
				t.Errorf("Reconcile: %v", err)
				return
			}
			ids[i] = u.ID
		}(i)
	}
	wg.Wait()

	if st.Len() != 1 {
		t.Fatalf("store has %d users, want 1", st.Len())
	}
	for i := 1; i < n; i++ {
		if ids[i] != ids[0] {
			t.Fatalf("callers saw different users: %s vs %s", ids[i], ids[0])
		}
	}
}

// dupStore fuerza ErrDuplicate en el primer Insert aunque el lookup no
// haya visto nada, simulando la ventana entre lookup e insert.
type dupStore struct {
	store.Store
	mu       sync.Mutex
	inserted bool
	winner   *types.User
}

func (d *dupStore) FindByProviderID(ctx context.Context, provider, providerID string) (*types.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.inserted {
		cp := *d.winner
		return &cp, nil
	}
	return nil, nil
}

func (d *dupStore) Insert(ctx context.Context, u *types.User) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.inserted {
		// Otro proceso ganó la carrera justo antes.
		d.inserted = true
		d.winner = &types.User{ID: "winner", Provider: u.Provider, ProviderID: u.ProviderID, Name: "Winner"}
		return store.ErrDuplicate
	}
	return store.ErrDuplicate
}

func TestReconcile_LostRaceRefetchesWinner(t *testing.T) {
	t.Parallel()
	rec := NewReconciler(&dupStore{Store: memory.New()})

	u, created, err := rec.Reconcile(context.Background(), "google", ProviderProfile{ID: "sub", DisplayName: "Ana"})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if created {
		t.Fatalf("lost race must not report created")
	}
	if u.ID != "winner" {
		t.Fatalf("got %s, want the winning record", u.ID)
	}
}
