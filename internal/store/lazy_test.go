package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/trackshare/trackauth/internal/domain/types"
)

type fakeStore struct {
	closed atomic.Bool
}

func (f *fakeStore) FindByProviderID(context.Context, string, string) (*types.User, error) {
	return nil, nil
}
func (f *fakeStore) FindByEmail(context.Context, string) (*types.User, error) { return nil, nil }
func (f *fakeStore) Insert(context.Context, *types.User) error                { return nil }
func (f *fakeStore) Ping(context.Context) error                               { return nil }
func (f *fakeStore) Close(context.Context) error {
	f.closed.Store(true)
	return nil
}

func TestLazy_OpensOnce(t *testing.T) {
	t.Parallel()
	var opens atomic.Int32
	l := NewLazy(func(ctx context.Context) (Store, error) {
		opens.Add(1)
		return &fakeStore{}, nil
	})

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if err := l.Ping(context.Background()); err != nil {
				t.Errorf("Ping: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := opens.Load(); got != 1 {
		t.Fatalf("opener ran %d times, want 1", got)
	}
}

func TestLazy_FailedOpenRetries(t *testing.T) {
	t.Parallel()
	var opens atomic.Int32
	boom := errors.New("connect refused")
	l := NewLazy(func(ctx context.Context) (Store, error) {
		if opens.Add(1) == 1 {
			return nil, boom
		}
		return &fakeStore{}, nil
	})

	if err := l.Ping(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("first Ping: got %v, want %v", err, boom)
	}
	// Un intento fallido no envenena el conector.
	if err := l.Ping(context.Background()); err != nil {
		t.Fatalf("second Ping: %v", err)
	}
	if got := opens.Load(); got != 2 {
		t.Fatalf("opener ran %d times, want 2", got)
	}
}

func TestLazy_CloseTearsDown(t *testing.T) {
	t.Parallel()
	fs := &fakeStore{}
	l := NewLazy(func(ctx context.Context) (Store, error) { return fs, nil })

	if err := l.Ping(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := l.Close(context.Background()); err != nil {
		t.Fatal(err)
	}
	if !fs.closed.Load() {
		t.Fatalf("underlying store not closed")
	}
	// Close sin conexión abierta es no-op.
	l2 := NewLazy(func(ctx context.Context) (Store, error) { return &fakeStore{}, nil })
	if err := l2.Close(context.Background()); err != nil {
		t.Fatalf("Close on unopened: %v", err)
	}
}
