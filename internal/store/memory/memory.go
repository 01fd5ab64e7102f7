// Package memory implementa el Store en memoria para desarrollo y tests.
// Respeta las mismas constraints de unicidad que los drivers reales.
package memory

import (
	"context"
	"sync"

	"github.com/trackshare/trackauth/internal/domain/types"
	"github.com/trackshare/trackauth/internal/store"
)

// Store guarda los usuarios en un slice protegido por mutex.
type Store struct {
	mu    sync.RWMutex
	users []types.User
}

var _ store.Store = (*Store)(nil)

// New crea un Store vacío.
func New() *Store { return &Store{} }

func (s *Store) FindByProviderID(_ context.Context, provider, providerID string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		u := &s.users[i]
		if u.Provider == provider && u.ProviderID == providerID {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) FindByEmail(_ context.Context, email string) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := range s.users {
		u := &s.users[i]
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *Store) Insert(_ context.Context, u *types.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		ex := &s.users[i]
		if u.Provider != "" && ex.Provider == u.Provider && ex.ProviderID == u.ProviderID {
			return store.ErrDuplicate
		}
		if u.Provider == "" && ex.Password != "" && ex.Email == u.Email {
			return store.ErrDuplicate
		}
	}
	s.users = append(s.users, *u)
	return nil
}

func (s *Store) Ping(context.Context) error  { return nil }
func (s *Store) Close(context.Context) error { return nil }

// Len retorna la cantidad de usuarios guardados. Útil en tests.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}
