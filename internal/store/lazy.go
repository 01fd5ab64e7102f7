package store

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/trackshare/trackauth/internal/domain/types"
)

// Opener crea la conexión real al storage.
type Opener func(ctx context.Context) (Store, error)

// Lazy es un Store que abre la conexión en el primer uso y la cachea
// por el resto de la vida del proceso. Usa singleflight para que N
// requests concurrentes antes de la primera conexión esperen el mismo
// intento en vez de abrir N conexiones. Un intento fallido no deja
// estado: el siguiente caller vuelve a intentar.
type Lazy struct {
	open Opener

	sf singleflight.Group
	mu sync.RWMutex
	s  Store
}

// NewLazy crea el conector lazy. No conecta todavía.
func NewLazy(open Opener) *Lazy {
	return &Lazy{open: open}
}

// get retorna la conexión cacheada o la abre exactamente una vez.
func (l *Lazy) get(ctx context.Context) (Store, error) {
	l.mu.RLock()
	s := l.s
	l.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	v, err, _ := l.sf.Do("connect", func() (any, error) {
		// Double-check: otro caller pudo haber conectado mientras esperábamos.
		l.mu.RLock()
		cached := l.s
		l.mu.RUnlock()
		if cached != nil {
			return cached, nil
		}

		conn, err := l.open(ctx)
		if err != nil {
			return nil, err
		}

		l.mu.Lock()
		l.s = conn
		l.mu.Unlock()
		return conn, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(Store), nil
}

func (l *Lazy) FindByProviderID(ctx context.Context, provider, providerID string) (*types.User, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.FindByProviderID(ctx, provider, providerID)
}

func (l *Lazy) FindByEmail(ctx context.Context, email string) (*types.User, error) {
	s, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return s.FindByEmail(ctx, email)
}

func (l *Lazy) Insert(ctx context.Context, u *types.User) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.Insert(ctx, u)
}

func (l *Lazy) Ping(ctx context.Context) error {
	s, err := l.get(ctx)
	if err != nil {
		return err
	}
	return s.Ping(ctx)
}

// Close cierra la conexión si llegó a abrirse. No se re-inicializa
// después de un Close: es parte del shutdown del proceso.
func (l *Lazy) Close(ctx context.Context) error {
	l.mu.Lock()
	s := l.s
	l.s = nil
	l.mu.Unlock()
	if s == nil {
		return nil
	}
	return s.Close(ctx)
}
