// Package identity contiene la lógica de cuentas: registro y login
// locales, y la reconciliación de perfiles de proveedores externos
// contra el registro canónico de usuarios.
package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trackshare/trackauth/internal/domain/types"
	"github.com/trackshare/trackauth/internal/observability/logger"
	"github.com/trackshare/trackauth/internal/security/password"
	"github.com/trackshare/trackauth/internal/store"
)

// Credentials implementa el camino local email+password.
type Credentials struct {
	store store.Store
	now   func() time.Time
}

// NewCredentials crea el verificador de credenciales locales.
func NewCredentials(s store.Store) *Credentials {
	return &Credentials{store: s, now: time.Now}
}

// Register valida, hashea y persiste una cuenta local nueva.
// Nunca guarda el password en claro.
func (c *Credentials) Register(ctx context.Context, name, email, pass, confirm string) (*types.User, error) {
	log := logger.From(ctx).With(logger.Component("identity.credentials"), logger.Op("Register"))

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || pass == "" {
		return nil, ErrMissingFields
	}
	if pass != confirm {
		return nil, ErrPasswordMismatch
	}

	existing, err := c.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	hash, err := password.Hash(pass)
	if err != nil {
		return nil, err
	}

	u := &types.User{
		ID:        uuid.NewString(),
		Name:      name,
		Email:     email,
		Password:  hash,
		CreatedAt: c.now().UTC(),
	}
	if err := c.store.Insert(ctx, u); err != nil {
		// Dos registros concurrentes con el mismo email: el índice único
		// del store decide y acá lo reportamos como email tomado.
		if errors.Is(err, store.ErrDuplicate) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}

	log.Info("user registered", logger.UserID(u.ID), logger.Email(u.Email))
	return u, nil
}

// Login busca la cuenta local y verifica el password contra el hash.
// Cualquier falla autentica igual que las demás: ErrInvalidCredentials.
func (c *Credentials) Login(ctx context.Context, email, pass string) (*types.User, error) {
	log := logger.From(ctx).With(logger.Component("identity.credentials"), logger.Op("Login"))

	email = normalizeEmail(email)
	if email == "" || pass == "" {
		return nil, ErrInvalidCredentials
	}

	u, err := c.store.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.Password == "" {
		// u.Password vacío cubre cuentas creadas por un proveedor:
		// no tienen camino de login local.
		log.Debug("login rejected", logger.Email(email))
		return nil, ErrInvalidCredentials
	}
	if !password.Verify(u.Password, pass) {
		log.Debug("password mismatch", logger.UserID(u.ID))
		return nil, ErrInvalidCredentials
	}

	log.Info("user logged in", logger.UserID(u.ID))
	return u, nil
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
