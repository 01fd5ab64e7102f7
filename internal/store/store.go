// Package store define el contrato de persistencia de usuarios y el
// conector lazy compartido por todo el proceso.
//
// La capa de abajo se trata como un servicio de documentos con semántica
// findOne/insertOne. La deduplicación (provider, provider_id) y el email
// único de cuentas locales se garantizan con constraints del propio
// storage, nunca con locks en el proceso: detrás de un load balancer
// puede haber más de una instancia corriendo.
package store

import (
	"context"
	"errors"

	"github.com/trackshare/trackauth/internal/domain/types"
)

// ErrDuplicate indica que un insert violó una constraint de unicidad.
// Quien llama decide si es un conflicto real o "alguien lo creó primero".
var ErrDuplicate = errors.New("store: duplicate key")

// Store es el contrato mínimo sobre la colección de usuarios.
// Los lookups retornan (nil, nil) cuando no hay match: la ausencia
// no es un error.
type Store interface {
	// FindByProviderID busca por (provider, provider_id).
	FindByProviderID(ctx context.Context, provider, providerID string) (*types.User, error)

	// FindByEmail busca una cuenta local por email.
	FindByEmail(ctx context.Context, email string) (*types.User, error)

	// Insert agrega un registro nuevo. Retorna ErrDuplicate si choca
	// con una constraint de unicidad. El modelo es append-only.
	Insert(ctx context.Context, u *types.User) error

	// Ping verifica la conexión.
	Ping(ctx context.Context) error

	// Close cierra la conexión.
	Close(ctx context.Context) error
}
