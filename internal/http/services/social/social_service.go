// Package social orquesta el flujo de login con proveedores externos:
// start (redirect al consent screen) y callback (canje + reconciliación
// + sesión).
package social

import (
	"context"
	"errors"
	"time"

	"github.com/trackshare/trackauth/internal/domain/types"
)

// Errores del servicio.
var (
	ErrUnknownProvider = errors.New("social: unknown or disabled provider")
	ErrInvalidState    = errors.New("social: invalid state")
	ErrExchangeFailed  = errors.New("social: code exchange failed")
	ErrReconcileFailed = errors.New("social: identity reconciliation failed")
	ErrSessionFailed   = errors.New("social: session issuance failed")
)

// CallbackResult es el resultado de un callback exitoso.
type CallbackResult struct {
	User    *types.User
	Token   string
	Expires time.Time
}

// Service expone el flujo social completo.
type Service interface {
	// Start retorna la URL de autorización del proveedor con un state
	// firmado. ErrUnknownProvider si no está registrado.
	Start(ctx context.Context, provider string) (string, error)

	// Callback valida el state, canjea el code, reconcilia la
	// identidad y emite la sesión.
	Callback(ctx context.Context, provider, state, code string) (*CallbackResult, error)
}
