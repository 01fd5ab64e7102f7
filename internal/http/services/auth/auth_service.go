// Package auth implementa el servicio de registro, login y logout con
// credenciales locales.
package auth

import (
	"context"
	"errors"
	"time"

	"github.com/trackshare/trackauth/internal/domain/types"
	dto "github.com/trackshare/trackauth/internal/http/dto/auth"
	"github.com/trackshare/trackauth/internal/session"
)

// Errores del servicio. Los de validación vienen de identity y se
// re-exponen tal cual; estos cubren fallas propias de la capa.
var (
	ErrSessionFailed = errors.New("auth: session issuance failed")
)

// LoginResult es el resultado interno de un login exitoso.
type LoginResult struct {
	User    *types.User
	Token   string
	Expires time.Time
}

// Service expone las operaciones de autenticación local.
type Service interface {
	// Register crea la cuenta local. Retorna los errores de validación
	// de identity (ErrMissingFields, ErrPasswordMismatch,
	// ErrDuplicateEmail) sin traducir.
	Register(ctx context.Context, req dto.RegisterRequest) (*types.User, error)

	// Login verifica credenciales y emite una sesión.
	Login(ctx context.Context, req dto.LoginRequest) (*LoginResult, error)

	// Logout destruye la sesión server-side. Best-effort: un token ya
	// vencido no es error.
	Logout(ctx context.Context, token string) error
}

// SessionIssuer es lo que el servicio necesita del session manager.
type SessionIssuer interface {
	Issue(ctx context.Context, u *types.User) (string, time.Time, error)
	Destroy(ctx context.Context, token string) error
}

var _ SessionIssuer = (*session.Manager)(nil)
