// Package oauth define el contrato de las estrategias de login social
// y el registro de estrategias activas.
//
// Cada proveedor implementa Strategy con el intercambio estándar de
// authorization code: redirigir al consent screen, recibir el code en
// el callback, canjearlo por un perfil. Qué hacer con el perfil no es
// asunto de este paquete.
package oauth

import (
	"context"
	"sort"
)

// Profile es el perfil normalizado que entrega una estrategia después
// del intercambio.
type Profile struct {
	// ID es el identificador estable del sujeto en el proveedor.
	ID          string
	DisplayName string
	// Email queda vacío si el proveedor no lo entrega.
	Email         string
	EmailVerified bool
	Picture       string
}

// Strategy es una integración con un proveedor de identidad externo.
type Strategy interface {
	// Name retorna el nombre canónico del proveedor ("google", ...).
	Name() string

	// AuthURL arma la URL del consent screen con state y nonce.
	AuthURL(ctx context.Context, state, nonce string) (string, error)

	// Exchange canjea el authorization code por el perfil del usuario.
	// nonce es el valor emitido en AuthURL; las estrategias que no
	// soportan nonce lo ignoran.
	Exchange(ctx context.Context, code, nonce string) (*Profile, error)
}

// Registry contiene las estrategias activas. Se arma una sola vez al
// arranque: un proveedor sin credenciales configuradas simplemente no
// se registra y su ruta de login queda deshabilitada.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry crea un registro vacío.
func NewRegistry() *Registry {
	return &Registry{strategies: make(map[string]Strategy)}
}

// Register agrega una estrategia. La última registrada con el mismo
// nombre gana.
func (r *Registry) Register(s Strategy) {
	r.strategies[s.Name()] = s
}

// Get retorna la estrategia por nombre.
func (r *Registry) Get(name string) (Strategy, bool) {
	s, ok := r.strategies[name]
	return s, ok
}

// Names retorna los proveedores activos, ordenados.
func (r *Registry) Names() []string {
	out := make([]string, 0, len(r.strategies))
	for name := range r.strategies {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
