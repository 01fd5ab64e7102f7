// Package types define tipos de dominio compartidos entre paquetes.
package types

import "time"

// Proveedores de identidad soportados. Una cuenta local no lleva provider.
const (
	ProviderGoogle   = "google"
	ProviderFacebook = "facebook"
	ProviderGitHub   = "github"
)

// NoEmail es el valor centinela que se persiste cuando un proveedor
// no entrega email en el perfil. El campo email nunca queda vacío.
const NoEmail = "No Email"

// User es el registro canónico de identidad. Se crea una sola vez
// (registro local o primer callback de un proveedor) y no se actualiza.
type User struct {
	ID         string    `bson:"_id" json:"id"`
	Name       string    `bson:"name" json:"name"`
	Email      string    `bson:"email" json:"email"`
	Password   string    `bson:"password,omitempty" json:"-"`
	Provider   string    `bson:"provider,omitempty" json:"provider,omitempty"`
	ProviderID string    `bson:"provider_id,omitempty" json:"provider_id,omitempty"`
	CreatedAt  time.Time `bson:"createdAt" json:"created_at"`
}

// IsLocal retorna true si la cuenta se registró con email+password.
// Para cuentas locales el campo provider queda ausente.
func (u *User) IsLocal() bool { return u.Provider == "" }
