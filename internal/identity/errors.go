package identity

import "errors"

// Errores de registro y login. El login colapsa "no existe" y "password
// incorrecto" en ErrInvalidCredentials para no filtrar cuál fue.
var (
	ErrMissingFields      = errors.New("identity: all fields required")
	ErrPasswordMismatch   = errors.New("identity: password confirmation does not match")
	ErrDuplicateEmail     = errors.New("identity: email already exists")
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
)
