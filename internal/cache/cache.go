// Package cache provee la abstracción de cache con soporte multi-backend.
//
//   - memory: in-process, para desarrollo y tests
//   - redis: distribuido, para producción (las sesiones sobreviven
//     reinicios del proceso)
package cache

import "time"

// Cache son las operaciones que necesita la capa de sesiones.
type Cache interface {
	// Get retorna el valor y true si la key existe y no expiró.
	Get(key string) ([]byte, bool)

	// Set guarda un valor con TTL. ttl <= 0 significa sin expiración.
	Set(key string, value []byte, ttl time.Duration) error

	// Delete elimina una key. Borrar una key inexistente no es error.
	Delete(key string) error
}

// Config para crear un backend.
type Config struct {
	Kind   string // "memory" | "redis"
	Addr   string
	DB     int
	Prefix string
	// DefaultTTL aplica a entradas sin TTL explícito (backend memory).
	DefaultTTL time.Duration
}
