package cache

import (
	"github.com/trackshare/trackauth/internal/cache/memory"
	"github.com/trackshare/trackauth/internal/cache/redis"
)

// New arma el backend según la config. Cualquier kind que no sea
// "redis" cae a memory.
func New(cfg Config) Cache {
	if cfg.Kind == "redis" {
		return redis.New(cfg.Addr, cfg.DB, cfg.Prefix)
	}
	return memory.New(cfg.DefaultTTL)
}
