// Package memory implementa el cache in-process sobre go-cache.
package memory

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

type Mem struct{ c *gocache.Cache }

func New(defaultTTL time.Duration) *Mem {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &Mem{c: gocache.New(defaultTTL, time.Minute)}
}

func (m *Mem) Get(k string) ([]byte, bool) {
	v, ok := m.c.Get(k)
	if !ok {
		return nil, false
	}
	b, _ := v.([]byte)
	return b, true
}

func (m *Mem) Set(k string, v []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	m.c.Set(k, v, ttl)
	return nil
}

func (m *Mem) Delete(k string) error {
	m.c.Delete(k)
	return nil
}
