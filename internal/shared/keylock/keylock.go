// Package keylock provides a striped mutex keyed by string.
package keylock

import (
	"hash/fnv"
	"sync"
)

// DefaultStripes is the stripe count used by New when n <= 0.
const DefaultStripes = 64

// Striped serializes work per key using a fixed set of mutexes.
// Two keys may share a stripe; the same key always maps to the same one.
type Striped struct {
	stripes []sync.Mutex
}

// New returns a Striped lock with n stripes.
func New(n int) *Striped {
	if n <= 0 {
		n = DefaultStripes
	}
	return &Striped{stripes: make([]sync.Mutex, n)}
}

func (s *Striped) stripe(key string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &s.stripes[h.Sum32()%uint32(len(s.stripes))]
}

// Lock acquires the stripe for key and returns its unlock func.
func (s *Striped) Lock(key string) (unlock func()) {
	mu := s.stripe(key)
	mu.Lock()
	return mu.Unlock
}

// Do runs fn while holding the stripe for key.
func (s *Striped) Do(key string, fn func() error) error {
	unlock := s.Lock(key)
	defer unlock()
	return fn()
}
