package service

import (
	"sync"
	"sync/atomic"
)

// RequestGenerations implements latest-request-wins for overlapping triggers on
// the same document field. A response may only be applied while its generation
// is still the newest one begun for that key.
type RequestGenerations struct {
	next    atomic.Uint64
	mu      sync.Mutex
	current map[string]uint64
}

func NewRequestGenerations() *RequestGenerations {
	return &RequestGenerations{current: make(map[string]uint64)}
}

// Begin starts a new generation for key, superseding any in flight.
func (g *RequestGenerations) Begin(key string) uint64 {
	gen := g.next.Add(1)
	g.mu.Lock()
	g.current[key] = gen
	g.mu.Unlock()
	return gen
}

// IsCurrent reports whether gen is still the newest generation for key.
// A missing key means a newer generation already finished.
func (g *RequestGenerations) IsCurrent(key string, gen uint64) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.current[key] == gen
}

// Finish forgets key if gen is still current.
func (g *RequestGenerations) Finish(key string, gen uint64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.current[key] == gen {
		delete(g.current, key)
	}
}
