package client

import "sync"

// Sequencer hands out increasing tokens per key so a caller can tell whether
// a response still belongs to the newest request for that key.
type Sequencer struct {
	mu     sync.Mutex
	next   uint64
	latest map[string]uint64
}

func NewSequencer() *Sequencer {
	return &Sequencer{latest: make(map[string]uint64)}
}

// Next issues a token for key and makes it the current one.
func (s *Sequencer) Next(key string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.next++
	s.latest[key] = s.next
	return s.next
}

// Current reports whether token is still the newest for key.
func (s *Sequencer) Current(key string, token uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest[key] == token
}
