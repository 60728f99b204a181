package id

import (
	"sync"

	"github.com/google/uuid"
)

// Generator creates opaque identifiers.
type Generator interface {
	New() string
}

// UUID generates random (version 4) UUID strings.
type UUID struct{}

func (UUID) New() string {
	return uuid.NewString()
}

// Sequence returns fixed ids in order, repeating the last one once exhausted.
type Sequence struct {
	IDs []string

	mu  sync.Mutex
	pos int
}

func (s *Sequence) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.IDs) == 0 {
		return ""
	}
	v := s.IDs[s.pos]
	if s.pos < len(s.IDs)-1 {
		s.pos++
	}
	return v
}
