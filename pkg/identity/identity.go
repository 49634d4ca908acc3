// Package identity hands out identifiers for documents and sections.
//
// Every Generator guarantees that identifiers are unique for the life of the
// process and that their string form sorts in creation order.
package identity

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

type Generator interface {
	Next() string
}

// UUIDv7 produces time-ordered UUIDs. google/uuid serializes V7 generation and
// bumps the timestamp when two calls land in the same tick, so consecutive
// values are strictly increasing.
type UUIDv7 struct{}

func NewUUIDv7() UUIDv7 {
	return UUIDv7{}
}

func (UUIDv7) Next() string {
	return uuid.Must(uuid.NewV7()).String()
}

// Sequence yields prefix-000001, prefix-000002, ... and is used for seed data
// and tests where stable identifiers matter.
type Sequence struct {
	mu     sync.Mutex
	prefix string
	n      uint64
}

func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

func (s *Sequence) Next() string {
	s.mu.Lock()
	s.n++
	n := s.n
	s.mu.Unlock()
	if s.prefix == "" {
		return fmt.Sprintf("%012d", n)
	}
	return fmt.Sprintf("%s-%012d", s.prefix, n)
}
