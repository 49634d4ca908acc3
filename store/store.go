// Package store owns resume documents and their section collections.
//
// A Store holds one published State and moves it forward one command at a
// time. Transitions never modify a State that has already been handed out:
// callers keep whatever snapshot they read and see it unchanged, while the
// next reader gets the new one. The Store is single-writer. Apply and
// Dispatch must be called from one goroutine (socket.Hub does this); Snapshot
// may be called from anywhere.
package store

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"resumebuilder/pkg/identity"
)

type Store struct {
	state    atomic.Pointer[State]
	revision atomic.Uint64
	ids   identity.Generator
	clock func() time.Time
	log   *zap.Logger
}

type Option func(*Store)

func WithIdentity(g identity.Generator) Option {
	return func(s *Store) { s.ids = g }
}

func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New publishes seed as the initial snapshot.
func New(seed State, opts ...Option) *Store {
	s := &Store{
		ids:   identity.NewUUIDv7(),
		clock: time.Now,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.state.Store(&seed)
	return s
}

// Snapshot returns the latest published state.
func (s *Store) Snapshot() State {
	return *s.state.Load()
}

// Revision counts published snapshots. It moves only when a command changed
// the state, so two equal readings mean nothing happened in between.
func (s *Store) Revision() uint64 {
	return s.revision.Load()
}

// Apply runs cmd against the current snapshot and publishes the result. On
// error nothing is published and the current snapshot is returned. A command
// that changes nothing publishes nothing either.
func (s *Store) Apply(cmd Command) (State, error) {
	current := s.Snapshot()
	if cmd == nil {
		return current, nil
	}

	t := transition{now: s.clock().UTC(), ids: s.ids}
	next, changed, err := t.apply(current, cmd)
	if err != nil {
		s.log.Warn("command rejected", zap.String("type", string(cmd.Type())), zap.Error(err))
		return current, err
	}
	if !changed {
		s.log.Debug("command changed nothing", zap.String("type", string(cmd.Type())))
		return current, nil
	}
	s.state.Store(&next)
	s.revision.Add(1)
	s.log.Debug("command applied",
		zap.String("type", string(cmd.Type())),
		zap.Int("documents", len(next.Documents)),
		zap.String("current", next.CurrentID),
	)
	return next, nil
}
