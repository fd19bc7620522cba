package repository

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/okian/mergington/internal/domain/model"
)

// MemoryStore is a Store backed by a map guarded by a single RWMutex. Every
// mutation does its check and write inside one critical section so the
// no-duplicate invariant holds under concurrent requests.
type MemoryStore struct {
	mu         sync.RWMutex
	activities map[string]*model.Activity

	seq uint64

	enforceCapacity bool
	observe         func(activity string, participants int)
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore builds a store from seed. The seed is copied.
func NewMemoryStore(_ context.Context, seed map[string]model.Activity, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		activities:      make(map[string]*model.Activity, len(seed)),
		enforceCapacity: true,
		observe:         func(string, int) {},
	}
	for _, opt := range opts {
		opt(s)
	}
	for name, a := range seed {
		c := a.Clone()
		s.activities[name] = &c
		s.observe(name, len(c.Participants))
	}
	return s
}

// All returns a deep copy of every activity.
func (s *MemoryStore) All(_ context.Context) map[string]model.Activity {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.Activity, len(s.activities))
	for name, a := range s.activities {
		out[name] = a.Clone()
	}
	return out
}

// Get returns a copy of one activity.
func (s *MemoryStore) Get(_ context.Context, name string) (model.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.activities[name]
	if !ok {
		return model.Activity{}, ErrActivityNotFound
	}
	return a.Clone(), nil
}

// Exists reports whether name is a known activity.
func (s *MemoryStore) Exists(_ context.Context, name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.activities[name]
	return ok
}

// AddParticipant appends email to the named roster.
func (s *MemoryStore) AddParticipant(_ context.Context, name, email string) (model.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return model.Revision{}, ErrActivityNotFound
	}
	if a.HasParticipant(email) {
		return model.Revision{}, ErrAlreadySignedUp
	}
	if s.enforceCapacity && a.Full() {
		return model.Revision{}, ErrActivityFull
	}
	a.Participants = append(a.Participants, email)
	s.observe(name, len(a.Participants))
	return s.revision(), nil
}

// RemoveParticipant deletes email from the named roster.
func (s *MemoryStore) RemoveParticipant(_ context.Context, name, email string) (model.Revision, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.activities[name]
	if !ok {
		return model.Revision{}, ErrActivityNotFound
	}
	i := slices.Index(a.Participants, email)
	if i < 0 {
		return model.Revision{}, ErrNotSignedUp
	}
	a.Participants = slices.Delete(a.Participants, i, i+1)
	s.observe(name, len(a.Participants))
	return s.revision(), nil
}

// revision stamps the next mutation. Callers hold s.mu.
func (s *MemoryStore) revision() model.Revision {
	s.seq++
	return model.Revision{Seq: s.seq, At: time.Now().UTC()}
}

// Count returns the number of activities.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.activities)
}

// ParticipantCount returns the number of sign-ups over all activities.
func (s *MemoryStore) ParticipantCount(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, a := range s.activities {
		n += len(a.Participants)
	}
	return n
}
