package repository

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/okian/mergington/internal/domain/model"
)

const defaultHistorySize = 100

// Journal keeps the most recent registration events per activity. Workers may
// deliver events in any order, so each activity's events are kept sorted by
// Seq and reads reflect the order the store applied the mutations.
type Journal struct {
	mu     sync.RWMutex
	size   int
	events map[string][]model.RegistrationEvent
	total  int
}

// NewJournal creates an empty journal.
func NewJournal(opts ...JournalOption) *Journal {
	j := &Journal{
		size:   defaultHistorySize,
		events: make(map[string][]model.RegistrationEvent),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

// Append records e at its Seq position, evicting the oldest event of that
// activity when full. An event older than every kept event of a full
// activity is dropped.
func (j *Journal) Append(_ context.Context, e model.RegistrationEvent) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.total++
	evs := j.events[e.Activity]
	// Equal sequence numbers keep arrival order.
	i := sort.Search(len(evs), func(k int) bool { return evs[k].Seq > e.Seq })
	if len(evs) >= j.size && i == 0 {
		return nil
	}
	evs = slices.Insert(evs, i, e)
	if len(evs) > j.size {
		evs = slices.Delete(evs, 0, len(evs)-j.size)
	}
	j.events[e.Activity] = evs
	return nil
}

// Recent returns up to limit events for activity, newest first.
func (j *Journal) Recent(_ context.Context, activity string, limit int) []model.RegistrationEvent {
	j.mu.RLock()
	defer j.mu.RUnlock()

	evs := j.events[activity]
	n := min(max(limit, 0), len(evs))
	out := make([]model.RegistrationEvent, 0, n)
	for i := len(evs) - 1; i >= len(evs)-n; i-- {
		out = append(out, evs[i])
	}
	return out
}

// Total returns the number of events ever appended.
func (j *Journal) Total(_ context.Context) int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.total
}
