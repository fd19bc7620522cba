package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacityEnforcement rejects sign-ups once max_participants is reached.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *MemoryStore) {
		s.enforceCapacity = enabled
	}
}

// WithRosterObserver registers a callback invoked with the new roster size
// after every successful mutation. It runs under the store lock and must not
// call back into the store.
func WithRosterObserver(fn func(activity string, participants int)) Option {
	return func(s *MemoryStore) {
		if fn != nil {
			s.observe = fn
		}
	}
}

// JournalOption applies a configuration option to the Journal.
type JournalOption func(*Journal)

// WithHistorySize bounds the events kept per activity.
func WithHistorySize(size int) JournalOption {
	return func(j *Journal) {
		if size > 0 {
			j.size = size
		}
	}
}
