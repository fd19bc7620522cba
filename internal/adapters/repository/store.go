// Package repository holds the in-memory activity store and registration journal.
package repository

import (
	"context"

	"github.com/okian/mergington/internal/domain/model"
)

// Store provides read/write access to the activity rosters.
type Store interface {
	// All returns every activity keyed by name. The result is a deep copy.
	All(ctx context.Context) map[string]model.Activity

	// Get returns one activity or ErrActivityNotFound.
	Get(ctx context.Context, name string) (model.Activity, error)

	// Exists reports whether an activity with that name is offered.
	Exists(ctx context.Context, name string) bool

	// AddParticipant appends email to the roster and returns the revision of
	// the change. Returns ErrActivityNotFound, ErrAlreadySignedUp or ErrActivityFull.
	AddParticipant(ctx context.Context, name, email string) (model.Revision, error)

	// RemoveParticipant removes email keeping the order of the others.
	// Returns ErrActivityNotFound or ErrNotSignedUp.
	RemoveParticipant(ctx context.Context, name, email string) (model.Revision, error)

	// Count returns the number of activities.
	Count(ctx context.Context) int

	// ParticipantCount returns the number of sign-ups across all activities.
	ParticipantCount(ctx context.Context) int
}
