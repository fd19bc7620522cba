// Package model contains domain models passed between layers.
package model

import "time"

// Action names a registration mutation.
type Action string

const (
	ActionSignup     Action = "signup"
	ActionUnregister Action = "unregister"
)

// Revision identifies one accepted roster mutation. The store assigns it while
// holding its lock, so Seq orders mutations exactly as they were applied.
type Revision struct {
	Seq uint64
	At  time.Time
}

// RegistrationEvent records one successful mutation of an activity roster.
// Events flow through the journal queue after the store accepted the change.
type RegistrationEvent struct {
	EventID  string    `json:"event_id"`
	Seq      uint64    `json:"seq"`
	Activity string    `json:"activity"`
	Email    string    `json:"email"`
	Action   Action    `json:"action"`
	TS       time.Time `json:"ts"`
}
