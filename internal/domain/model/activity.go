// Package model contains domain models passed between layers.
package model

import "slices"

// EmailRule is the validator tag a participant email must satisfy, both at
// sign-up and in a seed catalogue.
const EmailRule = "required,email,max=254"

// Activity is an extracurricular offering. Its name is the key it is stored
// under, so it is not repeated here.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// Clone returns a deep copy; the participant slice is never shared.
func (a Activity) Clone() Activity {
	c := a
	c.Participants = slices.Clone(a.Participants)
	if c.Participants == nil {
		c.Participants = []string{}
	}
	return c
}

// HasParticipant reports whether email is signed up.
func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// SpotsLeft returns remaining capacity, never below zero.
func (a Activity) SpotsLeft() int {
	return max(a.MaxParticipants-len(a.Participants), 0)
}

// Full reports whether the participant list reached MaxParticipants.
func (a Activity) Full() bool {
	return len(a.Participants) >= a.MaxParticipants
}
