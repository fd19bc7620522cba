package service

import "errors"

// Sentinel kinds for service errors. Roster errors come from the repository
// package and are wrapped, so callers match them with errors.Is.
var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrNotStarted   = errors.New("service not started")
)
