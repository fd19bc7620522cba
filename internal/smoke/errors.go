package smoke

import "errors"

// Sentinel errors returned by Run.
var (
	ErrUnhealthy    = errors.New("service unhealthy")
	ErrNoActivities = errors.New("no activities to exercise")
	ErrUnexpected   = errors.New("unexpected response")
	ErrVerification = errors.New("verification failed")
)
