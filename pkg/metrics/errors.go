package metrics

import (
	"errors"
)

// Sentinel kinds for metrics errors.
var (
	ErrUnknownReason = errors.New("unknown registration error reason")
)
