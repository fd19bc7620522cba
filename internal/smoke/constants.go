package smoke

import "time"

// Defaults applied by Config.normalize.
const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultStudents = 8
	DefaultWorkers  = 4
	DefaultTimeout  = 10 * time.Second
)

// Error codes returned by the service.
const (
	codeAlreadySignedUp = "already_signed_up"
	codeNotSignedUp     = "not_signed_up"
	codeActivityFull    = "activity_full"
	codeNotFound        = "not_found"
)

const emailDomain = "@mergington.edu"
