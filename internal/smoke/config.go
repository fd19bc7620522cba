package smoke

import "time"

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL  string        // Base URL of the service
	Activity string        // Activity to exercise; empty picks the first by name
	Students int           // Number of synthetic students to sign up
	Workers  int           // Number of concurrent workers
	Timeout  time.Duration // HTTP request timeout
	Verbose  bool          // Log every request outcome
}

// Activity mirrors the service's activity JSON.
type Activity struct {
	Description     string   `json:"description"`
	Schedule        string   `json:"schedule"`
	MaxParticipants int      `json:"max_participants"`
	Participants    []string `json:"participants"`
}

// apiError mirrors the service's error body.
type apiError struct {
	Code   string `json:"code"`
	Detail string `json:"detail"`
}

// Stats holds run statistics.
type Stats struct {
	Activity     string
	SignedUp     int
	RejectedFull int
	Failed       int
	Unregistered int
	ChecksPassed int
	SpotsAtStart int
	StartRoster  []string
	FinalRoster  []string
	StartTime    time.Time
	EndTime      time.Time
	Duration     time.Duration
}

func (c Config) normalize() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Students <= 0 {
		c.Students = DefaultStudents
	}
	if c.Workers <= 0 {
		c.Workers = DefaultWorkers
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}
