package smoke

import "os"

// ShowHelp prints usage information for the smoke tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`Mergington Smoke Tool
=====================

Signs synthetic students up to one activity, verifies the roster rules over
HTTP, then unregisters them so the roster is left as it was found.

Usage:
  go run ./cmd/smoke [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:8000")
  -activity string
        Activity to exercise (default: first activity by name)
  -students int
        Number of synthetic students to sign up (default 8)
  -workers int
        Number of concurrent workers (default 4)
  -timeout duration
        HTTP request timeout (default 10s)
  -verbose
        Log every request outcome
  -help
        Show this help message

Examples:
  # Exercise the first activity against a local server
  go run ./cmd/smoke

  # Overfill a small activity to see capacity rejections
  go run ./cmd/smoke -activity "Math Club" -students 20
`)
}
