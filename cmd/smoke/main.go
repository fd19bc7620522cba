package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/okian/mergington/internal/smoke"
	"github.com/okian/mergington/pkg/logger"
)

const defaultRunTimeout = 2 * time.Minute

func main() {
	var (
		baseURL  = flag.String("url", smoke.DefaultBaseURL, "Base URL of the service")
		activity = flag.String("activity", "", "Activity to exercise (default: first by name)")
		students = flag.Int("students", smoke.DefaultStudents, "Number of synthetic students to sign up")
		workers  = flag.Int("workers", smoke.DefaultWorkers, "Number of concurrent workers")
		timeout  = flag.Duration("timeout", smoke.DefaultTimeout, "HTTP request timeout")
		verbose  = flag.Bool("verbose", false, "Log every request outcome")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		smoke.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunTimeout)
	defer cancel()

	_, err := smoke.Run(ctx, smoke.Config{
		BaseURL:  *baseURL,
		Activity: *activity,
		Students: *students,
		Workers:  *workers,
		Timeout:  *timeout,
		Verbose:  *verbose,
	})
	if err != nil {
		os.Stderr.WriteString("smoke run failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
