// Package smoke drives a running activities service through a full
// sign-up cycle and verifies the roster invariants over HTTP.
package smoke

import (
	"context"
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/mergington/pkg/logger"
)

// Run signs up cfg.Students synthetic students to one activity, checks the
// duplicate, membership and ordering rules, then unregisters them again.
// The roster is left as it was found.
func Run(ctx context.Context, cfg Config) (*Stats, error) {
	cfg = cfg.normalize()
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("smoke")
	client := NewClient(cfg.BaseURL, cfg.Timeout)

	log.Info(ctx, "starting smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("students", cfg.Students),
		logger.Int("workers", cfg.Workers),
	)

	if err := client.Healthz(ctx); err != nil {
		return stats, err
	}

	name, before, err := pickActivity(ctx, client, cfg.Activity)
	if err != nil {
		return stats, err
	}
	stats.Activity = name
	stats.StartRoster = before.Participants
	stats.SpotsAtStart = max(before.MaxParticipants-len(before.Participants), 0)

	students := generateStudents(cfg.Students)
	signed := signupAll(ctx, cfg, client, name, students, stats)

	checks := []struct {
		name string
		fn   func() error
	}{
		{"sign-up outcomes", func() error { return checkOutcomes(cfg, stats) }},
		{"duplicate rejected", func() error { return checkDuplicate(ctx, client, name, signed) }},
		{"roster membership", func() error { return checkRoster(ctx, client, name, before.Participants, signed) }},
		{"unregister all", func() error { return unregisterAll(ctx, cfg, client, name, signed, stats) }},
		{"second unregister rejected", func() error { return checkNotSignedUp(ctx, client, name, signed) }},
		{"unknown activity", func() error { return checkUnknown(ctx, client) }},
		{"roster restored", func() error { return checkRestored(ctx, client, name, before.Participants, stats) }},
	}
	for _, c := range checks {
		if err := c.fn(); err != nil {
			log.Error(ctx, "check failed", logger.String("check", c.name), logger.Error(err))
			return stats, fmt.Errorf("%s: %w", c.name, err)
		}
		stats.ChecksPassed++
		log.Debug(ctx, "check passed", logger.String("check", c.name))
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	log.Info(ctx, "smoke run passed",
		logger.String("activity", stats.Activity),
		logger.Int("signedUp", stats.SignedUp),
		logger.Int("rejectedFull", stats.RejectedFull),
		logger.Int("unregistered", stats.Unregistered),
		logger.Int("checks", stats.ChecksPassed),
		logger.String("duration", stats.Duration.String()),
	)
	return stats, nil
}

func pickActivity(ctx context.Context, c *Client, name string) (string, Activity, error) {
	if name != "" {
		a, err := c.Get(ctx, name)
		return name, a, err
	}
	all, err := c.List(ctx)
	if err != nil {
		return "", Activity{}, err
	}
	if len(all) == 0 {
		return "", Activity{}, ErrNoActivities
	}
	first := slices.Sorted(maps.Keys(all))[0]
	return first, all[first], nil
}

func generateStudents(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "smoke-" + uuid.NewString()[:8] + emailDomain
	}
	return out
}

// signupAll signs students up concurrently and returns those accepted.
func signupAll(ctx context.Context, cfg Config, c *Client, name string, students []string, stats *Stats) []string {
	var (
		mu       sync.Mutex
		accepted []string
		full     int64
		failed   int64
	)
	forEach(ctx, cfg.Workers, students, func(email string) {
		status, code, err := c.Signup(ctx, name, email)
		switch {
		case err == nil && status == http.StatusOK:
			mu.Lock()
			accepted = append(accepted, email)
			mu.Unlock()
		case err == nil && code == codeActivityFull:
			atomic.AddInt64(&full, 1)
		default:
			atomic.AddInt64(&failed, 1)
		}
		if cfg.Verbose {
			logger.Get().Info(ctx, "sign-up", logger.String("email", email), logger.Int("status", status), logger.String("code", code))
		}
	})
	stats.SignedUp = len(accepted)
	stats.RejectedFull = int(full)
	stats.Failed = int(failed)
	return accepted
}

func unregisterAll(ctx context.Context, cfg Config, c *Client, name string, emails []string, stats *Stats) error {
	var ok, failed int64
	forEach(ctx, cfg.Workers, emails, func(email string) {
		status, _, err := c.Unregister(ctx, name, email)
		if err == nil && status == http.StatusOK {
			atomic.AddInt64(&ok, 1)
			return
		}
		atomic.AddInt64(&failed, 1)
	})
	stats.Unregistered = int(ok)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d unregisters failed", ErrVerification, failed, len(emails))
	}
	return nil
}

// forEach fans items out to n workers and waits for them.
func forEach(ctx context.Context, n int, items []string, fn func(string)) {
	ch := make(chan string, n*2)
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range ch {
				if ctx.Err() != nil {
					continue
				}
				fn(item)
			}
		}()
	}
	for _, item := range items {
		ch <- item
	}
	close(ch)
	wg.Wait()
}
