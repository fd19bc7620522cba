package smoke

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"github.com/google/uuid"
)

// checkOutcomes accounts for every sign-up. A full rejection is only
// acceptable once the activity has no spots left.
func checkOutcomes(cfg Config, stats *Stats) error {
	if stats.Failed > 0 {
		return fmt.Errorf("%w: %d sign-ups failed", ErrVerification, stats.Failed)
	}
	if stats.SignedUp+stats.RejectedFull != cfg.Students {
		return fmt.Errorf("%w: %d accepted + %d full != %d students",
			ErrVerification, stats.SignedUp, stats.RejectedFull, cfg.Students)
	}
	if stats.RejectedFull > 0 && stats.SignedUp != stats.SpotsAtStart {
		return fmt.Errorf("%w: rejected as full after %d of %d spots",
			ErrVerification, stats.SignedUp, stats.SpotsAtStart)
	}
	return nil
}

func checkDuplicate(ctx context.Context, c *Client, name string, signed []string) error {
	if len(signed) == 0 {
		return nil
	}
	return expect(c.Signup(ctx, name, signed[0]))(http.StatusBadRequest, codeAlreadySignedUp)
}

func checkNotSignedUp(ctx context.Context, c *Client, name string, signed []string) error {
	if len(signed) == 0 {
		return nil
	}
	return expect(c.Unregister(ctx, name, signed[0]))(http.StatusBadRequest, codeNotSignedUp)
}

func checkUnknown(ctx context.Context, c *Client) error {
	missing := "smoke-missing-" + uuid.NewString()
	return expect(c.Signup(ctx, missing, "smoke"+emailDomain))(http.StatusNotFound, codeNotFound)
}

// checkRoster verifies the original participants keep their order and every
// accepted student appears exactly once after them.
func checkRoster(ctx context.Context, c *Client, name string, before, signed []string) error {
	a, err := c.Get(ctx, name)
	if err != nil {
		return err
	}
	if len(a.Participants) != len(before)+len(signed) {
		return fmt.Errorf("%w: roster has %d participants, want %d",
			ErrVerification, len(a.Participants), len(before)+len(signed))
	}
	if !slices.Equal(a.Participants[:len(before)], before) {
		return fmt.Errorf("%w: existing participants reordered", ErrVerification)
	}
	seen := make(map[string]int, len(a.Participants))
	for _, p := range a.Participants {
		seen[p]++
	}
	for _, email := range signed {
		if seen[email] != 1 {
			return fmt.Errorf("%w: %s appears %d times", ErrVerification, email, seen[email])
		}
	}
	return nil
}

func checkRestored(ctx context.Context, c *Client, name string, before []string, stats *Stats) error {
	a, err := c.Get(ctx, name)
	if err != nil {
		return err
	}
	stats.FinalRoster = a.Participants
	if !slices.Equal(a.Participants, before) {
		return fmt.Errorf("%w: roster %v, want %v", ErrVerification, a.Participants, before)
	}
	return nil
}

func expect(status int, code string, err error) func(int, string) error {
	return func(wantStatus int, wantCode string) error {
		if err != nil {
			return err
		}
		if status != wantStatus || code != wantCode {
			return fmt.Errorf("%w: got %d %q, want %d %q", ErrUnexpected, status, code, wantStatus, wantCode)
		}
		return nil
	}
}
