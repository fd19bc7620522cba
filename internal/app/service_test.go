package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMain(m *testing.M) {
	if err := logger.Init(); err != nil {
		panic(err)
	}
	_ = logger.SetLevelString("error")
	m.Run()
}

func seed() map[string]model.Activity {
	return map[string]model.Activity{
		"Chess Club": {
			Description:     "Learn strategies and compete in chess tournaments",
			Schedule:        "Fridays, 3:30 PM - 5:00 PM",
			MaxParticipants: 2,
			Participants:    []string{},
		},
		"Programming Class": {
			Description:     "Learn programming fundamentals and build software projects",
			Schedule:        "Tuesdays and Thursdays, 3:30 PM - 4:30 PM",
			MaxParticipants: 20,
			Participants:    []string{"emma@mergington.edu", "sophia@mergington.edu"},
		},
	}
}

func newStarted(ctx context.Context, opts ...repository.Option) *Service {
	svc := New(repository.NewMemoryStore(ctx, seed(), opts...), WithWorkerCount(1), WithQueueSize(16), WithHistorySize(10))
	So(svc.Start(ctx), ShouldBeNil)
	return svc
}

// waitForHistory polls until the journal workers caught up.
func waitForHistory(ctx context.Context, svc *Service, name string, want int) []model.RegistrationEvent {
	deadline := time.Now().Add(2 * time.Second)
	for {
		got, err := svc.History(ctx, name, 100)
		So(err, ShouldBeNil)
		if len(got) >= want || time.Now().After(deadline) {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestService_Signup(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newStarted(ctx)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("When a new email signs up", func() {
			err := svc.Signup(ctx, "Chess Club", "a@x.edu")

			Convey("Then the roster should contain it once", func() {
				So(err, ShouldBeNil)
				a, err := svc.GetActivity(ctx, "Chess Club")
				So(err, ShouldBeNil)
				So(a.Participants, ShouldResemble, []string{"a@x.edu"})
			})

			Convey("And a second sign-up should be a duplicate", func() {
				err := svc.Signup(ctx, "Chess Club", "a@x.edu")
				So(errors.Is(err, repository.ErrAlreadySignedUp), ShouldBeTrue)
				So(Reason(err), ShouldEqual, "duplicate")
				a, _ := svc.GetActivity(ctx, "Chess Club")
				So(a.Participants, ShouldHaveLength, 1)
			})

			Convey("And the journal should record it", func() {
				got := waitForHistory(ctx, svc, "Chess Club", 1)
				So(got, ShouldHaveLength, 1)
				So(got[0].Email, ShouldEqual, "a@x.edu")
				So(got[0].Action, ShouldEqual, model.ActionSignup)
				So(got[0].EventID, ShouldNotBeBlank)
			})
		})

		Convey("Surrounding whitespace should be trimmed", func() {
			So(svc.Signup(ctx, "Chess Club", "  b@x.edu "), ShouldBeNil)
			a, _ := svc.GetActivity(ctx, "Chess Club")
			So(a.Participants, ShouldResemble, []string{"b@x.edu"})
		})

		Convey("An unknown activity should be not found and change nothing", func() {
			before := svc.ListActivities(ctx)
			err := svc.Signup(ctx, "Knitting", "a@x.edu")
			So(errors.Is(err, repository.ErrActivityNotFound), ShouldBeTrue)
			So(svc.ListActivities(ctx), ShouldResemble, before)
		})

		Convey("Malformed emails should be rejected without changing the roster", func() {
			for _, bad := range []string{"", "   ", "not-an-email", "@x.edu", "a@"} {
				err := svc.Signup(ctx, "Chess Club", bad)
				So(errors.Is(err, ErrInvalidEmail), ShouldBeTrue)
			}
			a, _ := svc.GetActivity(ctx, "Chess Club")
			So(a.Participants, ShouldBeEmpty)
		})

		Convey("An unknown activity should win over a malformed email", func() {
			err := svc.Signup(ctx, "Knitting", "not-an-email")
			So(errors.Is(err, repository.ErrActivityNotFound), ShouldBeTrue)
		})

		Convey("A full activity should reject further sign-ups", func() {
			So(svc.Signup(ctx, "Chess Club", "a@x.edu"), ShouldBeNil)
			So(svc.Signup(ctx, "Chess Club", "b@x.edu"), ShouldBeNil)
			err := svc.Signup(ctx, "Chess Club", "c@x.edu")
			So(errors.Is(err, repository.ErrActivityFull), ShouldBeTrue)
			So(Reason(err), ShouldEqual, "full")
		})
	})

	Convey("Given a service without capacity enforcement", t, func() {
		ctx := context.Background()
		svc := newStarted(ctx, repository.WithCapacityEnforcement(false))
		defer func() { _ = svc.Stop(ctx) }()

		for _, e := range []string{"a@x.edu", "b@x.edu", "c@x.edu"} {
			So(svc.Signup(ctx, "Chess Club", e), ShouldBeNil)
		}
		a, _ := svc.GetActivity(ctx, "Chess Club")
		So(a.Participants, ShouldHaveLength, 3)
	})
}

func TestService_Unregister(t *testing.T) {
	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newStarted(ctx)
		defer func() { _ = svc.Stop(ctx) }()

		Convey("Unregistering a present email should remove it", func() {
			So(svc.Unregister(ctx, "Programming Class", "emma@mergington.edu"), ShouldBeNil)
			a, _ := svc.GetActivity(ctx, "Programming Class")
			So(a.Participants, ShouldResemble, []string{"sophia@mergington.edu"})

			got := waitForHistory(ctx, svc, "Programming Class", 1)
			So(got, ShouldHaveLength, 1)
			So(got[0].Action, ShouldEqual, model.ActionUnregister)
		})

		Convey("Unregistering an absent email should fail", func() {
			err := svc.Unregister(ctx, "Programming Class", "ghost@mergington.edu")
			So(errors.Is(err, repository.ErrNotSignedUp), ShouldBeTrue)
			So(Reason(err), ShouldEqual, "not_registered")
		})

		Convey("Unregistering from an unknown activity should fail", func() {
			err := svc.Unregister(ctx, "Knitting", "emma@mergington.edu")
			So(errors.Is(err, repository.ErrActivityNotFound), ShouldBeTrue)
			So(Reason(err), ShouldEqual, "not_found")
		})

		Convey("Unregistering an email that is not on the roster should be not signed up", func() {
			err := svc.Unregister(ctx, "Programming Class", "emma")
			So(errors.Is(err, repository.ErrNotSignedUp), ShouldBeTrue)
		})

		Convey("Unregistering with a blank email should be invalid", func() {
			err := svc.Unregister(ctx, "Programming Class", "   ")
			So(errors.Is(err, ErrInvalidEmail), ShouldBeTrue)
		})
	})

	Convey("Given a roster holding an address the sign-up rule would reject", t, func() {
		ctx := context.Background()
		catalogue := seed()
		chess := catalogue["Chess Club"]
		chess.Participants = []string{"bob@school"}
		catalogue["Chess Club"] = chess
		svc := New(repository.NewMemoryStore(ctx, catalogue))

		Convey("Unregister should still remove it", func() {
			So(svc.Unregister(ctx, "Chess Club", "bob@school"), ShouldBeNil)
			a, _ := svc.GetActivity(ctx, "Chess Club")
			So(a.Participants, ShouldBeEmpty)
		})
	})
}

func TestService_HistoryOrder(t *testing.T) {
	Convey("Given a service journaling with many workers", t, func() {
		ctx := context.Background()
		svc := New(repository.NewMemoryStore(ctx, seed()),
			WithWorkerCount(8), WithQueueSize(1024), WithHistorySize(1000))
		So(svc.Start(ctx), ShouldBeNil)

		const pairs = 300
		for i := 0; i < pairs; i++ {
			So(svc.Signup(ctx, "Chess Club", "flip@x.edu"), ShouldBeNil)
			So(svc.Unregister(ctx, "Chess Club", "flip@x.edu"), ShouldBeNil)
		}
		So(svc.Stop(ctx), ShouldBeNil)

		Convey("History should replay the roster timeline newest first", func() {
			got, err := svc.History(ctx, "Chess Club", 2*pairs)
			So(err, ShouldBeNil)
			So(got, ShouldHaveLength, 2*pairs)

			for i, e := range got {
				want := model.ActionUnregister
				if i%2 == 1 {
					want = model.ActionSignup
				}
				So(e.Action, ShouldEqual, want)
				if i > 0 {
					So(e.Seq, ShouldBeLessThan, got[i-1].Seq)
					So(e.TS.After(got[i-1].TS), ShouldBeFalse)
				}
			}
		})
	})
}

func TestService_Lifecycle(t *testing.T) {
	Convey("Given a service that was never started", t, func() {
		ctx := context.Background()
		svc := New(repository.NewMemoryStore(ctx, seed()))

		Convey("Mutations should still work without journaling", func() {
			So(svc.Signup(ctx, "Chess Club", "a@x.edu"), ShouldBeNil)
		})

		Convey("History should report it is not started", func() {
			_, err := svc.History(ctx, "Chess Club", 10)
			So(errors.Is(err, ErrNotStarted), ShouldBeTrue)
		})

		Convey("History for an unknown activity should be not found", func() {
			_, err := svc.History(ctx, "Knitting", 10)
			So(errors.Is(err, repository.ErrActivityNotFound), ShouldBeTrue)
		})

		Convey("Stats should report counts", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeFalse)
			So(stats["activities"], ShouldEqual, 2)
			So(stats["participants"], ShouldEqual, 2)
		})

		Convey("Stop should be a no-op", func() {
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})

	Convey("Given a started service", t, func() {
		ctx := context.Background()
		svc := newStarted(ctx)

		Convey("Start should be idempotent", func() {
			So(svc.Start(ctx), ShouldBeNil)
			So(svc.Stop(ctx), ShouldBeNil)
		})

		Convey("Stats should include pipeline fields", func() {
			stats := svc.GetStats()
			So(stats["started"], ShouldBeTrue)
			So(stats, ShouldContainKey, "queueLength")
			So(stats, ShouldContainKey, "journalEvents")
			So(svc.Stop(ctx), ShouldBeNil)
		})
	})
}

func TestService_ConcurrentSignups(t *testing.T) {
	Convey("Given concurrent sign-ups of the same email", t, func() {
		ctx := context.Background()
		svc := newStarted(ctx)
		defer func() { _ = svc.Stop(ctx) }()

		var wg sync.WaitGroup
		results := make(chan error, 32)
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- svc.Signup(ctx, "Programming Class", "race@x.edu")
			}()
		}
		wg.Wait()
		close(results)

		ok, dup := 0, 0
		for err := range results {
			switch {
			case err == nil:
				ok++
			case errors.Is(err, repository.ErrAlreadySignedUp):
				dup++
			}
		}

		So(ok, ShouldEqual, 1)
		So(dup, ShouldEqual, 31)
	})
}
