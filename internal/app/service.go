// Package service provides the registration service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	eventqueue "github.com/okian/mergington/internal/adapters/mq/queue"
	workerpool "github.com/okian/mergington/internal/adapters/mq/worker"
	"github.com/okian/mergington/internal/adapters/repository"
	"github.com/okian/mergington/internal/domain/model"
	"github.com/okian/mergington/pkg/logger"
	"github.com/okian/mergington/pkg/metrics"
)

// Service implements the registration operations over an activity store.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	journal  *repository.Journal
	queue    *eventqueue.InMemoryQueue
	pool     *workerpool.Pool
	validate *validator.Validate

	workerCount int
	queueSize   int
	historySize int

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of journal workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the capacity of the registration event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithHistorySize sets how many events the journal keeps per activity.
func WithHistorySize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.historySize = size
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New constructs a Service over store. The store is owned by the caller.
func New(store repository.Store, opts ...Option) *Service {
	s := &Service{
		store:       store,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		workerCount: 2,
		queueSize:   1024,
		historySize: 100,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the journal pipeline and starts its workers.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	s.journal = repository.NewJournal(repository.WithHistorySize(s.historySize))
	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.journal)
	s.pool.Start(ctx)

	metrics.UpdateActivities(s.store.Count(ctx))

	s.started = true
	s.logger.Info(ctx, "registration service started",
		logger.Int("activities", s.store.Count(ctx)),
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
	)
	return nil
}

// Stop drains the journal pipeline.
func (s *Service) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return nil
	}
	s.started = false
	err := s.pool.Shutdown(ctx)
	s.logger.Info(ctx, "registration service stopped")
	return err
}

// ListActivities returns every activity.
func (s *Service) ListActivities(ctx context.Context) map[string]model.Activity {
	return s.store.All(ctx)
}

// GetActivity returns one activity.
func (s *Service) GetActivity(ctx context.Context, name string) (model.Activity, error) {
	const op = "service.get_activity"
	a, err := s.store.Get(ctx, name)
	if err != nil {
		return model.Activity{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// Signup registers email for the named activity.
func (s *Service) Signup(ctx context.Context, name, email string) error {
	const op = "service.signup"
	email = strings.TrimSpace(email)

	if !s.store.Exists(ctx, name) {
		s.reject(ctx, model.ActionSignup, name, email, repository.ErrActivityNotFound)
		return fmt.Errorf("%s: %w", op, repository.ErrActivityNotFound)
	}
	if err := s.validateEmail(email); err != nil {
		s.reject(ctx, model.ActionSignup, name, email, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	rev, err := s.store.AddParticipant(ctx, name, email)
	if err != nil {
		s.reject(ctx, model.ActionSignup, name, email, err)
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordSignup()
	s.log().Info(ctx, "participant signed up", logger.String("activity", name), logger.String("email", email))
	s.publish(ctx, rev, model.ActionSignup, name, email)
	return nil
}

// Unregister removes email from the named activity.
func (s *Service) Unregister(ctx context.Context, name, email string) error {
	const op = "service.unregister"
	email = strings.TrimSpace(email)

	if !s.store.Exists(ctx, name) {
		s.reject(ctx, model.ActionUnregister, name, email, repository.ErrActivityNotFound)
		return fmt.Errorf("%s: %w", op, repository.ErrActivityNotFound)
	}
	// Only presence is checked: whoever is on the roster can be removed.
	if email == "" {
		err := fmt.Errorf("%w: email is empty", ErrInvalidEmail)
		s.reject(ctx, model.ActionUnregister, name, email, err)
		return fmt.Errorf("%s: %w", op, err)
	}
	rev, err := s.store.RemoveParticipant(ctx, name, email)
	if err != nil {
		s.reject(ctx, model.ActionUnregister, name, email, err)
		return fmt.Errorf("%s: %w", op, err)
	}

	metrics.RecordUnregistration()
	s.log().Info(ctx, "participant unregistered", logger.String("activity", name), logger.String("email", email))
	s.publish(ctx, rev, model.ActionUnregister, name, email)
	return nil
}

// History returns up to limit recent registration events for an activity,
// newest first.
func (s *Service) History(ctx context.Context, name string, limit int) ([]model.RegistrationEvent, error) {
	const op = "service.history"
	if !s.store.Exists(ctx, name) {
		return nil, fmt.Errorf("%s: %w", op, repository.ErrActivityNotFound)
	}

	s.mu.RLock()
	journal := s.journal
	s.mu.RUnlock()
	if journal == nil {
		return nil, fmt.Errorf("%s: %w", op, ErrNotStarted)
	}
	return journal.Recent(ctx, name, limit), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":      s.started,
		"activities":   s.store.Count(ctx),
		"participants": s.store.ParticipantCount(ctx),
		"workerCount":  s.workerCount,
		"queueSize":    s.queueSize,
	}
	if s.started {
		stats["queueLength"] = s.queue.Len(ctx)
		stats["journalEvents"] = s.journal.Total(ctx)
	}
	return stats
}

func (s *Service) validateEmail(email string) error {
	if err := s.validate.Var(email, model.EmailRule); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return nil
}

// publish hands a successful mutation to the journal. It never blocks the
// request; a full queue drops the event.
func (s *Service) publish(ctx context.Context, rev model.Revision, action model.Action, name, email string) {
	s.mu.RLock()
	q, started := s.queue, s.started
	s.mu.RUnlock()
	if !started {
		return
	}

	e := model.RegistrationEvent{
		EventID:  uuid.NewString(),
		Seq:      rev.Seq,
		Activity: name,
		Email:    email,
		Action:   action,
		TS:       rev.At,
	}
	if !q.Enqueue(ctx, e) {
		metrics.RecordJournalDropped()
		s.log().Warn(ctx, "registration event dropped", logger.String("eventID", e.EventID))
	}
}

func (s *Service) reject(ctx context.Context, action model.Action, name, email string, err error) {
	reason := Reason(err)
	_ = metrics.RecordRegistrationError(string(action), reason)
	s.log().Debug(ctx, "registration rejected",
		logger.String("action", string(action)),
		logger.String("activity", name),
		logger.String("email", email),
		logger.String("reason", reason),
	)
}

func (s *Service) log() logger.Logger {
	if s.logger == nil {
		return logger.Get()
	}
	return s.logger
}

// Reason maps an error to its metrics label.
func Reason(err error) string {
	switch {
	case errors.Is(err, repository.ErrActivityNotFound):
		return metrics.ReasonNotFound
	case errors.Is(err, repository.ErrAlreadySignedUp):
		return metrics.ReasonDuplicate
	case errors.Is(err, repository.ErrNotSignedUp):
		return metrics.ReasonNotRegistered
	case errors.Is(err, repository.ErrActivityFull):
		return metrics.ReasonFull
	case errors.Is(err, ErrInvalidEmail):
		return metrics.ReasonInvalidEmail
	default:
		return metrics.ReasonInternal
	}
}
