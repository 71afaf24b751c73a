package tournamentscheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Black-And-White-Club/cutline/pkg/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"
)

// ErrClosed is returned when scheduling on a closed scheduler.
var ErrClosed = errors.New("scheduler closed")

// pendingJob is the one-time job currently armed for a session. The token
// lets a firing job tell whether it was replaced in the meantime.
type pendingJob struct {
	id    uuid.UUID
	token uint64
}

// Scheduler turns delays into published events using one-time gocron jobs.
// Each session has at most one pending job; arming a new one removes the
// previous.
type Scheduler struct {
	publisher message.Publisher
	logger    *slog.Logger
	cron      gocron.Scheduler

	mu     sync.Mutex
	jobs   map[string]pendingJob
	tokens uint64
	closed bool
}

// NewScheduler starts a gocron scheduler publishing through publisher.
func NewScheduler(publisher message.Publisher, logger *slog.Logger) (*Scheduler, error) {
	if logger == nil {
		logger = slog.Default()
	}
	cron, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create job scheduler: %w", err)
	}
	cron.Start()

	return &Scheduler{
		publisher: publisher,
		logger:    logger,
		cron:      cron,
		jobs:      make(map[string]pendingJob),
	}, nil
}

// Schedule publishes payload on topic after delay.
func (s *Scheduler) Schedule(ctx context.Context, sessionID string, delay time.Duration, topic string, payload any) error {
	msg, err := handlerwrapper.NewMessage(ctx, payload)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.removeLocked(sessionID)

	s.tokens++
	token := s.tokens
	job, err := s.cron.NewJob(
		startAfter(delay),
		gocron.NewTask(s.fire, sessionID, token, topic, msg),
		gocron.WithName(topic),
		gocron.WithTags(sessionID),
	)
	if err != nil {
		return fmt.Errorf("failed to arm %s for %s: %w", topic, sessionID, err)
	}
	s.jobs[sessionID] = pendingJob{id: job.ID(), token: token}
	return nil
}

// startAfter builds the one-time schedule for delay. Very short delays run
// immediately since gocron rejects start times already in the past.
func startAfter(delay time.Duration) gocron.JobDefinition {
	if delay < time.Millisecond {
		return gocron.OneTimeJob(gocron.OneTimeJobStartImmediately())
	}
	return gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(time.Now().Add(delay)))
}

func (s *Scheduler) fire(sessionID string, token uint64, topic string, msg *message.Message) {
	s.mu.Lock()
	current, ok := s.jobs[sessionID]
	if !ok || current.token != token || s.closed {
		s.mu.Unlock()
		return
	}
	delete(s.jobs, sessionID)
	s.mu.Unlock()

	if err := s.publisher.Publish(topic, msg); err != nil {
		s.logger.Error("Failed to publish timer event",
			slog.String("session_id", sessionID),
			slog.String("topic", topic),
			slog.String("error", err.Error()),
		)
	}
}

// removeLocked drops the session's pending job. Callers hold s.mu.
func (s *Scheduler) removeLocked(sessionID string) {
	prev, ok := s.jobs[sessionID]
	if !ok {
		return
	}
	delete(s.jobs, sessionID)
	if err := s.cron.RemoveJob(prev.id); err != nil && !errors.Is(err, gocron.ErrJobNotFound) {
		s.logger.Warn("Failed to remove timer job",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
}

// Cancel removes the session's pending job, if any.
func (s *Scheduler) Cancel(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(sessionID)
}

// Pending reports how many sessions have a job armed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Close drops every pending job and shuts gocron down, waiting for
// in-flight publishes.
func (s *Scheduler) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	clear(s.jobs)
	s.mu.Unlock()

	if err := s.cron.Shutdown(); err != nil {
		return fmt.Errorf("failed to shut down job scheduler: %w", err)
	}
	return nil
}
