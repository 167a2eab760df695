// Package sched maintains the daily trigger table: one cron entry per
// persisted post, firing once per day at the post's UTC clock time.
package sched

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	robfigcron "github.com/robfig/cron/v3"

	"postbot/internal/store"
)

// RecordSource is the read side of the post store the scheduler needs.
type RecordSource interface {
	Get(ctx context.Context, id string) (store.Post, error)
	ListAll(ctx context.Context) ([]store.Post, error)
}

// Publisher delivers a post to its destination channel. Implementations
// must swallow transport failures; a failed publish is that firing's
// problem only.
type Publisher interface {
	Publish(post store.Post)
}

// Service owns the cron scheduler and the job table. Job ids equal the
// owning record's id, so every persisted post maps to at most one entry.
type Service struct {
	scheduler *robfigcron.Cron
	records   RecordSource
	publisher Publisher
	jobs      map[string]robfigcron.EntryID
	mu        sync.Mutex
}

// NewService creates a scheduler over the given record source and publisher.
// All triggers run in UTC; firings of the same job never overlap.
func NewService(records RecordSource, publisher Publisher) *Service {
	return &Service{
		scheduler: robfigcron.New(
			robfigcron.WithLocation(time.UTC),
			robfigcron.WithChain(robfigcron.SkipIfStillRunning(slogCronLogger{})),
		),
		records:   records,
		publisher: publisher,
		jobs:      make(map[string]robfigcron.EntryID),
	}
}

// Start begins the scheduling timeline.
func (s *Service) Start() {
	s.scheduler.Start()
}

// Stop stops the scheduler and waits for any in-flight firing to finish.
func (s *Service) Stop() {
	<-s.scheduler.Stop().Done()
}

// Schedule registers, or replaces, the daily trigger for id. After it
// returns there is exactly one active trigger for id, firing at the new
// time. The job holds only the id; firing re-reads the record, so content
// changes after scheduling take effect on the next firing.
func (s *Service) Schedule(id string, at store.Clock) error {
	if err := at.Validate(); err != nil {
		return fmt.Errorf("schedule %s: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	expr := fmt.Sprintf("%d %d * * *", at.Minute, at.Hour)
	entryID, err := s.scheduler.AddFunc(expr, func() {
		s.fire(id)
	})
	if err != nil {
		return fmt.Errorf("schedule %s: %w", id, err)
	}

	if old, ok := s.jobs[id]; ok {
		s.scheduler.Remove(old)
	}
	s.jobs[id] = entryID
	return nil
}

// Cancel removes the trigger for id. All future firings stop; a firing
// already in progress may still complete. Cancelling an absent id is a no-op.
func (s *Service) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, ok := s.jobs[id]
	if !ok {
		return
	}
	s.scheduler.Remove(entryID)
	delete(s.jobs, id)
}

// RecoverAll rebuilds the job table from the store: one job per persisted
// record. Replacement semantics make it idempotent, so a repeated call
// leaves the table unchanged rather than doubling it.
func (s *Service) RecoverAll(ctx context.Context) error {
	posts, err := s.records.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("recover jobs: %w", err)
	}
	for _, p := range posts {
		if err := s.Schedule(p.ID, p.At); err != nil {
			slog.Warn("failed to restore job", "id", p.ID, "error", err)
		}
	}
	slog.Info("restored scheduled posts", "count", len(posts))
	return nil
}

// TriggerNow runs one occurrence of job id immediately, outside its daily
// schedule, with the same read-through semantics as a timed firing.
func (s *Service) TriggerNow(id string) {
	s.fire(id)
}

// JobCount returns the number of registered jobs.
func (s *Service) JobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// fire runs one occurrence of job id: re-read the record and publish
// whatever is current. A record deleted since scheduling means skip.
func (s *Service) fire(id string) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	post, err := s.records.Get(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		slog.Info("skipping fire, post gone", "id", id)
		return
	}
	if err != nil {
		slog.Error("failed to load post at fire time", "id", id, "error", err)
		return
	}
	s.publisher.Publish(post)
}

// slogCronLogger adapts slog to the cron.Logger interface.
type slogCronLogger struct{}

func (slogCronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append([]any{"error", err}, keysAndValues...)...)
}
