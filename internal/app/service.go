// Package service wires sessions, the generation queue and the workers into
// the operations the HTTP layer exposes.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/okian/wangcai/internal/adapters/mq/queue"
	"github.com/okian/wangcai/internal/adapters/mq/worker"
	"github.com/okian/wangcai/internal/adapters/repository"
	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/internal/domain/report"
	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
	"github.com/okian/wangcai/pkg/metrics"
)

// sessionStore is what the service needs from the repository.
type sessionStore interface {
	repository.Store
	Close() error
}

// Service implements the API dependencies for the fortune workflow.
type Service struct {
	mu sync.RWMutex

	sessions sessionStore
	jobs     queue.Queue
	pool     *worker.Pool

	runner     worker.Runner
	generators *generators

	workerCount int
	queueSize   int
	maxSessions int
	sessionTTL  time.Duration

	started bool
	logger  logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU() * 2,
		queueSize:   1024,
		maxSessions: 10_000,
		sessionTTL:  30 * time.Minute,
		logger:      logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.runner == nil && s.generators != nil {
		popts := append([]workflow.PipelineOption{
			workflow.WithPipelineLogger(s.logger.Named("pipeline")),
		}, s.generators.opts...)
		s.runner = workflow.NewPipeline(s.generators.fortunes, s.generators.talismans, popts...)
	}
	return s
}

// Start initializes and starts the service components. Workers stop when
// ctx is done or Stop is called.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.runner == nil {
		return fmt.Errorf("%w: no generators configured", ErrNotStarted)
	}

	s.logger.Info(ctx, "starting fortune service...")

	s.sessions = repository.NewSessionStore(ctx,
		repository.WithMaxSessions(s.maxSessions),
		repository.WithTTL(s.sessionTTL),
		repository.WithLogger(s.logger.Named("session")),
	)
	s.jobs = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)
	s.pool = worker.NewPool(s.workerCount, s.jobs, s.sessions, s.runner,
		worker.WithPoolLogger(s.logger),
	)
	s.pool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "fortune service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("sessionTTL", s.sessionTTL),
	)
	return nil
}

// Stop drains the queue, waits for the workers and drops every session.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping fortune service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool did not stop cleanly", logger.Error(err))
	}
	_ = s.sessions.Close()

	s.started = false
	s.logger.Info(ctx, "fortune service stopped")
}

func (s *Service) store() (sessionStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.sessions, nil
}

func (s *Service) session(ctx context.Context, id string) (*workflow.Orchestrator, error) {
	store, err := s.store()
	if err != nil {
		return nil, err
	}
	return store.Get(ctx, id)
}

// CreateSession opens a session on the welcome screen.
func (s *Service) CreateSession(ctx context.Context) (string, workflow.Snapshot, error) {
	store, err := s.store()
	if err != nil {
		return "", workflow.Snapshot{}, err
	}
	id, orch, err := store.Create(ctx)
	if err != nil {
		return "", workflow.Snapshot{}, err
	}
	return id, orch.Snapshot(), nil
}

// Session returns the current state of a session.
func (s *Service) Session(ctx context.Context, id string) (workflow.Snapshot, error) {
	orch, err := s.session(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	return orch.Snapshot(), nil
}

// StartSession moves a session from welcome to the form.
func (s *Service) StartSession(ctx context.Context, id string) (workflow.Snapshot, error) {
	orch, err := s.session(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	if err := orch.Start(); err != nil {
		return orch.Snapshot(), err
	}
	return orch.Snapshot(), nil
}

// Submit validates the form, moves the session to loading and queues the
// generation. When the queue refuses the job the cycle fails at once and the
// session is back on the form with the fixed message.
func (s *Service) Submit(ctx context.Context, id string, fields profile.Fields) (workflow.Snapshot, error) { //nolint:gocritic // hugeParam: form fields are copied once per request
	orch, err := s.session(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	p, err := profile.New(fields)
	if err != nil {
		return orch.Snapshot(), err
	}
	cycle, err := orch.Submit(p)
	if err != nil {
		return orch.Snapshot(), err
	}

	s.mu.RLock()
	jobs := s.jobs
	s.mu.RUnlock()

	if !jobs.Enqueue(ctx, queue.Job{SessionID: id, Cycle: cycle, Profile: p}) {
		metrics.RecordGeneration(string(workflow.StageDispatch), "error")
		if err := orch.Complete(ctx, cycle, workflow.Failure(workflow.StageDispatch, queue.ErrBackpressure)); err != nil {
			return orch.Snapshot(), fmt.Errorf("failing undispatched cycle: %w", err)
		}
	}
	return orch.Snapshot(), nil
}

// Reset returns a session to the welcome screen.
func (s *Service) Reset(ctx context.Context, id string) (workflow.Snapshot, error) {
	orch, err := s.session(ctx, id)
	if err != nil {
		return workflow.Snapshot{}, err
	}
	if err := orch.Reset(); err != nil {
		return orch.Snapshot(), err
	}
	return orch.Snapshot(), nil
}

// Share returns the share payload of a finished reading.
func (s *Service) Share(ctx context.Context, id string) (report.Share, error) {
	snap, err := s.Session(ctx, id)
	if err != nil {
		return report.Share{}, err
	}
	if snap.Step != workflow.StepResult || snap.Result == nil {
		return report.Share{}, fmt.Errorf("%w: %w", workflow.ErrInvalidTransition, ErrNoResult)
	}
	return report.ResultShare(*snap.Result), nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"maxSessions": s.maxSessions,
		"sessionTTL":  s.sessionTTL.String(),
	}

	if s.started {
		queueLen := s.jobs.Len(ctx)
		active := s.sessions.Count(ctx)

		stats["queueLength"] = queueLen
		stats["activeSessions"] = active

		metrics.UpdateActiveSessions(active)
		metrics.UpdateWorkerCount(s.pool.Size())
	}

	return stats
}
