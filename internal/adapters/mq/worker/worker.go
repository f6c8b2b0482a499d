// Package worker runs generation jobs off the queue and reports each outcome
// to the session that asked for it.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/wangcai/internal/adapters/mq/queue"
	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
	"github.com/okian/wangcai/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	poolShutdownTimeout     = 30 * time.Second
)

// Sessions resolves the session a job belongs to.
type Sessions interface {
	Get(ctx context.Context, id string) (*workflow.Orchestrator, error)
}

// Runner produces the outcome of one generation cycle.
type Runner interface {
	Run(ctx context.Context, p profile.UserProfile) workflow.Outcome
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan queue.Job
}

// Worker processes jobs until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in hand.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for generation jobs.
type InMemoryWorker struct {
	queue    Queue
	sessions Sessions
	runner   Runner
	name     string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(q Queue, sessions Sessions, runner Runner, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    q,
		sessions: sessions,
		runner:   runner,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Nop(),
	}

	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.Named(w.name)

	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing job", logger.Error(err))
			}
		}
	}
}

// Shutdown stops the worker after the job in hand.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("%w: shutdown timed out: %w", ErrStopped, ctx.Err())
	}
}

// processJob runs one cycle and hands the outcome to the session. A session
// that expired while the job waited is skipped without calling the models.
func (w *InMemoryWorker) processJob(ctx context.Context, job queue.Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	metrics.AddWorkerBusy(1)
	defer func() {
		metrics.AddWorkerBusy(-1)
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Milliseconds()))
	}()

	log := w.logger.With(
		logger.String("session_id", job.SessionID),
		logger.Uint64("cycle", job.Cycle),
	)
	log.Debug(ctx, "job picked up", logger.Duration("waited", start.Sub(job.EnqueuedAt)))

	orch, err := w.sessions.Get(ctx, job.SessionID)
	if err != nil {
		metrics.RecordErrorByComponent("worker", "session_gone")
		log.Info(ctx, "dropping job for missing session", logger.Error(err))
		return nil
	}

	out := w.runner.Run(ctx, job.Profile)

	if err := orch.Complete(ctx, job.Cycle, out); err != nil {
		if errors.Is(err, workflow.ErrStaleOutcome) {
			log.Info(ctx, "discarding stale outcome")
			return nil
		}
		metrics.RecordWorkerError()
		metrics.RecordErrorByComponent("worker", "complete_failed")
		metrics.RecordErrorByType("complete_failed", "high")
		return fmt.Errorf("completing cycle %d of %s: %w", job.Cycle, job.SessionID, err)
	}
	if !out.OK() {
		metrics.RecordWorkerError()
	}
	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*InMemoryWorker
	queue   Queue

	stopOnce sync.Once
	logger   logger.Logger
}

// NewPool creates a pool of workerCount workers sharing one queue. A count
// below one means twice the number of CPUs.
func NewPool(workerCount int, q Queue, sessions Sessions, runner Runner, opts ...PoolOption) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*InMemoryWorker, workerCount),
		queue:   q,
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(pool)
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(q, sessions, runner,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(pool.logger),
		)
	}
	pool.logger = pool.logger.Named("worker-pool")

	metrics.UpdateWorkerCount(workerCount)
	return pool
}

// Size returns the number of workers.
func (p *Pool) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Shutdown closes the queue so workers drain what is left, then waits for
// them until ctx or the pool timeout expires.
func (p *Pool) Shutdown(ctx context.Context) error {
	var err error
	p.stopOnce.Do(func() {
		if closer, ok := p.queue.(interface{ Close() error }); ok {
			if cerr := closer.Close(); cerr != nil {
				p.logger.Error(ctx, "error closing queue", logger.Error(cerr))
			}
		}

		shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
		defer cancel()

		for i, w := range p.workers {
			select {
			case <-w.done:
			case <-shutdownCtx.Done():
				p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
				err = fmt.Errorf("%w: %w", ErrStopped, shutdownCtx.Err())
				return
			}
		}
		metrics.UpdateWorkerCount(0)
	})
	return err
}
