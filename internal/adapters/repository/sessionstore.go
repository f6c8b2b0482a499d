package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
	"github.com/okian/wangcai/pkg/metrics"
)

const (
	defaultMaxSessions = 10_000
	defaultTTL         = 30 * time.Minute
)

// SessionStore is an expiring LRU of orchestrators keyed by UUID.
// The idle timer of a session restarts whenever it is read.
type SessionStore struct {
	cache *expirable.LRU[string, *workflow.Orchestrator]

	maxSessions           int
	ttl                   time.Duration
	metricsUpdateInterval time.Duration
	logger                logger.Logger
	orchOpts              []workflow.Option

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewSessionStore constructs a session store with configuration options.
// The background metrics updater stops with ctx or Close.
func NewSessionStore(ctx context.Context, opts ...Option) *SessionStore {
	s := &SessionStore{
		maxSessions:           defaultMaxSessions,
		ttl:                   defaultTTL,
		metricsUpdateInterval: 5 * time.Second,
		logger:                logger.Nop(),
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.cache = expirable.NewLRU(s.maxSessions, s.onEvict, s.ttl)
	s.startMetricsUpdater(ctx)
	return s
}

// onEvict fires for capacity evictions, expiry and Delete alike.
func (s *SessionStore) onEvict(id string, _ *workflow.Orchestrator) {
	metrics.RecordSessionEvicted()
	s.logger.Debug(context.Background(), "session dropped", logger.String("session_id", id))
}

// Create implements Store.Create.
func (s *SessionStore) Create(ctx context.Context) (string, *workflow.Orchestrator, error) {
	id := uuid.NewString()
	opts := append([]workflow.Option{
		workflow.WithLogger(s.logger.With(logger.String("session_id", id))),
	}, s.orchOpts...)
	orch := workflow.NewOrchestrator(opts...)

	s.cache.Add(id, orch)
	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(s.cache.Len())
	s.logger.Debug(ctx, "session created", logger.String("session_id", id))
	return id, orch, nil
}

// Get implements Store.Get.
func (s *SessionStore) Get(_ context.Context, id string) (*workflow.Orchestrator, error) {
	if _, err := uuid.Parse(id); err != nil {
		metrics.RecordErrorByComponent("repository", "invalid_id")
		return nil, ErrInvalidID
	}
	orch, ok := s.cache.Get(id)
	if !ok {
		metrics.RecordErrorByComponent("repository", "not_found")
		return nil, ErrNotFound
	}
	// re-adding an existing key only restarts its expiry
	s.cache.Add(id, orch)
	return orch, nil
}

// Delete implements Store.Delete.
func (s *SessionStore) Delete(_ context.Context, id string) {
	s.cache.Remove(id)
	metrics.UpdateActiveSessions(s.cache.Len())
}

// Count implements Store.Count.
func (s *SessionStore) Count(_ context.Context) int {
	return s.cache.Len()
}

// Close stops the metrics updater and drops every session.
func (s *SessionStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	s.cache.Purge()
	metrics.UpdateActiveSessions(0)
	return nil
}

// startMetricsUpdater periodically publishes the live session count, which
// also moves when sessions expire in the background.
func (s *SessionStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				metrics.UpdateActiveSessions(s.cache.Len())
			}
		}
	}()
}
