package repository

import (
	"time"

	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
)

// Option applies a configuration option to the SessionStore.
type Option func(*SessionStore)

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *SessionStore) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithTTL sets how long an untouched session survives.
func WithTTL(ttl time.Duration) Option {
	return func(s *SessionStore) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithMetricsUpdateInterval sets the interval for background metrics updates.
func WithMetricsUpdateInterval(interval time.Duration) Option {
	return func(s *SessionStore) {
		if interval > 0 {
			s.metricsUpdateInterval = interval
		}
	}
}

// WithLogger sets the logger handed to every new orchestrator.
func WithLogger(l logger.Logger) Option {
	return func(s *SessionStore) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithOrchestratorOptions appends options used to build each session.
func WithOrchestratorOptions(opts ...workflow.Option) Option {
	return func(s *SessionStore) {
		s.orchOpts = append(s.orchOpts, opts...)
	}
}
