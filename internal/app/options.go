package service

import (
	"time"

	"github.com/okian/wangcai/internal/adapters/mq/worker"
	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of generation workers.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of waiting generation jobs.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithMaxSessions caps the number of live sessions.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionTTL sets how long an untouched session survives.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.sessionTTL = ttl
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

// WithGenerators runs each cycle through a pipeline over the given clients.
func WithGenerators(f workflow.FortuneGenerator, t workflow.TalismanGenerator, opts ...workflow.PipelineOption) Option {
	return func(s *Service) {
		s.generators = &generators{fortunes: f, talismans: t, opts: opts}
	}
}

// WithRunner replaces the generation pipeline entirely.
func WithRunner(r worker.Runner) Option {
	return func(s *Service) {
		if r != nil {
			s.runner = r
		}
	}
}

type generators struct {
	fortunes  workflow.FortuneGenerator
	talismans workflow.TalismanGenerator
	opts      []workflow.PipelineOption
}
