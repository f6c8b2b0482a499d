package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/okian/wangcai/internal/domain/fortune"
	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/pkg/logger"
	"github.com/okian/wangcai/pkg/metrics"
)

// Default per-stage deadlines. A stage that runs past its deadline fails like
// any other error.
const (
	DefaultTextTimeout  = 60 * time.Second
	DefaultImageTimeout = 90 * time.Second
)

// FortuneGenerator produces a reading for a profile.
type FortuneGenerator interface {
	Generate(ctx context.Context, p profile.UserProfile) (fortune.Result, error)
}

// TalismanGenerator produces the talisman image for a prompt.
type TalismanGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (fortune.ImageReference, error)
}

// Pipeline runs the text stage then, only if it succeeded, the image stage.
// Neither stage is retried.
type Pipeline struct {
	fortunes     FortuneGenerator
	talismans    TalismanGenerator
	textTimeout  time.Duration
	imageTimeout time.Duration
	logger       logger.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithTextTimeout bounds the text stage.
func WithTextTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.textTimeout = d
		}
	}
}

// WithImageTimeout bounds the image stage.
func WithImageTimeout(d time.Duration) PipelineOption {
	return func(p *Pipeline) {
		if d > 0 {
			p.imageTimeout = d
		}
	}
}

// WithPipelineLogger sets the logger for stage timings.
func WithPipelineLogger(l logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// NewPipeline wires the two generators.
func NewPipeline(f FortuneGenerator, t TalismanGenerator, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		fortunes:     f,
		talismans:    t,
		textTimeout:  DefaultTextTimeout,
		imageTimeout: DefaultImageTimeout,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run generates the reading and its talisman for p.
func (p *Pipeline) Run(ctx context.Context, prof profile.UserProfile) Outcome {
	var res fortune.Result
	err := p.stage(ctx, StageFortune, p.textTimeout, func(ctx context.Context) error {
		var err error
		res, err = p.fortunes.Generate(ctx, prof)
		return err
	})
	if err != nil {
		return Failure(StageFortune, asGenerationError(fortune.KindText, err))
	}

	var img fortune.ImageReference
	err = p.stage(ctx, StageTalisman, p.imageTimeout, func(ctx context.Context) error {
		var err error
		img, err = p.talismans.GenerateImage(ctx, res.TalismanPrompt)
		if err == nil && img.IsZero() {
			err = fortune.ErrNoTalisman
		}
		return err
	})
	if err != nil {
		return Failure(StageTalisman, asGenerationError(fortune.KindImage, err))
	}

	return Success(res, img)
}

func (p *Pipeline) stage(ctx context.Context, stage Stage, timeout time.Duration, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	metrics.RecordGenerationLatency(string(stage), float64(elapsed.Milliseconds()))

	outcome := "ok"
	switch {
	case err == nil:
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		outcome = "timeout"
	default:
		outcome = "error"
	}
	metrics.RecordGeneration(string(stage), outcome)
	p.logger.Debug(ctx, "stage finished",
		logger.String("stage", string(stage)),
		logger.String("outcome", outcome),
		logger.Duration("elapsed", elapsed),
	)
	return err
}

func asGenerationError(k fortune.Kind, err error) error {
	if _, ok := fortune.AsGenerationError(err); ok {
		return err
	}
	return fortune.NewGenerationError(k, err)
}
