package smoke

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/okian/wangcai/internal/domain/workflow"
	"github.com/okian/wangcai/pkg/logger"
)

const percentageMultiplier = 100

// outcome of one driven session.
type outcome int

const (
	outcomeReading outcome = iota
	outcomeFailed
)

// Run drives cfg.Sessions sessions through welcome, form, loading and
// result against a running service and reports to out. It returns
// ErrFailures when any session ended in a transport or protocol error.
func Run(ctx context.Context, cfg *Config, out io.Writer) (*Stats, error) {
	p := printer{w: out}
	stats := &Stats{Sessions: cfg.Sessions, StartTime: time.Now()}
	client := NewClient(cfg.BaseURL, cfg.Timeout)
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}

	log.Info(ctx, "starting wangcai smoke run",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout))

	p.step("checking service health at %s", cfg.BaseURL)
	if err := client.Health(ctx); err != nil {
		p.fail("%v", err)
		return stats, err
	}
	p.success("service is healthy")

	opts, err := client.Options(ctx)
	if err != nil {
		p.fail("fetch options: %v", err)
		return stats, err
	}

	p.step("driving %d sessions with %d workers", cfg.Sessions, cfg.Workers)
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Workers, 1))
	for i := 0; i < cfg.Sessions; i++ {
		g.Go(func() error {
			sess, res, err := drive(gctx, client, cfg, opts)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				stats.Errors++
				p.fail("session %d: %v", i, err)
			case res == outcomeFailed:
				stats.Failed++
				if cfg.Verbose {
					p.warn("session %s: %s", sess.ID, sess.Error)
				}
			default:
				stats.Readings++
				if sess.Talisman != "" {
					stats.WithTalisman++
				}
				if cfg.Verbose {
					p.success("session %s: wealth %.0f, lucky number %s", sess.ID, sess.Result.WealthLuck, sess.Result.LuckyNumber)
				}
			}
			// Per-session problems are counted, not fatal to the run.
			return nil
		})
	}
	_ = g.Wait()

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	report(p, stats)

	log.Info(ctx, "smoke run finished",
		logger.Int("readings", stats.Readings),
		logger.Int("failed", stats.Failed),
		logger.Int("errors", stats.Errors),
		logger.Duration("duration", stats.Duration))

	if stats.Errors > 0 {
		return stats, fmt.Errorf("%w: %d of %d sessions", ErrFailures, stats.Errors, stats.Sessions)
	}
	return stats, ctx.Err()
}

// drive walks one session through the whole flow.
func drive(ctx context.Context, c *Client, cfg *Config, opts Options) (Session, outcome, error) {
	sess, err := c.Create(ctx)
	if err != nil {
		return sess, 0, err
	}
	if err := expectStep(sess, workflow.StepWelcome); err != nil {
		return sess, 0, err
	}
	if sess, err = c.Start(ctx, sess.ID); err != nil {
		return sess, 0, err
	}
	if err := expectStep(sess, workflow.StepForm); err != nil {
		return sess, 0, err
	}
	id := sess.ID
	if sess, err = c.Submit(ctx, id, randomFields(opts)); err != nil {
		return sess, 0, err
	}
	if sess, err = wait(ctx, c, cfg, sess); err != nil {
		return sess, 0, err
	}

	if sess.Step == workflow.StepForm {
		if sess.Error != workflow.FailureMessage {
			return sess, 0, fmt.Errorf("%w: form without failure message", ErrUnexpected)
		}
		return sess, outcomeFailed, nil
	}
	if sess.Result == nil {
		return sess, 0, fmt.Errorf("%w: result step without reading", ErrUnexpected)
	}
	if sess.Talisman != "" && !strings.HasPrefix(sess.Talisman, "data:") {
		return sess, 0, fmt.Errorf("%w: talisman is not a data URI", ErrUnexpected)
	}

	share, err := c.Share(ctx, id)
	if err != nil {
		return sess, 0, err
	}
	if share.Text == "" || !strings.Contains(share.Fallback, share.URL) {
		return sess, 0, fmt.Errorf("%w: incomplete share payload", ErrUnexpected)
	}

	reset, err := c.Reset(ctx, id)
	if err != nil {
		return sess, 0, err
	}
	if err := expectStep(reset, workflow.StepWelcome); err != nil {
		return sess, 0, err
	}
	return sess, outcomeReading, nil
}

// wait polls until the session leaves loading.
func wait(ctx context.Context, c *Client, cfg *Config, sess Session) (Session, error) {
	deadline := time.Now().Add(cfg.WaitTimeout)
	ticker := time.NewTicker(cfg.PollInterval)
	defer ticker.Stop()
	for sess.Step == workflow.StepLoading {
		if time.Now().After(deadline) {
			return sess, fmt.Errorf("%w: %s", ErrWaitTimeout, sess.ID)
		}
		select {
		case <-ctx.Done():
			return sess, ctx.Err()
		case <-ticker.C:
		}
		next, err := c.Get(ctx, sess.ID)
		if err != nil {
			return sess, err
		}
		sess = next
	}
	return sess, nil
}

func expectStep(s Session, want workflow.Step) error {
	if s.Step != want {
		return fmt.Errorf("%w: session %s in %q, want %q", ErrUnexpected, s.ID, s.Step, want)
	}
	return nil
}

func report(p printer, s *Stats) {
	var readingRate float64
	if s.Sessions > 0 {
		readingRate = float64(s.Readings) / float64(s.Sessions) * percentageMultiplier
	}
	p.step("final statistics")
	p.status("sessions", "%d", s.Sessions)
	p.status("readings", "%d (%.1f%%)", s.Readings, readingRate)
	p.status("with talisman", "%d", s.WithTalisman)
	p.status("generation failures", "%d", s.Failed)
	p.status("errors", "%d", s.Errors)
	p.status("duration", "%s", s.Duration.Round(time.Millisecond))
	switch {
	case s.Errors > 0:
		p.fail("smoke run finished with errors")
	case s.Failed > 0:
		p.warn("smoke run finished; some generations failed")
	default:
		p.success("smoke run passed")
	}
}

// IsFailures reports whether err came from failed sessions rather than setup.
func IsFailures(err error) bool {
	return errors.Is(err, ErrFailures)
}
