package workflow

import (
	"context"
	"fmt"
	"sync"

	"github.com/okian/wangcai/internal/domain/fortune"
	"github.com/okian/wangcai/internal/domain/profile"
	"github.com/okian/wangcai/pkg/logger"
	"github.com/okian/wangcai/pkg/metrics"
)

// Step is the screen a session is on.
type Step string

// Workflow steps.
const (
	StepWelcome Step = "welcome"
	StepForm    Step = "form"
	StepLoading Step = "loading"
	StepResult  Step = "result"
)

// Snapshot is an immutable copy of the orchestrator state, enough to render
// any screen.
type Snapshot struct {
	Step     Step                   `json:"step"`
	Error    string                 `json:"error,omitempty"`
	Profile  *profile.UserProfile   `json:"profile,omitempty"`
	Result   *fortune.Result        `json:"result,omitempty"`
	Talisman fortune.ImageReference `json:"talisman,omitempty"`
	Cycle    uint64                 `json:"cycle"`
}

// FormFields returns what the form should show: the last submitted profile
// after a failure, the defaults otherwise.
func (s Snapshot) FormFields() profile.Fields {
	if s.Profile != nil {
		return s.Profile.Fields()
	}
	return profile.Defaults()
}

// Orchestrator is the state machine of one session. It is safe for concurrent
// use; the HTTP handlers and the worker finishing a job both call into it.
type Orchestrator struct {
	mu sync.Mutex

	step     Step
	errMsg   string
	profile  *profile.UserProfile
	result   *fortune.Result
	talisman fortune.ImageReference
	cycle    uint64

	logger logger.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger used to record failure causes.
func WithLogger(l logger.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// NewOrchestrator returns an orchestrator on the welcome step.
func NewOrchestrator(opts ...Option) *Orchestrator {
	o := &Orchestrator{step: StepWelcome, logger: logger.Nop()}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Start moves welcome -> form. Calling it on the form is a no-op.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	switch o.step {
	case StepWelcome:
		o.transition(StepForm)
		return nil
	case StepForm:
		return nil
	default:
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, o.step)
	}
}

// Submit moves form -> loading immediately, before any generation work, and
// returns the cycle number the eventual outcome must carry.
func (o *Orchestrator) Submit(p profile.UserProfile) (uint64, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepForm {
		return 0, fmt.Errorf("%w: submit from %s", ErrInvalidTransition, o.step)
	}
	o.profile = &p
	o.errMsg = ""
	o.result = nil
	o.talisman = ""
	o.cycle++
	o.transition(StepLoading)
	return o.cycle, nil
}

// Complete applies the outcome of cycle. A success shows the result; any
// failure returns to the form with the fixed message and the submitted
// profile kept for pre-fill.
func (o *Orchestrator) Complete(ctx context.Context, cycle uint64, out Outcome) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step != StepLoading || cycle != o.cycle {
		return fmt.Errorf("%w: cycle %d on %s (current %d)", ErrStaleOutcome, cycle, o.step, o.cycle)
	}

	if out.OK() {
		o.result = out.Result
		o.talisman = out.Talisman
		o.transition(StepResult)
		return nil
	}

	cause := out.Err
	if cause == nil {
		cause = ErrIncompleteOutcome
	}
	o.logger.Error(ctx, "generation failed",
		logger.String("stage", string(out.Stage)),
		logger.Uint64("cycle", cycle),
		logger.Error(cause),
	)
	o.errMsg = FailureMessage
	o.result = nil
	o.talisman = ""
	o.transition(StepForm)
	return nil
}

// Reset returns to welcome and drops the profile, result and talisman. It is
// refused while a generation is in flight, which cannot be cancelled.
func (o *Orchestrator) Reset() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.step == StepLoading {
		return fmt.Errorf("%w: reset while loading", ErrInvalidTransition)
	}
	o.profile = nil
	o.result = nil
	o.talisman = ""
	o.errMsg = ""
	o.transition(StepWelcome)
	return nil
}

// Snapshot copies the current state.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	s := Snapshot{
		Step:     o.step,
		Error:    o.errMsg,
		Talisman: o.talisman,
		Cycle:    o.cycle,
	}
	if o.profile != nil {
		p := *o.profile
		s.Profile = &p
	}
	if o.result != nil {
		r := *o.result
		r.RecommendedSectors = append([]fortune.Sector(nil), o.result.RecommendedSectors...)
		s.Result = &r
	}
	return s
}

// transition must be called with mu held.
func (o *Orchestrator) transition(to Step) {
	if o.step != to {
		metrics.RecordTransition(string(o.step), string(to))
	}
	o.step = to
}
