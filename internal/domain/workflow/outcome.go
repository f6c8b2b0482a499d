// Package workflow drives a reading from the welcome screen to the result:
// the per-session state machine and the two-stage generation pipeline.
package workflow

import (
	"github.com/okian/wangcai/internal/domain/fortune"
)

// Stage names where an Outcome was decided.
type Stage string

// Pipeline stages.
const (
	StageFortune  Stage = "fortune"
	StageTalisman Stage = "talisman"
	StageDispatch Stage = "dispatch"
	StageDone     Stage = "done"
)

// Outcome is the result of one pipeline run: either a full success carrying
// the reading and its talisman, or a failure carrying the stage it stopped at.
type Outcome struct {
	Stage    Stage
	Result   *fortune.Result
	Talisman fortune.ImageReference
	Err      error
}

// Success builds a completed outcome.
func Success(res fortune.Result, img fortune.ImageReference) Outcome {
	return Outcome{Stage: StageDone, Result: &res, Talisman: img}
}

// Failure builds an outcome that stopped at stage with err.
func Failure(stage Stage, err error) Outcome {
	return Outcome{Stage: stage, Err: err}
}

// OK reports whether both generations succeeded.
func (o Outcome) OK() bool {
	return o.Err == nil && o.Result != nil && !o.Talisman.IsZero()
}
