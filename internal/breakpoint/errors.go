package breakpoint

import (
	"errors"
	"fmt"
)

// Stage names used in logs and errors.
const (
	StageReconcile = "reconcile"
	StageLeftAlign = "left-align"
	StageNested    = "nested-collapse"
	StageMerge     = "global-merge"
)

// ErrNoConvergence is returned when a fixed-point loop exceeds its bound.
// The loops shrink their state on every change, so this indicates an
// internal invariant violation rather than a transient failure.
var ErrNoConvergence = errors.New("fixed-point iteration did not converge")

// ConvergenceError reports which stage failed to converge.
type ConvergenceError struct {
	Stage      string
	Limit      int
	Breakpoint *Breakpoint
}

func (e *ConvergenceError) Error() string {
	msg := fmt.Sprintf("%s: %v after %d iterations", e.Stage, ErrNoConvergence, e.Limit)
	if e.Breakpoint != nil {
		msg += fmt.Sprintf(" (breakpoint %s)", e.Breakpoint)
	}
	return msg
}

// Unwrap lets errors.Is match ErrNoConvergence.
func (e *ConvergenceError) Unwrap() error {
	return ErrNoConvergence
}
