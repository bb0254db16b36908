package ripple

import (
	"errors"

	"github.com/ripple-state/ripple/internal/rerrors"
)

// ErrCycle is the sentinel wrapped by the panic raised when a memo's
// computation re-enters itself within one resolution pass (A depends on B
// depends on A). Circular derivations have no stable value; the engine fails
// fast instead of recursing.
//
// Recovered panic values satisfy errors.Is(err, ErrCycle).
var ErrCycle = errors.New("ripple: circular computed dependency")

// ErrUnbalancedResume is the sentinel wrapped by the panic raised when
// Resume is called with no matching Pause (depth counter already at zero).
var ErrUnbalancedResume = errors.New("ripple: Resume without matching Pause")

// cycleError builds the coded panic value for a detected computed cycle.
func cycleError(memoID uint64) *rerrors.Error {
	return rerrors.Newf("R003", rerrors.CategoryRuntime,
		"circular computed dependency detected (memo %d re-entered its own computation)", memoID).
		WithSuggestion("break the cycle: a memo must not read a value derived from itself").
		Wrap(ErrCycle)
}

// unbalancedResumeError builds the coded panic value for a Resume underflow.
func unbalancedResumeError() *rerrors.Error {
	return rerrors.New("R004", rerrors.CategoryUsage,
		"Resume called while no Pause is active").
		WithSuggestion("every Resume must be preceded by a Pause; use Batch for lexically scoped grouping").
		Wrap(ErrUnbalancedResume)
}
