package smpc

import "github.com/pkg/errors"

// ErrHalt is returned by a tick driver when the pattern generator could
// not fill the preview window; see spec.md §7 "Plan exhaustion".
var ErrHalt = errors.New("smpc: plan exhausted before preview window could be filled")

// ErrInitInfeasible is returned by FormInitFP when the closed-form
// construction breaks down, i.e. a sample's B[0] is zero. FormInitFP does
// not check the point it builds against the boxes, so a point outside a
// box is not reported. See spec.md §7.
var ErrInitInfeasible = errors.New("smpc: no feasible initial point for the given boxes")

// NumericError reports a non-positive Cholesky diagonal, i.e.
// regularization too small for S = E H^-1 E^T to stay SPD. See spec.md
// §7 "Numerical breakdown".
type NumericError struct {
	Block int
	Value float64
}

func (e *NumericError) Error() string {
	return errors.Errorf("smpc: non-positive Cholesky diagonal at block %d (value %g)", e.Block, e.Value).Error()
}

func errInvalidConfig(msg string) error {
	return errors.Wrap(errors.New(msg), "smpc: invalid config")
}

// IterationCapWarning is returned alongside the last computed X when the
// active-set step count or interior-point outer-loop count hits
// Config.MaxIter without convergence. It is not a hard error: the
// caller decides whether to proceed with the sub-optimal X. See
// spec.md §7 "Iteration cap".
type IterationCapWarning struct {
	Iterations int
}

func (w *IterationCapWarning) Error() string {
	return errors.Errorf("smpc: iteration cap (%d) reached before convergence", w.Iterations).Error()
}
