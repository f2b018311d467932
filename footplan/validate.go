package footplan

import (
	"fmt"

	"go.uber.org/multierr"
)

// Validate checks every footstep record for non-negative box
// half-widths, a finite angle and a positive RepeatTimes, returning a
// single error that accumulates every violation found (via
// go.uber.org/multierr) rather than stopping at the first one. It does
// not check the order of DS records or the cached Rot against Angle. See
// SPEC_FULL.md C.2.
func (p *Plan) Validate() error {
	var err error
	if len(p.FS) == 0 {
		return ErrNoFootsteps
	}
	for i, fs := range p.FS {
		if !fs.Valid() {
			err = multierr.Append(err, fmt.Errorf("footplan: record %d: invalid box or angle", i))
		}
		if fs.RepeatTimes <= 0 {
			err = multierr.Append(err, fmt.Errorf("footplan: record %d: repeat_times must be positive, got %d", i, fs.RepeatTimes))
		}
	}
	return err
}
