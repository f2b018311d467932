package smpc

// Config collects the tuning knobs a caller supplies once at
// construction time. See spec.md §4.6/§4.7 and
// original_source/test/test_13.cpp for the constructor parameter names
// this mirrors (gain_position, gain_velocity, gain_acceleration,
// gain_jerk, tol, tol_out, t, mu, bs_alpha, bs_beta, max_iter).
type Config struct {
	// N is the preview-window length; every per-sample slice the
	// solver touches must have this length.
	N int

	// Gravity is hard-coded to 9.81 in the original solver; spec.md §9
	// requires it be an explicit, caller-supplied setting instead.
	Gravity float64

	// GainPosition weights ZMP tracking error; in practice orders of
	// magnitude larger than the other gains (test_13.cpp uses 8000).
	GainPosition float64
	GainVelocity float64
	GainAcceleration float64
	GainJerk     float64

	// Regularization is added to GainPosition before inverting, so the
	// position entry of the Hessian is never driven to a literal zero
	// weight; see qp_solver.cpp's regularization constant and
	// DESIGN.md's "Regularization placement" resolution.
	Regularization float64

	// Tolerance bounds the active-set method's Lagrange-multiplier sign
	// check; the interior-point solver does not read it.
	Tolerance float64
	// OuterTolerance bounds the interior-point duality-gap proxy.
	OuterTolerance float64

	// MaxIter caps the active-set step count or interior-point outer
	// iterations; zero or a negative value selects the built-in cap
	// (200 active-set steps, 50 interior-point outer iterations).
	MaxIter int

	// Interior-point-only knobs.
	BarrierT     float64
	BarrierMu    float64
	BacktrackAlpha float64
	BacktrackBeta  float64

	// LogObjective, when true, makes InteriorPointSolver.Solve append the
	// barrier objective value after every outer iteration to
	// InteriorPointSolver.ObjectiveLog (SPEC_FULL.md C.5); the active-set
	// solver does not read it. Left false this costs nothing extra per tick.
	LogObjective bool
}

// DefaultConfig returns the active-set-oriented defaults from
// original_source/solver/qp_solver.h, with Gravity made explicit per
// spec.md §9.
func DefaultConfig(n int) Config {
	return Config{
		N:                n,
		Gravity:          9.81,
		GainPosition:     150.0,
		GainVelocity:     2000.0,
		GainAcceleration: 1.0,
		GainJerk:         1.0,
		Regularization:   0.01,
		Tolerance:        1e-7,
		OuterTolerance:   1e-2,
		MaxIter:          0,
		BarrierT:         1e-1,
		BarrierMu:        10,
		BacktrackAlpha:   0.01,
		BacktrackBeta:    0.95,
	}
}

// Validate checks that Config's numeric invariants hold: positive N,
// gravity, gains and Tolerance, and non-negative regularization.
// OuterTolerance and the interior-point knobs are not checked.
func (c Config) Validate() error {
	if c.N <= 0 {
		return errInvalidConfig("N must be positive")
	}
	if c.Gravity <= 0 {
		return errInvalidConfig("Gravity must be positive")
	}
	if c.GainPosition <= 0 || c.GainVelocity <= 0 || c.GainAcceleration <= 0 || c.GainJerk <= 0 {
		return errInvalidConfig("gains must be positive")
	}
	if c.Regularization < 0 {
		return errInvalidConfig("Regularization must be non-negative")
	}
	if c.Tolerance <= 0 {
		return errInvalidConfig("Tolerance must be positive")
	}
	return nil
}
