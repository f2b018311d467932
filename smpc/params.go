package smpc

// SampleParams holds the per-sample scalars C6/C7 use to apply E, Eᵀ
// and the Cholesky factor without ever materializing A, B or H. See
// spec.md §4.2 and original_source/solver/qp_solver.cpp's
// iCpB_CpA/i2Q-based recurrence.
type SampleParams struct {
	// A3, A6 and B are the non-trivial entries of the state-transition
	// matrix A and control matrix B shared by the x and y axes:
	//   A = [[1, T, T^2/2 - h], [0, 1, T], [0, 0, 1]]
	//   B = [T^3/6 - h*T, T^2/2, T]
	A3 float64
	A6 float64
	B  [3]float64

	// I2Q is the inverse-half-Hessian diagonal for one axis' state
	// block (position, velocity, acceleration); both axes share the
	// same three values.
	I2Q [3]float64
	// I2P is the inverse-half-Hessian diagonal for one axis' jerk
	// control entry; both axes share the same value.
	I2P float64
}

// Params is the full per-tick parameter pack: one SampleParams per
// horizon sample, plus the scalars shared by every sample.
type Params struct {
	N       int
	Samples []SampleParams
}

// NewParams allocates a Params for an N-sample horizon. The slice is
// reused across ticks by Update, so no further allocation occurs in the
// hot path (spec.md §5).
func NewParams(n int) *Params {
	return &Params{N: n, Samples: make([]SampleParams, n)}
}

// Update recomputes every SampleParams entry from the pattern
// generator's current window and the solver's gains. Grounded on
// WMG.cpp::initABMatrices (A3/A6/B derivation) and spec.md §4.2's i2Q/
// i2P definition.
func (p *Params) Update(win *Horizon, cfg Config) {
	i2q0 := 1 / (2 * (cfg.GainPosition + cfg.Regularization))
	i2q1 := 1 / (2 * cfg.GainVelocity)
	i2q2 := 1 / (2 * cfg.GainAcceleration)
	i2p := 1 / (2 * cfg.GainJerk)

	for i := 0; i < p.N; i++ {
		t := win.T[i]
		h := win.H[i]
		sp := &p.Samples[i]
		sp.A3 = t
		sp.A6 = t*t/2 - h
		sp.B[0] = t*t*t/6 - h*t
		sp.B[1] = t * t / 2
		sp.B[2] = t
		sp.I2Q = [3]float64{i2q0, i2q1, i2q2}
		sp.I2P = i2p
	}
}
