package smpc

// StateOffset returns the index into an 8N-long X (or 6N-long
// residual/multiplier vector) where state block i begins.
func StateOffset(i int) int { return i * 6 }

// ControlOffset returns the index into an 8N-long X where control block
// i begins, given the horizon length n.
func ControlOffset(n, i int) int { return n*6 + i*2 }

// Equality applies the LIP recurrence's equality-constraint operator E,
// its adjoint Eᵀ, and H⁻¹Eᵀ without ever assembling E, A, B or H as
// matrices — every method below touches only the fixed handful of
// entries spec.md §4.3 names. See
// original_source/WMG/WMG.cpp::initABMatrices/calculateNextState for the
// A/B recurrence this linearizes.
type Equality struct {
	Params *Params
	// Init is the previous tick's first predicted state in tilde
	// coordinates, i.e. x_{-1} in the recurrence x_i = A x_{i-1} + B u_i.
	Init State
}

// FormEx computes the residual s = E·X (length 6N): s_i = x_i − A·x_{i-1} − B·u_i,
// per axis, with x_{-1} = e.Init. Allocates; FormExInto is the
// scratch-reusing counterpart for the solve hot path.
func (e *Equality) FormEx(x []float64) []float64 {
	s := make([]float64, 6*e.Params.N)
	e.FormExInto(x, s)
	return s
}

// FormExInto writes E·x into dst (length 6N).
func (e *Equality) FormExInto(x, dst []float64) {
	e.formExInto(x, e.Init, dst)
}

// ApplyE applies E's homogeneous linear part to an arbitrary length-8N
// vector, i.e. FormEx with x_{-1} pinned to zero. This is what the
// descent-direction solve needs: E is applied to H⁻¹g, a parameter
// vector with no associated "previous tick" state, not to a trajectory.
// Allocates; ApplyEInto is the scratch-reusing counterpart.
func (e *Equality) ApplyE(v []float64) []float64 {
	s := make([]float64, 6*e.Params.N)
	e.ApplyEInto(v, s)
	return s
}

// ApplyEInto writes E's homogeneous linear part applied to v into dst
// (length 6N).
func (e *Equality) ApplyEInto(v, dst []float64) {
	e.formExInto(v, State{}, dst)
}

func (e *Equality) formExInto(x []float64, init State, s []float64) {
	n := e.Params.N
	prev := init
	for i := 0; i < n; i++ {
		sp := &e.Params.Samples[i]
		cur := x[StateOffset(i) : StateOffset(i)+6]
		ctrl := x[ControlOffset(n, i) : ControlOffset(n, i)+2]

		predX := applyA(prev[0], prev[1], prev[2], sp)
		predX = addB(predX, sp.B, ctrl[0])
		predY := applyA(prev[3], prev[4], prev[5], sp)
		predY = addB(predY, sp.B, ctrl[1])

		base := StateOffset(i)
		s[base+0] = cur[0] - predX[0]
		s[base+1] = cur[1] - predX[1]
		s[base+2] = cur[2] - predX[2]
		s[base+3] = cur[3] - predY[0]
		s[base+4] = cur[4] - predY[1]
		s[base+5] = cur[5] - predY[2]

		prev = State{cur[0], cur[1], cur[2], cur[3], cur[4], cur[5]}
	}
}

// applyA computes A·(p, v, a) for the shared 3x3 state-transition
// matrix A = [[1, T, A6], [0, 1, T], [0, 0, 1]].
func applyA(p, v, a float64, sp *SampleParams) [3]float64 {
	return [3]float64{
		p + sp.A3*v + sp.A6*a,
		v + sp.A3*a,
		a,
	}
}

func addB(pred [3]float64, b [3]float64, u float64) [3]float64 {
	return [3]float64{pred[0] + b[0]*u, pred[1] + b[1]*u, pred[2] + b[2]*u}
}

// FormETx computes v = Eᵀ·nu (length 8N: N state blocks of 6 then N
// control blocks of 2). Allocates; FormETxInto is the scratch-reusing
// counterpart for the solve hot path.
func (e *Equality) FormETx(nu []float64) []float64 {
	v := make([]float64, 8*e.Params.N)
	e.FormETxInto(nu, v)
	return v
}

// FormETxInto writes Eᵀ·nu into dst (length 8N).
func (e *Equality) FormETxInto(nu, dst []float64) {
	e.formETxInto(nu, dst)
}

func (e *Equality) formETxInto(nu, v []float64) {
	n := e.Params.N
	for i := 0; i < n; i++ {
		base := StateOffset(i)
		// (ETx)_{x_i} = nu_i - A_{i+1}^T nu_{i+1}; no term beyond i=N-1.
		vx := [3]float64{nu[base+0], nu[base+1], nu[base+2]}
		vy := [3]float64{nu[base+3], nu[base+4], nu[base+5]}

		if i+1 < n {
			next := &e.Params.Samples[i+1]
			nbase := StateOffset(i + 1)
			vx = subATv(vx, next, nu[nbase+0], nu[nbase+1], nu[nbase+2])
			vy = subATv(vy, next, nu[nbase+3], nu[nbase+4], nu[nbase+5])
		}
		v[base+0], v[base+1], v[base+2] = vx[0], vx[1], vx[2]
		v[base+3], v[base+4], v[base+5] = vy[0], vy[1], vy[2]

		// u_i only appears in residual i itself (coefficient -B_i), so
		// unlike the state term above this never reaches into block i+1.
		sp := &e.Params.Samples[i]
		cbase := ControlOffset(n, i)
		v[cbase+0] = -bTv(sp.B, nu[base+0], nu[base+1], nu[base+2])
		v[cbase+1] = -bTv(sp.B, nu[base+3], nu[base+4], nu[base+5])
	}
}

// subATv computes (v0,v1,v2) - A^T·(w0,w1,w2) for sample sp's A.
func subATv(v [3]float64, sp *SampleParams, w0, w1, w2 float64) [3]float64 {
	return [3]float64{
		v[0] - (w0 + sp.A3*w1 + sp.A6*w2),
		v[1] - (w1 + sp.A3*w2),
		v[2] - w2,
	}
}

func bTv(b [3]float64, w0, w1, w2 float64) float64 {
	return b[0]*w0 + b[1]*w1 + b[2]*w2
}

// FormI2HETx computes H⁻¹·Eᵀ·nu by scaling FormETx's result with the
// inverse-half-Hessian diagonal (i2Q for state entries, i2P for control
// entries), one sample at a time. Allocates; FormI2HETxInto is the
// scratch-reusing counterpart for the solve hot path.
func (e *Equality) FormI2HETx(nu []float64) []float64 {
	v := e.FormETx(nu)
	e.scaleI2H(v)
	return v
}

// FormI2HETxInto writes H⁻¹·Eᵀ·nu into dst (length 8N).
func (e *Equality) FormI2HETxInto(nu, dst []float64) {
	e.formETxInto(nu, dst)
	e.scaleI2H(dst)
}

func (e *Equality) scaleI2H(v []float64) {
	n := e.Params.N
	for i := 0; i < n; i++ {
		sp := &e.Params.Samples[i]
		base := StateOffset(i)
		v[base+0] *= sp.I2Q[0]
		v[base+1] *= sp.I2Q[1]
		v[base+2] *= sp.I2Q[2]
		v[base+3] *= sp.I2Q[0]
		v[base+4] *= sp.I2Q[1]
		v[base+5] *= sp.I2Q[2]

		cbase := ControlOffset(n, i)
		v[cbase+0] *= sp.I2P
		v[cbase+1] *= sp.I2P
	}
}
