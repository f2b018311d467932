package smpc

// Objective holds the linear term g of the QP's cost
// 0.5·Xᵀ·H·X + gᵀ·X, where H is Params' diagonal i2Q/i2P inverse. Only
// the position entries are non-zero: the cost penalizes (ZMP − zref)²,
// and since the tilde position IS the ZMP coordinate (spec.md §3), its
// linear term is −H_kk·zref, which puts the minimum of each position
// term at zref.
type Objective struct {
	N int
	G []float64 // length 8N, parallel to X
}

// NewObjective allocates a zeroed linear term for an N-sample horizon.
func NewObjective(n int) *Objective {
	return &Objective{N: n, G: make([]float64, 8*n)}
}

// Update recomputes G from the reference ZMP trajectory and the
// position entry of H, 1/I2Q[0] = 2·(GainPosition + Regularization).
func (o *Objective) Update(zrefX, zrefY []float64, p *Params) {
	for i := 0; i < o.N; i++ {
		weight := 1 / p.Samples[i].I2Q[0]
		base := StateOffset(i)
		o.G[base+0] = -weight * zrefX[i]
		o.G[base+3] = -weight * zrefY[i]
		o.G[base+1], o.G[base+2], o.G[base+4], o.G[base+5] = 0, 0, 0, 0
	}
	n := o.N
	for i := 0; i < n; i++ {
		cbase := ControlOffset(n, i)
		o.G[cbase+0], o.G[cbase+1] = 0, 0
	}
}

// ScaleByI2H returns i2H·v (elementwise, using the same per-sample
// i2Q/i2P diagonal Update draws its weights from), used to build H⁻¹g.
// Allocates; callers on the solve hot path use ScaleByI2HInto instead.
func ScaleByI2H(v []float64, p *Params) []float64 {
	out := make([]float64, len(v))
	ScaleByI2HInto(out, v, p)
	return out
}

// ScaleByI2HInto writes i2H·v into dst, which must already be sized
// len(v) — the scratch-reusing counterpart to ScaleByI2H for the
// iteration loops in descent.go/activeset.go (spec.md §5 "no allocation
// in the hot path").
func ScaleByI2HInto(dst, v []float64, p *Params) {
	n := p.N
	for i := 0; i < n; i++ {
		sp := &p.Samples[i]
		base := StateOffset(i)
		dst[base+0] = v[base+0] * sp.I2Q[0]
		dst[base+1] = v[base+1] * sp.I2Q[1]
		dst[base+2] = v[base+2] * sp.I2Q[2]
		dst[base+3] = v[base+3] * sp.I2Q[0]
		dst[base+4] = v[base+4] * sp.I2Q[1]
		dst[base+5] = v[base+5] * sp.I2Q[2]

		cbase := ControlOffset(n, i)
		dst[cbase+0] = v[cbase+0] * sp.I2P
		dst[cbase+1] = v[cbase+1] * sp.I2P
	}
}

// ApplyH returns H·v, the inverse of ScaleByI2H's scaling (H_kk = 1/i2Q_k
// for state entries, 1/i2P for control entries).
func ApplyH(v []float64, p *Params) []float64 {
	out := make([]float64, len(v))
	ApplyHInto(out, v, p)
	return out
}

// ApplyHInto writes H·v into dst, which must already be sized len(v).
func ApplyHInto(dst, v []float64, p *Params) {
	n := p.N
	for i := 0; i < n; i++ {
		sp := &p.Samples[i]
		base := StateOffset(i)
		dst[base+0] = v[base+0] / sp.I2Q[0]
		dst[base+1] = v[base+1] / sp.I2Q[1]
		dst[base+2] = v[base+2] / sp.I2Q[2]
		dst[base+3] = v[base+3] / sp.I2Q[0]
		dst[base+4] = v[base+4] / sp.I2Q[1]
		dst[base+5] = v[base+5] / sp.I2Q[2]

		cbase := ControlOffset(n, i)
		dst[cbase+0] = v[cbase+0] / sp.I2P
		dst[cbase+1] = v[cbase+1] / sp.I2P
	}
}

// GradientInto writes H·x + g into dst (dst and x must both be length
// 8N) — the QP cost's gradient at x. The active-set and interior-point
// feasible-direction steps both need this: they move from the current
// iterate, not minimize the cost from scratch.
func (o *Objective) GradientInto(dst, x []float64, p *Params) {
	ApplyHInto(dst, x, p)
	for i := range dst {
		dst[i] += o.G[i]
	}
}
