package smpc

// descentWorkspace holds every scratch buffer unconstrainedDescent
// needs for an N-sample horizon, allocated once and reused on every
// call so the feasible-direction step never allocates in the solve hot
// path (spec.md §5).
type descentWorkspace struct {
	i2hGrad []float64 // 8N, H⁻¹·grad
	rhs     []float64 // 6N, E·i2hGrad
	rhsX    []float64 // 3N
	rhsY    []float64 // 3N
	nu      []float64 // 6N
	etx     []float64 // 8N, H⁻¹·Eᵀ·nu
	dX      []float64 // 8N, returned direction
}

func newDescentWorkspace(n int) *descentWorkspace {
	return &descentWorkspace{
		i2hGrad: make([]float64, 8*n),
		rhs:     make([]float64, 6*n),
		rhsX:    make([]float64, 3*n),
		rhsY:    make([]float64, 3*n),
		nu:      make([]float64, 6*n),
		etx:     make([]float64, 8*n),
		dX:      make([]float64, 8*n),
	}
}

// unconstrainedDescent computes the Newton direction dX that minimizes
// the QP's quadratic cost, linearized at the caller-supplied gradient
// grad = ∇f(X) = H·X + g (plus any barrier-gradient term the
// interior-point solver folds in), subject only to the equality
// constraint E·dX = 0 (X is assumed already equality-feasible, so this
// keeps it so): solve S·nu = −E·H⁻¹·grad via the block-Cholesky factor,
// then dX = −H⁻¹·(grad + Eᵀ·nu). See spec.md §4.5 step 1 and §4.3's
// form_i2HETx. grad, not the constant linear term g alone, is what
// makes this a feasible-direction step from the current iterate rather
// than a re-solve of the unconstrained minimum every time.
func unconstrainedDescent(eq *Equality, chol *BlockCholesky, grad []float64, ws *descentWorkspace) (dX, nu []float64) {
	n := eq.Params.N
	ScaleByI2HInto(ws.i2hGrad, grad, eq.Params)
	eq.ApplyEInto(ws.i2hGrad, ws.rhs)

	extractAxisInto(ws.rhsX, ws.rhs, n, 0)
	extractAxisInto(ws.rhsY, ws.rhs, n, 1)
	for i := range ws.rhsX {
		ws.rhsX[i] = -ws.rhsX[i]
		ws.rhsY[i] = -ws.rhsY[i]
	}
	chol.SolveForward(ws.rhsX, 0)
	chol.SolveBackward(ws.rhsX)
	chol.SolveForward(ws.rhsY, 0)
	chol.SolveBackward(ws.rhsY)

	packAxis(ws.nu, n, 0, ws.rhsX)
	packAxis(ws.nu, n, 1, ws.rhsY)

	eq.FormI2HETxInto(ws.nu, ws.etx)
	for i := range ws.dX {
		ws.dX[i] = -(ws.i2hGrad[i] + ws.etx[i])
	}
	return ws.dX, ws.nu
}

// extractAxis pulls the 3N entries belonging to one axis (0=x, 1=y) out
// of a 6N-long state-residual/multiplier vector. Allocates; nothing in
// the module calls it — extractAxisInto is the scratch-reusing
// counterpart the solve hot path uses.
func extractAxis(v []float64, n, axis int) []float64 {
	out := make([]float64, 3*n)
	extractAxisInto(out, v, n, axis)
	return out
}

func extractAxisInto(dst, v []float64, n, axis int) {
	off := axis * 3
	for i := 0; i < n; i++ {
		base := i * 6
		dst[i*3+0] = v[base+off+0]
		dst[i*3+1] = v[base+off+1]
		dst[i*3+2] = v[base+off+2]
	}
}

func packAxis(v []float64, n, axis int, axisVec []float64) {
	off := axis * 3
	for i := 0; i < n; i++ {
		base := i * 6
		v[base+off+0] = axisVec[i*3+0]
		v[base+off+1] = axisVec[i*3+1]
		v[base+off+2] = axisVec[i*3+2]
	}
}
