package smpc

import (
	"math"
)

// boxRow is one candidate inequality row: coefX, coefY form the unit
// normal (a rotated box axis, spec.md §3's invariant coefX²+coefY²=1),
// bound is the right-hand side, with the row always oriented so the
// constraint reads coefX·(x − footX) + coefY·(y − footY) ≤ bound, x, y
// being the sample's position and footX, footY its foot anchor (a lower
// bound is represented by negating both the normal and the bound).
type boxRow struct {
	sample          int
	coefX, coefY    float64
	bound           float64
}

// activeRow is one row held in the augmented active-set factor icL, §4.5.
type activeRow struct {
	boxRow
	// rowX, rowY are s_a forward-substituted through the block-Cholesky
	// factor (one axis each), length 3N.
	rowX, rowY []float64
	// bwX, bwY are rowX/rowY additionally backward-substituted, i.e.
	// S⁻¹·s_a — cached once since the factor doesn't change while the
	// active set does.
	bwX, bwY []float64
	// tail holds icL's dense lower-triangular row: tail[l] for l<len(tail).
	tail []float64
	diag float64
	z    float64
	lambda float64
}

// ActiveSetSolver is the primal active-set QP solver, spec.md §4.5 (C8).
type ActiveSetSolver struct {
	Params *Params
	Eq     *Equality
	Chol   *BlockCholesky
	Obj    *Objective
	Horizon *Horizon
	Config Config

	X      []float64
	Active []*activeRow

	Iterations int

	ws           *descentWorkspace
	gradBuf      []float64 // 8N, H·X+g at the current iterate
	nuX          []float64 // 3N, resolve's active-row-corrected nu, x axis
	nuY          []float64 // 3N, resolve's active-row-corrected nu, y axis
	lambdaBuf    []float64 // capacity 4N (at most 4 box rows per sample)
	survivorsBuf []boxRow  // capacity 4N, downdate's scratch for the surviving rows
}

// NewActiveSetSolver wires together the pieces for an N-sample horizon.
func NewActiveSetSolver(params *Params, eq *Equality, chol *BlockCholesky, obj *Objective, win *Horizon, cfg Config) *ActiveSetSolver {
	n := params.N
	return &ActiveSetSolver{
		Params: params, Eq: eq, Chol: chol, Obj: obj, Horizon: win, Config: cfg,
		ws:           newDescentWorkspace(n),
		gradBuf:      make([]float64, 8*n),
		nuX:          make([]float64, 3*n),
		nuY:          make([]float64, 3*n),
		lambdaBuf:    make([]float64, 4*n),
		survivorsBuf: make([]boxRow, 0, 4*n),
	}
}

// isActive reports whether an (almost) identical row is already in the
// active set.
func (s *ActiveSetSolver) isActive(r boxRow) bool {
	for _, a := range s.Active {
		if a.sample == r.sample && math.Abs(a.coefX-r.coefX) < 1e-9 && math.Abs(a.coefY-r.coefY) < 1e-9 {
			return true
		}
	}
	return false
}

// sparseSa builds the s_a pattern (spec.md §4.5 "update") for row r's
// axis, restricted to the x or y column of the 3-per-sample layout
// (position entry only, index 0 of the (pos,vel,acc) triple).
func sparseSa(n, sample int, coef, i2h float64) []float64 {
	v := make([]float64, 3*n)
	v[sample*3] = -i2h * coef
	if sample+1 < n {
		v[(sample+1)*3] += i2h * coef
	}
	return v
}

// update folds a newly activated row into the augmented factor icL,
// returning the new row.
func (s *ActiveSetSolver) update(r boxRow) *activeRow {
	n := s.Params.N
	i2h := s.Params.Samples[r.sample].I2Q[0]

	rowX := sparseSa(n, r.sample, r.coefX, i2h)
	rowY := sparseSa(n, r.sample, r.coefY, i2h)
	s.Chol.SolveForward(rowX, r.sample)
	s.Chol.SolveForward(rowY, r.sample)

	bwX := append([]float64(nil), rowX...)
	bwY := append([]float64(nil), rowY...)
	s.Chol.SolveBackward(bwX)
	s.Chol.SolveBackward(bwY)

	selfDot := dot(rowX, rowX) + dot(rowY, rowY)
	gDiag := i2h - selfDot

	tail := make([]float64, len(s.Active))
	for l, other := range s.Active {
		gjl := -(dot(rowX, other.rowX) + dot(rowY, other.rowY))
		var sum float64
		for m := 0; m < l; m++ {
			sum += tail[m] * other.tail[m]
		}
		tail[l] = (gjl - sum) / other.diag
	}
	var sumSq float64
	for _, v := range tail {
		sumSq += v * v
	}
	diag := math.Sqrt(math.Max(gDiag-sumSq, 1e-12))

	row := &activeRow{boxRow: r, rowX: rowX, rowY: rowY, bwX: bwX, bwY: bwY, tail: tail, diag: diag}
	return row
}

// updateZ appends the forward-eliminated rhs entry for a newly added
// row given its raw (pre-elimination) violation amount.
func (s *ActiveSetSolver) updateZ(row *activeRow, violation float64) {
	var sum float64
	for m, other := range s.Active {
		sum += row.tail[m] * other.z
	}
	row.z = (violation - sum) / row.diag
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// resolve recomputes dX consistent with every currently active row:
// solve icLᵀ·λ = z by dense back substitution, then fold the active
// rows' contributions into nu and dX alongside the unconstrained
// descent direction. The descent direction is taken at the gradient of
// the current iterate (H·X+g), not the constant linear term alone, so
// resolve actually steps the iterate toward stationarity instead of
// re-deriving the same direction every call. See spec.md §4.5 "resolve".
func (s *ActiveSetSolver) resolve() []float64 {
	s.Obj.GradientInto(s.gradBuf, s.X, s.Params)
	dX, nu := unconstrainedDescent(s.Eq, s.Chol, s.gradBuf, s.ws)
	k := len(s.Active)
	if k == 0 {
		return dX
	}

	lambda := s.lambdaBuf[:k]
	for j := k - 1; j >= 0; j-- {
		row := s.Active[j]
		sum := 0.0
		for l := j + 1; l < k; l++ {
			sum += s.Active[l].tail[j] * lambda[l]
		}
		lambda[j] = (row.z - sum) / row.diag
	}
	for j, row := range s.Active {
		row.lambda = lambda[j]
	}

	n := s.Params.N
	extractAxisInto(s.nuX, nu, n, 0)
	extractAxisInto(s.nuY, nu, n, 1)
	for j, row := range s.Active {
		lj := lambda[j]
		for i := 0; i < 3*n; i++ {
			s.nuX[i] -= lj * row.bwX[i]
			s.nuY[i] -= lj * row.bwY[i]
		}
	}
	packAxis(nu, n, 0, s.nuX)
	packAxis(nu, n, 1, s.nuY)

	// s.ws.i2hGrad already holds H⁻¹·(H·X+g) from the unconstrainedDescent
	// call above; s.ws.etx and s.ws.dX are free to reuse for the
	// active-row-corrected direction.
	s.Eq.FormI2HETxInto(nu, s.ws.etx)
	newDX := s.ws.dX
	for i := range newDX {
		newDX[i] = -(s.ws.i2hGrad[i] + s.ws.etx[i])
	}
	for _, row := range s.Active {
		i2h := s.Params.Samples[row.sample].I2Q[0]
		base := StateOffset(row.sample)
		newDX[base+0] -= row.lambda * (-i2h * row.coefX)
		newDX[base+3] -= row.lambda * (-i2h * row.coefY)
		if row.sample+1 < n {
			nbase := StateOffset(row.sample + 1)
			newDX[nbase+0] -= row.lambda * (i2h * row.coefX)
			newDX[nbase+3] -= row.lambda * (i2h * row.coefY)
		}
	}
	return newDX
}

// downdate removes the k-th active row (spec.md §4.5 "downdate") by
// re-deriving the augmented factor from scratch over the surviving
// rows, in their original relative order. The Gram matrix entry
// between any two active rows j, l depends only on j and l's own s_a
// vectors (see update's gjl), never on which other rows happen to be
// active — so splicing out row k's column and patching only the
// diagonal (a single rotation) leaves every surviving row's
// off-diagonal tail entries short of the removed row's contribution to
// them. Replaying update/updateZ over the survivors reconstructs
// exactly the factor a fresh solve with those rows (and no others)
// would have produced.
func (s *ActiveSetSolver) downdate(k int) {
	survivors := s.survivorsBuf[:0]
	for j, row := range s.Active {
		if j != k {
			survivors = append(survivors, row.boxRow)
		}
	}
	s.survivorsBuf = survivors

	s.Active = s.Active[:0]
	for _, r := range survivors {
		row := s.update(r)
		s.updateZ(row, 0)
		s.Active = append(s.Active, row)
	}
}

// Solve runs the primal active-set outer loop until KKT stationarity
// holds or Config.MaxIter is reached. Returns the number of active
// constraints at termination.
func (s *ActiveSetSolver) Solve() (int, error) {
	n := s.Params.N
	maxIter := s.Config.MaxIter
	if maxIter <= 0 {
		maxIter = 200
	}

	for iter := 0; iter < maxIter; iter++ {
		s.Iterations = iter + 1
		dX := s.resolve()

		negLambdaIdx := -1
		mostNeg := -s.Config.Tolerance
		for j, row := range s.Active {
			if row.lambda < mostNeg {
				mostNeg = row.lambda
				negLambdaIdx = j
			}
		}

		alpha, blocking := s.ratioTest(dX)
		if alpha >= 1 && negLambdaIdx < 0 {
			for i := range s.X {
				s.X[i] += dX[i]
			}
			return len(s.Active), nil
		}
		if alpha < 1 {
			for i := range s.X {
				s.X[i] += alpha * dX[i]
			}
			row := s.update(*blocking)
			// alpha was chosen so X + alpha*dX lies exactly on this
			// bound, so the row activates with zero residual violation.
			s.updateZ(row, 0)
			s.Active = append(s.Active, row)
			continue
		}
		for i := range s.X {
			s.X[i] += dX[i]
		}
		if negLambdaIdx >= 0 {
			s.downdate(negLambdaIdx)
		}
	}
	return len(s.Active), &IterationCapWarning{Iterations: maxIter}
}

// ratioTest finds the largest alpha in [0, 1] for which X + alpha*dX
// stays within every inactive box constraint (0 when one is already
// crossed), returning the first
// constraint that would be violated at that alpha (nil if alpha = 1).
func (s *ActiveSetSolver) ratioTest(dX []float64) (float64, *boxRow) {
	n := s.Params.N
	alpha := 1.0
	var blocking *boxRow
	for i := 0; i < n; i++ {
		base := StateOffset(i)
		posX, posY := s.X[base+0], s.X[base+3]
		dPosX, dPosY := dX[base+0], dX[base+3]

		for _, r := range s.candidateRowsForRatio(i, posX, posY) {
			if s.isActive(r) {
				continue
			}
			denom := r.coefX*dPosX + r.coefY*dPosY
			if denom <= 1e-12 {
				continue
			}
			cur := r.coefX*(posX-s.Horizon.FootX[i]) + r.coefY*(posY-s.Horizon.FootY[i])
			a := (r.bound - cur) / denom
			if a < alpha {
				alpha = a
				rCopy := r
				blocking = &rCopy
			}
		}
	}
	if alpha < 0 {
		alpha = 0
	}
	return alpha, blocking
}

// candidateRowsForRatio returns both oriented rows (upper and lower)
// for each axis at sample i, regardless of current violation, since the
// ratio test must consider bounds not yet crossed.
func (s *ActiveSetSolver) candidateRowsForRatio(i int, posX, posY float64) []boxRow {
	angle := s.Horizon.Angle[i]
	c, sn := math.Cos(angle), math.Sin(angle)
	return []boxRow{
		{i, c, sn, s.Horizon.UB[0][i]},
		{i, -c, -sn, -s.Horizon.LB[0][i]},
		{i, -sn, c, s.Horizon.UB[1][i]},
		{i, sn, -c, -s.Horizon.LB[1][i]},
	}
}
