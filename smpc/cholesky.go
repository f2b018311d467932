package smpc

import "math"

// mat3 is a dense 3x3 matrix, row-major.
type mat3 [3][3]float64

// mulT computes m * other^T.
func (m mat3) mulT(other mat3) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += m[i][k] * other[j][k]
			}
			r[i][j] = sum
		}
	}
	return r
}

func (m mat3) sub(other mat3) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = m[i][j] - other[i][j]
		}
	}
	return r
}

// chol3 computes the lower-triangular Cholesky factor of a symmetric
// 3x3 SPD matrix m. Returns an error if a diagonal entry is
// non-positive (spec.md §4.4's "fatal invariant violation").
func chol3(m mat3, block int) (mat3, error) {
	var l mat3
	l[0][0] = m[0][0]
	if l[0][0] <= 0 {
		return l, &NumericError{Block: block, Value: l[0][0]}
	}
	l[0][0] = math.Sqrt(l[0][0])

	l[1][0] = m[1][0] / l[0][0]
	l[1][1] = m[1][1] - l[1][0]*l[1][0]
	if l[1][1] <= 0 {
		return l, &NumericError{Block: block, Value: l[1][1]}
	}
	l[1][1] = math.Sqrt(l[1][1])

	l[2][0] = m[2][0] / l[0][0]
	l[2][1] = (m[2][1] - l[2][0]*l[1][0]) / l[1][1]
	l[2][2] = m[2][2] - l[2][0]*l[2][0] - l[2][1]*l[2][1]
	if l[2][2] <= 0 {
		return l, &NumericError{Block: block, Value: l[2][2]}
	}
	l[2][2] = math.Sqrt(l[2][2])
	return l, nil
}

// solveLowerRow solves l*x = b by forward substitution, l lower
// triangular 3x3.
func solveLowerRow(l mat3, b [3]float64) [3]float64 {
	var x [3]float64
	x[0] = b[0] / l[0][0]
	x[1] = (b[1] - l[1][0]*x[0]) / l[1][1]
	x[2] = (b[2] - l[2][0]*x[0] - l[2][1]*x[1]) / l[2][2]
	return x
}

// solveUpperRow solves l^T*x = b by backward substitution, l lower
// triangular 3x3 (so l^T is upper triangular).
func solveUpperRow(l mat3, b [3]float64) [3]float64 {
	var x [3]float64
	x[2] = b[2] / l[2][2]
	x[1] = (b[1] - l[2][1]*x[2]) / l[1][1]
	x[0] = (b[0] - l[1][0]*x[1] - l[2][0]*x[2]) / l[0][0]
	return x
}

// BlockCholesky is the block-bidiagonal Cholesky factor L of the Schur
// complement S = E H^-1 E^T, spec.md §4.4 (C7). S is block tridiagonal
// with 3x3 blocks, identical for the x and y axes since E, H^-1 never
// couple the two; SolveForward/SolveBackward are therefore called once
// per axis on a length-3N vector.
type BlockCholesky struct {
	N int
	// Diag[i] is the i-th 3x3 diagonal block of L.
	Diag []mat3
	// Sub[i] is L_{i,i-1} (only Sub[1..N-1] are meaningful).
	Sub []mat3
}

// NewBlockCholesky allocates a factor for an N-sample horizon.
func NewBlockCholesky(n int) *BlockCholesky {
	return &BlockCholesky{N: n, Diag: make([]mat3, n), Sub: make([]mat3, n)}
}

// Form computes every diagonal and sub-diagonal block of L from the
// per-sample problem parameters, starting at block firstBlock (0 to
// refactor from scratch; the active-set solver may pass a later index
// to reuse the unaffected prefix of a previous factorization, per
// spec.md §4.4's solve_forward(first_block) and the analogous reuse
// this Form supports).
func (c *BlockCholesky) Form(p *Params, firstBlock int) error {
	for i := firstBlock; i < c.N; i++ {
		sp := &p.Samples[i]
		sii := schurDiag(sp, p, i)
		if i > 0 {
			coupling := c.Sub[i].mulT(c.Sub[i])
			sii = sii.sub(coupling)
		}
		l, err := chol3(sii, i)
		if err != nil {
			return err
		}
		c.Diag[i] = l

		if i+1 < c.N {
			next := &p.Samples[i+1]
			si1i := schurSub(next, sp)
			var rows mat3
			for r := 0; r < 3; r++ {
				rows[r] = solveLowerRow(l, si1i[r])
			}
			c.Sub[i+1] = rows
		}
	}
	return nil
}

// schurDiag computes S_ii = diag(sp.I2Q) + A_i diag(prevI2Q) A_i^T + B_i i2P_i B_i^T,
// where A_i/B_i come from sample i and prevI2Q is sample i-1's I2Q (the
// zero matrix contribution when i == 0, since there is no x_{-1} term
// in the Schur complement — the initial state enters FormEx as a
// constant, not a decision variable).
func schurDiag(sp *SampleParams, p *Params, i int) mat3 {
	var s mat3
	s[0][0] = sp.I2Q[0]
	s[1][1] = sp.I2Q[1]
	s[2][2] = sp.I2Q[2]

	if i > 0 {
		prevI2Q := p.Samples[i-1].I2Q
		a := aMat(sp)
		var d mat3
		d[0][0], d[1][1], d[2][2] = prevI2Q[0], prevI2Q[1], prevI2Q[2]
		s = addMat(s, aDAT(a, d))
	}

	b := sp.B
	bOuter := mat3{
		{b[0] * b[0], b[0] * b[1], b[0] * b[2]},
		{b[1] * b[0], b[1] * b[1], b[1] * b[2]},
		{b[2] * b[0], b[2] * b[1], b[2] * b[2]},
	}
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			s[r][c] += sp.I2P * bOuter[r][c]
		}
	}
	return s
}

// schurSub computes S_{i+1,i} = -A_{i+1} diag(sp.I2Q), where sp is
// sample i's parameters (the Hessian weight owning state block i) and
// next is sample i+1's parameters (whose A appears in residual i+1).
func schurSub(next, sp *SampleParams) mat3 {
	a := aMat(next)
	var out mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			out[r][c] = -a[r][c] * sp.I2Q[c]
		}
	}
	return out
}

func aMat(sp *SampleParams) mat3 {
	return mat3{
		{1, sp.A3, sp.A6},
		{0, 1, sp.A3},
		{0, 0, 1},
	}
}

func aDAT(a, d mat3) mat3 {
	// (a*d) then times a^T.
	var ad mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			var sum float64
			for k := 0; k < 3; k++ {
				sum += a[r][k] * d[k][c]
			}
			ad[r][c] = sum
		}
	}
	return ad.mulT(a)
}

func addMat(a, b mat3) mat3 {
	var r mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[i][j] = a[i][j] + b[i][j]
		}
	}
	return r
}

// SolveForward solves L·z = rhs by block forward substitution, in
// place, starting at block firstBlock (blocks before it are assumed
// already solved and left untouched — the active-set update's reuse
// path). rhs holds N blocks of 3 (one axis).
func (c *BlockCholesky) SolveForward(rhs []float64, firstBlock int) {
	for i := firstBlock; i < c.N; i++ {
		b := [3]float64{rhs[i*3], rhs[i*3+1], rhs[i*3+2]}
		if i > 0 {
			prev := [3]float64{rhs[(i-1)*3], rhs[(i-1)*3+1], rhs[(i-1)*3+2]}
			coupled := matVec(c.Sub[i], prev)
			b[0] -= coupled[0]
			b[1] -= coupled[1]
			b[2] -= coupled[2]
		}
		x := solveLowerRow(c.Diag[i], b)
		rhs[i*3], rhs[i*3+1], rhs[i*3+2] = x[0], x[1], x[2]
	}
}

// SolveBackward solves L^T·x = rhs by block backward substitution, in
// place. rhs holds N blocks of 3.
func (c *BlockCholesky) SolveBackward(rhs []float64) {
	for i := c.N - 1; i >= 0; i-- {
		b := [3]float64{rhs[i*3], rhs[i*3+1], rhs[i*3+2]}
		if i+1 < c.N {
			next := [3]float64{rhs[(i+1)*3], rhs[(i+1)*3+1], rhs[(i+1)*3+2]}
			coupled := matTVec(c.Sub[i+1], next)
			b[0] -= coupled[0]
			b[1] -= coupled[1]
			b[2] -= coupled[2]
		}
		x := solveUpperRow(c.Diag[i], b)
		rhs[i*3], rhs[i*3+1], rhs[i*3+2] = x[0], x[1], x[2]
	}
}

func matVec(m mat3, v [3]float64) [3]float64 {
	var r [3]float64
	for i := 0; i < 3; i++ {
		r[i] = m[i][0]*v[0] + m[i][1]*v[1] + m[i][2]*v[2]
	}
	return r
}

func matTVec(m mat3, v [3]float64) [3]float64 {
	var r [3]float64
	for j := 0; j < 3; j++ {
		r[j] = m[0][j]*v[0] + m[1][j]*v[1] + m[2][j]*v[2]
	}
	return r
}
