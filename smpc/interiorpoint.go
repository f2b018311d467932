package smpc

import (
	"math"
)

// InteriorPointSolver is the interior-point variant, spec.md §4.6 (C9):
// a primal log-barrier Newton method with backtracking line search. It
// keeps no slack or dual variables; every iterate, starting with the
// initial X, must lie strictly inside every box, since the barrier
// objective is undefined outside. Backtracking policy is
// SMPC_IP_BS_LOGBAR per original_source/test/test_13.cpp's solver_ip
// constructor. Each outer
// Newton step re-weights the position entry of the per-sample Hessian
// diagonal by the barrier curvature of its four box constraints (upper/
// lower, x/y), then reuses the same block-Cholesky machinery as the
// equality-only solve; cross-axis coupling from the rotated box normals
// is treated as negligible next to the diagonal barrier term, which
// keeps the per-axis block-Cholesky factorization applicable unchanged.
type InteriorPointSolver struct {
	Params  *Params
	Eq      *Equality
	Chol    *BlockCholesky
	Obj     *Objective
	Horizon *Horizon
	Config  Config

	X []float64

	ExtLoopIterations   int
	BacktrackIterations int
	ObjectiveLog        []float64

	ws          *descentWorkspace
	gradBuf     []float64 // 8N, true H·X + g + barrier gradient
	barrierI2Q0 []float64 // N, combined-curvature i2Q[0] swapped in for the Newton solve
	savedI2Q0   []float64 // N, original i2Q[0], restored after the solve
	trial       []float64 // 8N, backtracking line search's candidate X
}

// NewInteriorPointSolver wires together the pieces for an N-sample horizon.
func NewInteriorPointSolver(params *Params, eq *Equality, chol *BlockCholesky, obj *Objective, win *Horizon, cfg Config) *InteriorPointSolver {
	n := params.N
	return &InteriorPointSolver{
		Params: params, Eq: eq, Chol: chol, Obj: obj, Horizon: win, Config: cfg,
		ws:          newDescentWorkspace(n),
		gradBuf:     make([]float64, 8*n),
		barrierI2Q0: make([]float64, n),
		savedI2Q0:   make([]float64, n),
		trial:       make([]float64, 8*n),
	}
}

// slackMargins returns, for sample i's position state, the signed
// distance to each of its four box edges (positive means feasible,
// i.e. strictly inside).
func (s *InteriorPointSolver) slackMargins(i int) (ubx, lbx, uby, lby float64) {
	base := StateOffset(i)
	posX, posY := s.X[base+0], s.X[base+3]
	angle := s.Horizon.Angle[i]
	c, sn := math.Cos(angle), math.Sin(angle)
	dx := posX - s.Horizon.FootX[i]
	dy := posY - s.Horizon.FootY[i]
	vx := c*dx + sn*dy
	vy := -sn*dx + c*dy
	return s.Horizon.UB[0][i] - vx, vx - s.Horizon.LB[0][i], s.Horizon.UB[1][i] - vy, vy - s.Horizon.LB[1][i]
}

// barrierObjective evaluates 0.5 Xᵀ H X + gᵀX − (1/t)·Σ log(slack), used
// by the backtracking line search's sufficient-decrease check.
func (s *InteriorPointSolver) barrierObjective(t float64) (float64, bool) {
	var quad float64
	n := s.Params.N
	for i := 0; i < n; i++ {
		sp := &s.Params.Samples[i]
		base := StateOffset(i)
		for k := 0; k < 3; k++ {
			weight := 1 / (2 * sp.I2Q[k])
			quad += weight * s.X[base+k] * s.X[base+k]
			quad += weight * s.X[base+3+k] * s.X[base+3+k]
		}
		cbase := ControlOffset(n, i)
		cw := 1 / (2 * sp.I2P)
		quad += cw * s.X[cbase] * s.X[cbase]
		quad += cw * s.X[cbase+1] * s.X[cbase+1]
	}
	for i := range s.X {
		quad += s.Obj.G[i] * s.X[i]
	}

	var barrier float64
	for i := 0; i < n; i++ {
		ubx, lbx, uby, lby := s.slackMargins(i)
		if ubx <= 0 || lbx <= 0 || uby <= 0 || lby <= 0 {
			return 0, false
		}
		barrier += math.Log(ubx) + math.Log(lbx) + math.Log(uby) + math.Log(lby)
	}
	return quad - barrier/t, true
}

// addBarrierGradient adds −(1/t)·∇Σlog(slack) to dst's position entries
// (index base+0/base+3 per sample; every other entry is untouched,
// since the barrier depends only on each sample's position state).
// Obtained by differentiating slackMargins' four box-edge distances
// through the foot-frame rotation: d(vx)/d(posX)=c, d(vx)/d(posY)=sn,
// d(vy)/d(posX)=-sn, d(vy)/d(posY)=c.
func (s *InteriorPointSolver) addBarrierGradient(dst []float64, t float64) {
	n := s.Params.N
	for i := 0; i < n; i++ {
		ubx, lbx, uby, lby := s.slackMargins(i)
		angle := s.Horizon.Angle[i]
		c, sn := math.Cos(angle), math.Sin(angle)
		rubx, rlbx, ruby, rlby := 1/ubx, 1/lbx, 1/uby, 1/lby

		gx := c*(rlbx-rubx) + sn*(ruby-rlby)
		gy := sn*(rlbx-rubx) + c*(rlby-ruby)

		base := StateOffset(i)
		dst[base+0] -= gx / t
		dst[base+3] -= gy / t
	}
}

// Solve runs the log-barrier Newton outer loop until the duality-gap
// proxy falls below Config.OuterTolerance or Config.MaxIter is reached.
func (s *InteriorPointSolver) Solve() error {
	t := s.Config.BarrierT
	maxIter := s.Config.MaxIter
	if maxIter <= 0 {
		maxIter = 50
	}
	n := s.Params.N

	for outer := 0; outer < maxIter; outer++ {
		s.ExtLoopIterations = outer + 1

		// The Newton gradient uses the true cost Hessian (the
		// unmodified i2Q) plus the barrier's own gradient; only the
		// Hessian swapped into Chol.Form below approximates the
		// barrier's curvature.
		s.Obj.GradientInto(s.gradBuf, s.X, s.Params)
		s.addBarrierGradient(s.gradBuf, t)

		for i := 0; i < n; i++ {
			ubx, lbx, uby, lby := s.slackMargins(i)
			curvature := 1/(ubx*ubx) + 1/(lbx*lbx) + 1/(uby*uby) + 1/(lby*lby)
			orig := 1 / (2 * s.Params.Samples[i].I2Q[0])
			s.barrierI2Q0[i] = 1 / (2 * (orig + curvature/t))
		}
		for i := 0; i < n; i++ {
			s.savedI2Q0[i] = s.Params.Samples[i].I2Q[0]
			s.Params.Samples[i].I2Q[0] = s.barrierI2Q0[i]
		}
		if err := s.Chol.Form(s.Params, 0); err != nil {
			for i := 0; i < n; i++ {
				s.Params.Samples[i].I2Q[0] = s.savedI2Q0[i]
			}
			return err
		}
		dX, _ := unconstrainedDescent(s.Eq, s.Chol, s.gradBuf, s.ws)
		for i := 0; i < n; i++ {
			s.Params.Samples[i].I2Q[0] = s.savedI2Q0[i]
		}

		before, ok := s.barrierObjective(t)
		if !ok {
			before = math.Inf(1)
		}

		step := 1.0
		for bt := 0; bt < 30; bt++ {
			s.BacktrackIterations++
			copy(s.trial, s.X)
			for i := range s.trial {
				s.trial[i] += step * dX[i]
			}
			prevX := s.X
			s.X = s.trial
			after, feasible := s.barrierObjective(t)
			s.X = prevX
			if feasible && after <= before-s.Config.BacktrackAlpha*step*dot(dX, dX) {
				copy(s.X, s.trial)
				break
			}
			step *= s.Config.BacktrackBeta
		}

		if s.Config.LogObjective {
			v, _ := s.barrierObjective(t)
			s.ObjectiveLog = append(s.ObjectiveLog, v)
		}

		if 4*float64(n)/t < s.Config.OuterTolerance {
			return nil
		}
		t *= s.Config.BarrierMu
	}
	return &IterationCapWarning{Iterations: maxIter}
}
