package smpc

import (
	"github.com/asherikov/smpc-solver/logging"
)

// Solver is the capability set spec.md §9 "Polymorphic solver choice"
// calls out: the active-set and interior-point variants share
// everything but their outer loop, so a small capability interface is
// the right polymorphism rather than tagging one concrete type. It
// takes a plain Horizon rather than a footplan.Window so it stays
// usable against any horizon source (spec.md §9's WMG/smpc::solver
// translation-unit split).
type Solver interface {
	SetParameters(h *Horizon) error
	FormInitFP(initState State, fpX, fpY []float64) error
	Solve() error
	GetNextState() State
}

// ActiveSetFacade implements Solver over ActiveSetSolver. Construction
// order always follows spec.md §5: SetParameters, FormInitFP, Solve,
// GetNextState.
type ActiveSetFacade struct {
	Config Config
	Params *Params
	Chol   *BlockCholesky
	Obj    *Objective
	Eq     *Equality
	AS     *ActiveSetSolver
	H0     float64
	// Logger receives construction-time diagnostics and the
	// iteration-cap warning; never touched inside Solve's Newton/
	// ratio-test loop.
	Logger logging.Logger

	horizon *Horizon
}

// NewActiveSetFacade allocates every buffer for an N-sample horizon up
// front, per spec.md §5's "no allocation in the hot path".
func NewActiveSetFacade(cfg Config) *ActiveSetFacade {
	n := cfg.N
	f := &ActiveSetFacade{
		Config: cfg,
		Params: NewParams(n),
		Chol:   NewBlockCholesky(n),
		Obj:    NewObjective(n),
		Eq:     &Equality{},
		H0:     cfg.Gravity, // overwritten once a window with H[0] arrives
		Logger: logging.NewLogger("smpc.activeset"),
	}
	f.Eq.Params = f.Params
	f.AS = NewActiveSetSolver(f.Params, f.Eq, f.Chol, f.Obj, nil, cfg)
	f.Logger.Debugw("active-set solver constructed",
		"n", n, "gainPosition", cfg.GainPosition, "regularization", cfg.Regularization)
	return f
}

// SetParameters refreshes the per-tick problem from the pattern
// generator's current window. Grounded on the set_parameters call in
// original_source/test/test_03.cpp/test_13.cpp.
func (f *ActiveSetFacade) SetParameters(h *Horizon) error {
	f.horizon = h
	f.Params.Update(h, f.Config)
	f.Obj.Update(h.ZrefX, h.ZrefY, f.Params)
	f.AS.Horizon = h
	if len(h.H) > 0 {
		f.H0 = h.H[0]
	}
	return f.Chol.Form(f.Params, 0)
}

// FormInitFP builds a strictly feasible initial X by solving the LIP
// recurrence forward so each sample's tilde position matches fpX[i]/
// fpY[i], per spec.md §4.7 and
// original_source/solver/qp_solver.cpp::form_init_fp.
func (f *ActiveSetFacade) FormInitFP(initState State, fpX, fpY []float64) error {
	n := f.Params.N
	init := OrigToTilde(initState, f.H0)
	f.Eq.Init = init

	x := make([]float64, 8*n)
	prev := init
	for i := 0; i < n; i++ {
		sp := &f.Params.Samples[i]
		predX := applyA(prev[0], prev[1], prev[2], sp)
		predY := applyA(prev[3], prev[4], prev[5], sp)

		if sp.B[0] == 0 {
			return ErrInitInfeasible
		}
		uX := (fpX[i] - predX[0]) / sp.B[0]
		uY := (fpY[i] - predY[0]) / sp.B[0]

		cur := State{
			predX[0] + sp.B[0]*uX, predX[1] + sp.B[1]*uX, predX[2] + sp.B[2]*uX,
			predY[0] + sp.B[0]*uY, predY[1] + sp.B[1]*uY, predY[2] + sp.B[2]*uY,
		}
		base := StateOffset(i)
		copy(x[base:base+6], cur[:])
		cbase := ControlOffset(n, i)
		x[cbase], x[cbase+1] = uX, uY

		prev = cur
	}

	f.AS.X = x
	return nil
}

// Solve runs the active-set outer loop.
func (f *ActiveSetFacade) Solve() error {
	_, err := f.AS.Solve()
	if warn, ok := err.(*IterationCapWarning); ok {
		f.Logger.Warnw("active-set iteration cap reached", "iterations", warn.Iterations)
	}
	return err
}

// GetNextState returns the solver's first predicted state block,
// mapped back to original coordinates.
func (f *ActiveSetFacade) GetNextState() State {
	var s State
	copy(s[:], f.AS.X[0:6])
	return TildeToOrig(s, f.H0)
}

// ActiveSetSize reports the number of active box constraints at the
// last Solve() call (spec.md §6 diagnostics).
func (f *ActiveSetFacade) ActiveSetSize() int { return len(f.AS.Active) }

// InteriorPointFacade implements Solver over InteriorPointSolver.
type InteriorPointFacade struct {
	Config Config
	Params *Params
	Chol   *BlockCholesky
	Obj    *Objective
	Eq     *Equality
	IP     *InteriorPointSolver
	H0     float64
	Logger logging.Logger

	horizon *Horizon
}

// NewInteriorPointFacade allocates every buffer for an N-sample horizon.
func NewInteriorPointFacade(cfg Config) *InteriorPointFacade {
	n := cfg.N
	f := &InteriorPointFacade{
		Config: cfg,
		Params: NewParams(n),
		Chol:   NewBlockCholesky(n),
		Obj:    NewObjective(n),
		Eq:     &Equality{},
		H0:     cfg.Gravity,
		Logger: logging.NewLogger("smpc.interiorpoint"),
	}
	f.Eq.Params = f.Params
	f.IP = NewInteriorPointSolver(f.Params, f.Eq, f.Chol, f.Obj, nil, cfg)
	f.Logger.Debugw("interior-point solver constructed",
		"n", n, "barrierT", cfg.BarrierT, "barrierMu", cfg.BarrierMu)
	return f
}

// SetParameters refreshes the per-tick problem from the pattern
// generator's current window.
func (f *InteriorPointFacade) SetParameters(h *Horizon) error {
	f.horizon = h
	f.Params.Update(h, f.Config)
	f.Obj.Update(h.ZrefX, h.ZrefY, f.Params)
	f.IP.Horizon = h
	if len(h.H) > 0 {
		f.H0 = h.H[0]
	}
	return f.Chol.Form(f.Params, 0)
}

// FormInitFP builds the same closed-form feasible initial point as
// ActiveSetFacade (the construction doesn't depend on the solver kind).
func (f *InteriorPointFacade) FormInitFP(initState State, fpX, fpY []float64) error {
	n := f.Params.N
	init := OrigToTilde(initState, f.H0)
	f.Eq.Init = init

	x := make([]float64, 8*n)
	prev := init
	for i := 0; i < n; i++ {
		sp := &f.Params.Samples[i]
		predX := applyA(prev[0], prev[1], prev[2], sp)
		predY := applyA(prev[3], prev[4], prev[5], sp)

		if sp.B[0] == 0 {
			return ErrInitInfeasible
		}
		uX := (fpX[i] - predX[0]) / sp.B[0]
		uY := (fpY[i] - predY[0]) / sp.B[0]

		cur := State{
			predX[0] + sp.B[0]*uX, predX[1] + sp.B[1]*uX, predX[2] + sp.B[2]*uX,
			predY[0] + sp.B[0]*uY, predY[1] + sp.B[1]*uY, predY[2] + sp.B[2]*uY,
		}
		base := StateOffset(i)
		copy(x[base:base+6], cur[:])
		cbase := ControlOffset(n, i)
		x[cbase], x[cbase+1] = uX, uY

		prev = cur
	}

	f.IP.X = x
	return nil
}

// Solve runs the log-barrier Newton outer loop.
func (f *InteriorPointFacade) Solve() error {
	err := f.IP.Solve()
	if warn, ok := err.(*IterationCapWarning); ok {
		f.Logger.Warnw("interior-point iteration cap reached", "iterations", warn.Iterations)
	}
	return err
}

// GetNextState returns the solver's first predicted state block, mapped
// back to original coordinates.
func (f *InteriorPointFacade) GetNextState() State {
	var s State
	copy(s[:], f.IP.X[0:6])
	return TildeToOrig(s, f.H0)
}

var (
	_ Solver = (*ActiveSetFacade)(nil)
	_ Solver = (*InteriorPointFacade)(nil)
)
