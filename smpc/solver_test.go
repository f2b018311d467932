package smpc

import (
	"testing"

	"go.viam.com/test"

	"github.com/asherikov/smpc-solver/footplan"
)

// TestSolverHaltsWhenPlanTooShort checks spec.md §8 scenario "HALT
// detection": a plan with only one footstep record cannot fill a
// 15-sample window, and the caller must see that as a distinct error
// from "no footsteps at all".
func TestSolverHaltsWhenPlanTooShort(t *testing.T) {
	p := footplan.NewPlan()
	p.AddFootstep(0.0, 0.05, 0.0)
	pg := footplan.NewPatternGenerator(p, 15, 0.1, 0.261, 9.81, 0.0135)

	err := pg.FormPreviewWindow()
	test.That(t, err, test.ShouldEqual, footplan.ErrNeedMoreFootsteps)
}

// TestSolverVariableSamplingPeriod checks that Params.Update picks up a
// per-sample T that differs from the window's other entries (spec.md
// §4.1's "the preview window's first sample may use a shorter period
// than the rest, to land exactly on the next control tick").
func TestSolverVariableSamplingPeriod(t *testing.T) {
	n := 6
	pg := buildScenario(n)
	test.That(t, pg.FormPreviewWindow(), test.ShouldBeNil)
	win := pg.Window
	win.T[0] = 0.045 // simulates a first sample shortened to land on the next tick

	cfg := DefaultConfig(n)
	params := NewParams(n)
	params.Update(horizonFromWindow(win), cfg)

	test.That(t, params.Samples[0].A3, test.ShouldAlmostEqual, 0.045)
	test.That(t, params.Samples[1].A3, test.ShouldAlmostEqual, 0.1)
}

// TestActiveSetAndInteriorPointAgree checks spec.md §8 invariant 5: on
// an unconstrained-feasible scenario both solvers converge to
// essentially the same predicted next state.
func TestActiveSetAndInteriorPointAgree(t *testing.T) {
	n := 6
	pg := buildScenario(n)
	test.That(t, pg.FormPreviewWindow(), test.ShouldBeNil)
	win := pg.Window
	init := State{win.FootX[0], 0, 0, win.FootY[0], 0, 0}

	asCfg := DefaultConfig(n)
	asFacade := NewActiveSetFacade(asCfg)
	h := horizonFromWindow(win)
	test.That(t, asFacade.SetParameters(h), test.ShouldBeNil)
	test.That(t, asFacade.FormInitFP(init, win.FootX, win.FootY), test.ShouldBeNil)
	test.That(t, asFacade.Solve(), test.ShouldBeNil)

	ipCfg := DefaultConfig(n)
	ipCfg.MaxIter = 60
	ipFacade := NewInteriorPointFacade(ipCfg)
	test.That(t, ipFacade.SetParameters(h), test.ShouldBeNil)
	test.That(t, ipFacade.FormInitFP(init, win.FootX, win.FootY), test.ShouldBeNil)
	_ = ipFacade.Solve()

	asNext := asFacade.GetNextState()
	ipNext := ipFacade.GetNextState()
	test.That(t, asNext[0], test.ShouldAlmostEqual, ipNext[0], 1e-3)
	test.That(t, asNext[3], test.ShouldAlmostEqual, ipNext[3], 1e-3)
}

// TestGetNextStateRoundTripsThroughTilde checks that GetNextState's
// coordinate conversion is consistent with the X the solver actually
// produced (spec.md §3's tilde-position identity, C5/C10 boundary).
func TestGetNextStateRoundTripsThroughTilde(t *testing.T) {
	n := 6
	pg := buildScenario(n)
	test.That(t, pg.FormPreviewWindow(), test.ShouldBeNil)
	win := pg.Window

	cfg := DefaultConfig(n)
	facade := NewActiveSetFacade(cfg)
	test.That(t, facade.SetParameters(horizonFromWindow(win)), test.ShouldBeNil)
	init := State{win.FootX[0], 0, 0, win.FootY[0], 0, 0}
	test.That(t, facade.FormInitFP(init, win.FootX, win.FootY), test.ShouldBeNil)
	test.That(t, facade.Solve(), test.ShouldBeNil)

	next := facade.GetNextState()
	test.That(t, next[0], test.ShouldAlmostEqual, facade.AS.X[0]+facade.H0*facade.AS.X[2])
	test.That(t, next[3], test.ShouldAlmostEqual, facade.AS.X[3]+facade.H0*facade.AS.X[5])
}
