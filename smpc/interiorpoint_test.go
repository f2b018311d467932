package smpc

import (
	"testing"

	"go.viam.com/test"
)

func TestInteriorPointSolveStaysFeasible(t *testing.T) {
	n := 6
	pg := buildScenario(n)
	test.That(t, pg.FormPreviewWindow(), test.ShouldBeNil)
	win := pg.Window

	cfg := DefaultConfig(n)
	cfg.MaxIter = 40
	facade := NewInteriorPointFacade(cfg)
	test.That(t, facade.SetParameters(horizonFromWindow(win)), test.ShouldBeNil)
	init := State{win.FootX[0], 0, 0, win.FootY[0], 0, 0}
	test.That(t, facade.FormInitFP(init, win.FootX, win.FootY), test.ShouldBeNil)

	err := facade.Solve()
	if err != nil {
		_, capped := err.(*IterationCapWarning)
		test.That(t, capped, test.ShouldBeTrue)
	}

	for i := 0; i < n; i++ {
		ubx, lbx, uby, lby := facade.IP.slackMargins(i)
		test.That(t, ubx > 0, test.ShouldBeTrue)
		test.That(t, lbx > 0, test.ShouldBeTrue)
		test.That(t, uby > 0, test.ShouldBeTrue)
		test.That(t, lby > 0, test.ShouldBeTrue)
	}
}

func TestInteriorPointRecordsObjectiveLog(t *testing.T) {
	n := 4
	pg := buildScenario(n)
	test.That(t, pg.FormPreviewWindow(), test.ShouldBeNil)
	win := pg.Window

	cfg := DefaultConfig(n)
	cfg.MaxIter = 10
	cfg.LogObjective = true
	facade := NewInteriorPointFacade(cfg)
	test.That(t, facade.SetParameters(horizonFromWindow(win)), test.ShouldBeNil)
	init := State{win.FootX[0], 0, 0, win.FootY[0], 0, 0}
	test.That(t, facade.FormInitFP(init, win.FootX, win.FootY), test.ShouldBeNil)

	_ = facade.Solve()
	test.That(t, len(facade.IP.ObjectiveLog) > 0, test.ShouldBeTrue)
}
