package smpc

import (
	"github.com/asherikov/smpc-solver/footplan"
	"github.com/asherikov/smpc-solver/geometry"
)

// buildScenario reproduces test/init_WMG.cpp's init_01 seed plan (also
// used by footplan's own tests) and forms one preview window from it,
// giving the smpc tests a realistic Window without duplicating the
// pattern generator itself.
func buildScenario(n int) *footplan.PatternGenerator {
	p := footplan.NewPlan()
	box := geometry.Box{PlusX: 0.09, PlusY: 0.025, MinusX: 0.03, MinusY: 0.075}
	p.AddFootstep(0.0, 0.05, 0.0, footplan.WithBox(box), footplan.WithRepeat(3, 3))
	p.AddFootstep(0.0, -0.1, 0.0, footplan.WithRepeat(4, 4))
	for i := 0; i < 6; i++ {
		sign := 1.0
		if i%2 == 1 {
			sign = -1.0
		}
		p.AddFootstep(0.035, sign*0.2, sign*0.0873, footplan.WithRepeat(8, 8))
	}

	pg := footplan.NewPatternGenerator(p, n, 0.1, 0.261, 9.81, 0.0135)
	return pg
}

// horizonFromWindow copies a footplan.Window's fields into a plain
// Horizon, the shape smpc's public API actually consumes (spec.md §9's
// WMG/smpc::solver translation-unit split: smpc never imports footplan
// types, so a caller driving both packages converts at the boundary).
func horizonFromWindow(win *footplan.Window) *Horizon {
	return &Horizon{
		T: win.T, H: win.H, Angle: win.Angle,
		ZrefX: win.ZrefX, ZrefY: win.ZrefY,
		FootX: win.FootX, FootY: win.FootY,
		LB: win.LB, UB: win.UB,
	}
}

// buildSolverFromWindow wires Params/Objective/Chol/Equality straight
// from a formed window, mirroring what ActiveSetFacade/InteriorPointFacade
// do internally, for tests that need the pieces individually.
func buildSolverFromWindow(win *footplan.Window, cfg Config) (*Params, *Objective, *Equality, *BlockCholesky) {
	h := horizonFromWindow(win)
	params := NewParams(cfg.N)
	params.Update(h, cfg)
	obj := NewObjective(cfg.N)
	obj.Update(h.ZrefX, h.ZrefY, params)
	eq := &Equality{Params: params}
	chol := NewBlockCholesky(cfg.N)
	return params, obj, eq, chol
}
