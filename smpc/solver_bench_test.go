package smpc

import (
	"sync"
	"testing"

	"go.viam.com/utils"

	"github.com/asherikov/smpc-solver/footplan"
)

// runFacadeTick builds the feasible init point and runs one Solve call
// for an already-parameterized facade.
func runFacadeTick(b *testing.B, s Solver, win *footplan.Window) {
	init := State{win.FootX[0], 0, 0, win.FootY[0], 0, 0}
	if err := s.FormInitFP(init, win.FootX, win.FootY); err != nil {
		b.Fatalf("FormInitFP: %v", err)
	}
	if err := s.Solve(); err != nil {
		if _, capped := err.(*IterationCapWarning); !capped {
			b.Fatalf("Solve: %v", err)
		}
	}
	_ = s.GetNextState()
}

// BenchmarkActiveSetVsInteriorPointConcurrent runs both solver variants
// on separate goroutines per iteration, supervised by
// utils.PanicCapturingGo so a panic in either worker surfaces as a
// logged failure rather than silently hanging b.N iterations — the same
// guard cBiRRT.go's background tree-expansion workers relied on. The
// solver itself never runs multiple goroutines per tick; this exists
// only to compare the two variants' throughput side by side.
func BenchmarkActiveSetVsInteriorPointConcurrent(b *testing.B) {
	n := 6
	pg := buildScenario(n)
	if err := pg.FormPreviewWindow(); err != nil {
		b.Fatalf("FormPreviewWindow: %v", err)
	}
	win := pg.Window
	h := horizonFromWindow(win)

	asCfg := DefaultConfig(n)
	ipCfg := DefaultConfig(n)
	ipCfg.MaxIter = 30

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		var wg sync.WaitGroup
		wg.Add(2)

		utils.PanicCapturingGo(func() {
			defer wg.Done()
			f := NewActiveSetFacade(asCfg)
			if err := f.SetParameters(h); err != nil {
				b.Error(err)
				return
			}
			runFacadeTick(b, f, win)
		})

		utils.PanicCapturingGo(func() {
			defer wg.Done()
			f := NewInteriorPointFacade(ipCfg)
			if err := f.SetParameters(h); err != nil {
				b.Error(err)
				return
			}
			runFacadeTick(b, f, win)
		})

		wg.Wait()
	}
}
