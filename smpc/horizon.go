package smpc

// Horizon is the plain-data shape the solver consumes for one tick:
// every slice has length Config.N. smpc never imports footplan's Window
// type directly (spec.md §9's split between the pattern generator and
// the solver translation unit, mirrored from the original C++'s WMG/
// smpc::solver separation) — a caller driving both packages copies the
// fields it needs out of footplan.Window into a Horizon, keeping this
// package usable against any horizon source.
type Horizon struct {
	T, H, Angle  []float64
	ZrefX, ZrefY []float64
	FootX, FootY []float64
	LB, UB       [2][]float64
}
