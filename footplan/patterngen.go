package footplan

import (
	"github.com/asherikov/smpc-solver/geometry"
	"github.com/asherikov/smpc-solver/logging"
)

// Window is one preview-window's worth of per-sample horizon data,
// filled in place by PatternGenerator.FormPreviewWindow. All slices
// share length N. Grounded on WMG's public T/h/angle/zref/lb/ub arrays
// (WMG.h) and the loop that fills them, WMG.cpp::formPreviewWindow.
type Window struct {
	T      []float64
	H      []float64
	Angle  []float64
	ZrefX  []float64
	ZrefY  []float64
	FootX  []float64
	FootY  []float64
	LB     [2][]float64 // per-axis (x, y) lower bound, foot frame
	UB     [2][]float64 // per-axis (x, y) upper bound, foot frame
	StepNo []int        // index into Plan.FS that produced this sample
}

func newWindow(n int) *Window {
	w := &Window{
		T:      make([]float64, n),
		H:      make([]float64, n),
		Angle:  make([]float64, n),
		ZrefX:  make([]float64, n),
		ZrefY:  make([]float64, n),
		FootX:  make([]float64, n),
		FootY:  make([]float64, n),
		StepNo: make([]int, n),
	}
	w.LB[0] = make([]float64, n)
	w.LB[1] = make([]float64, n)
	w.UB[0] = make([]float64, n)
	w.UB[1] = make([]float64, n)
	return w
}

// PatternGenerator turns a Plan into the per-sample horizon data the QP
// solver consumes, one preview window at a time. See spec.md §4.2
// "Pattern Generator" (C2) and WMG.cpp.
type PatternGenerator struct {
	Plan *Plan

	N          int
	Gravity    float64
	CoMHeight  float64
	StepHeight float64
	// SamplingTime is used for every sample unless overridden via
	// SetSamplingTime, matching WMG's default-T-then-override-T[i] usage
	// (test/test_03.cpp).
	SamplingTime float64

	sampleT []float64

	Window *Window

	// Logger receives construction-time diagnostics and the HALT
	// warning; it is never touched inside FormPreviewWindow's per-sample
	// loop. Defaults to a stdout logger named "footplan.patterngen".
	Logger logging.Logger
}

// NewPatternGenerator creates a generator for plan with an N-sample
// preview window, walking height CoMHeight (meters) under gravity g
// (m/s^2), swinging the free foot to StepHeight meters at the apex.
func NewPatternGenerator(plan *Plan, n int, samplingTime, comHeight, gravity, stepHeight float64) *PatternGenerator {
	pg := &PatternGenerator{
		Plan:         plan,
		N:            n,
		Gravity:      gravity,
		CoMHeight:    comHeight,
		StepHeight:   stepHeight,
		SamplingTime: samplingTime,
		sampleT:      make([]float64, n),
		Window:       newWindow(n),
		Logger:       logging.NewLogger("footplan.patterngen"),
	}
	for i := range pg.sampleT {
		pg.sampleT[i] = samplingTime
	}
	pg.Logger.Debugw("pattern generator constructed",
		"n", n, "samplingTime", samplingTime, "comHeight", comHeight, "gravity", gravity, "stepHeight", stepHeight)
	return pg
}

// SetSamplingTime overrides the sampling period used for horizon sample
// i (0-indexed from "now"), for variable-timestep previews. See
// test/test_03.cpp.
func (pg *PatternGenerator) SetSamplingTime(i int, t float64) {
	pg.sampleT[i] = t
}

// FormPreviewWindow fills pg.Window with the next N horizon samples
// starting at Plan.CurrentStepNumber, consuming RepeatCounter from the
// plan's footstep records as it goes and advancing CurrentStepNumber
// across any record it exhausts. It returns ErrNoFootsteps if the plan
// is empty, and ErrNeedMoreFootsteps (the WMG_HALT case) if the plan
// runs out of records before N samples are filled; in the halt case the
// caller must AddFootstep and retry, the records already walked are
// left consumed. Grounded on WMG.cpp::formPreviewWindow.
func (pg *PatternGenerator) FormPreviewWindow() error {
	if len(pg.Plan.FS) == 0 {
		return ErrNoFootsteps
	}

	cur := pg.Plan.CurrentStepNumber
	w := pg.Window
	h := pg.CoMHeight / pg.Gravity

	for i := 0; i < pg.N; i++ {
		if cur >= len(pg.Plan.FS) {
			pg.Logger.Warnw("plan exhausted before preview window filled",
				"filled", i, "wanted", pg.N, "stepNumber", cur)
			return ErrNeedMoreFootsteps
		}
		fs := &pg.Plan.FS[cur]

		w.T[i] = pg.sampleT[i]
		w.H[i] = h
		w.Angle[i] = fs.Angle
		w.ZrefX[i] = fs.ZMPRef.X
		w.ZrefY[i] = fs.ZMPRef.Y
		w.FootX[i] = fs.Pos.X
		w.FootY[i] = fs.Pos.Y
		lox, hix := fs.Box.Bounds(0)
		loy, hiy := fs.Box.Bounds(1)
		w.LB[0][i], w.UB[0][i] = lox, hix
		w.LB[1][i], w.UB[1][i] = loy, hiy
		w.StepNo[i] = cur

		fs.RepeatCounter--
		if fs.RepeatCounter <= 0 {
			fs.RepeatCounter = fs.RepeatTimes
			cur++
		}
	}

	pg.Plan.CurrentStepNumber = cur
	return nil
}

// IsSupportSwitchNeeded reports whether the support foot at the start
// of the current window differs from the one active one sample before
// it, i.e. whether the controller output should trigger a swing-leg
// step. Grounded on WMG::isSupportSwitchNeeded.
func (pg *PatternGenerator) IsSupportSwitchNeeded() bool {
	cur := pg.Plan.CurrentStepNumber
	if cur == 0 || cur >= len(pg.Plan.FS) {
		return false
	}
	return pg.Plan.FS[cur].Type != pg.Plan.FS[cur-1].Type
}

// FeetPositions returns the swing foot's planar position and height at
// fraction theta (0 at toe-off, 1 at touch-down) through the single
// support phase that runs from the record at prevSS to the one at
// nextSS. The interpolation keys on the arc length of the straight-line
// path between the two footsteps rather than either foot's x
// coordinate, so it stays frame-invariant; this is the variant
// WMG_private.cpp::getSSFeetPositions computes, preferred over the
// x-keyed WMG.cpp::getFeetPositions per spec.md's open design question.
func (pg *PatternGenerator) FeetPositions(prevSS, nextSS int, theta float64) (pos geometry.Point2D, height float64) {
	prev := pg.Plan.FS[prevSS]
	next := pg.Plan.FS[nextSS]

	pos = geometry.Lerp(prev.Pos, next.Pos, theta)

	d := next.Pos.Sub(prev.Pos)
	l := d.Norm()
	if l == 0 {
		return pos, 0
	}

	// Fit a parabola z(s) = a*s^2 + b*s through (0,0), (l/2, stepHeight),
	// (l, 0) in arc-length coordinate s, then evaluate at s = theta*l.
	const mid = 0.5
	x1 := mid * l
	x2 := l
	bCoef := -(x2 * x2) / x2
	a := pg.StepHeight / (x1*x1 + bCoef*x1)
	b := a * bCoef
	s := theta * l
	height = a*s*s + b*s
	return pos, height
}
