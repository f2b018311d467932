package footplan

import (
	"github.com/asherikov/smpc-solver/geometry"
)

// stepOptions collects the optional arguments to AddFootstep. Unset
// fields fall back to the Plan's remembered defaults, mirroring the
// three overloaded WMG::AddFootstep signatures in the original C++
// (full args / box-omitted / box-and-repeat-omitted).
type stepOptions struct {
	haveRepeat bool
	nThis      int
	nTotal     int

	haveBox bool
	box     geometry.Box

	stepType SupportType
}

// StepOption configures one AddFootstep call.
type StepOption func(*stepOptions)

// WithRepeat sets how many preview-window samples the new single-support
// record spans (nThis) out of the total samples up to and including the
// next single support (nTotal); the difference is synthesized as
// double-support records between the previous and new support.
func WithRepeat(nThis, nTotal int) StepOption {
	return func(o *stepOptions) {
		o.haveRepeat = true
		o.nThis = nThis
		o.nTotal = nTotal
	}
}

// WithBox overrides the support-polygon half-widths for the new
// footstep (and becomes the new default for subsequent calls that omit
// WithBox).
func WithBox(b geometry.Box) StepOption {
	return func(o *stepOptions) {
		o.haveBox = true
		o.box = b
	}
}

// WithType forces the support type of the new footstep instead of
// letting Plan alternate sides automatically.
func WithType(t SupportType) StepOption {
	return func(o *stepOptions) { o.stepType = t }
}

// Plan is the ordered, append-only sequence of footstep records plus the
// preview-window cursor, spec.md §3 "Plan".
type Plan struct {
	FS []FootStep

	// CurrentStepNumber names the record that owns the preview
	// window's first sample. Advances monotonically; only
	// PatternGenerator.FormPreviewWindow mutates it.
	CurrentStepNumber int

	// Remembered defaults, carried from the most recent AddFootstep
	// call that specified them explicitly.
	defaultBox         geometry.Box
	defaultRepeatTimes int
	defaultDSBox       geometry.Box
	defaultDSNum       int
}

// NewPlan creates an empty plan with the NAO-ish default support box and
// double-support box used by the original WMG::init, which callers
// typically override via WithBox on their first AddFootstep.
func NewPlan() *Plan {
	return &Plan{
		defaultBox:         geometry.Box{PlusX: 0.09, PlusY: 0.025, MinusX: 0.03, MinusY: 0.025},
		defaultRepeatTimes: 4,
		defaultDSBox:       geometry.Box{PlusX: 0.07, PlusY: 0.025, MinusX: 0.025, MinusY: 0.025},
		defaultDSNum:       0,
	}
}

// AddFootstep appends a new single-support footstep to the plan and,
// before it, synthesizes nTotal-nThis double-support records (see
// WithRepeat) that interpolate between the previous record and the new
// one. dx, dy,
// dAngle are relative to the previous footstep (absolute, for the very
// first call, per spec.md §4.1). See WMG.cpp::AddFootstep.
func (p *Plan) AddFootstep(dx, dy, dAngle float64, opts ...StepOption) {
	o := stepOptions{stepType: AUTO}
	for _, opt := range opts {
		opt(&o)
	}
	if o.haveRepeat {
		p.defaultRepeatTimes = o.nThis
		p.defaultDSNum = o.nTotal - o.nThis
	}
	if o.haveBox {
		p.defaultBox = o.box
	}

	if len(p.FS) == 0 {
		p.addFirstFootstep(dx, dy, dAngle, o.stepType)
		return
	}
	p.addSubsequentFootstep(dx, dy, dAngle, o.stepType)
}

func (p *Plan) addFirstFootstep(dx, dy, dAngle float64, stepType SupportType) {
	if stepType == AUTO {
		stepType = DS
	}
	pos := geometry.Point2D{X: dx, Y: dy}
	rot := geometry.NewRot2(dAngle)
	zmpRef := pos.Add(rot.Apply(p.defaultBox.Center()))

	p.FS = append(p.FS, newFootStep(stepType, pos, dAngle, zmpRef, p.defaultBox, p.defaultRepeatTimes))
}

func (p *Plan) addSubsequentFootstep(dx, dy, dAngle float64, stepType SupportType) {
	prev := p.FS[len(p.FS)-1]

	if stepType == AUTO {
		switch prev.Type {
		case SSLeft:
			stepType = SSRight
		case SSRight:
			stepType = SSLeft
		default:
			stepType = SSRight
		}
	}

	nextPos := prev.Pos.Add(prev.Rot.Apply(geometry.Point2D{X: dx, Y: dy}))
	nextAngle := prev.Angle + dAngle
	nextRot := geometry.NewRot2(nextAngle)
	nextZMPRef := nextPos.Add(nextRot.Apply(p.defaultBox.Center()))

	prevZMPRef := prev.ZMPRef
	dsNum := p.defaultDSNum
	for i := 0; i < dsNum; i++ {
		theta := float64(i+1) / float64(dsNum+1)
		dsAngle := prev.Angle + dAngle*theta
		dsPos := geometry.Lerp(prev.Pos, nextPos, theta)

		zmpRef := nextZMPRef
		if i < dsNum/2 {
			zmpRef = prevZMPRef
		}
		p.FS = append(p.FS, newFootStep(DS, dsPos, dsAngle, zmpRef, p.defaultDSBox, 1))
	}

	p.FS = append(p.FS, newFootStep(stepType, nextPos, nextAngle, nextZMPRef, p.defaultBox, p.defaultRepeatTimes))
}

// GetNextSS scans forward from startInd (exclusive) for the next
// single-support record, optionally restricted to side `want` (AUTO
// matches either side). Returns ErrNoSingleSupport if none is found
// before the end of the plan.
func (p *Plan) GetNextSS(startInd int, want SupportType) (int, error) {
	for i := startInd + 1; i < len(p.FS); i++ {
		if p.FS[i].Type != DS && (want == AUTO || p.FS[i].Type == want) {
			return i, nil
		}
	}
	return -1, ErrNoSingleSupport
}

// GetPrevSS scans backward from startInd (exclusive) for the previous
// single-support record, optionally restricted to side `want`.
func (p *Plan) GetPrevSS(startInd int, want SupportType) (int, error) {
	for i := startInd - 1; i >= 0; i-- {
		if p.FS[i].Type != DS && (want == AUTO || p.FS[i].Type == want) {
			return i, nil
		}
	}
	return -1, ErrNoSingleSupport
}

// SingleSupportPoses returns every single-support record in plan order;
// each record's Pos and Angle give its (x, y, angle). Grounded on WMG::getFootsteps (SPEC_FULL.md
// C.4); useful to a foot-trajectory consumer independent of any
// plotting.
func (p *Plan) SingleSupportPoses() []FootStep {
	out := make([]FootStep, 0, len(p.FS))
	for _, fs := range p.FS {
		if fs.Type.IsSingleSupport() {
			out = append(out, fs)
		}
	}
	return out
}
