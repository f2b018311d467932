package footplan

import (
	"math"

	"github.com/asherikov/smpc-solver/geometry"
)

// SupportType names the kind of ground contact a footstep record
// describes.
type SupportType int

// Recognized support types. AUTO is only meaningful as an argument to
// AddFootstep; no FootStep record is ever stored with type AUTO.
const (
	AUTO SupportType = iota
	SSLeft
	SSRight
	DS
)

// String renders t for logging/debugging.
func (t SupportType) String() string {
	switch t {
	case AUTO:
		return "AUTO"
	case SSLeft:
		return "SS_LEFT"
	case SSRight:
		return "SS_RIGHT"
	case DS:
		return "DS"
	default:
		return "UNKNOWN"
	}
}

// IsSingleSupport reports whether t is one of the two single-support
// types.
func (t SupportType) IsSingleSupport() bool {
	return t == SSLeft || t == SSRight
}

// FootStep is one entry of a Plan: the pose of a support foot (or a
// double-support midpoint), its ZMP reference, its support-polygon box,
// and the bookkeeping the preview window uses to decide how many samples
// this record contributes. See spec.md §3 "Footstep record".
type FootStep struct {
	Type SupportType

	// Pos is the absolute planar position of the foot/DS midpoint.
	Pos geometry.Point2D
	// Angle is the absolute orientation, radians.
	Angle float64
	// Rot caches cos/sin of Angle.
	Rot geometry.Rot2

	// Box is the support polygon's half-widths in the foot frame.
	Box geometry.Box

	// ZMPRef is the reference ZMP point, in world coordinates.
	ZMPRef geometry.Point2D

	// RepeatTimes is the number of preview-window samples this record
	// was created to span; it never changes after construction.
	RepeatTimes int
	// RepeatCounter is the number of samples remaining to be emitted
	// for this record; FormPreviewWindow mutates this, nothing else
	// does.
	RepeatCounter int
}

// newFootStep builds a FootStep, caching its rotation and placing
// RepeatCounter at RepeatTimes.
func newFootStep(t SupportType, pos geometry.Point2D, angle float64, zmpRef geometry.Point2D, box geometry.Box, repeatTimes int) FootStep {
	return FootStep{
		Type:          t,
		Pos:           pos,
		Angle:         angle,
		Rot:           geometry.NewRot2(angle),
		Box:           box,
		ZMPRef:        zmpRef,
		RepeatTimes:   repeatTimes,
		RepeatCounter: repeatTimes,
	}
}

// Valid checks the invariants spec.md §3 requires of every footstep
// record: non-negative box half-widths and a finite angle.
func (f FootStep) Valid() bool {
	if !f.Box.Valid() {
		return false
	}
	return !math.IsNaN(f.Angle) && !math.IsInf(f.Angle, 0)
}

// Vertices returns the four world-frame corners of this footstep's
// support polygon. See SPEC_FULL.md C.3: this is the geometric payload
// WMG::FS2file used to emit, exposed directly instead of through a file
// emitter.
func (f FootStep) Vertices() [4]geometry.Point2D {
	return f.Box.Vertices(f.Pos, f.Rot)
}
