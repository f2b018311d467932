package footplan

import (
	"testing"

	"go.viam.com/test"

	"github.com/asherikov/smpc-solver/geometry"
)

// footBox mirrors the d={0.09, 0.025, 0.03, 0.075} feet used throughout
// test/init_WMG.cpp's init_01.
func footBox() geometry.Box {
	return geometry.Box{PlusX: 0.09, PlusY: 0.025, MinusX: 0.03, MinusY: 0.075}
}

func TestAddFootstepFirstIsDoubleSupportByDefault(t *testing.T) {
	p := NewPlan()
	p.AddFootstep(0.0, 0.05, 0.0, WithBox(footBox()), WithRepeat(3, 3))

	test.That(t, len(p.FS), test.ShouldEqual, 1)
	test.That(t, p.FS[0].Type, test.ShouldEqual, DS)
	test.That(t, p.FS[0].Pos.X, test.ShouldAlmostEqual, 0.0)
	test.That(t, p.FS[0].Pos.Y, test.ShouldAlmostEqual, 0.05)
}

func TestAddFootstepAlternatesSides(t *testing.T) {
	p := NewPlan()
	p.AddFootstep(0.0, 0.05, 0.0, WithBox(footBox()), WithRepeat(3, 3))
	p.AddFootstep(0.0, -0.1, 0.0, WithRepeat(4, 4))
	p.AddFootstep(0.035, 0.2, 0.0873, WithRepeat(8, 8))
	p.AddFootstep(0.035, -0.2, -0.0873, WithRepeat(8, 8))

	test.That(t, p.FS[1].Type, test.ShouldEqual, SSRight)
	test.That(t, p.FS[2].Type, test.ShouldEqual, SSLeft)
	test.That(t, p.FS[3].Type, test.ShouldEqual, SSRight)
}

func TestAddFootstepSynthesizesDoubleSupport(t *testing.T) {
	p := NewPlan()
	p.AddFootstep(0.0, 0.05, 0.0, WithBox(footBox()), WithRepeat(3, 3))
	// nTotal - nThis = 2 DS records synthesized between the previous
	// record and this new SS.
	p.AddFootstep(0.0, -0.1, 0.0, WithRepeat(4, 6))
	p.AddFootstep(0.035, 0.1, 0.0, WithRepeat(8, 8))

	test.That(t, len(p.FS), test.ShouldEqual, 5)
	test.That(t, p.FS[1].Type, test.ShouldEqual, DS)
	test.That(t, p.FS[2].Type, test.ShouldEqual, DS)
	test.That(t, p.FS[3].Type, test.ShouldEqual, SSRight)
	test.That(t, p.FS[4].Type, test.ShouldEqual, SSLeft)

	// the first DS record's ZMP reference must lie on the previous
	// record's reference, since it is in the first half of the DS
	// synthesis window.
	test.That(t, p.FS[1].ZMPRef.X, test.ShouldAlmostEqual, p.FS[0].ZMPRef.X)
	test.That(t, p.FS[1].ZMPRef.Y, test.ShouldAlmostEqual, p.FS[0].ZMPRef.Y)
}

func TestGetNextPrevSS(t *testing.T) {
	p := NewPlan()
	p.AddFootstep(0.0, 0.05, 0.0, WithBox(footBox()), WithRepeat(3, 3))
	p.AddFootstep(0.0, -0.1, 0.0, WithRepeat(4, 4))
	p.AddFootstep(0.035, 0.1, 0.0, WithRepeat(8, 8))

	idx, err := p.GetNextSS(0, AUTO)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, idx, test.ShouldEqual, 1)

	idx, err = p.GetPrevSS(2, AUTO)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, idx, test.ShouldEqual, 1)

	_, err = p.GetNextSS(2, AUTO)
	test.That(t, err, test.ShouldEqual, ErrNoSingleSupport)
}

func TestSingleSupportPoses(t *testing.T) {
	p := NewPlan()
	p.AddFootstep(0.0, 0.05, 0.0, WithBox(footBox()), WithRepeat(3, 3))
	p.AddFootstep(0.0, -0.1, 0.0, WithRepeat(4, 4))
	p.AddFootstep(0.035, 0.1, 0.0, WithRepeat(8, 8))

	poses := p.SingleSupportPoses()
	test.That(t, len(poses), test.ShouldEqual, 2)
	for _, fs := range poses {
		test.That(t, fs.Type.IsSingleSupport(), test.ShouldBeTrue)
	}
}

func TestValidateCatchesInvalidBox(t *testing.T) {
	p := NewPlan()
	p.AddFootstep(0.0, 0.05, 0.0, WithBox(geometry.Box{PlusX: -1}), WithRepeat(3, 3))
	err := p.Validate()
	test.That(t, err, test.ShouldNotBeNil)
}

func TestValidateEmptyPlan(t *testing.T) {
	p := NewPlan()
	err := p.Validate()
	test.That(t, err, test.ShouldEqual, ErrNoFootsteps)
}
