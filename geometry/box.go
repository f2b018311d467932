package geometry

// Box describes a support-polygon (or ZMP box) constraint as four
// half-widths measured in the foot frame: PlusX/PlusY extend the box in
// the positive foot-frame x/y direction from its center, MinusX/MinusY in
// the negative direction. All four are non-negative (spec.md §3's
// footstep-record invariant).
type Box struct {
	PlusX, PlusY, MinusX, MinusY float64
}

// Valid reports whether the box's half-widths satisfy the non-negativity
// invariant required of every footstep record.
func (b Box) Valid() bool {
	return b.PlusX >= 0 && b.PlusY >= 0 && b.MinusX >= 0 && b.MinusY >= 0
}

// Bounds returns the foot-frame (lower, upper) bound pair for one axis:
// lo = -MinusX, hi = PlusX for the x-axis (axis==0), and the Y analog
// otherwise. This is the exact lb/ub construction of
// WMG.cpp::formPreviewWindow.
func (b Box) Bounds(axis int) (lo, hi float64) {
	if axis == 0 {
		return -b.MinusX, b.PlusX
	}
	return -b.MinusY, b.PlusY
}

// Center returns the box's foot-frame center offset, i.e. the reference
// ZMP placement used by AddFootstep: ((d+x - d-x)/2, 0).
func (b Box) Center() Point2D {
	return Point2D{X: (b.PlusX - b.MinusX) / 2, Y: 0}
}

// Vertices returns the box's four corners in world coordinates, given the
// world pose (position, rotation) of the foot frame it is attached to.
// Order: (+x,+y), (+x,-y), (-x,-y), (-x,+y) in the foot frame, matching
// the FS[i].vert[0..3] ordering implied by WMG.cpp::FS2file.
func (b Box) Vertices(pos Point2D, rot Rot2) [4]Point2D {
	corners := [4]Point2D{
		{X: b.PlusX, Y: b.PlusY},
		{X: b.PlusX, Y: -b.MinusY},
		{X: -b.MinusX, Y: -b.MinusY},
		{X: -b.MinusX, Y: b.PlusY},
	}
	var out [4]Point2D
	for i, c := range corners {
		out[i] = pos.Add(rot.Apply(c))
	}
	return out
}
