package smpc

// State is one sample's CoM state block: position, velocity and
// acceleration for both planar axes, in that order. See spec.md §3
// "State vector and decision variable X".
type State [6]float64

// OrigToTilde converts an original-coordinate state into the "tilde"
// state the equality operator is block-bidiagonal in, by replacing each
// axis' position with position minus h times that axis' acceleration
// (the ZMP coordinate under the LIP model). See spec.md §3 and C5.
func OrigToTilde(s State, h float64) State {
	return State{
		s[0] - h*s[2], s[1], s[2],
		s[3] - h*s[5], s[4], s[5],
	}
}

// TildeToOrig is OrigToTilde's inverse: it adds h times the
// acceleration back onto each axis' (tilde) position.
func TildeToOrig(s State, h float64) State {
	return State{
		s[0] + h*s[2], s[1], s[2],
		s[3] + h*s[5], s[4], s[5],
	}
}
