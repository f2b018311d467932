// Package geometry implements the small set of 2-D primitives the walking
// pattern generator needs: planar points, rotations, and the rotated
// support-polygon boxes that describe a footstep's ZMP constraint region.
package geometry

import "math"

// Point2D is a point (or vector) in the horizontal plane.
type Point2D struct {
	X, Y float64
}

// Add returns p+q.
func (p Point2D) Add(q Point2D) Point2D {
	return Point2D{p.X + q.X, p.Y + q.Y}
}

// Sub returns p-q.
func (p Point2D) Sub(q Point2D) Point2D {
	return Point2D{p.X - q.X, p.Y - q.Y}
}

// Scale returns p scaled by s.
func (p Point2D) Scale(s float64) Point2D {
	return Point2D{p.X * s, p.Y * s}
}

// Norm returns the Euclidean length of p.
func (p Point2D) Norm() float64 {
	return math.Hypot(p.X, p.Y)
}

// Lerp returns the point a fraction theta of the way from p to q.
func Lerp(p, q Point2D, theta float64) Point2D {
	return Point2D{
		X: (1-theta)*p.X + theta*q.X,
		Y: (1-theta)*p.Y + theta*q.Y,
	}
}

// Rot2 is a cached 2-D rotation, holding cos/sin of its angle so that
// repeated rotations of many points don't repeatedly call math.Cos/Sin.
type Rot2 struct {
	Cos, Sin float64
}

// NewRot2 builds a Rot2 from an angle in radians.
func NewRot2(angle float64) Rot2 {
	return Rot2{Cos: math.Cos(angle), Sin: math.Sin(angle)}
}

// Apply rotates p by the angle this Rot2 was built from.
func (r Rot2) Apply(p Point2D) Point2D {
	return Point2D{
		X: p.X*r.Cos - p.Y*r.Sin,
		Y: p.X*r.Sin + p.Y*r.Cos,
	}
}

// ApplyInverse rotates p by the negation of this Rot2's angle, i.e. maps a
// world-frame vector into this frame.
func (r Rot2) ApplyInverse(p Point2D) Point2D {
	return Point2D{
		X: p.X*r.Cos + p.Y*r.Sin,
		Y: -p.X*r.Sin + p.Y*r.Cos,
	}
}
