package main

import "math"

// Vec2 is a world-space point or direction.
type Vec2 struct {
	X, Y float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }
func (v Vec2) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y) }

// Mask is the narrow-phase collaborator consulted once broad-phase pruning
// has narrowed a query down to a handful of candidate bodies. Offset and
// direction are expressed in the body's own local frame (already rotated
// by -facing).
type Mask interface {
	// Collide returns the fraction along direction where the ray first
	// enters the mask, in [0,1], or a value >= 1 for a miss.
	Collide(offset, direction Vec2) float64
	// WithinRing reports whether the mask's silhouette intersects the
	// annulus [inner, outer] around offset, given the body's facing.
	WithinRing(offset Vec2, facing, inner, outer float64) bool
}

// Body is anything the CollisionIndex can index and test against.
type Body interface {
	Position() Vec2
	Radius() float64
	Facing() float64
	Gov() *Government
	Mask(step int) Mask
}

// ProjectileLike is the subset of a projectile's state the Line convenience
// overload needs: a segment origin and extent, plus the filters a Line
// query wants applied.
type ProjectileLike interface {
	Position() Vec2
	Velocity() Vec2
	Gov() *Government
	Target() Body
}
