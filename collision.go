package main

import "math"

// CheckCollision checks if two circles overlap. Used by narrow gameplay
// systems (heal zones, pickups) that only ever test against a single known
// shape and have no need to go through the index.
func CheckCollision(x1, y1, r1, x2, y2, r2 float64) bool {
	dx := x2 - x1
	dy := y2 - y1
	dist2 := dx*dx + dy*dy
	radSum := r1 + r2
	return dist2 <= radSum*radSum
}

// TriangleHitbox defines 3 vertices relative to center at rotation=0.
type TriangleHitbox struct {
	X0, Y0 float64
	X1, Y1 float64
	X2, Y2 float64
}

// Star Destroyer triangle hitbox — rotation=0 faces RIGHT (+X).
// Vertices sized to match the 300-unit rendered sprite.
var SDTriangleHitbox = TriangleHitbox{
	X0: 140, Y0: 0,
	X1: -130, Y1: -130,
	X2: -130, Y2: 130,
}

func cross2D(ax, ay, bx, by, cx, cy float64) float64 {
	return (bx-ax)*(cy-ay) - (by-ay)*(cx-ax)
}

func pointInTriangle(px, py, ax, ay, bx, by, cx, cy float64) bool {
	d1 := cross2D(ax, ay, bx, by, px, py)
	d2 := cross2D(bx, by, cx, cy, px, py)
	d3 := cross2D(cx, cy, ax, ay, px, py)
	hasNeg := (d1 < 0) || (d2 < 0) || (d3 < 0)
	hasPos := (d1 > 0) || (d2 > 0) || (d3 > 0)
	return !(hasNeg && hasPos)
}

// segmentPointDist returns the distance from p to the closest point on
// segment a-b.
func segmentPointDist(px, py, ax, ay, bx, by float64) float64 {
	dx, dy := bx-ax, by-ay
	l2 := dx*dx + dy*dy
	if l2 == 0 {
		return math.Hypot(px-ax, py-ay)
	}
	t := ((px-ax)*dx + (py-ay)*dy) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(px-cx, py-cy)
}

// segmentIntersectFraction returns the fraction t in [0,1] along segment
// (ox,oy)+t*(dx,dy) where it crosses segment (ax,ay)-(bx,by), or a value
// >= 1 if there is no crossing within both segments' extents.
func segmentIntersectFraction(ox, oy, dx, dy, ax, ay, bx, by float64) float64 {
	ex, ey := bx-ax, by-ay
	denom := dx*ey - dy*ex
	if denom == 0 {
		return 2 // parallel, no single-point crossing
	}
	t := ((ax-ox)*ey - (ay-oy)*ex) / denom
	s := ((ax-ox)*dy - (ay-oy)*dx) / denom
	if t < 0 || t > 1 || s < 0 || s > 1 {
		return 2
	}
	return t
}

// CircleMask is a Mask backed by a single circle of the given radius,
// centered on the body's position. Frame carries the animation tick a
// body's Mask(step) call was built with; Collide and WithinRing never
// read it, it exists purely for callers that need a rendering cue (the
// heal-zone pulse, a thruster-flare frame) alongside the geometry.
type CircleMask struct {
	Radius float64
	Frame  int
}

// Collide solves |offset + t*direction|^2 == Radius^2 for the smallest
// t in [0,1].
func (m CircleMask) Collide(offset, direction Vec2) float64 {
	if offset.Length() <= m.Radius {
		return 0
	}
	a := direction.X*direction.X + direction.Y*direction.Y
	if a == 0 {
		return 1
	}
	b := 2 * (offset.X*direction.X + offset.Y*direction.Y)
	c := offset.X*offset.X + offset.Y*offset.Y - m.Radius*m.Radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return 1
	}
	sq := math.Sqrt(disc)
	t1 := (-b - sq) / (2 * a)
	t2 := (-b + sq) / (2 * a)
	if t1 >= 0 && t1 <= 1 {
		return t1
	}
	if t2 >= 0 && t2 <= 1 {
		return t2
	}
	return 1
}

// WithinRing reports whether the circle's boundary reaches into
// [inner, outer] measured from offset.
func (m CircleMask) WithinRing(offset Vec2, facing, inner, outer float64) bool {
	dist := offset.Length()
	lo := dist - m.Radius
	if lo < 0 {
		lo = 0
	}
	hi := dist + m.Radius
	return hi >= inner && lo <= outer
}

// TriangleMask is a Mask backed by a fixed triangle hitbox, in the body's
// unrotated local frame (the caller is responsible for rotating offset and
// direction into that frame before calling).
type TriangleMask struct {
	Hitbox TriangleHitbox
	Frame  int
}

func (m TriangleMask) vertices() (ax, ay, bx, by, cx, cy float64) {
	h := m.Hitbox
	return h.X0, h.Y0, h.X1, h.Y1, h.X2, h.Y2
}

// Collide returns the entry fraction of the ray offset+t*direction against
// the triangle's three edges, or 0 if offset already lies inside.
func (m TriangleMask) Collide(offset, direction Vec2) float64 {
	ax, ay, bx, by, cx, cy := m.vertices()
	if pointInTriangle(offset.X, offset.Y, ax, ay, bx, by, cx, cy) {
		return 0
	}
	best := 1.0
	hit := false
	for _, edge := range [3][4]float64{{ax, ay, bx, by}, {bx, by, cx, cy}, {cx, cy, ax, ay}} {
		t := segmentIntersectFraction(offset.X, offset.Y, direction.X, direction.Y, edge[0], edge[1], edge[2], edge[3])
		if t >= 0 && t <= 1 && (!hit || t < best) {
			best = t
			hit = true
		}
	}
	if !hit {
		return 1
	}
	return best
}

// WithinRing reports whether the triangle's silhouette intersects the
// annulus [inner, outer] centered on offset.
func (m TriangleMask) WithinRing(offset Vec2, facing, inner, outer float64) bool {
	ax, ay, bx, by, cx, cy := m.vertices()
	minDist := math.MaxFloat64
	if pointInTriangle(offset.X, offset.Y, ax, ay, bx, by, cx, cy) {
		minDist = 0
	} else {
		for _, edge := range [3][4]float64{{ax, ay, bx, by}, {bx, by, cx, cy}, {cx, cy, ax, ay}} {
			d := segmentPointDist(offset.X, offset.Y, edge[0], edge[1], edge[2], edge[3])
			if d < minDist {
				minDist = d
			}
		}
	}
	maxDist := 0.0
	for _, v := range [3][2]float64{{ax, ay}, {bx, by}, {cx, cy}} {
		d := math.Hypot(offset.X-v[0], offset.Y-v[1])
		if d > maxDist {
			maxDist = d
		}
	}
	return maxDist >= inner && minDist <= outer
}

// CheckMobCollision checks collision between a mob and a circle, using the
// triangle hitbox for raider-class ships.
func CheckMobCollision(mob *Mob, cx, cy, cr float64) bool {
	if mob.ShipType == MobShipType {
		tri := TriangleMask{Hitbox: SDTriangleHitbox}
		offset := Vec2{cx - mob.X, cy - mob.Y}
		local := rotateInto(offset, mob.Rotation)
		if tri.Collide(local, Vec2{}) == 0 {
			return true
		}
		return cr > 0 && segmentPointDist(0, 0, local.X, local.Y, local.X, local.Y) <= cr
	}
	return CheckCollision(mob.X, mob.Y, MobRadius, cx, cy, cr)
}

// rotateInto rotates v by -angle, converting a world-space offset into a
// body's local, unrotated frame.
func rotateInto(v Vec2, angle float64) Vec2 {
	cosR := math.Cos(-angle)
	sinR := math.Sin(-angle)
	return Vec2{v.X*cosR - v.Y*sinR, v.X*sinR + v.Y*cosR}
}
