package main

import "log"

// MaxVelocity bounds how far a single Line query segment may span before
// the integer DDA arithmetic in the traversal risks overflow. Segments
// longer than this are clamped to UsedMaxVelocity along their direction.
const (
	MaxVelocity     = 450000
	UsedMaxVelocity = MaxVelocity - 1
)

var warnedOverflow bool

// gridEntry is one (body, cell) footprint record. gx/gy are signed,
// UNWRAPPED cell coordinates: an entry living in wrapped bin (x&mask,
// y&mask) may have been produced by a body whose true cell is off the
// primary tile, and gx/gy let a query tell the two apart.
type gridEntry struct {
	body      Body
	dense     int
	gx, gy    int64
}

// CollisionIndex is a broad-phase spatial index over a toroidal uniform
// grid, rebuilt once per simulation tick via Clear/Add/Finalize and then
// queried read-only via Line/Circle/Ring/All until the next Clear.
//
// It is not safe for concurrent use: Line and Ring mutate per-query
// de-duplication state, and Ring/Circle return a buffer that is
// overwritten by the next such call on the same instance.
type CollisionIndex struct {
	shift    uint
	cellMask int64
	cellSize int64
	cells    int64
	wrapMask int64

	step int

	pending []gridEntry
	counts  []int
	sorted  []gridEntry
	all     []Body

	seen      []uint32
	seenEpoch uint32

	finalized bool

	ringBuf []Body
}

// NewCollisionIndex builds an index whose grid spans cellSize*cellCount
// world units per axis (wrapping toroidally beyond that), rounding each
// argument down to the nearest power of two.
func NewCollisionIndex(cellSize, cellCount uint) *CollisionIndex {
	shift := uint(0)
	for c := cellSize; c > 1; c >>= 1 {
		shift++
	}
	cells := uint(1)
	for c := cellCount; c > 1; c >>= 1 {
		cells <<= 1
	}
	idx := &CollisionIndex{
		shift:    shift,
		cellSize: 1 << shift,
		cells:    int64(cells),
	}
	idx.cellMask = idx.cellSize - 1
	idx.wrapMask = idx.cells - 1
	idx.Clear(0)
	return idx
}

// Clear resets all per-tick write state (pending entries, sort table,
// dense body list) and records the new simulation step. The seen-markers
// used by queries are NOT reset here — they are per-query state, not
// per-tick state, and persist across Clear until the next Finalize, which
// zeroes them and resets seenEpoch for the new population.
func (c *CollisionIndex) Clear(step int) {
	c.step = step
	c.pending = c.pending[:0]
	c.sorted = c.sorted[:0]
	c.all = c.all[:0]

	n := int(c.cells*c.cells) + 2
	if cap(c.counts) < n {
		c.counts = make([]int, n)
	} else {
		c.counts = c.counts[:n]
		for i := range c.counts {
			c.counts[i] = 0
		}
	}
	c.finalized = false
}

func (c *CollisionIndex) cellOf(world float64) int64 {
	return int64(world) >> c.shift
}

// Add records body's grid footprint. Must be called between Clear and
// Finalize; calling it afterward without an intervening Clear is a
// programming error.
func (c *CollisionIndex) Add(body Body) {
	if c.finalized {
		panic("collisionindex: Add called after Finalize without Clear")
	}
	pos := body.Position()
	r := body.Radius()
	minX := c.cellOf(pos.X - r)
	maxX := c.cellOf(pos.X + r)
	minY := c.cellOf(pos.Y - r)
	maxY := c.cellOf(pos.Y + r)

	dense := len(c.all)
	c.all = append(c.all, body)

	for y := minY; y <= maxY; y++ {
		row := (y & c.wrapMask) * c.cells
		for x := minX; x <= maxX; x++ {
			bin := row + (x & c.wrapMask) + 2
			c.counts[bin]++
			c.pending = append(c.pending, gridEntry{body: body, dense: dense, gx: x, gy: y})
		}
	}
}

// Finalize runs the counting sort that turns the pending entry list into
// a queryable per-cell bin table. After Finalize, Line/Circle/Ring/All may
// be called until the next Clear.
func (c *CollisionIndex) Finalize() {
	sum := 0
	for i := range c.counts {
		sum += c.counts[i]
		c.counts[i] = sum
	}

	if cap(c.sorted) < len(c.pending) {
		c.sorted = make([]gridEntry, len(c.pending))
	} else {
		c.sorted = c.sorted[:len(c.pending)]
	}
	for _, e := range c.pending {
		bin := (e.gy&c.wrapMask)*c.cells + (e.gx & c.wrapMask) + 1
		c.sorted[c.counts[bin]] = e
		c.counts[bin]++
	}

	if cap(c.seen) < len(c.all) {
		c.seen = make([]uint32, len(c.all))
	} else {
		c.seen = c.seen[:len(c.all)]
		for i := range c.seen {
			c.seen[i] = 0
		}
	}
	c.seenEpoch = 0
	c.finalized = true
}

func (c *CollisionIndex) bin(gx, gy int64) (start, end int) {
	b := (gy&c.wrapMask)*c.cells + (gx & c.wrapMask)
	return c.counts[b], c.counts[b+1]
}

// eligible implements the friend/foe predicate: entry.body == target, OR
// either government is nil, OR the two governments are enemies.
func eligible(entryGov, gov *Government, entryBody, target Body) bool {
	if target != nil && entryBody == target {
		return true
	}
	if entryGov == nil || gov == nil {
		return true
	}
	return entryGov.IsEnemy(gov) || gov.IsEnemy(entryGov)
}

// lineResult accumulates the closest Line hit across the whole traversal.
type lineResult struct {
	dist float64
	body Body
}

func (r *lineResult) tryNearer(body Body, dist float64) {
	if dist < r.dist {
		r.dist = dist
		r.body = body
	}
}

func (c *CollisionIndex) scanBinForLine(gx, gy int64, useSeen bool, gov *Government, target Body, from Vec2, direction Vec2, res *lineResult) {
	start, end := c.bin(gx, gy)
	for _, e := range c.sorted[start:end] {
		if e.gx != gx || e.gy != gy {
			continue
		}
		if useSeen {
			if c.seen[e.dense] == c.seenEpoch {
				continue
			}
			c.seen[e.dense] = c.seenEpoch
		}
		if !eligible(e.body.Gov(), gov, e.body, target) {
			continue
		}
		pos := e.body.Position()
		offset := rotateInto(from.Sub(pos), e.body.Facing())
		dir := rotateInto(direction, e.body.Facing())
		t := e.body.Mask(c.step).Collide(offset, dir)
		if t < 1 {
			res.tryNearer(e.body, t)
		}
	}
}

// Line casts a ray from `from` to `to`, returning the first eligible body
// it strikes. closestHit is both an input cap (the search ignores hits at
// fraction >= *closestHit) and an output (narrowed to the returned body's
// hit fraction; left unchanged when nil is returned).
func (c *CollisionIndex) Line(from, to Vec2, closestHit *float64, gov *Government, target Body) Body {
	if !c.finalized {
		panic("collisionindex: Line called before Finalize")
	}
	res := lineResult{dist: 1.0, body: nil}
	if closestHit != nil && *closestHit < res.dist {
		res.dist = *closestHit
	}

	direction := to.Sub(from)
	gx, gy := c.cellOf(from.X), c.cellOf(from.Y)
	endGx, endGy := c.cellOf(to.X), c.cellOf(to.Y)

	if gx == endGx && gy == endGy {
		c.scanBinForLine(gx, gy, false, gov, target, from, direction, &res)
		if res.body != nil && closestHit != nil {
			*closestHit = res.dist
		}
		return res.body
	}

	if direction.Length() > MaxVelocity {
		if !warnedOverflow {
			log.Printf("collisionindex: Line segment length %.0f exceeds MaxVelocity, clamping", direction.Length())
			warnedOverflow = true
		}
		unit := direction.Scale(1.0 / direction.Length())
		clamped := from.Add(unit.Scale(UsedMaxVelocity))
		return c.Line(from, clamped, closestHit, gov, target)
	}

	fx := int64(from.X)
	fy := int64(from.Y)
	tx := int64(to.X)
	ty := int64(to.Y)

	// stepX/stepY and mx/my come from the raw world coordinates, not the
	// grid-cell deltas: the DDA's divisibility guarantee relies on the
	// remainder arithmetic (rx/ry below) agreeing with the same x/y the
	// traversal steps through one grid cell at a time.
	stepX := int64(1)
	if fx > tx {
		stepX = -1
	}
	stepY := int64(1)
	if fy > ty {
		stepY = -1
	}

	mx := absI64(tx - fx)
	my := absI64(ty - fy)
	scaleMx := mx
	scaleMy := my
	if scaleMx == 0 {
		scaleMx = 1
	}
	if scaleMy == 0 {
		scaleMy = 1
	}
	scale := scaleMx * scaleMy
	fullScale := c.cellSize * scale

	rx := scale * (fx & c.cellMask)
	ry := scale * (fy & c.cellMask)
	if stepX > 0 {
		rx = fullScale - rx
	}
	if stepY > 0 {
		ry = fullScale - ry
	}

	c.seenEpoch++
	for {
		c.scanBinForLine(gx, gy, true, gov, target, from, direction, &res)
		if res.body != nil || (gx == endGx && gy == endGy) {
			break
		}

		diff := rx*my - ry*mx
		switch {
		case diff == 0:
			rx = fullScale
			ry = fullScale
			if gx == endGx && gy+stepY == endGy {
				goto done
			}
			if gy == endGy && gx+stepX == endGx {
				goto done
			}
			gx += stepX
			gy += stepY
		case diff < 0:
			ry -= my * (rx / mx)
			rx = fullScale
			gx += stepX
		default:
			rx -= mx * (ry / my)
			ry = fullScale
			gy += stepY
		}
	}
done:

	if res.body != nil && closestHit != nil {
		*closestHit = res.dist
	}
	return res.body
}

// LineProjectile is a convenience wrapper that builds the query segment
// from a projectile's position and velocity.
func (c *CollisionIndex) LineProjectile(p ProjectileLike, closestHit *float64) Body {
	from := p.Position()
	to := from.Add(p.Velocity())
	return c.Line(from, to, closestHit, p.Gov(), p.Target())
}

// Circle is Ring(center, 0, radius).
func (c *CollisionIndex) Circle(center Vec2, radius float64) []Body {
	return c.Ring(center, 0, radius)
}

// Ring returns every body whose silhouette overlaps the annulus
// [inner, outer] around center. The returned slice is reused by the next
// Ring/Circle call on this CollisionIndex — copy it if it must outlive
// that call.
func (c *CollisionIndex) Ring(center Vec2, inner, outer float64) []Body {
	if !c.finalized {
		panic("collisionindex: Ring called before Finalize")
	}
	minX := c.cellOf(center.X - outer)
	maxX := c.cellOf(center.X + outer)
	minY := c.cellOf(center.Y - outer)
	maxY := c.cellOf(center.Y + outer)

	c.seenEpoch++
	c.ringBuf = c.ringBuf[:0]

	for y := minY; y <= maxY; y++ {
		for x := minX; x <= maxX; x++ {
			start, end := c.bin(x, y)
			for _, e := range c.sorted[start:end] {
				if e.gx != x || e.gy != y {
					continue
				}
				if c.seen[e.dense] == c.seenEpoch {
					continue
				}
				c.seen[e.dense] = c.seenEpoch

				pos := e.body.Position()
				offset := center.Sub(pos)
				dist := offset.Length()
				local := rotateInto(offset, e.body.Facing())
				if (dist >= inner && dist <= outer) || e.body.Mask(c.step).WithinRing(local, e.body.Facing(), inner, outer) {
					c.ringBuf = append(c.ringBuf, e.body)
				}
			}
		}
	}
	return c.ringBuf
}

// All returns every body added since the last Clear, each listed once.
func (c *CollisionIndex) All() []Body {
	if !c.finalized {
		panic("collisionindex: All called before Finalize")
	}
	return c.all
}

func absI64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
