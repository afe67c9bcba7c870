package hydrology

import (
	"math"

	"github.com/farshore-game/farshore/internal/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

// RiverPoint is a single sample of a traced river path.
type RiverPoint struct {
	// Pos is the world-space position of the channel centreline, including
	// the terrain height at trace time.
	Pos mgl64.Vec3
	// Width is the channel width in metres. Width never decreases from source
	// to outlet.
	Width float64
	// Flow is the normalised downstream direction in the xz plane.
	Flow mgl64.Vec2
}

// River is an immutable traced river path, ordered source to outlet. The
// terminal point sits at or below water level, or within confluence distance
// of the parent for tributaries.
type River struct {
	// Points is the ordered path. Read-only after generation.
	Points []RiverPoint
	// Length is the total arc length of the path in metres.
	Length float64
	// Tributary reports whether the river joins a parent river instead of the
	// sea. Parent is the index of that river, -1 for main rivers.
	Tributary bool
	Parent    int

	// Query bounds, inflated by the widest possible carve reach.
	minX, minZ, maxX, maxZ float64
}

// Source returns the first point of the path.
func (r *River) Source() RiverPoint { return r.Points[0] }

// Mouth returns the terminal point of the path.
func (r *River) Mouth() RiverPoint { return r.Points[len(r.Points)-1] }

// contains reports whether (x, z) is inside the inflated query bounds. Used
// to skip whole rivers during high-frequency carve queries.
func (r *River) contains(x, z float64) bool {
	return x >= r.minX && x <= r.maxX && z >= r.minZ && z <= r.maxZ
}

// nearest returns the smallest distance from p to the centreline polyline and
// the channel width interpolated at the closest location.
func (r *River) nearest(p mgl64.Vec2) (dist, width float64) {
	dist = math.MaxFloat64
	for i := 0; i+1 < len(r.Points); i++ {
		a := mgl64.Vec2{r.Points[i].Pos.X(), r.Points[i].Pos.Z()}
		b := mgl64.Vec2{r.Points[i+1].Pos.X(), r.Points[i+1].Pos.Z()}
		ab := b.Sub(a)
		t := 0.0
		if l2 := ab.Dot(ab); l2 > 0 {
			t = mathutil.Clamp(p.Sub(a).Dot(ab)/l2, 0, 1)
		}
		q := a.Add(ab.Mul(t))
		if d := p.Sub(q).Len(); d < dist {
			dist = d
			width = mathutil.Lerp(r.Points[i].Width, r.Points[i+1].Width, t)
		}
	}
	return dist, width
}

// nearestPoint returns the path point closest to p and its distance. Cheaper
// than nearest and sufficient for confluence checks during tracing.
func (r *River) nearestPoint(p mgl64.Vec2) (RiverPoint, float64) {
	best, bestDist := r.Points[0], math.MaxFloat64
	for _, pt := range r.Points {
		d := p.Sub(mgl64.Vec2{pt.Pos.X(), pt.Pos.Z()}).Len()
		if d < bestDist {
			best, bestDist = pt, d
		}
	}
	return best, bestDist
}

// pathBuilder accumulates trace samples and produces an immutable River in a
// single pass. Flow directions are derived from adjacent samples at build
// time; points are never mutated after Build.
type pathBuilder struct {
	positions []mgl64.Vec3
	widths    []float64
}

func (b *pathBuilder) add(pos mgl64.Vec3, width float64) {
	b.positions = append(b.positions, pos)
	b.widths = append(b.widths, width)
}

func (b *pathBuilder) len() int { return len(b.positions) }

// build assembles the River. margin inflates the query bounds and covers the
// carve falloff distance.
func (b *pathBuilder) build(tributary bool, parent int, margin float64) River {
	r := River{
		Points:    make([]RiverPoint, len(b.positions)),
		Tributary: tributary,
		Parent:    parent,
		minX:      math.MaxFloat64, minZ: math.MaxFloat64,
		maxX: -math.MaxFloat64, maxZ: -math.MaxFloat64,
	}
	for i, pos := range b.positions {
		flow := mgl64.Vec2{}
		switch {
		case i+1 < len(b.positions):
			flow = flowBetween(pos, b.positions[i+1])
		case i > 0:
			flow = flowBetween(b.positions[i-1], pos)
		}
		r.Points[i] = RiverPoint{Pos: pos, Width: b.widths[i], Flow: flow}

		r.minX = math.Min(r.minX, pos.X())
		r.maxX = math.Max(r.maxX, pos.X())
		r.minZ = math.Min(r.minZ, pos.Z())
		r.maxZ = math.Max(r.maxZ, pos.Z())
		if i > 0 {
			r.Length += pos.Sub(b.positions[i-1]).Len()
		}
	}
	r.minX -= margin
	r.maxX += margin
	r.minZ -= margin
	r.maxZ += margin
	return r
}

func flowBetween(from, to mgl64.Vec3) mgl64.Vec2 {
	d := mgl64.Vec2{to.X() - from.X(), to.Z() - from.Z()}
	if d.Len() == 0 {
		return mgl64.Vec2{}
	}
	return d.Normalize()
}
