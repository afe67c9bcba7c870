package decorate

import (
	"math"

	"github.com/farshore-game/farshore/internal/xrand"
	"github.com/go-gl/mathgl/mgl64"
)

// Populator places one class of decoration across a chunk area. Populators
// must be pure: output depends only on the area, the terrain and the random
// source, never on prior calls.
type Populator interface {
	Populate(area Area, ground GroundResolver, r *xrand.Source) []Instance
}

// Trees scatters tree instances across a chunk.
type Trees struct {
	// Density is the acceptance probability at a point, normally
	// Densities.Tree.
	Density func(x, z float64) float64
	// Attempts is the sample budget per chunk; Cap the placement cap.
	Attempts, Cap int
	// MinScale and MaxScale bound the per-instance size jitter.
	MinScale, MaxScale float64
}

// Populate ...
func (t Trees) Populate(area Area, ground GroundResolver, r *xrand.Source) []Instance {
	return scatter(KindTree, area, ground, r, t.Density, t.Attempts, t.Cap, t.MinScale, t.MaxScale)
}

// Rocks scatters rock instances across a chunk.
type Rocks struct {
	Density            func(x, z float64) float64
	Attempts, Cap      int
	MinScale, MaxScale float64
}

// Populate ...
func (ro Rocks) Populate(area Area, ground GroundResolver, r *xrand.Source) []Instance {
	return scatter(KindRock, area, ground, r, ro.Density, ro.Attempts, ro.Cap, ro.MinScale, ro.MaxScale)
}

// scatter is the shared rejection-sampling loop: draw a local offset, accept
// with the density at that point, resolve ground contact, jitter rotation and
// scale. The draw order is fixed so the random stream, and with it the
// placement, is identical on every run.
func scatter(kind Kind, area Area, ground GroundResolver, r *xrand.Source,
	density func(x, z float64) float64, attempts, limit int, minScale, maxScale float64) []Instance {
	if minScale == 0 && maxScale == 0 {
		minScale, maxScale = 0.85, 1.25
	}
	var out []Instance
	for i := 0; i < attempts && len(out) < limit; i++ {
		x := area.OriginX + r.Float64()*area.Size
		z := area.OriginZ + r.Float64()*area.Size
		if !r.Chance(density(x, z)) {
			continue
		}
		y, ok := ground.GroundHeight(x, z)
		if !ok {
			continue
		}
		out = append(out, Instance{
			Kind:     kind,
			Pos:      mgl64.Vec3{x, y, z},
			Rotation: r.Range(0, 2*math.Pi),
			Scale:    r.Range(minScale, maxScale),
		})
	}
	return out
}
