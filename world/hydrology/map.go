package hydrology

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// carveFloorDepth bounds river carving below sea level: carving never digs a
// pit deeper than this many metres under the water line, preventing
// degenerate channel geometry.
const carveFloorDepth = 2

// Map is the immutable result of hydrology generation. It is written once at
// world start and read-only afterwards, so all query methods are safe for
// concurrent use without locking.
type Map struct {
	t      Terrain
	conf   Config
	water  float64
	rivers []River
	lakes  []Lake
}

// Rivers returns the traced rivers, tributaries included. The returned slice
// is owned by the Map and must not be modified.
func (m *Map) Rivers() []River {
	if m == nil {
		return nil
	}
	return m.rivers
}

// Lakes returns the detected lakes. The returned slice is owned by the Map
// and must not be modified.
func (m *Map) Lakes() []Lake {
	if m == nil {
		return nil
	}
	return m.lakes
}

// CarveDepth returns the depth rivers subtract from the base terrain at
// (x, z): the full carve depth inside a channel, a falloff curve along the
// banks, zero elsewhere. Overlapping rivers do not stack; the deepest carve
// wins.
func (m *Map) CarveDepth(x, z float64) float64 {
	if m == nil {
		return 0
	}
	p := mgl64.Vec2{x, z}
	depth := 0.0
	for i := range m.rivers {
		r := &m.rivers[i]
		if !r.contains(x, z) {
			continue
		}
		d, w := r.nearest(p)
		half := w / 2
		switch {
		case d <= half:
			depth = math.Max(depth, m.conf.CarveDepth)
		case d <= half+m.conf.CarveFalloff:
			t := (d - half) / m.conf.CarveFalloff
			depth = math.Max(depth, m.conf.CarveDepth*math.Pow(1-t, m.conf.CarveFalloffExponent))
		}
	}
	return depth
}

// HeightWithRivers returns the terrain height after river carving, floored at
// waterLevel-2. The floor holds everywhere, carved or not: it is part of the
// cross-machine surface contract, so clients may rely on the carved surface
// never reporting below it.
func (m *Map) HeightWithRivers(x, z float64) float64 {
	if m == nil {
		return 0
	}
	return math.Max(m.t.Height(x, z)-m.CarveDepth(x, z), m.water-carveFloorDepth)
}

// InRiver reports whether (x, z) lies inside a river channel, within half the
// local width of a centreline.
func (m *Map) InRiver(x, z float64) bool {
	if m == nil {
		return false
	}
	p := mgl64.Vec2{x, z}
	for i := range m.rivers {
		r := &m.rivers[i]
		if !r.contains(x, z) {
			continue
		}
		if d, w := r.nearest(p); d <= w/2 {
			return true
		}
	}
	return false
}

// NearestRiver returns the closest river point to (x, z) across all rivers
// and the distance to it. ok is false when the world has no rivers.
func (m *Map) NearestRiver(x, z float64) (pt RiverPoint, dist float64, ok bool) {
	if m == nil || len(m.rivers) == 0 {
		return RiverPoint{}, 0, false
	}
	p := mgl64.Vec2{x, z}
	dist = math.MaxFloat64
	for i := range m.rivers {
		if cand, d := m.rivers[i].nearestPoint(p); d < dist {
			pt, dist = cand, d
		}
	}
	return pt, dist, true
}

// InLake reports whether (x, z) lies inside a lake region and, if so, the
// water depth at that point.
func (m *Map) InLake(x, z float64) (bool, float64) {
	if m == nil {
		return false, 0
	}
	p := mgl64.Vec2{x, z}
	for _, l := range m.lakes {
		if p.Sub(l.Center).Len() > l.Radius {
			continue
		}
		if h := m.t.Height(x, z); h < m.water {
			return true, m.water - h
		}
	}
	return false, 0
}

// BankBlend returns the riverbank ground-cover blend factor in [0, 1]: 1
// inside a channel, falling off with the carve curve along the banks. The
// biome weighting uses it to pull riverbanks toward sand.
func (m *Map) BankBlend(x, z float64) float64 {
	if m == nil || m.conf.CarveDepth == 0 {
		return 0
	}
	return m.CarveDepth(x, z) / m.conf.CarveDepth
}

// WaterLevel returns the sea surface elevation the map was generated with.
func (m *Map) WaterLevel() float64 {
	if m == nil {
		return 0
	}
	return m.water
}
