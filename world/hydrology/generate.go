// Package hydrology traces rivers from peaks to the sea and detects inland
// lakes on top of a terrain height field. Generation runs exactly once per
// world session, is fully deterministic for a given seed, and produces an
// immutable Map that is queried lock-free at high frequency afterwards.
package hydrology

import (
	"log/slog"
	"math"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/farshore-game/farshore/internal/xrand"
	"github.com/go-gl/mathgl/mgl64"
)

// Terrain is the height-field surface hydrology is generated against. The
// implementation must be pure: hydrology may sample it from any stage in any
// order and expects identical answers.
type Terrain interface {
	Height(x, z float64) float64
	WaterLevel() float64
}

// stage tracks the progress of the one-shot generation pipeline.
type stage uint8

const (
	stageUninitialized stage = iota
	stagePeaksFound
	stageMainRiversTraced
	stageTributariesTraced
	stageLakesDetected
	stageReady
)

func (s stage) String() string {
	switch s {
	case stagePeaksFound:
		return "peaks found"
	case stageMainRiversTraced:
		return "main rivers traced"
	case stageTributariesTraced:
		return "tributaries traced"
	case stageLakesDetected:
		return "lakes detected"
	case stageReady:
		return "ready"
	}
	return "uninitialized"
}

type generator struct {
	t     Terrain
	conf  Config
	log   *slog.Logger
	rng   *xrand.Source
	water float64
	stage stage

	rivers []River
	lakes  []Lake
}

// Generate runs the full hydrology pipeline for the seed and returns the
// resulting Map. A degenerate configuration that yields no peaks or lakes is
// not an error: the warning is logged and the empty Map still answers every
// query.
func Generate(t Terrain, seed int32, conf Config, log *slog.Logger) *Map {
	if log == nil {
		log = slog.Default()
	}
	conf = conf.withDefaults()
	g := &generator{
		t:     t,
		conf:  conf,
		log:   log,
		rng:   xrand.New(hydrologySeed(seed)),
		water: t.WaterLevel(),
	}

	peaks := g.findPeaks()
	g.stage = stagePeaksFound
	if len(peaks) == 0 {
		log.Warn("hydrology found no peaks, world will have no rivers", "minPeakHeight", conf.MinPeakHeight)
	}

	g.traceMainRivers(peaks)
	g.stage = stageMainRiversTraced

	g.traceTributaries()
	g.stage = stageTributariesTraced

	g.detectLakes()
	g.stage = stageLakesDetected
	if len(g.lakes) == 0 {
		log.Debug("hydrology found no lakes")
	}

	g.stage = stageReady
	tributaries := 0
	for _, r := range g.rivers {
		if r.Tributary {
			tributaries++
		}
	}
	log.Info("hydrology ready",
		"rivers", len(g.rivers)-tributaries, "tributaries", tributaries, "lakes", len(g.lakes))

	return &Map{t: t, conf: conf, water: g.water, rivers: g.rivers, lakes: g.lakes}
}

// hydrologySeed derives the generation stream seed from the world seed. The
// derivation must stay stable: it is part of the cross-machine contract.
func hydrologySeed(seed int32) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString("hydrology")
	u := uint32(seed)
	_, _ = d.Write([]byte{byte(u), byte(u >> 8), byte(u >> 16), byte(u >> 24)})
	return d.Sum64()
}

// findPeaks grid-samples the search area and returns river source candidates:
// local maxima above the minimum peak height, accepted greedily from highest
// to lowest while keeping the minimum separation, capped at MaxRivers.
func (g *generator) findPeaks() []mgl64.Vec2 {
	c := &g.conf
	type peak struct {
		pos mgl64.Vec2
		h   float64
	}
	var candidates []peak
	for z := c.CenterZ - c.SearchRadius; z <= c.CenterZ+c.SearchRadius; z += c.PeakSpacing {
		for x := c.CenterX - c.SearchRadius; x <= c.CenterX+c.SearchRadius; x += c.PeakSpacing {
			h := g.t.Height(x, z)
			if h < c.MinPeakHeight {
				continue
			}
			if !g.isLocalMax(x, z, h) {
				continue
			}
			candidates = append(candidates, peak{pos: mgl64.Vec2{x, z}, h: h})
		}
	}
	// Highest first; ties broken by coordinates so the order, and with it
	// every downstream random draw, is identical on every machine.
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		if a.h != b.h {
			return a.h > b.h
		}
		if a.pos.X() != b.pos.X() {
			return a.pos.X() < b.pos.X()
		}
		return a.pos.Y() < b.pos.Y()
	})

	var accepted []mgl64.Vec2
	for _, cand := range candidates {
		if len(accepted) >= c.MaxRivers {
			break
		}
		ok := true
		for _, a := range accepted {
			if cand.pos.Sub(a).Len() < c.MinPeakSeparation {
				ok = false
				break
			}
		}
		if ok {
			accepted = append(accepted, cand.pos)
		}
	}
	return accepted
}

func (g *generator) isLocalMax(x, z, h float64) bool {
	d := g.conf.NeighbourDistance
	for dz := -1; dz <= 1; dz++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dz == 0 {
				continue
			}
			if g.t.Height(x+float64(dx)*d, z+float64(dz)*d) > h {
				return false
			}
		}
	}
	return true
}

func (g *generator) traceMainRivers(peaks []mgl64.Vec2) {
	for _, peak := range peaks {
		if r, ok := g.trace(peak, g.conf.StartWidth, g.conf.MaxWidth, -1); ok {
			g.rivers = append(g.rivers, r)
		}
	}
}

// trace walks downhill from start in fixed-size steps until the sea, the
// parent river (for tributaries) or the step budget. Paths that never reach a
// valid terminal, or that end up shorter than the minimum point count, are
// discarded.
func (g *generator) trace(start mgl64.Vec2, width, maxWidth float64, parent int) (River, bool) {
	c := &g.conf
	var b pathBuilder
	p := start
	terminal := false
	for step := 0; step < c.MaxSteps; step++ {
		h := g.t.Height(p.X(), p.Y())
		b.add(mgl64.Vec3{p.X(), h, p.Y()}, width)

		if h <= g.water {
			terminal = true
			break
		}
		if parent >= 0 {
			if _, d := g.rivers[parent].nearestPoint(p); d <= c.ConfluenceDistance {
				terminal = true
				break
			}
		}

		dir := g.downhill(p)
		// Seeded rotational noise keeps the channel from running perfectly
		// straight down the gradient.
		dir = rotate(dir, g.rng.Range(-c.MeanderStrength, c.MeanderStrength))
		if parent >= 0 {
			near, _ := g.rivers[parent].nearestPoint(p)
			pull := mgl64.Vec2{near.Pos.X(), near.Pos.Z()}.Sub(p)
			if pull.Len() > 0 {
				dir = dir.Mul(1 - c.TributaryPull).Add(pull.Normalize().Mul(c.TributaryPull))
				if dir.Len() > 0 {
					dir = dir.Normalize()
				}
			}
		}

		p = p.Add(dir.Mul(c.StepSize))
		width = math.Min(width+c.WidthGrowth*c.StepSize, maxWidth)
	}

	if !terminal || b.len() < c.MinRiverPoints {
		return River{}, false
	}
	margin := c.MaxWidth/2 + c.CarveFalloff
	return b.build(parent >= 0, parent, margin), true
}

// downhill returns the normalised negative terrain gradient at p, or a random
// unit direction on flats.
func (g *generator) downhill(p mgl64.Vec2) mgl64.Vec2 {
	e := g.conf.StepSize * 0.5
	gx := (g.t.Height(p.X()+e, p.Y()) - g.t.Height(p.X()-e, p.Y())) / (2 * e)
	gz := (g.t.Height(p.X(), p.Y()+e) - g.t.Height(p.X(), p.Y()-e)) / (2 * e)
	d := mgl64.Vec2{-gx, -gz}
	if d.Len() < 1e-9 {
		a := g.rng.Range(0, 2*math.Pi)
		return mgl64.Vec2{math.Cos(a), math.Sin(a)}
	}
	return d.Normalize()
}

func rotate(v mgl64.Vec2, angle float64) mgl64.Vec2 {
	sin, cos := math.Sincos(angle)
	return mgl64.Vec2{v.X()*cos - v.Y()*sin, v.X()*sin + v.Y()*cos}
}

// traceTributaries walks each main river, spawning secondary paths from
// higher ground that join the parent at a confluence instead of the sea.
func (g *generator) traceTributaries() {
	c := &g.conf
	mains := len(g.rivers)
	for ri := 0; ri < mains; ri++ {
		spawned := 0
		for pi := c.TributaryInterval; pi < len(g.rivers[ri].Points) && spawned < c.MaxTributariesPerRiver; pi += c.TributaryInterval {
			junction := g.rivers[ri].Points[pi]
			if junction.Pos.Y() < c.TributaryMinHeight {
				continue
			}
			if !g.rng.Chance(c.TributaryChance) {
				continue
			}
			source, ok := g.findTributarySource(junction)
			if !ok {
				continue
			}
			maxWidth := math.Min(c.MaxWidth, junction.Width*c.TributaryWidthScale)
			start := math.Min(c.StartWidth, maxWidth)
			if r, traced := g.trace(source, start, maxWidth, ri); traced {
				g.rivers = append(g.rivers, r)
				spawned++
			}
		}
	}
}

// findTributarySource searches outward from the junction in random directions
// for ground sufficiently above the junction.
func (g *generator) findTributarySource(junction RiverPoint) (mgl64.Vec2, bool) {
	c := &g.conf
	for i := 0; i < c.TributaryAttempts; i++ {
		a := g.rng.Range(0, 2*math.Pi)
		dist := g.rng.Range(0.4, 1) * c.TributarySearchRadius
		cand := mgl64.Vec2{
			junction.Pos.X() + math.Cos(a)*dist,
			junction.Pos.Z() + math.Sin(a)*dist,
		}
		if g.t.Height(cand.X(), cand.Y()) >= junction.Pos.Y()+c.TributaryMinRise {
			return cand, true
		}
	}
	return mgl64.Vec2{}, false
}

// detectLakes grid-samples below-water candidates, classifies inland
// depressions by rim height, and bounds each by a 4-directional flood fill on
// a coarse secondary grid.
func (g *generator) detectLakes() {
	c := &g.conf
	for z := c.CenterZ - c.SearchRadius; z <= c.CenterZ+c.SearchRadius; z += c.LakeSpacing {
		for x := c.CenterX - c.SearchRadius; x <= c.CenterX+c.SearchRadius; x += c.LakeSpacing {
			if len(g.lakes) >= c.MaxLakes {
				return
			}
			if g.t.Height(x, z) >= g.water {
				continue
			}
			if g.nearAcceptedLake(x, z) {
				continue
			}
			if !g.isInlandDepression(x, z) {
				continue
			}
			if lake, ok := g.floodFillLake(x, z); ok {
				g.lakes = append(g.lakes, lake)
			}
		}
	}
}

func (g *generator) nearAcceptedLake(x, z float64) bool {
	p := mgl64.Vec2{x, z}
	for _, l := range g.lakes {
		d := p.Sub(l.Center).Len()
		if d < l.Radius || d < 2*g.conf.MinLakeRadius {
			return true
		}
	}
	return false
}

// isInlandDepression samples 8 directions at the rim check radius; a point is
// an inland depression rather than ocean when enough of the rim sits above
// waterLevel+LakeRimHeight.
func (g *generator) isInlandDepression(x, z float64) bool {
	c := &g.conf
	above := 0
	for i := 0; i < 8; i++ {
		a := float64(i) * math.Pi / 4
		h := g.t.Height(x+math.Cos(a)*c.LakeRimRadius, z+math.Sin(a)*c.LakeRimRadius)
		if h > g.water+c.LakeRimHeight {
			above++
		}
	}
	return float64(above) >= c.LakeRimRatio*8
}

// floodFillLake expands 4-directionally from the seed cell over the coarse
// lake grid, collecting connected cells at or below water level, bounded by
// the cell cap.
func (g *generator) floodFillLake(x, z float64) (Lake, bool) {
	c := &g.conf
	type cell [2]int
	origin := mgl64.Vec2{x, z}
	visited := map[cell]bool{{0, 0}: true}
	frontier := []cell{{0, 0}}
	var flooded []mgl64.Vec2
	maxDepth := 0.0

	for len(frontier) > 0 && len(flooded) < c.LakeMaxCells {
		cur := frontier[0]
		frontier = frontier[1:]
		p := origin.Add(mgl64.Vec2{float64(cur[0]) * c.LakeCellSize, float64(cur[1]) * c.LakeCellSize})
		h := g.t.Height(p.X(), p.Y())
		if h > g.water {
			continue
		}
		flooded = append(flooded, p)
		if d := g.water - h; d > maxDepth {
			maxDepth = d
		}
		for _, n := range []cell{{cur[0] + 1, cur[1]}, {cur[0] - 1, cur[1]}, {cur[0], cur[1] + 1}, {cur[0], cur[1] - 1}} {
			if !visited[n] {
				visited[n] = true
				frontier = append(frontier, n)
			}
		}
	}
	if len(flooded) == 0 {
		return Lake{}, false
	}

	var centroid mgl64.Vec2
	for _, p := range flooded {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Mul(1 / float64(len(flooded)))
	radius := 0.0
	for _, p := range flooded {
		if d := p.Sub(centroid).Len(); d > radius {
			radius = d
		}
	}
	return Lake{Center: centroid, Radius: radius, MaxDepth: maxDepth}, true
}
