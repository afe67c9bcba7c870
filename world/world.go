package world

import (
	"log/slog"
	"sync"
	"time"

	"github.com/farshore-game/farshore/world/decorate"
	"github.com/farshore-game/farshore/world/hydrology"
	"github.com/farshore-game/farshore/world/terrain"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

// World is a deterministic procedural island: a pure terrain sampler, the
// hydrology traced over it at start-up and the streaming manager that
// materialises chunks around a moving viewpoint.
//
// The sampling queries (Height, BiomeWeights, Normal, ...) are pure and safe
// for concurrent use. Chunk state is owned by the tick goroutine; the chunk
// queries take the world lock.
type World struct {
	conf Config
	log  *slog.Logger
	id   uuid.UUID

	sampler   *terrain.Sampler
	hydro     *hydrology.Map
	densities decorate.Densities
	metrics   *Metrics

	// mu guards the loader, viewers and tick counter. Held for the duration
	// of a tick.
	mu      sync.Mutex
	loader  *loader
	viewers []Viewer
	tick    int64

	closed chan struct{}
	once   sync.Once
}

// ID returns the world's stable identity, derived from the seed.
func (w *World) ID() uuid.UUID { return w.id }

// Seed returns the 32-bit world seed.
func (w *World) Seed() int32 { return w.conf.Seed }

// WaterLevel returns the sea surface elevation.
func (w *World) WaterLevel() float64 { return w.sampler.WaterLevel() }

// Height returns the base terrain height at (x, z), before river carving.
func (w *World) Height(x, z float64) float64 { return w.sampler.Height(x, z) }

// HeightWithRivers returns the terrain height at (x, z) after river carving.
// This is the surface chunks are built from and decorations settle on.
func (w *World) HeightWithRivers(x, z float64) float64 { return w.hydro.HeightWithRivers(x, z) }

// Normal returns the upward surface normal of the base terrain at (x, z).
func (w *World) Normal(x, z float64) mgl64.Vec3 { return w.sampler.Normal(x, z) }

// Slope returns the surface steepness at (x, z) in radians.
func (w *World) Slope(x, z float64) float64 { return w.sampler.Slope(x, z) }

// BiomeWeights returns the normalised ground-cover weights at (x, z).
// Riverbanks blend toward sand on top of the sampler's weighting, following
// the carve falloff.
func (w *World) BiomeWeights(x, z float64) terrain.Weights {
	weights := w.sampler.BiomeWeights(x, z)
	if b := w.hydro.BankBlend(x, z); b > 0 {
		weights = weights.Lerp(terrain.Weights{Sand: 1}, b).Normalized()
	}
	return weights
}

// Rivers returns the rivers traced at world start, tributaries included. The
// returned slice is read-only.
func (w *World) Rivers() []hydrology.River { return w.hydro.Rivers() }

// Lakes returns the lakes detected at world start. The returned slice is
// read-only.
func (w *World) Lakes() []hydrology.Lake { return w.hydro.Lakes() }

// InRiver reports whether (x, z) lies inside a river channel.
func (w *World) InRiver(x, z float64) bool { return w.hydro.InRiver(x, z) }

// RiverCarveDepth returns the depth rivers carve out of the base terrain at
// (x, z), zero away from any channel.
func (w *World) RiverCarveDepth(x, z float64) float64 { return w.hydro.CarveDepth(x, z) }

// InLake reports whether (x, z) lies inside a lake and, if so, the water
// depth there.
func (w *World) InLake(x, z float64) (bool, float64) { return w.hydro.InLake(x, z) }

// NearestRiver returns the closest river point to (x, z) and the distance to
// it. ok is false when the world has no rivers.
func (w *World) NearestRiver(x, z float64) (hydrology.RiverPoint, float64, bool) {
	return w.hydro.NearestRiver(x, z)
}

// TreeDensity returns the tree acceptance probability at (x, z).
func (w *World) TreeDensity(x, z float64) float64 { return w.densities.Tree(x, z) }

// RockDensity returns the rock acceptance probability at (x, z).
func (w *World) RockDensity(x, z float64) float64 { return w.densities.Rock(x, z) }

// GrassDensity returns the continuous grass cover density at (x, z), consumed
// by the GPU grass-instancing collaborator.
func (w *World) GrassDensity(x, z float64) float64 { return w.densities.Grass(x, z) }

// AddViewer registers a viewer for chunk lifecycle callbacks. Viewers added
// after chunks have loaded receive ViewChunkLoaded for every chunk already
// resident.
func (w *World) AddViewer(v Viewer) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.viewers = append(w.viewers, v)
	for _, c := range w.loader.sortedLoaded() {
		v.ViewChunkLoaded(c)
	}
}

// Chunk returns the loaded chunk at pos, if resident. Chunks pending unload
// are still resident and returned.
func (w *World) Chunk(pos ChunkPos) (*Chunk, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	c, ok := w.loader.loaded[pos]
	return c, ok
}

// ChunkState returns the lifecycle state of the chunk coordinate pos.
func (w *World) ChunkState(pos ChunkPos) ChunkState {
	w.mu.Lock()
	defer w.mu.Unlock()
	if c, ok := w.loader.loaded[pos]; ok {
		return c.state
	}
	if _, ok := w.loader.queued[pos]; ok {
		return StateQueued
	}
	return StateUnloaded
}

// LoadedCount returns the number of resident chunks.
func (w *World) LoadedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.loader.loaded)
}

// QueuedCount returns the current load queue length.
func (w *World) QueuedCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.loader.queue)
}

// Metrics returns a snapshot of the streaming counters.
func (w *World) Metrics() MetricsSnapshot { return w.metrics.Snapshot() }

// SetViewDistance changes the streamed ring radius at runtime. No reset is
// needed: the ring is reconciled on the next tick, queueing newly covered
// chunks when widening and starting unload timers for chunks left outside
// when narrowing.
func (w *World) SetViewDistance(chunks int) {
	if chunks <= 0 {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if chunks == w.loader.conf.ViewDistance {
		return
	}
	w.loader.conf.ViewDistance = chunks
	w.loader.dirty = true
	w.log.Debug("view distance changed", "chunks", chunks)
}

// Tick advances the streaming manager by dt with the viewpoint at view:
// reconciles the view ring, materialises up to the load budget of queued
// chunks, expires unload timers and reassigns LOD tiers.
func (w *World) Tick(view mgl64.Vec3, dt time.Duration) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.tick++
	w.loader.tick(view, dt)
}

// CurrentTick returns the number of ticks the world has advanced.
func (w *World) CurrentTick() int64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.tick
}

// Close releases the world: it stops the generator pool if one runs and
// closes the provider. A closed world must not be ticked again.
func (w *World) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closed)
		w.mu.Lock()
		if w.loader.pool != nil {
			w.loader.cancelInflight()
			w.loader.pool.close()
		}
		w.mu.Unlock()
		err = w.conf.Provider.Close()
		w.log.Debug("world closed", "id", w.id)
	})
	return err
}

// populateChunk runs decoration placement for a materialised chunk. The
// heightmap must be complete before this is called: placements resolve their
// ground contact against the finished surface.
func (w *World) populateChunk(c *Chunk) {
	r := decorate.NewChunkRand(w.conf.Seed, c.pos.X(), c.pos.Z())
	// The grass collaborator's seed is the first draw of the chunk stream.
	c.grassSeed = r.Uint64()

	ox, oz := c.origin()
	area := decorate.Area{OriginX: ox, OriginZ: oz, Size: float64(c.size)}
	populators := []decorate.Populator{
		decorate.Trees{
			Density:  w.densities.Tree,
			Attempts: w.conf.Stream.TreeAttempts,
			Cap:      w.conf.Stream.MaxTrees,
		},
		decorate.Rocks{
			Density:  w.densities.Rock,
			Attempts: w.conf.Stream.RockAttempts,
			Cap:      w.conf.Stream.MaxRocks,
			MinScale: 0.6, MaxScale: 1.9,
		},
	}
	for _, p := range populators {
		c.decorations = append(c.decorations, p.Populate(area, w.conf.Ground, r)...)
	}
}
