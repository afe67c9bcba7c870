package world

import (
	"fmt"
	"math"

	"github.com/farshore-game/farshore/world/decorate"
	"github.com/farshore-game/farshore/world/terrain"
	"github.com/go-gl/mathgl/mgl64"
)

// ChunkPos is the integer grid coordinate of a chunk. A coordinate maps to
// the same world-space square for the lifetime of a session.
type ChunkPos [2]int32

// X returns the x coordinate of the chunk position.
func (p ChunkPos) X() int32 { return p[0] }

// Z returns the z coordinate of the chunk position.
func (p ChunkPos) Z() int32 { return p[1] }

// String ...
func (p ChunkPos) String() string {
	return fmt.Sprintf("(%v, %v)", p[0], p[1])
}

// pack folds the position into a single int64 key for the deadline table.
func (p ChunkPos) pack() int64 {
	return int64(uint64(uint32(p[0]))<<32 | uint64(uint32(p[1])))
}

func unpackPos(v int64) ChunkPos {
	return ChunkPos{int32(uint64(v) >> 32), int32(uint32(uint64(v)))}
}

// posFromWorld returns the chunk position containing the world-space point.
func posFromWorld(pos mgl64.Vec3, chunkSize int) ChunkPos {
	s := float64(chunkSize)
	return ChunkPos{int32(math.Floor(pos.X() / s)), int32(math.Floor(pos.Z() / s))}
}

// chebyshev returns the Chebyshev (ring) distance between two positions.
func chebyshev(a, b ChunkPos) int32 {
	dx := a[0] - b[0]
	if dx < 0 {
		dx = -dx
	}
	dz := a[1] - b[1]
	if dz < 0 {
		dz = -dz
	}
	if dx > dz {
		return dx
	}
	return dz
}

// ChunkState is the lifecycle state of a chunk coordinate.
type ChunkState uint8

const (
	StateUnloaded ChunkState = iota
	StateQueued
	StateLoaded
	StatePendingUnload
)

// String ...
func (s ChunkState) String() string {
	switch s {
	case StateQueued:
		return "queued"
	case StateLoaded:
		return "loaded"
	case StatePendingUnload:
		return "pending unload"
	}
	return "unloaded"
}

// LOD is the discrete level-of-detail tier of a loaded chunk. Lower is more
// detailed.
type LOD uint8

const (
	LOD0 LOD = iota
	LOD1
	LOD2
)

// Chunk is a materialised terrain chunk: a heightmap grid of
// (chunkSize+1)² vertices, per-vertex biome weights and the deterministic
// decoration instances placed on it. Chunks are created and destroyed
// exclusively by the streaming manager.
type Chunk struct {
	pos  ChunkPos
	size int

	heights     []float64
	weights     []terrain.Weights
	decorations []decorate.Instance
	grassSeed   uint64

	state ChunkState
	lod   LOD
}

func newChunk(pos ChunkPos, size int) *Chunk {
	n := size + 1
	return &Chunk{
		pos:     pos,
		size:    size,
		heights: make([]float64, n*n),
		weights: make([]terrain.Weights, n*n),
	}
}

// Pos returns the chunk's grid coordinate.
func (c *Chunk) Pos() ChunkPos { return c.pos }

// State returns the chunk's lifecycle state.
func (c *Chunk) State() ChunkState { return c.state }

// LOD returns the chunk's current level-of-detail tier.
func (c *Chunk) LOD() LOD { return c.lod }

// Size returns the chunk edge length in metres.
func (c *Chunk) Size() int { return c.size }

// HeightAt returns the carved terrain height at grid vertex (ix, iz), both in
// [0, Size()].
func (c *Chunk) HeightAt(ix, iz int) float64 {
	return c.heights[iz*(c.size+1)+ix]
}

// WeightsAt returns the biome weights at grid vertex (ix, iz).
func (c *Chunk) WeightsAt(ix, iz int) terrain.Weights {
	return c.weights[iz*(c.size+1)+ix]
}

// Heights exposes the raw heightmap grid, row-major with stride Size()+1.
// Read-only: mesh and collision builders consume it directly.
func (c *Chunk) Heights() []float64 { return c.heights }

// Decorations returns the placed decoration instances. Read-only.
func (c *Chunk) Decorations() []decorate.Instance { return c.decorations }

// GrassSeed returns the deterministic seed the grass-instancing collaborator
// uses for this chunk's cover.
func (c *Chunk) GrassSeed() uint64 { return c.grassSeed }

// origin returns the world-space minimum corner of the chunk.
func (c *Chunk) origin() (x, z float64) {
	return float64(c.pos[0]) * float64(c.size), float64(c.pos[1]) * float64(c.size)
}
