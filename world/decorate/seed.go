package decorate

import (
	"github.com/farshore-game/farshore/internal/xrand"
	"github.com/segmentio/fasthash/fnv1a"
)

// Large primes spreading neighbouring chunk coordinates across the hash
// space. These are part of the cross-machine placement contract and must not
// change.
const (
	chunkPrimeX = 198491317
	chunkPrimeZ = 6542989
)

// ChunkSeed derives the decoration RNG seed for a chunk from the world seed
// and the chunk coordinate. Reloading a chunk reseeds an identical stream, so
// placement survives unload/reload cycles bit for bit.
func ChunkSeed(worldSeed int32, cx, cz int32) uint64 {
	h := fnv1a.Init64
	h = fnv1a.AddUint64(h, uint64(int64(cx)*chunkPrimeX))
	h = fnv1a.AddUint64(h, uint64(int64(cz)*chunkPrimeZ))
	h = fnv1a.AddUint64(h, uint64(uint32(worldSeed)))
	return h
}

// NewChunkRand returns the deterministic random source for a chunk's
// decoration placement.
func NewChunkRand(worldSeed int32, cx, cz int32) *xrand.Source {
	return xrand.New(ChunkSeed(worldSeed, cx, cz))
}
