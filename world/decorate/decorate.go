// Package decorate places decoration instances (trees, rocks) and answers
// decoration density queries for chunks. Placement is a pure function of the
// world seed and the chunk coordinate: regenerating a chunk, on any machine,
// reproduces the exact same instances.
package decorate

import (
	"github.com/farshore-game/farshore/world/terrain"
	"github.com/go-gl/mathgl/mgl64"
)

// Terrain is the query surface decoration gating runs against. It is
// implemented by the world; all methods must be pure and safe for concurrent
// use.
type Terrain interface {
	HeightWithRivers(x, z float64) float64
	BiomeWeights(x, z float64) terrain.Weights
	Slope(x, z float64) float64
	InRiver(x, z float64) bool
	InLake(x, z float64) (bool, float64)
	WaterLevel() float64
}

// GroundResolver resolves exact ground contact for a placement. The default
// resolver samples the carved height field; a physics collaborator may
// substitute a collision raycast.
type GroundResolver interface {
	// GroundHeight returns the ground elevation at (x, z) and whether a valid
	// contact exists there.
	GroundHeight(x, z float64) (float64, bool)
}

// Kind identifies what a placed instance is.
type Kind uint8

const (
	KindTree Kind = iota
	KindRock
)

// String ...
func (k Kind) String() string {
	switch k {
	case KindTree:
		return "tree"
	case KindRock:
		return "rock"
	}
	return "unknown"
}

// Instance is one placed decoration.
type Instance struct {
	Kind Kind
	// Pos is the world-space ground contact point.
	Pos mgl64.Vec3
	// Rotation is the yaw in radians; Scale the uniform size jitter.
	Rotation float64
	Scale    float64
}

// Area is the world-space square covered by one chunk.
type Area struct {
	OriginX, OriginZ float64
	Size             float64
}
