package hydrology

import "github.com/go-gl/mathgl/mgl64"

// Lake is an inland depression flood-filled below water level and confirmed
// to be surrounded by higher terrain, distinguishing it from the ocean.
// Immutable after generation.
type Lake struct {
	// Center is the centroid of the flooded cells.
	Center mgl64.Vec2
	// Radius is the distance from the centroid to the farthest flooded cell.
	Radius float64
	// MaxDepth is the largest waterLevel-height observed over the region.
	MaxDepth float64
}
