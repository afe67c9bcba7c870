package decorate

import "github.com/farshore-game/farshore/internal/mathutil"

// DensityConfig holds the tunable parameters of the density queries. The
// zero value is usable; sensible defaults are applied by withDefaults.
type DensityConfig struct {
	// TreeBase, RockBase and GrassBase are the peak densities in fully
	// favourable ground.
	TreeBase  float64 `toml:"tree_base"`
	RockBase  float64 `toml:"rock_base"`
	GrassBase float64 `toml:"grass_base"`
	// MaxTreeSlope and MaxGrassSlope are the slopes, in radians, at which the
	// respective densities reach zero.
	MaxTreeSlope  float64 `toml:"max_tree_slope"`
	MaxGrassSlope float64 `toml:"max_grass_slope"`
	// WaterMargin is the elevation above water level required before any
	// decoration may appear.
	WaterMargin float64 `toml:"water_margin"`
	// SandCutoff and SnowCutoff exclude trees where the respective weight
	// dominates.
	SandCutoff float64 `toml:"sand_cutoff"`
	SnowCutoff float64 `toml:"snow_cutoff"`
}

func (c DensityConfig) withDefaults() DensityConfig {
	if c.TreeBase == 0 {
		c.TreeBase = 0.35
	}
	if c.RockBase == 0 {
		c.RockBase = 0.18
	}
	if c.GrassBase == 0 {
		c.GrassBase = 1
	}
	if c.MaxTreeSlope == 0 {
		c.MaxTreeSlope = 0.6
	}
	if c.MaxGrassSlope == 0 {
		c.MaxGrassSlope = 0.85
	}
	if c.WaterMargin == 0 {
		c.WaterMargin = 0.5
	}
	if c.SandCutoff == 0 {
		c.SandCutoff = 0.5
	}
	if c.SnowCutoff == 0 {
		c.SnowCutoff = 0.5
	}
	return c
}

// Densities answers the continuous decoration density queries consumed by
// placement and by the GPU grass-instancing collaborator.
type Densities struct {
	t    Terrain
	conf DensityConfig
}

// NewDensities builds the density query set over a terrain surface.
func NewDensities(t Terrain, conf DensityConfig) Densities {
	return Densities{t: t, conf: conf.withDefaults()}
}

// dry reports whether the point is clear of sea, rivers and lakes.
func (d Densities) dry(x, z float64) bool {
	if d.t.HeightWithRivers(x, z) <= d.t.WaterLevel()+d.conf.WaterMargin {
		return false
	}
	if d.t.InRiver(x, z) {
		return false
	}
	if in, _ := d.t.InLake(x, z); in {
		return false
	}
	return true
}

// Tree returns the tree acceptance probability at a point: grass-weighted,
// slope-penalised, zero in water, rivers, lakes and on sand- or
// snow-dominated ground.
func (d Densities) Tree(x, z float64) float64 {
	if !d.dry(x, z) {
		return 0
	}
	w := d.t.BiomeWeights(x, z)
	if w.Sand > d.conf.SandCutoff || w.Snow > d.conf.SnowCutoff {
		return 0
	}
	penalty := 1 - mathutil.InvLerp(0, d.conf.MaxTreeSlope, d.t.Slope(x, z))
	return d.conf.TreeBase * w.Grass * penalty
}

// Rock returns the rock acceptance probability at a point: rock-weighted and
// excluded from water. Rocks tolerate any slope.
func (d Densities) Rock(x, z float64) float64 {
	if !d.dry(x, z) {
		return 0
	}
	w := d.t.BiomeWeights(x, z)
	return d.conf.RockBase * w.Rock
}

// Grass returns the continuous grass cover density at a point, consumed by
// the GPU instancing collaborator.
func (d Densities) Grass(x, z float64) float64 {
	if !d.dry(x, z) {
		return 0
	}
	w := d.t.BiomeWeights(x, z)
	penalty := 1 - mathutil.InvLerp(0, d.conf.MaxGrassSlope, d.t.Slope(x, z))
	return d.conf.GrassBase * w.Grass * penalty
}
