package terrain

import (
	"fmt"
	"math"
	"os"

	"github.com/pelletier/go-toml"
)

// Config is the frozen biome configuration driving all terrain sampling. It
// is loaded once at startup and treated as read-only for the lifetime of the
// process: identical Config plus identical seed produces bit-identical
// terrain on every machine.
//
// Several fields are named versions of constants that were historically
// inlined; their defaults must not change if compatibility with existing
// world seeds is desired.
type Config struct {
	// WaterLevel is the sea surface elevation in metres. Terrain at or below
	// it is under water.
	WaterLevel float64 `toml:"water_level"`
	// HeightOffset raises the mean elevation of the whole field.
	HeightOffset float64 `toml:"height_offset"`

	// HillAmplitude and HillFrequency shape the large rolling-hill layer.
	HillAmplitude float64 `toml:"hill_amplitude"`
	HillFrequency float64 `toml:"hill_frequency"`
	// DetailAmplitude and DetailFrequency shape the small surface detail
	// layer added on top of the hills.
	DetailAmplitude float64 `toml:"detail_amplitude"`
	DetailFrequency float64 `toml:"detail_frequency"`

	// MountainAmplitude is the extra elevation granted where the mountain
	// mask is fully active.
	MountainAmplitude float64 `toml:"mountain_amplitude"`
	// MountainMaskFrequency is the frequency of the low-frequency field that
	// is thresholded into the mountain mask.
	MountainMaskFrequency float64 `toml:"mountain_mask_frequency"`
	// MountainMaskThreshold and MountainMaskBlend bound the smoothstep that
	// turns the mask field into a [0,1] mask; MountainMaskExponent sharpens
	// the result so mountains stay rare and steep-sided.
	MountainMaskThreshold float64 `toml:"mountain_mask_threshold"`
	MountainMaskBlend     float64 `toml:"mountain_mask_blend"`
	MountainMaskExponent  float64 `toml:"mountain_mask_exponent"`
	// WarpAmplitude and WarpFrequency domain-warp the mask field so mountain
	// ranges are not axis-aligned blobs.
	WarpAmplitude float64 `toml:"warp_amplitude"`
	WarpFrequency float64 `toml:"warp_frequency"`
	// RidgeAmplitude and RidgeFrequency shape the 1-|noise| ridge layer added
	// where the mountain mask is active.
	RidgeAmplitude float64 `toml:"ridge_amplitude"`
	RidgeFrequency float64 `toml:"ridge_frequency"`

	// CenterX and CenterZ locate the island centre in world space.
	CenterX float64 `toml:"center_x"`
	CenterZ float64 `toml:"center_z"`
	// IslandFalloffStart and IslandFalloffEnd bound the radial band over
	// which the terrain sinks toward WaterLevel-IslandDepth, bounding the
	// world to a finite island.
	IslandFalloffStart float64 `toml:"island_falloff_start"`
	IslandFalloffEnd   float64 `toml:"island_falloff_end"`
	IslandDepth        float64 `toml:"island_depth"`
	// CoastNoiseAmplitude and CoastNoiseFrequency perturb the radial distance
	// used by the falloff so the coastline is not a circle.
	CoastNoiseAmplitude float64 `toml:"coast_noise_amplitude"`
	CoastNoiseFrequency float64 `toml:"coast_noise_frequency"`

	// BeachFlattenMin and BeachFlattenMax bound the elevation band that is
	// remapped through a smooth curve so shorelines are not noise-jagged.
	BeachFlattenMin float64 `toml:"beach_flatten_min"`
	BeachFlattenMax float64 `toml:"beach_flatten_max"`

	// DesertEnd, GrassStart, GrassEnd and SnowStart divide the z axis into
	// latitude bands: desert below DesertEnd, grass between GrassStart and
	// GrassEnd, snow above SnowStart, with smooth transitions between.
	DesertEnd  float64 `toml:"desert_end"`
	GrassStart float64 `toml:"grass_start"`
	GrassEnd   float64 `toml:"grass_end"`
	SnowStart  float64 `toml:"snow_start"`
	// BandNoiseAmplitude and BandNoiseFrequency perturb the latitude before
	// band lookup so biome boundaries are irregular.
	BandNoiseAmplitude float64 `toml:"band_noise_amplitude"`
	BandNoiseFrequency float64 `toml:"band_noise_frequency"`

	// BeachHeight is the elevation above WaterLevel below which ground cover
	// collapses entirely to sand. BeachBlend is the width of the transition
	// above it.
	BeachHeight float64 `toml:"beach_height"`
	BeachBlend  float64 `toml:"beach_blend"`
	// SnowAltitude is the elevation at which ground cover starts blending
	// toward snow regardless of latitude; the blend completes SnowAltitudeBlend
	// metres higher.
	SnowAltitude      float64 `toml:"snow_altitude"`
	SnowAltitudeBlend float64 `toml:"snow_altitude_blend"`
	// RockAltitude and RockAltitudeBlend control the elevation push from
	// sand/grass toward rock inside the desert and grass bands.
	RockAltitude      float64 `toml:"rock_altitude"`
	RockAltitudeBlend float64 `toml:"rock_altitude_blend"`
	// SlopeRockStart and SlopeRockEnd bound the slope (radians) over which
	// steep ground blends toward rock; SlopeRockFactor caps that blend.
	// The 0.7 default matches the historically inlined constant.
	SlopeRockStart  float64 `toml:"slope_rock_start"`
	SlopeRockEnd    float64 `toml:"slope_rock_end"`
	SlopeRockFactor float64 `toml:"slope_rock_factor"`

	// SampleOffset is the half-distance used by the central differences in
	// Normal and Slope.
	SampleOffset float64 `toml:"sample_offset"`
}

// DefaultConfig returns the configuration all fields default to when left
// zero.
func DefaultConfig() Config {
	return Config{
		WaterLevel:   0,
		HeightOffset: 6,

		HillAmplitude:   11,
		HillFrequency:   1.0 / 220,
		DetailAmplitude: 1.6,
		DetailFrequency: 1.0 / 27,

		MountainAmplitude:     58,
		MountainMaskFrequency: 1.0 / 900,
		MountainMaskThreshold: 0.55,
		MountainMaskBlend:     0.22,
		MountainMaskExponent:  2.2,
		WarpAmplitude:         130,
		WarpFrequency:         1.0 / 400,
		RidgeAmplitude:        26,
		RidgeFrequency:        1.0 / 140,

		CenterX:             0,
		CenterZ:             0,
		IslandFalloffStart:  1500,
		IslandFalloffEnd:    1900,
		IslandDepth:         9,
		CoastNoiseAmplitude: 160,
		CoastNoiseFrequency: 1.0 / 600,

		BeachFlattenMin: -2,
		BeachFlattenMax: 5,

		DesertEnd:          -750,
		GrassStart:         -420,
		GrassEnd:           520,
		SnowStart:          880,
		BandNoiseAmplitude: 90,
		BandNoiseFrequency: 1.0 / 350,

		BeachHeight:       1.2,
		BeachBlend:        1.8,
		SnowAltitude:      52,
		SnowAltitudeBlend: 14,
		RockAltitude:      24,
		RockAltitudeBlend: 20,
		SlopeRockStart:    0.45,
		SlopeRockEnd:      1.0,
		SlopeRockFactor:   0.7,

		SampleOffset: 0.5,
	}
}

// LoadConfig reads a Config from the TOML file at path. Fields left out of
// the file take their defaults when the sampler is built.
func LoadConfig(path string) (Config, error) {
	var c Config
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("terrain: read config: %w", err)
	}
	if err := toml.Unmarshal(data, &c); err != nil {
		return c, fmt.Errorf("terrain: decode config: %w", err)
	}
	return c, nil
}

// withDefaults fills zero fields with their defaults. Explicit zeroes that
// are meaningful (WaterLevel, CenterX/Z, HeightOffset) are kept as-is by
// comparing against the zero Config only for fields where zero is not a
// sensible value.
func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.HillAmplitude == 0 && c.HillFrequency == 0 && c.MountainAmplitude == 0 {
		// Entirely unconfigured terrain shape: take the full default set but
		// keep caller-supplied placement fields.
		placed := c
		c = def
		c.WaterLevel = placed.WaterLevel
		c.CenterX, c.CenterZ = placed.CenterX, placed.CenterZ
		if placed.IslandFalloffEnd != 0 {
			c.IslandFalloffStart, c.IslandFalloffEnd = placed.IslandFalloffStart, placed.IslandFalloffEnd
		}
		return c
	}
	if c.HillFrequency == 0 {
		c.HillFrequency = def.HillFrequency
	}
	if c.DetailFrequency == 0 {
		c.DetailFrequency = def.DetailFrequency
	}
	if c.MountainMaskFrequency == 0 {
		c.MountainMaskFrequency = def.MountainMaskFrequency
	}
	if c.MountainMaskBlend == 0 {
		c.MountainMaskBlend = def.MountainMaskBlend
	}
	if c.MountainMaskExponent == 0 {
		c.MountainMaskExponent = def.MountainMaskExponent
	}
	if c.WarpFrequency == 0 {
		c.WarpFrequency = def.WarpFrequency
	}
	if c.RidgeFrequency == 0 {
		c.RidgeFrequency = def.RidgeFrequency
	}
	if c.CoastNoiseFrequency == 0 {
		c.CoastNoiseFrequency = def.CoastNoiseFrequency
	}
	if c.BandNoiseFrequency == 0 {
		c.BandNoiseFrequency = def.BandNoiseFrequency
	}
	if c.BeachFlattenMin == 0 && c.BeachFlattenMax == 0 {
		c.BeachFlattenMin, c.BeachFlattenMax = def.BeachFlattenMin, def.BeachFlattenMax
	}
	if c.BeachHeight == 0 {
		c.BeachHeight = def.BeachHeight
	}
	if c.BeachBlend == 0 {
		c.BeachBlend = def.BeachBlend
	}
	if c.SnowAltitude == 0 {
		c.SnowAltitude = def.SnowAltitude
	}
	if c.SnowAltitudeBlend == 0 {
		c.SnowAltitudeBlend = def.SnowAltitudeBlend
	}
	if c.RockAltitude == 0 {
		c.RockAltitude = def.RockAltitude
	}
	if c.RockAltitudeBlend == 0 {
		c.RockAltitudeBlend = def.RockAltitudeBlend
	}
	if c.SlopeRockStart == 0 {
		c.SlopeRockStart = def.SlopeRockStart
	}
	if c.SlopeRockEnd == 0 {
		c.SlopeRockEnd = def.SlopeRockEnd
	}
	if c.SlopeRockFactor == 0 {
		c.SlopeRockFactor = def.SlopeRockFactor
	}
	if c.SampleOffset == 0 {
		c.SampleOffset = def.SampleOffset
	}
	if c.IslandFalloffEnd == 0 {
		c.IslandFalloffStart, c.IslandFalloffEnd = def.IslandFalloffStart, def.IslandFalloffEnd
	}
	if c.IslandDepth == 0 {
		c.IslandDepth = def.IslandDepth
	}
	if c.DesertEnd == 0 && c.GrassStart == 0 && c.GrassEnd == 0 && c.SnowStart == 0 {
		c.DesertEnd, c.GrassStart = def.DesertEnd, def.GrassStart
		c.GrassEnd, c.SnowStart = def.GrassEnd, def.SnowStart
	}
	return c
}

// Validate reports configurations that cannot produce a well-formed world.
// This is the only fatal error path of the sampler: a world must refuse to
// initialise rather than sample from inverted bands.
func (c Config) Validate() error {
	if !(c.IslandFalloffStart < c.IslandFalloffEnd) {
		return fmt.Errorf("terrain: island falloff band inverted: start %v, end %v", c.IslandFalloffStart, c.IslandFalloffEnd)
	}
	if !(c.DesertEnd <= c.GrassStart && c.GrassStart <= c.GrassEnd && c.GrassEnd <= c.SnowStart) {
		return fmt.Errorf("terrain: latitude bands out of order: %v, %v, %v, %v", c.DesertEnd, c.GrassStart, c.GrassEnd, c.SnowStart)
	}
	if !(c.BeachFlattenMin < c.BeachFlattenMax) {
		return fmt.Errorf("terrain: beach flatten band inverted: min %v, max %v", c.BeachFlattenMin, c.BeachFlattenMax)
	}
	for _, f := range []float64{c.HillFrequency, c.DetailFrequency, c.MountainMaskFrequency, c.RidgeFrequency} {
		if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("terrain: non-positive noise frequency %v", f)
		}
	}
	return nil
}
