package terrain

import (
	"log/slog"
	"math"
	"sync"

	"github.com/farshore-game/farshore/internal/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

// Sampler answers stateless terrain queries. All methods are pure given the
// frozen Config and seed: same input, same output, independent of call order,
// so a Sampler may be shared freely between generation workers.
type Sampler struct {
	seed int32
	conf Config
	bank *noiseBank
	log  *slog.Logger

	// warnOnce makes sure sampling before initialisation warns once per
	// sampler instead of flooding the log from background generation threads.
	warnOnce sync.Once
}

// nilSamplerWarn covers the nil-receiver path, which has no per-sampler state
// to hang the warning on.
var nilSamplerWarn sync.Once

// NewSampler builds a Sampler for the seed. The configuration is defaulted,
// validated and frozen; NewSampler is the only fatal error path of the
// package.
func NewSampler(seed int32, conf Config, log *slog.Logger) (*Sampler, error) {
	if log == nil {
		log = slog.Default()
	}
	conf = conf.withDefaults()
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{seed: seed, conf: conf, bank: newNoiseBank(seed), log: log}, nil
}

// Seed returns the world seed the sampler was built with.
func (s *Sampler) Seed() int32 { return s.seed }

// Config returns the frozen configuration.
func (s *Sampler) Config() Config { return s.conf }

// WaterLevel returns the sea surface elevation.
func (s *Sampler) WaterLevel() float64 {
	if !s.initialised() {
		return 0
	}
	return s.conf.WaterLevel
}

func (s *Sampler) initialised() bool {
	return s != nil && s.bank != nil
}

// warnUninitialised logs the configuration error once per sampler. Sampling
// must never crash: speculative background generation may race world start-up.
func (s *Sampler) warnUninitialised() {
	if s == nil {
		nilSamplerWarn.Do(func() {
			slog.Default().Warn("terrain sampled before configuration was initialised, returning defaults")
		})
		return
	}
	s.warnOnce.Do(func() {
		log := slog.Default()
		if s.log != nil {
			log = s.log
		}
		log.Warn("terrain sampled before configuration was initialised, returning defaults")
	})
}

// Height returns the base elevation at a world-space (x, z), before river
// carving. It composes rolling hills, fine detail, a domain-warped mountain
// mass with ridge crests, the island falloff and beach flattening.
func (s *Sampler) Height(x, z float64) float64 {
	if !s.initialised() {
		s.warnUninitialised()
		return 0
	}
	c, b := &s.conf, s.bank

	h := b.hills.Noise2D(x*c.HillFrequency, z*c.HillFrequency) * c.HillAmplitude
	h += b.detail.Noise2D(x*c.DetailFrequency, z*c.DetailFrequency) * c.DetailAmplitude

	// Mountain mask: a smoothstepped, exponentiated threshold of a warped
	// low-frequency field. The warp keeps ranges from reading as round blobs.
	wx := x + b.warpX.Eval2(x*c.WarpFrequency, z*c.WarpFrequency)*c.WarpAmplitude
	wz := z + b.warpZ.Eval2(x*c.WarpFrequency, z*c.WarpFrequency)*c.WarpAmplitude
	mask := unit(b.mask.Eval2(wx*c.MountainMaskFrequency, wz*c.MountainMaskFrequency))
	mask = mathutil.Smoothstep(c.MountainMaskThreshold-c.MountainMaskBlend, c.MountainMaskThreshold+c.MountainMaskBlend, mask)
	mask = math.Pow(mask, c.MountainMaskExponent)

	h += mask * c.MountainAmplitude
	h += mask * b.ridgeAt(x, z, c.RidgeFrequency) * c.RidgeAmplitude
	h += c.HeightOffset

	h = s.islandFalloff(x, z, h)
	return s.beachFlatten(h)
}

// islandFalloff attenuates the height toward WaterLevel-IslandDepth as the
// noise-perturbed radial distance from the map centre crosses the falloff
// band, bounding the world to a finite island regardless of the noise above.
func (s *Sampler) islandFalloff(x, z, h float64) float64 {
	c, b := &s.conf, s.bank
	dx, dz := x-c.CenterX, z-c.CenterZ
	d := math.Sqrt(dx*dx + dz*dz)
	d += b.coast.Eval2(x*c.CoastNoiseFrequency, z*c.CoastNoiseFrequency) * c.CoastNoiseAmplitude
	t := mathutil.Smoothstep(c.IslandFalloffStart, c.IslandFalloffEnd, d)
	return mathutil.Lerp(h, c.WaterLevel-c.IslandDepth, t)
}

// beachFlatten compresses the shoreline elevation band through a smooth curve
// so beaches come out gently sloped instead of noise-jagged.
func (s *Sampler) beachFlatten(h float64) float64 {
	c := &s.conf
	if h <= c.BeachFlattenMin || h >= c.BeachFlattenMax {
		return h
	}
	t := mathutil.InvLerp(c.BeachFlattenMin, c.BeachFlattenMax, h)
	return mathutil.Lerp(c.BeachFlattenMin, c.BeachFlattenMax, mathutil.SmoothstepUnit(t))
}

// BiomeWeights returns the normalised (sand, grass, rock, snow) ground-cover
// blend at a point. Latitude picks the base band; elevation pushes exposed
// ground toward rock and high altitude toward snow; ground near the water
// line collapses to sand. River-bank blending is applied by the world on top
// of this, as it needs the hydrology tables.
func (s *Sampler) BiomeWeights(x, z float64) Weights {
	if !s.initialised() {
		s.warnUninitialised()
		return Weights{Grass: 1}
	}
	c, b := &s.conf, s.bank
	h := s.Height(x, z)

	zb := z + b.band.Eval2(x*c.BandNoiseFrequency, z*c.BandNoiseFrequency)*c.BandNoiseAmplitude
	desert := 1 - mathutil.Smoothstep(c.DesertEnd, c.GrassStart, zb)
	snow := mathutil.Smoothstep(c.GrassEnd, c.SnowStart, zb)
	w := Weights{Sand: desert, Snow: snow, Grass: 1 - desert - snow}

	// Elevation and steepness push the sand/grass share toward rock.
	rock := mathutil.Smoothstep(c.RockAltitude, c.RockAltitude+c.RockAltitudeBlend, h)
	if sr := mathutil.Smoothstep(c.SlopeRockStart, c.SlopeRockEnd, s.Slope(x, z)) * c.SlopeRockFactor; sr > rock {
		rock = sr
	}
	moved := (w.Sand + w.Grass) * rock
	w.Sand *= 1 - rock
	w.Grass *= 1 - rock
	w.Rock += moved

	// Altitude snow overrides latitude, suppressing the other channels
	// proportionally.
	w = w.Lerp(Weights{Snow: 1}, mathutil.Smoothstep(c.SnowAltitude, c.SnowAltitude+c.SnowAltitudeBlend, h))

	// The beach override wins over everything: ground at the water line is
	// sand no matter the latitude.
	beach := 1 - mathutil.Smoothstep(c.WaterLevel+c.BeachHeight, c.WaterLevel+c.BeachHeight+c.BeachBlend, h)
	w = w.Lerp(Weights{Sand: 1}, beach)

	return w.Normalized()
}

// Normal returns the world-space surface normal at (x, z), computed by
// central differences of Height at the configured sample offset.
func (s *Sampler) Normal(x, z float64) mgl64.Vec3 {
	if !s.initialised() {
		s.warnUninitialised()
		return mgl64.Vec3{0, 1, 0}
	}
	e := s.conf.SampleOffset
	hx := s.Height(x+e, z) - s.Height(x-e, z)
	hz := s.Height(x, z+e) - s.Height(x, z-e)
	return mgl64.Vec3{-hx, 2 * e, -hz}.Normalize()
}

// Slope returns the angle in radians between the surface normal and world-up.
func (s *Sampler) Slope(x, z float64) float64 {
	n := s.Normal(x, z)
	return math.Acos(mathutil.Clamp(n.Y(), -1, 1))
}
