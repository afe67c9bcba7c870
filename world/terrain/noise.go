package terrain

import (
	"math"

	"github.com/aquilax/go-perlin"
	"github.com/cespare/xxhash/v2"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Perlin layer shape used for the octave layers. Matches the parameters the
// rest of the codebase has always generated worlds with.
const (
	perlinAlpha   = 2.0
	perlinBeta    = 2.0
	perlinOctaves = 3
)

// noiseBank holds one independent noise generator per sampling concern. Each
// layer is seeded from the world seed and the layer name, so different seeds
// reshuffle every layer while the frequency structure stays identical.
type noiseBank struct {
	hills  *perlin.Perlin
	detail *perlin.Perlin
	ridge  *perlin.Perlin

	mask  opensimplex.Noise
	warpX opensimplex.Noise
	warpZ opensimplex.Noise
	coast opensimplex.Noise
	band  opensimplex.Noise
}

// layerSeed derives a per-layer seed from the 32-bit world seed and the layer
// name. xxhash keeps the derivation stable across platforms and releases.
func layerSeed(seed int32, name string) int64 {
	d := xxhash.New()
	_, _ = d.WriteString(name)
	var b [4]byte
	u := uint32(seed)
	b[0], b[1], b[2], b[3] = byte(u), byte(u>>8), byte(u>>16), byte(u>>24)
	_, _ = d.Write(b[:])
	return int64(d.Sum64())
}

func newNoiseBank(seed int32) *noiseBank {
	p := func(name string) *perlin.Perlin {
		return perlin.NewPerlin(perlinAlpha, perlinBeta, perlinOctaves, layerSeed(seed, name))
	}
	s := func(name string) opensimplex.Noise {
		return opensimplex.New(layerSeed(seed, name))
	}
	return &noiseBank{
		hills:  p("terrain/hills"),
		detail: p("terrain/detail"),
		ridge:  p("terrain/ridge"),
		mask:   s("terrain/mountain-mask"),
		warpX:  s("terrain/warp-x"),
		warpZ:  s("terrain/warp-z"),
		coast:  s("terrain/coast"),
		band:   s("terrain/biome-band"),
	}
}

// ridgeAt returns 1-|noise| in [0, 1], producing sharp crests where the raw
// noise crosses zero.
func (b *noiseBank) ridgeAt(x, z, freq float64) float64 {
	return 1 - math.Abs(b.ridge.Noise2D(x*freq, z*freq))
}

// unit maps a [-1, 1] noise value to [0, 1].
func unit(v float64) float64 {
	return (v + 1) * 0.5
}
