package terrain

import (
	"bytes"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func mustSampler(t *testing.T, seed int32, conf Config) *Sampler {
	t.Helper()
	s, err := NewSampler(seed, conf, testLogger())
	if err != nil {
		t.Fatalf("NewSampler: %v", err)
	}
	return s
}

func TestHeightDeterministic(t *testing.T) {
	a := mustSampler(t, 12345, DefaultConfig())
	b := mustSampler(t, 12345, DefaultConfig())
	for x := -800.0; x <= 800; x += 97 {
		for z := -800.0; z <= 800; z += 89 {
			ha, hb := a.Height(x, z), b.Height(x, z)
			if ha != hb {
				t.Fatalf("height mismatch at (%v,%v): %v != %v", x, z, ha, hb)
			}
			// Repeat calls must not depend on call history either.
			if again := a.Height(x, z); again != ha {
				t.Fatalf("height not stable across calls at (%v,%v)", x, z)
			}
		}
	}
}

func TestSeedsProduceDifferentTerrain(t *testing.T) {
	a := mustSampler(t, 1, DefaultConfig())
	b := mustSampler(t, 2, DefaultConfig())
	same := 0
	n := 0
	for x := -500.0; x <= 500; x += 125 {
		for z := -500.0; z <= 500; z += 125 {
			n++
			if a.Height(x, z) == b.Height(x, z) {
				same++
			}
		}
	}
	if same == n {
		t.Fatalf("seeds 1 and 2 produced identical terrain over %d samples", n)
	}
}

func TestBiomeWeightsNormalised(t *testing.T) {
	s := mustSampler(t, 99, DefaultConfig())
	for x := -1600.0; x <= 1600; x += 173 {
		for z := -1600.0; z <= 1600; z += 181 {
			w := s.BiomeWeights(x, z)
			if sum := w.Sum(); math.Abs(sum-1) > 1e-9 {
				t.Fatalf("weights at (%v,%v) sum to %v: %+v", x, z, sum, w)
			}
			for _, c := range []float64{w.Sand, w.Grass, w.Rock, w.Snow} {
				if c < 0 {
					t.Fatalf("negative channel at (%v,%v): %+v", x, z, w)
				}
			}
		}
	}
}

func TestIslandBounded(t *testing.T) {
	conf := DefaultConfig()
	s := mustSampler(t, 12345, conf)
	limit := conf.WaterLevel - conf.IslandDepth + 1e-9
	// Beyond the falloff end plus the coastline perturbation, height must sit
	// at the sunken floor.
	r := conf.IslandFalloffEnd + conf.CoastNoiseAmplitude + 1
	for angle := 0.0; angle < 2*math.Pi; angle += math.Pi / 37 {
		x := conf.CenterX + r*math.Cos(angle)
		z := conf.CenterZ + r*math.Sin(angle)
		if h := s.Height(x, z); h > limit {
			t.Fatalf("height %v above sunken floor %v at radius %v, angle %v", h, limit, r, angle)
		}
	}
}

// flatDesertConfig produces a nearly flat field at the given elevation so
// band behaviour can be asserted without hunting for suitable terrain.
func flatConfig(elevation float64) Config {
	conf := DefaultConfig()
	conf.HeightOffset = elevation
	conf.HillAmplitude = 0.01
	conf.DetailAmplitude = 0.01
	conf.MountainAmplitude = 0.01
	conf.RidgeAmplitude = 0.01
	return conf
}

func TestDesertBandIsSand(t *testing.T) {
	conf := flatConfig(5)
	s := mustSampler(t, 7, conf)
	// Deep inside the desert band, well clear of the noisy transition and of
	// the rock-blend altitude.
	z := conf.DesertEnd - 3*conf.BandNoiseAmplitude
	w := s.BiomeWeights(40, z)
	if w.Sand < 0.95 {
		t.Fatalf("expected near-pure sand deep in the desert band, got %+v", w)
	}
}

func TestAltitudeSnowOverride(t *testing.T) {
	conf := flatConfig(0)
	conf.SnowAltitude = 30
	conf.SnowAltitudeBlend = 10
	conf.HeightOffset = 80
	s := mustSampler(t, 7, conf)
	// The point is latitudinally desert, but far above the snow altitude.
	z := conf.DesertEnd - 3*conf.BandNoiseAmplitude
	w := s.BiomeWeights(40, z)
	if w.Snow < 0.95 {
		t.Fatalf("expected altitude snow to override desert latitude, got %+v", w)
	}
}

func TestBeachOverrideNearWaterLevel(t *testing.T) {
	conf := flatConfig(0.5)
	s := mustSampler(t, 7, conf)
	// Latitudinally snow, but the ground sits at the water line.
	z := conf.SnowStart + 3*conf.BandNoiseAmplitude
	w := s.BiomeWeights(40, z)
	if w.Sand < 0.95 {
		t.Fatalf("expected beach sand at the water line, got %+v", w)
	}
}

func TestUninitialisedSamplerReturnsDefaults(t *testing.T) {
	var s *Sampler
	if h := s.Height(10, 10); h != 0 {
		t.Fatalf("uninitialised height = %v, want 0", h)
	}
	if w := s.BiomeWeights(10, 10); w != (Weights{Grass: 1}) {
		t.Fatalf("uninitialised weights = %+v, want pure grass", w)
	}
	if n := s.Normal(10, 10); n != (mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("uninitialised normal = %v, want up", n)
	}
}

func TestUninitialisedWarningPerSampler(t *testing.T) {
	var bufA, bufB bytes.Buffer
	a := &Sampler{log: slog.New(slog.NewTextHandler(&bufA, nil))}
	b := &Sampler{log: slog.New(slog.NewTextHandler(&bufB, nil))}

	a.Height(0, 0)
	a.Height(1, 1)
	if n := strings.Count(bufA.String(), "level=WARN"); n != 1 {
		t.Fatalf("first sampler warned %d times, want exactly once", n)
	}

	// A second sampler warns through its own logger even though another
	// sampler warned earlier in the same process.
	b.Height(0, 0)
	if n := strings.Count(bufB.String(), "level=WARN"); n != 1 {
		t.Fatalf("second sampler warned %d times, want exactly once", n)
	}
}

func TestSlopeRange(t *testing.T) {
	s := mustSampler(t, 3, DefaultConfig())
	for x := -400.0; x <= 400; x += 53 {
		for z := -400.0; z <= 400; z += 59 {
			sl := s.Slope(x, z)
			if sl < 0 || sl > math.Pi/2+1e-9 {
				t.Fatalf("slope %v out of [0, pi/2] at (%v,%v)", sl, x, z)
			}
		}
	}
}

func TestValidateRejectsInvertedBands(t *testing.T) {
	conf := DefaultConfig()
	conf.GrassStart, conf.GrassEnd = conf.GrassEnd, conf.GrassStart
	if _, err := NewSampler(1, conf, testLogger()); err == nil {
		t.Fatal("expected error for inverted latitude bands")
	}
	conf = DefaultConfig()
	conf.IslandFalloffStart, conf.IslandFalloffEnd = conf.IslandFalloffEnd, conf.IslandFalloffStart
	if _, err := NewSampler(1, conf, testLogger()); err == nil {
		t.Fatal("expected error for inverted falloff band")
	}
}
