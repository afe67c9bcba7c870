package hydrology

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// bumpTerrain is an analytic field with peaks of height 50 at (0,0) and
// (±400, ±400) and troughs of -50 between them. Water level 0.
type bumpTerrain struct{}

func (bumpTerrain) Height(x, z float64) float64 {
	return 50 * math.Cos(x*math.Pi/400) * math.Cos(z*math.Pi/400)
}

func (bumpTerrain) WaterLevel() float64 { return 0 }

// pitTerrain is a flat field at height 8 with a single gaussian depression at
// the origin dipping to -12. Water level 0.
type pitTerrain struct{}

func (pitTerrain) Height(x, z float64) float64 {
	return 8 - 20*math.Exp(-(x*x+z*z)/800)
}

func (pitTerrain) WaterLevel() float64 { return 0 }

// flatOcean sits entirely below water level.
type flatOcean struct{}

func (flatOcean) Height(x, z float64) float64 { return -5 }
func (flatOcean) WaterLevel() float64         { return 0 }

func riverConfig() Config {
	return Config{
		SearchRadius:      600,
		PeakSpacing:       50,
		NeighbourDistance: 24,
		MinPeakHeight:     32,
		MinPeakSeparation: 380,
		MaxRivers:         8,

		StepSize:        6,
		MaxSteps:        800,
		MinRiverPoints:  10,
		StartWidth:      1.5,
		WidthGrowth:     0.02,
		MaxWidth:        8,
		MeanderStrength: 0.3,

		CarveDepth:           2.5,
		CarveFalloff:         6,
		CarveFalloffExponent: 3,

		TributaryInterval:      8,
		TributaryChance:        1,
		TributaryMinHeight:     10,
		TributaryMinRise:       5,
		TributarySearchRadius:  100,
		TributaryAttempts:      6,
		TributaryWidthScale:    0.55,
		TributaryPull:          0.45,
		ConfluenceDistance:     9,
		MaxTributariesPerRiver: 2,
	}
}

func TestGenerateTracesRiversFromPeaks(t *testing.T) {
	m := Generate(bumpTerrain{}, 12345, riverConfig(), testLogger())
	mains := 0
	for _, r := range m.Rivers() {
		if !r.Tributary {
			mains++
		}
	}
	require.GreaterOrEqual(t, mains, 1, "expected at least one main river from the analytic peaks")
	require.LessOrEqual(t, mains, riverConfig().MaxRivers)
}

func TestRiverInvariants(t *testing.T) {
	conf := riverConfig()
	m := Generate(bumpTerrain{}, 12345, conf, testLogger())
	require.NotEmpty(t, m.Rivers())

	for ri, r := range m.Rivers() {
		require.GreaterOrEqual(t, len(r.Points), conf.MinRiverPoints, "river %d too short", ri)

		// Width is monotonically non-decreasing from source to outlet.
		for i := 1; i < len(r.Points); i++ {
			require.GreaterOrEqual(t, r.Points[i].Width, r.Points[i-1].Width,
				"river %d width decreased at point %d", ri, i)
		}

		// The terminal point reached the sea or, for tributaries, the parent.
		mouth := r.Mouth()
		if r.Tributary {
			require.GreaterOrEqual(t, r.Parent, 0)
			parent := m.Rivers()[r.Parent]
			_, d := parent.nearestPoint(mgl64.Vec2{mouth.Pos.X(), mouth.Pos.Z()})
			if mouth.Pos.Y() > 0 {
				require.LessOrEqual(t, d, conf.ConfluenceDistance,
					"tributary %d ended above water and away from its parent", ri)
			}
		} else {
			require.LessOrEqual(t, mouth.Pos.Y(), 0.0, "main river %d did not reach the sea", ri)
		}

		require.Greater(t, r.Length, 0.0)
		for _, pt := range r.Points {
			require.InDelta(t, 1.0, pt.Flow.Len(), 1e-9, "flow directions must be normalised")
		}
	}
}

func TestTributariesSpawn(t *testing.T) {
	m := Generate(bumpTerrain{}, 12345, riverConfig(), testLogger())
	tributaries := 0
	for _, r := range m.Rivers() {
		if r.Tributary {
			tributaries++
		}
	}
	require.GreaterOrEqual(t, tributaries, 1,
		"expected tributaries with spawn chance 1 on terrain with higher ground everywhere")
}

func TestGenerateDeterministic(t *testing.T) {
	a := Generate(bumpTerrain{}, 777, riverConfig(), testLogger())
	b := Generate(bumpTerrain{}, 777, riverConfig(), testLogger())
	require.Equal(t, a.Rivers(), b.Rivers())
	require.Equal(t, a.Lakes(), b.Lakes())

	c := Generate(bumpTerrain{}, 778, riverConfig(), testLogger())
	require.NotEqual(t, a.Rivers(), c.Rivers(), "different seeds must trace different rivers")
}

func TestCarveDepthBounds(t *testing.T) {
	conf := riverConfig()
	m := Generate(bumpTerrain{}, 12345, conf, testLogger())
	require.NotEmpty(t, m.Rivers())

	for x := -600.0; x <= 600; x += 37 {
		for z := -600.0; z <= 600; z += 41 {
			d := m.CarveDepth(x, z)
			require.GreaterOrEqual(t, d, 0.0)
			require.LessOrEqual(t, d, conf.CarveDepth+1e-9)
			// The carved surface is floored at waterLevel-2 everywhere and
			// never rises above the floored uncarved terrain.
			h := m.HeightWithRivers(x, z)
			require.GreaterOrEqual(t, h, m.WaterLevel()-carveFloorDepth-1e-9)
			require.LessOrEqual(t, h, math.Max(bumpTerrain{}.Height(x, z), m.WaterLevel()-carveFloorDepth)+1e-9)
		}
	}
}

func TestCarveFullDepthOnCentreline(t *testing.T) {
	conf := riverConfig()
	m := Generate(bumpTerrain{}, 12345, conf, testLogger())
	require.NotEmpty(t, m.Rivers())

	r := m.Rivers()[0]
	mid := r.Points[len(r.Points)/2]
	d := m.CarveDepth(mid.Pos.X(), mid.Pos.Z())
	require.Equal(t, conf.CarveDepth, d, "centreline must carve at full depth")
	require.True(t, m.InRiver(mid.Pos.X(), mid.Pos.Z()))

	blend := m.BankBlend(mid.Pos.X(), mid.Pos.Z())
	require.Equal(t, 1.0, blend)
}

func TestCarveZeroFarFromRivers(t *testing.T) {
	m := Generate(bumpTerrain{}, 12345, riverConfig(), testLogger())
	// (8000, 8000) is far outside every traced path's bounds.
	require.Equal(t, 0.0, m.CarveDepth(8000, 8000))
	require.False(t, m.InRiver(8000, 8000))
	require.Equal(t, 0.0, m.BankBlend(8000, 8000))
}

func TestLakeDetection(t *testing.T) {
	conf := Config{
		SearchRadius:  200,
		LakeSpacing:   25,
		LakeRimRadius: 40,
		LakeRimRatio:  0.6,
		LakeRimHeight: 3,
		LakeCellSize:  8,
		LakeMaxCells:  1000,
		MinLakeRadius: 18,
		MaxLakes:      16,
	}
	m := Generate(pitTerrain{}, 42, conf, testLogger())
	require.Len(t, m.Lakes(), 1, "the single gaussian pit must be detected exactly once")

	lake := m.Lakes()[0]
	require.InDelta(t, 0, lake.Center.X(), 10)
	require.InDelta(t, 0, lake.Center.Y(), 10)
	require.InDelta(t, 12, lake.MaxDepth, 1.5)
	require.Less(t, lake.Radius, 45.0)

	in, depth := m.InLake(0, 0)
	require.True(t, in)
	require.InDelta(t, 12, depth, 0.5)

	in, _ = m.InLake(150, 150)
	require.False(t, in)
}

func TestOceanIsNotALake(t *testing.T) {
	m := Generate(flatOcean{}, 42, DefaultConfig(), testLogger())
	require.Empty(t, m.Lakes(), "open ocean must not be classified as lakes")
	require.Empty(t, m.Rivers(), "a world without peaks has no rivers")

	// Downstream queries still function with empty tables. The carved
	// surface floor applies even where nothing carves: the -5 sea bed
	// reports waterLevel-2.
	require.Equal(t, 0.0, m.CarveDepth(10, 10))
	require.Equal(t, -2.0, m.HeightWithRivers(10, 10))
	_, _, ok := m.NearestRiver(10, 10)
	require.False(t, ok)
}
