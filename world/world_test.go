package world

import (
	"math"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

func TestPosPackRoundTrip(t *testing.T) {
	for _, pos := range []ChunkPos{{0, 0}, {1, -1}, {-1, 1}, {123456, -654321}, {math.MaxInt32, math.MinInt32}} {
		if got := unpackPos(pos.pack()); got != pos {
			t.Fatalf("pack/unpack mangled %v into %v", pos, got)
		}
	}
	if (ChunkPos{1, 2}).pack() == (ChunkPos{2, 1}).pack() {
		t.Fatal("packed keys collide across coordinate order")
	}
}

func TestPosFromWorld(t *testing.T) {
	cases := []struct {
		v    mgl64.Vec3
		want ChunkPos
	}{
		{mgl64.Vec3{0, 0, 0}, ChunkPos{0, 0}},
		{mgl64.Vec3{63.9, 0, 63.9}, ChunkPos{0, 0}},
		{mgl64.Vec3{64, 0, 0}, ChunkPos{1, 0}},
		{mgl64.Vec3{-0.1, 0, -64}, ChunkPos{-1, -1}},
	}
	for _, tc := range cases {
		if got := posFromWorld(tc.v, 64); got != tc.want {
			t.Fatalf("posFromWorld(%v) = %v, want %v", tc.v, got, tc.want)
		}
	}
}

func TestChebyshev(t *testing.T) {
	if d := chebyshev(ChunkPos{3, -2}, ChunkPos{0, 0}); d != 3 {
		t.Fatalf("chebyshev = %v, want 3", d)
	}
	if d := chebyshev(ChunkPos{-1, -5}, ChunkPos{1, 1}); d != 6 {
		t.Fatalf("chebyshev = %v, want 6", d)
	}
}

func TestWorldIDStable(t *testing.T) {
	if worldID(42) != worldID(42) {
		t.Fatal("world identity not stable for a seed")
	}
	if worldID(42) == worldID(43) {
		t.Fatal("distinct seeds share a world identity")
	}
}

func TestWorldDeterministic(t *testing.T) {
	stream := StreamConfig{ChunkSize: 16, ViewDistance: 1, LoadBudget: 16}
	a := testWorld(t, 12345, stream)
	b := testWorld(t, 12345, stream)
	view := mgl64.Vec3{8, 0, 8}
	a.Tick(view, 50*time.Millisecond)
	b.Tick(view, 50*time.Millisecond)

	for dz := int32(-1); dz <= 1; dz++ {
		for dx := int32(-1); dx <= 1; dx++ {
			pos := ChunkPos{dx, dz}
			ca, ok := a.Chunk(pos)
			if !ok {
				t.Fatalf("chunk %v not loaded", pos)
			}
			cb, _ := b.Chunk(pos)
			if ca.GrassSeed() != cb.GrassSeed() {
				t.Fatalf("chunk %v grass seeds differ", pos)
			}
			for i := range ca.Heights() {
				if ca.Heights()[i] != cb.Heights()[i] {
					t.Fatalf("chunk %v height %d differs between identical seeds", pos, i)
				}
			}
			da, db := ca.Decorations(), cb.Decorations()
			if len(da) != len(db) {
				t.Fatalf("chunk %v decoration counts differ: %d != %d", pos, len(da), len(db))
			}
			for i := range da {
				if da[i] != db[i] {
					t.Fatalf("chunk %v decoration %d differs: %+v != %+v", pos, i, da[i], db[i])
				}
			}
		}
	}

	other := testWorld(t, 54321, stream)
	other.Tick(view, 50*time.Millisecond)
	ca, _ := a.Chunk(ChunkPos{0, 0})
	co, _ := other.Chunk(ChunkPos{0, 0})
	same := true
	for i := range ca.Heights() {
		if ca.Heights()[i] != co.Heights()[i] {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different seeds produced an identical chunk heightmap")
	}
}

func TestBiomeWeightsNormalised(t *testing.T) {
	w := testWorld(t, 99, StreamConfig{ChunkSize: 16, ViewDistance: 1})
	for x := -200.0; x <= 200; x += 40 {
		for z := -200.0; z <= 200; z += 40 {
			sum := w.BiomeWeights(x, z).Sum()
			if math.Abs(sum-1) > 1e-9 {
				t.Fatalf("weights at (%v, %v) sum to %v", x, z, sum)
			}
		}
	}
}

func TestChunkGridMatchesSurface(t *testing.T) {
	w := testWorld(t, 4, StreamConfig{ChunkSize: 16, ViewDistance: 1, LoadBudget: 16})
	w.Tick(mgl64.Vec3{8, 0, 8}, 50*time.Millisecond)

	c, ok := w.Chunk(ChunkPos{-1, 1})
	if !ok {
		t.Fatal("chunk (-1,1) not loaded")
	}
	ox, oz := c.origin()
	for _, v := range [][2]int{{0, 0}, {16, 0}, {7, 11}, {16, 16}} {
		got := c.HeightAt(v[0], v[1])
		want := w.HeightWithRivers(ox+float64(v[0]), oz+float64(v[1]))
		if got != want {
			t.Fatalf("grid vertex %v holds %v, surface says %v", v, got, want)
		}
	}
}

func TestDecorationsStayDryAndGrounded(t *testing.T) {
	w := testWorld(t, 12345, StreamConfig{ChunkSize: 16, ViewDistance: 2, LoadBudget: 32})
	w.Tick(mgl64.Vec3{8, 0, 8}, 50*time.Millisecond)

	total := 0
	for dz := int32(-2); dz <= 2; dz++ {
		for dx := int32(-2); dx <= 2; dx++ {
			c, ok := w.Chunk(ChunkPos{dx, dz})
			if !ok {
				t.Fatalf("chunk (%d,%d) not loaded", dx, dz)
			}
			for _, inst := range c.Decorations() {
				x, z := inst.Pos.X(), inst.Pos.Z()
				if w.InRiver(x, z) {
					t.Fatalf("decoration placed in a river at (%v, %v)", x, z)
				}
				if h := w.HeightWithRivers(x, z); inst.Pos.Y() != h {
					t.Fatalf("decoration not grounded: y %v, surface %v", inst.Pos.Y(), h)
				}
				total++
			}
		}
	}
	if total == 0 {
		t.Fatal("no decorations placed on grassland above water")
	}
}

func TestTickLoopStops(t *testing.T) {
	w := testWorld(t, 5, StreamConfig{ChunkSize: 16, ViewDistance: 1, LoadBudget: 16})
	stop := w.StartTicking(5*time.Millisecond, func() mgl64.Vec3 { return mgl64.Vec3{8, 0, 8} })

	deadline := time.Now().Add(5 * time.Second)
	for w.LoadedCount() < 9 {
		if time.Now().After(deadline) {
			t.Fatalf("tick loop stalled at %d/9 chunks", w.LoadedCount())
		}
		time.Sleep(5 * time.Millisecond)
	}
	stop()
	stop() // idempotent
	time.Sleep(20 * time.Millisecond)
	ticks := w.CurrentTick()
	time.Sleep(50 * time.Millisecond)
	if w.CurrentTick() != ticks {
		t.Fatal("tick loop kept running after stop")
	}
}
