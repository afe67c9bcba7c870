package xrand

import "testing"

func TestStreamsMatchForEqualSeeds(t *testing.T) {
	a, b := New(0xfeedbeef), New(0xfeedbeef)
	for i := 0; i < 1000; i++ {
		if av, bv := a.Uint64(), b.Uint64(); av != bv {
			t.Fatalf("streams diverged at %d: %x != %x", i, av, bv)
		}
	}
}

func TestStreamsDifferForDifferentSeeds(t *testing.T) {
	a, b := New(1), New(2)
	same := 0
	for i := 0; i < 100; i++ {
		if a.Uint64() == b.Uint64() {
			same++
		}
	}
	if same > 0 {
		t.Fatalf("%d/100 collisions between differently seeded streams", same)
	}
}

func TestFloat64Bounds(t *testing.T) {
	s := New(42)
	for i := 0; i < 10000; i++ {
		v := s.Float64()
		if v < 0 || v >= 1 {
			t.Fatalf("Float64 out of [0,1): %v", v)
		}
	}
}

func TestRangeBounds(t *testing.T) {
	s := New(7)
	for i := 0; i < 10000; i++ {
		v := s.Range(-3, 5)
		if v < -3 || v >= 5 {
			t.Fatalf("Range out of [-3,5): %v", v)
		}
	}
}

func TestIntNBounds(t *testing.T) {
	s := New(9)
	seen := make(map[int]bool)
	for i := 0; i < 1000; i++ {
		v := s.IntN(8)
		if v < 0 || v >= 8 {
			t.Fatalf("IntN out of [0,8): %v", v)
		}
		seen[v] = true
	}
	if len(seen) != 8 {
		t.Fatalf("IntN(8) produced only %d distinct values in 1000 draws", len(seen))
	}
}
