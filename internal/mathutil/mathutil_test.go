package mathutil

import "testing"

func TestClamp(t *testing.T) {
	if got := Clamp(5, 0, 3); got != 3 {
		t.Fatalf("Clamp(5,0,3) = %v", got)
	}
	if got := Clamp(-1.5, 0.0, 3.0); got != 0 {
		t.Fatalf("Clamp(-1.5,0,3) = %v", got)
	}
	if got := Clamp(2, 0, 3); got != 2 {
		t.Fatalf("Clamp(2,0,3) = %v", got)
	}
}

func TestSmoothstepEdges(t *testing.T) {
	if got := Smoothstep(10, 20, 5); got != 0 {
		t.Fatalf("below edge0: got %v, want 0", got)
	}
	if got := Smoothstep(10, 20, 25); got != 1 {
		t.Fatalf("above edge1: got %v, want 1", got)
	}
	if got := Smoothstep(10, 20, 15); got != 0.5 {
		t.Fatalf("midpoint: got %v, want 0.5", got)
	}
}

func TestSmoothstepMonotone(t *testing.T) {
	prev := -1.0
	for v := 0.0; v <= 1.0; v += 0.01 {
		cur := SmoothstepUnit(v)
		if cur < prev {
			t.Fatalf("smoothstep not monotone at t=%v", v)
		}
		prev = cur
	}
}
