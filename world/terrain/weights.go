package terrain

// Weights is the normalised 4-channel ground-cover blend at a point. The
// channels sum to 1 and drive both texture splatting and decoration density
// gating.
type Weights struct {
	Sand, Grass, Rock, Snow float64
}

// Sum returns the total of all four channels.
func (w Weights) Sum() float64 {
	return w.Sand + w.Grass + w.Rock + w.Snow
}

// Lerp blends w toward o by t.
func (w Weights) Lerp(o Weights, t float64) Weights {
	u := 1 - t
	return Weights{
		Sand:  w.Sand*u + o.Sand*t,
		Grass: w.Grass*u + o.Grass*t,
		Rock:  w.Rock*u + o.Rock*t,
		Snow:  w.Snow*u + o.Snow*t,
	}
}

// Normalized rescales the channels to sum to 1. A degenerate all-zero weight
// normalises to pure grass rather than dividing by zero.
func (w Weights) Normalized() Weights {
	s := w.Sum()
	if s <= 0 {
		return Weights{Grass: 1}
	}
	inv := 1 / s
	return Weights{Sand: w.Sand * inv, Grass: w.Grass * inv, Rock: w.Rock * inv, Snow: w.Snow * inv}
}
