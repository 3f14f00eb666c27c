package seriesgen

// Rand is a linear-congruential generator over uint32. It is meant for
// reproducible demo data only: the same seed always yields the same sequence.
type Rand struct {
	state uint32
}

const (
	lcgMultiplier uint32 = 1664525
	lcgIncrement  uint32 = 1013904223
	twoPow32             = 4294967296.0
)

func NewRand(seed uint32) *Rand {
	return &Rand{state: seed}
}

// Float64 advances the generator and returns a value in [0,1).
func (r *Rand) Float64() float64 {
	r.state = r.state*lcgMultiplier + lcgIncrement
	return float64(r.state) / twoPow32
}
