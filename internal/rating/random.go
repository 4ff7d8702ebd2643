package rating

import (
	"math/rand/v2"
	"time"
)

// NewRandom returns the imputation random source. A zero seed draws from the clock,
// any other seed gives a reproducible sequence.
func NewRandom(seed uint64) RandomSource {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Draw returns a uniform value in r using src
func Draw(src RandomSource, lo, hi float64) float64 {
	return lo + src.Float64()*(hi-lo)
}
