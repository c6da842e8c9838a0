package core

import (
	"math"
	"math/rand"
)

// Sampler provides random sampling for rendering algorithms
// Can be swapped out for deterministic testing or different sampling patterns
type Sampler interface {
	Get1D() float64
	Get2D() Vec2
}

// RandomSampler wraps a standard Go random generator
type RandomSampler struct {
	random *rand.Rand
}

// NewRandomSampler creates a sampler from a Go random generator
func NewRandomSampler(random *rand.Rand) *RandomSampler {
	return &RandomSampler{random: random}
}

// Get1D returns a random float64 in [0, 1)
func (r *RandomSampler) Get1D() float64 {
	return r.random.Float64()
}

// Get2D returns two random float64 values in [0, 1)
func (r *RandomSampler) Get2D() Vec2 {
	return NewVec2(r.random.Float64(), r.random.Float64())
}

// SamplePointInUnitDisk maps a 2D sample in [0,1)² uniformly onto the unit
// disk using concentric mapping, which avoids rejection sampling
func SamplePointInUnitDisk(sample Vec2) Vec2 {
	// Map sample to [-1,1]² and handle degeneracy at the origin
	uOffset := NewVec2(2*sample.X-1, 2*sample.Y-1)
	if uOffset.X == 0 && uOffset.Y == 0 {
		return NewVec2(0, 0)
	}

	// Apply concentric mapping to point
	var theta, r float64
	if math.Abs(uOffset.X) > math.Abs(uOffset.Y) {
		r = uOffset.X
		theta = math.Pi / 4 * (uOffset.Y / uOffset.X)
	} else {
		r = uOffset.Y
		theta = math.Pi/2 - math.Pi/4*(uOffset.X/uOffset.Y)
	}

	return NewVec2(r*math.Cos(theta), r*math.Sin(theta))
}

// radicalInversePrimes holds the bases for the low-discrepancy sequence
// dimensions used by RadicalInverse
var radicalInversePrimes = [...]uint64{2, 3, 5, 7}

// RadicalInverse returns the radical inverse of a in the prime base for the
// given sequence dimension. Successive values of a produce a low-discrepancy
// (Halton) sequence in [0,1); prefixes of the sequence are themselves
// well-distributed, so coverage only grows with the sample count.
func RadicalInverse(dimension int, a uint64) float64 {
	base := radicalInversePrimes[dimension]
	invBase := 1.0 / float64(base)

	var reversed uint64
	invBaseN := 1.0
	for a != 0 {
		next := a / base
		digit := a - next*base
		reversed = reversed*base + digit
		invBaseN *= invBase
		a = next
	}

	return math.Min(float64(reversed)*invBaseN, 1-1e-13)
}
