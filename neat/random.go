package neat

import (
	"math"
	"math/rand"
	"time"
)

// Random is the seeded source of every stochastic decision made during a run.
// It is not safe for concurrent use; parallel evaluators need their own instance.
type Random struct {
	seed int64
	rng  *rand.Rand
}

// NewRandom creates a generator from seed. A zero seed is replaced by the
// current time so that unseeded runs differ.
func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Seed returns the seed the generator was created with.
func (r *Random) Seed() int64 {
	return r.seed
}

// Weight draws a fresh connection weight uniformly from [-1, 1).
func (r *Random) Weight() float64 {
	return r.Range(-1.0, 1.0)
}

// Canonical draws uniformly from [0, 1).
func (r *Random) Canonical() float64 {
	return r.rng.Float64()
}

// Range draws uniformly from [min, max).
func (r *Random) Range(min, max float64) float64 {
	return min + r.rng.Float64()*(max-min)
}

// Intn draws uniformly from [0, n). It panics if n <= 0.
func (r *Random) Intn(n int) int {
	return r.rng.Intn(n)
}

// Gaussian draws from the standard normal distribution.
func (r *Random) Gaussian() float64 {
	return r.rng.NormFloat64()
}

// CanonicalSkewedHigh draws from [0, 1] with mass pushed towards 1.
func (r *Random) CanonicalSkewedHigh(strength float64) float64 {
	return 1.0 - math.Pow(1.0-r.Canonical(), strength)
}

// CanonicalSkewedLow draws from [0, 1) with mass pushed towards 0.
func (r *Random) CanonicalSkewedLow(strength float64) float64 {
	return math.Pow(r.Canonical(), strength)
}
