package particle

import "math/rand/v2"

// FieldBuilderOption is a functional option for configuring a Field.
type FieldBuilderOption func(*field)

// WithCount sets the number of particles. Negative values become zero.
//
// Parameters:
//   - n: the particle count (default 20)
//
// Returns:
//   - FieldBuilderOption: option function to apply
func WithCount(n int) FieldBuilderOption {
	return func(f *field) {
		f.count = max(n, 0)
	}
}

// WithRand sets the random source used to spawn particles.
//
// Parameters:
//   - r: the random source
//
// Returns:
//   - FieldBuilderOption: option function to apply
func WithRand(r *rand.Rand) FieldBuilderOption {
	return func(f *field) {
		f.rng = r
	}
}
