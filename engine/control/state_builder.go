package control

// StateBuilderOption is a function that configures a state during construction.
type StateBuilderOption func(*state)

// WithGhostMode sets the initial ghost flag.
//
// Parameters:
//   - enabled: the initial flag
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithGhostMode(enabled bool) StateBuilderOption {
	return func(s *state) {
		s.ghostMode = enabled
	}
}

// WithSpeed sets the initial animation speed. The value is clamped.
//
// Parameters:
//   - speed: the initial speed
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithSpeed(speed float64) StateBuilderOption {
	return func(s *state) {
		s.speed = speed
	}
}

// WithAnimationType sets the initial animation type.
//
// Parameters:
//   - t: the initial animation type
//
// Returns:
//   - StateBuilderOption: option function to apply
func WithAnimationType(t AnimationType) StateBuilderOption {
	return func(s *state) {
		s.animationType = t
	}
}
