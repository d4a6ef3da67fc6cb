package animator

// SchedulerBuilderOption is a functional option for configuring a Scheduler.
type SchedulerBuilderOption func(*scheduler)

// WithFloatAmplitude sets the vertical amplitude of the Float animation in world units.
//
// Parameters:
//   - amplitude: the amplitude (default 0.2)
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithFloatAmplitude(amplitude float32) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.floatAmplitude = amplitude
	}
}

// WithRotateStep sets the per-tick rotation of the Rotate animation at speed 1.0.
//
// Parameters:
//   - radians: the step (default 0.01)
//
// Returns:
//   - SchedulerBuilderOption: option function to apply
func WithRotateStep(radians float32) SchedulerBuilderOption {
	return func(s *scheduler) {
		s.rotateStep = radians
	}
}
