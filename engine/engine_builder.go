package engine

import (
	"github.com/Carmen-Shannon/oxy-ghost/engine/clock"
	"github.com/Carmen-Shannon/oxy-ghost/engine/config"
	"github.com/Carmen-Shannon/oxy-ghost/engine/control"
	"github.com/Carmen-Shannon/oxy-ghost/engine/loader"
	"github.com/Carmen-Shannon/oxy-ghost/engine/profiler"
	"github.com/Carmen-Shannon/oxy-ghost/engine/renderer"
	"github.com/Carmen-Shannon/oxy-ghost/engine/voice"
	"github.com/Carmen-Shannon/oxy-ghost/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the viewer configuration: initial ghost mode and speed, ghost opacity,
// on-load animation, particle count, tick rate and the initial framebuffer size.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg config.Config) EngineBuilderOption {
	return func(e *engine) {
		e.cfg = cfg
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in ticks per second, overriding the configured rate.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.engineTickRate = tickInterval(fps)
	}
}

// WithWindow sets the host window. Run pumps its messages and its resize events reach the engine.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer sets the renderer that draws each tick and receives uploads from the default loader.
//
// Parameters:
//   - r: the renderer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithLoader replaces the default glTF loader.
//
// Parameters:
//   - l: the loader
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithLoader(l loader.Loader) EngineBuilderOption {
	return func(e *engine) {
		e.loader = l
	}
}

// WithRecognizer sets the speech recognizer. Without it listening is unsupported.
//
// Parameters:
//   - r: the recognizer
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRecognizer(r voice.Recognizer) EngineBuilderOption {
	return func(e *engine) {
		e.recognizer = r
	}
}

// WithClock sets the frame clock that schedulers and the particle field register on.
//
// Parameters:
//   - c: the clock
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithClock(c clock.Clock) EngineBuilderOption {
	return func(e *engine) {
		e.clock = c
	}
}

// WithState sets the shared control state instead of building one from the configuration.
//
// Parameters:
//   - s: the control state
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithState(s control.State) EngineBuilderOption {
	return func(e *engine) {
		e.state = s
	}
}

// WithProfiler sets the profiler shared with the default loader.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		if p != nil {
			e.profiler = p
		}
	}
}

// WithSize sets the initial framebuffer size when there is no window to ask.
//
// Parameters:
//   - width: framebuffer width in pixels
//   - height: framebuffer height in pixels
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithSize(width, height int) EngineBuilderOption {
	return func(e *engine) {
		e.width, e.height = width, height
	}
}
