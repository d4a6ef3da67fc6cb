package loader

import (
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-ghost/engine/profiler"
)

const (
	defaultWorkers     = 2
	defaultQueueSize   = 16
	defaultIdleTimeout = time.Second
)

// LoaderBuilderOption is a functional option for configuring a Loader via NewLoader.
type LoaderBuilderOption func(*loader)

// WithUploader is an option builder that sets the GPU uploader used for loaded assets.
// Without one, assets keep their geometry on the CPU only.
//
// Parameters:
//   - u: the uploader, usually the renderer
//
// Returns:
//   - LoaderBuilderOption: a function that applies the uploader option to a loader
func WithUploader(u Uploader) LoaderBuilderOption {
	return func(l *loader) {
		l.uploader = u
	}
}

// WithWorkerPool is an option builder that sets the pool LoadAsync submits to.
//
// Parameters:
//   - pool: the worker pool
//
// Returns:
//   - LoaderBuilderOption: a function that applies the pool option to a loader
func WithWorkerPool(pool worker.DynamicWorkerPool) LoaderBuilderOption {
	return func(l *loader) {
		l.pool = pool
	}
}

// WithProfiler is an option builder that sets where recoverable failures are counted.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - LoaderBuilderOption: a function that applies the profiler option to a loader
func WithProfiler(p *profiler.Profiler) LoaderBuilderOption {
	return func(l *loader) {
		l.profiler = p
	}
}

// withBackend replaces the decoding backend; used by tests to observe parser invocations.
func withBackend(b loaderBackend) LoaderBuilderOption {
	return func(l *loader) {
		l.backend = b
	}
}
