package watcher

import "time"

// WatcherBuilderOption is a functional option for configuring a watcher.
type WatcherBuilderOption func(*watcher)

// WithSettle sets how long a file must stay untouched before it is reported.
//
// Parameters:
//   - d: the settle interval; non-positive values keep the default
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithSettle(d time.Duration) WatcherBuilderOption {
	return func(w *watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithFilter restricts reports to file names accepted by fn.
//
// Parameters:
//   - fn: receives the base name of the file
//
// Returns:
//   - WatcherBuilderOption: option function to apply
func WithFilter(fn func(name string) bool) WatcherBuilderOption {
	return func(w *watcher) {
		w.filter = fn
	}
}
