package profiler

import (
	"runtime"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
)

// Event is a recoverable failure worth counting. None of them stop the viewer.
type Event int

const (
	// EventInvalidFormat counts rejected file names.
	EventInvalidFormat Event = iota
	// EventLoadFailure counts scene files that could not be parsed or uploaded.
	EventLoadFailure
	// EventDoubleDisposal counts Dispose calls on an already disposed asset.
	EventDoubleDisposal
	// EventUnsupportedCapability counts listening attempts on hosts without speech recognition.
	EventUnsupportedCapability
	eventCount
)

// String returns the log key of the event.
func (e Event) String() string {
	switch e {
	case EventInvalidFormat:
		return "invalid_format"
	case EventLoadFailure:
		return "load_failure"
	case EventDoubleDisposal:
		return "double_disposal"
	case EventUnsupportedCapability:
		return "unsupported_capability"
	default:
		return "unknown"
	}
}

// Profiler tracks frame rate, memory statistics and failure counters.
// Frame statistics are logged at a configurable interval; counters are safe for concurrent use.
type Profiler struct {
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	mu     sync.Mutex
	counts [eventCount]int
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	return &Profiler{
		lastTime:       time.Now(),
		updateInterval: time.Second,
	}
}

// Record increments the counter for e and logs it at warn level.
//
// Parameters:
//   - e: the event that occurred
//   - fields: extra structured context for the log line
func (p *Profiler) Record(e Event, fields logrus.Fields) {
	if p == nil || e < 0 || e >= eventCount {
		return
	}
	p.mu.Lock()
	p.counts[e]++
	n := p.counts[e]
	p.mu.Unlock()

	logger.Log.WithFields(fields).WithField("event", e.String()).WithField("count", n).Warn("[Profiler] recoverable failure")
}

// Count returns how many times e has been recorded.
//
// Parameters:
//   - e: the event to query
//
// Returns:
//   - int: the counter value
func (p *Profiler) Count(e Event) int {
	if p == nil || e < 0 || e >= eventCount {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.counts[e]
}

// Tick should be called once per frame to track frame timing.
// Logs FPS, heap usage, allocation rate and GC pauses when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := time.Now()
	elapsed := currentTime.Sub(p.lastTime)

	if elapsed < p.updateInterval {
		return false
	}

	fps := float64(p.frameCount) / elapsed.Seconds()

	runtime.ReadMemStats(&p.memStats)
	allocMB := float64(p.memStats.Alloc) / 1024 / 1024
	sysMB := float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	allocRateMB := float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	var lastPauseUs, maxPauseUs uint64
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		lastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			maxPauseUs = max(maxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	logger.Log.WithFields(logrus.Fields{
		"fps":        fps,
		"heap_mb":    allocMB,
		"alloc_mb_s": allocRateMB,
		"gc":         gcCount,
		"gc_last_us": lastPauseUs,
		"gc_max_us":  maxPauseUs,
		"sys_mb":     sysMB,
	}).Info("[Profiler] frame stats")

	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}
