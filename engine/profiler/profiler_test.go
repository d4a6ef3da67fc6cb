package profiler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordCounts(t *testing.T) {
	p := NewProfiler()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p.Record(EventDoubleDisposal, nil)
		}()
	}
	wg.Wait()
	p.Record(EventLoadFailure, nil)

	assert.Equal(t, 10, p.Count(EventDoubleDisposal))
	assert.Equal(t, 1, p.Count(EventLoadFailure))
	assert.Equal(t, 0, p.Count(EventInvalidFormat))
	assert.Equal(t, 0, p.Count(Event(42)))
}

func TestNilProfilerIsSafe(t *testing.T) {
	var p *Profiler
	p.Record(EventInvalidFormat, nil)
	assert.Equal(t, 0, p.Count(EventInvalidFormat))
}

func TestTickInterval(t *testing.T) {
	p := NewProfiler()
	p.updateInterval = time.Hour
	assert.False(t, p.Tick())
	p.updateInterval = 0
	assert.True(t, p.Tick())
	assert.Equal(t, 0, p.frameCount)
}
