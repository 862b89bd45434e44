package profiler

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time            { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestProfilerTickReportsPerInterval(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	clock := &fakeClock{t: time.Unix(1000, 0)}
	p := NewProfiler(WithLogger(zap.New(core)), WithInterval(time.Second), WithClock(clock.now))

	for i := 0; i < 3; i++ {
		p.Record(2*time.Millisecond, 5, nil)
		clock.advance(250 * time.Millisecond)
		_, ok := p.Tick()
		assert.False(t, ok)
	}
	p.Record(6*time.Millisecond, 1, errors.New("lost device"))
	clock.advance(250 * time.Millisecond)

	r, ok := p.Tick()
	require.True(t, ok)
	assert.Equal(t, 4, r.Frames)
	assert.InDelta(t, 4.0, r.FPS, 1e-9)
	assert.Equal(t, 16, r.Batches)
	assert.Equal(t, 1, r.Failures)
	assert.Equal(t, 3*time.Millisecond, r.AvgBuildTime)
	assert.Equal(t, uint64(4), p.Frames())

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "profiler", entry.Message)
	assert.Equal(t, int64(16), entry.ContextMap()["batches"])

	// Counters restart with the next interval.
	clock.advance(time.Second)
	r, ok = p.Tick()
	require.True(t, ok)
	assert.Equal(t, 1, r.Frames)
	assert.Zero(t, r.Batches)
	assert.Zero(t, r.Failures)
	assert.Equal(t, uint64(5), p.Frames())
}

func TestProfilerOptionsIgnoreInvalid(t *testing.T) {
	p := NewProfiler(WithLogger(nil), WithInterval(0), WithClock(nil))
	assert.NotNil(t, p.logger)
	assert.Equal(t, time.Second, p.updateInterval)
	assert.NotNil(t, p.now)
}
