package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func TestTick_ReportsAfterInterval(t *testing.T) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler(WithClock(clock.now), WithInterval(time.Second))

	for range 9 {
		clock.t = clock.t.Add(100 * time.Millisecond)
		assert.False(t, p.Tick(10*time.Millisecond))
	}
	clock.t = clock.t.Add(100 * time.Millisecond)
	require.True(t, p.Tick(30*time.Millisecond))

	s := p.Last()
	assert.InDelta(t, 10, s.FPS, 1e-9)
	assert.Equal(t, 12*time.Millisecond, s.AvgFrameTime)
	assert.Equal(t, 30*time.Millisecond, s.MaxFrameTime)
	assert.Positive(t, s.HeapMB)

	clock.t = clock.t.Add(100 * time.Millisecond)
	assert.False(t, p.Tick(time.Millisecond))
}
