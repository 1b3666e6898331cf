// Package profiler samples frame timing and Go heap statistics and reports them at a fixed interval.
package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/obsidian/engine/logging"
)

// Stats is one reporting window.
type Stats struct {
	FPS          float64
	AvgFrameTime time.Duration
	MaxFrameTime time.Duration
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	MaxGCPause   time.Duration
}

// Profiler tracks frame rate, frame cost and memory statistics.
type Profiler struct {
	now      func() time.Time
	interval time.Duration

	frameCount     int
	frameTotal     time.Duration
	frameMax       time.Duration
	lastTime       time.Time
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a profiler that reports once per second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		now:      time.Now,
		interval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Tick records one frame that took frameTime to produce. When the interval has elapsed the window
// is summarised, logged at info level and reset.
//
// Parameters:
//   - frameTime: the wall time spent producing the frame
//
// Returns:
//   - bool: true if stats were reported this tick
func (p *Profiler) Tick(frameTime time.Duration) bool {
	p.frameCount++
	p.frameTotal += frameTime
	p.frameMax = max(p.frameMax, frameTime)

	current := p.now()
	elapsed := current.Sub(p.lastTime)
	if elapsed < p.interval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	gcCount := p.memStats.NumGC
	var maxPause uint64
	// PauseNs is a ring of the last 256 pauses.
	for i := max(p.lastGCCount, gcCount-min(gcCount, 256)); i < gcCount; i++ {
		maxPause = max(maxPause, p.memStats.PauseNs[i%256])
	}

	s := Stats{
		FPS:          float64(p.frameCount) / elapsed.Seconds(),
		AvgFrameTime: p.frameTotal / time.Duration(p.frameCount),
		MaxFrameTime: p.frameMax,
		HeapMB:       float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:  float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:      gcCount,
		MaxGCPause:   time.Duration(maxPause),
	}
	logging.Info("frame stats",
		"fps", s.FPS,
		"avg", s.AvgFrameTime,
		"max", s.MaxFrameTime,
		"heap_mb", s.HeapMB,
		"alloc_mb_s", s.AllocRateMB,
		"gc", s.GCCount,
		"gc_pause_max", s.MaxGCPause,
	)

	p.last = s
	p.frameCount, p.frameTotal, p.frameMax = 0, 0, 0
	p.lastTime = current
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return true
}

// Last returns the most recently reported window.
func (p *Profiler) Last() Stats {
	return p.last
}

// ProfilerOption is a functional option for configuring a Profiler.
type ProfilerOption func(*Profiler)

// WithInterval sets how often stats are reported.
//
// Parameters:
//   - d: the reporting interval
//
// Returns:
//   - ProfilerOption: option function to apply
func WithInterval(d time.Duration) ProfilerOption {
	return func(p *Profiler) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock replaces the time source.
//
// Parameters:
//   - now: returns the current time
//
// Returns:
//   - ProfilerOption: option function to apply
func WithClock(now func() time.Time) ProfilerOption {
	return func(p *Profiler) {
		if now != nil {
			p.now = now
		}
	}
}
