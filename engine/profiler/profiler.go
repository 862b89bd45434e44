package profiler

import (
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Profiler tracks frame rate, batch throughput and memory statistics of the frame
// pipeline. It reports to its logger at a configurable interval.
type Profiler struct {
	mu *sync.Mutex

	logger         *zap.Logger
	now            func() time.Time
	updateInterval time.Duration

	frames      int
	totalFrames uint64
	batches     int
	failures    int
	buildTime   time.Duration
	lastTime    time.Time

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// Report is one interval's worth of statistics, as logged by Tick.
type Report struct {
	FPS          float64
	Frames       int
	Batches      int
	Failures     int
	AvgBuildTime time.Duration
	HeapMB       float64
	AllocRateMB  float64
	GCCount      uint32
	LastPauseUs  uint64
	MaxPauseUs   uint64
	SysMB        float64
}

// NewProfiler creates a new Profiler.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		mu:             &sync.Mutex{},
		logger:         zap.NewNop(),
		now:            time.Now,
		updateInterval: time.Second,
	}
	for _, option := range options {
		option(p)
	}
	p.lastTime = p.now()
	return p
}

// Record accounts one built frame. It is safe to call from any goroutine.
//
// Parameters:
//   - build: how long building and rendering the frame took
//   - batches: how many draw batches the frame produced
//   - err: the frame error, if any
func (p *Profiler) Record(build time.Duration, batches int, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.buildTime += build
	p.batches += batches
	if err != nil {
		p.failures++
	}
}

// Frames returns the number of ticks since the profiler was created.
func (p *Profiler) Frames() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.totalFrames
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - Report: the statistics of the interval that just closed
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() (Report, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frames++
	p.totalFrames++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return Report{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	r := Report{
		FPS:      float64(p.frames) / elapsed.Seconds(),
		Frames:   p.frames,
		Batches:  p.batches,
		Failures: p.failures,
		// Alloc is live heap; Sys is the process footprint.
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}
	if p.frames > 0 {
		r.AvgBuildTime = p.buildTime / time.Duration(p.frames)
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses.
		r.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			r.MaxPauseUs = max(r.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}

	p.logger.Info("profiler",
		zap.Float64("fps", r.FPS),
		zap.Int("frames", r.Frames),
		zap.Int("batches", r.Batches),
		zap.Int("failures", r.Failures),
		zap.Duration("avg_build", r.AvgBuildTime),
		zap.Float64("heap_mb", r.HeapMB),
		zap.Float64("alloc_rate_mb", r.AllocRateMB),
		zap.Uint32("gc", r.GCCount),
		zap.Uint64("gc_last_pause_us", r.LastPauseUs),
		zap.Uint64("gc_max_pause_us", r.MaxPauseUs),
		zap.Float64("sys_mb", r.SysMB),
	)

	p.frames = 0
	p.batches = 0
	p.failures = 0
	p.buildTime = 0
	p.lastTime = currentTime
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return r, true
}
