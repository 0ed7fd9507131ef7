package profiler

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/charmbracelet/log"
)

// Stats summarizes the animator updates observed during one reporting interval.
type Stats struct {
	// UpdatesPerSecond is the observed update rate.
	UpdatesPerSecond float64
	// MeanUpdate and MaxUpdate are the average and worst Update durations.
	MeanUpdate time.Duration
	MaxUpdate  time.Duration
	// HeapMB is the live heap size.
	HeapMB float64
	// AllocRateMB is heap churn in MB per second.
	AllocRateMB float64
	// GCCount is the cumulative number of collections; MaxPause is the worst pause since the last report.
	GCCount  uint32
	MaxPause time.Duration
}

// Profiler measures how long animator updates take and logs a summary once per interval.
type Profiler struct {
	logger   *log.Logger
	now      func() time.Time
	interval time.Duration

	count      int
	total      time.Duration
	worst      time.Duration
	lastReport time.Time

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
}

// NewProfiler creates a Profiler reporting once per second by default.
//
// Parameters:
//   - options: a variadic list of ProfilerBuilderOption functions to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		logger:   common.NopLogger(),
		now:      time.Now,
		interval: time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastReport = p.now()
	return p
}

// Time runs fn and records its duration.
//
// Parameters:
//   - fn: the work to measure, usually a closure around Animator.Update
//
// Returns:
//   - Stats: the interval summary, valid when reported is true
//   - bool: true if this call closed an interval and logged it
func (p *Profiler) Time(fn func()) (Stats, bool) {
	start := p.now()
	fn()
	return p.Observe(p.now().Sub(start))
}

// Observe records one update duration and reports when the interval has elapsed.
//
// Parameters:
//   - d: the duration of one update
//
// Returns:
//   - Stats: the interval summary, valid when reported is true
//   - bool: true if this call closed an interval and logged it
func (p *Profiler) Observe(d time.Duration) (stats Stats, reported bool) {
	p.count++
	p.total += d
	p.worst = max(p.worst, d)

	current := p.now()
	elapsed := current.Sub(p.lastReport)
	if elapsed < p.interval || elapsed <= 0 {
		return Stats{}, false
	}

	runtime.ReadMemStats(&p.memStats)
	stats = Stats{
		UpdatesPerSecond: float64(p.count) / elapsed.Seconds(),
		MeanUpdate:       p.total / time.Duration(p.count),
		MaxUpdate:        p.worst,
		HeapMB:           float64(p.memStats.Alloc) / 1024 / 1024,
		AllocRateMB:      float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:          p.memStats.NumGC,
		MaxPause:         p.maxPauseSinceReport(),
	}

	p.logger.Info("animation update",
		"ups", stats.UpdatesPerSecond,
		"mean", stats.MeanUpdate,
		"max", stats.MaxUpdate,
		"heap_mb", stats.HeapMB,
		"alloc_mb_s", stats.AllocRateMB,
		"gc", stats.GCCount,
		"gc_max_pause", stats.MaxPause)

	p.count = 0
	p.total = 0
	p.worst = 0
	p.lastReport = current
	p.lastGCCount = p.memStats.NumGC
	p.lastTotalAlloc = p.memStats.TotalAlloc
	return stats, true
}

// maxPauseSinceReport scans the PauseNs ring, which holds the last 256 pauses.
func (p *Profiler) maxPauseSinceReport() time.Duration {
	gcCount := p.memStats.NumGC
	start := p.lastGCCount
	if gcCount-start > 256 {
		start = gcCount - 256
	}
	var worst uint64
	for i := start; i < gcCount; i++ {
		worst = max(worst, p.memStats.PauseNs[i%256])
	}
	return time.Duration(worst)
}
