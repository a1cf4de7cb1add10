package memory

import (
	"math"
	"runtime"
	"runtime/debug"
	"sync"
	"time"

	"media-pipeline/internal/logging"
	"media-pipeline/internal/metrics"
)

// Config holds the monitor's thresholds.
type Config struct {
	// MemoryLimitBytes is the soft limit. Zero means use GOMEMLIMIT,
	// or disable backpressure when that is unset too.
	MemoryLimitBytes int64

	// HighWaterMark is the fraction of the limit at which workers
	// should start throttling.
	HighWaterMark float64

	// CriticalWaterMark is the fraction at which task pickup pauses
	// entirely until usage drops back below HighWaterMark.
	CriticalWaterMark float64

	// CheckInterval is how often usage is sampled.
	CheckInterval time.Duration
}

// DefaultConfig returns thresholds tuned for the ingestion workload:
// pause well before the limit, since an in-flight extraction can still
// allocate buffers after the sample that tripped the mark.
func DefaultConfig() Config {
	return Config{
		MemoryLimitBytes:  0,
		HighWaterMark:     0.7,
		CriticalWaterMark: 0.85,
		CheckInterval:     5 * time.Second,
	}
}

// Monitor samples heap usage against the configured limit and gates the
// worker pool: while usage sits above the critical mark, WaitIfPaused
// blocks callers until usage falls below the high water mark again.
type Monitor struct {
	config   Config
	limit    int64
	stopChan chan struct{}

	mu      sync.RWMutex
	current uint64
	paused  bool
	// resume is replaced on every unpause; blocked WaitIfPaused callers
	// hold the channel that was current when they went to sleep.
	resume chan struct{}
}

// NewMonitor creates a monitor. With no explicit limit it falls back to
// GOMEMLIMIT; with neither, backpressure is disabled and every call
// passes through.
func NewMonitor(config Config) *Monitor {
	limit := config.MemoryLimitBytes

	if limit == 0 {
		if goMemLimit := debug.SetMemoryLimit(-1); goMemLimit > 0 && goMemLimit < 1<<62 {
			limit = goMemLimit
			logging.Info("Memory monitor using GOMEMLIMIT: %d bytes (%.1f MB)", limit, float64(limit)/(1024*1024))
		}
	}

	if limit == 0 {
		logging.Warn("Memory monitor: no memory limit configured, backpressure disabled")
	}

	return &Monitor{
		config:   config,
		limit:    limit,
		stopChan: make(chan struct{}),
		resume:   make(chan struct{}),
	}
}

// Start begins sampling. A monitor without a limit never starts.
func (m *Monitor) Start() {
	if m.limit == 0 {
		return
	}
	go m.loop()
}

// Stop ends sampling and releases any worker blocked in WaitIfPaused.
func (m *Monitor) Stop() {
	close(m.stopChan)
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sample()
		case <-m.stopChan:
			return
		}
	}
}

// sample reads heap usage and flips the pause state at the water marks.
// The gap between the marks is hysteresis: a pipeline hovering at the
// critical mark must drop a full band before workers resume.
func (m *Monitor) sample() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)

	m.mu.Lock()
	m.current = stats.Alloc

	usage := float64(stats.Alloc) / float64(m.limit)
	metrics.MemoryUsageRatio.Set(usage)

	switch {
	case usage >= m.config.CriticalWaterMark && !m.paused:
		logging.Warn("Memory critical (%.1f%% of limit), pausing task pickup", usage*100)
		m.pauseLocked()
	case usage < m.config.HighWaterMark && m.paused:
		logging.Info("Memory recovered (%.1f%% of limit), resuming task pickup", usage*100)
		m.resumeLocked()
	}
	m.mu.Unlock()
}

func (m *Monitor) pauseLocked() {
	m.paused = true
	metrics.MemoryPaused.Set(1)
	metrics.MemoryGCPauses.Inc()
	// A forced collection is the fastest path back under the mark.
	go runtime.GC()
}

func (m *Monitor) resumeLocked() {
	m.paused = false
	metrics.MemoryPaused.Set(0)
	close(m.resume)
	m.resume = make(chan struct{})
}

// WaitIfPaused blocks while the monitor is paused and returns true once
// it is safe to pick up work. It returns false only when the monitor is
// stopped, so a blocked worker is never stranded by shutdown.
func (m *Monitor) WaitIfPaused() bool {
	m.mu.RLock()
	if !m.paused {
		m.mu.RUnlock()
		return true
	}
	resume := m.resume
	m.mu.RUnlock()

	select {
	case <-resume:
		return true
	case <-m.stopChan:
		return false
	}
}

// ShouldThrottle reports whether usage is above the high water mark.
// Callers use it to shed optional work (thumbnails, batch extraction)
// before the critical mark forces a full pause.
func (m *Monitor) ShouldThrottle() bool {
	if m.limit == 0 {
		return false
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) >= float64(m.limit)*m.config.HighWaterMark
}

// IsPaused reports whether task pickup is currently paused.
func (m *Monitor) IsPaused() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.paused
}

// GetUsage returns heap usage as a fraction of the limit, 0 when no
// limit is configured.
func (m *Monitor) GetUsage() float64 {
	if m.limit == 0 {
		return 0
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return float64(m.current) / float64(m.limit)
}

// GetStats returns the current allocation, the limit, and their ratio.
func (m *Monitor) GetStats() (current, limit int64, usage float64) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	currentInt64 := int64(math.MaxInt64)
	if m.current <= math.MaxInt64 {
		currentInt64 = int64(m.current)
	}

	var ratio float64
	if m.limit > 0 {
		ratio = float64(m.current) / float64(m.limit)
	}

	return currentInt64, m.limit, ratio
}

// ForceGC triggers an immediate collection.
func (m *Monitor) ForceGC() {
	runtime.GC()
}
