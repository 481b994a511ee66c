package stages

import (
	"runtime"
	"time"
)

// Monitor defaults.
const (
	DefaultTargetFPS          = 60.0
	DefaultMinFPS             = 45.0
	DefaultSampleWindow       = time.Second
	DefaultHistorySize        = 30
	DefaultReduceMinSamples   = 5
	DefaultIncreaseMinSamples = 10
	DefaultIncreaseMargin     = 5.0
	DefaultStabilityVariance  = 100.0
	stabilitySamples          = 5
)

// PerformanceMetrics is the snapshot taken at the end of each sampling window.
type PerformanceMetrics struct {
	FPS           float64
	FrameTimeMs   float64
	MemoryUsageMB float64
	RenderCalls   int
	ObjectCount   int
}

// MonitorOptions configures a Monitor. Zero values select the defaults.
type MonitorOptions struct {
	TargetFPS          float64
	MinFPS             float64
	SampleWindow       time.Duration
	HistorySize        int
	ReduceMinSamples   int
	IncreaseMinSamples int
	IncreaseMargin     float64
	StabilityVariance  float64

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// MemoryUsage returns the heap in use in bytes. Defaults to the Go
	// runtime's live heap.
	MemoryUsage func() uint64
	// OnAdjustment is called with every non-empty adjustment computed by
	// QualityAdjustment.
	OnAdjustment func(QualityAdjustment)
}

// Monitor samples frame timing, keeps a rolling history of frame rates and
// recommends quality changes. Reductions need a short confirmation window and
// increases a longer one, so quality does not flap between levels.
type Monitor struct {
	targetFPS          float64
	minFPS             float64
	window             time.Duration
	historySize        int
	reduceMinSamples   int
	increaseMinSamples int
	increaseMargin     float64
	stabilityVariance  float64
	clock              func() time.Time
	memoryUsage        func() uint64
	onAdjustment       func(QualityAdjustment)

	ceiling    DeviceTier
	hasCeiling bool

	started     bool
	windowStart time.Time
	frames      int
	renderCalls int
	objectCount int
	history     []float64
	metrics     PerformanceMetrics
	windows     int
	disposed    bool
}

// NewMonitor creates a Monitor.
func NewMonitor(opts MonitorOptions) *Monitor {
	m := &Monitor{
		targetFPS:          orFloat(opts.TargetFPS, DefaultTargetFPS),
		minFPS:             orFloat(opts.MinFPS, DefaultMinFPS),
		window:             opts.SampleWindow,
		historySize:        orInt(opts.HistorySize, DefaultHistorySize),
		reduceMinSamples:   orInt(opts.ReduceMinSamples, DefaultReduceMinSamples),
		increaseMinSamples: orInt(opts.IncreaseMinSamples, DefaultIncreaseMinSamples),
		increaseMargin:     orFloat(opts.IncreaseMargin, DefaultIncreaseMargin),
		stabilityVariance:  orFloat(opts.StabilityVariance, DefaultStabilityVariance),
		clock:              opts.Clock,
		memoryUsage:        opts.MemoryUsage,
		onAdjustment:       opts.OnAdjustment,
	}
	if m.window <= 0 {
		m.window = DefaultSampleWindow
	}
	if m.clock == nil {
		m.clock = time.Now
	}
	if m.memoryUsage == nil {
		m.memoryUsage = runtimeHeapInUse
	}
	m.history = make([]float64, 0, m.historySize)
	m.metrics = m.defaultMetrics()
	return m
}

func (m *Monitor) defaultMetrics() PerformanceMetrics {
	return PerformanceMetrics{
		FPS:         m.targetFPS,
		FrameTimeMs: 1000 / m.targetFPS,
		ObjectCount: m.objectCount,
	}
}

// Update must be called exactly once per rendered frame. It returns true when
// the call closed a sampling window.
func (m *Monitor) Update() bool {
	if m.disposed {
		return false
	}
	now := m.clock()
	if !m.started {
		m.started = true
		m.windowStart = now
		return false
	}
	m.frames++

	elapsed := now.Sub(m.windowStart)
	if elapsed < m.window {
		return false
	}

	elapsedMs := float64(elapsed) / float64(time.Millisecond)
	fps := float64(m.frames) * 1000 / elapsedMs
	m.recordSample(fps)

	m.metrics.FPS = fps
	m.metrics.FrameTimeMs = 0
	if fps > 0 {
		m.metrics.FrameTimeMs = 1000 / fps
	}
	m.metrics.RenderCalls = m.renderCalls
	m.metrics.ObjectCount = m.objectCount
	m.metrics.MemoryUsageMB = float64(m.memoryUsage()) / 1024 / 1024

	m.frames = 0
	m.renderCalls = 0
	m.windowStart = now
	m.windows++
	return true
}

// recordSample appends fps to the history, evicting the oldest sample once
// the history is full.
func (m *Monitor) recordSample(fps float64) {
	if len(m.history) >= m.historySize {
		copy(m.history, m.history[1:])
		m.history = m.history[:len(m.history)-1]
	}
	m.history = append(m.history, fps)
}

// TrackRenderCall counts one draw submission in the current window.
func (m *Monitor) TrackRenderCall() {
	if m.disposed {
		return
	}
	m.renderCalls++
}

// SetObjectCount records the number of live objects.
func (m *Monitor) SetObjectCount(n int) {
	if m.disposed {
		return
	}
	m.objectCount = n
}

// Metrics returns the snapshot from the last closed window.
func (m *Monitor) Metrics() PerformanceMetrics {
	return m.metrics
}

// Samples returns a copy of the frame-rate history, oldest first.
func (m *Monitor) Samples() []float64 {
	out := make([]float64, len(m.history))
	copy(out, m.history)
	return out
}

// AverageFPS returns the mean of the history, or the target when empty.
func (m *Monitor) AverageFPS() float64 {
	if len(m.history) == 0 {
		return m.targetFPS
	}
	var sum float64
	for _, fps := range m.history {
		sum += fps
	}
	return sum / float64(len(m.history))
}

// ShouldReduceQuality reports whether the average is below the floor with
// enough samples to rule out startup noise.
func (m *Monitor) ShouldReduceQuality() bool {
	return len(m.history) >= m.reduceMinSamples && m.AverageFPS() < m.minFPS
}

// CanIncreaseQuality reports whether the average is within the margin of the
// target with the longer confirmation history.
func (m *Monitor) CanIncreaseQuality() bool {
	return len(m.history) >= m.increaseMinSamples && m.AverageFPS() > m.targetFPS-m.increaseMargin
}

// SetCeiling limits increases to the tier's maximum ratio and texture quality.
func (m *Monitor) SetCeiling(tier DeviceTier) {
	m.ceiling = tier
	m.hasCeiling = true
}

// QualityAdjustment recommends a change to current. The result is empty when
// neither threshold holds.
func (m *Monitor) QualityAdjustment(current RenderQuality) QualityAdjustment {
	var adj QualityAdjustment
	switch {
	case m.ShouldReduceQuality():
		adj = reduceQuality(current)
	case m.CanIncreaseQuality():
		var maxRatio, maxTexture float64
		if m.hasCeiling {
			maxRatio, maxTexture = m.ceiling.MaxDevicePixelRatio, m.ceiling.TextureQuality
		}
		adj = increaseQuality(current, maxRatio, maxTexture)
	}
	if !adj.IsEmpty() && m.onAdjustment != nil && !m.disposed {
		m.onAdjustment(adj)
	}
	return adj
}

// IsPerformanceStable reports whether the last few samples have low variance.
// Too few samples count as stable.
func (m *Monitor) IsPerformanceStable() bool {
	if len(m.history) < stabilitySamples {
		return true
	}
	return variance(m.history[len(m.history)-stabilitySamples:]) < m.stabilityVariance
}

// PerformanceGrade rates the average frame rate.
func (m *Monitor) PerformanceGrade() Grade {
	avg := m.AverageFPS()
	switch {
	case avg >= 55:
		return GradeExcellent
	case avg >= 45:
		return GradeGood
	case avg >= 30:
		return GradeFair
	default:
		return GradePoor
	}
}

// Windows returns the number of sampling windows closed since the last reset.
func (m *Monitor) Windows() int {
	return m.windows
}

// Reset clears the history, window counters and metrics. The object count is
// kept since it reflects scene state rather than timing.
func (m *Monitor) Reset() {
	m.started = false
	m.frames = 0
	m.renderCalls = 0
	m.windows = 0
	m.history = m.history[:0]
	m.metrics = m.defaultMetrics()
}

// Dispose resets the monitor and turns every later call into a no-op.
func (m *Monitor) Dispose() {
	m.Reset()
	m.disposed = true
	m.onAdjustment = nil
}

// variance returns the population variance of samples.
func variance(samples []float64) float64 {
	if len(samples) == 0 {
		return 0
	}
	var mean float64
	for _, s := range samples {
		mean += s
	}
	mean /= float64(len(samples))
	var sum float64
	for _, s := range samples {
		d := s - mean
		sum += d * d
	}
	return sum / float64(len(samples))
}

func runtimeHeapInUse() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.Alloc
}

func orFloat(v, def float64) float64 {
	if v > 0 {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}
