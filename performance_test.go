package stages

import (
	"testing"
	"time"
)

func newTestMonitor(opts MonitorOptions) (*Monitor, *fakeClock) {
	clk := newFakeClock()
	opts.Clock = clk.Now
	if opts.MemoryUsage == nil {
		opts.MemoryUsage = func() uint64 { return 64 << 20 }
	}
	return NewMonitor(opts), clk
}

func feed(m *Monitor, samples ...float64) {
	for _, s := range samples {
		m.recordSample(s)
	}
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

// runFrames calls Update n times, advancing the clock by step before each.
func runFrames(m *Monitor, clk *fakeClock, n int, step time.Duration) int {
	closed := 0
	for i := 0; i < n; i++ {
		clk.Advance(step)
		if m.Update() {
			closed++
		}
	}
	return closed
}

func TestMonitorDefaults(t *testing.T) {
	m, _ := newTestMonitor(MonitorOptions{})
	if got := m.AverageFPS(); got != DefaultTargetFPS {
		t.Errorf("AverageFPS = %f, want %f", got, DefaultTargetFPS)
	}
	met := m.Metrics()
	if met.FPS != 60 || !approxEqual(met.FrameTimeMs, 1000.0/60, epsilon) {
		t.Errorf("Metrics = %+v, want 60fps defaults", met)
	}
	if m.ShouldReduceQuality() || m.CanIncreaseQuality() {
		t.Error("empty history should not trigger adjustments")
	}
	if !m.IsPerformanceStable() {
		t.Error("empty history should count as stable")
	}
}

func TestMonitorFirstUpdateOpensWindow(t *testing.T) {
	m, clk := newTestMonitor(MonitorOptions{})
	if m.Update() {
		t.Fatal("first Update should not close a window")
	}
	clk.Advance(2 * time.Second)
	if !m.Update() {
		t.Fatal("Update after 2s should close a window")
	}
	if got := m.Samples(); len(got) != 1 || !approxEqual(got[0], 0.5, epsilon) {
		t.Errorf("Samples = %v, want [0.5]", got)
	}
}

func TestMonitorSamplingWindow(t *testing.T) {
	m, clk := newTestMonitor(MonitorOptions{})
	m.Update()
	m.SetObjectCount(42)
	for i := 0; i < 7; i++ {
		m.TrackRenderCall()
	}

	if closed := runFrames(m, clk, 49, 20*time.Millisecond); closed != 0 {
		t.Fatalf("closed %d windows before 1s", closed)
	}
	if closed := runFrames(m, clk, 1, 20*time.Millisecond); closed != 1 {
		t.Fatalf("closed %d windows at 1s, want 1", closed)
	}

	met := m.Metrics()
	if !approxEqual(met.FPS, 50, epsilon) {
		t.Errorf("FPS = %f, want 50", met.FPS)
	}
	if !approxEqual(met.FrameTimeMs, 20, epsilon) {
		t.Errorf("FrameTimeMs = %f, want 20", met.FrameTimeMs)
	}
	if met.RenderCalls != 7 {
		t.Errorf("RenderCalls = %d, want 7", met.RenderCalls)
	}
	if met.ObjectCount != 42 {
		t.Errorf("ObjectCount = %d, want 42", met.ObjectCount)
	}
	if !approxEqual(met.MemoryUsageMB, 64, epsilon) {
		t.Errorf("MemoryUsageMB = %f, want 64", met.MemoryUsageMB)
	}
	if m.Windows() != 1 {
		t.Errorf("Windows = %d, want 1", m.Windows())
	}

	// Counters restart with the next window.
	runFrames(m, clk, 25, 40*time.Millisecond)
	if met := m.Metrics(); met.RenderCalls != 0 || !approxEqual(met.FPS, 25, epsilon) {
		t.Errorf("second window = %+v, want 25fps and no render calls", met)
	}
}

func TestMonitorHistoryCap(t *testing.T) {
	m, _ := newTestMonitor(MonitorOptions{})
	for i := 0; i < 40; i++ {
		m.recordSample(float64(i))
	}
	got := m.Samples()
	if len(got) != DefaultHistorySize {
		t.Fatalf("len(Samples) = %d, want %d", len(got), DefaultHistorySize)
	}
	if got[0] != 10 || got[len(got)-1] != 39 {
		t.Errorf("Samples = [%v .. %v], want [10 .. 39]", got[0], got[len(got)-1])
	}
}

func TestShouldReduceQuality(t *testing.T) {
	m, _ := newTestMonitor(MonitorOptions{})
	feed(m, repeat(40, 4)...)
	if m.ShouldReduceQuality() {
		t.Error("4 samples should not be enough to reduce")
	}
	feed(m, 40)
	if !m.ShouldReduceQuality() {
		t.Error("5 samples at 40fps should reduce")
	}
}

func TestShouldReduceQualityAtFloor(t *testing.T) {
	m, _ := newTestMonitor(MonitorOptions{})
	feed(m, repeat(45, 10)...)
	if m.ShouldReduceQuality() {
		t.Error("average equal to the floor should not reduce")
	}
}

func TestCanIncreaseQuality(t *testing.T) {
	m, _ := newTestMonitor(MonitorOptions{})
	feed(m, repeat(58, 9)...)
	if m.CanIncreaseQuality() {
		t.Error("9 samples should not be enough to increase")
	}
	feed(m, 58)
	if !m.CanIncreaseQuality() {
		t.Error("10 samples at 58fps should increase")
	}

	m.Reset()
	feed(m, repeat(55, 10)...)
	if m.CanIncreaseQuality() {
		t.Error("55fps is not above target minus margin")
	}
}

func TestQualityAdjustmentReduce(t *testing.T) {
	var got []QualityAdjustment
	m, _ := newTestMonitor(MonitorOptions{OnAdjustment: func(a QualityAdjustment) { got = append(got, a) }})
	feed(m, repeat(30, 5)...)

	adj := m.QualityAdjustment(RenderQuality{DevicePixelRatio: 2, TextureScale: 1, Antialias: true, Shadows: true})
	if adj.Kind != AdjustReduce {
		t.Fatalf("Kind = %v, want reduce", adj.Kind)
	}
	if !approxEqual(adj.DevicePixelRatio, 1.6, epsilon) || !approxEqual(adj.TextureScale, 0.8, epsilon) || !adj.DisableEffects {
		t.Errorf("adj = %+v", adj)
	}
	if len(got) != 1 {
		t.Errorf("OnAdjustment called %d times, want 1", len(got))
	}
}

func TestQualityAdjustmentEmpty(t *testing.T) {
	called := false
	m, _ := newTestMonitor(MonitorOptions{OnAdjustment: func(QualityAdjustment) { called = true }})
	feed(m, repeat(50, 10)...)
	adj := m.QualityAdjustment(RenderQuality{DevicePixelRatio: 1, TextureScale: 1})
	if !adj.IsEmpty() {
		t.Errorf("adj = %+v, want empty", adj)
	}
	if called {
		t.Error("OnAdjustment should not fire for an empty adjustment")
	}
}

func TestQualityAdjustmentCeiling(t *testing.T) {
	m, _ := newTestMonitor(MonitorOptions{})
	m.SetCeiling(TierConfig(TierLow))
	feed(m, repeat(60, 10)...)
	adj := m.QualityAdjustment(RenderQuality{DevicePixelRatio: 0.9, TextureScale: 0.4})
	if adj.Kind != AdjustIncrease {
		t.Fatalf("Kind = %v, want increase", adj.Kind)
	}
	if !approxEqual(adj.DevicePixelRatio, 0.99, epsilon) {
		t.Errorf("DevicePixelRatio = %v, want 0.99", adj.DevicePixelRatio)
	}
	if !approxEqual(adj.TextureScale, 0.44, epsilon) {
		t.Errorf("TextureScale = %v, want 0.44", adj.TextureScale)
	}
}

func TestQualityAdjustmentAtCeilingIsEmpty(t *testing.T) {
	calls := 0
	m, _ := newTestMonitor(MonitorOptions{OnAdjustment: func(QualityAdjustment) { calls++ }})
	m.SetCeiling(TierConfig(TierLow))
	feed(m, repeat(60, 10)...)
	adj := m.QualityAdjustment(RenderQuality{DevicePixelRatio: 1, TextureScale: 0.5})
	if !adj.IsEmpty() {
		t.Errorf("adj = %+v, want empty at low-tier ceiling", adj)
	}
	if calls != 0 {
		t.Errorf("OnAdjustment called %d times at ceiling", calls)
	}
}

func TestVariance(t *testing.T) {
	if v := variance([]float64{60, 60, 60}); v != 0 {
		t.Errorf("variance = %f, want 0", v)
	}
	if v := variance([]float64{50, 70}); !approxEqual(v, 100, epsilon) {
		t.Errorf("variance = %f, want 100", v)
	}
	if v := variance(nil); v != 0 {
		t.Errorf("variance(nil) = %f, want 0", v)
	}
}

func TestIsPerformanceStable(t *testing.T) {
	m, _ := newTestMonitor(MonitorOptions{})
	feed(m, 10, 90, 10, 90)
	if !m.IsPerformanceStable() {
		t.Error("fewer than 5 samples should count as stable")
	}
	feed(m, 10)
	if m.IsPerformanceStable() {
		t.Error("wild samples should be unstable")
	}
	feed(m, repeat(60, 5)...)
	if !m.IsPerformanceStable() {
		t.Error("only the last 5 samples should count")
	}
	m.Reset()
	feed(m, 50, 60, 50, 60, 50)
	// mean 54, variance 24
	if !m.IsPerformanceStable() {
		t.Error("small jitter should be stable")
	}
}

func TestPerformanceGrade(t *testing.T) {
	cases := []struct {
		fps  float64
		want Grade
	}{
		{60, GradeExcellent},
		{55, GradeExcellent},
		{54.9, GradeGood},
		{45, GradeGood},
		{44, GradeFair},
		{30, GradeFair},
		{29, GradePoor},
	}
	for _, c := range cases {
		m, _ := newTestMonitor(MonitorOptions{})
		feed(m, c.fps)
		if got := m.PerformanceGrade(); got != c.want {
			t.Errorf("grade(%v) = %v, want %v", c.fps, got, c.want)
		}
	}
}

func TestMonitorReset(t *testing.T) {
	m, clk := newTestMonitor(MonitorOptions{})
	m.SetObjectCount(12)
	m.Update()
	runFrames(m, clk, 50, 20*time.Millisecond)
	m.Reset()

	if len(m.Samples()) != 0 || m.Windows() != 0 {
		t.Error("Reset should clear history and windows")
	}
	if m.Metrics().FPS != DefaultTargetFPS {
		t.Errorf("FPS after Reset = %f, want target", m.Metrics().FPS)
	}
	if m.Metrics().ObjectCount != 12 {
		t.Errorf("ObjectCount after Reset = %d, want 12", m.Metrics().ObjectCount)
	}
	if m.Update() {
		t.Error("first Update after Reset should only open a window")
	}
}

func TestMonitorDispose(t *testing.T) {
	called := false
	m, clk := newTestMonitor(MonitorOptions{OnAdjustment: func(QualityAdjustment) { called = true }})
	m.Dispose()
	m.Update()
	if closed := runFrames(m, clk, 100, 20*time.Millisecond); closed != 0 {
		t.Errorf("disposed monitor closed %d windows", closed)
	}
	feed(m, repeat(10, 5)...)
	m.QualityAdjustment(RenderQuality{DevicePixelRatio: 1, TextureScale: 1})
	if called {
		t.Error("disposed monitor should not notify")
	}
}
