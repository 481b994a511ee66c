package stages

import (
	"github.com/charmbracelet/log"
)

// Listener receives state changes from an Engine. Calls are fire-and-forget
// and happen on the goroutine that drives the Engine.
type Listener interface {
	DeviceChanged(tier DeviceTier)
	TransformChanged(t ViewportTransform)
	QualityAdjusted(adj QualityAdjustment)
}

// ListenerFuncs adapts optional functions to a Listener. Nil fields are
// skipped.
type ListenerFuncs struct {
	OnDeviceChange      func(DeviceTier)
	OnTransformChange   func(ViewportTransform)
	OnPerformanceChange func(QualityAdjustment)
}

// DeviceChanged implements Listener.
func (f ListenerFuncs) DeviceChanged(tier DeviceTier) {
	if f.OnDeviceChange != nil {
		f.OnDeviceChange(tier)
	}
}

// TransformChanged implements Listener.
func (f ListenerFuncs) TransformChanged(t ViewportTransform) {
	if f.OnTransformChange != nil {
		f.OnTransformChange(t)
	}
}

// QualityAdjusted implements Listener.
func (f ListenerFuncs) QualityAdjusted(adj QualityAdjustment) {
	if f.OnPerformanceChange != nil {
		f.OnPerformanceChange(adj)
	}
}

type listenerEntry struct {
	id uint32
	l  Listener
}

// ListenerHandle allows removing a listener added with AddListener.
type ListenerHandle struct {
	id uint32
	e  *Engine
}

// Remove unregisters the listener so it no longer fires.
func (h ListenerHandle) Remove() {
	if h.e == nil {
		return
	}
	for i := range h.e.listeners {
		if h.e.listeners[i].id == h.id {
			copy(h.e.listeners[i:], h.e.listeners[i+1:])
			h.e.listeners[len(h.e.listeners)-1] = listenerEntry{}
			h.e.listeners = h.e.listeners[:len(h.e.listeners)-1]
			return
		}
	}
}

// Stats is a diagnostic snapshot of all three subsystems.
type Stats struct {
	Device      DeviceStats
	Transform   TransformStats
	Performance PerformanceStats
}

// DeviceStats describes the classifier.
type DeviceStats struct {
	Tier       DeviceTier
	Forced     Tier
	Detections int
	Quality    RenderQuality
}

// TransformStats describes the viewport.
type TransformStats struct {
	Initialized  bool
	HasTransform bool
	Transform    ViewportTransform
	Updates      int
	StageWidth   float64
	StageHeight  float64
}

// PerformanceStats describes the monitor.
type PerformanceStats struct {
	Metrics    PerformanceMetrics
	AverageFPS float64
	Samples    int
	Windows    int
	Grade      Grade
	Stable     bool
}

// Engine owns a Classifier, a Viewport and a Monitor built from one Config and
// wires their change notifications:
//
//	tier change       -> Monitor ceiling, current quality, DeviceChanged
//	quality adjusted  -> QualityAdjusted
//	transform updated -> TransformChanged
type Engine struct {
	device    *Classifier
	viewport  *Viewport
	monitor   *Monitor
	listeners []listenerEntry
	nextID    uint32
	log       *log.Logger

	quality    RenderQuality
	autoAdjust bool
	disposed   bool
}

// NewEngine creates an Engine. Listeners are registered before the first
// detection runs, so none of the wiring depends on late assignment.
func NewEngine(cfg Config, listeners ...Listener) *Engine {
	if err := cfg.Validate(); err != nil {
		logger().Warn("invalid config, using defaults for conflicting fields", "err", err)
		d := DefaultConfig()
		cfg.TargetFPS, cfg.MinFPS = d.TargetFPS, d.MinFPS
		if cfg.Tier > TierHigh {
			cfg.Tier = TierAuto
		}
	}
	cfg = cfg.withDefaults()

	e := &Engine{
		autoAdjust: !cfg.ManualAdjust,
		log:        cfg.Logger,
	}
	if e.log == nil {
		e.log = logger()
		if cfg.Debug {
			// Own copy so the level change stays local to this engine.
			e.log = e.log.With()
		}
	}
	if cfg.Debug {
		e.log.SetLevel(log.DebugLevel)
	}
	for _, l := range listeners {
		if l != nil {
			e.addListener(l)
		}
	}

	caps := cfg.Capabilities
	if caps == nil {
		caps = RuntimeCapabilities{}
	}
	e.monitor = NewMonitor(MonitorOptions{
		TargetFPS:    cfg.TargetFPS,
		MinFPS:       cfg.MinFPS,
		SampleWindow: cfg.SampleWindow,
		HistorySize:  cfg.HistorySize,
		Clock:        cfg.Clock,
		OnAdjustment: e.qualityAdjusted,
	})
	e.viewport = NewViewport(ViewportOptions{
		StageWidth:  cfg.StageWidth,
		StageHeight: cfg.StageHeight,
		OnChange:    e.transformChanged,
	})
	e.device = NewClassifier(ClassifierOptions{
		Capabilities:  caps,
		PixelRatio:    cfg.PixelRatio,
		Rules:         cfg.Rules,
		HeapThreshold: cfg.HeapThreshold,
		Forced:        cfg.Tier,
		OnChange:      e.deviceChanged,
	})

	tier := e.device.DetectTier()
	e.monitor.SetCeiling(tier)
	e.quality = e.device.RenderQuality()
	e.log.Debug("engine ready", "tier", tier.Tier, "dpr", e.quality.DevicePixelRatio)
	return e
}

// --- Wiring ---

func (e *Engine) deviceChanged(tier DeviceTier) {
	e.monitor.SetCeiling(tier)
	e.quality = e.device.RenderQuality()
	e.log.Debug("device tier changed", "tier", tier.Tier, "max_dpr", tier.MaxDevicePixelRatio)
	for _, entry := range e.listeners {
		entry.l.DeviceChanged(tier)
	}
}

func (e *Engine) transformChanged(t ViewportTransform) {
	e.log.Debug("viewport transform", "scale", t.Scale, "offset_x", t.OffsetX, "offset_y", t.OffsetY)
	for _, entry := range e.listeners {
		entry.l.TransformChanged(t)
	}
}

func (e *Engine) qualityAdjusted(adj QualityAdjustment) {
	e.log.Debug("quality adjustment", "kind", adj.Kind, "dpr", adj.DevicePixelRatio, "texture", adj.TextureScale)
	for _, entry := range e.listeners {
		entry.l.QualityAdjusted(adj)
	}
}

// AddListener registers an extra listener after construction.
func (e *Engine) AddListener(l Listener) ListenerHandle {
	if e.disposed || l == nil {
		return ListenerHandle{}
	}
	return e.addListener(l)
}

func (e *Engine) addListener(l Listener) ListenerHandle {
	e.nextID++
	e.listeners = append(e.listeners, listenerEntry{id: e.nextID, l: l})
	return ListenerHandle{id: e.nextID, e: e}
}

// --- Device ---

// DeviceTier returns the active device tier.
func (e *Engine) DeviceTier() DeviceTier {
	return e.device.DetectTier()
}

// RenderQuality returns the tier's initial quality for the current display.
func (e *Engine) RenderQuality() RenderQuality {
	return e.device.RenderQuality()
}

// CurrentQuality returns the live quality after automatic adjustments.
func (e *Engine) CurrentQuality() RenderQuality {
	return e.quality
}

// SetForcedTier overrides device detection.
func (e *Engine) SetForcedTier(t Tier) {
	e.device.SetForcedTier(t)
}

// ClearForcedTier returns to automatic detection.
func (e *Engine) ClearForcedTier() {
	e.device.ClearForcedTier()
}

// Redetect classifies the platform again.
func (e *Engine) Redetect() DeviceTier {
	return e.device.Redetect()
}

// CanHandle reports whether the active tier supports objectCount objects.
func (e *Engine) CanHandle(objectCount int) bool {
	return e.device.CanHandle(objectCount)
}

// --- Transform ---

// InitializeTransform binds the viewport to a container and surface.
func (e *Engine) InitializeTransform(container Container, surface Surface, observer ResizeObserver) {
	e.viewport.Initialize(container, surface, observer)
}

// UpdateTransform recomputes the viewport transform.
func (e *Engine) UpdateTransform() {
	e.viewport.UpdateTransform()
}

// Transform returns the current viewport transform, if any.
func (e *Engine) Transform() (ViewportTransform, bool) {
	return e.viewport.Transform()
}

// TransformCoordinates converts client coordinates to stage coordinates.
func (e *Engine) TransformCoordinates(clientX, clientY float64) (StageCoordinates, bool) {
	return e.viewport.TransformCoordinates(clientX, clientY)
}

// TransformEvent converts a pointer, mouse or touch event to stage
// coordinates.
func (e *Engine) TransformEvent(ev any) (StageCoordinates, bool) {
	return e.viewport.TransformEvent(ev)
}

// IsWithinStage reports whether a stage point is inside the stage.
func (e *Engine) IsWithinStage(x, y float64) bool {
	return e.viewport.IsWithinStage(x, y)
}

// StageToWorld converts stage coordinates to centered, Y-up world coordinates.
func (e *Engine) StageToWorld(x, y float64) WorldCoordinates {
	return e.viewport.StageToWorld(x, y)
}

// WorldToStage converts world coordinates back to stage coordinates.
func (e *Engine) WorldToStage(x, y float64) StageCoordinates {
	return e.viewport.WorldToStage(x, y)
}

// Viewport returns the engine's viewport.
func (e *Engine) Viewport() *Viewport {
	return e.viewport
}

// --- Performance ---

// Update must be called once per rendered frame. When a sampling window
// closes and automatic adjustment is on, the recommended adjustment is
// applied to the current quality and forwarded to listeners. It returns true
// when a window closed.
func (e *Engine) Update() bool {
	if e.disposed {
		return false
	}
	if !e.monitor.Update() {
		return false
	}
	if e.autoAdjust {
		adj := e.monitor.QualityAdjustment(e.quality)
		e.quality = adj.Apply(e.quality)
	}
	return true
}

// TrackRenderCall counts one draw submission.
func (e *Engine) TrackRenderCall() {
	e.monitor.TrackRenderCall()
}

// SetObjectCount records the number of live objects.
func (e *Engine) SetObjectCount(n int) {
	e.monitor.SetObjectCount(n)
}

// Metrics returns the last window's metrics.
func (e *Engine) Metrics() PerformanceMetrics {
	return e.monitor.Metrics()
}

// AverageFPS returns the rolling average frame rate.
func (e *Engine) AverageFPS() float64 {
	return e.monitor.AverageFPS()
}

// ShouldReduceQuality reports whether quality should drop.
func (e *Engine) ShouldReduceQuality() bool {
	return e.monitor.ShouldReduceQuality()
}

// CanIncreaseQuality reports whether quality may rise.
func (e *Engine) CanIncreaseQuality() bool {
	return e.monitor.CanIncreaseQuality()
}

// QualityAdjustment recommends a change to current and forwards non-empty
// results to listeners.
func (e *Engine) QualityAdjustment(current RenderQuality) QualityAdjustment {
	return e.monitor.QualityAdjustment(current)
}

// IsPerformanceStable reports whether recent frame rates have low variance.
func (e *Engine) IsPerformanceStable() bool {
	return e.monitor.IsPerformanceStable()
}

// PerformanceGrade rates the average frame rate.
func (e *Engine) PerformanceGrade() Grade {
	return e.monitor.PerformanceGrade()
}

// Monitor returns the engine's performance monitor.
func (e *Engine) Monitor() *Monitor {
	return e.monitor
}

// --- Lifecycle ---

// Stats returns a diagnostic snapshot.
func (e *Engine) Stats() Stats {
	t, ok := e.viewport.Transform()
	w, h := e.viewport.StageSize()
	return Stats{
		Device: DeviceStats{
			Tier:       e.device.DetectTier(),
			Forced:     e.device.ForcedTier(),
			Detections: e.device.Detections(),
			Quality:    e.quality,
		},
		Transform: TransformStats{
			Initialized:  e.viewport.IsInitialized(),
			HasTransform: ok,
			Transform:    t,
			Updates:      e.viewport.Updates(),
			StageWidth:   w,
			StageHeight:  h,
		},
		Performance: PerformanceStats{
			Metrics:    e.monitor.Metrics(),
			AverageFPS: e.monitor.AverageFPS(),
			Samples:    len(e.monitor.history),
			Windows:    e.monitor.Windows(),
			Grade:      e.monitor.PerformanceGrade(),
			Stable:     e.monitor.IsPerformanceStable(),
		},
	}
}

// Reset clears performance history and re-detects the device tier. The
// viewport is reactive and keeps its transform.
func (e *Engine) Reset() {
	if e.disposed {
		return
	}
	e.monitor.Reset()
	tier := e.device.Reset()
	e.monitor.SetCeiling(tier)
	e.quality = e.device.RenderQuality()
}

// Dispose cascades to the viewport, classifier and monitor, then drops all
// listeners. Safe to call more than once.
func (e *Engine) Dispose() {
	if e.disposed {
		return
	}
	e.viewport.Dispose()
	e.device.Dispose()
	e.monitor.Dispose()
	e.listeners = nil
	e.disposed = true
}

// IsDisposed reports whether Dispose has been called.
func (e *Engine) IsDisposed() bool {
	return e.disposed
}
