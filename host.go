package stages

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// --- Window ---

type windowObserver struct {
	id uint32
	fn func()
}

// Window is a Container and ResizeObserver for the Ebitengine window. Its box
// is fed from Game.Layout; observers fire only when the size changes.
type Window struct {
	bounds    Rect
	observers []windowObserver
	nextID    uint32
}

// NewWindow creates a window container of the given size.
func NewWindow(width, height float64) *Window {
	return &Window{bounds: Rect{Width: width, Height: height}}
}

// Bounds implements Container.
func (w *Window) Bounds() Rect {
	return w.bounds
}

// Observe implements ResizeObserver. Only the window itself can be observed.
func (w *Window) Observe(c Container, fn func()) (stop func()) {
	if c != Container(w) || fn == nil {
		return func() {}
	}
	w.nextID++
	id := w.nextID
	w.observers = append(w.observers, windowObserver{id: id, fn: fn})
	return func() { w.removeObserver(id) }
}

func (w *Window) removeObserver(id uint32) {
	for i := range w.observers {
		if w.observers[i].id == id {
			copy(w.observers[i:], w.observers[i+1:])
			w.observers[len(w.observers)-1] = windowObserver{}
			w.observers = w.observers[:len(w.observers)-1]
			return
		}
	}
}

// Resize sets the window size and notifies observers if it changed. It
// reports whether a notification was sent.
func (w *Window) Resize(width, height float64) bool {
	if width == w.bounds.Width && height == w.bounds.Height {
		return false
	}
	w.bounds.Width, w.bounds.Height = width, height
	// Observers may unsubscribe while being notified.
	obs := append([]windowObserver(nil), w.observers...)
	for _, o := range obs {
		o.fn()
	}
	return true
}

// --- Host ---

// HostOptions configures a Host.
type HostOptions struct {
	// Update runs once per tick after input has been processed.
	Update func() error
	// Draw renders the stage. geoM maps stage units to pixels of stage.
	Draw func(stage *ebiten.Image, geoM ebiten.GeoM)
	// ShowStats draws the diagnostic overlay on top of the frame.
	ShowStats bool
	// Capturer receives pointer capture requests; may be nil.
	Capturer PointerCapturer
}

// Host runs an Engine inside an Ebitengine game loop. It implements
// ebiten.Game: Layout feeds window resizes to the viewport, Draw drives the
// per-frame monitor update, and quality changes reach the StageSurface
// through an engine listener.
type Host struct {
	engine  *Engine
	window  *Window
	surface *StageSurface
	input   InputPoller
	pointer *PointerTracker
	stats   *StatsOverlay
	opts    HostOptions
	handle  ListenerHandle
}

var _ ebiten.Game = (*Host)(nil)

// NewHost wires engine to a new Window and StageSurface.
func NewHost(engine *Engine, opts HostOptions) *Host {
	w, h := engine.Viewport().StageSize()
	host := &Host{
		engine:  engine,
		window:  NewWindow(0, 0),
		surface: NewStageSurface(w, h),
		opts:    opts,
	}
	if opts.ShowStats {
		host.stats = NewStatsOverlay()
	}
	host.surface.ApplyQuality(engine.CurrentQuality())
	host.handle = engine.AddListener(ListenerFuncs{
		OnDeviceChange: func(DeviceTier) {
			host.surface.ApplyQuality(engine.RenderQuality())
		},
		OnPerformanceChange: func(adj QualityAdjustment) {
			host.surface.ApplyQuality(adj.Apply(host.surface.Quality()))
		},
	})
	engine.InitializeTransform(host.window, host.surface, host.window)
	host.pointer = NewPointerTracker(engine.Viewport(), opts.Capturer)
	return host
}

// Engine returns the hosted engine.
func (h *Host) Engine() *Engine {
	return h.engine
}

// Surface returns the stage surface.
func (h *Host) Surface() *StageSurface {
	return h.surface
}

// Window returns the window container.
func (h *Host) Window() *Window {
	return h.window
}

// Pointer returns the primary pointer state in stage coordinates.
func (h *Host) Pointer() PointerState {
	return h.pointer.State()
}

// Update implements ebiten.Game.
func (h *Host) Update() error {
	dt := float32(1.0 / float64(ebiten.TPS()))
	h.surface.Update(dt)
	h.pointer.Handle(h.input.Poll())
	if h.stats != nil {
		h.stats.Update(float64(dt), h.engine)
	}
	if h.opts.Update != nil {
		return h.opts.Update()
	}
	return nil
}

// Draw implements ebiten.Game. It counts as one rendered frame.
func (h *Host) Draw(screen *ebiten.Image) {
	h.engine.Update()
	stage := h.surface.Begin()
	if h.opts.Draw != nil {
		h.opts.Draw(stage, h.surface.StageGeoM())
	}
	h.engine.TrackRenderCall()
	h.surface.Draw(screen)
	if h.stats != nil {
		h.stats.Draw(screen)
	}
}

// Layout implements ebiten.Game.
func (h *Host) Layout(outsideWidth, outsideHeight int) (int, int) {
	h.window.Resize(float64(outsideWidth), float64(outsideHeight))
	return outsideWidth, outsideHeight
}

// Dispose detaches from the engine and frees the surface. The engine itself
// is left to its owner.
func (h *Host) Dispose() {
	h.handle.Remove()
	h.surface.Dispose()
}

// RunConfig holds window settings for Run.
type RunConfig struct {
	Title         string
	Width, Height int
}

// Run opens a resizable window and runs the host until it is closed, then
// disposes the host and its engine.
func Run(h *Host, cfg RunConfig) error {
	if cfg.Width > 0 && cfg.Height > 0 {
		ebiten.SetWindowSize(cfg.Width, cfg.Height)
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	defer h.engine.Dispose()
	defer h.Dispose()
	return ebiten.RunGame(h)
}
