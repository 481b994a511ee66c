package stages

import "math"

// ViewportTransform maps the stage onto the viewport with "cover" semantics:
// the stage is scaled until it fills the viewport on both axes, centered, and
// the overflow is cropped.
type ViewportTransform struct {
	Scale   float64
	OffsetX float64
	OffsetY float64
}

// CoverTransform computes the cover transform of a stageW x stageH stage
// inside a viewportW x viewportH viewport.
func CoverTransform(viewportW, viewportH, stageW, stageH float64) ViewportTransform {
	scale := math.Max(viewportW/stageW, viewportH/stageH)
	return ViewportTransform{
		Scale:   scale,
		OffsetX: (viewportW - stageW*scale) / 2,
		OffsetY: (viewportH - stageH*scale) / 2,
	}
}

// ViewportToStage applies the inverse map to a viewport-relative point.
func (t ViewportTransform) ViewportToStage(vx, vy float64) StageCoordinates {
	return StageCoordinates{
		X: (vx - t.OffsetX) / t.Scale,
		Y: (vy - t.OffsetY) / t.Scale,
	}
}

// StageToViewport maps a stage point to viewport-relative coordinates.
func (t ViewportTransform) StageToViewport(sx, sy float64) Vec2 {
	return Vec2{X: sx*t.Scale + t.OffsetX, Y: sy*t.Scale + t.OffsetY}
}

// Container is the element the stage is laid out in. Bounds is in client
// coordinates, so X and Y locate the container's top-left corner.
type Container interface {
	Bounds() Rect
}

// Surface is the drawing surface that gets scaled and repositioned.
type Surface interface {
	ApplyTransform(t ViewportTransform)
}

// ResizeObserver invokes fn whenever the observed container's box changes.
// The returned function stops observation.
type ResizeObserver interface {
	Observe(c Container, fn func()) (stop func())
}

// ViewportOptions configures a Viewport.
type ViewportOptions struct {
	StageWidth  float64
	StageHeight float64
	// OnChange is called after every transform recomputation.
	OnChange func(ViewportTransform)
}

// Viewport keeps the live cover transform between a container and the stage
// and converts between viewport, stage and world coordinates.
type Viewport struct {
	stageW, stageH float64
	onChange       func(ViewportTransform)

	container Container
	surface   Surface
	stop      func()

	transform    ViewportTransform
	hasTransform bool
	updates      int
	disposed     bool
}

// NewViewport creates an unbound Viewport.
func NewViewport(opts ViewportOptions) *Viewport {
	return &Viewport{
		stageW:   orFloat(opts.StageWidth, StageWidth),
		stageH:   orFloat(opts.StageHeight, StageHeight),
		onChange: opts.OnChange,
	}
}

// StageSize returns the stage dimensions.
func (v *Viewport) StageSize() (w, h float64) {
	return v.stageW, v.stageH
}

// Initialize binds the viewport to a container and surface, starts observing
// resizes, and computes the first transform immediately. observer and surface
// may be nil.
func (v *Viewport) Initialize(container Container, surface Surface, observer ResizeObserver) {
	if v.disposed || container == nil {
		return
	}
	v.unbind()
	v.container = container
	v.surface = surface
	if observer != nil {
		v.stop = observer.Observe(container, v.UpdateTransform)
	}
	v.UpdateTransform()
}

// UpdateTransform recomputes the transform from the container's current size.
// It is idempotent and safe to call on every resize notification. Empty boxes
// keep the previous transform.
func (v *Viewport) UpdateTransform() {
	if v.disposed || v.container == nil {
		return
	}
	b := v.container.Bounds()
	if b.Width <= 0 || b.Height <= 0 {
		return
	}
	v.transform = CoverTransform(b.Width, b.Height, v.stageW, v.stageH)
	v.hasTransform = true
	v.updates++

	if v.surface != nil {
		v.surface.ApplyTransform(v.transform)
	}
	if v.onChange != nil {
		v.onChange(v.transform)
	}
}

// Transform returns the current transform. ok is false before the first
// computation and after Dispose.
func (v *Viewport) Transform() (t ViewportTransform, ok bool) {
	return v.transform, v.hasTransform
}

// TransformCoordinates converts client coordinates to stage coordinates.
func (v *Viewport) TransformCoordinates(clientX, clientY float64) (StageCoordinates, bool) {
	if !v.hasTransform || v.container == nil {
		return StageCoordinates{}, false
	}
	b := v.container.Bounds()
	return v.transform.ViewportToStage(clientX-b.X, clientY-b.Y), true
}

// TransformEvent normalizes a pointer, mouse or touch event and converts its
// position to stage coordinates. Unrecognized events return false.
func (v *Viewport) TransformEvent(ev any) (StageCoordinates, bool) {
	x, y, ok := clientPosition(ev)
	if !ok {
		return StageCoordinates{}, false
	}
	return v.TransformCoordinates(x, y)
}

// IsWithinStage reports whether (x, y) lies inside the stage, edges included.
func (v *Viewport) IsWithinStage(x, y float64) bool {
	return x >= 0 && x <= v.stageW && y >= 0 && y <= v.stageH
}

// StageToWorld moves the origin to the stage center and flips Y so world Y
// grows upward.
func (v *Viewport) StageToWorld(x, y float64) WorldCoordinates {
	return WorldCoordinates{X: x - v.stageW/2, Y: -(y - v.stageH/2)}
}

// WorldToStage is the inverse of StageToWorld.
func (v *Viewport) WorldToStage(x, y float64) StageCoordinates {
	return StageCoordinates{X: x + v.stageW/2, Y: -y + v.stageH/2}
}

// Updates returns how many transforms have been computed.
func (v *Viewport) Updates() int {
	return v.updates
}

// IsInitialized reports whether the viewport is bound to a container.
func (v *Viewport) IsInitialized() bool {
	return v.container != nil
}

// IsDisposed reports whether Dispose has been called.
func (v *Viewport) IsDisposed() bool {
	return v.disposed
}

// Dispose stops observing and releases the bindings. Later calls are no-ops.
func (v *Viewport) Dispose() {
	if v.disposed {
		return
	}
	v.unbind()
	v.hasTransform = false
	v.transform = ViewportTransform{}
	v.onChange = nil
	v.disposed = true
}

func (v *Viewport) unbind() {
	if v.stop != nil {
		v.stop()
		v.stop = nil
	}
	v.container = nil
	v.surface = nil
}
