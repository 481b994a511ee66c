package stages

import "math"

// Render quality bounds. Live quality never leaves these ranges.
const (
	MinDevicePixelRatio = 0.5
	MaxDevicePixelRatio = 2.0
	MinTextureScale     = 0.3
	MaxTextureScale     = 1.0
)

// Multipliers applied by a single quality step.
const (
	reduceFactor   = 0.8
	increaseFactor = 1.1
)

// RenderQuality is the set of knobs the renderer applies each frame.
type RenderQuality struct {
	DevicePixelRatio float64
	Antialias        bool
	Shadows          bool
	TextureScale     float64
}

// Clamp returns q with DevicePixelRatio and TextureScale forced into their
// valid ranges.
func (q RenderQuality) Clamp() RenderQuality {
	q.DevicePixelRatio = clamp(q.DevicePixelRatio, MinDevicePixelRatio, MaxDevicePixelRatio)
	q.TextureScale = clamp(q.TextureScale, MinTextureScale, MaxTextureScale)
	return q
}

// AdjustmentKind says which way a QualityAdjustment moves quality.
type AdjustmentKind uint8

const (
	AdjustNone     AdjustmentKind = iota // leave quality as is
	AdjustReduce                         // frame rate below the floor
	AdjustIncrease                       // frame rate comfortably near target
)

// String returns the lowercase kind name.
func (k AdjustmentKind) String() string {
	switch k {
	case AdjustReduce:
		return "reduce"
	case AdjustIncrease:
		return "increase"
	default:
		return "none"
	}
}

// QualityAdjustment is a partial update of a RenderQuality recommended by the
// Monitor. A reduction sets new ratio and texture scale and turns antialiasing
// and shadows off. An increase sets ratio and texture scale only; effects are
// never switched back on automatically.
type QualityAdjustment struct {
	Kind             AdjustmentKind
	DevicePixelRatio float64
	TextureScale     float64
	DisableEffects   bool
}

// IsEmpty reports whether the adjustment changes nothing.
func (a QualityAdjustment) IsEmpty() bool {
	return a.Kind == AdjustNone
}

// Apply returns q with the adjustment merged in.
func (a QualityAdjustment) Apply(q RenderQuality) RenderQuality {
	if a.IsEmpty() {
		return q
	}
	q.DevicePixelRatio = a.DevicePixelRatio
	q.TextureScale = a.TextureScale
	if a.DisableEffects {
		q.Antialias = false
		q.Shadows = false
	}
	return q.Clamp()
}

// reduceQuality scales ratio and texture down one step and disables effects.
func reduceQuality(q RenderQuality) QualityAdjustment {
	return QualityAdjustment{
		Kind:             AdjustReduce,
		DevicePixelRatio: clamp(q.DevicePixelRatio*reduceFactor, MinDevicePixelRatio, MaxDevicePixelRatio),
		TextureScale:     clamp(q.TextureScale*reduceFactor, MinTextureScale, MaxTextureScale),
		DisableEffects:   true,
	}
}

// increaseQuality scales ratio and texture up one step, capped by ceiling.
// A zero ceiling value means only the global maximum applies. The result is
// empty when q already sits at the ceiling.
func increaseQuality(q RenderQuality, maxRatio, maxTexture float64) QualityAdjustment {
	if maxRatio <= 0 {
		maxRatio = MaxDevicePixelRatio
	}
	if maxTexture <= 0 {
		maxTexture = MaxTextureScale
	}
	ratio := math.Min(q.DevicePixelRatio*increaseFactor, maxRatio)
	tex := math.Min(q.TextureScale*increaseFactor, maxTexture)
	ratio = clamp(ratio, MinDevicePixelRatio, MaxDevicePixelRatio)
	tex = clamp(tex, MinTextureScale, MaxTextureScale)
	if ratio == q.DevicePixelRatio && tex == q.TextureScale {
		return QualityAdjustment{}
	}
	return QualityAdjustment{
		Kind:             AdjustIncrease,
		DevicePixelRatio: ratio,
		TextureScale:     tex,
	}
}

func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Max(lo, math.Min(v, hi))
}
