package stages

import (
	"math"
	"runtime/debug"
	"strings"
)

// DeviceTier is the static quality ceiling associated with a Tier.
type DeviceTier struct {
	Tier                Tier
	MaxDevicePixelRatio float64
	Antialias           bool
	Shadows             bool
	TextureQuality      float64 // 0-1
	MaxObjects          int
}

var tierTable = [...]DeviceTier{
	TierLow: {
		Tier:                TierLow,
		MaxDevicePixelRatio: 1.0,
		TextureQuality:      0.5,
		MaxObjects:          250,
	},
	TierMid: {
		Tier:                TierMid,
		MaxDevicePixelRatio: 1.5,
		Antialias:           true,
		TextureQuality:      0.8,
		MaxObjects:          500,
	},
	TierHigh: {
		Tier:                TierHigh,
		MaxDevicePixelRatio: 2.0,
		Antialias:           true,
		Shadows:             true,
		TextureQuality:      1.0,
		MaxObjects:          1000,
	},
}

// TierConfig returns the static record for t. TierAuto and unknown values
// return the low tier.
func TierConfig(t Tier) DeviceTier {
	switch t {
	case TierLow, TierMid, TierHigh:
		return tierTable[t]
	default:
		return tierTable[TierLow]
	}
}

// --- Capability query ---

// Capabilities is the result of a platform capability query. Every field is
// optional; zero values mean "not reported".
type Capabilities struct {
	// GraphicsAvailable is false when no graphics context could be created.
	GraphicsAvailable bool
	Renderer          string
	Vendor            string
	// HeapLimitBytes is only meaningful when HeapLimitKnown is true.
	HeapLimitBytes uint64
	HeapLimitKnown bool
}

// CapabilityProvider reports what the platform can do. Implementations must
// not block.
type CapabilityProvider interface {
	Capabilities() Capabilities
}

// PixelRatioSource reports the display's device pixel ratio.
type PixelRatioSource interface {
	DevicePixelRatio() float64
}

// StaticCapabilities is a CapabilityProvider that always reports itself.
type StaticCapabilities Capabilities

// Capabilities implements CapabilityProvider.
func (c StaticCapabilities) Capabilities() Capabilities {
	return Capabilities(c)
}

// StaticPixelRatio is a PixelRatioSource with a fixed ratio.
type StaticPixelRatio float64

// DevicePixelRatio implements PixelRatioSource.
func (r StaticPixelRatio) DevicePixelRatio() float64 {
	return float64(r)
}

// RuntimeCapabilities reports no graphics context and uses the Go runtime
// memory limit (GOMEMLIMIT) as the heap ceiling when one is set.
type RuntimeCapabilities struct{}

// Capabilities implements CapabilityProvider.
func (RuntimeCapabilities) Capabilities() Capabilities {
	limit, known := runtimeHeapLimit()
	return Capabilities{HeapLimitBytes: limit, HeapLimitKnown: known}
}

// runtimeHeapLimit reads the soft memory limit without changing it.
func runtimeHeapLimit() (uint64, bool) {
	limit := debug.SetMemoryLimit(-1)
	if limit <= 0 || limit == math.MaxInt64 {
		return 0, false
	}
	return uint64(limit), true
}

// --- Tier rules ---

// DefaultHeapThreshold is the heap ceiling above which an unrecognized
// device is classified as mid tier.
const DefaultHeapThreshold = 1_000_000_000

// TierRules lists renderer/vendor name fragments per tier. High is checked
// before Mid, so a more specific fragment ("Intel Arc") wins over a general
// one ("Intel"). Matching is case-insensitive.
type TierRules struct {
	High []string `yaml:"high"`
	Mid  []string `yaml:"mid"`
}

// DefaultTierRules returns the built-in GPU name fragments.
func DefaultTierRules() TierRules {
	return TierRules{
		High: []string{"NVIDIA", "GeForce", "AMD", "Radeon", "Intel Arc"},
		Mid:  []string{"Intel", "Mali", "Adreno", "Apple", "PowerVR"},
	}
}

// match returns the tier whose fragments appear in any of ids.
func (r TierRules) match(ids ...string) (Tier, bool) {
	for _, id := range ids {
		if id == "" {
			continue
		}
		lower := strings.ToLower(id)
		if containsAny(lower, r.High) {
			return TierHigh, true
		}
		if containsAny(lower, r.Mid) {
			return TierMid, true
		}
	}
	return TierAuto, false
}

func containsAny(s string, fragments []string) bool {
	for _, f := range fragments {
		if f != "" && strings.Contains(s, strings.ToLower(f)) {
			return true
		}
	}
	return false
}

// --- Classifier ---

// ClassifierOptions configures a Classifier.
type ClassifierOptions struct {
	Capabilities  CapabilityProvider
	PixelRatio    PixelRatioSource
	Rules         TierRules
	HeapThreshold uint64
	// Forced skips detection entirely when not TierAuto.
	Forced Tier
	// OnChange is called whenever the active tier changes after the first
	// detection.
	OnChange func(DeviceTier)
}

// Classifier inspects the platform once and yields a DeviceTier. The result
// is cached until a forced tier is set or Redetect is called.
type Classifier struct {
	caps          CapabilityProvider
	pixelRatio    PixelRatioSource
	rules         TierRules
	heapThreshold uint64
	forced        Tier
	onChange      func(DeviceTier)

	current    DeviceTier
	detected   bool
	detections int
	disposed   bool
}

// NewClassifier creates a Classifier and runs the first detection.
func NewClassifier(opts ClassifierOptions) *Classifier {
	c := &Classifier{
		caps:          opts.Capabilities,
		pixelRatio:    opts.PixelRatio,
		rules:         opts.Rules,
		heapThreshold: opts.HeapThreshold,
		forced:        opts.Forced,
		onChange:      opts.OnChange,
	}
	if c.forced > TierHigh {
		c.forced = TierAuto
	}
	if c.rules.High == nil && c.rules.Mid == nil {
		c.rules = DefaultTierRules()
	}
	if c.heapThreshold == 0 {
		c.heapThreshold = DefaultHeapThreshold
	}
	c.current = c.classify()
	c.detected = true
	return c
}

// DetectTier returns the active tier, detecting it if nothing is cached.
func (c *Classifier) DetectTier() DeviceTier {
	if !c.detected {
		c.current = c.classify()
		c.detected = true
	}
	return c.current
}

// SetForcedTier overrides detection. TierAuto and unknown values clear the
// override and re-detect.
func (c *Classifier) SetForcedTier(t Tier) {
	if c.disposed {
		return
	}
	if t > TierHigh {
		logger().Warn("ignoring unknown forced tier", "tier", uint8(t))
		t = TierAuto
	}
	c.forced = t
	c.refresh()
}

// ClearForcedTier drops the override and re-detects.
func (c *Classifier) ClearForcedTier() {
	c.SetForcedTier(TierAuto)
}

// ForcedTier returns the active override, or TierAuto.
func (c *Classifier) ForcedTier() Tier {
	return c.forced
}

// Redetect discards the cached result and classifies again.
func (c *Classifier) Redetect() DeviceTier {
	if c.disposed {
		return c.current
	}
	c.refresh()
	return c.current
}

// refresh re-classifies and notifies OnChange if the tier record changed.
func (c *Classifier) refresh() {
	prev := c.current
	c.detected = false
	tier := c.DetectTier()
	if tier != prev && c.onChange != nil {
		c.onChange(tier)
	}
}

// RenderQuality combines the tier ceiling with the live display density.
func (c *Classifier) RenderQuality() RenderQuality {
	tier := c.DetectTier()
	ratio := 1.0
	if c.pixelRatio != nil {
		if r := c.pixelRatio.DevicePixelRatio(); r > 0 && !math.IsNaN(r) {
			ratio = r
		}
	}
	q := RenderQuality{
		DevicePixelRatio: math.Min(tier.MaxDevicePixelRatio, ratio),
		Antialias:        tier.Antialias,
		Shadows:          tier.Shadows,
		TextureScale:     tier.TextureQuality,
	}
	return q.Clamp()
}

// CanHandle reports whether the active tier supports objectCount objects.
func (c *Classifier) CanHandle(objectCount int) bool {
	return objectCount <= c.DetectTier().MaxObjects
}

// Detections returns how many times the platform has been classified.
func (c *Classifier) Detections() int {
	return c.detections
}

// Reset drops the cached result and re-detects without notifying. A forced
// tier stays in effect.
func (c *Classifier) Reset() DeviceTier {
	if !c.disposed {
		c.detected = false
	}
	return c.DetectTier()
}

// Dispose stops notifications. The last tier stays readable.
func (c *Classifier) Dispose() {
	c.disposed = true
	c.onChange = nil
}

// classify picks a tier. It never panics; any failure degrades to low.
func (c *Classifier) classify() (tier DeviceTier) {
	c.detections++
	if c.forced != TierAuto {
		return TierConfig(c.forced)
	}
	defer func() {
		if r := recover(); r != nil {
			logger().Warn("capability query failed", "panic", r)
			tier = TierConfig(TierLow)
		}
	}()
	if c.caps == nil {
		return TierConfig(TierLow)
	}
	caps := c.caps.Capabilities()
	t := c.classifyCapabilities(caps)
	logger().Debug("device classified", "tier", t, "renderer", caps.Renderer, "vendor", caps.Vendor)
	return TierConfig(t)
}

func (c *Classifier) classifyCapabilities(caps Capabilities) Tier {
	if !caps.GraphicsAvailable {
		return TierLow
	}
	if t, ok := c.rules.match(caps.Renderer, caps.Vendor); ok {
		return t
	}
	if caps.HeapLimitKnown && caps.HeapLimitBytes > c.heapThreshold {
		return TierMid
	}
	return TierLow
}
