package stages

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// EbitenCapabilities reports the graphics library Ebitengine selected as the
// renderer identifier. It only knows the library after the game loop has
// started; before that it reports no graphics context. Library names rarely
// match GPU fragments, so classification usually falls through to the heap
// heuristic, which uses the Go runtime memory limit.
type EbitenCapabilities struct{}

// Capabilities implements CapabilityProvider.
func (EbitenCapabilities) Capabilities() Capabilities {
	var info ebiten.DebugInfo
	ebiten.ReadDebugInfo(&info)

	limit, known := runtimeHeapLimit()
	caps := Capabilities{HeapLimitBytes: limit, HeapLimitKnown: known}
	if info.GraphicsLibrary != ebiten.GraphicsLibraryUnknown {
		caps.GraphicsAvailable = true
		caps.Renderer = info.GraphicsLibrary.String()
	}
	return caps
}

// EbitenPixelRatio reads the device scale factor of the monitor the window
// is on.
type EbitenPixelRatio struct{}

// DevicePixelRatio implements PixelRatioSource.
func (EbitenPixelRatio) DevicePixelRatio() float64 {
	m := ebiten.Monitor()
	if m == nil {
		return 1
	}
	return m.DeviceScaleFactor()
}
