// Package native queries the host GPU directly instead of going through
// Ebitengine. It reports the WebGPU adapter's name and vendor, which match the
// GPU name fragments used for tier classification, and the primary monitor's
// content scale as the device pixel ratio.
//
// GLFW must be used from the main thread. Call runtime.LockOSThread in an
// init function of the main package before NewProbe.
package native

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/phanxgames/stages"
)

// Probe implements stages.CapabilityProvider and stages.PixelRatioSource.
type Probe struct {
	caps   stages.Capabilities
	info   wgpu.AdapterInfo
	closed bool
}

var (
	_ stages.CapabilityProvider = (*Probe)(nil)
	_ stages.PixelRatioSource   = (*Probe)(nil)
)

// NewProbe initialises GLFW and queries the high-performance WebGPU adapter
// once. A missing adapter is not an error: the probe then reports no graphics
// context and the classifier falls back to the low tier.
func NewProbe() (*Probe, error) {
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	p := &Probe{caps: stages.RuntimeCapabilities{}.Capabilities()}
	p.queryAdapter()
	return p, nil
}

// queryAdapter fills the renderer and vendor fields from the adapter info.
func (p *Probe) queryAdapter() {
	instance := wgpu.CreateInstance(nil)
	if instance == nil {
		return
	}
	defer instance.Release()

	adapter, err := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil || adapter == nil {
		return
	}
	defer adapter.Release()

	p.info = adapter.GetInfo()
	p.caps = fromAdapterInfo(p.info, p.caps)
}

// fromAdapterInfo merges adapter info into caps. Software adapters count as
// no graphics context.
func fromAdapterInfo(info wgpu.AdapterInfo, caps stages.Capabilities) stages.Capabilities {
	if info.AdapterType == wgpu.AdapterTypeCPU {
		return caps
	}
	caps.GraphicsAvailable = true
	caps.Renderer = info.Name
	caps.Vendor = info.VendorName
	if caps.Renderer == "" {
		caps.Renderer = info.DriverDescription
	}
	return caps
}

// Capabilities implements stages.CapabilityProvider.
func (p *Probe) Capabilities() stages.Capabilities {
	return p.caps
}

// AdapterInfo returns the raw adapter info for diagnostics.
func (p *Probe) AdapterInfo() wgpu.AdapterInfo {
	return p.info
}

// DevicePixelRatio implements stages.PixelRatioSource using the primary
// monitor's content scale. Returns 1 when no monitor is connected.
func (p *Probe) DevicePixelRatio() float64 {
	if p.closed {
		return 1
	}
	m := glfw.GetPrimaryMonitor()
	if m == nil {
		return 1
	}
	sx, sy := m.GetContentScale()
	return float64(max(sx, sy))
}

// Close terminates GLFW. Safe to call more than once.
func (p *Probe) Close() {
	if p.closed {
		return
	}
	p.closed = true
	glfw.Terminate()
}
