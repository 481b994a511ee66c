package stages

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Renderer is the collaborator that applies quality settings and the
// viewport transform to its drawing surface.
type Renderer interface {
	Surface
	ApplyQuality(q RenderQuality)
}

const defaultRatioEase = 0.5 // seconds

// StageSurface is an Ebitengine Renderer. The application draws the stage in
// stage units into an offscreen image whose resolution follows the viewport
// scale and device pixel ratio; Draw composites it into the window using the
// cover transform. Ratio changes are eased so quality steps do not pop.
type StageSurface struct {
	// RatioEase is the duration in seconds of a device-pixel-ratio change.
	// Zero applies changes immediately.
	RatioEase float32

	stageW, stageH float64
	transform      ViewportTransform
	hasTransform   bool
	quality        RenderQuality
	hasQuality     bool

	ratio      float64
	ratioTween *gween.Tween

	image      *ebiten.Image
	imgW, imgH int
}

// NewStageSurface creates a surface for a stageW x stageH stage.
func NewStageSurface(stageW, stageH float64) *StageSurface {
	return &StageSurface{
		RatioEase: defaultRatioEase,
		stageW:    orFloat(stageW, StageWidth),
		stageH:    orFloat(stageH, StageHeight),
		ratio:     1,
	}
}

// ApplyTransform implements Surface.
func (s *StageSurface) ApplyTransform(t ViewportTransform) {
	s.transform = t
	s.hasTransform = true
}

// ApplyQuality implements Renderer. The first call takes effect immediately.
func (s *StageSurface) ApplyQuality(q RenderQuality) {
	q = q.Clamp()
	if !s.hasQuality || s.RatioEase <= 0 {
		s.ratio = q.DevicePixelRatio
		s.ratioTween = nil
	} else if q.DevicePixelRatio != s.quality.DevicePixelRatio {
		s.ratioTween = gween.New(float32(s.ratio), float32(q.DevicePixelRatio), s.RatioEase, ease.OutQuad)
	}
	s.quality = q
	s.hasQuality = true
}

// Quality returns the last quality applied.
func (s *StageSurface) Quality() RenderQuality {
	return s.quality
}

// Transform returns the last transform applied.
func (s *StageSurface) Transform() (ViewportTransform, bool) {
	return s.transform, s.hasTransform
}

// Ratio returns the device pixel ratio currently in effect, which trails the
// target while an ease is running.
func (s *StageSurface) Ratio() float64 {
	return s.ratio
}

// Update advances the ratio ease by dt seconds.
func (s *StageSurface) Update(dt float32) {
	if s.ratioTween == nil {
		return
	}
	val, done := s.ratioTween.Update(dt)
	s.ratio = float64(val)
	if done {
		s.ratio = s.quality.DevicePixelRatio
		s.ratioTween = nil
	}
}

// resolution is the number of offscreen pixels per stage unit.
func (s *StageSurface) resolution() float64 {
	scale := 1.0
	if s.hasTransform && s.transform.Scale > 0 {
		scale = s.transform.Scale
	}
	return scale * s.ratio
}

// imageSize returns the offscreen size for the current resolution.
func (s *StageSurface) imageSize() (w, h int) {
	res := s.resolution()
	w = int(math.Ceil(s.stageW * res))
	h = int(math.Ceil(s.stageH * res))
	return max(w, 1), max(h, 1)
}

// Begin returns the cleared offscreen stage image, reallocating it when the
// resolution changed.
func (s *StageSurface) Begin() *ebiten.Image {
	w, h := s.imageSize()
	if s.image == nil || w != s.imgW || h != s.imgH {
		if s.image != nil {
			s.image.Deallocate()
		}
		s.image = ebiten.NewImage(w, h)
		s.imgW, s.imgH = w, h
	} else {
		s.image.Clear()
	}
	return s.image
}

// StageGeoM maps stage units to offscreen pixels. Concatenate it onto draw
// options when drawing into the image returned by Begin.
func (s *StageSurface) StageGeoM() ebiten.GeoM {
	var g ebiten.GeoM
	res := s.resolution()
	g.Scale(res, res)
	return g
}

// Draw composites the stage image into screen with the cover transform.
func (s *StageSurface) Draw(screen *ebiten.Image) {
	if s.image == nil || !s.hasTransform {
		return
	}
	op := &ebiten.DrawImageOptions{}
	k := s.transform.Scale / s.resolution()
	op.GeoM.Scale(k, k)
	op.GeoM.Translate(s.transform.OffsetX, s.transform.OffsetY)
	if s.quality.Antialias {
		op.Filter = ebiten.FilterLinear
	} else {
		op.Filter = ebiten.FilterNearest
	}
	screen.DrawImage(s.image, op)
}

// Dispose releases the offscreen image.
func (s *StageSurface) Dispose() {
	if s.image != nil {
		s.image.Deallocate()
		s.image = nil
	}
}
