package stages

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

const statsRefresh = 0.5 // seconds

// StatsOverlay draws tier, frame rate and live quality in the top-left
// corner. The text is refreshed every half second.
type StatsOverlay struct {
	img        *ebiten.Image
	text       string
	lastUpdate float64
	dirty      bool
}

// NewStatsOverlay creates an overlay.
func NewStatsOverlay() *StatsOverlay {
	return &StatsOverlay{lastUpdate: statsRefresh}
}

// Update refreshes the overlay text from e.
func (o *StatsOverlay) Update(dt float64, e *Engine) {
	o.lastUpdate += dt
	if o.lastUpdate < statsRefresh {
		return
	}
	o.lastUpdate = 0
	o.text = formatStats(e.Stats())
	o.dirty = true
}

// formatStats renders a Stats snapshot as overlay text.
func formatStats(st Stats) string {
	q := st.Device.Quality
	return fmt.Sprintf("TIER: %s  GRADE: %s\nFPS: %.1f  AVG: %.1f\nDPR: %.2f  TEX: %.2f\nAA: %t  SHADOWS: %t",
		st.Device.Tier.Tier, st.Performance.Grade,
		st.Performance.Metrics.FPS, st.Performance.AverageFPS,
		q.DevicePixelRatio, q.TextureScale,
		q.Antialias, q.Shadows)
}

// Draw paints the overlay onto screen.
func (o *StatsOverlay) Draw(screen *ebiten.Image) {
	if o.text == "" {
		return
	}
	if o.img == nil {
		// 200x64 fits four lines of debug font.
		o.img = ebiten.NewImage(200, 64)
	}
	if o.dirty {
		o.img.Clear()
		// Semi-transparent background for readability
		o.img.Fill(color.RGBA{0, 0, 0, 128})
		ebitenutil.DebugPrint(o.img, o.text)
		o.dirty = false
	}
	screen.DrawImage(o.img, nil)
}
