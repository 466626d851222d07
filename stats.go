package framebridge

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// StatsLayer is a debug overlay printing FPS, TPS and the frames of the
// target FrameLayer. The text refreshes about twice a second.
type StatsLayer struct {
	LayerBase
	target *FrameLayer
	img    *ebiten.Image
	since  float64
	text   string
}

// statsRefreshKey is animated forever so the compositor keeps displaying the
// overlay.
const statsRefreshKey = "refresh"

// NewStatsLayer creates an overlay for target, drawn above other layers.
// target may be nil.
func NewStatsLayer(target *FrameLayer) *StatsLayer {
	l := &StatsLayer{target: target}
	l.initBase(l)
	l.ZIndex = 1 << 20
	l.AddAnimation(&PropertyAnimation{Key: statsRefreshKey, From: 0, To: 1, Duration: 0.5, Loop: true})
	l.SetNeedsDisplay()
	return l
}

// NeedsDisplayForKey implements Layer.
func (l *StatsLayer) NeedsDisplayForKey(key string) bool { return key == statsRefreshKey }

// CopyLayer implements Layer.
func (l *StatsLayer) CopyLayer() Layer {
	c := &StatsLayer{target: l.target}
	c.initBase(c)
	return c
}

// Display implements Layer.
func (l *StatsLayer) Display() {
	v, _ := l.PresentationAttribute(statsRefreshKey)
	if v >= l.since && l.text != "" {
		l.since = v
		return
	}
	l.since = v
	l.text = l.format()
}

func (l *StatsLayer) format() string {
	s := fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	if l.target != nil && !l.target.IsDisposed() {
		s += fmt.Sprintf("\nFrame: %.2f -> %.0f", l.target.CurrentFrame(), l.target.Engine().CurrentFrame())
		if l.target.IsPlaying() {
			if v, ok := l.target.PresentationAttribute(CurrentFrameKey); ok {
				s += fmt.Sprintf("\nPresented: %.2f", v)
			}
		}
	}
	return s
}

// Text returns the last formatted overlay text.
func (l *StatsLayer) Text() string { return l.text }

// Draw implements Layer.
func (l *StatsLayer) Draw(dst *ebiten.Image) {
	if l.img == nil {
		l.img = ebiten.NewImage(160, 64)
	}
	l.img.Clear()
	// Semi-transparent background for readability
	l.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(l.img, l.text)
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(l.X, l.Y)
	dst.DrawImage(l.img, &op)
}

// Dispose releases the overlay image.
func (l *StatsLayer) Dispose() {
	l.LayerBase.Dispose()
	if l.img != nil {
		l.img.Deallocate()
		l.img = nil
	}
}
