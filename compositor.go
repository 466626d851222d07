package framebridge

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/spf13/afero"
	"github.com/tanema/gween/ease"
)

// transaction groups attribute changes made inside Compositor.Animate.
type transaction struct {
	depth    int
	duration float32
	timing   ease.TweenFunc
}

// Compositor hosts layers, advances their animations and presents them. It
// plays the role of the host compositing pipeline: model values change on
// layers, the compositor interpolates them into presentation snapshots and
// asks layers to display.
type Compositor struct {
	layers []Layer
	txn    transaction

	// ScreenshotFS and ScreenshotDir receive PNGs queued with Screenshot.
	// ScreenshotFS defaults to the OS filesystem.
	ScreenshotFS  afero.Fs
	ScreenshotDir string

	screenshotQueue []string
	script          *Script

	drawBuf []Layer
}

// NewCompositor creates an empty compositor and binds the calling goroutine
// as the UI goroutine.
func NewCompositor() *Compositor {
	BindUIThread()
	return &Compositor{ScreenshotDir: "screenshots"}
}

// AddLayer attaches l to the compositor. Adding a layer that belongs to
// another compositor moves it.
func (c *Compositor) AddLayer(l Layer) {
	if l == nil {
		panic("framebridge: cannot add nil layer")
	}
	b := l.layerBase()
	if b.disposed {
		panic("framebridge: cannot add a disposed layer")
	}
	if b.self == nil {
		b.initBase(l)
	}
	if b.host == c {
		return
	}
	if b.host != nil {
		b.host.RemoveLayer(l)
	}
	b.host = c
	c.layers = append(c.layers, l)
}

// RemoveLayer detaches l. It is a no-op if l is not attached here.
func (c *Compositor) RemoveLayer(l Layer) {
	if l == nil {
		return
	}
	for i, x := range c.layers {
		if x == l {
			copy(c.layers[i:], c.layers[i+1:])
			c.layers[len(c.layers)-1] = nil
			c.layers = c.layers[:len(c.layers)-1]
			l.layerBase().host = nil
			return
		}
	}
}

// Layers returns the attached layers in insertion order. The returned slice
// MUST NOT be mutated.
func (c *Compositor) Layers() []Layer {
	return c.layers
}

// Animate runs fn inside an implicit animation transaction. Attribute
// changes made by fn animate over duration seconds for keys whose layer
// returns an action from ActionForKey. Transactions nest; the outermost
// duration applies.
func (c *Compositor) Animate(duration float32, fn func()) {
	c.AnimateWith(duration, nil, fn)
}

// AnimateWith is Animate with a timing function applied to actions that do
// not choose their own.
func (c *Compositor) AnimateWith(duration float32, timing ease.TweenFunc, fn func()) {
	if c.txn.depth == 0 {
		c.txn.duration = duration
		c.txn.timing = timing
	}
	c.txn.depth++
	defer func() {
		c.txn.depth--
		if c.txn.depth == 0 {
			c.txn = transaction{}
		}
	}()
	fn()
}

func (c *Compositor) inTransaction() bool {
	return c.txn.depth > 0 && c.txn.duration > 0
}

// Tick advances every layer's animations by dt seconds, refreshes their
// presentation snapshots and calls Display on layers that need it.
func (c *Compositor) Tick(dt float32) {
	for _, l := range c.layers {
		c.tickLayer(l, dt)
	}
}

func (c *Compositor) tickLayer(l Layer, dt float32) {
	b := l.layerBase()
	if b.disposed {
		return
	}
	var finished []string
	for _, k := range b.AnimationKeys() {
		a := b.animations[k]
		if _, done := a.step(dt); done {
			finished = append(finished, k)
		}
		if l.NeedsDisplayForKey(k) {
			b.needsDisplay = true
		}
	}
	b.syncPresentation()
	for _, k := range finished {
		b.RemoveAnimation(k)
	}
	if b.needsDisplay {
		b.needsDisplay = false
		l.Display()
	}
}

// Update implements ebiten.Game by ticking one ebiten tick.
func (c *Compositor) Update() error {
	if c.script != nil {
		c.script.step(c)
	}
	c.Tick(float32(1.0 / float64(ebiten.TPS())))
	return nil
}

// Draw draws visible layers onto screen in ZIndex order.
func (c *Compositor) Draw(screen *ebiten.Image) {
	c.drawBuf = append(c.drawBuf[:0], c.layers...)
	sort.SliceStable(c.drawBuf, func(i, j int) bool {
		return c.drawBuf[i].layerBase().ZIndex < c.drawBuf[j].layerBase().ZIndex
	})
	for _, l := range c.drawBuf {
		if l.layerBase().Hidden {
			continue
		}
		l.Draw(screen)
	}
}

// RunConfig configures Run.
type RunConfig struct {
	Title      string
	Width      int
	Height     int
	ClearColor Color
	// TPS overrides ebiten's tick rate when positive.
	TPS int
	// OnUpdate runs on the UI goroutine before each tick. Returning an error
	// stops the game loop.
	OnUpdate func() error
}

type game struct {
	c   *Compositor
	cfg RunConfig
}

func (g *game) Update() error {
	if g.cfg.OnUpdate != nil {
		if err := g.cfg.OnUpdate(); err != nil {
			return err
		}
	}
	return g.c.Update()
}

func (g *game) Draw(screen *ebiten.Image) {
	if g.cfg.ClearColor.A > 0 {
		screen.Fill(g.cfg.ClearColor.toRGBA())
	}
	g.c.Draw(screen)
	g.c.flushScreenshots(screen)
}

func (g *game) Layout(int, int) (int, int) {
	return g.cfg.Width, g.cfg.Height
}

// Run opens a window and drives c until the window closes or OnUpdate fails.
// The game loop goroutine becomes the UI goroutine.
func Run(c *Compositor, cfg RunConfig) error {
	if cfg.Width <= 0 {
		cfg.Width = 640
	}
	if cfg.Height <= 0 {
		cfg.Height = 480
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}
	g := &game{c: c, cfg: cfg}
	bound := false
	inner := g.cfg.OnUpdate
	g.cfg.OnUpdate = func() error {
		if !bound {
			BindUIThread()
			bound = true
		}
		if inner != nil {
			return inner()
		}
		return nil
	}
	return ebiten.RunGame(g)
}
