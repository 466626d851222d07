package framebridge

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
)

// Layer is anything a Compositor can host. Implementations embed LayerBase,
// which supplies attribute storage, animations and the presentation snapshot,
// and override the hooks they care about.
type Layer interface {
	// NeedsDisplayForKey reports whether a change to key requires Display.
	NeedsDisplayForKey(key string) bool
	// ActionForKey returns the implicit animation to run when key changes
	// inside Compositor.Animate, or nil for none. It is called before the
	// model value changes.
	ActionForKey(key string) *PropertyAnimation
	// Display is called by the compositor once per tick while the layer
	// needs display.
	Display()
	// CopyLayer makes the layer used as this layer's presentation snapshot.
	CopyLayer() Layer
	// Draw renders the layer onto dst.
	Draw(dst *ebiten.Image)

	layerBase() *LayerBase
}

// LayerBase holds the state shared by every layer.
type LayerBase struct {
	// Position of the layer's origin on the compositor target.
	X, Y float64
	// Hidden layers are ticked but not drawn.
	Hidden bool
	// ZIndex orders drawing; higher draws later. Ties keep insertion order.
	ZIndex int

	self         Layer
	host         *Compositor
	bounds       Rect
	values       map[string]float64
	animations   map[string]*PropertyAnimation
	presentation Layer
	needsDisplay bool
	disposed     bool
}

// initBase wires the embedding layer so attribute changes reach its hooks.
func (b *LayerBase) initBase(self Layer) {
	b.self = self
	if b.values == nil {
		b.values = make(map[string]float64)
	}
	if b.animations == nil {
		b.animations = make(map[string]*PropertyAnimation)
	}
}

func (b *LayerBase) layerBase() *LayerBase { return b }

// NeedsDisplayForKey implements Layer. No key triggers display by default.
func (b *LayerBase) NeedsDisplayForKey(string) bool { return false }

// ActionForKey implements Layer. No key animates implicitly by default.
func (b *LayerBase) ActionForKey(string) *PropertyAnimation { return nil }

// Display implements Layer as a no-op.
func (b *LayerBase) Display() {}

// Draw implements Layer as a no-op.
func (b *LayerBase) Draw(*ebiten.Image) {}

// Bounds returns the layer's bounds in its own space.
func (b *LayerBase) Bounds() Rect { return b.bounds }

// SetBounds sets the layer's bounds.
func (b *LayerBase) SetBounds(r Rect) { b.bounds = r }

// Compositor returns the hosting compositor, or nil.
func (b *LayerBase) Compositor() *Compositor { return b.host }

// --- attributes ---

// Attribute returns the model value of key (0 when never set).
func (b *LayerBase) Attribute(key string) float64 {
	return b.values[key]
}

// SetAttribute changes the model value of key. Inside Compositor.Animate the
// layer's ActionForKey decides whether the change animates.
func (b *LayerBase) SetAttribute(key string, v float64) {
	var action *PropertyAnimation
	if b.self != nil && b.host != nil && b.host.inTransaction() {
		action = b.self.ActionForKey(key)
	}
	if b.values == nil {
		b.values = make(map[string]float64)
	}
	b.values[key] = v
	if b.self != nil && b.self.NeedsDisplayForKey(key) {
		b.needsDisplay = true
	}
	if action != nil {
		action.Key = key
		action.To = v
		if action.Duration <= 0 {
			action.Duration = b.host.txn.duration
		}
		if action.Timing == nil {
			action.Timing = b.host.txn.timing
		}
		b.AddAnimation(action)
	}
}

// --- animations ---

// AddAnimation attaches a to the layer, replacing any animation on the same
// key. Animations with no duration are ignored.
func (b *LayerBase) AddAnimation(a *PropertyAnimation) {
	if a == nil || a.Duration <= 0 {
		return
	}
	if b.animations == nil {
		b.animations = make(map[string]*PropertyAnimation)
	}
	a.start()
	b.animations[a.Key] = a
	if b.self != nil && b.self.NeedsDisplayForKey(a.Key) {
		b.needsDisplay = true
	}
}

// Animation returns the animation attached for key, or nil.
func (b *LayerBase) Animation(key string) *PropertyAnimation {
	return b.animations[key]
}

// HasAnimation reports whether key has an active animation.
func (b *LayerBase) HasAnimation(key string) bool {
	_, ok := b.animations[key]
	return ok
}

// AnimationKeys returns the animated keys in sorted order.
func (b *LayerBase) AnimationKeys() []string {
	keys := make([]string, 0, len(b.animations))
	for k := range b.animations {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// RemoveAnimation detaches the animation on key. The presentation value
// snaps back to the model value on the next tick.
func (b *LayerBase) RemoveAnimation(key string) {
	if _, ok := b.animations[key]; !ok {
		return
	}
	delete(b.animations, key)
	if b.self != nil && b.self.NeedsDisplayForKey(key) {
		b.needsDisplay = true
	}
}

// RemoveAllAnimations detaches every animation.
func (b *LayerBase) RemoveAllAnimations() {
	for _, k := range b.AnimationKeys() {
		b.RemoveAnimation(k)
	}
}

// --- presentation ---

// Presentation returns the snapshot the compositor is presenting, or nil
// before the first tick that needed one.
func (b *LayerBase) Presentation() Layer {
	return b.presentation
}

// PresentationAttribute returns key as currently presented. ok is false when
// there is no snapshot yet.
func (b *LayerBase) PresentationAttribute(key string) (v float64, ok bool) {
	if b.presentation == nil {
		return 0, false
	}
	return b.presentation.layerBase().values[key], true
}

// syncPresentation copies model values into the snapshot and overlays the
// current animation values, creating the snapshot on first use.
func (b *LayerBase) syncPresentation() {
	if b.presentation == nil {
		if len(b.animations) == 0 || b.self == nil {
			return
		}
		b.presentation = b.self.CopyLayer()
	}
	pb := b.presentation.layerBase()
	if pb.values == nil {
		pb.values = make(map[string]float64, len(b.values))
	}
	for k, v := range b.values {
		pb.values[k] = v
	}
	for k, a := range b.animations {
		pb.values[k] = a.Value()
	}
	pb.X, pb.Y, pb.bounds = b.X, b.Y, b.bounds
}

// --- display ---

// SetNeedsDisplay schedules Display on the next tick.
func (b *LayerBase) SetNeedsDisplay() {
	b.needsDisplay = true
}

// NeedsDisplay reports whether Display is scheduled.
func (b *LayerBase) NeedsDisplay() bool {
	return b.needsDisplay
}

// --- disposal ---

// Dispose detaches the layer from its compositor and disposes its snapshot.
func (b *LayerBase) Dispose() {
	if b.disposed {
		return
	}
	b.disposed = true
	if b.host != nil {
		b.host.RemoveLayer(b.self)
	}
	b.animations = nil
	if p := b.presentation; p != nil {
		b.presentation = nil
		if d, ok := p.(disposer); ok {
			d.Dispose()
		}
	}
}

// IsDisposed reports whether Dispose has run.
func (b *LayerBase) IsDisposed() bool {
	return b.disposed
}

// BasicLayer is a layer with no content, usable as a container position or
// as a plain animatable value holder.
type BasicLayer struct {
	LayerBase
}

// NewBasicLayer creates an empty layer.
func NewBasicLayer() *BasicLayer {
	l := &BasicLayer{}
	l.initBase(l)
	return l
}

// CopyLayer implements Layer.
func (l *BasicLayer) CopyLayer() Layer {
	c := NewBasicLayer()
	c.X, c.Y, c.bounds = l.X, l.Y, l.bounds
	for k, v := range l.values {
		c.values[k] = v
	}
	return c
}
