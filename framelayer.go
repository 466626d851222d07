package framebridge

import (
	"math"
	"reflect"

	"github.com/hajimehoshi/ebiten/v2"
)

// CurrentFrameKey is the host-animatable attribute holding the frame a
// FrameLayer displays.
const CurrentFrameKey = "currentFrame"

// frameTolerance absorbs accumulated tick rounding so a frame that lands a
// hair below a whole frame is not floored to the previous one.
const frameTolerance = 1e-6

// engineRef is the engine shared by a FrameLayer and its copies. The engine
// is disposed when the last reference is released.
type engineRef struct {
	engine    Engine
	frameRate float64
	refs      int
}

func (r *engineRef) retain() *engineRef {
	r.refs++
	return r
}

func (r *engineRef) release() {
	r.refs--
	if r.refs > 0 {
		return
	}
	if d, ok := r.engine.(disposer); ok {
		d.Dispose()
	}
}

// FrameLayer connects a Compositor to an Engine. Its CurrentFrameKey
// attribute is animated by the compositor like any other; on every display
// pass the layer resolves the frame being presented and pushes it into the
// engine. Keypath queries and overrides pass straight through.
type FrameLayer struct {
	LayerBase

	ref       *engineRef
	observers []*observerEntry
}

// NewFrameLayer builds the engine for doc with the given providers. Nil
// providers select the engine defaults. A document the engine cannot build
// is fatal.
func NewFrameLayer(doc *Document, images ImageProvider, text TextProvider, fonts FontProvider) *FrameLayer {
	eng, err := newEngine(doc, EngineConfig{
		Images:        images,
		Text:          text,
		Fonts:         fonts,
		MaskToBounds:  false,
		Compatibility: CompatibilityTrack,
		Logger:        SharedLogger(),
	})
	if err != nil {
		fatalf("framebridge: cannot build render tree: %v", err)
		return nil
	}
	l := &FrameLayer{}
	l.initBase(l)
	l.ref = (&engineRef{engine: eng, frameRate: doc.FrameRate}).retain()
	l.SetBounds(doc.Bounds())
	l.values[CurrentFrameKey] = eng.CurrentFrame()
	l.SetNeedsDisplay()
	return l
}

// NewFrameLayerFrom is the generic copy constructor. A *FrameLayer source
// shares its engine with the new layer. Any other source gets a placeholder
// engine built from an empty document and default providers.
func NewFrameLayerFrom(src Layer) *FrameLayer {
	l := &FrameLayer{}
	l.initBase(l)
	if fl, ok := src.(*FrameLayer); ok && fl != nil && fl.ref != nil {
		l.ref = fl.ref.retain()
		l.observers = append(l.observers, fl.observers...)
	} else {
		doc := EmptyDocument()
		eng, err := newEngine(doc, EngineConfig{
			Compatibility: CompatibilityTrack,
			Logger:        SharedLogger(),
		})
		if err != nil {
			fatalf("framebridge: placeholder render tree failed: %v", err)
			return nil
		}
		l.ref = (&engineRef{engine: eng, frameRate: doc.FrameRate}).retain()
	}
	if src != nil && !isNilLayer(src) {
		sb := src.layerBase()
		l.X, l.Y, l.ZIndex, l.Hidden = sb.X, sb.Y, sb.ZIndex, sb.Hidden
		l.bounds = sb.bounds
		for k, v := range sb.values {
			l.values[k] = v
		}
	}
	if l.bounds == (Rect{}) {
		l.bounds = l.ref.engine.Bounds()
	}
	l.values[CurrentFrameKey] = l.ref.engine.CurrentFrame()
	return l
}

// isNilLayer reports whether src holds a nil pointer.
func isNilLayer(src Layer) bool {
	v := reflect.ValueOf(src)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// CopyLayer implements Layer. The copy shares this layer's engine.
func (l *FrameLayer) CopyLayer() Layer {
	return NewFrameLayerFrom(l)
}

// UnmarshalJSON rejects reconstruction from persisted state.
func (l *FrameLayer) UnmarshalJSON([]byte) error {
	fatalf("framebridge: FrameLayer cannot be decoded from JSON; build it with NewFrameLayer")
	return ErrUnsupportedFeature
}

// UnmarshalBinary rejects reconstruction from persisted state.
func (l *FrameLayer) UnmarshalBinary([]byte) error {
	fatalf("framebridge: FrameLayer cannot be decoded from binary; build it with NewFrameLayer")
	return ErrUnsupportedFeature
}

// Engine returns the engine behind the layer.
func (l *FrameLayer) Engine() Engine {
	return l.eng()
}

func (l *FrameLayer) eng() Engine {
	if l.ref == nil {
		panic("framebridge: use of disposed FrameLayer")
	}
	return l.ref.engine
}

// --- host hooks ---

// NeedsDisplayForKey implements Layer. Only the frame attribute redisplays.
func (l *FrameLayer) NeedsDisplayForKey(key string) bool {
	return key == CurrentFrameKey
}

// ActionForKey implements Layer. A change to the frame attribute inside a
// transaction animates linearly from the frame currently presented.
func (l *FrameLayer) ActionForKey(key string) *PropertyAnimation {
	if key != CurrentFrameKey {
		return nil
	}
	from := l.Attribute(CurrentFrameKey)
	if v, ok := l.PresentationAttribute(CurrentFrameKey); ok {
		from = v
	}
	return &PropertyAnimation{Key: key, From: from}
}

// Display implements Layer. It pushes the presented frame into the engine,
// floored when the engine respects the document frame rate. Called off the
// UI goroutine it does nothing.
func (l *FrameLayer) Display() {
	if !IsUIThread() || l.ref == nil {
		return
	}
	eng := l.ref.engine
	frame := l.Attribute(CurrentFrameKey)
	interpolated := false
	if l.HasAnimation(CurrentFrameKey) {
		if v, ok := l.PresentationAttribute(CurrentFrameKey); ok {
			frame = v
			interpolated = true
		}
	}
	candidate := frame
	if eng.RespectFrameRate() {
		frame = math.Floor(frame + frameTolerance)
	}
	eng.SetCurrentFrame(frame)
	if len(l.observers) == 0 {
		return
	}
	ev := DisplayEvent{
		Layer:        l,
		Frame:        frame,
		Candidate:    candidate,
		Interpolated: interpolated,
		Quantized:    frame != candidate,
	}
	for _, o := range l.observers {
		o.o.FrameDisplayed(ev)
	}
}

// Draw implements Layer.
func (l *FrameLayer) Draw(dst *ebiten.Image) {
	if l.ref == nil {
		return
	}
	var geom ebiten.GeoM
	geom.Translate(l.X, l.Y)
	l.ref.engine.Draw(dst, geom)
}

// Dispose detaches the layer and releases its engine reference.
func (l *FrameLayer) Dispose() {
	if l.disposed {
		return
	}
	l.LayerBase.Dispose()
	if l.ref != nil {
		l.ref.release()
		l.ref = nil
	}
	l.observers = nil
}

// --- playback ---

// CurrentFrame returns the model frame.
func (l *FrameLayer) CurrentFrame() float64 {
	return l.Attribute(CurrentFrameKey)
}

// SetCurrentFrame sets the model frame. Inside Compositor.Animate the change
// animates from the presented frame.
func (l *FrameLayer) SetCurrentFrame(frame float64) {
	l.SetAttribute(CurrentFrameKey, frame)
}

// Play animates the frame attribute from from to to at the document frame
// rate. A looping play restarts at from when it reaches to.
func (l *FrameLayer) Play(from, to float64, loop bool) {
	rate := l.ref.frameRate
	if rate <= 0 {
		rate = 60
	}
	d := float32(math.Abs(to-from) / rate)
	l.values[CurrentFrameKey] = to
	if d <= 0 {
		l.RemoveAnimation(CurrentFrameKey)
		l.SetNeedsDisplay()
		return
	}
	l.AddAnimation(&PropertyAnimation{
		Key:      CurrentFrameKey,
		From:     from,
		To:       to,
		Duration: d,
		Loop:     loop,
	})
}

// Pause stops playback at the frame currently presented.
func (l *FrameLayer) Pause() {
	if !l.HasAnimation(CurrentFrameKey) {
		return
	}
	frame := l.Attribute(CurrentFrameKey)
	if v, ok := l.PresentationAttribute(CurrentFrameKey); ok {
		frame = v
	}
	l.values[CurrentFrameKey] = frame
	l.RemoveAnimation(CurrentFrameKey)
}

// Seek stops playback and jumps to frame.
func (l *FrameLayer) Seek(frame float64) {
	l.RemoveAnimation(CurrentFrameKey)
	l.values[CurrentFrameKey] = frame
	l.SetNeedsDisplay()
}

// IsPlaying reports whether the frame attribute is animating.
func (l *FrameLayer) IsPlaying() bool {
	return l.HasAnimation(CurrentFrameKey)
}

// --- pass-throughs ---

// ImageProvider returns the engine's image provider.
func (l *FrameLayer) ImageProvider() ImageProvider { return l.eng().ImageProvider() }

// SetImageProvider sets the engine's image provider.
func (l *FrameLayer) SetImageProvider(p ImageProvider) {
	l.eng().SetImageProvider(p)
	l.SetNeedsDisplay()
}

// TextProvider returns the engine's text provider.
func (l *FrameLayer) TextProvider() TextProvider { return l.eng().TextProvider() }

// SetTextProvider sets the engine's text provider.
func (l *FrameLayer) SetTextProvider(p TextProvider) {
	l.eng().SetTextProvider(p)
	l.SetNeedsDisplay()
}

// FontProvider returns the engine's font provider.
func (l *FrameLayer) FontProvider() FontProvider { return l.eng().FontProvider() }

// SetFontProvider sets the engine's font provider.
func (l *FrameLayer) SetFontProvider(p FontProvider) {
	l.eng().SetFontProvider(p)
	l.SetNeedsDisplay()
}

// RenderScale returns the engine's render scale.
func (l *FrameLayer) RenderScale() float64 { return l.eng().RenderScale() }

// SetRenderScale forwards scale to the engine when it differs.
func (l *FrameLayer) SetRenderScale(scale float64) {
	eng := l.eng()
	if eng.RenderScale() != scale {
		eng.SetRenderScale(scale)
	}
}

// RespectFrameRate reports whether displayed frames are floored.
func (l *FrameLayer) RespectFrameRate() bool { return l.eng().RespectFrameRate() }

// SetRespectFrameRate sets whether displayed frames are floored.
func (l *FrameLayer) SetRespectFrameRate(respect bool) { l.eng().SetRespectFrameRate(respect) }

// ForceDisplayUpdate re-evaluates the whole tree.
func (l *FrameLayer) ForceDisplayUpdate() { l.eng().ForceDisplayUpdate() }

// ReloadImages re-resolves every image asset.
func (l *FrameLayer) ReloadImages() {
	l.eng().ReloadImages()
	l.SetNeedsDisplay()
}

// LogHierarchyKeypaths logs every addressable keypath.
func (l *FrameLayer) LogHierarchyKeypaths() { l.eng().LogHierarchyKeypaths() }

// SetValueProvider overrides every property matching keypath with p. The
// override applies from the next display pass.
func (l *FrameLayer) SetValueProvider(p ValueProvider, keypath Keypath) {
	l.eng().SetValueProvider(p, keypath)
	l.SetNeedsDisplay()
}

// Value returns the current value at keypath.
func (l *FrameLayer) Value(keypath Keypath) (Value, bool) {
	return l.eng().Value(keypath)
}

// ValueAtFrame resolves keypath at frame without changing what is displayed.
func (l *FrameLayer) ValueAtFrame(keypath Keypath, frame float64) (Value, bool) {
	return l.eng().ValueAtFrame(keypath, frame)
}

// NodeAt returns the layer node at keypath.
func (l *FrameLayer) NodeAt(keypath Keypath) (*Node, bool) {
	return l.eng().NodeAt(keypath)
}

// AnimatorNodes returns every animator matching keypath, or nil.
func (l *FrameLayer) AnimatorNodes(keypath Keypath) []*Animator {
	return l.eng().AnimatorNodes(keypath)
}
