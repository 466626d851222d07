package framebridge

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/rs/zerolog"
)

// Engine owns a parsed document's render tree. FrameLayer drives it through
// this interface only; RenderTree is the implementation shipped here.
type Engine interface {
	CurrentFrame() float64
	// SetCurrentFrame makes frame authoritative and re-evaluates the tree.
	SetCurrentFrame(frame float64)

	RenderScale() float64
	SetRenderScale(scale float64)

	RespectFrameRate() bool
	SetRespectFrameRate(respect bool)

	ImageProvider() ImageProvider
	SetImageProvider(p ImageProvider)
	TextProvider() TextProvider
	SetTextProvider(p TextProvider)
	FontProvider() FontProvider
	SetFontProvider(p FontProvider)

	// ForceDisplayUpdate re-evaluates the whole tree at the current frame.
	ForceDisplayUpdate()
	// ReloadImages re-resolves every image asset through the image provider.
	ReloadImages()
	// LogHierarchyKeypaths logs every addressable keypath.
	LogHierarchyKeypaths()

	// SetValueProvider binds p to every property matching keypath.
	SetValueProvider(p ValueProvider, keypath Keypath)
	// Value returns the current value of the first matching property.
	Value(keypath Keypath) (Value, bool)
	// ValueAtFrame resolves the first matching property at frame without
	// changing the displayed state.
	ValueAtFrame(keypath Keypath, frame float64) (Value, bool)
	// NodeAt returns the first layer node matching keypath.
	NodeAt(keypath Keypath) (*Node, bool)
	// AnimatorNodes returns every property animator matching keypath, or nil.
	AnimatorNodes(keypath Keypath) []*Animator

	Bounds() Rect
	// Draw renders the tree onto dst, with geom applied after the tree's own
	// transforms and render scale.
	Draw(dst *ebiten.Image, geom ebiten.GeoM)
}

// CompatibilityMode selects how a render tree reacts to document features it
// cannot play.
type CompatibilityMode uint8

const (
	// CompatibilityTrack records and logs unsupported features and skips them.
	CompatibilityTrack CompatibilityMode = iota
	// CompatibilityEnforce fails construction on the first unsupported feature.
	CompatibilityEnforce
)

// EngineConfig carries the construction options for an Engine.
type EngineConfig struct {
	Images        ImageProvider
	Text          TextProvider
	Fonts         FontProvider
	MaskToBounds  bool
	Compatibility CompatibilityMode
	Logger        *zerolog.Logger
}

// EngineFactory builds the engine behind every FrameLayer.
type EngineFactory func(doc *Document, cfg EngineConfig) (Engine, error)

// newEngine is the factory FrameLayer uses. Tests swap it.
var newEngine EngineFactory = func(doc *Document, cfg EngineConfig) (Engine, error) {
	return NewRenderTree(doc, cfg)
}

// disposer is implemented by engines holding resources.
type disposer interface {
	Dispose()
}
