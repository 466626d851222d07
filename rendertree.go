package framebridge

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

const defaultFontSize = 14

// RenderTree is the reference Engine: a node tree built once from a Document
// plus one Animator per animatable property. The tree is never rebuilt;
// overrides and provider changes take effect on the next evaluation.
type RenderTree struct {
	doc       *Document
	root      *Node
	layers    []*Node
	animators []*Animator

	images ImageProvider
	text   TextProvider
	fonts  FontProvider

	maskToBounds bool
	compat       CompatibilityMode
	issues       []string
	logger       *zerolog.Logger

	frame            float64
	evaluated        bool
	dirty            bool
	renderScale      float64
	respectFrameRate bool

	commands []drawCommand
	disposed bool
}

// NewRenderTree builds the render tree for doc. In CompatibilityEnforce mode
// the first unsupported feature fails construction with ErrUnsupportedFeature.
func NewRenderTree(doc *Document, cfg EngineConfig) (*RenderTree, error) {
	if doc == nil {
		return nil, errors.Wrap(ErrInvalidDocument, "nil document")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	t := &RenderTree{
		doc:          doc,
		root:         NewGroupNode(doc.Name),
		images:       cfg.Images,
		text:         cfg.Text,
		fonts:        cfg.Fonts,
		maskToBounds: cfg.MaskToBounds,
		compat:       cfg.Compatibility,
		logger:       cfg.Logger,
		frame:        doc.StartFrame,
		renderScale:  1,
	}
	if t.images == nil {
		t.images = nopImageProvider{}
	}
	if t.text == nil {
		t.text = DefaultTextProvider{}
	}
	if t.fonts == nil {
		t.fonts = DefaultFontProvider{}
	}
	if t.logger == nil {
		t.logger = sharedLogger
	}

	if v := doc.Version; v != "" && v != "1" && !strings.HasPrefix(v, "1.") {
		if err := t.unsupported("document version %q", v); err != nil {
			return nil, err
		}
	}
	for i := range doc.Layers {
		if err := t.buildLayer(&doc.Layers[i], Keypath{}, t.root); err != nil {
			return nil, err
		}
	}
	t.evaluate()
	return t, nil
}

// unsupported records a compatibility issue. It returns an error only in
// CompatibilityEnforce mode.
func (t *RenderTree) unsupported(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	if t.compat == CompatibilityEnforce {
		return errors.Wrap(ErrUnsupportedFeature, msg)
	}
	t.issues = append(t.issues, msg)
	t.logger.Warn().Str("document", t.doc.Name).Msg("unsupported: " + msg)
	return nil
}

// Compatibility returns the issues recorded in CompatibilityTrack mode.
func (t *RenderTree) Compatibility() []string {
	return append([]string(nil), t.issues...)
}

// Document returns the document the tree was built from.
func (t *RenderTree) Document() *Document { return t.doc }

// Root returns the root node. Its children are the top-level layers.
func (t *RenderTree) Root() *Node { return t.root }

// --- construction ---

func (t *RenderTree) buildLayer(spec *LayerSpec, parentPath Keypath, parent *Node) error {
	path := parentPath.Append(spec.Name)
	var n *Node
	switch spec.Type {
	case "", LayerTypeNull, LayerTypeGroup:
		n = NewGroupNode(spec.Name)
	case LayerTypeSolid:
		w, h := spec.Width, spec.Height
		if w == 0 && h == 0 {
			w, h = t.doc.Width, t.doc.Height
		}
		n = NewSolidNode(spec.Name, w, h, ColorWhite)
	case LayerTypeImage:
		asset, ok := t.doc.Asset(spec.Asset)
		if !ok {
			if err := t.unsupported("layer %q: missing asset %q", path, spec.Asset); err != nil {
				return err
			}
			asset = ImageAsset{ID: spec.Asset}
		}
		n = NewImageNode(spec.Name, asset)
		n.Image = t.images.Image(asset)
	case LayerTypeText:
		family := ""
		if spec.Text != nil {
			family = spec.Text.Font
		}
		n = NewTextNode(spec.Name, "", family, defaultFontSize)
	default:
		return t.unsupported("layer %q: type %q", path, spec.Type)
	}
	n.Keypath = path
	n.InFrame, n.OutFrame = spec.InFrame, spec.OutFrame
	if n.OutFrame <= n.InFrame {
		n.InFrame, n.OutFrame = t.doc.StartFrame, t.doc.EndFrame
	}
	parent.AddChild(n)
	t.layers = append(t.layers, n)

	if err := t.buildTransform(n, path.Append(GroupTransform), &spec.Transform); err != nil {
		return err
	}
	switch n.Type {
	case NodeTypeSolid:
		fill := spec.Fill
		if fill == nil {
			fill = &FillSpec{}
		}
		if err := t.buildFill(n, path.Append(GroupFill), fill); err != nil {
			return err
		}
	case NodeTypeText:
		txt := spec.Text
		if txt == nil {
			txt = &TextSpec{}
		}
		if err := t.buildText(n, path.Append(GroupText), txt); err != nil {
			return err
		}
	}
	if spec.Type == LayerTypeGroup {
		for i := range spec.Layers {
			if err := t.buildLayer(&spec.Layers[i], path, n); err != nil {
				return err
			}
		}
	} else if len(spec.Layers) > 0 {
		if err := t.unsupported("layer %q: children on %s layer", path, n.Type); err != nil {
			return err
		}
	}
	return nil
}

func (t *RenderTree) buildTransform(n *Node, group Keypath, spec *TransformSpec) error {
	props := []struct {
		name  string
		spec  *PropertySpec
		def   Value
		apply func(Value)
	}{
		{PropertyAnchorPoint, spec.AnchorPoint, VectorValue(0, 0), func(v Value) { n.SetPivot(v.Vector.X, v.Vector.Y) }},
		{PropertyPosition, spec.Position, VectorValue(0, 0), func(v Value) { n.SetPosition(v.Vector.X, v.Vector.Y) }},
		{PropertyScale, spec.Scale, VectorValue(100, 100), func(v Value) { n.SetScale(v.Vector.X/100, v.Vector.Y/100) }},
		{PropertyRotation, spec.Rotation, FloatValue(0), func(v Value) { n.SetRotation(v.Float * math.Pi / 180) }},
		{PropertyOpacity, spec.Opacity, FloatValue(100), func(v Value) { n.SetAlpha(clamp01(v.Float / 100)) }},
	}
	for _, p := range props {
		if err := t.addProperty(n, group.Append(p.name), p.spec, p.def, p.apply); err != nil {
			return err
		}
	}
	return nil
}

func (t *RenderTree) buildFill(n *Node, group Keypath, spec *FillSpec) error {
	if err := t.addProperty(n, group.Append(PropertyColor), spec.Color, ColorValue(ColorWhite), func(v Value) {
		n.Color = v.Color
	}); err != nil {
		return err
	}
	return t.addProperty(n, group.Append(PropertyOpacity), spec.Opacity, FloatValue(100), func(v Value) {
		n.FillAlpha = clamp01(v.Float / 100)
	})
}

func (t *RenderTree) buildText(n *Node, group Keypath, spec *TextSpec) error {
	sourcePath := group.Append(PropertySourceText)
	if err := t.addProperty(n, sourcePath, spec.Source, TextValue(""), func(v Value) {
		n.SourceText = v.Text
		n.Text = t.text.Text(sourcePath, v.Text)
	}); err != nil {
		return err
	}
	if err := t.addProperty(n, group.Append(PropertyFillColor), spec.Color, ColorValue(ColorWhite), func(v Value) {
		n.Color = v.Color
	}); err != nil {
		return err
	}
	return t.addProperty(n, group.Append(PropertyFontSize), spec.Size, FloatValue(defaultFontSize), func(v Value) {
		n.FontSize = v.Float
		n.Face = t.fonts.Face(n.FontFamily, v.Float)
		n.Width, n.Height = measureText(n.Text, n.Face)
	})
}

func (t *RenderTree) addProperty(n *Node, path Keypath, spec *PropertySpec, def Value, apply func(Value)) error {
	track, err := t.buildTrack(path, spec, def)
	if err != nil {
		return err
	}
	t.animators = append(t.animators, newAnimator(n, path, track, apply))
	return nil
}

func (t *RenderTree) buildTrack(path Keypath, spec *PropertySpec, def Value) (*Track, error) {
	if spec == nil || (spec.Value == nil && len(spec.Keyframes) == 0) {
		return StaticTrack(def), nil
	}
	if len(spec.Keyframes) == 0 {
		v, err := decodeValue(def.Kind, spec.Value)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidDocument, "%s: %v", path, err)
		}
		return StaticTrack(v), nil
	}
	keys := make([]Keyframe, 0, len(spec.Keyframes))
	for i, ks := range spec.Keyframes {
		v, err := decodeValue(def.Kind, ks.Value)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidDocument, "%s keyframe %d: %v", path, i, err)
		}
		k := Keyframe{Frame: ks.Frame, Value: v, Hold: ks.Hold}
		switch {
		case len(ks.Bezier) == 4:
			k.Easing = CubicBezier(ks.Bezier[0], ks.Bezier[1], ks.Bezier[2], ks.Bezier[3])
		default:
			e, ok := EasingByName(ks.Easing)
			if !ok {
				if err := t.unsupported("%s keyframe %d: easing %q", path, i, ks.Easing); err != nil {
					return nil, err
				}
				e, _ = EasingByName("linear")
			}
			k.Easing = e
		}
		keys = append(keys, k)
	}
	return NewTrack(def.Kind, keys...), nil
}

// --- evaluation ---

// evaluate applies every animator at the current frame and refreshes world
// transforms.
func (t *RenderTree) evaluate() {
	f := t.frame
	for _, n := range t.layers {
		n.Active = n.InFrame <= f && (f < n.OutFrame || (n.OutFrame == t.doc.EndFrame && f <= n.OutFrame))
	}
	for _, a := range t.animators {
		a.evaluate(f)
	}
	updateWorldTransform(t.root, identityTransform, 1, false)
	t.evaluated = true
	t.dirty = false
}

// CurrentFrame implements Engine.
func (t *RenderTree) CurrentFrame() float64 { return t.frame }

// SetCurrentFrame implements Engine. The tree is only re-evaluated when the
// frame changed or something invalidated it.
func (t *RenderTree) SetCurrentFrame(frame float64) {
	if t.disposed {
		return
	}
	if t.evaluated && !t.dirty && frame == t.frame {
		return
	}
	t.frame = frame
	t.evaluate()
}

// RenderScale implements Engine.
func (t *RenderTree) RenderScale() float64 { return t.renderScale }

// SetRenderScale implements Engine. Non-positive scales are ignored.
func (t *RenderTree) SetRenderScale(scale float64) {
	if scale <= 0 || math.IsNaN(scale) {
		t.logger.Warn().Float64("scale", scale).Msg("ignoring non-positive render scale")
		return
	}
	t.renderScale = scale
}

// RespectFrameRate implements Engine.
func (t *RenderTree) RespectFrameRate() bool { return t.respectFrameRate }

// SetRespectFrameRate implements Engine.
func (t *RenderTree) SetRespectFrameRate(respect bool) { t.respectFrameRate = respect }

// ImageProvider implements Engine.
func (t *RenderTree) ImageProvider() ImageProvider { return t.images }

// SetImageProvider implements Engine and reloads every image. nil restores
// the empty provider.
func (t *RenderTree) SetImageProvider(p ImageProvider) {
	if p == nil {
		p = nopImageProvider{}
	}
	t.images = p
	t.ReloadImages()
}

// TextProvider implements Engine.
func (t *RenderTree) TextProvider() TextProvider { return t.text }

// SetTextProvider implements Engine. nil restores DefaultTextProvider.
func (t *RenderTree) SetTextProvider(p TextProvider) {
	if p == nil {
		p = DefaultTextProvider{}
	}
	t.text = p
	t.dirty = true
}

// FontProvider implements Engine.
func (t *RenderTree) FontProvider() FontProvider { return t.fonts }

// SetFontProvider implements Engine. nil restores DefaultFontProvider.
func (t *RenderTree) SetFontProvider(p FontProvider) {
	if p == nil {
		p = DefaultFontProvider{}
	}
	t.fonts = p
	t.dirty = true
}

// ForceDisplayUpdate implements Engine.
func (t *RenderTree) ForceDisplayUpdate() {
	if t.disposed {
		return
	}
	t.evaluate()
}

// ReloadImages implements Engine.
func (t *RenderTree) ReloadImages() {
	for _, n := range t.layers {
		if n.Type == NodeTypeImage {
			n.Image = t.images.Image(n.Asset)
		}
	}
	t.dirty = true
}

// Keypaths returns every addressable keypath: layers first in tree order,
// each followed by its properties.
func (t *RenderTree) Keypaths() []string {
	out := make([]string, 0, len(t.layers)+len(t.animators))
	ai := 0
	for _, n := range t.layers {
		out = append(out, n.Keypath.String())
		for ai < len(t.animators) && t.animators[ai].node == n {
			out = append(out, t.animators[ai].keypath.String())
			ai++
		}
	}
	for ; ai < len(t.animators); ai++ {
		out = append(out, t.animators[ai].keypath.String())
	}
	return out
}

// LogHierarchyKeypaths implements Engine.
func (t *RenderTree) LogHierarchyKeypaths() {
	t.logger.Info().Str("document", t.doc.Name).Int("layers", len(t.layers)).
		Int("properties", len(t.animators)).Msg("keypath hierarchy")
	for _, kp := range t.Keypaths() {
		t.logger.Info().Str("keypath", kp).Msg("")
	}
}

// SetValueProvider implements Engine. Properties whose kind differs from the
// provider's are skipped with a warning. A nil provider clears overrides.
func (t *RenderTree) SetValueProvider(p ValueProvider, keypath Keypath) {
	m := keypath.matcher()
	matched := 0
	for _, a := range t.animators {
		if !m.match(a.keypath) {
			continue
		}
		if p != nil && p.Kind() != a.Kind() {
			t.logger.Warn().Str("keypath", a.keypath.String()).Stringer("want", a.Kind()).
				Stringer("got", p.Kind()).Msg("value provider kind mismatch")
			continue
		}
		a.override = p
		matched++
	}
	t.logger.Debug().Str("keypath", keypath.String()).Int("matched", matched).Msg("value provider bound")
	t.dirty = true
}

// Value implements Engine.
func (t *RenderTree) Value(keypath Keypath) (Value, bool) {
	m := keypath.matcher()
	for _, a := range t.animators {
		if m.match(a.keypath) {
			return a.value, true
		}
	}
	return Value{}, false
}

// ValueAtFrame implements Engine.
func (t *RenderTree) ValueAtFrame(keypath Keypath, frame float64) (Value, bool) {
	m := keypath.matcher()
	for _, a := range t.animators {
		if m.match(a.keypath) {
			return a.ValueAt(frame), true
		}
	}
	return Value{}, false
}

// NodeAt implements Engine.
func (t *RenderTree) NodeAt(keypath Keypath) (*Node, bool) {
	m := keypath.matcher()
	for _, n := range t.layers {
		if m.match(n.Keypath) {
			return n, true
		}
	}
	return nil, false
}

// AnimatorNodes implements Engine.
func (t *RenderTree) AnimatorNodes(keypath Keypath) []*Animator {
	m := keypath.matcher()
	var out []*Animator
	for _, a := range t.animators {
		if m.match(a.keypath) {
			out = append(out, a)
		}
	}
	return out
}

// Bounds implements Engine.
func (t *RenderTree) Bounds() Rect { return t.doc.Bounds() }

// Dispose releases the node tree. Further frame changes are ignored.
func (t *RenderTree) Dispose() {
	if t.disposed {
		return
	}
	t.disposed = true
	t.root.Dispose()
	t.layers = nil
	t.animators = nil
	t.commands = nil
}

// IsDisposed reports whether Dispose has run.
func (t *RenderTree) IsDisposed() bool { return t.disposed }
