package framebridge

// Property names used as the final keypath segment.
const (
	PropertyAnchorPoint = "Anchor Point"
	PropertyPosition    = "Position"
	PropertyScale       = "Scale"
	PropertyRotation    = "Rotation"
	PropertyOpacity     = "Opacity"
	PropertyColor       = "Color"
	PropertySourceText  = "Source Text"
	PropertyFillColor   = "Fill Color"
	PropertyFontSize    = "Font Size"
)

// Group names between the layer path and the property.
const (
	GroupTransform = "Transform"
	GroupFill      = "Fill"
	GroupText      = "Text"
)

// Animator drives one property of one node. On every evaluation it resolves
// a value for the frame, from the override provider when one is bound and
// from the authored track otherwise, and writes it into the node.
type Animator struct {
	keypath  Keypath
	node     *Node
	track    *Track
	override ValueProvider
	apply    func(Value)
	value    Value
}

func newAnimator(node *Node, keypath Keypath, track *Track, apply func(Value)) *Animator {
	return &Animator{keypath: keypath, node: node, track: track, apply: apply}
}

// Keypath returns the full path of the property.
func (a *Animator) Keypath() Keypath { return a.keypath }

// Property returns the property name (the last keypath segment).
func (a *Animator) Property() string { return a.keypath.Last() }

// Kind returns the value kind of the property.
func (a *Animator) Kind() ValueKind { return a.track.Kind() }

// Node returns the node the animator writes to.
func (a *Animator) Node() *Node { return a.node }

// Track returns the authored keyframes.
func (a *Animator) Track() *Track { return a.track }

// Override returns the bound value provider, or nil.
func (a *Animator) Override() ValueProvider { return a.override }

// Value returns the value written on the last evaluation.
func (a *Animator) Value() Value { return a.value }

// ValueAt resolves the property at frame without touching the node.
func (a *Animator) ValueAt(frame float64) Value {
	if a.override != nil {
		if v := a.override.ValueAt(frame); v.Kind == a.Kind() {
			return v
		}
	}
	return a.track.At(frame)
}

// evaluate resolves and applies the value for frame.
func (a *Animator) evaluate(frame float64) {
	a.value = a.ValueAt(frame)
	if a.apply != nil && a.value.IsValid() {
		a.apply(a.value)
	}
}
