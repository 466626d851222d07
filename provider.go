package framebridge

// ValueProvider supplies a property value for any frame. The engine consults
// it in place of the authored keyframes wherever its keypath matches.
type ValueProvider interface {
	Kind() ValueKind
	ValueAt(frame float64) Value
}

type staticValue struct{ v Value }

// StaticValue returns a provider that always yields v.
func StaticValue(v Value) ValueProvider { return staticValue{v} }

func (s staticValue) Kind() ValueKind { return s.v.Kind }
func (s staticValue) ValueAt(float64) Value { return s.v }

// FloatFunc computes a scalar per frame.
type FloatFunc func(frame float64) float64

func (FloatFunc) Kind() ValueKind { return KindFloat }
func (f FloatFunc) ValueAt(frame float64) Value { return FloatValue(f(frame)) }

// VectorFunc computes a vector per frame.
type VectorFunc func(frame float64) Vec2

func (VectorFunc) Kind() ValueKind { return KindVector }
func (f VectorFunc) ValueAt(frame float64) Value {
	v := f(frame)
	return VectorValue(v.X, v.Y)
}

// ColorFunc computes a color per frame.
type ColorFunc func(frame float64) Color

func (ColorFunc) Kind() ValueKind { return KindColor }
func (f ColorFunc) ValueAt(frame float64) Value { return ColorValue(f(frame)) }

// TextFunc computes text per frame.
type TextFunc func(frame float64) string

func (TextFunc) Kind() ValueKind { return KindText }
func (f TextFunc) ValueAt(frame float64) Value { return TextValue(f(frame)) }

// KeyframeProvider replays a Track, letting callers animate an override on
// the document timeline.
type KeyframeProvider struct {
	Track *Track
}

// Kind implements ValueProvider.
func (p KeyframeProvider) Kind() ValueKind { return p.Track.Kind() }

// ValueAt implements ValueProvider.
func (p KeyframeProvider) ValueAt(frame float64) Value { return p.Track.At(frame) }
