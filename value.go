package framebridge

import (
	"fmt"
	"math"
)

// ValueKind tags the payload carried by a Value.
type ValueKind uint8

const (
	KindFloat  ValueKind = iota + 1 // opacity, rotation, font size
	KindVector                      // position, anchor point, scale
	KindColor                       // fills
	KindText                        // source text
)

func (k ValueKind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindVector:
		return "vector"
	case KindColor:
		return "color"
	case KindText:
		return "text"
	}
	return "invalid"
}

// ParseValueKind maps the names returned by ValueKind.String back to kinds.
func ParseValueKind(s string) (ValueKind, bool) {
	switch s {
	case "float":
		return KindFloat, true
	case "vector":
		return KindVector, true
	case "color":
		return KindColor, true
	case "text":
		return KindText, true
	}
	return 0, false
}

// Value is a resolved property value. Only the field matching Kind is
// meaningful; the zero Value has no kind and is never returned as a match.
type Value struct {
	Kind   ValueKind
	Float  float64
	Vector Vec2
	Color  Color
	Text   string
}

// FloatValue wraps a scalar.
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }

// VectorValue wraps a 2D vector.
func VectorValue(x, y float64) Value { return Value{Kind: KindVector, Vector: Vec2{x, y}} }

// ColorValue wraps a color.
func ColorValue(c Color) Value { return Value{Kind: KindColor, Color: c} }

// TextValue wraps a string.
func TextValue(s string) Value { return Value{Kind: KindText, Text: s} }

// IsValid reports whether v carries a kind.
func (v Value) IsValid() bool { return v.Kind != 0 }

// Lerp interpolates between v and to. Text does not interpolate: it holds v
// until t reaches 1. Mismatched kinds return v unchanged.
func (v Value) Lerp(to Value, t float64) Value {
	if v.Kind != to.Kind {
		return v
	}
	switch v.Kind {
	case KindFloat:
		return FloatValue(v.Float + (to.Float-v.Float)*t)
	case KindVector:
		return VectorValue(v.Vector.X+(to.Vector.X-v.Vector.X)*t, v.Vector.Y+(to.Vector.Y-v.Vector.Y)*t)
	case KindColor:
		return ColorValue(v.Color.Lerp(to.Color, t))
	case KindText:
		if t >= 1 {
			return to
		}
	}
	return v
}

func (v Value) String() string {
	switch v.Kind {
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindVector:
		return fmt.Sprintf("[%g, %g]", v.Vector.X, v.Vector.Y)
	case KindColor:
		return fmt.Sprintf("%s@%.2f", v.Color.Hex(), v.Color.A)
	case KindText:
		return fmt.Sprintf("%q", v.Text)
	}
	return "<invalid>"
}

// DecodeValue converts a value decoded from JSON or YAML into kind.
func DecodeValue(kind ValueKind, raw any) (Value, error) { return decodeValue(kind, raw) }

// decodeValue converts a loosely typed document or wire value into kind.
// Numbers may arrive as float64 or int (YAML), vectors as [x, y] or a bare
// number (uniform), colors as hex strings or [r, g, b(, a)] in [0, 1].
func decodeValue(kind ValueKind, raw any) (Value, error) {
	switch kind {
	case KindFloat:
		f, ok := toFloat(raw)
		if !ok {
			return Value{}, fmt.Errorf("%w: want number, got %T", ErrKindMismatch, raw)
		}
		return FloatValue(f), nil
	case KindVector:
		if f, ok := toFloat(raw); ok {
			return VectorValue(f, f), nil
		}
		nums, ok := toFloats(raw)
		if !ok || len(nums) < 2 {
			return Value{}, fmt.Errorf("%w: want [x, y], got %v", ErrKindMismatch, raw)
		}
		return VectorValue(nums[0], nums[1]), nil
	case KindColor:
		if s, ok := raw.(string); ok {
			c, err := ParseHexColor(s)
			if err != nil {
				return Value{}, fmt.Errorf("%w: bad color %q: %v", ErrKindMismatch, s, err)
			}
			return ColorValue(c), nil
		}
		nums, ok := toFloats(raw)
		if !ok || len(nums) < 3 {
			return Value{}, fmt.Errorf("%w: want hex or [r, g, b], got %v", ErrKindMismatch, raw)
		}
		c := Color{nums[0], nums[1], nums[2], 1}
		if len(nums) > 3 {
			c.A = nums[3]
		}
		return ColorValue(c), nil
	case KindText:
		switch s := raw.(type) {
		case string:
			return TextValue(s), nil
		case nil:
			return TextValue(""), nil
		}
		return TextValue(fmt.Sprint(raw)), nil
	}
	return Value{}, fmt.Errorf("%w: unknown kind %d", ErrKindMismatch, kind)
}

func toFloat(raw any) (float64, bool) {
	switch n := raw.(type) {
	case float64:
		return n, !math.IsNaN(n)
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func toFloats(raw any) ([]float64, bool) {
	var items []any
	switch list := raw.(type) {
	case []any:
		items = list
	case []float64:
		return list, true
	default:
		return nil, false
	}
	out := make([]float64, len(items))
	for i, item := range items {
		f, ok := toFloat(item)
		if !ok {
			return nil, false
		}
		out[i] = f
	}
	return out, true
}
