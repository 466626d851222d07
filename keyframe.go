package framebridge

import (
	"math"
	"sort"

	"github.com/fogleman/ease"
)

// Easing maps normalized progress t in [0, 1] to eased progress.
type Easing func(t float64) float64

var namedEasings = map[string]Easing{
	"":             ease.Linear,
	"linear":       ease.Linear,
	"inQuad":       ease.InQuad,
	"outQuad":      ease.OutQuad,
	"inOutQuad":    ease.InOutQuad,
	"inCubic":      ease.InCubic,
	"outCubic":     ease.OutCubic,
	"inOutCubic":   ease.InOutCubic,
	"inSine":       ease.InSine,
	"outSine":      ease.OutSine,
	"inOutSine":    ease.InOutSine,
	"inExpo":       ease.InExpo,
	"outExpo":      ease.OutExpo,
	"inOutExpo":    ease.InOutExpo,
	"inBack":       ease.InBack,
	"outBack":      ease.OutBack,
	"inOutBack":    ease.InOutBack,
	"inBounce":     ease.InBounce,
	"outBounce":    ease.OutBounce,
	"inOutBounce":  ease.InOutBounce,
	"inElastic":    ease.InElastic,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
}

// EasingByName returns a named easing. "" and "linear" are linear.
func EasingByName(name string) (Easing, bool) {
	e, ok := namedEasings[name]
	return e, ok
}

// CubicBezier returns the easing for a CSS-style cubic bezier with control
// points (x1, y1) and (x2, y2). x1 and x2 are clamped to [0, 1] so the curve
// stays a function of t.
func CubicBezier(x1, y1, x2, y2 float64) Easing {
	x1, x2 = clamp01(x1), clamp01(x2)
	if x1 == y1 && x2 == y2 {
		return ease.Linear
	}
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		return bezierComponent(solveBezierX(t, x1, x2), y1, y2)
	}
}

// bezierComponent evaluates one axis of the curve anchored at 0 and 1.
func bezierComponent(s, p1, p2 float64) float64 {
	inv := 1 - s
	return 3*inv*inv*s*p1 + 3*inv*s*s*p2 + s*s*s
}

func bezierSlope(s, p1, p2 float64) float64 {
	inv := 1 - s
	return 3*inv*inv*p1 + 6*inv*s*(p2-p1) + 3*s*s*(1-p2)
}

// solveBezierX finds the curve parameter whose x equals x. Newton steps first,
// bisection when the slope flattens out.
func solveBezierX(x, x1, x2 float64) float64 {
	s := x
	for i := 0; i < 8; i++ {
		err := bezierComponent(s, x1, x2) - x
		if math.Abs(err) < 1e-7 {
			return s
		}
		d := bezierSlope(s, x1, x2)
		if math.Abs(d) < 1e-6 {
			break
		}
		s -= err / d
	}
	lo, hi := 0.0, 1.0
	s = x
	for i := 0; i < 40; i++ {
		v := bezierComponent(s, x1, x2)
		if math.Abs(v-x) < 1e-7 {
			break
		}
		if v < x {
			lo = s
		} else {
			hi = s
		}
		s = (lo + hi) / 2
	}
	return s
}

// Keyframe is one authored value on a Track. Easing shapes the segment that
// starts at this keyframe; Hold keeps Value until the next keyframe.
type Keyframe struct {
	Frame  float64
	Value  Value
	Easing Easing
	Hold   bool
}

// Track is a keyframed property of a single kind.
type Track struct {
	kind ValueKind
	keys []Keyframe
}

// NewTrack sorts keys by frame. Keys whose value kind differs from kind are
// dropped.
func NewTrack(kind ValueKind, keys ...Keyframe) *Track {
	t := &Track{kind: kind}
	for _, k := range keys {
		if k.Value.Kind == kind {
			t.keys = append(t.keys, k)
		}
	}
	sort.SliceStable(t.keys, func(i, j int) bool { return t.keys[i].Frame < t.keys[j].Frame })
	return t
}

// StaticTrack is a track with a single value.
func StaticTrack(v Value) *Track {
	return NewTrack(v.Kind, Keyframe{Value: v})
}

// Kind returns the value kind of the track.
func (t *Track) Kind() ValueKind { return t.kind }

// Keyframes returns the sorted keys. The returned slice MUST NOT be mutated.
func (t *Track) Keyframes() []Keyframe { return t.keys }

// IsAnimated reports whether the track has more than one key.
func (t *Track) IsAnimated() bool { return len(t.keys) > 1 }

// At evaluates the track. Frames before the first key hold the first value;
// frames after the last key hold the last value.
func (t *Track) At(frame float64) Value {
	n := len(t.keys)
	switch {
	case n == 0:
		return Value{}
	case n == 1 || frame <= t.keys[0].Frame:
		return t.keys[0].Value
	case frame >= t.keys[n-1].Frame:
		return t.keys[n-1].Value
	}
	i := sort.Search(n, func(i int) bool { return t.keys[i].Frame > frame }) - 1
	from, to := t.keys[i], t.keys[i+1]
	if from.Hold {
		return from.Value
	}
	span := to.Frame - from.Frame
	if span <= 0 {
		return to.Value
	}
	p := (frame - from.Frame) / span
	if from.Easing != nil {
		p = from.Easing(p)
	}
	return from.Value.Lerp(to.Value, p)
}
