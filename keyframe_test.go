package framebridge

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestTrackAt(t *testing.T) {
	tr := NewTrack(KindFloat,
		Keyframe{Frame: 10, Value: FloatValue(100)},
		Keyframe{Frame: 0, Value: FloatValue(0)},
		Keyframe{Frame: 20, Value: FloatValue(50)},
	)
	tests := []struct {
		frame, want float64
	}{
		{-5, 0},
		{0, 0},
		{5, 50},
		{10, 100},
		{15, 75},
		{20, 50},
		{99, 50},
	}
	for _, tt := range tests {
		if got := tr.At(tt.frame); !approx(got.Float, tt.want) {
			t.Errorf("At(%v) = %v, want %v", tt.frame, got.Float, tt.want)
		}
	}
	if !tr.IsAnimated() {
		t.Error("three-key track should be animated")
	}
}

func TestTrackDropsMismatchedKinds(t *testing.T) {
	tr := NewTrack(KindFloat,
		Keyframe{Frame: 0, Value: FloatValue(1)},
		Keyframe{Frame: 5, Value: TextValue("x")},
	)
	if len(tr.Keyframes()) != 1 {
		t.Errorf("keys = %d, want 1", len(tr.Keyframes()))
	}
	if tr.IsAnimated() {
		t.Error("single-key track should not be animated")
	}
}

func TestTrackEmpty(t *testing.T) {
	if got := NewTrack(KindFloat).At(3); got.IsValid() {
		t.Errorf("empty track At = %v, want invalid", got)
	}
}

func TestTrackHold(t *testing.T) {
	tr := NewTrack(KindFloat,
		Keyframe{Frame: 0, Value: FloatValue(1), Hold: true},
		Keyframe{Frame: 10, Value: FloatValue(2)},
	)
	if got := tr.At(9.9); got.Float != 1 {
		t.Errorf("held At(9.9) = %v, want 1", got.Float)
	}
	if got := tr.At(10); got.Float != 2 {
		t.Errorf("At(10) = %v, want 2", got.Float)
	}
}

func TestTrackEasing(t *testing.T) {
	inQuad, ok := EasingByName("inQuad")
	if !ok {
		t.Fatal("inQuad not registered")
	}
	tr := NewTrack(KindFloat,
		Keyframe{Frame: 0, Value: FloatValue(0), Easing: inQuad},
		Keyframe{Frame: 10, Value: FloatValue(100)},
	)
	if got := tr.At(5); !approx(got.Float, 25) {
		t.Errorf("inQuad At(5) = %v, want 25", got.Float)
	}
}

func TestEasingByName(t *testing.T) {
	for _, name := range []string{"", "linear", "outCubic", "inOutElastic"} {
		if _, ok := EasingByName(name); !ok {
			t.Errorf("EasingByName(%q) missing", name)
		}
	}
	if _, ok := EasingByName("wobble"); ok {
		t.Error("unknown easing should not resolve")
	}
}

func TestCubicBezier(t *testing.T) {
	linear := CubicBezier(0.25, 0.25, 0.75, 0.75)
	for _, x := range []float64{0, 0.1, 0.5, 0.9, 1} {
		if got := linear(x); !approx(got, x) {
			t.Errorf("linear bezier(%v) = %v", x, got)
		}
	}

	easeInOut := CubicBezier(0.42, 0, 0.58, 1)
	if got := easeInOut(0.5); !approx(got, 0.5) {
		t.Errorf("ease-in-out(0.5) = %v, want 0.5", got)
	}
	if got := easeInOut(0.25); got >= 0.25 {
		t.Errorf("ease-in-out(0.25) = %v, want < 0.25", got)
	}
	if easeInOut(-1) != 0 || easeInOut(2) != 1 {
		t.Error("bezier should clamp outside [0, 1]")
	}

	prev := 0.0
	for i := 1; i <= 100; i++ {
		v := easeInOut(float64(i) / 100)
		if v < prev-1e-9 {
			t.Fatalf("bezier not monotonic at %d: %v < %v", i, v, prev)
		}
		prev = v
	}
}
