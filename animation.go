package framebridge

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// PropertyAnimation interpolates one float attribute of a layer from From to
// To over Duration seconds. The compositor advances it on Tick and writes the
// interpolated value into the layer's presentation snapshot; the model value
// is untouched. Finished animations are removed unless Loop is set.
//
// Elapsed time and the interpolated value are kept in float64. Timing only
// shapes the 0..1 progress, so large or fractional From/To values are not
// rounded to float32.
type PropertyAnimation struct {
	Key      string
	From, To float64
	Duration float32
	Timing   ease.TweenFunc // nil is linear
	Loop     bool

	tween   *gween.Tween
	started bool
	elapsed float64
	value   float64
}

// start (re)creates the progress tween.
func (a *PropertyAnimation) start() {
	a.tween = nil
	if a.Timing != nil {
		a.tween = gween.New(0, 1, a.Duration, a.Timing)
	}
	a.started = true
	a.elapsed = 0
	a.value = a.From
}

// progress returns the eased 0..1 progress for the current elapsed time.
func (a *PropertyAnimation) progress() float64 {
	d := float64(a.Duration)
	if d <= 0 || a.elapsed >= d {
		return 1
	}
	if a.tween == nil {
		return a.elapsed / d
	}
	p, _ := a.tween.Set(float32(a.elapsed))
	return float64(p)
}

// step advances the animation by dt seconds and returns the interpolated
// value and whether it finished. Looping animations restart instead of
// finishing.
func (a *PropertyAnimation) step(dt float32) (float64, bool) {
	if !a.started {
		a.start()
	}
	a.elapsed += float64(dt)
	p := a.progress()
	a.value = a.From + (a.To-a.From)*p
	done := a.elapsed >= float64(a.Duration)
	if done && a.Loop {
		a.elapsed = 0
		done = false
	}
	return a.value, done
}

// Value returns the interpolated value from the last step, or From before
// the first step.
func (a *PropertyAnimation) Value() float64 {
	return a.value
}
