package framebridge

import "reflect"

// DisplayEvent describes one display pass of a FrameLayer.
type DisplayEvent struct {
	Layer *FrameLayer
	// Frame is the value pushed into the engine.
	Frame float64
	// Candidate is the frame before frame-rate flooring.
	Candidate float64
	// Interpolated is true when the frame came from the presentation snapshot.
	Interpolated bool
	// Quantized is true when flooring changed the frame.
	Quantized bool
}

// DisplayObserver is notified after each display pass, on the UI goroutine.
type DisplayObserver interface {
	FrameDisplayed(ev DisplayEvent)
}

// DisplayObserverFunc adapts a function to DisplayObserver.
type DisplayObserverFunc func(ev DisplayEvent)

// FrameDisplayed implements DisplayObserver.
func (f DisplayObserverFunc) FrameDisplayed(ev DisplayEvent) { f(ev) }

// observerEntry gives each registration its own identity, so removal never
// compares observer values.
type observerEntry struct {
	o DisplayObserver
}

// AddObserver registers o for display passes of this layer and returns a
// function that unregisters it. Copies made afterwards inherit the observers
// registered so far; the returned function only affects this layer.
func (l *FrameLayer) AddObserver(o DisplayObserver) (remove func()) {
	if o == nil {
		return func() {}
	}
	e := &observerEntry{o: o}
	l.observers = append(l.observers, e)
	return func() { l.removeEntry(func(x *observerEntry) bool { return x == e }) }
}

// RemoveObserver unregisters the first registration of o. Observers whose
// dynamic type is not comparable, such as DisplayObserverFunc, are never
// matched; use the function returned by AddObserver for those.
func (l *FrameLayer) RemoveObserver(o DisplayObserver) {
	if o == nil || !reflect.TypeOf(o).Comparable() {
		return
	}
	l.removeEntry(func(x *observerEntry) bool {
		return reflect.TypeOf(x.o) == reflect.TypeOf(o) && x.o == o
	})
}

func (l *FrameLayer) removeEntry(match func(*observerEntry) bool) {
	for i, x := range l.observers {
		if match(x) {
			l.observers = append(l.observers[:i:i], l.observers[i+1:]...)
			return
		}
	}
}
