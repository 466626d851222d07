package framebridge

import (
	"sync/atomic"

	"github.com/petermattis/goid"
)

// uiGoroutine holds the id of the goroutine bound as the UI thread, or 0.
var uiGoroutine atomic.Uint64

// BindUIThread marks the calling goroutine as the UI thread. Display passes
// invoked from any other goroutine are no-ops. NewCompositor calls this.
func BindUIThread() {
	uiGoroutine.Store(goroutineID())
}

// IsUIThread reports whether the calling goroutine is the bound UI thread.
// It is false everywhere until BindUIThread has been called.
func IsUIThread() bool {
	id := uiGoroutine.Load()
	return id != 0 && id == goroutineID()
}

func goroutineID() uint64 {
	return uint64(goid.Get())
}
