package interrupt

import (
	"bytes"
	"runtime"
)

var mainGoroutinePrefix = []byte("goroutine 1 ")

func onMainGoroutine() bool {
	buf := make([]byte, 64)
	n := runtime.Stack(buf, false)
	return bytes.HasPrefix(buf[:n], mainGoroutinePrefix)
}

// assertMainGoroutine panics unless called from goroutine 1. Main exits the
// process, so it must own the main goroutine.
func assertMainGoroutine() {
	if !onMainGoroutine() {
		panic("interrupt.Main must be called from the main goroutine (goroutine 1)")
	}
}
