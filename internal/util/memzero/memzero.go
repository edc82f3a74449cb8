package memzero

import "runtime"

// Zero wipes the buffer. Best-effort: the noinline pragma and KeepAlive
// reduce the chance of the compiler eliding the writes.
//
//go:noinline
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
	runtime.KeepAlive(&b)
}
