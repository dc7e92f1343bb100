package syncutil

import (
	"bytes"
	"runtime"
	"strconv"
)

// GoroutineID returns the id of the calling goroutine.
//
// The runtime hides goroutine ids on purpose, so this parses the header of
// a single-goroutine stack dump ("goroutine 123 [running]:"). It exists for
// debug assertions, owner-tracked mutexes and freeze tokens; never make
// scheduling decisions with it.
func GoroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i >= 0 {
		buf = buf[:i]
	}
	id, err := strconv.ParseUint(string(buf), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
