package runloop

import (
	"bytes"
	"runtime"
	"strconv"
	"sync/atomic"
)

// goroutineRef remembers which goroutine owns the loop so Assert can check
// callers against it. The id is parsed from the runtime.Stack header, the
// same trick used by race-detection helpers; it is cheap enough for a
// per-call precondition.
type goroutineRef struct {
	id atomic.Uint64
}

func (g *goroutineRef) capture() {
	g.id.Store(goroutineID())
}

func (g *goroutineRef) release() {
	g.id.Store(0)
}

func (g *goroutineRef) current() bool {
	id := g.id.Load()
	return id != 0 && id == goroutineID()
}

func goroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	// Header looks like "goroutine 12 [running]:".
	fields := bytes.Fields(buf[:n])
	if len(fields) < 2 {
		return 0
	}
	id, err := strconv.ParseUint(string(fields[1]), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
