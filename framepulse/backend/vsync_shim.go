//go:build sdl2

package backend

import "sync/atomic"

// vsyncShim sits between the present loop and the backend. The present loop
// holds only the shim; detaching it at Close guarantees a vsync wakeup that
// is already past its stop check can never reach a torn-down backend.
type vsyncShim struct {
	target atomic.Pointer[VSync]
}

func newVSyncShim(v *VSync) *vsyncShim {
	s := &vsyncShim{}
	s.target.Store(v)
	return s
}

func (s *vsyncShim) tick(t Tick) {
	v := s.target.Load()
	if v == nil {
		return
	}
	v.loop.Post(func() { v.forward(t) })
}

func (s *vsyncShim) detach() {
	s.target.Store(nil)
}
