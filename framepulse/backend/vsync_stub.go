//go:build !sdl2

package backend

import (
	"fmt"

	"github.com/valerio/go-framepulse/framepulse/runloop"
)

// VSync stub for when SDL2 is not available.
type VSync struct{}

func NewVSync(loop *runloop.Loop, onTick TickFunc) (*VSync, error) {
	return nil, fmt.Errorf("vsync backend not available - compile with -tags sdl2 and install SDL2 development libraries")
}

func (v *VSync) SetPaused(paused bool) {}

func (v *VSync) Paused() bool {
	return true
}

func (v *VSync) Close() error {
	return nil
}
