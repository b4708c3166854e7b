//go:build sdl2

package backend

import (
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/valerio/go-framepulse/framepulse/runloop"
	"github.com/veandco/go-sdl2/sdl"
)

// VSync derives ticks from the display's vertical sync. A hidden SDL window
// with a vsync-enabled renderer is the upstream resource; a present loop
// blocks on each refresh and reports hardware-derived timing.
// Building this requires SDL2 development libraries installed. Default
// builds skip this and use a stub, see build tags (sdl2).
type VSync struct {
	loop   *runloop.Loop
	onTick TickFunc

	window   *sdl.Window
	renderer *sdl.Renderer
	period   time.Duration

	paused bool
	closed bool
	shim   *vsyncShim
	stop   chan struct{}
	done   chan struct{}
}

// NewVSync creates a paused vsync backend. Fails when the host offers no
// vsync-capable display; that is a static property of the host, not a
// transient error.
func NewVSync(loop *runloop.Loop, onTick TickFunc) (*VSync, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, fmt.Errorf("failed to initialize SDL2: %v", err)
	}

	window, err := sdl.CreateWindow(
		"framepulse",
		sdl.WINDOWPOS_UNDEFINED,
		sdl.WINDOWPOS_UNDEFINED,
		1, 1,
		sdl.WINDOW_HIDDEN,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create window: %v", err)
	}

	renderer, err := sdl.CreateRenderer(window, -1,
		sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("failed to create vsync renderer: %v", err)
	}

	mode, err := sdl.GetCurrentDisplayMode(0)
	if err != nil || mode.RefreshRate <= 0 {
		window.Destroy()
		renderer.Destroy()
		return nil, fmt.Errorf("display reports no refresh rate: %v", err)
	}

	v := &VSync{
		loop:     loop,
		onTick:   onTick,
		window:   window,
		renderer: renderer,
		period:   time.Duration(float64(time.Second) / float64(mode.RefreshRate)),
		paused:   true,
	}
	v.shim = newVSyncShim(v)

	slog.Debug("vsync backend created", "refresh_hz", mode.RefreshRate)
	return v, nil
}

func (v *VSync) SetPaused(paused bool) {
	v.loop.Assert()
	if v.closed || paused == v.paused {
		return
	}
	v.paused = paused

	if paused {
		close(v.stop)
		// Join the present loop before returning: it finishes at most
		// one Present after the stop signal, so the wait is bounded by
		// a single refresh. Without the join, Close could destroy the
		// renderer under an in-flight Present, and a quick resume
		// could race a second present loop against the first.
		<-v.done
		v.stop = nil
		v.done = nil
		return
	}
	v.stop = make(chan struct{})
	v.done = make(chan struct{})
	go v.present(v.stop, v.done)
}

func (v *VSync) Paused() bool {
	v.loop.Assert()
	return v.paused
}

func (v *VSync) Close() error {
	v.loop.Assert()
	if v.closed {
		return nil
	}
	// SetPaused(true) joins the present loop, so by the time it returns
	// no goroutine can be inside an SDL call on these handles.
	v.SetPaused(true)
	v.closed = true

	// Detach the shim too: ticks it already posted to the loop must not
	// reach the backend once its resources are gone.
	v.shim.detach()
	v.renderer.Destroy()
	v.window.Destroy()
	return nil
}

// present blocks on the renderer's vertical sync once per refresh. Runs on
// its own locked OS thread, off the loop goroutine. Closes done on exit so
// SetPaused can join it.
func (v *VSync) present(stop, done chan struct{}) {
	defer close(done)
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-stop:
			return
		default:
		}

		v.renderer.Present()
		v.shim.tick(Tick{
			Timestamp: time.Now().Add(v.period),
			Interval:  v.period,
		})
	}
}

// forward runs on the loop goroutine.
func (v *VSync) forward(t Tick) {
	if v.paused || v.closed {
		return
	}
	v.onTick(t)
}
