package backend

import (
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/valerio/go-framepulse/framepulse/runloop"
)

// IntervalTimer is the software fallback for hosts without any display
// timing mechanism: a plain periodic timer at a fixed nominal rate. The
// timestamp is wall-clock time sampled at fire; the interval is the nominal
// period, not a measured one.
//
// The timer is created lazily on resume and fully stopped and dropped on
// every pause, so a paused IntervalTimer holds no live timer at all.
type IntervalTimer struct {
	loop   *runloop.Loop
	onTick TickFunc
	clock  clockwork.Clock
	period time.Duration

	paused bool
	closed bool
	timer  clockwork.Timer
}

// NewIntervalTimer creates a paused interval timer using the real clock.
func NewIntervalTimer(loop *runloop.Loop, onTick TickFunc, opts Options) *IntervalTimer {
	return NewIntervalTimerWithClock(loop, onTick, opts, clockwork.NewRealClock())
}

// NewIntervalTimerWithClock is NewIntervalTimer with an injected time
// source, so tests can drive ticks deterministically.
func NewIntervalTimerWithClock(loop *runloop.Loop, onTick TickFunc, opts Options, clock clockwork.Clock) *IntervalTimer {
	return &IntervalTimer{
		loop:   loop,
		onTick: onTick,
		clock:  clock,
		period: opts.period(),
		paused: true,
	}
}

func (it *IntervalTimer) SetPaused(paused bool) {
	it.loop.Assert()
	if it.closed || paused == it.paused {
		return
	}
	it.paused = paused

	if paused {
		it.timer.Stop()
		it.timer = nil
		return
	}
	it.arm()
}

func (it *IntervalTimer) Paused() bool {
	it.loop.Assert()
	return it.paused
}

func (it *IntervalTimer) Close() error {
	it.loop.Assert()
	if it.closed {
		return nil
	}
	it.SetPaused(true)
	it.closed = true
	return nil
}

// HasTimer reports whether a live timer exists right now. Paused and closed
// interval timers hold none.
func (it *IntervalTimer) HasTimer() bool {
	it.loop.Assert()
	return it.timer != nil
}

func (it *IntervalTimer) arm() {
	// AfterFunc fires on the clock's goroutine; hop back onto the loop
	// before touching state.
	it.timer = it.clock.AfterFunc(it.period, func() {
		it.loop.Post(it.fire)
	})
}

// fire runs on the loop goroutine. A fire that raced with pause or close
// arrives with the flag already set and is swallowed.
func (it *IntervalTimer) fire() {
	if it.paused || it.closed {
		return
	}
	tick := Tick{Timestamp: it.clock.Now(), Interval: it.period}
	it.arm()
	it.onTick(tick)
}
