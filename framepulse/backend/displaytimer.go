package backend

import (
	"log/slog"
	"time"

	"github.com/valerio/go-framepulse/framepulse/runloop"
)

// DisplayTimer paces ticks at the display's nominal refresh rate from a
// dedicated goroutine, compensating for scheduling drift against absolute
// deadlines. Because the goroutine fires off the loop, every tick is
// redispatched onto the loop before it touches backend state; Post is FIFO,
// so tick order survives the hop.
type DisplayTimer struct {
	loop   *runloop.Loop
	onTick TickFunc
	period time.Duration

	paused bool
	closed bool
	stop   chan struct{}
}

// NewDisplayTimer creates a paused display timer.
func NewDisplayTimer(loop *runloop.Loop, onTick TickFunc, opts Options) *DisplayTimer {
	return &DisplayTimer{
		loop:   loop,
		onTick: onTick,
		period: opts.period(),
		paused: true,
	}
}

func (d *DisplayTimer) SetPaused(paused bool) {
	d.loop.Assert()
	if d.closed || paused == d.paused {
		return
	}
	d.paused = paused

	if paused {
		close(d.stop)
		d.stop = nil
		return
	}
	d.stop = make(chan struct{})
	go d.run(d.stop)
}

func (d *DisplayTimer) Paused() bool {
	d.loop.Assert()
	return d.paused
}

func (d *DisplayTimer) Close() error {
	d.loop.Assert()
	if d.closed {
		return nil
	}
	d.SetPaused(true)
	d.closed = true
	return nil
}

// run fires ticks against absolute deadlines until stop closes. Runs off
// the loop goroutine.
func (d *DisplayTimer) run(stop chan struct{}) {
	slog.Debug("display timer started", "period", d.period)
	next := time.Now().Add(d.period)

	for {
		wait := time.Until(next)
		if wait > 0 {
			t := time.NewTimer(wait)
			select {
			case <-stop:
				t.Stop()
				return
			case <-t.C:
			}
		} else if wait < -5*time.Millisecond {
			// Too far behind schedule to catch up; missed ticks
			// are simply missed.
			next = time.Now()
		}

		select {
		case <-stop:
			return
		default:
		}

		tick := Tick{Timestamp: next.Add(d.period), Interval: d.period}
		d.loop.Post(func() { d.forward(tick) })
		next = next.Add(d.period)
	}
}

// forward runs on the loop goroutine. Ticks posted before a pause or close
// took effect land here afterwards; they are swallowed.
func (d *DisplayTimer) forward(t Tick) {
	if d.paused || d.closed {
		return
	}
	d.onTick(t)
}
