// Package clock multiplexes one display timing backend to many frame
// observers, pausing the backend whenever nobody is subscribed.
package clock

import (
	"log/slog"

	"github.com/google/uuid"
	"github.com/valerio/go-framepulse/framepulse/backend"
	"github.com/valerio/go-framepulse/framepulse/runloop"
)

// Clock multiplexes one timing backend across any number of frame sinks.
// It owns the backend exclusively: the backend is resumed when the first
// sink subscribes, paused when the last one cancels, so an unused clock
// costs no wakeups at all.
//
// All methods must be called on the clock's loop goroutine; the clock's
// state is confined to it and unsynchronized.
type Clock struct {
	loop    *runloop.Loop
	backend backend.Backend
	sinks   map[uuid.UUID]FrameSink
	closed  bool
}

// New creates a clock on the given loop, selecting the best timing backend
// available on this host. The clock starts paused.
func New(loop *runloop.Loop, opts backend.Options) (*Clock, error) {
	c := &Clock{
		loop:  loop,
		sinks: make(map[uuid.UUID]FrameSink),
	}
	b, err := backend.Select(loop, c.onTick, opts)
	if err != nil {
		return nil, err
	}
	c.backend = b
	return c, nil
}

// NewWithBackend creates a clock driving the given backend. The backend's
// tick callback must already be wired to deliver into this clock via the
// TickFunc returned by sibling constructors; this entry point exists for
// tests and embedders that build the backend themselves.
func NewWithBackend(loop *runloop.Loop, b backend.Backend) *Clock {
	return &Clock{
		loop:    loop,
		backend: b,
		sinks:   make(map[uuid.UUID]FrameSink),
	}
}

// Subscribe registers sink to receive every subsequent frame; past frames
// are never replayed. If the sink is the first, the backend is resumed
// before Subscribe returns. A sink subscribing while a tick is being
// dispatched does not receive that tick.
//
// Subscribing to a closed clock returns an inert handle.
func (c *Clock) Subscribe(sink FrameSink) *Subscription {
	c.loop.Assert()
	if c.closed {
		return &Subscription{cancelled: true}
	}

	id := uuid.New()
	c.sinks[id] = sink
	if len(c.sinks) == 1 {
		c.backend.SetPaused(false)
	}
	slog.Debug("frame sink subscribed", "subscription", id, "live", len(c.sinks))
	return &Subscription{id: id, clock: c}
}

// Close pauses and releases the backend. Sinks still subscribed receive no
// further frames; cancelling their handles afterwards is a safe no-op.
func (c *Clock) Close() error {
	c.loop.Assert()
	if c.closed {
		return nil
	}
	c.closed = true
	c.sinks = nil
	return c.backend.Close()
}

// Loop returns the clock's home loop.
func (c *Clock) Loop() *runloop.Loop {
	return c.loop
}

// TickFunc returns the handler a hand-built backend should deliver into.
// Used with NewWithBackend.
func (c *Clock) TickFunc() backend.TickFunc {
	return c.onTick
}

// onTick converts one raw tick into a Frame and fans it out. Dispatch runs
// over a snapshot of the live set: sinks joining mid-dispatch wait for the
// next tick, sinks cancelled mid-dispatch before their turn are skipped.
func (c *Clock) onTick(t backend.Tick) {
	if c.closed || len(c.sinks) == 0 {
		return
	}

	frame := Frame{Timestamp: t.Timestamp, Interval: t.Interval}

	ids := make([]uuid.UUID, 0, len(c.sinks))
	for id := range c.sinks {
		ids = append(ids, id)
	}
	for _, id := range ids {
		sink, ok := c.sinks[id]
		if !ok {
			continue
		}
		c.deliver(id, sink, frame)
	}
}

// deliver invokes one sink, isolating its panics so one faulty sink cannot
// starve its siblings or corrupt the live set.
func (c *Clock) deliver(id uuid.UUID, sink FrameSink, f Frame) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("frame sink panicked", "subscription", id, "panic", r)
		}
	}()
	sink.OnFrame(f)
}

// remove drops a subscription and pauses the backend when the live set
// empties. Unknown ids are a no-op.
func (c *Clock) remove(id uuid.UUID) {
	if c.closed {
		return
	}
	if _, ok := c.sinks[id]; !ok {
		return
	}
	delete(c.sinks, id)
	if len(c.sinks) == 0 {
		c.backend.SetPaused(true)
	}
	slog.Debug("frame sink cancelled", "subscription", id, "live", len(c.sinks))
}

// Subscription is the handle returned by Subscribe. It holds only a
// back-reference to the clock and never extends its lifetime.
type Subscription struct {
	id        uuid.UUID
	clock     *Clock
	cancelled bool
}

// Cancel removes the sink from the clock. Idempotent, never blocks, and a
// safe no-op after the clock has been closed.
func (s *Subscription) Cancel() {
	if s == nil || s.cancelled {
		return
	}
	s.clock.loop.Assert()
	s.cancelled = true
	s.clock.remove(s.id)
}
