package clock

import "time"

// Frame is the per-refresh event delivered to every subscribed sink:
// the moment the next refresh is expected to become visible and the
// estimated interval until the one after. Immutable; every sink for a given
// tick observes the identical value.
type Frame struct {
	Timestamp time.Time
	Interval  time.Duration
}

// TimestampSeconds returns the timestamp as wall-clock seconds since the
// Unix epoch.
func (f Frame) TimestampSeconds() float64 {
	return float64(f.Timestamp.UnixNano()) / float64(time.Second)
}

// IntervalSeconds returns the expected interval in seconds.
func (f Frame) IntervalSeconds() float64 {
	return f.Interval.Seconds()
}

// FrameSink receives frames. OnFrame is invoked on the clock's loop
// goroutine and must complete promptly; a slow sink delays every sink that
// follows it in the same tick.
type FrameSink interface {
	OnFrame(Frame)
}

// FrameSinkFunc adapts a function to the FrameSink interface.
type FrameSinkFunc func(Frame)

func (fn FrameSinkFunc) OnFrame(f Frame) {
	fn(f)
}
