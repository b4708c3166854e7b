package clock

// Driver ties a subscription to an activity flag, the contract consumed by
// UI integration layers: while active it holds one subscription forwarding
// every frame into the callback; inactive or closed, it holds none.
// Redundant transitions are no-ops.
type Driver struct {
	clock   *Clock
	onFrame func(Frame)
	sub     *Subscription
	closed  bool
}

// NewDriver creates an inactive driver. A nil target uses the shared clock.
func NewDriver(target *Clock, onFrame func(Frame)) *Driver {
	if target == nil {
		target = Shared()
	}
	return &Driver{clock: target, onFrame: onFrame}
}

// SetActive subscribes or cancels to match the flag. Must be called on the
// clock's loop goroutine.
func (d *Driver) SetActive(active bool) {
	d.clock.loop.Assert()
	if d.closed || active == (d.sub != nil) {
		return
	}
	if active {
		sub := d.clock.Subscribe(FrameSinkFunc(d.onFrame))
		if sub.cancelled {
			// Closed clock: Subscribe handed back an inert handle,
			// so there is nothing to hold and Active stays false.
			return
		}
		d.sub = sub
		return
	}
	d.sub.Cancel()
	d.sub = nil
}

// Active reports whether the driver currently holds a subscription.
func (d *Driver) Active() bool {
	d.clock.loop.Assert()
	return d.sub != nil
}

// Close cancels any held subscription and makes the driver permanently
// inactive. Idempotent.
func (d *Driver) Close() {
	d.clock.loop.Assert()
	if d.closed {
		return
	}
	d.closed = true
	if d.sub != nil {
		d.sub.Cancel()
		d.sub = nil
	}
}
