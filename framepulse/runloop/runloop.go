package runloop

import (
	"context"
	"sync"
)

// Loop is a single-threaded run loop: posted functions execute one at a
// time, in submission order, on the goroutine that called Run. It is the
// "home context" for a frame clock — all clock and backend state is confined
// to it, so none of that state needs locking.
type Loop struct {
	mu      sync.Mutex
	queue   []func()
	wake    chan struct{}
	stopped bool

	home goroutineRef
}

// New creates a loop. It does nothing until Run is called.
func New() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Run executes posted functions on the calling goroutine until the context
// is cancelled or Stop is called. Pending work queued before the loop winds
// down is drained; work posted after is dropped.
func (l *Loop) Run(ctx context.Context) {
	l.home.capture()
	defer l.home.release()

	for {
		batch := l.take()
		for _, fn := range batch {
			fn()
		}

		l.mu.Lock()
		stopped := l.stopped
		empty := len(l.queue) == 0
		l.mu.Unlock()

		if stopped && empty {
			return
		}
		if !empty {
			continue
		}

		select {
		case <-ctx.Done():
			l.Stop()
		case <-l.wake:
		}
	}
}

// Post enqueues fn to run on the loop goroutine. Safe to call from any
// goroutine; never blocks. Posting to a stopped loop is a no-op.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.stopped {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Stop makes Run return after draining already-posted work. Idempotent.
func (l *Loop) Stop() {
	l.mu.Lock()
	l.stopped = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Assert panics unless called on the loop goroutine. Clock and backend
// entry points use this to surface threading bugs immediately instead of
// letting them corrupt unsynchronized state.
func (l *Loop) Assert() {
	if !l.home.current() {
		panic("runloop: called off the loop goroutine")
	}
}

// OnLoop reports whether the caller is on the loop goroutine.
func (l *Loop) OnLoop() bool {
	return l.home.current()
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	batch := l.queue
	l.queue = nil
	return batch
}
