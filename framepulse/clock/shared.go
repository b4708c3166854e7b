package clock

import (
	"context"
	"log/slog"
	"sync"

	"github.com/valerio/go-framepulse/framepulse/backend"
	"github.com/valerio/go-framepulse/framepulse/runloop"
)

var shared struct {
	once  sync.Once
	clock *Clock
}

// Shared returns the process-wide clock, created on first access with its
// own run loop and the best backend for this host. It is never torn down;
// with no subscribers its only held resource is a paused backend, which is
// inert. Use Shared().Loop().Post to reach its home context.
func Shared() *Clock {
	shared.once.Do(func() {
		loop := runloop.New()
		go loop.Run(context.Background())

		done := make(chan struct{})
		loop.Post(func() {
			defer close(done)
			c, err := New(loop, backend.Options{})
			if err != nil {
				// Selection falls back to software pacing, which
				// cannot fail; an error here means a bad variant,
				// impossible with default options.
				slog.Error("shared clock backend selection failed", "error", err)
				return
			}
			shared.clock = c
		})
		<-done
	})
	return shared.clock
}
