package backend

import (
	"fmt"
	"time"

	"github.com/valerio/go-framepulse/framepulse/runloop"
)

// Tick is one raw timing event from a backend: the moment the next refresh
// is expected to become visible, and the estimated gap until the one after.
type Tick struct {
	Timestamp time.Time
	Interval  time.Duration
}

// Backend is a display timing source. A backend owns exactly one upstream
// resource (hardware vsync link, dedicated timer goroutine, or software
// timer) and reports ticks through the callback installed at construction.
//
// Backends start paused and deliver no ticks until the first
// SetPaused(false). SetPaused with the current value is a no-op; the
// upstream resource is never double-started or double-stopped. A tick that
// races with SetPaused(true) is swallowed, never forwarded. Close releases
// the upstream resource exactly once and silences the backend permanently.
//
// All methods must be called on the loop goroutine the backend was
// constructed with; tick callbacks are invoked there too.
type Backend interface {
	SetPaused(paused bool)
	Paused() bool
	Close() error
}

// TickFunc receives backend ticks on the loop goroutine.
type TickFunc func(Tick)

// Variant identifies a timing backend implementation.
type Variant string

const (
	// VariantAuto picks the best backend available on this host.
	VariantAuto Variant = "auto"
	// VariantVSync is the hardware vertical-sync backend. Requires
	// building with -tags sdl2.
	VariantVSync Variant = "vsync"
	// VariantDisplayTimer is a drift-compensated timer on a dedicated
	// goroutine, paced at the display's nominal refresh rate.
	VariantDisplayTimer Variant = "timer"
	// VariantInterval is the plain periodic software timer fallback.
	VariantInterval Variant = "interval"
)

// DefaultRate is the nominal refresh rate assumed when the host cannot
// report one. Deliberately a fixed best-effort constant, not a measured
// value.
const DefaultRate = 60.0

// Options configures backend selection.
type Options struct {
	// Variant forces a particular backend. The default, VariantAuto,
	// selects vsync when available and the display timer otherwise.
	Variant Variant
	// Rate is the nominal refresh rate in Hz for software-paced backends.
	// Zero means DefaultRate.
	Rate float64
}

func (o Options) rate() float64 {
	if o.Rate <= 0 {
		return DefaultRate
	}
	return o.Rate
}

func (o Options) period() time.Duration {
	return time.Duration(float64(time.Second) / o.rate())
}

// Select builds the backend for this host. The choice is made once, at
// construction; there is no runtime switching between variants. The
// returned backend is paused.
func Select(loop *runloop.Loop, onTick TickFunc, opts Options) (Backend, error) {
	switch opts.Variant {
	case VariantVSync:
		return NewVSync(loop, onTick)
	case VariantDisplayTimer:
		return NewDisplayTimer(loop, onTick, opts), nil
	case VariantInterval:
		return NewIntervalTimer(loop, onTick, opts), nil
	case VariantAuto, "":
		if b, err := NewVSync(loop, onTick); err == nil {
			return b, nil
		}
		return NewDisplayTimer(loop, onTick, opts), nil
	default:
		return nil, fmt.Errorf("unknown backend variant %q", opts.Variant)
	}
}
