package backend_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-framepulse/framepulse/backend"
)

func TestDisplayTimer(t *testing.T) {
	// A fast nominal rate keeps these wall-clock tests short.
	opts := backend.Options{Rate: 200}
	period := time.Second / 200

	t.Run("starts paused", func(t *testing.T) {
		l := newLoop(t)
		rec := &tickRecorder{loop: l}
		d := backend.NewDisplayTimer(l, rec.record, opts)

		do(t, l, func() { assert.True(t, d.Paused()) })
		time.Sleep(5 * period)
		assert.Equal(t, 0, rec.count(t))
	})

	t.Run("delivers ordered ticks on the loop", func(t *testing.T) {
		l := newLoop(t)
		rec := &tickRecorder{loop: l}
		d := backend.NewDisplayTimer(l, rec.record, opts)

		do(t, l, func() { d.SetPaused(false) })
		rec.waitCount(t, 5)

		ticks := rec.snapshot(t)
		for i := 1; i < len(ticks); i++ {
			assert.True(t, ticks[i].Timestamp.After(ticks[i-1].Timestamp),
				"tick %d out of order", i)
		}
		for _, tk := range ticks {
			assert.Equal(t, period, tk.Interval)
		}
		do(t, l, func() { d.Close() })
	})

	t.Run("pause stops delivery, late fires are swallowed", func(t *testing.T) {
		l := newLoop(t)
		rec := &tickRecorder{loop: l}
		d := backend.NewDisplayTimer(l, rec.record, opts)

		do(t, l, func() { d.SetPaused(false) })
		rec.waitCount(t, 3)

		do(t, l, func() { d.SetPaused(true) })
		settled := rec.count(t)

		time.Sleep(10 * period)
		assert.Equal(t, settled, rec.count(t), "no tick may land after pause settles")
		do(t, l, func() { d.Close() })
	})

	t.Run("repeated cycles and redundant switches", func(t *testing.T) {
		l := newLoop(t)
		rec := &tickRecorder{loop: l}
		d := backend.NewDisplayTimer(l, rec.record, opts)

		for i := 0; i < 3; i++ {
			do(t, l, func() {
				d.SetPaused(false)
				d.SetPaused(false)
			})
			rec.waitCount(t, rec.count(t)+1)
			do(t, l, func() {
				d.SetPaused(true)
				assert.NotPanics(t, func() { d.SetPaused(true) })
			})
		}
		do(t, l, func() { d.Close() })
	})

	t.Run("close is terminal", func(t *testing.T) {
		l := newLoop(t)
		rec := &tickRecorder{loop: l}
		d := backend.NewDisplayTimer(l, rec.record, opts)

		do(t, l, func() { d.SetPaused(false) })
		rec.waitCount(t, 1)

		do(t, l, func() {
			require.NoError(t, d.Close())
			assert.True(t, d.Paused())
			assert.NoError(t, d.Close())
			d.SetPaused(false)
			assert.True(t, d.Paused(), "closed backend cannot be resumed")
		})

		settled := rec.count(t)
		time.Sleep(10 * period)
		assert.Equal(t, settled, rec.count(t))
	})
}

func TestSelect(t *testing.T) {
	l := newLoop(t)
	noop := func(backend.Tick) {}

	t.Run("explicit variants", func(t *testing.T) {
		b, err := backend.Select(l, noop, backend.Options{Variant: backend.VariantInterval})
		require.NoError(t, err)
		assert.IsType(t, &backend.IntervalTimer{}, b)

		b, err = backend.Select(l, noop, backend.Options{Variant: backend.VariantDisplayTimer})
		require.NoError(t, err)
		assert.IsType(t, &backend.DisplayTimer{}, b)
	})

	t.Run("auto falls back to software pacing", func(t *testing.T) {
		// Without the sdl2 build tag the vsync variant is unavailable,
		// so auto selection lands on the display timer.
		b, err := backend.Select(l, noop, backend.Options{})
		require.NoError(t, err)
		assert.NotNil(t, b)
		do(t, l, func() { assert.True(t, b.Paused()) })
	})

	t.Run("unknown variant errors", func(t *testing.T) {
		_, err := backend.Select(l, noop, backend.Options{Variant: "sundial"})
		assert.Error(t, err)
	})
}
