package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli"
	"github.com/valerio/go-framepulse/framepulse/backend"
	"github.com/valerio/go-framepulse/framepulse/clock"
	"github.com/valerio/go-framepulse/framepulse/monitor"
	"github.com/valerio/go-framepulse/framepulse/runloop"
)

func main() {
	app := cli.NewApp()
	app.Name = "framepulse"
	app.Description = "A shared frame clock multiplexer"
	app.Usage = "framepulse [options]"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "backend",
			Usage: "Timing backend to use: auto, vsync, timer, interval",
			Value: string(backend.VariantAuto),
		},
		cli.Float64Flag{
			Name:  "rate",
			Usage: "Nominal refresh rate in Hz for software-paced backends",
			Value: backend.DefaultRate,
		},
		cli.IntFlag{
			Name:  "frames",
			Usage: "Exit after N frames (0 = run until interrupted)",
			Value: 0,
		},
		cli.BoolFlag{
			Name:  "monitor",
			Usage: "Render a live terminal view of frame cadence",
		},
		cli.BoolFlag{
			Name:  "verbose",
			Usage: "Log every frame at debug level",
		},
	}
	app.Action = run

	err := app.Run(os.Args)
	if err != nil {
		slog.Error("Error running framepulse", "error", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	level := slog.LevelInfo
	if c.Bool("verbose") {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))

	opts := backend.Options{
		Variant: backend.Variant(c.String("backend")),
		Rate:    c.Float64("rate"),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loop := runloop.New()
	clk, err := clock.New(loop, opts)
	if err != nil {
		return fmt.Errorf("failed to create clock: %v", err)
	}

	maxFrames := c.Int("frames")

	var sink clock.FrameSink
	var mon *monitor.Monitor
	if c.Bool("monitor") {
		mon, err = monitor.New(loop.Stop)
		if err != nil {
			return err
		}
		sink = mon
	} else {
		sink = newLogSink()
	}

	frames := 0
	loop.Post(func() {
		clk.Subscribe(clock.FrameSinkFunc(func(f clock.Frame) {
			sink.OnFrame(f)
			frames++
			if maxFrames > 0 && frames >= maxFrames {
				loop.Stop()
			}
		}))
		slog.Info("Frame clock running",
			"backend", c.String("backend"),
			"rate_hz", opts.Rate,
			"max_frames", maxFrames)
	})

	loop.Run(ctx)

	if mon != nil {
		mon.Close()
	}
	slog.Info("Frame clock stopped", "frames", frames)
	return nil
}

// logSink reports cadence through the logger: every frame at debug, a
// rollup once a second's worth of frames at info.
type logSink struct {
	frames uint64
}

func newLogSink() *logSink {
	return &logSink{}
}

func (s *logSink) OnFrame(f clock.Frame) {
	s.frames++
	slog.Debug("frame",
		"n", s.frames,
		"timestamp", f.TimestampSeconds(),
		"interval_ms", f.IntervalSeconds()*1000)
	if s.frames%60 == 0 {
		slog.Info("Frame progress", "frames", s.frames, "interval_ms", f.IntervalSeconds()*1000)
	}
}
