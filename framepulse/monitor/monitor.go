// Package monitor renders a live terminal view of frame cadence, for the
// framepulse CLI.
package monitor

import (
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/valerio/go-framepulse/framepulse/clock"
)

// Monitor is a frame sink that draws per-frame statistics to the terminal.
// OnFrame runs on the clock's loop goroutine; only the tcell event poller
// runs elsewhere.
type Monitor struct {
	screen tcell.Screen
	onQuit func()

	frames  uint64
	started time.Time
	lastAt  time.Time
	gapEMA  float64 // seconds between deliveries, exponentially smoothed
}

// New initializes the terminal screen and starts watching for quit keys
// (q, ESC, Ctrl+C). onQuit is called from the event poller goroutine; hand
// it something safe to call off-loop, such as a Loop.Stop.
func New(onQuit func()) (*Monitor, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize terminal: %v", err)
	}
	screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	screen.Clear()

	m := &Monitor{
		screen:  screen,
		onQuit:  onQuit,
		started: time.Now(),
	}
	go m.pollEvents()
	return m, nil
}

// NewWithScreen builds a monitor on an existing screen, used by tests with
// tcell's simulation screen. The screen must already be initialized; no
// event poller is started.
func NewWithScreen(screen tcell.Screen) *Monitor {
	return &Monitor{
		screen:  screen,
		started: time.Now(),
	}
}

// OnFrame implements clock.FrameSink.
func (m *Monitor) OnFrame(f clock.Frame) {
	now := time.Now()
	if m.frames > 0 {
		gap := now.Sub(m.lastAt).Seconds()
		if m.gapEMA == 0 {
			m.gapEMA = gap
		} else {
			m.gapEMA += (gap - m.gapEMA) / 16
		}
	}
	m.frames++
	m.lastAt = now

	m.draw(f)
}

// Frames returns how many frames the monitor has received.
func (m *Monitor) Frames() uint64 {
	return m.frames
}

// Close tears the screen down. The event poller exits on its own once the
// screen is finalized.
func (m *Monitor) Close() {
	m.screen.Fini()
}

func (m *Monitor) draw(f clock.Frame) {
	titleStyle := tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	style := tcell.StyleDefault

	measured := 0.0
	if m.gapEMA > 0 {
		measured = 1 / m.gapEMA
	}

	m.screen.Clear()
	m.drawText(1, 0, titleStyle, "framepulse monitor")
	m.drawText(1, 2, style, fmt.Sprintf("frames     %d", m.frames))
	m.drawText(1, 3, style, fmt.Sprintf("nominal    %.3f ms", f.IntervalSeconds()*1000))
	m.drawText(1, 4, style, fmt.Sprintf("measured   %.1f fps", measured))
	m.drawText(1, 5, style, fmt.Sprintf("timestamp  %.6f", f.TimestampSeconds()))
	m.drawText(1, 6, style, fmt.Sprintf("uptime     %s", time.Since(m.started).Round(time.Second)))
	m.drawText(1, 8, style, "press q to quit")
	m.screen.Show()
}

func (m *Monitor) drawText(x, y int, style tcell.Style, text string) {
	for i, ch := range text {
		m.screen.SetContent(x+i, y, ch, nil, style)
	}
}

func (m *Monitor) pollEvents() {
	for {
		ev := m.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape,
				ev.Key() == tcell.KeyCtrlC,
				ev.Rune() == 'q':
				if m.onQuit != nil {
					m.onQuit()
				}
			}
		case *tcell.EventResize:
			m.screen.Sync()
		}
	}
}
