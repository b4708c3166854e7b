package monitor_test

import (
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valerio/go-framepulse/framepulse/clock"
	"github.com/valerio/go-framepulse/framepulse/monitor"
)

func TestMonitorDrawsFrames(t *testing.T) {
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()
	screen.SetSize(80, 24)

	m := monitor.NewWithScreen(screen)

	frame := clock.Frame{
		Timestamp: time.Unix(100, 0),
		Interval:  16 * time.Millisecond,
	}
	m.OnFrame(frame)
	m.OnFrame(frame)

	assert.Equal(t, uint64(2), m.Frames())

	contents, w, h := screen.GetContents()
	require.NotEmpty(t, contents)
	text := make([]rune, 0, w*h)
	for _, cell := range contents {
		if len(cell.Runes) > 0 {
			text = append(text, cell.Runes[0])
		}
	}
	assert.Contains(t, string(text), "framepulse monitor")
	assert.Contains(t, string(text), "frames")
}
