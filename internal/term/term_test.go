package term

import (
	"context"
	"image/color"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/particle-field/internal/config"
)

// recordScreen captures SetContent calls.
type recordScreen struct {
	tcell.Screen
	runes map[[2]int]rune
}

func (m *recordScreen) SetContent(x, y int, mainc rune, combc []rune, style tcell.Style) {
	m.runes[[2]int{x, y}] = mainc
}

func TestCellSurfaceLayout(t *testing.T) {
	s := newCellSurface(10, 5, 8, 16)
	w, h := s.Size()
	assert.Equal(t, 80.0, w)
	assert.Equal(t, 80.0, h)

	s.SetSize(40, 32)
	s.Clear()
	assert.Equal(t, 5, s.cols)
	assert.Equal(t, 2, s.rows)
	assert.Len(t, s.cells, 10)
}

func TestCellSurfaceFillCircle(t *testing.T) {
	s := newCellSurface(10, 5, 8, 16)
	s.Clear()
	s.FillCircle(20, 40, 2, color.NRGBA{R: 255, A: 128})

	cl, ok := s.at(2, 2)
	require.True(t, ok)
	assert.True(t, cl.dot)
	assert.InDelta(t, 128.0/255, cl.alpha, 1e-9)

	// off-grid draws are dropped
	s.FillCircle(-1, 5, 2, color.White)
	s.FillCircle(1000, 5, 2, color.White)
}

func TestCellSurfaceStrokeLine(t *testing.T) {
	s := newCellSurface(10, 5, 8, 16)
	s.Clear()
	s.StrokeLine(4, 8, 76, 8, color.NRGBA{G: 255, A: 25})

	for col := 0; col < 10; col++ {
		cl, _ := s.at(col, 0)
		assert.Greater(t, cl.alpha, 0.0, "col %d", col)
		assert.False(t, cl.dot)
	}
	cl, _ := s.at(0, 1)
	assert.Zero(t, cl.alpha)

	s.Clear()
	cl, _ = s.at(3, 0)
	assert.Zero(t, cl.alpha, "clear resets the grid")
}

func TestCellSurfaceFlush(t *testing.T) {
	s := newCellSurface(4, 2, 8, 16)
	s.Clear()
	s.FillCircle(4, 4, 1, color.NRGBA{R: 200, G: 200, B: 200, A: 255})
	s.StrokeLine(12, 4, 28, 4, color.NRGBA{R: 200, G: 200, B: 200, A: 20})

	scr := &recordScreen{runes: make(map[[2]int]rune)}
	s.flush(scr)

	assert.Len(t, scr.runes, 8)
	assert.Equal(t, dotRune, scr.runes[[2]int{0, 0}])
	assert.Equal(t, lineRune, scr.runes[[2]int{2, 0}])
	assert.Equal(t, ' ', scr.runes[[2]int{0, 1}])
}

func TestHostRunsUntilCanceled(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Field.Seed = 3
	cfg.Terminal.FPS = 100

	screen := tcell.NewSimulationScreen("UTF-8")
	h, err := New(cfg, nil, screen)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	require.NoError(t, h.Run(ctx))

	assert.Greater(t, h.Field().Ticks(), uint64(0))
	assert.True(t, h.Field().Closed(), "run tears the field down")
}

func TestHostHandleEvents(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Field.Seed = 3

	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	defer screen.Fini()

	h, err := New(cfg, nil, screen)
	require.NoError(t, err)
	h.surface = newCellSurface(80, 25, 8, 16)
	h.field.Initialize(h.surface)
	h.field.Attach(h.viewport)
	defer h.field.Teardown()

	assert.False(t, h.handle(tcell.NewEventFocus(false)))
	assert.True(t, h.field.Paused())
	assert.False(t, h.handle(tcell.NewEventFocus(true)))
	assert.False(t, h.field.Paused())

	assert.True(t, h.handle(tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone)))
	assert.True(t, h.handle(tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone)))
	assert.False(t, h.handle(tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone)))
}
