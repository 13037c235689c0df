// Package term hosts the particle field in a terminal through tcell.
package term

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/field"
)

// Host drives the field from a ticker and forwards terminal resize and
// focus events to it.
type Host struct {
	cfg    config.Config
	log    *zap.Logger
	screen tcell.Screen

	frames   *field.FrameQueue
	viewport *field.ViewportEvents
	field    *field.Renderer
	surface  *cellSurface
}

// New prepares a host on screen. A nil screen selects the real terminal.
func New(cfg config.Config, log *zap.Logger, screen tcell.Screen) (*Host, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if screen == nil {
		s, err := tcell.NewScreen()
		if err != nil {
			return nil, fmt.Errorf("opening terminal: %w", err)
		}
		screen = s
	}
	h := &Host{
		cfg:      cfg,
		log:      log.Named("terminal"),
		screen:   screen,
		frames:   field.NewFrameQueue(),
		viewport: field.NewViewportEvents(),
	}
	h.field = field.New(cfg.Field, h.frames, field.WithLogger(log))
	return h, nil
}

// Field returns the renderer, for hosts that reconfigure it at runtime.
func (h *Host) Field() *field.Renderer {
	return h.field
}

// Run takes over the terminal until Esc, q, Ctrl-C or ctx is done.
func (h *Host) Run(ctx context.Context) error {
	if err := h.screen.Init(); err != nil {
		return fmt.Errorf("initializing terminal: %w", err)
	}
	defer h.screen.Fini()
	h.screen.HideCursor()
	h.screen.EnableFocus()
	h.screen.Clear()

	cols, rows := h.screen.Size()
	cw, ch := float64(h.cfg.Terminal.CellWidth), float64(h.cfg.Terminal.CellHeight)
	h.surface = newCellSurface(cols, rows, cw, ch)
	h.field.Initialize(h.surface)
	h.field.Attach(h.viewport)
	defer h.field.Teardown()

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go func() {
		for {
			ev := h.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-quit:
				return
			}
		}
	}()

	ticker := time.NewTicker(time.Second / time.Duration(h.cfg.Terminal.FPS))
	defer ticker.Stop()

	h.log.Info("terminal started", zap.Int("cols", cols), zap.Int("rows", rows))
	for {
		select {
		case <-ctx.Done():
			h.log.Info("terminal stopped", zap.Uint64("ticks", h.field.Ticks()))
			return nil
		case ev := <-events:
			if h.handle(ev) {
				h.log.Info("terminal closed", zap.Uint64("ticks", h.field.Ticks()))
				return nil
			}
		case <-ticker.C:
			if h.frames.RunFrame() > 0 {
				h.surface.flush(h.screen)
				h.screen.Show()
			}
		}
	}
}

// handle reacts to one terminal event and reports whether to quit.
func (h *Host) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return true
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return true
		}
	case *tcell.EventResize:
		cols, rows := ev.Size()
		h.screen.Sync()
		h.viewport.EmitResize(float64(cols*h.cfg.Terminal.CellWidth), float64(rows*h.cfg.Terminal.CellHeight))
	case *tcell.EventFocus:
		h.log.Debug("focus changed", zap.Bool("focused", ev.Focused))
		h.viewport.EmitVisibility(ev.Focused)
	}
	return false
}
