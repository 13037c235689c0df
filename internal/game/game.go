// Package game hosts the particle field in an ebiten window.
package game

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/field"
)

var backgroundColor = color.RGBA{R: 10, G: 12, B: 20, A: 255}

// Game implements ebiten.Game. Each Update is one frame callback for the
// field; Draw only blits what the field last painted.
type Game struct {
	cfg config.Config
	log *zap.Logger

	frames   *field.FrameQueue
	viewport *field.ViewportEvents
	surface  *imageSurface
	field    *field.Renderer
	tap      *frameTap

	// host state
	ctx       context.Context
	outsideW  int
	outsideH  int
	visible   bool
	startedAt time.Time
}

// New builds the game and starts the field on a surface the size of the window.
func New(cfg config.Config, log *zap.Logger) *Game {
	if log == nil {
		log = zap.NewNop()
	}
	g := &Game{
		cfg:       cfg,
		log:       log.Named("window"),
		frames:    field.NewFrameQueue(),
		viewport:  field.NewViewportEvents(),
		surface:   newImageSurface(float64(cfg.Window.Width), float64(cfg.Window.Height)),
		tap:       newFrameTap(config.TickRingSize),
		ctx:       context.Background(),
		outsideW:  cfg.Window.Width,
		outsideH:  cfg.Window.Height,
		visible:   true,
		startedAt: time.Now(),
	}
	g.field = field.New(cfg.Field, g.frames,
		field.WithLogger(log),
		field.WithTickObserver(g.tap.Record))
	g.field.Initialize(g.surface)
	g.field.Attach(g.viewport)
	return g
}

// Field returns the renderer, for hosts that reconfigure it at runtime.
func (g *Game) Field() *field.Renderer {
	return g.field
}

func (g *Game) Update() error {
	if err := g.ctx.Err(); err != nil {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}

	visible := !ebiten.IsWindowMinimized()
	if visible != g.visible {
		g.visible = visible
		g.log.Debug("visibility changed", zap.Bool("visible", visible))
		g.viewport.EmitVisibility(visible)
	}

	g.frames.RunFrame()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)
	if img := g.surface.Image(); img != nil {
		screen.DrawImage(img, nil)
	}

	if !g.cfg.Window.Debug {
		return
	}
	mean, peak := g.tap.stats()
	status := fmt.Sprintf("particles %d | tick %s avg %s max | %.0f fps | up %s",
		len(g.field.Particles()), formatCost(mean), formatCost(peak),
		ebiten.ActualFPS(), formatDuration(time.Since(g.startedAt)))
	if g.field.Paused() {
		status += " | paused"
	}
	ebitenutil.DebugPrintAt(screen, status, 12, 12)
}

// Layout keeps one logical unit per window pixel and reports size changes
// to the viewport, which debounces them before the field resizes.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	outsideWidth = max(outsideWidth, 1)
	outsideHeight = max(outsideHeight, 1)
	if outsideWidth != g.outsideW || outsideHeight != g.outsideH {
		g.outsideW, g.outsideH = outsideWidth, outsideHeight
		g.viewport.EmitResize(float64(outsideWidth), float64(outsideHeight))
	}
	return outsideWidth, outsideHeight
}

// Close tears the field down.
func (g *Game) Close() {
	g.field.Teardown()
}

// Run opens the window and blocks until it is closed or ctx is done.
func (g *Game) Run(ctx context.Context) error {
	g.ctx = ctx
	defer g.Close()

	ebiten.SetWindowSize(g.cfg.Window.Width, g.cfg.Window.Height)
	ebiten.SetWindowTitle(g.cfg.Window.Title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetRunnableOnUnfocused(true)

	g.log.Info("window started",
		zap.Int("width", g.cfg.Window.Width),
		zap.Int("height", g.cfg.Window.Height))
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("running window: %w", err)
	}
	g.log.Info("window closed", zap.Uint64("ticks", g.field.Ticks()))
	return nil
}
