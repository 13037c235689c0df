// Package field animates a sparse field of drifting particles joined by faint
// proximity lines.
//
// A Renderer owns its particle pool and draws onto a Surface once per frame
// callback obtained from a FrameScheduler. Hosts attach a Viewport so the
// renderer follows resizes (debounced) and pauses while hidden.
package field

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/iburimskiy/particle-field/internal/config"
	"github.com/iburimskiy/particle-field/internal/debounce"
)

// Renderer is the particle field. All methods are safe to call from any
// goroutine; drawing happens on whichever goroutine runs the frame callback.
type Renderer struct {
	mu sync.Mutex

	cfg     config.FieldConfig
	colors  palette
	frames  FrameScheduler
	surface Surface
	rng     *rand.Rand
	log     *zap.Logger
	onTick  func(time.Duration)

	particles []Particle
	frame     FrameID // zero when no callback is scheduled
	paused    bool
	closed    bool
	ticks     uint64

	resize *debounce.Debouncer
	detach []func()
}

// Option customizes a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger; the default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(r *Renderer) {
		if l != nil {
			r.log = l.Named("field")
		}
	}
}

// WithRand sets the random source used to populate the pool.
func WithRand(rng *rand.Rand) Option {
	return func(r *Renderer) {
		if rng != nil {
			r.rng = rng
		}
	}
}

// WithTickObserver receives the wall time spent in each tick.
func WithTickObserver(fn func(time.Duration)) Option {
	return func(r *Renderer) {
		r.onTick = fn
	}
}

// New creates a stopped renderer. Initialize starts it.
func New(cfg config.FieldConfig, frames FrameScheduler, opts ...Option) *Renderer {
	r := &Renderer{
		cfg:    cfg,
		colors: newPalette(cfg.Color),
		frames: frames,
		rng:    newRand(cfg.Seed),
		log:    zap.NewNop(),
		resize: debounce.New(cfg.ResizeDebounce),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func newRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Initialize binds the renderer to surface, fills the pool for the
// surface's current size and starts the animation loop. A nil surface is
// ignored.
func (r *Renderer) Initialize(surface Surface) {
	if surface == nil {
		r.log.Warn("initialize without a surface, nothing to draw")
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	r.surface = surface
	r.populate()
	r.schedule()
}

// populate rebuilds the pool from the surface size. Caller holds r.mu.
func (r *Renderer) populate() {
	w, h := r.surface.Size()
	n := particleCount(r.cfg, w)
	r.particles = newPool(r.rng, r.cfg, n, w, h)
	r.log.Debug("particle pool created",
		zap.Int("count", n),
		zap.Float64("width", w),
		zap.Float64("height", h))
}

// Reconfigure replaces the configuration and repopulates the pool.
func (r *Renderer) Reconfigure(cfg config.FieldConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}

	if cfg.Seed != 0 && cfg.Seed != r.cfg.Seed {
		r.rng = newRand(cfg.Seed)
	}
	r.cfg = cfg
	r.colors = newPalette(cfg.Color)
	if r.surface != nil {
		r.populate()
	}
	r.log.Info("field reconfigured", zap.Int("particles", len(r.particles)))
}

// Attach subscribes to vp: resizes go through the debouncer, hidden pauses
// and visible resumes. Teardown detaches.
func (r *Renderer) Attach(vp Viewport) {
	detachResize := vp.OnResize(func(w, h float64) {
		r.resize.Trigger(func() { r.Resize(w, h) })
	})
	detachVisibility := vp.OnVisibilityChange(func(visible bool) {
		if visible {
			r.Resume()
		} else {
			r.Pause()
		}
	})

	r.mu.Lock()
	closed := r.closed
	if !closed {
		r.detach = append(r.detach, detachResize, detachVisibility)
	}
	r.mu.Unlock()

	if closed {
		detachResize()
		detachVisibility()
	}
}

// Resize updates the surface dimensions. The pool is left as is; particles
// outside the new bounds wrap on the next tick.
func (r *Renderer) Resize(width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || r.surface == nil {
		return
	}
	r.surface.SetSize(width, height)
	r.log.Debug("surface resized", zap.Float64("width", width), zap.Float64("height", height))
}

// Tick advances every particle one frame, redraws the surface and schedules
// the next frame unless paused.
func (r *Renderer) Tick() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tick()
}

func (r *Renderer) onFrame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frame = 0
	if r.paused || r.closed {
		return
	}
	r.tick()
}

// tick is Tick with r.mu held.
func (r *Renderer) tick() {
	if r.closed || r.surface == nil {
		return
	}
	start := time.Now()

	w, h := r.surface.Size()
	for i := range r.particles {
		r.particles[i].step(w, h)
	}
	r.draw(w, h)
	r.ticks++

	if r.onTick != nil {
		r.onTick(time.Since(start))
	}
	r.schedule()
}

// draw clears the surface, then paints particles and the links between
// every pair closer than the link distance, each pair once.
func (r *Renderer) draw(w, h float64) {
	r.surface.Clear()
	if w <= 0 || h <= 0 {
		return
	}

	for _, p := range r.particles {
		r.surface.FillCircle(p.X, p.Y, p.Radius, r.colors.tint(p.Opacity))
	}

	limit := r.cfg.LinkDistance
	for i := range r.particles {
		a := &r.particles[i]
		for j := i + 1; j < len(r.particles); j++ {
			b := &r.particles[j]
			dx, dy := a.X-b.X, a.Y-b.Y
			if dx*dx+dy*dy >= limit*limit {
				continue
			}
			alpha := LinkOpacity(math.Hypot(dx, dy), limit, r.cfg.LinkOpacity)
			r.surface.StrokeLine(a.X, a.Y, b.X, b.Y, r.colors.tint(alpha))
		}
	}
}

// schedule requests the next frame if none is pending. Caller holds r.mu.
func (r *Renderer) schedule() {
	if r.paused || r.closed || r.frame != 0 || r.frames == nil {
		return
	}
	r.frame = r.frames.RequestFrame(r.onFrame)
}

// cancel drops the pending frame. Caller holds r.mu.
func (r *Renderer) cancel() {
	if r.frame != 0 {
		r.frames.CancelFrame(r.frame)
		r.frame = 0
	}
}

// Pause stops scheduling frames. Calling it while paused has no effect.
func (r *Renderer) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.paused || r.closed {
		return
	}
	r.paused = true
	r.cancel()
	r.log.Debug("field paused", zap.Uint64("ticks", r.ticks))
}

// Resume schedules the next frame if none is pending. Missed frames are not replayed.
func (r *Renderer) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	wasPaused := r.paused
	r.paused = false
	if r.surface != nil {
		r.schedule()
	}
	if wasPaused {
		r.log.Debug("field resumed")
	}
}

// Teardown cancels scheduling and detaches from the viewport. The renderer
// does nothing afterwards.
func (r *Renderer) Teardown() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	r.cancel()
	detach := r.detach
	r.detach = nil
	ticks := r.ticks
	r.mu.Unlock()

	r.resize.Cancel()
	for _, fn := range detach {
		fn()
	}
	r.log.Info("field torn down", zap.Uint64("ticks", ticks))
}

// Particles returns a copy of the pool.
func (r *Renderer) Particles() []Particle {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Particle, len(r.particles))
	copy(out, r.particles)
	return out
}

// SetParticle overwrites the particle at i. It is meant for hosts and tests
// that need to place a particle; out of range indexes are ignored.
func (r *Renderer) SetParticle(i int, p Particle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if i < 0 || i >= len(r.particles) {
		return
	}
	r.particles[i] = p
}

// Size returns the surface dimensions, zero before Initialize.
func (r *Renderer) Size() (width, height float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.surface == nil {
		return 0, 0
	}
	return r.surface.Size()
}

func (r *Renderer) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Scheduled reports whether a frame callback is pending.
func (r *Renderer) Scheduled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.frame != 0
}

// Ticks returns how many ticks have run.
func (r *Renderer) Ticks() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.ticks
}

// Closed reports whether Teardown has run.
func (r *Renderer) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}
