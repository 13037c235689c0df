package field

import (
	"image/color"
	"sync"
)

// Surface is a 2D raster area the renderer draws onto. Coordinates and sizes
// are in device-independent units.
type Surface interface {
	Size() (width, height float64)
	SetSize(width, height float64)
	Clear()
	FillCircle(x, y, radius float64, c color.Color)
	StrokeLine(x1, y1, x2, y2 float64, c color.Color)
}

// FrameID identifies a scheduled frame callback. Zero is never issued.
type FrameID uint64

// FrameScheduler runs a callback once before the next repaint.
type FrameScheduler interface {
	RequestFrame(fn func()) FrameID
	CancelFrame(id FrameID)
}

// Viewport delivers the host signals the renderer reacts to. Each
// subscription returns a function that removes it.
type Viewport interface {
	OnResize(fn func(width, height float64)) (detach func())
	OnVisibilityChange(fn func(visible bool)) (detach func())
}

// ViewportEvents is a Viewport that hosts feed with EmitResize and
// EmitVisibility.
type ViewportEvents struct {
	mu         sync.Mutex
	nextID     int
	resize     map[int]func(width, height float64)
	visibility map[int]func(visible bool)
}

func NewViewportEvents() *ViewportEvents {
	return &ViewportEvents{
		resize:     make(map[int]func(width, height float64)),
		visibility: make(map[int]func(visible bool)),
	}
}

func (v *ViewportEvents) OnResize(fn func(width, height float64)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	id := v.nextID
	v.resize[id] = fn
	return func() {
		v.mu.Lock()
		delete(v.resize, id)
		v.mu.Unlock()
	}
}

func (v *ViewportEvents) OnVisibilityChange(fn func(visible bool)) func() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.nextID++
	id := v.nextID
	v.visibility[id] = fn
	return func() {
		v.mu.Lock()
		delete(v.visibility, id)
		v.mu.Unlock()
	}
}

// EmitResize notifies resize listeners. Listeners run without the lock held.
func (v *ViewportEvents) EmitResize(width, height float64) {
	v.mu.Lock()
	fns := make([]func(float64, float64), 0, len(v.resize))
	for _, fn := range v.resize {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(width, height)
	}
}

// EmitVisibility notifies visibility listeners.
func (v *ViewportEvents) EmitVisibility(visible bool) {
	v.mu.Lock()
	fns := make([]func(bool), 0, len(v.visibility))
	for _, fn := range v.visibility {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(visible)
	}
}

// Listeners returns the number of live subscriptions.
func (v *ViewportEvents) Listeners() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.resize) + len(v.visibility)
}
