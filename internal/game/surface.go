package game

import (
	"image/color"
	"math"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const lineWidth = 1

// imageSurface draws the field onto an offscreen ebiten image. The image is
// (re)allocated on Clear so that SetSize may be called from any goroutine.
type imageSurface struct {
	mu   sync.Mutex
	w, h float64
	img  *ebiten.Image
}

func newImageSurface(w, h float64) *imageSurface {
	return &imageSurface{w: w, h: h}
}

func (s *imageSurface) Size() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

func (s *imageSurface) SetSize(w, h float64) {
	s.mu.Lock()
	s.w, s.h = w, h
	s.mu.Unlock()
}

func (s *imageSurface) Clear() {
	s.mu.Lock()
	pw, ph := int(math.Ceil(s.w)), int(math.Ceil(s.h))
	s.mu.Unlock()

	if pw < 1 || ph < 1 {
		if s.img != nil {
			s.img.Deallocate()
			s.img = nil
		}
		return
	}
	if s.img != nil {
		b := s.img.Bounds()
		if b.Dx() != pw || b.Dy() != ph {
			s.img.Deallocate()
			s.img = nil
		}
	}
	if s.img == nil {
		s.img = ebiten.NewImage(pw, ph)
		return
	}
	s.img.Clear()
}

func (s *imageSurface) FillCircle(x, y, radius float64, c color.Color) {
	if s.img == nil {
		return
	}
	vector.DrawFilledCircle(s.img, float32(x), float32(y), float32(radius), c, true)
}

func (s *imageSurface) StrokeLine(x1, y1, x2, y2 float64, c color.Color) {
	if s.img == nil {
		return
	}
	vector.StrokeLine(s.img, float32(x1), float32(y1), float32(x2), float32(y2), lineWidth, c, true)
}

// Image returns the last drawn frame, nil before the first one.
func (s *imageSurface) Image() *ebiten.Image {
	return s.img
}
