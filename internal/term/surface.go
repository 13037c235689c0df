package term

import (
	"image/color"
	"math"
	"sync"

	"github.com/gdamore/tcell/v2"
)

const (
	dotRune  = '•'
	lineRune = '·'

	// Terminal cells are far coarser than pixels; faint alphas are amplified
	// so links remain visible.
	alphaGain = 3.0
)

type cell struct {
	alpha float64
	dot   bool
	c     color.NRGBA
}

// cellSurface rasterizes the field onto a grid of terminal cells. Logical
// coordinates map to cells of cw x ch units.
type cellSurface struct {
	mu         sync.Mutex
	w, h       float64
	cw, ch     float64
	cols, rows int
	cells      []cell
}

func newCellSurface(cols, rows int, cellWidth, cellHeight float64) *cellSurface {
	s := &cellSurface{
		w:  float64(cols) * cellWidth,
		h:  float64(rows) * cellHeight,
		cw: cellWidth,
		ch: cellHeight,
	}
	s.layout()
	return s
}

// layout resizes the grid to the logical size. Caller holds s.mu or owns s.
func (s *cellSurface) layout() {
	cols := max(int(s.w/s.cw), 0)
	rows := max(int(s.h/s.ch), 0)
	if cols != s.cols || rows != s.rows || s.cells == nil {
		s.cols, s.rows = cols, rows
		s.cells = make([]cell, cols*rows)
	}
}

func (s *cellSurface) Size() (float64, float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w, s.h
}

func (s *cellSurface) SetSize(w, h float64) {
	s.mu.Lock()
	s.w, s.h = w, h
	s.mu.Unlock()
}

func (s *cellSurface) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.layout()
	clear(s.cells)
}

func (s *cellSurface) FillCircle(x, y, _ float64, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plot(s.cellOf(x, y), toNRGBA(c), true)
}

// StrokeLine walks the cells between both endpoints (Bresenham).
func (s *cellSurface) StrokeLine(x1, y1, x2, y2 float64, c color.Color) {
	s.mu.Lock()
	defer s.mu.Unlock()

	nc := toNRGBA(c)
	c0, r0 := s.cellOf(x1, y1)
	c1, r1 := s.cellOf(x2, y2)

	dx := abs(c1 - c0)
	dy := -abs(r1 - r0)
	sx, sy := 1, 1
	if c0 > c1 {
		sx = -1
	}
	if r0 > r1 {
		sy = -1
	}
	err := dx + dy
	for {
		s.plot(c0, r0, nc, false)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			c0 += sx
		}
		if e2 <= dx {
			err += dx
			r0 += sy
		}
	}
}

func (s *cellSurface) cellOf(x, y float64) (int, int) {
	return int(math.Floor(x / s.cw)), int(math.Floor(y / s.ch))
}

// plot keeps the strongest alpha per cell; a particle marks the cell for good.
func (s *cellSurface) plot(col, row int, c color.NRGBA, dot bool) {
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return
	}
	cl := &s.cells[row*s.cols+col]
	alpha := float64(c.A) / 255
	if dot {
		cl.dot = true
	}
	if alpha > cl.alpha {
		cl.alpha = alpha
		cl.c = c
	}
}

// at returns the cell at col,row for inspection.
func (s *cellSurface) at(col, row int) (cell, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if col < 0 || row < 0 || col >= s.cols || row >= s.rows {
		return cell{}, false
	}
	return s.cells[row*s.cols+col], true
}

// flush copies the grid onto screen. Cells outside the grid are left as is.
func (s *cellSurface) flush(screen tcell.Screen) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for row := 0; row < s.rows; row++ {
		for col := 0; col < s.cols; col++ {
			cl := s.cells[row*s.cols+col]
			if cl.alpha <= 0 {
				screen.SetContent(col, row, ' ', nil, tcell.StyleDefault)
				continue
			}
			k := math.Min(1, cl.alpha*alphaGain)
			fg := tcell.NewRGBColor(int32(float64(cl.c.R)*k), int32(float64(cl.c.G)*k), int32(float64(cl.c.B)*k))
			r := lineRune
			if cl.dot {
				r = dotRune
			}
			screen.SetContent(col, row, r, nil, tcell.StyleDefault.Foreground(fg))
		}
	}
}

func toNRGBA(c color.Color) color.NRGBA {
	return color.NRGBAModel.Convert(c).(color.NRGBA)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
