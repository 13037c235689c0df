package field

import (
	"image/color"
	"math"

	"github.com/iburimskiy/particle-field/internal/config"
)

// hsvToRgb converts HSV to RGB (hue: 0-360, saturation: 0-1, value: 0-1)
func hsvToRgb(h, s, v float64) (uint8, uint8, uint8) {
	h = math.Mod(h, 360)
	if h < 0 {
		h += 360
	}
	c := v * s
	x := c * (1 - math.Abs(math.Mod(h/60, 2)-1))
	m := v - c

	var r, g, b float64
	switch {
	case h < 60:
		r, g, b = c, x, 0
	case h < 120:
		r, g, b = x, c, 0
	case h < 180:
		r, g, b = 0, c, x
	case h < 240:
		r, g, b = 0, x, c
	case h < 300:
		r, g, b = x, 0, c
	default:
		r, g, b = c, 0, x
	}

	return uint8((r + m) * 255), uint8((g + m) * 255), uint8((b + m) * 255)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// palette holds the field color; tint applies a per-draw opacity.
type palette struct {
	r, g, b uint8
}

func newPalette(c config.ColorConfig) palette {
	r, g, b := hsvToRgb(c.Hue, clamp01(c.Saturation), clamp01(c.Value))
	return palette{r: r, g: g, b: b}
}

func (p palette) tint(opacity float64) color.NRGBA {
	return color.NRGBA{R: p.r, G: p.g, B: p.b, A: uint8(math.Round(clamp01(opacity) * 255))}
}
