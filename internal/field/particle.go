package field

import (
	"math"
	"math/rand/v2"

	"github.com/iburimskiy/particle-field/internal/config"
)

// Particle is a drifting point. Only X and Y change after creation.
type Particle struct {
	X, Y    float64
	VX, VY  float64
	Radius  float64
	Opacity float64
}

// step advances p by its velocity and wraps it back into [0,w) x [0,h).
func (p *Particle) step(w, h float64) {
	p.X = wrap(p.X+p.VX, w)
	p.Y = wrap(p.Y+p.VY, h)
}

// wrap resets a coordinate that left [0, limit) to the opposite edge.
// Leaving past the far edge restarts at 0; leaving below 0 restarts just
// under limit. Overshoot is discarded, so crossing an edge jumps.
func wrap(v, limit float64) float64 {
	switch {
	case v >= limit:
		return 0
	case v < 0:
		return math.Nextafter(limit, 0)
	}
	return v
}

// particleCount picks the pool size for a viewport width.
func particleCount(cfg config.FieldConfig, viewportWidth float64) int {
	if viewportWidth < cfg.NarrowBreakpoint {
		return cfg.NarrowParticles
	}
	return cfg.Particles
}

// newPool creates n particles uniformly spread over a w x h rectangle.
func newPool(rng *rand.Rand, cfg config.FieldConfig, n int, w, h float64) []Particle {
	pool := make([]Particle, n)
	for i := range pool {
		pool[i] = Particle{
			X:       wrap(uniform(rng, 0, w), w),
			Y:       wrap(uniform(rng, 0, h), h),
			VX:      uniform(rng, -cfg.MaxSpeed, cfg.MaxSpeed),
			VY:      uniform(rng, -cfg.MaxSpeed, cfg.MaxSpeed),
			Radius:  uniform(rng, cfg.MinRadius, cfg.MaxRadius),
			Opacity: uniform(rng, cfg.MinOpacity, cfg.MaxOpacity),
		}
	}
	return pool
}

// uniform returns a value in [lo, hi); lo when the range is empty.
func uniform(rng *rand.Rand, lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + rng.Float64()*(hi-lo)
}

// LinkOpacity is the opacity of a connection between two particles at the
// given distance: peak at distance 0, decaying linearly to 0 at threshold.
func LinkOpacity(distance, threshold, peak float64) float64 {
	if threshold <= 0 || distance >= threshold {
		return 0
	}
	if distance < 0 {
		distance = 0
	}
	return peak * (1 - distance/threshold)
}
