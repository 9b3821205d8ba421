package effects

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Glimmer/internal/engine"
)

// ---- Snow ------------------------------------------------------------------

// snowExt carries the sway oscillator for one flake.
type snowExt struct {
	phase float64 // radians
	freq  float64 // radians per frame
	amp   float64 // px of horizontal drift per frame
}

// Snow drifts soft flakes from the top edge to the bottom, with a gentle
// sinusoidal sway. Flakes spawn just above the viewport so entry looks
// continuous rather than popping in.
type Snow struct {
	rng *rand.Rand
}

func NewSnow(seed int64) *Snow {
	return &Snow{rng: newRand(seed)}
}

func (s *Snow) Spawn(p *engine.Particle, opts engine.Options, bounds engine.Bounds) {
	speed := opts.Intensity.SpeedScale()
	p.X = between(s.rng, 0, bounds.W)
	p.Y = between(s.rng, -12, -2)
	p.VX = 0
	p.VY = between(s.rng, 0.4, 1.1) * speed
	p.AX = 0
	p.AY = 0
	p.Size = scaled(between(s.rng, 1.2, 3.2), opts)
	p.Opacity = between(s.rng, 0.5, 0.95) * opts.Intensity.OpacityScale()
	p.Col = opts.PickColor(s.rng.Intn(8), engine.Named("white"))
	p.Rotation = 0
	p.RotationSpeed = 0
	p.Life = 0
	p.MaxLife = 0 // unbounded; dies off the bottom edge
	p.Phase = engine.PhaseActive
	p.Ext = &snowExt{
		phase: between(s.rng, 0, 2*math.Pi),
		freq:  between(s.rng, 0.02, 0.06),
		amp:   between(s.rng, 0.15, 0.5),
	}
}

func (s *Snow) Update(p *engine.Particle, dt float64, bounds engine.Bounds) bool {
	ext := p.Ext.(*snowExt)
	ext.phase += ext.freq * dt
	p.X += math.Sin(ext.phase) * ext.amp * dt
	p.Y += p.VY * dt
	// Wrap horizontally so sway near an edge never strands a flake.
	if p.X < -4 {
		p.X += bounds.W + 8
	} else if p.X > bounds.W+4 {
		p.X -= bounds.W + 8
	}
	return p.Y <= bounds.H+p.Size
}

func (s *Snow) Render(cv engine.Canvas, p *engine.Particle) {
	cv.Save()
	cv.SetAlpha(p.Opacity)
	cv.FillCircle(p.X, p.Y, p.Size, p.Col)
	cv.Restore()
}

func (s *Snow) Capacity(opts engine.Options) int {
	return capacityFor(50, opts)
}
