package effects

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Glimmer/internal/engine"
)

// ---- Hearts ----------------------------------------------------------------

var heartPalette = []engine.Color{
	engine.Named("hotpink"),
	engine.Named("crimson"),
	engine.RGB(255, 160, 190),
}

// heartExt is the sway oscillator for one heart.
type heartExt struct {
	phase float64
	freq  float64
}

// Hearts float upward from the lower third with a gentle sway, fading out
// over the last quarter of their life. Each heart is drawn from two filled
// lobes and two thick strokes meeting at the point; close enough at
// overlay sizes.
type Hearts struct {
	rng *rand.Rand
}

func NewHearts(seed int64) *Hearts {
	return &Hearts{rng: newRand(seed)}
}

func (h *Hearts) Spawn(p *engine.Particle, opts engine.Options, bounds engine.Bounds) {
	speed := opts.Intensity.SpeedScale()
	p.X = between(h.rng, bounds.W*0.1, bounds.W*0.9)
	p.Y = between(h.rng, bounds.H*0.7, bounds.H+6)
	p.VX = 0
	p.VY = -between(h.rng, 0.4, 0.9) * speed
	p.AX = 0
	p.AY = 0
	p.Size = scaled(between(h.rng, 3, 6), opts)
	p.Opacity = between(h.rng, 0.6, 0.95) * opts.Intensity.OpacityScale()
	p.Col = opts.PickColor(h.rng.Intn(len(heartPalette)), heartPalette[h.rng.Intn(len(heartPalette))])
	p.Rotation = 0
	p.RotationSpeed = 0
	p.Life = 0
	p.MaxLife = between(h.rng, 140, 260)
	p.Phase = engine.PhaseActive
	p.Ext = &heartExt{
		phase: between(h.rng, 0, 2*math.Pi),
		freq:  between(h.rng, 0.03, 0.07),
	}
}

func (h *Hearts) Update(p *engine.Particle, dt float64, bounds engine.Bounds) bool {
	ext := p.Ext.(*heartExt)
	ext.phase += ext.freq * dt
	p.X += math.Sin(ext.phase) * 0.35 * dt
	p.Y += p.VY * dt
	p.Life += dt
	if p.Life >= p.MaxLife || p.Y < -p.Size*2 {
		return false
	}
	if p.Life > p.MaxLife*0.75 {
		p.Phase = engine.PhaseDying
	}
	return true
}

func (h *Hearts) Render(cv engine.Canvas, p *engine.Particle) {
	alpha := p.Opacity
	if p.Phase == engine.PhaseDying {
		alpha *= 1 - (p.Life-p.MaxLife*0.75)/(p.MaxLife*0.25)
	}
	s := p.Size
	cv.Save()
	cv.SetAlpha(alpha)
	// Two lobes.
	cv.FillCircle(p.X-s*0.35, p.Y-s*0.25, s*0.42, p.Col)
	cv.FillCircle(p.X+s*0.35, p.Y-s*0.25, s*0.42, p.Col)
	// Body tapering to the point.
	cv.StrokeLine(p.X-s*0.6, p.Y-s*0.1, p.X, p.Y+s*0.7, s*0.5, p.Col)
	cv.StrokeLine(p.X+s*0.6, p.Y-s*0.1, p.X, p.Y+s*0.7, s*0.5, p.Col)
	cv.Restore()
}

func (h *Hearts) Capacity(opts engine.Options) int {
	return capacityFor(20, opts)
}
