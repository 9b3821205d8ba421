package effects

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Glimmer/internal/engine"
)

// ---- Embers ----------------------------------------------------------------

// emberExt is the flicker oscillator for one ember.
type emberExt struct {
	phase float64
	freq  float64
}

// Embers float glowing motes up from the bottom edge, flickering as they
// rise and cool from hot yellow toward deep red over their lifetime.
type Embers struct {
	rng *rand.Rand
}

var (
	emberHot  = engine.RGB(255, 214, 120)
	emberCool = engine.RGB(178, 34, 34)
)

func NewEmbers(seed int64) *Embers {
	return &Embers{rng: newRand(seed)}
}

func (e *Embers) Spawn(p *engine.Particle, opts engine.Options, bounds engine.Bounds) {
	speed := opts.Intensity.SpeedScale()
	p.X = between(e.rng, 0, bounds.W)
	p.Y = between(e.rng, bounds.H, bounds.H+10)
	p.VX = between(e.rng, -0.2, 0.2)
	p.VY = -between(e.rng, 0.5, 1.3) * speed
	p.AX = 0
	p.AY = -0.003 // hot air, slight upward pull
	p.Size = scaled(between(e.rng, 0.8, 2), opts)
	p.Opacity = between(e.rng, 0.6, 1) * opts.Intensity.OpacityScale()
	p.Col = opts.PickColor(e.rng.Intn(4), emberHot)
	p.Rotation = 0
	p.RotationSpeed = 0
	p.Life = 0
	p.MaxLife = between(e.rng, 150, 280)
	p.Phase = engine.PhaseActive
	p.Ext = &emberExt{
		phase: between(e.rng, 0, 2*math.Pi),
		freq:  between(e.rng, 0.15, 0.4),
	}
}

func (e *Embers) Update(p *engine.Particle, dt float64, bounds engine.Bounds) bool {
	ext := p.Ext.(*emberExt)
	ext.phase += ext.freq * dt
	p.VY += p.AY * dt
	p.X += (p.VX + math.Sin(ext.phase)*0.3) * dt
	p.Y += p.VY * dt
	p.Life += dt
	if p.MaxLife > 0 && p.Life >= p.MaxLife {
		return false
	}
	return p.Y >= -8
}

func (e *Embers) Render(cv engine.Canvas, p *engine.Particle) {
	ext := p.Ext.(*emberExt)
	age := 0.0
	if p.MaxLife > 0 {
		age = p.Life / p.MaxLife
	}
	col := engine.Mix(p.Col, emberCool, age)
	flicker := 0.7 + 0.3*math.Sin(ext.phase)
	cv.Save()
	cv.SetBlend(engine.BlendLighter)
	cv.SetAlpha(p.Opacity * flicker * (1 - age*0.6))
	cv.FillRadial(p.X, p.Y, p.Size*3, col, emberCool)
	cv.FillCircle(p.X, p.Y, p.Size*0.8, col)
	cv.Restore()
}

func (e *Embers) Capacity(opts engine.Options) int {
	return capacityFor(30, opts)
}
