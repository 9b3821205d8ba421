package effects

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Glimmer/internal/engine"
)

// ---- Fireflies -------------------------------------------------------------

// flyExt carries the glow pulse and wander state.
type flyExt struct {
	pulse     float64
	pulseFreq float64
	steerIn   float64 // frames until the next steering impulse
}

// Fireflies wander the whole viewport with slow random steering and a
// sinusoidal glow pulse. They live a long time and fade out at the end
// rather than leaving the screen.
type Fireflies struct {
	rng *rand.Rand
}

func NewFireflies(seed int64) *Fireflies {
	return &Fireflies{rng: newRand(seed)}
}

func (f *Fireflies) Spawn(p *engine.Particle, opts engine.Options, bounds engine.Bounds) {
	speed := opts.Intensity.SpeedScale()
	p.X = between(f.rng, 0, bounds.W)
	p.Y = between(f.rng, 0, bounds.H)
	angle := between(f.rng, 0, 2*math.Pi)
	v := between(f.rng, 0.15, 0.45) * speed
	p.VX = math.Cos(angle) * v
	p.VY = math.Sin(angle) * v
	p.AX = 0
	p.AY = 0
	p.Size = scaled(between(f.rng, 1, 1.8), opts)
	p.Opacity = opts.Intensity.OpacityScale()
	p.Col = opts.PickColor(f.rng.Intn(3), engine.RGB(212, 255, 120))
	p.Rotation = 0
	p.RotationSpeed = 0
	p.Life = 0
	p.MaxLife = between(f.rng, 400, 900)
	p.Phase = engine.PhaseActive
	p.Ext = &flyExt{
		pulse:     between(f.rng, 0, 2*math.Pi),
		pulseFreq: between(f.rng, 0.04, 0.1),
		steerIn:   between(f.rng, 20, 70),
	}
}

func (f *Fireflies) Update(p *engine.Particle, dt float64, bounds engine.Bounds) bool {
	ext := p.Ext.(*flyExt)
	ext.pulse += ext.pulseFreq * dt
	ext.steerIn -= dt
	if ext.steerIn <= 0 {
		// Nudge heading, keep cruise speed.
		v := math.Hypot(p.VX, p.VY)
		angle := math.Atan2(p.VY, p.VX) + between(f.rng, -0.9, 0.9)
		p.VX = math.Cos(angle) * v
		p.VY = math.Sin(angle) * v
		ext.steerIn = between(f.rng, 20, 70)
	}
	p.X += p.VX * dt
	p.Y += p.VY * dt
	// Soft bounce off the edges.
	if p.X < 0 || p.X > bounds.W {
		p.VX = -p.VX
	}
	if p.Y < 0 || p.Y > bounds.H {
		p.VY = -p.VY
	}
	p.Life += dt
	if p.Life >= p.MaxLife {
		return false
	}
	if p.Life > p.MaxLife*0.85 {
		p.Phase = engine.PhaseDying
	}
	return true
}

func (f *Fireflies) Render(cv engine.Canvas, p *engine.Particle) {
	ext := p.Ext.(*flyExt)
	glow := 0.35 + 0.65*(0.5+0.5*math.Sin(ext.pulse))
	alpha := p.Opacity * glow
	if p.Phase == engine.PhaseDying {
		alpha *= 1 - (p.Life-p.MaxLife*0.85)/(p.MaxLife*0.15)
	}
	cv.Save()
	cv.SetBlend(engine.BlendLighter)
	cv.SetAlpha(alpha * 0.6)
	cv.FillRadial(p.X, p.Y, p.Size*4, p.Col, engine.RGB(20, 40, 10))
	cv.SetAlpha(alpha)
	cv.FillCircle(p.X, p.Y, p.Size*0.7, p.Col)
	cv.Restore()
}

func (f *Fireflies) Capacity(opts engine.Options) int {
	return capacityFor(18, opts)
}
