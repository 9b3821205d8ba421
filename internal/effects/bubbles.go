package effects

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Glimmer/internal/engine"
)

// ---- Bubbles ---------------------------------------------------------------

// bubbleExt carries the wobble oscillator and pop progress.
type bubbleExt struct {
	phase float64
	freq  float64
	pop   float64 // 0 while rising; pop animation progress in frame units
}

// popFrames is how long the pop animation runs before reclaim.
const popFrames = 8.0

// Bubbles rise from the bottom with a lateral wobble and pop near the top
// edge: a short expanding-ring animation rather than vanishing in place.
type Bubbles struct {
	rng *rand.Rand
}

func NewBubbles(seed int64) *Bubbles {
	return &Bubbles{rng: newRand(seed)}
}

func (b *Bubbles) Spawn(p *engine.Particle, opts engine.Options, bounds engine.Bounds) {
	speed := opts.Intensity.SpeedScale()
	p.X = between(b.rng, 0, bounds.W)
	p.Y = between(b.rng, bounds.H+2, bounds.H+14)
	p.VX = 0
	p.VY = -between(b.rng, 0.5, 1.2) * speed
	p.AX = 0
	p.AY = 0
	p.Size = scaled(between(b.rng, 2.5, 6), opts)
	p.Opacity = between(b.rng, 0.35, 0.7) * opts.Intensity.OpacityScale()
	p.Col = opts.PickColor(b.rng.Intn(4), engine.RGB(190, 225, 255))
	p.Rotation = 0
	p.RotationSpeed = 0
	p.Life = 0
	p.MaxLife = 0
	p.Phase = engine.PhaseActive
	p.Ext = &bubbleExt{
		phase: between(b.rng, 0, 2*math.Pi),
		freq:  between(b.rng, 0.04, 0.1),
	}
}

func (b *Bubbles) Update(p *engine.Particle, dt float64, bounds engine.Bounds) bool {
	ext := p.Ext.(*bubbleExt)
	if p.Phase == engine.PhaseDying {
		ext.pop += dt
		return ext.pop < popFrames
	}
	ext.phase += ext.freq * dt
	p.X += math.Sin(ext.phase) * 0.4 * dt
	p.Y += p.VY * dt
	if p.Y <= p.Size+between(b.rng, 2, 28) {
		p.Phase = engine.PhaseDying
	}
	return true
}

func (b *Bubbles) Render(cv engine.Canvas, p *engine.Particle) {
	ext := p.Ext.(*bubbleExt)
	cv.Save()
	if p.Phase == engine.PhaseDying {
		frac := ext.pop / popFrames
		cv.SetAlpha(p.Opacity * (1 - frac))
		cv.StrokeCircle(p.X, p.Y, p.Size*(1+frac*0.8), 0.8, p.Col)
		cv.Restore()
		return
	}
	cv.SetAlpha(p.Opacity)
	cv.StrokeCircle(p.X, p.Y, p.Size, 1, p.Col)
	// Specular glint, upper-left.
	cv.SetAlpha(p.Opacity * 0.9)
	cv.FillCircle(p.X-p.Size*0.35, p.Y-p.Size*0.35, p.Size*0.2, engine.Named("white"))
	cv.Restore()
}

func (b *Bubbles) Capacity(opts engine.Options) int {
	return capacityFor(25, opts)
}
