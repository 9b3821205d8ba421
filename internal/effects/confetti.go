package effects

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Glimmer/internal/engine"
)

// ---- Confetti --------------------------------------------------------------

var confettiPalette = []engine.Color{
	engine.Named("crimson"),
	engine.Named("gold"),
	engine.Named("mediumseagreen"),
	engine.Named("dodgerblue"),
	engine.Named("orchid"),
	engine.RGB(255, 145, 0),
}

// confettiExt carries the flutter oscillator for one piece.
type confettiExt struct {
	phase  float64
	freq   float64
	aspect float64 // length-to-width ratio of the piece
}

// Confetti tumbles flat paper pieces from the top, fluttering as they
// fall. Pieces are life-limited and fade out over their final stretch, so
// a burst-style session winds down instead of raining forever at full
// strength.
type Confetti struct {
	rng *rand.Rand
}

func NewConfetti(seed int64) *Confetti {
	return &Confetti{rng: newRand(seed)}
}

func (c *Confetti) Spawn(p *engine.Particle, opts engine.Options, bounds engine.Bounds) {
	speed := opts.Intensity.SpeedScale()
	p.X = between(c.rng, 0, bounds.W)
	p.Y = between(c.rng, -16, -4)
	p.VX = between(c.rng, -0.5, 0.5) * speed
	p.VY = between(c.rng, 0.8, 1.8) * speed
	p.AX = 0
	p.AY = 0.015 // light gravity, most of the fall is drag-limited
	p.Size = scaled(between(c.rng, 2.5, 5), opts)
	p.Opacity = opts.Intensity.OpacityScale()
	p.Col = opts.PickColor(c.rng.Intn(len(confettiPalette)), confettiPalette[c.rng.Intn(len(confettiPalette))])
	p.Rotation = between(c.rng, 0, 2*math.Pi)
	p.RotationSpeed = between(c.rng, -0.25, 0.25)
	p.Life = 0
	p.MaxLife = between(c.rng, 180, 320) // frame units
	p.Phase = engine.PhaseActive
	p.Ext = &confettiExt{
		phase:  between(c.rng, 0, 2*math.Pi),
		freq:   between(c.rng, 0.1, 0.22),
		aspect: between(c.rng, 1.6, 2.6),
	}
}

func (c *Confetti) Update(p *engine.Particle, dt float64, bounds engine.Bounds) bool {
	ext := p.Ext.(*confettiExt)
	ext.phase += ext.freq * dt
	p.VY += p.AY * dt
	if p.VY > 2.2 {
		p.VY = 2.2
	}
	p.X += (p.VX + math.Sin(ext.phase)*0.6) * dt
	p.Y += p.VY * dt
	p.Rotation += p.RotationSpeed * dt
	p.Life += dt
	if p.MaxLife > 0 && p.Life >= p.MaxLife {
		return false
	}
	if p.MaxLife > 0 && p.Life > p.MaxLife*0.75 {
		p.Phase = engine.PhaseDying
	}
	return p.Y <= bounds.H+p.Size*2
}

func (c *Confetti) Render(cv engine.Canvas, p *engine.Particle) {
	ext := p.Ext.(*confettiExt)
	alpha := p.Opacity
	if p.Phase == engine.PhaseDying && p.MaxLife > 0 {
		frac := (p.Life - p.MaxLife*0.75) / (p.MaxLife * 0.25)
		alpha *= 1 - frac
	}
	// A tumbling piece reads as a short thick stroke whose apparent length
	// follows the flutter; cheaper than rotated-rect geometry.
	length := p.Size * ext.aspect * (0.35 + 0.65*math.Abs(math.Cos(ext.phase)))
	dx := math.Cos(p.Rotation) * length / 2
	dy := math.Sin(p.Rotation) * length / 2
	cv.Save()
	cv.SetAlpha(alpha)
	cv.StrokeLine(p.X-dx, p.Y-dy, p.X+dx, p.Y+dy, p.Size*0.8, p.Col)
	cv.Restore()
}

func (c *Confetti) Capacity(opts engine.Options) int {
	return capacityFor(40, opts)
}
