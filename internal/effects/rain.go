package effects

import (
	"math/rand"

	"github.com/Garsondee/Glimmer/internal/engine"
)

// ---- Rain ------------------------------------------------------------------

// Rain streaks fast slanted drops from the top edge. Drops render as
// motion-blurred strokes along their own velocity, so heavier intensity
// reads as harder rain without any extra draw work.
type Rain struct {
	rng *rand.Rand
}

func NewRain(seed int64) *Rain {
	return &Rain{rng: newRand(seed)}
}

func (r *Rain) Spawn(p *engine.Particle, opts engine.Options, bounds engine.Bounds) {
	speed := opts.Intensity.SpeedScale()
	// Spawn margin covers the slant so drops can cross the full width.
	p.X = between(r.rng, -bounds.W*0.1, bounds.W*1.05)
	p.Y = between(r.rng, -24, -4)
	p.VX = between(r.rng, 0.5, 1.0) * speed
	p.VY = between(r.rng, 5, 8.5) * speed
	p.AX = 0
	p.AY = 0
	p.Size = scaled(between(r.rng, 0.6, 1.1), opts)
	p.Opacity = between(r.rng, 0.25, 0.55) * opts.Intensity.OpacityScale()
	p.Col = opts.PickColor(r.rng.Intn(4), engine.RGB(174, 194, 224))
	p.Rotation = 0
	p.RotationSpeed = 0
	p.Life = 0
	p.MaxLife = 0
	p.Phase = engine.PhaseActive
	p.Ext = nil
}

func (r *Rain) Update(p *engine.Particle, dt float64, bounds engine.Bounds) bool {
	p.X += p.VX * dt
	p.Y += p.VY * dt
	return p.Y <= bounds.H+16
}

func (r *Rain) Render(cv engine.Canvas, p *engine.Particle) {
	// Streak length is two frames of travel.
	cv.Save()
	cv.SetAlpha(p.Opacity)
	cv.StrokeLine(p.X, p.Y, p.X-p.VX*2, p.Y-p.VY*2, p.Size, p.Col)
	cv.Restore()
}

func (r *Rain) Capacity(opts engine.Options) int {
	return capacityFor(60, opts)
}
