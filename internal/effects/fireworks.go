package effects

import (
	"math"
	"math/rand"

	"github.com/Garsondee/Glimmer/internal/engine"
)

// ---- Fireworks -------------------------------------------------------------

var fireworkPalette = []engine.Color{
	engine.Named("gold"),
	engine.Named("tomato"),
	engine.Named("deepskyblue"),
	engine.Named("springgreen"),
	engine.RGB(255, 120, 220),
}

// fwExt carries one spark's burst origin and trail anchor.
type fwExt struct {
	trailX, trailY float64
}

// Fireworks models each particle as one spark of a burst: sparks spawn in
// small radial clusters (the spawn pacing naturally staggers clusters) and
// fall under gravity while fading. Sparks draw additively so overlapping
// bursts bloom instead of muddying.
type Fireworks struct {
	rng *rand.Rand

	// Current cluster; refreshed after clusterSize spawns so consecutive
	// spawns share a burst origin and hue.
	cx, cy  float64
	col     engine.Color
	pending int
}

const fwClusterSize = 9

func NewFireworks(seed int64) *Fireworks {
	return &Fireworks{rng: newRand(seed)}
}

func (f *Fireworks) Spawn(p *engine.Particle, opts engine.Options, bounds engine.Bounds) {
	if f.pending <= 0 {
		f.cx = between(f.rng, bounds.W*0.15, bounds.W*0.85)
		f.cy = between(f.rng, bounds.H*0.12, bounds.H*0.5)
		f.col = opts.PickColor(f.rng.Intn(len(fireworkPalette)), fireworkPalette[f.rng.Intn(len(fireworkPalette))])
		f.pending = fwClusterSize
	}
	f.pending--

	speed := opts.Intensity.SpeedScale()
	angle := between(f.rng, 0, 2*math.Pi)
	v := between(f.rng, 1.2, 3.2) * speed
	p.X = f.cx
	p.Y = f.cy
	p.VX = math.Cos(angle) * v
	p.VY = math.Sin(angle)*v - 0.4
	p.AX = 0
	p.AY = 0.06 // gravity
	p.Size = scaled(between(f.rng, 1, 2.2), opts)
	p.Opacity = opts.Intensity.OpacityScale()
	p.Col = f.col
	p.Rotation = 0
	p.RotationSpeed = 0
	p.Life = 0
	p.MaxLife = between(f.rng, 45, 80)
	p.Phase = engine.PhaseActive
	p.Ext = &fwExt{trailX: f.cx, trailY: f.cy}
}

func (f *Fireworks) Update(p *engine.Particle, dt float64, bounds engine.Bounds) bool {
	ext := p.Ext.(*fwExt)
	// Trail lags the spark for a comet tail.
	ext.trailX += (p.X - ext.trailX) * 0.35 * dt
	ext.trailY += (p.Y - ext.trailY) * 0.35 * dt
	p.VY += p.AY * dt
	p.VX *= 1 - 0.015*dt // drag
	p.X += p.VX * dt
	p.Y += p.VY * dt
	p.Life += dt
	if p.Life >= p.MaxLife || p.Y > bounds.H+8 {
		return false
	}
	if p.Life > p.MaxLife*0.6 {
		p.Phase = engine.PhaseDying
	}
	return true
}

func (f *Fireworks) Render(cv engine.Canvas, p *engine.Particle) {
	ext := p.Ext.(*fwExt)
	alpha := p.Opacity
	if p.Phase == engine.PhaseDying {
		alpha *= 1 - (p.Life-p.MaxLife*0.6)/(p.MaxLife*0.4)
	}
	cv.Save()
	cv.SetBlend(engine.BlendLighter)
	cv.SetAlpha(alpha * 0.5)
	cv.StrokeLine(ext.trailX, ext.trailY, p.X, p.Y, p.Size*0.7, p.Col)
	cv.SetAlpha(alpha)
	cv.FillCircle(p.X, p.Y, p.Size, p.Col)
	cv.Restore()
}

func (f *Fireworks) Capacity(opts engine.Options) int {
	return capacityFor(45, opts)
}
