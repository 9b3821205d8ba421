// Package effects provides the built-in overlay effect recipes. Each
// recipe implements engine.EffectDefinition and keeps all per-particle
// state on the Particle record and its Ext bag, so one recipe value can
// back any number of concurrent sessions.
package effects

import (
	"math/rand"

	"github.com/Garsondee/Glimmer/internal/engine"
)

// ---- Shared helpers --------------------------------------------------------

// newRand builds a deterministic source per recipe so headless runs are
// reproducible for a given seed.
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed)) // #nosec G404 -- decorative jitter, not crypto
}

// between returns a uniform value in [lo, hi).
func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

// scaled applies the session size override on top of a base size.
func scaled(base float64, opts engine.Options) float64 {
	if opts.SizeScale > 0 {
		return base * opts.SizeScale
	}
	return base
}

// capacityFor scales a recipe's base particle count by intensity.
func capacityFor(base int, opts engine.Options) int {
	n := int(float64(base) * opts.Intensity.CountScale())
	if n < 0 {
		n = 0
	}
	return n
}

// RegisterAll registers every built-in recipe on e under its canonical
// type tag. Seed derivation keeps the recipes decorrelated while the
// whole set stays reproducible from one root seed.
func RegisterAll(e *engine.Engine, seed int64) {
	e.RegisterEffect("snow", NewSnow(seed))
	e.RegisterEffect("confetti", NewConfetti(seed+1))
	e.RegisterEffect("fireworks", NewFireworks(seed+2))
	e.RegisterEffect("embers", NewEmbers(seed+3))
	e.RegisterEffect("bubbles", NewBubbles(seed+4))
	e.RegisterEffect("rain", NewRain(seed+5))
	e.RegisterEffect("fireflies", NewFireflies(seed+6))
	e.RegisterEffect("hearts", NewHearts(seed+7))
}

// Types returns the canonical type tags in registration order.
func Types() []string {
	return []string{
		"snow", "confetti", "fireworks", "embers",
		"bubbles", "rain", "fireflies", "hearts",
	}
}
