package engine

// Bounds is the logical size of the overlay surface in pixels.
type Bounds struct {
	W, H float64
}

// Options is the per-session tuning passed through to Spawn. The zero
// value is usable: a zero Intensity is treated as medium (a session that
// should emit nothing is stopped, not started at "off").
type Options struct {
	// Intensity selects the row of the shared scaling table. The engine
	// caps it by the global intensity hint, so an automatic downgrade
	// slows every session.
	Intensity Intensity

	// IgnoreReducedMotion opts this session out of reduced-motion
	// suppression. Intended for effects the user explicitly triggered.
	IgnoreReducedMotion bool

	// Colors overrides the effect's default palette when non-empty.
	Colors []Color

	// SizeScale multiplies spawn sizes when > 0.
	SizeScale float64
}

// withDefaults normalizes the zero value.
func (o Options) withDefaults() Options {
	if o.Intensity == IntensityOff {
		o.Intensity = IntensityMedium
	}
	return o
}

// PickColor returns the i-th palette override, or fallback when no
// override is set. Helper for effect recipes.
func (o Options) PickColor(i int, fallback Color) Color {
	if len(o.Colors) == 0 {
		return fallback
	}
	return o.Colors[i%len(o.Colors)]
}

// EffectDefinition is the four-operation capability contract one visual
// effect implements. A single definition value may be shared by many
// running sessions; all per-particle state lives on the Particle (and its
// Ext bag), not on the definition.
//
// Update and Render run once per particle per frame inside the tick loop
// and must not call back into the Engine. Neither may panic; the engine
// does not guard these hot paths.
type EffectDefinition interface {
	// Spawn initializes every field of a freshly acquired record based on
	// the session options. Released records are reset to defaults before
	// reuse, but Spawn must still overwrite everything meaningful; no
	// stale carry-over is permitted. Bounds is the current overlay size,
	// for placement.
	Spawn(p *Particle, opts Options, bounds Bounds)

	// Update advances physics and lifecycle by dt normalized frame units
	// (1.0 per 16.67 ms, clamped upstream). Returning false signals the
	// particle should be reclaimed.
	Update(p *Particle, dt float64, bounds Bounds) bool

	// Render draws the particle. Pure side effect; must not mutate p.
	Render(cv Canvas, p *Particle)

	// Capacity is the maximum simultaneous particle count this effect may
	// hold under the given options. Caps both the initial pre-spawn batch
	// and continuous spawning.
	Capacity(opts Options) int
}
