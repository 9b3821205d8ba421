package engine

// Phase is advisory per-particle lifecycle state. Effect recipes set and
// read it (e.g. a bubble switching to PhaseDying when it pops); the engine
// never branches on it.
type Phase uint8

const (
	PhaseSpawning Phase = iota
	PhaseActive
	PhaseDying
)

func (ph Phase) String() string {
	switch ph {
	case PhaseSpawning:
		return "spawning"
	case PhaseActive:
		return "active"
	case PhaseDying:
		return "dying"
	}
	return "unknown"
}

// Particle is the mutable, reusable state for one visual particle. Records
// are recycled through the Pool and never individually allocated during
// steady-state operation; every field below has a documented default that
// reset() restores before a record is handed out again.
//
// Velocity and acceleration are in pixels per normalized frame unit
// (1.0 unit ≈ 16.67 ms of wall time).
type Particle struct {
	X, Y   float64 // screen-space pixels
	VX, VY float64
	AX, AY float64

	Size    float64 // px, default 1
	Opacity float64 // 0-1, default 1
	Col     Color   // default DefaultColor (white token)

	Rotation      float64 // radians
	RotationSpeed float64 // radians per frame unit

	Life    float64 // elapsed frame units since spawn
	MaxLife float64 // cap; <= 0 means unbounded (persistent particle)

	Phase Phase

	// Ext is the effect-owned metadata bag (wobble phase, pop progress,
	// trail anchor, ...). Exclusively owned by the effect that spawned the
	// particle; the engine treats it as opaque and only nils it on reset.
	Ext any
}

// reset restores every field to its documented default.
func (p *Particle) reset() {
	*p = Particle{
		Size:    1,
		Opacity: 1,
		Col:     DefaultColor,
		Phase:   PhaseActive,
	}
}
