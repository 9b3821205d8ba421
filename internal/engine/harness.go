package engine

import (
	"time"
)

// ---- Headless rig ----------------------------------------------------------
//
// Rig wires an Engine to a manual scheduler, a recording canvas, and a
// switchable motion preference so behaviour can be driven deterministically
// without a display. Tests and the headless report tool both build on it.

// Rig is a fully headless engine instance on a synthetic timeline.
type Rig struct {
	Engine *Engine
	Sched  *ManualScheduler
	Target *RecordTarget
	Motion *MotionPref
	Trace  *Trace
	Config Config
}

// RigOption configures a Rig before the engine is constructed.
type RigOption func(*Rig)

// WithRigConfig replaces the default engine config.
func WithRigConfig(cfg Config) RigOption {
	return func(r *Rig) { r.Config = cfg }
}

// WithReducedMotion starts the rig with the reduced-motion preference set.
func WithReducedMotion() RigOption {
	return func(r *Rig) { r.Motion.Set(true) }
}

// WithVerboseTrace records verbose trace entries in addition to the
// standard ones.
func WithVerboseTrace() RigOption {
	return func(r *Rig) { r.Trace = NewTrace(true) }
}

// WithRigStart sets the synthetic clock's epoch.
func WithRigStart(t time.Time) RigOption {
	return func(r *Rig) { r.Sched = NewManualScheduler(t) }
}

// NewRig builds an initialized headless rig. Effects still need to be
// registered by the caller.
func NewRig(opts ...RigOption) (*Rig, error) {
	r := &Rig{
		Sched:  NewManualScheduler(time.Unix(0, 0)),
		Target: &RecordTarget{W: 320, H: 240},
		Motion: NewMotionPref(false),
		Trace:  NewTrace(false),
		Config: DefaultConfig(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.Engine = New(r.Config, r.Sched, r.Motion,
		WithClock(r.Sched.Now),
		WithTrace(r.Trace),
	)
	if err := r.Engine.Init(r.Target); err != nil {
		return nil, err
	}
	return r, nil
}

// StepFrames advances n frames of one frame unit each.
func (r *Rig) StepFrames(n int) {
	r.Sched.StepFrames(n, time.Second/60)
}

// StepSeconds advances whole seconds, frame by frame.
func (r *Rig) StepSeconds(s int) {
	r.StepFrames(s * 60)
}

// Canvas returns the recording canvas currently backing the engine, or
// nil before the first frame target creation.
func (r *Rig) Canvas() *RecordCanvas {
	return r.Target.Last
}
