package engine

import "time"

// FrameScheduler is the "run once before the next repaint" primitive. The
// engine owns exactly one outstanding callback at a time: each tick begins
// by rescheduling itself, and cancelling the returned token prevents the
// callback from firing.
type FrameScheduler interface {
	Schedule(fn func(now time.Time)) (cancel func())
}

// ManualScheduler drives frames by hand with a synthetic clock, for the
// test rig and the headless-report command. Step advances the clock and fires
// the pending callback, which typically reschedules itself.
type ManualScheduler struct {
	now     time.Time
	pending func(now time.Time)
	seq     int
}

// NewManualScheduler creates a manual scheduler starting at start.
func NewManualScheduler(start time.Time) *ManualScheduler {
	return &ManualScheduler{now: start}
}

// Now returns the synthetic clock reading.
func (s *ManualScheduler) Now() time.Time {
	return s.now
}

// Schedule implements FrameScheduler.
func (s *ManualScheduler) Schedule(fn func(now time.Time)) func() {
	s.pending = fn
	s.seq++
	token := s.seq
	return func() {
		if s.seq == token {
			s.pending = nil
		}
	}
}

// Pending reports whether a callback is waiting for the next frame.
func (s *ManualScheduler) Pending() bool {
	return s.pending != nil
}

// Step advances the clock by dt and fires the pending callback, if any.
func (s *ManualScheduler) Step(dt time.Duration) {
	s.now = s.now.Add(dt)
	fn := s.pending
	s.pending = nil
	if fn != nil {
		fn(s.now)
	}
}

// StepFrames runs n frames of dt each.
func (s *ManualScheduler) StepFrames(n int, dt time.Duration) {
	for i := 0; i < n; i++ {
		s.Step(dt)
	}
}

// PumpScheduler adapts a host-driven frame loop (an ebiten Update call) to
// the FrameScheduler contract: the host calls Fire once per display frame
// and the pending callback runs with wall time.
type PumpScheduler struct {
	pending func(now time.Time)
	seq     int
}

// Schedule implements FrameScheduler.
func (s *PumpScheduler) Schedule(fn func(now time.Time)) func() {
	s.pending = fn
	s.seq++
	token := s.seq
	return func() {
		if s.seq == token {
			s.pending = nil
		}
	}
}

// Fire runs the pending callback, if any. Call once per host frame.
func (s *PumpScheduler) Fire() {
	fn := s.pending
	s.pending = nil
	if fn != nil {
		fn(time.Now())
	}
}
