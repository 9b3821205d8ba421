package engine

// MotionSignal is the external reduced-motion preference: a boolean plus
// change notification. While true, new sessions are suppressed (soft
// no-op) unless they explicitly opt out, and a flip to true mid-run stops
// everything.
type MotionSignal interface {
	Reduced() bool
	OnChange(fn func(reduced bool)) (unsubscribe func())
}

// MotionPref is a settable MotionSignal for hosts that poll the preference
// themselves (the demo flips it from a key binding; tests flip it
// directly). Single-threaded like the rest of the runtime.
type MotionPref struct {
	reduced bool
	subs    []*motionSub
}

type motionSub struct {
	fn func(bool)
}

// NewMotionPref creates a preference with the given initial state.
func NewMotionPref(reduced bool) *MotionPref {
	return &MotionPref{reduced: reduced}
}

// Reduced implements MotionSignal.
func (m *MotionPref) Reduced() bool {
	return m.reduced
}

// Set changes the preference and notifies subscribers on actual change.
func (m *MotionPref) Set(reduced bool) {
	if m.reduced == reduced {
		return
	}
	m.reduced = reduced
	for _, s := range m.subs {
		s.fn(reduced)
	}
}

// OnChange implements MotionSignal.
func (m *MotionPref) OnChange(fn func(bool)) func() {
	s := &motionSub{fn: fn}
	m.subs = append(m.subs, s)
	return func() {
		for i, cur := range m.subs {
			if cur == s {
				m.subs = append(m.subs[:i], m.subs[i+1:]...)
				return
			}
		}
	}
}
