package engine

import (
	"errors"
	"math"
	"testing"
	"time"
)

// stubEffect is a minimal deterministic recipe for engine tests: particles
// drift downward and die after life frame units (immortal when life is 0).
type stubEffect struct {
	capacity int
	life     float64
	killAll  bool // next Update returns false for every particle

	spawned  int
	updated  int
	rendered int
	lastDt   float64
	lastP    *Particle
}

func (d *stubEffect) Spawn(p *Particle, opts Options, bounds Bounds) {
	d.spawned++
	d.lastP = p
	p.X = bounds.W / 2
	p.Y = bounds.H / 2
	p.VY = 1
	p.MaxLife = d.life
	p.Phase = PhaseActive
}

func (d *stubEffect) Update(p *Particle, dt float64, bounds Bounds) bool {
	d.updated++
	d.lastDt = dt
	p.Y += p.VY * dt
	if d.killAll {
		return false
	}
	if d.life <= 0 {
		return true
	}
	p.Life += dt
	return p.Life < d.life
}

func (d *stubEffect) Render(cv Canvas, p *Particle) {
	d.rendered++
	cv.FillCircle(p.X, p.Y, p.Size, p.Col)
}

func (d *stubEffect) Capacity(opts Options) int {
	if d.capacity > 0 {
		return d.capacity
	}
	return 10
}

func newTestRig(t *testing.T, opts ...RigOption) *Rig {
	t.Helper()
	rig, err := NewRig(opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(rig.Engine.Destroy)
	return rig
}

// --- Lifecycle ---

func TestEngine_InitTwiceCreatesOneCanvas(t *testing.T) {
	rig := newTestRig(t)
	if err := rig.Engine.Init(rig.Target); err != nil {
		t.Fatalf("second init should no-op, got %v", err)
	}
	if rig.Target.Created != 1 {
		t.Fatalf("expected exactly one canvas, got %d", rig.Target.Created)
	}
}

func TestEngine_InitFailureLeavesEngineInert(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	e := New(DefaultConfig(), sched, NewMotionPref(false), WithClock(sched.Now))
	target := &RecordTarget{W: 100, H: 100, Err: errors.New("no context")}
	if err := e.Init(target); err == nil {
		t.Fatal("init should surface the canvas failure")
	}
	e.RegisterEffect("drift", &stubEffect{})
	if h := e.Start("drift", Options{}); h.Valid() {
		t.Fatal("start before a successful init should return the no-op handle")
	}
	if sched.Pending() {
		t.Fatal("failed init should not schedule the tick loop")
	}
}

func TestEngine_DestroyHaltsTicks(t *testing.T) {
	rig := newTestRig(t)
	stub := &stubEffect{}
	rig.Engine.RegisterEffect("drift", stub)
	rig.Engine.Start("drift", Options{})
	rig.StepFrames(5)
	rig.Engine.Destroy()
	if rig.Engine.ParticleCount() != 0 {
		t.Fatal("destroy should release every particle")
	}
	before := stub.updated
	rig.StepFrames(5)
	if stub.updated != before {
		t.Fatal("no update may run after destroy")
	}
	rig.Engine.Destroy() // idempotent
	if h := rig.Engine.Start("drift", Options{}); h.Valid() {
		t.Fatal("start after destroy should return the no-op handle")
	}
}

// --- Sessions ---

func TestEngine_StartPrespawnsHalfCapacity(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 40})
	h := rig.Engine.Start("drift", Options{})
	if !h.Valid() {
		t.Fatal("start should succeed")
	}
	if got := rig.Engine.OwnedCount(h); got != 20 {
		t.Fatalf("expected 20 pre-spawned particles, got %d", got)
	}
	if rig.Engine.ParticleCount() != 20 {
		t.Fatalf("table should hold the pre-spawned batch, got %d", rig.Engine.ParticleCount())
	}
}

func TestEngine_StartUnregisteredType(t *testing.T) {
	rig := newTestRig(t)
	h := rig.Engine.Start("aurora", Options{})
	if h.Valid() {
		t.Fatal("unregistered type should return the no-op handle")
	}
	if rig.Engine.SessionCount() != 0 {
		t.Fatal("no session may be created for an unregistered type")
	}
	rig.Engine.Stop(h) // must be safe
}

func TestEngine_RegisterOverwritesSilently(t *testing.T) {
	rig := newTestRig(t)
	first := &stubEffect{capacity: 10}
	second := &stubEffect{capacity: 10}
	rig.Engine.RegisterEffect("drift", first)
	rig.Engine.RegisterEffect("drift", second)
	rig.Engine.Start("drift", Options{})
	if first.spawned != 0 || second.spawned == 0 {
		t.Fatal("later registration should win")
	}
}

func TestEngine_StopReleasesOwnedParticles(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 30})
	h := rig.Engine.Start("drift", Options{})
	freeBefore := rig.Engine.Pool().FreeCount()
	rig.Engine.Stop(h)
	if rig.Engine.ParticleCount() != 0 {
		t.Fatalf("stop should empty the table, got %d", rig.Engine.ParticleCount())
	}
	if rig.Engine.SessionCount() != 0 {
		t.Fatal("stop should remove the session")
	}
	if rig.Engine.Pool().FreeCount() <= freeBefore {
		t.Fatal("released records should return to the pool")
	}
	rig.Engine.Stop(h) // idempotent
}

func TestEngine_StopOneSessionLeavesOthers(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 20})
	rig.Engine.RegisterEffect("haze", &stubEffect{capacity: 20})
	h1 := rig.Engine.Start("drift", Options{})
	h2 := rig.Engine.Start("haze", Options{})
	rig.Engine.Stop(h1)
	if rig.Engine.OwnedCount(h2) != 10 {
		t.Fatal("stopping one session must not touch another's particles")
	}
	if rig.Engine.SessionCount() != 1 {
		t.Fatalf("one session should remain, got %d", rig.Engine.SessionCount())
	}
}

func TestEngine_StopAll(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 20})
	rig.Engine.Start("drift", Options{})
	rig.Engine.Start("drift", Options{})
	rig.Engine.StopAll()
	if rig.Engine.SessionCount() != 0 || rig.Engine.ParticleCount() != 0 {
		t.Fatal("stopAll should clear all sessions and particles")
	}
}

func TestEngine_SetIntensityOffStopsEverything(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 20})
	rig.Engine.Start("drift", Options{})
	rig.Engine.SetIntensity(IntensityOff)
	if rig.Engine.SessionCount() != 0 {
		t.Fatal("intensity off should stop all sessions")
	}
}

// --- Tick behaviour ---

func TestEngine_TickUpdatesAndRenders(t *testing.T) {
	rig := newTestRig(t)
	stub := &stubEffect{capacity: 8}
	rig.Engine.RegisterEffect("drift", stub)
	rig.Engine.Start("drift", Options{})
	rig.StepFrames(3)
	if stub.updated == 0 || stub.rendered == 0 {
		t.Fatalf("ticks should drive update and render, updated=%d rendered=%d", stub.updated, stub.rendered)
	}
	if stub.updated != stub.rendered {
		t.Fatalf("surviving particles render once per update, updated=%d rendered=%d", stub.updated, stub.rendered)
	}
	cv := rig.Canvas()
	if cv.Ops[OpClear] != 3 {
		t.Fatalf("canvas should clear once per tick, got %d", cv.Ops[OpClear])
	}
	if cv.Ops[OpFillCircle] != stub.rendered {
		t.Fatalf("draw op count should match renders, got %d vs %d", cv.Ops[OpFillCircle], stub.rendered)
	}
}

func TestEngine_ExpiredParticlesReclaimedAndReused(t *testing.T) {
	rig := newTestRig(t)
	stub := &stubEffect{capacity: 2, life: 2}
	rig.Engine.RegisterEffect("spark", stub)
	rig.Engine.Start("spark", Options{})
	first := stub.lastP
	rig.StepFrames(3) // life 2 expires, pacing respawns later
	if rig.Engine.ParticleCount() != 0 {
		t.Fatalf("expired particles should be reclaimed, got %d live", rig.Engine.ParticleCount())
	}
	rig.StepFrames(30) // continuous spawn kicks in
	if stub.lastP != first {
		t.Fatal("respawn should reuse a pooled record, not allocate")
	}
}

func TestEngine_DeltaClamped(t *testing.T) {
	rig := newTestRig(t)
	stub := &stubEffect{capacity: 4}
	rig.Engine.RegisterEffect("drift", stub)
	rig.Engine.Start("drift", Options{})
	rig.StepFrames(2)
	rig.Sched.Step(500 * time.Millisecond) // stalled frame
	want := 32.0 / frameUnitMs
	if math.Abs(stub.lastDt-want) > 1e-9 {
		t.Fatalf("stalled frame should clamp dt to %.4f, got %.4f", want, stub.lastDt)
	}
}

func TestEngine_FirstTickUsesOneFrameUnit(t *testing.T) {
	rig := newTestRig(t)
	stub := &stubEffect{capacity: 4}
	rig.Engine.RegisterEffect("drift", stub)
	rig.Engine.Start("drift", Options{})
	rig.Sched.Step(3 * time.Second) // long gap before the first tick
	if math.Abs(stub.lastDt-1) > 1e-9 {
		t.Fatalf("first tick has no previous sample and should use one frame unit, got %.4f", stub.lastDt)
	}
}

func TestEngine_HiddenSkipsWorkAndResumes(t *testing.T) {
	rig := newTestRig(t)
	stub := &stubEffect{capacity: 4}
	rig.Engine.RegisterEffect("drift", stub)
	rig.Engine.Start("drift", Options{})
	rig.StepFrames(2)
	rig.Engine.SetVisible(false)
	before := stub.updated
	clears := rig.Canvas().Ops[OpClear]
	rig.StepFrames(10)
	if stub.updated != before {
		t.Fatal("hidden overlay must not update particles")
	}
	if rig.Canvas().Ops[OpClear] != clears {
		t.Fatal("hidden overlay must not touch the canvas")
	}
	rig.Engine.SetVisible(true)
	rig.StepFrames(1)
	if stub.updated == before {
		t.Fatal("work should resume on the next visible frame")
	}
}

// --- Events ---

func TestEngine_EmitsLifecycleEvents(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 4})
	var got []Event
	rig.Engine.On(EventStart, func(ev Event) { got = append(got, ev) })
	rig.Engine.On(EventStop, func(ev Event) { got = append(got, ev) })
	rig.Engine.On(EventBurst, func(ev Event) { got = append(got, ev) })

	h := rig.Engine.Start("drift", Options{Intensity: IntensityHigh})
	rig.Engine.Burst("drift", 12, 34, Options{})
	rig.Engine.Stop(h)

	if len(got) != 3 {
		t.Fatalf("expected start, burst, stop, got %d events", len(got))
	}
	if got[0].Kind != EventStart || got[0].Options.Intensity != IntensityHigh {
		t.Fatalf("start event payload mismatch: %+v", got[0])
	}
	if got[1].Kind != EventBurst || got[1].OriginX != 12 || got[1].OriginY != 34 {
		t.Fatalf("burst event payload mismatch: %+v", got[1])
	}
	if got[2].Kind != EventStop || got[2].Type != "drift" {
		t.Fatalf("stop event payload mismatch: %+v", got[2])
	}
}

func TestEngine_UnsubscribeStopsDelivery(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 4})
	seen := 0
	unsub := rig.Engine.On(EventStart, func(Event) { seen++ })
	rig.Engine.Start("drift", Options{})
	unsub()
	rig.Engine.Start("drift", Options{})
	if seen != 1 {
		t.Fatalf("expected one delivery before unsubscribe, got %d", seen)
	}
}

func TestEngine_PanickingListenerIsolated(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 4})
	rig.Engine.On(EventStart, func(Event) { panic("listener bug") })
	seen := 0
	rig.Engine.On(EventStart, func(Event) { seen++ })
	h := rig.Engine.Start("drift", Options{})
	if !h.Valid() || seen != 1 {
		t.Fatalf("panic in one listener must not break start, handle=%v seen=%d", h.Valid(), seen)
	}
}

func TestEngine_ListenerMayReenter(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 4})
	var replacement Handle
	rig.Engine.On(EventStop, func(ev Event) {
		if !replacement.Valid() {
			replacement = rig.Engine.Start("drift", Options{})
		}
	})
	h := rig.Engine.Start("drift", Options{})
	rig.Engine.Stop(h)
	if !replacement.Valid() {
		t.Fatal("a stop listener should be able to start a new session")
	}
	if rig.Engine.SessionCount() != 1 {
		t.Fatalf("expected the replacement session, got %d", rig.Engine.SessionCount())
	}
	rig.StepFrames(3) // loop must stay healthy
}

// --- Reduced motion ---

func TestEngine_ReducedMotionSuppressesStart(t *testing.T) {
	rig := newTestRig(t, WithReducedMotion())
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 4})
	h := rig.Engine.Start("drift", Options{})
	if h.Valid() {
		t.Fatal("start under reduced motion should be a soft no-op")
	}
	if rig.Engine.ParticleCount() != 0 {
		t.Fatal("suppressed start must not spawn")
	}
	rig.Engine.Stop(h) // always safe
}

func TestEngine_ReducedMotionOverride(t *testing.T) {
	rig := newTestRig(t, WithReducedMotion())
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 4})
	h := rig.Engine.Start("drift", Options{IgnoreReducedMotion: true})
	if !h.Valid() {
		t.Fatal("per-call override should bypass suppression")
	}
}

func TestEngine_ReducedMotionFlipStopsAll(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 4})
	rig.Engine.Start("drift", Options{})
	rig.Motion.Set(true)
	if rig.Engine.SessionCount() != 0 || rig.Engine.ParticleCount() != 0 {
		t.Fatal("reduced motion engaging mid-run should stop everything")
	}
}

// --- Automatic degradation ---

func TestEngine_SustainedOverrunDegradesToLow(t *testing.T) {
	sched := NewManualScheduler(time.Unix(0, 0))
	clk := &stepClock{now: time.Unix(0, 0), step: 20 * time.Millisecond}
	e := New(DefaultConfig(), sched, NewMotionPref(false), WithClock(clk.Now))
	if err := e.Init(&RecordTarget{W: 100, H: 100}); err != nil {
		t.Fatal(err)
	}
	defer e.Destroy()
	e.RegisterEffect("drift", &stubEffect{capacity: 4})
	e.Start("drift", Options{Intensity: IntensityHigh})
	sched.StepFrames(5, time.Second/60)
	if e.Intensity() != IntensityLow {
		t.Fatalf("20ms frames should degrade global intensity to low, got %v", e.Intensity())
	}
	// One-way: continuing never upgrades automatically.
	sched.StepFrames(5, time.Second/60)
	if e.Intensity() != IntensityLow {
		t.Fatal("automatic degradation must never upgrade")
	}
}

// --- Metrics ---

func TestEngine_MetricsReflectPopulation(t *testing.T) {
	rig := newTestRig(t)
	rig.Engine.RegisterEffect("drift", &stubEffect{capacity: 30})
	rig.Engine.Start("drift", Options{})
	met := rig.Engine.Metrics()
	if met.ParticleCount != 15 {
		t.Fatalf("metrics should report the live count, got %d", met.ParticleCount)
	}
	if met.MemoryUsage != 15*approxBytesPerParticle {
		t.Fatalf("memory estimate mismatch, got %d", met.MemoryUsage)
	}
}
