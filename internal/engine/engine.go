package engine

import (
	"fmt"
	"log"
	"time"
)

// EventKind names an engine lifecycle event.
type EventKind string

const (
	EventStart EventKind = "start"
	EventStop  EventKind = "stop"
	EventBurst EventKind = "burst"
)

// Event is the payload delivered to On subscribers.
type Event struct {
	Kind             EventKind
	Type             string // effect type tag
	OriginX, OriginY float64
	Options          Options
}

// Handle identifies a running effect session. The zero Handle is the
// no-op handle returned for suppressed or failed starts; stopping it is
// always safe.
type Handle struct {
	id int64
}

// Valid reports whether the handle referred to a real session at creation
// time. It does not track whether the session has since been stopped.
func (h Handle) Valid() bool {
	return h.id != 0
}

// session is one running instance of a registered effect.
type session struct {
	id        int64
	typ       string
	def       EffectDefinition // shared with other sessions, not owned
	opts      Options
	owned     map[int64]struct{}
	lastSpawn time.Time
}

// particleEntry is one row of the global particle table.
type particleEntry struct {
	p       *Particle
	session int64
}

type eventSub struct {
	fn func(Event)
}

// Engine multiplexes every running effect session onto a single overlay
// canvas and a single frame clock. All state is mutated either by the
// tick callback or by the synchronous Start/Stop/StopAll calls; there is
// exactly one logical thread of control and no operation blocks.
//
// The tick iterates a pre-computed snapshot of the particle table, so an
// event listener calling back into Start/Stop mid-frame affects subsequent
// frames, never the frame being drawn.
type Engine struct {
	cfg     Config
	pool    *Pool
	monitor *Monitor
	motion  MotionSignal
	clock   func() time.Time

	sched       FrameScheduler
	cancelFrame func()
	motionUnsub func()

	canvas      Canvas
	initialized bool
	destroyed   bool
	visible     bool

	defs         map[string]EffectDefinition
	sessions     map[int64]*session
	sessionOrder []int64

	table map[int64]particleEntry
	order []int64 // particle draw order; compacted after reclaims

	nextSessionID  int64
	nextParticleID int64

	intensity Intensity // global hint; capped onto every session

	lastTick time.Time
	haveLast bool
	tickNum  int

	listeners map[EventKind][]*eventSub

	// Per-frame scratch, reused to keep the hot loop allocation-free.
	iterScratch  []int64
	removalQueue []int64
	orderScratch []int64

	trace *Trace
}

// Option configures an Engine at construction.
type Option func(*Engine)

// WithClock overrides the engine's wall clock. The test rig points this at
// its manual scheduler so session pacing and frame timing share one
// synthetic timeline.
func WithClock(fn func() time.Time) Option {
	return func(e *Engine) { e.clock = fn }
}

// WithTrace attaches a structured trace log.
func WithTrace(tr *Trace) Option {
	return func(e *Engine) { e.trace = tr }
}

// New creates an engine. The scheduler and motion signal are collaborators
// the engine consumes; the canvas arrives later via Init. An invalid
// config is logged and replaced by DefaultConfig; a misconfigured overlay
// should degrade to stock behaviour, not take the host down.
func New(cfg Config, sched FrameScheduler, motion MotionSignal, opts ...Option) *Engine {
	if err := cfg.Validate(); err != nil {
		log.Printf("glimmer: %v (using defaults)", err)
		cfg = DefaultConfig()
	}
	e := &Engine{
		cfg:       cfg,
		motion:    motion,
		sched:     sched,
		clock:     time.Now,
		defs:      make(map[string]EffectDefinition),
		sessions:  make(map[int64]*session),
		table:     make(map[int64]particleEntry),
		intensity: IntensityHigh,
		listeners: make(map[EventKind][]*eventSub),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.pool = NewPool(cfg.PoolBound)
	e.pool.Prewarm(cfg.Prewarm)
	e.monitor = NewMonitor(cfg, e.clock)
	return e
}

// Monitor exposes the performance monitor for subscription.
func (e *Engine) Monitor() *Monitor {
	return e.monitor
}

// Init creates the overlay canvas from target, wires the reduced-motion
// listener, and starts the tick loop. Idempotent: a second call warns and
// no-ops rather than creating a second surface. Fails when the target
// cannot produce a drawing context, leaving the engine uninitialized.
func (e *Engine) Init(target CanvasTarget) error {
	if e.destroyed {
		return fmt.Errorf("glimmer: init after destroy")
	}
	if e.initialized {
		log.Printf("glimmer: init called twice; ignoring")
		return nil
	}
	cv, err := target.NewCanvas()
	if err != nil {
		return fmt.Errorf("glimmer: create overlay canvas: %w", err)
	}
	e.canvas = cv
	e.initialized = true
	e.visible = true
	if e.motion != nil {
		e.motionUnsub = e.motion.OnChange(func(reduced bool) {
			if reduced {
				e.StopAll()
			}
		})
	}
	e.cancelFrame = e.sched.Schedule(e.tick)
	return nil
}

// RegisterEffect associates a type tag with an effect definition,
// silently overwriting any previous registration.
func (e *Engine) RegisterEffect(typ string, def EffectDefinition) {
	e.defs[typ] = def
}

// Start creates a session for the given effect type and immediately
// pre-spawns a share of its capacity so the effect is visually full faster
// than continuous spawning alone would achieve.
//
// Soft failures return the no-op Handle without creating a session: an
// active reduced-motion preference (unless the options opt out), an
// unregistered type, or an engine that is not running. Stopping the no-op
// handle is always safe.
func (e *Engine) Start(typ string, opts Options) Handle {
	if !e.initialized || e.destroyed {
		log.Printf("glimmer: start %q before init; ignoring", typ)
		return Handle{}
	}
	if e.motion != nil && e.motion.Reduced() && !opts.IgnoreReducedMotion {
		e.tracef("--", "session", "suppressed", 0, "%s (reduced motion)", typ)
		return Handle{}
	}
	def, ok := e.defs[typ]
	if !ok {
		log.Printf("glimmer: start %q: effect type not registered", typ)
		return Handle{}
	}

	opts = opts.withDefaults()
	e.nextSessionID++
	s := &session{
		id:        e.nextSessionID,
		typ:       typ,
		def:       def,
		opts:      opts,
		owned:     make(map[int64]struct{}),
		lastSpawn: e.clock(),
	}
	e.sessions[s.id] = s
	e.sessionOrder = append(e.sessionOrder, s.id)

	eff := e.effectiveOptions(s)
	prespawn := int(float64(def.Capacity(eff)) * e.cfg.PreSpawnRatio)
	for i := 0; i < prespawn; i++ {
		if !e.spawnParticle(s, eff) {
			break
		}
	}
	e.tracef(sessionLabel(s.id), "session", "start", float64(len(s.owned)), "%s prespawn=%d", typ, len(s.owned))
	e.emit(Event{Kind: EventStart, Type: typ, Options: opts})
	return Handle{id: s.id}
}

// Stop releases every particle the session owns back to the pool, removes
// the session, and emits a stop event. By the time Stop returns, no
// particle in the table references the session. No-op when the handle is
// the no-op handle or the session is already gone.
func (e *Engine) Stop(h Handle) {
	s, ok := e.sessions[h.id]
	if !ok {
		return
	}
	e.removeSession(s)
	e.emit(Event{Kind: EventStop, Type: s.typ})
}

// StopAll releases all particles across all sessions and clears all
// session state. Used for teardown and forced suppression.
func (e *Engine) StopAll() {
	ids := append(e.orderScratch[:0], e.sessionOrder...)
	for _, sid := range ids {
		if s, ok := e.sessions[sid]; ok {
			e.removeSession(s)
			e.emit(Event{Kind: EventStop, Type: s.typ})
		}
	}
}

func (e *Engine) removeSession(s *session) {
	for id := range s.owned {
		if entry, ok := e.table[id]; ok {
			e.pool.Release(entry.p)
			delete(e.table, id)
		}
	}
	clear(s.owned)
	e.compactOrder()
	delete(e.sessions, s.id)
	for i, sid := range e.sessionOrder {
		if sid == s.id {
			e.sessionOrder = append(e.sessionOrder[:i], e.sessionOrder[i+1:]...)
			break
		}
	}
	e.tracef(sessionLabel(s.id), "session", "stop", 0, "%s", s.typ)
}

// SetIntensity sets the global intensity hint. Every session's effective
// intensity is capped by it. Setting it to off stops everything.
func (e *Engine) SetIntensity(level Intensity) {
	e.intensity = level
	if level == IntensityOff {
		e.StopAll()
	}
}

// Intensity returns the current global intensity hint.
func (e *Engine) Intensity() Intensity {
	return e.intensity
}

// Burst emits the burst notification event. Burst particle generation
// itself is effect-specific; the engine only fans the event out.
func (e *Engine) Burst(typ string, x, y float64, opts Options) {
	e.emit(Event{Kind: EventBurst, Type: typ, OriginX: x, OriginY: y, Options: opts})
}

// Metrics returns a performance snapshot for the current live-particle
// count without recording a new frame sample.
func (e *Engine) Metrics() Metrics {
	return e.monitor.Snapshot(len(e.table))
}

// ParticleCount returns the number of live particles across all sessions.
func (e *Engine) ParticleCount() int {
	return len(e.table)
}

// SessionCount returns the number of running sessions.
func (e *Engine) SessionCount() int {
	return len(e.sessions)
}

// OwnedCount returns the number of particles owned by the session behind
// h, or 0 when the session does not exist.
func (e *Engine) OwnedCount(h Handle) int {
	if s, ok := e.sessions[h.id]; ok {
		return len(s.owned)
	}
	return 0
}

// Pool exposes the particle pool counters for observability.
func (e *Engine) Pool() *Pool {
	return e.pool
}

// SetVisible pauses update/render work while the overlay is hidden. The
// tick keeps rescheduling itself so work resumes on the next frame after
// the overlay becomes visible again.
func (e *Engine) SetVisible(v bool) {
	e.visible = v
}

// Resize rescales the overlay surface for a new viewport and device pixel
// ratio, when the canvas supports it.
func (e *Engine) Resize(w, h int, scale float64) {
	if rc, ok := e.canvas.(resizableCanvas); ok {
		rc.Resize(w, h, scale)
	}
}

// On subscribes to engine events and returns the unsubscribe function.
// A panicking listener is caught and logged, never propagated to the loop.
func (e *Engine) On(kind EventKind, fn func(Event)) func() {
	s := &eventSub{fn: fn}
	e.listeners[kind] = append(e.listeners[kind], s)
	return func() {
		subs := e.listeners[kind]
		for i, cur := range subs {
			if cur == s {
				e.listeners[kind] = append(subs[:i], subs[i+1:]...)
				return
			}
		}
	}
}

func (e *Engine) emit(ev Event) {
	for _, s := range e.listeners[ev.Kind] {
		e.safeNotify(s.fn, ev)
	}
	e.tracef("--", "event", string(ev.Kind), 0, "%s", ev.Type)
}

func (e *Engine) safeNotify(fn func(Event), ev Event) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("glimmer: %s listener panicked: %v", ev.Kind, r)
		}
	}()
	fn(ev)
}

// Destroy stops everything, halts the tick loop, and tears down the
// canvas and listeners. The engine is unusable afterwards; the tick is
// guaranteed not to fire again once Destroy returns.
func (e *Engine) Destroy() {
	if e.destroyed {
		return
	}
	e.StopAll()
	if e.cancelFrame != nil {
		e.cancelFrame()
		e.cancelFrame = nil
	}
	if e.motionUnsub != nil {
		e.motionUnsub()
		e.motionUnsub = nil
	}
	e.canvas = nil
	e.initialized = false
	e.destroyed = true
	clear(e.listeners)
}

// effectiveOptions caps the session's intensity by the global hint.
func (e *Engine) effectiveOptions(s *session) Options {
	eff := s.opts
	if e.intensity < eff.Intensity {
		eff.Intensity = e.intensity
	}
	return eff
}

// spawnParticle acquires, initializes, and registers one particle for s.
// Refused (returning false) when the session is at its effect's capacity
// or the engine-wide ceiling is reached.
func (e *Engine) spawnParticle(s *session, eff Options) bool {
	if len(e.table) >= e.cfg.MaxParticles {
		return false
	}
	if len(s.owned) >= s.def.Capacity(eff) {
		return false
	}
	p := e.pool.Acquire()
	s.def.Spawn(p, eff, e.canvas.Bounds())
	e.nextParticleID++
	id := e.nextParticleID
	e.table[id] = particleEntry{p: p, session: s.id}
	s.owned[id] = struct{}{}
	e.order = append(e.order, id)
	return true
}

// reclaim detaches a particle from its session, releases the record to the
// pool, and removes it from the global table. Nothing runs between these
// steps, so the transition is atomic from the engine's perspective.
func (e *Engine) reclaim(id int64) {
	entry, ok := e.table[id]
	if !ok {
		return
	}
	if s, ok := e.sessions[entry.session]; ok {
		delete(s.owned, id)
	}
	e.pool.Release(entry.p)
	delete(e.table, id)
}

// compactOrder drops table-less ids from the draw-order slice, in place.
func (e *Engine) compactOrder() {
	kept := e.order[:0]
	for _, id := range e.order {
		if _, ok := e.table[id]; ok {
			kept = append(kept, id)
		}
	}
	e.order = kept
}

// tick is the per-frame callback. Phase order within one tick is fixed:
// spawn, then update/render over a stable snapshot, then reclaim, then the
// performance sample and degrade check.
func (e *Engine) tick(now time.Time) {
	if e.destroyed {
		return
	}
	e.cancelFrame = e.sched.Schedule(e.tick)
	e.tickNum++

	if !e.visible {
		// Hidden: keep rescheduling, skip the work. The delta clamp
		// swallows the hidden stretch on resume.
		e.lastTick = now
		return
	}

	// 1. Delta, clamped so a stalled frame cannot leap, normalized to
	// frame units.
	elapsedMs := frameUnitMs
	if e.haveLast {
		elapsedMs = float64(now.Sub(e.lastTick)) / float64(time.Millisecond)
		if elapsedMs < 0 {
			elapsedMs = 0
		}
		if elapsedMs > e.cfg.DeltaClampMs {
			elapsedMs = e.cfg.DeltaClampMs
		}
	}
	dt := elapsedMs / frameUnitMs
	e.lastTick = now
	e.haveLast = true

	// 2. Performance sample opens.
	start := e.monitor.StartFrame()

	// 3. Clear the overlay.
	e.canvas.Clear()

	// 4. Continuous spawning, rate-limited per session: at most one spawn
	// per session per elapsed interval, independent of other sessions.
	for _, sid := range e.sessionOrder {
		s := e.sessions[sid]
		if s == nil {
			continue
		}
		eff := e.effectiveOptions(s)
		rate := eff.Intensity.SpawnRate()
		if rate <= 0 {
			continue
		}
		interval := time.Duration(float64(time.Second) / rate)
		if now.Sub(s.lastSpawn) < interval {
			continue
		}
		// A refused spawn is not stamped: it retries until headroom
		// appears, then pacing resumes from that success.
		if e.spawnParticle(s, eff) {
			s.lastSpawn = now
			e.tracef(sessionLabel(sid), "spawn", "continuous", float64(len(s.owned)), "%s owned=%d", s.typ, len(s.owned))
		}
	}

	// 5. Update and render over a stable snapshot; draw order follows
	// table insertion order. Render interleaves with update rather than
	// batching after it.
	bounds := e.canvas.Bounds()
	snap := append(e.iterScratch[:0], e.order...)
	e.iterScratch = snap
	e.removalQueue = e.removalQueue[:0]
	for _, id := range snap {
		entry, ok := e.table[id]
		if !ok {
			continue
		}
		s := e.sessions[entry.session]
		if s == nil {
			e.removalQueue = append(e.removalQueue, id)
			continue
		}
		if !s.def.Update(entry.p, dt, bounds) {
			e.removalQueue = append(e.removalQueue, id)
			continue
		}
		s.def.Render(e.canvas, entry.p)
	}

	// 6. Reclaim.
	for _, id := range e.removalQueue {
		e.reclaim(id)
	}
	if len(e.removalQueue) > 0 {
		e.compactOrder()
		e.tracef("--", "reclaim", "batch", float64(len(e.removalQueue)), "released=%d", len(e.removalQueue))
	}

	// 7. Close the sample; a critical rolling average downgrades the
	// global intensity one step to low. Single-step and one-directional:
	// the engine never auto-upgrades.
	e.monitor.EndFrame(start, len(e.table))
	if e.monitor.IsCritical() && e.intensity > IntensityLow {
		e.intensity = IntensityLow
		log.Printf("glimmer: sustained frame overrun, degrading intensity to low")
		e.tracef("--", "perf", "degrade", float64(IntensityLow), "intensity=low")
	}
}

func (e *Engine) tracef(session, category, key string, num float64, format string, args ...any) {
	if e.trace == nil {
		return
	}
	e.trace.Add(e.tickNum, session, category, key, fmt.Sprintf(format, args...), num)
}

func sessionLabel(id int64) string {
	return fmt.Sprintf("s%d", id)
}
