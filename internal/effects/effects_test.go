package effects

import (
	"testing"

	"github.com/Garsondee/Glimmer/internal/engine"
)

var testBounds = engine.Bounds{W: 320, H: 240}

func medium() engine.Options {
	return engine.Options{Intensity: engine.IntensityMedium}
}

// run spawns one particle and updates it until the recipe reclaims it or
// the step limit is hit, returning the step count (-1 when it never died).
func run(def engine.EffectDefinition, p *engine.Particle, maxSteps int) int {
	for i := 0; i < maxSteps; i++ {
		if !def.Update(p, 1, testBounds) {
			return i
		}
	}
	return -1
}

// --- Registry ---

func TestRegisterAll_EveryTypeStarts(t *testing.T) {
	rig, err := engine.NewRig()
	if err != nil {
		t.Fatal(err)
	}
	defer rig.Engine.Destroy()
	RegisterAll(rig.Engine, 7)

	for _, typ := range Types() {
		h := rig.Engine.Start(typ, medium())
		if !h.Valid() {
			t.Fatalf("%s: start failed", typ)
		}
		if rig.Engine.OwnedCount(h) == 0 {
			t.Fatalf("%s: expected a pre-spawned batch", typ)
		}
		rig.StepFrames(30)
		if rig.Canvas().DrawCount() == 0 {
			t.Fatalf("%s: render hooks drew nothing", typ)
		}
		rig.Engine.Stop(h)
		rig.Canvas().ResetOps()
	}
}

func TestRegisterAll_Deterministic(t *testing.T) {
	spawnOne := func() *engine.Particle {
		s := NewSnow(3)
		p := &engine.Particle{}
		s.Spawn(p, medium(), testBounds)
		return p
	}
	a, b := spawnOne(), spawnOne()
	if a.X != b.X || a.VY != b.VY || a.Size != b.Size {
		t.Fatal("same seed should reproduce the same spawn")
	}
}

// --- Capacity scaling ---

func TestCapacity_ScalesWithIntensity(t *testing.T) {
	s := NewSnow(1)
	low := s.Capacity(engine.Options{Intensity: engine.IntensityLow})
	med := s.Capacity(engine.Options{Intensity: engine.IntensityMedium})
	high := s.Capacity(engine.Options{Intensity: engine.IntensityHigh})
	if low != 20 || med != 50 || high != 90 {
		t.Fatalf("snow capacity table mismatch: low=%d med=%d high=%d", low, med, high)
	}
	if s.Capacity(engine.Options{Intensity: engine.IntensityOff}) != 0 {
		t.Fatal("off intensity should zero the capacity")
	}
}

// --- Options plumbing ---

func TestSpawn_PaletteOverride(t *testing.T) {
	s := NewSnow(1)
	p := &engine.Particle{}
	opts := medium()
	opts.Colors = []engine.Color{engine.RGB(1, 2, 3)}
	s.Spawn(p, opts, testBounds)
	if !p.Col.IsRGB() {
		t.Fatal("palette override should replace the default colour")
	}
	if c := p.Col.Apply(1); c.R != 1 || c.G != 2 || c.B != 3 {
		t.Fatalf("override colour mismatch: %+v", c)
	}
}

func TestSpawn_SizeScale(t *testing.T) {
	h := NewHearts(1)
	small, big := &engine.Particle{}, &engine.Particle{}
	h.Spawn(small, medium(), testBounds)
	opts := medium()
	opts.SizeScale = 3
	h.Spawn(big, opts, testBounds)
	// Different rng draws, so compare against the unscaled spawn range.
	if big.Size < 9 || big.Size > 18 {
		t.Fatalf("size scale 3 should triple the 3..6 base range, got %g", big.Size)
	}
	if small.Size < 3 || small.Size > 6 {
		t.Fatalf("unscaled heart size should stay in base range, got %g", small.Size)
	}
}

func TestSpawn_SpeedScaleFollowsIntensity(t *testing.T) {
	r := NewRain(1)
	slow, fast := &engine.Particle{}, &engine.Particle{}
	r.Spawn(slow, engine.Options{Intensity: engine.IntensityLow}, testBounds)
	r.Spawn(fast, engine.Options{Intensity: engine.IntensityHigh}, testBounds)
	// Base VY range is 5..8.5; the scale tables keep the two ranges disjoint
	// enough to compare bounds rather than samples.
	if slow.VY > 8.5*0.75 {
		t.Fatalf("low intensity rain too fast: %g", slow.VY)
	}
	if fast.VY < 5*1.15 {
		t.Fatalf("high intensity rain too slow: %g", fast.VY)
	}
}

// --- Recipe lifecycles ---

func TestSnow_FallsOffBottom(t *testing.T) {
	s := NewSnow(1)
	p := &engine.Particle{}
	s.Spawn(p, medium(), testBounds)
	if p.Y > 0 {
		t.Fatalf("flakes should spawn above the viewport, got y=%g", p.Y)
	}
	if steps := run(s, p, 2000); steps < 0 {
		t.Fatal("flake should die once past the bottom edge")
	}
}

func TestRain_StreaksOffBottom(t *testing.T) {
	r := NewRain(1)
	p := &engine.Particle{}
	r.Spawn(p, medium(), testBounds)
	if steps := run(r, p, 500); steps < 0 {
		t.Fatal("drop should die once past the bottom edge")
	}
}

func TestConfetti_LifeLimited(t *testing.T) {
	c := NewConfetti(1)
	p := &engine.Particle{}
	c.Spawn(p, medium(), testBounds)
	steps := run(c, p, 2000)
	if steps < 0 {
		t.Fatal("confetti must expire")
	}
	if float64(steps) > p.MaxLife+1 {
		t.Fatalf("confetti outlived its MaxLife: %d steps vs %g", steps, p.MaxLife)
	}
}

func TestFireworks_ClusterSharesOriginAndColour(t *testing.T) {
	f := NewFireworks(1)
	first := &engine.Particle{}
	f.Spawn(first, medium(), testBounds)
	for i := 0; i < fwClusterSize-1; i++ {
		p := &engine.Particle{}
		f.Spawn(p, medium(), testBounds)
		if p.X != first.X || p.Y != first.Y {
			t.Fatalf("spark %d left the cluster origin", i+1)
		}
		if p.Col != first.Col {
			t.Fatalf("spark %d changed colour mid-cluster", i+1)
		}
	}
	next := &engine.Particle{}
	f.Spawn(next, medium(), testBounds)
	if next.X == first.X && next.Y == first.Y {
		t.Fatal("a new cluster should pick a new origin")
	}
}

func TestFireworks_SparksExpire(t *testing.T) {
	f := NewFireworks(1)
	p := &engine.Particle{}
	f.Spawn(p, medium(), testBounds)
	if run(f, p, 500) < 0 {
		t.Fatal("sparks must burn out")
	}
}

func TestEmbers_RiseAndExpire(t *testing.T) {
	e := NewEmbers(1)
	p := &engine.Particle{}
	e.Spawn(p, medium(), testBounds)
	startY := p.Y
	e.Update(p, 1, testBounds)
	if p.Y >= startY {
		t.Fatalf("embers should rise, y %g -> %g", startY, p.Y)
	}
	if run(e, p, 2000) < 0 {
		t.Fatal("embers must expire")
	}
}

func TestBubbles_PopNearTop(t *testing.T) {
	b := NewBubbles(1)
	p := &engine.Particle{}
	b.Spawn(p, medium(), testBounds)
	sawPop := false
	for i := 0; i < 2000; i++ {
		alive := b.Update(p, 1, testBounds)
		if p.Phase == engine.PhaseDying {
			sawPop = true
		}
		if !alive {
			break
		}
	}
	if !sawPop {
		t.Fatal("bubble should enter its pop animation before reclaim")
	}
}

func TestFireflies_StayInsideViewport(t *testing.T) {
	f := NewFireflies(1)
	p := &engine.Particle{}
	f.Spawn(p, medium(), testBounds)
	for i := 0; i < 3000; i++ {
		if !f.Update(p, 1, testBounds) {
			break
		}
		if p.X < -2 || p.X > testBounds.W+2 || p.Y < -2 || p.Y > testBounds.H+2 {
			t.Fatalf("firefly escaped the viewport at step %d: (%g, %g)", i, p.X, p.Y)
		}
	}
}

func TestHearts_FadeBeforeDeath(t *testing.T) {
	h := NewHearts(1)
	p := &engine.Particle{}
	h.Spawn(p, medium(), testBounds)
	sawDying := false
	for i := 0; i < 2000; i++ {
		if !h.Update(p, 1, testBounds) {
			break
		}
		if p.Phase == engine.PhaseDying {
			sawDying = true
		}
	}
	if !sawDying {
		t.Fatal("hearts should pass through the dying phase before reclaim")
	}
}

// --- Rendering ---

func TestRender_GlowEffectsUseAdditiveLayer(t *testing.T) {
	cv := engine.NewRecordCanvas(testBounds.W, testBounds.H)
	e := NewEmbers(1)
	p := &engine.Particle{}
	e.Spawn(p, medium(), testBounds)
	e.Render(cv, p)
	if cv.Ops[engine.OpFillRadial] == 0 {
		t.Fatal("embers should render a radial glow")
	}
}

func TestRender_BubbleDrawsRingAndGlint(t *testing.T) {
	cv := engine.NewRecordCanvas(testBounds.W, testBounds.H)
	b := NewBubbles(1)
	p := &engine.Particle{}
	b.Spawn(p, medium(), testBounds)
	b.Render(cv, p)
	if cv.Ops[engine.OpStrokeCircle] != 1 || cv.Ops[engine.OpFillCircle] != 1 {
		t.Fatalf("bubble should draw one ring and one glint, got %v", cv.Ops)
	}
}
