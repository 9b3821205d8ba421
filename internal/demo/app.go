// Package demo is the interactive overlay showcase: a static backdrop
// with the particle overlay composited on top, keyboard-driven.
package demo

import (
	"fmt"
	"image/color"
	"log"

	"github.com/atotto/clipboard"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/Garsondee/Glimmer/internal/effects"
	"github.com/Garsondee/Glimmer/internal/engine"
)

const (
	logicalW = 960
	logicalH = 540
)

// overlayTarget builds the ebiten canvas and keeps the concrete handle so
// Draw can composite it onto the screen.
type overlayTarget struct {
	w, h  int
	scale float64
	cv    *engine.ImageCanvas
}

func (t *overlayTarget) NewCanvas() (engine.Canvas, error) {
	cv, err := engine.NewImageCanvas(t.w, t.h, t.scale)
	t.cv = cv
	return cv, err
}

// App is the ebiten game hosting the overlay.
type App struct {
	eng    *engine.Engine
	pump   *engine.PumpScheduler
	motion *engine.MotionPref
	target *overlayTarget
	prefs  *prefStore

	// Active session per effect type; zero Handle when off.
	running map[string]engine.Handle

	intensity engine.Intensity
	showHUD   bool
	status    string // transient line on the HUD

	backdrop *ebiten.Image
	prevKeys map[ebiten.Key]bool
	scale    float64
}

// New builds the demo app. The engine config comes from cfg; saved user
// preferences override the startup intensity and reduced-motion state.
func New(cfg engine.Config) (*App, error) {
	a := &App{
		pump:      &engine.PumpScheduler{},
		motion:    engine.NewMotionPref(false),
		running:   make(map[string]engine.Handle),
		intensity: engine.IntensityMedium,
		showHUD:   true,
		prevKeys:  make(map[ebiten.Key]bool),
		scale:     1,
	}

	a.prefs = openPrefs()
	if p, ok := a.prefs.load(); ok {
		a.intensity = p.Intensity
		a.showHUD = p.ShowHUD
		a.motion.Set(p.ReducedMotion)
	}

	a.eng = engine.New(cfg, a.pump, a.motion)
	a.eng.SetIntensity(a.intensity)
	effects.RegisterAll(a.eng, 1)

	a.target = &overlayTarget{w: logicalW, h: logicalH, scale: 1}
	if err := a.eng.Init(a.target); err != nil {
		return nil, fmt.Errorf("demo: %w", err)
	}

	// Sessions a degrade or suppression killed must not look toggled-on.
	a.eng.On(engine.EventStop, func(ev engine.Event) {
		if h, ok := a.running[ev.Type]; ok && a.eng.OwnedCount(h) == 0 {
			delete(a.running, ev.Type)
		}
	})
	return a, nil
}

var effectKeys = []ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4,
	ebiten.KeyDigit5, ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8,
}

func (a *App) Update() error {
	a.eng.SetVisible(ebiten.IsFocused())
	a.handleKeys()
	a.pump.Fire()
	return nil
}

func (a *App) handleKeys() {
	current := make(map[ebiten.Key]bool, len(a.prevKeys))
	just := func(k ebiten.Key) bool {
		current[k] = ebiten.IsKeyPressed(k)
		return current[k] && !a.prevKeys[k]
	}

	types := effects.Types()
	for i, k := range effectKeys {
		if just(k) {
			a.toggle(types[i])
		}
	}
	if just(ebiten.KeyMinus) && a.intensity > engine.IntensityLow {
		a.setIntensity(a.intensity - 1)
	}
	if just(ebiten.KeyEqual) && a.intensity < engine.IntensityHigh {
		a.setIntensity(a.intensity + 1)
	}
	if just(ebiten.KeyR) {
		a.motion.Set(!a.motion.Reduced())
		a.status = fmt.Sprintf("reduced motion: %v", a.motion.Reduced())
		a.savePrefs()
	}
	if just(ebiten.KeyM) {
		a.showHUD = !a.showHUD
		a.savePrefs()
	}
	if just(ebiten.KeyC) {
		report := engine.FormatReport(a.eng.Metrics())
		if err := clipboard.WriteAll(report); err != nil {
			log.Printf("demo: clipboard: %v", err)
			a.status = "clipboard copy failed"
		} else {
			a.status = "metrics copied to clipboard"
		}
	}
	if just(ebiten.KeyB) {
		mx, my := ebiten.CursorPosition()
		a.eng.Burst("fireworks", float64(mx), float64(my), engine.Options{Intensity: a.intensity})
		a.status = "burst"
	}

	a.prevKeys = current
}

func (a *App) toggle(typ string) {
	if h, ok := a.running[typ]; ok {
		a.eng.Stop(h)
		delete(a.running, typ)
		a.status = typ + " off"
		return
	}
	h := a.eng.Start(typ, engine.Options{Intensity: a.intensity})
	if !h.Valid() {
		a.status = typ + " suppressed"
		return
	}
	a.running[typ] = h
	a.status = typ + " on"
}

func (a *App) setIntensity(level engine.Intensity) {
	a.intensity = level
	a.eng.SetIntensity(level)
	a.status = "intensity: " + level.String()
	a.savePrefs()
}

func (a *App) Draw(screen *ebiten.Image) {
	if a.backdrop == nil || a.backdrop.Bounds().Dx() != screen.Bounds().Dx() {
		a.rebuildBackdrop(screen.Bounds().Dx(), screen.Bounds().Dy())
	}
	screen.DrawImage(a.backdrop, nil)

	if a.target.cv != nil {
		a.target.cv.Present(screen, 0, 0)
	}

	if a.showHUD {
		a.drawHUD(screen)
	}
}

// rebuildBackdrop renders the static night-sky gradient and ground grid
// once per resize.
func (a *App) rebuildBackdrop(w, h int) {
	img := ebiten.NewImage(w, h)
	const strips = 24
	sh := float32(h) / strips
	for i := 0; i < strips; i++ {
		t := float64(i) / (strips - 1)
		c := color.RGBA{
			R: uint8(8 + t*22),
			G: uint8(10 + t*26),
			B: uint8(26 + t*52),
			A: 255,
		}
		vector.FillRect(img, 0, float32(i)*sh, float32(w), sh+1, c, false)
	}
	grid := color.RGBA{R: 40, G: 46, B: 72, A: 255}
	for x := 0; x < w; x += 48 {
		vector.StrokeLine(img, float32(x), 0, float32(x), float32(h), 1, grid, false)
	}
	for y := 0; y < h; y += 48 {
		vector.StrokeLine(img, 0, float32(y), float32(w), float32(y), 1, grid, false)
	}
	a.backdrop = img
}

func (a *App) drawHUD(screen *ebiten.Image) {
	met := a.eng.Metrics()
	line1 := fmt.Sprintf("[1-8] effects  [-/=] intensity=%s  [R] reduced=%v  [B] burst  [C] copy report  [M] hud",
		a.intensity, a.motion.Reduced())
	line2 := fmt.Sprintf("particles=%d fps=%d frame=%.2fms dropped=%d",
		met.ParticleCount, met.FPS, met.FrameTime, met.DroppedFrames)
	ebitenutil.DebugPrintAt(screen, line1, 8, 4)
	ebitenutil.DebugPrintAt(screen, line2, 8, 20)
	active := ""
	for _, t := range effects.Types() {
		if _, ok := a.running[t]; ok {
			active += t + " "
		}
	}
	ebitenutil.DebugPrintAt(screen, "active: "+active, 8, 36)
	if a.status != "" {
		ebitenutil.DebugPrintAt(screen, a.status, 8, 52)
	}
}

func (a *App) Layout(outsideWidth, outsideHeight int) (int, int) {
	scale := ebiten.Monitor().DeviceScaleFactor()
	if scale != a.scale {
		a.scale = scale
		a.eng.Resize(logicalW, logicalH, scale)
	}
	return logicalW, logicalH
}

func (a *App) savePrefs() {
	a.prefs.save(prefData{
		Intensity:     a.intensity,
		ReducedMotion: a.motion.Reduced(),
		ShowHUD:       a.showHUD,
	})
}
