package engine

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// curveSteps is the flattening resolution for stroked Bézier curves.
const curveSteps = 16

// ImageCanvas is the ebiten-backed Canvas. It renders into offscreen
// buffers at device resolution (logical coordinates scaled by the device
// pixel ratio) and composites them onto the host screen in Present.
//
// Additive work (BlendLighter / BlendScreen) goes to a separate layer that
// Present composites with an additive blend, so ordinary draws never blow
// out. Screen compositing is approximated additively; ebiten has no
// per-primitive screen operation.
type ImageCanvas struct {
	base *ebiten.Image
	glow *ebiten.Image

	w, h  int     // logical pixels
	scale float64 // device pixel ratio

	alpha float64
	blend BlendMode
	stack []canvasState
}

type canvasState struct {
	alpha float64
	blend BlendMode
}

// ViewportTarget builds an ImageCanvas for Engine.Init.
type ViewportTarget struct {
	W, H  int
	Scale float64 // device pixel ratio; <= 0 means 1
}

// NewCanvas implements CanvasTarget.
func (t ViewportTarget) NewCanvas() (Canvas, error) {
	return NewImageCanvas(t.W, t.H, t.Scale)
}

// NewImageCanvas creates an ebiten-backed canvas of the given logical size.
func NewImageCanvas(w, h int, scale float64) (*ImageCanvas, error) {
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("canvas: invalid viewport %dx%d", w, h)
	}
	if scale <= 0 {
		scale = 1
	}
	cv := &ImageCanvas{w: w, h: h, scale: scale, alpha: 1}
	cv.base = ebiten.NewImage(int(float64(w)*scale), int(float64(h)*scale))
	cv.glow = ebiten.NewImage(int(float64(w)*scale), int(float64(h)*scale))
	return cv, nil
}

func (cv *ImageCanvas) Bounds() Bounds {
	return Bounds{W: float64(cv.w), H: float64(cv.h)}
}

func (cv *ImageCanvas) Clear() {
	cv.base.Clear()
	cv.glow.Clear()
}

// Resize rebuilds the buffers for a new viewport, keeping logical pixel
// density consistent under device-pixel-ratio changes.
func (cv *ImageCanvas) Resize(w, h int, scale float64) {
	if w <= 0 || h <= 0 {
		return
	}
	if scale <= 0 {
		scale = 1
	}
	if w == cv.w && h == cv.h && scale == cv.scale {
		return
	}
	cv.w, cv.h, cv.scale = w, h, scale
	cv.base.Deallocate()
	cv.glow.Deallocate()
	cv.base = ebiten.NewImage(int(float64(w)*scale), int(float64(h)*scale))
	cv.glow = ebiten.NewImage(int(float64(w)*scale), int(float64(h)*scale))
}

func (cv *ImageCanvas) Save() {
	cv.stack = append(cv.stack, canvasState{alpha: cv.alpha, blend: cv.blend})
}

func (cv *ImageCanvas) Restore() {
	n := len(cv.stack)
	if n == 0 {
		return
	}
	st := cv.stack[n-1]
	cv.stack = cv.stack[:n-1]
	cv.alpha = st.alpha
	cv.blend = st.blend
}

func (cv *ImageCanvas) SetAlpha(a float64) {
	if a < 0 {
		a = 0
	}
	if a > 1 {
		a = 1
	}
	cv.alpha = a
}

func (cv *ImageCanvas) SetBlend(m BlendMode) {
	cv.blend = m
}

// target picks the layer for the current blend mode.
func (cv *ImageCanvas) target() *ebiten.Image {
	if cv.blend == BlendSourceOver {
		return cv.base
	}
	return cv.glow
}

func (cv *ImageCanvas) FillCircle(x, y, r float64, c Color) {
	s := float32(cv.scale)
	vector.FillCircle(cv.target(), float32(x)*s, float32(y)*s, float32(r)*s, c.Apply(cv.alpha), true)
}

func (cv *ImageCanvas) StrokeCircle(x, y, r, width float64, c Color) {
	s := float32(cv.scale)
	vector.StrokeCircle(cv.target(), float32(x)*s, float32(y)*s, float32(r)*s, float32(width)*s, c.Apply(cv.alpha), true)
}

func (cv *ImageCanvas) FillRect(x, y, w, h float64, c Color) {
	s := float32(cv.scale)
	vector.FillRect(cv.target(), float32(x)*s, float32(y)*s, float32(w)*s, float32(h)*s, c.Apply(cv.alpha), false)
}

func (cv *ImageCanvas) StrokeLine(x0, y0, x1, y1, width float64, c Color) {
	s := float32(cv.scale)
	vector.StrokeLine(cv.target(), float32(x0)*s, float32(y0)*s, float32(x1)*s, float32(y1)*s, float32(width)*s, c.Apply(cv.alpha), true)
}

func (cv *ImageCanvas) StrokeCurve(x0, y0, cx0, cy0, cx1, cy1, x1, y1, width float64, c Color) {
	dst := cv.target()
	col := c.Apply(cv.alpha)
	s := float32(cv.scale)
	px, py := x0, y0
	for i := 1; i <= curveSteps; i++ {
		t := float64(i) / curveSteps
		qx, qy := cubicAt(x0, y0, cx0, cy0, cx1, cy1, x1, y1, t)
		vector.StrokeLine(dst, float32(px)*s, float32(py)*s, float32(qx)*s, float32(qy)*s, float32(width)*s, col, true)
		px, py = qx, qy
	}
}

// FillRadial approximates a radial gradient with concentric discs of
// interpolated colour and falling opacity, outermost first.
func (cv *ImageCanvas) FillRadial(x, y, r float64, inner, outer Color) {
	const rings = 4
	dst := cv.target()
	s := float32(cv.scale)
	for i := rings; i >= 1; i-- {
		t := float64(i) / rings
		col := Mix(inner, outer, t)
		a := cv.alpha * (1 - t*0.75) / rings * 2
		vector.FillCircle(dst, float32(x)*s, float32(y)*s, float32(r*t)*s, col.Apply(a), true)
	}
	vector.FillCircle(dst, float32(x)*s, float32(y)*s, float32(r*0.25)*s, inner.Apply(cv.alpha), true)
}

// FillLinear approximates a vertical linear gradient with horizontal
// strips of interpolated colour.
func (cv *ImageCanvas) FillLinear(x, y, w, h float64, top, bottom Color) {
	const strips = 12
	dst := cv.target()
	s := float32(cv.scale)
	sh := h / strips
	for i := 0; i < strips; i++ {
		t := float64(i) / (strips - 1)
		col := Mix(top, bottom, t).Apply(cv.alpha)
		vector.FillRect(dst, float32(x)*s, float32(y+float64(i)*sh)*s, float32(w)*s, float32(sh+0.5)*s, col, false)
	}
}

// Present composites the overlay onto screen at (x, y) in screen pixels.
// The base layer lands with ordinary alpha compositing, the glow layer
// additively.
func (cv *ImageCanvas) Present(screen *ebiten.Image, x, y float64) {
	inv := 1 / cv.scale
	var opts ebiten.DrawImageOptions
	opts.GeoM.Scale(inv, inv)
	opts.GeoM.Translate(x, y)
	screen.DrawImage(cv.base, &opts)

	var glowOpts ebiten.DrawImageOptions
	glowOpts.GeoM.Scale(inv, inv)
	glowOpts.GeoM.Translate(x, y)
	glowOpts.Blend = ebiten.BlendLighter
	screen.DrawImage(cv.glow, &glowOpts)
}

// cubicAt evaluates a cubic Bézier at parameter t.
func cubicAt(x0, y0, cx0, cy0, cx1, cy1, x1, y1, t float64) (float64, float64) {
	u := 1 - t
	a := u * u * u
	b := 3 * u * u * t
	c := 3 * u * t * t
	d := t * t * t
	return a*x0 + b*cx0 + c*cx1 + d*x1, a*y0 + b*cy0 + c*cy1 + d*y1
}
