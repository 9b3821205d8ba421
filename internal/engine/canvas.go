package engine

// BlendMode selects the composite operation for subsequent draws.
type BlendMode uint8

const (
	// BlendSourceOver is ordinary alpha compositing.
	BlendSourceOver BlendMode = iota
	// BlendLighter adds source to destination, for glows and sparks.
	BlendLighter
	// BlendScreen is inverse-multiply compositing. Backends without a
	// native screen operation may approximate it with BlendLighter.
	BlendScreen
)

// Canvas is the 2D drawing contract the tick loop renders through: clear,
// fill/stroke primitives, gradients, global alpha, composite modes, and
// save/restore of drawing state. The engine clears it once per tick and
// effect Render hooks draw onto it; a host then presents the result.
//
// Coordinates are logical pixels; implementations handle device-pixel-
// ratio scaling internally.
type Canvas interface {
	Bounds() Bounds
	Clear()

	// Save pushes the current alpha and blend mode; Restore pops them.
	Save()
	Restore()
	SetAlpha(a float64)
	SetBlend(m BlendMode)

	FillCircle(x, y, r float64, c Color)
	StrokeCircle(x, y, r, width float64, c Color)
	FillRect(x, y, w, h float64, c Color)
	StrokeLine(x0, y0, x1, y1, width float64, c Color)

	// StrokeCurve strokes a cubic Bézier from (x0,y0) to (x1,y1) with
	// control points (cx0,cy0) and (cx1,cy1).
	StrokeCurve(x0, y0, cx0, cy0, cx1, cy1, x1, y1, width float64, c Color)

	// FillRadial fills a disc with a radial gradient from inner at the
	// centre to outer (typically transparent) at radius r.
	FillRadial(x, y, r float64, inner, outer Color)

	// FillLinear fills a rect with a vertical linear gradient.
	FillLinear(x, y, w, h float64, top, bottom Color)
}

// CanvasTarget provides the overlay drawing surface to Engine.Init. The
// demo supplies an ebiten-backed target; tests supply a recording target.
type CanvasTarget interface {
	NewCanvas() (Canvas, error)
}

// resizableCanvas is implemented by canvases that can rescale for a new
// viewport and device pixel ratio.
type resizableCanvas interface {
	Resize(w, h int, scale float64)
}
