package engine

// CanvasOp identifies one kind of draw operation on a RecordCanvas.
type CanvasOp string

const (
	OpClear        CanvasOp = "clear"
	OpFillCircle   CanvasOp = "fill_circle"
	OpStrokeCircle CanvasOp = "stroke_circle"
	OpFillRect     CanvasOp = "fill_rect"
	OpStrokeLine   CanvasOp = "stroke_line"
	OpStrokeCurve  CanvasOp = "stroke_curve"
	OpFillRadial   CanvasOp = "fill_radial"
	OpFillLinear   CanvasOp = "fill_linear"
)

// RecordCanvas is a headless Canvas that counts draw operations instead of
// rasterising them. Used by the package tests and the headless-report
// command, where what matters is that render hooks fired, not what pixels
// they produced.
type RecordCanvas struct {
	w, h  float64
	alpha float64
	blend BlendMode
	stack []canvasState

	Ops map[CanvasOp]int
}

// RecordTarget builds a RecordCanvas for Engine.Init. A non-nil Err makes
// NewCanvas fail, for exercising the resource-acquisition failure path.
type RecordTarget struct {
	W, H    float64
	Err     error
	Created int // NewCanvas call count, for double-init assertions
	Last    *RecordCanvas
}

// NewCanvas implements CanvasTarget.
func (t *RecordTarget) NewCanvas() (Canvas, error) {
	if t.Err != nil {
		return nil, t.Err
	}
	t.Created++
	t.Last = NewRecordCanvas(t.W, t.H)
	return t.Last, nil
}

// NewRecordCanvas creates a recording canvas of the given logical size.
func NewRecordCanvas(w, h float64) *RecordCanvas {
	return &RecordCanvas{
		w: w, h: h,
		alpha: 1,
		Ops:   make(map[CanvasOp]int),
	}
}

// DrawCount sums every recorded operation except clears.
func (cv *RecordCanvas) DrawCount() int {
	total := 0
	for op, n := range cv.Ops {
		if op != OpClear {
			total += n
		}
	}
	return total
}

// ResetOps zeroes the operation counters.
func (cv *RecordCanvas) ResetOps() {
	for op := range cv.Ops {
		delete(cv.Ops, op)
	}
}

func (cv *RecordCanvas) Bounds() Bounds { return Bounds{W: cv.w, H: cv.h} }

func (cv *RecordCanvas) Clear() { cv.Ops[OpClear]++ }

func (cv *RecordCanvas) Save() {
	cv.stack = append(cv.stack, canvasState{alpha: cv.alpha, blend: cv.blend})
}

func (cv *RecordCanvas) Restore() {
	n := len(cv.stack)
	if n == 0 {
		return
	}
	st := cv.stack[n-1]
	cv.stack = cv.stack[:n-1]
	cv.alpha = st.alpha
	cv.blend = st.blend
}

func (cv *RecordCanvas) SetAlpha(a float64)   { cv.alpha = a }
func (cv *RecordCanvas) SetBlend(m BlendMode) { cv.blend = m }

func (cv *RecordCanvas) FillCircle(x, y, r float64, c Color) { cv.Ops[OpFillCircle]++ }

func (cv *RecordCanvas) StrokeCircle(x, y, r, width float64, c Color) { cv.Ops[OpStrokeCircle]++ }

func (cv *RecordCanvas) FillRect(x, y, w, h float64, c Color) { cv.Ops[OpFillRect]++ }

func (cv *RecordCanvas) StrokeLine(x0, y0, x1, y1, width float64, c Color) { cv.Ops[OpStrokeLine]++ }

func (cv *RecordCanvas) StrokeCurve(x0, y0, cx0, cy0, cx1, cy1, x1, y1, width float64, c Color) {
	cv.Ops[OpStrokeCurve]++
}

func (cv *RecordCanvas) FillRadial(x, y, r float64, inner, outer Color) { cv.Ops[OpFillRadial]++ }

func (cv *RecordCanvas) FillLinear(x, y, w, h float64, top, bottom Color) { cv.Ops[OpFillLinear]++ }
