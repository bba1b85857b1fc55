package geometry

// Quad is one quadratic Bézier piece: From and To lie on the curve, Ctrl
// pulls it.
type Quad struct {
	From, Ctrl, To Point
}

// At evaluates the quad at t in [0,1].
func (q Quad) At(t float64) Point {
	return QuadAt(q.From, q.Ctrl, q.To, t)
}

func QuadAt(p0, p1, p2 Point, t float64) Point {
	mt := 1 - t
	return Point{
		X: mt*mt*p0.X + 2*mt*t*p1.X + t*t*p2.X,
		Y: mt*mt*p0.Y + 2*mt*t*p1.Y + t*t*p2.Y,
	}
}

// SmoothPath turns a control polyline into a chain of quads. The first and
// last points stay on the curve, every interior point becomes a control
// point and the midpoints between consecutive interior points become the
// on-curve joints. Fewer than three points yield no quads.
func SmoothPath(points []Point) []Quad {
	if len(points) < 3 {
		return nil
	}
	quads := make([]Quad, 0, len(points)-2)
	from := points[0]
	for i := 1; i < len(points)-1; i++ {
		ctrl := points[i]
		to := points[i+1]
		if i < len(points)-2 {
			to = ctrl.Mid(points[i+1])
		}
		quads = append(quads, Quad{From: from, Ctrl: ctrl, To: to})
		from = to
	}
	return quads
}

// Flatten samples every quad with steps sub-segments and returns the
// resulting polyline, starting at the first quad's From point.
func Flatten(quads []Quad, steps int) []Point {
	if len(quads) == 0 {
		return nil
	}
	if steps < 1 {
		steps = 1
	}
	out := make([]Point, 0, len(quads)*steps+1)
	out = append(out, quads[0].From)
	for _, q := range quads {
		for j := 1; j <= steps; j++ {
			out = append(out, q.At(float64(j)/float64(steps)))
		}
	}
	return out
}
