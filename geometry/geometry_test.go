package geometry

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestRotatePoint(t *testing.T) {
	got := RotatePoint(Pt(10, 0), Pt(0, 0), math.Pi/2)
	if !near(got.X, 0) || !near(got.Y, 10) {
		t.Errorf("Expected (0,10), got %v", got)
	}

	got = RotatePoint(Pt(2, 1), Pt(1, 1), math.Pi)
	if !near(got.X, 0) || !near(got.Y, 1) {
		t.Errorf("Expected (0,1), got %v", got)
	}
}

func TestPointInRotatedRectRoundTrip(t *testing.T) {
	r := Rect{X: 10, Y: 20, Width: 100, Height: 40}
	center := r.Center()
	inside := []Point{{11, 21}, {60, 40}, {109, 59}, {10, 20}, {110, 60}}
	outside := []Point{{9, 40}, {60, 61}, {111, 30}, {200, 200}}

	for deg := 0; deg < 360; deg += 15 {
		theta := float64(deg) * math.Pi / 180
		for _, p := range inside {
			rotated := RotatePoint(p, center, theta)
			// Corners sit exactly on the edge; nudge them inwards to stay
			// clear of rounding.
			if p == (Point{10, 20}) || p == (Point{110, 60}) {
				rotated = RotatePoint(p.Add(center.Sub(p).Mul(1e-6)), center, theta)
			}
			if !PointInRotatedRect(rotated, r, theta) {
				t.Errorf("theta=%d: expected %v inside", deg, p)
			}
		}
		for _, p := range outside {
			if PointInRotatedRect(RotatePoint(p, center, theta), r, theta) {
				t.Errorf("theta=%d: expected %v outside", deg, p)
			}
		}
	}
}

func TestDistanceToSegment(t *testing.T) {
	tests := []struct {
		name    string
		p, a, b Point
		want    float64
	}{
		{"perpendicular", Pt(5, 3), Pt(0, 0), Pt(10, 0), 3},
		{"before start", Pt(-4, 3), Pt(0, 0), Pt(10, 0), 5},
		{"after end", Pt(13, 4), Pt(0, 0), Pt(10, 0), 5},
		{"degenerate", Pt(3, 4), Pt(0, 0), Pt(0, 0), 5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DistanceToSegment(tt.p, tt.a, tt.b); !near(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestPointOnSegmentIsStrict(t *testing.T) {
	if PointOnSegment(Pt(5, 5), Pt(0, 0), Pt(10, 0), 5) {
		t.Error("distance equal to radius should not count as on the segment")
	}
	if !PointOnSegment(Pt(5, 4.9), Pt(0, 0), Pt(10, 0), 5) {
		t.Error("point inside radius should be on the segment")
	}
}

func TestRectNormalizeAndOverlap(t *testing.T) {
	box := Rect{X: 100, Y: 100, Width: -50, Height: -20}.Normalize()
	if box != (Rect{X: 50, Y: 80, Width: 50, Height: 20}) {
		t.Fatalf("unexpected normalized rect %v", box)
	}
	if !box.Overlaps(Rect{X: 90, Y: 90, Width: 30, Height: 30}) {
		t.Error("expected overlap")
	}
	if box.Overlaps(Rect{X: 100, Y: 80, Width: 10, Height: 10}) {
		t.Error("touching edges should not overlap")
	}
}

func TestRectUnionExpand(t *testing.T) {
	u := Rect{0, 0, 100, 50}.Union(Rect{300, 0, 100, 50}).Expand(20)
	want := Rect{X: -20, Y: -20, Width: 440, Height: 90}
	if u != want {
		t.Errorf("Expected %v, got %v", want, u)
	}
}

func TestSmoothPath(t *testing.T) {
	pts := []Point{{0, 0}, {10, 10}, {20, 10}, {30, 0}}
	quads := SmoothPath(pts)
	if len(quads) != 2 {
		t.Fatalf("Expected 2 quads, got %d", len(quads))
	}
	if quads[0].From != pts[0] || quads[0].Ctrl != pts[1] || quads[0].To != (Point{15, 10}) {
		t.Errorf("unexpected first quad %+v", quads[0])
	}
	if quads[1].From != (Point{15, 10}) || quads[1].Ctrl != pts[2] || quads[1].To != pts[3] {
		t.Errorf("unexpected last quad %+v", quads[1])
	}

	if SmoothPath(pts[:2]) != nil {
		t.Error("two points cannot form a curve")
	}
}

func TestFlatten(t *testing.T) {
	quads := SmoothPath([]Point{{0, 0}, {50, 50}, {100, 0}})
	flat := Flatten(quads, 20)
	if len(flat) != 21 {
		t.Fatalf("Expected 21 points, got %d", len(flat))
	}
	if flat[0] != (Point{0, 0}) || flat[20] != (Point{100, 0}) {
		t.Errorf("flattening should start and end on the curve ends: %v %v", flat[0], flat[20])
	}
	mid := flat[10]
	if !near(mid.X, 50) || !near(mid.Y, 25) {
		t.Errorf("Expected curve midpoint (50,25), got %v", mid)
	}
}

func TestSnapIdempotent(t *testing.T) {
	for _, v := range []float64{-31, -10, 0, 9.99, 10, 29.5, 333.3} {
		once := Snap(v, 20)
		if twice := Snap(once, 20); math.Abs(once-twice) > eps {
			t.Errorf("Snap not idempotent for %v: %v then %v", v, once, twice)
		}
	}
	if Snap(13, 0) != 13 {
		t.Error("zero grid should leave value untouched")
	}
}

func TestBoundsOf(t *testing.T) {
	if _, ok := BoundsOf(nil); ok {
		t.Error("empty input should not report bounds")
	}
	r, ok := BoundsOf([]Point{{5, 5}, {-5, 10}, {3, -2}})
	if !ok || r != (Rect{X: -5, Y: -2, Width: 10, Height: 12}) {
		t.Errorf("unexpected bounds %v", r)
	}
}
