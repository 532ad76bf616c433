package osd

import (
	"math"
	"testing"
)

func TestOvalHitTest(t *testing.T) {
	// Circle of radius 2 centered on the origin.
	p := NewOvalPath(-2, -2, 4, 4)
	tests := []struct {
		name string
		x, y float64
		want bool
	}{
		{"center", 0, 0, true},
		{"inside diagonal", 1, 1, true},
		{"outside corner", 1.9, 1.9, false},
		{"outside right", 2.5, 0, false},
		{"far away", 10, 10, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.HitTest(tt.x, tt.y); got != tt.want {
				t.Errorf("HitTest(%g, %g) = %v, want %v", tt.x, tt.y, got, tt.want)
			}
		})
	}
}

func TestHitTestFillRules(t *testing.T) {
	// Two nested rectangles wound the same way. Non-zero winding keeps
	// the middle filled; even-odd punches a hole.
	p := NewRectPath(0, 0, 10, 10)
	p.Append(NewRectPath(2, 2, 6, 6))

	if !p.HitTest(5, 5) {
		t.Error("non-zero: center should be inside")
	}
	p.FillRule = FillRuleEvenOdd
	if p.HitTest(5, 5) {
		t.Error("even-odd: center should be outside")
	}
	if !p.HitTest(1, 5) {
		t.Error("even-odd: ring should be inside")
	}
}

func TestPathBounds(t *testing.T) {
	p := NewRectPath(1, 2, 3, 4)
	x, y, w, h, ok := p.Bounds()
	if !ok {
		t.Fatal("Bounds not ok for rect path")
	}
	if x != 1 || y != 2 || w != 3 || h != 4 {
		t.Fatalf("Bounds = %g %g %g %g", x, y, w, h)
	}

	if _, _, _, _, ok := NewPath().Bounds(); ok {
		t.Error("Bounds ok for empty path")
	}
}

func TestPathBoundsArc(t *testing.T) {
	p := NewPath()
	p.Arc(10, 10, 5, 0, math.Pi/4, true)
	x, y, w, h, ok := p.Bounds()
	if !ok {
		t.Fatal("Bounds not ok for arc path")
	}
	// Conservative: the full circle box.
	if x != 5 || y != 5 || w != 10 || h != 10 {
		t.Fatalf("Bounds = %g %g %g %g", x, y, w, h)
	}
}

func TestPathAppendCopies(t *testing.T) {
	src := NewPath()
	src.MoveTo(0, 0)
	src.LineTo(1, 1)

	dst := NewPath()
	dst.Append(src)
	n := len(dst.Elements())

	src.LineTo(2, 2)
	if len(dst.Elements()) != n {
		t.Fatal("Append aliased the source path")
	}
}

func TestPathCloneDeep(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(5, 5)
	p.Stroke.Dash = []float64{2, 3}

	c := p.Clone()
	c.Stroke.Dash[0] = 99
	c.LineTo(7, 7)

	if p.Stroke.Dash[0] != 2 {
		t.Error("Clone aliased the dash slice")
	}
	if len(p.Elements()) != 2 {
		t.Error("Clone aliased the element slice")
	}
}

func TestPathTransform(t *testing.T) {
	p := NewRectPath(0, 0, 2, 2)
	q := p.Transform(Translate(10, 20))
	x, y, _, _, ok := q.Bounds()
	if !ok || x != 10 || y != 20 {
		t.Fatalf("transformed bounds origin = %g, %g", x, y)
	}
	// Original untouched.
	if x0, _, _, _, _ := p.Bounds(); x0 != 0 {
		t.Error("Transform mutated the receiver")
	}
}

func TestRoundedRectSmallRadius(t *testing.T) {
	p := NewRoundedRectPath(0, 0, 10, 10, 0.2)
	for _, e := range p.Elements() {
		if _, isCubic := e.(CubicTo); isCubic {
			t.Fatal("radius below 0.5 should degrade to a plain rect")
		}
	}
	_, _, w, h, _ := p.Bounds()
	if w != 10 || h != 10 {
		t.Fatalf("bounds = %g x %g", w, h)
	}
}

func TestRoundedRectClampsRadius(t *testing.T) {
	// Radius larger than half the short side is clamped, so geometry
	// stays within the rect.
	p := NewRoundedRectPath(0, 0, 10, 4, 50)
	x, y, w, h, ok := p.Bounds()
	if !ok {
		t.Fatal("no bounds")
	}
	if x < -1e-9 || y < -1e-9 || x+w > 10+1e-9 || y+h > 4+1e-9 {
		t.Fatalf("geometry escapes rect: %g %g %g %g", x, y, w, h)
	}
}

func TestCurrentPoint(t *testing.T) {
	p := NewPath()
	p.MoveTo(1, 2)
	p.LineTo(3, 4)
	if got := p.CurrentPoint(); got != Pt(3, 4) {
		t.Fatalf("CurrentPoint = %v", got)
	}
}

func TestFlattenSubpaths(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.LineTo(1, 0)
	p.MoveTo(5, 5)
	p.LineTo(6, 5)
	p.Close()

	subs := p.flatten(0.25)
	if len(subs) != 2 {
		t.Fatalf("got %d subpaths, want 2", len(subs))
	}
	if subs[0].closed {
		t.Error("first subpath should be open")
	}
	if !subs[1].closed {
		t.Error("second subpath should be closed")
	}
	last := subs[1].points[len(subs[1].points)-1]
	if last != Pt(5, 5) {
		t.Errorf("closed subpath must end at its start, got %v", last)
	}
}

func TestFlattenCurveWithinTolerance(t *testing.T) {
	p := NewPath()
	p.MoveTo(0, 0)
	p.QuadraticTo(5, 10, 10, 0)

	const tol = 0.1
	subs := p.flatten(tol)
	if len(subs) != 1 {
		t.Fatalf("got %d subpaths, want 1", len(subs))
	}
	pts := subs[0].points
	if len(pts) < 4 {
		t.Fatalf("curve barely subdivided: %d points", len(pts))
	}
	// Every midpoint of a chord must be close to the true curve.
	for i := 0; i+1 < len(pts); i++ {
		mid := pts[i].Lerp(pts[i+1], 0.5)
		if d := quadDistance(mid, Pt(0, 0), Pt(5, 10), Pt(10, 0)); d > 3*tol {
			t.Fatalf("chord midpoint %v is %g from the curve", mid, d)
		}
	}
}

// quadDistance approximates the distance from p to the quadratic curve
// by dense sampling.
func quadDistance(p, p0, p1, p2 Point) float64 {
	best := math.MaxFloat64
	for i := 0; i <= 200; i++ {
		t := float64(i) / 200
		s := 1 - t
		q := Pt(s*s*p0.X+2*s*t*p1.X+t*t*p2.X, s*s*p0.Y+2*s*t*p1.Y+t*t*p2.Y)
		if d := p.Distance(q); d < best {
			best = d
		}
	}
	return best
}

func TestFlattenArcRadius(t *testing.T) {
	p := NewPath()
	p.Arc(0, 0, 10, 0, 2*math.Pi, true)
	subs := p.flatten(0.25)
	if len(subs) != 1 {
		t.Fatalf("got %d subpaths", len(subs))
	}
	for _, pt := range subs[0].points {
		r := pt.Length()
		if math.Abs(r-10) > 0.01 {
			t.Fatalf("arc point %v has radius %g", pt, r)
		}
	}
}
