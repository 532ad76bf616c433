package osd

import (
	"math"
	"testing"
)

const matrixEps = 1e-9

func nearPoint(a, b Point) bool {
	return math.Abs(a.X-b.X) < matrixEps && math.Abs(a.Y-b.Y) < matrixEps
}

func TestMatrixTransformPoint(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		in   Point
		want Point
	}{
		{"identity", Identity(), Pt(3, 4), Pt(3, 4)},
		{"translate", Translate(10, -5), Pt(1, 2), Pt(11, -3)},
		{"scale", Scale(2, 3), Pt(4, 5), Pt(8, 15)},
		{"rotate 90", Rotate(math.Pi / 2), Pt(1, 0), Pt(0, 1)},
		{"rotate 180", Rotate(math.Pi), Pt(1, 2), Pt(-1, -2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.TransformPoint(tt.in)
			if !nearPoint(got, tt.want) {
				t.Errorf("TransformPoint(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestMatrixConcatOrder(t *testing.T) {
	// Concat(m, n) applies n first. Scaling then translating (1,1)
	// must land on (12, 2), not (22, 2).
	m := Concat(Translate(10, 0), Scale(2, 2))
	got := m.TransformPoint(Pt(1, 1))
	if !nearPoint(got, Pt(12, 2)) {
		t.Fatalf("Concat order wrong: got %v, want (12, 2)", got)
	}
}

func TestMatrixTransformVector(t *testing.T) {
	m := Concat(Translate(100, 100), Scale(2, 2))
	got := m.TransformVector(Pt(1, 1))
	if !nearPoint(got, Pt(2, 2)) {
		t.Fatalf("TransformVector must ignore translation: got %v", got)
	}
}

func TestMatrixInvert(t *testing.T) {
	m := Concat(Concat(Translate(7, -3), Rotate(0.7)), Scale(2, 3))
	inv, ok := m.Invert()
	if !ok {
		t.Fatal("Invert failed on invertible matrix")
	}
	for _, p := range []Point{Pt(0, 0), Pt(1, 2), Pt(-5, 3.5)} {
		back := inv.TransformPoint(m.TransformPoint(p))
		if !nearPoint(back, p) {
			t.Errorf("roundtrip of %v = %v", p, back)
		}
	}
}

func TestMatrixInvertSingular(t *testing.T) {
	if _, ok := Scale(0, 5).Invert(); ok {
		t.Fatal("Invert succeeded on singular matrix")
	}
}

func TestMatrixMaxScaleFactor(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix
		want float64
	}{
		{"identity", Identity(), 1},
		{"translate", Translate(100, 200), 1},
		{"scale", Scale(2, 3), 3},
		{"rotate", Rotate(1.1), 1},
		{"rotate scale", Concat(Rotate(0.5), Scale(4, 0.5)), 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.m.MaxScaleFactor()
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("MaxScaleFactor() = %g, want %g", got, tt.want)
			}
		})
	}
}

func TestMatrixIsIdentity(t *testing.T) {
	if !Identity().IsIdentity() {
		t.Error("Identity().IsIdentity() = false")
	}
	if Translate(1, 0).IsIdentity() {
		t.Error("Translate(1,0).IsIdentity() = true")
	}
}

func TestMatrixComponents(t *testing.T) {
	m := Matrix{A: 1, B: 2, C: 3, D: 4, TX: 5, TY: 6}
	a, b, c, d, tx, ty := m.Components()
	if a != 1 || b != 2 || c != 3 || d != 4 || tx != 5 || ty != 6 {
		t.Fatalf("Components() = %v %v %v %v %v %v", a, b, c, d, tx, ty)
	}
}
