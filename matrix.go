package osd

import "math"

// Matrix represents a 2D affine transformation with the six components
// (a, b, c, d, tx, ty) of the standard column-vector convention:
//
//	x' = a*x + c*y + tx
//	y' = b*x + d*y + ty
//
// This matches the CoreGraphics CGAffineTransform component order.
type Matrix struct {
	A, B, C, D, TX, TY float64
}

// Identity returns the identity transformation matrix.
func Identity() Matrix {
	return Matrix{A: 1, B: 0, C: 0, D: 1, TX: 0, TY: 0}
}

// Translate creates a translation matrix.
func Translate(tx, ty float64) Matrix {
	return Matrix{A: 1, B: 0, C: 0, D: 1, TX: tx, TY: ty}
}

// Scale creates a scaling matrix.
func Scale(sx, sy float64) Matrix {
	return Matrix{A: sx, B: 0, C: 0, D: sy, TX: 0, TY: 0}
}

// Rotate creates a rotation matrix (angle in radians, positive is
// clockwise in the y-down device space).
func Rotate(angle float64) Matrix {
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return Matrix{A: cos, B: sin, C: -sin, D: cos, TX: 0, TY: 0}
}

// Concat composes two transforms. The result applies n first, then m:
//
//	m.Concat(n).TransformPoint(p) == m.TransformPoint(n.TransformPoint(p))
//
// The convention is fixed and locked down by tests: translate-then-scale
// is not scale-then-translate.
func (m Matrix) Concat(n Matrix) Matrix {
	return Matrix{
		A:  m.A*n.A + m.C*n.B,
		B:  m.B*n.A + m.D*n.B,
		C:  m.A*n.C + m.C*n.D,
		D:  m.B*n.C + m.D*n.D,
		TX: m.A*n.TX + m.C*n.TY + m.TX,
		TY: m.B*n.TX + m.D*n.TY + m.TY,
	}
}

// Concat composes two transforms as a free function: the result applies
// n first, then m. Equivalent to m.Concat(n).
func Concat(m, n Matrix) Matrix {
	return m.Concat(n)
}

// TransformPoint applies the transformation to a point.
func (m Matrix) TransformPoint(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y + m.TX,
		Y: m.B*p.X + m.D*p.Y + m.TY,
	}
}

// TransformVector applies the transformation to a vector (no translation).
func (m Matrix) TransformVector(p Point) Point {
	return Point{
		X: m.A*p.X + m.C*p.Y,
		Y: m.B*p.X + m.D*p.Y,
	}
}

// Determinant returns the determinant of the linear part.
func (m Matrix) Determinant() float64 {
	return m.A*m.D - m.B*m.C
}

// Invert returns the inverse matrix. The second return value is false
// when the matrix is singular (determinant within epsilon of zero), in
// which case the returned matrix is unspecified.
func (m Matrix) Invert() (Matrix, bool) {
	det := m.Determinant()
	if math.Abs(det) < 1e-10 {
		return Identity(), false
	}

	inv := 1.0 / det
	return Matrix{
		A:  m.D * inv,
		B:  -m.B * inv,
		C:  -m.C * inv,
		D:  m.A * inv,
		TX: (m.C*m.TY - m.D*m.TX) * inv,
		TY: (m.B*m.TX - m.A*m.TY) * inv,
	}, true
}

// IsIdentity returns true if the matrix is the identity matrix.
func (m Matrix) IsIdentity() bool {
	return m.A == 1 && m.B == 0 && m.C == 0 &&
		m.D == 1 && m.TX == 0 && m.TY == 0
}

// MaxScaleFactor returns the largest factor by which the transform can
// stretch a unit vector (the largest singular value of the linear part).
// Flattening tolerances are divided by this so curves stay smooth at any
// zoom level.
func (m Matrix) MaxScaleFactor() float64 {
	// Eigenvalues of M^T * M.
	t1 := m.A*m.A + m.B*m.B
	t2 := m.C*m.C + m.D*m.D
	t3 := m.A*m.C + m.B*m.D
	disc := math.Sqrt((t1-t2)*(t1-t2) + 4*t3*t3)
	return math.Sqrt((t1 + t2 + disc) / 2)
}

// Components returns the six scalar components (a, b, c, d, tx, ty).
func (m Matrix) Components() (a, b, c, d, tx, ty float64) {
	return m.A, m.B, m.C, m.D, m.TX, m.TY
}
