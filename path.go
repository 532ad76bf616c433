package osd

import "math"

// FillRule specifies how to determine which areas are inside a path.
type FillRule int

const (
	// FillRuleNonZero uses the non-zero winding rule.
	FillRuleNonZero FillRule = iota
	// FillRuleEvenOdd uses the even-odd rule.
	FillRuleEvenOdd
)

// LineCap specifies the shape of open stroke endpoints.
type LineCap int

const (
	// LineCapButt specifies a flat line cap.
	LineCapButt LineCap = iota
	// LineCapRound specifies a rounded line cap.
	LineCapRound
	// LineCapSquare specifies a square line cap.
	LineCapSquare
)

// LineJoin specifies the shape of stroke joins at interior vertices.
type LineJoin int

const (
	// LineJoinMiter specifies a sharp (mitered) join.
	LineJoinMiter LineJoin = iota
	// LineJoinRound specifies a rounded join.
	LineJoinRound
	// LineJoinBevel specifies a beveled join.
	LineJoinBevel
)

// StrokeStyle describes how a path outline is stroked.
type StrokeStyle struct {
	Width      float64
	Cap        LineCap
	Join       LineJoin
	MiterLimit float64

	// Dash holds alternating on/off interval lengths in user-space units.
	// Empty means a solid stroke. An odd-length list is logically doubled.
	Dash       []float64
	DashOffset float64
}

// DefaultStrokeStyle returns the stroke settings a freshly created path
// carries: hairline width, butt caps, miter joins, no dashing.
func DefaultStrokeStyle() StrokeStyle {
	return StrokeStyle{
		Width:      1.0,
		Cap:        LineCapButt,
		Join:       LineJoinMiter,
		MiterLimit: 4.0,
	}
}

// PathElement represents a single element in a path.
type PathElement interface {
	isPathElement()
}

// MoveTo moves to a point without drawing, starting a new subpath.
type MoveTo struct {
	Point Point
}

func (MoveTo) isPathElement() {}

// LineTo draws a line to a point.
type LineTo struct {
	Point Point
}

func (LineTo) isPathElement() {}

// QuadTo draws a quadratic Bezier curve.
type QuadTo struct {
	Control Point
	Point   Point
}

func (QuadTo) isPathElement() {}

// CubicTo draws a cubic Bezier curve.
type CubicTo struct {
	Control1 Point
	Control2 Point
	Point    Point
}

func (CubicTo) isPathElement() {}

// ArcTo draws a circular arc around a center point. The arc starts a new
// subpath at its first sample point.
type ArcTo struct {
	Center     Point
	Radius     float64
	Start, End float64 // angles in radians
	Clockwise  bool
}

func (ArcTo) isPathElement() {}

// Close closes the current subpath and returns the pen to its start point.
type Close struct{}

func (Close) isPathElement() {}

// Path represents a vector path: a sequence of subpaths built from move,
// line, curve, arc and close elements, plus fill and stroke attributes.
// Paths are value-like: Append and Clone copy geometry, so two paths never
// share element storage.
type Path struct {
	elements []PathElement
	start    Point // starting point of current subpath
	current  Point // current pen position

	FillRule FillRule
	Stroke   StrokeStyle
}

// NewPath creates a new empty path with default attributes.
func NewPath() *Path {
	return &Path{
		elements: make([]PathElement, 0, 16),
		Stroke:   DefaultStrokeStyle(),
	}
}

// MoveTo moves to a point without drawing.
func (p *Path) MoveTo(x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, MoveTo{Point: pt})
	p.start = pt
	p.current = pt
}

// LineTo draws a line to a point.
func (p *Path) LineTo(x, y float64) {
	pt := Pt(x, y)
	p.elements = append(p.elements, LineTo{Point: pt})
	p.current = pt
}

// QuadraticTo draws a quadratic Bezier curve.
func (p *Path) QuadraticTo(cx, cy, x, y float64) {
	p.elements = append(p.elements, QuadTo{Control: Pt(cx, cy), Point: Pt(x, y)})
	p.current = Pt(x, y)
}

// CubicTo draws a cubic Bezier curve.
func (p *Path) CubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	p.elements = append(p.elements, CubicTo{
		Control1: Pt(c1x, c1y),
		Control2: Pt(c2x, c2y),
		Point:    Pt(x, y),
	})
	p.current = Pt(x, y)
}

// Arc adds a circular arc around (cx, cy) from angle start to angle end
// (radians). The arc begins a new subpath.
func (p *Path) Arc(cx, cy, r, start, end float64, clockwise bool) {
	p.elements = append(p.elements, ArcTo{
		Center:    Pt(cx, cy),
		Radius:    r,
		Start:     start,
		End:       end,
		Clockwise: clockwise,
	})
	sweep := arcSweep(start, end, clockwise)
	p.current = Pt(cx+r*math.Cos(start+sweep), cy+r*math.Sin(start+sweep))
}

// Close closes the current subpath by drawing a line to its start point.
func (p *Path) Close() {
	p.elements = append(p.elements, Close{})
	p.current = p.start
}

// Clear removes all elements from the path, keeping attributes.
func (p *Path) Clear() {
	p.elements = p.elements[:0]
	p.start = Point{}
	p.current = Point{}
}

// Elements returns the path elements.
func (p *Path) Elements() []PathElement {
	return p.elements
}

// IsEmpty returns true if the path has no elements.
func (p *Path) IsEmpty() bool {
	return len(p.elements) == 0
}

// CurrentPoint returns the current pen position.
func (p *Path) CurrentPoint() Point {
	return p.current
}

// Append copies all elements of src onto p. The geometry is copied, not
// shared: mutating src afterward does not affect p.
func (p *Path) Append(src *Path) {
	p.elements = append(p.elements, src.elements...)
	p.start = src.start
	p.current = src.current
}

// Clone creates a deep copy of the path, including attributes.
func (p *Path) Clone() *Path {
	result := NewPath()
	result.elements = make([]PathElement, len(p.elements))
	copy(result.elements, p.elements)
	result.start = p.start
	result.current = p.current
	result.FillRule = p.FillRule
	result.Stroke = p.Stroke
	result.Stroke.Dash = append([]float64(nil), p.Stroke.Dash...)
	return result
}

// Transform returns a copy of the path with all points mapped through m.
// Arc elements are flattened to lines first, since a circular arc is not
// closed under affine maps.
func (p *Path) Transform(m Matrix) *Path {
	result := NewPath()
	result.FillRule = p.FillRule
	result.Stroke = p.Stroke
	result.Stroke.Dash = append([]float64(nil), p.Stroke.Dash...)
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			pt := m.TransformPoint(e.Point)
			result.MoveTo(pt.X, pt.Y)
		case LineTo:
			pt := m.TransformPoint(e.Point)
			result.LineTo(pt.X, pt.Y)
		case QuadTo:
			ctrl := m.TransformPoint(e.Control)
			pt := m.TransformPoint(e.Point)
			result.QuadraticTo(ctrl.X, ctrl.Y, pt.X, pt.Y)
		case CubicTo:
			c1 := m.TransformPoint(e.Control1)
			c2 := m.TransformPoint(e.Control2)
			pt := m.TransformPoint(e.Point)
			result.CubicTo(c1.X, c1.Y, c2.X, c2.Y, pt.X, pt.Y)
		case ArcTo:
			pts := flattenArc(e, defaultFlattenTolerance)
			for i, pt := range pts {
				tp := m.TransformPoint(pt)
				if i == 0 {
					result.MoveTo(tp.X, tp.Y)
				} else {
					result.LineTo(tp.X, tp.Y)
				}
			}
		case Close:
			result.Close()
		}
	}
	return result
}

// kappa is the control-point offset factor approximating a quarter circle
// with a single cubic Bezier: 4/3 * (sqrt(2) - 1).
const kappa = 0.5522847498307936

// NewRectPath creates a closed rectangular path.
func NewRectPath(x, y, w, h float64) *Path {
	p := NewPath()
	p.MoveTo(x, y)
	p.LineTo(x+w, y)
	p.LineTo(x+w, y+h)
	p.LineTo(x, y+h)
	p.Close()
	return p
}

// NewOvalPath creates a closed elliptical path inscribed in the rectangle
// (x, y, w, h), built from four cubic Bezier quadrants.
func NewOvalPath(x, y, w, h float64) *Path {
	cx, cy := x+w/2, y+h/2
	rx, ry := w/2, h/2
	kx, ky := kappa*rx, kappa*ry

	p := NewPath()
	p.MoveTo(cx, cy-ry)
	p.CubicTo(cx+kx, cy-ry, cx+rx, cy-ky, cx+rx, cy)
	p.CubicTo(cx+rx, cy+ky, cx+kx, cy+ry, cx, cy+ry)
	p.CubicTo(cx-kx, cy+ry, cx-rx, cy+ky, cx-rx, cy)
	p.CubicTo(cx-rx, cy-ky, cx-kx, cy-ry, cx, cy-ry)
	p.Close()
	return p
}

// NewRoundedRectPath creates a closed rounded rectangle path. The corner
// radius is clamped to half of the smaller dimension.
func NewRoundedRectPath(x, y, w, h, r float64) *Path {
	r = math.Max(0, math.Min(r, math.Min(w/2, h/2)))
	if r < 0.5 {
		return NewRectPath(x, y, w, h)
	}
	kr := kappa * r

	p := NewPath()
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.CubicTo(x+w-r+kr, y, x+w, y+r-kr, x+w, y+r)
	p.LineTo(x+w, y+h-r)
	p.CubicTo(x+w, y+h-r+kr, x+w-r+kr, y+h, x+w-r, y+h)
	p.LineTo(x+r, y+h)
	p.CubicTo(x+r-kr, y+h, x, y+h-r+kr, x, y+h-r)
	p.LineTo(x, y+r)
	p.CubicTo(x, y+r-kr, x+r-kr, y, x+r, y)
	p.Close()
	return p
}

// Bounds returns the conservative axis-aligned bounding box of the
// untransformed geometry (on-curve and control points). The second return
// value is false for a path with no elements.
func (p *Path) Bounds() (x, y, w, h float64, ok bool) {
	if len(p.elements) == 0 {
		return 0, 0, 0, 0, false
	}

	minX, minY := math.MaxFloat64, math.MaxFloat64
	maxX, maxY := -math.MaxFloat64, -math.MaxFloat64
	add := func(pt Point) {
		minX = math.Min(minX, pt.X)
		minY = math.Min(minY, pt.Y)
		maxX = math.Max(maxX, pt.X)
		maxY = math.Max(maxY, pt.Y)
	}

	any := false
	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			add(e.Point)
			any = true
		case LineTo:
			add(e.Point)
			any = true
		case QuadTo:
			add(e.Control)
			add(e.Point)
			any = true
		case CubicTo:
			add(e.Control1)
			add(e.Control2)
			add(e.Point)
			any = true
		case ArcTo:
			// Conservative: the full circle box.
			add(Pt(e.Center.X-e.Radius, e.Center.Y-e.Radius))
			add(Pt(e.Center.X+e.Radius, e.Center.Y+e.Radius))
			any = true
		case Close:
		}
	}
	if !any {
		return 0, 0, 0, 0, false
	}
	return minX, minY, maxX - minX, maxY - minY, true
}

// HitTest reports whether the point (x, y) lies inside the path under its
// fill rule. It evaluates the winding number against the same flattened
// geometry the rasterizer scan-converts, so the answer agrees with what
// filling would actually paint.
func (p *Path) HitTest(x, y float64) bool {
	subpaths := p.flatten(defaultFlattenTolerance)
	winding := 0
	crossings := 0
	for _, sp := range subpaths {
		pts := sp.points
		n := len(pts)
		if n < 2 {
			continue
		}
		for i := 0; i < n; i++ {
			p0 := pts[i]
			p1 := pts[(i+1)%n]
			if p0.Y == p1.Y {
				continue
			}
			// Half-open interval [min, max) so shared vertices count once.
			if (p0.Y <= y) == (p1.Y <= y) {
				continue
			}
			t := (y - p0.Y) / (p1.Y - p0.Y)
			cx := p0.X + t*(p1.X-p0.X)
			if cx > x {
				crossings++
				if p1.Y > p0.Y {
					winding++
				} else {
					winding--
				}
			}
		}
	}
	if p.FillRule == FillRuleEvenOdd {
		return crossings%2 == 1
	}
	return winding != 0
}
