package osd

import "math"

// defaultFlattenTolerance is the maximum distance, in device pixels,
// between a curve and its polyline approximation.
const defaultFlattenTolerance = 0.25

// maxFlattenDepth bounds the recursive subdivision so degenerate control
// points cannot recurse unboundedly.
const maxFlattenDepth = 24

// subpath is a flattened run of connected points. closed records whether
// the source subpath ended with a Close element; filling treats every
// subpath as implicitly closed, stroking does not.
type subpath struct {
	points []Point
	closed bool
}

// flatten converts the path into per-subpath polylines at the given
// tolerance. Subpath boundaries are preserved: no connecting edges are
// produced between one subpath and the next.
func (p *Path) flatten(tol float64) []subpath {
	if tol <= 0 {
		tol = defaultFlattenTolerance
	}

	var result []subpath
	var cur subpath
	var current Point
	var start Point

	flush := func() {
		if len(cur.points) > 0 {
			result = append(result, cur)
		}
		cur = subpath{}
	}

	for _, elem := range p.elements {
		switch e := elem.(type) {
		case MoveTo:
			flush()
			current = e.Point
			start = e.Point
			cur.points = append(cur.points, current)

		case LineTo:
			if len(cur.points) == 0 {
				cur.points = append(cur.points, current)
			}
			current = e.Point
			cur.points = append(cur.points, current)

		case QuadTo:
			if len(cur.points) == 0 {
				cur.points = append(cur.points, current)
			}
			flattenQuadRec(current, e.Control, e.Point, tol, 0, &cur.points)
			current = e.Point

		case CubicTo:
			if len(cur.points) == 0 {
				cur.points = append(cur.points, current)
			}
			flattenCubicRec(current, e.Control1, e.Control2, e.Point, tol, 0, &cur.points)
			current = e.Point

		case ArcTo:
			flush()
			pts := flattenArc(e, tol)
			if len(pts) > 0 {
				cur.points = append(cur.points, pts...)
				current = pts[len(pts)-1]
				start = pts[0]
			}

		case Close:
			if len(cur.points) > 0 {
				if cur.points[len(cur.points)-1] != cur.points[0] {
					cur.points = append(cur.points, cur.points[0])
				}
				cur.closed = true
				flush()
			}
			current = start
		}
	}
	flush()
	return result
}

// flattenQuadRec recursively subdivides a quadratic Bezier curve until it
// is within tolerance of a straight line, appending endpoints to out.
func flattenQuadRec(p0, p1, p2 Point, tol float64, depth int, out *[]Point) {
	if depth >= maxFlattenDepth || distanceToLine(p1, p0, p2) < tol {
		*out = append(*out, p2)
		return
	}

	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := q0.Lerp(q1, 0.5)

	flattenQuadRec(p0, q0, q2, tol, depth+1, out)
	flattenQuadRec(q2, q1, p2, tol, depth+1, out)
}

// flattenCubicRec recursively subdivides a cubic Bezier curve using
// de Casteljau's algorithm.
func flattenCubicRec(p0, p1, p2, p3 Point, tol float64, depth int, out *[]Point) {
	d1 := distanceToLine(p1, p0, p3)
	d2 := distanceToLine(p2, p0, p3)
	if depth >= maxFlattenDepth || math.Max(d1, d2) < tol {
		*out = append(*out, p3)
		return
	}

	q0 := p0.Lerp(p1, 0.5)
	q1 := p1.Lerp(p2, 0.5)
	q2 := p2.Lerp(p3, 0.5)
	r0 := q0.Lerp(q1, 0.5)
	r1 := q1.Lerp(q2, 0.5)
	s := r0.Lerp(r1, 0.5)

	flattenCubicRec(p0, q0, r0, s, tol, depth+1, out)
	flattenCubicRec(s, r1, q2, p3, tol, depth+1, out)
}

// arcSweep returns the signed sweep angle from start to end, positive for
// clockwise arcs (y-down device space) and negative otherwise.
func arcSweep(start, end float64, clockwise bool) float64 {
	sweep := end - start
	if clockwise {
		if sweep < 0 {
			sweep += 2 * math.Pi
		}
	} else {
		if sweep > 0 {
			sweep -= 2 * math.Pi
		}
	}
	return sweep
}

// flattenArc samples a circular arc into a polyline. The angular step is
// chosen so the chords stay within the flattening tolerance.
func flattenArc(a ArcTo, tol float64) []Point {
	r := a.Radius
	if r <= 0 {
		return nil
	}
	sweep := arcSweep(a.Start, a.End, a.Clockwise)

	// Chord sagitta s = r*(1-cos(step/2)) <= tol.
	maxStep := 2 * math.Acos(math.Max(-1, 1-tol/r))
	if maxStep <= 0 || math.IsNaN(maxStep) {
		maxStep = math.Pi / 8
	}
	steps := int(math.Ceil(math.Abs(sweep) / maxStep))
	if steps < 4 {
		steps = 4
	}

	pts := make([]Point, 0, steps+1)
	for i := 0; i <= steps; i++ {
		t := a.Start + sweep*float64(i)/float64(steps)
		pts = append(pts, Pt(a.Center.X+r*math.Cos(t), a.Center.Y+r*math.Sin(t)))
	}
	return pts
}

// distanceToLine calculates the perpendicular distance from point p to
// line segment (a, b).
func distanceToLine(p, a, b Point) float64 {
	ab := b.Sub(a)
	abLen := ab.Length()

	if abLen < 1e-10 {
		return p.Distance(a)
	}

	ap := p.Sub(a)
	t := ap.Dot(ab) / (abLen * abLen)

	if t < 0 {
		return p.Distance(a)
	}
	if t > 1 {
		return p.Distance(b)
	}

	closest := a.Add(ab.Mul(t))
	return p.Distance(closest)
}

// transformSubpaths maps flattened geometry through m in place.
func transformSubpaths(subpaths []subpath, m Matrix) {
	if m.IsIdentity() {
		return
	}
	for _, sp := range subpaths {
		for i, pt := range sp.points {
			sp.points[i] = m.TransformPoint(pt)
		}
	}
}
