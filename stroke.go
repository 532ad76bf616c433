package osd

import "math"

// Stroke expansion: converts flattened, optionally dashed polylines into
// closed fill contours (offset ribbons with caps and joins). The output
// is always filled with the non-zero winding rule, which also cleans up
// the small self-intersections that inner joins produce.

// expandStroke turns flattened subpaths into closed contours outlining the
// stroke. A non-positive width produces no geometry.
func expandStroke(subpaths []subpath, style StrokeStyle, tol float64) []subpath {
	if style.Width <= 0 {
		return nil
	}
	if len(style.Dash) > 0 {
		subpaths = applyDash(subpaths, style.Dash, style.DashOffset)
	}

	e := &strokeExpander{
		half:       style.Width / 2,
		cap:        style.Cap,
		join:       style.Join,
		miterLimit: style.MiterLimit,
		tol:        tol,
	}
	if e.miterLimit <= 0 {
		e.miterLimit = 4.0
	}
	if e.tol <= 0 {
		e.tol = defaultFlattenTolerance
	}

	var out []subpath
	for _, sp := range subpaths {
		pts := dedupePoints(sp.points)
		closed := sp.closed
		if closed && len(pts) >= 2 && pts[0] == pts[len(pts)-1] {
			pts = pts[:len(pts)-1]
		}
		if len(pts) < 2 {
			// A degenerate dot still gets round/square caps painted.
			if len(pts) == 1 && e.cap != LineCapButt {
				out = append(out, e.dotContour(pts[0]))
			}
			continue
		}
		if closed && len(pts) >= 3 {
			fwd, bwd := e.offsetSides(pts, true)
			out = append(out,
				subpath{points: fwd, closed: true},
				subpath{points: reversePoints(bwd), closed: true})
		} else {
			out = append(out, subpath{points: e.openContour(pts), closed: true})
		}
	}
	return out
}

type strokeExpander struct {
	half       float64
	cap        LineCap
	join       LineJoin
	miterLimit float64
	tol        float64
}

// offsetSides walks the polyline once, producing the offset points on both
// sides with joins applied at interior vertices. For closed polylines the
// wrap-around vertex is joined as well.
func (e *strokeExpander) offsetSides(pts []Point, closed bool) (fwd, bwd []Point) {
	n := len(pts)
	segs := n - 1
	if closed {
		segs = n
	}

	dir := func(i int) Point {
		return pts[(i+1)%n].Sub(pts[i%n]).Normalize()
	}

	d0 := dir(0)
	n0 := d0.Perp().Mul(e.half)
	fwd = append(fwd, pts[0].Sub(n0))
	bwd = append(bwd, pts[0].Add(n0))

	prev := d0
	for i := 0; i < segs; i++ {
		d := dir(i)
		if i > 0 {
			fwd, bwd = e.applyJoin(fwd, bwd, pts[i], prev, d)
		}
		norm := d.Perp().Mul(e.half)
		end := pts[(i+1)%n]
		fwd = append(fwd, end.Sub(norm))
		bwd = append(bwd, end.Add(norm))
		prev = d
	}

	if closed {
		// Join the last segment back onto the first.
		fwd, bwd = e.applyJoin(fwd, bwd, pts[0], prev, d0)
	}
	return fwd, bwd
}

// applyJoin emits join geometry at vertex p between incoming direction d0
// and outgoing direction d1. The outer side (determined by the turn
// direction) gets the configured join; the inner side gets a plain
// connection that the non-zero fill rule resolves.
func (e *strokeExpander) applyJoin(fwd, bwd []Point, p, d0, d1 Point) ([]Point, []Point) {
	cross := d0.Cross(d1)
	dot := d0.Dot(d1)
	if math.Abs(cross) < 1e-12 && dot > 0 {
		return fwd, bwd // straight-through, nothing to join
	}

	n0 := d0.Perp().Mul(e.half)
	n1 := d1.Perp().Mul(e.half)

	join := e.join
	if join == LineJoinMiter && !e.miterWithinLimit(dot) {
		join = LineJoinBevel
	}

	if cross > 0 {
		// Outer side is the forward (negative-normal) contour.
		switch join {
		case LineJoinMiter:
			fwd = append(fwd, e.miterPoint(p, n0.Neg(), n1.Neg(), dot))
		case LineJoinRound:
			fwd = e.appendArcPoints(fwd, p, n0.Neg(), n1.Neg())
		case LineJoinBevel:
			// Offset endpoints alone form the bevel.
		}
		fwd = append(fwd, p.Sub(n1))
		bwd = append(bwd, p.Add(n1))
	} else {
		switch join {
		case LineJoinMiter:
			bwd = append(bwd, e.miterPoint(p, n0, n1, dot))
		case LineJoinRound:
			bwd = e.appendArcPoints(bwd, p, n0, n1)
		case LineJoinBevel:
		}
		bwd = append(bwd, p.Add(n1))
		fwd = append(fwd, p.Sub(n1))
	}
	return fwd, bwd
}

// miterWithinLimit reports whether the miter ratio 1/sin(theta/2) for the
// turn with the given tangent dot product stays within the limit.
func (e *strokeExpander) miterWithinLimit(dot float64) bool {
	// ratio^2 = 2 / (1 + dot) with unit tangents.
	if dot <= -1 {
		return false
	}
	return 2 <= (1+dot)*e.miterLimit*e.miterLimit
}

// miterPoint returns the miter tip for the outer offset vectors v0, v1.
func (e *strokeExpander) miterPoint(p, v0, v1 Point, dot float64) Point {
	bis := v0.Add(v1).Normalize()
	cosHalf := math.Sqrt(math.Max(0, (1+dot)/2))
	if cosHalf < 1e-10 {
		return p.Add(v1) // practically a U-turn, degrade to bevel point
	}
	return p.Add(bis.Mul(e.half / cosHalf))
}

// appendArcPoints samples the arc around center from offset vector v0 to
// v1, sweeping the short way, and appends the interior and end samples.
func (e *strokeExpander) appendArcPoints(out []Point, center, v0, v1 Point) []Point {
	sweep := math.Atan2(v0.Cross(v1), v0.Dot(v1))
	return e.appendArcSweep(out, center, v0, sweep)
}

// appendArcSweep samples an arc of the given signed sweep starting at
// offset vector v0 around center.
func (e *strokeExpander) appendArcSweep(out []Point, center, v0 Point, sweep float64) []Point {
	r := v0.Length()
	if r < 1e-10 || sweep == 0 {
		return out
	}
	maxStep := 2 * math.Acos(math.Max(-1, 1-e.tol/r))
	if maxStep <= 0 || math.IsNaN(maxStep) {
		maxStep = math.Pi / 8
	}
	steps := int(math.Ceil(math.Abs(sweep) / maxStep))
	if steps < 2 {
		steps = 2
	}
	a0 := math.Atan2(v0.Y, v0.X)
	for i := 1; i <= steps; i++ {
		a := a0 + sweep*float64(i)/float64(steps)
		out = append(out, Pt(center.X+r*math.Cos(a), center.Y+r*math.Sin(a)))
	}
	return out
}

// openContour builds the single closed contour for an open polyline:
// forward side, end cap, reversed backward side, start cap.
func (e *strokeExpander) openContour(pts []Point) []Point {
	fwd, bwd := e.offsetSides(pts, false)
	n := len(pts)
	dEnd := pts[n-1].Sub(pts[n-2]).Normalize()
	dStart := pts[1].Sub(pts[0]).Normalize()
	nEnd := dEnd.Perp().Mul(e.half)
	nStart := dStart.Perp().Mul(e.half)

	contour := fwd
	contour = e.appendCap(contour, pts[n-1], nEnd.Neg(), dEnd)
	contour = append(contour, reversePoints(bwd)...)
	contour = e.appendCap(contour, pts[0], nStart, dStart.Neg())
	return contour
}

// appendCap emits cap geometry at an endpoint. v0 is the offset vector of
// the contour point just emitted; the cap ends at center-v0 on the other
// side. outward is the direction pointing away from the polyline.
func (e *strokeExpander) appendCap(out []Point, center, v0, outward Point) []Point {
	switch e.cap {
	case LineCapRound:
		sweep := math.Pi
		if v0.Cross(outward) < 0 {
			sweep = -math.Pi
		}
		return e.appendArcSweep(out, center, v0, sweep)
	case LineCapSquare:
		ext := outward.Mul(e.half)
		out = append(out, center.Add(v0).Add(ext))
		out = append(out, center.Sub(v0).Add(ext))
		return append(out, center.Sub(v0))
	default: // butt
		return append(out, center.Sub(v0))
	}
}

// dotContour paints an isolated point as a filled circle (round cap) or
// square (square cap) of the stroke width.
func (e *strokeExpander) dotContour(p Point) subpath {
	h := e.half
	if e.cap == LineCapSquare {
		return subpath{
			points: []Point{
				Pt(p.X-h, p.Y-h), Pt(p.X+h, p.Y-h),
				Pt(p.X+h, p.Y+h), Pt(p.X-h, p.Y+h),
			},
			closed: true,
		}
	}
	var pts []Point
	pts = append(pts, Pt(p.X+h, p.Y))
	pts = e.appendArcSweep(pts, p, Pt(h, 0), math.Pi)
	pts = e.appendArcSweep(pts, p, Pt(-h, 0), math.Pi)
	return subpath{points: pts, closed: true}
}

// dedupePoints drops consecutive duplicate points.
func dedupePoints(pts []Point) []Point {
	if len(pts) < 2 {
		return pts
	}
	out := pts[:1]
	for _, p := range pts[1:] {
		if p.Sub(out[len(out)-1]).LengthSquared() > 1e-20 {
			out = append(out, p)
		}
	}
	return out
}

func reversePoints(pts []Point) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}
