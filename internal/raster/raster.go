package raster

import (
	"math"
	"sort"
)

// FillRule selects how overlapping contours resolve interior regions.
type FillRule uint8

const (
	// FillRuleNonZero fills where the winding number is non-zero.
	FillRuleNonZero FillRule = iota
	// FillRuleEvenOdd fills where the crossing count is odd.
	FillRuleEvenOdd
)

// Point is a device-space coordinate.
type Point struct {
	X, Y float64
}

// subsamples is the vertical supersampling factor for anti-aliasing.
// Horizontal coverage is computed exactly from span overlap, so 4
// vertical subsamples give 1/4-pixel vertical and continuous horizontal
// precision.
const subsamples = 4

// edge is a monotonic-in-y line segment prepared for scanline tests.
// y0 < y1 always holds; dir records the original winding direction.
type edge struct {
	x0, y0 float64
	x1, y1 float64
	dxdy   float64
	dir    int
}

type crossing struct {
	x   float64
	dir int
}

// Rasterizer converts closed polygonal rings into coverage. It reuses
// its scratch buffers across calls, so a single Rasterizer must not be
// shared between goroutines.
type Rasterizer struct {
	width  int
	height int

	edges []edge
	cross []crossing
	acc   []uint32
}

// NewRasterizer returns a rasterizer for a target of the given size.
func NewRasterizer(width, height int) *Rasterizer {
	return &Rasterizer{
		width:  width,
		height: height,
		acc:    make([]uint32, max(width, 0)),
	}
}

// Fill rasterizes the rings into dst, which must match the rasterizer's
// dimensions. Every ring is treated as closed: an implicit edge connects
// its last point back to its first. Coverage is combined with any
// existing mask content by maximum, so multiple Fill calls accumulate.
func (r *Rasterizer) Fill(dst *Mask, rings [][]Point, rule FillRule, antialias bool) {
	if dst == nil || dst.width != r.width || dst.height != r.height {
		return
	}
	r.buildEdges(rings)
	if len(r.edges) == 0 {
		return
	}

	yMin, yMax := r.edgeYBounds()
	if yMin >= r.height || yMax <= 0 {
		return
	}
	if yMin < 0 {
		yMin = 0
	}
	if yMax > r.height {
		yMax = r.height
	}

	if antialias {
		r.fillAA(dst, yMin, yMax, rule)
	} else {
		r.fillAliased(dst, yMin, yMax, rule)
	}
}

// buildEdges converts rings to the internal edge list, dropping
// horizontal edges which never cross a scanline.
func (r *Rasterizer) buildEdges(rings [][]Point) {
	r.edges = r.edges[:0]
	for _, ring := range rings {
		n := len(ring)
		if n < 3 {
			continue
		}
		for i := 0; i < n; i++ {
			p0 := ring[i]
			p1 := ring[(i+1)%n]
			if math.Abs(p1.Y-p0.Y) < 1e-9 {
				continue
			}
			e := edge{x0: p0.X, y0: p0.Y, x1: p1.X, y1: p1.Y, dir: 1}
			if e.y0 > e.y1 {
				e.x0, e.x1 = e.x1, e.x0
				e.y0, e.y1 = e.y1, e.y0
				e.dir = -1
			}
			e.dxdy = (e.x1 - e.x0) / (e.y1 - e.y0)
			r.edges = append(r.edges, e)
		}
	}
}

func (r *Rasterizer) edgeYBounds() (int, int) {
	yMin := math.MaxFloat64
	yMax := -math.MaxFloat64
	for _, e := range r.edges {
		yMin = math.Min(yMin, e.y0)
		yMax = math.Max(yMax, e.y1)
	}
	return int(math.Floor(yMin)), int(math.Ceil(yMax))
}

// crossingsAt collects the x positions where edges cross the horizontal
// line at y, sorted ascending.
func (r *Rasterizer) crossingsAt(y float64) []crossing {
	r.cross = r.cross[:0]
	for _, e := range r.edges {
		if e.y0 <= y && y < e.y1 {
			x := e.x0 + (y-e.y0)*e.dxdy
			r.cross = append(r.cross, crossing{x: x, dir: e.dir})
		}
	}
	sort.Slice(r.cross, func(i, j int) bool { return r.cross[i].x < r.cross[j].x })
	return r.cross
}

// spans walks the sorted crossings and invokes fn for every interior
// span according to the fill rule.
func spans(cross []crossing, rule FillRule, fn func(x1, x2 float64)) {
	if rule == FillRuleNonZero {
		winding := 0
		var x1 float64
		for _, c := range cross {
			if winding == 0 {
				x1 = c.x
			}
			winding += c.dir
			if winding == 0 {
				fn(x1, c.x)
			}
		}
		return
	}
	for i := 0; i+1 < len(cross); i += 2 {
		fn(cross[i].x, cross[i+1].x)
	}
}

// fillAA accumulates fractional coverage per pixel row from subsample
// scanlines, then resolves the row into dst.
func (r *Rasterizer) fillAA(dst *Mask, yMin, yMax int, rule FillRule) {
	for y := yMin; y < yMax; y++ {
		acc := r.acc[:r.width]
		for i := range acc {
			acc[i] = 0
		}
		hit := false

		for s := 0; s < subsamples; s++ {
			scanY := float64(y) + (float64(s)+0.5)/subsamples
			cross := r.crossingsAt(scanY)
			if len(cross) == 0 {
				continue
			}
			spans(cross, rule, func(x1, x2 float64) {
				if x1 > x2 {
					x1, x2 = x2, x1
				}
				if x1 < 0 {
					x1 = 0
				}
				if x2 > float64(r.width) {
					x2 = float64(r.width)
				}
				if x1 >= x2 {
					return
				}
				hit = true
				px0 := int(x1)
				px1 := int(math.Ceil(x2))
				for px := px0; px < px1; px++ {
					lo := math.Max(float64(px), x1)
					hi := math.Min(float64(px+1), x2)
					if hi > lo {
						acc[px] += uint32((hi - lo) * 255)
					}
				}
			})
		}
		if !hit {
			continue
		}

		row := dst.Row(y)
		for x, a := range acc {
			v := byte(min(a/subsamples, 255))
			if v > row[x] {
				row[x] = v
			}
		}
	}
}

// fillAliased samples each pixel at its center: coverage is all or
// nothing.
func (r *Rasterizer) fillAliased(dst *Mask, yMin, yMax int, rule FillRule) {
	for y := yMin; y < yMax; y++ {
		cross := r.crossingsAt(float64(y) + 0.5)
		if len(cross) == 0 {
			continue
		}
		row := dst.Row(y)
		spans(cross, rule, func(x1, x2 float64) {
			if x1 > x2 {
				x1, x2 = x2, x1
			}
			// A pixel is inside when its center falls in [x1, x2).
			px0 := int(math.Ceil(x1 - 0.5))
			px1 := int(math.Ceil(x2 - 0.5))
			if px0 < 0 {
				px0 = 0
			}
			if px1 > r.width {
				px1 = r.width
			}
			for px := px0; px < px1; px++ {
				row[px] = 255
			}
		})
	}
}
