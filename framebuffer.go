package osd

import (
	"errors"
	"math"

	"github.com/gogpu/osd/internal/blend"
	"github.com/gogpu/osd/internal/raster"
)

var (
	// ErrInvalidDimensions is returned when a framebuffer is created
	// with a non-positive width or height.
	ErrInvalidDimensions = errors.New("osd: invalid framebuffer dimensions")
	// ErrInvalidBuffer is returned when the pixel slice does not hold
	// exactly width*height*4 bytes.
	ErrInvalidBuffer = errors.New("osd: pixel buffer size mismatch")
)

// BlendMode selects how drawing composites source pixels onto the
// framebuffer.
type BlendMode uint8

const (
	// BlendOver is standard source-over alpha compositing.
	BlendOver BlendMode = iota
	// BlendSource replaces destination pixels, alpha included.
	BlendSource
)

// gstate is one saved entry of the graphics state stack.
type gstate struct {
	ctm       Matrix
	clip      *raster.Mask
	antialias bool
}

// Framebuffer draws into a caller-owned premultiplied RGBA pixel slice.
// The buffer layout is row-major, 4 bytes per pixel. A Framebuffer is
// not safe for concurrent use; callers coordinate access themselves
// (the handle-level API adds its own locking).
type Framebuffer struct {
	pix    []byte
	width  int
	height int

	ctm       Matrix
	clip      *raster.Mask // nil when unclipped
	antialias bool
	stack     []gstate

	ras   *raster.Rasterizer
	cover *raster.Mask
}

// NewFramebuffer wraps pix, which must hold exactly width*height*4
// bytes of premultiplied RGBA data. The framebuffer keeps the slice;
// the caller keeps ownership of the memory.
func NewFramebuffer(pix []byte, width, height int) (*Framebuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(pix) != width*height*4 {
		return nil, ErrInvalidBuffer
	}
	return &Framebuffer{
		pix:       pix,
		width:     width,
		height:    height,
		ctm:       Identity(),
		antialias: true,
		ras:       raster.NewRasterizer(width, height),
		cover:     raster.NewMask(width, height),
	}, nil
}

// Width returns the framebuffer width in pixels.
func (fb *Framebuffer) Width() int { return fb.width }

// Height returns the framebuffer height in pixels.
func (fb *Framebuffer) Height() int { return fb.height }

// Pixels returns the underlying premultiplied RGBA slice.
func (fb *Framebuffer) Pixels() []byte { return fb.pix }

// SetCTM replaces the current transformation matrix.
func (fb *Framebuffer) SetCTM(m Matrix) { fb.ctm = m }

// CTM returns the current transformation matrix.
func (fb *Framebuffer) CTM() Matrix { return fb.ctm }

// SetAntiAlias toggles anti-aliased rasterization.
func (fb *Framebuffer) SetAntiAlias(enabled bool) { fb.antialias = enabled }

// AntiAlias reports whether anti-aliasing is enabled.
func (fb *Framebuffer) AntiAlias() bool { return fb.antialias }

// PushState saves the CTM, clip and anti-alias flag onto the graphics
// state stack. The current values stay in effect until changed.
func (fb *Framebuffer) PushState() {
	var clip *raster.Mask
	if fb.clip != nil {
		clip = fb.clip.Clone()
	}
	fb.stack = append(fb.stack, gstate{ctm: fb.ctm, clip: clip, antialias: fb.antialias})
}

// PopState restores the most recently pushed state. Popping an empty
// stack is a no-op.
func (fb *Framebuffer) PopState() {
	n := len(fb.stack)
	if n == 0 {
		Logger().Debug("gstate pop on empty stack")
		return
	}
	s := fb.stack[n-1]
	fb.stack = fb.stack[:n-1]
	fb.ctm = s.ctm
	fb.clip = s.clip
	fb.antialias = s.antialias
}

// ResetClip removes the clip mask.
func (fb *Framebuffer) ResetClip() { fb.clip = nil }

// AddClip intersects the clip region with the path's filled area under
// the current CTM. Drawing outside the accumulated clip has no effect.
func (fb *Framebuffer) AddClip(p *Path) {
	subs := p.flatten(fb.userTolerance())
	transformSubpaths(subs, fb.ctm)
	mask := raster.NewMask(fb.width, fb.height)
	fb.ras.Fill(mask, ringsOf(subs), fillRuleOf(p.FillRule), fb.antialias)
	if fb.clip != nil {
		mask.Intersect(fb.clip)
	}
	fb.clip = mask
}

// --- whole-buffer and pixel operations ---

// Fill replaces every pixel with the color, ignoring clip and CTM.
func (fb *Framebuffer) Fill(c Color) {
	src := premul(c)
	for off := 0; off < len(fb.pix); off += 4 {
		fb.pix[off+0] = src.R
		fb.pix[off+1] = src.G
		fb.pix[off+2] = src.B
		fb.pix[off+3] = src.A
	}
}

// FillOver composites the color over every pixel, ignoring clip and CTM.
func (fb *Framebuffer) FillOver(c Color) {
	src := premul(c)
	if src.A == 255 {
		fb.Fill(c)
		return
	}
	for off := 0; off < len(fb.pix); off += 4 {
		blend.Over(fb.pix, off, src, 255)
	}
}

// SetPixel stores the color at (x, y), replacing the previous pixel.
// Out-of-bounds coordinates are ignored.
func (fb *Framebuffer) SetPixel(x, y int, c Color) {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return
	}
	src := premul(c)
	off := (y*fb.width + x) * 4
	fb.pix[off+0] = src.R
	fb.pix[off+1] = src.G
	fb.pix[off+2] = src.B
	fb.pix[off+3] = src.A
}

// Pixel returns the color at (x, y) with un-premultiplied channels.
// Out-of-bounds coordinates return Transparent.
func (fb *Framebuffer) Pixel(x, y int) Color {
	if x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return Transparent
	}
	off := (y*fb.width + x) * 4
	r, g, b, a := blend.Unpremultiply(blend.RGBA{
		R: fb.pix[off+0], G: fb.pix[off+1], B: fb.pix[off+2], A: fb.pix[off+3],
	})
	return ColorRGBA(r, g, b, a)
}

// --- line and rectangle primitives ---

// DrawLine draws a one-pixel line between integer pixel coordinates.
// The CTM is not applied; endpoints are pinned to pixel centers.
func (fb *Framebuffer) DrawLine(x0, y0, x1, y1 int, c Color, mode BlendMode) {
	p := NewPath()
	p.MoveTo(float64(x0)+0.5, float64(y0)+0.5)
	p.LineTo(float64(x1)+0.5, float64(y1)+0.5)
	style := DefaultStrokeStyle()
	fb.strokeFlattened(p, style, Identity(), c, mode)
}

// StrokeLine strokes a line with the given width, cap and join under
// the current CTM.
func (fb *Framebuffer) StrokeLine(x0, y0, x1, y1 float64, style StrokeStyle, c Color, mode BlendMode) {
	p := NewPath()
	p.MoveTo(x0, y0)
	p.LineTo(x1, y1)
	fb.strokeFlattened(p, style, fb.ctm, c, mode)
}

// HLine fills a one-pixel-high horizontal run. Aliased, CTM ignored.
func (fb *Framebuffer) HLine(x, y, w int, c Color, mode BlendMode) {
	fb.fillDeviceRect(float64(x), float64(y), float64(w), 1, c, mode)
}

// VLine fills a one-pixel-wide vertical run. Aliased, CTM ignored.
func (fb *Framebuffer) VLine(x, y, h int, c Color, mode BlendMode) {
	fb.fillDeviceRect(float64(x), float64(y), 1, float64(h), c, mode)
}

// DrawRect draws a one-pixel rectangle outline from the four edge runs.
// Aliased, CTM ignored.
func (fb *Framebuffer) DrawRect(x, y, w, h int, c Color, mode BlendMode) {
	if w <= 0 || h <= 0 {
		return
	}
	fb.HLine(x, y, w, c, mode)
	fb.HLine(x, y+h-1, w, c, mode)
	fb.VLine(x, y, h, c, mode)
	fb.VLine(x+w-1, y, h, c, mode)
}

// FillRect fills a rectangle under the current CTM.
func (fb *Framebuffer) FillRect(x, y, w, h float64, c Color, mode BlendMode) {
	if w <= 0 || h <= 0 {
		return
	}
	fb.FillPath(NewRectPath(x, y, w, h), c, mode)
}

// StrokeRect strokes a rectangle border of the given width, centered on
// the rectangle's inset edge so the border stays inside (x, y, w, h).
func (fb *Framebuffer) StrokeRect(x, y, w, h, width float64, join LineJoin, c Color, mode BlendMode) {
	half := width / 2
	iw := maxf(w-width, 0)
	ih := maxf(h-width, 0)
	p := NewRectPath(x+half, y+half, iw, ih)
	style := DefaultStrokeStyle()
	style.Width = width
	style.Join = join
	fb.strokeFlattened(p, style, fb.ctm, c, mode)
}

// fillDeviceRect fills an axis-aligned device-space rectangle without
// anti-aliasing or CTM, matching the raw span primitives.
func (fb *Framebuffer) fillDeviceRect(x, y, w, h float64, c Color, mode BlendMode) {
	if w <= 0 || h <= 0 {
		return
	}
	ring := []raster.Point{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}
	fb.cover.Reset()
	fb.ras.Fill(fb.cover, [][]raster.Point{ring}, raster.FillRuleNonZero, false)
	fb.compositeCover(c, mode)
}

// --- rounded rects, circles, ellipses ---

// DrawRoundedRect draws a one-pixel rounded rectangle outline. CTM
// ignored, outline pinned to pixel centers.
func (fb *Framebuffer) DrawRoundedRect(x, y, w, h, radius int, c Color, mode BlendMode) {
	p := NewRoundedRectPath(float64(x)+0.5, float64(y)+0.5, float64(w)-1, float64(h)-1, float64(radius))
	fb.strokeFlattened(p, DefaultStrokeStyle(), Identity(), c, mode)
}

// FillRoundedRect fills a rounded rectangle under the current CTM.
func (fb *Framebuffer) FillRoundedRect(x, y, w, h, radius float64, c Color, mode BlendMode) {
	fb.FillPath(NewRoundedRectPath(x, y, w, h, radius), c, mode)
}

// StrokeRoundedRect strokes a rounded rectangle border of width bw,
// inset so the border stays inside the given bounds.
func (fb *Framebuffer) StrokeRoundedRect(x, y, w, h, radius, bw float64, join LineJoin, c Color, mode BlendMode) {
	half := bw / 2
	p := NewRoundedRectPath(x+half, y+half, maxf(w-bw, 0), maxf(h-bw, 0), maxf(radius-half, 0))
	style := DefaultStrokeStyle()
	style.Width = bw
	style.Join = join
	fb.strokeFlattened(p, style, fb.ctm, c, mode)
}

// DrawCircle draws a one-pixel circle outline centered on a pixel
// center. CTM ignored.
func (fb *Framebuffer) DrawCircle(cx, cy, r int, c Color, mode BlendMode) {
	if r <= 0 {
		return
	}
	fr := float64(r)
	p := NewOvalPath(float64(cx)+0.5-fr, float64(cy)+0.5-fr, 2*fr, 2*fr)
	fb.strokeFlattened(p, DefaultStrokeStyle(), Identity(), c, mode)
}

// FillCircle fills a circle under the current CTM.
func (fb *Framebuffer) FillCircle(cx, cy, r float64, c Color, mode BlendMode) {
	if r <= 0 {
		return
	}
	fb.FillPath(NewOvalPath(cx-r, cy-r, 2*r, 2*r), c, mode)
}

// DrawEllipse draws a one-pixel ellipse outline. CTM ignored.
func (fb *Framebuffer) DrawEllipse(cx, cy, rx, ry int, c Color, mode BlendMode) {
	if rx <= 0 || ry <= 0 {
		return
	}
	p := NewOvalPath(float64(cx-rx)+0.5, float64(cy-ry)+0.5, float64(2*rx), float64(2*ry))
	fb.strokeFlattened(p, DefaultStrokeStyle(), Identity(), c, mode)
}

// FillEllipse fills an ellipse under the current CTM.
func (fb *Framebuffer) FillEllipse(cx, cy, rx, ry float64, c Color, mode BlendMode) {
	if rx <= 0 || ry <= 0 {
		return
	}
	fb.FillPath(NewOvalPath(cx-rx, cy-ry, 2*rx, 2*ry), c, mode)
}

// StrokeEllipse strokes an ellipse outline of the given width under the
// current CTM.
func (fb *Framebuffer) StrokeEllipse(cx, cy, rx, ry, width float64, c Color, mode BlendMode) {
	if rx <= 0 || ry <= 0 {
		return
	}
	p := NewOvalPath(cx-rx, cy-ry, 2*rx, 2*ry)
	style := DefaultStrokeStyle()
	style.Width = width
	fb.strokeFlattened(p, style, fb.ctm, c, mode)
}

// DrawEllipseArc draws a one-pixel elliptical arc. Angles are in
// degrees on a clock face: 0 is up, sweeping clockwise from start to
// end. CTM ignored.
func (fb *Framebuffer) DrawEllipseArc(cx, cy, rx, ry int, startDeg, endDeg float64, c Color, mode BlendMode) {
	p := ellipseArcPath(float64(cx), float64(cy), float64(rx), float64(ry), startDeg, endDeg)
	if p == nil {
		return
	}
	fb.strokeFlattened(p, DefaultStrokeStyle(), Identity(), c, mode)
}

// --- path drawing ---

// FillPath fills the path using its fill rule under the current CTM.
func (fb *Framebuffer) FillPath(p *Path, c Color, mode BlendMode) {
	if p == nil || p.IsEmpty() {
		return
	}
	subs := p.flatten(fb.userTolerance())
	transformSubpaths(subs, fb.ctm)
	fb.cover.Reset()
	fb.ras.Fill(fb.cover, ringsOf(subs), fillRuleOf(p.FillRule), fb.antialias)
	fb.compositeCover(c, mode)
}

// StrokePath strokes the path using its stroke attributes under the
// current CTM. Stroke geometry is expanded in user space, so the CTM
// scales stroke width.
func (fb *Framebuffer) StrokePath(p *Path, c Color, mode BlendMode) {
	if p == nil || p.IsEmpty() {
		return
	}
	fb.strokeFlattened(p, p.Stroke, fb.ctm, c, mode)
}

// FillPathData decodes a binary-encoded path and fills it with the
// non-zero rule.
func (fb *Framebuffer) FillPathData(data []byte, c Color, mode BlendMode) {
	if len(data) == 0 {
		return
	}
	fb.FillPath(DecodePath(data), c, mode)
}

// StrokePathData decodes a binary-encoded path and strokes it.
func (fb *Framebuffer) StrokePathData(data []byte, width float64, lineCap LineCap, join LineJoin, c Color, mode BlendMode) {
	if len(data) == 0 {
		return
	}
	p := DecodePath(data)
	p.Stroke.Width = width
	p.Stroke.Cap = lineCap
	p.Stroke.Join = join
	fb.StrokePath(p, c, mode)
}

// strokeFlattened is the shared stroke pipeline: flatten in user space,
// expand the ribbon, transform to device space, fill non-zero.
func (fb *Framebuffer) strokeFlattened(p *Path, style StrokeStyle, m Matrix, c Color, mode BlendMode) {
	if style.Width <= 0 {
		return
	}
	tol := toleranceFor(m)
	contours := expandStroke(p.flatten(tol), style, tol)
	if len(contours) == 0 {
		return
	}
	transformSubpaths(contours, m)
	fb.cover.Reset()
	fb.ras.Fill(fb.cover, ringsOf(contours), raster.FillRuleNonZero, fb.antialias)
	fb.compositeCover(c, mode)
}

// userTolerance is the flattening tolerance in user space: finer when
// the CTM magnifies, so curves stay smooth after transformation.
func (fb *Framebuffer) userTolerance() float64 {
	return toleranceFor(fb.ctm)
}

func toleranceFor(m Matrix) float64 {
	scale := m.MaxScaleFactor()
	if scale < 1e-6 {
		scale = 1e-6
	}
	return defaultFlattenTolerance / scale
}

// compositeCover blends the color through the accumulated coverage in
// fb.cover, modulated by the clip mask.
func (fb *Framebuffer) compositeCover(c Color, mode BlendMode) {
	if fb.clip != nil {
		fb.cover.Intersect(fb.clip)
	}
	src := premul(c)
	if mode == BlendOver && src.A == 0 {
		return
	}
	for y := 0; y < fb.height; y++ {
		row := fb.cover.Row(y)
		base := y * fb.width * 4
		for x, cov := range row {
			if cov == 0 {
				continue
			}
			off := base + x*4
			if mode == BlendSource {
				blend.Source(fb.pix, off, src, cov)
			} else {
				blend.Over(fb.pix, off, src, cov)
			}
		}
	}
}

// blendPixel composites src over a single pixel with the given
// coverage, honoring the clip mask. Used by the glyph blitter.
func (fb *Framebuffer) blendPixel(x, y int, src blend.RGBA, cov byte) {
	if cov == 0 || x < 0 || y < 0 || x >= fb.width || y >= fb.height {
		return
	}
	if fb.clip != nil {
		c := fb.clip.At(x, y)
		if c == 0 {
			return
		}
		if c != 255 {
			cov = byte((uint32(cov)*uint32(c) + 128) * 257 >> 16)
		}
	}
	blend.Over(fb.pix, (y*fb.width+x)*4, src, cov)
}

// --- blit and scroll ---

// Blit copies a straight-alpha RGBA source image onto the framebuffer
// at (dstX, dstY). With over=true the source is composited; otherwise
// it replaces destination pixels. Clip and CTM are not applied.
func (fb *Framebuffer) Blit(src []byte, srcW, srcH, dstX, dstY int, over bool) {
	if srcW <= 0 || srcH <= 0 || len(src) < srcW*srcH*4 {
		return
	}
	x0, y0 := 0, 0
	if dstX < 0 {
		x0 = -dstX
	}
	if dstY < 0 {
		y0 = -dstY
	}
	x1, y1 := srcW, srcH
	if dstX+srcW > fb.width {
		x1 = fb.width - dstX
	}
	if dstY+srcH > fb.height {
		y1 = fb.height - dstY
	}
	for sy := y0; sy < y1; sy++ {
		srcOff := (sy*srcW + x0) * 4
		dstOff := ((dstY+sy)*fb.width + dstX + x0) * 4
		for sx := x0; sx < x1; sx++ {
			p := blend.Premultiply(src[srcOff], src[srcOff+1], src[srcOff+2], src[srcOff+3])
			if over {
				blend.Over(fb.pix, dstOff, p, 255)
			} else {
				blend.Source(fb.pix, dstOff, p, 255)
			}
			srcOff += 4
			dstOff += 4
		}
	}
}

// Scroll shifts the framebuffer content by (dx, dy) pixels. The band
// exposed by the shift is zeroed (transparent black).
func (fb *Framebuffer) Scroll(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	w, h := fb.width, fb.height
	rowSize := w * 4

	if dy != 0 {
		absDy := dy
		if absDy < 0 {
			absDy = -absDy
		}
		if absDy >= h {
			clear(fb.pix)
			return
		}
		if dy > 0 {
			for y := h - 1; y >= absDy; y-- {
				copy(fb.pix[y*rowSize:(y+1)*rowSize], fb.pix[(y-absDy)*rowSize:(y-absDy+1)*rowSize])
			}
			clear(fb.pix[:absDy*rowSize])
		} else {
			for y := 0; y < h-absDy; y++ {
				copy(fb.pix[y*rowSize:(y+1)*rowSize], fb.pix[(y+absDy)*rowSize:(y+absDy+1)*rowSize])
			}
			clear(fb.pix[(h-absDy)*rowSize:])
		}
	}

	if dx != 0 {
		absDx := dx
		if absDx < 0 {
			absDx = -absDx
		}
		shift := absDx * 4
		if shift >= rowSize {
			clear(fb.pix)
			return
		}
		for y := 0; y < h; y++ {
			row := fb.pix[y*rowSize : (y+1)*rowSize]
			if dx > 0 {
				copy(row[shift:], row[:rowSize-shift])
				clear(row[:shift])
			} else {
				copy(row[:rowSize-shift], row[shift:])
				clear(row[rowSize-shift:])
			}
		}
	}
}

// DrawCheckerboard fills the buffer with an opaque gray checkerboard of
// the given tile size. Intended for debugging transparency.
func (fb *Framebuffer) DrawCheckerboard(size int) {
	if size <= 0 {
		return
	}
	for y := 0; y < fb.height; y++ {
		for x := 0; x < fb.width; x++ {
			v := byte(0xCC)
			if ((y/size)+(x/size))&1 == 1 {
				v = 0x99
			}
			off := (y*fb.width + x) * 4
			fb.pix[off+0] = v
			fb.pix[off+1] = v
			fb.pix[off+2] = v
			fb.pix[off+3] = 0xFF
		}
	}
}

// ApplyYUV422Compensation spreads color into transparent neighbors of
// even/odd pixel pairs inside the given rect. Video pipelines that
// subsample chroma horizontally (YUV 4:2:2) otherwise bleed the
// background into single-pixel-wide overlay edges.
func (fb *Framebuffer) ApplyYUV422Compensation(x, y, w, h int) {
	x1 := maxi(x, 0) &^ 1
	x2 := mini(x+w, fb.width) &^ 1
	y1 := maxi(y, 0)
	y2 := mini(y+h, fb.height)
	const fade = 0.2

	for iy := y1; iy < y2; iy++ {
		for ix := x1; ix < x2; ix += 2 {
			i1 := (iy*fb.width + ix) * 4
			i2 := i1 + 4
			a1, a2 := fb.pix[i1+3], fb.pix[i2+3]
			if (a1 == 0) == (a2 == 0) {
				continue
			}
			vi, ti := i1, i2
			if a2 > 0 {
				vi, ti = i2, i1
			}
			fb.pix[ti+0] = fb.pix[vi+0]
			fb.pix[ti+1] = fb.pix[vi+1]
			fb.pix[ti+2] = fb.pix[vi+2]
			fb.pix[ti+3] = byte(float64(fb.pix[vi+3]) * fade)
		}
	}
}

// --- helpers ---

func premul(c Color) blend.RGBA {
	r, g, b, a := c.RGBA()
	return blend.Premultiply(r, g, b, a)
}

func fillRuleOf(r FillRule) raster.FillRule {
	if r == FillRuleEvenOdd {
		return raster.FillRuleEvenOdd
	}
	return raster.FillRuleNonZero
}

// ringsOf converts flattened subpaths to rasterizer rings. Filling
// treats every subpath as closed.
func ringsOf(subs []subpath) [][]raster.Point {
	rings := make([][]raster.Point, 0, len(subs))
	for _, sp := range subs {
		if len(sp.points) < 3 {
			continue
		}
		ring := make([]raster.Point, len(sp.points))
		for i, p := range sp.points {
			ring[i] = raster.Point{X: p.X, Y: p.Y}
		}
		rings = append(rings, ring)
	}
	return rings
}

// ellipseArcPath samples an elliptical arc as a polyline. Angles are
// degrees on a clock face, sweeping clockwise.
func ellipseArcPath(cx, cy, rx, ry, startDeg, endDeg float64) *Path {
	if rx <= 0 || ry <= 0 {
		return nil
	}
	normalize := func(rad float64) float64 {
		rad = math.Mod(rad, 2*math.Pi)
		if rad < 0 {
			rad += 2 * math.Pi
		}
		return rad
	}
	s := normalize(startDeg * math.Pi / 180)
	e := normalize(endDeg * math.Pi / 180)
	sweep := e - s
	if sweep <= 0 {
		sweep += 2 * math.Pi
	}
	steps := int(sweep / 0.05)
	if steps < 8 {
		steps = 8
	}
	p := NewPath()
	for i := 0; i <= steps; i++ {
		t := s + sweep*float64(i)/float64(steps)
		px := cx + rx*math.Sin(t)
		py := cy - ry*math.Cos(t)
		if i == 0 {
			p.MoveTo(px, py)
		} else {
			p.LineTo(px, py)
		}
	}
	return p
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func maxi(a, b int) int {
	if a > b {
		return a
	}
	return b
}

func mini(a, b int) int {
	if a < b {
		return a
	}
	return b
}
