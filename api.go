package osd

import (
	"math"
	"sync"

	"golang.org/x/image/font/gofont/goregular"
)

// Handle-level API. Objects live in process-wide registries and are
// addressed by opaque int32 handles, so the engine can sit behind
// bindings that cannot share Go pointers. Operations on invalid or
// stale handles are no-ops; queries return zero values or -1.

type fbEntry struct {
	mu sync.Mutex
	fb *Framebuffer
}

type pathEntry struct {
	mu sync.Mutex
	p  *Path
}

var (
	framebuffers registry[*fbEntry]
	pathHandles  registry[*pathEntry]
	transforms   registry[Matrix]
	fontHandles  registry[Face]
)

func withFB(h int32, f func(*Framebuffer)) {
	e, ok := framebuffers.lookup(h)
	if !ok {
		Logger().Debug("invalid framebuffer handle", "handle", h)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	f(e.fb)
}

func withPath(h int32, f func(*Path)) {
	e, ok := pathHandles.lookup(h)
	if !ok {
		Logger().Debug("invalid path handle", "handle", h)
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	f(e.p)
}

// snapshotPath copies the path under its lock so drawing can proceed
// without holding two entry locks at once.
func snapshotPath(h int32) (*Path, bool) {
	var clone *Path
	withPath(h, func(p *Path) { clone = p.Clone() })
	if clone == nil {
		return nil, false
	}
	return clone, true
}

// --- framebuffer lifecycle ---

// CreateFrameBuffer wraps a caller-owned premultiplied RGBA buffer and
// returns its handle, or InvalidHandle when the dimensions or buffer
// size are invalid.
func CreateFrameBuffer(pix []byte, width, height int) int32 {
	fb, err := NewFramebuffer(pix, width, height)
	if err != nil {
		Logger().Warn("framebuffer creation failed", "width", width, "height", height, "error", err)
		return InvalidHandle
	}
	return framebuffers.insert(&fbEntry{fb: fb})
}

// DestroyFrameBuffer releases the handle. The pixel memory stays with
// the caller.
func DestroyFrameBuffer(h int32) {
	framebuffers.remove(h)
}

// --- whole-buffer, pixel and primitive drawing ---

// Fill replaces every pixel with the color.
func Fill(h int32, c Color) {
	withFB(h, func(fb *Framebuffer) { fb.Fill(c) })
}

// FillOver composites the color over every pixel.
func FillOver(h int32, c Color) {
	withFB(h, func(fb *Framebuffer) { fb.FillOver(c) })
}

// SetPixel stores a single pixel.
func SetPixel(h int32, x, y int, c Color) {
	withFB(h, func(fb *Framebuffer) { fb.SetPixel(x, y, c) })
}

// GetPixel reads a pixel as an un-premultiplied color. Out-of-bounds or
// invalid handles return Transparent.
func GetPixel(h int32, x, y int) Color {
	var c Color
	withFB(h, func(fb *Framebuffer) { c = fb.Pixel(x, y) })
	return c
}

// Line draws a one-pixel line between integer coordinates.
func Line(h int32, x0, y0, x1, y1 int, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.DrawLine(x0, y0, x1, y1, c, mode) })
}

// LineStroke strokes a line with width, cap and join under the CTM.
func LineStroke(h int32, x0, y0, x1, y1, width float64, lineCap LineCap, join LineJoin, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) {
		style := DefaultStrokeStyle()
		style.Width = width
		style.Cap = lineCap
		style.Join = join
		fb.StrokeLine(x0, y0, x1, y1, style, c, mode)
	})
}

// HLine fills a one-pixel-high horizontal run.
func HLine(h int32, x, y, w int, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.HLine(x, y, w, c, mode) })
}

// VLine fills a one-pixel-wide vertical run.
func VLine(h int32, x, y, hh int, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.VLine(x, y, hh, c, mode) })
}

// Rect draws a one-pixel rectangle outline.
func Rect(h int32, x, y, w, hh int, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.DrawRect(x, y, w, hh, c, mode) })
}

// FillRect fills a rectangle under the CTM.
func FillRect(h int32, x, y, w, hh float64, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.FillRect(x, y, w, hh, c, mode) })
}

// RectStroke strokes a rectangle border of the given width, kept inside
// the rectangle bounds.
func RectStroke(h int32, x, y, w, hh, width float64, join LineJoin, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.StrokeRect(x, y, w, hh, width, join, c, mode) })
}

// RoundedRect draws a one-pixel rounded rectangle outline.
func RoundedRect(h int32, x, y, w, hh, radius int, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.DrawRoundedRect(x, y, w, hh, radius, c, mode) })
}

// FillRoundedRect fills a rounded rectangle under the CTM.
func FillRoundedRect(h int32, x, y, w, hh, radius float64, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.FillRoundedRect(x, y, w, hh, radius, c, mode) })
}

// StrokeRoundedRect strokes a rounded rectangle border of width bw.
func StrokeRoundedRect(h int32, x, y, w, hh, radius, bw float64, join LineJoin, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.StrokeRoundedRect(x, y, w, hh, radius, bw, join, c, mode) })
}

// Circle draws a one-pixel circle outline.
func Circle(h int32, cx, cy, r int, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.DrawCircle(cx, cy, r, c, mode) })
}

// FillCircle fills a circle under the CTM.
func FillCircle(h int32, cx, cy, r float64, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.FillCircle(cx, cy, r, c, mode) })
}

// Ellipse draws a one-pixel ellipse outline.
func Ellipse(h int32, cx, cy, rx, ry int, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.DrawEllipse(cx, cy, rx, ry, c, mode) })
}

// FillEllipse fills an ellipse under the CTM.
func FillEllipse(h int32, cx, cy, rx, ry float64, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.FillEllipse(cx, cy, rx, ry, c, mode) })
}

// EllipseStroke strokes an ellipse outline of the given width.
func EllipseStroke(h int32, cx, cy, rx, ry, width float64, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.StrokeEllipse(cx, cy, rx, ry, width, c, mode) })
}

// EllipseArc draws a one-pixel elliptical arc. Angles are degrees on a
// clock face, sweeping clockwise from start to end.
func EllipseArc(h int32, cx, cy, rx, ry int, startDeg, endDeg float64, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.DrawEllipseArc(cx, cy, rx, ry, startDeg, endDeg, c, mode) })
}

// FillPath fills a binary-encoded path with the non-zero rule.
func FillPath(h int32, data []byte, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.FillPathData(data, c, mode) })
}

// StrokePath strokes a binary-encoded path.
func StrokePath(h int32, data []byte, width float64, lineCap LineCap, join LineJoin, c Color, mode BlendMode) {
	withFB(h, func(fb *Framebuffer) { fb.StrokePathData(data, width, lineCap, join, c, mode) })
}

// BlitRGBA copies a straight-alpha RGBA image onto the framebuffer at
// (dstX, dstY); over selects compositing instead of replacement.
func BlitRGBA(h int32, src []byte, srcW, srcH, dstX, dstY int, over bool) {
	withFB(h, func(fb *Framebuffer) { fb.Blit(src, srcW, srcH, dstX, dstY, over) })
}

// Scroll shifts framebuffer content, zeroing the exposed band.
func Scroll(h int32, dx, dy int) {
	withFB(h, func(fb *Framebuffer) { fb.Scroll(dx, dy) })
}

// SetAntiAlias toggles anti-aliased rasterization.
func SetAntiAlias(h int32, enabled bool) {
	withFB(h, func(fb *Framebuffer) { fb.SetAntiAlias(enabled) })
}

// GetAntiAlias reports whether anti-aliasing is enabled. Invalid
// handles report false.
func GetAntiAlias(h int32) bool {
	var aa bool
	withFB(h, func(fb *Framebuffer) { aa = fb.AntiAlias() })
	return aa
}

// SetCTM replaces the current transformation matrix.
func SetCTM(h int32, a, b, c, d, tx, ty float64) {
	withFB(h, func(fb *Framebuffer) {
		fb.SetCTM(Matrix{A: a, B: b, C: c, D: d, TX: tx, TY: ty})
	})
}

// ApplyYUV422Compensation spreads overlay color into transparent
// neighbor pixels inside the rect for chroma-subsampled video targets.
func ApplyYUV422Compensation(h int32, x, y, w, hh int) {
	withFB(h, func(fb *Framebuffer) { fb.ApplyYUV422Compensation(x, y, w, hh) })
}

// DrawCheckerBoard fills the buffer with a gray checkerboard.
func DrawCheckerBoard(h int32, size int) {
	withFB(h, func(fb *Framebuffer) { fb.DrawCheckerboard(size) })
}

// GStatePush saves the CTM and clip onto the state stack.
func GStatePush(h int32) {
	withFB(h, func(fb *Framebuffer) { fb.PushState() })
}

// GStatePop restores the most recently saved CTM and clip.
func GStatePop(h int32) {
	withFB(h, func(fb *Framebuffer) { fb.PopState() })
}

// --- transforms ---

// CreateTransform stores a matrix and returns its handle.
func CreateTransform(a, b, c, d, tx, ty float64) int32 {
	return transforms.insert(Matrix{A: a, B: b, C: c, D: d, TX: tx, TY: ty})
}

// DestroyTransform releases a transform handle.
func DestroyTransform(h int32) {
	transforms.remove(h)
}

// TransformRotation creates a rotation matrix (radians).
func TransformRotation(radians float64) int32 {
	return transforms.insert(Rotate(radians))
}

// TransformScale creates a scaling matrix.
func TransformScale(sx, sy float64) int32 {
	return transforms.insert(Scale(sx, sy))
}

// TransformTranslation creates a translation matrix.
func TransformTranslation(tx, ty float64) int32 {
	return transforms.insert(Translate(tx, ty))
}

// TransformConcat creates the product a·b (b applied first) and returns
// its handle, or InvalidHandle when either input is invalid.
func TransformConcat(ha, hb int32) int32 {
	ma, ok := transforms.lookup(ha)
	if !ok {
		return InvalidHandle
	}
	mb, ok := transforms.lookup(hb)
	if !ok {
		return InvalidHandle
	}
	return transforms.insert(Concat(ma, mb))
}

// TransformInvert creates the inverse matrix, or returns InvalidHandle
// when the input is missing or singular.
func TransformInvert(h int32) int32 {
	m, ok := transforms.lookup(h)
	if !ok {
		return InvalidHandle
	}
	inv, ok := m.Invert()
	if !ok {
		return InvalidHandle
	}
	return transforms.insert(inv)
}

// TransformGet returns the matrix behind a handle.
func TransformGet(h int32) (Matrix, bool) {
	return transforms.lookup(h)
}

// --- paths ---

// CreatePath returns a handle to a new empty path with default
// attributes.
func CreatePath() int32 {
	return pathHandles.insert(&pathEntry{p: NewPath()})
}

// DestroyPath releases a path handle.
func DestroyPath(h int32) {
	pathHandles.remove(h)
}

// PathMoveTo starts a new subpath at (x, y).
func PathMoveTo(h int32, x, y float64) {
	withPath(h, func(p *Path) { p.MoveTo(x, y) })
}

// PathLineTo appends a line segment.
func PathLineTo(h int32, x, y float64) {
	withPath(h, func(p *Path) { p.LineTo(x, y) })
}

// PathAddCurve appends a cubic Bezier segment.
func PathAddCurve(h int32, c1x, c1y, c2x, c2y, x, y float64) {
	withPath(h, func(p *Path) { p.CubicTo(c1x, c1y, c2x, c2y, x, y) })
}

// PathAddQuadCurve appends a quadratic Bezier segment.
func PathAddQuadCurve(h int32, cx, cy, x, y float64) {
	withPath(h, func(p *Path) { p.QuadraticTo(cx, cy, x, y) })
}

// PathAddArc appends a circular arc as a new subpath.
func PathAddArc(h int32, cx, cy, r, start, end float64, clockwise bool) {
	withPath(h, func(p *Path) { p.Arc(cx, cy, r, start, end, clockwise) })
}

// PathClose closes the current subpath.
func PathClose(h int32) {
	withPath(h, func(p *Path) { p.Close() })
}

// PathAppend copies src's elements onto dst. The paths do not alias
// afterwards.
func PathAppend(dst, src int32) {
	sp, ok := snapshotPath(src)
	if !ok {
		return
	}
	withPath(dst, func(p *Path) { p.Append(sp) })
}

// PathRect creates a rectangle path.
func PathRect(x, y, w, h float64) int32 {
	return pathHandles.insert(&pathEntry{p: NewRectPath(x, y, w, h)})
}

// PathOval creates an oval path inscribed in the rect.
func PathOval(x, y, w, h float64) int32 {
	return pathHandles.insert(&pathEntry{p: NewOvalPath(x, y, w, h)})
}

// PathRoundedRect creates a rounded rectangle path.
func PathRoundedRect(x, y, w, h, r float64) int32 {
	return pathHandles.insert(&pathEntry{p: NewRoundedRectPath(x, y, w, h, r)})
}

// PathSetLineWidth sets the stroke width attribute.
func PathSetLineWidth(h int32, width float64) {
	withPath(h, func(p *Path) { p.Stroke.Width = width })
}

// PathSetLineCap sets the stroke cap attribute.
func PathSetLineCap(h int32, lineCap LineCap) {
	withPath(h, func(p *Path) { p.Stroke.Cap = lineCap })
}

// PathSetLineJoin sets the stroke join attribute.
func PathSetLineJoin(h int32, join LineJoin) {
	withPath(h, func(p *Path) { p.Stroke.Join = join })
}

// PathSetLineDash sets the dash intervals and phase. An empty interval
// list disables dashing.
func PathSetLineDash(h int32, intervals []float64, phase float64) {
	withPath(h, func(p *Path) {
		p.Stroke.Dash = append([]float64(nil), intervals...)
		p.Stroke.DashOffset = phase
	})
}

// PathSetEoFillRule switches between even-odd (true) and non-zero
// winding (false).
func PathSetEoFillRule(h int32, evenOdd bool) {
	withPath(h, func(p *Path) {
		if evenOdd {
			p.FillRule = FillRuleEvenOdd
		} else {
			p.FillRule = FillRuleNonZero
		}
	})
}

// PathFill fills the path onto the framebuffer using the path's fill
// rule, the framebuffer's CTM and clip.
func PathFill(fbH, pathH int32, c Color, mode BlendMode) {
	p, ok := snapshotPath(pathH)
	if !ok {
		return
	}
	withFB(fbH, func(fb *Framebuffer) { fb.FillPath(p, c, mode) })
}

// PathStroke strokes the path onto the framebuffer using the path's
// stroke attributes.
func PathStroke(fbH, pathH int32, c Color, mode BlendMode) {
	p, ok := snapshotPath(pathH)
	if !ok {
		return
	}
	withFB(fbH, func(fb *Framebuffer) { fb.StrokePath(p, c, mode) })
}

// PathHitTest reports whether (x, y) is inside the path's filled area
// under its fill rule.
func PathHitTest(pathH int32, x, y float64) bool {
	var hit bool
	withPath(pathH, func(p *Path) { hit = p.HitTest(x, y) })
	return hit
}

// PathGetBounds returns the path's conservative bounding box.
func PathGetBounds(pathH int32) (x, y, w, h float64, ok bool) {
	withPath(pathH, func(p *Path) { x, y, w, h, ok = p.Bounds() })
	return
}

// PathAddClip intersects the framebuffer's clip region with the path's
// filled area under the current CTM.
func PathAddClip(fbH, pathH int32) {
	p, ok := snapshotPath(pathH)
	if !ok {
		return
	}
	withFB(fbH, func(fb *Framebuffer) { fb.AddClip(p) })
}

// --- fonts and text ---

var defaultFont struct {
	mu     sync.Mutex
	handle int32
}

// RegisterFont parses OpenType font data and returns its handle, or
// InvalidHandle when the data cannot be parsed.
func RegisterFont(data []byte) int32 {
	face, err := NewOpenTypeFace(data)
	if err != nil {
		Logger().Warn("font registration failed", "error", err)
		return InvalidHandle
	}
	return fontHandles.insert(face)
}

// LoadFont reads and registers a font file.
func LoadFont(path string) int32 {
	face, err := LoadFontFile(path)
	if err != nil {
		Logger().Warn("font load failed", "path", path, "error", err)
		return InvalidHandle
	}
	return fontHandles.insert(face)
}

// RegisterFace stores any Face implementation and returns its handle.
func RegisterFace(face Face) int32 {
	if face == nil {
		return InvalidHandle
	}
	return fontHandles.insert(face)
}

// UnloadFont releases a font handle. The built-in default font can be
// unloaded like any other.
func UnloadFont(h int32) bool {
	_, ok := fontHandles.remove(h)
	return ok
}

// GetDefaultFont returns the handle of the built-in face (Go Regular),
// registering it on first use. If the default font was unloaded, the
// next call registers it again under a fresh handle.
func GetDefaultFont() int32 {
	defaultFont.mu.Lock()
	defer defaultFont.mu.Unlock()
	if _, ok := fontHandles.lookup(defaultFont.handle); ok {
		return defaultFont.handle
	}
	defaultFont.handle = RegisterFont(goregular.TTF)
	return defaultFont.handle
}

// GetFontCount returns the number of registered fonts.
func GetFontCount() int {
	return fontHandles.count()
}

// GetFontIDs returns the handles of all registered fonts.
func GetFontIDs() []int32 {
	return fontHandles.handles()
}

// DrawText renders a line of text anchored at (x, y). A fontH below 1
// selects the default font. Returns false when the framebuffer or font
// handle is invalid.
func DrawText(fbH, fontH int32, size float64, text string, x, y float64, anchor TextAnchor, c Color, spacing float64) bool {
	if fontH < 1 {
		fontH = GetDefaultFont()
	}
	face, ok := fontHandles.lookup(fontH)
	if !ok {
		return false
	}
	drawn := false
	withFB(fbH, func(fb *Framebuffer) {
		drawn = fb.DrawText(face, size, text, x, y, anchor, c, spacing)
	})
	return drawn
}

// MeasureText returns the rendered width of text in pixels, rounded to
// the nearest integer. Invalid handles measure zero.
func MeasureText(fontH int32, size float64, text string, spacing float64) int {
	face, ok := fontHandles.lookup(fontH)
	if !ok {
		return 0
	}
	return int(math.Round(MeasureString(face, size, text, spacing)))
}

// GetTextMetrics returns the face's rounded ascent, descent and line
// height at the given size.
func GetTextMetrics(fontH int32, size float64) (ascent, descent, height int, ok bool) {
	face, found := fontHandles.lookup(fontH)
	if !found {
		return 0, 0, 0, false
	}
	m := face.Metrics(size)
	if m.Ascent == 0 && m.Height == 0 {
		return 0, 0, 0, false
	}
	return int(math.Round(m.Ascent)), int(math.Round(m.Descent)), int(math.Round(m.Height)), true
}

// GetTextHeight returns the face's rounded line height at the given
// size, or -1 when unavailable.
func GetTextHeight(fontH int32, size float64) int {
	_, _, h, ok := GetTextMetrics(fontH, size)
	if !ok {
		return -1
	}
	return h
}
