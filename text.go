package osd

import (
	"math"
	"unicode"

	"github.com/gogpu/osd/internal/blend"
)

// TextAnchor positions text relative to the reference point. The zero
// value centers on both axes; flags combine one vertical and one
// horizontal choice.
type TextAnchor uint32

const (
	AnchorCenter TextAnchor = 0
	AnchorTop    TextAnchor = 1 << 0
	AnchorBottom TextAnchor = 1 << 1
	AnchorLeft   TextAnchor = 1 << 2
	AnchorRight  TextAnchor = 1 << 3
)

// textLayout measures a single line: total advance width (with letter
// spacing between glyphs), line height and ascent.
func textLayout(face Face, text string, size, spacing float64) (width, height, ascent float64) {
	count := 0
	for _, r := range text {
		if unicode.IsControl(r) {
			continue
		}
		adv, ok := face.Advance(r, size)
		if !ok {
			continue
		}
		width += adv
		count++
	}
	if count > 1 {
		width += spacing * float64(count-1)
	}
	m := face.Metrics(size)
	return width, m.Height, m.Ascent
}

// anchorOrigin converts the reference point into the left edge and
// baseline of the rendered line. Conflicting flags (both Top and
// Bottom, or both Left and Right) fall back to centering on that axis.
func anchorOrigin(anchor TextAnchor, x, y, width, height, ascent float64) (float64, float64) {
	left := anchor&AnchorLeft != 0
	right := anchor&AnchorRight != 0
	switch {
	case left && !right:
		// x unchanged
	case right && !left:
		x -= width
	default:
		x -= width / 2
	}

	top := anchor&AnchorTop != 0
	bottom := anchor&AnchorBottom != 0
	switch {
	case top && !bottom:
		y += ascent
	case bottom && !top:
		y += ascent - height
	default:
		y += ascent - height/2
	}
	return x, y
}

// DrawText renders a single line of text with the reference point (x, y)
// placed according to anchor. Spacing is extra distance between glyphs.
// Text ignores the CTM; coordinates are device pixels. Returns false
// when the face produced no metrics.
func (fb *Framebuffer) DrawText(face Face, size float64, text string, x, y float64, anchor TextAnchor, c Color, spacing float64) bool {
	if face == nil || text == "" || size <= 0 {
		return false
	}
	width, height, ascent := textLayout(face, text, size, spacing)
	if height == 0 && ascent == 0 {
		return false
	}
	penX, baseY := anchorOrigin(anchor, x, y, width, height, ascent)

	src := premul(c)
	for _, r := range text {
		if unicode.IsControl(r) {
			continue
		}
		g, ok := face.Glyph(r, size)
		if !ok {
			continue
		}
		gx := int(math.Floor(penX)) + g.OffsetX
		gy := int(math.Floor(baseY)) + g.OffsetY
		fb.drawGlyph(g, gx, gy, src)
		penX += g.Advance + spacing
	}
	return true
}

// drawGlyph blends one glyph bitmap at (gx, gy). With anti-aliasing off
// the coverage is thresholded to keep edges hard.
func (fb *Framebuffer) drawGlyph(g Glyph, gx, gy int, src blend.RGBA) {
	for row := 0; row < g.Height; row++ {
		for col := 0; col < g.Width; col++ {
			cov := g.Bitmap[row*g.Width+col]
			if cov == 0 {
				continue
			}
			if !fb.antialias {
				if cov < 128 {
					continue
				}
				cov = 255
			}
			fb.blendPixel(gx+col, gy+row, src, cov)
		}
	}
}

// MeasureString returns the exact rendered width of a line of text in
// pixels.
func MeasureString(face Face, size float64, text string, spacing float64) float64 {
	if face == nil {
		return 0
	}
	w, _, _ := textLayout(face, text, size, spacing)
	return w
}
