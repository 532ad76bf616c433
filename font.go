package osd

import (
	"fmt"
	"image"
	"os"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// FontMetrics describes a face's vertical extents at a given size, in
// pixels. Ascent is positive above the baseline, Descent negative below
// it. Height is the recommended line height: ascent - descent + gap.
type FontMetrics struct {
	Ascent  float64
	Descent float64
	LineGap float64
	Height  float64
}

// Glyph is a rasterized character: a tightly cropped alpha bitmap plus
// placement relative to the pen position on the baseline.
type Glyph struct {
	// Bitmap holds Width*Height coverage bytes, row-major.
	Bitmap []byte
	Width  int
	Height int
	// OffsetX and OffsetY place the bitmap's top-left corner relative
	// to the pen point. OffsetY is typically negative (above the
	// baseline).
	OffsetX int
	OffsetY int
	// Advance is the pen movement after this glyph, before extra
	// letter spacing.
	Advance float64
}

// Face produces glyphs and metrics for text rendering. Implementations
// must be safe for concurrent use.
type Face interface {
	Metrics(size float64) FontMetrics
	Glyph(r rune, size float64) (Glyph, bool)
	Advance(r rune, size float64) (float64, bool)
}

// OpenTypeFace renders an OpenType/TrueType font via
// golang.org/x/image/font/opentype. Sized faces are cached and guarded
// by a mutex, since the underlying rasterizer is not concurrent.
type OpenTypeFace struct {
	fnt *opentype.Font

	mu    sync.Mutex
	sized map[float64]font.Face
}

// NewOpenTypeFace parses OpenType font data.
func NewOpenTypeFace(data []byte) (*OpenTypeFace, error) {
	fnt, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("osd: parse font: %w", err)
	}
	return &OpenTypeFace{fnt: fnt, sized: make(map[float64]font.Face)}, nil
}

// LoadFontFile reads and parses a font file.
func LoadFontFile(path string) (*OpenTypeFace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("osd: load font: %w", err)
	}
	return NewOpenTypeFace(data)
}

// faceAt returns the cached sized face. Callers must hold f.mu for the
// whole use of the returned face.
func (f *OpenTypeFace) faceAt(size float64) font.Face {
	face, ok := f.sized[size]
	if !ok {
		var err error
		face, err = opentype.NewFace(f.fnt, &opentype.FaceOptions{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			Logger().Warn("sized face creation failed", "size", size, "error", err)
			return nil
		}
		f.sized[size] = face
	}
	return face
}

// Metrics implements Face.
func (f *OpenTypeFace) Metrics(size float64) FontMetrics {
	f.mu.Lock()
	defer f.mu.Unlock()
	face := f.faceAt(size)
	if face == nil {
		return FontMetrics{}
	}
	m := face.Metrics()
	ascent := fixedToFloat(m.Ascent)
	descent := -fixedToFloat(m.Descent)
	gap := fixedToFloat(m.Height) - (ascent - descent)
	if gap < 0 {
		gap = 0
	}
	return FontMetrics{
		Ascent:  ascent,
		Descent: descent,
		LineGap: gap,
		Height:  ascent - descent + gap,
	}
}

// Advance implements Face.
func (f *OpenTypeFace) Advance(r rune, size float64) (float64, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	face := f.faceAt(size)
	if face == nil {
		return 0, false
	}
	adv, ok := face.GlyphAdvance(r)
	if !ok {
		return 0, false
	}
	return fixedToFloat(adv), true
}

// Glyph implements Face.
func (f *OpenTypeFace) Glyph(r rune, size float64) (Glyph, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	face := f.faceAt(size)
	if face == nil {
		return Glyph{}, false
	}
	dr, mask, maskp, adv, ok := face.Glyph(fixed.Point26_6{}, r)
	if !ok {
		return Glyph{}, false
	}
	g := Glyph{
		Width:   dr.Dx(),
		Height:  dr.Dy(),
		OffsetX: dr.Min.X,
		OffsetY: dr.Min.Y,
		Advance: fixedToFloat(adv),
	}
	if g.Width <= 0 || g.Height <= 0 {
		g.Width, g.Height = 0, 0
		return g, true
	}
	g.Bitmap = make([]byte, g.Width*g.Height)
	copyAlpha(g.Bitmap, g.Width, g.Height, mask, maskp)
	return g, true
}

// copyAlpha extracts coverage bytes from a glyph mask image.
func copyAlpha(dst []byte, w, h int, mask image.Image, maskp image.Point) {
	if alpha, ok := mask.(*image.Alpha); ok {
		for y := 0; y < h; y++ {
			src := alpha.Pix[(maskp.Y+y-alpha.Rect.Min.Y)*alpha.Stride+(maskp.X-alpha.Rect.Min.X):]
			copy(dst[y*w:(y+1)*w], src[:w])
		}
		return
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			_, _, _, a := mask.At(maskp.X+x, maskp.Y+y).RGBA()
			dst[y*w+x] = byte(a >> 8)
		}
	}
}

func fixedToFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
