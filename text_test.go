package osd

import (
	"math"
	"testing"
)

// fakeFace is a deterministic Face: every glyph is a solid 1x1 pixel
// sitting one pixel above the baseline, advancing 10 pixels.
type fakeFace struct{}

func (fakeFace) Metrics(size float64) FontMetrics {
	return FontMetrics{Ascent: 8, Descent: -2, LineGap: 0, Height: 10}
}

func (fakeFace) Advance(r rune, size float64) (float64, bool) {
	return 10, true
}

func (fakeFace) Glyph(r rune, size float64) (Glyph, bool) {
	return Glyph{
		Bitmap:  []byte{255},
		Width:   1,
		Height:  1,
		OffsetX: 0,
		OffsetY: -1,
		Advance: 10,
	}, true
}

func TestTextLayout(t *testing.T) {
	w, h, asc := textLayout(fakeFace{}, "abc", 12, 2)
	if w != 34 {
		t.Errorf("width = %g, want 34 (3 advances + 2 spacings)", w)
	}
	if h != 10 || asc != 8 {
		t.Errorf("height, ascent = %g, %g, want 10, 8", h, asc)
	}
}

// sparseFace is a fakeFace with no glyph for 'x'.
type sparseFace struct{ fakeFace }

func (f sparseFace) Advance(r rune, size float64) (float64, bool) {
	if r == 'x' {
		return 0, false
	}
	return f.fakeFace.Advance(r, size)
}

func (f sparseFace) Glyph(r rune, size float64) (Glyph, bool) {
	if r == 'x' {
		return Glyph{}, false
	}
	return f.fakeFace.Glyph(r, size)
}

func TestTextLayoutSkipsMissingGlyphs(t *testing.T) {
	// A rune the face cannot advance contributes neither width nor
	// letter spacing, so measurement matches what drawing paints.
	w, _, _ := textLayout(sparseFace{}, "axb", 12, 5)
	if w != 25 {
		t.Errorf("width = %g, want 25 (two advances + one spacing)", w)
	}
}

func TestTextLayoutSkipsControlRunes(t *testing.T) {
	w, _, _ := textLayout(fakeFace{}, "a\nb", 12, 0)
	if w != 20 {
		t.Errorf("width = %g, want 20 (control rune skipped)", w)
	}
}

func TestAnchorOrigin(t *testing.T) {
	const (
		width  = 30.0
		height = 10.0
		ascent = 8.0
	)
	tests := []struct {
		name   string
		anchor TextAnchor
		wantX  float64
		wantY  float64
	}{
		{"top left", AnchorTop | AnchorLeft, 100, 58},
		{"top right", AnchorTop | AnchorRight, 70, 58},
		{"bottom left", AnchorBottom | AnchorLeft, 100, 48},
		{"center", AnchorCenter, 85, 53},
		{"left only centers vertically", AnchorLeft, 100, 53},
		{"top only centers horizontally", AnchorTop, 85, 58},
		{"conflicting flags center", AnchorTop | AnchorBottom | AnchorLeft | AnchorRight, 85, 53},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := anchorOrigin(tt.anchor, 100, 50, width, height, ascent)
			if math.Abs(x-tt.wantX) > 1e-9 || math.Abs(y-tt.wantY) > 1e-9 {
				t.Errorf("origin = (%g, %g), want (%g, %g)", x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestDrawTextPlacesGlyphs(t *testing.T) {
	fb := newTestFB(t, 32, 16)
	ok := fb.DrawText(fakeFace{}, 12, "ab", 0, 0, AnchorTop|AnchorLeft, White, 0)
	if !ok {
		t.Fatal("DrawText returned false")
	}

	// Baseline sits at y = ascent = 8; the glyph is one pixel above it.
	if got := fb.Pixel(0, 7); got != White {
		t.Errorf("first glyph pixel = %08X, want white", uint32(got))
	}
	if got := fb.Pixel(10, 7); got != White {
		t.Errorf("second glyph pixel = %08X, want white", uint32(got))
	}
	if got := fb.Pixel(5, 7); got != Transparent {
		t.Errorf("gap between glyphs painted: %08X", uint32(got))
	}
}

func TestDrawTextRespectsClip(t *testing.T) {
	fb := newTestFB(t, 32, 16)
	fb.AddClip(NewRectPath(0, 0, 5, 16))
	fb.DrawText(fakeFace{}, 12, "ab", 0, 0, AnchorTop|AnchorLeft, White, 0)

	if got := fb.Pixel(0, 7); got != White {
		t.Errorf("clipped-in glyph missing: %08X", uint32(got))
	}
	if got := fb.Pixel(10, 7); got != Transparent {
		t.Errorf("glyph outside clip painted: %08X", uint32(got))
	}
}

func TestDrawTextRejectsBadInput(t *testing.T) {
	fb := newTestFB(t, 8, 8)
	if fb.DrawText(nil, 12, "x", 0, 0, AnchorCenter, White, 0) {
		t.Error("nil face accepted")
	}
	if fb.DrawText(fakeFace{}, 12, "", 0, 0, AnchorCenter, White, 0) {
		t.Error("empty string accepted")
	}
	if fb.DrawText(fakeFace{}, 0, "x", 0, 0, AnchorCenter, White, 0) {
		t.Error("zero size accepted")
	}
}

func TestMeasureString(t *testing.T) {
	if got := MeasureString(fakeFace{}, 12, "abcd", 1); got != 43 {
		t.Errorf("MeasureString = %g, want 43", got)
	}
	if got := MeasureString(nil, 12, "abcd", 0); got != 0 {
		t.Errorf("nil face measured %g, want 0", got)
	}
}
