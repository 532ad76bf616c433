package osd

import (
	"math"
	"testing"
)

func createTestFB(t *testing.T, w, h int) int32 {
	t.Helper()
	fb := CreateFrameBuffer(make([]byte, w*h*4), w, h)
	if fb == InvalidHandle {
		t.Fatal("CreateFrameBuffer failed")
	}
	t.Cleanup(func() { DestroyFrameBuffer(fb) })
	return fb
}

func TestCreateFrameBufferInvalid(t *testing.T) {
	if h := CreateFrameBuffer(make([]byte, 64), 0, 4); h != InvalidHandle {
		t.Errorf("zero width accepted, handle %d", h)
	}
	if h := CreateFrameBuffer(make([]byte, 10), 4, 4); h != InvalidHandle {
		t.Errorf("short buffer accepted, handle %d", h)
	}
}

func TestDestroyedFrameBufferIsInert(t *testing.T) {
	fb := CreateFrameBuffer(make([]byte, 64), 4, 4)
	DestroyFrameBuffer(fb)

	// Operations on a dead handle must not panic and queries return
	// zero values.
	Fill(fb, White)
	SetPixel(fb, 1, 1, White)
	if got := GetPixel(fb, 1, 1); got != Transparent {
		t.Errorf("dead handle pixel = %08X, want transparent", uint32(got))
	}
	if GetAntiAlias(fb) {
		t.Error("dead handle reports anti-aliasing on")
	}
}

func TestDrawThroughHandles(t *testing.T) {
	fb := createTestFB(t, 8, 8)
	Fill(fb, Black)
	FillRect(fb, 2, 2, 4, 4, White, BlendOver)

	if got := GetPixel(fb, 3, 3); got != White {
		t.Errorf("inside = %08X, want white", uint32(got))
	}
	if got := GetPixel(fb, 0, 0); got != Black {
		t.Errorf("outside = %08X, want black", uint32(got))
	}
}

func TestSetCTMThroughHandle(t *testing.T) {
	fb := createTestFB(t, 8, 8)
	GStatePush(fb)
	SetCTM(fb, 1, 0, 0, 1, 4, 4)
	FillRect(fb, 0, 0, 2, 2, White, BlendOver)
	GStatePop(fb)

	if got := GetPixel(fb, 4, 4); got != White {
		t.Errorf("translated pixel = %08X, want white", uint32(got))
	}
	FillRect(fb, 0, 0, 1, 1, Red, BlendOver)
	if got := GetPixel(fb, 0, 0); got != Red {
		t.Errorf("post-pop pixel = %08X, want red", uint32(got))
	}
}

func TestTransformHandles(t *testing.T) {
	rot := TransformRotation(math.Pi / 2)
	tr := TransformTranslation(10, 0)
	t.Cleanup(func() {
		DestroyTransform(rot)
		DestroyTransform(tr)
	})

	combined := TransformConcat(tr, rot)
	if combined == InvalidHandle {
		t.Fatal("concat of valid transforms failed")
	}
	t.Cleanup(func() { DestroyTransform(combined) })

	m, ok := TransformGet(combined)
	if !ok {
		t.Fatal("TransformGet failed")
	}
	// Rotation applied first, then translation: (1, 0) -> (0, 1) -> (10, 1).
	got := m.TransformPoint(Pt(1, 0))
	if math.Abs(got.X-10) > 1e-9 || math.Abs(got.Y-1) > 1e-9 {
		t.Errorf("concat maps (1,0) to %v, want (10, 1)", got)
	}
}

func TestTransformConcatInvalidOperand(t *testing.T) {
	tr := TransformTranslation(1, 2)
	t.Cleanup(func() { DestroyTransform(tr) })

	if h := TransformConcat(tr, InvalidHandle); h != InvalidHandle {
		t.Errorf("concat with invalid operand returned %d", h)
	}
	if h := TransformConcat(InvalidHandle, tr); h != InvalidHandle {
		t.Errorf("concat with invalid operand returned %d", h)
	}
}

func TestTransformInvert(t *testing.T) {
	tr := CreateTransform(2, 0, 0, 2, 6, 8)
	t.Cleanup(func() { DestroyTransform(tr) })

	inv := TransformInvert(tr)
	if inv == InvalidHandle {
		t.Fatal("invert of invertible matrix failed")
	}
	t.Cleanup(func() { DestroyTransform(inv) })

	m, _ := TransformGet(inv)
	got := m.TransformPoint(Pt(8, 10))
	if math.Abs(got.X-1) > 1e-9 || math.Abs(got.Y-1) > 1e-9 {
		t.Errorf("inverse maps (8,10) to %v, want (1, 1)", got)
	}

	singular := CreateTransform(0, 0, 0, 0, 1, 2)
	t.Cleanup(func() { DestroyTransform(singular) })
	if h := TransformInvert(singular); h != InvalidHandle {
		t.Errorf("invert of singular matrix returned %d", h)
	}
}

func TestPathHandleOperations(t *testing.T) {
	p := CreatePath()
	t.Cleanup(func() { DestroyPath(p) })

	PathMoveTo(p, 1, 1)
	PathLineTo(p, 9, 1)
	PathLineTo(p, 9, 9)
	PathLineTo(p, 1, 9)
	PathClose(p)

	x, y, w, h, ok := PathGetBounds(p)
	if !ok || x != 1 || y != 1 || w != 8 || h != 8 {
		t.Errorf("bounds = %g %g %g %g %v, want 1 1 8 8 true", x, y, w, h, ok)
	}
	if !PathHitTest(p, 5, 5) {
		t.Error("interior point missed")
	}
	if PathHitTest(p, 20, 20) {
		t.Error("exterior point hit")
	}
}

func TestPathAppendThroughHandles(t *testing.T) {
	a := PathRect(0, 0, 2, 2)
	b := PathRect(10, 10, 2, 2)
	t.Cleanup(func() {
		DestroyPath(a)
		DestroyPath(b)
	})

	PathAppend(a, b)
	x, y, w, h, ok := PathGetBounds(a)
	if !ok || x != 0 || y != 0 || w != 12 || h != 12 {
		t.Errorf("appended bounds = %g %g %g %g %v", x, y, w, h, ok)
	}

	// Mutating the source afterwards must not affect the destination.
	PathLineTo(b, 100, 100)
	if _, _, w, _, _ := PathGetBounds(a); w != 12 {
		t.Error("appended path aliases its source")
	}
}

func TestPathFillThroughHandles(t *testing.T) {
	fb := createTestFB(t, 8, 8)
	p := PathRect(2, 2, 4, 4)
	t.Cleanup(func() { DestroyPath(p) })

	PathFill(fb, p, White, BlendOver)
	if got := GetPixel(fb, 3, 3); got != White {
		t.Errorf("filled pixel = %08X, want white", uint32(got))
	}
	if got := GetPixel(fb, 7, 7); got != Transparent {
		t.Errorf("outside pixel = %08X", uint32(got))
	}
}

func TestPathStrokeThroughHandles(t *testing.T) {
	fb := createTestFB(t, 16, 16)
	p := PathRect(4, 4, 8, 8)
	t.Cleanup(func() { DestroyPath(p) })

	PathSetLineWidth(p, 2)
	PathStroke(fb, p, White, BlendOver)
	if got := GetPixel(fb, 4, 8); got != White {
		t.Errorf("border pixel = %08X, want white", uint32(got))
	}
	if got := GetPixel(fb, 8, 8); got != Transparent {
		t.Errorf("interior painted: %08X", uint32(got))
	}
}

func TestPathAddClipThroughHandles(t *testing.T) {
	fb := createTestFB(t, 8, 8)
	clip := PathRect(0, 0, 4, 8)
	t.Cleanup(func() { DestroyPath(clip) })

	PathAddClip(fb, clip)
	FillRect(fb, 0, 0, 8, 8, Red, BlendOver)
	if got := GetPixel(fb, 2, 2); got != Red {
		t.Errorf("inside clip = %08X, want red", uint32(got))
	}
	if got := GetPixel(fb, 6, 2); got != Transparent {
		t.Errorf("outside clip painted: %08X", uint32(got))
	}
}

func TestDestroyedPathIsInert(t *testing.T) {
	p := CreatePath()
	DestroyPath(p)

	PathLineTo(p, 5, 5)
	if _, _, _, _, ok := PathGetBounds(p); ok {
		t.Error("destroyed path reports bounds")
	}
	if PathHitTest(p, 0, 0) {
		t.Error("destroyed path reports hits")
	}
}

func TestEncodedPathThroughHandles(t *testing.T) {
	fb := createTestFB(t, 8, 8)
	src := NewRectPath(2, 2, 4, 4)
	FillPath(fb, EncodePath(src), White, BlendOver)
	if got := GetPixel(fb, 3, 3); got != White {
		t.Errorf("encoded fill pixel = %08X, want white", uint32(got))
	}
}

func TestDefaultFont(t *testing.T) {
	font := GetDefaultFont()
	if font == InvalidHandle {
		t.Fatal("default font unavailable")
	}
	if h := GetTextHeight(font, 16); h <= 0 {
		t.Errorf("default font text height = %d, want > 0", h)
	}
	asc, desc, height, ok := GetTextMetrics(font, 16)
	if !ok {
		t.Fatal("GetTextMetrics failed")
	}
	if asc <= 0 || desc >= 0 || height < asc-desc {
		t.Errorf("metrics asc=%d desc=%d height=%d look wrong", asc, desc, height)
	}
}

func TestDefaultFontSurvivesUnload(t *testing.T) {
	first := GetDefaultFont()
	if first == InvalidHandle {
		t.Fatal("default font unavailable")
	}
	if !UnloadFont(first) {
		t.Fatal("unloading the default font failed")
	}

	// The next request registers a fresh default instead of failing
	// forever.
	second := GetDefaultFont()
	if second == InvalidHandle {
		t.Fatal("default font not re-registered after unload")
	}
	if second == first {
		t.Error("stale handle returned for re-registered default font")
	}
	if h := GetTextHeight(second, 16); h <= 0 {
		t.Errorf("re-registered default font text height = %d", h)
	}
}

func TestRegisterFontGarbage(t *testing.T) {
	if h := RegisterFont([]byte("not a font")); h != InvalidHandle {
		t.Errorf("garbage font data accepted, handle %d", h)
	}
}

func TestRegisterFaceAndMeasure(t *testing.T) {
	font := RegisterFace(fakeFace{})
	if font == InvalidHandle {
		t.Fatal("RegisterFace failed")
	}
	t.Cleanup(func() { UnloadFont(font) })

	if got := MeasureText(font, 12, "abc", 2); got != 34 {
		t.Errorf("MeasureText = %d, want 34", got)
	}
	if got := MeasureText(InvalidHandle, 12, "abc", 0); got != 0 {
		t.Errorf("invalid handle measured %d, want 0", got)
	}
	if got := GetTextHeight(font, 12); got != 10 {
		t.Errorf("GetTextHeight = %d, want 10", got)
	}
}

func TestRegisterFaceNil(t *testing.T) {
	if h := RegisterFace(nil); h != InvalidHandle {
		t.Errorf("nil face accepted, handle %d", h)
	}
}

func TestFontRegistryQueries(t *testing.T) {
	before := GetFontCount()
	font := RegisterFace(fakeFace{})
	if GetFontCount() != before+1 {
		t.Error("count did not grow")
	}
	found := false
	for _, id := range GetFontIDs() {
		if id == font {
			found = true
		}
	}
	if !found {
		t.Error("registered font missing from GetFontIDs")
	}
	if !UnloadFont(font) {
		t.Error("UnloadFont failed")
	}
	if UnloadFont(font) {
		t.Error("double unload succeeded")
	}
	if GetFontCount() != before {
		t.Error("count did not shrink")
	}
}

func TestDrawTextThroughHandles(t *testing.T) {
	fb := createTestFB(t, 32, 16)
	font := RegisterFace(fakeFace{})
	t.Cleanup(func() { UnloadFont(font) })

	if !DrawText(fb, font, 12, "ab", 0, 0, AnchorTop|AnchorLeft, White, 0) {
		t.Fatal("DrawText returned false")
	}
	if got := GetPixel(fb, 0, 7); got != White {
		t.Errorf("glyph pixel = %08X, want white", uint32(got))
	}
}

func TestDrawTextDefaultFontPaints(t *testing.T) {
	fb := createTestFB(t, 64, 32)
	if !DrawText(fb, 0, 16, "Hi", 2, 2, AnchorTop|AnchorLeft, White, 0) {
		t.Fatal("DrawText with default font returned false")
	}
	painted := false
	for y := 0; y < 32 && !painted; y++ {
		for x := 0; x < 64; x++ {
			if GetPixel(fb, x, y) != Transparent {
				painted = true
				break
			}
		}
	}
	if !painted {
		t.Error("default-font text painted nothing")
	}
}
