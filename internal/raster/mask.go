// Package raster provides scanline rasterization of flattened path
// geometry into per-pixel coverage masks.
package raster

// Mask is a per-pixel coverage buffer. Each byte holds coverage in
// [0, 255], where 0 means fully outside and 255 fully inside.
type Mask struct {
	width  int
	height int
	pix    []byte
}

// NewMask returns an all-zero coverage mask of the given size.
func NewMask(width, height int) *Mask {
	if width <= 0 || height <= 0 {
		return &Mask{}
	}
	return &Mask{
		width:  width,
		height: height,
		pix:    make([]byte, width*height),
	}
}

// Width returns the mask width in pixels.
func (m *Mask) Width() int { return m.width }

// Height returns the mask height in pixels.
func (m *Mask) Height() int { return m.height }

// At returns the coverage at (x, y). Out-of-bounds coordinates have zero
// coverage.
func (m *Mask) At(x, y int) byte {
	if x < 0 || y < 0 || x >= m.width || y >= m.height {
		return 0
	}
	return m.pix[y*m.width+x]
}

// Row returns the coverage row at y, or nil if y is out of bounds.
func (m *Mask) Row(y int) []byte {
	if y < 0 || y >= m.height {
		return nil
	}
	return m.pix[y*m.width : (y+1)*m.width]
}

// Reset zeroes all coverage.
func (m *Mask) Reset() {
	for i := range m.pix {
		m.pix[i] = 0
	}
}

// Clone returns an independent copy of the mask.
func (m *Mask) Clone() *Mask {
	c := &Mask{width: m.width, height: m.height}
	if len(m.pix) > 0 {
		c.pix = make([]byte, len(m.pix))
		copy(c.pix, m.pix)
	}
	return c
}

// Intersect multiplies this mask's coverage by other's, in place. The
// masks must have equal dimensions; mismatched sizes leave m untouched.
func (m *Mask) Intersect(other *Mask) {
	if other == nil || other.width != m.width || other.height != m.height {
		return
	}
	for i, v := range m.pix {
		o := other.pix[i]
		switch {
		case o == 0:
			m.pix[i] = 0
		case o == 255:
			// unchanged
		default:
			t := uint32(v)*uint32(o) + 128
			m.pix[i] = byte((t + t>>8) >> 8)
		}
	}
}
