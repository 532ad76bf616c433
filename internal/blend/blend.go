// Package blend implements pixel compositing on premultiplied RGBA
// buffers.
package blend

// RGBA is a premultiplied color: each channel is already scaled by the
// alpha.
type RGBA struct {
	R, G, B, A uint8
}

// mul8 multiplies two bytes treated as fractions of 255, with rounding.
func mul8(a, b uint8) uint8 {
	t := uint32(a)*uint32(b) + 128
	return uint8((t + t>>8) >> 8)
}

// lerp8 interpolates from a to b by t/255.
func lerp8(a, b, t uint8) uint8 {
	return uint8(int32(a) + (int32(b)-int32(a))*int32(t)/255)
}

// Over composites src over the premultiplied pixel at pix[off:off+4],
// modulated by cov. With full coverage and opaque src this reduces to a
// plain store.
func Over(pix []byte, off int, src RGBA, cov uint8) {
	if cov == 0 {
		return
	}
	sr, sg, sb, sa := src.R, src.G, src.B, src.A
	if cov != 255 {
		sr = mul8(sr, cov)
		sg = mul8(sg, cov)
		sb = mul8(sb, cov)
		sa = mul8(sa, cov)
	}
	if sa == 255 {
		pix[off+0] = sr
		pix[off+1] = sg
		pix[off+2] = sb
		pix[off+3] = 255
		return
	}
	inv := 255 - sa
	pix[off+0] = sr + mul8(pix[off+0], inv)
	pix[off+1] = sg + mul8(pix[off+1], inv)
	pix[off+2] = sb + mul8(pix[off+2], inv)
	pix[off+3] = sa + mul8(pix[off+3], inv)
}

// Source replaces the destination pixel with src, interpolated by cov.
// Unlike Over, the destination alpha is replaced as well, so drawing a
// transparent color punches a hole.
func Source(pix []byte, off int, src RGBA, cov uint8) {
	if cov == 0 {
		return
	}
	if cov == 255 {
		pix[off+0] = src.R
		pix[off+1] = src.G
		pix[off+2] = src.B
		pix[off+3] = src.A
		return
	}
	pix[off+0] = lerp8(pix[off+0], src.R, cov)
	pix[off+1] = lerp8(pix[off+1], src.G, cov)
	pix[off+2] = lerp8(pix[off+2], src.B, cov)
	pix[off+3] = lerp8(pix[off+3], src.A, cov)
}

// Premultiply converts a straight-alpha color to premultiplied form.
func Premultiply(r, g, b, a uint8) RGBA {
	if a == 255 {
		return RGBA{r, g, b, a}
	}
	if a == 0 {
		return RGBA{}
	}
	return RGBA{mul8(r, a), mul8(g, a), mul8(b, a), a}
}

// Unpremultiply converts a premultiplied color back to straight alpha.
// Fully transparent pixels decode to zero.
func Unpremultiply(c RGBA) (r, g, b, a uint8) {
	if c.A == 0 {
		return 0, 0, 0, 0
	}
	if c.A == 255 {
		return c.R, c.G, c.B, 255
	}
	un := func(v uint8) uint8 {
		x := (uint32(v)*255 + uint32(c.A)/2) / uint32(c.A)
		if x > 255 {
			x = 255
		}
		return uint8(x)
	}
	return un(c.R), un(c.G), un(c.B), c.A
}
