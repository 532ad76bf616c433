package osd

import "image/color"

// Color is a packed 32-bit color in 0xRRGGBBAA order, one byte per
// channel with straight (non-premultiplied) alpha.
type Color uint32

// Common colors.
const (
	Transparent Color = 0x00000000
	Black       Color = 0x000000FF
	White       Color = 0xFFFFFFFF
	Red         Color = 0xFF0000FF
	Green       Color = 0x00FF00FF
	Blue        Color = 0x0000FFFF
)

// ColorRGBA packs four channel bytes into a Color.
func ColorRGBA(r, g, b, a uint8) Color {
	return Color(r)<<24 | Color(g)<<16 | Color(b)<<8 | Color(a)
}

// ColorRGB packs three channel bytes into an opaque Color.
func ColorRGB(r, g, b uint8) Color {
	return ColorRGBA(r, g, b, 0xFF)
}

// RGBA unpacks the four channel bytes.
func (c Color) RGBA() (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Alpha returns the alpha byte.
func (c Color) Alpha() uint8 {
	return uint8(c)
}

// WithAlpha returns the color with its alpha byte replaced.
func (c Color) WithAlpha(a uint8) Color {
	return c&0xFFFFFF00 | Color(a)
}

// NRGBA converts the packed color to the standard library representation.
func (c Color) NRGBA() color.NRGBA {
	r, g, b, a := c.RGBA()
	return color.NRGBA{R: r, G: g, B: b, A: a}
}

// FromColor converts a standard color.Color to a packed Color.
func FromColor(c color.Color) Color {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return ColorRGBA(n.R, n.G, n.B, n.A)
}
