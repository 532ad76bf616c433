package osd

import (
	"encoding/binary"
	"math"
)

// Binary path encoding, used by the bulk FillPath/StrokePath entry points.
// Each segment is one opcode byte followed by little-endian float32
// coordinates:
//
//	0x00  MoveTo   x y                      (8 bytes)
//	0x01  LineTo   x y                      (8 bytes)
//	0x02  CubicTo  c1x c1y c2x c2y x y      (24 bytes)
//	0x03  QuadTo   cx cy x y                (16 bytes)
//	0x04  Close                             (0 bytes)
//
// Decoding stops silently at the first truncated or unknown segment, so a
// hostile buffer can at worst produce a shorter path.
const (
	opMoveTo  = 0x00
	opLineTo  = 0x01
	opCubicTo = 0x02
	opQuadTo  = 0x03
	opClose   = 0x04
)

// EncodePath serializes a path's geometry to the binary format. Path
// attributes (fill rule, stroke style) are not part of the wire format.
// Arc elements have no opcode and are flattened to line segments.
func EncodePath(p *Path) []byte {
	var buf []byte
	putPt := func(pt Point) {
		var b [8]byte
		binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(float32(pt.X)))
		binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(float32(pt.Y)))
		buf = append(buf, b[:]...)
	}

	for _, elem := range p.Elements() {
		switch e := elem.(type) {
		case MoveTo:
			buf = append(buf, opMoveTo)
			putPt(e.Point)
		case LineTo:
			buf = append(buf, opLineTo)
			putPt(e.Point)
		case CubicTo:
			buf = append(buf, opCubicTo)
			putPt(e.Control1)
			putPt(e.Control2)
			putPt(e.Point)
		case QuadTo:
			buf = append(buf, opQuadTo)
			putPt(e.Control)
			putPt(e.Point)
		case ArcTo:
			for i, pt := range flattenArc(e, defaultFlattenTolerance) {
				if i == 0 {
					buf = append(buf, opMoveTo)
				} else {
					buf = append(buf, opLineTo)
				}
				putPt(pt)
			}
		case Close:
			buf = append(buf, opClose)
		}
	}
	return buf
}

// DecodePath parses the binary format into a new Path with default
// attributes. It never fails: malformed input yields the longest valid
// prefix.
func DecodePath(data []byte) *Path {
	p := NewPath()
	i := 0

	getF := func(off int) float64 {
		bits := binary.LittleEndian.Uint32(data[off : off+4])
		return float64(math.Float32frombits(bits))
	}

	for i < len(data) {
		op := data[i]
		i++
		switch op {
		case opMoveTo:
			if i+8 > len(data) {
				return p
			}
			p.MoveTo(getF(i), getF(i+4))
			i += 8
		case opLineTo:
			if i+8 > len(data) {
				return p
			}
			p.LineTo(getF(i), getF(i+4))
			i += 8
		case opCubicTo:
			if i+24 > len(data) {
				return p
			}
			p.CubicTo(getF(i), getF(i+4), getF(i+8), getF(i+12), getF(i+16), getF(i+20))
			i += 24
		case opQuadTo:
			if i+16 > len(data) {
				return p
			}
			p.QuadraticTo(getF(i), getF(i+4), getF(i+8), getF(i+12))
			i += 16
		case opClose:
			p.Close()
		default:
			return p
		}
	}
	return p
}
