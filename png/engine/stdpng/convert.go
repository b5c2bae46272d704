package stdpng

import (
	"image"
	"image/color"

	"github.com/cocosip/go-png-codec/png/engine"
)

// pixel is one non-premultiplied 8-bit sample set. 16-bit sources keep their
// high byte, which is what strip16 asks for.
type pixel struct {
	r, g, b, a uint8
}

func sampleAt(img image.Image, x, y int) pixel {
	switch m := img.(type) {
	case *image.Gray:
		v := m.Pix[m.PixOffset(x, y)]
		return pixel{v, v, v, 0xff}
	case *image.Gray16:
		v := m.Pix[m.PixOffset(x, y)]
		return pixel{v, v, v, 0xff}
	case *image.NRGBA:
		i := m.PixOffset(x, y)
		return pixel{m.Pix[i], m.Pix[i+1], m.Pix[i+2], m.Pix[i+3]}
	case *image.NRGBA64:
		i := m.PixOffset(x, y)
		return pixel{m.Pix[i], m.Pix[i+2], m.Pix[i+4], m.Pix[i+6]}
	case *image.RGBA:
		i := m.PixOffset(x, y)
		if m.Pix[i+3] == 0xff {
			return pixel{m.Pix[i], m.Pix[i+1], m.Pix[i+2], 0xff}
		}
	case *image.RGBA64:
		i := m.PixOffset(x, y)
		if m.Pix[i+6] == 0xff && m.Pix[i+7] == 0xff {
			return pixel{m.Pix[i], m.Pix[i+2], m.Pix[i+4], 0xff}
		}
	case *image.Paletted:
		return fromColor(m.Palette[m.Pix[m.PixOffset(x, y)]])
	}
	return fromColor(img.At(x, y))
}

func fromColor(c color.Color) pixel {
	switch v := c.(type) {
	case color.NRGBA:
		return pixel{v.R, v.G, v.B, v.A}
	case color.RGBA:
		if v.A == 0xff {
			return pixel{v.R, v.G, v.B, 0xff}
		}
	}
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return pixel{n.R, n.G, n.B, n.A}
}

// converter writes pixels in the transformed layout.
type converter struct {
	ct          engine.ColorType
	sampleAlpha bool
	filler      uint8
	before      bool
	unscale     uint8
}

func (r *reader) converter() converter {
	c := converter{
		ct:          r.out.ColorType,
		sampleAlpha: r.stored.ColorType.HasAlpha() || r.alphaFromTRNS(),
		filler:      r.filler,
	}
	c.before = !c.sampleAlpha && r.fillerLoc == engine.FillerBefore
	if !c.sampleAlpha && !r.addAlpha {
		c.filler = 0xff
	}
	// image/png scales 1, 2 and 4-bit gray to 8 bits. Packing alone keeps
	// the stored sample value.
	if r.stored.ColorType == engine.ColorGray && r.stored.BitDepth < 8 && !r.grayToRGB && !r.trnsToAlpha {
		c.unscale = uint8(0xff / (1<<r.stored.BitDepth - 1))
	}
	return c
}

func (c converter) put(row []byte, x int, s pixel) {
	n := c.ct.Channels()
	px := row[x*n : x*n+n]
	a := c.filler
	if c.sampleAlpha {
		a = s.a
	}
	switch c.ct {
	case engine.ColorGray:
		g := s.r
		if c.unscale > 0 {
			g /= c.unscale
		}
		px[0] = g
	case engine.ColorGrayAlpha:
		if c.before {
			px[0], px[1] = a, s.r
		} else {
			px[0], px[1] = s.r, a
		}
	case engine.ColorRGB:
		px[0], px[1], px[2] = s.r, s.g, s.b
	case engine.ColorRGBA:
		if c.before {
			px[0], px[1], px[2], px[3] = a, s.r, s.g, s.b
		} else {
			px[0], px[1], px[2], px[3] = s.r, s.g, s.b, a
		}
	}
}
