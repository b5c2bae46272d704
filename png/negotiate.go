package png

import (
	"fmt"

	"github.com/cocosip/go-png-codec/png/engine"
)

// ColorModel is a colour type / bit depth pair as reported by the engine.
type ColorModel struct {
	ColorType engine.ColorType
	BitDepth  uint8
}

func (m ColorModel) String() string {
	return fmt.Sprintf("%s/%d", m.ColorType, m.BitDepth)
}

func modelOf(h engine.Header) ColorModel {
	return ColorModel{ColorType: h.ColorType, BitDepth: h.BitDepth}
}

// fillerAlpha is the opaque alpha appended to images without one.
const fillerAlpha = 0xff

// Directives are the transforms requested from the engine before rows are
// materialized.
type Directives struct {
	PaletteToRGB      bool
	GrayToRGB         bool
	Strip16           bool
	TRNSToAlpha       bool
	AddFiller         bool
	Filler            uint8
	Packing           bool
	InterlaceHandling bool
}

// Negotiate decides the transforms for a stored colour model. Everything is
// steered towards 8-bit RGBA: palette and gray expand to RGB, 16-bit samples
// lose their low byte, and alpha comes from tRNS when present and from an
// opaque filler otherwise.
func Negotiate(stored ColorModel, hasTRNS bool) Directives {
	d := Directives{Packing: true, InterlaceHandling: true}
	switch stored.ColorType {
	case engine.ColorPalette:
		d.PaletteToRGB = true
	case engine.ColorGray, engine.ColorGrayAlpha:
		d.GrayToRGB = true
	}
	if stored.BitDepth == 16 {
		d.Strip16 = true
	}
	switch {
	case hasTRNS:
		d.TRNSToAlpha = true
	case !stored.ColorType.HasAlpha():
		d.AddFiller = true
		d.Filler = fillerAlpha
	}
	return d
}

// canonicalFormats is everything the decoder can hand back. A post-transform
// model missing here is rejected, never coerced.
var canonicalFormats = map[ColorModel]Format{
	{engine.ColorRGB, 8}:       FormatRGBA8,
	{engine.ColorRGBA, 8}:      FormatRGBA8,
	{engine.ColorPalette, 8}:   FormatRGBA8,
	{engine.ColorGray, 8}:      FormatGray8,
	{engine.ColorGrayAlpha, 8}: FormatGrayAlpha8,
}

// Canonical maps a post-transform model to the decoded format and its bytes
// per pixel.
func Canonical(post ColorModel) (Format, int, error) {
	f, ok := canonicalFormats[post]
	if !ok {
		return 0, 0, &Error{
			Kind:      KindUnsupportedFormat,
			Phase:     PhaseRead,
			Op:        "negotiate",
			ColorType: post.ColorType,
			BitDepth:  post.BitDepth,
		}
	}
	return f, f.BytesPerPixel(), nil
}
