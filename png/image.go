package png

import (
	"fmt"

	"github.com/cocosip/go-png-codec/png/engine"
)

// Format names one of the canonical pixel layouts.
type Format uint8

const (
	FormatGray8 Format = iota + 1
	FormatGrayAlpha8
	FormatRGB8
	FormatRGBA8
)

// BytesPerPixel returns the interleaved sample count of f (all samples are
// 8 bits).
func (f Format) BytesPerPixel() int {
	switch f {
	case FormatGray8:
		return 1
	case FormatGrayAlpha8:
		return 2
	case FormatRGB8:
		return 3
	case FormatRGBA8:
		return 4
	default:
		return 0
	}
}

func (f Format) String() string {
	switch f {
	case FormatGray8:
		return "Gray8"
	case FormatGrayAlpha8:
		return "GrayAlpha8"
	case FormatRGB8:
		return "RGB8"
	case FormatRGBA8:
		return "RGBA8"
	default:
		return fmt.Sprintf("Format(%d)", uint8(f))
	}
}

func (f Format) colorType() engine.ColorType {
	switch f {
	case FormatGray8:
		return engine.ColorGray
	case FormatGrayAlpha8:
		return engine.ColorGrayAlpha
	case FormatRGB8:
		return engine.ColorRGB
	default:
		return engine.ColorRGBA
	}
}

// PixelBuffer is the closed set of pixel storage variants: Gray8,
// GrayAlpha8, RGB8 and RGBA8. Samples are row-major with no row padding.
type PixelBuffer interface {
	Format() Format
	Bytes() []byte
	pixelBuffer()
}

// Gray8 holds one 8-bit luminance sample per pixel.
type Gray8 []byte

// GrayAlpha8 holds luminance then alpha per pixel.
type GrayAlpha8 []byte

// RGB8 holds red, green, blue per pixel.
type RGB8 []byte

// RGBA8 holds red, green, blue, alpha per pixel. Alpha is not premultiplied.
type RGBA8 []byte

func (p Gray8) Format() Format      { return FormatGray8 }
func (p GrayAlpha8) Format() Format { return FormatGrayAlpha8 }
func (p RGB8) Format() Format       { return FormatRGB8 }
func (p RGBA8) Format() Format      { return FormatRGBA8 }

func (p Gray8) Bytes() []byte      { return p }
func (p GrayAlpha8) Bytes() []byte { return p }
func (p RGB8) Bytes() []byte       { return p }
func (p RGBA8) Bytes() []byte      { return p }

func (Gray8) pixelBuffer()      {}
func (GrayAlpha8) pixelBuffer() {}
func (RGB8) pixelBuffer()       {}
func (RGBA8) pixelBuffer()      {}

func newPixelBuffer(f Format, b []byte) PixelBuffer {
	switch f {
	case FormatGray8:
		return Gray8(b)
	case FormatGrayAlpha8:
		return GrayAlpha8(b)
	case FormatRGB8:
		return RGB8(b)
	case FormatRGBA8:
		return RGBA8(b)
	default:
		return nil
	}
}

// Image is a decoded or to-be-encoded picture. The Image owns Pixels; the
// buffer must hold exactly Width*Height*BytesPerPixel bytes.
type Image struct {
	Width  uint32
	Height uint32
	Pixels PixelBuffer
}

// NewImage allocates a zeroed image of the given format.
func NewImage(width, height uint32, f Format) (*Image, error) {
	if f.BytesPerPixel() == 0 {
		return nil, &Error{Kind: KindInvalidImage, Op: "new image", Err: fmt.Errorf("unknown format %s", f)}
	}
	size, ok := bufferSize(width, height, f.BytesPerPixel())
	if !ok {
		return nil, &Error{Kind: KindInvalidImage, Op: "new image", Err: errTooLarge}
	}
	return &Image{Width: width, Height: height, Pixels: newPixelBuffer(f, make([]byte, size))}, nil
}

// Format returns the pixel layout, or 0 if Pixels is nil.
func (img *Image) Format() Format {
	if img.Pixels == nil {
		return 0
	}
	return img.Pixels.Format()
}

// Stride returns the byte length of one row.
func (img *Image) Stride() int {
	return int(img.Width) * img.Format().BytesPerPixel()
}

// Validate checks the buffer length invariant.
func (img *Image) Validate() error {
	if img.Pixels == nil {
		return &Error{Kind: KindInvalidImage, Op: "validate", Err: errNoPixels}
	}
	bpp := img.Pixels.Format().BytesPerPixel()
	if bpp == 0 {
		return &Error{Kind: KindInvalidImage, Op: "validate", Err: fmt.Errorf("unknown format %s", img.Pixels.Format())}
	}
	size, ok := bufferSize(img.Width, img.Height, bpp)
	if !ok {
		return &Error{Kind: KindInvalidImage, Op: "validate", Err: errTooLarge}
	}
	if n := len(img.Pixels.Bytes()); n != size {
		return &Error{Kind: KindInvalidImage, Op: "validate",
			Err: fmt.Errorf("%s buffer has %d bytes, want %d for %dx%d", img.Pixels.Format(), n, size, img.Width, img.Height)}
	}
	return nil
}

// bufferSize returns width*height*bpp, or false if it does not fit in an int.
func bufferSize(width, height uint32, bpp int) (int, bool) {
	const maxInt = int(^uint(0) >> 1)
	if width == 0 || height == 0 {
		return 0, true
	}
	stride := uint64(width) * uint64(bpp)
	if stride > uint64(maxInt)/uint64(height) {
		return 0, false
	}
	return int(stride * uint64(height)), true
}
