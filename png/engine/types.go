package engine

import "fmt"

const signature = "\x89PNG\r\n\x1a\n"

// SignatureLen is the length of the PNG file signature.
const SignatureLen = len(signature)

// Signature returns a fresh copy of the 8-byte PNG file signature.
func Signature() []byte {
	return []byte(signature)
}

// HasSignature reports whether b starts with the PNG file signature.
func HasSignature(b []byte) bool {
	return len(b) >= SignatureLen && string(b[:SignatureLen]) == signature
}

// ColorType is the PNG IHDR colour type.
type ColorType uint8

// Colour types as stored in IHDR.
const (
	ColorGray      ColorType = 0
	ColorRGB       ColorType = 2
	ColorPalette   ColorType = 3
	ColorGrayAlpha ColorType = 4
	ColorRGBA      ColorType = 6
)

func (c ColorType) String() string {
	switch c {
	case ColorGray:
		return "Gray"
	case ColorRGB:
		return "RGB"
	case ColorPalette:
		return "Palette"
	case ColorGrayAlpha:
		return "GrayAlpha"
	case ColorRGBA:
		return "RGBA"
	default:
		return fmt.Sprintf("ColorType(%d)", uint8(c))
	}
}

// Channels returns the number of samples per pixel for c.
func (c ColorType) Channels() int {
	switch c {
	case ColorGray, ColorPalette:
		return 1
	case ColorGrayAlpha:
		return 2
	case ColorRGB:
		return 3
	case ColorRGBA:
		return 4
	default:
		return 0
	}
}

// HasAlpha reports whether c carries an alpha channel.
func (c ColorType) HasAlpha() bool {
	return c == ColorGrayAlpha || c == ColorRGBA
}

// Interlace methods.
const (
	InterlaceNone  uint8 = 0
	InterlaceAdam7 uint8 = 1
)

// CompressionDefault is the only compression method PNG defines.
const CompressionDefault uint8 = 0

// FilterBase is the only filter method PNG defines (adaptive filtering with
// the five basic filter types).
const FilterBase uint8 = 0

// FillerLoc places a filler channel relative to the existing channels.
type FillerLoc uint8

const (
	FillerAfter FillerLoc = iota + 1
	FillerBefore
)

// Header mirrors the IHDR chunk.
type Header struct {
	Width       uint32
	Height      uint32
	BitDepth    uint8
	ColorType   ColorType
	Compression uint8
	Filter      uint8
	Interlace   uint8
}

// Validate checks the colour type / bit depth pairing and the fixed method
// fields.
func (h Header) Validate() error {
	if h.Width == 0 || h.Height == 0 || h.Width > 1<<31-1 || h.Height > 1<<31-1 {
		return fmt.Errorf("invalid dimensions %dx%d", h.Width, h.Height)
	}
	if !validDepth(h.ColorType, h.BitDepth) {
		return fmt.Errorf("invalid bit depth %d for colour type %s", h.BitDepth, h.ColorType)
	}
	if h.Compression != CompressionDefault {
		return fmt.Errorf("invalid compression method %d", h.Compression)
	}
	if h.Filter != FilterBase {
		return fmt.Errorf("invalid filter method %d", h.Filter)
	}
	if h.Interlace > InterlaceAdam7 {
		return fmt.Errorf("invalid interlace method %d", h.Interlace)
	}
	return nil
}

func validDepth(c ColorType, depth uint8) bool {
	switch c {
	case ColorGray:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8 || depth == 16
	case ColorPalette:
		return depth == 1 || depth == 2 || depth == 4 || depth == 8
	case ColorRGB, ColorGrayAlpha, ColorRGBA:
		return depth == 8 || depth == 16
	default:
		return false
	}
}

// Chunk flags the ancillary metadata an Info has seen.
type Chunk uint32

const (
	ChunkPLTE Chunk = 1 << iota
	ChunkTRNS
)

// Info is the per-session metadata handle. After ReadInfo it holds the
// stored header; after ReadUpdateInfo it holds the transformed one.
type Info struct {
	Header Header
	valid  Chunk
}

// Valid reports whether chunk c was seen.
func (i *Info) Valid(c Chunk) bool {
	return i.valid&c != 0
}

// SetValid records that chunk c was seen.
func (i *Info) SetValid(c Chunk) {
	i.valid |= c
}

// Rows is a row table: the byte offset of every row inside a flat buffer and
// the row length. It stores indices, never pointers, so it stays valid only
// for the buffer it was planned against.
type Rows struct {
	Offsets []int
	Stride  int
}

// Row returns row i of buf.
func (r Rows) Row(buf []byte, i int) []byte {
	off := r.Offsets[i]
	return buf[off : off+r.Stride]
}

// Check verifies that the table describes height rows of stride bytes inside
// buf.
func (r Rows) Check(buf []byte, height, stride int) error {
	if len(r.Offsets) != height {
		return fmt.Errorf("row table has %d rows, want %d", len(r.Offsets), height)
	}
	if r.Stride != stride {
		return fmt.Errorf("row stride %d, want %d", r.Stride, stride)
	}
	for i, off := range r.Offsets {
		if off < 0 || off+stride > len(buf) {
			return fmt.Errorf("row %d at offset %d overruns %d-byte buffer", i, off, len(buf))
		}
	}
	return nil
}
