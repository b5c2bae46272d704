package png

import (
	"fmt"

	"github.com/cocosip/go-png-codec/codec"
)

// Codec implements the codec.Codec interface for PNG
type Codec struct{}

// NewCodec creates a new PNG codec
func NewCodec() *Codec {
	return &Codec{}
}

// Encode encodes interleaved 8-bit pixel data as PNG.
// Components selects the layout: 1=Gray8, 2=GrayAlpha8, 3=RGB8, 4=RGBA8.
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if params.BitDepth != 8 {
		return nil, fmt.Errorf("%w: png encodes 8-bit samples only, got %d", codec.ErrInvalidParameter, params.BitDepth)
	}
	format, ok := componentFormats[params.Components]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported component count %d", codec.ErrInvalidParameter, params.Components)
	}
	if params.Width <= 0 || params.Height <= 0 || params.Width > 1<<31-1 || params.Height > 1<<31-1 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", codec.ErrInvalidParameter, params.Width, params.Height)
	}

	opts, err := optionsFrom(params.Options)
	if err != nil {
		return nil, err
	}
	enc, err := NewEncoder(opts)
	if err != nil {
		return nil, err
	}
	img := &Image{
		Width:  uint32(params.Width),
		Height: uint32(params.Height),
		Pixels: newPixelBuffer(format, params.PixelData),
	}
	return enc.Encode(img)
}

// Decode decodes PNG data into one of the canonical 8-bit layouts
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	img, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{
		PixelData:  img.Pixels.Bytes(),
		Width:      int(img.Width),
		Height:     int(img.Height),
		Components: img.Format().BytesPerPixel(),
		BitDepth:   8, // Decoded output is always 8-bit
	}, nil
}

// Recognize reports whether data starts with the PNG signature
func (c *Codec) Recognize(data []byte) bool {
	return IsRecognized(data)
}

// MediaType returns "image/png"
func (c *Codec) MediaType() string {
	return "image/png"
}

// Name returns the human-readable name
func (c *Codec) Name() string {
	return "png"
}

var componentFormats = map[int]Format{
	1: FormatGray8,
	2: FormatGrayAlpha8,
	3: FormatRGB8,
	4: FormatRGBA8,
}

// optionsFrom accepts *Options or a bare *codec.BaseOptions.
func optionsFrom(o codec.Options) (*Options, error) {
	switch v := o.(type) {
	case nil:
		return nil, nil
	case *Options:
		return v, nil
	case *codec.BaseOptions:
		if v == nil {
			return nil, nil
		}
		return &Options{BaseOptions: *v}, nil
	default:
		if err := o.Validate(); err != nil {
			return nil, err
		}
		return nil, nil
	}
}

// Register registers this codec with the global registry
func init() {
	codec.Register(NewCodec())
}
