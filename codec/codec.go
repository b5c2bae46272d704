// Package codec defines the format-agnostic codec interface and a registry
// that resolves codecs by name, media type or file signature.
package codec

// Codec is the universal interface for all image codecs
type Codec interface {
	// Encode encodes pixel data
	Encode(params EncodeParams) ([]byte, error)

	// Decode decodes compressed data
	Decode(data []byte) (*DecodeResult, error)

	// Recognize reports whether data starts with this codec's signature
	Recognize(data []byte) bool

	// MediaType returns the IANA media type, e.g. "image/png"
	MediaType() string

	// Name returns a short human-readable name
	Name() string
}

// EncodeParams contains parameters for encoding
type EncodeParams struct {
	PixelData  []byte  // Raw pixel data, interleaved, rows tightly packed
	Width      int     // Image width
	Height     int     // Image height
	Components int     // Samples per pixel (1=gray, 2=gray+alpha, 3=RGB, 4=RGBA)
	BitDepth   int     // Bits per sample
	Options    Options // Codec-specific options
}

// Options is an interface for codec-specific encoding options
type Options interface {
	// Validate checks if the options are valid
	Validate() error
}

// DecodeResult contains the result of decoding
type DecodeResult struct {
	PixelData  []byte // Decoded pixel data
	Width      int    // Image width
	Height     int    // Image height
	Components int    // Samples per pixel
	BitDepth   int    // Bits per sample
}

// Compression levels understood by BaseOptions.
const (
	DefaultCompression = 0
	NoCompression      = -1
	BestSpeed          = 1
	BestCompression    = 9
)

// BaseOptions provides common options for all codecs
type BaseOptions struct {
	// CompressionLevel for deflate-based codecs.
	// 0 selects the codec default, -1 stores without compression,
	// 1-9 trade speed for size.
	CompressionLevel int
}

// Validate validates base options
func (o *BaseOptions) Validate() error {
	if o.CompressionLevel < NoCompression || o.CompressionLevel > BestCompression {
		return ErrInvalidCompressionLevel
	}
	return nil
}
