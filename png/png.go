// Package png adapts a streaming PNG codec engine to plain request/response
// calls.
//
// Decoding normalizes every legal PNG encoding (palette, grayscale, 1, 2, 4
// and 16-bit depths, Adam7 interlacing, tRNS transparency) to one of four
// 8-bit layouts: Gray8, GrayAlpha8 or RGBA8 on decode, plus RGB8 on encode.
// Engine failures, including panics raised inside the engine or inside
// caller-supplied writers, come back as *Error values and every engine
// handle is released exactly once.
//
// The wire format itself is owned by the engine (see package engine); the
// default is stdpng.
package png

import (
	"io"

	"github.com/cocosip/go-png-codec/png/engine"
)

var (
	defaultDecoder = &Decoder{engine: (*Options)(nil).engine(), log: (*Options)(nil).logger(), maxBytes: DefaultMaxBytes}
	defaultEncoder = &Encoder{engine: (*Options)(nil).engine(), log: (*Options)(nil).logger()}
)

// IsRecognized reports whether b starts with the 8-byte PNG signature.
func IsRecognized(b []byte) bool {
	return engine.HasSignature(b)
}

// Decode decodes data with the default engine.
func Decode(data []byte) (*Image, error) {
	return defaultDecoder.Decode(data)
}

// DecodeFrom reads r fully and decodes it with the default engine.
func DecodeFrom(r io.Reader) (*Image, error) {
	return defaultDecoder.DecodeFrom(r)
}

// Inspect returns the header and negotiated format of data.
func Inspect(data []byte) (*Config, error) {
	return defaultDecoder.Inspect(data)
}

// Encode encodes img with the default engine and compression level.
func Encode(img *Image) ([]byte, error) {
	return defaultEncoder.Encode(img)
}

// EncodeTo writes img to w with the default engine and compression level.
func EncodeTo(w io.Writer, img *Image) error {
	return defaultEncoder.EncodeTo(w, img)
}
