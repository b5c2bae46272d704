package stdpng

import "errors"

var (
	ErrNoReadFn       = errors.New("stdpng: read callback not set")
	ErrNoWriteFn      = errors.New("stdpng: write callback not set")
	ErrNilInfo        = errors.New("stdpng: nil info handle")
	ErrBadSignature   = errors.New("stdpng: not a PNG signature")
	ErrMissingIHDR    = errors.New("stdpng: IHDR is not the first chunk")
	ErrMissingPLTE    = errors.New("stdpng: palette image without PLTE")
	ErrNoImageData    = errors.New("stdpng: no IDAT before IEND")
	ErrChunkTooLarge  = errors.New("stdpng: chunk length exceeds 2^31-1")
	ErrDimensionLimit = errors.New("stdpng: image dimensions exceed the reader limit")
	ErrBadState       = errors.New("stdpng: primitive called out of order")
	ErrNeedsInterlace = errors.New("stdpng: interlaced image read without interlace handling")
	ErrOutputDepth    = errors.New("stdpng: cannot materialize rows at this bit depth")
	ErrWriterFormat   = errors.New("stdpng: writer supports 8-bit non-interlaced Gray, GrayAlpha, RGB and RGBA only")
)
