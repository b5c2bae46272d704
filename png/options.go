package png

import (
	"fmt"
	"log/slog"

	"github.com/cocosip/go-png-codec/codec"
	"github.com/cocosip/go-png-codec/png/engine"
	"github.com/cocosip/go-png-codec/png/engine/stdpng"
)

// Options configures a Decoder or Encoder.
type Options struct {
	codec.BaseOptions

	// Engine drives the wire format. Nil selects stdpng with
	// CompressionLevel; a caller-supplied engine ignores CompressionLevel.
	Engine engine.Engine

	// Logger receives debug records for negotiation, failures and session
	// release. Nil discards them.
	Logger *slog.Logger

	// MaxBytes caps the pixel buffer a Decoder allocates. Zero selects
	// DefaultMaxBytes.
	MaxBytes int
}

// DefaultMaxBytes is the default decode allocation ceiling (1 GiB).
const DefaultMaxBytes = 1 << 30

// Validate validates the options
func (o *Options) Validate() error {
	if o.MaxBytes < 0 {
		return fmt.Errorf("%w: negative MaxBytes %d", codec.ErrInvalidParameter, o.MaxBytes)
	}
	return o.BaseOptions.Validate()
}

func (o *Options) maxBytes() int {
	if o != nil && o.MaxBytes > 0 {
		return o.MaxBytes
	}
	return DefaultMaxBytes
}

func (o *Options) engine() engine.Engine {
	if o != nil && o.Engine != nil {
		return o.Engine
	}
	level := codec.DefaultCompression
	if o != nil {
		level = o.CompressionLevel
	}
	return stdpng.NewWithLevel(zlibLevel(level))
}

func (o *Options) logger() *slog.Logger {
	if o != nil && o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}

// zlibLevel maps codec.BaseOptions levels onto zlib's numbering.
func zlibLevel(level int) int {
	switch level {
	case codec.DefaultCompression:
		return stdpng.DefaultCompression
	case codec.NoCompression:
		return 0
	default:
		return level
	}
}
