// Package stdpng is the default PNG engine. Decoding runs the standard
// library's image/png grammar over the session's read callback; encoding
// emits an unfiltered, non-interlaced chunk stream deflated with
// klauspost/compress.
package stdpng

import (
	"github.com/cocosip/go-png-codec/png/engine"
	"github.com/klauspost/compress/zlib"
)

var _ engine.Engine = (*Engine)(nil)

// DefaultCompression selects the zlib default level.
const DefaultCompression = zlib.DefaultCompression

// MaxDimension bounds the width and height ReadInfo accepts. It matches
// libpng's default user limit.
const MaxDimension = 1_000_000

// Engine creates stdpng sessions.
type Engine struct {
	level int
}

// New returns an engine that writes with the default compression level.
func New() *Engine {
	return &Engine{level: DefaultCompression}
}

// NewWithLevel returns an engine that writes with the given zlib level
// (-1 for the default, 0 to 9 otherwise).
func NewWithLevel(level int) *Engine {
	return &Engine{level: level}
}

// Level returns the zlib level used by writers.
func (e *Engine) Level() int {
	return e.level
}

// NewReader creates a decode session.
func (e *Engine) NewReader() engine.Reader {
	return &reader{}
}

// NewWriter creates an encode session.
func (e *Engine) NewWriter() engine.Writer {
	return &writer{level: e.level}
}
