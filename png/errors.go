package png

import (
	"errors"
	"fmt"

	"github.com/cocosip/go-png-codec/codec"
	"github.com/cocosip/go-png-codec/png/engine"
)

// Kind classifies a codec failure.
type Kind uint8

const (
	KindHandleCreationFailed Kind = iota + 1
	KindInfoCreationFailed
	KindEngineFailure
	KindUnsupportedFormat
	KindIO
	KindInvalidImage
)

// Phase tells whether a failure happened while decoding or encoding.
type Phase uint8

const (
	PhaseRead Phase = iota + 1
	PhaseWrite
)

func (p Phase) String() string {
	switch p {
	case PhaseRead:
		return "read"
	case PhaseWrite:
		return "write"
	default:
		return "unknown"
	}
}

// Sentinels matched by errors.Is against an *Error of the same Kind.
var (
	ErrHandleCreationFailed = errors.New("png: could not create engine session")
	ErrInfoCreationFailed   = errors.New("png: could not create info handle")
	ErrEngineFailure        = errors.New("png: engine signaled failure")
	ErrUnsupportedFormat    = fmt.Errorf("png: %w", codec.ErrUnsupportedFormat)
	ErrIO                   = errors.New("png: I/O failure")
	ErrInvalidImage         = errors.New("png: invalid image")
)

var (
	errTooLarge        = errors.New("image size overflows int")
	errAllocLimit      = errors.New("pixel buffer exceeds the allocation limit")
	errNoPixels        = errors.New("nil pixel buffer")
	errReentrant       = errors.New("guarded call while another is active on the same session")
	errSessionReleased = errors.New("session already released")
	errNilWriter       = errors.New("nil writer")
)

func (k Kind) sentinel() error {
	switch k {
	case KindHandleCreationFailed:
		return ErrHandleCreationFailed
	case KindInfoCreationFailed:
		return ErrInfoCreationFailed
	case KindEngineFailure:
		return ErrEngineFailure
	case KindUnsupportedFormat:
		return ErrUnsupportedFormat
	case KindIO:
		return ErrIO
	case KindInvalidImage:
		return ErrInvalidImage
	default:
		return nil
	}
}

// Error is the typed result of every failed decode or encode.
type Error struct {
	Kind  Kind
	Phase Phase
	// Op names the step that failed, e.g. "read info" or "write png".
	Op string
	// ColorType and BitDepth describe the rejected post-transform format
	// for KindUnsupportedFormat.
	ColorType engine.ColorType
	BitDepth  uint8
	Err       error
}

func (e *Error) Error() string {
	if e.Kind == KindUnsupportedFormat {
		return fmt.Sprintf("png: unsupported format: colour type %s, bit depth %d", e.ColorType, e.BitDepth)
	}
	msg := "png: unknown failure"
	if s := e.Kind.sentinel(); s != nil {
		msg = s.Error()
	}
	if e.Phase != 0 {
		msg += " (" + e.Phase.String() + ")"
	}
	if e.Op != "" {
		msg += ": " + e.Op
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches the Kind's sentinel, and codec.ErrUnsupportedFormat for
// KindUnsupportedFormat.
func (e *Error) Is(target error) bool {
	s := e.Kind.sentinel()
	if s == nil {
		return false
	}
	return target == s || errors.Is(s, target)
}
