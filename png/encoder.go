package png

import (
	"bytes"
	"io"
	"log/slog"

	"github.com/cocosip/go-png-codec/png/engine"
)

// Encoder turns Images into PNG bytes. Like Decoder it holds configuration
// only and may be shared.
type Encoder struct {
	engine engine.Engine
	log    *slog.Logger
}

// NewEncoder creates an encoder. A nil opts selects the defaults.
func NewEncoder(opts *Options) (*Encoder, error) {
	if opts != nil {
		if err := opts.Validate(); err != nil {
			return nil, err
		}
	}
	return &Encoder{engine: opts.engine(), log: opts.logger()}, nil
}

// Encode returns img as a complete PNG.
func (e *Encoder) Encode(img *Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.EncodeTo(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// EncodeTo writes img to w as an 8-bit, non-interlaced PNG with the default
// compression and filter methods. If w has a Flush() error method it is
// called once the trailer is written.
func (e *Encoder) EncodeTo(w io.Writer, img *Image) error {
	if img == nil {
		return &Error{Kind: KindInvalidImage, Phase: PhaseWrite, Op: "validate", Err: errNoPixels}
	}
	if err := img.Validate(); err != nil {
		if perr, ok := err.(*Error); ok {
			perr.Phase = PhaseWrite
		}
		return err
	}
	if w == nil {
		return &Error{Kind: KindIO, Phase: PhaseWrite, Op: "create", Err: errNilWriter}
	}

	out := &sink{w: w}
	s := newSession(PhaseWrite, e.log)
	s.ioErr = out.failure

	var ew engine.Writer
	err := s.guard("create", func() error {
		ew = e.engine.NewWriter()
		if ew == nil {
			return &Error{Kind: KindHandleCreationFailed, Phase: PhaseWrite, Op: "create"}
		}
		s.bind(ew.Destroy)
		info := ew.CreateInfo()
		if info == nil {
			return &Error{Kind: KindInfoCreationFailed, Phase: PhaseWrite, Op: "create"}
		}
		s.info = info
		ew.SetWriteFn(out.write, out.flush)
		return nil
	})
	if err != nil {
		return err
	}
	defer s.release()

	format := img.Format()
	h := engine.Header{
		Width:       img.Width,
		Height:      img.Height,
		BitDepth:    8,
		ColorType:   format.colorType(),
		Compression: engine.CompressionDefault,
		Filter:      engine.FilterBase,
		Interlace:   engine.InterlaceNone,
	}
	if err := s.guard("set header", func() error { return ew.SetHeader(s.info, h) }); err != nil {
		return err
	}

	rows := PlanRows(int(img.Width), int(img.Height), format.BytesPerPixel())
	err = s.guard("write png", func() error {
		ew.SetRows(s.info, img.Pixels.Bytes(), rows)
		return ew.WritePNG(s.info)
	})
	if err != nil {
		return err
	}
	e.log.Debug("png: encoded", "width", img.Width, "height", img.Height, "format", format.String())
	return nil
}
