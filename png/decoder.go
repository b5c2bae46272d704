package png

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/cocosip/go-png-codec/png/engine"
)

// Config describes an encoded image without its pixels.
type Config struct {
	Width  uint32
	Height uint32
	// Stored is the colour model in the file; Transformed is what the
	// negotiated transforms turn it into.
	Stored      ColorModel
	Transformed ColorModel
	Format      Format
	Interlaced  bool
	// Passes is the number of interlace passes the engine reads: 7 for
	// Adam7, 1 otherwise.
	Passes int
	// HasTransparency reports a tRNS chunk.
	HasTransparency bool
}

// Decoder turns encoded bytes into canonical Images. It holds configuration
// only; every call opens its own engine session, so a Decoder may be shared
// between goroutines.
type Decoder struct {
	engine   engine.Engine
	log      *slog.Logger
	maxBytes int
}

// NewDecoder creates a decoder. A nil opts selects the defaults.
func NewDecoder(opts *Options) (*Decoder, error) {
	if opts != nil {
		if err := opts.Validate(); err != nil {
			return nil, err
		}
	}
	return &Decoder{engine: opts.engine(), log: opts.logger(), maxBytes: opts.maxBytes()}, nil
}

// readSession binds a reader handle to the cursor over one input.
type readSession struct {
	*session
	r   engine.Reader
	cur cursor
}

// open creates the read handles, binds data and parses the header. On error
// the session is already released.
func (d *Decoder) open(data []byte) (*readSession, error) {
	rs := &readSession{session: newSession(PhaseRead, d.log), cur: cursor{src: data}}

	err := rs.guard("create", func() error {
		r := d.engine.NewReader()
		if r == nil {
			return &Error{Kind: KindHandleCreationFailed, Phase: PhaseRead, Op: "create"}
		}
		rs.r = r
		rs.bind(r.Destroy)
		info := r.CreateInfo()
		if info == nil {
			return &Error{Kind: KindInfoCreationFailed, Phase: PhaseRead, Op: "create"}
		}
		rs.info = info
		r.SetReadFn(rs.cur.read)
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := rs.guard("read info", func() error { return rs.r.ReadInfo(rs.info) }); err != nil {
		return nil, err
	}
	return rs, nil
}

// negotiate requests the transforms for the stored header and resolves the
// canonical format.
func (rs *readSession) negotiate() (*Config, error) {
	stored := rs.info.Header
	cfg := &Config{
		Width:           stored.Width,
		Height:          stored.Height,
		Stored:          modelOf(stored),
		Interlaced:      stored.Interlace == engine.InterlaceAdam7,
		HasTransparency: rs.info.Valid(engine.ChunkTRNS),
	}

	dirs := Negotiate(cfg.Stored, cfg.HasTransparency)
	tf, err := guarded(rs.session, "transform", func() (transformed, error) {
		return applyTransforms(rs.r, rs.info, dirs)
	})
	if err != nil {
		return nil, err
	}
	post := tf.model
	cfg.Transformed = post
	cfg.Passes = tf.passes

	format, _, err := Canonical(post)
	if err != nil {
		rs.log.Debug("png: no canonical format", "stored", cfg.Stored.String(), "transformed", post.String())
		return nil, err
	}
	cfg.Format = format
	rs.log.Debug("png: negotiated",
		"width", cfg.Width, "height", cfg.Height,
		"stored", cfg.Stored.String(), "transformed", post.String(),
		"format", format.String(), "interlaced", cfg.Interlaced, "passes", cfg.Passes, "trns", cfg.HasTransparency,
		"directives", dirs)
	return cfg, nil
}

// Decode decodes one complete PNG held in data.
func (d *Decoder) Decode(data []byte) (*Image, error) {
	img, _, err := d.DecodeWithConfig(data)
	return img, err
}

// DecodeWithConfig decodes data and also returns the header and negotiation
// result that Inspect would report, from the same session.
func (d *Decoder) DecodeWithConfig(data []byte) (*Image, *Config, error) {
	rs, err := d.open(data)
	if err != nil {
		return nil, nil, err
	}
	defer rs.release()

	cfg, err := rs.negotiate()
	if err != nil {
		return nil, nil, err
	}

	bpp := cfg.Format.BytesPerPixel()
	size, ok := bufferSize(cfg.Width, cfg.Height, bpp)
	if !ok {
		return nil, nil, &Error{Kind: KindInvalidImage, Phase: PhaseRead, Op: "allocate", Err: errTooLarge}
	}
	if size > d.maxBytes {
		d.log.Debug("png: allocation refused", "width", cfg.Width, "height", cfg.Height, "bytes", size, "limit", d.maxBytes)
		return nil, nil, &Error{Kind: KindInvalidImage, Phase: PhaseRead, Op: "allocate",
			Err: fmt.Errorf("%w: %d bytes, limit %d", errAllocLimit, size, d.maxBytes)}
	}
	buf := make([]byte, size)
	rows := PlanRows(int(cfg.Width), int(cfg.Height), bpp)

	if err := rs.guard("read image", func() error { return rs.r.ReadImage(buf, rows) }); err != nil {
		return nil, nil, err
	}
	return &Image{Width: cfg.Width, Height: cfg.Height, Pixels: newPixelBuffer(cfg.Format, buf)}, cfg, nil
}

// DecodeFrom reads r to the end and decodes the result.
func (d *Decoder) DecodeFrom(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &Error{Kind: KindIO, Phase: PhaseRead, Op: "read source", Err: err}
	}
	return d.Decode(data)
}

// Inspect reads the header and negotiates the output format without
// materializing any pixels.
func (d *Decoder) Inspect(data []byte) (*Config, error) {
	rs, err := d.open(data)
	if err != nil {
		return nil, err
	}
	defer rs.release()
	return rs.negotiate()
}
