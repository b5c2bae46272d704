package stdpng

import (
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/cocosip/go-png-codec/png/engine"
	"github.com/klauspost/compress/zlib"
)

// idatSize matches libpng's default IDAT chunk size.
const idatSize = 8192

// writer is an encode session. Every row is written with filter type None.
type writer struct {
	level   int
	write   engine.WriteFunc
	flush   engine.FlushFunc
	header  bool
	buf     []byte
	rows    engine.Rows
	hasRows bool
	done    bool
}

func (w *writer) CreateInfo() *engine.Info {
	return &engine.Info{}
}

func (w *writer) SetWriteFn(write engine.WriteFunc, flush engine.FlushFunc) {
	w.write = write
	w.flush = flush
}

func (w *writer) SetHeader(info *engine.Info, h engine.Header) error {
	if info == nil {
		return ErrNilInfo
	}
	if err := h.Validate(); err != nil {
		return fmt.Errorf("stdpng: %w", err)
	}
	if h.BitDepth != 8 || h.Interlace != engine.InterlaceNone || h.ColorType == engine.ColorPalette {
		return ErrWriterFormat
	}
	info.Header = h
	w.header = true
	return nil
}

func (w *writer) SetRows(info *engine.Info, buf []byte, rows engine.Rows) {
	w.buf = buf
	w.rows = rows
	w.hasRows = true
}

func (w *writer) WritePNG(info *engine.Info) error {
	if info == nil {
		return ErrNilInfo
	}
	if w.write == nil {
		return ErrNoWriteFn
	}
	if !w.header || !w.hasRows || w.done {
		return ErrBadState
	}
	h := info.Header
	stride := int(h.Width) * h.ColorType.Channels()
	if err := w.rows.Check(w.buf, int(h.Height), stride); err != nil {
		return fmt.Errorf("stdpng: %w", err)
	}

	if err := w.write(engine.Signature()); err != nil {
		return err
	}
	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], h.Width)
	binary.BigEndian.PutUint32(ihdr[4:8], h.Height)
	ihdr[8] = h.BitDepth
	ihdr[9] = uint8(h.ColorType)
	ihdr[10] = h.Compression
	ihdr[11] = h.Filter
	ihdr[12] = h.Interlace
	if err := w.chunk("IHDR", ihdr[:]); err != nil {
		return err
	}

	idat := &idatWriter{w: w, buf: make([]byte, 0, idatSize)}
	zw, err := zlib.NewWriterLevel(idat, w.level)
	if err != nil {
		return fmt.Errorf("stdpng: %w", err)
	}
	filter := []byte{0}
	for y := 0; y < int(h.Height); y++ {
		if _, err := zw.Write(filter); err != nil {
			return err
		}
		if _, err := zw.Write(w.rows.Row(w.buf, y)); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return err
	}
	if err := idat.flush(); err != nil {
		return err
	}
	if err := w.chunk("IEND", nil); err != nil {
		return err
	}
	w.done = true
	if w.flush != nil {
		return w.flush()
	}
	return nil
}

func (w *writer) Destroy(info *engine.Info) {
	w.write = nil
	w.flush = nil
	w.buf = nil
	w.rows = engine.Rows{}
	w.done = true
	if info != nil {
		*info = engine.Info{}
	}
}

// chunk emits one length-type-data-crc record.
func (w *writer) chunk(typ string, data []byte) error {
	var head [8]byte
	binary.BigEndian.PutUint32(head[:4], uint32(len(data)))
	copy(head[4:], typ)
	crc := crc32.NewIEEE()
	crc.Write(head[4:])
	crc.Write(data)
	var tail [4]byte
	binary.BigEndian.PutUint32(tail[:], crc.Sum32())

	if err := w.write(head[:]); err != nil {
		return err
	}
	if len(data) > 0 {
		if err := w.write(data); err != nil {
			return err
		}
	}
	return w.write(tail[:])
}

// idatWriter cuts the deflate stream into IDAT chunks.
type idatWriter struct {
	w   *writer
	buf []byte
}

func (iw *idatWriter) Write(p []byte) (int, error) {
	n := len(p)
	for len(p) > 0 {
		room := idatSize - len(iw.buf)
		if room > len(p) {
			room = len(p)
		}
		iw.buf = append(iw.buf, p[:room]...)
		p = p[room:]
		if len(iw.buf) == idatSize {
			if err := iw.flush(); err != nil {
				return n - len(p), err
			}
		}
	}
	return n, nil
}

func (iw *idatWriter) flush() error {
	if len(iw.buf) == 0 {
		return nil
	}
	err := iw.w.chunk("IDAT", iw.buf)
	iw.buf = iw.buf[:0]
	return err
}
