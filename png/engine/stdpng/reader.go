package stdpng

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"image"
	"image/png"
	"io"

	"github.com/cocosip/go-png-codec/png/engine"
)

const (
	stateNew = iota
	stateInfo
	stateUpdated
	stateDone
)

// reader is a decode session. ReadInfo walks chunk framing up to the first
// IDAT and keeps every consumed byte in prefix; ReadImage replays prefix in
// front of the remaining stream through image/png.
type reader struct {
	read   engine.ReadFunc
	state  int
	stored engine.Header
	out    engine.Header
	trns   bool
	prefix bytes.Buffer

	paletteToRGB bool
	grayToRGB    bool
	strip16      bool
	addAlpha     bool
	filler       uint8
	fillerLoc    engine.FillerLoc
	trnsToAlpha  bool
	packing      bool
	interlace    bool
}

// source adapts the session read callback to io.Reader.
type source struct {
	fn engine.ReadFunc
}

func (s source) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	n, err := s.fn(p)
	if n == 0 && err == nil {
		return 0, io.ErrNoProgress
	}
	return n, err
}

func (r *reader) CreateInfo() *engine.Info {
	return &engine.Info{}
}

func (r *reader) SetReadFn(fn engine.ReadFunc) {
	r.read = fn
}

func (r *reader) ReadInfo(info *engine.Info) error {
	if info == nil {
		return ErrNilInfo
	}
	if r.read == nil {
		return ErrNoReadFn
	}
	if r.state != stateNew {
		return ErrBadState
	}
	src := source{fn: r.read}

	var sig [engine.SignatureLen]byte
	if _, err := io.ReadFull(src, sig[:]); err != nil {
		return fmt.Errorf("stdpng: reading signature: %w", err)
	}
	if !engine.HasSignature(sig[:]) {
		return ErrBadSignature
	}
	r.prefix.Write(sig[:])

	seenIHDR := false
	for {
		var head [8]byte
		if _, err := io.ReadFull(src, head[:]); err != nil {
			return fmt.Errorf("stdpng: reading chunk header: %w", err)
		}
		r.prefix.Write(head[:])

		length := binary.BigEndian.Uint32(head[:4])
		typ := string(head[4:8])
		if length > 1<<31-1 {
			return ErrChunkTooLarge
		}
		if !seenIHDR && typ != "IHDR" {
			return ErrMissingIHDR
		}
		if typ == "IDAT" {
			break
		}
		if typ == "IEND" {
			return ErrNoImageData
		}

		start := r.prefix.Len()
		if _, err := io.CopyN(&r.prefix, src, int64(length)+4); err != nil {
			return fmt.Errorf("stdpng: reading %s chunk: %w", typ, err)
		}
		data := r.prefix.Bytes()[start : start+int(length)]

		switch typ {
		case "IHDR":
			if seenIHDR {
				return fmt.Errorf("stdpng: duplicate IHDR")
			}
			if length != 13 {
				return fmt.Errorf("stdpng: IHDR length %d, want 13", length)
			}
			h := engine.Header{
				Width:       binary.BigEndian.Uint32(data[0:4]),
				Height:      binary.BigEndian.Uint32(data[4:8]),
				BitDepth:    data[8],
				ColorType:   engine.ColorType(data[9]),
				Compression: data[10],
				Filter:      data[11],
				Interlace:   data[12],
			}
			if err := h.Validate(); err != nil {
				return fmt.Errorf("stdpng: %w", err)
			}
			if h.Width > MaxDimension || h.Height > MaxDimension {
				return fmt.Errorf("%w: %dx%d", ErrDimensionLimit, h.Width, h.Height)
			}
			r.stored = h
			seenIHDR = true
		case "PLTE":
			info.SetValid(engine.ChunkPLTE)
		case "tRNS":
			info.SetValid(engine.ChunkTRNS)
			r.trns = true
		}
	}

	if r.stored.ColorType == engine.ColorPalette && !info.Valid(engine.ChunkPLTE) {
		return ErrMissingPLTE
	}
	info.Header = r.stored
	r.out = r.stored
	r.state = stateInfo
	return nil
}

func (r *reader) SetPaletteToRGB() { r.paletteToRGB = true }
func (r *reader) SetGrayToRGB()    { r.grayToRGB = true }
func (r *reader) SetStrip16()      { r.strip16 = true }
func (r *reader) SetTRNSToAlpha()  { r.trnsToAlpha = true }
func (r *reader) SetPacking()      { r.packing = true }

func (r *reader) SetAddAlpha(filler uint8, loc engine.FillerLoc) {
	r.addAlpha = true
	r.filler = filler
	r.fillerLoc = loc
}

func (r *reader) SetInterlaceHandling() int {
	r.interlace = true
	if r.stored.Interlace == engine.InterlaceAdam7 {
		return 7
	}
	return 1
}

// expandPalette follows libpng, where tRNS expansion implies palette
// expansion.
func (r *reader) expandPalette() bool {
	return r.paletteToRGB || r.trnsToAlpha
}

// alphaFromTRNS reports whether the output alpha channel comes from tRNS.
func (r *reader) alphaFromTRNS() bool {
	if !r.trns {
		return false
	}
	if r.stored.ColorType == engine.ColorPalette {
		return r.expandPalette()
	}
	return r.trnsToAlpha
}

func (r *reader) ReadUpdateInfo(info *engine.Info) error {
	if info == nil {
		return ErrNilInfo
	}
	if r.state != stateInfo {
		return ErrBadState
	}
	h := r.stored
	ct, depth := h.ColorType, h.BitDepth

	if ct == engine.ColorPalette && r.expandPalette() {
		ct = engine.ColorRGB
		if r.trns {
			ct = engine.ColorRGBA
		}
		depth = 8
	}
	if ct == engine.ColorGray && depth < 8 && (r.grayToRGB || r.trnsToAlpha) {
		depth = 8
	}
	if r.alphaFromTRNS() {
		switch ct {
		case engine.ColorGray:
			ct = engine.ColorGrayAlpha
		case engine.ColorRGB:
			ct = engine.ColorRGBA
		}
	}
	if r.strip16 && depth == 16 {
		depth = 8
	}
	if r.grayToRGB {
		switch ct {
		case engine.ColorGray:
			ct = engine.ColorRGB
		case engine.ColorGrayAlpha:
			ct = engine.ColorRGBA
		}
	}
	if r.addAlpha && depth >= 8 {
		switch ct {
		case engine.ColorGray:
			ct = engine.ColorGrayAlpha
		case engine.ColorRGB:
			ct = engine.ColorRGBA
		}
	}
	if r.packing && depth < 8 {
		depth = 8
	}

	h.ColorType, h.BitDepth = ct, depth
	h.Interlace = engine.InterlaceNone
	if !r.interlace {
		h.Interlace = r.stored.Interlace
	}
	r.out = h
	info.Header = h
	r.state = stateUpdated
	return nil
}

func (r *reader) ReadImage(buf []byte, rows engine.Rows) error {
	switch r.state {
	case stateInfo:
		// No transforms were requested; rows use the stored layout.
	case stateUpdated:
	default:
		return ErrBadState
	}
	out := r.out
	if r.stored.Interlace == engine.InterlaceAdam7 && !r.interlace {
		return ErrNeedsInterlace
	}
	if out.BitDepth != 8 {
		return fmt.Errorf("%w: %d", ErrOutputDepth, out.BitDepth)
	}
	width, height := int(out.Width), int(out.Height)
	stride := width * out.ColorType.Channels()
	if err := rows.Check(buf, height, stride); err != nil {
		return fmt.Errorf("stdpng: %w", err)
	}

	img, err := png.Decode(io.MultiReader(bytes.NewReader(r.prefix.Bytes()), source{fn: r.read}))
	if err != nil {
		return fmt.Errorf("stdpng: decoding image data: %w", err)
	}
	b := img.Bounds()
	if b.Dx() != width || b.Dy() != height {
		return fmt.Errorf("stdpng: decoded %dx%d, header says %dx%d", b.Dx(), b.Dy(), width, height)
	}

	if out.ColorType == engine.ColorPalette {
		p, ok := img.(*image.Paletted)
		if !ok {
			return fmt.Errorf("stdpng: palette output from %T", img)
		}
		for y := 0; y < height; y++ {
			copy(rows.Row(buf, y), p.Pix[y*p.Stride:y*p.Stride+width])
		}
		r.state = stateDone
		return nil
	}

	conv := r.converter()
	for y := 0; y < height; y++ {
		row := rows.Row(buf, y)
		for x := 0; x < width; x++ {
			s := sampleAt(img, b.Min.X+x, b.Min.Y+y)
			conv.put(row, x, s)
		}
	}
	r.state = stateDone
	return nil
}

func (r *reader) Destroy(info *engine.Info) {
	r.read = nil
	r.prefix = bytes.Buffer{}
	r.state = stateDone
	if info != nil {
		*info = engine.Info{}
	}
}
