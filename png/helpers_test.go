package png

import (
	"bytes"
	"encoding/binary"
	"hash/crc32"
	"testing"

	"github.com/cocosip/go-png-codec/png/engine"
	"github.com/cocosip/go-png-codec/png/engine/stdpng"
	"github.com/cocosip/go-png-codec/png/enginetest"
	"github.com/klauspost/compress/zlib"
)

// rawPNG assembles a PNG from an IHDR, optional ancillary chunks placed
// before IDAT, and unfiltered scanline data (each row already prefixed with
// its filter byte).
type rawPNG struct {
	header engine.Header
	chunks []rawChunk
	data   []byte
}

type rawChunk struct {
	typ  string
	data []byte
}

func (p rawPNG) bytes(t *testing.T) []byte {
	t.Helper()
	var out bytes.Buffer
	out.Write(engine.Signature())

	var ihdr [13]byte
	binary.BigEndian.PutUint32(ihdr[0:4], p.header.Width)
	binary.BigEndian.PutUint32(ihdr[4:8], p.header.Height)
	ihdr[8] = p.header.BitDepth
	ihdr[9] = uint8(p.header.ColorType)
	ihdr[12] = p.header.Interlace
	writeChunk(&out, "IHDR", ihdr[:])

	for _, c := range p.chunks {
		writeChunk(&out, c.typ, c.data)
	}

	var z bytes.Buffer
	zw := zlib.NewWriter(&z)
	if _, err := zw.Write(p.data); err != nil {
		t.Fatalf("deflate: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("deflate close: %v", err)
	}
	writeChunk(&out, "IDAT", z.Bytes())
	writeChunk(&out, "IEND", nil)
	return out.Bytes()
}

func writeChunk(out *bytes.Buffer, typ string, data []byte) {
	var n [4]byte
	binary.BigEndian.PutUint32(n[:], uint32(len(data)))
	out.Write(n[:])
	out.WriteString(typ)
	out.Write(data)
	crc := crc32.NewIEEE()
	crc.Write([]byte(typ))
	crc.Write(data)
	binary.BigEndian.PutUint32(n[:], crc.Sum32())
	out.Write(n[:])
}

// scanlines prefixes every row of pix with filter type None.
func scanlines(pix []byte, stride, height int) []byte {
	out := make([]byte, 0, (stride+1)*height)
	for y := 0; y < height; y++ {
		out = append(out, 0)
		out = append(out, pix[y*stride:(y+1)*stride]...)
	}
	return out
}

// adam7 lays 8-bit pix out as the seven interlace passes.
func adam7(pix []byte, width, height, bpp int) []byte {
	passes := [7][4]int{
		{0, 0, 8, 8}, {4, 0, 8, 8}, {0, 4, 4, 8}, {2, 0, 4, 4},
		{0, 2, 2, 4}, {1, 0, 2, 2}, {0, 1, 1, 2},
	}
	var out []byte
	for _, p := range passes {
		x0, y0, dx, dy := p[0], p[1], p[2], p[3]
		for y := y0; y < height; y += dy {
			if x0 >= width {
				break
			}
			out = append(out, 0)
			for x := x0; x < width; x += dx {
				i := (y*width + x) * bpp
				out = append(out, pix[i:i+bpp]...)
			}
		}
	}
	return out
}

func tracked(t *testing.T, f enginetest.Fault) (*enginetest.Tracker, *Decoder, *Encoder) {
	t.Helper()
	tr := enginetest.WithFault(stdpng.New(), f)
	dec, err := NewDecoder(&Options{Engine: tr})
	if err != nil {
		t.Fatalf("NewDecoder failed: %v", err)
	}
	enc, err := NewEncoder(&Options{Engine: tr})
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	return tr, dec, enc
}

func checkBalanced(t *testing.T, tr *enginetest.Tracker) {
	t.Helper()
	if s := tr.Stats(); !s.Balanced() {
		t.Errorf("engine handles not balanced: %s", s)
	}
}

func filled(f Format, width, height int, sample byte) *Image {
	pix := bytes.Repeat([]byte{sample}, width*height*f.BytesPerPixel())
	return &Image{Width: uint32(width), Height: uint32(height), Pixels: newPixelBuffer(f, pix)}
}

func kindOf(t *testing.T, err error) *Error {
	t.Helper()
	if err == nil {
		t.Fatalf("expected an error, got nil")
	}
	perr, ok := err.(*Error)
	if !ok {
		t.Fatalf("error %v is %T, want *png.Error", err, err)
	}
	return perr
}
