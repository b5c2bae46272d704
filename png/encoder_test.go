package png

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"image/color"
	imagepng "image/png"
	"io"
	"math/rand"
	"testing"

	"github.com/cocosip/go-png-codec/codec"
	"github.com/cocosip/go-png-codec/png/engine"
	"github.com/cocosip/go-png-codec/png/enginetest"
)

// chunkTypes walks the chunk framing of a PNG.
func chunkTypes(t *testing.T, data []byte) []string {
	t.Helper()
	var types []string
	for off := 8; off < len(data); {
		if off+8 > len(data) {
			t.Fatalf("truncated chunk header at %d", off)
		}
		n := int(binary.BigEndian.Uint32(data[off:]))
		types = append(types, string(data[off+4:off+8]))
		off += 12 + n
	}
	return types
}

func TestEncodeFormats(t *testing.T) {
	tests := []struct {
		format    Format
		colorType engine.ColorType
		pixel     []byte
		want      color.NRGBA
	}{
		{FormatGray8, engine.ColorGray, []byte{42}, color.NRGBA{42, 42, 42, 255}},
		{FormatGrayAlpha8, engine.ColorGrayAlpha, []byte{42, 7}, color.NRGBA{42, 42, 42, 7}},
		{FormatRGB8, engine.ColorRGB, []byte{1, 2, 3}, color.NRGBA{1, 2, 3, 255}},
		{FormatRGBA8, engine.ColorRGBA, []byte{1, 2, 3, 4}, color.NRGBA{1, 2, 3, 4}},
	}

	for _, tt := range tests {
		t.Run(tt.format.String(), func(t *testing.T) {
			tr, _, enc := tracked(t, enginetest.Fault{})
			img, err := NewImage(3, 2, tt.format)
			if err != nil {
				t.Fatalf("NewImage failed: %v", err)
			}
			copy(img.Pixels.Bytes()[img.Stride():], tt.pixel) // pixel (0,1)

			data, err := enc.Encode(img)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if !IsRecognized(data) {
				t.Fatalf("output lacks the PNG signature")
			}
			if depth, ct := data[24], engine.ColorType(data[25]); depth != 8 || ct != tt.colorType {
				t.Errorf("IHDR says %s/%d, want %s/8", ct, depth, tt.colorType)
			}
			if interlace := data[28]; interlace != engine.InterlaceNone {
				t.Errorf("IHDR interlace = %d, want none", interlace)
			}

			m, err := imagepng.Decode(bytes.NewReader(data))
			if err != nil {
				t.Fatalf("image/png rejected the output: %v", err)
			}
			if b := m.Bounds(); b.Dx() != 3 || b.Dy() != 2 {
				t.Errorf("image/png sees %dx%d, want 3x2", b.Dx(), b.Dy())
			}
			if got := color.NRGBAModel.Convert(m.At(0, 1)).(color.NRGBA); got != tt.want {
				t.Errorf("pixel (0,1) = %v, want %v", got, tt.want)
			}
			checkBalanced(t, tr)
		})
	}
}

func TestEncodeChunkLayout(t *testing.T) {
	// Random bytes do not compress, so a 64 KiB image spans several IDATs.
	img := filled(FormatRGBA8, 128, 128, 0)
	rand.New(rand.NewSource(1)).Read(img.Pixels.Bytes())

	enc, err := NewEncoder(&Options{BaseOptions: codec.BaseOptions{CompressionLevel: codec.NoCompression}})
	if err != nil {
		t.Fatalf("NewEncoder failed: %v", err)
	}
	data, err := enc.Encode(img)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	types := chunkTypes(t, data)
	if types[0] != "IHDR" || types[len(types)-1] != "IEND" {
		t.Errorf("chunk order %v", types)
	}
	idats := 0
	for _, typ := range types[1 : len(types)-1] {
		if typ != "IDAT" {
			t.Errorf("unexpected chunk %q", typ)
		}
		idats++
	}
	if idats < 2 {
		t.Errorf("%d IDAT chunks, want several", idats)
	}
	t.Logf("%d bytes in %d IDAT chunks", len(data), idats)

	decoded, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if !bytes.Equal(decoded.Pixels.Bytes(), img.Pixels.Bytes()) {
		t.Errorf("round trip changed the pixels")
	}
}

func TestEncodeCompressionLevels(t *testing.T) {
	img := filled(FormatRGB8, 64, 64, 0)
	for i := range img.Pixels.Bytes() {
		img.Pixels.Bytes()[i] = byte(i % 7)
	}

	sizes := make(map[int]int)
	for _, level := range []int{codec.NoCompression, codec.DefaultCompression, codec.BestSpeed, codec.BestCompression} {
		enc, err := NewEncoder(&Options{BaseOptions: codec.BaseOptions{CompressionLevel: level}})
		if err != nil {
			t.Fatalf("NewEncoder(level %d) failed: %v", level, err)
		}
		data, err := enc.Encode(img)
		if err != nil {
			t.Fatalf("Encode(level %d) failed: %v", level, err)
		}
		decoded, err := Decode(data)
		if err != nil {
			t.Fatalf("Decode(level %d) failed: %v", level, err)
		}
		rgba := decoded.Pixels.Bytes()
		src := img.Pixels.Bytes()
		for p := 0; p < 64*64; p++ {
			if !bytes.Equal(rgba[p*4:p*4+3], src[p*3:p*3+3]) {
				t.Fatalf("level %d: pixel %d differs", level, p)
			}
		}
		sizes[level] = len(data)
		t.Logf("level %d: %d bytes", level, len(data))
	}
	if sizes[codec.NoCompression] <= sizes[codec.BestCompression] {
		t.Errorf("stored output (%d) not larger than best compression (%d)", sizes[codec.NoCompression], sizes[codec.BestCompression])
	}

	if _, err := NewEncoder(&Options{BaseOptions: codec.BaseOptions{CompressionLevel: -3}}); !errors.Is(err, codec.ErrInvalidCompressionLevel) {
		t.Errorf("NewEncoder(level -3) = %v, want ErrInvalidCompressionLevel", err)
	}
}

func TestEncodeInvalidImage(t *testing.T) {
	tests := []struct {
		name string
		img  *Image
	}{
		{"nil image", nil},
		{"nil pixels", &Image{Width: 2, Height: 2}},
		{"short buffer", &Image{Width: 2, Height: 2, Pixels: RGB8(make([]byte, 11))}},
		{"long buffer", &Image{Width: 2, Height: 2, Pixels: Gray8(make([]byte, 5))}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, enc := tracked(t, enginetest.Fault{})
			data, err := enc.Encode(tt.img)
			if data != nil {
				t.Errorf("Encode returned data for an invalid image")
			}
			perr := kindOf(t, err)
			if perr.Kind != KindInvalidImage || perr.Phase != PhaseWrite {
				t.Errorf("got %v, want invalid image in write phase", err)
			}
			if !errors.Is(err, ErrInvalidImage) {
				t.Errorf("errors.Is(err, ErrInvalidImage) = false")
			}
			if s := tr.Stats(); s.Writers != 0 {
				t.Errorf("invalid image reached the engine: %s", s)
			}
		})
	}
}

func TestEncodeEmptyImage(t *testing.T) {
	// An empty buffer is consistent with 0x0, but PNG has no empty images.
	tr, _, enc := tracked(t, enginetest.Fault{})
	_, err := enc.Encode(&Image{Pixels: RGBA8(nil)})
	if perr := kindOf(t, err); perr.Kind != KindEngineFailure || perr.Op != "set header" {
		t.Errorf("got %v, want engine failure on set header", err)
	}
	checkBalanced(t, tr)
}

func TestEncodeWriterFailures(t *testing.T) {
	img := filled(FormatRGBA8, 16, 16, 3)

	tests := []struct {
		name  string
		w     io.Writer
		cause error
	}{
		{"write error in signature", &failWriter{after: 4}, errDiskFull},
		{"write error in image data", &failWriter{after: 50}, errDiskFull},
		{"short write", shortWriter{}, io.ErrShortWrite},
		{"panicking writer", panicWriter{}, nil},
		{"flush error", &flushFailWriter{}, errDiskFull},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, enc := tracked(t, enginetest.Fault{})
			err := enc.EncodeTo(tt.w, img)
			perr := kindOf(t, err)
			if perr.Kind != KindIO || perr.Phase != PhaseWrite {
				t.Errorf("got %v, want I/O failure in write phase", err)
			}
			if !errors.Is(err, ErrIO) {
				t.Errorf("errors.Is(err, ErrIO) = false")
			}
			if tt.cause != nil && !errors.Is(err, tt.cause) {
				t.Errorf("cause lost: %v", err)
			}
			checkBalanced(t, tr)
		})
	}
}

func TestEncodeToNilWriter(t *testing.T) {
	err := EncodeTo(nil, filled(FormatGray8, 1, 1, 0))
	if perr := kindOf(t, err); perr.Kind != KindIO {
		t.Errorf("got %v, want I/O failure", err)
	}
}

func TestEncodeToBufio(t *testing.T) {
	img := filled(FormatGrayAlpha8, 9, 9, 77)
	want, err := Encode(img)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	var buf bytes.Buffer
	bw := bufio.NewWriterSize(&buf, 1<<16)
	if err := EncodeTo(bw, img); err != nil {
		t.Fatalf("EncodeTo failed: %v", err)
	}
	if !bytes.Equal(buf.Bytes(), want) {
		t.Errorf("bufio writer was not flushed: got %d bytes, want %d", buf.Len(), len(want))
	}
}

func TestEncodeFaults(t *testing.T) {
	img := filled(FormatRGB8, 4, 4, 8)

	tests := []struct {
		name     string
		fault    enginetest.Fault
		wantKind Kind
		wantOp   string
	}{
		{"nil writer", enginetest.Fault{NilWriter: true}, KindHandleCreationFailed, "create"},
		{"nil info", enginetest.Fault{NilInfo: true}, KindInfoCreationFailed, "create"},
		{"set header fails", enginetest.Fault{FailOn: enginetest.OpSetHeader}, KindEngineFailure, "set header"},
		{"write fails", enginetest.Fault{FailOn: enginetest.OpWritePNG}, KindEngineFailure, "write png"},
		{"set rows panics", enginetest.Fault{PanicOn: enginetest.OpSetRows}, KindEngineFailure, "write png"},
		{"write panics", enginetest.Fault{PanicOn: enginetest.OpWritePNG}, KindEngineFailure, "write png"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, _, enc := tracked(t, tt.fault)
			var buf bytes.Buffer
			err := enc.EncodeTo(&buf, img)
			perr := kindOf(t, err)
			if perr.Kind != tt.wantKind || perr.Op != tt.wantOp || perr.Phase != PhaseWrite {
				t.Errorf("got kind %d op %q phase %s, want kind %d op %q", perr.Kind, perr.Op, perr.Phase, tt.wantKind, tt.wantOp)
			}
			checkBalanced(t, tr)
		})
	}
}

func TestEncodeDoesNotCopyOrModify(t *testing.T) {
	img := filled(FormatRGBA8, 5, 5, 0)
	for i := range img.Pixels.Bytes() {
		img.Pixels.Bytes()[i] = byte(i)
	}
	before := append([]byte(nil), img.Pixels.Bytes()...)
	if _, err := Encode(img); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if !bytes.Equal(before, img.Pixels.Bytes()) {
		t.Errorf("Encode modified the source pixels")
	}
}

func benchImage(f Format, width, height int) *Image {
	img := filled(f, width, height, 0)
	pix := img.Pixels.Bytes()
	bpp := f.BytesPerPixel()
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			for c := 0; c < bpp; c++ {
				pix[(y*width+x)*bpp+c] = uint8(x + 2*y + 50*c)
			}
		}
	}
	return img
}

func benchEncode(b *testing.B, img *Image, level int) {
	b.Helper()
	enc, err := NewEncoder(&Options{BaseOptions: codec.BaseOptions{CompressionLevel: level}})
	if err != nil {
		b.Fatalf("NewEncoder failed: %v", err)
	}
	b.SetBytes(int64(len(img.Pixels.Bytes())))
	b.ReportAllocs()

	var buf bytes.Buffer
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		buf.Reset()
		if err := enc.EncodeTo(&buf, img); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkEncodeRGBA512 benchmarks encoding a 512x512 RGBA8 image
func BenchmarkEncodeRGBA512(b *testing.B) {
	benchEncode(b, benchImage(FormatRGBA8, 512, 512), codec.DefaultCompression)
}

// BenchmarkEncodeRGB512 benchmarks encoding a 512x512 RGB8 image
func BenchmarkEncodeRGB512(b *testing.B) {
	benchEncode(b, benchImage(FormatRGB8, 512, 512), codec.DefaultCompression)
}

// BenchmarkEncodeGray512 benchmarks encoding a 512x512 Gray8 image
func BenchmarkEncodeGray512(b *testing.B) {
	benchEncode(b, benchImage(FormatGray8, 512, 512), codec.DefaultCompression)
}

// Compression level comparison on the same RGBA8 image
func BenchmarkEncodeRGBA512BestSpeed(b *testing.B) {
	benchEncode(b, benchImage(FormatRGBA8, 512, 512), codec.BestSpeed)
}

func BenchmarkEncodeRGBA512BestCompression(b *testing.B) {
	benchEncode(b, benchImage(FormatRGBA8, 512, 512), codec.BestCompression)
}

func BenchmarkEncodeRGBA512NoCompression(b *testing.B) {
	benchEncode(b, benchImage(FormatRGBA8, 512, 512), codec.NoCompression)
}
