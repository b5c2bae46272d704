// Package engine defines the contract between the png adaptation layer and
// a streaming PNG codec engine.
//
// An engine owns the wire format: chunk framing, CRCs, deflate and filtering.
// The adaptation layer drives it through handles created per call. Byte I/O
// flows through callbacks, transforms are requested before row
// materialization, and rows are addressed through a Rows table of offsets
// into a caller-owned buffer.
//
// Handles are single-goroutine and not reentrant. A Reader or Writer must be
// released with Destroy exactly once, together with the Info created from it.
package engine

// ReadFunc fills dst from the byte source. It returns the number of bytes
// copied; a short read is reported with a non-nil error.
type ReadFunc func(dst []byte) (int, error)

// WriteFunc appends p to the byte sink.
type WriteFunc func(p []byte) error

// FlushFunc flushes the byte sink.
type FlushFunc func() error

// Engine creates read and write handles. A nil handle means the engine could
// not allocate one.
type Engine interface {
	NewReader() Reader
	NewWriter() Writer
}

// Reader is a decode session handle.
type Reader interface {
	// CreateInfo allocates the metadata handle bound to this session.
	CreateInfo() *Info

	// SetReadFn binds the byte source. It must be called before ReadInfo.
	SetReadFn(fn ReadFunc)

	// ReadInfo consumes the signature and every chunk up to the first image
	// data chunk, filling info with the stored header.
	ReadInfo(info *Info) error

	SetPaletteToRGB()
	SetGrayToRGB()
	SetStrip16()
	SetAddAlpha(filler uint8, loc FillerLoc)
	SetTRNSToAlpha()
	SetPacking()

	// SetInterlaceHandling asks the engine to deinterlace and returns the
	// number of passes the stored image uses.
	SetInterlaceHandling() int

	// ReadUpdateInfo recomputes info.Header for the requested transforms.
	ReadUpdateInfo(info *Info) error

	// ReadImage materializes every row of the transformed image into buf
	// through rows.
	ReadImage(buf []byte, rows Rows) error

	// Destroy releases the handle and info. info may be nil.
	Destroy(info *Info)
}

// Writer is an encode session handle.
type Writer interface {
	CreateInfo() *Info

	// SetWriteFn binds the byte sink.
	SetWriteFn(write WriteFunc, flush FlushFunc)

	// SetHeader validates and stores the image header.
	SetHeader(info *Info, h Header) error

	// SetRows points the engine at the source pixels.
	SetRows(info *Info, buf []byte, rows Rows)

	// WritePNG emits the signature, header, image data and trailer, then
	// flushes the sink.
	WritePNG(info *Info) error

	Destroy(info *Info)
}
