// Package enginetest wraps a PNG engine to account for every handle it
// hands out and to inject faults.
//
// A Tracker counts reader, writer and info handles as they are created and
// destroyed and records any handle destroyed twice. Faults make the engine
// return nil handles, fail or panic inside a named primitive, or rewrite the
// header reported after transforms.
package enginetest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/cocosip/go-png-codec/png/engine"
)

// Op names an engine primitive a fault can target.
type Op string

const (
	OpReadInfo          Op = "ReadInfo"
	OpSetPaletteToRGB   Op = "SetPaletteToRGB"
	OpSetGrayToRGB      Op = "SetGrayToRGB"
	OpSetStrip16        Op = "SetStrip16"
	OpSetAddAlpha       Op = "SetAddAlpha"
	OpSetTRNSToAlpha    Op = "SetTRNSToAlpha"
	OpSetPacking        Op = "SetPacking"
	OpInterlaceHandling Op = "SetInterlaceHandling"
	OpReadUpdateInfo    Op = "ReadUpdateInfo"
	OpReadImage         Op = "ReadImage"
	OpSetHeader         Op = "SetHeader"
	OpSetRows           Op = "SetRows"
	OpWritePNG          Op = "WritePNG"
)

// ErrInjected is returned by a primitive named in Fault.FailOn when
// Fault.Err is nil.
var ErrInjected = errors.New("enginetest: injected failure")

// Fault describes what the tracked engine does wrong.
type Fault struct {
	NilReader bool
	NilWriter bool
	NilInfo   bool

	// FailOn makes the named primitive return Err (or ErrInjected) without
	// reaching the wrapped engine. Only primitives with an error result can
	// fail.
	FailOn Op
	Err    error

	// PanicOn makes the named primitive panic.
	PanicOn Op

	// RewritePost edits the header after a successful ReadUpdateInfo.
	RewritePost func(h *engine.Header)
}

// Stats is a snapshot of handle accounting.
type Stats struct {
	Readers          int
	Writers          int
	Infos            int
	ReadersDestroyed int
	WritersDestroyed int
	InfosDestroyed   int
	DoubleDestroys   int
}

// Balanced reports whether every created handle was destroyed exactly once.
func (s Stats) Balanced() bool {
	return s.Readers == s.ReadersDestroyed &&
		s.Writers == s.WritersDestroyed &&
		s.Infos == s.InfosDestroyed &&
		s.DoubleDestroys == 0
}

func (s Stats) String() string {
	return fmt.Sprintf("readers %d/%d writers %d/%d infos %d/%d double %d",
		s.ReadersDestroyed, s.Readers, s.WritersDestroyed, s.Writers,
		s.InfosDestroyed, s.Infos, s.DoubleDestroys)
}

// Tracker is an engine.Engine that wraps another one. It is safe for
// concurrent use.
type Tracker struct {
	inner engine.Engine

	mu    sync.Mutex
	fault Fault
	stats Stats
	live  map[*engine.Info]bool
}

var _ engine.Engine = (*Tracker)(nil)

// New wraps inner.
func New(inner engine.Engine) *Tracker {
	return &Tracker{inner: inner, live: make(map[*engine.Info]bool)}
}

// WithFault wraps inner and injects f.
func WithFault(inner engine.Engine, f Fault) *Tracker {
	t := New(inner)
	t.fault = f
	return t
}

// Stats returns the current counts.
func (t *Tracker) Stats() Stats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stats
}

// Balanced is shorthand for t.Stats().Balanced().
func (t *Tracker) Balanced() bool {
	return t.Stats().Balanced()
}

func (t *Tracker) NewReader() engine.Reader {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fault.NilReader {
		return nil
	}
	inner := t.inner.NewReader()
	if inner == nil {
		return nil
	}
	t.stats.Readers++
	return &reader{t: t, inner: inner}
}

func (t *Tracker) NewWriter() engine.Writer {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fault.NilWriter {
		return nil
	}
	inner := t.inner.NewWriter()
	if inner == nil {
		return nil
	}
	t.stats.Writers++
	return &writer{t: t, inner: inner}
}

// hook applies FailOn and PanicOn for op.
func (t *Tracker) hook(op Op) error {
	t.mu.Lock()
	f := t.fault
	t.mu.Unlock()
	if f.PanicOn == op {
		panic(fmt.Sprintf("enginetest: injected panic in %s", op))
	}
	if f.FailOn == op {
		if f.Err != nil {
			return f.Err
		}
		return ErrInjected
	}
	return nil
}

// trigger is hook for primitives without an error result.
func (t *Tracker) trigger(op Op) {
	t.mu.Lock()
	f := t.fault
	t.mu.Unlock()
	if f.PanicOn == op {
		panic(fmt.Sprintf("enginetest: injected panic in %s", op))
	}
}

func (t *Tracker) createInfo(create func() *engine.Info) *engine.Info {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.fault.NilInfo {
		return nil
	}
	info := create()
	if info != nil {
		t.stats.Infos++
		t.live[info] = true
	}
	return info
}

// destroy records a handle release and reports whether the wrapped handle
// should see it.
func (t *Tracker) destroy(destroyed *bool, count *int, info *engine.Info) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if *destroyed {
		t.stats.DoubleDestroys++
		return false
	}
	*destroyed = true
	*count++
	if info != nil && t.live[info] {
		delete(t.live, info)
		t.stats.InfosDestroyed++
	}
	return true
}

type reader struct {
	t         *Tracker
	inner     engine.Reader
	destroyed bool
}

func (r *reader) CreateInfo() *engine.Info {
	return r.t.createInfo(r.inner.CreateInfo)
}

func (r *reader) SetReadFn(fn engine.ReadFunc) {
	r.inner.SetReadFn(fn)
}

func (r *reader) ReadInfo(info *engine.Info) error {
	if err := r.t.hook(OpReadInfo); err != nil {
		return err
	}
	return r.inner.ReadInfo(info)
}

func (r *reader) SetPaletteToRGB() {
	r.t.trigger(OpSetPaletteToRGB)
	r.inner.SetPaletteToRGB()
}

func (r *reader) SetGrayToRGB() {
	r.t.trigger(OpSetGrayToRGB)
	r.inner.SetGrayToRGB()
}

func (r *reader) SetStrip16() {
	r.t.trigger(OpSetStrip16)
	r.inner.SetStrip16()
}

func (r *reader) SetAddAlpha(filler uint8, loc engine.FillerLoc) {
	r.t.trigger(OpSetAddAlpha)
	r.inner.SetAddAlpha(filler, loc)
}

func (r *reader) SetTRNSToAlpha() {
	r.t.trigger(OpSetTRNSToAlpha)
	r.inner.SetTRNSToAlpha()
}

func (r *reader) SetPacking() {
	r.t.trigger(OpSetPacking)
	r.inner.SetPacking()
}

func (r *reader) SetInterlaceHandling() int {
	r.t.trigger(OpInterlaceHandling)
	return r.inner.SetInterlaceHandling()
}

func (r *reader) ReadUpdateInfo(info *engine.Info) error {
	if err := r.t.hook(OpReadUpdateInfo); err != nil {
		return err
	}
	if err := r.inner.ReadUpdateInfo(info); err != nil {
		return err
	}
	r.t.mu.Lock()
	rewrite := r.t.fault.RewritePost
	r.t.mu.Unlock()
	if rewrite != nil && info != nil {
		rewrite(&info.Header)
	}
	return nil
}

func (r *reader) ReadImage(buf []byte, rows engine.Rows) error {
	if err := r.t.hook(OpReadImage); err != nil {
		return err
	}
	return r.inner.ReadImage(buf, rows)
}

func (r *reader) Destroy(info *engine.Info) {
	if r.t.destroy(&r.destroyed, &r.t.stats.ReadersDestroyed, info) {
		r.inner.Destroy(info)
	}
}

type writer struct {
	t         *Tracker
	inner     engine.Writer
	destroyed bool
}

func (w *writer) CreateInfo() *engine.Info {
	return w.t.createInfo(w.inner.CreateInfo)
}

func (w *writer) SetWriteFn(write engine.WriteFunc, flush engine.FlushFunc) {
	w.inner.SetWriteFn(write, flush)
}

func (w *writer) SetHeader(info *engine.Info, h engine.Header) error {
	if err := w.t.hook(OpSetHeader); err != nil {
		return err
	}
	return w.inner.SetHeader(info, h)
}

func (w *writer) SetRows(info *engine.Info, buf []byte, rows engine.Rows) {
	w.t.trigger(OpSetRows)
	w.inner.SetRows(info, buf, rows)
}

func (w *writer) WritePNG(info *engine.Info) error {
	if err := w.t.hook(OpWritePNG); err != nil {
		return err
	}
	return w.inner.WritePNG(info)
}

func (w *writer) Destroy(info *engine.Info) {
	if w.t.destroy(&w.destroyed, &w.t.stats.WritersDestroyed, info) {
		w.inner.Destroy(info)
	}
}
