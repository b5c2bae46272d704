package png

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/cocosip/go-png-codec/png/engine"
)

// session is one engine session: the handle's destroy primitive plus the
// info handle. It belongs to a single call on a single goroutine and is only
// ever passed by pointer.
//
// Every fallible engine primitive runs through guard. A failed guard leaves
// the engine state undefined, so it releases the handles on the spot; the
// caller's deferred release then finds nothing to do.
type session struct {
	phase    Phase
	info     *engine.Info
	destroy  func(*engine.Info)
	active   bool
	released bool
	ioErr    func() error
	log      *slog.Logger
}

func newSession(phase Phase, log *slog.Logger) *session {
	return &session{phase: phase, log: log}
}

// guard runs fn as one guarded engine call. Errors and panics from fn become
// a typed *Error after the session is released.
func (s *session) guard(op string, fn func() error) (err error) {
	if s.released {
		return &Error{Kind: KindEngineFailure, Phase: s.phase, Op: op, Err: errSessionReleased}
	}
	if s.active {
		return &Error{Kind: KindEngineFailure, Phase: s.phase, Op: op, Err: errReentrant}
	}
	s.active = true
	defer func() {
		s.active = false
		if r := recover(); r != nil {
			err = fmt.Errorf("engine aborted: %v", r)
		}
		if err != nil {
			err = s.fail(op, err)
		}
	}()
	return fn()
}

// guarded is guard for primitives that produce a value.
func guarded[T any](s *session, op string, fn func() (T, error)) (T, error) {
	var v T
	err := s.guard(op, func() error {
		var err error
		v, err = fn()
		return err
	})
	return v, err
}

func (s *session) fail(op string, cause error) error {
	s.release()

	var perr *Error
	if errors.As(cause, &perr) {
		return perr
	}
	if s.ioErr != nil {
		if ioe := s.ioErr(); ioe != nil {
			s.log.Debug("png: sink failure", "op", op, "phase", s.phase.String(), "err", ioe)
			return &Error{Kind: KindIO, Phase: s.phase, Op: op, Err: ioe}
		}
	}
	s.log.Debug("png: engine failure", "op", op, "phase", s.phase.String(), "err", cause)
	return &Error{Kind: KindEngineFailure, Phase: s.phase, Op: op, Err: cause}
}

// bind records the handle's destroy primitive. Until bind runs there is
// nothing to release.
func (s *session) bind(destroy func(*engine.Info)) {
	s.destroy = destroy
}

// release destroys the handles once. Later calls are no-ops.
func (s *session) release() {
	if s.released {
		return
	}
	s.released = true
	if s.destroy == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Debug("png: engine panicked during release", "phase", s.phase.String(), "panic", r)
		}
	}()
	s.destroy(s.info)
	s.log.Debug("png: session released", "phase", s.phase.String())
}
