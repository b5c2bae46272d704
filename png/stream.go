package png

import (
	"fmt"
	"io"
)

// cursor is the decode-side byte source bound to one session.
type cursor struct {
	src []byte
	off int
}

// read copies what is left, up to len(dst). A request that runs past the end
// still copies the tail but reports io.ErrUnexpectedEOF, so truncated input
// fails in the engine rather than decoding stale buffer contents.
func (c *cursor) read(dst []byte) (int, error) {
	n := copy(dst, c.src[c.off:])
	c.off += n
	if n < len(dst) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

// sink is the encode-side byte sink bound to one session. The first write or
// flush failure is kept so the session can report it as an I/O failure.
type sink struct {
	w   io.Writer
	err error
}

type flusher interface {
	Flush() error
}

func (s *sink) write(p []byte) (err error) {
	if s.err != nil {
		return s.err
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("writer panicked: %v", r)
		}
		if err != nil {
			s.err = err
		}
	}()
	n, err := s.w.Write(p)
	if err == nil && n < len(p) {
		err = io.ErrShortWrite
	}
	return err
}

// flush is a no-op unless the writer buffers.
func (s *sink) flush() (err error) {
	if s.err != nil {
		return s.err
	}
	f, ok := s.w.(flusher)
	if !ok {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("writer panicked on flush: %v", r)
		}
		if err != nil {
			s.err = err
		}
	}()
	return f.Flush()
}

func (s *sink) failure() error {
	return s.err
}
