package logger

import (
	"bufio"
	"errors"
	"io"
	"sync"
)

// sink serializes complete lines onto every output. After the first write
// error it stops writing and reports that error.
type sink struct {
	mu      sync.Mutex
	w       *bufio.Writer
	closers []io.Closer
	err     error
	closed  bool
}

func newSink(outputs []io.Writer, closers []io.Closer) *sink {
	return &sink{
		w:       bufio.NewWriterSize(io.MultiWriter(outputs...), 16<<10),
		closers: closers,
	}
}

func (s *sink) writeLine(line []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	if s.closed {
		return errSinkClosed
	}
	_, _ = s.w.Write(line)
	if len(line) == 0 || line[len(line)-1] != '\n' {
		_ = s.w.WriteByte('\n')
	}
	s.err = s.w.Flush()
	return s.err
}

func (s *sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	errs := []error{s.w.Flush()}
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

var errSinkClosed = errors.New("logger: sink closed")
