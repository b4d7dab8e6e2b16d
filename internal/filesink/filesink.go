// Package filesink is the append-only buffered writer a download session
// streams into. Opening never truncates, so a partial file is a resume point.
package filesink

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/tanq16/resumer/internal/utils"
)

var ErrClosed = errors.New("file sink is closed")

type Sink struct {
	path   string
	file   *os.File
	buf    *bufio.Writer
	closed bool
}

// Open creates path if absent and positions writes at its end.
func Open(path string) (*Sink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("error opening output file: %w", err)
	}
	return &Sink{
		path: path,
		file: file,
		buf:  bufio.NewWriterSize(file, utils.DefaultBufferSize),
	}, nil
}

func (s *Sink) Write(chunk []byte) (int, error) {
	if s.closed {
		return 0, ErrClosed
	}
	n, err := s.buf.Write(chunk)
	if err != nil {
		return n, fmt.Errorf("error writing to output file: %w", err)
	}
	return n, nil
}

// Flush pushes buffered bytes to disk, syncs and closes the file. Calling it
// again is a no-op.
func (s *Sink) Flush() error {
	if s.closed {
		return nil
	}
	s.closed = true
	flushErr := s.buf.Flush()
	syncErr := s.file.Sync()
	closeErr := s.file.Close()
	if err := errors.Join(flushErr, syncErr, closeErr); err != nil {
		return fmt.Errorf("error flushing output file: %w", err)
	}
	return nil
}

// Discard flushes and then deletes the file.
func (s *Sink) Discard() error {
	flushErr := s.Flush()
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("error removing output file: %w", errors.Join(flushErr, err))
	}
	return nil
}

// Reset drops everything written so far, including bytes from earlier
// sessions. Only used when the server ignores a range request.
func (s *Sink) Reset() error {
	if s.closed {
		return ErrClosed
	}
	s.buf.Reset(s.file)
	if err := s.file.Truncate(0); err != nil {
		return fmt.Errorf("error truncating output file: %w", err)
	}
	return nil
}

// Size is the number of bytes on disk plus those still buffered.
func (s *Sink) Size() (int64, error) {
	if s.closed {
		return utils.LocalSize(s.path), nil
	}
	info, err := s.file.Stat()
	if err != nil {
		return 0, err
	}
	return info.Size() + int64(s.buf.Buffered()), nil
}
