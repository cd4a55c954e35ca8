package stream

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/meatpack/internal/codec"
	"github.com/danmuck/meatpack/internal/observability"
	"github.com/rs/zerolog"
)

// Scanner reads packed input and yields one unpacked line per Scan, in the
// manner of bufio.Scanner.
type Scanner struct {
	r     *bufio.Reader
	u     *codec.Unpacker
	log   zerolog.Logger
	line  []byte
	err   error
	stats Stats
}

func NewScanner(r io.Reader, cfg UnpackConfig) *Scanner {
	return &Scanner{
		r:   bufio.NewReader(r),
		u:   cfg.newUnpacker(),
		log: observability.Nop(cfg.Logger),
	}
}

// Scan advances to the next line. It returns false at end of input or on
// the first error.
func (s *Scanner) Scan() bool {
	if s.err != nil {
		return false
	}
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.err = io.EOF
				if s.u.DataRemains() {
					s.err = unterminated(s.u.Pending())
				}
			} else {
				s.err = fmt.Errorf("stream: read: %w", err)
			}
			s.line = nil
			return false
		}
		s.stats.BytesIn++

		line, err := s.u.Unpack(b)
		if err != nil {
			s.err = fmt.Errorf("stream: unpack byte %d: %w", s.stats.BytesIn-1, err)
			s.line = nil
			return false
		}
		if line != nil {
			s.line = line
			s.stats.Lines++
			s.stats.BytesOut += int64(len(line))
			return true
		}
	}
}

// Bytes returns the current line including its newline. The slice is only
// valid until the next call to Scan.
func (s *Scanner) Bytes() []byte { return s.line }

func (s *Scanner) Text() string { return string(s.line) }

// Err returns the first non-EOF error.
func (s *Scanner) Err() error {
	if errors.Is(s.err, io.EOF) {
		return nil
	}
	return s.err
}

func (s *Scanner) Stats() Stats { return s.stats }

// NoSpaces reports the receiver's current mode.
func (s *Scanner) NoSpaces() bool { return s.u.NoSpaces() }
