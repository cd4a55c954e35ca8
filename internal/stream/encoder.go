package stream

import (
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/meatpack/internal/codec"
	"github.com/danmuck/meatpack/internal/observability"
	"github.com/danmuck/meatpack/internal/protocol"
	"github.com/rs/zerolog"
)

var ErrClosed = errors.New("stream: encoder closed")

var _ io.WriteCloser = (*Encoder)(nil)

// Encoder packs text written to it into w. Completed lines are written
// through as soon as their newline arrives. The header goes out before the
// first packed byte.
type Encoder struct {
	w      io.Writer
	p      *codec.Packer
	log    zerolog.Logger
	stats  Stats
	header bool
	closed bool
}

func NewEncoder(w io.Writer, cfg PackConfig) *Encoder {
	return &Encoder{
		w:   w,
		p:   cfg.newPacker(),
		log: observability.Nop(cfg.Logger),
	}
}

// Write packs b. On a codec error the returned count is the number of bytes
// consumed before the failing one.
func (e *Encoder) Write(b []byte) (int, error) {
	if e.closed {
		return 0, ErrClosed
	}
	if err := e.writeHeader(); err != nil {
		return 0, err
	}
	for i, c := range b {
		line, err := e.p.Pack(c)
		if err != nil {
			return i, fmt.Errorf("stream: pack byte %d: %w", e.stats.BytesIn, err)
		}
		e.stats.BytesIn++
		if line == nil {
			continue
		}
		if err := e.write(line); err != nil {
			return i + 1, err
		}
		e.stats.Lines++
	}
	return len(b), nil
}

// WriteCommand applies cmd to the packer and sends its sequence. Commands
// that drop the receiver out of packing mode force a fresh header before
// the next packed byte.
func (e *Encoder) WriteCommand(cmd protocol.Command) error {
	if e.closed {
		return ErrClosed
	}
	if err := e.writeHeader(); err != nil {
		return err
	}
	if err := e.p.Apply(cmd); err != nil {
		return fmt.Errorf("stream: command %s: %w", cmd, err)
	}
	seq := protocol.Sequence(cmd)
	if err := e.write(seq[:]); err != nil {
		return err
	}
	switch cmd {
	case protocol.ResetAll, protocol.PackingDisabled:
		e.header = false
	}
	e.log.Debug().Stringer("command", cmd).Msg("command_sent")
	return nil
}

// Close writes the header if nothing was written yet and reports a line
// left without its newline. It does not close w.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	err := e.writeHeader()
	e.closed = true
	if err != nil {
		return err
	}
	if e.p.DataRemains() {
		return unterminated(e.p.Pending())
	}
	return nil
}

func (e *Encoder) Stats() Stats { return e.stats }

func (e *Encoder) writeHeader() error {
	if e.header {
		return nil
	}
	if err := e.write(protocol.Header[:]); err != nil {
		return err
	}
	if e.p.NoSpaces() {
		if err := e.write(protocol.NoSpacesHeader[:]); err != nil {
			return err
		}
	}
	e.header = true
	return nil
}

func (e *Encoder) write(b []byte) error {
	n, err := e.w.Write(b)
	e.stats.BytesOut += int64(n)
	if err != nil {
		return fmt.Errorf("stream: write: %w", err)
	}
	if n < len(b) {
		return fmt.Errorf("stream: write: %w", io.ErrShortWrite)
	}
	return nil
}
