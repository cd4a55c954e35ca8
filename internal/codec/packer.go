package codec

import (
	"github.com/danmuck/meatpack/internal/protocol"
	"github.com/danmuck/meatpack/internal/protocol/linebuf"
)

// PackerOption configures a Packer.
type PackerOption func(*Packer)

// WithStripComments drops ';' through end of line. The newline is kept.
func WithStripComments(on bool) PackerOption {
	return func(p *Packer) { p.stripComments = on }
}

// WithStripWhitespace drops spaces and tabs and switches to no-spaces mode
// so 'E' packs into a nibble. Receivers need protocol.NoSpacesHeader.
func WithStripWhitespace(on bool) PackerOption {
	return func(p *Packer) {
		p.stripWhitespace = on
		if on {
			p.noSpaces = true
		}
	}
}

// WithNoSpaces starts the packer in no-spaces mode.
func WithNoSpaces(on bool) PackerOption {
	return func(p *Packer) { p.noSpaces = on }
}

// Packer turns raw text bytes into packed lines.
type Packer struct {
	pending    protocol.Code
	hasPending bool
	escaped    byte

	noSpaces        bool
	stripComments   bool
	stripWhitespace bool
	inComment       bool
	defaultNoSpaces bool

	buf *linebuf.Buffer
}

// NewPacker creates a packer whose lines hold at most capacity packed bytes.
// One input byte produces at most three output bytes.
func NewPacker(capacity int, opts ...PackerOption) *Packer {
	p := &Packer{buf: linebuf.New(capacity)}
	for _, opt := range opts {
		opt(p)
	}
	p.defaultNoSpaces = p.noSpaces
	return p
}

// Pack feeds one raw byte. A nil line means the packer is waiting for more
// input. On error the byte is not consumed.
func (p *Packer) Pack(b byte) ([]byte, error) {
	p.buf.Begin()

	if p.stripComments {
		if b == protocol.CommentStart {
			p.inComment = true
		}
		if b == protocol.Linefeed {
			p.inComment = false
		}
		if p.inComment {
			return nil, nil
		}
	}
	if p.stripWhitespace && (b == ' ' || b == '\t') {
		return nil, nil
	}
	if protocol.IsSignal(b) {
		return nil, protocol.ErrInvalidByte
	}

	code, codeErr := protocol.ToCode(b, p.noSpaces)
	encodable := codeErr == nil

	switch {
	case !p.hasPending && b == protocol.Linefeed:
		if err := p.buf.Reserve(1); err != nil {
			return nil, err
		}
		_ = p.buf.Push(protocol.Pack(protocol.NewlineCode, protocol.NewlineCode))
		p.buf.Complete()
		if p.buf.Len() > 1 {
			return p.buf.Bytes(), nil
		}
		return nil, nil

	case !p.hasPending && encodable:
		p.pending = code
		p.hasPending = true
		return nil, nil

	case !p.hasPending:
		p.pending = protocol.EscapeCode
		p.escaped = b
		p.hasPending = true
		return nil, nil

	case p.pending == protocol.EscapeCode && b == protocol.Linefeed:
		if err := p.emit(protocol.Pack(protocol.EscapeCode, protocol.NewlineCode), p.escaped); err != nil {
			return nil, err
		}
		p.buf.Complete()
		return p.buf.Bytes(), nil

	case p.pending == protocol.EscapeCode && encodable:
		return nil, p.emit(protocol.Pack(protocol.EscapeCode, code), p.escaped)

	case p.pending == protocol.EscapeCode:
		// Two escape nibbles share the signal byte's value; the two raw
		// bytes that follow keep it from reading as a command introducer.
		return nil, p.emit(protocol.Pack(protocol.EscapeCode, protocol.EscapeCode), p.escaped, b)

	case b == protocol.Linefeed:
		if err := p.emit(protocol.Pack(p.pending, protocol.NewlineCode)); err != nil {
			return nil, err
		}
		p.buf.Complete()
		return p.buf.Bytes(), nil

	case encodable:
		return nil, p.emit(protocol.Pack(p.pending, code))

	default:
		return nil, p.emit(protocol.Pack(p.pending, protocol.EscapeCode), b)
	}
}

// emit writes one packed unit and clears the pending pair. Capacity is
// checked first so a failed unit leaves no partial output.
func (p *Packer) emit(out ...byte) error {
	if err := p.buf.Reserve(len(out)); err != nil {
		return err
	}
	for _, c := range out {
		_ = p.buf.Push(c)
	}
	p.hasPending = false
	p.pending = 0
	p.escaped = 0
	return nil
}

// Apply changes the packer mode for an in-band command. The caller is
// responsible for writing protocol.Sequence(cmd) to the output stream.
func (p *Packer) Apply(cmd protocol.Command) error {
	if p.hasPending {
		return protocol.ErrInvalidState
	}
	switch cmd {
	case protocol.NoSpacesEnabled:
		p.noSpaces = true
	case protocol.NoSpacesDisabled:
		p.noSpaces = false
	case protocol.ResetAll:
		p.noSpaces = false
	case protocol.PackingEnabled, protocol.PackingDisabled,
		protocol.QueryConfig, protocol.SignalCommand:
	default:
		return protocol.ErrInvalidCommandByte
	}
	return nil
}

// DataRemains reports whether bytes were fed that have not been returned in
// a completed line, meaning the input did not end on a newline.
func (p *Packer) DataRemains() bool {
	return p.hasPending || (p.buf.Len() > 0 && !p.buf.ClearPending())
}

// Pending returns the number of packed bytes buffered for the open line.
func (p *Packer) Pending() int {
	if p.buf.ClearPending() {
		return 0
	}
	return p.buf.Len()
}

func (p *Packer) NoSpaces() bool { return p.noSpaces }

// Reset drops any partial line and pending pair. Options are kept.
func (p *Packer) Reset() {
	p.hasPending = false
	p.pending = 0
	p.escaped = 0
	p.inComment = false
	p.noSpaces = p.defaultNoSpaces
	p.buf.Reset()
}
