package codec

import (
	"fmt"

	"github.com/danmuck/meatpack/internal/protocol"
	"github.com/danmuck/meatpack/internal/protocol/linebuf"
)

// State is the unpacker's position in the byte grammar.
type State uint8

const (
	StateDisabled State = iota
	StateFirstCommandByte
	StateSecondCommandByte
	StateRightFullWidthByte
	StateLeftFullWidthByte
	StateEnabled
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "Disabled"
	case StateFirstCommandByte:
		return "FirstCommandByte"
	case StateSecondCommandByte:
		return "SecondCommandByte"
	case StateRightFullWidthByte:
		return "RightFullWidthByte"
	case StateLeftFullWidthByte:
		return "LeftFullWidthByte"
	case StateEnabled:
		return "Enabled"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Unpacker turns packed bytes back into raw text lines.
type Unpacker struct {
	state State
	// resume is the state a no-op command returns to.
	resume   State
	noSpaces bool
	// slot is the reserved index backfilled in StateLeftFullWidthByte.
	slot int

	buf *linebuf.Buffer
}

// NewUnpacker creates an unpacker whose lines hold at most capacity bytes.
// It starts in StateDisabled and passes bytes through until a header.
func NewUnpacker(capacity int) *Unpacker {
	return &Unpacker{
		state:  StateDisabled,
		resume: StateDisabled,
		buf:    linebuf.New(capacity),
	}
}

// Unpack feeds one packed byte. A nil line means the unpacker is waiting for
// more input.
func (u *Unpacker) Unpack(b byte) ([]byte, error) {
	u.buf.Begin()

	if protocol.IsSignal(b) {
		switch u.state {
		case StateDisabled, StateEnabled:
			u.resume = u.state
			u.state = StateFirstCommandByte
			return nil, nil
		case StateFirstCommandByte:
			u.state = StateSecondCommandByte
			return nil, nil
		case StateSecondCommandByte:
			// 255 is itself a command code: the pass-through signal command.
		default:
			// A raw escaped byte was expected; the stream is malformed.
			u.buf.Reset()
			u.state = StateEnabled
			return nil, protocol.ErrInvalidState
		}
	}

	switch u.state {
	case StateDisabled:
		if err := u.buf.Push(b); err != nil {
			return nil, err
		}
		if b == protocol.Linefeed {
			u.buf.Complete()
			return u.buf.Bytes(), nil
		}
		return nil, nil

	case StateSecondCommandByte:
		cmd, err := protocol.ParseCommand(b)
		if err != nil {
			u.state = u.resume
			return nil, err
		}
		u.apply(cmd)
		return nil, nil

	case StateFirstCommandByte:
		// One signal byte not followed by another is a double full width
		// escape: b is the first of its two raw bytes.
		if err := u.buf.Push(b); err != nil {
			return nil, err
		}
		u.state = StateRightFullWidthByte
		return nil, nil

	case StateRightFullWidthByte:
		if err := u.buf.Push(b); err != nil {
			return nil, err
		}
		u.state = StateEnabled
		return nil, nil

	case StateLeftFullWidthByte:
		u.buf.Set(u.slot, b)
		u.state = StateEnabled
		if u.slot+1 < u.buf.Len() && u.buf.At(u.slot+1) == protocol.Linefeed {
			u.buf.Complete()
			return u.buf.Bytes(), nil
		}
		return nil, nil

	default:
		return u.unpackEnabled(b)
	}
}

func (u *Unpacker) unpackEnabled(b byte) ([]byte, error) {
	low, high := protocol.Split(b)

	switch {
	case low == protocol.NewlineCode && high == protocol.NewlineCode:
		if err := u.buf.Push(protocol.Linefeed); err != nil {
			return nil, err
		}

	case low == protocol.EscapeCode && high == protocol.EscapeCode:
		return nil, protocol.ErrInvalidByte

	case high == protocol.EscapeCode:
		c, err := protocol.ToChar(low, u.noSpaces)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", protocol.ErrInvalidByte, err)
		}
		if err := u.buf.Push(c); err != nil {
			return nil, err
		}
		u.state = StateRightFullWidthByte

	case low == protocol.EscapeCode:
		c, err := protocol.ToChar(high, u.noSpaces)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", protocol.ErrInvalidByte, err)
		}
		if err := u.buf.Reserve(2); err != nil {
			return nil, err
		}
		u.slot = u.buf.Len()
		_ = u.buf.Push(0)
		_ = u.buf.Push(c)
		u.state = StateLeftFullWidthByte

	default:
		first, err := protocol.ToChar(low, u.noSpaces)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", protocol.ErrInvalidByte, err)
		}
		second, err := protocol.ToChar(high, u.noSpaces)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", protocol.ErrInvalidByte, err)
		}
		if err := u.buf.Reserve(2); err != nil {
			return nil, err
		}
		_ = u.buf.Push(first)
		_ = u.buf.Push(second)
	}

	if u.state != StateEnabled {
		return nil, nil
	}
	if last, ok := u.buf.Last(); ok && last == protocol.Linefeed {
		u.buf.Complete()
		if u.buf.Len() > 1 {
			return u.buf.Bytes(), nil
		}
	}
	return nil, nil
}

func (u *Unpacker) apply(cmd protocol.Command) {
	switch cmd {
	case protocol.PackingEnabled:
		u.state = StateEnabled
	case protocol.PackingDisabled:
		u.state = StateDisabled
	case protocol.ResetAll:
		u.state = StateDisabled
		u.noSpaces = false
	case protocol.NoSpacesEnabled:
		u.noSpaces = true
		u.state = StateEnabled
	case protocol.NoSpacesDisabled:
		u.noSpaces = false
		u.state = StateEnabled
	default:
		u.state = u.resume
	}
}

func (u *Unpacker) State() State { return u.state }

func (u *Unpacker) NoSpaces() bool { return u.noSpaces }

// DataRemains reports whether decoded bytes or a half-read escape are held
// that have not been returned in a completed line.
func (u *Unpacker) DataRemains() bool {
	switch u.state {
	case StateFirstCommandByte, StateRightFullWidthByte, StateLeftFullWidthByte:
		return true
	}
	return u.buf.Len() > 0 && !u.buf.ClearPending()
}

// Pending returns the number of decoded bytes buffered for the open line.
func (u *Unpacker) Pending() int {
	if u.buf.ClearPending() {
		return 0
	}
	return u.buf.Len()
}

// Reset returns the unpacker to its initial state.
func (u *Unpacker) Reset() {
	u.state = StateDisabled
	u.resume = StateDisabled
	u.noSpaces = false
	u.slot = 0
	u.buf.Reset()
}
