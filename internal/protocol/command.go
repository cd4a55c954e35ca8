package protocol

import "fmt"

// ParseCommand interprets the byte following a confirmed command introducer.
func ParseCommand(b byte) (Command, error) {
	switch cmd := Command(b); cmd {
	case NoSpacesDisabled, NoSpacesEnabled, QueryConfig, ResetAll,
		PackingDisabled, PackingEnabled, SignalCommand:
		return cmd, nil
	default:
		return 0, fmt.Errorf("%w: %d", ErrInvalidCommandByte, b)
	}
}

// IsSignal reports whether b is the signal byte.
func IsSignal(b byte) bool {
	return b == SignalByte
}

// Sequence returns the three wire bytes that carry cmd.
func Sequence(cmd Command) [3]byte {
	return [3]byte{SignalByte, SignalByte, byte(cmd)}
}

func (c Command) String() string {
	switch c {
	case NoSpacesDisabled:
		return "NoSpacesDisabled"
	case NoSpacesEnabled:
		return "NoSpacesEnabled"
	case QueryConfig:
		return "QueryConfig"
	case ResetAll:
		return "ResetAll"
	case PackingDisabled:
		return "PackingDisabled"
	case PackingEnabled:
		return "PackingEnabled"
	case SignalCommand:
		return "SignalByte"
	default:
		return fmt.Sprintf("Command(%d)", uint8(c))
	}
}
