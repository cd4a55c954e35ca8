package protocol

const (
	SignalByte   byte = 0xFF
	Linefeed     byte = '\n'
	CommentStart byte = ';'
)

// Code is a 4-bit nibble code (0-15).
type Code uint8

const (
	// NewlineCode is the nibble code for '\n'.
	NewlineCode Code = 0b1100
	// SpaceOrE is reassigned between ' ' and 'E' by no-spaces mode.
	SpaceOrE Code = 0b1011
	// EscapeCode marks a full width byte that follows the packed byte raw.
	EscapeCode Code = 0b1111
)

// Command is an in-band control byte following two signal bytes.
type Command uint8

const (
	NoSpacesDisabled Command = 246
	NoSpacesEnabled  Command = 247
	QueryConfig      Command = 248
	ResetAll         Command = 249
	PackingDisabled  Command = 250
	PackingEnabled   Command = 251
	SignalCommand    Command = 255
)

var (
	// Header enables packing on the receiving side.
	Header = Sequence(PackingEnabled)
	// NoSpacesHeader switches code 0b1011 from ' ' to 'E'.
	NoSpacesHeader = Sequence(NoSpacesEnabled)
)
