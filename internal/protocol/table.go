package protocol

// ToChar maps a nibble code to its character. The escape marker has no
// character; callers must handle EscapeCode before calling.
func ToChar(code Code, noSpaces bool) (byte, error) {
	switch {
	case code <= 9:
		return '0' + byte(code), nil
	case code == 0b1010:
		return '.', nil
	case code == SpaceOrE:
		if noSpaces {
			return 'E', nil
		}
		return ' ', nil
	case code == NewlineCode:
		return Linefeed, nil
	case code == 0b1101:
		return 'G', nil
	case code == 0b1110:
		return 'X', nil
	default:
		return 0, ErrNotRepresentable
	}
}

// ToCode maps a character to its nibble code. ' ' and 'E' share one code
// point so exactly one of them is encodable under a given mode.
func ToCode(c byte, noSpaces bool) (Code, error) {
	switch {
	case c >= '0' && c <= '9':
		return Code(c - '0'), nil
	case c == '.':
		return 0b1010, nil
	case c == ' ':
		if noSpaces {
			return 0, ErrNotEncodable
		}
		return SpaceOrE, nil
	case c == 'E':
		if !noSpaces {
			return 0, ErrNotEncodable
		}
		return SpaceOrE, nil
	case c == Linefeed:
		return NewlineCode, nil
	case c == 'G':
		return 0b1101, nil
	case c == 'X':
		return 0b1110, nil
	default:
		return 0, ErrNotEncodable
	}
}

// Encodable reports whether c has a nibble code under the given mode.
func Encodable(c byte, noSpaces bool) bool {
	_, err := ToCode(c, noSpaces)
	return err == nil
}

// Pack joins two codes into one byte: first in the low nibble, second in
// the high nibble.
func Pack(first, second Code) byte {
	return byte(second&0x0F)<<4 | byte(first&0x0F)
}

// Split is the inverse of Pack.
func Split(b byte) (low, high Code) {
	return Code(b & 0x0F), Code(b >> 4)
}
