package protocol

import "errors"

var (
	ErrBufferFull         = errors.New("protocol: buffer full")
	ErrInvalidByte        = errors.New("protocol: invalid byte")
	ErrInvalidState       = errors.New("protocol: signal byte in invalid state")
	ErrInvalidCommandByte = errors.New("protocol: invalid command byte")
	ErrNotEncodable       = errors.New("protocol: full width byte")
	ErrNotRepresentable   = errors.New("protocol: code has no character")
	ErrUnterminatedLine   = errors.New("protocol: unterminated line")
)
