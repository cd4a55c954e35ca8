package stream

import (
	"context"
	"errors"
	"fmt"

	"github.com/danmuck/meatpack/internal/codec"
	"github.com/danmuck/meatpack/internal/observability"
	"github.com/danmuck/meatpack/internal/protocol"
	"github.com/rs/zerolog"
)

// DefaultBufferSize bounds one line on either side of the codec.
const DefaultBufferSize = 256

type PackConfig struct {
	BufferSize      int
	StripComments   bool
	StripWhitespace bool
	Logger          *zerolog.Logger
}

type UnpackConfig struct {
	BufferSize int
	Logger     *zerolog.Logger
}

func (c PackConfig) newPacker() *codec.Packer {
	return codec.NewPacker(bufferSize(c.BufferSize),
		codec.WithStripComments(c.StripComments),
		codec.WithStripWhitespace(c.StripWhitespace),
	)
}

func (c UnpackConfig) newUnpacker() *codec.Unpacker {
	return codec.NewUnpacker(bufferSize(c.BufferSize))
}

func bufferSize(n int) int {
	if n <= 0 {
		return DefaultBufferSize
	}
	return n
}

// Stats summarizes one run through the codec.
type Stats struct {
	Lines    int64
	BytesIn  int64
	BytesOut int64
}

// Ratio is BytesOut over BytesIn, or 0 before any input.
func (s Stats) Ratio() float64 {
	if s.BytesIn == 0 {
		return 0
	}
	return float64(s.BytesOut) / float64(s.BytesIn)
}

func (s Stats) record(direction string) {
	observability.RecordCodec(direction, s.BytesIn, s.BytesOut, s.Lines)
}

func unterminated(pending int) error {
	return fmt.Errorf("%w: %d bytes pending", protocol.ErrUnterminatedLine, pending)
}

// ErrorKind names err for metrics labels and logs.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, protocol.ErrBufferFull):
		return "buffer_full"
	case errors.Is(err, protocol.ErrInvalidByte):
		return "invalid_byte"
	case errors.Is(err, protocol.ErrInvalidState):
		return "invalid_state"
	case errors.Is(err, protocol.ErrInvalidCommandByte):
		return "invalid_command"
	case errors.Is(err, protocol.ErrUnterminatedLine):
		return "unterminated_line"
	case errors.Is(err, ErrClosed):
		return "closed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "io"
	}
}

// IsProtocolError reports whether err came from malformed input rather
// than from I/O or cancellation.
func IsProtocolError(err error) bool {
	switch ErrorKind(err) {
	case "buffer_full", "invalid_byte", "invalid_state", "invalid_command", "unterminated_line":
		return true
	}
	return false
}

func recordError(direction string, err error, l zerolog.Logger) {
	if err == nil {
		return
	}
	kind := ErrorKind(err)
	observability.RecordCodecError(direction, kind)
	l.Warn().Err(err).Str("direction", direction).Str("kind", kind).Msg("codec_error")
}
