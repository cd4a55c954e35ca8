package stream

import (
	"fmt"

	"github.com/danmuck/meatpack/internal/observability"
	"github.com/danmuck/meatpack/internal/protocol"
)

// PackBytes packs a whole block of text. The output starts with the packing
// header and, when whitespace is stripped, the no-spaces header. The block
// must end on a line boundary.
func PackBytes(src []byte, cfg PackConfig) ([]byte, Stats, error) {
	l := observability.Nop(cfg.Logger)
	p := cfg.newPacker()

	out := make([]byte, 0, len(src)+2*len(protocol.Header))
	out = append(out, protocol.Header[:]...)
	if p.NoSpaces() {
		out = append(out, protocol.NoSpacesHeader[:]...)
	}

	stats := Stats{BytesIn: int64(len(src))}
	for i, b := range src {
		line, err := p.Pack(b)
		if err != nil {
			err = fmt.Errorf("stream: pack byte %d: %w", i, err)
			recordError(observability.DirectionPack, err, l)
			return nil, stats, err
		}
		if line != nil {
			out = append(out, line...)
			stats.Lines++
		}
	}
	stats.BytesOut = int64(len(out))

	if p.DataRemains() {
		err := unterminated(p.Pending())
		recordError(observability.DirectionPack, err, l)
		return nil, stats, err
	}
	stats.record(observability.DirectionPack)
	l.Debug().Int64("lines", stats.Lines).Int64("bytes_in", stats.BytesIn).Int64("bytes_out", stats.BytesOut).Msg("pack_block")
	return out, stats, nil
}

// UnpackBytes unpacks a whole block. Input without a header passes through
// line by line.
func UnpackBytes(src []byte, cfg UnpackConfig) ([]byte, Stats, error) {
	l := observability.Nop(cfg.Logger)
	u := cfg.newUnpacker()

	out := make([]byte, 0, 2*len(src))
	stats := Stats{BytesIn: int64(len(src))}
	for i, b := range src {
		line, err := u.Unpack(b)
		if err != nil {
			err = fmt.Errorf("stream: unpack byte %d: %w", i, err)
			recordError(observability.DirectionUnpack, err, l)
			return nil, stats, err
		}
		if line != nil {
			out = append(out, line...)
			stats.Lines++
		}
	}
	stats.BytesOut = int64(len(out))

	if u.DataRemains() {
		err := unterminated(u.Pending())
		recordError(observability.DirectionUnpack, err, l)
		return nil, stats, err
	}
	stats.record(observability.DirectionUnpack)
	l.Debug().Int64("lines", stats.Lines).Int64("bytes_in", stats.BytesIn).Int64("bytes_out", stats.BytesOut).Msg("unpack_block")
	return out, stats, nil
}
