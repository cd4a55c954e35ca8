package main

import (
	"errors"
	"fmt"

	"github.com/danmuck/meatpack/internal/protocol"
	"github.com/danmuck/meatpack/internal/stream"
	"github.com/dustin/go-humanize"
)

var errDataRemains = errors.New("data remains at end of input")

// report logs stats for op. An unterminated final line is a warning: every
// complete line before it was written.
func report(op string, stats stream.Stats, err error) error {
	if err != nil && !errors.Is(err, protocol.ErrUnterminatedLine) {
		logger.Error().Err(err).Str("op", op).Str("kind", stream.ErrorKind(err)).Msg("failed")
		return err
	}

	logger.Info().
		Str("op", op).
		Int64("lines", stats.Lines).
		Str("in", humanize.Bytes(uint64(stats.BytesIn))).
		Str("out", humanize.Bytes(uint64(stats.BytesOut))).
		Str("ratio", formatRatio(stats)).
		Msg("done")

	if err != nil {
		logger.Warn().Err(err).Str("op", op).Msg(errDataRemains.Error())
	}
	return nil
}

func formatRatio(stats stream.Stats) string {
	return fmt.Sprintf("%.1f%%", stats.Ratio()*100)
}
