package stream

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/danmuck/meatpack/internal/observability"
	"github.com/hashicorp/go-multierror"
)

const chunkSize = 32 * 1024

// PackStream packs src into dst until EOF. ctx is checked between chunks.
func PackStream(ctx context.Context, dst io.Writer, src io.Reader, cfg PackConfig) (Stats, error) {
	l := observability.Nop(cfg.Logger)
	enc := NewEncoder(dst, cfg)
	err := packLoop(ctx, enc, src)
	if closeErr := enc.Close(); closeErr != nil && err == nil {
		err = closeErr
	}

	stats := enc.Stats()
	stats.record(observability.DirectionPack)
	if err != nil {
		recordError(observability.DirectionPack, err, l)
		return stats, err
	}
	l.Debug().Int64("lines", stats.Lines).Int64("bytes_in", stats.BytesIn).Int64("bytes_out", stats.BytesOut).Msg("pack_stream")
	return stats, nil
}

func packLoop(ctx context.Context, enc *Encoder, src io.Reader) error {
	buf := make([]byte, chunkSize)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, rerr := src.Read(buf)
		if n > 0 {
			if _, err := enc.Write(buf[:n]); err != nil {
				return err
			}
		}
		if errors.Is(rerr, io.EOF) {
			return nil
		}
		if rerr != nil {
			return fmt.Errorf("stream: read: %w", rerr)
		}
	}
}

// UnpackStream unpacks src into dst until EOF. ctx is checked between lines.
func UnpackStream(ctx context.Context, dst io.Writer, src io.Reader, cfg UnpackConfig) (Stats, error) {
	l := observability.Nop(cfg.Logger)
	sc := NewScanner(src, cfg)

	var err error
	for sc.Scan() {
		if err = ctx.Err(); err != nil {
			break
		}
		if _, err = dst.Write(sc.Bytes()); err != nil {
			err = fmt.Errorf("stream: write: %w", err)
			break
		}
	}
	if err == nil {
		err = sc.Err()
	}

	stats := sc.Stats()
	stats.record(observability.DirectionUnpack)
	if err != nil {
		recordError(observability.DirectionUnpack, err, l)
		return stats, err
	}
	l.Debug().Int64("lines", stats.Lines).Int64("bytes_in", stats.BytesIn).Int64("bytes_out", stats.BytesOut).Msg("unpack_stream")
	return stats, nil
}

// CloseAll closes every closer and joins the failures.
func CloseAll(closers ...io.Closer) error {
	var result *multierror.Error
	for _, c := range closers {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
