package main

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/danmuck/meatpack/internal/config"
	"github.com/danmuck/meatpack/internal/stream"
	"github.com/urfave/cli/v2"
)

var packCmd = &cli.Command{
	Name:      "pack",
	Usage:     "pack a G-code file",
	ArgsUsage: "<in> <out>",
	Flags:     packFlags,
	Action: func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		return transcode(ctx, "pack", func(dst io.Writer, src io.Reader) (stream.Stats, error) {
			return stream.PackStream(ctx.Context, dst, src, packConfig(cfg))
		})
	},
}

var unpackCmd = &cli.Command{
	Name:      "unpack",
	Usage:     "unpack a packed file back to G-code",
	ArgsUsage: "<in> <out>",
	Flags:     []cli.Flag{bufferSizeFlag},
	Action: func(ctx *cli.Context) error {
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}
		return transcode(ctx, "unpack", func(dst io.Writer, src io.Reader) (stream.Stats, error) {
			return stream.UnpackStream(ctx.Context, dst, src, stream.UnpackConfig{
				BufferSize: cfg.Unpacker.BufferSize,
				Logger:     &logger,
			})
		})
	},
}

func packConfig(cfg config.Config) stream.PackConfig {
	return stream.PackConfig{
		BufferSize:      cfg.Packer.BufferSize,
		StripComments:   cfg.Packer.StripComments,
		StripWhitespace: cfg.Packer.StripWhitespace,
		Logger:          &logger,
	}
}

type transcodeFunc func(dst io.Writer, src io.Reader) (stream.Stats, error)

// transcode opens <in> and <out> ("-" for stdin and stdout), runs fn and
// reports the result.
func transcode(ctx *cli.Context, op string, fn transcodeFunc) (err error) {
	if ctx.NArg() != 2 {
		return fmt.Errorf("%s: need <in> and <out>", op)
	}
	in, err := openInput(ctx.Args().Get(0))
	if err != nil {
		return err
	}
	out, err := openOutput(ctx.Args().Get(1))
	if err != nil {
		_ = in.Close()
		return err
	}
	defer func() {
		if closeErr := stream.CloseAll(in, out); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	w := bufio.NewWriter(out)
	stats, runErr := fn(w, in)
	if flushErr := w.Flush(); flushErr != nil && runErr == nil {
		runErr = fmt.Errorf("%s: flush: %w", op, flushErr)
	}
	return report(op, stats, runErr)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	return f, nil
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	return f, nil
}
