package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/meatpack/internal/config"
	"github.com/danmuck/meatpack/internal/logging"
	"github.com/danmuck/meatpack/internal/observability"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

var logger zerolog.Logger

var bufferSizeFlag = &cli.IntFlag{Name: "buffer-size", Usage: "line buffer size in bytes"}

var packFlags = []cli.Flag{
	&cli.BoolFlag{Name: "strip-comments", Usage: "drop ';' comments before packing"},
	&cli.BoolFlag{Name: "strip-whitespace", Usage: "drop spaces and tabs before packing"},
	bufferSizeFlag,
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "meatpack",
		Usage: "pack G-code for 3D printer serial links",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "meatpack.toml `FILE`"},
		},
		Before: func(*cli.Context) error {
			logging.ConfigureRuntime()
			logger = observability.InitLogger("meatpack")
			return nil
		},
		Commands: []*cli.Command{
			packCmd,
			unpackCmd,
			sendCmd,
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "meatpack: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads --config when given and applies command flags on top.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return config.Config{}, err
		}
		cfg = loaded
	}

	if ctx.IsSet("buffer-size") {
		cfg.Packer.BufferSize = ctx.Int("buffer-size")
		cfg.Unpacker.BufferSize = ctx.Int("buffer-size")
	}
	if ctx.IsSet("strip-comments") {
		cfg.Packer.StripComments = ctx.Bool("strip-comments")
	}
	if ctx.IsSet("strip-whitespace") {
		cfg.Packer.StripWhitespace = ctx.Bool("strip-whitespace")
	}
	if ctx.IsSet("port") {
		cfg.Serial.Port = ctx.String("port")
	}
	if ctx.IsSet("baud") {
		cfg.Serial.Baud = ctx.Int("baud")
	}

	if err := config.Validate(cfg); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}
