package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/danmuck/meatpack/internal/logging"
	"github.com/danmuck/meatpack/internal/observability"
	"github.com/danmuck/meatpack/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "meatpackd",
		Usage: "pack and unpack G-code over HTTP",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "service config `FILE`"},
			&cli.StringFlag{Name: "addr", Usage: "listen address, overrides the config file"},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "meatpackd: %v\n", err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	logging.ConfigureRuntime()
	logger := observability.InitLogger("meatpackd")

	cfg := defaultServiceConfig()
	if path := c.String("config"); path != "" {
		loaded, err := loadServiceConfig(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if addr := c.String("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if cfg.LogLevel != nil {
		zerolog.SetGlobalLevel(*cfg.LogLevel)
	}
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	logger.Info().
		Str("name", cfg.Server.Name).
		Str("addr", cfg.Server.Addr).
		Int("pack_buffer", cfg.Packer.BufferSize).
		Int("unpack_buffer", cfg.Unpacker.BufferSize).
		Int64("max_body_bytes", cfg.Server.MaxBodyBytes).
		Msg("meatpackd starting")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.New(cfg.Config).Serve(ctx); err != nil {
		log.Error().Err(err).Msg("meatpackd stopped")
		return err
	}
	return nil
}
