// Package serial sends packed streams to a printer over a serial line.
package serial

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/danmuck/meatpack/internal/config"
	"github.com/danmuck/meatpack/internal/stream"
	"github.com/rs/zerolog/log"
	tarm "github.com/tarm/serial"
)

var ErrNoPort = errors.New("serial: port not configured")

// Port is the part of *tarm.Port the sender needs.
type Port interface {
	io.ReadWriteCloser
	Flush() error
}

type Opener func(*tarm.Config) (Port, error)

func OpenTarm(c *tarm.Config) (Port, error) {
	p, err := tarm.OpenPort(c)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func PortConfig(cfg config.SerialConfig) (*tarm.Config, error) {
	if strings.TrimSpace(cfg.Port) == "" {
		return nil, ErrNoPort
	}
	if err := config.ValidateSerial(cfg); err != nil {
		return nil, fmt.Errorf("serial: %w", err)
	}
	timeout, _ := cfg.Timeout()
	return &tarm.Config{
		Name:        cfg.Port,
		Baud:        cfg.Baud,
		ReadTimeout: timeout,
	}, nil
}

// Open opens and flushes the configured port. A nil open uses OpenTarm.
func Open(cfg config.SerialConfig, open Opener) (Port, error) {
	pc, err := PortConfig(cfg)
	if err != nil {
		return nil, err
	}
	if open == nil {
		open = OpenTarm
	}
	port, err := open(pc)
	if err != nil {
		return nil, fmt.Errorf("serial: open %s: %w", pc.Name, err)
	}
	// drop bytes left over from a previous session
	if err := port.Flush(); err != nil {
		log.Warn().Err(err).Str("port", pc.Name).Msg("serial_flush_failed")
	}
	log.Info().Str("port", pc.Name).Int("baud", pc.Baud).Msg("serial_open")
	return port, nil
}

// Send packs src onto port. The port is left open.
func Send(ctx context.Context, port Port, src io.Reader, cfg stream.PackConfig) (stream.Stats, error) {
	stats, err := stream.PackStream(ctx, port, src, cfg)
	if err != nil {
		return stats, fmt.Errorf("serial: send: %w", err)
	}
	return stats, nil
}
