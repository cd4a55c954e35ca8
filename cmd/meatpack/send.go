package main

import (
	"fmt"

	"github.com/danmuck/meatpack/internal/serial"
	"github.com/danmuck/meatpack/internal/stream"
	"github.com/urfave/cli/v2"
)

var sendCmd = &cli.Command{
	Name:      "send",
	Usage:     "pack a G-code file onto a serial port",
	ArgsUsage: "<in>",
	Flags: append([]cli.Flag{
		&cli.StringFlag{Name: "port", Usage: "serial device, e.g. /dev/ttyUSB0"},
		&cli.IntFlag{Name: "baud", Usage: "serial baud rate"},
	}, packFlags...),
	Action: func(ctx *cli.Context) (err error) {
		if ctx.NArg() != 1 {
			return fmt.Errorf("send: need <in>")
		}
		cfg, err := loadConfig(ctx)
		if err != nil {
			return err
		}

		in, err := openInput(ctx.Args().Get(0))
		if err != nil {
			return err
		}
		port, err := serial.Open(cfg.Serial, openPort)
		if err != nil {
			_ = in.Close()
			return err
		}
		defer func() {
			if closeErr := stream.CloseAll(in, port); closeErr != nil && err == nil {
				err = closeErr
			}
		}()

		stats, sendErr := serial.Send(ctx.Context, port, in, packConfig(cfg))
		return report("send", stats, sendErr)
	},
}

// openPort is swapped in tests.
var openPort serial.Opener = serial.OpenTarm
