package main

import (
	"context"
	"fmt"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tcbf/internal/logger"
	"github.com/samcharles93/tcbf/internal/rawio"
)

func processCmd() *cli.Command {
	var (
		weights string
		rfPath  string
		out     string
	)
	flags := append([]cli.Flag{}, problemFlags()...)
	flags = append(flags, backendFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "weights",
			Aliases:     []string{"a"},
			Usage:       "packed weight file from 'tcbf prepare'",
			Required:    true,
			Destination: &weights,
		},
		&cli.StringFlag{
			Name:        "rf",
			Usage:       "raw int16 voltages [frames][samples][re,im]",
			Required:    true,
			Destination: &rfPath,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "int32 beam output [re|im][pixels][frames]",
			Required:    true,
			Destination: &out,
		},
	)

	return &cli.Command{
		Name:  "process",
		Usage: "Beamform one batch of raw voltages",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyProblemConfig(cmd, fileConfig)
			log := logger.FromContext(ctx)

			b, err := newBeamformer(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: create beamformer: %v", err), 1)
			}
			defer func() { _ = b.Close() }()

			if err := b.ReadAMatrix(weights); err != nil {
				return cli.Exit(fmt.Sprintf("error: load weights: %v", err), 1)
			}
			p := b.Plan()
			rf := make([]int16, p.RFElements())
			if err := b.ReadRF(rf, rfPath); err != nil {
				return cli.Exit(fmt.Sprintf("error: read RF: %v", err), 1)
			}
			bf := make([]int32, p.BFElements())

			start := time.Now()
			if err := b.Process(rf, bf); err != nil {
				return cli.Exit(fmt.Sprintf("error: process: %v", err), 1)
			}
			took := time.Since(start)

			if err := rawio.WriteBF(out, bf); err != nil {
				return cli.Exit(fmt.Sprintf("error: write beams: %v", err), 1)
			}
			log.Info("beams written",
				"path", out,
				"pixels", p.Logical.Pixels,
				"frames", p.Logical.Frames,
				"took", took,
				"tops", tops(p.BinaryOps(), took),
			)
			return nil
		},
	}
}

// tops converts multiply-accumulates over a duration to tera-ops per second,
// counting each multiply-accumulate as two operations.
func tops(macs int64, d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return 2 * float64(macs) / d.Seconds() / 1e12
}
