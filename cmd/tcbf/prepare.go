package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tcbf/internal/logger"
	"github.com/samcharles93/tcbf/internal/prepare"
)

func prepareCmd() *cli.Command {
	var (
		in     string
		out    string
		asJSON bool
	)
	flags := append([]cli.Flag{}, problemFlags()...)
	flags = append(flags, backendFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "in",
			Aliases:     []string{"i"},
			Usage:       "raw complex float32 weights [pixels][samples][re,im]",
			Required:    true,
			Destination: &in,
		},
		&cli.StringFlag{
			Name:        "out",
			Aliases:     []string{"o"},
			Usage:       "packed weight file to write",
			Required:    true,
			Destination: &out,
		},
		jsonFlag(&asJSON),
	)

	return &cli.Command{
		Name:  "prepare",
		Usage: "Pack a complex weight matrix into the beamformer's operand layout",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyProblemConfig(cmd, fileConfig)
			be, v, err := resolveEngine()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			res, err := prepare.AMatrix(ctx, prepare.Options{
				In:      in,
				Out:     out,
				Pixels:  int(pixels),
				Samples: int(samples),
				Variant: v,
				Backend: be,
				Logger:  logger.FromContext(ctx),
			})
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: prepare weights: %v", err), 1)
			}
			if asJSON {
				return printJSON(res)
			}
			fmt.Printf("wrote %s (%d bytes, padded %dx%d)\n", out, res.Bytes, res.Plan.Padded.Pixels, res.Plan.Padded.Samples)
			return nil
		},
	}
}
