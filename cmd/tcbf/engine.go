package main

import (
	"context"
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tcbf/internal/backend"
	"github.com/samcharles93/tcbf/internal/beamformer"
	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/logger"
	"github.com/samcharles93/tcbf/internal/plan"
)

func jsonFlag(dst *bool) cli.Flag {
	return &cli.BoolFlag{
		Name:        "json",
		Usage:       "print machine-readable JSON",
		Destination: dst,
	}
}

func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, string(out))
	return err
}

// resolveEngine turns the backend and variant flags into concrete values.
func resolveEngine() (backend.Backend, ccg.Variant, error) {
	be, err := backend.New(backendName)
	if err != nil {
		return nil, 0, err
	}
	v, err := ccg.ParseVariant(variant)
	if err != nil {
		return nil, 0, err
	}
	return be, v, nil
}

func shape() plan.Shape {
	return plan.Shape{Pixels: int(pixels), Frames: int(frames), Samples: int(samples)}
}

func newBeamformer(ctx context.Context) (*beamformer.Beamformer, error) {
	be, v, err := resolveEngine()
	if err != nil {
		return nil, err
	}
	s := shape()
	return beamformer.New(beamformer.Config{
		Pixels:  s.Pixels,
		Frames:  s.Frames,
		Samples: s.Samples,
		Backend: be,
		Variant: v,
		Logger:  logger.FromContext(ctx),
	})
}
