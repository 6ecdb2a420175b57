package main

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/plan"
)

func planCmd() *cli.Command {
	var asJSON bool
	return &cli.Command{
		Name:  "plan",
		Usage: "Show padded dimensions and device buffer sizes for a problem",
		Flags: append(append(problemFlags(), backendFlags()...), jsonFlag(&asJSON)),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyProblemConfig(cmd, fileConfig)
			be, v, err := resolveEngine()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			tile, err := be.Dimensions(ccg.Int1, v)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			p, err := plan.New(shape(), tile)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if asJSON {
				return printJSON(p)
			}
			printPlan(p, be.Name(), v)
			return nil
		},
	}
}

func printPlan(p plan.Plan, name string, v ccg.Variant) {
	fmt.Printf("Backend:  %s (%s tiles %s)\n", name, v, p.Tile)
	fmt.Printf("Logical:  %s\n", p.Logical)
	fmt.Printf("Padded:   %s\n", p.Padded)
	fmt.Println()
	rows := []struct {
		name  string
		bytes int64
	}{
		{"RF (host)", p.BytesRF},
		{"BF (host)", p.BytesBF},
		{"A packed", p.BytesAPacked},
		{"RF", p.BytesRFDevice},
		{"RF complex-first", p.BytesRFComplexFirst},
		{"RF packed", p.BytesRFPacked},
		{"RF transposed", p.BytesRFTransposed},
		{"BF", p.BytesBFDevice},
	}
	var device int64
	for i, r := range rows {
		fmt.Printf("%-18s %14d bytes\n", r.name, r.bytes)
		if i >= 2 {
			device += r.bytes
		}
	}
	fmt.Printf("%-18s %14d bytes (%.1f MiB)\n", "device total", device, float64(device)/(1<<20))
}
