package main

import (
	"bytes"
	"context"
	"fmt"
	"math/rand/v2"
	"runtime"
	"slices"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tcbf/internal/logger"
	"github.com/samcharles93/tcbf/internal/prepare"
)

type benchRun struct {
	Run      int           `json:"run"`
	Duration time.Duration `json:"duration_ns"`
	TOPS     float64       `json:"tops"`
}

type benchReport struct {
	Backend   string     `json:"backend"`
	Variant   string     `json:"variant"`
	Pixels    int        `json:"pixels"`
	Frames    int        `json:"frames"`
	Samples   int        `json:"samples"`
	Setup     string     `json:"setup"`
	Runs      []benchRun `json:"runs"`
	MedianNS  int64      `json:"median_ns"`
	MeanTOPS  float64    `json:"mean_tops"`
	PeakBytes int64      `json:"device_peak_bytes"`
	Device    string     `json:"device"`
	Features  []string   `json:"cpu_features"`
}

func benchmarkCmd() *cli.Command {
	var (
		warmupRuns int64
		benchRuns  int64
		seed       uint64
		weights    string
		asJSON     bool
	)

	flags := append([]cli.Flag{}, problemFlags()...)
	flags = append(flags, backendFlags()...)
	flags = append(flags,
		&cli.Int64Flag{
			Name:        "warmup",
			Usage:       "number of warmup runs",
			Value:       1,
			Destination: &warmupRuns,
		},
		&cli.Int64Flag{
			Name:        "runs",
			Usage:       "number of benchmark runs",
			Value:       5,
			Destination: &benchRuns,
		},
		&cli.Uint64Flag{
			Name:        "seed",
			Usage:       "seed for the synthetic weights and voltages",
			Value:       42,
			Destination: &seed,
		},
		&cli.StringFlag{
			Name:        "weights",
			Usage:       "packed weight file (default: synthetic weights)",
			Destination: &weights,
		},
		jsonFlag(&asJSON),
	)

	return &cli.Command{
		Name:  "benchmark",
		Usage: "Time repeated beamforming batches and report binary TOPS",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyProblemConfig(cmd, fileConfig)
			log := logger.FromContext(ctx)
			if benchRuns <= 0 {
				return cli.Exit("error: --runs must be > 0", 1)
			}

			setupStart := time.Now()
			b, err := newBeamformer(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: create beamformer: %v", err), 1)
			}
			defer func() { _ = b.Close() }()
			p := b.Plan()
			r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))

			if weights != "" {
				err = b.ReadAMatrix(weights)
			} else {
				w := make([]float32, p.Logical.Pixels*p.Logical.Samples*2)
				for i := range w {
					w[i] = float32(r.NormFloat64())
				}
				var packed []byte
				packed, _, err = prepare.Pack(ctx, w, prepare.Options{
					Pixels:  p.Logical.Pixels,
					Samples: p.Logical.Samples,
					Variant: b.Variant(),
					Logger:  log,
				})
				if err == nil {
					err = b.LoadAMatrix(bytes.NewReader(packed), int64(len(packed)))
				}
			}
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: load weights: %v", err), 1)
			}

			rf := make([]int16, p.RFElements())
			for i := range rf {
				rf[i] = int16(r.IntN(1<<16) - 1<<15)
			}
			bf := make([]int32, p.BFElements())
			setup := time.Since(setupStart)

			for i := range int(warmupRuns) {
				log.Info("warmup run", "run", i+1)
				if err := b.Process(rf, bf); err != nil {
					return cli.Exit(fmt.Sprintf("error: warmup run %d: %v", i+1, err), 1)
				}
			}

			report := benchReport{
				Backend: b.Backend(),
				Variant: b.Variant().String(),
				Pixels:  p.Logical.Pixels,
				Frames:  p.Logical.Frames,
				Samples: p.Logical.Samples,
				Setup:   setup.Round(time.Millisecond).String(),
			}
			durations := make([]time.Duration, 0, benchRuns)
			var sumTOPS float64
			for i := range int(benchRuns) {
				if err := ctx.Err(); err != nil {
					return err
				}
				log.Info("benchmark run", "run", i+1)
				start := time.Now()
				if err := b.Process(rf, bf); err != nil {
					return cli.Exit(fmt.Sprintf("error: benchmark run %d: %v", i+1, err), 1)
				}
				d := time.Since(start)
				t := tops(p.BinaryOps(), d)
				report.Runs = append(report.Runs, benchRun{Run: i + 1, Duration: d, TOPS: t})
				durations = append(durations, d)
				sumTOPS += t
			}
			slices.Sort(durations)
			report.MedianNS = durations[len(durations)/2].Nanoseconds()
			report.MeanTOPS = sumTOPS / float64(len(durations))
			dev := b.Stream().Device()
			report.PeakBytes = dev.MemStats().Peak
			report.Device = dev.Name
			report.Features = dev.FeatureList()

			if asJSON {
				return printJSON(report)
			}
			printReport(report)
			return nil
		},
	}
}

func printReport(r benchReport) {
	fmt.Println("=== tcbf Benchmark ===")
	fmt.Printf("Backend:  %s (%s)\n", r.Backend, r.Variant)
	fmt.Printf("Shape:    pixels=%d frames=%d samples=%d\n", r.Pixels, r.Frames, r.Samples)
	fmt.Printf("Device:   %s\n", r.Device)
	fmt.Printf("Features: %s\n", strings.Join(r.Features, " "))
	fmt.Printf("CPUs:     %d\n", runtime.NumCPU())
	fmt.Printf("GOMAXPROCS: %d\n", runtime.GOMAXPROCS(0))
	fmt.Printf("Setup:    %s\n", r.Setup)
	fmt.Printf("Memory:   %.1f MiB peak\n", float64(r.PeakBytes)/(1<<20))
	fmt.Println()

	fmt.Println("=== Results ===")
	fmt.Printf("%-6s %12s %10s\n", "Run", "Duration", "TOPS")
	for _, run := range r.Runs {
		fmt.Printf("%-6d %12s %10.4f\n", run.Run, run.Duration.Round(time.Microsecond), run.TOPS)
	}
	fmt.Printf("\n%-6s %12s %10.4f\n", "Median", time.Duration(r.MedianNS).Round(time.Microsecond), r.MeanTOPS)
}
