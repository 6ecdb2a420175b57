package main

import (
	"github.com/urfave/cli/v3"
)

var (
	pixels      int64
	frames      int64
	samples     int64
	variant     string
	backendName string
	configFile  string
	logLevel    string
	logFormat   string
	debug       bool
)

func problemFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "pixels",
			Aliases:     []string{"p"},
			Usage:       "number of beams (pixels)",
			Value:       1024,
			Destination: &pixels,
		},
		&cli.Int64Flag{
			Name:        "frames",
			Aliases:     []string{"f"},
			Usage:       "number of time frames per batch",
			Value:       1024,
			Destination: &frames,
		},
		&cli.Int64Flag{
			Name:        "samples",
			Aliases:     []string{"k"},
			Usage:       "number of samples (antennas x channels) per frame",
			Value:       1024,
			Destination: &samples,
		},
	}
}

func backendFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "execution backend (auto, cpu, cuda)",
			Value:       "auto",
			Destination: &backendName,
		},
		&cli.StringFlag{
			Name:        "variant",
			Usage:       "GEMM tile variant (basic, opt)",
			Value:       "opt",
			Destination: &variant,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
	}
}
