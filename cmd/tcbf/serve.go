package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"
	"github.com/labstack/echo/v5/middleware"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/tcbf/internal/api"
	"github.com/samcharles93/tcbf/internal/logger"
)

func serveCmd() *cli.Command {
	var (
		addr        string
		readTimeout time.Duration
		rateLimit   float64
		burst       int64
		weights     string
	)

	flags := append([]cli.Flag{}, problemFlags()...)
	flags = append(flags, backendFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "listen address",
			Value:       "127.0.0.1:8080",
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "read-timeout",
			Usage:       "read header timeout",
			Value:       30 * time.Second,
			Destination: &readTimeout,
		},
		&cli.FloatFlag{
			Name:        "rate-limit",
			Usage:       "sustained POST requests per second (0 disables)",
			Destination: &rateLimit,
		},
		&cli.Int64Flag{
			Name:        "burst",
			Usage:       "rate limiter burst size",
			Value:       4,
			Destination: &burst,
		},
		&cli.StringFlag{
			Name:        "weights",
			Aliases:     []string{"a"},
			Usage:       "packed weight file to load at startup",
			Destination: &weights,
		},
	)

	return &cli.Command{
		Name:  "serve",
		Usage: "Serve a beamformer over HTTP",
		Flags: flags,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyServeConfig(cmd, fileConfig, &addr, &rateLimit, &burst, &weights)
			log := logger.FromContext(ctx)

			b, err := newBeamformer(ctx)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: create beamformer: %v", err), 1)
			}
			defer func() { _ = b.Close() }()
			if weights != "" {
				if err := b.ReadAMatrix(weights); err != nil {
					return cli.Exit(fmt.Sprintf("error: load weights: %v", err), 1)
				}
			}

			server := api.NewServer(b, api.Options{
				RateLimit: rateLimit,
				Burst:     int(burst),
				Logger:    log,
			})
			e := echo.New()
			e.Use(middleware.RequestLogger())
			e.Use(middleware.Recover())
			server.Register(e)
			log.Info("starting server", "address", addr, "shape", b.Plan().Logical.String(), "state", b.State().String())
			sc := echo.StartConfig{
				Address: addr,
				BeforeServeFunc: func(srv *http.Server) error {
					srv.ReadHeaderTimeout = readTimeout
					return nil
				},
			}
			return sc.Start(ctx, e)
		},
	}
}
