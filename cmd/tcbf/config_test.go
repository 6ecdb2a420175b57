package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/urfave/cli/v3"
)

func TestConfigPath(t *testing.T) {
	t.Run("flag wins", func(t *testing.T) {
		t.Setenv(envConfigPath, "/env/config.yaml")
		if got := configPath(" /flag/config.yaml "); got != "/flag/config.yaml" {
			t.Fatalf("unexpected path: %q", got)
		}
	})

	t.Run("env overrides default", func(t *testing.T) {
		t.Setenv(envConfigPath, "/env/config.yaml")
		if got := configPath(""); got != "/env/config.yaml" {
			t.Fatalf("unexpected path: %q", got)
		}
	})

	t.Run("xdg default", func(t *testing.T) {
		dir := t.TempDir()
		t.Setenv(envConfigPath, "")
		t.Setenv("XDG_CONFIG_HOME", dir)
		want := filepath.Join(dir, "tcbf", "config.yaml")
		if got := configPath(""); got != want {
			t.Fatalf("unexpected path: got %q want %q", got, want)
		}
	})
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()

	cfg, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	if err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if cfg.Pixels != nil || cfg.Backend != "" {
		t.Fatalf("expected zero config, got %+v", cfg)
	}

	path := filepath.Join(dir, "config.yaml")
	data := []byte("pixels: 512\nsamples: 2048\nvariant: basic\nrate_limit: 2.5\nserver_address: 0.0.0.0:9000\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Pixels == nil || *cfg.Pixels != 512 || cfg.Samples == nil || *cfg.Samples != 2048 {
		t.Fatalf("unexpected shape: %+v", cfg)
	}
	if cfg.Frames != nil {
		t.Fatalf("frames should be unset")
	}
	if cfg.Variant != "basic" || cfg.ServerAddress != "0.0.0.0:9000" || cfg.RateLimit == nil || *cfg.RateLimit != 2.5 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	bad := filepath.Join(dir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("pixels: [1, 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(bad); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestApplyProblemConfigRespectsFlags(t *testing.T) {
	p, s := int64(512), int64(4096)
	cfg := Config{Pixels: &p, Samples: &s, Variant: "basic", Backend: "cpu"}

	cmd := &cli.Command{
		Name:  "plan",
		Flags: append(problemFlags(), backendFlags()...),
		Action: func(ctx context.Context, c *cli.Command) error {
			applyProblemConfig(c, cfg)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"plan", "--pixels", "8", "--variant", "opt"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if pixels != 8 {
		t.Fatalf("explicit --pixels overridden: %d", pixels)
	}
	if samples != 4096 {
		t.Fatalf("config samples not applied: %d", samples)
	}
	if frames != 1024 {
		t.Fatalf("frames default changed: %d", frames)
	}
	if variant != "opt" {
		t.Fatalf("explicit --variant overridden: %q", variant)
	}
	if backendName != "cpu" {
		t.Fatalf("config backend not applied: %q", backendName)
	}
}

func TestApplyServeConfig(t *testing.T) {
	rl, burstCfg := 3.0, int64(9)
	cfg := Config{ServerAddress: "0.0.0.0:1234", RateLimit: &rl, Burst: &burstCfg, Weights: "/data/a.bin"}

	var (
		addr      string
		rateLimit float64
		burst     int64
		weights   string
	)
	cmd := &cli.Command{
		Name: "serve",
		Flags: append(append(problemFlags(), backendFlags()...),
			&cli.StringFlag{Name: "addr", Value: "127.0.0.1:8080", Destination: &addr},
			&cli.FloatFlag{Name: "rate-limit", Destination: &rateLimit},
			&cli.Int64Flag{Name: "burst", Value: 4, Destination: &burst},
			&cli.StringFlag{Name: "weights", Destination: &weights},
		),
		Action: func(ctx context.Context, c *cli.Command) error {
			applyServeConfig(c, cfg, &addr, &rateLimit, &burst, &weights)
			return nil
		},
	}
	if err := cmd.Run(context.Background(), []string{"serve", "--burst", "2"}); err != nil {
		t.Fatalf("run: %v", err)
	}
	if addr != "0.0.0.0:1234" || rateLimit != 3 || weights != "/data/a.bin" {
		t.Fatalf("config not applied: addr=%q rate=%v weights=%q", addr, rateLimit, weights)
	}
	if burst != 2 {
		t.Fatalf("explicit --burst overridden: %d", burst)
	}
}

func TestTops(t *testing.T) {
	t.Parallel()

	if got := tops(5e11, time.Second); math.Abs(got-1) > 1e-12 {
		t.Fatalf("tops: got %v want 1", got)
	}
	if got := tops(100, 0); got != 0 {
		t.Fatalf("tops with zero duration: got %v", got)
	}
}
