// Package prepare converts an unpacked complex weight matrix into the packed,
// padded and tiled operand file a Beamformer loads with ReadAMatrix.
//
// The input is raw little-endian float32 laid out as [pixels][samples][re,im].
// Each component is reduced to its sign bit on the device using the same
// backend capabilities the beamformer uses for RF data, so both operands of
// the binary GEMM share one encoding.
package prepare

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samcharles93/tcbf/internal/backend"
	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/device"
	"github.com/samcharles93/tcbf/internal/logger"
	"github.com/samcharles93/tcbf/internal/plan"
	"github.com/samcharles93/tcbf/internal/rawio"
)

var ErrShape = errors.New("prepare: weights do not match shape")

type Options struct {
	In      string
	Out     string
	Pixels  int
	Samples int
	Variant ccg.Variant
	Backend backend.Backend
	Device  *device.Device
	Logger  logger.Logger
}

// Result describes a prepared weight file.
type Result struct {
	Plan  plan.Plan `json:"plan"`
	Bytes int64     `json:"bytes"`
}

// AMatrix reads opts.In, packs it and writes opts.Out.
func AMatrix(ctx context.Context, opts Options) (Result, error) {
	if opts.In == "" || opts.Out == "" {
		return Result{}, errors.New("prepare: input and output paths are required")
	}
	if opts.Pixels <= 0 || opts.Samples <= 0 {
		return Result{}, fmt.Errorf("%w: pixels=%d samples=%d", ErrShape, opts.Pixels, opts.Samples)
	}
	weights, err := rawio.ReadFloat32(opts.In, opts.Pixels*opts.Samples*2)
	if err != nil {
		if errors.Is(err, rawio.ErrSizeMismatch) {
			return Result{}, fmt.Errorf("%w: %v", ErrShape, err)
		}
		return Result{}, err
	}
	packed, p, err := Pack(ctx, weights, opts)
	if err != nil {
		return Result{}, err
	}
	if err := rawio.WriteBytes(opts.Out, packed); err != nil {
		return Result{}, err
	}
	return Result{Plan: p, Bytes: int64(len(packed))}, nil
}

// Pack converts weights in [pixels][samples][re,im] order to the packed tiled
// operand and returns it with the plan it was padded for.
func Pack(ctx context.Context, weights []float32, opts Options) ([]byte, plan.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, plan.Plan{}, err
	}
	log := opts.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	be := opts.Backend
	if be == nil {
		var err error
		if be, err = backend.New(backend.Auto); err != nil {
			return nil, plan.Plan{}, err
		}
	}
	variant := opts.Variant
	if variant == 0 {
		variant = ccg.Opt
	}
	tile, err := be.Dimensions(ccg.Int1, variant)
	if err != nil {
		return nil, plan.Plan{}, err
	}
	// Frames do not enter the weight layout; one frame keeps the planner happy.
	p, err := plan.New(plan.Shape{Pixels: opts.Pixels, Frames: 1, Samples: opts.Samples}, tile)
	if err != nil {
		return nil, plan.Plan{}, fmt.Errorf("%w: %v", ErrShape, err)
	}
	if want := p.Logical.Pixels * p.Logical.Samples * 2; len(weights) != want {
		return nil, plan.Plan{}, fmt.Errorf("%w: got %d values, expected %d", ErrShape, len(weights), want)
	}

	dev := opts.Device
	if dev == nil {
		if dev, err = device.Open(0); err != nil {
			return nil, plan.Plan{}, err
		}
	}

	start := time.Now()
	out, err := packOnDevice(dev, be, p, weights)
	if err != nil {
		return nil, plan.Plan{}, err
	}
	log.Info("weights prepared",
		"pixels", p.Logical.Pixels,
		"samples", p.Logical.Samples,
		"padded", p.Padded.String(),
		"tile", tile.String(),
		"bytes", len(out),
		"took", time.Since(start),
	)
	return out, p, nil
}

func packOnDevice(dev *device.Device, be backend.Backend, p plan.Plan, weights []float32) (out []byte, err error) {
	mp, kp := p.Padded.Pixels, p.Padded.Samples
	unpacked := int64(mp) * int64(kp) * 2 * 4

	complexFirst, err := be.NewComplexFirst(mp, kp, ccg.Float32)
	if err != nil {
		return nil, err
	}
	packing, err := be.NewPacking(2*mp*kp, ccg.Float32)
	if err != nil {
		return nil, err
	}
	transpose, err := be.NewTranspose(mp, kp, p.Tile.M, p.Tile.K)
	if err != nil {
		return nil, err
	}

	var bufs []*device.Buffer
	defer func() {
		for _, b := range bufs {
			if ferr := b.Free(); ferr != nil && err == nil {
				err = ferr
			}
		}
	}()
	alloc := func(n int64) (*device.Buffer, error) {
		b, err := dev.Alloc(n)
		if err == nil {
			bufs = append(bufs, b)
		}
		return b, err
	}
	staging, err := alloc(unpacked)
	if err != nil {
		return nil, err
	}
	planar, err := alloc(unpacked)
	if err != nil {
		return nil, err
	}
	packed, err := alloc(p.BytesAPacked)
	if err != nil {
		return nil, err
	}
	tiled, err := alloc(p.BytesAPacked)
	if err != nil {
		return nil, err
	}

	s := dev.NewStream()
	defer s.Destroy()

	const sampleBytes = 2 * 4 // re, im float32
	spitch := int64(p.Logical.Samples) * sampleBytes
	out = make([]byte, p.BytesAPacked)
	steps := []func() error{
		func() error { return s.Memset(staging, 0) },
		func() error {
			return s.CopyH2D2D(staging, 0, int64(kp)*sampleBytes, device.Float32Bytes(weights), spitch, spitch, int64(p.Logical.Pixels))
		},
		func() error { return complexFirst.Run(s, staging, planar) },
		func() error { return packing.Run(s, planar, packed) },
		func() error { return transpose.Run(s, packed, tiled) },
		func() error { return s.CopyD2H(out, tiled, 0) },
	}
	for _, step := range steps {
		if err := step(); err != nil {
			return nil, err
		}
	}
	if err := s.Synchronize(); err != nil {
		return nil, err
	}
	return out, nil
}
