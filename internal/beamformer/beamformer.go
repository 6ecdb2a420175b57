// Package beamformer drives a binary tensor-core GEMM over raw antenna
// voltages to produce tied-array beams.
//
// A Beamformer owns one set of padded device buffers sized at construction.
// Weights are loaded once with ReadAMatrix or LoadAMatrix; Process may then be
// called any number of times with host buffers of the configured shape. The
// pipeline per call is: zero and fill the staging buffer, reorder to planar
// complex, pack to sign bits, tile into the engine's operand layout, multiply,
// and copy the logical window of the result back.
//
// A Beamformer is not safe for concurrent use.
package beamformer

import (
	"errors"
	"fmt"

	"github.com/samcharles93/tcbf/internal/backend"
	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/device"
	"github.com/samcharles93/tcbf/internal/logger"
	"github.com/samcharles93/tcbf/internal/plan"
)

// Config describes a beamforming problem and the resources it runs on.
//
// When Stream is nil a stream is created on Device and destroyed by Close.
// When Device is also nil, device 0 is opened.
type Config struct {
	Pixels  int
	Frames  int
	Samples int

	Device  *device.Device
	Stream  *device.Stream
	Backend backend.Backend
	Variant ccg.Variant
	Logger  logger.Logger
}

type Beamformer struct {
	plan    plan.Plan
	backend backend.Backend
	variant ccg.Variant
	log     logger.Logger

	dev        *device.Device
	stream     *device.Stream
	ownsStream bool

	bufs *arena

	complexFirst ccg.ComplexFirst
	packing      ccg.Packing
	transpose    ccg.Transpose
	gemm         ccg.GEMM

	state   State
	failure error
}

// New plans the problem, builds the pipeline stages and allocates every
// device buffer. Any failure leaves no device memory allocated.
func New(cfg Config) (*Beamformer, error) {
	const op = "new"

	log := cfg.Logger
	if log == nil {
		log = logger.Default()
	}
	be := cfg.Backend
	if be == nil {
		var err error
		if be, err = backend.New(backend.Auto); err != nil {
			return nil, newError(KindConfig, op, "resolve backend", err)
		}
	}
	variant := cfg.Variant
	if variant == 0 {
		variant = ccg.Opt
	}

	tile, err := be.Dimensions(ccg.Int1, variant)
	if err != nil {
		return nil, newError(KindConfig, op, "query tile geometry", err)
	}
	p, err := plan.New(plan.Shape{Pixels: cfg.Pixels, Frames: cfg.Frames, Samples: cfg.Samples}, tile)
	if err != nil {
		return nil, newError(KindConfig, op, "plan problem", err)
	}

	b := &Beamformer{
		plan:    p,
		backend: be,
		variant: variant,
		log:     log.With("component", "beamformer"),
	}
	if err := b.buildStages(); err != nil {
		return nil, newError(KindConfig, op, "build pipeline", err)
	}

	dev, stream := cfg.Device, cfg.Stream
	if stream != nil {
		if dev != nil && stream.Device() != dev {
			return nil, newError(KindConfig, op, "stream belongs to a different device", nil)
		}
		dev = stream.Device()
	}
	if dev == nil {
		if dev, err = device.Open(0); err != nil {
			return nil, newError(KindDevice, op, "open device", err)
		}
	}

	bufs, err := allocArena(dev, p)
	if err != nil {
		return nil, newError(KindDevice, op, "allocate device buffers", err)
	}
	if stream == nil {
		stream = dev.NewStream()
		b.ownsStream = true
	}
	b.dev, b.stream, b.bufs = dev, stream, bufs

	b.log.Debug("beamformer created",
		"backend", be.Name(),
		"variant", variant.String(),
		"tile", tile.String(),
		"logical", p.Logical.String(),
		"padded", p.Padded.String(),
		"device_bytes", bufs.bytes(),
	)
	return b, nil
}

func (b *Beamformer) buildStages() error {
	p := b.plan
	fp, kp := p.Padded.Frames, p.Padded.Samples

	var err error
	if b.complexFirst, err = b.backend.NewComplexFirst(fp, kp, ccg.Int16); err != nil {
		return err
	}
	if b.packing, err = b.backend.NewPacking(2*fp*kp, ccg.Int16); err != nil {
		return err
	}
	if b.transpose, err = b.backend.NewTranspose(fp, kp, p.Tile.N, p.Tile.K); err != nil {
		return err
	}
	if b.gemm, err = b.backend.NewGEMM(p.Padded.Pixels, fp, kp, p.Logical.Samples, p.Tile); err != nil {
		return err
	}
	return nil
}

// Plan returns the problem geometry.
func (b *Beamformer) Plan() plan.Plan {
	return b.plan
}

func (b *Beamformer) State() State {
	return b.state
}

func (b *Beamformer) Variant() ccg.Variant {
	return b.variant
}

func (b *Beamformer) Backend() string {
	return b.backend.Name()
}

// Stream returns the stream all device work is enqueued on.
func (b *Beamformer) Stream() *device.Stream {
	return b.stream
}

// Close waits for outstanding work and releases every device buffer. A
// stream supplied through Config is left running.
func (b *Beamformer) Close() error {
	if b.state == Closed {
		return nil
	}
	var errs []error
	if err := b.stream.Synchronize(); err != nil && b.state != Failed {
		errs = append(errs, err)
	}
	if err := b.bufs.release(); err != nil {
		errs = append(errs, err)
	}
	if b.ownsStream {
		if err := b.stream.Destroy(); err != nil {
			errs = append(errs, err)
		}
	}
	b.state = Closed
	if err := errors.Join(errs...); err != nil {
		return newError(KindDevice, "close", "release resources", err)
	}
	return nil
}

// usable reports why the instance cannot accept work, if it cannot.
func (b *Beamformer) usable(op string) error {
	switch b.state {
	case Closed:
		return newError(KindNotReady, op, "beamformer is closed", nil)
	case Failed:
		return newError(KindDevice, op, "beamformer failed on an earlier call", b.failure)
	}
	return nil
}

// fail records a device failure. The instance accepts no further work.
func (b *Beamformer) fail(kind Kind, op, message string, err error) error {
	b.state = Failed
	b.failure = err
	b.log.Error("beamformer failed", "op", op, "error", err)
	return newError(kind, op, message, err)
}

// launchKind separates runtime failures from a capability rejecting the
// buffers it was given, which is a contract violation.
func launchKind(err error) Kind {
	if errors.Is(err, device.ErrStreamDestroyed) || errors.Is(err, device.ErrBufferFreed) {
		return KindDevice
	}
	return KindConfig
}

func (b *Beamformer) String() string {
	return fmt.Sprintf("beamformer(%s, %s, %s)", b.plan.Logical, b.variant, b.state)
}
