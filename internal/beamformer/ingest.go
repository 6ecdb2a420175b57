package beamformer

import (
	"errors"
	"fmt"

	"github.com/samcharles93/tcbf/internal/device"
	"github.com/samcharles93/tcbf/internal/rawio"
)

// ReadRF fills rf from a raw little-endian int16 file laid out as
// [frames][samples][re,im].
func (b *Beamformer) ReadRF(rf []int16, path string) error {
	const op = "read RF"
	if err := b.checkRF(op, rf); err != nil {
		return err
	}
	if err := rawio.ReadRF(path, rf); err != nil {
		if errors.Is(err, rawio.ErrSizeMismatch) {
			return newError(KindSize, op, path, err)
		}
		return newError(KindConfig, op, path, err)
	}
	return nil
}

func (b *Beamformer) checkRF(op string, rf []int16) error {
	if want := b.plan.RFElements(); len(rf) != want {
		return newError(KindSize, op, fmt.Sprintf("RF buffer holds %d values, expected %d", len(rf), want), nil)
	}
	return nil
}

// ingest enqueues the staging copy and the layout transforms that turn a
// host RF batch into the engine's B operand.
func (b *Beamformer) ingest(rf []int16) error {
	const op = "ingest"
	p := b.plan
	staging := b.bufs.get(roleRF)

	// Rows shorter than the padded sample count leave a zero tail, and
	// padded frames stay zero, so the memset must precede every copy.
	if err := b.stream.Memset(staging, 0); err != nil {
		return b.fail(KindDevice, op, "zero RF staging buffer", err)
	}
	const sampleBytes = 2 * 2 // re, im int16
	spitch := int64(p.Logical.Samples) * sampleBytes
	dpitch := int64(p.Padded.Samples) * sampleBytes
	err := b.stream.CopyH2D2D(staging, 0, dpitch, device.Int16Bytes(rf), spitch, spitch, int64(p.Logical.Frames))
	if err != nil {
		return b.fail(KindDevice, op, "copy RF to device", err)
	}

	if err := b.complexFirst.Run(b.stream, staging, b.bufs.get(roleRFComplexFirst)); err != nil {
		return b.fail(launchKind(err), op, "complex-first reorder", err)
	}
	if err := b.packing.Run(b.stream, b.bufs.get(roleRFComplexFirst), b.bufs.get(roleRFPacked)); err != nil {
		return b.fail(launchKind(err), op, "pack RF", err)
	}
	if err := b.transpose.Run(b.stream, b.bufs.get(roleRFPacked), b.bufs.get(roleRFTransposed)); err != nil {
		return b.fail(launchKind(err), op, "transpose RF", err)
	}
	return nil
}
