package beamformer

import (
	"time"

	"github.com/samcharles93/tcbf/internal/device"
)

// Enqueue submits one batch and returns an event that completes when bf
// holds the result. rf and bf must not be touched until then. Sizes and
// state are validated before anything is enqueued.
func (b *Beamformer) Enqueue(rf []int16, bf []int32) (*device.Event, error) {
	const op = "process"
	if err := b.usable(op); err != nil {
		return nil, err
	}
	if b.state != Ready {
		return nil, newError(KindNotReady, op, "weights have not been loaded", nil)
	}
	if err := b.checkRF(op, rf); err != nil {
		return nil, err
	}
	if err := b.checkBF(op, bf); err != nil {
		return nil, err
	}
	if err := b.stream.Err(); err != nil {
		return nil, b.fail(KindDevice, op, "stream is in an error state", err)
	}

	if err := b.ingest(rf); err != nil {
		return nil, err
	}
	if err := b.multiply(); err != nil {
		return nil, err
	}
	if err := b.materialize(bf); err != nil {
		return nil, err
	}
	ev, err := b.stream.Record()
	if err != nil {
		return nil, b.fail(KindDevice, op, "record completion event", err)
	}
	return ev, nil
}

// Wait blocks on an event returned by Enqueue and moves the instance to
// Failed if the device reported an error.
func (b *Beamformer) Wait(ev *device.Event) error {
	if err := ev.Wait(); err != nil {
		return b.fail(KindDevice, "process", "device pipeline", err)
	}
	return nil
}

// Process beamforms one batch synchronously.
func (b *Beamformer) Process(rf []int16, bf []int32) error {
	start := time.Now()
	ev, err := b.Enqueue(rf, bf)
	if err != nil {
		return err
	}
	if err := b.Wait(ev); err != nil {
		return err
	}
	b.log.Debug("batch processed", "took", time.Since(start))
	return nil
}
