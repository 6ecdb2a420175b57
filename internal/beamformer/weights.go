package beamformer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samcharles93/tcbf/internal/rawio"
)

// ReadAMatrix loads packed weights from a file produced by the prepare
// tool. The file must hold exactly Plan().BytesAPacked bytes.
func (b *Beamformer) ReadAMatrix(path string) error {
	const op = "read A matrix"
	if err := b.usable(op); err != nil {
		return err
	}
	m, err := rawio.Map(path)
	if err != nil {
		return newError(KindConfig, op, fmt.Sprintf("open %s", path), err)
	}
	defer m.Close()
	return b.LoadAMatrix(bytes.NewReader(m.Bytes()), m.Size())
}

// LoadAMatrix copies size bytes of packed weights from r into the device
// weight buffer and waits for the copy. The size is checked before the
// device is touched; a short stream is a size error.
func (b *Beamformer) LoadAMatrix(r io.Reader, size int64) error {
	const op = "load A matrix"
	if err := b.usable(op); err != nil {
		return err
	}
	want := b.plan.BytesAPacked
	if size != want {
		return newError(KindSize, op, fmt.Sprintf("weight stream holds %d bytes, expected %d", size, want), nil)
	}

	host := make([]byte, want)
	if _, err := io.ReadFull(r, host); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return newError(KindSize, op, fmt.Sprintf("weight stream ended before %d bytes", want), err)
		}
		return newError(KindSize, op, "read weight stream", err)
	}

	start := time.Now()
	prev := b.state
	b.state = WeightsLoaded
	if err := b.stream.CopyH2D(b.bufs.get(roleA), 0, host); err != nil {
		return b.fail(KindDevice, op, "enqueue weight copy", err)
	}
	if err := b.stream.Synchronize(); err != nil {
		return b.fail(KindDevice, op, "copy weights", err)
	}
	b.state = Ready

	if prev == Ready {
		b.log.Info("weights replaced", "bytes", want, "took", time.Since(start))
	} else {
		b.log.Info("weights loaded", "bytes", want, "took", time.Since(start))
	}
	return nil
}
