package beamformer

import (
	"fmt"

	"github.com/samcharles93/tcbf/internal/device"
)

func (b *Beamformer) checkBF(op string, bf []int32) error {
	if want := b.plan.BFElements(); len(bf) != want {
		return newError(KindSize, op, fmt.Sprintf("BF buffer holds %d values, expected %d", len(bf), want), nil)
	}
	return nil
}

// materialize enqueues the copy of the logical pixels x frames window of
// each result plane into bf, dropping padded rows and columns.
func (b *Beamformer) materialize(bf []int32) error {
	const op = "materialize"
	p := b.plan
	const word = 4 // int32
	pixels, frames := p.Logical.Pixels, p.Logical.Frames
	planeDevice := int64(p.Padded.Pixels) * int64(p.Padded.Frames) * word
	spitch := int64(p.Padded.Frames) * word
	width := int64(frames) * word

	for plane := range 2 {
		dst := device.Int32Bytes(bf[plane*pixels*frames : (plane+1)*pixels*frames])
		err := b.stream.CopyD2H2D(dst, width, b.bufs.get(roleBF), int64(plane)*planeDevice, spitch, width, int64(pixels))
		if err != nil {
			return b.fail(KindDevice, op, "copy BF to host", err)
		}
	}
	return nil
}
