package cpu

import (
	"fmt"

	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/device"
)

type packing struct {
	n     int
	dtype ccg.DType
}

func (p *packing) Run(s *device.Stream, in, out *device.Buffer) error {
	if in.Size() < int64(p.n*p.dtype.Size()) {
		return fmt.Errorf("packing: input holds %d bytes, need %d", in.Size(), p.n*p.dtype.Size())
	}
	if out.Size() < int64(p.n/8) {
		return fmt.Errorf("packing: output holds %d bytes, need %d", out.Size(), p.n/8)
	}
	return s.Launch("pack", func() error {
		switch p.dtype {
		case ccg.Int16:
			packSigns(in.Int16s()[:p.n], out.Uint32s())
		case ccg.Float32:
			packSigns(in.Float32s()[:p.n], out.Uint32s())
		}
		return nil
	})
}

// packSigns stores one bit per component, set when the component is negative.
func packSigns[T int16 | float32](in []T, out []uint32) {
	words := len(in) / ccg.WordBits
	parallelFor(words, func(lo, hi int) {
		for w := lo; w < hi; w++ {
			src := in[w*ccg.WordBits : (w+1)*ccg.WordBits]
			var word uint32
			for b, v := range src {
				if v < 0 {
					word |= 1 << uint(b)
				}
			}
			out[w] = word
		}
	})
}
