package cpu

import (
	"fmt"

	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/device"
)

type complexFirst struct {
	rows  int
	cols  int
	dtype ccg.DType
}

func (c *complexFirst) Run(s *device.Stream, in, out *device.Buffer) error {
	need := int64(2 * c.rows * c.cols * c.dtype.Size())
	if in.Size() < need || out.Size() < need {
		return fmt.Errorf("complex-first: buffers (%d, %d bytes) smaller than %d", in.Size(), out.Size(), need)
	}
	return s.Launch("complex-first", func() error {
		switch c.dtype {
		case ccg.Int16:
			splitComplex(in.Int16s(), out.Int16s(), c.rows, c.cols)
		case ccg.Float32:
			splitComplex(in.Float32s(), out.Float32s(), c.rows, c.cols)
		}
		return nil
	})
}

// splitComplex converts interleaved [rows][cols][2] into planar [2][rows][cols].
func splitComplex[T int16 | float32](in, out []T, rows, cols int) {
	plane := rows * cols
	parallelFor(rows, func(lo, hi int) {
		for r := lo; r < hi; r++ {
			src := in[r*cols*2 : (r+1)*cols*2]
			re := out[r*cols : (r+1)*cols]
			im := out[plane+r*cols : plane+(r+1)*cols]
			for c := 0; c < cols; c++ {
				re[c] = src[2*c]
				im[c] = src[2*c+1]
			}
		}
	})
}
