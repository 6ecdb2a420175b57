package cpu

import (
	"fmt"

	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/device"
)

type transpose struct {
	rows     int
	cols     int
	tileRows int
	tileK    int
}

func (t *transpose) Run(s *device.Stream, in, out *device.Buffer) error {
	need := int64(2 * t.rows * t.cols / 8)
	if in.Size() < need || out.Size() < need {
		return fmt.Errorf("transpose: buffers (%d, %d bytes) smaller than %d", in.Size(), out.Size(), need)
	}
	return s.Launch("transpose", func() error {
		tileOperand(in.Uint32s(), out.Uint32s(), t.rows, t.cols, t.tileRows, t.tileK)
		return nil
	})
}

// tileOperand moves packed planar rows [2][rows][cols/32] into tiled order.
func tileOperand(in, out []uint32, rows, cols, tileRows, tileK int) {
	words := cols / ccg.WordBits
	parallelFor(rows, func(lo, hi int) {
		for plane := 0; plane < 2; plane++ {
			for r := lo; r < hi; r++ {
				src := in[(plane*rows+r)*words : (plane*rows+r+1)*words]
				for w, v := range src {
					out[ccg.TiledIndex(plane, r, w, cols, tileRows, tileK)] = v
				}
			}
		}
	})
}
