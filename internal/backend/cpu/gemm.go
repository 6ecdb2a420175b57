package cpu

import (
	"fmt"
	"math/bits"

	"github.com/samcharles93/tcbf/internal/ccg"
	"github.com/samcharles93/tcbf/internal/device"
)

type gemm struct {
	m        int
	n        int
	k        int
	logicalK int
	tile     ccg.Tile
}

func (g *gemm) Run(s *device.Stream, a, b, c *device.Buffer) error {
	if want := int64(2 * g.m * g.k / 8); a.Size() != want {
		return fmt.Errorf("gemm: operand A holds %d bytes, tile plan needs %d", a.Size(), want)
	}
	if want := int64(2 * g.n * g.k / 8); b.Size() != want {
		return fmt.Errorf("gemm: operand B holds %d bytes, tile plan needs %d", b.Size(), want)
	}
	if want := int64(2 * g.m * g.n * 4); c.Size() != want {
		return fmt.Errorf("gemm: result holds %d bytes, tile plan needs %d", c.Size(), want)
	}
	return s.Launch("gemm int1", func() error {
		g.compute(a.Uint32s(), b.Uint32s(), c.Int32s())
		return nil
	})
}

// compute evaluates C = A * B^T for complex ±1 operands. Each real dot
// product over K components equals K - 2*popcount(x XOR y); zero padding in
// both operands XORs to zero, so only the logical K enters the result.
func (g *gemm) compute(a, b []uint32, c []int32) {
	tm, tn, tk := g.tile.M, g.tile.N, g.tile.K
	wk := tk / ccg.WordBits
	tilesK := g.k / tk
	tileWordsA := 2 * tm * wk
	tileWordsB := 2 * tn * wk
	plane := g.m * g.n
	twoK := int32(2 * g.logicalK)

	parallelFor(g.m/tm, func(lo, hi int) {
		for mt := lo; mt < hi; mt++ {
			for nt := 0; nt < g.n/tn; nt++ {
				for r := 0; r < tm; r++ {
					for col := 0; col < tn; col++ {
						var xrr, xii, xri, xir int
						for kt := 0; kt < tilesK; kt++ {
							aBlock := a[(mt*tilesK+kt)*tileWordsA:]
							bBlock := b[(nt*tilesK+kt)*tileWordsB:]
							ar := aBlock[r*wk : (r+1)*wk]
							ai := aBlock[(tm+r)*wk : (tm+r+1)*wk]
							br := bBlock[col*wk : (col+1)*wk]
							bi := bBlock[(tn+col)*wk : (tn+col+1)*wk]
							for w := 0; w < wk; w++ {
								xrr += bits.OnesCount32(ar[w] ^ br[w])
								xii += bits.OnesCount32(ai[w] ^ bi[w])
								xri += bits.OnesCount32(ar[w] ^ bi[w])
								xir += bits.OnesCount32(ai[w] ^ br[w])
							}
						}
						row := mt*tm + r
						dst := row*g.n + nt*tn + col
						c[dst] = 2 * int32(xii-xrr)
						c[plane+dst] = twoK - 2*int32(xri+xir)
					}
				}
			}
		}
	})
}
