// Package cpu is the reference compute backend. It executes the packing,
// transpose and binary GEMM kernels on host cores, enqueued on a device
// stream like any accelerator backend.
package cpu

import (
	"fmt"

	"github.com/samcharles93/tcbf/internal/ccg"
)

type Backend struct{}

func New() *Backend {
	return &Backend{}
}

func (b *Backend) Name() string {
	return "cpu"
}

func (b *Backend) Dimensions(p ccg.Precision, v ccg.Variant) (ccg.Tile, error) {
	return ccg.Dimensions(p, v)
}

func (b *Backend) NewComplexFirst(rows, cols int, dtype ccg.DType) (ccg.ComplexFirst, error) {
	if rows <= 0 || cols <= 0 {
		return nil, fmt.Errorf("complex-first: invalid extent %dx%d", rows, cols)
	}
	if dtype.Size() == 0 {
		return nil, fmt.Errorf("complex-first: unsupported dtype %s", dtype)
	}
	return &complexFirst{rows: rows, cols: cols, dtype: dtype}, nil
}

func (b *Backend) NewPacking(n int, dtype ccg.DType) (ccg.Packing, error) {
	if n <= 0 || n%ccg.WordBits != 0 {
		return nil, fmt.Errorf("packing: component count %d is not a positive multiple of %d", n, ccg.WordBits)
	}
	if dtype.Size() == 0 {
		return nil, fmt.Errorf("packing: unsupported dtype %s", dtype)
	}
	return &packing{n: n, dtype: dtype}, nil
}

func (b *Backend) NewTranspose(rows, cols, tileRows, tileK int) (ccg.Transpose, error) {
	if tileRows <= 0 || tileK <= 0 || tileK%ccg.WordBits != 0 {
		return nil, fmt.Errorf("transpose: invalid tile %dx%d", tileRows, tileK)
	}
	if rows <= 0 || cols <= 0 || rows%tileRows != 0 || cols%tileK != 0 {
		return nil, fmt.Errorf("transpose: extent %dx%d is not tile aligned (%dx%d)", rows, cols, tileRows, tileK)
	}
	return &transpose{rows: rows, cols: cols, tileRows: tileRows, tileK: tileK}, nil
}

func (b *Backend) NewGEMM(m, n, k, logicalK int, tile ccg.Tile) (ccg.GEMM, error) {
	if err := tile.Validate(); err != nil {
		return nil, err
	}
	if m <= 0 || n <= 0 || k <= 0 || m%tile.M != 0 || n%tile.N != 0 || k%tile.K != 0 {
		return nil, fmt.Errorf("gemm: problem %dx%dx%d is not aligned to tile %s", m, n, k, tile)
	}
	if logicalK <= 0 || logicalK > k {
		return nil, fmt.Errorf("gemm: logical K %d outside (0, %d]", logicalK, k)
	}
	return &gemm{m: m, n: n, k: k, logicalK: logicalK, tile: tile}, nil
}
