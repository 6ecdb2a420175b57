package backend

import (
	"errors"
	"fmt"
	"strings"

	"github.com/samcharles93/tcbf/internal/backend/cpu"
	"github.com/samcharles93/tcbf/internal/ccg"
)

const (
	CPU  = "cpu"
	CUDA = "cuda"
	Auto = "auto"
)

// Backend provides the compute capabilities the beamformer pipeline is
// built from.
type Backend interface {
	Name() string
	Dimensions(p ccg.Precision, v ccg.Variant) (ccg.Tile, error)
	NewComplexFirst(rows, cols int, dtype ccg.DType) (ccg.ComplexFirst, error)
	NewPacking(n int, dtype ccg.DType) (ccg.Packing, error)
	NewTranspose(rows, cols, tileRows, tileK int) (ccg.Transpose, error)
	NewGEMM(m, n, k, logicalK int, tile ccg.Tile) (ccg.GEMM, error)
}

var errCUDAUnavailable = errors.New("cuda backend is not available in this build")

func Normalize(name string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(name))
	if backend == "" {
		return Auto, nil
	}
	switch backend {
	case CPU, CUDA, Auto:
		return backend, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected auto, cpu, or cuda)", backend)
	}
}

// New resolves a backend by name. Auto picks the best available backend.
func New(name string) (Backend, error) {
	resolved, err := Normalize(name)
	if err != nil {
		return nil, err
	}
	switch resolved {
	case CUDA:
		return nil, fmt.Errorf("%w (available: %s)", errCUDAUnavailable, Available())
	default:
		return cpu.New(), nil
	}
}
