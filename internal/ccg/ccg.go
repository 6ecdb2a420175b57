// Package ccg describes the binary-precision GEMM engine consumed by the
// beamformer: its precisions, tuning variants, tile geometry and the operand
// layouts every compute backend agrees on.
package ccg

import (
	"errors"
	"fmt"
	"strings"
)

// Precision is the operand precision of the GEMM engine.
type Precision int

const (
	Int1 Precision = iota + 1
)

func (p Precision) String() string {
	switch p {
	case Int1:
		return "int1"
	default:
		return fmt.Sprintf("precision(%d)", int(p))
	}
}

// Bits returns the width of one real component in packed form.
func (p Precision) Bits() int {
	switch p {
	case Int1:
		return 1
	default:
		return 0
	}
}

// Variant selects a tile geometry tuned for a given problem regime.
type Variant int

const (
	Basic Variant = iota + 1
	Opt
)

func (v Variant) String() string {
	switch v {
	case Basic:
		return "basic"
	case Opt:
		return "opt"
	default:
		return fmt.Sprintf("variant(%d)", int(v))
	}
}

var ErrUnsupported = errors.New("ccg: unsupported precision/variant")

// ParseVariant accepts the names printed by Variant.String.
func ParseVariant(name string) (Variant, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "opt":
		return Opt, nil
	case "basic":
		return Basic, nil
	default:
		return 0, fmt.Errorf("unknown gemm variant %q (expected basic or opt)", name)
	}
}

// WordBits is the number of packed components per storage word.
const WordBits = 32

// Tile is the per-instruction block of the GEMM engine. M runs over pixels,
// N over frames and K over samples.
type Tile struct {
	M int `json:"m"`
	N int `json:"n"`
	K int `json:"k"`
}

func (t Tile) String() string {
	return fmt.Sprintf("%dx%dx%d", t.M, t.N, t.K)
}

// Validate rejects geometries no backend can execute.
func (t Tile) Validate() error {
	if t.M <= 0 || t.N <= 0 || t.K <= 0 {
		return fmt.Errorf("ccg: degenerate tile %s", t)
	}
	if t.K%WordBits != 0 {
		return fmt.Errorf("ccg: tile K %d is not a multiple of %d", t.K, WordBits)
	}
	return nil
}

var tiles = map[Precision]map[Variant]Tile{
	Int1: {
		Basic: {M: 16, N: 8, K: 256},
		Opt:   {M: 64, N: 32, K: 256},
	},
}

// Dimensions returns the tile geometry for a precision and variant.
func Dimensions(p Precision, v Variant) (Tile, error) {
	byVariant, ok := tiles[p]
	if !ok {
		return Tile{}, fmt.Errorf("%w: %s", ErrUnsupported, p)
	}
	t, ok := byVariant[v]
	if !ok {
		return Tile{}, fmt.Errorf("%w: %s/%s", ErrUnsupported, p, v)
	}
	return t, nil
}
