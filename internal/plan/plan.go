// Package plan computes the padded problem geometry of a beamformer and the
// byte size of every buffer derived from it.
package plan

import (
	"errors"
	"fmt"
	"math"

	"github.com/samcharles93/tcbf/internal/ccg"
)

const (
	// MaxDim bounds every logical dimension.
	MaxDim = 1 << 24

	BitsPerSample = 1
	BatchSize     = 1

	rawComponentBytes = 2 // int16
	outComponentBytes = 4 // int32
)

var ErrInvalidShape = errors.New("plan: invalid shape")

// Shape is a (pixels, frames, samples) problem size.
type Shape struct {
	Pixels  int `json:"pixels" yaml:"pixels"`
	Frames  int `json:"frames" yaml:"frames"`
	Samples int `json:"samples" yaml:"samples"`
}

func (s Shape) String() string {
	return fmt.Sprintf("pixels=%d frames=%d samples=%d", s.Pixels, s.Frames, s.Samples)
}

// Plan holds the logical and padded shapes and the derived buffer sizes.
type Plan struct {
	Logical Shape    `json:"logical"`
	Padded  Shape    `json:"padded"`
	Tile    ccg.Tile `json:"tile"`

	// Host buffers at logical size.
	BytesRF int64 `json:"bytes_rf"`
	BytesBF int64 `json:"bytes_bf"`

	// Device buffers at padded size.
	BytesRFDevice       int64 `json:"bytes_rf_device"`
	BytesRFComplexFirst int64 `json:"bytes_rf_complex_first"`
	BytesRFPacked       int64 `json:"bytes_rf_packed"`
	BytesRFTransposed   int64 `json:"bytes_rf_transposed"`
	BytesAPacked        int64 `json:"bytes_a_packed"`
	BytesBFDevice       int64 `json:"bytes_bf_device"`
}

// New plans a problem for the given tile geometry.
func New(shape Shape, tile ccg.Tile) (Plan, error) {
	if err := tile.Validate(); err != nil {
		return Plan{}, err
	}
	for _, d := range []struct {
		name string
		v    int
	}{
		{"pixels", shape.Pixels},
		{"frames", shape.Frames},
		{"samples", shape.Samples},
	} {
		if d.v <= 0 {
			return Plan{}, fmt.Errorf("%w: %s must be > 0, got %d", ErrInvalidShape, d.name, d.v)
		}
		if d.v > MaxDim {
			return Plan{}, fmt.Errorf("%w: %s %d exceeds maximum %d", ErrInvalidShape, d.name, d.v, MaxDim)
		}
	}

	padded := Shape{
		Pixels:  RoundUp(shape.Pixels, tile.M),
		Frames:  RoundUp(shape.Frames, tile.N),
		Samples: RoundUp(shape.Samples, tile.K),
	}

	p := Plan{Logical: shape, Padded: padded, Tile: tile}
	var err error
	sizes := []struct {
		dst  *int64
		dims []int64
	}{
		{&p.BytesRF, []int64{int64(shape.Frames), int64(shape.Samples), 2, rawComponentBytes}},
		{&p.BytesBF, []int64{2, int64(shape.Pixels), int64(shape.Frames), outComponentBytes}},
		{&p.BytesRFDevice, []int64{int64(padded.Frames), int64(padded.Samples), 2, rawComponentBytes}},
		{&p.BytesRFComplexFirst, []int64{2, int64(padded.Frames), int64(padded.Samples), rawComponentBytes}},
		{&p.BytesRFPacked, []int64{BatchSize, 2, int64(padded.Frames), int64(padded.Samples) * BitsPerSample / 8}},
		{&p.BytesRFTransposed, []int64{BatchSize, 2, int64(padded.Frames), int64(padded.Samples) * BitsPerSample / 8}},
		{&p.BytesAPacked, []int64{2, int64(padded.Pixels), int64(padded.Samples) * BitsPerSample / 8}},
		{&p.BytesBFDevice, []int64{BatchSize, 2, int64(padded.Pixels), int64(padded.Frames), outComponentBytes}},
	}
	for _, s := range sizes {
		if *s.dst, err = product(s.dims...); err != nil {
			return Plan{}, fmt.Errorf("%w: %v", ErrInvalidShape, err)
		}
	}
	return p, nil
}

// RoundUp returns the smallest multiple of m that is >= v.
func RoundUp(v, m int) int {
	if m <= 0 {
		return v
	}
	return (v + m - 1) / m * m
}

func product(dims ...int64) (int64, error) {
	n := int64(1)
	for _, d := range dims {
		if d <= 0 {
			return 0, fmt.Errorf("invalid dim %d", d)
		}
		if n > math.MaxInt64/d {
			return 0, errors.New("buffer size overflows int64")
		}
		n *= d
	}
	return n, nil
}

// RFElements is the number of int16 values in a host RF batch.
func (p Plan) RFElements() int {
	return p.Logical.Frames * p.Logical.Samples * 2
}

// BFElements is the number of int32 values in a host BF buffer.
func (p Plan) BFElements() int {
	return 2 * p.Logical.Pixels * p.Logical.Frames
}

// BinaryOps is the number of 1-bit multiply-accumulates one batch performs
// over the logical problem (four real products per complex product).
func (p Plan) BinaryOps() int64 {
	return 4 * int64(p.Logical.Pixels) * int64(p.Logical.Frames) * int64(p.Logical.Samples)
}
