package ccg

import (
	"fmt"

	"github.com/samcharles93/tcbf/internal/device"
)

// DType is the element type of an unpacked operand.
type DType int

const (
	Int16 DType = iota + 1
	Float32
)

func (d DType) String() string {
	switch d {
	case Int16:
		return "int16"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// Size returns the byte width of one element.
func (d DType) Size() int {
	switch d {
	case Int16:
		return 2
	case Float32:
		return 4
	default:
		return 0
	}
}

// The capabilities below are enqueued on a stream; Run returns once the
// work is submitted, not when it has executed.

// ComplexFirst reorders [rows][cols][re,im] into planar [re|im][rows][cols].
type ComplexFirst interface {
	Run(s *device.Stream, in, out *device.Buffer) error
}

// Packing quantizes components to one sign bit each.
type Packing interface {
	Run(s *device.Stream, in, out *device.Buffer) error
}

// Transpose rearranges packed planar rows into the tiled operand layout.
type Transpose interface {
	Run(s *device.Stream, in, out *device.Buffer) error
}

// GEMM multiplies two tiled binary operands into a planar int32 result.
type GEMM interface {
	Run(s *device.Stream, a, b, c *device.Buffer) error
}
