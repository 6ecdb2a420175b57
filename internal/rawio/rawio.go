package rawio

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"math"
	"os"
)

// ReadRF fills dst with int16 samples from path. The file must hold exactly
// len(dst) values.
func ReadRF(path string, dst []int16) error {
	m, err := Map(path)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()

	data := m.Bytes()
	if want := int64(len(dst)) * 2; int64(len(data)) != want {
		return fmt.Errorf("%w: %s holds %d bytes, expected %d", ErrSizeMismatch, path, len(data), want)
	}
	for i := range dst {
		dst[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
	}
	return nil
}

// ReadFloat32 reads exactly n float32 values from path.
func ReadFloat32(path string, n int) ([]float32, error) {
	m, err := Map(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = m.Close() }()

	data := m.Bytes()
	if want := int64(n) * 4; int64(len(data)) != want {
		return nil, fmt.Errorf("%w: %s holds %d bytes, expected %d", ErrSizeMismatch, path, len(data), want)
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

// ReadBF reads a beam output file of int32 values.
func ReadBF(path string) ([]int32, error) {
	m, err := Map(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = m.Close() }()

	data := m.Bytes()
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("%w: %s holds %d bytes, not a multiple of 4", ErrSizeMismatch, path, len(data))
	}
	out := make([]int32, len(data)/4)
	for i := range out {
		out[i] = int32(binary.LittleEndian.Uint32(data[i*4:]))
	}
	return out, nil
}

func WriteRF(path string, src []int16) error {
	return writeFile(path, func(w *bufio.Writer) error {
		return binary.Write(w, binary.LittleEndian, src)
	})
}

func WriteBF(path string, src []int32) error {
	return writeFile(path, func(w *bufio.Writer) error {
		return binary.Write(w, binary.LittleEndian, src)
	})
}

func WriteFloat32(path string, src []float32) error {
	return writeFile(path, func(w *bufio.Writer) error {
		return binary.Write(w, binary.LittleEndian, src)
	})
}

// WriteBytes writes an already encoded payload such as a packed weight matrix.
func WriteBytes(path string, data []byte) error {
	return writeFile(path, func(w *bufio.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

func writeFile(path string, fn func(w *bufio.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	if err := fn(w); err != nil {
		_ = f.Close()
		return err
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
