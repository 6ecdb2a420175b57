// Package rawio reads and writes the headerless binary files exchanged with
// the beamformer: raw voltages, packed weight matrices and beam outputs.
// All multi-byte values are little-endian.
package rawio

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/sys/unix"
)

var ErrSizeMismatch = errors.New("rawio: file size mismatch")

// Mapping is a read-only view of a whole file.
type Mapping struct {
	data    []byte
	mmapped bool
}

// Map maps a file read-only. If mmap is unavailable it falls back to
// reading the file into memory. The mapping must be closed.
func Map(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size64 := stat.Size()
	if size64 < 0 || size64 > int64(int(^uint(0)>>1)) {
		return nil, fmt.Errorf("rawio: %s: unsupported size %d", path, size64)
	}
	size := int(size64)
	if size == 0 {
		return &Mapping{}, nil
	}

	data, err := unix.Mmap(int(f.Fd()), 0, size, unix.PROT_READ, unix.MAP_SHARED)
	if err == nil {
		return &Mapping{data: data, mmapped: true}, nil
	}

	data = make([]byte, size)
	if _, err := io.ReadFull(io.NewSectionReader(f, 0, size64), data); err != nil {
		return nil, err
	}
	return &Mapping{data: data}, nil
}

func (m *Mapping) Bytes() []byte {
	if m == nil {
		return nil
	}
	return m.data
}

func (m *Mapping) Size() int64 {
	if m == nil {
		return 0
	}
	return int64(len(m.data))
}

func (m *Mapping) Close() error {
	if m == nil || m.data == nil {
		return nil
	}
	var err error
	if m.mmapped {
		err = unix.Munmap(m.data)
	}
	m.data = nil
	m.mmapped = false
	return err
}
