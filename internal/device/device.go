// Package device is the execution context the beamformer drives: a device
// with accounted memory and in-order asynchronous streams.
//
// This implementation executes on the host CPU. Device buffers are plain Go
// memory that is only reachable through stream operations and kernels, which
// keeps the host/device ownership split of a discrete accelerator.
package device

import (
	"fmt"
	"runtime"
	"sync"
)

// DefaultMemoryLimit bounds device allocations when no limit is given.
const DefaultMemoryLimit int64 = 8 << 30

type Device struct {
	ID   int
	Name string

	mu    sync.Mutex
	limit int64
	inUse int64
	peak  int64
	live  int
}

type Option func(*Device)

// WithMemoryLimit caps the total bytes that may be allocated at once.
func WithMemoryLimit(bytes int64) Option {
	return func(d *Device) {
		if bytes > 0 {
			d.limit = bytes
		}
	}
}

// Count reports the number of devices this runtime exposes.
func Count() int {
	return 1
}

// Open returns the device with the given id.
func Open(id int, opts ...Option) (*Device, error) {
	if id < 0 || id >= Count() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDevice, id)
	}
	d := &Device{
		ID:    id,
		Name:  fmt.Sprintf("cpu%d (%d cores)", id, runtime.NumCPU()),
		limit: DefaultMemoryLimit,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d, nil
}

// MemStats is a snapshot of device memory accounting.
type MemStats struct {
	Limit   int64
	InUse   int64
	Peak    int64
	Buffers int
}

func (d *Device) MemStats() MemStats {
	d.mu.Lock()
	defer d.mu.Unlock()
	return MemStats{Limit: d.limit, InUse: d.inUse, Peak: d.peak, Buffers: d.live}
}

// Alloc reserves a device buffer of the given size. Contents are zeroed.
func (d *Device) Alloc(bytes int64) (*Buffer, error) {
	if bytes <= 0 {
		return nil, fmt.Errorf("%w: device alloc size must be > 0", ErrInvalidValue)
	}
	d.mu.Lock()
	if d.inUse+bytes > d.limit {
		d.mu.Unlock()
		return nil, fmt.Errorf("%w: requested %d bytes, %d of %d in use", ErrOutOfMemory, bytes, d.inUse, d.limit)
	}
	d.inUse += bytes
	if d.inUse > d.peak {
		d.peak = d.inUse
	}
	d.live++
	d.mu.Unlock()

	// Back the buffer with 64-bit words so typed views are aligned.
	words := make([]uint64, (bytes+7)/8)
	return &Buffer{dev: d, words: words, size: bytes}, nil
}

func (d *Device) release(bytes int64) {
	d.mu.Lock()
	d.inUse -= bytes
	d.live--
	d.mu.Unlock()
}
