package device

import (
	"sync"
	"unsafe"
)

// Buffer is device-resident memory owned by whoever allocated it.
type Buffer struct {
	dev   *Device
	mu    sync.Mutex
	words []uint64
	size  int64
	freed bool
}

func (b *Buffer) Size() int64 {
	return b.size
}

// Free returns the buffer to its device. Freeing twice reports ErrBufferFreed.
func (b *Buffer) Free() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.freed {
		return ErrBufferFreed
	}
	b.freed = true
	b.words = nil
	b.dev.release(b.size)
	return nil
}

func (b *Buffer) live() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.freed
}

// Bytes is the raw device view. Only kernels running on a stream may use it.
func (b *Buffer) Bytes() []byte {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.words[0])), b.size)
}

// Int16s views the buffer as int16 values.
func (b *Buffer) Int16s() []int16 {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*int16)(unsafe.Pointer(&b.words[0])), b.size/2)
}

// Int32s views the buffer as int32 values.
func (b *Buffer) Int32s() []int32 {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&b.words[0])), b.size/4)
}

// Uint32s views the buffer as packed 32-bit words.
func (b *Buffer) Uint32s() []uint32 {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&b.words[0])), b.size/4)
}

// Float32s views the buffer as float32 values.
func (b *Buffer) Float32s() []float32 {
	if len(b.words) == 0 {
		return nil
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&b.words[0])), b.size/4)
}
