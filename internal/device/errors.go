package device

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDevice   = errors.New("device: invalid device id")
	ErrOutOfMemory     = errors.New("device: out of memory")
	ErrInvalidValue    = errors.New("device: invalid value")
	ErrBufferFreed     = errors.New("device: buffer already freed")
	ErrStreamDestroyed = errors.New("device: stream destroyed")
)

func executionError(op string, rec any) error {
	if recErr, ok := rec.(error); ok {
		return fmt.Errorf("device %s failed: %w", op, recErr)
	}
	return fmt.Errorf("device %s failed: %v", op, rec)
}
