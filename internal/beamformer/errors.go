package beamformer

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is. Every error returned by a Beamformer wraps
// exactly one of them.
var (
	ErrConfig   = errors.New("beamformer: invalid configuration")
	ErrNotReady = errors.New("beamformer: not ready")
	ErrSize     = errors.New("beamformer: size mismatch")
	ErrDevice   = errors.New("beamformer: device failure")
)

// Kind classifies a beamformer error.
type Kind int

const (
	KindConfig Kind = iota + 1
	KindNotReady
	KindSize
	KindDevice
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotReady:
		return "not-ready"
	case KindSize:
		return "size"
	case KindDevice:
		return "device"
	default:
		return "unknown"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindConfig:
		return ErrConfig
	case KindNotReady:
		return ErrNotReady
	case KindSize:
		return ErrSize
	default:
		return ErrDevice
	}
}

// Error carries the failing operation and the underlying cause.
type Error struct {
	Kind    Kind
	Op      string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("beamformer %s error in %s: %s: %v", e.Kind, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("beamformer %s error in %s: %s", e.Kind, e.Op, e.Message)
}

// Unwrap exposes both the kind sentinel and the cause.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind.sentinel()}
	}
	return []error{e.Kind.sentinel(), e.Err}
}

func newError(kind Kind, op, message string, err error) error {
	return &Error{Kind: kind, Op: op, Message: message, Err: err}
}

// KindOf returns the kind of a beamformer error, or 0 if err is not one.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
