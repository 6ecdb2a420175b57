package beamformer

import (
	"errors"
	"fmt"

	"github.com/samcharles93/tcbf/internal/device"
	"github.com/samcharles93/tcbf/internal/plan"
)

type role int

const (
	roleA role = iota
	roleRF
	roleRFComplexFirst
	roleRFPacked
	roleRFTransposed
	roleBF
	numRoles
)

func (r role) String() string {
	switch r {
	case roleA:
		return "A"
	case roleRF:
		return "RF"
	case roleRFComplexFirst:
		return "RF_complex_first"
	case roleRFPacked:
		return "RF_packed"
	case roleRFTransposed:
		return "RF_transposed"
	case roleBF:
		return "BF"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

func (r role) size(p plan.Plan) int64 {
	switch r {
	case roleA:
		return p.BytesAPacked
	case roleRF:
		return p.BytesRFDevice
	case roleRFComplexFirst:
		return p.BytesRFComplexFirst
	case roleRFPacked:
		return p.BytesRFPacked
	case roleRFTransposed:
		return p.BytesRFTransposed
	case roleBF:
		return p.BytesBFDevice
	default:
		return 0
	}
}

// arena owns one device buffer per role for the lifetime of a Beamformer.
type arena [numRoles]*device.Buffer

// allocArena allocates every role or nothing.
func allocArena(dev *device.Device, p plan.Plan) (*arena, error) {
	var a arena
	for r := range numRoles {
		buf, err := dev.Alloc(r.size(p))
		if err != nil {
			if rerr := a.release(); rerr != nil {
				err = errors.Join(err, rerr)
			}
			return nil, fmt.Errorf("allocate %s (%d bytes): %w", r, r.size(p), err)
		}
		a[r] = buf
	}
	return &a, nil
}

func (a *arena) get(r role) *device.Buffer {
	return a[r]
}

func (a *arena) bytes() int64 {
	var n int64
	for _, b := range a {
		if b != nil {
			n += b.Size()
		}
	}
	return n
}

func (a *arena) release() error {
	var errs []error
	for r, b := range a {
		if b == nil {
			continue
		}
		if err := b.Free(); err != nil {
			errs = append(errs, fmt.Errorf("free %s: %w", role(r), err))
		}
		a[r] = nil
	}
	return errors.Join(errs...)
}
