package device

import "fmt"

// Memset fills the whole buffer with value.
func (s *Stream) Memset(dst *Buffer, value byte) error {
	if err := checkBuffer(dst); err != nil {
		return err
	}
	return s.submit(task{op: "memset", fn: func() error {
		b := dst.Bytes()
		if value == 0 {
			clear(b)
			return nil
		}
		for i := range b {
			b[i] = value
		}
		return nil
	}})
}

// CopyH2D copies src into dst starting at byte offset off.
func (s *Stream) CopyH2D(dst *Buffer, off int64, src []byte) error {
	n := int64(len(src))
	if err := checkRange(dst, off, n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return s.submit(task{op: "memcpy h2d", fn: func() error {
		copy(dst.Bytes()[off:off+n], src)
		return nil
	}})
}

// CopyD2H copies len(dst) bytes from src at byte offset off.
func (s *Stream) CopyD2H(dst []byte, src *Buffer, off int64) error {
	n := int64(len(dst))
	if err := checkRange(src, off, n); err != nil {
		return err
	}
	if n == 0 {
		return nil
	}
	return s.submit(task{op: "memcpy d2h", fn: func() error {
		copy(dst, src.Bytes()[off:off+n])
		return nil
	}})
}

// CopyH2D2D copies height rows of width bytes from a host matrix with row
// pitch spitch into dst at dstOff with row pitch dpitch.
func (s *Stream) CopyH2D2D(dst *Buffer, dstOff, dpitch int64, src []byte, spitch, width, height int64) error {
	if err := checkPitched(width, height, dpitch, spitch); err != nil {
		return err
	}
	if height == 0 || width == 0 {
		return nil
	}
	if err := checkRange(dst, dstOff, (height-1)*dpitch+width); err != nil {
		return err
	}
	if need := (height-1)*spitch + width; int64(len(src)) < need {
		return fmt.Errorf("%w: host source holds %d bytes, copy needs %d", ErrInvalidValue, len(src), need)
	}
	return s.submit(task{op: "memcpy2d h2d", fn: func() error {
		d := dst.Bytes()
		for row := int64(0); row < height; row++ {
			do := dstOff + row*dpitch
			so := row * spitch
			copy(d[do:do+width], src[so:so+width])
		}
		return nil
	}})
}

// CopyD2H2D is the device-to-host counterpart of CopyH2D2D.
func (s *Stream) CopyD2H2D(dst []byte, dpitch int64, src *Buffer, srcOff, spitch, width, height int64) error {
	if err := checkPitched(width, height, dpitch, spitch); err != nil {
		return err
	}
	if height == 0 || width == 0 {
		return nil
	}
	if err := checkRange(src, srcOff, (height-1)*spitch+width); err != nil {
		return err
	}
	if need := (height-1)*dpitch + width; int64(len(dst)) < need {
		return fmt.Errorf("%w: host target holds %d bytes, copy needs %d", ErrInvalidValue, len(dst), need)
	}
	return s.submit(task{op: "memcpy2d d2h", fn: func() error {
		b := src.Bytes()
		for row := int64(0); row < height; row++ {
			so := srcOff + row*spitch
			do := row * dpitch
			copy(dst[do:do+width], b[so:so+width])
		}
		return nil
	}})
}

func checkBuffer(b *Buffer) error {
	if b == nil {
		return fmt.Errorf("%w: nil device buffer", ErrInvalidValue)
	}
	if !b.live() {
		return ErrBufferFreed
	}
	return nil
}

func checkRange(b *Buffer, off, n int64) error {
	if err := checkBuffer(b); err != nil {
		return err
	}
	if off < 0 || n < 0 || off+n > b.size {
		return fmt.Errorf("%w: range [%d, %d) outside buffer of %d bytes", ErrInvalidValue, off, off+n, b.size)
	}
	return nil
}

func checkPitched(width, height, dpitch, spitch int64) error {
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: negative copy extent %dx%d", ErrInvalidValue, width, height)
	}
	if width > dpitch || width > spitch {
		return fmt.Errorf("%w: width %d exceeds pitch (dst %d, src %d)", ErrInvalidValue, width, dpitch, spitch)
	}
	return nil
}
