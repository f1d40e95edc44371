// Package arena implements a two-ended bump allocator over a single
// caller-supplied byte buffer.
//
// The back region grows forward from the start of the buffer and holds
// long-lived records. The front region grows backward from the end and holds
// scratch space that is reclaimed in one step by ResetFront. The two cursors
// never cross; an allocation that would make them cross fails with
// ErrOutOfMemory and leaves the arena unchanged.
//
// Allocations are addressed by Ref, a byte offset into the buffer, so a
// byte-for-byte copy of the buffer (see Clone) keeps every reference valid.
//
// An Arena is not safe for concurrent use.
package arena

import (
	"errors"
	"fmt"
	"math"
	"unsafe"
)

// Ref is the byte offset of an allocation inside the arena buffer.
type Ref int32

// Nil is the reference that points nowhere.
const Nil Ref = -1

// maxAlign is the largest alignment any Go value requires on supported targets.
const maxAlign = 8

var (
	// ErrOutOfMemory is returned when an allocation would make the back and
	// front cursors cross.
	ErrOutOfMemory = errors.New("arena: out of memory")
	// ErrPointerType is returned when a type holding Go pointers is placed in
	// the arena. The buffer is opaque to the garbage collector.
	ErrPointerType = errors.New("arena: type contains Go pointers")
)

// Stats reports the current cursor positions.
type Stats struct {
	Capacity  int // total buffer size in bytes
	BackUsed  int // bytes consumed by the back region, including padding
	FrontUsed int // bytes consumed by the front region, including padding
	Free      int // bytes between the two cursors
}

// Arena is a two-ended bump allocator.
type Arena struct {
	buf   []byte
	back  int // first free byte after the back region
	front int // first byte of the front region
}

// New creates an Arena over buf. The arena takes ownership of buf.
// Buffers larger than math.MaxInt32 bytes are truncated so that every
// offset fits a Ref.
func New(buf []byte) *Arena {
	if len(buf) > math.MaxInt32 {
		buf = buf[:math.MaxInt32]
	}
	return &Arena{buf: buf, front: len(buf)}
}

func (a *Arena) base() uintptr {
	if len(a.buf) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(unsafe.SliceData(a.buf)))
}

func normAlign(align int) uintptr {
	if align <= 1 {
		return 1
	}
	if align&(align-1) != 0 {
		panic(fmt.Sprintf("arena: alignment %d is not a power of two", align))
	}
	return uintptr(align)
}

// AllocBack reserves size zeroed bytes at the back cursor, aligned to align,
// and returns the offset of the reservation.
func (a *Arena) AllocBack(size, align int) (Ref, error) {
	if size < 0 {
		return Nil, fmt.Errorf("arena: negative size %d", size)
	}
	al := normAlign(align)
	base := a.base()
	start := int((base+uintptr(a.back)+al-1)&^(al-1) - base)
	end := start + size
	if end > a.front {
		return Nil, fmt.Errorf("%w: back allocation of %d bytes with %d free", ErrOutOfMemory, size, a.front-a.back)
	}
	clear(a.buf[start:end])
	a.back = end
	return Ref(start), nil
}

// AllocFront reserves size zeroed bytes below the front cursor, aligned to
// align, and returns the offset of the reservation, which is also the new
// front cursor.
func (a *Arena) AllocFront(size, align int) (Ref, error) {
	if size < 0 {
		return Nil, fmt.Errorf("arena: negative size %d", size)
	}
	al := normAlign(align)
	if a.front-size < a.back {
		return Nil, fmt.Errorf("%w: front allocation of %d bytes with %d free", ErrOutOfMemory, size, a.front-a.back)
	}
	base := a.base()
	p := (base + uintptr(a.front-size)) &^ (al - 1)
	if p < base+uintptr(a.back) {
		return Nil, fmt.Errorf("%w: front allocation of %d bytes with %d free", ErrOutOfMemory, size, a.front-a.back)
	}
	start := int(p - base)
	clear(a.buf[start : start+size])
	a.front = start
	return Ref(start), nil
}

// ResetFront releases every front allocation at once. Slices obtained from
// the front region must not be used afterwards.
func (a *Arena) ResetFront() {
	a.front = len(a.buf)
}

// Stats returns the current cursor positions.
func (a *Arena) Stats() Stats {
	return Stats{
		Capacity:  len(a.buf),
		BackUsed:  a.back,
		FrontUsed: len(a.buf) - a.front,
		Free:      a.front - a.back,
	}
}

// Clone returns an independent copy of the arena. The copy's buffer has the
// same alignment as the original modulo maxAlign, so typed references stay
// aligned.
func (a *Arena) Clone() *Arena {
	if len(a.buf) == 0 {
		return &Arena{}
	}
	raw := make([]byte, len(a.buf)+maxAlign)
	rawBase := uintptr(unsafe.Pointer(unsafe.SliceData(raw)))
	pad := int((a.base() - rawBase) & (maxAlign - 1))
	buf := raw[pad : pad+len(a.buf)]
	copy(buf, a.buf)
	return &Arena{buf: buf, back: a.back, front: a.front}
}
