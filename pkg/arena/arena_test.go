package arena

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type record struct {
	Value float64
	Next  Ref
	Kind  uint8
}

type withPointer struct {
	Name string
}

func TestArena_AllocBack(t *testing.T) {
	a := New(make([]byte, 64))

	r1, err := a.AllocBack(10, 1)
	require.NoError(t, err)
	assert.Equal(t, Ref(0), r1)

	r2, err := a.AllocBack(8, 8)
	require.NoError(t, err)
	assert.Zero(t, uintptr(unsafe.Pointer(&a.buf[r2]))%8, "back allocation must be aligned")
	assert.GreaterOrEqual(t, int(r2), 10)

	st := a.Stats()
	assert.Equal(t, 64, st.Capacity)
	assert.Equal(t, int(r2)+8, st.BackUsed)
	assert.Zero(t, st.FrontUsed)
}

func TestArena_AllocFront(t *testing.T) {
	a := New(make([]byte, 64))

	r1, err := a.AllocFront(16, 8)
	require.NoError(t, err)
	assert.LessOrEqual(t, int(r1), 48)
	assert.Zero(t, uintptr(unsafe.Pointer(&a.buf[r1]))%8)

	r2, err := a.AllocFront(4, 4)
	require.NoError(t, err)
	assert.Less(t, int(r2), int(r1), "front region grows toward the start")
}

func TestArena_CursorsNeverCross(t *testing.T) {
	a := New(make([]byte, 32))

	_, err := a.AllocBack(20, 1)
	require.NoError(t, err)

	before := a.Stats()
	_, err = a.AllocFront(16, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOutOfMemory))
	assert.Equal(t, before, a.Stats(), "failed allocation must not move cursors")

	_, err = a.AllocFront(12, 1)
	require.NoError(t, err)

	_, err = a.AllocBack(1, 1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestArena_ResetFront(t *testing.T) {
	a := New(make([]byte, 128))
	_, err := a.AllocBack(24, 8)
	require.NoError(t, err)

	for range 10 {
		_, err := a.AllocFront(64, 8)
		require.NoError(t, err)
		assert.Equal(t, 64, a.Stats().FrontUsed)
		a.ResetFront()
		assert.Zero(t, a.Stats().FrontUsed)
	}
	assert.Equal(t, 24, a.Stats().BackUsed, "reset must not touch the back region")
}

func TestArena_ZeroesAllocations(t *testing.T) {
	buf := make([]byte, 32)
	for i := range buf {
		buf[i] = 0xff
	}
	a := New(buf)

	r, err := a.AllocBack(8, 1)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), a.buf[r:r+8])

	r, err = a.AllocFront(8, 1)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8), a.buf[r:r+8])
}

func TestPlaceNAndAt(t *testing.T) {
	a := New(make([]byte, 256))

	ref, recs, err := PlaceN[record](a, 2)
	require.NoError(t, err)
	require.Len(t, recs, 2)
	recs[0].Value = 1.5
	recs[1].Next = ref

	second := ref + Ref(unsafe.Sizeof(record{}))
	assert.Equal(t, 1.5, At[record](a, ref).Value)
	assert.Equal(t, ref, At[record](a, second).Next)

	assert.Panics(t, func() { At[record](a, 240) })
	assert.Panics(t, func() { At[record](a, Nil) })
}

func TestPlaceN_OutOfMemoryIsAtomic(t *testing.T) {
	size := SizeOf[record](1)
	a := New(make([]byte, size*3))

	_, _, err := PlaceN[record](a, 2)
	require.NoError(t, err)
	used := a.Stats().BackUsed

	_, _, err = PlaceN[record](a, 2)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.Equal(t, used, a.Stats().BackUsed)
}

func TestScratch(t *testing.T) {
	a := New(make([]byte, 256))

	v, err := Scratch[float64](a, 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0, 0}, v)

	empty, err := Scratch[float64](a, 0)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = Scratch[float64](a, 100)
	assert.ErrorIs(t, err, ErrOutOfMemory)
}

func TestCheckType(t *testing.T) {
	assert.NoError(t, CheckType[record]())
	assert.NoError(t, CheckType[[4]complex128]())
	assert.ErrorIs(t, CheckType[withPointer](), ErrPointerType)
	assert.ErrorIs(t, CheckType[*record](), ErrPointerType)
	assert.ErrorIs(t, CheckType[[]float64](), ErrPointerType)

	a := New(make([]byte, 64))
	_, _, err := PlaceN[withPointer](a, 1)
	assert.ErrorIs(t, err, ErrPointerType)
	_, err = Scratch[withPointer](a, 1)
	assert.ErrorIs(t, err, ErrPointerType)
}

func TestArena_Clone(t *testing.T) {
	// Misaligned caller buffer: offsets stay aligned in the copy.
	raw := make([]byte, 129)
	a := New(raw[1:])

	ref, recs, err := PlaceN[record](a, 1)
	require.NoError(t, err)
	recs[0].Value = 42

	b := a.Clone()
	assert.Equal(t, a.Stats(), b.Stats())
	assert.Equal(t, 42.0, At[record](b, ref).Value)

	At[record](b, ref).Value = 7
	assert.Equal(t, 42.0, At[record](a, ref).Value, "clone must not share memory")
	assert.Zero(t, uintptr(unsafe.Pointer(At[record](b, ref)))%unsafe.Alignof(record{}))
}

func TestArena_Empty(t *testing.T) {
	a := New(nil)
	_, err := a.AllocBack(1, 1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	_, err = a.AllocFront(1, 1)
	assert.ErrorIs(t, err, ErrOutOfMemory)
	assert.NotNil(t, a.Clone())
}
