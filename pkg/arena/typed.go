package arena

import (
	"fmt"
	"reflect"
	"unsafe"
)

// CheckType reports ErrPointerType when T cannot live in arena memory.
func CheckType[T any]() error {
	t := reflect.TypeFor[T]()
	if !pointerFree(t) {
		return fmt.Errorf("%w: %s", ErrPointerType, t)
	}
	return nil
}

func pointerFree(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64, reflect.Complex64, reflect.Complex128:
		return true
	case reflect.Array:
		return t.Len() == 0 || pointerFree(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if !pointerFree(t.Field(i).Type) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// PlaceN reserves n contiguous zeroed values of T in the back region and
// returns the reference of the first one together with a typed view.
// The whole reservation succeeds or nothing is reserved.
func PlaceN[T any](a *Arena, n int) (Ref, []T, error) {
	if err := CheckType[T](); err != nil {
		return Nil, nil, err
	}
	var zero T
	size, align := int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero))
	ref, err := a.AllocBack(size*n, align)
	if err != nil {
		return Nil, nil, err
	}
	if n == 0 || size == 0 {
		return ref, []T{}, nil
	}
	return ref, unsafe.Slice((*T)(unsafe.Pointer(&a.buf[ref])), n), nil
}

// At returns the T stored at ref in the back region.
// It panics when ref does not address a complete value inside that region.
func At[T any](a *Arena, ref Ref) *T {
	var zero T
	if ref < 0 || int(ref)+int(unsafe.Sizeof(zero)) > a.back {
		panic(fmt.Sprintf("arena: reference %d outside back region [0,%d)", ref, a.back))
	}
	return (*T)(unsafe.Pointer(&a.buf[ref]))
}

// Scratch reserves n zeroed values of T in the front region. The slice is
// valid until the next ResetFront.
func Scratch[T any](a *Arena, n int) ([]T, error) {
	if err := CheckType[T](); err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	var zero T
	size, align := int(unsafe.Sizeof(zero)), int(unsafe.Alignof(zero))
	ref, err := a.AllocFront(size*n, align)
	if err != nil {
		return nil, err
	}
	if size == 0 {
		return make([]T, n), nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(&a.buf[ref])), n), nil
}

// SizeOf returns the number of bytes n values of T occupy, excluding padding.
func SizeOf[T any](n int) int {
	var zero T
	return int(unsafe.Sizeof(zero)) * n
}
