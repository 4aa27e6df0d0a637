package winrt

import (
	"fmt"
	"unsafe"
)

// Validator is implemented by ABI types whose bit patterns are not all legal
// values, such as closed enumerations.
type Validator interface {
	Valid() bool
}

// ConversionError reports a raw value that is not a legal instance of its type.
type ConversionError struct {
	Type  string
	Value any
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("winrt: %v is not a valid %s", e.Value, e.Type)
}

// FromABI returns raw once st succeeded and raw passed validation.
func FromABI[T any](st Status, raw T) (T, error) {
	var zero T
	if err := st.Err(); err != nil {
		return zero, err
	}
	if v, ok := any(raw).(Validator); ok && !v.Valid() {
		return zero, &ConversionError{Type: fmt.Sprintf("%T", raw), Value: raw}
	}
	return raw, nil
}

// BOOL is the 32-bit Win32 boolean.
type BOOL int32

// BoolOf converts b to its ABI form.
func BoolOf(b bool) BOOL {
	if b {
		return 1
	}
	return 0
}

// Bool reports whether b is non-zero.
func (b BOOL) Bool() bool { return b != 0 }

// BoolResult lifts a BOOL output slot written by a successful call.
func BoolResult(st Status, raw BOOL) (bool, error) {
	if err := st.Err(); err != nil {
		return false, err
	}
	return raw.Bool(), nil
}

// Bits packs a register-sized aggregate into an integer register value.
func Bits[T any](v T) uintptr {
	var r uintptr
	n := unsafe.Sizeof(v)
	if n > unsafe.Sizeof(r) {
		panic(fmt.Sprintf("winrt: %T does not fit in a register", v))
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&r)), n), unsafe.Slice((*byte)(unsafe.Pointer(&v)), n))
	return r
}

// FromBits unpacks an aggregate returned in one or two integer registers.
func FromBits[T any](lo, hi uintptr) T {
	var v T
	regs := [2]uintptr{lo, hi}
	n := unsafe.Sizeof(v)
	if n > unsafe.Sizeof(regs) {
		panic(fmt.Sprintf("winrt: %T does not fit in two registers", v))
	}
	copy(unsafe.Slice((*byte)(unsafe.Pointer(&v)), n), unsafe.Slice((*byte)(unsafe.Pointer(&regs[0])), n))
	return v
}
