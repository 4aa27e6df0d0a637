package winrt

import (
	"errors"
	"unsafe"
)

// ErrNoValue is returned when a native call reports success but leaves its
// output slot empty.
var ErrNoValue = errors.New("winrt: success reported but no value produced")

// Interface is satisfied by native interface wrappers. The zero value of T
// must answer IID, and FromRaw adopts a raw interface pointer.
type Interface[T any] interface {
	IID() *GUID
	FromRaw(raw unsafe.Pointer) T
}

// Param is a native interface passed as an input argument.
type Param interface {
	Raw() unsafe.Pointer
}

// IIDOf returns the interface identifier of T.
func IIDOf[T Interface[T]]() *GUID {
	var zero T
	return zero.IID()
}

// AndSome lifts a raw interface pointer written by a successful call.
func AndSome[T Interface[T]](st Status, raw unsafe.Pointer) (T, error) {
	var zero T
	if err := st.Err(); err != nil {
		return zero, err
	}
	if raw == nil {
		return zero, ErrNoValue
	}
	return zero.FromRaw(raw), nil
}

// Store writes a raw interface pointer into a caller-supplied slot. The slot
// keeps its previous value when the call succeeds without producing one.
func Store[T Interface[T]](st Status, raw unsafe.Pointer, out *T) error {
	if err := st.Err(); err != nil {
		return err
	}
	if raw != nil && out != nil {
		var zero T
		*out = zero.FromRaw(raw)
	}
	return nil
}

// None is a Param that passes a null interface pointer.
type None struct{}

// Raw returns nil.
func (None) Raw() unsafe.Pointer { return nil }
