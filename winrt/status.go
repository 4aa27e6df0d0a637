// Package winrt is the runtime contract assumed by generated bindings.
//
// Generated wrappers call into this package to map native status codes onto
// Go errors, to lift raw output slots into typed values, and to fail fast when
// a wrapper is invoked on a platform it was not built for.
package winrt

import "fmt"

// Status is a native success/failure code.
type Status interface {
	Err() error
}

// HRESULT is a COM status code. Negative values are failures.
type HRESULT int32

const (
	S_OK          HRESULT = 0
	S_FALSE       HRESULT = 1
	E_NOTIMPL     HRESULT = -0x7fffbfff // 0x80004001
	E_NOINTERFACE HRESULT = -0x7fffbffe // 0x80004002
	E_POINTER     HRESULT = -0x7fffbffd // 0x80004003
	E_FAIL        HRESULT = -0x7fffbffb // 0x80004005
)

const facilityWin32 = 7

// Succeeded reports whether hr is a success code.
func (hr HRESULT) Succeeded() bool { return hr >= 0 }

// Failed reports whether hr is a failure code.
func (hr HRESULT) Failed() bool { return hr < 0 }

// Facility returns the facility field of hr.
func (hr HRESULT) Facility() uint16 { return uint16(uint32(hr)>>16) & 0x1fff }

// Err returns nil on success and an *Error otherwise.
func (hr HRESULT) Err() error {
	if hr.Succeeded() {
		return nil
	}
	return &Error{Code: int32(hr), Family: "HRESULT"}
}

func (hr HRESULT) String() string {
	return fmt.Sprintf("0x%08X", uint32(hr))
}

// NTSTATUS is an NT kernel status code. Severity error values are failures.
type NTSTATUS int32

// Succeeded reports whether st is a success, informational or warning code.
func (st NTSTATUS) Succeeded() bool { return st >= 0 }

// Err returns nil on success and an *Error otherwise.
func (st NTSTATUS) Err() error {
	if st.Succeeded() {
		return nil
	}
	return &Error{Code: int32(st), Family: "NTSTATUS"}
}

func (st NTSTATUS) String() string {
	return fmt.Sprintf("0x%08X", uint32(st))
}

// Error is a failed native status.
type Error struct {
	Code   int32
	Family string
}

func (e *Error) Error() string {
	msg := statusMessage(e.Family, e.Code)
	if msg == "" {
		return fmt.Sprintf("%s 0x%08X", e.Family, uint32(e.Code))
	}
	return fmt.Sprintf("%s 0x%08X: %s", e.Family, uint32(e.Code), msg)
}

// Is matches errors with the same family and code.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Family == t.Family && e.Code == t.Code
	}
	return false
}

// HRESULT returns the code as an HRESULT.
func (e *Error) HRESULT() HRESULT { return HRESULT(e.Code) }
