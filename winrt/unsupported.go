package winrt

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrUnsupportedPlatform is wrapped by every UnsupportedError.
var ErrUnsupportedPlatform = errors.New("unsupported platform")

// UnsupportedError names a generated function invoked on a platform it was not
// built to call.
type UnsupportedError struct {
	Function string
	GOOS     string
	GOARCH   string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("%s: %s/%s: %v", e.Function, e.GOOS, e.GOARCH, ErrUnsupportedPlatform)
}

func (e *UnsupportedError) Unwrap() error { return ErrUnsupportedPlatform }

// Unsupported builds the value generated stubs panic with.
func Unsupported(function string) error {
	return &UnsupportedError{Function: function, GOOS: runtime.GOOS, GOARCH: runtime.GOARCH}
}
