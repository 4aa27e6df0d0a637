package bindgen

import (
	"fmt"
	"strings"
)

// Phase indicates which generation step failed.
type Phase string

const (
	PhaseClassify Phase = "classify"
	PhaseLink     Phase = "link"
	PhaseMap      Phase = "map"
	PhaseEmit     Phase = "emit"
)

// ErrorKind categorizes a generation failure.
type ErrorKind string

const (
	KindUnresolvedLink    ErrorKind = "unresolved_link"
	KindUnknownArch       ErrorKind = "unknown_arch"
	KindUnsupportedABI    ErrorKind = "unsupported_abi"
	KindInvalidDescriptor ErrorKind = "invalid_descriptor"
)

// Error is a generation-time failure for one descriptor. Generation errors are
// metadata contract violations; the descriptor is skipped and reported.
type Error struct {
	Phase  Phase
	Kind   ErrorKind
	Method string
	Detail string
	Cause  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))
	if e.Method != "" {
		b.WriteString(" in ")
		b.WriteString(e.Method)
	}
	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}
	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches on phase and kind, so callers can test against a template such
// as &Error{Phase: PhaseLink, Kind: KindUnresolvedLink}.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

func newError(phase Phase, kind ErrorKind, method, format string, args ...any) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Method: method,
		Detail: fmt.Sprintf(format, args...),
	}
}
