package bindgen

import "fmt"

// SignatureKind is the calling-and-error convention of a native function.
type SignatureKind int

const (
	// Query returns a new interface of the caller's generic type T.
	Query SignatureKind = iota
	// QueryOptional writes an interface of type T into a caller-supplied slot.
	QueryOptional
	// ResultValue turns the trailing output slot into the return value.
	ResultValue
	// ResultVoid maps the status to an error and returns nothing else.
	ResultVoid
	// ReturnStruct returns a struct by the native struct-return convention.
	ReturnStruct
	// PreserveSig returns the native result unchanged.
	PreserveSig
)

// Kinds lists every SignatureKind in declaration order.
var Kinds = []SignatureKind{Query, QueryOptional, ResultValue, ResultVoid, ReturnStruct, PreserveSig}

func (k SignatureKind) String() string {
	switch k {
	case Query:
		return "Query"
	case QueryOptional:
		return "QueryOptional"
	case ResultValue:
		return "ResultValue"
	case ResultVoid:
		return "ResultVoid"
	case ReturnStruct:
		return "ReturnStruct"
	case PreserveSig:
		return "PreserveSig"
	}
	return fmt.Sprintf("SignatureKind(%d)", int(k))
}

// trailing returns how many trailing parameters the convention consumes.
func (k SignatureKind) trailing() int {
	switch k {
	case Query, QueryOptional:
		return 2
	case ResultValue:
		return 1
	case ResultVoid, ReturnStruct, PreserveSig:
		return 0
	}
	panic("bindgen: unknown signature kind " + k.String())
}

// IsQuery reports whether k introduces the generic interface parameter T.
func (k SignatureKind) IsQuery() bool {
	return k == Query || k == QueryOptional
}
