// Package metadata holds the in-memory description of native functions to bind.
//
// Descriptors are produced by an upstream metadata collaborator (or read from a
// curated TOML descriptor file with LoadFile) and are treated as read-only by
// the generator.
package metadata

import "strings"

// MethodDescriptor describes one native function.
type MethodDescriptor struct {
	Name          string
	Params        []ParameterDescriptor // native ABI order
	Return        TypeRef
	StaticLibrary string // explicit static link target, if any
	Architecture  string // single supported architecture, if restricted
	Scope         string // owning library (e.g. "OLE32")
	Namespace     string // metadata namespace (e.g. "Windows.Win32.System.Com")
	Features      []string
}

// ParameterDescriptor describes one native parameter.
type ParameterDescriptor struct {
	Name     string
	Type     TypeRef
	Output   bool
	Optional bool
}

// TypeRef is the native shape of a parameter or return value.
type TypeRef struct {
	Kind      Kind
	Name      string   // named kinds: Handle, Struct, Enum, Interface, Status
	Namespace string   // namespace of a named kind
	Size      int      // Struct only, in bytes
	Elem      *TypeRef // Pointer only
}

// Kind classifies a native type.
type Kind int

const (
	KindVoid Kind = iota
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUintptr
	KindFloat32
	KindFloat64
	KindBool // Win32 BOOL, 32 bits
	KindHandle
	KindEnum
	KindStruct
	KindGUID
	KindInterface
	KindString // NUL-terminated UTF-16 pointer
	KindStatus
	KindPointer
)

var kindNames = [...]string{
	KindVoid:      "void",
	KindInt8:      "int8",
	KindInt16:     "int16",
	KindInt32:     "int32",
	KindInt64:     "int64",
	KindUint8:     "uint8",
	KindUint16:    "uint16",
	KindUint32:    "uint32",
	KindUint64:    "uint64",
	KindUintptr:   "uintptr",
	KindFloat32:   "float32",
	KindFloat64:   "float64",
	KindBool:      "bool",
	KindHandle:    "handle",
	KindEnum:      "enum",
	KindStruct:    "struct",
	KindGUID:      "guid",
	KindInterface: "interface",
	KindString:    "string",
	KindStatus:    "status",
	KindPointer:   "pointer",
}

func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), true
		}
	}
	return KindVoid, false
}

// IsScalar reports whether k is a fixed-width integer or float.
func (k Kind) IsScalar() bool {
	return k >= KindInt8 && k <= KindFloat64
}

// IsFloat reports whether k is passed in floating-point registers.
func (k Kind) IsFloat() bool {
	return k == KindFloat32 || k == KindFloat64
}

// Void returns the void type.
func Void() TypeRef { return TypeRef{Kind: KindVoid} }

// Scalar returns an unnamed scalar type.
func Scalar(k Kind) TypeRef { return TypeRef{Kind: k} }

// Named returns a named type of the given kind.
func Named(k Kind, namespace, name string) TypeRef {
	return TypeRef{Kind: k, Namespace: namespace, Name: name}
}

// Struct returns a struct type with a known size.
func Struct(namespace, name string, size int) TypeRef {
	return TypeRef{Kind: KindStruct, Namespace: namespace, Name: name, Size: size}
}

// Status returns a status-code type such as HRESULT.
func Status(name string) TypeRef {
	return TypeRef{Kind: KindStatus, Name: name}
}

// PointerTo returns a pointer to elem.
func PointerTo(elem TypeRef) TypeRef {
	return TypeRef{Kind: KindPointer, Elem: &elem}
}

// IsVoid reports whether t is void.
func (t TypeRef) IsVoid() bool { return t.Kind == KindVoid }

// Indirection returns the number of pointer levels and the innermost type.
func (t TypeRef) Indirection() (int, TypeRef) {
	n := 0
	for t.Kind == KindPointer && t.Elem != nil {
		n++
		t = *t.Elem
	}
	return n, t
}

// String renders t the way the native prototype spells it.
func (t TypeRef) String() string {
	switch t.Kind {
	case KindPointer:
		if t.Elem == nil {
			return "void*"
		}
		return t.Elem.String() + "*"
	case KindHandle, KindEnum, KindStruct, KindInterface, KindStatus:
		if t.Name != "" {
			return t.Name
		}
	case KindBool:
		return "BOOL"
	case KindGUID:
		return "GUID"
	case KindString:
		return "PWSTR"
	}
	return t.Kind.String()
}

// Clone returns a deep copy of t.
func (t TypeRef) Clone() TypeRef {
	if t.Elem != nil {
		e := t.Elem.Clone()
		t.Elem = &e
	}
	return t
}

// QualifiedName returns Namespace.Name for named kinds.
func (t TypeRef) QualifiedName() string {
	if t.Namespace == "" {
		return t.Name
	}
	return t.Namespace + "." + t.Name
}

// Prototype renders the descriptor as a native prototype, used in
// generated doc comments and diagnostics.
func (d *MethodDescriptor) Prototype() string {
	var b strings.Builder
	b.WriteString(d.Return.String())
	b.WriteByte(' ')
	b.WriteString(d.Name)
	b.WriteByte('(')
	for i, p := range d.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		if p.Output {
			b.WriteString("out ")
		}
		if p.Optional {
			b.WriteString("opt ")
		}
		b.WriteString(p.Type.String())
		b.WriteByte(' ')
		b.WriteString(p.Name)
	}
	b.WriteByte(')')
	return b.String()
}
