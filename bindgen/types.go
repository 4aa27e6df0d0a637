package bindgen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/bindgen/metadata"
)

// slotClass says how an ABI value travels through a register.
type slotClass int

const (
	slotVoid       slotClass = iota
	slotInt                  // integer-like, converted with uintptr(x)
	slotFloat                // floating-point register
	slotPointer              // typed Go pointer
	slotRawPointer           // unsafe.Pointer
	slotAggregate            // struct of 1, 2, 4 or 8 bytes packed into a register
	slotHidden               // struct returned through a hidden pointer argument
)

// abiSlot is one native parameter or the native return value in ABI form.
type abiSlot struct {
	Name  string
	Type  *jen.Statement
	Class slotClass
	CType string
	Wide  bool // 64-bit value
}

// typer renders metadata types as Go types for one generation context.
type typer struct {
	c *GenerationContext
}

func (ty typer) runtime(name string) *jen.Statement {
	return jen.Qual(ty.c.RuntimePath, name)
}

func (ty typer) named(t metadata.TypeRef) *jen.Statement {
	return jen.Qual(ty.c.typesPath(t.Namespace), t.Name)
}

func unsafePointer() *jen.Statement {
	return jen.Qual("unsafe", "Pointer")
}

func registerSized(size int) bool {
	return size == 1 || size == 2 || size == 4 || size == 8
}

// status returns the runtime type of a status family.
func (ty typer) status(t metadata.TypeRef) (*jen.Statement, error) {
	switch t.Name {
	case "HRESULT", "":
		return ty.runtime("HRESULT"), nil
	case "NTSTATUS":
		return ty.runtime("NTSTATUS"), nil
	}
	return nil, fmt.Errorf("unknown status family %q", t.Name)
}

// value returns the in-memory Go type of t.
func (ty typer) value(t metadata.TypeRef) (*jen.Statement, error) {
	switch t.Kind {
	case metadata.KindInt8:
		return jen.Int8(), nil
	case metadata.KindInt16:
		return jen.Int16(), nil
	case metadata.KindInt32:
		return jen.Int32(), nil
	case metadata.KindInt64:
		return jen.Int64(), nil
	case metadata.KindUint8:
		return jen.Uint8(), nil
	case metadata.KindUint16:
		return jen.Uint16(), nil
	case metadata.KindUint32:
		return jen.Uint32(), nil
	case metadata.KindUint64:
		return jen.Uint64(), nil
	case metadata.KindUintptr:
		return jen.Uintptr(), nil
	case metadata.KindFloat32:
		return jen.Float32(), nil
	case metadata.KindFloat64:
		return jen.Float64(), nil
	case metadata.KindBool:
		return ty.runtime("BOOL"), nil
	case metadata.KindHandle, metadata.KindEnum, metadata.KindStruct:
		if t.Name == "" {
			return nil, fmt.Errorf("%s type without a name", t.Kind)
		}
		return ty.named(t), nil
	case metadata.KindGUID:
		return ty.runtime("GUID"), nil
	case metadata.KindInterface:
		return unsafePointer(), nil
	case metadata.KindString:
		return jen.Op("*").Uint16(), nil
	case metadata.KindStatus:
		return ty.status(t)
	case metadata.KindPointer:
		if t.Elem == nil || t.Elem.Kind == metadata.KindVoid {
			return unsafePointer(), nil
		}
		elem, err := ty.value(*t.Elem)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(elem), nil
	case metadata.KindVoid:
		return nil, fmt.Errorf("void is not a value type")
	}
	return nil, fmt.Errorf("unknown type kind %v", t.Kind)
}

// abiParam returns the Go type a native parameter has at the call boundary.
// Structs that do not fit a register and GUIDs travel by reference.
func (ty typer) abiParam(t metadata.TypeRef) (*jen.Statement, error) {
	switch {
	case t.Kind == metadata.KindStruct && !registerSized(t.Size):
		v, err := ty.value(t)
		if err != nil {
			return nil, err
		}
		return jen.Op("*").Add(v), nil
	case t.Kind == metadata.KindGUID:
		return jen.Op("*").Add(ty.runtime("GUID")), nil
	}
	return ty.value(t)
}

// caller returns the caller-facing Go type of a leading parameter. generic is
// the type parameter standing in for an interface argument.
func (ty typer) caller(t metadata.TypeRef, generic string) (*jen.Statement, error) {
	switch t.Kind {
	case metadata.KindBool:
		return jen.Bool(), nil
	case metadata.KindInterface:
		return jen.Id(generic), nil
	}
	return ty.value(t)
}

// slot lowers a native parameter type to its ABI slot.
func (ty typer) slot(name string, t metadata.TypeRef) (abiSlot, error) {
	typ, err := ty.abiParam(t)
	if err != nil {
		return abiSlot{}, err
	}
	s := abiSlot{Name: name, Type: typ}
	s.Class, s.CType, s.Wide = classOf(t)
	if t.Kind == metadata.KindStruct && !registerSized(t.Size) {
		s.Class, s.CType, s.Wide = slotPointer, "void*", false
	}
	return s, nil
}

// returnSlot lowers a native return type. It returns nil for void. GUIDs and
// structs that do not fit a register come back through a hidden pointer.
func (ty typer) returnSlot(t metadata.TypeRef) (*abiSlot, error) {
	if t.IsVoid() {
		return nil, nil
	}
	typ, err := ty.value(t)
	if err != nil {
		return nil, err
	}
	s := &abiSlot{Type: typ}
	s.Class, s.CType, s.Wide = classOf(t)
	if t.Kind == metadata.KindGUID || t.Kind == metadata.KindStruct && !registerSized(t.Size) {
		s.Class, s.CType, s.Wide = slotHidden, "void*", false
	}
	return s, nil
}

// classOf returns the register class and C spelling of a value of type t.
func classOf(t metadata.TypeRef) (slotClass, string, bool) {
	switch t.Kind {
	case metadata.KindInt8:
		return slotInt, "int8_t", false
	case metadata.KindInt16:
		return slotInt, "int16_t", false
	case metadata.KindInt32, metadata.KindBool, metadata.KindEnum, metadata.KindStatus:
		return slotInt, "int32_t", false
	case metadata.KindInt64:
		return slotInt, "int64_t", true
	case metadata.KindUint8:
		return slotInt, "uint8_t", false
	case metadata.KindUint16:
		return slotInt, "uint16_t", false
	case metadata.KindUint32:
		return slotInt, "uint32_t", false
	case metadata.KindUint64:
		return slotInt, "uint64_t", true
	case metadata.KindUintptr, metadata.KindHandle:
		return slotInt, "uintptr_t", false
	case metadata.KindFloat32:
		return slotFloat, "float", false
	case metadata.KindFloat64:
		return slotFloat, "double", true
	case metadata.KindStruct:
		return slotAggregate, fmt.Sprintf("uint%d_t", t.Size*8), t.Size == 8
	case metadata.KindInterface:
		return slotRawPointer, "void*", false
	case metadata.KindPointer:
		if t.Elem == nil || t.Elem.Kind == metadata.KindVoid {
			return slotRawPointer, "void*", false
		}
		return slotPointer, "void*", false
	case metadata.KindGUID, metadata.KindString:
		return slotPointer, "void*", false
	}
	return slotVoid, "void", false
}
