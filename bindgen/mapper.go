package bindgen

import (
	"fmt"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/bindgen/metadata"
)

// Param is a caller-facing wrapper parameter.
type Param struct {
	Name string
	Type *jen.Statement
}

// TypeParam is a generic type parameter of a wrapper.
type TypeParam struct {
	Name  string
	Bound *jen.Statement
}

// Mapping is the parameter projection of one descriptor under its kind.
type Mapping struct {
	Kind     SignatureKind
	Leading  []metadata.ParameterDescriptor
	Trailing []metadata.ParameterDescriptor

	TypeParams []TypeParam
	Params     []Param    // one per leading parameter
	Args       []jen.Code // raw ABI argument per leading parameter

	Native       []abiSlot // every native parameter
	NativeReturn *abiSlot  // nil for void

	// ResultValue only: the slot type, the lifted return type and the
	// conversion applied to the slot.
	Slot   *jen.Statement
	Return *jen.Statement
	lift   func(hr, slot jen.Code) jen.Code
}

// MapSignature splits d's parameters by kind and projects the leading ones
// into caller parameters and raw ABI arguments.
func MapSignature(d *metadata.MethodDescriptor, kind SignatureKind, c *GenerationContext) (*Mapping, error) {
	n := len(d.Params) - kind.trailing()
	if n < 0 {
		return nil, newError(PhaseMap, KindInvalidDescriptor, d.Name,
			"%s needs %d trailing parameters, have %d", kind, kind.trailing(), len(d.Params))
	}
	ty := typer{c: c}
	m := &Mapping{
		Kind:     kind,
		Leading:  d.Params[:n],
		Trailing: d.Params[n:],
	}

	m.TypeParams = Constraints(m.Leading, kind, c)
	taken := newNameSet()
	for _, tp := range m.TypeParams {
		taken[tp.Name] = true
	}

	generic := 0
	for _, p := range m.Leading {
		name := goParamName(p.Name, taken)
		var gname string
		if p.Type.Kind == metadata.KindInterface {
			gname = genericName(generic)
			generic++
		}
		typ, err := ty.caller(p.Type, gname)
		if err != nil {
			return nil, mapError(d, p, err)
		}
		m.Params = append(m.Params, Param{Name: name, Type: typ})
		m.Args = append(m.Args, rawArg(p.Type, name, ty))
	}

	nativeTaken := newNameSet()
	for _, p := range d.Params {
		s, err := ty.slot(goParamName(p.Name, nativeTaken), p.Type)
		if err != nil {
			return nil, mapError(d, p, err)
		}
		m.Native = append(m.Native, s)
	}
	ret, err := ty.returnSlot(d.Return)
	if err != nil {
		return nil, newError(PhaseMap, KindUnsupportedABI, d.Name, "return: %v", err)
	}
	m.NativeReturn = ret

	if kind == ResultValue {
		if err := m.mapResult(d, ty); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Constraints derives the generic type parameters of a wrapper from its
// leading parameter types: one Param-bounded parameter per interface
// argument, then T for the query conventions.
func Constraints(leading []metadata.ParameterDescriptor, kind SignatureKind, c *GenerationContext) []TypeParam {
	ty := typer{c: c}
	var tps []TypeParam
	for _, p := range leading {
		if p.Type.Kind == metadata.KindInterface {
			tps = append(tps, TypeParam{Name: genericName(len(tps)), Bound: ty.runtime("Param")})
		}
	}
	if kind.IsQuery() {
		tps = append(tps, TypeParam{
			Name:  "T",
			Bound: ty.runtime("Interface").Types(jen.Id("T")),
		})
	}
	return tps
}

func genericName(i int) string {
	return fmt.Sprintf("P%d", i)
}

// rawArg returns the ABI expression for a leading parameter named name.
func rawArg(t metadata.TypeRef, name string, ty typer) jen.Code {
	switch {
	case t.Kind == metadata.KindBool:
		return ty.runtime("BoolOf").Call(jen.Id(name))
	case t.Kind == metadata.KindInterface:
		return jen.Id(name).Dot("Raw").Call()
	case t.Kind == metadata.KindGUID,
		t.Kind == metadata.KindStruct && !registerSized(t.Size):
		return jen.Op("&").Id(name)
	}
	return jen.Id(name)
}

// mapResult projects the trailing output slot of a ResultValue descriptor.
func (m *Mapping) mapResult(d *metadata.MethodDescriptor, ty typer) error {
	out := m.Trailing[0]
	elem := *out.Type.Elem

	slot, err := ty.value(elem)
	if err != nil {
		return mapError(d, out, err)
	}
	m.Slot = slot

	switch elem.Kind {
	case metadata.KindInterface:
		if elem.Name == "" {
			return newError(PhaseMap, KindInvalidDescriptor, d.Name,
				"interface output %s has no type name", out.Name)
		}
		m.Return = ty.named(elem)
		named := ty.named(elem)
		m.lift = func(hr, s jen.Code) jen.Code {
			return ty.runtime("AndSome").Types(named).Call(hr, s)
		}
	case metadata.KindBool:
		m.Return = jen.Bool()
		m.lift = func(hr, s jen.Code) jen.Code {
			return ty.runtime("BoolResult").Call(hr, s)
		}
	default:
		ret, err := ty.value(elem)
		if err != nil {
			return mapError(d, out, err)
		}
		m.Return = ret
		m.lift = func(hr, s jen.Code) jen.Code {
			return ty.runtime("FromABI").Call(hr, s)
		}
	}
	return nil
}

// hasWide reports whether any native parameter or the return is 64 bits wide.
func (m *Mapping) hasWide() bool {
	for _, s := range m.Native {
		if s.Wide {
			return true
		}
	}
	return m.NativeReturn != nil && m.NativeReturn.Wide
}

func mapError(d *metadata.MethodDescriptor, p metadata.ParameterDescriptor, err error) error {
	e := newError(PhaseMap, KindUnsupportedABI, d.Name, "parameter %s", p.Name)
	e.Cause = err
	return e
}
