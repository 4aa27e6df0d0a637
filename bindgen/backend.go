package bindgen

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/bindgen/metadata"
)

const sysWindows = "golang.org/x/sys/windows"

// nativeBackend declares the native symbol and a Go function with its exact
// ABI shape. Wrappers only ever call that function.
type nativeBackend interface {
	declare(f *jen.File, d *metadata.MethodDescriptor, link LinkSpec, m *Mapping, ty typer) error
}

func backendFor(link LinkSpec) nativeBackend {
	if link.Static {
		return staticBackend{}
	}
	return dynamicBackend{}
}

// narrowArchs are the 32-bit Windows targets where SyscallN passes each value
// in a single 32-bit word.
var narrowArchs = []string{"386", "arm"}

// restrictLink keeps a dynamically bound wrapper that moves 64-bit values off
// narrowArchs. An explicit architecture gate is checked by the backend instead.
func restrictLink(link LinkSpec, m *Mapping) LinkSpec {
	if link.Static || link.Architecture != "" || !m.hasWide() {
		return link
	}
	link.Excluded = append([]string(nil), narrowArchs...)
	return link
}

func nativeName(d *metadata.MethodDescriptor) string {
	return "syscall" + d.Name
}

func nativeSignature(d *metadata.MethodDescriptor, m *Mapping) *jen.Statement {
	params := make([]jen.Code, len(m.Native))
	for i, s := range m.Native {
		params[i] = jen.Id(s.Name).Add(s.Type)
	}
	sig := jen.Func().Id(nativeName(d)).Params(params...)
	if m.NativeReturn != nil {
		sig.Add(m.NativeReturn.Type)
	}
	return sig
}

// dynamicBackend binds through a lazily loaded DLL procedure.
type dynamicBackend struct{}

func (dynamicBackend) declare(f *jen.File, d *metadata.MethodDescriptor, link LinkSpec, m *Mapping, ty typer) error {
	slots := m.Native
	if m.NativeReturn != nil {
		slots = append(slots[:len(slots):len(slots)], *m.NativeReturn)
	}
	if link.Umbrella && link.Scope == "" {
		return newError(PhaseEmit, KindUnresolvedLink, d.Name,
			"%s is an import library and %s has no owning scope to load; link %s statically", link.Target, d.Name, d.Name)
	}
	for _, s := range slots {
		if s.Class == slotFloat {
			return newError(PhaseEmit, KindUnsupportedABI, d.Name,
				"floating-point values cannot be passed through a dynamic import; link %s statically", d.Name)
		}
		if s.Wide && link.Architecture == "386" {
			return newError(PhaseEmit, KindUnsupportedABI, d.Name,
				"64-bit values do not fit a 386 register; link %s statically", d.Name)
		}
	}

	proc := "proc" + d.Name
	f.Var().Id(proc).Op("=").Qual(sysWindows, "NewLazySystemDLL").Call(jen.Lit(link.DLL())).
		Dot("NewProc").Call(jen.Lit(d.Name))
	f.Line()

	args := []jen.Code{jen.Id(proc).Dot("Addr").Call()}
	ret := m.NativeReturn
	if ret != nil && ret.Class == slotHidden {
		args = append(args, jen.Uintptr().Call(unsafePointer().Call(jen.Op("&").Id("ret__"))))
	}
	for _, s := range m.Native {
		args = append(args, dynamicArg(s, ty))
	}
	call := jen.Qual("syscall", "SyscallN").Call(args...)

	var body []jen.Code
	switch {
	case ret == nil:
		body = append(body, call)
	case ret.Class == slotHidden:
		body = append(body,
			jen.Var().Id("ret__").Add(ret.Type),
			call,
			jen.Return(jen.Id("ret__")),
		)
	case ret.Class == slotAggregate:
		body = append(body,
			jen.List(jen.Id("r0"), jen.Id("r1"), jen.Id("_")).Op(":=").Add(call),
			jen.Return(ty.runtime("FromBits").Types(ret.Type).Call(jen.Id("r0"), jen.Id("r1"))),
		)
	default:
		body = append(body,
			jen.List(jen.Id("r0"), jen.Id("_"), jen.Id("_")).Op(":=").Add(call),
			jen.Return(fromRegister(*ret, jen.Id("r0"))),
		)
	}

	f.Comment(fmt.Sprintf("%s calls %s from %s.", nativeName(d), d.Name, link.DLL()))
	f.Add(nativeSignature(d, m)).Block(body...)
	return nil
}

// dynamicArg converts an ABI slot to a syscall argument.
func dynamicArg(s abiSlot, ty typer) jen.Code {
	x := jen.Id(s.Name)
	switch s.Class {
	case slotPointer:
		return jen.Uintptr().Call(unsafePointer().Call(x))
	case slotAggregate:
		return ty.runtime("Bits").Call(x)
	}
	return jen.Uintptr().Call(x)
}

// fromRegister converts an integer register back to the return type. Pointers
// are reinterpreted in place rather than converted from uintptr.
func fromRegister(s abiSlot, r jen.Code) jen.Code {
	switch s.Class {
	case slotPointer:
		return jen.Parens(s.Type).Call(pointerAt(r))
	case slotRawPointer:
		return pointerAt(r)
	}
	return jen.Add(s.Type).Call(r)
}

// pointerAt renders *(*unsafe.Pointer)(unsafe.Pointer(&r)).
func pointerAt(r jen.Code) jen.Code {
	return jen.Op("*").Parens(jen.Op("*").Add(unsafePointer())).Call(unsafePointer().Call(jen.Op("&").Add(r)))
}

// staticBackend binds through cgo against a named library.
type staticBackend struct{}

func (staticBackend) declare(f *jen.File, d *metadata.MethodDescriptor, link LinkSpec, m *Mapping, ty typer) error {
	f.CgoPreamble(cgoPreamble(d, link, m))

	ret := m.NativeReturn
	var args []jen.Code
	if ret != nil && ret.Class == slotHidden {
		args = append(args, unsafePointer().Call(jen.Op("&").Id("ret__")))
	}
	for _, s := range m.Native {
		args = append(args, cgoArg(s, ty))
	}
	call := jen.Qual("C", d.Name).Call(args...)

	var body []jen.Code
	switch {
	case ret == nil:
		body = append(body, call)
	case ret.Class == slotHidden:
		body = append(body,
			jen.Var().Id("ret__").Add(ret.Type),
			call,
			jen.Return(jen.Id("ret__")),
		)
	case ret.Class == slotAggregate:
		wide := jen.Uint64().Call(jen.Id("r0"))
		body = append(body,
			jen.Id("r0").Op(":=").Add(call),
			jen.Return(ty.runtime("FromBits").Types(ret.Type).Call(
				jen.Uintptr().Call(wide),
				jen.Uintptr().Call(jen.Uint64().Call(jen.Id("r0")).Op(">>").Lit(32)),
			)),
		)
	case ret.Class == slotPointer:
		body = append(body, jen.Return(jen.Parens(ret.Type).Call(call)))
	case ret.Class == slotRawPointer:
		body = append(body, jen.Return(call))
	default:
		body = append(body, jen.Return(jen.Add(ret.Type).Call(call)))
	}

	f.Comment(fmt.Sprintf("%s calls %s from the static library %s.", nativeName(d), d.Name, link.Target))
	f.Add(nativeSignature(d, m)).Block(body...)
	return nil
}

// cgoArg converts an ABI slot to a C argument.
func cgoArg(s abiSlot, ty typer) jen.Code {
	x := jen.Id(s.Name)
	switch s.Class {
	case slotPointer:
		return unsafePointer().Call(x)
	case slotRawPointer:
		return x
	case slotAggregate:
		return jen.Qual("C", s.CType).Call(ty.runtime("Bits").Call(x))
	}
	return jen.Qual("C", s.CType).Call(x)
}

// cgoPreamble declares the library and the extern prototype.
func cgoPreamble(d *metadata.MethodDescriptor, link LinkSpec, m *Mapping) string {
	var params []string
	ret := "void"
	if r := m.NativeReturn; r != nil {
		ret = r.CType
		if r.Class == slotHidden {
			params = append(params, "void*")
		}
	}
	for _, s := range m.Native {
		params = append(params, s.CType)
	}
	if len(params) == 0 {
		params = append(params, "void")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "#cgo LDFLAGS: -l%s\n", libName(link.Target))
	b.WriteString("#include <stdint.h>\n")
	b.WriteString("#if defined(__i386__)\n#define BINDGEN_API __attribute__((stdcall))\n#else\n#define BINDGEN_API\n#endif\n")
	fmt.Fprintf(&b, "extern %s BINDGEN_API %s(%s);", ret, d.Name, strings.Join(params, ", "))
	return b.String()
}

// libName strips library file decorations for -l.
func libName(target string) string {
	if t, ok := strings.CutSuffix(target, ".a"); ok {
		return strings.TrimPrefix(t, "lib")
	}
	return strings.TrimSuffix(target, ".lib")
}
