package bindgen

import (
	"bytes"
	"fmt"
	"go/build/constraint"

	"github.com/dave/jennifer/jen"

	"github.com/chazu/bindgen/metadata"
)

// File is one generated Go source file.
type File struct {
	Name   string
	Build  string // //go:build line
	Source []byte
}

// Fragment is the complete output for one descriptor: the file that calls the
// native function and the fail-fast file for the same architecture and
// feature set.
type Fragment struct {
	Name        string
	Kind        SignatureKind
	Link        LinkSpec
	Gate        string // build expression of Supported
	Supported   File
	Unsupported File
}

// Files returns the fragment's files in write order.
func (fr *Fragment) Files() []File {
	return []File{fr.Supported, fr.Unsupported}
}

// Emit renders the wrapper for d. It does not classify or resolve linkage
// itself; Generate chains the steps.
func Emit(d *metadata.MethodDescriptor, m *Mapping, link LinkSpec, c *GenerationContext) (*Fragment, error) {
	ty := typer{c: c}
	link = restrictLink(link, m)

	native := newFile(c, link.Gate())
	if err := backendFor(link).declare(native, d, link, m, ty); err != nil {
		return nil, err
	}
	native.Line()
	wrapperDoc(native, d, link)
	body, err := wrapperBody(d, m, ty)
	if err != nil {
		return nil, err
	}
	native.Add(wrapperSignature(d, m, ty)).Block(body...)

	stub := newFile(c, link.StubGate())
	stub.Commentf("%s is not available on this platform. Calling it panics with an", d.Name)
	stub.Commentf("error wrapping %s.ErrUnsupportedPlatform.", packageName(c.RuntimePath))
	stub.Add(wrapperSignature(d, m, ty)).Block(
		jen.Panic(ty.runtime("Unsupported").Call(jen.Lit(d.Name))),
	)

	fr := &Fragment{Name: d.Name, Kind: m.Kind, Link: link, Gate: link.Gate().String()}
	base := fileBase(d.Name)
	if fr.Supported, err = render(native, base+"_windows.go", link.Gate()); err != nil {
		return nil, emitError(d, err)
	}
	if fr.Unsupported, err = render(stub, base+"_other.go", link.StubGate()); err != nil {
		return nil, emitError(d, err)
	}
	return fr, nil
}

func newFile(c *GenerationContext, gate constraint.Expr) *jen.File {
	f := jen.NewFilePathName(c.PackagePath, c.Package)
	f.HeaderComment(buildLine(gate))
	f.HeaderComment("Code generated by bindgen. DO NOT EDIT.")
	f.ImportName(c.RuntimePath, packageName(c.RuntimePath))
	f.ImportName(sysWindows, "windows")
	return f
}

func render(f *jen.File, name string, gate constraint.Expr) (File, error) {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return File{}, err
	}
	return File{Name: name, Build: buildLine(gate), Source: buf.Bytes()}, nil
}

func emitError(d *metadata.MethodDescriptor, err error) error {
	e := newError(PhaseEmit, KindInvalidDescriptor, d.Name, "rendering failed")
	e.Cause = err
	return e
}

func wrapperDoc(f *jen.File, d *metadata.MethodDescriptor, link LinkSpec) {
	if link.Static {
		f.Commentf("%s calls %s from the static library %s.", d.Name, d.Name, link.Target)
	} else {
		f.Commentf("%s calls %s from %s.", d.Name, d.Name, link.DLL())
	}
	f.Comment("")
	f.Commentf("Native: %s", d.Prototype())
	f.Comment("")
	f.Comment("Unsafe: the caller guarantees that every pointer argument is valid for")
	f.Comment("the duration of the call and meets the native function's lifetime rules.")
}

// wrapperSignature renders the public shape shared by both files.
func wrapperSignature(d *metadata.MethodDescriptor, m *Mapping, ty typer) *jen.Statement {
	sig := jen.Func().Id(d.Name)
	if len(m.TypeParams) > 0 {
		tps := make([]jen.Code, len(m.TypeParams))
		for i, tp := range m.TypeParams {
			tps[i] = jen.Id(tp.Name).Add(tp.Bound)
		}
		sig.Types(tps...)
	}

	params := make([]jen.Code, 0, len(m.Params)+1)
	for _, p := range m.Params {
		params = append(params, jen.Id(p.Name).Add(p.Type))
	}
	if m.Kind == QueryOptional {
		params = append(params, jen.Id("result__").Op("*").Id("T"))
	}
	sig.Params(params...)

	switch m.Kind {
	case Query:
		sig.Params(jen.Id("T"), jen.Error())
	case QueryOptional, ResultVoid:
		sig.Error()
	case ResultValue:
		sig.Params(m.Return, jen.Error())
	case ReturnStruct, PreserveSig:
		if m.NativeReturn != nil {
			sig.Add(m.NativeReturn.Type)
		}
	default:
		panic(fmt.Sprintf("bindgen: no signature for %s", m.Kind))
	}
	return sig
}

// wrapperBody is the per-kind emitter.
func wrapperBody(d *metadata.MethodDescriptor, m *Mapping, ty typer) ([]jen.Code, error) {
	native := jen.Id(nativeName(d))
	args := append([]jen.Code(nil), m.Args...)
	hr := jen.Id("hr__")

	switch m.Kind {
	case Query:
		args = append(args,
			ty.runtime("IIDOf").Types(jen.Id("T")).Call(),
			jen.Op("&").Id("result__"),
		)
		return []jen.Code{
			jen.Var().Id("result__").Add(unsafePointer()),
			hr.Clone().Op(":=").Add(native).Call(args...),
			jen.Return(ty.runtime("AndSome").Types(jen.Id("T")).Call(hr.Clone(), jen.Id("result__"))),
		}, nil

	case QueryOptional:
		args = append(args,
			ty.runtime("IIDOf").Types(jen.Id("T")).Call(),
			jen.Op("&").Id("raw__"),
		)
		return []jen.Code{
			jen.Var().Id("raw__").Add(unsafePointer()),
			hr.Clone().Op(":=").Add(native).Call(args...),
			jen.Return(ty.runtime("Store").Call(hr.Clone(), jen.Id("raw__"), jen.Id("result__"))),
		}, nil

	case ResultValue:
		args = append(args, jen.Op("&").Id("result__"))
		return []jen.Code{
			jen.Var().Id("result__").Add(m.Slot),
			hr.Clone().Op(":=").Add(native).Call(args...),
			jen.Return(m.lift(hr.Clone(), jen.Id("result__"))),
		}, nil

	case ResultVoid:
		return []jen.Code{
			jen.Return(native.Call(args...).Dot("Err").Call()),
		}, nil

	case ReturnStruct, PreserveSig:
		if m.NativeReturn == nil {
			return []jen.Code{native.Call(args...)}, nil
		}
		return []jen.Code{jen.Return(native.Call(args...))}, nil
	}
	return nil, newError(PhaseEmit, KindInvalidDescriptor, d.Name, "no emitter for %s", m.Kind)
}
