package metadata

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadFile(t *testing.T) {
	f, err := LoadFile(filepath.Join("testdata", "com.toml"))
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if f.Namespace != "Windows.Win32.System.Com" {
		t.Errorf("namespace = %q", f.Namespace)
	}
	if len(f.Functions) != 5 {
		t.Fatalf("functions = %d, want 5", len(f.Functions))
	}

	cci := f.Functions[0]
	if cci.Name != "CoCreateInstance" {
		t.Errorf("name = %q, want CoCreateInstance", cci.Name)
	}
	if cci.Scope != "OLE32" {
		t.Errorf("scope = %q, want OLE32", cci.Scope)
	}
	if cci.Namespace != "Windows.Win32.System.Com" {
		t.Errorf("namespace should default to the file namespace, got %q", cci.Namespace)
	}
	if cci.Return.Kind != KindStatus || cci.Return.Name != "HRESULT" {
		t.Errorf("return = %+v, want HRESULT status", cci.Return)
	}
	if len(cci.Params) != 5 {
		t.Fatalf("params = %d, want 5", len(cci.Params))
	}
	ppv := cci.Params[4]
	if !ppv.Output {
		t.Error("ppv should be an output")
	}
	if n, inner := ppv.Type.Indirection(); n != 2 || inner.Kind != KindVoid {
		t.Errorf("ppv indirection = %d %v, want 2 void", n, inner.Kind)
	}
	if !cci.Params[1].Optional {
		t.Error("pUnkOuter should be optional")
	}

	gst := f.Functions[4]
	if gst.Namespace != "Windows.Win32.System.SystemInformation" {
		t.Errorf("explicit namespace lost: %q", gst.Namespace)
	}
	if gst.Architecture != "x64" {
		t.Errorf("architecture = %q, want x64", gst.Architecture)
	}
	elem := gst.Params[0].Type.Elem
	if elem == nil || elem.Kind != KindStruct || elem.Size != 8 {
		t.Errorf("FILETIME elem = %+v", elem)
	}
}

func TestLoadFile_RejectsUnknownKind(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "bad_kind.toml"))
	if err == nil {
		t.Fatal("expected schema error for unknown kind")
	}
	if !strings.Contains(err.Error(), "invalid descriptor file") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadFile_RejectsMissingName(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "missing_name.toml"))
	if err == nil {
		t.Fatal("expected schema error for missing name")
	}
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join("testdata", "nope.toml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDecode_StructNeedsSize(t *testing.T) {
	src := `
[[function]]
name = "GetRect"
return = { kind = "struct", name = "RECT" }
`
	if _, err := Decode([]byte(src)); err == nil {
		t.Fatal("expected schema error for struct without size")
	}
}

func TestDecode_PointerNeedsElem(t *testing.T) {
	src := `
[[function]]
name = "Bad"

  [[function.param]]
  name = "p"
  type = { kind = "pointer" }
`
	if _, err := Decode([]byte(src)); err == nil {
		t.Fatal("expected schema error for pointer without elem")
	}
}

func TestDecode_DefaultsToVoidReturn(t *testing.T) {
	src := `
[[function]]
name = "DebugBreak"
scope = "KERNEL32"
`
	f, err := Decode([]byte(src))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !f.Functions[0].Return.IsVoid() {
		t.Errorf("return = %v, want void", f.Functions[0].Return)
	}
}

func TestParseKind(t *testing.T) {
	for k := KindVoid; k <= KindPointer; k++ {
		got, ok := ParseKind(k.String())
		if !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k.String(), got, ok)
		}
	}
	if _, ok := ParseKind("quaternion"); ok {
		t.Error("ParseKind accepted an unknown name")
	}
}

func TestPrototype(t *testing.T) {
	d := MethodDescriptor{
		Name:   "CoInitializeEx",
		Return: Status("HRESULT"),
		Params: []ParameterDescriptor{
			{Name: "pvReserved", Type: PointerTo(Void()), Optional: true},
			{Name: "dwCoInit", Type: Scalar(KindUint32)},
		},
	}
	want := "HRESULT CoInitializeEx(opt void* pvReserved, uint32 dwCoInit)"
	if got := d.Prototype(); got != want {
		t.Errorf("Prototype() = %q, want %q", got, want)
	}
}
