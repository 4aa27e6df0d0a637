package main

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/chazu/bindgen/bindgen"
	"github.com/chazu/bindgen/metadata"
)

func checkDescriptors() []*metadata.MethodDescriptor {
	u32 := metadata.Scalar(metadata.KindUint32)
	guidPtr := metadata.PointerTo(metadata.Scalar(metadata.KindGUID))
	ppv := metadata.PointerTo(metadata.PointerTo(metadata.Void()))
	unknown := metadata.Named(metadata.KindInterface, "Windows.Win32.System.Com", "IUnknown")

	ds := []*metadata.MethodDescriptor{
		{
			Name:   "CoInitializeEx",
			Return: metadata.Status("HRESULT"),
			Params: []metadata.ParameterDescriptor{
				{Name: "pvReserved", Type: metadata.PointerTo(metadata.Void()), Optional: true},
				{Name: "dwCoInit", Type: u32},
			},
		},
		{
			Name:   "CoCreateInstance",
			Return: metadata.Status("HRESULT"),
			Params: []metadata.ParameterDescriptor{
				{Name: "rclsid", Type: guidPtr},
				{Name: "pUnkOuter", Type: unknown, Optional: true},
				{Name: "dwClsContext", Type: u32},
				{Name: "riid", Type: guidPtr},
				{Name: "ppv", Type: ppv, Output: true},
			},
		},
		{
			Name:   "Seek",
			Return: metadata.Status("HRESULT"),
			Params: []metadata.ParameterDescriptor{
				{Name: "offset", Type: metadata.Scalar(metadata.KindInt64)},
			},
		},
		{Name: "GetClassID", Return: metadata.Scalar(metadata.KindGUID)},
		{Name: "GetName", Return: metadata.Scalar(metadata.KindString)},
	}
	for _, d := range ds {
		d.Scope = "OLE32"
		d.Namespace = "Windows.Win32.System.Com"
	}
	return ds
}

func TestCheckPackage_GeneratedFiles(t *testing.T) {
	if testing.Short() {
		t.Skip("type-checks generated code with the go command")
	}

	// The package must live inside this module to resolve the runtime import.
	dir, err := os.MkdirTemp(".", "gencheck")
	if err != nil {
		t.Fatalf("MkdirTemp: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })

	gc := bindgen.NewContext("Windows.Win32.System.Com", "github.com/chazu/bindgen/cmd/bindgen/"+filepath.Base(dir))
	gc.Features = bindgen.NoFeatures{}
	r, err := bindgen.GenerateAll(context.Background(), gc, checkDescriptors(), bindgen.Options{})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(r.Skipped) > 0 {
		t.Fatalf("skipped: %v", r.Err())
	}
	if err := bindgen.WriteFragments(dir, r.Fragments); err != nil {
		t.Fatalf("WriteFragments: %v", err)
	}

	all := []string{"CoCreateInstance", "CoInitializeEx", "GetClassID", "GetName", "Seek"}
	tests := []struct {
		goos, goarch string
		want         []string
	}{
		{"linux", "amd64", all},
		{"windows", "amd64", all},
		{"windows", "386", []string{"CoCreateInstance", "CoInitializeEx", "GetClassID", "GetName"}},
	}
	for _, tt := range tests {
		t.Run(tt.goos+"_"+tt.goarch, func(t *testing.T) {
			res, err := checkPackage(dir, tt.goos, tt.goarch, "", false)
			if err != nil {
				t.Fatalf("checkPackage: %v", err)
			}
			for _, e := range res.errs {
				t.Errorf("type error: %v", e)
			}
			if !slices.Equal(res.funcs, tt.want) {
				t.Errorf("exported functions = %v, want %v", res.funcs, tt.want)
			}
		})
	}
}
