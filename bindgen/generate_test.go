package bindgen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/chazu/bindgen/metadata"
)

type memoryCache struct {
	mu     sync.Mutex
	frags  map[string]*Fragment
	stores int
}

func (m *memoryCache) Lookup(d *metadata.MethodDescriptor, c *GenerationContext) (*Fragment, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fr, ok := m.frags[c.Namespace+"."+d.Name]
	return fr, ok, nil
}

func (m *memoryCache) Store(d *metadata.MethodDescriptor, c *GenerationContext, fr *Fragment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.frags == nil {
		m.frags = make(map[string]*Fragment)
	}
	m.frags[c.Namespace+"."+d.Name] = fr
	m.stores++
	return nil
}

func batch() []*metadata.MethodDescriptor {
	orphan := method("Orphan", hresult)
	orphan.Architecture = "sparc"
	return []*metadata.MethodDescriptor{
		method("CoInitializeEx", hresult, in("dwCoInit", u32)),
		orphan,
		method("CoGetCurrentProcess", u32),
		method("Scale", metadata.Scalar(metadata.KindFloat32), in("x", metadata.Scalar(metadata.KindFloat32))),
		method("CoUninitialize", metadata.Void()),
	}
}

func TestGenerateAll_OrderAndSkips(t *testing.T) {
	r, err := GenerateAll(context.Background(), comCtx(), batch(), Options{Jobs: 2})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}

	var names []string
	for _, fr := range r.Fragments {
		names = append(names, fr.Name)
	}
	want := []string{"CoInitializeEx", "CoGetCurrentProcess", "CoUninitialize"}
	if len(names) != len(want) {
		t.Fatalf("fragments = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("fragment %d = %s, want %s", i, names[i], want[i])
		}
	}

	if len(r.Skipped) != 2 || r.Skipped[0].Name != "Orphan" || r.Skipped[1].Name != "Scale" {
		t.Fatalf("skipped = %+v", r.Skipped)
	}
	if !errors.Is(r.Skipped[0].Err, &Error{Phase: PhaseLink, Kind: KindUnknownArch}) {
		t.Errorf("Orphan: %v", r.Skipped[0].Err)
	}
	if !errors.Is(r.Err(), &Error{Phase: PhaseEmit, Kind: KindUnsupportedABI}) {
		t.Errorf("Report.Err should include the float rejection: %v", r.Err())
	}
}

func TestGenerateAll_Cache(t *testing.T) {
	cache := &memoryCache{}
	opts := Options{Cache: cache}

	first, err := GenerateAll(context.Background(), comCtx(), batch(), opts)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if first.Cached != 0 || cache.stores != len(first.Fragments) {
		t.Errorf("first run: cached=%d stores=%d", first.Cached, cache.stores)
	}

	second, err := GenerateAll(context.Background(), comCtx(), batch(), opts)
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if second.Cached != len(second.Fragments) {
		t.Errorf("second run: cached=%d of %d", second.Cached, len(second.Fragments))
	}
	// Failures are not cached.
	if len(second.Skipped) != 2 {
		t.Errorf("second run skipped %d", len(second.Skipped))
	}
}

func TestGenerateAll_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := GenerateAll(ctx, comCtx(), batch(), Options{}); !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestWriteFragments(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "com")

	r, err := GenerateAll(context.Background(), comCtx(), batch(), Options{})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	keep := filepath.Join(dir, "doc.go")
	if err := os.WriteFile(keep, []byte("package com\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFragments(dir, r.Fragments); err != nil {
		t.Fatalf("WriteFragments: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if want := 2*len(r.Fragments) + 1; len(entries) != want {
		t.Errorf("%d files written, want %d", len(entries), want)
	}
	got, err := os.ReadFile(filepath.Join(dir, "coinitializeex_windows.go"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != string(r.Fragments[0].Supported.Source) {
		t.Error("written file differs from fragment source")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Errorf("unrelated file removed: %v", err)
	}
}

func TestGenerateAll_FileNameClash(t *testing.T) {
	ds := []*metadata.MethodDescriptor{
		method("GetValue", hresult, in("dwFlags", u32)),
		method("GETVALUE", hresult, in("dwFlags", u32)),
	}
	r, err := GenerateAll(context.Background(), comCtx(), ds, Options{})
	if err != nil {
		t.Fatalf("GenerateAll: %v", err)
	}
	if len(r.Fragments) != 1 || r.Fragments[0].Name != "GetValue" {
		t.Fatalf("fragments = %+v, want GetValue only", r.Fragments)
	}
	if len(r.Skipped) != 1 || r.Skipped[0].Name != "GETVALUE" {
		t.Fatalf("skipped = %+v", r.Skipped)
	}
	if !errors.Is(r.Skipped[0].Err, &Error{Phase: PhaseEmit, Kind: KindInvalidDescriptor}) {
		t.Errorf("clash error = %v", r.Skipped[0].Err)
	}
}
