package manifest

import (
	"path/filepath"
	"slices"
	"testing"
)

func TestLockFileRoundTrip(t *testing.T) {
	dir := t.TempDir()
	lockPath := filepath.Join(dir, ".bindgen", "lock.toml")

	lf := &LockFile{
		Files: []LockedFile{
			{Name: "cocreateinstance_windows.go", Function: "CoCreateInstance", Kind: "Query", SHA256: "abc123"},
			{Name: "cocreateinstance_other.go", Function: "CoCreateInstance", Kind: "Query", SHA256: "def456"},
		},
	}

	if err := WriteLock(lockPath, lf); err != nil {
		t.Fatalf("WriteLock failed: %v", err)
	}

	loaded, err := ReadLock(lockPath)
	if err != nil {
		t.Fatalf("ReadLock failed: %v", err)
	}

	if len(loaded.Files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(loaded.Files))
	}
	if loaded.Files[0].Function != "CoCreateInstance" {
		t.Errorf("file[0].Function = %q, want CoCreateInstance", loaded.Files[0].Function)
	}
	if loaded.Files[1].SHA256 != "def456" {
		t.Errorf("file[1].SHA256 = %q, want def456", loaded.Files[1].SHA256)
	}

	found := loaded.FindFile("cocreateinstance_other.go")
	if found == nil || found.Kind != "Query" {
		t.Errorf("FindFile = %v, want Query entry", found)
	}
	if loaded.FindFile("nonexistent.go") != nil {
		t.Error("FindFile(nonexistent.go) should be nil")
	}
}

func TestReadLockNotFound(t *testing.T) {
	lf, err := ReadLock("/nonexistent/path/lock.toml")
	if err != nil {
		t.Errorf("ReadLock should return nil,nil for missing file, got err: %v", err)
	}
	if lf != nil {
		t.Errorf("ReadLock should return nil for missing file, got %v", lf)
	}
}

func TestLockFileStale(t *testing.T) {
	prev := &LockFile{Files: []LockedFile{{Name: "a_windows.go"}, {Name: "b_windows.go"}, {Name: "c_windows.go"}}}
	next := &LockFile{Files: []LockedFile{{Name: "b_windows.go"}}}

	if got, want := prev.Stale(next), []string{"a_windows.go", "c_windows.go"}; !slices.Equal(got, want) {
		t.Errorf("Stale = %v, want %v", got, want)
	}
	var none *LockFile
	if got := none.Stale(next); got != nil {
		t.Errorf("nil lock Stale = %v", got)
	}
}
