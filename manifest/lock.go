package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LockFile records the files written by the last generate run, so the next
// run can remove output for functions that no longer exist.
type LockFile struct {
	Files []LockedFile `toml:"file"`
}

// LockedFile is one generated file.
type LockedFile struct {
	Name     string `toml:"name"`
	Function string `toml:"function"`
	Kind     string `toml:"kind"`
	SHA256   string `toml:"sha256"`
}

// ReadLock reads a lock file. It returns nil, nil when the file does not exist.
func ReadLock(path string) (*LockFile, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var lf LockFile
	if err := toml.Unmarshal(data, &lf); err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}
	return &lf, nil
}

// WriteLock writes lf to path, creating the parent directory.
func WriteLock(path string, lf *LockFile) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := toml.NewEncoder(f).Encode(lf); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// FindFile returns the entry for a generated file name, or nil.
func (lf *LockFile) FindFile(name string) *LockedFile {
	for i := range lf.Files {
		if lf.Files[i].Name == name {
			return &lf.Files[i]
		}
	}
	return nil
}

// Stale returns the files recorded in lf that are absent from next.
func (lf *LockFile) Stale(next *LockFile) []string {
	if lf == nil {
		return nil
	}
	var stale []string
	for _, f := range lf.Files {
		if next.FindFile(f.Name) == nil {
			stale = append(stale, f.Name)
		}
	}
	return stale
}
