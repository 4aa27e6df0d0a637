package bindgen

import (
	"go/token"
	"strings"
)

// predeclared identifiers that generated parameter names must not shadow.
var predeclared = map[string]bool{
	"bool": true, "byte": true, "complex64": true, "complex128": true,
	"error": true, "float32": true, "float64": true, "int": true,
	"int8": true, "int16": true, "int32": true, "int64": true,
	"rune": true, "string": true, "uint": true, "uint8": true,
	"uint16": true, "uint32": true, "uint64": true, "uintptr": true,
	"any": true, "comparable": true, "true": true, "false": true,
	"nil": true, "iota": true, "append": true, "cap": true, "len": true,
	"make": true, "new": true, "panic": true, "copy": true,
}

// packages imported by generated files.
var importedNames = map[string]bool{
	"unsafe": true, "syscall": true, "windows": true, "winrt": true, "C": true,
}

// generated locals and type parameters occupy these names.
var generatedNames = []string{"result__", "raw__", "hr__", "ret__", "r0", "r1", "T"}

// newNameSet returns the names a generated function already uses.
func newNameSet() map[string]bool {
	taken := make(map[string]bool)
	for _, n := range generatedNames {
		taken[n] = true
	}
	return taken
}

// goParamName returns a Go-safe spelling of a native parameter name.
// Keywords, predeclared identifiers, imported package names and names
// already taken get trailing underscores.
func goParamName(name string, taken map[string]bool) string {
	if name == "" {
		name = "p"
	}
	for token.IsKeyword(name) || predeclared[name] || importedNames[name] || taken[name] {
		name += "_"
	}
	taken[name] = true
	return name
}

// NamespacePath converts a metadata namespace to an import path suffix,
// dropping root.
// "Windows.Win32.Foundation" -> "win32/foundation"
func NamespacePath(ns, root string) string {
	if root != "" {
		ns = strings.TrimPrefix(ns, root)
	}
	return strings.ToLower(strings.ReplaceAll(ns, ".", "/"))
}

// packageName returns the last element of an import path.
func packageName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		path = path[i+1:]
	}
	return strings.ReplaceAll(path, "-", "_")
}

// fileBase returns the file name stem for a generated function.
func fileBase(name string) string {
	return strings.ToLower(name)
}
