package bindgen

import (
	"sort"
	"strings"

	"github.com/chazu/bindgen/metadata"
)

// Default values for a GenerationContext.
const (
	DefaultUmbrellaPrefix = "Windows."
	DefaultLibrary        = "windows"
	DefaultRuntimePath    = "github.com/chazu/bindgen/winrt"
)

// GenerationContext is the read-only environment of one generation run. It
// may be shared by concurrent generators.
type GenerationContext struct {
	// Namespace is the metadata namespace being generated.
	Namespace string
	// UmbrellaPrefix marks namespaces that link against DefaultLibrary.
	// An empty prefix disables the umbrella rule.
	UmbrellaPrefix string
	DefaultLibrary string

	// Package and PackagePath name the Go package that receives the output.
	Package     string
	PackagePath string
	// TypesModule is the import path root for types of other namespaces.
	// When empty, every named type is assumed to live in the output package.
	TypesModule string
	RuntimePath string

	Features FeatureOracle
}

// NewContext returns a context with the default umbrella rule, runtime path
// and namespace-derived feature flags.
func NewContext(namespace, packagePath string) *GenerationContext {
	return &GenerationContext{
		Namespace:      namespace,
		UmbrellaPrefix: DefaultUmbrellaPrefix,
		DefaultLibrary: DefaultLibrary,
		Package:        packageName(packagePath),
		PackagePath:    packagePath,
		RuntimePath:    DefaultRuntimePath,
		Features:       NamespaceFeatures{Root: DefaultUmbrellaPrefix},
	}
}

// umbrella reports whether the namespace links against the default library.
func (c *GenerationContext) umbrella() bool {
	return c.UmbrellaPrefix != "" && strings.HasPrefix(c.Namespace, c.UmbrellaPrefix)
}

// typesPath returns the Go import path holding types of namespace ns.
func (c *GenerationContext) typesPath(ns string) string {
	if ns == "" || ns == c.Namespace || c.TypesModule == "" {
		return c.PackagePath
	}
	return c.TypesModule + "/" + NamespacePath(ns, c.UmbrellaPrefix)
}

// FeatureOracle reports the capability flags a type requires. Flags become
// build tags on the generated files.
type FeatureOracle interface {
	Features(t metadata.TypeRef) []string
}

// NamespaceFeatures derives one flag per namespace, e.g.
// "Windows.Win32.Foundation" -> "Win32_Foundation".
type NamespaceFeatures struct {
	Root string
}

// Features implements FeatureOracle.
func (o NamespaceFeatures) Features(t metadata.TypeRef) []string {
	if t.Kind == metadata.KindPointer && t.Elem != nil {
		return o.Features(*t.Elem)
	}
	if t.Namespace == "" {
		return nil
	}
	return []string{o.Feature(t.Namespace)}
}

// Feature returns the flag for namespace ns.
func (o NamespaceFeatures) Feature(ns string) string {
	return strings.ReplaceAll(strings.TrimPrefix(ns, o.Root), ".", "_")
}

// NoFeatures is an oracle that never gates.
type NoFeatures struct{}

// Features implements FeatureOracle.
func (NoFeatures) Features(metadata.TypeRef) []string { return nil }

// methodFeatures collects the flags of every parameter and the return type,
// minus the flag of the namespace being generated.
func methodFeatures(d *metadata.MethodDescriptor, c *GenerationContext) []string {
	set := make(map[string]bool)
	for _, f := range d.Features {
		set[f] = true
	}
	if c.Features != nil {
		for _, p := range d.Params {
			for _, f := range c.Features.Features(p.Type) {
				set[f] = true
			}
		}
		for _, f := range c.Features.Features(d.Return) {
			set[f] = true
		}
		for _, f := range c.Features.Features(metadata.TypeRef{Namespace: c.Namespace}) {
			delete(set, f)
		}
	}

	out := make([]string, 0, len(set))
	for f := range set {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
