package bindgen

import (
	"go/build/constraint"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/chazu/bindgen/metadata"
)

// LinkSpec says where a native function comes from and where its wrapper
// compiles.
type LinkSpec struct {
	Target       string
	Static       bool
	Umbrella     bool     // Target is the umbrella default library
	Scope        string   // lower-cased owning library, if known
	Architecture string   // GOARCH; empty compiles for every architecture
	Excluded     []string // GOARCH values the wrapper never compiles for
	Features     []string // build tags, all required
}

// archNames maps metadata and GOARCH spellings to GOARCH.
var archNames = map[string]string{
	"x86":   "386",
	"386":   "386",
	"x64":   "amd64",
	"amd64": "amd64",
	"arm64": "arm64",
}

// ResolveLinkage determines the link target and the compilation gates of d.
func ResolveLinkage(d *metadata.MethodDescriptor, c *GenerationContext) (LinkSpec, error) {
	var ls LinkSpec
	if d.Scope != "" {
		// A Caser is stateful, so each call gets its own.
		ls.Scope = cases.Lower(language.Und).String(d.Scope)
	}

	switch {
	case d.StaticLibrary != "":
		ls.Target = d.StaticLibrary
		ls.Static = true
	case c.umbrella():
		ls.Target = c.DefaultLibrary
		ls.Umbrella = true
	case ls.Scope != "":
		ls.Target = ls.Scope
	default:
		return ls, newError(PhaseLink, KindUnresolvedLink, d.Name,
			"no static library and no owning scope")
	}

	if d.Architecture != "" {
		arch, ok := archNames[strings.ToLower(d.Architecture)]
		if !ok {
			return ls, newError(PhaseLink, KindUnknownArch, d.Name,
				"unknown architecture %q", d.Architecture)
		}
		ls.Architecture = arch
	}

	ls.Features = methodFeatures(d, c)
	for _, f := range ls.Features {
		if !validTag(f) {
			return ls, newError(PhaseLink, KindInvalidDescriptor, d.Name,
				"feature %q is not a valid build tag", f)
		}
	}
	return ls, nil
}

// DLL returns the file name loaded for a dynamic target. The umbrella
// library is an import library only, so umbrella functions load from their
// owning scope.
func (l LinkSpec) DLL() string {
	lib := l.Target
	if l.Umbrella && l.Scope != "" {
		lib = l.Scope
	}
	if strings.Contains(lib, ".") {
		return lib
	}
	return lib + ".dll"
}

// Gate returns the build constraint of the supported (native) file.
func (l LinkSpec) Gate() constraint.Expr {
	return l.gate(true)
}

// StubGate returns the build constraint of the fail-fast file. It shares the
// architecture and feature gates, so the function exists in the same builds,
// and differs only in the operating system.
func (l LinkSpec) StubGate() constraint.Expr {
	return l.gate(false)
}

func (l LinkSpec) gate(native bool) constraint.Expr {
	var e constraint.Expr = &constraint.TagExpr{Tag: "windows"}
	if !native {
		e = &constraint.NotExpr{X: e}
	}
	if l.Architecture != "" {
		e = &constraint.AndExpr{X: e, Y: &constraint.TagExpr{Tag: l.Architecture}}
	}
	for _, a := range l.Excluded {
		e = &constraint.AndExpr{X: e, Y: &constraint.NotExpr{X: &constraint.TagExpr{Tag: a}}}
	}
	for _, f := range l.Features {
		e = &constraint.AndExpr{X: e, Y: &constraint.TagExpr{Tag: f}}
	}
	return e
}

// buildLine renders a //go:build line.
func buildLine(e constraint.Expr) string {
	return "//go:build " + e.String()
}

func validTag(tag string) bool {
	if tag == "" {
		return false
	}
	for _, r := range tag {
		if !(r == '_' || r == '.' || r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z') {
			return false
		}
	}
	return true
}
