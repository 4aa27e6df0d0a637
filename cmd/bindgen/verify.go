package main

import (
	"flag"
	"fmt"
	"go/types"
	"os"
	"strings"

	"golang.org/x/tools/go/packages"
)

// handleVerifyCommand processes the `bindgen verify` subcommand. It type-checks
// a generated package once per target platform, so both the native files and
// the fail-fast files are compiled.
func handleVerifyCommand(args []string) error {
	fs := flag.NewFlagSet("verify", flag.ExitOnError)
	tags := fs.String("tags", "", "Comma-separated feature tags to enable")
	platforms := fs.String("platforms", "windows/amd64,windows/arm64,linux/amd64", "Comma-separated GOOS/GOARCH pairs")
	cgo := fs.Bool("cgo", true, "Enable cgo so statically linked wrappers are checked")
	fs.Parse(args)

	dir := "."
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	failed := 0
	for _, p := range strings.Split(*platforms, ",") {
		goos, goarch, ok := strings.Cut(strings.TrimSpace(p), "/")
		if !ok {
			return fmt.Errorf("invalid platform %q, want GOOS/GOARCH", p)
		}
		res, err := checkPackage(dir, goos, goarch, *tags, *cgo)
		if err != nil {
			return err
		}
		for _, e := range res.errs {
			fmt.Fprintf(os.Stderr, "%s/%s: %v\n", goos, goarch, e)
		}
		if len(res.errs) > 0 {
			failed++
		} else {
			fmt.Printf("ok  %s/%s\t%s\t%d function(s)\n", goos, goarch, res.name, len(res.funcs))
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d platform(s) failed to type-check", failed)
	}
	return nil
}

type checkResult struct {
	name  string
	funcs []string
	errs  []packages.Error
}

func checkPackage(dir, goos, goarch, tags string, cgo bool) (*checkResult, error) {
	cgoEnabled := "CGO_ENABLED=0"
	if cgo {
		cgoEnabled = "CGO_ENABLED=1"
	}
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedSyntax,
		Dir:  dir,
		Env:  append(os.Environ(), "GOOS="+goos, "GOARCH="+goarch, cgoEnabled),
	}
	if tags != "" {
		cfg.BuildFlags = []string{"-tags=" + tags}
	}

	pkgs, err := packages.Load(cfg, ".")
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", dir, err)
	}
	if len(pkgs) == 0 {
		return nil, fmt.Errorf("no packages found in %s", dir)
	}
	res := &checkResult{name: pkgs[0].Name}
	packages.Visit(pkgs, nil, func(p *packages.Package) {
		res.errs = append(res.errs, p.Errors...)
	})
	if pkgs[0].Types != nil {
		res.funcs = exportedFuncs(pkgs[0].Types.Scope())
	}
	return res, nil
}

// exportedFuncs lists the exported functions of a package scope in name order.
func exportedFuncs(scope *types.Scope) []string {
	var names []string
	for _, name := range scope.Names() {
		if fn, ok := scope.Lookup(name).(*types.Func); ok && fn.Exported() {
			names = append(names, name)
		}
	}
	return names
}
