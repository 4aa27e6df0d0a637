package bindgen

import (
	"bytes"
	"fmt"
	"go/ast"
	"go/build/constraint"
	"go/parser"
	"go/printer"
	"go/scanner"
	"go/token"
)

// ValidationError is a problem found in emitted source.
type ValidationError struct {
	File     string
	Line     int
	Column   int
	Function string
	Message  string
}

func (e ValidationError) Error() string {
	if e.Function != "" {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.File, e.Line, e.Column, e.Function, e.Message)
	}
	return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, e.Message)
}

// Validate parses both files of fr in memory and checks that each carries a
// build constraint and that both declare the same public signature. It does
// not type-check; see the verify command for that.
func (fr *Fragment) Validate() []ValidationError {
	var errs []ValidationError
	sigs := make([]string, 0, 2)
	for _, f := range fr.Files() {
		fset := token.NewFileSet()
		file, ferrs := parseSource(fset, f.Name, f.Source)
		if len(ferrs) > 0 {
			errs = append(errs, ferrs...)
			continue
		}
		errs = append(errs, checkConstraint(fset, f, file)...)

		fn := findFunc(file, fr.Name)
		if fn == nil {
			errs = append(errs, ValidationError{File: f.Name, Line: 1, Column: 1,
				Message: fmt.Sprintf("no declaration of %s", fr.Name)})
			continue
		}
		if fn.Doc == nil {
			pos := fset.Position(fn.Pos())
			errs = append(errs, ValidationError{File: f.Name, Line: pos.Line, Column: pos.Column,
				Function: fr.Name, Message: "missing doc comment"})
		}
		sigs = append(sigs, signatureText(fset, fn))
	}
	if len(sigs) == 2 && sigs[0] != sigs[1] {
		errs = append(errs, ValidationError{File: fr.Unsupported.Name, Line: 1, Column: 1, Function: fr.Name,
			Message: fmt.Sprintf("signature %q differs from %q", sigs[1], sigs[0])})
	}
	return errs
}

// ValidateSource parses one emitted file and reports syntax errors.
func ValidateSource(name string, src []byte) []ValidationError {
	_, errs := parseSource(token.NewFileSet(), name, src)
	return errs
}

func parseSource(fset *token.FileSet, name string, src []byte) (*ast.File, []ValidationError) {
	file, err := parser.ParseFile(fset, name, src, parser.ParseComments|parser.AllErrors)
	if err == nil {
		return file, nil
	}
	var errs []ValidationError
	if list, ok := err.(scanner.ErrorList); ok {
		for _, e := range list {
			errs = append(errs, ValidationError{File: name, Line: e.Pos.Line, Column: e.Pos.Column, Message: e.Msg})
		}
		return nil, errs
	}
	return nil, []ValidationError{{File: name, Line: 1, Column: 1, Message: err.Error()}}
}

func checkConstraint(fset *token.FileSet, f File, file *ast.File) []ValidationError {
	for _, group := range file.Comments {
		if group.Pos() >= file.Package {
			break
		}
		for _, c := range group.List {
			if !constraint.IsGoBuild(c.Text) {
				continue
			}
			if _, err := constraint.Parse(c.Text); err != nil {
				pos := fset.Position(c.Pos())
				return []ValidationError{{File: f.Name, Line: pos.Line, Column: pos.Column, Message: err.Error()}}
			}
			if c.Text != f.Build {
				pos := fset.Position(c.Pos())
				return []ValidationError{{File: f.Name, Line: pos.Line, Column: pos.Column,
					Message: fmt.Sprintf("build line %q, want %q", c.Text, f.Build)}}
			}
			return nil
		}
	}
	return []ValidationError{{File: f.Name, Line: 1, Column: 1, Message: "missing //go:build line"}}
}

func findFunc(file *ast.File, name string) *ast.FuncDecl {
	for _, decl := range file.Decls {
		if fn, ok := decl.(*ast.FuncDecl); ok && fn.Recv == nil && fn.Name.Name == name {
			return fn
		}
	}
	return nil
}

func signatureText(fset *token.FileSet, fn *ast.FuncDecl) string {
	var buf bytes.Buffer
	printer.Fprint(&buf, fset, fn.Type)
	return buf.String()
}
