package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/chazu/bindgen/bindgen"
	"github.com/chazu/bindgen/manifest"
	"github.com/chazu/bindgen/metadata"
)

// handleClassifyCommand processes the `bindgen classify` subcommand. It prints
// one row per descriptor and marks status-returning functions that need
// curation.
func handleClassifyCommand(args []string) error {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	ambiguousOnly := fs.Bool("ambiguous", false, "Only list descriptors that need curation")
	fs.Parse(args)

	files := fs.Args()
	var gc *bindgen.GenerationContext
	if m, err := manifest.FindAndLoad("."); err != nil {
		return fmt.Errorf("loading manifest: %w", err)
	} else if m != nil {
		gc = m.Context()
		if len(files) == 0 {
			files = m.SourcePaths()
		}
	}
	if len(files) == 0 {
		return errors.New("no descriptor files given")
	}

	ds, namespace, err := loadDescriptors(files)
	if err != nil {
		return err
	}
	if gc == nil {
		gc = bindgen.NewContext(namespace, "example.com/unused")
	}
	return printClassification(os.Stdout, ds, gc, *ambiguousOnly)
}

func printClassification(out io.Writer, ds []*metadata.MethodDescriptor, gc *bindgen.GenerationContext, ambiguousOnly bool) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FUNCTION\tKIND\tLINK\tGATE\tNOTE")
	for _, d := range ds {
		ambiguous := bindgen.Ambiguous(d)
		if ambiguousOnly && !ambiguous {
			continue
		}

		kind := bindgen.Classify(d)
		target, gate := "-", "-"
		var notes []string
		if link, err := bindgen.ResolveLinkage(d, gc); err != nil {
			notes = append(notes, err.Error())
		} else {
			target = link.Target
			if link.Static {
				target += " (static)"
			}
			gate = link.Gate().String()
		}
		if ambiguous {
			notes = append(notes, "ambiguous: status return kept as PreserveSig")
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", d.Name, kind, target, gate, strings.Join(notes, "; "))
	}
	return w.Flush()
}
