package bindgen

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/chazu/bindgen/metadata"
)

// Generate runs the whole pipeline for one descriptor. It is a pure function
// of d and c.
func Generate(d *metadata.MethodDescriptor, c *GenerationContext) (*Fragment, error) {
	kind := Classify(d)
	log.Debugf("%s: %s", d.Name, kind)
	if Ambiguous(d) {
		log.Debugf("%s: status return with a trailing output slot, kept as %s", d.Name, kind)
	}

	link, err := ResolveLinkage(d, c)
	if err != nil {
		return nil, err
	}
	m, err := MapSignature(d, kind, c)
	if err != nil {
		return nil, err
	}
	return Emit(d, m, link, c)
}

// FragmentCache stores fragments by descriptor and context content.
type FragmentCache interface {
	Lookup(d *metadata.MethodDescriptor, c *GenerationContext) (*Fragment, bool, error)
	Store(d *metadata.MethodDescriptor, c *GenerationContext, fr *Fragment) error
}

// Options controls a batch run.
type Options struct {
	// Jobs bounds the number of concurrent generators. Zero or less means
	// one per descriptor.
	Jobs  int
	Cache FragmentCache
}

// Skipped is a descriptor that could not be generated.
type Skipped struct {
	Name string
	Err  error
}

// Report is the outcome of a batch run. Fragments are in input order.
type Report struct {
	Fragments []*Fragment
	Skipped   []Skipped
	Cached    int
}

// GenerateAll generates every descriptor concurrently. A descriptor that
// fails with an *Error, or whose files clash with an earlier descriptor's, is
// skipped and reported; the batch only fails when ctx is cancelled.
func GenerateAll(ctx context.Context, c *GenerationContext, ds []*metadata.MethodDescriptor, opts Options) (*Report, error) {
	frags := make([]*Fragment, len(ds))
	errs := make([]error, len(ds))
	hits := make([]bool, len(ds))

	g, ctx := errgroup.WithContext(ctx)
	if opts.Jobs > 0 {
		g.SetLimit(opts.Jobs)
	}
	for i, d := range ds {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			frags[i], hits[i], errs[i] = generateCached(d, c, opts.Cache)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	r := &Report{}
	files := make(map[string]string)
	for i, fr := range frags {
		if errs[i] == nil {
			errs[i] = claimFiles(files, fr)
		}
		if errs[i] != nil {
			log.Warningf("skipping %s: %v", ds[i].Name, errs[i])
			r.Skipped = append(r.Skipped, Skipped{Name: ds[i].Name, Err: errs[i]})
			continue
		}
		if hits[i] {
			r.Cached++
		}
		r.Fragments = append(r.Fragments, fr)
	}
	log.Infof("generated %d of %d functions for %s (%d cached, %d skipped)",
		len(r.Fragments), len(ds), c.Namespace, r.Cached, len(r.Skipped))
	return r, nil
}

// claimFiles records the file names of fr in files, keyed to the function
// that first produced them. File names are case-folded, so Foo and FOO clash.
func claimFiles(files map[string]string, fr *Fragment) error {
	for _, f := range fr.Files() {
		if owner, ok := files[f.Name]; ok {
			return newError(PhaseEmit, KindInvalidDescriptor, fr.Name,
				"file %s is already generated for %s", f.Name, owner)
		}
	}
	for _, f := range fr.Files() {
		files[f.Name] = fr.Name
	}
	return nil
}

func generateCached(d *metadata.MethodDescriptor, c *GenerationContext, cache FragmentCache) (*Fragment, bool, error) {
	if cache != nil {
		fr, ok, err := cache.Lookup(d, c)
		if err != nil {
			log.Warningf("cache lookup for %s: %v", d.Name, err)
		} else if ok {
			return fr, true, nil
		}
	}

	fr, err := Generate(d, c)
	if err != nil {
		return nil, false, err
	}
	if cache != nil {
		if err := cache.Store(d, c, fr); err != nil {
			log.Warningf("cache store for %s: %v", d.Name, err)
		}
	}
	return fr, false, nil
}

// Err joins the errors of every skipped descriptor, or returns nil.
func (r *Report) Err() error {
	errs := make([]error, len(r.Skipped))
	for i, s := range r.Skipped {
		errs[i] = s.Err
	}
	return errors.Join(errs...)
}

// WriteFragments writes every file of frags into dir, creating it if needed.
// Files not produced by frags are left alone.
func WriteFragments(dir string, frags []*Fragment) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, fr := range frags {
		for _, f := range fr.Files() {
			path := filepath.Join(dir, f.Name)
			if err := os.WriteFile(path, f.Source, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
		}
	}
	return nil
}
