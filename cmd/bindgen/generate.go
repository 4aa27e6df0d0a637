package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chazu/bindgen/bindgen"
	"github.com/chazu/bindgen/cache"
	"github.com/chazu/bindgen/manifest"
	"github.com/chazu/bindgen/metadata"
)

// handleGenerateCommand processes the `bindgen generate` subcommand.
// Usage:
//
//	bindgen generate                                # sources from bindgen.toml
//	bindgen generate -pkg example.com/com com.toml  # ad-hoc, no manifest
//	bindgen generate -o ./com -no-cache
func handleGenerateCommand(args []string) error {
	fs := flag.NewFlagSet("generate", flag.ExitOnError)
	outputDir := fs.String("o", "", "Output directory")
	pkgPath := fs.String("pkg", "", "Import path of the generated package")
	jobs := fs.Int("j", 0, "Concurrent generators (default from bindgen.toml or GOMAXPROCS)")
	noCache := fs.Bool("no-cache", false, "Regenerate every function")
	strict := fs.Bool("strict", false, "Fail when any descriptor is skipped")
	fs.Parse(args)

	job, err := loadJob(fs.Args(), *pkgPath)
	if err != nil {
		return err
	}
	if *outputDir != "" {
		job.outDir = *outputDir
	}
	if *jobs > 0 {
		job.opts.Jobs = *jobs
	}
	if *noCache {
		job.cachePath = ""
	}

	if job.cachePath != "" {
		c, err := cache.Open(job.cachePath)
		if err != nil {
			return err
		}
		defer c.Close()
		job.opts.Cache = c
	}

	report, err := bindgen.GenerateAll(context.Background(), job.ctx, job.descriptors, job.opts)
	if err != nil {
		return err
	}
	if err := bindgen.WriteFragments(job.outDir, report.Fragments); err != nil {
		return err
	}
	if err := updateLock(job, report.Fragments); err != nil {
		return err
	}

	for _, s := range report.Skipped {
		fmt.Fprintf(os.Stderr, "skipped %s: %v\n", s.Name, s.Err)
	}
	fmt.Printf("Generated %d function(s) into %s (%d cached, %d skipped)\n",
		len(report.Fragments), job.outDir, report.Cached, len(report.Skipped))

	if *strict && len(report.Skipped) > 0 {
		return fmt.Errorf("%d descriptor(s) skipped: %w", len(report.Skipped), report.Err())
	}
	return nil
}

// generateJob is everything one run needs, from a manifest or from flags.
type generateJob struct {
	ctx         *bindgen.GenerationContext
	descriptors []*metadata.MethodDescriptor
	opts        bindgen.Options
	outDir      string
	cachePath   string
	lockPath    string
}

func loadJob(files []string, pkgPath string) (*generateJob, error) {
	if len(files) > 0 && pkgPath != "" {
		return adHocJob(files, pkgPath)
	}

	m, err := manifest.FindAndLoad(".")
	if err != nil {
		return nil, fmt.Errorf("loading manifest: %w", err)
	}
	if m == nil {
		return nil, errors.New("no bindgen.toml found; pass -pkg and descriptor files")
	}
	if len(files) == 0 {
		files = m.SourcePaths()
	}
	if len(files) == 0 {
		return nil, errors.New("no [source] files configured in bindgen.toml")
	}

	ds, _, err := loadDescriptors(files)
	if err != nil {
		return nil, err
	}
	job := &generateJob{
		ctx:         m.Context(),
		descriptors: ds,
		opts:        bindgen.Options{Jobs: m.Generate.Jobs},
		outDir:      m.OutputDir(),
		lockPath:    m.LockFilePath(),
	}
	if !m.Cache.Disabled {
		job.cachePath = m.CachePath()
	}
	return job, nil
}

func adHocJob(files []string, pkgPath string) (*generateJob, error) {
	ds, namespace, err := loadDescriptors(files)
	if err != nil {
		return nil, err
	}
	if namespace == "" {
		return nil, errors.New("descriptor files declare no namespace")
	}
	outDir := filepath.Base(pkgPath)
	return &generateJob{
		ctx:         bindgen.NewContext(namespace, pkgPath),
		descriptors: ds,
		outDir:      outDir,
		lockPath:    filepath.Join(outDir, ".bindgen", "lock.toml"),
	}, nil
}

// loadDescriptors reads every file and returns the descriptors in file order
// with the first declared namespace.
func loadDescriptors(files []string) ([]*metadata.MethodDescriptor, string, error) {
	var ds []*metadata.MethodDescriptor
	var namespace string
	for _, path := range files {
		f, err := metadata.LoadFile(path)
		if err != nil {
			return nil, "", err
		}
		if namespace == "" {
			namespace = f.Namespace
		}
		for i := range f.Functions {
			ds = append(ds, &f.Functions[i])
		}
	}
	return ds, namespace, nil
}

// updateLock records the files just written and removes files a previous run
// wrote for functions that are gone.
func updateLock(job *generateJob, frags []*bindgen.Fragment) error {
	prev, err := manifest.ReadLock(job.lockPath)
	if err != nil {
		return fmt.Errorf("reading lock file: %w", err)
	}

	next := &manifest.LockFile{}
	for _, fr := range frags {
		for _, f := range fr.Files() {
			sum := sha256.Sum256(f.Source)
			next.Files = append(next.Files, manifest.LockedFile{
				Name:     f.Name,
				Function: fr.Name,
				Kind:     fr.Kind.String(),
				SHA256:   hex.EncodeToString(sum[:]),
			})
		}
	}

	for _, name := range prev.Stale(next) {
		path := filepath.Join(job.outDir, name)
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("removing stale %s: %w", path, err)
		}
	}
	return manifest.WriteLock(job.lockPath, next)
}
