package engine

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/hvlabs/apibind/internal/core"
	"github.com/hvlabs/apibind/internal/gen"
	"github.com/hvlabs/apibind/internal/parse"
)

// Generate runs one full scan-and-emit pass. Each interface and binding is
// processed independently: a failure produces a diagnostic for that item and
// leaves the rest of the run intact.
func (e *Engine) Generate(opts Options) (*Result, error) {
	start := time.Now()

	snap, err := e.Scan()
	if err != nil {
		return nil, err
	}

	result := &Result{
		Interfaces: snap.Registry.Count(),
		Operations: snap.Registry.OpCount(),
		Diags:      snap.Diags,
	}

	resolver := newSupportResolver()

	// rendered maps directory → file name → content for everything this run
	// produces; it also drives stale-file removal afterwards.
	rendered := map[string]map[string][]byte{}
	add := func(dir string, files ...gen.File) {
		m := rendered[dir]
		if m == nil {
			m = map[string][]byte{}
			rendered[dir] = m
		}
		for _, f := range files {
			m[f.Name] = f.Content
		}
	}

	// 1. Caller stubs per interface, plus one assembly stub per declaring
	// package so the bodyless declarations compile.
	for _, iface := range snap.Registry.Interfaces() {
		support, err := resolver.importFor(iface.Dir)
		if err != nil {
			result.Diags = append(result.Diags, core.Diagf(iface.Pos, "%v", err))
			continue
		}
		files, err := gen.Callers(iface, support)
		if err != nil {
			result.Diags = append(result.Diags, core.Diagf(iface.Pos, "%v", err))
			continue
		}
		add(iface.Dir, files...)
		add(iface.Dir, gen.Stub())
	}

	// 2. Bridges per binding.
	for _, iface := range snap.Registry.Interfaces() {
		for _, b := range snap.Registry.Bindings(iface.Name) {
			result.Bindings++
			support, err := resolver.importFor(b.Dir)
			if err != nil {
				result.Diags = append(result.Diags, core.Diagf(b.Pos, "%v", err))
				continue
			}
			files, err := gen.Bridges(b, iface, support)
			if err != nil {
				result.Diags = append(result.Diags, core.Diagf(b.Pos, "%v", err))
				continue
			}
			add(b.Dir, files...)
		}
	}

	// 3. Reconcile with the tree: write changed files, remove stale ones.
	if err := e.reconcile(rendered, opts, result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	e.logger.Info("generation finished", "summary", result.Summary())
	return result, nil
}

// reconcile writes rendered files that changed and removes generated files no
// declaration produced anymore. In a dry run nothing is touched; differences
// are reported as drift.
func (e *Engine) reconcile(rendered map[string]map[string][]byte, opts Options, result *Result) error {
	dirs := make([]string, 0, len(rendered))
	for dir := range rendered {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	for _, dir := range dirs {
		files := rendered[dir]
		names := make([]string, 0, len(files))
		for name := range files {
			names = append(names, name)
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(dir, name)
			content := files[name]

			existing, err := os.ReadFile(path)
			if err == nil && bytes.Equal(existing, content) {
				result.FilesUnchanged++
				continue
			}
			if opts.DryRun {
				result.Drift = append(result.Drift, path)
				continue
			}
			if err := os.WriteFile(path, content, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			result.FilesWritten++
			e.logger.Debug("wrote generated file", "path", path)
		}

	}

	return e.removeStale(rendered, opts, result)
}

// removeStale walks the scanned roots for generated artifacts no declaration
// produced this run, the leftovers of renamed or deleted interfaces.
func (e *Engine) removeStale(rendered map[string]map[string][]byte, opts Options, result *Result) error {
	for _, root := range e.cfg.Dirs {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			name := d.Name()
			if d.IsDir() {
				if path != root && (name == "vendor" || name == "testdata" ||
					strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
					return filepath.SkipDir
				}
				return nil
			}
			if !strings.HasSuffix(name, parse.GeneratedSuffix) && name != gen.StubName {
				return nil
			}
			if _, ok := rendered[filepath.Dir(path)][name]; ok {
				return nil
			}
			if opts.DryRun {
				result.Drift = append(result.Drift, path)
				return nil
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("removing stale %s: %w", path, err)
			}
			result.FilesRemoved++
			e.logger.Debug("removed stale generated file", "path", path)
			return nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}
