// Package engine orchestrates one generation run: scan the source tree for
// directives, register declarations, resolve the support import, and emit
// caller stubs and bridges next to the code that declared them.
package engine

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hvlabs/apibind/internal/core"
	"github.com/hvlabs/apibind/internal/parse"
	"github.com/hvlabs/apibind/internal/registry"
	"github.com/hvlabs/apibind/internal/resolve"
	"github.com/hvlabs/apibind/pkg/link"
)

// Config configures an Engine.
type Config struct {
	// Dirs are the source roots to scan.
	Dirs []string
	// Namespace is the symbol namespace; defaults to link.DefaultNamespace.
	Namespace string
	// Logger receives progress events; defaults to a discard logger.
	Logger *slog.Logger
}

// Engine runs generation over a fixed configuration.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

// New creates an Engine.
func New(cfg Config) *Engine {
	if cfg.Namespace == "" {
		cfg.Namespace = link.DefaultNamespace
	}
	if len(cfg.Dirs) == 0 {
		cfg.Dirs = []string{"."}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Engine{cfg: cfg, logger: logger}
}

// Snapshot is the registered view of one scan: every well-formed declaration,
// indexed, with the diagnostics of everything that was not.
type Snapshot struct {
	Registry *registry.Registry
	Diags    []*core.Diagnostic
}

// Scan parses the configured roots and registers what it finds. Declarations
// that fail validation or registration contribute diagnostics and nothing
// else; the rest of the run proceeds without them.
func (e *Engine) Scan() (*Snapshot, error) {
	scanner := parse.New(e.cfg.Namespace, e.logger)
	res, err := scanner.ScanDirs(e.cfg.Dirs)
	if err != nil {
		return nil, fmt.Errorf("scan failed: %w", err)
	}

	snap := &Snapshot{
		Registry: registry.New(),
		Diags:    res.Diags,
	}
	for _, iface := range res.Interfaces {
		if diag := snap.Registry.Register(iface); diag != nil {
			snap.Diags = append(snap.Diags, diag)
		}
	}
	for _, b := range res.Bindings {
		if diag := snap.Registry.AddBinding(b); diag != nil {
			snap.Diags = append(snap.Diags, diag)
		}
	}

	e.logger.Info("scan complete",
		"interfaces", snap.Registry.Count(),
		"operations", snap.Registry.OpCount(),
		"diagnostics", len(snap.Diags))
	return snap, nil
}

// Options configures one Generate call.
type Options struct {
	// DryRun renders everything but writes nothing, reporting what would
	// change. The check command runs on this.
	DryRun bool
}

// Result summarizes one generation run.
type Result struct {
	Interfaces int
	Operations int
	Bindings   int

	// FilesWritten counts files created or rewritten.
	FilesWritten int
	// FilesUnchanged counts rendered files already identical on disk.
	FilesUnchanged int
	// FilesRemoved counts stale generated files deleted from scanned dirs.
	FilesRemoved int

	// Drift lists files whose on-disk content differs from a fresh render
	// (dry runs only; a write run repairs them instead).
	Drift []string

	// Diags are the run's per-declaration failures.
	Diags []*core.Diagnostic

	Duration time.Duration
}

// HasDiags reports whether any declaration failed.
func (r *Result) HasDiags() bool { return len(r.Diags) > 0 }

// Summary returns a one-line human-readable summary.
func (r *Result) Summary() string {
	return fmt.Sprintf(
		"Interfaces: %d (%d operations) | Bindings: %d | Files: %d written, %d unchanged, %d removed | Duration: %s",
		r.Interfaces, r.Operations, r.Bindings,
		r.FilesWritten, r.FilesUnchanged, r.FilesRemoved,
		r.Duration.Round(time.Millisecond),
	)
}

// resolveSupport resolves the support import for a directory, caching per
// directory so one go.mod lookup serves a whole package.
type supportResolver struct {
	cache map[string]*resolve.Resolution
	errs  map[string]error
}

func newSupportResolver() *supportResolver {
	return &supportResolver{
		cache: map[string]*resolve.Resolution{},
		errs:  map[string]error{},
	}
}

func (sr *supportResolver) importFor(dir string) (string, error) {
	if res, ok := sr.cache[dir]; ok {
		return res.ImportPath, nil
	}
	if err, ok := sr.errs[dir]; ok {
		return "", err
	}
	res, err := resolve.SupportImport(dir)
	if err != nil {
		sr.errs[dir] = err
		return "", err
	}
	sr.cache[dir] = res
	return res.ImportPath, nil
}
