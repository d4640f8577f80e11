package engine

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/hvlabs/apibind/internal/gen"
	"github.com/hvlabs/apibind/internal/parse"
)

// debounceWindow coalesces editor save bursts into one regeneration.
const debounceWindow = 300 * time.Millisecond

// Watch regenerates on every source change under the configured roots until
// the context is cancelled. onResult is invoked after each run, including the
// initial one.
func (e *Engine) Watch(ctx context.Context, opts Options, onResult func(*Result)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer watcher.Close()

	addTree := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			name := d.Name()
			if path != root && (name == "vendor" || name == "testdata" ||
				strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		})
	}
	for _, root := range e.cfg.Dirs {
		if err := addTree(root); err != nil {
			return fmt.Errorf("watching %s: %w", root, err)
		}
	}

	run := func() {
		result, err := e.Generate(opts)
		if err != nil {
			e.logger.Error("regeneration failed", "error", err)
			return
		}
		onResult(result)
	}
	run()

	var debounce *time.Timer
	pending := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevant(event) {
				continue
			}
			// New directories join the watch set immediately so files
			// created inside them are not missed.
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					_ = addTree(event.Name)
				}
			}
			if debounce == nil {
				debounce = time.AfterFunc(debounceWindow, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			} else {
				debounce.Reset(debounceWindow)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Warn("watch error", "error", err)

		case <-pending:
			debounce = nil
			run()
		}
	}
}

// relevant filters out events the generator itself causes and anything that
// is not a Go source change.
func relevant(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if strings.HasSuffix(name, parse.GeneratedSuffix) || name == gen.StubName {
		return false
	}
	if strings.HasSuffix(name, ".go") && !strings.HasSuffix(name, "_test.go") {
		return true
	}
	// Directory events carry no extension; treat them as relevant.
	return !strings.Contains(name, ".")
}
