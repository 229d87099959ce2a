// Package watch triggers rebuilds when source files change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounce batches editor save storms into one rebuild.
const debounce = 500 * time.Millisecond

// Watcher observes a directory tree and invokes OnChange after events
// settle. Hidden directories and Ignore-listed path segments are skipped.
type Watcher struct {
	Root     string
	Ignore   []string
	OnChange func()
	Logger   *slog.Logger
}

func (w *Watcher) logger() *slog.Logger {
	if w.Logger != nil {
		return w.Logger
	}
	return slog.Default()
}

func (w *Watcher) ignored(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") && base != "." {
		return true
	}
	for _, seg := range w.Ignore {
		if base == seg || strings.Contains(path, string(filepath.Separator)+seg+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// interesting filters events down to the file types that affect the site.
func interesting(path string) bool {
	switch filepath.Ext(path) {
	case ".go", ".qmd", ".md", ".yml", ".yaml", ".toml", ".css", ".json":
		return true
	}
	return false
}

// Run blocks until the context is canceled, firing OnChange for each
// settled batch of events.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer fsw.Close()

	addTree := func(root string) error {
		return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() {
				return nil
			}
			if w.ignored(path) {
				return filepath.SkipDir
			}
			return fsw.Add(path)
		})
	}
	if err := addTree(w.Root); err != nil {
		return fmt.Errorf("watching %s: %w", w.Root, err)
	}

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(event.Name) {
				continue
			}
			// New directories need watching before anything inside them
			// changes.
			if event.Op.Has(fsnotify.Create) {
				if err := addTree(event.Name); err != nil {
					w.logger().Debug("cannot watch new path", "path", event.Name, "reason", err)
				}
			}
			if !interesting(event.Name) {
				continue
			}
			w.logger().Debug("change detected", "path", event.Name, "op", event.Op.String())
			if timer == nil {
				timer = time.NewTimer(debounce)
				timerC = timer.C
			} else {
				timer.Reset(debounce)
			}

		case <-timerC:
			timer = nil
			timerC = nil
			if w.OnChange != nil {
				w.OnChange()
			}

		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.logger().Warn("watch error", "reason", err)
		}
	}
}
