// Package watch re-runs a callback whenever a build description changes.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/buildplan/internal/ctxlog"
)

// DefaultDebounce collapses bursts of events (editors often write a file in
// several steps) into one change.
const DefaultDebounce = 300 * time.Millisecond

// Watcher monitors description files. Directories are watched rather than
// files so that editors which replace a file on save are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]bool
	ext      string
	debounce time.Duration
	onChange func(context.Context)
}

// New starts watching paths. A file path is watched through its directory;
// a directory path matches every file with extension ext below it.
func New(paths []string, ext string, debounce time.Duration, onChange func(context.Context)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	w := &Watcher{
		watcher:  fw,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		ext:      ext,
		debounce: debounce,
		onChange: onChange,
	}
	for _, p := range paths {
		if err := w.add(p); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) add(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve watch path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", path, err)
	}

	if !info.IsDir() {
		w.files[abs] = true
		return w.watchDir(filepath.Dir(abs))
	}

	_, err = w.addTree(abs)
	return err
}

// addTree watches root and every directory below it. It reports whether the
// tree already holds files with the watched extension.
func (w *Watcher) addTree(root string) (bool, error) {
	found := false
	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			found = found || filepath.Ext(p) == w.ext
			return nil
		}
		w.dirs[p] = true
		return w.watchDir(p)
	})
	return found, err
}

// newDir handles a directory created inside a watched tree. Files written
// into it before it was added are not reported by fsnotify, so their
// presence counts as a change.
func (w *Watcher) newDir(event fsnotify.Event) (bool, error) {
	if !event.Has(fsnotify.Create) {
		return false, nil
	}
	name := filepath.Clean(event.Name)
	if !w.dirs[filepath.Dir(name)] {
		return false, nil
	}
	info, err := os.Stat(name)
	if err != nil || !info.IsDir() {
		return false, nil
	}
	return w.addTree(name)
}

func (w *Watcher) watchDir(dir string) error {
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	return nil
}

// relevant reports whether an event touches a watched description.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
		return false
	}
	name := filepath.Clean(event.Name)
	if w.files[name] {
		return true
	}
	return w.dirs[filepath.Dir(name)] && filepath.Ext(name) == w.ext
}

// Run delivers debounced change notifications until ctx is done. Callbacks
// run on the calling goroutine, one at a time.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	logger := ctxlog.FromContext(ctx)
	logger.Info("Watching build description for changes.")

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(w.debounce)
		} else {
			timer.Reset(w.debounce)
		}
		fire = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Watcher stopped.")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			found, err := w.newDir(event)
			if err != nil {
				logger.Error("Failed to watch new directory.", "dir", event.Name, "error", err)
			}
			if found {
				logger.Debug("Descriptions found in new directory.", "dir", event.Name)
				schedule()
				continue
			}
			if !w.relevant(event) {
				continue
			}
			logger.Debug("Description change detected.", "file", event.Name, "op", event.Op.String())
			schedule()

		case <-fire:
			fire = nil
			w.onChange(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("File watcher error.", "error", err)
		}
	}
}
