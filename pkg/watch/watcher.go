// Package watch notifies when catalog backing files change so the index
// can be rebuilt.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/debounce"
	"github.com/bildardokeyo-a11y/bit-vend-pos-sub001/pkg/log"
)

var logger = log.ForService("watch")

// SQLite writers touch these companions instead of the database file.
var companionSuffixes = []string{"-wal", "-journal"}

// Watcher watches a set of files. Bursts of events are coalesced: the
// callback runs once the files have been quiet for the configured delay.
type Watcher struct {
	fs        *fsnotify.Watcher
	files     map[string]struct{}
	delay     time.Duration
	scheduler *debounce.Scheduler
	onChange  func(path string)
	done      chan struct{}
}

// New starts watching paths. Parent directories are watched rather than
// the files themselves, so atomic replacements and files created later
// are noticed. Empty paths are ignored.
func New(paths []string, delay time.Duration, onChange func(path string)) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &Watcher{
		fs:        fsw,
		files:     make(map[string]struct{}),
		delay:     delay,
		scheduler: debounce.New(),
		onChange:  onChange,
		done:      make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("resolving %s: %w", p, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			// The catalog treats a missing file as empty; a missing
			// directory only means we cannot notice it appearing.
			logger.Warnf("not watching %s: %v", dir, err)
			continue
		}
		logger.Debugf("watching %s", dir)
	}

	return w, nil
}

// Files returns the watched file paths.
func (w *Watcher) Files() []string {
	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	return files
}

func (w *Watcher) match(name string) (string, bool) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return "", false
	}
	if _, ok := w.files[abs]; ok {
		return abs, true
	}
	for _, suffix := range companionSuffixes {
		base, found := strings.CutSuffix(abs, suffix)
		if !found {
			continue
		}
		if _, ok := w.files[base]; ok {
			return base, true
		}
	}
	return "", false
}

// Run dispatches events until ctx is done or the watcher is closed.
func (w *Watcher) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.scheduler.Cancel()
			return
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			// React to write, create, rename, and remove events (editors often use atomic writes)
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			path, ok := w.match(event.Name)
			if !ok {
				continue
			}
			logger.Debugf("%s changed (%s)", path, event.Op)
			w.scheduler.Schedule(path, w.delay, w.fire)
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			logger.Warnf("watcher error: %v", err)
		}
	}
}

func (w *Watcher) fire(path string) {
	select {
	case <-w.done:
		return
	default:
	}
	logger.Infof("catalog file %s changed", path)
	w.onChange(path)
}

// Close stops the watcher. Pending callbacks are dropped.
func (w *Watcher) Close() error {
	select {
	case <-w.done:
		return nil
	default:
	}
	close(w.done)
	w.scheduler.Cancel()
	return w.fs.Close()
}
