package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long a definition file must stay quiet before it is
// evaluated again.
const WatchDebounce = 300 * time.Millisecond

// RunWatch evaluates the definition file, then again after every change,
// until ctx is done. Failures are printed and watching goes on.
func RunWatch(ctx context.Context, w io.Writer, opts Options, debounce time.Duration) error {
	if opts.File == "" {
		return errors.New("watch requires a definition file")
	}
	path, err := filepath.Abs(opts.File)
	if err != nil {
		return err
	}
	opts.File = path

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Editors often replace the file, so the directory is watched.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	logger := NewLogger(opts.Debug)
	evaluate := func() {
		if err := RunEvaluate(ctx, w, opts); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
		}
	}

	fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", path)
	evaluate()

	var timer *time.Timer
	var fire <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Name != path || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(debounce)
			} else {
				timer.Reset(debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			fmt.Fprintf(w, "Reloaded %s\n", filepath.Base(path))
			evaluate()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "err", err)
		}
	}
}
