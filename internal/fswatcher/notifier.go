package fswatcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// Notifier detects changes through file system events, see fsnotify.
// Events are coalesced, a change is reported once no further event arrived for the debounce duration.
type Notifier struct {
	root     string
	debounce time.Duration
	skip     SkipFunc
	logger   zerolog.Logger
}

// NewNotifier returns a Notifier for the directory root.
// Directories matched by skip are not watched, SkipHidden is used if skip is nil.
func NewNotifier(root string, debounce time.Duration, skip SkipFunc, logger zerolog.Logger) *Notifier {
	if skip == nil {
		skip = SkipHidden
	}

	return &Notifier{
		root:     root,
		debounce: debounce,
		skip:     skip,
		logger:   logger.With().Str("component", "notifier").Logger(),
	}
}

// relPath returns the slash separated path of name relative to the root.
func (n *Notifier) relPath(name string) (string, bool) {
	rel, err := filepath.Rel(n.root, name)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}

	return filepath.ToSlash(rel), true
}

// addRecursive watches dir and all of its subdirectories that are not skipped.
func (n *Notifier) addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if rel, ok := n.relPath(path); ok && rel != "." && n.skip(rel, d) {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})
}

// skipped returns true if the changed entry name is ignored.
// Removed entries cannot be inspected, only the hidden rule applies to them.
func (n *Notifier) skipped(name string) bool {
	rel, ok := n.relPath(name)
	if !ok || rel == "." {
		return false
	}
	info, err := os.Lstat(name)
	if err != nil {
		return isHidden(filepath.Base(name))
	}

	return n.skip(rel, fs.FileInfoToDirEntry(info))
}

// Watch implements Watcher.
// Directories created later on are watched as well.
func (n *Notifier) Watch(ctx context.Context) <-chan Result {
	resultCh := make(chan Result, 1)

	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		err = n.addRecursive(watcher, n.root)
		if err != nil {
			watcher.Close()
		}
	}
	if err != nil {
		resultCh <- Result{Err: err}
		close(resultCh)

		return resultCh
	}

	go func() {
		defer close(resultCh)
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				finish(ctx, resultCh)

				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if n.skipped(event.Name) {
					continue
				}

				if event.Has(fsnotify.Create) {
					info, err := os.Stat(event.Name)
					if err == nil && info.IsDir() {
						err = n.addRecursive(watcher, event.Name)
						if err != nil {
							n.logger.Warn().Err(err).Str("path", event.Name).Msg("cannot watch new directory")
						}
					}
				}

				if timer == nil {
					timer = time.NewTimer(n.debounce)
				} else {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timer.Reset(n.debounce)
				}
				fire = timer.C
			case <-fire:
				fire = nil
				if !send(ctx, resultCh, Result{HasChanged: true}) {
					finish(ctx, resultCh)

					return
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				n.logger.Warn().Err(err).Msg("watcher error")
			}
		}
	}()

	return resultCh
}

var _ Watcher = &Notifier{}
