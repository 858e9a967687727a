// Package fswatcher detects changes below a directory.
//
// Two strategies are available: Poller compares file metadata on every tick of a ticker
// and works with any fs.FS, Notifier relies on file system events of the operating system.
package fswatcher

import (
	"context"
	"io/fs"
	"strings"
)

// Result of a single change detection.
// The channel returned by Watch is closed once watching stopped.
// If the consumer keeps up the last Result carries the reason, e.g. the context error.
type Result struct {
	HasChanged bool
	Err        error
}

// Watcher reports changes until ctx is done.
type Watcher interface {
	Watch(ctx context.Context) <-chan Result
}

// SkipFunc decides if the entry at the slash separated path p, relative to the watched root, is ignored.
// Skipped directories are not descended into.
type SkipFunc func(p string, d fs.DirEntry) bool

func isHidden(name string) bool {
	return name != "." && strings.HasPrefix(name, ".")
}

// SkipHidden ignores dot-prefixed files and directories.
func SkipHidden(_ string, d fs.DirEntry) bool {
	return isHidden(d.Name())
}

// send delivers result unless ctx is done first.
func send(ctx context.Context, resultCh chan<- Result, result Result) bool {
	select {
	case <-ctx.Done():
		return false
	case resultCh <- result:
		return true
	}
}

// finish hands out the context error without blocking a consumer that stopped reading.
func finish(ctx context.Context, resultCh chan<- Result) {
	select {
	case resultCh <- Result{Err: ctx.Err()}:
	default:
	}
}
