package fswatcher

import (
	"context"
	"io/fs"
	"time"
)

type fileInfo struct {
	modTime time.Time
	size    int64
	mode    fs.FileMode
}

// Poller detects changes by walking a file system on every tick.
type Poller struct {
	filesystem fs.FS
	state      map[string]fileInfo
	ticker     *time.Ticker
	skip       SkipFunc
}

// NewPoller returns a Poller that walks filesystem on every tick of ticker.
// Entries matched by skip are ignored, SkipHidden is used if skip is nil.
func NewPoller(filesystem fs.FS, ticker *time.Ticker, skip SkipFunc) *Poller {
	if skip == nil {
		skip = SkipHidden
	}

	return &Poller{
		filesystem: filesystem,
		state:      make(map[string]fileInfo),
		ticker:     ticker,
		skip:       skip,
	}
}

func (p *Poller) collectState(state map[string]fileInfo) error {
	return fs.WalkDir(p.filesystem, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if path != "." && p.skip(path, d) {
			if d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		state[path] = fileInfo{
			modTime: info.ModTime(),
			size:    info.Size(),
			mode:    info.Mode(),
		}

		return nil
	})
}

// diff will first walk the file system to collect information about all files (ignoring directories)
// and second it will compare this metadata against the last seen state.
func (p *Poller) diff() (bool, error) {
	state := make(map[string]fileInfo, len(p.state))
	err := p.collectState(state)
	if err != nil {
		return false, err
	}
	defer func() {
		p.state = state
	}()

	if len(state) != len(p.state) {
		return true, nil
	}

	for path, info := range state {
		lastInfo, ok := p.state[path]
		if !ok {
			return true, nil
		}

		if !info.modTime.Equal(lastInfo.modTime) ||
			info.size != lastInfo.size ||
			info.mode != lastInfo.mode {
			return true, nil
		}
	}

	return false, nil
}

// Watch implements Watcher.
// The first result always reports a change because there is no previous state to compare against.
// A failing walk is reported and ends the watch.
func (p *Poller) Watch(ctx context.Context) <-chan Result {
	resultCh := make(chan Result, 1)
	go func() {
		defer close(resultCh)
		defer p.ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				finish(ctx, resultCh)

				return
			case <-p.ticker.C:
				hasChanged, err := p.diff()
				if err != nil {
					send(ctx, resultCh, Result{Err: err})

					return
				}

				if !send(ctx, resultCh, Result{HasChanged: hasChanged}) {
					finish(ctx, resultCh)

					return
				}
			}
		}
	}()

	return resultCh
}

var _ Watcher = &Poller{}
