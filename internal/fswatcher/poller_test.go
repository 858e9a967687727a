package fswatcher

import (
	"context"
	"io/fs"
	"testing"
	"testing/fstest"
	"time"

	"github.com/klingtnet/mdv/internal/testutils"
	"github.com/stretchr/testify/require"
)

func TestPoller(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	contentFS := testutils.NewConcurrentMapFS(fstest.MapFS{
		"readme.md": &fstest.MapFile{
			ModTime: time.Unix(1, 0),
			Mode:    0o600,
			Data:    []byte("# Hello"),
		},
	})
	ticker := time.NewTicker(50 * time.Millisecond)

	// There is no previous state on the first tick.
	resultCh := NewPoller(contentFS, ticker, nil).Watch(ctx)
	result := <-resultCh
	require.NoError(t, result.Err)
	require.True(t, result.HasChanged)

	result = <-resultCh
	require.NoError(t, result.Err)
	require.False(t, result.HasChanged)

	tCases := []struct {
		name    string
		modify  func()
		changed bool
	}{
		{
			name: "new document",
			modify: func() {
				contentFS.Store("docs/new.md", &fstest.MapFile{ModTime: time.Unix(1, 0), Data: []byte("new")})
			},
			changed: true,
		},
		{
			name: "modification time",
			modify: func() {
				contentFS.Store("readme.md", &fstest.MapFile{ModTime: time.Unix(2, 0), Mode: 0o600, Data: []byte("# Hello")})
			},
			changed: true,
		},
		{
			name: "size",
			modify: func() {
				contentFS.Store("readme.md", &fstest.MapFile{ModTime: time.Unix(2, 0), Mode: 0o600, Data: []byte("# Hello, World")})
			},
			changed: true,
		},
		{
			name: "mode",
			modify: func() {
				contentFS.Store("readme.md", &fstest.MapFile{ModTime: time.Unix(2, 0), Mode: 0o644, Data: []byte("# Hello, World")})
			},
			changed: true,
		},
		{
			name: "same metadata",
			modify: func() {
				contentFS.Store("readme.md", &fstest.MapFile{ModTime: time.Unix(2, 0), Mode: 0o644, Data: []byte("# HELLO, WORLD")})
			},
			changed: false,
		},
		{
			name: "hidden file",
			modify: func() {
				contentFS.Store(".draft.md", &fstest.MapFile{Data: []byte("draft")})
			},
			changed: false,
		},
		{
			name: "hidden directory",
			modify: func() {
				contentFS.Store(".git/HEAD", &fstest.MapFile{Data: []byte("ref: refs/heads/main")})
			},
			changed: false,
		},
		{
			name: "removed document",
			modify: func() {
				contentFS.Delete("docs/new.md")
			},
			changed: true,
		},
	}
	for _, tCase := range tCases {
		// Drain a result that might have been produced before the modification.
		select {
		case <-resultCh:
		default:
		}
		tCase.modify()
		// A result may have been computed before the modification, and the ticker may hold a pending tick.
		// The third result is guaranteed to be based on a walk that started after the modification.
		changed := false
		for i := 0; i < 3; i++ {
			result := <-resultCh
			require.NoError(t, result.Err, tCase.name)
			changed = changed || result.HasChanged
		}
		require.Equal(t, tCase.changed, changed, tCase.name)
	}
}

func TestPollerStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	resultCh := NewPoller(fstest.MapFS{}, time.NewTicker(10*time.Millisecond), nil).Watch(ctx)
	<-resultCh
	cancel()

	done := make(chan struct{})
	go func() {
		for range resultCh {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("result channel was not closed")
	}
}

func TestPollerSkip(t *testing.T) {
	contentFS := fstest.MapFS{"readme.md": {Data: []byte("# Hello")}}
	skip := func(p string, d fs.DirEntry) bool {
		return SkipHidden(p, d) || (d.IsDir() && d.Name() == "node_modules") || p == "notes.wip.md"
	}
	poller := NewPoller(contentFS, time.NewTicker(time.Hour), skip)

	changed, err := poller.diff()
	require.NoError(t, err)
	require.True(t, changed)

	contentFS["node_modules/pkg/readme.md"] = &fstest.MapFile{Data: []byte("# Vendored")}
	contentFS["notes.wip.md"] = &fstest.MapFile{Data: []byte("draft")}
	contentFS[".git/HEAD"] = &fstest.MapFile{Data: []byte("ref: refs/heads/main")}
	changed, err = poller.diff()
	require.NoError(t, err)
	require.False(t, changed)

	contentFS["docs/a.md"] = &fstest.MapFile{Data: []byte("# A")}
	changed, err = poller.diff()
	require.NoError(t, err)
	require.True(t, changed)
}
