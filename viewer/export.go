package viewer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"path"
	"runtime"
	"strings"
	"time"

	"github.com/klingtnet/mdv/internal/distribute"
	"github.com/klingtnet/mdv/viewer/content"
	"github.com/klingtnet/mdv/viewer/model"
	"github.com/klingtnet/mdv/viewer/renderer"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Output directories of an export.
const (
	ExportViewerDir = renderer.PrefixViewer
	ExportTextDir   = "t"
	ExportStaticDir = "static"
)

// Exporter renders every page of a snapshot into a Storage.
//
// The layout mirrors the routes of the server, so the result can be served by any static file server:
// directory listings and documents end up as v/<path>/index.html, raw documents as t/<path>,
// feeds as v/<dir>/feed.rss and the static assets below static/.
type Exporter struct {
	concurrency int
	snap        content.Snapshot
	pipeline    *renderer.Pipeline
	staticFS    fs.FS
	stor        Storage
	baseURL     string
	logger      zerolog.Logger
}

// NewExporter returns a new Exporter instance.
// The embedded static assets are used if staticFS is nil.
func NewExporter(snap content.Snapshot, pipeline *renderer.Pipeline, staticFS fs.FS, stor Storage, baseURL string, logger zerolog.Logger) *Exporter {
	if staticFS == nil {
		staticFS = DefaultStaticFS()
	}

	return &Exporter{
		concurrency: runtime.NumCPU(),
		snap:        snap,
		pipeline:    pipeline,
		staticFS:    staticFS,
		stor:        stor,
		baseURL:     baseURL,
		logger:      logger.With().Str("component", "exporter").Logger(),
	}
}

type exportJob struct {
	path string
	node *model.Node
}

// Run exports the snapshot.
func (e *Exporter) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := e.copyStaticFiles(ctx)
		if err != nil {
			return fmt.Errorf("copying static files failed: %w", err)
		}
		return nil
	})
	eg.Go(func() error {
		err := e.render(ctx)
		if err != nil {
			return fmt.Errorf("rendering failed: %w", err)
		}
		return nil
	})

	return eg.Wait()
}

func (e *Exporter) copyStaticFiles(ctx context.Context) error {
	return distribute.OneToN(
		ctx,
		func(ctx context.Context, pathCh chan<- string) error {
			return fs.WalkDir(e.staticFS, ".", func(p string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.IsDir() {
					return nil
				}

				return distribute.Send(ctx, pathCh, p)
			})
		},
		func(ctx context.Context, p string) error {
			src, err := e.staticFS.Open(p)
			if err != nil {
				return err
			}
			defer src.Close()

			return e.stor.Store(ctx, path.Join(ExportStaticDir, p), src)
		},
		e.concurrency,
	)
}

func (e *Exporter) render(ctx context.Context) error {
	return distribute.OneToN(
		ctx,
		func(ctx context.Context, jobCh chan<- exportJob) error {
			root := model.NewDirectory("", e.snap.Tree()...)
			err := distribute.Send(ctx, jobCh, exportJob{path: "", node: root})
			if err != nil {
				return err
			}

			return model.Walk(e.snap.Tree(), func(p string, node *model.Node) error {
				return distribute.Send(ctx, jobCh, exportJob{path: p, node: node})
			})
		},
		func(ctx context.Context, job exportJob) error {
			if job.node.IsDir() {
				return e.renderDirectory(ctx, job.path, job.node.Children)
			}
			return e.renderDocument(ctx, job.path)
		},
		e.concurrency,
	)
}

func (e *Exporter) renderDirectory(ctx context.Context, dir string, children []*model.Node) error {
	buf := bytes.NewBuffer(make([]byte, 0, 8192))
	err := e.pipeline.Tree(buf, renderer.PrefixViewer, dir, children)
	if err != nil {
		return fmt.Errorf("rendering listing of %q failed: %w", dir, err)
	}
	err = e.stor.Store(ctx, path.Join(ExportViewerDir, dir, "index.html"), buf)
	if err != nil {
		return err
	}

	if !containsDocuments(children) {
		return nil
	}

	return e.renderFeed(ctx, dir)
}

func (e *Exporter) renderFeed(ctx context.Context, dir string) error {
	feed, err := BuildFeed(e.snap, dir, e.baseURL, time.Now())
	if err != nil {
		return fmt.Errorf("feed rendering failed: %w", err)
	}

	pr, pw := io.Pipe()
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		err := feed.WriteRss(pw)
		pw.CloseWithError(err)
		return err
	})
	eg.Go(func() error {
		defer pr.Close()
		return e.stor.Store(ctx, path.Join(ExportViewerDir, dir, "feed.rss"), pr)
	})

	return eg.Wait()
}

func (e *Exporter) renderDocument(ctx context.Context, p string) error {
	raw, err := e.snap.Content(p, true)
	if err != nil {
		return err
	}
	err = e.stor.Store(ctx, path.Join(ExportTextDir, p), strings.NewReader(raw))
	if err != nil {
		return err
	}

	html, err := e.snap.Content(p, false)
	if err != nil {
		return err
	}
	buf := bytes.NewBuffer(make([]byte, 0, 2*len(html)))
	err = e.pipeline.File(buf, renderer.PrefixViewer, p, e.snap.Title(p), html)
	if err != nil {
		return fmt.Errorf("rendering %q failed: %w", p, err)
	}
	e.logger.Debug().Str("path", p).Msg("exported")

	return e.stor.Store(ctx, path.Join(ExportViewerDir, p, "index.html"), buf)
}

func containsDocuments(children []*model.Node) bool {
	for _, child := range children {
		if !child.IsDir() {
			return true
		}
	}

	return false
}
