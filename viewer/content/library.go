package content

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/armon/go-radix"
	"github.com/klingtnet/mdv/frontmatter"
	"github.com/klingtnet/mdv/internal/metrics"
	"github.com/klingtnet/mdv/slug"
	"github.com/klingtnet/mdv/viewer/model"
	"github.com/klingtnet/mdv/viewer/renderer"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"
)

// Options configure a Library.
type Options struct {
	// IgnoreFile is the name of a gitignore style file in the root directory.
	// Paths matching one of its patterns are excluded from the tree.
	IgnoreFile string
	// MaxSearchResults caps the number of results returned by Search.
	MaxSearchResults int
	// Concurrency is the number of workers used to read documents.
	Concurrency int
}

// DefaultIgnoreFile is used if Options.IgnoreFile is empty.
const DefaultIgnoreFile = ".mdvignore"

func (o Options) withDefaults() Options {
	if o.IgnoreFile == "" {
		o.IgnoreFile = DefaultIgnoreFile
	}
	if o.MaxSearchResults < 1 {
		o.MaxSearchResults = DefaultMaxSearchResults
	}
	if o.Concurrency < 1 {
		o.Concurrency = runtime.NumCPU()
	}

	return o
}

// Library serves snapshots of the markdown documents found in an fs.FS.
type Library struct {
	contentFS fs.FS
	md        renderer.Converter
	slugifier *slug.Slugifier
	logger    zerolog.Logger
	options   Options

	current   atomic.Pointer[snapshot]
	refreshMu sync.Mutex
}

// NewLibrary returns a Library for contentFS and builds its first snapshot.
func NewLibrary(ctx context.Context, contentFS fs.FS, md renderer.Converter, slugifier *slug.Slugifier, logger zerolog.Logger, options Options) (*Library, error) {
	l := &Library{
		contentFS: contentFS,
		md:        md,
		slugifier: slugifier,
		logger:    logger.With().Str("component", "library").Logger(),
		options:   options.withDefaults(),
	}

	err := l.Refresh(ctx)
	if err != nil {
		return nil, fmt.Errorf("library initialization failed: %w", err)
	}

	return l, nil
}

// Current implements Provider.
func (l *Library) Current() Snapshot {
	return l.current.Load()
}

// Refresh implements Provider.
// Concurrent calls are serialized, requests holding an older snapshot keep using it.
func (l *Library) Refresh(ctx context.Context) error {
	l.refreshMu.Lock()
	defer l.refreshMu.Unlock()

	start := time.Now()
	snap, err := l.scan(ctx)
	metrics.RecordRefresh(time.Since(start), err == nil)
	if err != nil {
		l.logger.Error().Err(err).Msg("refresh failed")
		return err
	}

	l.current.Store(snap)
	metrics.SetTreeSize(snap.index.Len())
	l.logger.Debug().
		Int("nodes", snap.index.Len()).
		Int("documents", len(snap.documents)).
		Dur("took", time.Since(start)).
		Msg("refreshed")

	return nil
}

func (l *Library) scan(ctx context.Context) (*snapshot, error) {
	matcher, err := loadIgnoreFile(l.contentFS, l.options.IgnoreFile)
	if err != nil {
		return nil, err
	}

	tree, err := model.Build(ctx, l.contentFS, skipFunc(matcher))
	if err != nil {
		return nil, fmt.Errorf("reading tree failed: %w", err)
	}

	index := radix.New()
	var documents []string
	_ = model.Walk(tree, func(p string, node *model.Node) error {
		index.Insert(p, node)
		if !node.IsDir() {
			documents = append(documents, p)
		}

		return nil
	})

	meta, err := l.readMeta(ctx, documents)
	if err != nil {
		return nil, err
	}

	return &snapshot{
		contentFS: l.contentFS,
		md:        l.md,
		tree:      tree,
		index:     index,
		matcher:   matcher,
		documents: documents,
		meta:      meta,
	}, nil
}

// readMeta reads the front-matter of all documents concurrently.
// Documents without, with broken front-matter or that cannot be read get an empty Meta.
func (l *Library) readMeta(ctx context.Context, documents []string) (map[string]Meta, error) {
	var mu sync.Mutex
	result := make(map[string]Meta, len(documents))

	p := pool.New().WithMaxGoroutines(l.options.Concurrency).WithContext(ctx)
	for _, doc := range documents {
		p.Go(func(ctx context.Context) error {
			data, err := fs.ReadFile(l.contentFS, doc)
			if err != nil {
				l.logger.Warn().Err(err).Str("path", doc).Msg("cannot read front-matter")
				return nil
			}

			var meta Meta
			_, err = frontmatter.Split(ctx, data, &meta)
			if err != nil {
				if !errors.Is(err, frontmatter.ErrNoFrontMatter) {
					l.logger.Warn().Err(err).Str("path", doc).Msg("ignoring front-matter")
				}
				return nil
			}

			mu.Lock()
			result[doc] = meta
			mu.Unlock()

			return nil
		})
	}

	err := p.Wait()
	if err != nil {
		return nil, fmt.Errorf("reading front-matter failed: %w", err)
	}

	return result, nil
}

var _ Provider = &Library{}
