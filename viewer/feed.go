package viewer

import (
	"errors"
	"fmt"
	"path"
	"runtime"
	"time"

	"github.com/gorilla/feeds"
	"github.com/klingtnet/mdv/viewer/content"
	"github.com/klingtnet/mdv/viewer/model"
	"github.com/klingtnet/mdv/viewer/renderer"
	"golang.org/x/sync/errgroup"
)

// BuildFeed returns a feed of the documents directly inside of directory dir.
// Item links point to the viewer pages of the documents, absolute if baseURL is set.
func BuildFeed(snap content.Snapshot, dir, baseURL string, now time.Time) (*feeds.Feed, error) {
	dir = model.Clean(dir)
	children, ok := model.Resolve(snap.Tree(), dir)
	if !ok {
		return nil, fmt.Errorf("%w: %s", content.ErrNotFound, dir)
	}

	feed := &feeds.Feed{
		Title:   renderer.DocumentTitle(dir),
		Link:    &feeds.Link{Href: AbsLink(baseURL, renderer.ListingLink(renderer.PrefixViewer, dir, ""))},
		Created: now,
	}

	var documents []string
	for _, child := range children {
		if !child.IsDir() {
			documents = append(documents, path.Join(dir, child.Name))
		}
	}

	items := make([]*feeds.Item, len(documents))
	eg := errgroup.Group{}
	eg.SetLimit(runtime.NumCPU())
	for i, doc := range documents {
		eg.Go(func() error {
			html, err := snap.Content(doc, false)
			if errors.Is(err, content.ErrNotFound) {
				// Removed since the last refresh.
				return nil
			}
			if err != nil {
				return fmt.Errorf("rendering feed item %q failed: %w", doc, err)
			}

			meta := snap.Meta(doc)
			item := &feeds.Item{
				Title:       meta.Title,
				Description: meta.Description,
				Link:        &feeds.Link{Href: AbsLink(baseURL, renderer.ListingLink(renderer.PrefixViewer, "", doc))},
				Created:     now,
				Content:     html,
			}
			item.Id = item.Link.Href
			if item.Title == "" {
				item.Title = renderer.DocumentTitle(doc)
			}
			if meta.Author != "" {
				item.Author = &feeds.Author{Name: meta.Author}
			}
			if meta.Date != nil {
				item.Created = meta.Date.Time()
			}
			items[i] = item

			return nil
		})
	}
	err := eg.Wait()
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		if item != nil {
			feed.Items = append(feed.Items, item)
		}
	}

	return feed, nil
}
