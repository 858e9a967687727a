package server

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/klingtnet/mdv/viewer"
	"github.com/klingtnet/mdv/viewer/content"
	"github.com/klingtnet/mdv/viewer/model"
)

const (
	contentTypeHTML = "text/html; charset=utf-8"
	contentTypeText = "text/plain; charset=utf-8"
	contentTypeJSON = "application/json"
	contentTypeRSS  = "application/rss+xml; charset=utf-8"
)

func (s *Server) home(w http.ResponseWriter, r *http.Request, _ string) error {
	w.Header().Set("Location", "/v")
	w.WriteHeader(http.StatusFound)

	return nil
}

// index refreshes the tree before listing the root directory.
func (s *Server) index(prefix string) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, _ string) error {
		err := s.provider.Refresh(r.Context())
		if err != nil {
			return fmt.Errorf("refresh failed: %w", err)
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		return s.pipeline.Tree(w, prefix, "/", s.provider.Current().Tree())
	}
}

// view renders the document at p or, if p is a directory, its listing.
func (s *Server) view(prefix string) handlerFunc {
	return func(w http.ResponseWriter, r *http.Request, p string) error {
		snap := s.provider.Current()

		if snap.IsFile(p) {
			html, err := snap.Content(p, false)
			if err != nil {
				return err
			}

			w.Header().Set("Content-Type", contentTypeHTML)
			return s.pipeline.File(w, prefix, p, snap.Title(p), html)
		}

		children, ok := model.Resolve(snap.Tree(), p)
		if !ok {
			return content.ErrNotFound
		}

		w.Header().Set("Content-Type", contentTypeHTML)
		return s.pipeline.Tree(w, prefix, p, children)
	}
}

func (s *Server) text(w http.ResponseWriter, r *http.Request, p string) error {
	raw, err := s.provider.Current().Content(p, true)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", contentTypeText)
	_, err = w.Write([]byte(raw))
	return err
}

func (s *Server) tree(w http.ResponseWriter, r *http.Request, _ string) error {
	return writeJSON(w, s.provider.Current().Tree())
}

func (s *Server) search(w http.ResponseWriter, r *http.Request, _ string) error {
	results, err := s.provider.Search(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		return err
	}
	if results == nil {
		results = []content.SearchResult{}
	}

	return writeJSON(w, results)
}

func (s *Server) feed(w http.ResponseWriter, r *http.Request, p string) error {
	feed, err := viewer.BuildFeed(s.provider.Current(), p, s.baseURL, s.now())
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", contentTypeRSS)
	return feed.WriteRss(w)
}

// static serves files of the static file system, directories are not listed.
func (s *Server) static(w http.ResponseWriter, r *http.Request, p string) error {
	if !fs.ValidPath(p) {
		return content.ErrNotFound
	}
	info, err := fs.Stat(s.staticFS, p)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return content.ErrNotFound
	}

	http.ServeFileFS(w, r, s.staticFS, p)

	return nil
}

func writeJSON(w http.ResponseWriter, v interface{}) error {
	w.Header().Set("Content-Type", contentTypeJSON)
	return json.NewEncoder(w).Encode(v)
}
