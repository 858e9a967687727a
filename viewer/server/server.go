// Package server implements the HTTP interface of the markdown viewer.
//
// Every request is matched against a fixed table of endpoints. Handlers render
// into a buffer, so a failing handler never leaves a partially written response.
package server

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/klingtnet/mdv/internal/metrics"
	"github.com/klingtnet/mdv/viewer/content"
	"github.com/klingtnet/mdv/viewer/renderer"
	"github.com/rs/zerolog"
)

// ErrMissingHandler is returned by New if an endpoint has no handler.
var ErrMissingHandler = fmt.Errorf("missing handler")

// NotFoundBody is the response body of unknown routes and paths.
const NotFoundBody = "Not found"

// handlerFunc handles a request for a matched endpoint, p is the path parameter of the route.
type handlerFunc func(w http.ResponseWriter, r *http.Request, p string) error

// StatusError is implemented by errors that carry their own response status.
type StatusError interface {
	error
	HTTPStatus() int
}

// Server dispatches requests to the endpoint handlers.
type Server struct {
	provider content.Provider
	pipeline *renderer.Pipeline
	staticFS fs.FS
	baseURL  string
	logger   zerolog.Logger
	now      func() time.Time

	handlers map[Endpoint]handlerFunc
	handler  http.Handler
}

// New returns a Server.
// baseURL is only used for absolute links in feeds and may be empty.
func New(provider content.Provider, pipeline *renderer.Pipeline, staticFS fs.FS, baseURL string, logger zerolog.Logger) (*Server, error) {
	s := &Server{
		provider: provider,
		pipeline: pipeline,
		staticFS: staticFS,
		baseURL:  baseURL,
		logger:   logger.With().Str("component", "server").Logger(),
		now:      time.Now,
	}
	s.handlers = map[Endpoint]handlerFunc{
		EndpointHome:       s.home,
		EndpointIndex:      s.index(renderer.PrefixViewer),
		EndpointView:       s.view(renderer.PrefixViewer),
		EndpointPlainIndex: s.index(renderer.PrefixPlain),
		EndpointPlain:      s.view(renderer.PrefixPlain),
		EndpointText:       s.text,
		EndpointTree:       s.tree,
		EndpointSearch:     s.search,
		EndpointFeed:       s.feed,
		EndpointStatic:     s.static,
	}
	err := checkHandlers(s.handlers)
	if err != nil {
		return nil, err
	}
	s.handler = withRecovery(s.logger, http.HandlerFunc(s.dispatch))

	return s, nil
}

func checkHandlers(handlers map[Endpoint]handlerFunc) error {
	for _, endpoint := range Endpoints() {
		if handlers[endpoint] == nil {
			return fmt.Errorf("%w: %s", ErrMissingHandler, endpoint)
		}
	}

	return nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if target, ok := redirects[r.URL.Path]; ok {
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
		return
	}

	endpoint, p, ok := Match(r.URL.Path)
	if !ok {
		notFound(w)
		s.logRequest(r, "unmatched", http.StatusNotFound, start)
		return
	}

	buf := &bufferedResponse{header: make(http.Header), status: http.StatusOK}
	err := s.handlers[endpoint](buf, r, p)
	status := buf.status
	if err != nil {
		status = s.writeError(w, r, endpoint, err)
	} else {
		buf.flush(w)
	}
	s.logRequest(r, endpoint.String(), status, start)
}

func (s *Server) logRequest(r *http.Request, endpoint string, status int, start time.Time) {
	took := time.Since(start)
	metrics.RecordHTTPRequest(endpoint, status, took)
	s.logger.Debug().
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Str("endpoint", endpoint).
		Int("status", status).
		Dur("took", took).
		Msg("request")
}

// writeError writes the response for err and returns its status.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, endpoint Endpoint, err error) int {
	if errors.Is(err, content.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		notFound(w)
		return http.StatusNotFound
	}

	var statusErr StatusError
	if errors.As(err, &statusErr) {
		writeText(w, statusErr.HTTPStatus(), statusErr.Error())
		return statusErr.HTTPStatus()
	}

	s.logger.Error().
		Err(err).
		Str("endpoint", endpoint.String()).
		Str("path", r.URL.Path).
		Msg("request failed")
	writeText(w, http.StatusInternalServerError, "Internal server error")

	return http.StatusInternalServerError
}

func notFound(w http.ResponseWriter) {
	writeText(w, http.StatusNotFound, NotFoundBody)
}

func writeText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

// bufferedResponse collects a response until the handler has finished.
type bufferedResponse struct {
	header http.Header
	status int
	body   bytes.Buffer
}

func (b *bufferedResponse) Header() http.Header {
	return b.header
}

func (b *bufferedResponse) Write(p []byte) (int, error) {
	return b.body.Write(p)
}

func (b *bufferedResponse) WriteHeader(status int) {
	b.status = status
}

func (b *bufferedResponse) flush(w http.ResponseWriter) {
	for key, values := range b.header {
		w.Header()[key] = values
	}
	w.WriteHeader(b.status)
	_, _ = b.body.WriteTo(w)
}
