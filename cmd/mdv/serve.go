package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/klingtnet/mdv/internal/fswatcher"
	"github.com/klingtnet/mdv/internal/metrics"
	"github.com/klingtnet/mdv/viewer"
	"github.com/klingtnet/mdv/viewer/content"
	"github.com/klingtnet/mdv/viewer/server"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout = 5 * time.Second
	notifyDebounce  = 200 * time.Millisecond
)

func serve(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}

	srv, err := server.New(env.library, env.pipeline, env.resources.staticFS, env.config.BaseURL, env.logger)
	if err != nil {
		return cli.Exit(fmt.Sprintf("creating server failed: %s", err.Error()), InternalError)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	servers := []*http.Server{{
		Addr:              env.config.Addr(),
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}}
	if env.config.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", metrics.Handler())
		servers = append(servers, &http.Server{
			Addr:              env.config.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		})
	}

	for _, httpServer := range servers {
		g.Go(func() error {
			env.logger.Info().Str("addr", httpServer.Addr).Msg("listening")
			err := httpServer.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var shutdownErr error
		for _, httpServer := range servers {
			shutdownErr = errors.Join(shutdownErr, httpServer.Shutdown(shutdownCtx))
		}
		return shutdownErr
	})

	watcher := newWatcher(env.config, env.resources, watchSkip(env.config, env.library), env.logger)
	if watcher != nil {
		g.Go(func() error {
			watch(ctx, watcher, env.library, env.logger)
			return nil
		})
	}

	err = g.Wait()
	if err != nil {
		return cli.Exit(fmt.Sprintf("server failed: %s", err.Error()), InternalError)
	}

	return nil
}

// watchSkip ignores everything the library leaves out of the tree, except for the ignore file itself.
func watchSkip(config *viewer.Config, library *content.Library) fswatcher.SkipFunc {
	return func(p string, d fs.DirEntry) bool {
		return p != config.IgnoreFile && library.Excluded(p, d)
	}
}

func newWatcher(config *viewer.Config, resources *resources, skip fswatcher.SkipFunc, logger zerolog.Logger) fswatcher.Watcher {
	switch config.Watch {
	case viewer.WatchPoll:
		return fswatcher.NewPoller(resources.contentFS, time.NewTicker(config.WatchInterval), skip)
	case viewer.WatchNotify:
		return fswatcher.NewNotifier(config.Dir, notifyDebounce, skip, logger)
	default:
		return nil
	}
}

// watch refreshes provider on every detected change until ctx is done or the watcher fails.
func watch(ctx context.Context, watcher fswatcher.Watcher, provider content.Provider, logger zerolog.Logger) {
	for result := range watcher.Watch(ctx) {
		if result.Err != nil {
			if ctx.Err() == nil {
				logger.Error().Err(result.Err).Msg("watching for changes stopped")
			}
			return
		}
		if !result.HasChanged {
			continue
		}

		logger.Debug().Msg("content changed, refreshing")
		// Failures are logged by the provider and the previous tree stays in place.
		_ = provider.Refresh(ctx)
	}
}
