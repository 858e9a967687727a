package main

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/klingtnet/mdv/slug"
	"github.com/klingtnet/mdv/viewer"
	"github.com/klingtnet/mdv/viewer/content"
	"github.com/klingtnet/mdv/viewer/renderer"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
)

// flagOverride applies explicitly set flags on top of the configuration.
func flagOverride(config *viewer.Config, c *cli.Context) {
	if c.IsSet("dir") {
		config.Dir = c.String("dir")
	}
	if c.IsSet("host") {
		config.Host = c.String("host")
	}
	if c.IsSet("port") {
		config.Port = c.Int("port")
	}
	if c.IsSet("watch") {
		config.Watch = c.String("watch")
	}
	if c.IsSet("log-level") {
		config.LogLevel = c.String("log-level")
	}
	if c.IsSet("log-pretty") {
		config.LogPretty = c.Bool("log-pretty")
	}
}

type resources struct {
	contentFS, staticFS, templateFS fs.FS
}

func initResources(config *viewer.Config) *resources {
	r := &resources{
		contentFS:  os.DirFS(config.Dir),
		staticFS:   viewer.DefaultStaticFS(),
		templateFS: viewer.DefaultTemplateFS(),
	}

	if config.StaticDir != "" {
		r.staticFS = os.DirFS(config.StaticDir)
	}
	if config.TemplatesDir != "" {
		r.templateFS = os.DirFS(config.TemplatesDir)
	}

	return r
}

func newLogger(config *viewer.Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(config.LogLevel)
	if err != nil {
		return zerolog.Nop(), err
	}

	if config.LogPretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
			Level(level).
			With().Timestamp().Logger(), nil
	}

	return zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger(), nil
}

type environment struct {
	config    *viewer.Config
	resources *resources
	logger    zerolog.Logger
	pipeline  *renderer.Pipeline
	library   *content.Library
}

func setup(c *cli.Context) (env *environment, err error) {
	env = &environment{}

	env.config, err = viewer.ParseConfigFile(c.String("config"))
	if err != nil {
		err = cli.Exit(
			fmt.Sprintf("parsing config %q failed: %s", c.String("config"), err.Error()),
			BadArgument,
		)
		return
	}
	flagOverride(env.config, c)

	err = env.config.Validate()
	if err != nil {
		err = cli.Exit(fmt.Sprintf("bad config: %s", err.Error()), BadArgument)
		return
	}

	env.logger, err = newLogger(env.config)
	if err != nil {
		err = cli.Exit(fmt.Sprintf("bad log level: %s", err.Error()), BadArgument)
		return
	}

	env.resources = initResources(env.config)

	slugifier := slug.NewSlugifier('-')
	md := renderer.NewMarkdown(renderer.NewGoldmark(env.config.UnsafeHTML), slugifier)
	templates, err := renderer.NewTemplates(env.resources.templateFS)
	if err != nil {
		err = cli.Exit(fmt.Sprintf("bad templates: %s", err.Error()), BadArgument)
		return
	}
	highlightCSS, err := renderer.HighlightCSS(env.config.HighlightStyle)
	if err != nil {
		err = cli.Exit(fmt.Sprintf("bad highlight style: %s", err.Error()), BadArgument)
		return
	}
	env.pipeline = renderer.NewPipeline(md, templates, highlightCSS)

	env.library, err = content.NewLibrary(c.Context, env.resources.contentFS, md, slugifier, env.logger, content.Options{
		IgnoreFile:       env.config.IgnoreFile,
		MaxSearchResults: env.config.MaxSearchResults,
	})
	if err != nil {
		err = cli.Exit(fmt.Sprintf("reading %q failed: %s", env.config.Dir, err.Error()), InternalError)
		return
	}

	return
}
