// Package main implements the CLI for mdv, a viewer for directories of markdown documents.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

const (
	InternalError = iota + 1
	BadArgument
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "config file to use (JSON, YAML or TOML)",
		},
		&cli.StringFlag{
			Name:    "dir",
			Aliases: []string{"d"},
			Usage:   "directory containing the markdown documents",
			Value:   ".",
		},
		&cli.StringFlag{
			Name:    "host",
			Aliases: []string{"H"},
			Usage:   "host to listen on",
			Value:   "localhost",
		},
		&cli.IntFlag{
			Name:    "port",
			Aliases: []string{"p"},
			Usage:   "port to listen on",
			Value:   5000,
		},
		&cli.StringFlag{
			Name:  "watch",
			Usage: "refresh the tree on changes, one of off, poll or notify",
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "one of trace, debug, info, warn or error",
		},
		&cli.BoolFlag{
			Name:  "log-pretty",
			Usage: "human readable log output",
		},
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:        "mdv",
		Usage:       "browse a directory of markdown documents in the browser",
		Description: "Serves a rendered view of a markdown directory tree. Flags overwrite config file settings.",
		Flags:       globalFlags(),
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "start the web server (default)",
				Action: serve,
			},
			{
				Name:  "export",
				Usage: "render the whole tree into static files",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "output",
						Aliases:  []string{"o"},
						Usage:    "path to output folder",
						Required: true,
					},
				},
				Action: export,
			},
		},
		Action: serve,
	}
}

func main() {
	err := newApp().Run(os.Args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(InternalError)
	}
}
