package main

import (
	"fmt"
	"time"

	"github.com/klingtnet/mdv/viewer"
	"github.com/urfave/cli/v2"
)

func export(c *cli.Context) error {
	env, err := setup(c)
	if err != nil {
		return err
	}

	start := time.Now()
	storage := viewer.NewFileStorage(c.String("output"))
	err = viewer.NewExporter(
		env.library.Current(),
		env.pipeline,
		env.resources.staticFS,
		storage,
		env.config.BaseURL,
		env.logger,
	).Run(c.Context)
	if err != nil {
		return cli.Exit(fmt.Sprintf("export failed: %s", err.Error()), InternalError)
	}
	env.logger.Info().
		Str("output", c.String("output")).
		Dur("took", time.Since(start)).
		Msg("exported")

	return nil
}
