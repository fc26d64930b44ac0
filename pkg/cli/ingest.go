package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdIngest() *cli.Command {
	var source string
	var clearExisting bool
	var appCfg appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Directory or gs://bucket/prefix to ingest (defaults to --kb-location)",
			Destination: &source,
		},
		&cli.BoolFlag{
			Name:        "clear",
			Usage:       "Delete every indexed chunk before ingesting",
			Destination: &clearExisting,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:    "ingest",
		Aliases: []string{"i"},
		Usage:   "Index the knowledge base",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.build(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			location := source
			if location == "" {
				location = appCfg.knowledge.Location()
			}

			result, err := a.uc.Knowledge.Ingest(ctx, location, clearExisting)
			if err != nil {
				return goerr.Wrap(err, "failed to ingest knowledge base")
			}

			printIngestResult(color.Output, location, result)
			return nil
		},
	}
}
