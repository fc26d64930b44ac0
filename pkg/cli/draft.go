package cli

import (
	"context"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdDraft() *cli.Command {
	var ticketID int64
	var appCfg appConfig

	flags := []cli.Flag{
		&cli.Int64Flag{
			Name:        "ticket-id",
			Aliases:     []string{"t"},
			Usage:       "Ticket to generate a draft for",
			Required:    true,
			Destination: &ticketID,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:    "draft",
		Aliases: []string{"d"},
		Usage:   "Generate a draft reply for one ticket and print it",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			a, err := appCfg.build(ctx)
			if err != nil {
				return err
			}
			defer a.Close(ctx)

			ticket, err := a.uc.Ticket.GetTicket(ctx, ticketID)
			if err != nil {
				return goerr.Wrap(err, "failed to load ticket")
			}

			draft, err := a.uc.Draft.GenerateDraft(ctx, ticketID)
			if err != nil {
				return goerr.Wrap(err, "failed to generate draft")
			}

			printDraft(color.Output, ticket, draft)
			return nil
		},
	}
}
