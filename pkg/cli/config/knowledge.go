package config

import (
	"log/slog"
	"time"

	"github.com/urfave/cli/v3"
)

// Knowledge holds the knowledge-base location and refresh settings
type Knowledge struct {
	location        string
	refreshInterval time.Duration
}

func (x *Knowledge) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "kb-location",
			Usage:       "Knowledge base directory or gs://bucket/prefix",
			Category:    "Knowledge",
			Value:       "knowledge_base",
			Destination: &x.location,
			Sources:     cli.EnvVars("BRIAREOS_KB_LOCATION"),
		},
		&cli.DurationFlag{
			Name:        "kb-refresh-interval",
			Usage:       "Re-ingest the knowledge base periodically (0 disables)",
			Category:    "Knowledge",
			Destination: &x.refreshInterval,
			Sources:     cli.EnvVars("BRIAREOS_KB_REFRESH_INTERVAL"),
		},
	}
}

func (x *Knowledge) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("location", x.location),
		slog.Duration("refresh_interval", x.refreshInterval),
	}
}

func (x *Knowledge) Location() string {
	return x.location
}

func (x *Knowledge) RefreshInterval() time.Duration {
	return x.refreshInterval
}
