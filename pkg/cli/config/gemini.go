package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gollem/llm/gemini"
	"github.com/urfave/cli/v3"
)

// Gemini selects the Vertex AI project backing the copilot and the embedder.
// Leaving the project empty runs briareos without an LLM.
type Gemini struct {
	projectID string
	location  string
}

func (g *Gemini) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project for Gemini (empty disables the copilot)",
			Category:    "LLM",
			Sources:     cli.EnvVars("BRIAREOS_GEMINI_PROJECT"),
			Destination: &g.projectID,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Vertex AI region for Gemini",
			Category:    "LLM",
			Value:       "us-central1",
			Sources:     cli.EnvVars("BRIAREOS_GEMINI_LOCATION"),
			Destination: &g.location,
		},
	}
}

func (g *Gemini) Enabled() bool {
	return g.projectID != ""
}

func (g Gemini) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Bool("enabled", g.Enabled()),
		slog.String("project_id", g.projectID),
		slog.String("location", g.location),
	)
}

// Configure returns a nil client when no project is set.
func (g *Gemini) Configure(ctx context.Context) (gollem.LLMClient, error) {
	if !g.Enabled() {
		return nil, nil
	}
	if g.location == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "gemini location is required",
			goerr.V(FlagKey, "gemini-location"))
	}

	client, err := gemini.New(ctx, g.projectID, g.location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create Gemini client",
			goerr.V("project_id", g.projectID),
			goerr.V("location", g.location))
	}

	return client, nil
}
