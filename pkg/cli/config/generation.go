package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/secmon-lab/briareos/pkg/service/agent"
	"github.com/secmon-lab/briareos/pkg/service/knowledge"
	"github.com/secmon-lab/briareos/pkg/usecase"
	"github.com/urfave/cli/v3"
)

// GenerationConfig tunes retrieval and draft generation
type GenerationConfig struct {
	MemoryTopK    int  `toml:"memory_top_k"`
	KnowledgeTopK int  `toml:"knowledge_top_k"`
	ChunkSize     int  `toml:"chunk_size"`
	ChunkOverlap  int  `toml:"chunk_overlap"`
	MaxLoops      int  `toml:"max_loops"`
	HistoryTurns  int  `toml:"history_turns"`
	AutoGenerate  bool `toml:"auto_generate"`
}

// DefaultGenerationConfig returns the values used when no file is given
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		MemoryTopK:    usecase.DefaultMemoryTopK,
		KnowledgeTopK: usecase.DefaultKnowledgeTopK,
		ChunkSize:     knowledge.DefaultChunkSize,
		ChunkOverlap:  knowledge.DefaultChunkOverlap,
		MaxLoops:      agent.DefaultLoopLimit,
		HistoryTurns:  agent.DefaultHistoryTurns,
		AutoGenerate:  true,
	}
}

// Validate checks the ranges of every setting
func (c *GenerationConfig) Validate() error {
	positives := []struct {
		name  string
		value int
	}{
		{"memory_top_k", c.MemoryTopK},
		{"knowledge_top_k", c.KnowledgeTopK},
		{"chunk_size", c.ChunkSize},
		{"max_loops", c.MaxLoops},
	}
	for _, p := range positives {
		if p.value < 1 {
			return goerr.Wrap(ErrInvalidConfig, "value must be positive",
				goerr.V(FieldKey, p.name), goerr.V(ValueKey, p.value))
		}
	}

	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return goerr.Wrap(ErrInvalidConfig, "chunk_overlap must be in [0, chunk_size)",
			goerr.V(FieldKey, "chunk_overlap"), goerr.V(ValueKey, c.ChunkOverlap))
	}
	if c.HistoryTurns < 0 {
		return goerr.Wrap(ErrInvalidConfig, "history_turns must not be negative",
			goerr.V(FieldKey, "history_turns"), goerr.V(ValueKey, c.HistoryTurns))
	}
	return nil
}

// LoadGenerationConfig reads a TOML file on top of the defaults. Keys that
// are absent keep their default value.
func LoadGenerationConfig(path string) (*GenerationConfig, error) {
	cfg := DefaultGenerationConfig()

	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, goerr.Wrap(errors.Join(ErrInvalidConfig, err), "failed to parse TOML config",
			goerr.V(ConfigPathKey, path))
	}

	if err := cfg.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &cfg, nil
}

// Generation holds the --config flag
type Generation struct {
	path string
}

func (g *Generation) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML file tuning retrieval and generation",
			Category:    "Generation",
			Sources:     cli.EnvVars("BRIAREOS_CONFIG"),
			Destination: &g.path,
		},
	}
}

func (g *Generation) LogAttrs() []slog.Attr {
	return []slog.Attr{slog.String("config", g.path)}
}

// Configure returns the defaults when no file is configured
func (g *Generation) Configure() (*GenerationConfig, error) {
	if g.path == "" {
		cfg := DefaultGenerationConfig()
		return &cfg, nil
	}
	return LoadGenerationConfig(g.path)
}
