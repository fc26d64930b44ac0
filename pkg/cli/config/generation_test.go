package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/cli/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "briareos.toml")
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestGeneration_Configure(t *testing.T) {
	t.Run("defaults without file", func(t *testing.T) {
		cfg, err := config.NewGenerationForTest("").Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.MemoryTopK).Equal(5)
		gt.Value(t, cfg.KnowledgeTopK).Equal(4)
		gt.Value(t, cfg.ChunkSize).Equal(800)
		gt.Value(t, cfg.ChunkOverlap).Equal(120)
		gt.Value(t, cfg.MaxLoops).Equal(20)
		gt.Bool(t, cfg.AutoGenerate).True()
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writeConfig(t, `
memory_top_k = 8
auto_generate = false
`)
		cfg, err := config.NewGenerationForTest(path).Configure()
		gt.NoError(t, err).Required()
		gt.Value(t, cfg.MemoryTopK).Equal(8)
		gt.Value(t, cfg.KnowledgeTopK).Equal(4)
		gt.Value(t, cfg.ChunkSize).Equal(800)
		gt.Bool(t, cfg.AutoGenerate).False()
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := config.NewGenerationForTest(filepath.Join(t.TempDir(), "none.toml")).Configure()
		gt.Error(t, err).Is(config.ErrConfigNotFound)
	})

	t.Run("broken TOML", func(t *testing.T) {
		_, err := config.NewGenerationForTest(writeConfig(t, "memory_top_k = [")).Configure()
		gt.Error(t, err).Is(config.ErrInvalidConfig)
	})

	t.Run("flags", func(t *testing.T) {
		gt.Array(t, config.NewGenerationForTest("").Flags()).Length(1)
	})
}

func TestGenerationConfig_Validate(t *testing.T) {
	testCases := []struct {
		name    string
		modify  func(*config.GenerationConfig)
		wantErr bool
	}{
		{name: "defaults", modify: func(c *config.GenerationConfig) {}},
		{name: "zero memory top-k", modify: func(c *config.GenerationConfig) { c.MemoryTopK = 0 }, wantErr: true},
		{name: "zero knowledge top-k", modify: func(c *config.GenerationConfig) { c.KnowledgeTopK = 0 }, wantErr: true},
		{name: "zero max loops", modify: func(c *config.GenerationConfig) { c.MaxLoops = 0 }, wantErr: true},
		{name: "overlap equals size", modify: func(c *config.GenerationConfig) { c.ChunkOverlap = c.ChunkSize }, wantErr: true},
		{name: "negative overlap", modify: func(c *config.GenerationConfig) { c.ChunkOverlap = -1 }, wantErr: true},
		{name: "zero overlap", modify: func(c *config.GenerationConfig) { c.ChunkOverlap = 0 }},
		{name: "negative history", modify: func(c *config.GenerationConfig) { c.HistoryTurns = -1 }, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultGenerationConfig()
			tc.modify(&cfg)
			err := cfg.Validate()
			if tc.wantErr {
				gt.Error(t, err).Is(config.ErrInvalidConfig)
			} else {
				gt.NoError(t, err)
			}
		})
	}
}
