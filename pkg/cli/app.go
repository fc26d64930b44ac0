package cli

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/secmon-lab/briareos/pkg/agent/tool/support"
	"github.com/secmon-lab/briareos/pkg/cli/config"
	"github.com/secmon-lab/briareos/pkg/domain/interfaces"
	"github.com/secmon-lab/briareos/pkg/service/agent"
	"github.com/secmon-lab/briareos/pkg/service/embedding"
	"github.com/secmon-lab/briareos/pkg/service/knowledge"
	"github.com/secmon-lab/briareos/pkg/service/memstore"
	"github.com/secmon-lab/briareos/pkg/usecase"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
	"github.com/secmon-lab/briareos/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

// appConfig groups the flags shared by every command that runs the copilot
type appConfig struct {
	gemini     config.Gemini
	repository config.Repository
	generation config.Generation
	knowledge  config.Knowledge
	slack      config.Slack
}

func (x *appConfig) Flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, x.gemini.Flags()...)
	flags = append(flags, x.repository.Flags()...)
	flags = append(flags, x.generation.Flags()...)
	flags = append(flags, x.knowledge.Flags()...)
	flags = append(flags, x.slack.Flags()...)
	return flags
}

// app is the wired application
type app struct {
	repo       interfaces.Repository
	uc         *usecase.UseCases
	registry   *prometheus.Registry
	tools      []gollem.Tool
	generation *config.GenerationConfig
}

func (a *app) Close(ctx context.Context) {
	safe.Close(ctx, "repository", a.repo)
}

// build wires repository, LLM, retrieval and use cases. Without an LLM the
// copilot is disabled and the embedder falls back to local hashing.
func (x *appConfig) build(ctx context.Context) (*app, error) {
	x.logConfig(ctx)

	genCfg, err := x.generation.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load generation config")
	}

	llmClient, err := x.gemini.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure LLM client")
	}

	notifier, err := x.slack.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure slack notifier")
	}

	repo, err := x.repository.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}

	registry := prometheus.NewRegistry()
	metrics := usecase.NewMetrics(registry)

	embedder := embedding.New(llmClient)
	kbService := knowledge.New(repo, embedder,
		knowledge.WithChunking(genCfg.ChunkSize, genCfg.ChunkOverlap),
		knowledge.WithTopK(genCfg.KnowledgeTopK),
	)
	tools := support.New(repo)

	ucOpts := []usecase.Option{
		usecase.WithMetrics(metrics),
		usecase.WithKnowledge(kbService, x.knowledge.Location()),
	}
	if notifier != nil {
		ucOpts = append(ucOpts, usecase.WithNotifier(notifier))
		logging.Default().Info("Slack draft notifications enabled")
	}

	if llmClient != nil {
		copilot, err := newCopilot(llmClient, repo, embedder, kbService, tools, genCfg, metrics)
		if err != nil {
			_ = repo.Close()
			return nil, err
		}
		ucOpts = append(ucOpts, usecase.WithCopilot(copilot))
	} else {
		logging.Default().Warn("LLM is not configured, draft generation is disabled")
	}

	return &app{
		repo:       repo,
		uc:         usecase.New(repo, ucOpts...),
		registry:   registry,
		tools:      tools,
		generation: genCfg,
	}, nil
}

func (x *appConfig) logConfig(ctx context.Context) {
	var attrs []slog.Attr
	attrs = append(attrs, slog.Any("gemini", x.gemini))
	attrs = append(attrs, slog.Attr{Key: "repository", Value: slog.GroupValue(x.repository.LogAttrs()...)})
	attrs = append(attrs, slog.Attr{Key: "generation", Value: slog.GroupValue(x.generation.LogAttrs()...)})
	attrs = append(attrs, slog.Attr{Key: "knowledge", Value: slog.GroupValue(x.knowledge.LogAttrs()...)})
	attrs = append(attrs, slog.Bool("slack", x.slack.IsConfigured()))
	logging.Default().LogAttrs(ctx, slog.LevelInfo, "Application configuration", attrs...)
}

func newCopilot(llmClient gollem.LLMClient, repo interfaces.Repository, embedder *embedding.Embedder, kb *knowledge.Service, tools []gollem.Tool, genCfg *config.GenerationConfig, metrics *usecase.Metrics) (*usecase.Copilot, error) {
	runtime, err := agent.New(llmClient,
		agent.WithTools(tools...),
		agent.WithLoopLimit(genCfg.MaxLoops),
		agent.WithHistoryTurns(genCfg.HistoryTurns),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create agent runtime")
	}

	completion, err := agent.NewCompletion(llmClient)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create completion model")
	}

	store := memstore.New(repo, embedder, memstore.WithFactExtractor(llmClient))

	copilot, err := usecase.NewCopilot(runtime, completion,
		usecase.WithMemoryStore(store),
		usecase.WithKnowledgeRetriever(kb),
		usecase.WithTopK(genCfg.MemoryTopK, genCfg.KnowledgeTopK),
		usecase.WithCopilotMetrics(metrics),
	)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create copilot")
	}
	return copilot, nil
}
