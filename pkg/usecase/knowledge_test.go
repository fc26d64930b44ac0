package usecase_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/briareos/pkg/repository/memory"
	"github.com/secmon-lab/briareos/pkg/service/embedding"
	"github.com/secmon-lab/briareos/pkg/service/knowledge"
	"github.com/secmon-lab/briareos/pkg/usecase"
)

func TestKnowledgeUseCase_Ingest(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "billing.md"), []byte("Refunds take five business days."), 0o600)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "webhooks.txt"), []byte("Webhooks are retried for 24 hours."), 0o600)).Required()
	gt.NoError(t, os.WriteFile(filepath.Join(dir, "logo.png"), []byte{0x89, 0x50}, 0o600)).Required()

	repo := memory.New()
	svc := knowledge.New(repo, embedding.New(nil))
	uc := usecase.New(repo, usecase.WithKnowledge(svc, dir))
	gt.Value(t, uc.Knowledge).NotNil()

	result, err := uc.Knowledge.Ingest(ctx, "", false)
	gt.NoError(t, err).Required()
	gt.Value(t, result.FilesIndexed).Equal(2)
	gt.Value(t, result.ChunksIndexed).Equal(2)
	gt.Value(t, result.CollectionCount).Equal(2)

	t.Run("re-ingest is idempotent", func(t *testing.T) {
		again, err := uc.Knowledge.Ingest(ctx, dir, false)
		gt.NoError(t, err).Required()
		gt.Value(t, again.CollectionCount).Equal(2)
	})

	t.Run("retrieved by the copilot", func(t *testing.T) {
		hits, err := svc.Search(ctx, "Refunds take five business days.", 1)
		gt.NoError(t, err).Required()
		gt.Array(t, hits).Length(1)
		gt.Value(t, hits[0].Source).Equal("billing.md")
	})

	t.Run("missing location", func(t *testing.T) {
		_, err := usecase.NewKnowledgeUseCase(svc, "").Ingest(ctx, "", false)
		gt.Error(t, err)
	})
}

func TestUseCases_WithoutKnowledge(t *testing.T) {
	uc := usecase.New(memory.New())
	gt.Bool(t, uc.Knowledge == nil).True()
	gt.Bool(t, uc.CopilotAvailable()).False()
}
