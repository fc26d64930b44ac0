package usecase

import (
	"context"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/service/knowledge"
	"github.com/secmon-lab/briareos/pkg/utils/logging"
	"github.com/secmon-lab/briareos/pkg/utils/safe"
)

// KnowledgeUseCase indexes knowledge-base documents
type KnowledgeUseCase struct {
	service  *knowledge.Service
	location string
}

// NewKnowledgeUseCase creates a KnowledgeUseCase that ingests from location
// (a directory or gs://bucket/prefix) unless a call overrides it.
func NewKnowledgeUseCase(service *knowledge.Service, location string) *KnowledgeUseCase {
	return &KnowledgeUseCase{
		service:  service,
		location: location,
	}
}

// Ingest indexes every supported document of the source. An empty location
// uses the configured default.
func (uc *KnowledgeUseCase) Ingest(ctx context.Context, location string, clearExisting bool) (*model.IngestResult, error) {
	if location == "" {
		location = uc.location
	}
	if location == "" {
		return nil, goerr.New("knowledge base location is not configured")
	}

	src, err := knowledge.NewSource(ctx, location)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open knowledge source", goerr.V("location", location))
	}
	if closer, ok := src.(io.Closer); ok {
		defer safe.Close(ctx, "knowledge source", closer)
	}

	result, err := uc.service.Ingest(ctx, knowledge.IngestOption{
		Source:        src,
		ClearExisting: clearExisting,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to ingest knowledge base", goerr.V("location", location))
	}

	logging.From(ctx).Info("knowledge source ingested",
		"location", location,
		"files", result.FilesIndexed,
		"chunks", result.ChunksIndexed,
		"collection_count", result.CollectionCount,
	)
	return result, nil
}
