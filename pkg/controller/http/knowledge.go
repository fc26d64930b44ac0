package http

import (
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/usecase"
	"github.com/secmon-lab/briareos/pkg/utils/errutil"
)

type ingestKnowledgeRequest struct {
	ClearExisting bool `json:"clear_existing"`
}

func ingestKnowledgeHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if uc.Knowledge == nil {
			errutil.HandleHTTP(r.Context(), w, goerr.New("knowledge base is not configured"),
				http.StatusServiceUnavailable, "Knowledge base is not configured")
			return
		}

		var req ingestKnowledgeRequest
		if !decodeBody(w, r, &req) {
			return
		}

		result, err := uc.Knowledge.Ingest(r.Context(), "", req.ClearExisting)
		if err != nil {
			handleError(w, r, err, "Ingestion failed")
			return
		}

		errutil.WriteJSON(w, http.StatusOK, result)
	}
}
