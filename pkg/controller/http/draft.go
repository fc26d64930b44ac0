package http

import (
	"net/http"

	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/usecase"
	"github.com/secmon-lab/briareos/pkg/utils/errutil"
)

type updateDraftRequest struct {
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

func getLatestDraftHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, ok := pathID(w, r, "ticketID")
		if !ok {
			return
		}

		draft, err := uc.Draft.GetLatestDraft(r.Context(), ticketID)
		if err != nil {
			handleError(w, r, err, "Failed to get draft")
			return
		}

		errutil.WriteJSON(w, http.StatusOK, toDraftResponse(draft))
	}
}

func updateDraftHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		draftID, ok := pathID(w, r, "draftID")
		if !ok {
			return
		}

		var req updateDraftRequest
		if !decodeBody(w, r, &req) {
			return
		}

		update := usecase.DraftUpdate{Content: req.Content}
		if req.Status != nil {
			status := types.DraftStatus(*req.Status)
			update.Status = &status
		}

		result, err := uc.Draft.UpdateDraft(r.Context(), draftID, update)
		if err != nil {
			handleError(w, r, err, "Failed to update draft")
			return
		}

		errutil.WriteJSON(w, http.StatusOK, toDraftUpdateResponse(result))
	}
}
