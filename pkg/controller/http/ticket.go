package http

import (
	"net/http"
	"strconv"

	"github.com/secmon-lab/briareos/pkg/domain/model"
	"github.com/secmon-lab/briareos/pkg/domain/types"
	"github.com/secmon-lab/briareos/pkg/usecase"
	"github.com/secmon-lab/briareos/pkg/utils/errutil"
)

type createTicketRequest struct {
	CustomerEmail   string  `json:"customer_email"`
	CustomerName    *string `json:"customer_name"`
	CustomerCompany *string `json:"customer_company"`
	Subject         string  `json:"subject"`
	Description     string  `json:"description"`
	Priority        string  `json:"priority"`
	AutoGenerate    *bool   `json:"auto_generate"`
}

func (x *createTicketRequest) toInput(autoGenerate bool) model.NewTicket {
	input := model.NewTicket{
		CustomerEmail: x.CustomerEmail,
		Subject:       x.Subject,
		Description:   x.Description,
		Priority:      types.TicketPriority(x.Priority),
		AutoGenerate:  autoGenerate,
	}
	if x.CustomerName != nil {
		input.CustomerName = *x.CustomerName
	}
	if x.CustomerCompany != nil {
		input.CustomerCompany = *x.CustomerCompany
	}
	if x.AutoGenerate != nil {
		input.AutoGenerate = *x.AutoGenerate
	}
	return input
}

func createTicketHandler(uc *usecase.UseCases, autoGenerate bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTicketRequest
		if !decodeBody(w, r, &req) {
			return
		}

		created, err := uc.Ticket.CreateTicket(r.Context(), req.toInput(autoGenerate))
		if err != nil {
			handleError(w, r, err, "Failed to create ticket")
			return
		}

		errutil.WriteJSON(w, http.StatusOK, toTicketResponse(created))
	}
}

func listTicketsHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tickets, err := uc.Ticket.ListTickets(r.Context())
		if err != nil {
			handleError(w, r, err, "Failed to list tickets")
			return
		}

		resp := make([]*ticketResponse, 0, len(tickets))
		for _, t := range tickets {
			resp = append(resp, toTicketResponse(t))
		}
		errutil.WriteJSON(w, http.StatusOK, resp)
	}
}

func getTicketHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, ok := pathID(w, r, "ticketID")
		if !ok {
			return
		}

		ticket, err := uc.Ticket.GetTicket(r.Context(), ticketID)
		if err != nil {
			handleError(w, r, err, "Failed to get ticket")
			return
		}

		errutil.WriteJSON(w, http.StatusOK, toTicketResponse(ticket))
	}
}

// generateDraftHandler generates a draft synchronously. With ?async=true the
// generation is queued and 202 is returned with the task.
func generateDraftHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, ok := pathID(w, r, "ticketID")
		if !ok {
			return
		}

		if !uc.CopilotAvailable() {
			handleError(w, r, usecase.ErrCopilotUnavailable, "")
			return
		}

		async, _ := strconv.ParseBool(r.URL.Query().Get("async"))
		if async {
			if _, err := uc.Ticket.GetTicket(r.Context(), ticketID); err != nil {
				handleError(w, r, err, "Failed to generate draft")
				return
			}
			task := uc.Draft.GenerateInBackground(r.Context(), ticketID)
			errutil.WriteJSON(w, http.StatusAccepted, generateDraftResponse{
				TicketID: ticketID,
				Task:     &task,
			})
			return
		}

		draft, err := uc.Draft.GenerateDraft(r.Context(), ticketID)
		if err != nil {
			handleError(w, r, err, "Failed to generate draft")
			return
		}

		errutil.WriteJSON(w, http.StatusOK, generateDraftResponse{
			TicketID: ticketID,
			Draft:    toDraftResponse(draft),
		})
	}
}

func generationStatusHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticketID, ok := pathID(w, r, "ticketID")
		if !ok {
			return
		}

		latest, found := uc.Draft.LatestGeneration(ticketID)
		if !found {
			if _, err := uc.Ticket.GetTicket(r.Context(), ticketID); err != nil {
				handleError(w, r, err, "Failed to get generation status")
				return
			}
		}

		history := uc.Draft.Tasks().History(ticketID)
		if history == nil {
			history = []*model.GenerationTask{}
		}
		errutil.WriteJSON(w, http.StatusOK, generationStatusResponse{
			TicketID: ticketID,
			Latest:   latest,
			History:  history,
		})
	}
}
