package http

import (
	"time"

	"github.com/secmon-lab/briareos/pkg/domain/model"
)

type ticketResponse struct {
	ID              int64  `json:"id"`
	CustomerID      int64  `json:"customer_id"`
	CustomerEmail   string `json:"customer_email"`
	CustomerName    string `json:"customer_name,omitempty"`
	CustomerCompany string `json:"customer_company,omitempty"`
	Subject         string `json:"subject"`
	Description     string `json:"description"`
	Status          string `json:"status"`
	Priority        string `json:"priority"`
	CreatedAt       string `json:"created_at"`
	UpdatedAt       string `json:"updated_at"`
}

type draftResponse struct {
	ID          int64                    `json:"id"`
	TicketID    int64                    `json:"ticket_id"`
	Content     string                   `json:"content"`
	ContextUsed *model.StructuredContext `json:"context_used"`
	Status      string                   `json:"status"`
	CreatedAt   string                   `json:"created_at"`
	UpdatedAt   string                   `json:"updated_at"`
}

type draftUpdateResponse struct {
	draftResponse
	MemorySync  *model.MemorySync `json:"memory_sync,omitempty"`
	EntityLinks []string          `json:"entity_links,omitempty"`
}

type generateDraftResponse struct {
	TicketID int64                 `json:"ticket_id"`
	Draft    *draftResponse        `json:"draft,omitempty"`
	Task     *model.GenerationTask `json:"task,omitempty"`
}

type generationStatusResponse struct {
	TicketID int64                   `json:"ticket_id"`
	Latest   *model.GenerationTask   `json:"latest"`
	History  []*model.GenerationTask `json:"history"`
}

type customerMemoriesResponse struct {
	CustomerID    int64             `json:"customer_id"`
	CustomerEmail string            `json:"customer_email"`
	Memories      []model.MemoryHit `json:"memories"`
}

type customerMemorySearchResponse struct {
	CustomerID    int64             `json:"customer_id"`
	CustomerEmail string            `json:"customer_email"`
	Query         string            `json:"query"`
	Results       []model.MemoryHit `json:"results"`
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func toTicketResponse(twc *model.TicketWithCustomer) *ticketResponse {
	if twc == nil || twc.Ticket == nil {
		return nil
	}
	t := twc.Ticket
	resp := &ticketResponse{
		ID:          t.ID,
		CustomerID:  t.CustomerID,
		Subject:     t.Subject,
		Description: t.Description,
		Status:      t.Status.String(),
		Priority:    t.Priority.String(),
		CreatedAt:   formatTime(t.CreatedAt),
		UpdatedAt:   formatTime(t.UpdatedAt),
	}
	if c := twc.Customer; c != nil {
		resp.CustomerEmail = c.Email
		resp.CustomerName = c.Name
		resp.CustomerCompany = c.Company
	}
	return resp
}

func toDraftResponse(d *model.Draft) *draftResponse {
	if d == nil {
		return nil
	}
	return &draftResponse{
		ID:          d.ID,
		TicketID:    d.TicketID,
		Content:     d.Content,
		ContextUsed: d.ContextUsed,
		Status:      d.Status.String(),
		CreatedAt:   formatTime(d.CreatedAt),
		UpdatedAt:   formatTime(d.UpdatedAt),
	}
}

func toDraftUpdateResponse(result *model.DraftUpdateResult) *draftUpdateResponse {
	resp := &draftUpdateResponse{
		draftResponse: *toDraftResponse(result.Draft),
		MemorySync:    result.MemorySync,
	}
	for _, link := range result.EntityLinks {
		resp.EntityLinks = append(resp.EntityLinks, link.String())
	}
	return resp
}

// nonNilHits keeps empty result lists encoded as [] instead of null
func nonNilHits(hits []model.MemoryHit) []model.MemoryHit {
	if hits == nil {
		return []model.MemoryHit{}
	}
	return hits
}
