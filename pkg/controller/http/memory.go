package http

import (
	"net/http"
	"strconv"

	"github.com/secmon-lab/briareos/pkg/usecase"
	"github.com/secmon-lab/briareos/pkg/utils/errutil"
)

func listMemoriesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := pathID(w, r, "customerID")
		if !ok {
			return
		}

		customer, hits, err := uc.Memory.ListCustomerMemories(r.Context(), customerID)
		if err != nil {
			handleError(w, r, err, "Failed to load memories")
			return
		}

		errutil.WriteJSON(w, http.StatusOK, customerMemoriesResponse{
			CustomerID:    customer.ID,
			CustomerEmail: customer.Email,
			Memories:      nonNilHits(hits),
		})
	}
}

func searchMemoriesHandler(uc *usecase.UseCases) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, ok := pathID(w, r, "customerID")
		if !ok {
			return
		}

		query := r.URL.Query().Get("query")
		limit := usecase.DefaultMemorySearchLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			if n, err := strconv.Atoi(raw); err == nil {
				limit = n
			}
		}

		customer, hits, err := uc.Memory.SearchCustomerMemories(r.Context(), customerID, query, limit)
		if err != nil {
			handleError(w, r, err, "Failed to search memories")
			return
		}

		errutil.WriteJSON(w, http.StatusOK, customerMemorySearchResponse{
			CustomerID:    customer.ID,
			CustomerEmail: customer.Email,
			Query:         query,
			Results:       nonNilHits(hits),
		})
	}
}
