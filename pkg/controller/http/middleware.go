package http

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/utils/errutil"
)

// tokenMiddleware validates the bearer token of API requests
func tokenMiddleware(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			given, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || given == "" {
				errutil.HandleHTTP(r.Context(), w, goerr.New("missing bearer token"),
					http.StatusUnauthorized, "Authentication required")
				return
			}

			if subtle.ConstantTimeCompare([]byte(given), []byte(token)) != 1 {
				errutil.HandleHTTP(r.Context(), w, goerr.New("bearer token mismatch"),
					http.StatusUnauthorized, "Invalid authentication token")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
