package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/briareos/pkg/utils/errutil"
)

// maxBodySize bounds JSON request bodies
const maxBodySize = 1 << 20

// decodeBody decodes the JSON body into v. An empty body leaves v untouched.
// On failure a 400 response is written and false is returned.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return true
		}
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to decode request body"),
			http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// pathID parses a positive integer URL parameter. On failure a 422
// response is written and false is returned.
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		errutil.HandleHTTP(r.Context(), w, goerr.New("invalid path parameter",
			goerr.V("name", name), goerr.V("value", raw)),
			http.StatusUnprocessableEntity, "Invalid "+name)
		return 0, false
	}
	return id, true
}
