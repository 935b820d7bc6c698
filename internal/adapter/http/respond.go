package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/couchcryptid/peak-catalog/internal/catalog"
	"github.com/couchcryptid/peak-catalog/internal/domain"
	"github.com/couchcryptid/peak-catalog/internal/validation"
)

const maxJSONBody = 1 << 20

type errorBody struct {
	Error  string                  `json:"error"`
	Fields []validation.FieldError `json:"fields,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeError maps catalog errors onto status codes. Unexpected errors are
// logged and reported without detail.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *validation.Error
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: verr.Error(), Fields: verr.Fields})
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, domain.ErrPeakNotFound):
		writeMessage(w, http.StatusNotFound, "peak not found")
	case errors.Is(err, domain.ErrNotConfigured):
		writeMessage(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, catalog.ErrSignupRejected):
		writeMessage(w, http.StatusConflict, "signup rejected")
	default:
		s.log(r).Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeMessage(w, http.StatusBadGateway, "backend request failed")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(v); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// bearerToken extracts the session token, writing 401 when absent.
func bearerToken(w http.ResponseWriter, r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(h, "Bearer ")
	token = strings.TrimSpace(token)
	if !ok || token == "" {
		writeMessage(w, http.StatusUnauthorized, "missing bearer token")
		return "", false
	}
	return token, true
}
