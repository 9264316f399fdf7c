package httpx

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/appetiteclub/apt"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/appetiteclub/pos/internal/apperr"
)

const MaxBodyBytes = 1 << 20

// DecodeJSON reads a bounded body into dst. On failure it writes a
// validation envelope and returns false. An empty body decodes to the zero
// value.
func DecodeJSON(w http.ResponseWriter, r *http.Request, log apt.Logger, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	defer r.Body.Close()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Debug("failed to read request body", "error", err)
		RespondError(w, apperr.Validation(apperr.ReasonInvalidBody, "Failed to read request body"))
		return false
	}

	if len(body) == 0 {
		return true
	}

	if err := json.Unmarshal(body, dst); err != nil {
		log.Debug("failed to decode request body", "error", err)
		RespondError(w, apperr.Validation(apperr.ReasonInvalidBody, "Invalid JSON in request body"))
		return false
	}

	return true
}

// UUIDParam parses the named chi URL parameter.
func UUIDParam(w http.ResponseWriter, r *http.Request, log apt.Logger, name string) (uuid.UUID, bool) {
	raw := chi.URLParam(r, name)
	if raw == "" {
		log.Debug("missing url parameter", "param", name)
		RespondError(w, apperr.Validation(apperr.ReasonInvalidID, "Missing "+name+" parameter"))
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		log.Debug("invalid url parameter", "param", name, "value", raw)
		RespondError(w, apperr.Validation(apperr.ReasonInvalidID, "Invalid "+name+" parameter"))
		return uuid.Nil, false
	}

	return id, true
}

// RequestLogger scopes logger to the request id set by the apt middleware.
func RequestLogger(logger apt.Logger, r *http.Request) apt.Logger {
	return logger.With("request_id", apt.RequestIDFrom(r.Context()))
}
