package httpx

import (
	"encoding/json"
	"net/http"

	"github.com/appetiteclub/apt"

	"github.com/appetiteclub/pos/internal/apperr"
)

// Envelope is the body of every response of the order core.
type Envelope struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message,omitempty"`
	Data    interface{}            `json:"data"`
	Count   *int                   `json:"count,omitempty"`
	Total   *int64                 `json:"total,omitempty"`
	Page    int                    `json:"page,omitempty"`
	Pages   int                    `json:"pages,omitempty"`
	Error   string                 `json:"error,omitempty"`
	Reason  string                 `json:"reason,omitempty"`
	Context map[string]interface{} `json:"context,omitempty"`
}

// Respond writes a success envelope.
func Respond(w http.ResponseWriter, code int, data interface{}, message string) {
	write(w, code, Envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// RespondList writes a success envelope carrying a collection and its size.
func RespondList(w http.ResponseWriter, data interface{}, count int) {
	write(w, http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Count:   &count,
	})
}

// RespondPage writes one page of a collection with the overall match count.
func RespondPage(w http.ResponseWriter, data interface{}, count int, total int64, page, limit int) {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	write(w, http.StatusOK, Envelope{
		Success: true,
		Data:    data,
		Count:   &count,
		Total:   &total,
		Page:    page,
		Pages:   pages,
	})
}

// RespondError writes a failure envelope. Internal errors never leak their
// cause to the caller.
func RespondError(w http.ResponseWriter, err error) {
	code := apperr.HTTPStatus(err)

	env := Envelope{
		Success: false,
		Reason:  apperr.ReasonOf(err),
		Error:   "Unexpected error",
	}

	if appErr, ok := apperr.As(err); ok && appErr.Kind != apperr.KindInternal {
		env.Error = appErr.Message
		env.Context = appErr.Context
	}

	write(w, code, env)
}

func write(w http.ResponseWriter, code int, env Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(env)
}

// Fail logs err at a level matching its kind and writes the failure envelope.
func Fail(w http.ResponseWriter, log apt.Logger, msg string, err error, kv ...interface{}) {
	if len(kv) > 0 {
		log = log.With(kv...)
	}
	if apperr.KindOf(err) == apperr.KindInternal {
		log.Error(msg, "error", err)
	} else {
		log.Debug(msg, "reason", apperr.ReasonOf(err))
	}
	RespondError(w, err)
}
