package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dev-c-webd/tube-v/internal/common"
)

// envelope wraps every successful response.
type envelope struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

// errorEnvelope wraps every failed response.
type errorEnvelope struct {
	StatusCode int      `json:"statusCode"`
	Message    string   `json:"message"`
	Success    bool     `json:"success"`
	Errors     []string `json:"errors"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any, message string) {
	if data == nil {
		data = struct{}{}
	}
	writeJSON(w, status, envelope{StatusCode: status, Data: data, Message: message, Success: status < http.StatusBadRequest})
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return http.StatusBadRequest
	case errors.Is(err, common.ErrorNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrorUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, common.ErrorConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)

	message := http.StatusText(status)
	details := []string{}

	if status == http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", "error", err, "path", r.URL.Path, "request_id", requestIDFrom(r.Context()))
	} else {
		message = common.Message(err, message)
		var e *common.Error
		if errors.As(err, &e) && len(e.Details) > 0 {
			details = e.Details
		}
	}

	writeJSON(w, status, errorEnvelope{StatusCode: status, Message: message, Success: false, Errors: details})
}

func writeStatus(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorEnvelope{StatusCode: status, Message: message, Success: false, Errors: []string{}})
}
