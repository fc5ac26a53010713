package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/pdfchat/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondError maps service errors onto status codes. Anything unrecognised
// is logged and reported as a bare 500.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var partial *apperr.PartialDeleteError
	if errors.As(err, &partial) {
		slog.Error("partial delete", "request_id", chimiddleware.GetReqID(r.Context()), "error", err)
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{
			"error":          "delete incomplete, retry the request",
			"objectReleased": partial.ObjectReleased,
			"vectorsPurged":  partial.VectorsPurged,
			"recordRemoved":  partial.RecordRemoved,
		})
		return
	}

	if v, ok := apperr.IsValidation(err); ok {
		writeError(w, http.StatusUnprocessableEntity, v.Reason)
		return
	}

	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, "unauthorized")
	case errors.Is(err, apperr.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case apperr.IsRetryable(err):
		slog.Error("dependency failure", "request_id", chimiddleware.GetReqID(r.Context()), "error", err)
		writeError(w, http.StatusServiceUnavailable, "service temporarily unavailable")
	default:
		slog.Error("request failed", "request_id", chimiddleware.GetReqID(r.Context()), "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	return json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(dst)
}
