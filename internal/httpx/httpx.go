// internal/httpx/httpx.go
package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"taskhub/internal/models"
)

// JSON writes v as a JSON response with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode response", "err", err)
	}
}

// Message writes {"message": msg} with the given status.
func Message(w http.ResponseWriter, status int, msg string) {
	JSON(w, status, map[string]string{"message": msg})
}

// Error maps the model error kinds onto HTTP statuses. NotFound and
// Forbidden stay distinct so a caller cannot probe for existence
// through the error shape.
func Error(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrValidation):
		Message(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, models.ErrUserNotFound), errors.Is(err, models.ErrTaskNotFound):
		Message(w, http.StatusNotFound, err.Error())
	case errors.Is(err, models.ErrForbidden):
		Message(w, http.StatusForbidden, err.Error())
	default:
		slog.Error("request failed", "err", err)
		Message(w, http.StatusInternalServerError, "something went wrong")
	}
}
