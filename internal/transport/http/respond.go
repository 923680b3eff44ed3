package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"studysync/internal/domain"
)

// errorPayload is the uniform failure body: every error becomes {"message"}.
type errorPayload struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// writeError maps domain errors onto statuses. Unexpected errors are logged
// and reported generically so storage details never leak to clients.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrUsernameTaken),
		errors.Is(err, domain.ErrAlreadyVerified),
		errors.Is(err, domain.ErrAttemptLimitExceeded),
		errors.Is(err, domain.ErrDuplicateAttempt):
		writeJSON(w, http.StatusConflict, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrOTPInvalidOrExpired), domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeJSON(w, http.StatusUnauthorized, errorPayload{Message: err.Error()})
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusForbidden, errorPayload{Message: err.Error()})
	default:
		log.Printf("internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorPayload{Message: "internal server error"})
	}
}

func decodeBody(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return domain.Validationf("body", "malformed JSON: %v", err)
	}
	return nil
}
