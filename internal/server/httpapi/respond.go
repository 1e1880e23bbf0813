package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sergeyk-dev/authgate/internal/common"
)

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// All failures surface as a single human-readable error string; no
// structured error codes are exposed to clients.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// respondFailure maps sentinel errors to HTTP statuses per the error
// taxonomy: auth failures 401, missing local row 404, role rejection 403,
// provider/validation errors 400, anything else 500.
func respondFailure(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, common.ErrMissingCredentials),
		errors.Is(err, common.ErrInvalidToken),
		errors.Is(err, common.ErrTokenExpired),
		errors.Is(err, common.ErrSubjectMismatch):
		respondError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, common.ErrorNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, common.ErrForbidden):
		respondError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, common.ErrProvider), errors.Is(err, common.ErrValidation):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
