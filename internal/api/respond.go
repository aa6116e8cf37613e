package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tmusial/convoy/internal/auth"
	"github.com/tmusial/convoy/internal/journey"
	"github.com/tmusial/convoy/internal/service"
	"github.com/tmusial/convoy/internal/storage"
)

// errorBody is the JSON error envelope for all failed requests.
type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), errorBody{Error: err.Error()})
}

// statusFor maps domain sentinels onto HTTP status codes. Anything
// unmapped is a 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, service.ErrNoPendingRequest):
		return http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword):
		return http.StatusBadRequest
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrMissingToken):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrNotMember),
		errors.Is(err, service.ErrNotLeader),
		errors.Is(err, service.ErrNotMarkerCreator):
		return http.StatusForbidden
	case errors.Is(err, auth.ErrEmailExists),
		errors.Is(err, storage.ErrVersionConflict),
		errors.Is(err, service.ErrWrongGroupType),
		errors.Is(err, journey.ErrNoDestination),
		errors.Is(err, journey.ErrNoFollowableMember),
		errors.Is(err, journey.ErrAlreadyActive),
		errors.Is(err, journey.ErrNotActive),
		errors.Is(err, journey.ErrNotFollowGroup),
		errors.Is(err, journey.ErrUnknownMember):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return service.ErrInvalidInput
	}
	return nil
}
