package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"mealbridge/pkg/types"

	"github.com/sirupsen/logrus"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Service) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if payload == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithError(err).Error("failed to encode response body")
	}
}

// respondError maps domain errors onto HTTP statuses. Anything unmapped is
// an internal error and never leaks its message to the caller.
func (s *Service) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case types.IsValidation(err), errors.Is(err, types.ErrSelfRequest):
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrListingNotFound),
		errors.Is(err, types.ErrListingNotAvailable),
		errors.Is(err, types.ErrRequestNotFound),
		errors.Is(err, types.ErrNotificationNotFound):
		s.respondJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrClaimConflict):
		s.respondJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, types.ErrGenUnavailable):
		s.respondJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		s.logger.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		s.respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
	}
}

func (s *Service) unauthorized(w http.ResponseWriter, msg string) {
	s.respondJSON(w, http.StatusUnauthorized, errorResponse{Error: msg})
}
