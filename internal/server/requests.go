package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"mealbridge/internal/claim"
)

type submitRequestPayload struct {
	RequestedQuantity int    `json:"requestedQuantity"`
	Message           string `json:"message"`
}

func (s *Service) handleSubmitRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := s.identityFromContext(ctx)
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	var payload submitRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	request, err := s.coordinator.Submit(ctx, claim.SubmitParams{
		ListingID:         strings.TrimSpace(pathParam(r, "id")),
		UserMail:          caller.Email,
		RequestedQuantity: payload.RequestedQuantity,
		Message:           payload.Message,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Request submitted successfully",
		"request": request,
	})
}

func (s *Service) handleDonorRequests(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := s.identityFromContext(ctx)
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	queue, err := s.coordinator.ListByDonor(ctx, caller.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, queue)
}

// decideRequestPayload addresses a decision. ID is the listing id, matching
// the original client contract; RequestID pins an exact request when the
// donor queue has more than one pending claim.
type decideRequestPayload struct {
	ID        string `json:"id"`
	RequestID string `json:"requestId"`
}

func (s *Service) handleAcceptRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.identityFromContext(r.Context())
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	var payload decideRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	listing, err := s.coordinator.Accept(r.Context(), claim.DecideParams{
		ListingID:   strings.TrimSpace(payload.ID),
		RequestID:   strings.TrimSpace(payload.RequestID),
		ActingDonor: caller.Email,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": "Food claimed successfully",
		"food":    listing,
	})
}

func (s *Service) handleRejectRequest(w http.ResponseWriter, r *http.Request) {
	caller, ok := s.identityFromContext(r.Context())
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	var payload decideRequestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	request, err := s.coordinator.Reject(r.Context(), claim.DecideParams{
		ListingID:   strings.TrimSpace(payload.ID),
		RequestID:   strings.TrimSpace(payload.RequestID),
		ActingDonor: caller.Email,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"message": "Request rejected successfully",
		"request": request,
	})
}
