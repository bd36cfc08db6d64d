package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"mealbridge/internal/utils"
	"mealbridge/pkg/types"
)

const maxListingUploadBytes = 10 << 20

func (s *Service) handleListListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := s.identityFromContext(ctx)
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	// A donor browsing the marketplace never sees their own listings.
	listings, err := s.listings.AvailableListings(ctx, caller.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, listings)
}

// handleMyListings is the donor dashboard view: every listing the caller has
// posted, claimed or not.
func (s *Service) handleMyListings(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := s.identityFromContext(ctx)
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	listings, err := s.listings.ListingsByDonor(ctx, caller.Email)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, listings)
}

func (s *Service) handleGetListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	listingID := strings.TrimSpace(pathParam(r, "id"))
	if listingID == "" {
		s.respondError(w, r, types.ErrListingNotFound)
		return
	}

	listing, err := s.listings.Listing(ctx, listingID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, listing)
}

func (s *Service) handleCreateListing(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	caller, ok := s.identityFromContext(ctx)
	if !ok {
		s.unauthorized(w, "unauthorized")
		return
	}

	if err := r.ParseMultipartForm(maxListingUploadBytes); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid multipart form"})
		return
	}

	var input types.ListingForm
	if err := decoder.Decode(&input, r.MultipartForm.Value); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid form fields"})
		return
	}

	if err := validateListingForm(&input); err != nil {
		s.respondError(w, r, err)
		return
	}

	expiry, err := parseExpiry(input.ExpiryDate)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "no file uploaded"})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	key := fmt.Sprintf("listings/%s%s", utils.NanoID(), filepath.Ext(header.Filename))

	imageURL, err := s.uploader.Upload(ctx, key, file, contentType)
	if err != nil {
		s.logger.WithError(err).WithField("key", key).Error("failed to upload listing image")
		s.respondJSON(w, http.StatusBadGateway, errorResponse{Error: "failed to store image"})
		return
	}

	listing := &types.Listing{
		DonorID:     caller.UserID,
		DonorMail:   caller.Email,
		DonorName:   caller.Name,
		Title:       input.Title,
		FoodItem:    input.FoodItem,
		Description: input.Description,
		Quantity:    input.Quantity,
		Location:    input.Location,
		ExpiryDate:  expiry,
		ImageURL:    imageURL,
		Status:      types.ListingStatusAvailable,
	}

	if err := s.listings.CreateListing(ctx, listing); err != nil {
		// The image is already in the bucket; clean it up so a failed
		// insert does not leak orphaned objects.
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.WithError(delErr).WithField("key", key).Error("failed to delete orphaned listing image")
		}
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Food added successfully",
		"food":    listing,
	})
}

func validateListingForm(input *types.ListingForm) error {
	input.Title = strings.TrimSpace(input.Title)
	input.FoodItem = strings.TrimSpace(input.FoodItem)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)

	if input.Title == "" || input.FoodItem == "" || input.Description == "" || input.Location == "" {
		return types.Validationf("missing required fields")
	}

	if input.Quantity <= 0 {
		return types.Validationf("quantity must be positive")
	}

	return nil
}

func parseExpiry(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, types.Validationf("expiry date is required")
	}

	expiry, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		// The date-picker in the client submits bare dates.
		expiry, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, types.Validationf("expiry date must be RFC 3339 or YYYY-MM-DD")
		}
	}

	if !expiry.After(time.Now()) {
		return time.Time{}, types.Validationf("expiry date must be in the future")
	}

	return expiry, nil
}
