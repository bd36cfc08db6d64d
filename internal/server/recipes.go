package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"mealbridge/pkg/types"
)

type generateRecipePayload struct {
	Ingredients string `json:"ingredients"`
}

// handleGenerateRecipe proxies to the generative text provider. Provider
// failures surface as 502 and never touch listing or request state.
func (s *Service) handleGenerateRecipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload generateRecipePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	ingredients := strings.TrimSpace(payload.Ingredients)
	if ingredients == "" {
		s.respondError(w, r, types.Validationf("ingredients are required"))
		return
	}

	recipe, err := s.recipes.GenerateRecipe(ctx, ingredients)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{"recipe": recipe})
}
