// Package genai calls the Generative Language REST API for recipe
// suggestions. The provider is a black box: any failure maps to
// types.ErrGenUnavailable and nothing else in the system is touched.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mealbridge/pkg/types"
)

type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature"`
	CandidateCount  int     `json:"candidateCount"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
	TopP            float64 `json:"topP"`
	TopK            int     `json:"topK"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *Client) GenerateRecipe(ctx context.Context, ingredients string) (*types.Recipe, error) {

	ingredients = strings.TrimSpace(ingredients)
	if ingredients == "" {
		return nil, types.Validationf("ingredients are required")
	}

	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: api key is not configured", types.ErrGenUnavailable)
	}

	payload := generateContentRequest{
		Contents: []content{
			{Role: "user", Parts: []part{{Text: recipePrompt(ingredients)}}},
		},
		GenerationConfig: generationConfig{
			Temperature:     0.7,
			CandidateCount:  1,
			MaxOutputTokens: 1024,
			TopP:            0.8,
			TopK:            40,
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal generate request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrGenUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", types.ErrGenUnavailable, resp.StatusCode, string(raw))
	}

	var decoded generateContentResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", types.ErrGenUnavailable, err)
	}

	if len(decoded.Candidates) == 0 || len(decoded.Candidates[0].Content.Parts) == 0 {
		return nil, fmt.Errorf("%w: empty response from model", types.ErrGenUnavailable)
	}

	text := stripCodeFences(decoded.Candidates[0].Content.Parts[0].Text)

	var recipe types.Recipe
	if err := json.Unmarshal([]byte(text), &recipe); err != nil {
		return nil, fmt.Errorf("%w: model returned non-JSON recipe: %v", types.ErrGenUnavailable, err)
	}

	return &recipe, nil
}

func recipePrompt(ingredients string) string {
	return fmt.Sprintf(`I have these leftover ingredients: %s.

Create a creative recipe that primarily uses them, minimizing waste.

**Format the entire response STRICTLY as a single, valid JSON object.**
**Do NOT include any introductory text, explanations, markdown formatting (like `+"```json"+`), or any characters outside the JSON object itself.**

The JSON object should have the following structure:
{
  "dishName": "String",
  "prepTime": "String (e.g., '10 minutes')",
  "cookingTime": "String (e.g., '15 minutes')",
  "ingredients": ["String ingredient 1", "String ingredient 2", ...],
  "instructions": ["String step 1", "String step 2", ...],
  "additionsSubstitutions": "String (or null if none)",
  "servingSize": "String (e.g., '2 servings')",
  "variations": "String (or null if none)"
}

Ensure all text values within the JSON are properly escaped strings.
Generate the recipe details based on the provided ingredients: %s.`, ingredients, ingredients)
}

// stripCodeFences tolerates models that wrap the JSON in markdown fences
// despite the prompt's instructions.
func stripCodeFences(text string) string {
	text = strings.TrimSpace(text)

	if !strings.HasPrefix(text, "```") {
		return text
	}

	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	return strings.TrimSpace(text)
}
