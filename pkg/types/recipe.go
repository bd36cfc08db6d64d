package types

// Recipe is the structured suggestion returned by the generative text
// provider. Field names follow the JSON contract the prompt demands.
type Recipe struct {
	DishName               string   `json:"dishName"`
	PrepTime               string   `json:"prepTime"`
	CookingTime            string   `json:"cookingTime"`
	Ingredients            []string `json:"ingredients"`
	Instructions           []string `json:"instructions"`
	AdditionsSubstitutions *string  `json:"additionsSubstitutions"`
	ServingSize            string   `json:"servingSize"`
	Variations             *string  `json:"variations"`
}
