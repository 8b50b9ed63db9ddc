package models

// Difficulty describes one difficulty level from the static catalog.
// ScoreMultiplier scales round scores; PromptHint steers the content
// generator.
type Difficulty struct {
	Name            string  `json:"name"`
	DisplayName     string  `json:"display_name"`
	Description     string  `json:"description"`
	ScoreMultiplier float64 `json:"score_multiplier"`
	PromptHint      string  `json:"prompt_hint"`
}

// Category is one entry of the category catalog. Examples are
// subcategory hints handed to the content generator.
type Category struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Examples    []string `json:"examples"`
}
