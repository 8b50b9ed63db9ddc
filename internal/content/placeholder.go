package content

import (
	"context"

	"guessquest/internal/models"
)

// PlaceholderSource is the last tier of the chain. It always succeeds
// with a clearly labeled practice item so a round can start even when
// the generator and the question store are both unavailable.
type PlaceholderSource struct{}

func (PlaceholderSource) Name() string { return "placeholder" }

func (PlaceholderSource) Fetch(_ context.Context, req Request) (*models.ContentItem, error) {
	item := placeholderItem(req)
	return &item, nil
}

func placeholderItem(req Request) models.ContentItem {
	if req.Language == "pl" {
		return models.ContentItem{
			Answer: "Zagadka",
			Facts: []string{
				"To jest pytanie zastępcze, używane gdy brak nowych zagadek.",
				"Moja nazwa to polskie słowo oznaczające łamigłówkę do rozwiązania.",
				"Pojawiam się, gdy generator pytań jest niedostępny.",
				"Odpowiedź na mnie zaczyna się na literę Z.",
				"Wpisz po prostu moją nazwę, aby wygrać tę rundę.",
			},
			Category:    req.Category,
			Source:      "placeholder",
			Placeholder: true,
		}
	}
	return models.ContentItem{
		Answer: "Mystery",
		Facts: []string{
			"This is a practice placeholder question, shown when no fresh question is available.",
			"My name is a common English word for something unexplained.",
			"I appear whenever the question generator cannot be reached.",
			"My answer starts with the letter M.",
			"Type my name exactly to win this round.",
		},
		Category:    req.Category,
		Source:      "placeholder",
		Placeholder: true,
	}
}
