package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"

	"guessquest/internal/models"
)

const (
	generatorFactCount = 5
	recentAnswerWindow = 48 * time.Hour
	recentAnswerLimit  = 30
	duplicateWindow    = 24 * time.Hour
)

// ErrGeneratorDisabled means no API key is configured; the chain falls
// straight through to the question store.
var ErrGeneratorDisabled = errors.New("question generator disabled")

// GeneratorConfig configures the chat-completions client.
type GeneratorConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxAttempts int
	HTTPClient  *http.Client
}

// Generator produces fresh questions from an OpenAI-compatible
// chat-completions endpoint and archives them in the question store.
type Generator struct {
	cfg   GeneratorConfig
	store QuestionStore
}

// NewGenerator builds a generator. The store may be nil, in which case
// duplicate avoidance and archiving are skipped.
func NewGenerator(cfg GeneratorConfig, store QuestionStore) *Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Generator{cfg: cfg, store: store}
}

func (g *Generator) Name() string { return "generator" }

// Fetch generates a question, retrying transport failures with
// exponential backoff and regenerating on duplicates, up to the
// configured attempt budget.
func (g *Generator) Fetch(ctx context.Context, req Request) (*models.ContentItem, error) {
	if g.cfg.APIKey == "" {
		return nil, ErrGeneratorDisabled
	}

	avoid := g.recentAnswers(ctx, req.Category)
	wait := backoff.WithContext(backoff.NewExponentialBackOff(), ctx)

	var lastErr error
	for attempt := 0; attempt < g.cfg.MaxAttempts; attempt++ {
		started := time.Now()
		item, err := g.generateOnce(ctx, req, avoid)
		if err != nil {
			lastErr = err
			log.Warn().Err(err).Int("attempt", attempt+1).Msg("question generation attempt failed")
			d := wait.NextBackOff()
			if d == backoff.Stop {
				break
			}
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			continue
		}

		if g.isDuplicate(ctx, item.Answer, req) {
			lastErr = fmt.Errorf("duplicate answer %q", item.Answer)
			avoid = append(avoid, item.Answer)
			continue
		}

		g.archive(item, req, time.Since(started))
		return item, nil
	}

	if lastErr == nil {
		lastErr = errors.New("generation attempts exhausted")
	}
	return nil, lastErr
}

func (g *Generator) generateOnce(ctx context.Context, req Request, avoid []string) (*models.ContentItem, error) {
	payload := chatRequest{
		Model: g.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt(req.Language)},
			{Role: "user", Content: buildPrompt(req, avoid)},
		},
		Temperature: 0.9,
		MaxTokens:   600,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := strings.TrimRight(g.cfg.BaseURL, "/") + "/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.cfg.APIKey)

	resp, err := g.cfg.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call chat completions: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chat completions status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return nil, errors.New("chat completions returned no choices")
	}

	return parseGenerated(parsed.Choices[0].Message.Content)
}

// parseGenerated extracts the answer and facts from model output,
// tolerating markdown code fences around the JSON.
func parseGenerated(content string) (*models.ContentItem, error) {
	content = stripFences(content)

	var out struct {
		Name  string   `json:"name"`
		Facts []string `json:"facts"`
	}
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, fmt.Errorf("parse generated question: %w", err)
	}

	out.Name = strings.TrimSpace(out.Name)
	if out.Name == "" {
		return nil, errors.New("generated question has no answer")
	}
	if len(out.Facts) != generatorFactCount {
		return nil, fmt.Errorf("generated question has %d facts, want %d", len(out.Facts), generatorFactCount)
	}
	for i, f := range out.Facts {
		out.Facts[i] = strings.TrimSpace(f)
		if out.Facts[i] == "" {
			return nil, fmt.Errorf("generated fact %d is empty", i+1)
		}
	}

	return &models.ContentItem{Answer: out.Name, Facts: out.Facts}, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if i := strings.LastIndex(s, "```"); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}

func (g *Generator) recentAnswers(ctx context.Context, category string) []string {
	if g.store == nil {
		return nil
	}
	answers, err := g.store.RecentAnswers(ctx, category, time.Now().Add(-recentAnswerWindow), recentAnswerLimit)
	if err != nil {
		log.Warn().Err(err).Msg("failed to load recent answers for duplicate avoidance")
		return nil
	}
	return answers
}

func (g *Generator) isDuplicate(ctx context.Context, answer string, req Request) bool {
	if g.store == nil {
		return false
	}
	exists, err := g.store.AnswerExists(ctx, answer, req.Category, req.Language, time.Now().Add(-duplicateWindow))
	if err != nil {
		log.Warn().Err(err).Msg("duplicate check failed, accepting answer")
		return false
	}
	return exists
}

// archive persists the generated question asynchronously. Gameplay
// never waits on, or fails from, the write.
func (g *Generator) archive(item *models.ContentItem, req Request, took time.Duration) {
	if g.store == nil {
		return
	}
	q := models.Question{
		Answer:       item.Answer,
		Facts:        item.Facts,
		Category:     req.Category,
		Subcategory:  req.SubcategoryHint,
		Difficulty:   req.Difficulty.Name,
		Language:     req.Language,
		Model:        g.cfg.Model,
		GenerationMs: int(took.Milliseconds()),
		Used:         true,
		UsedBy:       req.PlayerName,
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := g.store.SaveQuestion(ctx, q); err != nil {
			log.Error().Err(err).Str("answer", q.Answer).Msg("failed to archive generated question")
		}
	}()
}

func systemPrompt(language string) string {
	if language == "pl" {
		return "Jesteś twórcą zagadek do gry w zgadywanie. Odpowiadasz wyłącznie poprawnym JSON, bez żadnego dodatkowego tekstu."
	}
	return "You create guessing-game puzzles. Respond with valid JSON only, no extra text."
}

func buildPrompt(req Request, avoid []string) string {
	var b strings.Builder

	if req.Language == "pl" {
		fmt.Fprintf(&b, "Wygeneruj zagadkę z kategorii %q.", req.Category)
		if req.SubcategoryHint != "" {
			fmt.Fprintf(&b, " Temat: %s.", req.SubcategoryHint)
		}
		if req.Difficulty.PromptHint != "" {
			fmt.Fprintf(&b, " Poziom trudności: %s.", req.Difficulty.PromptHint)
		}
		fmt.Fprintf(&b, " Podaj dokładnie %d faktów o odpowiedzi, od najbardziej ogólnego do najbardziej konkretnego.", generatorFactCount)
		if len(avoid) > 0 {
			fmt.Fprintf(&b, " Nie używaj tych odpowiedzi: %s.", strings.Join(avoid, ", "))
		}
		b.WriteString(` Zwróć JSON w formacie: {"name": "odpowiedź", "facts": ["fakt 1", "fakt 2", "fakt 3", "fakt 4", "fakt 5"]}`)
		return b.String()
	}

	fmt.Fprintf(&b, "Generate a guessing-game question in the %q category.", req.Category)
	if req.SubcategoryHint != "" {
		fmt.Fprintf(&b, " Topic suggestion: %s.", req.SubcategoryHint)
	}
	if req.Difficulty.PromptHint != "" {
		fmt.Fprintf(&b, " Difficulty guidance: %s.", req.Difficulty.PromptHint)
	}
	fmt.Fprintf(&b, " Provide exactly %d facts about the answer, ordered from most general to most specific.", generatorFactCount)
	if len(avoid) > 0 {
		fmt.Fprintf(&b, " Do not use any of these answers: %s.", strings.Join(avoid, ", "))
	}
	b.WriteString(` Return JSON shaped as: {"name": "the answer", "facts": ["fact 1", "fact 2", "fact 3", "fact 4", "fact 5"]}`)
	return b.String()
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// request/response wire shapes for the chat-completions API
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}
