package content

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func chatReply(t *testing.T, w http.ResponseWriter, content string) {
	t.Helper()
	resp := map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": "assistant", "content": content}},
		},
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		t.Fatalf("encode reply: %v", err)
	}
}

func newTestGenerator(url string, store QuestionStore) *Generator {
	return NewGenerator(GeneratorConfig{
		APIKey:      "test-key",
		BaseURL:     url,
		Model:       "test-model",
		MaxAttempts: 2,
	}, store)
}

func TestGeneratorFetch(t *testing.T) {
	var gotAuth, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Messages) == 2 {
			gotBody = req.Messages[1].Content
		}
		chatReply(t, w, `{"name": "Giraffe", "facts": ["f1", "f2", "f3", "f4", "f5"]}`)
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, nil)
	item, err := g.Fetch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if item.Answer != "Giraffe" || len(item.Facts) != 5 {
		t.Errorf("item = %+v", item)
	}
	if gotAuth != "Bearer test-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if !strings.Contains(gotBody, "animals") {
		t.Errorf("prompt missing category: %q", gotBody)
	}
}

func TestGeneratorDisabledWithoutKey(t *testing.T) {
	g := NewGenerator(GeneratorConfig{}, nil)

	if _, err := g.Fetch(context.Background(), testRequest()); !errors.Is(err, ErrGeneratorDisabled) {
		t.Fatalf("err = %v, want ErrGeneratorDisabled", err)
	}
}

func TestGeneratorRetriesServerErrors(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		chatReply(t, w, `{"name": "Paris", "facts": ["f1", "f2", "f3", "f4", "f5"]}`)
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, nil)
	item, err := g.Fetch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if item.Answer != "Paris" {
		t.Errorf("Answer = %q", item.Answer)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestGeneratorGivesUpAfterBudget(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	g := newTestGenerator(srv.URL, nil)
	if _, err := g.Fetch(context.Background(), testRequest()); err == nil {
		t.Fatal("expected error after exhausting attempts")
	}
}

func TestGeneratorRegeneratesDuplicates(t *testing.T) {
	answers := []string{"Lion", "Tiger"}
	var calls int
	var prompts []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil && len(req.Messages) == 2 {
			prompts = append(prompts, req.Messages[1].Content)
		}
		answer := answers[calls]
		calls++
		chatReply(t, w, fmt.Sprintf(`{"name": %q, "facts": ["f1", "f2", "f3", "f4", "f5"]}`, answer))
	}))
	defer srv.Close()

	store := &fakeStore{existing: map[string]bool{"Lion": true}}
	g := newTestGenerator(srv.URL, store)

	item, err := g.Fetch(context.Background(), testRequest())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if item.Answer != "Tiger" {
		t.Errorf("Answer = %q, want Tiger", item.Answer)
	}
	if len(prompts) != 2 || !strings.Contains(prompts[1], "Lion") {
		t.Errorf("retry prompt should list the duplicate answer: %v", prompts)
	}
}

func TestGeneratorArchivesQuestions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		chatReply(t, w, `{"name": "Saturn", "facts": ["f1", "f2", "f3", "f4", "f5"]}`)
	}))
	defer srv.Close()

	store := &fakeStore{}
	g := newTestGenerator(srv.URL, store)

	if _, err := g.Fetch(context.Background(), testRequest()); err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	// The archive write runs on its own goroutine.
	deadline := time.Now().Add(2 * time.Second)
	for len(store.saved) == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if len(store.saved) != 1 {
		t.Fatal("generated question was not archived")
	}
	q := store.saved[0]
	if q.Answer != "Saturn" || !q.Used || q.UsedBy != "alice" || q.Model != "test-model" {
		t.Errorf("archived question = %+v", q)
	}
}

func TestParseGenerated(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
		answer  string
	}{
		{
			name:    "plain json",
			content: `{"name": "Tokyo", "facts": ["a", "b", "c", "d", "e"]}`,
			answer:  "Tokyo",
		},
		{
			name:    "fenced json",
			content: "```json\n{\"name\": \"Tokyo\", \"facts\": [\"a\", \"b\", \"c\", \"d\", \"e\"]}\n```",
			answer:  "Tokyo",
		},
		{
			name:    "bare fence",
			content: "```\n{\"name\": \"Tokyo\", \"facts\": [\"a\", \"b\", \"c\", \"d\", \"e\"]}\n```",
			answer:  "Tokyo",
		},
		{
			name:    "too few facts",
			content: `{"name": "Tokyo", "facts": ["a", "b"]}`,
			wantErr: true,
		},
		{
			name:    "empty answer",
			content: `{"name": "  ", "facts": ["a", "b", "c", "d", "e"]}`,
			wantErr: true,
		},
		{
			name:    "blank fact",
			content: `{"name": "Tokyo", "facts": ["a", "b", " ", "d", "e"]}`,
			wantErr: true,
		},
		{
			name:    "not json",
			content: "Sure! Here is your question about Tokyo.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := parseGenerated(tt.content)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("parseGenerated: %v", err)
			}
			if item.Answer != tt.answer {
				t.Errorf("Answer = %q, want %q", item.Answer, tt.answer)
			}
		})
	}
}

func TestBuildPromptPolish(t *testing.T) {
	req := testRequest()
	req.Language = "pl"
	p := buildPrompt(req, []string{"Kraków"})
	if !strings.Contains(p, "Kraków") || !strings.Contains(p, "animals") {
		t.Errorf("prompt = %q", p)
	}
}
