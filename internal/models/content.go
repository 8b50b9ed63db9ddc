package models

import "time"

// ContentItem is a secret answer plus its ordered, progressively
// revealing facts. Immutable once bound to a round.
type ContentItem struct {
	Answer      string
	Facts       []string
	Category    string
	Subcategory string
	QuestionID  int64 // question store row, 0 if not persisted
	Source      string
	Placeholder bool
}

// Question is a generated item persisted in the question store for
// offline reuse.
type Question struct {
	ID           int64
	Answer       string
	Facts        []string
	Category     string
	Subcategory  string
	Difficulty   string
	Language     string
	Model        string
	GenerationMs int
	Used         bool
	UsedBy       string
	CreatedAt    time.Time
}

// QuestionCounts reports question store availability for one
// (category, difficulty, language) combination.
type QuestionCounts struct {
	Total  int
	Unused int
}

// HasUnused reports whether offline play is possible.
func (c QuestionCounts) HasUnused() bool {
	return c.Unused > 0
}
