// Package repository holds the SQL persistence layer: the generated
// question corpus and recorded game results.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"guessquest/internal/database"
	"guessquest/internal/models"
)

// QuestionRepository handles generated question database operations
type QuestionRepository struct {
	db *database.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *database.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// SaveQuestion stores a generated question for later offline reuse
func (r *QuestionRepository) SaveQuestion(ctx context.Context, q models.Question) (int64, error) {
	facts, err := json.Marshal(q.Facts)
	if err != nil {
		return 0, fmt.Errorf("encode facts: %w", err)
	}

	query := `
		INSERT INTO generated_questions
			(answer, facts, category, subcategory, difficulty, language, model, generation_ms, used, used_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	return r.db.ExecReturningID(ctx, query,
		q.Answer, string(facts), q.Category, q.Subcategory, q.Difficulty,
		q.Language, q.Model, q.GenerationMs, q.Used, q.UsedBy)
}

// RandomUnused picks one unused question for the category, difficulty
// and language, or nil when the pool is empty. Selection uses a random
// offset so it stays portable across dialects.
func (r *QuestionRepository) RandomUnused(ctx context.Context, category, difficulty, language string) (*models.Question, error) {
	countQuery := `
		SELECT COUNT(*) FROM generated_questions
		WHERE category = ? AND difficulty = ? AND language = ?
		  AND used = ?
	`

	var count int
	if err := r.db.QueryRow(ctx, countQuery, category, difficulty, language, false).Scan(&count); err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, nil
	}

	query := `
		SELECT id, answer, facts, category, subcategory, difficulty, language,
		       model, generation_ms, used, used_by, created_at
		FROM generated_questions
		WHERE category = ? AND difficulty = ? AND language = ?
		  AND used = ?
		ORDER BY id
		LIMIT 1 OFFSET ?
	`

	offset := rand.Intn(count)
	q, err := r.scanQuestion(r.db.QueryRow(ctx, query, category, difficulty, language, false, offset))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return q, nil
}

// MarkUsed flags a question as consumed so it is not served again
func (r *QuestionRepository) MarkUsed(ctx context.Context, id int64, playerName string) error {
	query := "UPDATE generated_questions SET used = ?, used_by = ? WHERE id = ?"
	_, err := r.db.Exec(ctx, query, true, playerName, id)
	return err
}

// Counts reports total and unused question counts for one pool
func (r *QuestionRepository) Counts(ctx context.Context, category, difficulty, language string) (models.QuestionCounts, error) {
	query := `
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN used THEN 0 ELSE 1 END), 0)
		FROM generated_questions
		WHERE category = ? AND difficulty = ? AND language = ?
	`

	var counts models.QuestionCounts
	err := r.db.QueryRow(ctx, query, category, difficulty, language).Scan(&counts.Total, &counts.Unused)
	if err != nil {
		return models.QuestionCounts{}, err
	}
	return counts, nil
}

// RecentAnswers lists distinct answers generated for a category since
// the cutoff, newest first. Feeds duplicate avoidance prompts.
func (r *QuestionRepository) RecentAnswers(ctx context.Context, category string, since time.Time, limit int) ([]string, error) {
	query := `
		SELECT answer FROM generated_questions
		WHERE category = ? AND created_at >= ?
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, category, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	seen := make(map[string]bool)
	var answers []string
	for rows.Next() {
		var a string
		if err := rows.Scan(&a); err != nil {
			return nil, err
		}
		if seen[a] {
			continue
		}
		seen[a] = true
		answers = append(answers, a)
		if len(answers) >= limit {
			break
		}
	}
	return answers, rows.Err()
}

// AnswerExists reports whether an answer was already generated for the
// category and language since the cutoff, case-insensitively
func (r *QuestionRepository) AnswerExists(ctx context.Context, answer, category, language string, since time.Time) (bool, error) {
	query := `
		SELECT COUNT(*) FROM generated_questions
		WHERE LOWER(answer) = LOWER(?) AND category = ? AND language = ?
		  AND created_at >= ?
	`

	var count int
	if err := r.db.QueryRow(ctx, query, answer, category, language, since).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *QuestionRepository) scanQuestion(row *sql.Row) (*models.Question, error) {
	q := &models.Question{}
	var facts string

	err := row.Scan(
		&q.ID,
		&q.Answer,
		&facts,
		&q.Category,
		&q.Subcategory,
		&q.Difficulty,
		&q.Language,
		&q.Model,
		&q.GenerationMs,
		&q.Used,
		&q.UsedBy,
		&q.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(facts), &q.Facts); err != nil {
		return nil, fmt.Errorf("decode facts for question %d: %w", q.ID, err)
	}
	return q, nil
}
