// Command backup exports and imports the generated question pool as
// JSON, so a seeded pool can be shipped to offline deployments.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"guessquest/internal/config"
	"guessquest/internal/database"
	"guessquest/internal/models"
	"guessquest/internal/repository"
)

type questionDump struct {
	ExportedAt time.Time         `json:"exported_at"`
	Questions  []models.Question `json:"questions"`
}

func main() {
	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportOutput := exportCmd.String("output", "", "Output file path (default: questions_YYYYMMDD_HHMMSS.json)")

	importCmd := flag.NewFlagSet("import", flag.ExitOnError)
	importInput := importCmd.String("input", "", "Input file path (required)")
	importFresh := importCmd.Bool("fresh", false, "Import questions as unused even if they were used at export time")

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.Open(cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()

	ctx := context.Background()
	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	switch os.Args[1] {
	case "export":
		exportCmd.Parse(os.Args[2:])
		handleExport(ctx, db, *exportOutput)

	case "import":
		importCmd.Parse(os.Args[2:])
		if *importInput == "" {
			fmt.Println("Error: -input flag is required")
			importCmd.PrintDefaults()
			os.Exit(1)
		}
		handleImport(ctx, db, *importInput, *importFresh)

	default:
		printUsage()
		os.Exit(1)
	}
}

func handleExport(ctx context.Context, db *database.DB, outputPath string) {
	if outputPath == "" {
		outputPath = fmt.Sprintf("questions_%s.json", time.Now().Format("20060102_150405"))
	}
	if dir := filepath.Dir(outputPath); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatal().Err(err).Msg("failed to create output directory")
		}
	}

	questions, err := loadAllQuestions(ctx, db)
	if err != nil {
		log.Fatal().Err(err).Msg("export failed")
	}

	dump := questionDump{ExportedAt: time.Now(), Questions: questions}
	data, err := json.MarshalIndent(dump, "", "  ")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to encode dump")
	}
	if err := os.WriteFile(outputPath, data, 0644); err != nil {
		log.Fatal().Err(err).Msg("failed to write dump")
	}

	log.Info().Int("questions", len(questions)).Str("file", outputPath).Msg("export complete")
}

func handleImport(ctx context.Context, db *database.DB, inputPath string, fresh bool) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to read input file")
	}

	var dump questionDump
	if err := json.Unmarshal(data, &dump); err != nil {
		log.Fatal().Err(err).Msg("failed to parse input file")
	}

	repo := repository.NewQuestionRepository(db)
	var imported, skipped int
	for _, q := range dump.Questions {
		exists, err := repo.AnswerExists(ctx, q.Answer, q.Category, q.Language, time.Time{})
		if err != nil {
			log.Fatal().Err(err).Msg("duplicate check failed")
		}
		if exists {
			skipped++
			continue
		}

		if fresh {
			q.Used = false
			q.UsedBy = ""
		}
		if _, err := repo.SaveQuestion(ctx, q); err != nil {
			log.Fatal().Err(err).Str("answer", q.Answer).Msg("import failed")
		}
		imported++
	}

	log.Info().Int("imported", imported).Int("skipped", skipped).Msg("import complete")
}

// loadAllQuestions reads the whole pool. Plain query; the repository
// API is pool-oriented and has no full scan.
func loadAllQuestions(ctx context.Context, db *database.DB) ([]models.Question, error) {
	query := `
		SELECT id, answer, facts, category, subcategory, difficulty, language,
		       model, generation_ms, used, used_by, created_at
		FROM generated_questions
		ORDER BY id
	`
	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []models.Question
	for rows.Next() {
		var q models.Question
		var facts string
		err := rows.Scan(&q.ID, &q.Answer, &facts, &q.Category, &q.Subcategory,
			&q.Difficulty, &q.Language, &q.Model, &q.GenerationMs, &q.Used, &q.UsedBy, &q.CreatedAt)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(facts), &q.Facts); err != nil {
			return nil, fmt.Errorf("decode facts for question %d: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}

func printUsage() {
	fmt.Println("Question Pool Backup Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  backup export [options]    Export generated questions to a JSON file")
	fmt.Println("  backup import [options]    Import questions from a JSON file")
	fmt.Println()
	fmt.Println("Export Options:")
	fmt.Println("  -output <file>    Output file path (default: questions_YYYYMMDD_HHMMSS.json)")
	fmt.Println()
	fmt.Println("Import Options:")
	fmt.Println("  -input <file>     Input file path (required)")
	fmt.Println("  -fresh            Mark imported questions as unused")
	fmt.Println()
	fmt.Println("Duplicate answers (same category and language) are skipped on import.")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  DB_TYPE    Database type: sqlite, postgres, or mysql (default: sqlite)")
	fmt.Println("  DB_PATH    SQLite database path (default: ./guessquest.db)")
	fmt.Println("  DB_URL     PostgreSQL or MySQL connection URL")
}
