package main

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"guessquest/internal/catalog"
	"guessquest/internal/config"
	"guessquest/internal/content"
	"guessquest/internal/database"
	"guessquest/internal/game"
	"guessquest/internal/handlers"
	"guessquest/internal/registry"
	"guessquest/internal/repository"
	"guessquest/internal/scorekeeper"
	"guessquest/internal/service"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogging(cfg.LogLevel)

	db, err := database.Open(cfg.DatabaseType, cfg.DatabaseURL, cfg.DatabasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	log.Info().Str("type", cfg.DatabaseType).Msg("database connection established")

	ctx := context.Background()
	if err := db.RunMigrations(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	fallback := openFallback(ctx, cfg)
	if fallback != nil {
		defer fallback.Close()
	}

	questionRepo := repository.NewQuestionRepository(db)
	scoreRepo := repository.NewScoreRepository(db)

	var fallbackStore scorekeeper.Store
	if fallback != nil {
		fallbackStore = repository.NewScoreRepository(fallback)
	}
	keeper := scorekeeper.New(scoreRepo, fallbackStore, cfg.ScoreQueueSize)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	cat, err := catalog.Load(rng)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load category catalog")
	}

	generator := content.NewGenerator(content.GeneratorConfig{
		APIKey:      cfg.OpenAIAPIKey,
		BaseURL:     cfg.OpenAIBaseURL,
		Model:       cfg.OpenAIModel,
		MaxAttempts: cfg.GenerationAttempts,
	}, questionRepo)
	supplier := content.NewSupplier(questionRepo, cfg.ContentTimeout,
		generator,
		content.NewStoreSource(questionRepo),
		content.PlaceholderSource{},
	)
	if cfg.OpenAIAPIKey == "" {
		log.Warn().Msg("no API key configured, questions come from the stored pool only")
	}

	sessions := registry.New(cfg.SessionIdleTimeout, cfg.SessionRetention)
	defer sessions.Close()

	scorer := game.NewScoringEngine(game.DefaultScoringConfig())
	planner := game.NewHintPlanner(rng)
	svc := service.NewGameService(sessions, supplier, cat, keeper, scorer, planner)

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      handlers.NewGameHandler(svc).Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", server.Addr).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown failed")
	}
	// Drain pending score writes before the database handles close.
	if err := keeper.Close(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("scorekeeper drain interrupted")
	}
}

func setupLogging(level string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// openFallback opens the local SQLite score store. Failures are logged
// and tolerated; the server just runs without a fallback.
func openFallback(ctx context.Context, cfg *config.Config) *database.DB {
	if cfg.FallbackDBPath == "" {
		return nil
	}
	if cfg.DatabaseType == "sqlite" || cfg.DatabaseType == "sqlite3" || cfg.DatabaseType == "" {
		return nil
	}

	fb, err := database.OpenSQLite(cfg.FallbackDBPath)
	if err != nil {
		log.Warn().Err(err).Msg("failed to open fallback store, continuing without it")
		return nil
	}
	if err := fb.RunMigrations(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to migrate fallback store, continuing without it")
		fb.Close()
		return nil
	}
	return fb
}
