package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/joho/godotenv"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/adapter/ai"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/handler"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/service"
	"github.com/arturoeanton/go-exam-checker-ollama/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	// ── Load .env file ───────────────────────────────────────────────────
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	// ── Configuration ────────────────────────────────────────────────────
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("starting AI Exam Checker",
		"port", cfg.Port,
		"ai_backend", cfg.AIBackend,
		"vector_backend", cfg.VectorBackend,
		"top_k", cfg.TopK,
		"similarity_threshold", cfg.SimilarityThreshold,
	)

	// ── AI provider ──────────────────────────────────────────────────────
	provider, err := ai.NewProviderFromConfig(cfg)
	if err != nil {
		slog.Error("failed to build AI provider", "error", err)
		os.Exit(1)
	}

	// ── Vector index + evaluation store ──────────────────────────────────
	var (
		index     port.VectorIndex
		evalStore port.EvaluationStore
	)
	switch cfg.VectorBackend {
	case "memory":
		// Demo mode: nothing survives a restart.
		index = store.NewMemoryVectorIndex()
		evalStore = store.NewMemoryEvaluationStore()
	default:
		pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
		if err != nil {
			slog.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pgStore.Close()

		if err := pgStore.Migrate(context.Background(), cfg.EmbeddingDimension); err != nil {
			slog.Error("failed to migrate database", "error", err)
			os.Exit(1)
		}
		index = store.NewPgVectorIndex(pgStore)
		evalStore = pgStore
	}

	// ── Services ─────────────────────────────────────────────────────────
	retrieval := service.NewRetrievalService(provider, index, cfg.TopK, cfg.SimilarityThreshold)
	judge := service.NewJudgeService(provider, cfg.JudgeTimeout)
	evaluations := service.NewEvaluationService(retrieval, judge, evalStore, service.RetryPolicy{
		Retries: cfg.JudgeRetries,
		Backoff: cfg.JudgeRetryBackoff,
	})

	// ── Fiber App ────────────────────────────────────────────────────────
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.JudgeTimeout + 30*time.Second,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: []string{cfg.FrontendURL},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
	}))

	// ── Routes ───────────────────────────────────────────────────────────
	api := app.Group("/api/v1")

	handler.NewEvaluationHandler(evaluations).Register(api)
	handler.NewHistoryHandler(evalStore).Register(api)
	handler.NewMetaHandler(index, evalStore, provider).Register(api)

	// ── Start ────────────────────────────────────────────────────────────
	slog.Info("listening", "port", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
