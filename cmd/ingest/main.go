package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/adapter/ai"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/adapter/store"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/service"
	"github.com/arturoeanton/go-exam-checker-ollama/pkg/config"

	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	dir := flag.String("dir", cfg.MarkschemesDir, "directory containing marking scheme files")
	reset := flag.Bool("reset", false, "reset the vector index before ingesting")
	flag.Parse()

	if cfg.VectorBackend != "pgvector" {
		slog.Error("batch ingestion requires the pgvector backend", "vector_backend", cfg.VectorBackend)
		os.Exit(1)
	}

	provider, err := ai.NewProviderFromConfig(cfg)
	if err != nil {
		slog.Error("failed to build AI provider", "error", err)
		os.Exit(1)
	}

	pgStore, err := store.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pgStore.Close()

	ctx := context.Background()
	if err := pgStore.Migrate(ctx, cfg.EmbeddingDimension); err != nil {
		slog.Error("failed to migrate database", "error", err)
		os.Exit(1)
	}
	index := store.NewPgVectorIndex(pgStore)

	chunker, err := service.NewChunker(cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		slog.Error("invalid chunking parameters", "error", err)
		os.Exit(1)
	}

	ingest := service.NewIngestService(provider, index, chunker, cfg.ChunkStrategy)

	slog.Info("ingesting marking schemes", "dir", *dir, "reset", *reset)
	chunks, err := ingest.IngestDir(ctx, *dir, *reset)
	if err != nil {
		slog.Error("ingestion failed", "error", err)
		os.Exit(1)
	}

	total, err := index.Count(ctx)
	if err != nil {
		slog.Error("failed to count indexed vectors", "error", err)
		os.Exit(1)
	}

	slog.Info("ingestion complete", "chunks_ingested", chunks, "index_total", total)
}
