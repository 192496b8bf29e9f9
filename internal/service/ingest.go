package service

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

// totalMarksPattern matches "Total Marks: N", optionally bold-marked.
var totalMarksPattern = regexp.MustCompile(`(?i)\*\*Total Marks:\s*(\d+)\*\*|Total Marks:\s*(\d+)`)

const defaultTotalMarks = 10

// IngestService loads marking scheme files, chunks them and indexes the
// resulting vectors. Ingestion is a bulk batch step expected to run before
// serving evaluation traffic.
type IngestService struct {
	ai       port.AIProvider
	index    port.VectorIndex
	chunker  *Chunker
	strategy string
}

// Chunking strategies selectable at ingestion time.
const (
	StrategyCriteria  = "criteria"
	StrategyFixedSize = "fixed_size"
)

// NewIngestService creates an ingest service using the given chunking
// strategy (StrategyCriteria unless fixed-size windows are explicitly
// requested).
func NewIngestService(ai port.AIProvider, index port.VectorIndex, chunker *Chunker, strategy string) *IngestService {
	if strategy == "" {
		strategy = StrategyCriteria
	}
	return &IngestService{ai: ai, index: index, chunker: chunker, strategy: strategy}
}

// IngestDir ingests every .md/.txt marking scheme under dir. A missing
// directory is fatal before any work; per-file read failures are logged and
// skipped. Returns the number of chunks indexed.
func (s *IngestService) IngestDir(ctx context.Context, dir string, reset bool) (int, error) {
	if _, err := os.Stat(dir); err != nil {
		return 0, fmt.Errorf("marking schemes directory %s: %w", dir, err)
	}

	if reset {
		slog.Info("resetting vector index")
		if err := s.index.Reset(ctx); err != nil {
			return 0, fmt.Errorf("reset index: %w", err)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read marking schemes directory: %w", err)
	}

	total := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if ext != ".md" && ext != ".txt" {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		doc, err := LoadScheme(path)
		if err != nil {
			slog.Error("skipping marking scheme", "file", entry.Name(), "error", err)
			continue
		}

		n, err := s.IngestDocument(ctx, doc)
		if err != nil {
			return total, fmt.Errorf("ingest %s: %w", entry.Name(), err)
		}
		slog.Info("ingested marking scheme",
			"file", entry.Name(),
			"subject", doc.Meta.Subject,
			"question_id", doc.Meta.QuestionID,
			"total_marks", doc.Meta.TotalMarks,
			"chunks", n,
		)
		total += n
	}
	return total, nil
}

// IngestDocument chunks one document, embeds all chunks in a single batch and
// upserts the vectors. Returns the number of chunks indexed.
func (s *IngestService) IngestDocument(ctx context.Context, doc *domain.Document) (int, error) {
	base := domain.ChunkMeta{
		Subject:    doc.Meta.Subject,
		QuestionID: doc.Meta.QuestionID,
		TotalMarks: doc.Meta.TotalMarks,
		SourcePath: doc.Meta.SourcePath,
	}
	var chunks []domain.Chunk
	if s.strategy == StrategyFixedSize {
		chunks = s.chunker.ChunkFixedSize(doc.Content, base)
	} else {
		chunks = s.chunker.ChunkByCriteria(doc.Content, base)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}

	embeddings, err := s.ai.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("embed chunks: got %d embeddings for %d chunks", len(embeddings), len(chunks))
	}

	vectors := make([]domain.IndexedVector, len(chunks))
	for i, chunk := range chunks {
		vectors[i] = domain.IndexedVector{
			ID:        domain.VectorID(chunk.Meta.Subject, chunk.Meta.QuestionID, chunk.Meta.ChunkIndex),
			Embedding: embeddings[i],
			Text:      chunk.Content,
			Meta:      chunk.Meta,
		}
	}

	if err := s.index.Upsert(ctx, vectors); err != nil {
		return 0, fmt.Errorf("index chunks: %w", err)
	}
	return len(vectors), nil
}

// LoadScheme reads a marking scheme file, deriving subject and question ID
// from the filename and total marks from the body.
func LoadScheme(path string) (*domain.Document, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read marking scheme: %w", err)
	}

	subject, questionID := ParseSchemeFilename(filepath.Base(path))
	return &domain.Document{
		Content: string(content),
		Meta: domain.DocumentMeta{
			Subject:    subject,
			QuestionID: questionID,
			TotalMarks: ExtractTotalMarks(string(content)),
			SourcePath: path,
		},
	}, nil
}

// ParseSchemeFilename derives (subject, questionID) from a filename shaped
// like {subject}_{questionId}.md, e.g. biology_q1.md -> ("Biology", "Q1").
func ParseSchemeFilename(filename string) (string, string) {
	stem := strings.TrimSuffix(filename, filepath.Ext(filename))
	parts := strings.Split(stem, "_")
	if len(parts) < 2 {
		return "Unknown", strings.ToUpper(stem)
	}
	return capitalize(parts[0]), strings.ToUpper(parts[1])
}

// ExtractTotalMarks finds a "Total Marks: N" line in the scheme body,
// defaulting to 10 when absent.
func ExtractTotalMarks(content string) int {
	match := totalMarksPattern.FindStringSubmatch(content)
	if match == nil {
		return defaultTotalMarks
	}
	digits := match[1]
	if digits == "" {
		digits = match[2]
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return defaultTotalMarks
	}
	return n
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + strings.ToLower(s[1:])
}
