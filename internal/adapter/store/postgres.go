package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

// PostgresStore handles all relational database operations.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore opens a connection and returns a store instance.
func NewPostgresStore(databaseURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.PingContext(context.Background()); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// Close closes the database connection.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

// Migrate creates the evaluations and embeddings tables if they don't exist.
// Requires the pgvector extension.
func (s *PostgresStore) Migrate(ctx context.Context, dimension int) error {
	stmts := []string{
		`CREATE EXTENSION IF NOT EXISTS vector`,
		`CREATE TABLE IF NOT EXISTS evaluations (
			id UUID PRIMARY KEY,
			subject TEXT NOT NULL,
			question_id TEXT NOT NULL,
			student_answer TEXT NOT NULL,
			total_awarded INTEGER NOT NULL,
			total_possible INTEGER NOT NULL,
			criteria_scores JSONB NOT NULL,
			breakdown JSONB NOT NULL,
			feedback TEXT,
			strengths JSONB,
			weaknesses JSONB,
			improvement_suggestions JSONB,
			retrieved_context JSONB,
			confidence TEXT NOT NULL DEFAULT 'medium',
			warnings JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_subject_question
			ON evaluations (subject, question_id)`,
		`CREATE INDEX IF NOT EXISTS idx_evaluations_created_at
			ON evaluations (created_at DESC)`,
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS embeddings (
			id TEXT PRIMARY KEY,
			subject TEXT NOT NULL,
			question_id TEXT NOT NULL,
			chunk_index INTEGER NOT NULL,
			chunk_type TEXT NOT NULL,
			total_marks INTEGER NOT NULL DEFAULT 10,
			source_path TEXT,
			content TEXT NOT NULL,
			vector vector(%d) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, dimension),
		`CREATE INDEX IF NOT EXISTS idx_embeddings_subject_question
			ON embeddings (subject, question_id)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}

// Save persists an evaluation record and returns its assigned identifier.
func (s *PostgresStore) Save(ctx context.Context, rec *domain.EvaluationRecord) (string, error) {
	id := rec.ID
	if id == "" {
		id = uuid.NewString()
	}

	scores, err := json.Marshal(rec.Judgments)
	if err != nil {
		return "", fmt.Errorf("marshal criteria scores: %w", err)
	}
	breakdown, err := json.Marshal(rec.Breakdown)
	if err != nil {
		return "", fmt.Errorf("marshal breakdown: %w", err)
	}
	strengths, _ := json.Marshal(rec.Strengths)
	weaknesses, _ := json.Marshal(rec.Weaknesses)
	suggestions, _ := json.Marshal(rec.Suggestions)
	retrieved, _ := json.Marshal(rec.Retrieved)
	warnings, _ := json.Marshal(rec.Warnings)

	query := `
		INSERT INTO evaluations (
			id, subject, question_id, student_answer,
			total_awarded, total_possible,
			criteria_scores, breakdown, feedback,
			strengths, weaknesses, improvement_suggestions,
			retrieved_context, confidence, warnings, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = s.db.ExecContext(ctx, query,
		id, rec.Subject, rec.QuestionID, rec.StudentAnswer,
		rec.Breakdown.TotalAwarded, rec.Breakdown.TotalPossible,
		scores, breakdown, rec.Feedback,
		strengths, weaknesses, suggestions,
		retrieved, string(rec.Confidence), warnings, rec.CreatedAt,
	)
	if err != nil {
		return "", fmt.Errorf("save evaluation: %w", err)
	}
	return id, nil
}

// GetByID retrieves a full evaluation record by ID.
func (s *PostgresStore) GetByID(ctx context.Context, id string) (*domain.EvaluationRecord, error) {
	query := `
		SELECT id, subject, question_id, student_answer,
		       criteria_scores, breakdown, feedback,
		       strengths, weaknesses, improvement_suggestions,
		       retrieved_context, confidence, warnings, created_at
		FROM evaluations WHERE id = $1`

	var (
		rec        domain.EvaluationRecord
		scores     []byte
		breakdown  []byte
		strengths  []byte
		weaknesses []byte
		sugg       []byte
		retrieved  []byte
		warnings   []byte
		confidence string
	)

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&rec.ID, &rec.Subject, &rec.QuestionID, &rec.StudentAnswer,
		&scores, &breakdown, &rec.Feedback,
		&strengths, &weaknesses, &sugg,
		&retrieved, &confidence, &warnings, &rec.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, port.ErrEvaluationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get evaluation: %w", err)
	}

	rec.Confidence = domain.Confidence(confidence)
	for _, pair := range []struct {
		raw []byte
		dst interface{}
	}{
		{scores, &rec.Judgments},
		{breakdown, &rec.Breakdown},
		{strengths, &rec.Strengths},
		{weaknesses, &rec.Weaknesses},
		{sugg, &rec.Suggestions},
		{retrieved, &rec.Retrieved},
		{warnings, &rec.Warnings},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, fmt.Errorf("decode evaluation %s: %w", id, err)
		}
	}
	return &rec, nil
}

// ListRecent returns evaluation summaries ordered by timestamp, most recent first.
func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]domain.EvaluationSummary, error) {
	query := `
		SELECT id, subject, question_id, student_answer,
		       total_awarded, total_possible, created_at
		FROM evaluations
		ORDER BY created_at DESC
		LIMIT $1`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	defer rows.Close()

	var summaries []domain.EvaluationSummary
	for rows.Next() {
		var sum domain.EvaluationSummary
		if err := rows.Scan(
			&sum.ID, &sum.Subject, &sum.QuestionID, &sum.StudentAnswer,
			&sum.TotalAwarded, &sum.TotalPossible, &sum.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan evaluation: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// CountEvaluations returns the total number of stored records.
func (s *PostgresStore) CountEvaluations(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM evaluations`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count evaluations: %w", err)
	}
	return count, nil
}
