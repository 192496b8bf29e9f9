package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
)

// PgVectorIndex implements port.VectorIndex on top of pgvector.
//
// pgvector's <=> operator is cosine distance in [0, 2], so the similarity
// returned by Search is 1 - distance in [-1, 1].
type PgVectorIndex struct {
	store *PostgresStore
}

// filterColumns are the metadata keys the equality filter may reference.
var filterColumns = map[string]string{
	"subject":     "subject",
	"question_id": "question_id",
	"chunk_type":  "chunk_type",
}

// NewPgVectorIndex creates a vector index backed by the given Postgres store.
func NewPgVectorIndex(store *PostgresStore) *PgVectorIndex {
	return &PgVectorIndex{store: store}
}

// Upsert adds vectors, overwriting any existing vector with the same ID.
func (v *PgVectorIndex) Upsert(ctx context.Context, vectors []domain.IndexedVector) error {
	if len(vectors) == 0 {
		return nil
	}

	tx, err := v.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO embeddings (id, subject, question_id, chunk_index, chunk_type, total_marks, source_path, content, vector)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::vector)
		 ON CONFLICT (id) DO UPDATE SET
			subject = EXCLUDED.subject,
			question_id = EXCLUDED.question_id,
			chunk_index = EXCLUDED.chunk_index,
			chunk_type = EXCLUDED.chunk_type,
			total_marks = EXCLUDED.total_marks,
			source_path = EXCLUDED.source_path,
			content = EXCLUDED.content,
			vector = EXCLUDED.vector`)
	if err != nil {
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, vec := range vectors {
		if _, err := stmt.ExecContext(ctx,
			vec.ID, vec.Meta.Subject, vec.Meta.QuestionID, vec.Meta.ChunkIndex,
			string(vec.Meta.ChunkType), vec.Meta.TotalMarks, vec.Meta.SourcePath,
			vec.Text, vectorToString(vec.Embedding),
		); err != nil {
			return fmt.Errorf("upsert embedding %s: %w", vec.ID, err)
		}
	}

	return tx.Commit()
}

// Search returns up to topK nearest vectors matching the metadata filter,
// ordered by descending similarity.
func (v *PgVectorIndex) Search(ctx context.Context, embedding []float32, topK int, filter map[string]string) ([]domain.RetrievedCriterion, error) {
	args := []interface{}{vectorToString(embedding)}
	var where []string
	for key, value := range filter {
		col, ok := filterColumns[key]
		if !ok {
			return nil, fmt.Errorf("search: unsupported filter key %q", key)
		}
		args = append(args, value)
		where = append(where, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	query := `SELECT content, subject, question_id, chunk_index, chunk_type, total_marks, source_path,
	                 1 - (vector <=> $1::vector) AS similarity
	          FROM embeddings`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	args = append(args, topK)
	query += fmt.Sprintf(" ORDER BY vector <=> $1::vector LIMIT $%d", len(args))

	rows, err := v.store.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search embeddings: %w", err)
	}
	defer rows.Close()

	var results []domain.RetrievedCriterion
	for rows.Next() {
		var (
			rc        domain.RetrievedCriterion
			chunkType string
		)
		if err := rows.Scan(
			&rc.Content, &rc.Meta.Subject, &rc.Meta.QuestionID, &rc.Meta.ChunkIndex,
			&chunkType, &rc.Meta.TotalMarks, &rc.Meta.SourcePath, &rc.Similarity,
		); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		rc.Meta.ChunkType = domain.ChunkType(chunkType)
		results = append(results, rc)
	}
	return results, rows.Err()
}

// Reset deletes every vector from the index.
func (v *PgVectorIndex) Reset(ctx context.Context) error {
	if _, err := v.store.db.ExecContext(ctx, `TRUNCATE embeddings`); err != nil {
		return fmt.Errorf("reset embeddings: %w", err)
	}
	return nil
}

// Count returns the number of indexed vectors.
func (v *PgVectorIndex) Count(ctx context.Context) (int, error) {
	var count int
	err := v.store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM embeddings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count embeddings: %w", err)
	}
	return count, nil
}

// Subjects maps each indexed subject to its sorted question IDs.
func (v *PgVectorIndex) Subjects(ctx context.Context) (map[string][]string, error) {
	rows, err := v.store.db.QueryContext(ctx,
		`SELECT DISTINCT subject, question_id FROM embeddings`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	subjects := make(map[string][]string)
	for rows.Next() {
		var subject, questionID string
		if err := rows.Scan(&subject, &questionID); err != nil {
			return nil, fmt.Errorf("scan subject: %w", err)
		}
		subjects[subject] = append(subjects[subject], questionID)
	}
	for _, questions := range subjects {
		sort.Strings(questions)
	}
	return subjects, rows.Err()
}

// vectorToString converts a float32 slice to pgvector string format: [0.1,0.2,0.3].
func vectorToString(v []float32) string {
	parts := make([]string, len(v))
	for i, val := range v {
		parts[i] = fmt.Sprintf("%g", val)
	}
	return "[" + strings.Join(parts, ",") + "]"
}
