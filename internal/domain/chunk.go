package domain

import "fmt"

// ChunkType identifies the strategy that produced a chunk.
type ChunkType string

const (
	ChunkTypeCriterion ChunkType = "criterion"
	ChunkTypeParagraph ChunkType = "paragraph"
	ChunkTypeFixedSize ChunkType = "fixed_size"
	ChunkTypeFull      ChunkType = "full"
)

// ChunkMeta is the closed metadata record attached to every chunk.
// Extra carries caller-supplied document metadata through to the index
// untouched; the retrieval filter matches on the named fields only.
type ChunkMeta struct {
	Subject    string            `json:"subject"     db:"subject"`
	QuestionID string            `json:"question_id" db:"question_id"`
	ChunkIndex int               `json:"chunk_index" db:"chunk_index"`
	ChunkType  ChunkType         `json:"chunk_type"  db:"chunk_type"`
	TotalMarks int               `json:"total_marks" db:"total_marks"`
	SourcePath string            `json:"source_path" db:"source_path"`
	Extra      map[string]string `json:"extra,omitempty"`
}

// Chunk is a semantically bounded slice of a marking scheme, the unit of
// indexing and retrieval. Never mutated after creation.
type Chunk struct {
	Content string    `json:"content"`
	Meta    ChunkMeta `json:"meta"`
}

// IndexedVector is a chunk with its embedding, as stored in the vector index.
type IndexedVector struct {
	ID        string    `json:"id"`
	Embedding []float32 `json:"-"`
	Text      string    `json:"text"`
	Meta      ChunkMeta `json:"meta"`
}

// VectorID builds the deterministic identifier for a chunk. Re-ingesting the
// same document produces the same IDs, so the index overwrites instead of
// duplicating.
func VectorID(subject, questionID string, chunkIndex int) string {
	return fmt.Sprintf("%s_%s_%d", subject, questionID, chunkIndex)
}

// RetrievedCriterion is one similarity-search hit, ordered by descending
// similarity within a result set.
type RetrievedCriterion struct {
	Content    string    `json:"content"`
	Meta       ChunkMeta `json:"metadata"`
	Similarity float64   `json:"similarity_score"`
}
