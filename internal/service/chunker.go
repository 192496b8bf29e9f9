package service

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/domain"
)

// criterionMarker matches numbered items ("1.") and bullet glyphs at line
// starts, the patterns marking schemes use to enumerate criteria.
var criterionMarker = regexp.MustCompile(`(?m)^(?:\d+\.|[-*•])\s+`)

// Chunker splits marking scheme documents into retrievable chunks.
// Criterion-based chunking is preferred over fixed-size because one chunk per
// gradable point retrieves much better than arbitrary windows.
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker creates a chunker. Overlap must be smaller than size or the
// fixed-size window would never advance.
func NewChunker(chunkSize, chunkOverlap int) (*Chunker, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunker: size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunker: overlap (%d) must be in [0, size) with size %d", chunkOverlap, chunkSize)
	}
	return &Chunker{chunkSize: chunkSize, chunkOverlap: chunkOverlap}, nil
}

// ChunkByCriteria splits text into one chunk per enumerated criterion,
// falling back to paragraphs and finally to the whole text. Never returns an
// empty slice for non-empty input. The base metadata is stamped onto every
// chunk with the assigned index and type.
func (c *Chunker) ChunkByCriteria(text string, base domain.ChunkMeta) []domain.Chunk {
	var chunks []domain.Chunk

	sections := splitNonEmpty(criterionMarker.Split(text, -1))
	if len(sections) > 1 {
		for idx, section := range sections {
			chunks = append(chunks, newChunk(section, base, idx, domain.ChunkTypeCriterion))
		}
		return chunks
	}

	paragraphs := splitNonEmpty(strings.Split(text, "\n\n"))
	for idx, para := range paragraphs {
		chunks = append(chunks, newChunk(para, base, idx, domain.ChunkTypeParagraph))
	}
	if len(chunks) > 0 {
		return chunks
	}

	return []domain.Chunk{newChunk(text, base, 0, domain.ChunkTypeFull)}
}

// ChunkFixedSize slides a window of chunkSize characters with chunkOverlap
// characters of overlap between consecutive windows. Available as an explicit
// alternative; not used by default ingestion.
func (c *Chunker) ChunkFixedSize(text string, base domain.ChunkMeta) []domain.Chunk {
	var chunks []domain.Chunk

	for start := 0; start < len(text); start += c.chunkSize - c.chunkOverlap {
		end := start + c.chunkSize
		if end > len(text) {
			end = len(text)
		}
		window := text[start:end]
		if strings.TrimSpace(window) == "" {
			continue
		}
		chunks = append(chunks, newChunk(window, base, len(chunks), domain.ChunkTypeFixedSize))
	}

	return chunks
}

func newChunk(content string, base domain.ChunkMeta, index int, chunkType domain.ChunkType) domain.Chunk {
	meta := base
	meta.ChunkIndex = index
	meta.ChunkType = chunkType
	return domain.Chunk{Content: content, Meta: meta}
}

// splitNonEmpty trims every section and drops whitespace-only ones.
func splitNonEmpty(sections []string) []string {
	var out []string
	for _, s := range sections {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
