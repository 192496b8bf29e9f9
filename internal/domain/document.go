package domain

// DocumentMeta describes a marking scheme document before chunking.
type DocumentMeta struct {
	Subject    string `json:"subject"`
	QuestionID string `json:"question_id"`
	TotalMarks int    `json:"total_marks"`
	SourcePath string `json:"source_path"`
}

// Document is a raw marking scheme. Immutable once ingested; re-ingestion
// replaces it wholesale via deterministic chunk IDs.
type Document struct {
	Content string       `json:"content"`
	Meta    DocumentMeta `json:"meta"`
}
