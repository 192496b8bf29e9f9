package port

import "context"

// AIProvider abstracts the AI backend for embeddings and chat completions.
// Implementations can target Ollama, OpenAI, or any compatible API.
// Embeddings must be deterministic for identical input and have a fixed
// dimensionality per model.
type AIProvider interface {
	// ModelName returns the identifier of the chat model being used.
	ModelName() string

	// EmbeddingModelName returns the identifier of the embedding model.
	EmbeddingModelName() string

	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Chat sends a prompt and returns the raw LLM response text.
	Chat(ctx context.Context, systemPrompt string, userPrompt string) (string, error)
}
