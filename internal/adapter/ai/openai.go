package ai

import (
	"context"
	"fmt"
	"math"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider implements port.AIProvider against the OpenAI API.
type OpenAIProvider struct {
	client     *openai.Client
	embedModel string
	chatModel  string
}

// NewOpenAIProvider creates an OpenAI-backed provider.
func NewOpenAIProvider(apiKey, embedModel, chatModel string) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai: API key not set")
	}
	return &OpenAIProvider{
		client:     openai.NewClient(apiKey),
		embedModel: embedModel,
		chatModel:  chatModel,
	}, nil
}

// ModelName returns the chat model identifier.
func (p *OpenAIProvider) ModelName() string {
	return p.chatModel
}

// EmbeddingModelName returns the embedding model identifier.
func (p *OpenAIProvider) EmbeddingModelName() string {
	return p.embedModel
}

// Embed generates a vector embedding for the given text.
func (p *OpenAIProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := p.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts in one call.
func (p *OpenAIProvider) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(p.embedModel),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embed: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embed: got %d embeddings for %d inputs", len(resp.Data), len(texts))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		v := make([]float32, len(d.Embedding))
		copy(v, d.Embedding)
		// L2 normalize so cosine distance behaves like the Ollama models.
		l2normalize(v)
		vectors[i] = v
	}
	return vectors, nil
}

// Chat sends a prompt and returns the complete response text.
func (p *OpenAIProvider) Chat(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
	resp, err := p.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       p.chatModel,
		Temperature: 0.1,
		TopP:        0.9,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai chat: empty response")
	}
	return resp.Choices[0].Message.Content, nil
}

func l2normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range v {
		v[i] = float32(float64(v[i]) / norm)
	}
}
