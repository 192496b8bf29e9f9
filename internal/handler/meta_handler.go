package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

// MetaHandler serves subjects, statistics and health endpoints.
type MetaHandler struct {
	index port.VectorIndex
	store port.EvaluationStore
	ai    port.AIProvider
}

// NewMetaHandler creates a new meta handler.
func NewMetaHandler(index port.VectorIndex, store port.EvaluationStore, ai port.AIProvider) *MetaHandler {
	return &MetaHandler{index: index, store: store, ai: ai}
}

// Register sets up meta routes.
func (h *MetaHandler) Register(router fiber.Router) {
	router.Get("/subjects", h.Subjects)
	router.Get("/stats", h.Stats)
	router.Get("/health", h.Health)
}

// Subjects lists indexed subjects and their question IDs.
func (h *MetaHandler) Subjects(c fiber.Ctx) error {
	subjects, err := h.index.Subjects(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(subjects)
}

// Stats reports system statistics.
func (h *MetaHandler) Stats(c fiber.Ctx) error {
	vectors, err := h.index.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	evaluations, err := h.store.CountEvaluations(c.Context())
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"total_marking_scheme_chunks": vectors,
		"total_evaluations":           evaluations,
		"chat_model":                  h.ai.ModelName(),
		"embedding_model":             h.ai.EmbeddingModelName(),
	})
}

// Health reports service health.
func (h *MetaHandler) Health(c fiber.Ctx) error {
	vectors, err := h.index.Count(c.Context())
	if err != nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "degraded",
			"error":  err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"status":          "healthy",
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
		"vector_db_count": vectors,
		"chat_model":      h.ai.ModelName(),
		"embedding_model": h.ai.EmbeddingModelName(),
	})
}
