package handler

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
)

// HistoryHandler serves the persisted evaluation history.
type HistoryHandler struct {
	store port.EvaluationStore
}

// NewHistoryHandler creates a new history handler.
func NewHistoryHandler(store port.EvaluationStore) *HistoryHandler {
	return &HistoryHandler{store: store}
}

// Register sets up history routes.
func (h *HistoryHandler) Register(router fiber.Router) {
	history := router.Group("/history")
	history.Get("/", h.List)
	history.Get("/:id", h.Get)
}

// List returns recent evaluation summaries, most recent first.
func (h *HistoryHandler) List(c fiber.Ctx) error {
	limit := 50
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "limit must be a positive integer"})
		}
		limit = n
	}

	summaries, err := h.store.ListRecent(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(summaries)
}

// Get returns one full evaluation record by ID.
func (h *HistoryHandler) Get(c fiber.Ctx) error {
	rec, err := h.store.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, port.ErrEvaluationNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "evaluation not found"})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(rec)
}
