package handler

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"github.com/arturoeanton/go-exam-checker-ollama/internal/port"
	"github.com/arturoeanton/go-exam-checker-ollama/internal/service"
)

// EvaluationHandler handles the evaluation endpoint.
type EvaluationHandler struct {
	evaluations *service.EvaluationService
}

// NewEvaluationHandler creates a new evaluation handler.
func NewEvaluationHandler(evaluations *service.EvaluationService) *EvaluationHandler {
	return &EvaluationHandler{evaluations: evaluations}
}

// Register sets up evaluation routes.
func (h *EvaluationHandler) Register(router fiber.Router) {
	router.Post("/evaluate", h.Evaluate)
}

// Evaluate grades a student answer against the indexed marking scheme.
func (h *EvaluationHandler) Evaluate(c fiber.Ctx) error {
	var body struct {
		Subject       string `json:"subject"`
		QuestionID    string `json:"question_id"`
		StudentAnswer string `json:"student_answer"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.Subject == "" || body.QuestionID == "" || body.StudentAnswer == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "subject, question_id and student_answer are required",
		})
	}

	rec, err := h.evaluations.Evaluate(c.Context(), body.Subject, body.QuestionID, body.StudentAnswer)
	if err != nil {
		switch {
		case errors.Is(err, port.ErrNoCriteria):
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": err.Error(),
				"hint":  "re-ingest the marking scheme or check the subject and question spelling",
			})
		case errors.Is(err, port.ErrNoJudgments):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "evaluation produced no scoreable judgments",
			})
		default:
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
	}

	return c.JSON(rec)
}
