package handler

import (
	"errors"
	"strings"

	"synapse/internal/domain"
	"synapse/internal/dto"
	"synapse/internal/logger"
	"synapse/internal/middleware"
	"synapse/internal/service"
	"synapse/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHandler handles quiz-related HTTP requests
type QuizHandler struct {
	service   service.QuizService
	validator *validation.Validator
}

// NewQuizHandler creates a new QuizHandler instance
func NewQuizHandler(service service.QuizService) *QuizHandler {
	return &QuizHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// CreateQuiz godoc
// @Summary Generate and store a quiz
// @Description Generates questions from a room document and stores the quiz with its ordered questions
// @Tags quiz
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param roomID path string true "Room ID"
// @Param request body dto.CreateQuizRequest true "Quiz details"
// @Success 201 {object} dto.QuizResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 402 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse "Document not found"
// @Failure 429 {object} middleware.ErrorResponse
// @Failure 502 {object} middleware.ErrorResponse
// @Router /rooms/{roomID}/quizzes [post]
func (h *QuizHandler) CreateQuiz(c *fiber.Ctx) error {
	var req dto.CreateQuizRequest
	if err := parseBody(c, &req, h.validator.ValidateCreateQuiz); err != nil {
		return err
	}

	quiz, err := h.service.CreateQuiz(c.Context(), middleware.UserID(c), c.Params("roomID"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(quiz)
}

// ListQuizzes handles GET /api/rooms/:roomID/quizzes
func (h *QuizHandler) ListQuizzes(c *fiber.Ctx) error {
	quizzes, err := h.service.ListQuizzes(c.Context(), middleware.UserID(c), c.Params("roomID"))
	if err != nil {
		return err
	}
	return c.JSON(quizzes)
}

// GetQuiz godoc
// @Summary Get a quiz
// @Description Returns the quiz with its questions. Correct answers are never included.
// @Tags quiz
// @Security ApiKeyAuth
// @Produce json
// @Param quizID path string true "Quiz ID"
// @Success 200 {object} dto.QuizResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /quizzes/{quizID} [get]
func (h *QuizHandler) GetQuiz(c *fiber.Ctx) error {
	quiz, err := h.service.GetQuiz(c.Context(), middleware.UserID(c), c.Params("quizID"))
	if err != nil {
		return err
	}
	return c.JSON(quiz)
}

// GenerateQuiz godoc
// @Summary Generate quiz questions
// @Description Generates questions from raw text without storing anything. Errors use the {error} body.
// @Tags quiz
// @Accept json
// @Produce json
// @Param request body dto.GenerateQuizRequest true "Content to generate from"
// @Success 200 {object} dto.GenerateQuizResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 402 {object} dto.ErrorResponse
// @Failure 429 {object} dto.ErrorResponse
// @Failure 500 {object} dto.ErrorResponse
// @Router /generate-quiz [post]
func (h *QuizHandler) GenerateQuiz(c *fiber.Ctx) error {
	var req dto.GenerateQuizRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Invalid request body",
		})
	}
	if strings.TrimSpace(req.Content) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: "Document content is required",
		})
	}

	result, err := h.service.GenerateQuestions(c.Context(), req)
	if err != nil {
		status := generateStatus(err)
		logger.Get().Error("Failed to generate quiz",
			zap.Error(err),
			zap.Int("status", status),
			zap.Int("content_length", len(req.Content)),
		)
		return c.Status(status).JSON(dto.ErrorResponse{Error: generateMessage(err)})
	}

	return c.JSON(result)
}

// generateStatus keeps the historical status set of /generate-quiz, which
// differs from the REST API for upstream failures.
func generateStatus(err error) int {
	switch {
	case domain.IsCode(err, domain.CodeRateLimited):
		return fiber.StatusTooManyRequests
	case domain.IsCode(err, domain.CodeQuotaExhausted):
		return fiber.StatusPaymentRequired
	}
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) || domain.IsCode(err, domain.CodeValidation) {
		return fiber.StatusBadRequest
	}
	return fiber.StatusInternalServerError
}

func generateMessage(err error) string {
	var de *domain.DomainError
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return "Failed to generate quiz"
}
