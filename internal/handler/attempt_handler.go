package handler

import (
	"synapse/internal/dto"
	"synapse/internal/middleware"
	"synapse/internal/service"
	"synapse/internal/validation"

	"github.com/gofiber/fiber/v2"
)

const maxHistoryLimit = 100

// AttemptHandler handles quiz attempt requests
type AttemptHandler struct {
	service   service.AttemptService
	validator *validation.Validator
}

// NewAttemptHandler creates a new AttemptHandler instance
func NewAttemptHandler(service service.AttemptService) *AttemptHandler {
	return &AttemptHandler{
		service:   service,
		validator: validation.NewValidator(),
	}
}

// StartAttempt godoc
// @Summary Start or resume an attempt
// @Description Resumes the caller's open attempt on the quiz or starts a new one
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Param quizID path string true "Quiz ID"
// @Success 201 {object} dto.AttemptResponse "New attempt"
// @Success 200 {object} dto.AttemptResponse "Resumed attempt"
// @Failure 409 {object} middleware.ErrorResponse "ATTEMPT_BLOCKED"
// @Router /quizzes/{quizID}/attempts [post]
func (h *AttemptHandler) StartAttempt(c *fiber.Ctx) error {
	attempt, err := h.service.Start(c.Context(), middleware.UserID(c), c.Params("quizID"))
	if err != nil {
		return err
	}
	status := fiber.StatusCreated
	if attempt.Resumed {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(attempt)
}

// SelectAnswer godoc
// @Summary Record an answer
// @Description Records or overwrites the answer to one question. Study mode includes feedback.
// @Tags attempts
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param attemptID path string true "Attempt ID"
// @Param request body dto.SelectAnswerRequest true "Answer"
// @Success 200 {object} dto.SelectAnswerResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 409 {object} middleware.ErrorResponse "TIME_EXPIRED or ATTEMPT_COMPLETED"
// @Router /attempts/{attemptID}/answers [put]
func (h *AttemptHandler) SelectAnswer(c *fiber.Ctx) error {
	var req dto.SelectAnswerRequest
	if err := parseBody(c, &req, h.validator.ValidateSelectAnswer); err != nil {
		return err
	}

	res, err := h.service.SelectAnswer(c.Context(), middleware.UserID(c), c.Params("attemptID"), req)
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// SubmitAttempt handles POST /api/attempts/:attemptID/submit
func (h *AttemptHandler) SubmitAttempt(c *fiber.Ctx) error {
	res, err := h.service.Submit(c.Context(), middleware.UserID(c), c.Params("attemptID"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// TimeUp handles POST /api/attempts/:attemptID/timeup. The client calls it
// when its countdown reaches zero.
func (h *AttemptHandler) TimeUp(c *fiber.Ctx) error {
	res, err := h.service.TimeUp(c.Context(), middleware.UserID(c), c.Params("attemptID"))
	if err != nil {
		return err
	}
	return c.JSON(res)
}

// GetAttempt handles GET /api/attempts/:attemptID
func (h *AttemptHandler) GetAttempt(c *fiber.Ctx) error {
	attempt, err := h.service.Get(c.Context(), middleware.UserID(c), c.Params("attemptID"))
	if err != nil {
		return err
	}
	return c.JSON(attempt)
}

// ReviewAttempt godoc
// @Summary Review a completed attempt
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Param attemptID path string true "Attempt ID"
// @Success 200 {object} dto.ReviewResponse
// @Failure 403 {object} middleware.ErrorResponse "Not completed or hidden by the room mode"
// @Router /attempts/{attemptID}/review [get]
func (h *AttemptHandler) ReviewAttempt(c *fiber.Ctx) error {
	review, err := h.service.Review(c.Context(), middleware.UserID(c), c.Params("attemptID"))
	if err != nil {
		return err
	}
	return c.JSON(review)
}

// GetMyAttempts godoc
// @Summary My attempt history
// @Description Most recent attempts first
// @Tags attempts
// @Security ApiKeyAuth
// @Produce json
// @Param limit query int false "Max attempts (1-100)"
// @Success 200 {object} dto.AttemptHistoryResponse
// @Router /users/me/attempts [get]
func (h *AttemptHandler) GetMyAttempts(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 0)
	if limit < 0 {
		limit = 0
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	history, err := h.service.History(c.Context(), middleware.UserID(c), limit)
	if err != nil {
		return err
	}
	return c.JSON(history)
}

// ActiveUsers handles GET /api/quizzes/:quizID/active-users
func (h *AttemptHandler) ActiveUsers(c *fiber.Ctx) error {
	users, err := h.service.ActiveUsers(c.Context(), middleware.UserID(c), c.Params("quizID"))
	if err != nil {
		return err
	}
	return c.JSON(users)
}
