package handler

import (
	"synapse/internal/dto"
	"synapse/internal/logger"
	"synapse/internal/middleware"
	"synapse/internal/service"
	"synapse/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type UserHandler struct {
	gamification service.GamificationService
	preferences  service.PreferencesService
	bookmarks    service.BookmarkService
	validator    *validation.Validator
}

func NewUserHandler(
	gamification service.GamificationService,
	preferences service.PreferencesService,
	bookmarks service.BookmarkService,
) *UserHandler {
	return &UserHandler{
		gamification: gamification,
		preferences:  preferences,
		bookmarks:    bookmarks,
		validator:    validation.NewValidator(),
	}
}

// GetMyProfile retrieves the profile of the currently authenticated user.
// @Summary Get My Profile
// @Description Stats, level progress and the last week of activity. A profile is created on first access.
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} middleware.ErrorResponse "Unauthorized"
// @Failure 500 {object} middleware.ErrorResponse "Internal server error"
// @Router /users/me [get]
func (h *UserHandler) GetMyProfile(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	profile, err := h.gamification.GetProfile(c.Context(), userID, middleware.Username(c))
	if err != nil {
		return err
	}
	logger.Get().Debug("User profile retrieved", zap.String("userID", userID))
	return c.JSON(profile)
}

// GetMyAchievements returns the full achievement catalog with the caller's
// earned_at merged in.
// @Summary Get My Achievements
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.AchievementListResponse
// @Router /users/me/achievements [get]
func (h *UserHandler) GetMyAchievements(c *fiber.Ctx) error {
	list, err := h.gamification.ListAchievements(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// GetMyActivity returns one entry per day, oldest first.
// @Summary Get My Activity
// @Tags users
// @Security ApiKeyAuth
// @Produce json
// @Param days query int false "Number of days (1-365, default 30)"
// @Success 200 {object} dto.ActivityResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /users/me/activity [get]
func (h *UserHandler) GetMyActivity(c *fiber.Ctx) error {
	days, _ := c.Locals("validated_days").(int)
	activity, err := h.gamification.GetActivity(c.Context(), middleware.UserID(c), days)
	if err != nil {
		return err
	}
	return c.JSON(activity)
}

// GetMyPreferences handles GET /api/users/me/preferences
func (h *UserHandler) GetMyPreferences(c *fiber.Ctx) error {
	prefs, err := h.preferences.Get(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(prefs)
}

// UpdateMyPreferences applies a partial update. Omitted fields keep their
// current value.
// @Summary Update My Preferences
// @Tags users
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.UpdatePreferencesRequest true "Fields to change"
// @Success 200 {object} domain.Preferences
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Router /users/me/preferences [put]
func (h *UserHandler) UpdateMyPreferences(c *fiber.Ctx) error {
	var req dto.UpdatePreferencesRequest
	if err := parseBody(c, &req, h.validator.ValidatePreferences); err != nil {
		return err
	}

	prefs, err := h.preferences.Update(c.Context(), middleware.UserID(c), req)
	if err != nil {
		return err
	}
	return c.JSON(prefs)
}

// GetMyBookmarks handles GET /api/users/me/bookmarks
func (h *UserHandler) GetMyBookmarks(c *fiber.Ctx) error {
	list, err := h.bookmarks.List(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// SaveBookmark handles PUT /api/questions/:questionID/bookmark. Saving an
// existing bookmark replaces its notes.
func (h *UserHandler) SaveBookmark(c *fiber.Ctx) error {
	var req dto.BookmarkRequest
	if len(c.Body()) > 0 {
		if err := parseBody(c, &req, h.validator.ValidateBookmark); err != nil {
			return err
		}
	}

	bookmark, err := h.bookmarks.Save(c.Context(), middleware.UserID(c), c.Params("questionID"), req)
	if err != nil {
		return err
	}
	return c.JSON(bookmark)
}

// RemoveBookmark handles DELETE /api/questions/:questionID/bookmark
func (h *UserHandler) RemoveBookmark(c *fiber.Ctx) error {
	if err := h.bookmarks.Remove(c.Context(), middleware.UserID(c), c.Params("questionID")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}
