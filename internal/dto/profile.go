package dto

import (
	"time"

	"synapse/internal/domain"
)

type ProfileResponse struct {
	UserID                 string                 `json:"user_id"`
	Username               string                 `json:"username"`
	DisplayName            string                 `json:"display_name,omitempty"`
	XP                     int                    `json:"xp"`
	Level                  int                    `json:"level"`
	StreakDays             int                    `json:"streak_days"`
	LastActivityDate       *time.Time             `json:"last_activity_date,omitempty"`
	TotalQuizzesCompleted  int                    `json:"total_quizzes_completed"`
	TotalCorrectAnswers    int                    `json:"total_correct_answers"`
	TotalQuestionsAnswered int                    `json:"total_questions_answered"`
	Accuracy               int                    `json:"accuracy"`
	LevelProgress          domain.LevelProgress   `json:"level_progress"`
	AchievementsEarned     int                    `json:"achievements_earned"`
	RecentActivity         []domain.DailyActivity `json:"recent_activity"`
}

type AchievementResponse struct {
	domain.Achievement
	Rarity   string     `json:"rarity"`
	Earned   bool       `json:"earned"`
	EarnedAt *time.Time `json:"earned_at,omitempty"`
}

type AchievementListResponse struct {
	Achievements []AchievementResponse `json:"achievements"`
	EarnedCount  int                   `json:"earned_count"`
	TotalCount   int                   `json:"total_count"`
}

type ActivityResponse struct {
	Days         []domain.DailyActivity `json:"days"`
	TotalXP      int                    `json:"total_xp"`
	TotalQuizzes int                    `json:"total_quizzes"`
}

// UpdatePreferencesRequest is a partial update; nil fields are kept.
type UpdatePreferencesRequest struct {
	DefaultTimeLimit       *int    `json:"default_time_limit"`
	ShowAnswersImmediately *bool   `json:"show_answers_immediately"`
	PreferredDifficulty    *string `json:"preferred_difficulty"`
	Theme                  *string `json:"theme"`
}

type BookmarkRequest struct {
	Notes string `json:"notes"`
}

type BookmarkResponse struct {
	QuestionID string    `json:"question_id"`
	Notes      string    `json:"notes,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

type BookmarkListResponse struct {
	Bookmarks []BookmarkResponse `json:"bookmarks"`
}
