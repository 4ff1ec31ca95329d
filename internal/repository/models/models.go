package models

import (
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// StringSlice stores a []string as a JSON array column.
type StringSlice []string

// Value implements the driver.Valuer interface
func (s StringSlice) Value() (driver.Value, error) {
	if s == nil {
		return "[]", nil
	}
	jsonData, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

// Scan implements the sql.Scanner interface
func (s *StringSlice) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("StringSlice Scan: %w", err)
	}
	if raw == nil {
		*s = StringSlice{}
		return nil
	}
	return json.Unmarshal(raw, s)
}

// AnswerMap stores question id -> selected option as a JSON object column.
type AnswerMap map[string]string

func (a AnswerMap) Value() (driver.Value, error) {
	if a == nil {
		return "{}", nil
	}
	jsonData, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(jsonData), nil
}

func (a *AnswerMap) Scan(value interface{}) error {
	raw, err := jsonBytes(value)
	if err != nil {
		return fmt.Errorf("AnswerMap Scan: %w", err)
	}
	if raw == nil {
		*a = AnswerMap{}
		return nil
	}
	m := AnswerMap{}
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*a = m
	return nil
}

// jsonBytes returns nil for NULL, empty and literal "null" values.
func jsonBytes(value interface{}) ([]byte, error) {
	if value == nil {
		return nil, nil
	}
	var b []byte
	switch v := value.(type) {
	case []byte:
		b = v
	case string:
		b = []byte(v)
	default:
		return nil, errors.New("unsupported type " + fmt.Sprintf("%T", value))
	}
	if len(b) == 0 || string(b) == "null" {
		return nil, nil
	}
	return b, nil
}

type Room struct {
	ID                 string    `db:"id"`
	Code               string    `db:"code"`
	Name               string    `db:"name"`
	Mode               string    `db:"mode"`
	LeaderboardEnabled bool      `db:"leaderboard_enabled"`
	OwnerID            string    `db:"owner_id"`
	CreatedAt          time.Time `db:"created_at"`
	UpdatedAt          time.Time `db:"updated_at"`
}

type RoomMember struct {
	ID       string    `db:"id"`
	RoomID   string    `db:"room_id"`
	UserID   string    `db:"user_id"`
	Role     string    `db:"role"`
	JoinedAt time.Time `db:"joined_at"`
}

// MemberWithProfile is room_members LEFT JOIN profiles.
type MemberWithProfile struct {
	RoomMember
	Username    sql.NullString `db:"username"`
	DisplayName sql.NullString `db:"display_name"`
	Level       sql.NullInt64  `db:"level"`
}

type Document struct {
	ID         string         `db:"id"`
	RoomID     string         `db:"room_id"`
	Name       string         `db:"name"`
	Content    sql.NullString `db:"content"`
	FilePath   sql.NullString `db:"file_path"`
	UploadedBy string         `db:"uploaded_by"`
	CreatedAt  time.Time      `db:"created_at"`
}

type Quiz struct {
	ID               string         `db:"id"`
	RoomID           string         `db:"room_id"`
	DocumentID       sql.NullString `db:"document_id"`
	CreatedBy        string         `db:"created_by"`
	Title            string         `db:"title"`
	Description      sql.NullString `db:"description"`
	Difficulty       string         `db:"difficulty"`
	TimeLimitMinutes sql.NullInt64  `db:"time_limit_minutes"`
	CreatedAt        time.Time      `db:"created_at"`
}

type Question struct {
	ID            string         `db:"id"`
	QuizID        string         `db:"quiz_id"`
	QuestionText  string         `db:"question_text"`
	QuestionType  string         `db:"question_type"`
	Options       StringSlice    `db:"options"`
	CorrectAnswer string         `db:"correct_answer"`
	Explanation   sql.NullString `db:"explanation"`
	OrderIndex    int            `db:"order_index"`
}

type QuizAttempt struct {
	ID             string        `db:"id"`
	UserID         string        `db:"user_id"`
	QuizID         string        `db:"quiz_id"`
	Status         string        `db:"status"`
	Answers        AnswerMap     `db:"answers"`
	Score          sql.NullInt64 `db:"score"`
	CorrectAnswers int           `db:"correct_answers"`
	TotalQuestions int           `db:"total_questions"`
	StartedAt      sql.NullTime  `db:"started_at"`
	CompletedAt    sql.NullTime  `db:"completed_at"`
	DeadlineAt     sql.NullTime  `db:"deadline_at"`
	CreatedAt      time.Time     `db:"created_at"`
}

type Profile struct {
	ID                     string         `db:"id"`
	Username               string         `db:"username"`
	DisplayName            sql.NullString `db:"display_name"`
	XP                     int            `db:"xp"`
	Level                  int            `db:"level"`
	StreakDays             int            `db:"streak_days"`
	LastActivityDate       sql.NullTime   `db:"last_activity_date"`
	TotalQuizzesCompleted  int            `db:"total_quizzes_completed"`
	TotalCorrectAnswers    int            `db:"total_correct_answers"`
	TotalQuestionsAnswered int            `db:"total_questions_answered"`
	UpdatedAt              time.Time      `db:"updated_at"`
}

type Achievement struct {
	ID               string        `db:"id"`
	Name             string        `db:"name"`
	Description      string        `db:"description"`
	Icon             string        `db:"icon"`
	Category         string        `db:"category"`
	XPReward         int           `db:"xp_reward"`
	RequirementValue sql.NullInt64 `db:"requirement_value"`
}

type UserAchievement struct {
	AchievementID string    `db:"achievement_id"`
	EarnedAt      time.Time `db:"earned_at"`
}

type UserPreferences struct {
	ID                     string        `db:"id"`
	UserID                 string        `db:"user_id"`
	DefaultTimeLimit       sql.NullInt64 `db:"default_time_limit"`
	ShowAnswersImmediately bool          `db:"show_answers_immediately"`
	PreferredDifficulty    string        `db:"preferred_difficulty"`
	Theme                  string        `db:"theme"`
	UpdatedAt              time.Time     `db:"updated_at"`
}

type DailyActivity struct {
	UserID            string    `db:"user_id"`
	ActivityDate      time.Time `db:"activity_date"`
	QuizzesCompleted  int       `db:"quizzes_completed"`
	XPEarned          int       `db:"xp_earned"`
	QuestionsAnswered int       `db:"questions_answered"`
	CorrectAnswers    int       `db:"correct_answers"`
}

type Bookmark struct {
	ID         string         `db:"id"`
	UserID     string         `db:"user_id"`
	QuestionID string         `db:"question_id"`
	Notes      sql.NullString `db:"notes"`
	CreatedAt  time.Time      `db:"created_at"`
}

type LeaderboardRow struct {
	UserID      string `db:"user_id"`
	DisplayName string `db:"display_name"`
	TotalScore  int    `db:"total_score"`
	QuizCount   int    `db:"quiz_count"`
}
