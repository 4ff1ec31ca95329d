package seedmodels

import (
	"fmt"
	"time"

	"synapse/internal/domain"
)

// SeedQuestion defines one question of a seeded quiz.
type SeedQuestion struct {
	Question    string   `json:"question"`
	Type        string   `json:"type"`
	Options     []string `json:"options"`
	Correct     string   `json:"correct"`
	Explanation string   `json:"explanation"`
}

// SeedQuiz is stored as authored; no generation call is made.
type SeedQuiz struct {
	Title            string         `json:"title"`
	Description      string         `json:"description"`
	Difficulty       string         `json:"difficulty"`
	TimeLimitMinutes *int           `json:"time_limit_minutes"`
	Questions        []SeedQuestion `json:"questions"`
}

// SeedRoom defines the structure of the JSON seed file.
type SeedRoom struct {
	OwnerID            string     `json:"owner_id"`
	OwnerUsername      string     `json:"owner_username"`
	Code               string     `json:"code"`
	Name               string     `json:"name"`
	Mode               string     `json:"mode"`
	LeaderboardEnabled bool       `json:"leaderboard_enabled"`
	DocumentName       string     `json:"document_name"`
	DocumentContent    string     `json:"document_content"`
	Quizzes            []SeedQuiz `json:"quizzes"`
}

// Validate rejects seed files the API itself would not accept.
func (s SeedRoom) Validate() error {
	if s.OwnerID == "" || s.Name == "" {
		return fmt.Errorf("owner_id and name are required")
	}
	if !domain.IsValidRoomCode(domain.NormalizeRoomCode(s.Code)) {
		return fmt.Errorf("invalid room code %q", s.Code)
	}
	if !domain.Mode(s.Mode).Valid() {
		return fmt.Errorf("invalid mode %q", s.Mode)
	}
	for _, q := range s.Quizzes {
		if len(q.Questions) == 0 {
			return fmt.Errorf("quiz %q has no questions", q.Title)
		}
	}
	return nil
}

// Room converts the seed into a domain room with the given id.
func (s SeedRoom) Room(id string, now time.Time) *domain.Room {
	return &domain.Room{
		ID:                 id,
		Code:               domain.NormalizeRoomCode(s.Code),
		Name:               s.Name,
		Mode:               domain.Mode(s.Mode),
		LeaderboardEnabled: s.LeaderboardEnabled,
		OwnerID:            s.OwnerID,
		CreatedAt:          now,
	}
}

// Quiz converts one seeded quiz. newID is called once for the quiz and once
// per question, in order.
func (q SeedQuiz) Quiz(roomID, documentID, createdBy string, newID func() string, now time.Time) *domain.Quiz {
	difficulty := domain.Difficulty(q.Difficulty)
	if !difficulty.Valid() {
		difficulty = domain.DifficultyMedium
	}
	docID := documentID
	quiz := &domain.Quiz{
		ID:               newID(),
		RoomID:           roomID,
		DocumentID:       &docID,
		CreatedBy:        createdBy,
		Title:            q.Title,
		Description:      q.Description,
		Difficulty:       difficulty,
		TimeLimitMinutes: q.TimeLimitMinutes,
		CreatedAt:        now,
	}
	for i, sq := range q.Questions {
		qt := domain.QuestionTypeMultipleChoice
		if sq.Type == string(domain.QuestionTypeTrueFalse) {
			qt = domain.QuestionTypeTrueFalse
		}
		quiz.Questions = append(quiz.Questions, &domain.Question{
			ID:            newID(),
			QuizID:        quiz.ID,
			Text:          sq.Question,
			Type:          qt,
			Options:       sq.Options,
			CorrectAnswer: sq.Correct,
			Explanation:   sq.Explanation,
			OrderIndex:    i,
		})
	}
	return quiz
}
