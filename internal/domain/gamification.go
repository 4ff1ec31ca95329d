package domain

import (
	"context"
	"time"
)

const (
	XPPerQuiz        = 25
	XPPerCorrect     = 10
	XPPerfectBonus   = 50
	XPPerLevel       = 100
	QuickLearnerTime = 120 * time.Second
)

// Stats is the gamified progress row of one user.
type Stats struct {
	UserID                 string
	Username               string
	DisplayName            string
	XP                     int
	Level                  int
	StreakDays             int
	LastActivityDate       *time.Time
	TotalQuizzesCompleted  int
	TotalCorrectAnswers    int
	TotalQuestionsAnswered int
	UpdatedAt              time.Time
}

// LevelForXP is floor(xp/100)+1.
func LevelForXP(xp int) int {
	if xp < 0 {
		xp = 0
	}
	return xp/XPPerLevel + 1
}

// XPForCompletion is the base reward for one completed attempt, before
// achievement bonuses.
func XPForCompletion(correct, score int) int {
	xp := XPPerQuiz + XPPerCorrect*correct
	if score == 100 {
		xp += XPPerfectBonus
	}
	return xp
}

// CalendarDay truncates t to its UTC calendar date.
func CalendarDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NextStreak continues the streak when the last activity was yesterday,
// keeps it on the same day, and restarts it at 1 otherwise.
func NextStreak(current int, last *time.Time, today time.Time) int {
	today = CalendarDay(today)
	if last == nil {
		return 1
	}
	lastDay := CalendarDay(*last)
	switch {
	case lastDay.Equal(today):
		if current < 1 {
			return 1
		}
		return current
	case lastDay.Equal(today.AddDate(0, 0, -1)):
		return current + 1
	default:
		return 1
	}
}

// Completion is the outcome of one finished attempt as seen by the engine.
type Completion struct {
	CorrectAnswers int
	TotalQuestions int
	Score          int
	StartedAt      time.Time
	CompletedAt    time.Time
}

func (c Completion) Duration() time.Duration {
	return c.CompletedAt.Sub(c.StartedAt)
}

type AchievementID string

const (
	AchievementFirstQuiz    AchievementID = "first_quiz"
	AchievementQuizMaster10 AchievementID = "quiz_master_10"
	AchievementQuizMaster50 AchievementID = "quiz_master_50"
	AchievementPerfectScore AchievementID = "perfect_score"
	AchievementStreak3      AchievementID = "streak_3"
	AchievementStreak7      AchievementID = "streak_7"
	AchievementStreak30     AchievementID = "streak_30"
	AchievementQuickLearner AchievementID = "quick_learner"
)

type Achievement struct {
	ID               AchievementID `json:"id"`
	Name             string        `json:"name"`
	Description      string        `json:"description"`
	Icon             string        `json:"icon"`
	Category         string        `json:"category"`
	XPReward         int           `json:"xp_reward"`
	RequirementValue int           `json:"requirement_value"`
}

// Rarity buckets an achievement by its reward.
func (a Achievement) Rarity() string {
	switch {
	case a.XPReward >= 200:
		return "legendary"
	case a.XPReward >= 100:
		return "epic"
	case a.XPReward >= 50:
		return "rare"
	default:
		return "common"
	}
}

// UserAchievement is a catalog entry together with when the user earned it.
type UserAchievement struct {
	Achievement
	EarnedAt *time.Time
}

// DefaultAchievementCatalog mirrors the rows seeded by the migrations. It is
// the fallback when the catalog table cannot be read.
func DefaultAchievementCatalog() []Achievement {
	return []Achievement{
		{ID: AchievementFirstQuiz, Name: "First Steps", Description: "Complete your first quiz", Icon: "trophy", Category: "milestone", XPReward: 50, RequirementValue: 1},
		{ID: AchievementQuizMaster10, Name: "Quiz Enthusiast", Description: "Complete 10 quizzes", Icon: "book-open", Category: "milestone", XPReward: 100, RequirementValue: 10},
		{ID: AchievementQuizMaster50, Name: "Quiz Master", Description: "Complete 50 quizzes", Icon: "crown", Category: "milestone", XPReward: 250, RequirementValue: 50},
		{ID: AchievementPerfectScore, Name: "Perfectionist", Description: "Score 100% on a quiz", Icon: "star", Category: "performance", XPReward: 75, RequirementValue: 100},
		{ID: AchievementStreak3, Name: "On Fire", Description: "Keep a 3 day streak", Icon: "flame", Category: "streak", XPReward: 50, RequirementValue: 3},
		{ID: AchievementStreak7, Name: "Week Warrior", Description: "Keep a 7 day streak", Icon: "calendar", Category: "streak", XPReward: 100, RequirementValue: 7},
		{ID: AchievementStreak30, Name: "Unstoppable", Description: "Keep a 30 day streak", Icon: "zap", Category: "streak", XPReward: 300, RequirementValue: 30},
		{ID: AchievementQuickLearner, Name: "Quick Learner", Description: "Finish a quiz in under 2 minutes", Icon: "timer", Category: "performance", XPReward: 50, RequirementValue: 120},
	}
}

// QualifyingAchievements lists every achievement the updated stats and the
// completion satisfy, earned or not.
func QualifyingAchievements(s Stats, c Completion) []AchievementID {
	var ids []AchievementID
	if s.TotalQuizzesCompleted >= 1 {
		ids = append(ids, AchievementFirstQuiz)
	}
	if s.TotalQuizzesCompleted >= 10 {
		ids = append(ids, AchievementQuizMaster10)
	}
	if s.TotalQuizzesCompleted >= 50 {
		ids = append(ids, AchievementQuizMaster50)
	}
	if c.Score == 100 {
		ids = append(ids, AchievementPerfectScore)
	}
	if s.StreakDays >= 3 {
		ids = append(ids, AchievementStreak3)
	}
	if s.StreakDays >= 7 {
		ids = append(ids, AchievementStreak7)
	}
	if s.StreakDays >= 30 {
		ids = append(ids, AchievementStreak30)
	}
	if d := c.Duration(); d > 0 && d < QuickLearnerTime {
		ids = append(ids, AchievementQuickLearner)
	}
	return ids
}

// Progress is the engine's plan for one completion: new stats and the
// achievements it intends to award.
type Progress struct {
	Previous Stats
	Stats    Stats
	BaseXP   int
	Awarded  []Achievement
}

// ApplyCompletion computes XP, streak, totals and candidate achievements.
// earned holds ids the user already has; those are never re-awarded.
func ApplyCompletion(prev Stats, c Completion, catalog []Achievement, earned map[AchievementID]bool) Progress {
	next := prev
	base := XPForCompletion(c.CorrectAnswers, c.Score)
	today := CalendarDay(c.CompletedAt)

	next.XP = prev.XP + base
	next.StreakDays = NextStreak(prev.StreakDays, prev.LastActivityDate, today)
	next.LastActivityDate = &today
	next.TotalQuizzesCompleted = prev.TotalQuizzesCompleted + 1
	next.TotalCorrectAnswers = prev.TotalCorrectAnswers + c.CorrectAnswers
	next.TotalQuestionsAnswered = prev.TotalQuestionsAnswered + c.TotalQuestions

	byID := make(map[AchievementID]Achievement, len(catalog))
	for _, a := range catalog {
		byID[a.ID] = a
	}

	p := Progress{Previous: prev, BaseXP: base}
	for _, id := range QualifyingAchievements(next, c) {
		if earned[id] {
			continue
		}
		a, ok := byID[id]
		if !ok {
			continue
		}
		p.Awarded = append(p.Awarded, a)
		next.XP += a.XPReward
	}
	next.Level = LevelForXP(next.XP)
	p.Stats = next
	return p
}

// Revoke drops a planned award that could not be recorded, together with
// its XP.
func (p *Progress) Revoke(id AchievementID) {
	kept := p.Awarded[:0]
	for _, a := range p.Awarded {
		if a.ID == id {
			p.Stats.XP -= a.XPReward
			continue
		}
		kept = append(kept, a)
	}
	p.Awarded = kept
	p.Stats.Level = LevelForXP(p.Stats.XP)
}

// Outcome is what the caller shows after a completion.
type Outcome struct {
	BaseXP          int           `json:"base_xp"`
	XPEarned        int           `json:"xp_earned"`
	TotalXP         int           `json:"total_xp"`
	LevelUp         bool          `json:"level_up"`
	NewLevel        int           `json:"new_level"`
	StreakDays      int           `json:"streak_days"`
	NewAchievements []Achievement `json:"new_achievements"`
}

// Outcome summarises the progress. XPEarned includes achievement rewards.
func (p Progress) Outcome() Outcome {
	prevLevel := p.Previous.Level
	if prevLevel < 1 {
		prevLevel = LevelForXP(p.Previous.XP)
	}
	awarded := p.Awarded
	if awarded == nil {
		awarded = []Achievement{}
	}
	return Outcome{
		BaseXP:          p.BaseXP,
		XPEarned:        p.Stats.XP - p.Previous.XP,
		TotalXP:         p.Stats.XP,
		LevelUp:         p.Stats.Level > prevLevel,
		NewLevel:        p.Stats.Level,
		StreakDays:      p.Stats.StreakDays,
		NewAchievements: awarded,
	}
}

// LevelProgress describes how far a user is into the current level.
type LevelProgress struct {
	Level         int `json:"level"`
	XPIntoLevel   int `json:"xp_into_level"`
	XPForNext     int `json:"xp_for_next"`
	PercentToNext int `json:"percent_to_next"`
}

func ProgressForXP(xp int) LevelProgress {
	if xp < 0 {
		xp = 0
	}
	into := xp % XPPerLevel
	return LevelProgress{
		Level:         LevelForXP(xp),
		XPIntoLevel:   into,
		XPForNext:     XPPerLevel - into,
		PercentToNext: into * 100 / XPPerLevel,
	}
}

// DailyActivity aggregates one user's completions on one UTC day.
type DailyActivity struct {
	Date              time.Time `json:"date"`
	QuizzesCompleted  int       `json:"quizzes_completed"`
	XPEarned          int       `json:"xp_earned"`
	QuestionsAnswered int       `json:"questions_answered"`
	CorrectAnswers    int       `json:"correct_answers"`
}

// Accuracy in whole percent, 0 when nothing was answered.
func (d DailyActivity) Accuracy() int {
	if d.QuestionsAnswered == 0 {
		return 0
	}
	return d.CorrectAnswers * 100 / d.QuestionsAnswered
}

type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*Stats, error)
	// GetForUpdate locks the row for the surrounding transaction, creating
	// an empty row first when the user has none.
	GetForUpdate(ctx context.Context, userID string) (*Stats, error)
	Update(ctx context.Context, s *Stats) error
	EnsureProfile(ctx context.Context, userID, username string) error
}

type AchievementRepository interface {
	ListCatalog(ctx context.Context) ([]Achievement, error)
	ListEarned(ctx context.Context, userID string) (map[AchievementID]time.Time, error)
	// Award inserts the (user, achievement) row. It reports false when the
	// row already existed.
	Award(ctx context.Context, userID string, id AchievementID, at time.Time) (bool, error)
}

type ActivityRepository interface {
	Record(ctx context.Context, userID string, day time.Time, delta DailyActivity) error
	ListSince(ctx context.Context, userID string, since time.Time) ([]DailyActivity, error)
}
