package domain

import "time"

// Preferences are per-user settings read by the mode policy.
type Preferences struct {
	UserID                 string     `json:"-"`
	DefaultTimeLimit       int        `json:"default_time_limit"`
	ShowAnswersImmediately bool       `json:"show_answers_immediately"`
	PreferredDifficulty    Difficulty `json:"preferred_difficulty"`
	Theme                  string     `json:"theme"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// DefaultPreferences is used for users that never saved preferences.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:                 userID,
		DefaultTimeLimit:       0,
		ShowAnswersImmediately: false,
		PreferredDifficulty:    DifficultyMedium,
		Theme:                  "system",
	}
}

// Policy is the set of behavioral flags derived from a room mode.
type Policy struct {
	Mode               Mode `json:"mode"`
	TimerActive        bool `json:"timer_active"`
	TimeLimitMinutes   int  `json:"time_limit_minutes,omitempty"`
	ImmediateFeedback  bool `json:"immediate_feedback"`
	RetakeAllowed      bool `json:"retake_allowed"`
	ReviewAllowed      bool `json:"review_allowed"`
	LeaderboardEnabled bool `json:"leaderboard_enabled"`
}

// PolicyFor maps a mode, the quiz's own time limit and the user's preferences
// to behavioral flags. It has no side effects.
func PolicyFor(mode Mode, quizTimeLimit *int, prefs *Preferences) Policy {
	if prefs == nil {
		prefs = DefaultPreferences("")
	}
	limit := EffectiveTimeLimit(mode, quizTimeLimit, prefs)
	p := Policy{
		Mode:             mode,
		TimerActive:      limit > 0,
		TimeLimitMinutes: limit,
	}
	switch mode {
	case ModeStudy:
		p.ImmediateFeedback = true
		p.RetakeAllowed = true
		p.ReviewAllowed = true
	case ModeChallenge:
		p.RetakeAllowed = true
		p.ReviewAllowed = true
		p.LeaderboardEnabled = true
	case ModeExam:
		p.ReviewAllowed = prefs.ShowAnswersImmediately
	}
	return p
}

// EffectiveTimeLimit returns the timer length in minutes, 0 meaning no timer.
// The quiz's own limit wins; only challenge mode falls back to the user default.
func EffectiveTimeLimit(mode Mode, quizTimeLimit *int, prefs *Preferences) int {
	if quizTimeLimit != nil && *quizTimeLimit > 0 {
		return *quizTimeLimit
	}
	if mode == ModeChallenge && prefs != nil && prefs.DefaultTimeLimit > 0 {
		return prefs.DefaultTimeLimit
	}
	return 0
}

// LeaderboardVisible reports whether a room exposes its leaderboard.
func LeaderboardVisible(room *Room) bool {
	return room.LeaderboardEnabled || room.Mode == ModeChallenge
}
