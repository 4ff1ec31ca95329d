package repository

import (
	"context"
	"testing"
	"time"

	"synapse/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var profileCols = []string{"id", "username", "display_name", "xp", "level", "streak_days", "last_activity_date",
	"total_quizzes_completed", "total_correct_answers", "total_questions_answered", "updated_at"}

func TestSQLXProfileRepository_GetForUpdate(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXProfileRepository(db)
	last := time.Date(2026, 5, 9, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`INSERT INTO profiles \(id, username\) VALUES \(\$1, \$2\) ON CONFLICT \(id\) DO NOTHING`).
		WithArgs("u1", "Unknown").
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(`FROM profiles WHERE id = \$1 FOR UPDATE`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(profileCols).
			AddRow("u1", "ada", nil, 240, 3, 2, last, 4, 15, 20, time.Now()))

	s, err := repo.GetForUpdate(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 240, s.XP)
	assert.Equal(t, 3, s.Level)
	require.NotNil(t, s.LastActivityDate)
	assert.Equal(t, last, *s.LastActivityDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXProfileRepository_Get_NotFound(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXProfileRepository(db)

	mock.ExpectQuery(`FROM profiles WHERE id = \$1$`).WithArgs("u1").WillReturnRows(sqlmock.NewRows(profileCols))

	_, err := repo.Get(context.Background(), "u1")
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
}

func TestSQLXProfileRepository_Update(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXProfileRepository(db)

	mock.ExpectExec(`UPDATE profiles`).
		WithArgs(365, 4, 3, sqlmock.AnyArg(), 5, 20, 25, sqlmock.AnyArg(), "u1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	today := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)
	err := repo.Update(context.Background(), &domain.Stats{
		UserID: "u1", XP: 365, Level: 4, StreakDays: 3, LastActivityDate: &today,
		TotalQuizzesCompleted: 5, TotalCorrectAnswers: 20, TotalQuestionsAnswered: 25,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXAchievementRepository_Award(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAchievementRepository(db)
	at := time.Now().UTC()

	mock.ExpectExec(`(?s)INSERT INTO user_achievements .* ON CONFLICT \(user_id, achievement_id\) DO NOTHING`).
		WithArgs(sqlmock.AnyArg(), "u1", "first_quiz", at).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO user_achievements`).
		WithArgs(sqlmock.AnyArg(), "u1", "first_quiz", at).
		WillReturnResult(sqlmock.NewResult(0, 0))

	inserted, err := repo.Award(context.Background(), "u1", domain.AchievementFirstQuiz, at)
	require.NoError(t, err)
	assert.True(t, inserted)

	inserted, err = repo.Award(context.Background(), "u1", domain.AchievementFirstQuiz, at)
	require.NoError(t, err)
	assert.False(t, inserted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXAchievementRepository_ListCatalogAndEarned(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAchievementRepository(db)
	earnedAt := time.Now().UTC()

	mock.ExpectQuery(`FROM achievements`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "description", "icon", "category", "xp_reward", "requirement_value"}).
			AddRow("first_quiz", "First Steps", "Complete your first quiz", "trophy", "milestone", 50, 1).
			AddRow("perfect_score", "Perfectionist", "Score 100%", "star", "performance", 75, nil))
	mock.ExpectQuery(`FROM user_achievements WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"achievement_id", "earned_at"}).AddRow("first_quiz", earnedAt))

	catalog, err := repo.ListCatalog(context.Background())
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, 1, catalog[0].RequirementValue)
	assert.Equal(t, 0, catalog[1].RequirementValue)

	earned, err := repo.ListEarned(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, earnedAt, earned[domain.AchievementFirstQuiz])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXActivityRepository(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXActivityRepository(db)
	day := time.Date(2026, 5, 10, 0, 0, 0, 0, time.UTC)

	mock.ExpectExec(`(?s)INSERT INTO daily_activity .* ON CONFLICT \(user_id, activity_date\) DO UPDATE`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM daily_activity WHERE user_id = \$1 AND activity_date >= \$2`).
		WithArgs("u1", day.AddDate(0, 0, -6)).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "activity_date", "quizzes_completed", "xp_earned", "questions_answered", "correct_answers"}).
			AddRow("u1", day, 2, 160, 10, 8))

	require.NoError(t, repo.Record(context.Background(), "u1", day.Add(15*time.Hour),
		domain.DailyActivity{QuizzesCompleted: 1, XPEarned: 80, QuestionsAnswered: 5, CorrectAnswers: 4}))

	days, err := repo.ListSince(context.Background(), "u1", day.AddDate(0, 0, -6))
	require.NoError(t, err)
	require.Len(t, days, 1)
	assert.Equal(t, 80, days[0].Accuracy())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXPreferencesRepository(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXPreferencesRepository(db)
	cols := []string{"id", "user_id", "default_time_limit", "show_answers_immediately", "preferred_difficulty", "theme", "updated_at"}

	mock.ExpectQuery(`FROM user_preferences WHERE user_id = \$1`).WithArgs("u1").WillReturnRows(sqlmock.NewRows(cols))
	mock.ExpectExec(`(?s)INSERT INTO user_preferences .* ON CONFLICT \(user_id\) DO UPDATE`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM user_preferences WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("p1", "u1", nil, true, "hard", "dark", time.Now()))

	prefs, err := repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Nil(t, prefs)

	require.NoError(t, repo.Upsert(context.Background(), &domain.Preferences{UserID: "u1", PreferredDifficulty: domain.DifficultyHard, Theme: "dark", ShowAnswersImmediately: true}))

	prefs, err = repo.Get(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, prefs.DefaultTimeLimit)
	assert.True(t, prefs.ShowAnswersImmediately)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXBookmarkRepository(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXBookmarkRepository(db)

	mock.ExpectExec(`(?s)INSERT INTO bookmarked_questions .* ON CONFLICT \(user_id, question_id\) DO UPDATE SET notes`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`FROM bookmarked_questions WHERE user_id = \$1`).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "question_id", "notes", "created_at"}).
			AddRow("b1", "u1", "x1", "review mitosis", time.Now()))
	mock.ExpectExec(`DELETE FROM bookmarked_questions`).WithArgs("u1", "x9").WillReturnResult(sqlmock.NewResult(0, 0))

	b := &domain.Bookmark{UserID: "u1", QuestionID: "x1", Notes: "review mitosis"}
	require.NoError(t, repo.Upsert(context.Background(), b))
	assert.NotEmpty(t, b.ID)

	list, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "review mitosis", list[0].Notes)

	err = repo.Delete(context.Background(), "u1", "x9")
	assert.True(t, domain.IsCode(err, domain.CodeNotFound))
	assert.NoError(t, mock.ExpectationsWereMet())
}
