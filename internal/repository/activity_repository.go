package repository

import (
	"context"
	"fmt"
	"time"

	"synapse/internal/domain"
	"synapse/internal/repository/models"

	"github.com/jmoiron/sqlx"
)

type sqlxActivityRepository struct {
	db *sqlx.DB
}

func NewSQLXActivityRepository(db *sqlx.DB) domain.ActivityRepository {
	return &sqlxActivityRepository{db: db}
}

// Record adds delta onto the (user, day) row, creating it when missing.
func (r *sqlxActivityRepository) Record(ctx context.Context, userID string, day time.Time, delta domain.DailyActivity) error {
	row := models.DailyActivity{
		UserID:            userID,
		ActivityDate:      domain.CalendarDay(day),
		QuizzesCompleted:  delta.QuizzesCompleted,
		XPEarned:          delta.XPEarned,
		QuestionsAnswered: delta.QuestionsAnswered,
		CorrectAnswers:    delta.CorrectAnswers,
	}
	query := `INSERT INTO daily_activity (user_id, activity_date, quizzes_completed, xp_earned, questions_answered, correct_answers)
	          VALUES (:user_id, :activity_date, :quizzes_completed, :xp_earned, :questions_answered, :correct_answers)
	          ON CONFLICT (user_id, activity_date) DO UPDATE SET
	              quizzes_completed = daily_activity.quizzes_completed + EXCLUDED.quizzes_completed,
	              xp_earned = daily_activity.xp_earned + EXCLUDED.xp_earned,
	              questions_answered = daily_activity.questions_answered + EXCLUDED.questions_answered,
	              correct_answers = daily_activity.correct_answers + EXCLUDED.correct_answers`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

func (r *sqlxActivityRepository) ListSince(ctx context.Context, userID string, since time.Time) ([]domain.DailyActivity, error) {
	query := `SELECT user_id, activity_date, quizzes_completed, xp_earned, questions_answered, correct_answers
	          FROM daily_activity WHERE user_id = $1 AND activity_date >= $2
	          ORDER BY activity_date`
	var rows []models.DailyActivity
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID, domain.CalendarDay(since)); err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	out := make([]domain.DailyActivity, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.DailyActivity{
			Date:              domain.CalendarDay(row.ActivityDate),
			QuizzesCompleted:  row.QuizzesCompleted,
			XPEarned:          row.XPEarned,
			QuestionsAnswered: row.QuestionsAnswered,
			CorrectAnswers:    row.CorrectAnswers,
		})
	}
	return out, nil
}
