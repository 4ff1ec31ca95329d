package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"synapse/internal/domain"
	"synapse/internal/repository/models"
	"synapse/internal/util"

	"github.com/jmoiron/sqlx"
)

type sqlxProfileRepository struct {
	db *sqlx.DB
}

func NewSQLXProfileRepository(db *sqlx.DB) domain.ProfileRepository {
	return &sqlxProfileRepository{db: db}
}

const profileColumns = `id, username, display_name, xp, level, streak_days, last_activity_date,
	total_quizzes_completed, total_correct_answers, total_questions_answered, updated_at`

func toDomainStats(m *models.Profile) *domain.Stats {
	if m == nil {
		return nil
	}
	s := &domain.Stats{
		UserID:                 m.ID,
		Username:               m.Username,
		DisplayName:            m.DisplayName.String,
		XP:                     m.XP,
		Level:                  m.Level,
		StreakDays:             m.StreakDays,
		TotalQuizzesCompleted:  m.TotalQuizzesCompleted,
		TotalCorrectAnswers:    m.TotalCorrectAnswers,
		TotalQuestionsAnswered: m.TotalQuestionsAnswered,
		UpdatedAt:              m.UpdatedAt,
	}
	if m.LastActivityDate.Valid {
		d := domain.CalendarDay(m.LastActivityDate.Time)
		s.LastActivityDate = &d
	}
	if s.Level < 1 {
		s.Level = 1
	}
	return s
}

func (r *sqlxProfileRepository) get(ctx context.Context, userID string, lock bool) (*domain.Stats, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	var m models.Profile
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Profile not found")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return toDomainStats(&m), nil
}

func (r *sqlxProfileRepository) Get(ctx context.Context, userID string) (*domain.Stats, error) {
	return r.get(ctx, userID, false)
}

func (r *sqlxProfileRepository) GetForUpdate(ctx context.Context, userID string) (*domain.Stats, error) {
	if err := r.EnsureProfile(ctx, userID, ""); err != nil {
		return nil, err
	}
	return r.get(ctx, userID, true)
}

// EnsureProfile creates an empty profile row. An existing row is left as is.
func (r *sqlxProfileRepository) EnsureProfile(ctx context.Context, userID, username string) error {
	if username == "" {
		username = "Unknown"
	}
	query := `INSERT INTO profiles (id, username) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`
	if _, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, userID, username); err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

func (r *sqlxProfileRepository) Update(ctx context.Context, s *domain.Stats) error {
	s.UpdatedAt = time.Now().UTC()
	query := `UPDATE profiles
	          SET xp = $1, level = $2, streak_days = $3, last_activity_date = $4,
	              total_quizzes_completed = $5, total_correct_answers = $6, total_questions_answered = $7,
	              updated_at = $8
	          WHERE id = $9`
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query,
		s.XP, s.Level, s.StreakDays, util.TimePtrToNullTime(s.LastActivityDate),
		s.TotalQuizzesCompleted, s.TotalCorrectAnswers, s.TotalQuestionsAnswered,
		s.UpdatedAt, s.UserID)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("Profile not found")
	}
	return nil
}
