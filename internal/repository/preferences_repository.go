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

type sqlxPreferencesRepository struct {
	db *sqlx.DB
}

func NewSQLXPreferencesRepository(db *sqlx.DB) domain.PreferencesRepository {
	return &sqlxPreferencesRepository{db: db}
}

func (r *sqlxPreferencesRepository) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	var m models.UserPreferences
	query := `SELECT id, user_id, default_time_limit, show_answers_immediately, preferred_difficulty, theme, updated_at
	          FROM user_preferences WHERE user_id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &m, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}
	return &domain.Preferences{
		UserID:                 m.UserID,
		DefaultTimeLimit:       int(m.DefaultTimeLimit.Int64),
		ShowAnswersImmediately: m.ShowAnswersImmediately,
		PreferredDifficulty:    domain.Difficulty(m.PreferredDifficulty),
		Theme:                  m.Theme,
		UpdatedAt:              m.UpdatedAt,
	}, nil
}

// Upsert stores a zero time limit as NULL.
func (r *sqlxPreferencesRepository) Upsert(ctx context.Context, p *domain.Preferences) error {
	p.UpdatedAt = time.Now().UTC()
	limit := sql.NullInt64{Int64: int64(p.DefaultTimeLimit), Valid: p.DefaultTimeLimit > 0}
	row := models.UserPreferences{
		ID:                     util.NewULID(),
		UserID:                 p.UserID,
		DefaultTimeLimit:       limit,
		ShowAnswersImmediately: p.ShowAnswersImmediately,
		PreferredDifficulty:    string(p.PreferredDifficulty),
		Theme:                  p.Theme,
		UpdatedAt:              p.UpdatedAt,
	}
	query := `INSERT INTO user_preferences (id, user_id, default_time_limit, show_answers_immediately, preferred_difficulty, theme, updated_at)
	          VALUES (:id, :user_id, :default_time_limit, :show_answers_immediately, :preferred_difficulty, :theme, :updated_at)
	          ON CONFLICT (user_id) DO UPDATE SET
	              default_time_limit = EXCLUDED.default_time_limit,
	              show_answers_immediately = EXCLUDED.show_answers_immediately,
	              preferred_difficulty = EXCLUDED.preferred_difficulty,
	              theme = EXCLUDED.theme,
	              updated_at = EXCLUDED.updated_at`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to save preferences: %w", err)
	}
	return nil
}
