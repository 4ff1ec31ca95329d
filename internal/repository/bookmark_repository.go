package repository

import (
	"context"
	"fmt"
	"time"

	"synapse/internal/domain"
	"synapse/internal/repository/models"
	"synapse/internal/util"

	"github.com/jmoiron/sqlx"
)

type sqlxBookmarkRepository struct {
	db *sqlx.DB
}

func NewSQLXBookmarkRepository(db *sqlx.DB) domain.BookmarkRepository {
	return &sqlxBookmarkRepository{db: db}
}

// Upsert replaces the note when the question is already bookmarked.
func (r *sqlxBookmarkRepository) Upsert(ctx context.Context, b *domain.Bookmark) error {
	if b.ID == "" {
		b.ID = util.NewULID()
	}
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	row := models.Bookmark{
		ID:         b.ID,
		UserID:     b.UserID,
		QuestionID: b.QuestionID,
		Notes:      util.StringToNullString(b.Notes),
		CreatedAt:  b.CreatedAt,
	}
	query := `INSERT INTO bookmarked_questions (id, user_id, question_id, notes, created_at)
	          VALUES (:id, :user_id, :question_id, :notes, :created_at)
	          ON CONFLICT (user_id, question_id) DO UPDATE SET notes = EXCLUDED.notes`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, row); err != nil {
		if isForeignKeyViolation(err) {
			return domain.NewNotFoundError("Question not found")
		}
		return fmt.Errorf("failed to save bookmark: %w", err)
	}
	return nil
}

func (r *sqlxBookmarkRepository) Delete(ctx context.Context, userID, questionID string) error {
	query := `DELETE FROM bookmarked_questions WHERE user_id = $1 AND question_id = $2`
	res, err := GetExecutor(ctx, r.db).ExecContext(ctx, query, userID, questionID)
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NewNotFoundError("Bookmark not found")
	}
	return nil
}

func (r *sqlxBookmarkRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Bookmark, error) {
	query := `SELECT id, user_id, question_id, notes, created_at
	          FROM bookmarked_questions WHERE user_id = $1 ORDER BY created_at DESC`
	var rows []models.Bookmark
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	out := make([]*domain.Bookmark, 0, len(rows))
	for _, row := range rows {
		out = append(out, &domain.Bookmark{
			ID:         row.ID,
			UserID:     row.UserID,
			QuestionID: row.QuestionID,
			Notes:      row.Notes.String,
			CreatedAt:  row.CreatedAt,
		})
	}
	return out, nil
}
