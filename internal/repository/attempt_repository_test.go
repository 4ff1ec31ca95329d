package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"synapse/internal/domain"
	"synapse/internal/repository/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var attemptCols = []string{"id", "user_id", "quiz_id", "status", "answers", "score", "correct_answers", "total_questions", "started_at", "completed_at", "deadline_at", "created_at"}

func TestToDomainAttempt(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	m := &models.QuizAttempt{
		ID:             "a1",
		UserID:         "u1",
		QuizID:         "q1",
		Status:         "completed",
		Answers:        models.AnswerMap{"x": "y"},
		CorrectAnswers: 1,
		TotalQuestions: 2,
		CreatedAt:      now,
	}
	m.Score.Int64, m.Score.Valid = 50, true
	m.CompletedAt.Time, m.CompletedAt.Valid = now.Add(time.Minute), true

	a := toDomainAttempt(m)
	assert.Equal(t, domain.AttemptCompleted, a.Status)
	require.NotNil(t, a.Score)
	assert.Equal(t, 50, *a.Score)
	assert.Equal(t, now, a.StartedAt, "missing started_at falls back to created_at")
	assert.Nil(t, a.DeadlineAt)
	assert.Equal(t, "y", a.Answers["x"])

	m.Answers = nil
	assert.NotNil(t, toDomainAttempt(m).Answers)
	assert.Nil(t, toDomainAttempt(nil))
}

func TestFromDomainAttempt(t *testing.T) {
	now := time.Now().UTC()
	deadline := now.Add(10 * time.Minute)
	m := fromDomainAttempt(&domain.Attempt{ID: "a1", Status: domain.AttemptInProgress, StartedAt: now, DeadlineAt: &deadline})
	assert.True(t, m.StartedAt.Valid)
	assert.True(t, m.DeadlineAt.Valid)
	assert.False(t, m.CompletedAt.Valid)
	assert.False(t, m.Score.Valid)
	assert.Nil(t, fromDomainAttempt(nil))
}

func TestSQLXAttemptRepository_Create_OpenAttemptExists(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)

	mock.ExpectExec(`INSERT INTO quiz_attempts`).WillReturnError(&pq.Error{Code: "23505"})

	err := repo.Create(context.Background(), &domain.Attempt{ID: "a1", QuizID: "q1", StartedAt: time.Now()})
	assert.True(t, errors.Is(err, domain.ErrDuplicate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXAttemptRepository_FindInProgress(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)
	now := time.Now().UTC()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery(`FROM quiz_attempts\s+WHERE user_id = \$1 AND quiz_id = \$2 AND status = 'in_progress'`).
			WithArgs("u1", "q1").
			WillReturnRows(sqlmock.NewRows(attemptCols).
				AddRow("a1", "u1", "q1", "in_progress", []byte(`{"qq":"A"}`), nil, 0, 5, now, nil, now.Add(time.Minute), now))

		a, err := repo.FindInProgress(context.Background(), "u1", "q1")
		require.NoError(t, err)
		require.NotNil(t, a)
		assert.Equal(t, "A", a.Answers["qq"])
		require.NotNil(t, a.DeadlineAt)
	})

	t.Run("none", func(t *testing.T) {
		mock.ExpectQuery(`FROM quiz_attempts`).
			WithArgs("u1", "q2").
			WillReturnRows(sqlmock.NewRows(attemptCols))

		a, err := repo.FindInProgress(context.Background(), "u1", "q2")
		assert.NoError(t, err)
		assert.Nil(t, a)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXAttemptRepository_CountCompleted(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM quiz_attempts`).
		WithArgs("u1", "q1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	n, err := repo.CountCompleted(context.Background(), "u1", "q1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestSQLXAttemptRepository_Finalize(t *testing.T) {
	now := time.Now().UTC()
	score := 80
	attempt := &domain.Attempt{ID: "a1", Status: domain.AttemptCompleted, Answers: domain.Answers{"q": "A"}, Score: &score, CorrectAnswers: 4, CompletedAt: &now}

	t.Run("flips the open row", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewSQLXAttemptRepository(db)
		mock.ExpectExec(`(?s)UPDATE quiz_attempts\s+SET status = 'completed'.*WHERE id = \$5 AND status = 'in_progress'`).
			WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), 4, sqlmock.AnyArg(), "a1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Finalize(context.Background(), attempt))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("second submit conflicts", func(t *testing.T) {
		db, mock := setupTestDB(t)
		repo := NewSQLXAttemptRepository(db)
		mock.ExpectExec(`UPDATE quiz_attempts`).WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Finalize(context.Background(), attempt)
		assert.Equal(t, domain.ReasonAttemptCompleted, domain.ConflictReasonOf(err))
	})
}

func TestSQLXAttemptRepository_UpdateAnswers(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)

	mock.ExpectExec(`UPDATE quiz_attempts SET answers = \$1 WHERE id = \$2 AND status = 'in_progress'`).
		WithArgs(sqlmock.AnyArg(), "a1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.UpdateAnswers(context.Background(), &domain.Attempt{ID: "a1", Answers: domain.Answers{"q": "B"}}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLXAttemptRepository_ListByUser_DefaultLimit(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewSQLXAttemptRepository(db)

	mock.ExpectQuery(`FROM quiz_attempts\s+WHERE user_id = \$1 ORDER BY started_at DESC LIMIT \$2`).
		WithArgs("u1", 20).
		WillReturnRows(sqlmock.NewRows(attemptCols))

	list, err := repo.ListByUser(context.Background(), "u1", 0)
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}
