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

type sqlxDocumentRepository struct {
	db *sqlx.DB
}

func NewSQLXDocumentRepository(db *sqlx.DB) domain.DocumentRepository {
	return &sqlxDocumentRepository{db: db}
}

func toDomainDocument(m *models.Document) *domain.Document {
	return &domain.Document{
		ID:         m.ID,
		RoomID:     m.RoomID,
		Name:       m.Name,
		Content:    m.Content.String,
		FilePath:   m.FilePath.String,
		UploadedBy: m.UploadedBy,
		CreatedAt:  m.CreatedAt,
	}
}

func (r *sqlxDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	row := models.Document{
		ID:         doc.ID,
		RoomID:     doc.RoomID,
		Name:       doc.Name,
		Content:    util.StringToNullString(doc.Content),
		FilePath:   util.StringToNullString(doc.FilePath),
		UploadedBy: doc.UploadedBy,
		CreatedAt:  doc.CreatedAt,
	}
	query := `INSERT INTO documents (id, room_id, name, content, file_path, uploaded_by, created_at)
	          VALUES (:id, :room_id, :name, :content, :file_path, :uploaded_by, :created_at)`
	if _, err := GetExecutor(ctx, r.db).NamedExecContext(ctx, query, row); err != nil {
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

func (r *sqlxDocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	var row models.Document
	query := `SELECT id, room_id, name, content, file_path, uploaded_by, created_at FROM documents WHERE id = $1`
	if err := GetExecutor(ctx, r.db).GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("Document not found")
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return toDomainDocument(&row), nil
}

// ListByRoom omits document content; callers fetch it by id when needed.
func (r *sqlxDocumentRepository) ListByRoom(ctx context.Context, roomID string) ([]*domain.Document, error) {
	query := `SELECT id, room_id, name, NULL AS content, file_path, uploaded_by, created_at
	          FROM documents WHERE room_id = $1 ORDER BY created_at DESC`
	var rows []models.Document
	if err := GetExecutor(ctx, r.db).SelectContext(ctx, &rows, query, roomID); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	docs := make([]*domain.Document, 0, len(rows))
	for i := range rows {
		docs = append(docs, toDomainDocument(&rows[i]))
	}
	return docs, nil
}
