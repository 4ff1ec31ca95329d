package service

import (
	"context"
	"strings"
	"time"

	"synapse/internal/domain"
	"synapse/internal/dto"
	"synapse/internal/util"
)

// DocumentService stores the extracted text that quizzes are generated from.
type DocumentService interface {
	Upload(ctx context.Context, userID, roomID string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error)
	List(ctx context.Context, userID, roomID string) (*dto.DocumentListResponse, error)
}

type documentServiceImpl struct {
	documents domain.DocumentRepository
	guard     roomGuard
	now       func() time.Time
}

func NewDocumentService(documents domain.DocumentRepository, rooms domain.RoomRepository, members domain.RoomMemberRepository) DocumentService {
	return &documentServiceImpl{
		documents: documents,
		guard:     roomGuard{rooms: rooms, members: members},
		now:       time.Now,
	}
}

func (s *documentServiceImpl) Upload(ctx context.Context, userID, roomID string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
	if _, err := s.guard.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	doc := &domain.Document{
		ID:         util.NewID(),
		RoomID:     roomID,
		Name:       strings.TrimSpace(req.Name),
		Content:    req.Content,
		UploadedBy: userID,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.documents.Create(ctx, doc); err != nil {
		return nil, wrapErr(err, "failed to store document")
	}
	return &dto.DocumentResponse{
		ID:         doc.ID,
		RoomID:     doc.RoomID,
		Name:       doc.Name,
		UploadedBy: doc.UploadedBy,
		CreatedAt:  doc.CreatedAt,
	}, nil
}

func (s *documentServiceImpl) List(ctx context.Context, userID, roomID string) (*dto.DocumentListResponse, error) {
	if _, err := s.guard.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	docs, err := s.documents.ListByRoom(ctx, roomID)
	if err != nil {
		return nil, wrapErr(err, "failed to list documents")
	}
	out := &dto.DocumentListResponse{Documents: make([]dto.DocumentResponse, 0, len(docs))}
	for _, d := range docs {
		out.Documents = append(out.Documents, dto.DocumentResponse{
			ID:         d.ID,
			RoomID:     d.RoomID,
			Name:       d.Name,
			UploadedBy: d.UploadedBy,
			CreatedAt:  d.CreatedAt,
		})
	}
	return out, nil
}
