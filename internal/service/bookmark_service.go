package service

import (
	"context"
	"time"

	"synapse/internal/domain"
	"synapse/internal/dto"
)

// BookmarkService keeps a user's saved questions.
type BookmarkService interface {
	Save(ctx context.Context, userID, questionID string, req dto.BookmarkRequest) (*dto.BookmarkResponse, error)
	Remove(ctx context.Context, userID, questionID string) error
	List(ctx context.Context, userID string) (*dto.BookmarkListResponse, error)
}

type bookmarkServiceImpl struct {
	bookmarks domain.BookmarkRepository
	now       func() time.Time
}

func NewBookmarkService(bookmarks domain.BookmarkRepository) BookmarkService {
	return &bookmarkServiceImpl{bookmarks: bookmarks, now: time.Now}
}

func (s *bookmarkServiceImpl) Save(ctx context.Context, userID, questionID string, req dto.BookmarkRequest) (*dto.BookmarkResponse, error) {
	b := &domain.Bookmark{
		UserID:     userID,
		QuestionID: questionID,
		Notes:      req.Notes,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.bookmarks.Upsert(ctx, b); err != nil {
		return nil, wrapErr(err, "failed to save bookmark")
	}
	return &dto.BookmarkResponse{QuestionID: b.QuestionID, Notes: b.Notes, CreatedAt: b.CreatedAt}, nil
}

func (s *bookmarkServiceImpl) Remove(ctx context.Context, userID, questionID string) error {
	return wrapErr(s.bookmarks.Delete(ctx, userID, questionID), "failed to remove bookmark")
}

func (s *bookmarkServiceImpl) List(ctx context.Context, userID string) (*dto.BookmarkListResponse, error) {
	list, err := s.bookmarks.ListByUser(ctx, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to list bookmarks")
	}
	out := &dto.BookmarkListResponse{Bookmarks: make([]dto.BookmarkResponse, 0, len(list))}
	for _, b := range list {
		out.Bookmarks = append(out.Bookmarks, dto.BookmarkResponse{QuestionID: b.QuestionID, Notes: b.Notes, CreatedAt: b.CreatedAt})
	}
	return out, nil
}
