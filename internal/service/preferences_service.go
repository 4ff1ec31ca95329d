package service

import (
	"context"
	"time"

	"synapse/internal/domain"
	"synapse/internal/dto"
)

type PreferencesService interface {
	Get(ctx context.Context, userID string) (*domain.Preferences, error)
	Update(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error)
}

type preferencesServiceImpl struct {
	prefs domain.PreferencesRepository
	now   func() time.Time
}

func NewPreferencesService(prefs domain.PreferencesRepository) PreferencesService {
	return &preferencesServiceImpl{prefs: prefs, now: time.Now}
}

// Get falls back to defaults for users that never saved preferences.
func (s *preferencesServiceImpl) Get(ctx context.Context, userID string) (*domain.Preferences, error) {
	p, err := s.prefs.Get(ctx, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to load preferences")
	}
	if p == nil {
		return domain.DefaultPreferences(userID), nil
	}
	return p, nil
}

func (s *preferencesServiceImpl) Update(ctx context.Context, userID string, req dto.UpdatePreferencesRequest) (*domain.Preferences, error) {
	p, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.DefaultTimeLimit != nil {
		p.DefaultTimeLimit = *req.DefaultTimeLimit
	}
	if req.ShowAnswersImmediately != nil {
		p.ShowAnswersImmediately = *req.ShowAnswersImmediately
	}
	if req.PreferredDifficulty != nil {
		p.PreferredDifficulty = domain.Difficulty(*req.PreferredDifficulty)
	}
	if req.Theme != nil {
		p.Theme = *req.Theme
	}
	p.UserID = userID
	p.UpdatedAt = s.now().UTC()
	if err := s.prefs.Upsert(ctx, p); err != nil {
		return nil, wrapErr(err, "failed to save preferences")
	}
	return p, nil
}
