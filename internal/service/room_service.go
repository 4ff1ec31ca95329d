package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"synapse/internal/cache"
	"synapse/internal/domain"
	"synapse/internal/dto"
	"synapse/internal/logger"
	"synapse/internal/util"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const maxRoomCodeAttempts = 5

// RoomService manages rooms, membership and the room leaderboard.
type RoomService interface {
	CreateRoom(ctx context.Context, userID, username string, req dto.CreateRoomRequest) (*dto.RoomResponse, error)
	JoinRoom(ctx context.Context, userID, username string, req dto.JoinRoomRequest) (*dto.RoomResponse, error)
	ListRooms(ctx context.Context, userID string) (*dto.RoomListResponse, error)
	GetRoom(ctx context.Context, userID, roomID string) (*dto.RoomResponse, error)
	ListMembers(ctx context.Context, userID, roomID string) (*dto.MemberListResponse, error)
	GetLeaderboard(ctx context.Context, userID, roomID string) (*dto.LeaderboardResponse, error)
	// InvalidateLeaderboard drops the cached leaderboard of a room.
	InvalidateLeaderboard(ctx context.Context, roomID string)
}

type roomServiceImpl struct {
	tx             domain.TransactionManager
	rooms          domain.RoomRepository
	members        domain.RoomMemberRepository
	profiles       domain.ProfileRepository
	cache          domain.Cache
	leaderboardTTL time.Duration
	guard          roomGuard
	sf             singleflight.Group
	now            func() time.Time
	newCode        func() (string, error)
}

func NewRoomService(
	tx domain.TransactionManager,
	rooms domain.RoomRepository,
	members domain.RoomMemberRepository,
	profiles domain.ProfileRepository,
	cache domain.Cache,
	leaderboardTTL time.Duration,
) RoomService {
	return &roomServiceImpl{
		tx:             tx,
		rooms:          rooms,
		members:        members,
		profiles:       profiles,
		cache:          cache,
		leaderboardTTL: leaderboardTTL,
		guard:          roomGuard{rooms: rooms, members: members},
		now:            time.Now,
		newCode:        domain.GenerateRoomCode,
	}
}

func toRoomResponse(r *domain.Room, userID string) dto.RoomResponse {
	return dto.RoomResponse{
		ID:                 r.ID,
		Code:               r.Code,
		Name:               r.Name,
		Mode:               string(r.Mode),
		LeaderboardEnabled: r.LeaderboardEnabled,
		OwnerID:            r.OwnerID,
		IsOwner:            r.OwnerID == userID,
		CreatedAt:          r.CreatedAt,
	}
}

// CreateRoom retries with a fresh code when the generated one is taken.
// Each try runs in its own transaction because a failed insert aborts it.
func (s *roomServiceImpl) CreateRoom(ctx context.Context, userID, username string, req dto.CreateRoomRequest) (*dto.RoomResponse, error) {
	mode := domain.Mode(req.Mode)
	if mode == "" {
		mode = domain.ModeStudy
	}
	if err := s.profiles.EnsureProfile(ctx, userID, username); err != nil {
		return nil, wrapErr(err, "failed to create profile")
	}

	for i := 0; i < maxRoomCodeAttempts; i++ {
		code, err := s.newCode()
		if err != nil {
			return nil, domain.NewInternalError("failed to generate room code", err)
		}
		now := s.now().UTC()
		room := &domain.Room{
			ID:                 util.NewID(),
			Code:               code,
			Name:               strings.TrimSpace(req.Name),
			Mode:               mode,
			LeaderboardEnabled: req.LeaderboardEnabled,
			OwnerID:            userID,
			CreatedAt:          now,
		}
		err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
			if err := s.rooms.Create(ctx, room); err != nil {
				return err
			}
			return s.members.Add(ctx, &domain.RoomMember{RoomID: room.ID, UserID: userID, Role: domain.RoleOwner, JoinedAt: now})
		})
		if errors.Is(err, domain.ErrDuplicate) {
			logger.Get().Warn("Room code collision, retrying", zap.String("code", code), zap.Int("attempt", i+1))
			continue
		}
		if err != nil {
			return nil, wrapErr(err, "failed to create room")
		}
		logger.Get().Info("Room created", zap.String("room_id", room.ID), zap.String("mode", string(mode)))
		resp := toRoomResponse(room, userID)
		return &resp, nil
	}
	return nil, domain.NewInternalError("could not allocate a unique room code", domain.ErrDuplicate)
}

func (s *roomServiceImpl) JoinRoom(ctx context.Context, userID, username string, req dto.JoinRoomRequest) (*dto.RoomResponse, error) {
	room, err := s.rooms.GetByCode(ctx, domain.NormalizeRoomCode(req.Code))
	if err != nil {
		return nil, wrapErr(err, "failed to look up room")
	}
	if room.OwnerID == userID {
		return nil, domain.NewConflictError(domain.ReasonAlreadyMember, "You are already a member of this room")
	}
	if err := s.profiles.EnsureProfile(ctx, userID, username); err != nil {
		return nil, wrapErr(err, "failed to create profile")
	}
	if err := s.members.Add(ctx, &domain.RoomMember{RoomID: room.ID, UserID: userID, Role: domain.RoleMember, JoinedAt: s.now().UTC()}); err != nil {
		return nil, wrapErr(err, "failed to join room")
	}
	resp := toRoomResponse(room, userID)
	return &resp, nil
}

func (s *roomServiceImpl) ListRooms(ctx context.Context, userID string) (*dto.RoomListResponse, error) {
	rooms, err := s.rooms.ListForUser(ctx, userID)
	if err != nil {
		return nil, wrapErr(err, "failed to list rooms")
	}
	seen := make(map[string]bool, len(rooms))
	out := &dto.RoomListResponse{Rooms: make([]dto.RoomResponse, 0, len(rooms))}
	for _, r := range rooms {
		if seen[r.ID] {
			continue
		}
		seen[r.ID] = true
		out.Rooms = append(out.Rooms, toRoomResponse(r, userID))
	}
	return out, nil
}

func (s *roomServiceImpl) GetRoom(ctx context.Context, userID, roomID string) (*dto.RoomResponse, error) {
	room, err := s.guard.requireMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	resp := toRoomResponse(room, userID)
	return &resp, nil
}

func (s *roomServiceImpl) ListMembers(ctx context.Context, userID, roomID string) (*dto.MemberListResponse, error) {
	if _, err := s.guard.requireMember(ctx, roomID, userID); err != nil {
		return nil, err
	}
	members, err := s.members.ListMembers(ctx, roomID)
	if err != nil {
		return nil, wrapErr(err, "failed to list members")
	}
	out := &dto.MemberListResponse{Members: make([]dto.MemberResponse, 0, len(members))}
	for _, m := range members {
		out.Members = append(out.Members, dto.MemberResponse{
			UserID:      m.UserID,
			Role:        string(m.Role),
			Username:    m.Username,
			DisplayName: m.DisplayName,
			Level:       m.Level,
			JoinedAt:    m.JoinedAt,
		})
	}
	return out, nil
}

// GetLeaderboard serves from the cache when possible. Concurrent misses for
// the same room share one query.
func (s *roomServiceImpl) GetLeaderboard(ctx context.Context, userID, roomID string) (*dto.LeaderboardResponse, error) {
	room, err := s.guard.requireMember(ctx, roomID, userID)
	if err != nil {
		return nil, err
	}
	if !domain.LeaderboardVisible(room) {
		return nil, domain.NewForbiddenError("Leaderboard is disabled for this room")
	}

	key := cache.LeaderboardKey(roomID)
	entries, ok := s.cachedLeaderboard(ctx, key)
	if !ok {
		v, err, _ := s.sf.Do(key, func() (interface{}, error) {
			entries, err := s.rooms.Leaderboard(ctx, roomID)
			if err != nil {
				return nil, err
			}
			s.storeLeaderboard(ctx, key, entries)
			return entries, nil
		})
		if err != nil {
			return nil, wrapErr(err, "failed to load leaderboard")
		}
		entries = v.([]domain.LeaderboardEntry)
	}

	resp := &dto.LeaderboardResponse{RoomID: roomID, Entries: make([]dto.LeaderboardEntryResponse, 0, len(entries))}
	for i, e := range entries {
		resp.Entries = append(resp.Entries, dto.LeaderboardEntryResponse{
			Rank:        i + 1,
			UserID:      e.UserID,
			DisplayName: e.DisplayName,
			TotalScore:  e.TotalScore,
			QuizCount:   e.QuizCount,
		})
	}
	return resp, nil
}

func (s *roomServiceImpl) cachedLeaderboard(ctx context.Context, key string) ([]domain.LeaderboardEntry, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrCacheMiss) {
			logger.Get().Warn("Leaderboard cache read failed", zap.String("key", key), zap.Error(err))
		}
		return nil, false
	}
	var entries []domain.LeaderboardEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		logger.Get().Warn("Dropping corrupt leaderboard cache entry", zap.String("key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	return entries, true
}

func (s *roomServiceImpl) storeLeaderboard(ctx context.Context, key string, entries []domain.LeaderboardEntry) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(data), s.leaderboardTTL); err != nil {
		logger.Get().Warn("Leaderboard cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *roomServiceImpl) InvalidateLeaderboard(ctx context.Context, roomID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.LeaderboardKey(roomID)); err != nil {
		logger.Get().Warn("Leaderboard cache invalidation failed", zap.String("room_id", roomID), zap.Error(err))
	}
}
