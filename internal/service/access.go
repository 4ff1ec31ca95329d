package service

import (
	"context"
	"errors"

	"synapse/internal/domain"
)

// wrapErr passes domain and validation errors through and hides anything
// else behind an INTERNAL_ERROR carrying msg.
func wrapErr(err error, msg string) error {
	if err == nil {
		return nil
	}
	var de *domain.DomainError
	if errors.As(err, &de) {
		return err
	}
	var ve domain.ValidationErrors
	if errors.As(err, &ve) {
		return err
	}
	return domain.NewInternalError(msg, err)
}

// roomGuard answers "may this user see this room".
type roomGuard struct {
	rooms   domain.RoomRepository
	members domain.RoomMemberRepository
}

// requireMember loads the room and fails with FORBIDDEN unless userID owns
// it or joined it.
func (g roomGuard) requireMember(ctx context.Context, roomID, userID string) (*domain.Room, error) {
	room, err := g.rooms.GetByID(ctx, roomID)
	if err != nil {
		return nil, wrapErr(err, "failed to load room")
	}
	if room.OwnerID == userID {
		return room, nil
	}
	if _, err := g.members.Get(ctx, roomID, userID); err != nil {
		if domain.IsCode(err, domain.CodeNotFound) {
			return nil, domain.NewForbiddenError("You are not a member of this room")
		}
		return nil, wrapErr(err, "failed to check room membership")
	}
	return room, nil
}
