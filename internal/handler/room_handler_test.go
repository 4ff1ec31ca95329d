package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"synapse/internal/domain"
	"synapse/internal/dto"
	"synapse/internal/middleware"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomHandler_CreateRoom(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		app, m := newTestApp()
		m.rooms.CreateRoomFunc = func(ctx context.Context, userID, username string, req dto.CreateRoomRequest) (*dto.RoomResponse, error) {
			assert.Equal(t, testUserID, userID)
			assert.Equal(t, testUsername, username)
			assert.Equal(t, "Biology", req.Name)
			assert.Equal(t, "exam", req.Mode)
			return &dto.RoomResponse{ID: roomID, Code: "ABC234", Name: req.Name, Mode: req.Mode, IsOwner: true}, nil
		}

		resp, body := doJSON(t, app, http.MethodPost, "/api/rooms", dto.CreateRoomRequest{Name: "Biology", Mode: "exam"})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)

		var out dto.RoomResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Equal(t, "ABC234", out.Code)
		assert.True(t, out.IsOwner)
	})

	t.Run("invalid body", func(t *testing.T) {
		app, _ := newTestApp()
		resp, body := doJSON(t, app, http.MethodPost, "/api/rooms", "{not json")
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Contains(t, string(body), "Invalid request body")
	})

	t.Run("validation errors are listed", func(t *testing.T) {
		app, _ := newTestApp()
		resp, body := doJSON(t, app, http.MethodPost, "/api/rooms", dto.CreateRoomRequest{Mode: "practice"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var out middleware.ValidationErrorResponse
		require.NoError(t, json.Unmarshal(body, &out))
		assert.Len(t, out.Errors, 2)
	})
}

func TestRoomHandler_JoinRoom(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"joined", nil, http.StatusOK, ""},
		{"unknown code", domain.NewNotFoundError("Room not found"), http.StatusNotFound, ""},
		{"already member", domain.NewConflictError(domain.ReasonAlreadyMember, "Already a member of this room"), http.StatusConflict, string(domain.ReasonAlreadyMember)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, m := newTestApp()
			m.rooms.JoinRoomFunc = func(ctx context.Context, userID, username string, req dto.JoinRoomRequest) (*dto.RoomResponse, error) {
				assert.Equal(t, "abc234", req.Code)
				if tt.err != nil {
					return nil, tt.err
				}
				return &dto.RoomResponse{ID: roomID, Code: "ABC234"}, nil
			}

			resp, body := doJSON(t, app, http.MethodPost, "/api/rooms/join", dto.JoinRoomRequest{Code: "abc234"})
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantReason != "" {
				var out middleware.ErrorResponse
				require.NoError(t, json.Unmarshal(body, &out))
				assert.Equal(t, tt.wantReason, out.Details["reason"])
			}
		})
	}
}

func TestRoomHandler_JoinRoom_RejectsMalformedCode(t *testing.T) {
	app, _ := newTestApp()
	resp, _ := doJSON(t, app, http.MethodPost, "/api/rooms/join", dto.JoinRoomRequest{Code: "AB10"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRoomHandler_RoomRoutes(t *testing.T) {
	app, m := newTestApp()
	m.rooms.ListRoomsFunc = func(ctx context.Context, userID string) (*dto.RoomListResponse, error) {
		return &dto.RoomListResponse{Rooms: []dto.RoomResponse{{ID: roomID}}}, nil
	}
	m.rooms.GetRoomFunc = func(ctx context.Context, userID, id string) (*dto.RoomResponse, error) {
		assert.Equal(t, roomID, id)
		return &dto.RoomResponse{ID: id}, nil
	}
	m.rooms.ListMembersFunc = func(ctx context.Context, userID, id string) (*dto.MemberListResponse, error) {
		return &dto.MemberListResponse{Members: []dto.MemberResponse{{UserID: userID, Role: "owner"}}}, nil
	}
	m.rooms.GetLeaderboardFunc = func(ctx context.Context, userID, id string) (*dto.LeaderboardResponse, error) {
		return nil, domain.NewForbiddenError("Leaderboard is disabled for this room")
	}

	resp, _ := doJSON(t, app, http.MethodGet, "/api/rooms", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, app, http.MethodGet, "/api/rooms/"+roomID, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), roomID)

	resp, body = doJSON(t, app, http.MethodGet, "/api/rooms/"+roomID+"/members", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"role":"owner"`)

	resp, _ = doJSON(t, app, http.MethodGet, "/api/rooms/"+roomID+"/leaderboard", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRoomHandler_InvalidRoomID(t *testing.T) {
	app, _ := newTestApp()
	resp, body := doJSON(t, app, http.MethodGet, "/api/rooms/not-a-uuid/members", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(body), "roomID")
}

func TestRoomHandler_Documents(t *testing.T) {
	t.Run("upload", func(t *testing.T) {
		app, m := newTestApp()
		m.documents.UploadFunc = func(ctx context.Context, userID, id string, req dto.CreateDocumentRequest) (*dto.DocumentResponse, error) {
			assert.Equal(t, roomID, id)
			return &dto.DocumentResponse{ID: "d1", RoomID: id, Name: req.Name, UploadedBy: userID}, nil
		}

		resp, body := doJSON(t, app, http.MethodPost, "/api/rooms/"+roomID+"/documents",
			dto.CreateDocumentRequest{Name: "cells.txt", Content: "Mitochondria make ATP."})
		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Contains(t, string(body), "cells.txt")
	})

	t.Run("empty content is rejected before the service", func(t *testing.T) {
		app, _ := newTestApp()
		resp, _ := doJSON(t, app, http.MethodPost, "/api/rooms/"+roomID+"/documents",
			dto.CreateDocumentRequest{Name: "cells.txt"})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("non member", func(t *testing.T) {
		app, m := newTestApp()
		m.documents.ListFunc = func(ctx context.Context, userID, id string) (*dto.DocumentListResponse, error) {
			return nil, domain.NewForbiddenError("Not a member of this room")
		}
		resp, _ := doJSON(t, app, http.MethodGet, "/api/rooms/"+roomID+"/documents", nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	})
}
