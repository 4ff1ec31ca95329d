package handler

import (
	"synapse/internal/dto"
	"synapse/internal/middleware"
	"synapse/internal/service"
	"synapse/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// RoomHandler handles room and room document requests
type RoomHandler struct {
	rooms     service.RoomService
	documents service.DocumentService
	validator *validation.Validator
}

// NewRoomHandler creates a new RoomHandler instance
func NewRoomHandler(rooms service.RoomService, documents service.DocumentService) *RoomHandler {
	return &RoomHandler{
		rooms:     rooms,
		documents: documents,
		validator: validation.NewValidator(),
	}
}

// CreateRoom godoc
// @Summary Create a room
// @Description Creates a room with a fresh join code. The caller becomes its owner.
// @Tags rooms
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateRoomRequest true "Room details"
// @Success 201 {object} dto.RoomResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 500 {object} middleware.ErrorResponse
// @Router /rooms [post]
func (h *RoomHandler) CreateRoom(c *fiber.Ctx) error {
	var req dto.CreateRoomRequest
	if err := parseBody(c, &req, h.validator.ValidateCreateRoom); err != nil {
		return err
	}

	room, err := h.rooms.CreateRoom(c.Context(), middleware.UserID(c), middleware.Username(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(room)
}

// JoinRoom godoc
// @Summary Join a room by code
// @Tags rooms
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param request body dto.JoinRoomRequest true "Join code"
// @Success 200 {object} dto.RoomResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 404 {object} middleware.ErrorResponse "Unknown code"
// @Failure 409 {object} middleware.ErrorResponse "Already a member"
// @Router /rooms/join [post]
func (h *RoomHandler) JoinRoom(c *fiber.Ctx) error {
	var req dto.JoinRoomRequest
	if err := parseBody(c, &req, h.validator.ValidateJoinRoom); err != nil {
		return err
	}

	room, err := h.rooms.JoinRoom(c.Context(), middleware.UserID(c), middleware.Username(c), req)
	if err != nil {
		return err
	}
	return c.JSON(room)
}

// ListRooms godoc
// @Summary List my rooms
// @Description Rooms the caller owns or has joined
// @Tags rooms
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {object} dto.RoomListResponse
// @Router /rooms [get]
func (h *RoomHandler) ListRooms(c *fiber.Ctx) error {
	rooms, err := h.rooms.ListRooms(c.Context(), middleware.UserID(c))
	if err != nil {
		return err
	}
	return c.JSON(rooms)
}

// GetRoom handles GET /api/rooms/:roomID
func (h *RoomHandler) GetRoom(c *fiber.Ctx) error {
	room, err := h.rooms.GetRoom(c.Context(), middleware.UserID(c), c.Params("roomID"))
	if err != nil {
		return err
	}
	return c.JSON(room)
}

// ListMembers handles GET /api/rooms/:roomID/members
func (h *RoomHandler) ListMembers(c *fiber.Ctx) error {
	members, err := h.rooms.ListMembers(c.Context(), middleware.UserID(c), c.Params("roomID"))
	if err != nil {
		return err
	}
	return c.JSON(members)
}

// GetLeaderboard godoc
// @Summary Room leaderboard
// @Description Completed attempts aggregated per user, best total first
// @Tags rooms
// @Security ApiKeyAuth
// @Produce json
// @Param roomID path string true "Room ID"
// @Success 200 {object} dto.LeaderboardResponse
// @Failure 403 {object} middleware.ErrorResponse "Not a member or leaderboard disabled"
// @Router /rooms/{roomID}/leaderboard [get]
func (h *RoomHandler) GetLeaderboard(c *fiber.Ctx) error {
	board, err := h.rooms.GetLeaderboard(c.Context(), middleware.UserID(c), c.Params("roomID"))
	if err != nil {
		return err
	}
	return c.JSON(board)
}

// UploadDocument godoc
// @Summary Add a study document to a room
// @Tags documents
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param roomID path string true "Room ID"
// @Param request body dto.CreateDocumentRequest true "Document name and extracted text"
// @Success 201 {object} dto.DocumentResponse
// @Failure 400 {object} middleware.ValidationErrorResponse
// @Failure 403 {object} middleware.ErrorResponse
// @Router /rooms/{roomID}/documents [post]
func (h *RoomHandler) UploadDocument(c *fiber.Ctx) error {
	var req dto.CreateDocumentRequest
	if err := parseBody(c, &req, h.validator.ValidateCreateDocument); err != nil {
		return err
	}

	doc, err := h.documents.Upload(c.Context(), middleware.UserID(c), c.Params("roomID"), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(doc)
}

// ListDocuments handles GET /api/rooms/:roomID/documents
func (h *RoomHandler) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.documents.List(c.Context(), middleware.UserID(c), c.Params("roomID"))
	if err != nil {
		return err
	}
	return c.JSON(docs)
}
