package handlers

import (
	"net/http"

	"task-rooms-api/internal/service"

	"github.com/gin-gonic/gin"
)

// JoinRoomRequest accepts the code under "code" or "room_code".
type JoinRoomRequest struct {
	Code     string `json:"code"`
	RoomCode string `json:"room_code"`
}

// MemberResponse is the public view of a room member.
type MemberResponse struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type RoomHandler struct {
	rooms *service.RoomService
}

func NewRoomHandler(rooms *service.RoomService) *RoomHandler {
	return &RoomHandler{rooms: rooms}
}

// CreateRoom handles POST /api/rooms
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	room, err := h.rooms.Create(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"code": room.Code})
}

// JoinRoom handles POST /api/rooms/join
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid code format."})
		return
	}
	code := req.Code
	if code == "" {
		code = req.RoomCode
	}

	room, err := h.rooms.Join(c.Request.Context(), userID, code)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"code":    room.Code,
		"message": "Joined room successfully.",
	})
}

// GetMembers handles GET /api/rooms/:code/members
func (h *RoomHandler) GetMembers(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	users, err := h.rooms.Members(c.Request.Context(), userID, c.Param("code"))
	if err != nil {
		respondError(c, err)
		return
	}

	// Map to safe response payload
	resp := make([]MemberResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, MemberResponse{ID: u.ID, Name: u.Name, Email: u.Email})
	}
	c.JSON(http.StatusOK, gin.H{
		"members": resp,
		"count":   len(resp),
	})
}
