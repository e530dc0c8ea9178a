package handler

import (
	"net/http"
	"strconv"

	"chathub/internal/microservices/chat"
	"chathub/internal/microservices/http-api/dto"
	"chathub/internal/microservices/http-api/models"
	"chathub/internal/microservices/http-api/repository"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PresenceReader is the slice of the chat session manager the room
// endpoints need: live snapshots, member counts and the bot's game
// state. Counts come from the presence table size at read time, never
// a stored counter.
type PresenceReader interface {
	Snapshot(roomID string) []chat.Participant
	MemberCount(roomID string) int
	GameStatus(roomID string) (bool, any)
}

type RoomHandler struct {
	roomRepo        repository.RoomRepository
	messageRepo     chat.ChatMessageRepository
	presence        PresenceReader
	historyLimit    int
	defaultCapacity int
}

func NewRoomHandler(roomRepo repository.RoomRepository, messageRepo chat.ChatMessageRepository, presence PresenceReader, historyLimit, defaultCapacity int) *RoomHandler {
	if historyLimit <= 0 {
		historyLimit = 50
	}
	if defaultCapacity <= 0 {
		defaultCapacity = 200
	}
	return &RoomHandler{
		roomRepo:        roomRepo,
		messageRepo:     messageRepo,
		presence:        presence,
		historyLimit:    historyLimit,
		defaultCapacity: defaultCapacity,
	}
}

// List returns every room's metadata joined with its live member count.
func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.roomRepo.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list rooms"})
		return
	}

	out := make([]dto.RoomSnapshotResponse, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, dto.RoomSnapshotResponse{
			ID:          room.ID,
			Name:        room.Name,
			Capacity:    room.Capacity,
			ManagedBy:   room.ManagedBy,
			MemberCount: h.presence.MemberCount(room.ID),
		})
	}
	c.JSON(http.StatusOK, out)
}

// Get returns one room's metadata plus the full presence snapshot.
func (h *RoomHandler) Get(c *gin.Context) {
	roomID := c.Param("id")

	room, err := h.roomRepo.FindByID(c.Request.Context(), roomID)
	if err == gorm.ErrRecordNotFound {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load room"})
		return
	}

	snapshot := h.presence.Snapshot(roomID)
	participants := make([]dto.ParticipantInfo, 0, len(snapshot))
	for _, p := range snapshot {
		participants = append(participants, dto.ParticipantInfo{
			ID:       p.ID,
			Username: p.Username,
			Role:     p.Role,
			IsOnline: p.IsOnline,
			JoinedAt: p.JoinedAt.Unix(),
			LastSeen: p.LastSeen.Unix(),
		})
	}

	gameActive, gameStatus := h.presence.GameStatus(roomID)
	c.JSON(http.StatusOK, dto.RoomSnapshotResponse{
		ID:           room.ID,
		Name:         room.Name,
		Capacity:     room.Capacity,
		ManagedBy:    room.ManagedBy,
		MemberCount:  len(snapshot),
		Participants: participants,
		GameActive:   gameActive,
		GameStatus:   gameStatus,
	})
}

// Create adds durable room metadata; the live session is bootstrapped
// lazily by the first join-room event, not here.
func (h *RoomHandler) Create(c *gin.Context) {
	var req dto.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := c.Get("userID")
	managedBy, _ := userID.(string)

	capacity := req.Capacity
	if capacity == 0 {
		capacity = h.defaultCapacity
	}

	room := &models.Room{
		ID:        req.ID,
		Name:      req.Name,
		Capacity:  capacity,
		ManagedBy: managedBy,
	}
	if err := h.roomRepo.Create(c.Request.Context(), room); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "room already exists"})
		return
	}
	c.JSON(http.StatusCreated, room)
}

// Delete removes the room metadata record. Live sessions are not torn
// down here; an in-memory room simply stops resolving to metadata and
// dies with its last connection.
func (h *RoomHandler) Delete(c *gin.Context) {
	roomID := c.Param("id")
	if err := h.roomRepo.Delete(c.Request.Context(), roomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}

// History returns recent durable messages for a room (message and gift
// types only - ephemeral events are never stored).
func (h *RoomHandler) History(c *gin.Context) {
	roomID := c.Param("id")

	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 500 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	messages, err := h.messageRepo.GetByRoomID(c.Request.Context(), roomID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load history"})
		return
	}
	c.JSON(http.StatusOK, messages)
}
