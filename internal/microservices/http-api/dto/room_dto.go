package dto

// Data Transfer Objects for room metadata endpoints

// CreateRoomRequest: payload for creating a chat room
type CreateRoomRequest struct {
	ID       string `json:"id" binding:"required,min=1,max=64"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Capacity int    `json:"capacity" binding:"omitempty,min=2,max=10000"`
}

// RoomSnapshotResponse: room metadata joined with the live member count.
// MemberCount is always the presence table size at read time, never a
// separately tracked counter.
type RoomSnapshotResponse struct {
	ID           string            `json:"id"`
	Name         string            `json:"name"`
	Capacity     int               `json:"capacity"`
	ManagedBy    string            `json:"managed_by"`
	MemberCount  int               `json:"member_count"`
	Participants []ParticipantInfo `json:"participants,omitempty"`
	GameActive   bool              `json:"game_active"`
	GameStatus   any               `json:"game_status,omitempty"`
}

// ParticipantInfo: one presence table entry for display
type ParticipantInfo struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	IsOnline bool   `json:"is_online"`
	JoinedAt int64  `json:"joined_at"`
	LastSeen int64  `json:"last_seen"`
}
