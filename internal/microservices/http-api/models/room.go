package models

import "time"

// Room is the durable metadata for a chat room.
// Live membership is NOT stored here - the in-memory presence table
// owned by the session manager is the source of truth for "who is in
// this room right now". Private 1:1 rooms (private_<a>_<b>) have no row.
type Room struct {
	ID        string    `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Capacity  int       `gorm:"default:200;not null" json:"capacity"`
	ManagedBy string    `gorm:"type:uuid" json:"managed_by"` // user id of the room manager
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Room) TableName() string {
	return "rooms"
}
