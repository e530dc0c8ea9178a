package models

import "time"

// ChatMessage is the durable form of a room message.
// Only "message" and "gift" types ever reach this table;
// join/leave/kick/mute events are ephemeral and live only on the wire.
type ChatMessage struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	MessageID string    `gorm:"uniqueIndex;not null" json:"message_id"` // wire-level id (timestamp+sender+suffix scheme)
	RoomID    string    `gorm:"not null;index:idx_chat_messages_room_id" json:"room_id"`
	UserID    string    `gorm:"type:uuid;index" json:"user_id"`
	UserName  string    `gorm:"not null" json:"user_name"`
	Content   string    `gorm:"not null" json:"content"`
	Type      string    `gorm:"default:'message';not null" json:"type"` // message | gift
	GiftName  string    `json:"gift_name,omitempty"`
	GiftIcon  string    `json:"gift_icon,omitempty"`
	GiftPrice int       `json:"gift_price,omitempty"`
	IsPrivate bool      `gorm:"default:false" json:"is_private"`
	CreatedAt time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`

	// Associations
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (ChatMessage) TableName() string {
	return "chat_messages"
}
