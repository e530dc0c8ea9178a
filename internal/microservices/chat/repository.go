package chat

import (
	"context"

	"chathub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// ChatMessageRepository is the durable message store collaborator.
type ChatMessageRepository interface {
	Insert(ctx context.Context, message *models.ChatMessage) error
	GetByRoomID(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error)
	DeleteByMessageID(ctx context.Context, roomID, messageID string) error
}

type chatMessageRepository struct {
	db *gorm.DB
}

func NewChatMessageRepository(db *gorm.DB) ChatMessageRepository {
	return &chatMessageRepository{db: db}
}

func (r *chatMessageRepository) Insert(ctx context.Context, message *models.ChatMessage) error {
	return r.db.WithContext(ctx).Create(message).Error
}

func (r *chatMessageRepository) GetByRoomID(ctx context.Context, roomID string, limit int) ([]models.ChatMessage, error) {
	var messages []models.ChatMessage
	err := r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Order("created_at DESC").
		Limit(limit).
		Find(&messages).Error
	return messages, err
}

func (r *chatMessageRepository) DeleteByMessageID(ctx context.Context, roomID, messageID string) error {
	return r.db.WithContext(ctx).
		Where("room_id = ? AND message_id = ?", roomID, messageID).
		Delete(&models.ChatMessage{}).Error
}
