package repository

import (
	"context"

	"chathub/internal/microservices/http-api/models"

	"gorm.io/gorm"
)

// RoomRepository handles durable room metadata.
// The live presence table never goes through here - this is only the
// name/capacity/manager record the snapshot endpoint joins against.
type RoomRepository interface {
	Create(ctx context.Context, room *models.Room) error
	FindByID(ctx context.Context, roomID string) (*models.Room, error)
	List(ctx context.Context) ([]models.Room, error)
	Delete(ctx context.Context, roomID string) error
}

type roomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) RoomRepository {
	return &roomRepository{db: db}
}

func (r *roomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

func (r *roomRepository) FindByID(ctx context.Context, roomID string) (*models.Room, error) {
	var room models.Room
	if err := r.db.WithContext(ctx).First(&room, "id = ?", roomID).Error; err != nil {
		return nil, err
	}
	return &room, nil
}

func (r *roomRepository) List(ctx context.Context) ([]models.Room, error) {
	var rooms []models.Room
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&rooms).Error
	return rooms, err
}

func (r *roomRepository) Delete(ctx context.Context, roomID string) error {
	return r.db.WithContext(ctx).Delete(&models.Room{}, "id = ?", roomID).Error
}
