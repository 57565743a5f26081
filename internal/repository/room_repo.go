package repository

import (
	"context"
	"time"

	"hotelcore/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(room).Error)
}

func (r *RoomRepository) Update(ctx context.Context, room *domain.Room) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(room).Error)
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*domain.Room, error) {
	var room domain.Room
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&room).Error; err != nil {
		return nil, notFound(err, "room", id)
	}
	return &room, nil
}

// ActiveIDs lists the non-deleted rooms of a category, lowest id first.
func (r *RoomRepository) ActiveIDs(ctx context.Context, categoryID int64) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("category_id = ? AND deleted_at IS NULL", categoryID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, translateError(err)
}

func (r *RoomRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Room, error) {
	var rooms []domain.Room
	err := r.db.WithContext(ctx).
		Where("category_id = ? AND deleted_at IS NULL", categoryID).
		Order("room_number ASC").
		Find(&rooms).Error
	return rooms, translateError(err)
}

// NextNumber is one past the highest number among non-deleted rooms.
func (r *RoomRepository) NextNumber(ctx context.Context) (int, error) {
	var maxNumber int64
	err := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("deleted_at IS NULL").
		Select("COALESCE(MAX(room_number), 0)").
		Scan(&maxNumber).Error
	if err != nil {
		return 0, translateError(err)
	}
	return int(maxNumber) + 1, nil
}

// NumberTaken reports whether another non-deleted room already uses number.
func (r *RoomRepository) NumberTaken(ctx context.Context, number int, exceptID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("room_number = ? AND deleted_at IS NULL AND id <> ?", number, exceptID).
		Count(&count).Error
	return count > 0, translateError(err)
}

func (r *RoomRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "room", id)
	}
	return nil
}

func (r *RoomRepository) SoftDeleteByCategory(ctx context.Context, categoryID int64, at time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Room{}).
		Where("category_id = ? AND deleted_at IS NULL", categoryID).
		Update("deleted_at", at)
	return res.RowsAffected, translateError(res.Error)
}
