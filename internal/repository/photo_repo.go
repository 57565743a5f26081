package repository

import (
	"context"

	"hotelcore/internal/domain"

	"gorm.io/gorm"
)

type PhotoRepository struct {
	db *gorm.DB
}

func NewPhotoRepository(db *gorm.DB) *PhotoRepository {
	return &PhotoRepository{db: db}
}

func (r *PhotoRepository) Create(ctx context.Context, p *domain.Photo) error {
	return translateError(r.db.WithContext(ctx).Create(p).Error)
}

func (r *PhotoRepository) GetByID(ctx context.Context, id int64) (*domain.Photo, error) {
	var p domain.Photo
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, notFound(err, "photo", id)
	}
	return &p, nil
}

// ListByCategory returns photos in display order.
func (r *PhotoRepository) ListByCategory(ctx context.Context, categoryID int64) ([]domain.Photo, error) {
	var out []domain.Photo
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("position ASC, id ASC").
		Find(&out).Error
	return out, translateError(err)
}

func (r *PhotoRepository) NextPosition(ctx context.Context, categoryID int64) (int, error) {
	var maxPos int64
	err := r.db.WithContext(ctx).Model(&domain.Photo{}).
		Where("category_id = ?", categoryID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&maxPos).Error
	return int(maxPos) + 1, translateError(err)
}

func (r *PhotoRepository) SetPosition(ctx context.Context, id int64, position int) error {
	return translateError(r.db.WithContext(ctx).Model(&domain.Photo{}).
		Where("id = ?", id).
		Update("position", position).Error)
}

// ShiftDown closes the gap left at position by moving later photos up one slot.
func (r *PhotoRepository) ShiftDown(ctx context.Context, categoryID int64, position int) error {
	return translateError(r.db.WithContext(ctx).Model(&domain.Photo{}).
		Where("category_id = ? AND position > ?", categoryID, position).
		Update("position", gorm.Expr("position - 1")).Error)
}

func (r *PhotoRepository) Delete(ctx context.Context, id int64) error {
	return translateError(r.db.WithContext(ctx).Delete(&domain.Photo{}, id).Error)
}

func (r *PhotoRepository) DeleteByCategory(ctx context.Context, categoryID int64) error {
	return translateError(r.db.WithContext(ctx).Where("category_id = ?", categoryID).Delete(&domain.Photo{}).Error)
}
