package repository

import (
	"context"
	"time"

	"hotelcore/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DiscountRepository struct {
	db *gorm.DB
}

func NewDiscountRepository(db *gorm.DB) *DiscountRepository {
	return &DiscountRepository{db: db}
}

func (r *DiscountRepository) Create(ctx context.Context, d *domain.Discount) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(d).Error)
}

func (r *DiscountRepository) GetByID(ctx context.Context, id int64) (*domain.Discount, error) {
	var d domain.Discount
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&d).Error; err != nil {
		return nil, notFound(err, "discount", id)
	}
	return &d, nil
}

// ListActive returns discounts running at now, newest first.
func (r *DiscountRepository) ListActive(ctx context.Context, now time.Time) ([]domain.Discount, error) {
	var out []domain.Discount
	err := r.db.WithContext(ctx).
		Where("deleted_at IS NULL AND start_date <= ? AND end_date >= ?", now, now).
		Order("start_date DESC, id DESC").
		Find(&out).Error
	return out, translateError(err)
}

func (r *DiscountRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Discount{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "discount", id)
	}
	return nil
}
