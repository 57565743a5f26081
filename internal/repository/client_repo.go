package repository

import (
	"context"
	"time"

	"hotelcore/internal/domain"

	"gorm.io/gorm"
)

type ClientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

func (r *ClientRepository) Create(ctx context.Context, c *domain.Client) error {
	return translateError(r.db.WithContext(ctx).Create(c).Error)
}

func (r *ClientRepository) GetByID(ctx context.Context, id int64) (*domain.Client, error) {
	var c domain.Client
	if err := r.db.WithContext(ctx).Where("id = ? AND deleted_at IS NULL", id).First(&c).Error; err != nil {
		return nil, notFound(err, "client", id)
	}
	return &c, nil
}

// FindActiveByEmail looks up a non-deleted client by normalized email.
func (r *ClientRepository) FindActiveByEmail(ctx context.Context, email string) (*domain.Client, error) {
	var c domain.Client
	err := r.db.WithContext(ctx).
		Where("email = ? AND deleted_at IS NULL", domain.NormalizeEmail(email)).
		Order("id ASC").
		First(&c).Error
	if err != nil {
		return nil, notFound(err, "client", email)
	}
	return &c, nil
}

func (r *ClientRepository) EmailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Client{}).
		Where("email = ? AND deleted_at IS NULL AND id <> ?", domain.NormalizeEmail(email), exceptID).
		Count(&n).Error
	return n > 0, translateError(err)
}

func (r *ClientRepository) SetPassword(ctx context.Context, id int64, hash string) error {
	res := r.db.WithContext(ctx).Model(&domain.Client{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Updates(map[string]any{"password_hash": hash, "is_confirmed": true})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "client", id)
	}
	return nil
}

func (r *ClientRepository) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&domain.Client{}).
		Where("id = ? AND deleted_at IS NULL", id).
		Update("deleted_at", at)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "client", id)
	}
	return nil
}

// UpdateProfile persists the editable personal fields.
func (r *ClientRepository) UpdateProfile(ctx context.Context, c *domain.Client) error {
	res := r.db.WithContext(ctx).Model(&domain.Client{}).
		Where("id = ? AND deleted_at IS NULL", c.ID).
		Updates(map[string]any{
			"email":         c.Email,
			"first_name":    c.FirstName,
			"last_name":     c.LastName,
			"date_of_birth": c.DateOfBirth,
		})
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "client", c.ID)
	}
	return nil
}
