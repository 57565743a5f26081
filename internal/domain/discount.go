package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Discount is a time-bounded percentage sale attached to categories.
type Discount struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:255;not null" validate:"required,max=255"`
	Description string          `json:"description" gorm:"type:text"`
	Percent     decimal.Decimal `json:"discount" gorm:"type:decimal(5,2);not null"`
	ImagePath   string          `json:"image,omitempty" gorm:"size:512"`
	StartDate   time.Time       `json:"start_date" gorm:"not null;index"`
	EndDate     time.Time       `json:"end_date" gorm:"not null;index"`
	CreatedAt   time.Time       `json:"created_at"`
	DeletedAt   *time.Time      `json:"-" gorm:"index"`

	Categories []Category `json:"-" gorm:"many2many:category_discounts;"`
}

// ActiveAt reports whether the discount applies at instant now.
func (d *Discount) ActiveAt(now time.Time) bool {
	if d.DeletedAt != nil {
		return false
	}
	return !now.Before(d.StartDate) && !now.After(d.EndDate)
}

func ValidateDiscount(d *Discount) error {
	if err := validateStruct(d); err != nil {
		return err
	}
	if !percentBetween(d.Percent, false) {
		return InvalidField("discount", "must be greater than 0 and less than 100")
	}
	if !d.StartDate.Before(d.EndDate) {
		return InvalidField("end_date", "must be after start_date")
	}
	return nil
}
