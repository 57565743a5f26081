package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID                int64           `json:"id" gorm:"primaryKey"`
	Name              string          `json:"name" gorm:"size:255;not null;index" validate:"required,max=255"`
	Description       string          `json:"description" gorm:"type:text"`
	Price             decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null"`
	PrepaymentPercent decimal.Decimal `json:"prepayment_percent" gorm:"type:decimal(5,2);not null;default:0"`
	RefundPercent     decimal.Decimal `json:"refund_percent" gorm:"type:decimal(5,2);not null;default:0"`
	RoomsCount        int             `json:"rooms" gorm:"not null" validate:"gte=1"`
	Floors            int             `json:"floors" gorm:"not null" validate:"gte=1"`
	Beds              int             `json:"beds" gorm:"not null" validate:"gte=1"`
	Square            float64         `json:"square" gorm:"not null" validate:"gte=20"`
	MainPhotoPath     string          `json:"main_photo,omitempty" gorm:"size:512"`
	IsHidden          bool            `json:"is_hidden" gorm:"not null;default:false;index"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
	DeletedAt         *time.Time      `json:"-" gorm:"index"`

	Rooms     []Room     `json:"-" gorm:"foreignKey:CategoryID"`
	Discounts []Discount `json:"-" gorm:"many2many:category_discounts;"`
	Tags      []Tag      `json:"tags,omitempty" gorm:"many2many:category_tags;"`
	Photos    []Photo    `json:"photos,omitempty" gorm:"foreignKey:CategoryID"`
}

func (c *Category) IsDeleted() bool { return c.DeletedAt != nil }

// ValidateCategory checks field ranges before a category is saved.
func ValidateCategory(c *Category) error {
	if err := validateStruct(c); err != nil {
		return err
	}
	if !c.Price.IsPositive() {
		return InvalidField("price", "must be greater than zero")
	}
	if !percentBetween(c.PrepaymentPercent, true) {
		return InvalidField("prepayment_percent", "must be between 0 and 100")
	}
	if !percentBetween(c.RefundPercent, true) {
		return InvalidField("refund_percent", "must be between 0 and 100")
	}
	return nil
}

var hundredPercent = decimal.NewFromInt(100)

// percentBetween checks p against [0, 100], or (0, 100) when inclusive is false.
func percentBetween(p decimal.Decimal, inclusive bool) bool {
	if inclusive {
		return !p.IsNegative() && p.LessThanOrEqual(hundredPercent)
	}
	return p.IsPositive() && p.LessThan(hundredPercent)
}
