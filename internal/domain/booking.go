package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking reserves one room for the half-open day range [Start, End).
// It is owned by exactly one Order row, which is either a cart or an order.
type Booking struct {
	ID               int64           `json:"id" gorm:"primaryKey"`
	Start            time.Time       `json:"start" gorm:"column:start_date;type:date;not null;index"`
	End              time.Time       `json:"end" gorm:"column:end_date;type:date;not null;index"`
	Price            decimal.Decimal `json:"price" gorm:"type:decimal(10,2);not null;default:0"`
	Prepayment       decimal.Decimal `json:"prepayment" gorm:"type:decimal(10,2);not null;default:0"`
	Refund           decimal.Decimal `json:"refund" gorm:"type:decimal(10,2);not null;default:0"`
	IsPaid           bool            `json:"is_paid" gorm:"not null;default:false;index"`
	IsPrepaymentPaid bool            `json:"is_prepayment_paid" gorm:"not null;default:false;index"`
	IsCanceled       bool            `json:"is_canceled" gorm:"not null;default:false;index"`
	RoomID           int64           `json:"room_id" gorm:"not null;index"`
	OrderID          int64           `json:"order_id" gorm:"not null;index"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	Room *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

// Nights is the number of nights covered by the booking.
func (b *Booking) Nights() int { return Nights(b.Start, b.End) }

// Overlaps reports whether the booking occupies day.
func (b *Booking) Overlaps(day time.Time) bool {
	return !b.Start.After(day) && b.End.After(day)
}

// Contribution is the amount the booking adds to its owner's price.
func (b *Booking) Contribution() decimal.Decimal {
	switch {
	case b.IsCanceled && b.IsPaid:
		return b.Price.Sub(b.Refund)
	case b.IsCanceled:
		return b.Prepayment
	default:
		return b.Price
	}
}

// ValidateBookingDates normalizes start/end to UTC midnight and checks start < end.
func ValidateBookingDates(b *Booking) error {
	b.Start, b.End = Day(b.Start), Day(b.End)
	if b.Start.IsZero() || b.End.IsZero() {
		return InvalidField("dates", "start and end are required")
	}
	if !b.Start.Before(b.End) {
		return InvalidField("end", "must be after start")
	}
	return nil
}
