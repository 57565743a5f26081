package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderKind string

const (
	KindCart  OrderKind = "cart"
	KindOrder OrderKind = "order"
)

// Order is the owning aggregate of bookings. Kind tells a cart (anonymous,
// addressed by CartUUID, expires) from a confirmed order (has a client and
// payment state). Both live in the orders table.
type Order struct {
	ID                 int64           `json:"id" gorm:"primaryKey"`
	Kind               OrderKind       `json:"kind" gorm:"size:16;not null;index"`
	CartUUID           *uuid.UUID      `json:"uuid,omitempty" gorm:"type:varchar(36);uniqueIndex"`
	ClientID           *int64          `json:"client_id,omitempty" gorm:"index"`
	Comment            string          `json:"comment,omitempty" gorm:"type:text"`
	Paid               decimal.Decimal `json:"paid" gorm:"type:decimal(10,2);not null;default:0"`
	Refunded           decimal.Decimal `json:"refunded" gorm:"type:decimal(10,2);not null;default:0"`
	DateFullPrepayment *time.Time      `json:"date_full_prepayment,omitempty"`
	DateFullPaid       *time.Time      `json:"date_full_paid,omitempty"`
	DateFinished       *time.Time      `json:"date_finished,omitempty" gorm:"index"`
	DateCanceled       *time.Time      `json:"date_canceled,omitempty" gorm:"index"`
	CreatedAt          time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt          time.Time       `json:"updated_at"`

	Client   *Client   `json:"client,omitempty" gorm:"foreignKey:ClientID"`
	Bookings []Booking `json:"bookings,omitempty" gorm:"foreignKey:OrderID"`
}

func (o *Order) IsCart() bool     { return o.Kind == KindCart }
func (o *Order) IsFinished() bool { return o.DateFinished != nil }
func (o *Order) IsCanceled() bool { return o.DateCanceled != nil }

// Totals are the derived money figures of an aggregate.
type Totals struct {
	Price      decimal.Decimal `json:"price"`
	Prepayment decimal.Decimal `json:"prepayment"`
}

// SumTotals derives price and prepayment from the aggregate's bookings.
func SumTotals(bookings []Booking) Totals {
	t := Totals{Price: decimal.Zero, Prepayment: decimal.Zero}
	for i := range bookings {
		t.Price = t.Price.Add(bookings[i].Contribution())
		t.Prepayment = t.Prepayment.Add(bookings[i].Prepayment)
	}
	return t
}

// LeftToPay is max(price - paid, 0).
func (o *Order) LeftToPay(t Totals) decimal.Decimal {
	return decimal.Max(t.Price.Sub(o.Paid), decimal.Zero)
}

// LeftToRefund is max(paid - price - refunded, 0).
func (o *Order) LeftToRefund(t Totals) decimal.Decimal {
	return decimal.Max(o.Paid.Sub(t.Price).Sub(o.Refunded), decimal.Zero)
}

// ValidatePayment checks 0 <= refunded <= paid.
func ValidatePayment(paid, refunded decimal.Decimal) error {
	if paid.IsNegative() {
		return InvalidField("paid", "must not be negative")
	}
	if refunded.IsNegative() {
		return InvalidField("refunded", "must not be negative")
	}
	if refunded.GreaterThan(paid) {
		return InvalidField("refunded", "must not exceed paid")
	}
	return nil
}
