// Package pricing assigns rooms to bookings and computes what they cost.
package pricing

import (
	"time"

	"hotelcore/internal/domain"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Quote is the price breakdown of a stay in one category.
type Quote struct {
	Nights          int             `json:"nights"`
	NightPrice      decimal.Decimal `json:"night_price"`
	Base            decimal.Decimal `json:"base"`
	DiscountID      *int64          `json:"discount_id,omitempty"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	Price           decimal.Decimal `json:"price"`
	Prepayment      decimal.Decimal `json:"prepayment"`
	Refund          decimal.Decimal `json:"refund"`
}

// Calculate prices a stay of [start, end) in category at instant now.
// The best active discount applies; ties go to the lowest discount id.
// Only the returned price, prepayment and refund are rounded to cents.
func Calculate(category *domain.Category, start, end time.Time, discounts []domain.Discount, now time.Time) (Quote, error) {
	nights := domain.Nights(start, end)
	if nights < 1 {
		return Quote{}, domain.InvalidField("end", "stay must be at least one night")
	}

	q := Quote{
		Nights:     nights,
		NightPrice: category.Price,
		Base:       category.Price.Mul(decimal.NewFromInt(int64(nights))),
	}

	if best := BestDiscount(discounts, now); best != nil {
		id := best.ID
		q.DiscountID = &id
		q.DiscountPercent = best.Percent
	}

	price := q.Base
	if q.DiscountPercent.IsPositive() {
		price = price.Mul(hundred.Sub(q.DiscountPercent)).Div(hundred)
	}
	prepayment := price.Mul(category.PrepaymentPercent).Div(hundred)
	refund := price.Mul(category.RefundPercent).Div(hundred)

	q.Price = price.Round(2)
	q.Prepayment = prepayment.Round(2)
	q.Refund = refund.Round(2)
	return q, nil
}

// BestDiscount returns the active discount with the largest percent, or nil.
func BestDiscount(discounts []domain.Discount, now time.Time) *domain.Discount {
	var best *domain.Discount
	for i := range discounts {
		d := &discounts[i]
		if !d.ActiveAt(now) {
			continue
		}
		if best == nil || d.Percent.GreaterThan(best.Percent) || (d.Percent.Equal(best.Percent) && d.ID < best.ID) {
			best = d
		}
	}
	return best
}

// Apply copies the quoted amounts onto the booking.
func (q Quote) Apply(b *domain.Booking) {
	b.Price = q.Price
	b.Prepayment = q.Prepayment
	b.Refund = q.Refund
}
