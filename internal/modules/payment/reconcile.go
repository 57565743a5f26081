package payment

import (
	"context"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/repository"
)

// Outcome tells which reconciliation rule fired.
type Outcome int

const (
	OutcomeNone Outcome = iota
	OutcomeFullyPaid
	OutcomePrepaid
	OutcomeBelowPrepayment
	OutcomeBelowPrice
)

func (o Outcome) String() string {
	switch o {
	case OutcomeFullyPaid:
		return "fully_paid"
	case OutcomePrepaid:
		return "prepaid"
	case OutcomeBelowPrepayment:
		return "below_prepayment"
	case OutcomeBelowPrice:
		return "below_price"
	}
	return "none"
}

// Reconcile brings the order's booking flags and payment dates in line with
// order.Paid. Totals are read from the bookings as they are inside tx, so the
// caller must hold the order row lock. The first matching rule wins:
//
//  1. paid >= price > 0: flag every live booking paid, stamp DateFullPaid.
//  2. paid >= prepayment > 0: flag every live booking prepaid, stamp DateFullPrepayment.
//  3. paid < prepayment: clear both flags on prepaid bookings and both dates.
//  4. paid < price: clear the paid flag and DateFullPaid.
//
// order is updated in place and persisted.
func Reconcile(ctx context.Context, tx *repository.Store, order *domain.Order, now time.Time) (Outcome, error) {
	totals, err := tx.Orders.Totals(ctx, order.ID)
	if err != nil {
		return OutcomeNone, err
	}
	paid := order.Paid

	var outcome Outcome
	switch {
	case totals.Price.IsPositive() && paid.GreaterThanOrEqual(totals.Price):
		outcome = OutcomeFullyPaid
		_, err = tx.Bookings.UpdateForOrder(ctx, order.ID,
			map[string]any{"is_paid": true},
			"is_canceled = ? AND is_paid = ?", false, false)
		if order.DateFullPaid == nil {
			order.DateFullPaid = stamp(now)
		}

	case totals.Prepayment.IsPositive() && paid.GreaterThanOrEqual(totals.Prepayment):
		outcome = OutcomePrepaid
		_, err = tx.Bookings.UpdateForOrder(ctx, order.ID,
			map[string]any{"is_prepayment_paid": true},
			"is_canceled = ? AND is_prepayment_paid = ?", false, false)
		if order.DateFullPrepayment == nil {
			order.DateFullPrepayment = stamp(now)
		}

	case paid.LessThan(totals.Prepayment):
		outcome = OutcomeBelowPrepayment
		_, err = tx.Bookings.UpdateForOrder(ctx, order.ID,
			map[string]any{"is_prepayment_paid": false, "is_paid": false},
			"is_canceled = ? AND is_prepayment_paid = ?", false, true)
		order.DateFullPrepayment = nil
		order.DateFullPaid = nil

	case paid.LessThan(totals.Price):
		outcome = OutcomeBelowPrice
		_, err = tx.Bookings.UpdateForOrder(ctx, order.ID,
			map[string]any{"is_paid": false},
			"is_canceled = ? AND is_paid = ?", false, true)
		order.DateFullPaid = nil
	}
	if err != nil {
		return OutcomeNone, err
	}

	if err := tx.Orders.SavePayment(ctx, order); err != nil {
		return OutcomeNone, err
	}
	return outcome, nil
}

func stamp(t time.Time) *time.Time {
	t = t.UTC()
	return &t
}
