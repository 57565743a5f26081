package payment

import (
	"context"
	"fmt"
	"io"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/events"
	"hotelcore/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type Service struct {
	store     *repository.Store
	publisher events.Publisher
	log       *logrus.Logger
	now       func() time.Time
}

func NewService(store *repository.Store, publisher events.Publisher, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &Service{store: store, publisher: publisher, log: log, now: time.Now}
}

// OrderView is an order with its bookings and derived money figures.
type OrderView struct {
	*domain.Order
	Price        decimal.Decimal `json:"price"`
	Prepayment   decimal.Decimal `json:"prepayment"`
	LeftToPay    decimal.Decimal `json:"left_to_pay"`
	LeftToRefund decimal.Decimal `json:"left_to_refund"`
}

func NewOrderView(o *domain.Order) *OrderView {
	t := domain.SumTotals(o.Bookings)
	return &OrderView{
		Order:        o,
		Price:        t.Price.Round(2),
		Prepayment:   t.Prepayment.Round(2),
		LeftToPay:    o.LeftToPay(t).Round(2),
		LeftToRefund: o.LeftToRefund(t).Round(2),
	}
}

func (s *Service) GetOrder(ctx context.Context, orderID int64) (*OrderView, error) {
	o, err := s.store.Orders.GetWithBookings(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.IsCart() {
		return nil, fmt.Errorf("%w: order %d", domain.ErrNotFound, orderID)
	}
	return NewOrderView(o), nil
}

// ClientOrders lists the orders of one client with their totals.
func (s *Service) ClientOrders(ctx context.Context, clientID int64) ([]*OrderView, error) {
	orders, err := s.store.Orders.ListByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	out := make([]*OrderView, len(orders))
	for i := range orders {
		out[i] = NewOrderView(&orders[i])
	}
	return out, nil
}

// SetPaid records the total amount received for an order and reconciles.
func (s *Service) SetPaid(ctx context.Context, orderID int64, amount decimal.Decimal) (*domain.Order, error) {
	if amount.IsNegative() {
		return nil, domain.InvalidField("paid", "must not be negative")
	}

	var (
		order      *domain.Order
		becamePaid bool
	)
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		o, err := tx.Orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if err := domain.ValidatePayment(amount, o.Refunded); err != nil {
			return err
		}

		wasPaid := o.DateFullPaid != nil
		o.Paid = amount.Round(2)
		outcome, err := Reconcile(ctx, tx, o, s.now())
		if err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{"order_id": o.ID, "paid": o.Paid.String(), "outcome": outcome.String()}).Info("order payment recorded")

		order, becamePaid = o, !wasPaid && o.DateFullPaid != nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	if becamePaid {
		s.emit(ctx, events.OrderPaid, order)
	}
	return order, nil
}

// MarkPaid sets paid to the order's full price.
func (s *Service) MarkPaid(ctx context.Context, orderID int64) (*domain.Order, error) {
	var (
		order      *domain.Order
		becamePaid bool
	)
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		o, err := tx.Orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.IsFinished() || o.IsCanceled() {
			return fmt.Errorf("%w: order %d is finished or canceled", domain.ErrInvalidState, o.ID)
		}
		order, becamePaid = o, false
		if o.DateFullPaid != nil {
			return nil
		}

		totals, err := tx.Orders.Totals(ctx, o.ID)
		if err != nil {
			return err
		}
		o.Paid = totals.Price.Round(2)
		if _, err := Reconcile(ctx, tx, o, s.now()); err != nil {
			return err
		}
		becamePaid = o.DateFullPaid != nil
		return nil
	})
	if err != nil {
		return nil, err
	}

	if becamePaid {
		s.log.WithField("order_id", order.ID).Info("order marked as paid")
		s.emit(ctx, events.OrderPaid, order)
	}
	return order, nil
}

// Refund records how much of the paid amount was returned to the client.
func (s *Service) Refund(ctx context.Context, orderID int64, amount decimal.Decimal) (*domain.Order, error) {
	var order *domain.Order
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		o, err := tx.Orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		amount = amount.Round(2)
		if err := domain.ValidatePayment(o.Paid, amount); err != nil {
			return err
		}
		o.Refunded = amount
		order = o
		return tx.Orders.SavePayment(ctx, o)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"order_id": order.ID, "refunded": order.Refunded.String()}).Info("order refund recorded")
	return order, nil
}

// CancelOrder cancels paid and prepaid bookings in place and deletes the
// unpaid ones. Canceling twice is a no-op.
func (s *Service) CancelOrder(ctx context.Context, orderID int64) (*domain.Order, error) {
	var (
		order    *domain.Order
		changed  bool
		canceled int64
		deleted  int64
	)
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		o, err := tx.Orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		order, changed = o, false
		if o.IsCanceled() {
			return nil
		}

		canceled, err = tx.Bookings.UpdateForOrder(ctx, o.ID,
			map[string]any{"is_canceled": true},
			"is_canceled = ? AND (is_paid = ? OR is_prepayment_paid = ?)", false, true, true)
		if err != nil {
			return err
		}
		deleted, err = tx.Bookings.DeleteForOrder(ctx, o.ID,
			"is_canceled = ? AND is_paid = ? AND is_prepayment_paid = ?", false, false, false)
		if err != nil {
			return err
		}

		o.DateCanceled = stamp(s.now())
		o.DateFinished = nil
		changed = true
		return tx.Orders.SaveLifecycle(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		s.log.WithFields(logrus.Fields{
			"order_id":          order.ID,
			"bookings_canceled": canceled,
			"bookings_deleted":  deleted,
		}).Info("order canceled")
		s.emit(ctx, events.OrderCanceled, order)
	}
	return order, nil
}

// CancelBooking cancels a paid or prepaid booking in place and deletes an
// unpaid one. Returns true when the booking row was deleted.
func (s *Service) CancelBooking(ctx context.Context, bookingID int64) (bool, error) {
	var deleted bool
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		b, err := tx.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		owner, err := tx.Orders.GetForUpdate(ctx, b.OrderID)
		if err != nil {
			return err
		}
		deleted = false
		if b.IsCanceled {
			return nil
		}

		if b.IsPaid || b.IsPrepaymentPaid {
			if _, err := tx.Bookings.UpdateForOrder(ctx, owner.ID,
				map[string]any{"is_canceled": true}, "id = ?", b.ID); err != nil {
				return err
			}
		} else {
			if err := tx.Bookings.Delete(ctx, b.ID); err != nil {
				return err
			}
			deleted = true
		}

		if owner.IsCart() || owner.IsCanceled() {
			return nil
		}
		_, err = Reconcile(ctx, tx, owner, s.now())
		return err
	})
	if err != nil {
		return false, err
	}
	s.log.WithFields(logrus.Fields{"booking_id": bookingID, "deleted": deleted}).Info("booking canceled")
	return deleted, nil
}

// FinishReport counts what one FinishOrders run changed.
type FinishReport struct {
	CanceledBookings int64 `json:"canceled_bookings"`
	DeletedBookings  int64 `json:"deleted_bookings"`
	FinishedOrders   int64 `json:"finished_orders"`
	FailedOrders     int64 `json:"failed_orders"`
}

// FinishOrders closes out stays that ended before now:
// prepaid-only bookings are canceled, unpaid order bookings are deleted and
// open orders with nothing left to stay and a positive price are finished.
// Each order is finished in its own transaction; failures are logged and skipped.
func (s *Service) FinishOrders(ctx context.Context, now time.Time) (FinishReport, error) {
	var report FinishReport

	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		var err error
		if report.CanceledBookings, err = tx.Bookings.CancelEndedPrepaid(ctx, now); err != nil {
			return err
		}
		report.DeletedBookings, err = tx.Bookings.DeleteEndedUnpaid(ctx, now)
		return err
	})
	if err != nil {
		return report, err
	}

	ids, err := s.store.Orders.FinishCandidates(ctx, now)
	if err != nil {
		return report, err
	}

	for _, id := range ids {
		if ctx.Err() != nil {
			return report, ctx.Err()
		}
		finished, order, err := s.finishOrder(ctx, id, now)
		if err != nil {
			report.FailedOrders++
			s.log.WithError(err).WithField("order_id", id).Error("finish order failed")
			continue
		}
		if finished {
			report.FinishedOrders++
			s.emit(ctx, events.OrderFinished, order)
		}
	}

	s.log.WithFields(logrus.Fields{
		"canceled_bookings": report.CanceledBookings,
		"deleted_bookings":  report.DeletedBookings,
		"finished_orders":   report.FinishedOrders,
		"failed_orders":     report.FailedOrders,
	}).Info("finish orders completed")
	return report, nil
}

func (s *Service) finishOrder(ctx context.Context, orderID int64, now time.Time) (bool, *domain.Order, error) {
	var (
		finished bool
		order    *domain.Order
	)
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		finished = false
		o, err := tx.Orders.GetOrderForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		if o.IsFinished() {
			return nil
		}
		pending, err := tx.Bookings.HasEndingAfter(ctx, o.ID, now)
		if err != nil || pending {
			return err
		}
		totals, err := tx.Orders.Totals(ctx, o.ID)
		if err != nil {
			return err
		}
		if !totals.Price.IsPositive() {
			return nil
		}

		o.DateFinished = stamp(now)
		if err := tx.Orders.SaveLifecycle(ctx, o); err != nil {
			return err
		}
		finished, order = true, o
		return nil
	})
	return finished, order, err
}

func (s *Service) emit(ctx context.Context, routingKey string, o *domain.Order) {
	events.Emit(ctx, s.publisher, s.log, routingKey, events.OrderEvent{
		OrderID:    o.ID,
		ClientID:   o.ClientID,
		Paid:       o.Paid.StringFixed(2),
		OccurredAt: s.now().UTC(),
	})
}
