// Package cart holds anonymous pre-order baskets of bookings and turns them
// into orders.
package cart

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/modules/client"
	"hotelcore/internal/modules/payment"
	"hotelcore/internal/modules/pricing"
	"hotelcore/internal/pkg/events"
	"hotelcore/internal/pkg/notify"
	"hotelcore/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is how long an unconfirmed cart lives.
const DefaultTTL = 24 * time.Hour

type Service struct {
	store     *repository.Store
	pricing   *pricing.Service
	clients   *client.Service
	notifier  notify.Sender
	publisher events.Publisher
	log       *logrus.Logger
	ttl       time.Duration
	now       func() time.Time
}

type Deps struct {
	Store     *repository.Store
	Pricing   *pricing.Service
	Clients   *client.Service
	Notifier  notify.Sender
	Publisher events.Publisher
	Log       *logrus.Logger
	TTL       time.Duration
}

func NewService(d Deps) *Service {
	log := d.Log
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	notifier := d.Notifier
	if notifier == nil {
		notifier = notify.NewLogSender(log)
	}
	publisher := d.Publisher
	if publisher == nil {
		publisher = events.Nop{}
	}
	ttl := d.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		store:     d.Store,
		pricing:   d.Pricing,
		clients:   d.Clients,
		notifier:  notifier,
		publisher: publisher,
		log:       log,
		ttl:       ttl,
		now:       time.Now,
	}
}

func (s *Service) CreateCart(ctx context.Context) (*domain.Order, error) {
	id := uuid.New()
	cart := &domain.Order{
		Kind:      domain.KindCart,
		CartUUID:  &id,
		Paid:      decimal.Zero,
		Refunded:  decimal.Zero,
		CreatedAt: s.now().UTC(),
	}
	if err := s.store.Orders.Create(ctx, cart); err != nil {
		return nil, err
	}
	s.log.WithField("cart_uuid", id.String()).Debug("cart created")
	return cart, nil
}

// GetByUUID returns the cart with its bookings and running totals.
func (s *Service) GetByUUID(ctx context.Context, cartUUID uuid.UUID) (*payment.OrderView, error) {
	cart, err := s.store.Orders.GetCartByUUID(ctx, cartUUID, false)
	if err != nil {
		return nil, err
	}
	full, err := s.store.Orders.GetWithBookings(ctx, cart.ID)
	if err != nil {
		return nil, err
	}
	return payment.NewOrderView(full), nil
}

// AddBooking reserves a room of the category for [start, end) in the cart.
func (s *Service) AddBooking(ctx context.Context, cartUUID uuid.UUID, categoryID int64, start, end time.Time) (*domain.Booking, error) {
	var booking *domain.Booking
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		cart, err := tx.Orders.GetCartByUUID(ctx, cartUUID, true)
		if err != nil {
			return err
		}
		b := &domain.Booking{OrderID: cart.ID, Start: start, End: end}
		if err := s.pricing.Assign(ctx, tx, b, &categoryID); err != nil {
			return err
		}
		booking = b
		return nil
	}, repository.Serializable())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"cart_uuid":  cartUUID.String(),
		"booking_id": booking.ID,
		"room_id":    booking.RoomID,
	}).Info("booking added to cart")
	return booking, nil
}

// RemoveBooking drops a booking from the cart.
func (s *Service) RemoveBooking(ctx context.Context, cartUUID uuid.UUID, bookingID int64) error {
	return s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		cart, err := tx.Orders.GetCartByUUID(ctx, cartUUID, true)
		if err != nil {
			return err
		}
		n, err := tx.Bookings.DeleteForOrder(ctx, cart.ID, "id = ?", bookingID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: booking %d in cart %s", domain.ErrNotFound, bookingID, cartUUID)
		}
		return nil
	})
}

// ConfirmCart turns the cart into an order for the client with this email,
// creating the client when needed. The amount due now is the full price when
// isFullyPaid, else the prepayment. Nothing is persisted if any step fails.
func (s *Service) ConfirmCart(ctx context.Context, cartUUID uuid.UUID, email string, isFullyPaid bool, comment string) (*domain.Order, error) {
	var (
		order *domain.Order
		guest *domain.Client
	)
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		cart, err := tx.Orders.GetCartByUUID(ctx, cartUUID, true)
		if err != nil {
			return err
		}
		n, err := tx.Bookings.CountByOrder(ctx, cart.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.Invalidf("cart %s has no bookings", cartUUID)
		}

		c, _, err := s.clients.EnsureClient(ctx, tx, email)
		if err != nil {
			return err
		}

		o := &domain.Order{
			Kind:     domain.KindOrder,
			ClientID: &c.ID,
			Comment:  strings.TrimSpace(comment),
			Paid:     decimal.Zero,
			Refunded: decimal.Zero,
		}
		if err := tx.Orders.Create(ctx, o); err != nil {
			return err
		}
		if _, err := tx.Bookings.Reparent(ctx, cart.ID, o.ID); err != nil {
			return err
		}
		if err := tx.Orders.Delete(ctx, cart.ID); err != nil {
			return err
		}

		totals, err := tx.Orders.Totals(ctx, o.ID)
		if err != nil {
			return err
		}
		if isFullyPaid {
			o.Paid = totals.Price.Round(2)
		} else {
			o.Paid = totals.Prepayment.Round(2)
		}
		if _, err := payment.Reconcile(ctx, tx, o, s.now()); err != nil {
			return err
		}
		order, guest = o, c
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"cart_uuid": cartUUID.String(),
		"order_id":  order.ID,
		"client_id": guest.ID,
		"paid":      order.Paid.String(),
	}).Info("cart confirmed")

	s.sendConfirmation(ctx, guest, order)
	events.Emit(ctx, s.publisher, s.log, events.OrderConfirmed, events.OrderEvent{
		OrderID:    order.ID,
		ClientID:   order.ClientID,
		Paid:       order.Paid.StringFixed(2),
		OccurredAt: s.now().UTC(),
	})
	return order, nil
}

func (s *Service) sendConfirmation(ctx context.Context, c *domain.Client, o *domain.Order) {
	subject := fmt.Sprintf("Booking confirmed: order #%d", o.ID)
	body := fmt.Sprintf("Your order #%d is confirmed. Amount paid: %s.", o.ID, o.Paid.StringFixed(2))
	if err := s.notifier.Send(ctx, c.Email, subject, body); err != nil {
		s.log.WithError(err).WithField("order_id", o.ID).Warn("order confirmation not sent")
	}
}

// CleanCarts deletes carts older than the TTL together with their bookings.
func (s *Service) CleanCarts(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.ttl)
	var removed int64
	err := s.store.WithTransaction(ctx, func(tx *repository.Store) error {
		ids, err := tx.Orders.ExpiredCartIDs(ctx, cutoff)
		if err != nil || len(ids) == 0 {
			return err
		}
		bookings, err := tx.Bookings.DeleteByOrders(ctx, ids)
		if err != nil {
			return err
		}
		removed, err = tx.Orders.DeleteByIDs(ctx, ids)
		if err != nil {
			return err
		}
		s.log.WithFields(logrus.Fields{"carts": removed, "bookings": bookings}).Info("expired carts removed")
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
