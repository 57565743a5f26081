package pricing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/modules/availability"
	"hotelcore/internal/modules/payment"
	"hotelcore/internal/repository"

	"github.com/sirupsen/logrus"
)

type Service struct {
	store *repository.Store
	log   *logrus.Logger
	now   func() time.Time
}

func NewService(store *repository.Store, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
		log.SetOutput(io.Discard)
	}
	return &Service{store: store, log: log, now: time.Now}
}

// AssignAndPrice picks a free room for the booking, prices it and saves it,
// all in one transaction. categoryID nil keeps the category of the booking's
// current room. When the owner is an order its payment state is reconciled.
func (s *Service) AssignAndPrice(ctx context.Context, b *domain.Booking, categoryID *int64) (*domain.Booking, error) {
	isNew := b.ID == 0
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		if isNew {
			b.ID = 0
		}
		return s.Assign(ctx, tx, b, categoryID)
	}, repository.Serializable())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"booking_id": b.ID,
		"room_id":    b.RoomID,
		"order_id":   b.OrderID,
		"price":      b.Price.String(),
	}).Info("booking assigned")
	return b, nil
}

// Assign is AssignAndPrice inside a transaction the caller already holds.
func (s *Service) Assign(ctx context.Context, tx *repository.Store, b *domain.Booking, categoryID *int64) error {
	if err := domain.ValidateBookingDates(b); err != nil {
		return err
	}

	owner, err := tx.Orders.GetForUpdate(ctx, b.OrderID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("%w: booking owner %d does not exist", domain.ErrInvalidState, b.OrderID)
		}
		return err
	}
	if owner.IsFinished() || owner.IsCanceled() {
		return fmt.Errorf("%w: order %d is finished or canceled", domain.ErrInvalidState, owner.ID)
	}

	catID, err := s.resolveCategory(ctx, tx, b, categoryID)
	if err != nil {
		return err
	}
	// Serializes assignments within the category until commit.
	category, err := tx.Categories.GetForUpdate(ctx, catID)
	if err != nil {
		return err
	}

	roomID, err := availability.NewResolver(tx).PickRoom(ctx, category.ID, b.Start, b.End, b.ID)
	if err != nil {
		return err
	}

	discounts, err := tx.Categories.Discounts(ctx, category.ID)
	if err != nil {
		return err
	}
	now := s.now()
	quote, err := Calculate(category, b.Start, b.End, discounts, now)
	if err != nil {
		return err
	}

	b.RoomID = roomID
	b.Room = nil
	quote.Apply(b)
	if err := tx.Bookings.Save(ctx, b); err != nil {
		return err
	}

	if owner.IsCart() {
		return nil
	}
	_, err = payment.Reconcile(ctx, tx, owner, now)
	return err
}

// Quote prices a stay without reserving anything.
func (s *Service) Quote(ctx context.Context, categoryID int64, start, end time.Time) (Quote, error) {
	start, end = domain.Day(start), domain.Day(end)
	category, err := s.store.Categories.GetByID(ctx, categoryID)
	if err != nil {
		return Quote{}, err
	}
	discounts, err := s.store.Categories.Discounts(ctx, categoryID)
	if err != nil {
		return Quote{}, err
	}
	return Calculate(category, start, end, discounts, s.now())
}

func (s *Service) resolveCategory(ctx context.Context, tx *repository.Store, b *domain.Booking, categoryID *int64) (int64, error) {
	if categoryID != nil {
		return *categoryID, nil
	}
	if b.RoomID == 0 {
		return 0, domain.InvalidField("category_id", "required for a booking without a room")
	}
	room, err := tx.Rooms.GetByID(ctx, b.RoomID)
	if err != nil {
		return 0, err
	}
	return room.CategoryID, nil
}

// Reschedule moves an existing booking to new dates and optionally another
// category, re-picking the room and re-pricing it.
func (s *Service) Reschedule(ctx context.Context, bookingID int64, start, end time.Time, categoryID *int64) (*domain.Booking, error) {
	var b *domain.Booking
	err := s.store.WithRetry(ctx, func(tx *repository.Store) error {
		current, err := tx.Bookings.GetForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if current.IsCanceled {
			return fmt.Errorf("%w: booking %d is canceled", domain.ErrInvalidState, bookingID)
		}
		current.Start, current.End = start, end
		b = current
		return s.Assign(ctx, tx, b, categoryID)
	}, repository.Serializable())
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"booking_id": b.ID, "room_id": b.RoomID}).Info("booking rescheduled")
	return b, nil
}
