// Package availability answers which rooms of a category are free on which days.
package availability

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/repository"
)

// MaxRangeDays bounds the span accepted by BusyDates and the free-dates search filter.
const MaxRangeDays = 31

// Resolver reads through a Store. Build it over a tx-bound Store to make
// its answers part of that transaction.
type Resolver struct {
	store *repository.Store
}

func NewResolver(store *repository.Store) *Resolver {
	return &Resolver{store: store}
}

// PickRoom returns a room of the category that is free on every day in
// [start, end). Bookings that are canceled, or whose id is excludeBookingID,
// do not occupy rooms. When several rooms qualify the lowest id wins.
func (r *Resolver) PickRoom(ctx context.Context, categoryID int64, start, end time.Time, excludeBookingID int64) (int64, error) {
	start, end = domain.Day(start), domain.Day(end)
	if !start.Before(end) {
		return 0, domain.InvalidField("end", "must be after start")
	}

	candidates, err := r.store.Rooms.ActiveIDs(ctx, categoryID)
	if err != nil {
		return 0, err
	}
	if len(candidates) == 0 {
		return 0, fmt.Errorf("%w: category %d has no rooms", domain.ErrNoRoomAvailable, categoryID)
	}

	bookings, err := r.store.Bookings.Overlapping(ctx, candidates, start, end, excludeBookingID)
	if err != nil {
		return 0, err
	}

	free := make(map[int64]bool, len(candidates))
	for _, id := range candidates {
		free[id] = true
	}
	remaining := len(free)

	for _, day := range domain.DaysBetween(start, end) {
		for i := range bookings {
			b := &bookings[i]
			if free[b.RoomID] && b.Overlaps(day) {
				free[b.RoomID] = false
				remaining--
			}
		}
		if remaining == 0 {
			return 0, domain.ErrNoRoomAvailable
		}
	}

	for _, id := range candidates {
		if free[id] {
			return id, nil
		}
	}
	return 0, domain.ErrNoRoomAvailable
}

// HasFreeRoom reports whether PickRoom would succeed.
func (r *Resolver) HasFreeRoom(ctx context.Context, categoryID int64, start, end time.Time) (bool, error) {
	_, err := r.PickRoom(ctx, categoryID, start, end, 0)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, domain.ErrNoRoomAvailable):
		return false, nil
	default:
		return false, err
	}
}

// IsDayBusy is true when the category has no rooms or every room is
// occupied on day.
func (r *Resolver) IsDayBusy(ctx context.Context, categoryID int64, day time.Time) (bool, error) {
	rooms, err := r.store.Rooms.ActiveIDs(ctx, categoryID)
	if err != nil {
		return false, err
	}
	if len(rooms) == 0 {
		return true, nil
	}
	busy, err := r.store.Bookings.BusyRoomIDs(ctx, rooms, domain.Day(day), 0)
	if err != nil {
		return false, err
	}
	return len(busy) >= len(rooms), nil
}

// BusyDates lists the days in [from, to] on which no room of the category
// can be booked. Days before today are always busy.
func (r *Resolver) BusyDates(ctx context.Context, categoryID int64, from, to, today time.Time) ([]time.Time, error) {
	from, to, today = domain.Day(from), domain.Day(to), domain.Day(today)
	if to.Before(from) {
		return nil, domain.InvalidField("to", "must not be before from")
	}
	if domain.Nights(from, to) > MaxRangeDays {
		return nil, domain.InvalidField("to", fmt.Sprintf("range must not exceed %d days", MaxRangeDays))
	}

	days := domain.DaysBetween(from, to.AddDate(0, 0, 1))
	if to.Before(today) {
		return days, nil
	}

	busy := make([]time.Time, 0, len(days))
	for _, day := range days {
		if day.Before(today) {
			busy = append(busy, day)
			continue
		}
		isBusy, err := r.IsDayBusy(ctx, categoryID, day)
		if err != nil {
			return nil, err
		}
		if isBusy {
			busy = append(busy, day)
		}
	}
	return busy, nil
}
