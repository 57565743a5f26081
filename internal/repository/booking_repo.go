package repository

import (
	"context"
	"time"

	"hotelcore/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(b).Error)
}

func (r *BookingRepository) Save(ctx context.Context, b *domain.Booking) error {
	if b.ID == 0 {
		return r.Create(ctx, b)
	}
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Save(b).Error)
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&b).Error; err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &b, nil
}

func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Booking, error) {
	var b domain.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&b).Error
	if err != nil {
		return nil, notFound(err, "booking", id)
	}
	return &b, nil
}

func (r *BookingRepository) ListByOrder(ctx context.Context, orderID int64) ([]domain.Booking, error) {
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("start_date ASC, id ASC").
		Find(&out).Error
	return out, translateError(err)
}

// BusyRoomIDs returns which of roomIDs hold a non-canceled booking covering day.
// The booking excludeID (0 for none) is ignored.
func (r *BookingRepository) BusyRoomIDs(ctx context.Context, roomIDs []int64, day time.Time, excludeID int64) ([]int64, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	var busy []int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Distinct("room_id").
		Where("room_id IN ?", roomIDs).
		Where("is_canceled = ?", false).
		Where("start_date <= ? AND end_date > ?", day, day).
		Where("id <> ?", excludeID).
		Pluck("room_id", &busy).Error
	return busy, translateError(err)
}

// Overlapping returns non-canceled bookings of roomIDs intersecting [start, end).
func (r *BookingRepository) Overlapping(ctx context.Context, roomIDs []int64, start, end time.Time, excludeID int64) ([]domain.Booking, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	var out []domain.Booking
	err := r.db.WithContext(ctx).
		Select("id", "room_id", "start_date", "end_date").
		Where("room_id IN ?", roomIDs).
		Where("is_canceled = ?", false).
		Where("start_date < ? AND end_date > ?", end, start).
		Where("id <> ?", excludeID).
		Find(&out).Error
	return out, translateError(err)
}

func (r *BookingRepository) Delete(ctx context.Context, id int64) error {
	return translateError(r.db.WithContext(ctx).Delete(&domain.Booking{}, id).Error)
}

// UpdateForOrder applies changes to the order's bookings matching cond.
func (r *BookingRepository) UpdateForOrder(ctx context.Context, orderID int64, changes map[string]any, cond string, args ...any) (int64, error) {
	q := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("order_id = ?", orderID)
	if cond != "" {
		q = q.Where(cond, args...)
	}
	res := q.Updates(changes)
	return res.RowsAffected, translateError(res.Error)
}

// DeleteForOrder hard-deletes the order's bookings matching cond.
func (r *BookingRepository) DeleteForOrder(ctx context.Context, orderID int64, cond string, args ...any) (int64, error) {
	q := r.db.WithContext(ctx).Where("order_id = ?", orderID)
	if cond != "" {
		q = q.Where(cond, args...)
	}
	res := q.Delete(&domain.Booking{})
	return res.RowsAffected, translateError(res.Error)
}

// Reparent moves every booking of one aggregate to another.
func (r *BookingRepository) Reparent(ctx context.Context, fromOrderID, toOrderID int64) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("order_id = ?", fromOrderID).
		Update("order_id", toOrderID)
	return res.RowsAffected, translateError(res.Error)
}

// CancelEndedPrepaid flags ended, prepaid but not fully paid bookings as canceled.
func (r *BookingRepository) CancelEndedPrepaid(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("is_canceled = ? AND is_paid = ? AND is_prepayment_paid = ?", false, false, true).
		Where("end_date < ?", now).
		Update("is_canceled", true)
	return res.RowsAffected, translateError(res.Error)
}

// DeleteEndedUnpaid removes ended bookings that saw no payment at all, in
// carts and orders alike.
func (r *BookingRepository) DeleteEndedUnpaid(ctx context.Context, now time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("is_canceled = ? AND is_paid = ? AND is_prepayment_paid = ?", false, false, false).
		Where("end_date < ?", now).
		Delete(&domain.Booking{})
	return res.RowsAffected, translateError(res.Error)
}

func (r *BookingRepository) DeleteByOrders(ctx context.Context, orderIDs []int64) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("order_id IN ?", orderIDs).Delete(&domain.Booking{})
	return res.RowsAffected, translateError(res.Error)
}

func (r *BookingRepository) CountByOrder(ctx context.Context, orderID int64) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).Where("order_id = ?", orderID).Count(&n).Error
	return n, translateError(err)
}

// HasEndingAfter reports whether the order still has a booking ending after t.
func (r *BookingRepository) HasEndingAfter(ctx context.Context, orderID int64, t time.Time) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&domain.Booking{}).
		Where("order_id = ? AND end_date > ?", orderID, t).
		Count(&n).Error
	return n > 0, translateError(err)
}
