package repository

import (
	"context"
	"time"

	"hotelcore/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

func (r *OrderRepository) Create(ctx context.Context, o *domain.Order) error {
	return translateError(r.db.WithContext(ctx).Omit(clause.Associations).Create(o).Error)
}

// GetByID loads an aggregate of either kind.
func (r *OrderRepository) GetByID(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&o).Error; err != nil {
		return nil, notFound(err, "order", id)
	}
	return &o, nil
}

// GetForUpdate locks an aggregate row of either kind.
func (r *OrderRepository) GetForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return &o, nil
}

// GetOrderForUpdate loads a confirmed order and locks its row.
func (r *OrderRepository) GetOrderForUpdate(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ? AND kind = ?", id, domain.KindOrder).
		First(&o).Error
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return &o, nil
}

// GetWithBookings loads an order or cart together with its bookings and client.
func (r *OrderRepository) GetWithBookings(ctx context.Context, id int64) (*domain.Order, error) {
	var o domain.Order
	err := r.db.WithContext(ctx).
		Preload("Client").
		Preload("Bookings", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC, id ASC") }).
		Where("id = ?", id).
		First(&o).Error
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	return &o, nil
}

// ListByClient returns the confirmed orders of a client, newest first.
func (r *OrderRepository) ListByClient(ctx context.Context, clientID int64) ([]domain.Order, error) {
	var out []domain.Order
	err := r.db.WithContext(ctx).
		Preload("Bookings", func(db *gorm.DB) *gorm.DB { return db.Order("start_date ASC, id ASC") }).
		Where("client_id = ? AND kind = ?", clientID, domain.KindOrder).
		Order("created_at DESC, id DESC").
		Find(&out).Error
	return out, translateError(err)
}

func (r *OrderRepository) GetCartByUUID(ctx context.Context, id uuid.UUID, forUpdate bool) (*domain.Order, error) {
	var o domain.Order
	q := r.db.WithContext(ctx)
	if forUpdate {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.Where("cart_uuid = ? AND kind = ?", id.String(), domain.KindCart).First(&o).Error
	if err != nil {
		return nil, notFound(err, "cart", id)
	}
	return &o, nil
}

// Totals derives price and prepayment from the aggregate's current bookings.
func (r *OrderRepository) Totals(ctx context.Context, id int64) (domain.Totals, error) {
	var bookings []domain.Booking
	err := r.db.WithContext(ctx).
		Select("id", "price", "prepayment", "refund", "is_paid", "is_canceled").
		Where("order_id = ?", id).
		Find(&bookings).Error
	if err != nil {
		return domain.Totals{}, translateError(err)
	}
	return domain.SumTotals(bookings), nil
}

// SavePayment persists the money and payment-date fields of an order.
func (r *OrderRepository) SavePayment(ctx context.Context, o *domain.Order) error {
	return r.update(ctx, o.ID, map[string]any{
		"paid":                 o.Paid,
		"refunded":             o.Refunded,
		"date_full_prepayment": o.DateFullPrepayment,
		"date_full_paid":       o.DateFullPaid,
	})
}

// SaveLifecycle persists the finished/canceled dates of an order.
func (r *OrderRepository) SaveLifecycle(ctx context.Context, o *domain.Order) error {
	return r.update(ctx, o.ID, map[string]any{
		"date_finished": o.DateFinished,
		"date_canceled": o.DateCanceled,
	})
}

func (r *OrderRepository) update(ctx context.Context, id int64, changes map[string]any) error {
	changes["updated_at"] = time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&domain.Order{}).Where("id = ?", id).Updates(changes)
	if res.Error != nil {
		return translateError(res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "order", id)
	}
	return nil
}

func (r *OrderRepository) Delete(ctx context.Context, id int64) error {
	return translateError(r.db.WithContext(ctx).Delete(&domain.Order{}, id).Error)
}

// FinishCandidates lists unfinished orders, canceled ones included, none of
// whose bookings ends after now. Price is checked by the caller.
func (r *OrderRepository) FinishCandidates(ctx context.Context, now time.Time) ([]int64, error) {
	future := r.db.Model(&domain.Booking{}).Select("order_id").Where("end_date > ?", now)
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("kind = ? AND date_finished IS NULL", domain.KindOrder).
		Where("id NOT IN (?)", future).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, translateError(err)
}

// ExpiredCartIDs lists carts created strictly before cutoff.
func (r *OrderRepository) ExpiredCartIDs(ctx context.Context, cutoff time.Time) ([]int64, error) {
	var ids []int64
	err := r.db.WithContext(ctx).Model(&domain.Order{}).
		Where("kind = ? AND created_at < ?", domain.KindCart, cutoff).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, translateError(err)
}

func (r *OrderRepository) DeleteByIDs(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&domain.Order{})
	return res.RowsAffected, translateError(res.Error)
}
