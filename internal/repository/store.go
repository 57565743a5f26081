package repository

import (
	"context"
	"database/sql"
	"errors"

	"hotelcore/internal/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const DefaultRetryAttempts = 3

// Store groups the typed repositories over one *gorm.DB. A Store obtained
// inside WithTransaction is bound to that transaction; every repository on it
// reads and writes through the same tx.
type Store struct {
	db            *gorm.DB
	inTx          bool
	retryAttempts int

	Categories *CategoryRepository
	Rooms      *RoomRepository
	Discounts  *DiscountRepository
	Bookings   *BookingRepository
	Orders     *OrderRepository
	Clients    *ClientRepository
	Tags       *TagRepository
	Photos     *PhotoRepository
}

func NewStore(db *gorm.DB) *Store {
	return newStore(db, false, DefaultRetryAttempts)
}

func newStore(db *gorm.DB, inTx bool, retryAttempts int) *Store {
	return &Store{
		db:            db,
		inTx:          inTx,
		retryAttempts: retryAttempts,
		Categories:    NewCategoryRepository(db),
		Rooms:         NewRoomRepository(db),
		Discounts:     NewDiscountRepository(db),
		Bookings:      NewBookingRepository(db),
		Orders:        NewOrderRepository(db),
		Clients:       NewClientRepository(db),
		Tags:          NewTagRepository(db),
		Photos:        NewPhotoRepository(db),
	}
}

// SetRetryAttempts bounds how many times WithRetry runs a unit of work.
func (s *Store) SetRetryAttempts(n int) {
	if n < 1 {
		n = 1
	}
	s.retryAttempts = n
}

func (s *Store) DB() *gorm.DB { return s.db }

// Dialect is the gorm dialector name: "postgres", "mysql" or "sqlite".
func (s *Store) Dialect() string { return s.db.Dialector.Name() }

type txConfig struct {
	serializable bool
}

type TxOption func(*txConfig)

// Serializable runs the transaction at SERIALIZABLE isolation on PostgreSQL.
// Other dialects keep their default, SQLite already serializes writers.
func Serializable() TxOption {
	return func(c *txConfig) { c.serializable = true }
}

// WithTransaction runs fn as one unit of work. It commits when fn returns nil
// and rolls back on error or panic. Called on a tx-bound Store it joins the
// outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(tx *Store) error, opts ...TxOption) error {
	if s.inTx {
		return fn(s)
	}

	var cfg txConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	var sqlOpts []*sql.TxOptions
	if cfg.serializable && s.Dialect() == "postgres" {
		sqlOpts = append(sqlOpts, &sql.TxOptions{Isolation: sql.LevelSerializable})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(newStore(tx, true, s.retryAttempts))
	}, sqlOpts...)
	return translateError(err)
}

// WithRetry is WithTransaction that re-runs the whole unit of work when it
// fails with domain.ErrConcurrency. Cancellation and timeouts are not retried.
func (s *Store) WithRetry(ctx context.Context, fn func(tx *Store) error, opts ...TxOption) error {
	if s.inTx {
		return fn(s)
	}

	var err error
	for attempt := 0; attempt < s.retryAttempts; attempt++ {
		err = s.WithTransaction(ctx, fn, opts...)
		if err == nil || !errors.Is(err, domain.ErrConcurrency) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (s *Store) Save(ctx context.Context, value any) error {
	return translateError(s.db.WithContext(ctx).Omit(clause.Associations).Save(value).Error)
}

func (s *Store) Delete(ctx context.Context, value any) error {
	return translateError(s.db.WithContext(ctx).Delete(value).Error)
}

// UpdateWhere applies changes to every row of model's table matching query.
func (s *Store) UpdateWhere(ctx context.Context, model any, changes map[string]any, query any, args ...any) (int64, error) {
	res := s.db.WithContext(ctx).Model(model).Where(query, args...).Updates(changes)
	return res.RowsAffected, translateError(res.Error)
}

// DeleteWhere hard-deletes every row of model's table matching query.
func (s *Store) DeleteWhere(ctx context.Context, model any, query any, args ...any) (int64, error) {
	res := s.db.WithContext(ctx).Where(query, args...).Delete(model)
	return res.RowsAffected, translateError(res.Error)
}
