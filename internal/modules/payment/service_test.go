package payment

import (
	"context"
	"testing"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/pkg/events"
	"hotelcore/internal/repository"
	"hotelcore/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	args := m.Called(ctx, routingKey, payload)
	return args.Error(0)
}

var fixedNow = time.Date(2030, 6, 10, 12, 0, 0, 0, time.UTC)

type env struct {
	db    *gorm.DB
	store *repository.Store
	svc   *Service
	fx    testutil.Fixture
}

func newEnv(t *testing.T, pub events.Publisher) *env {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	svc := NewService(store, pub, testutil.QuietLogger())
	svc.now = func() time.Time { return fixedNow }
	return &env{db: db, store: store, svc: svc, fx: testutil.SeedCategory(t, db, "100", 20, 50, 4)}
}

func (e *env) booking(t *testing.T, orderID int64, room int, start, end time.Time, price, prepayment string, mutate func(*domain.Booking)) *domain.Booking {
	t.Helper()
	b := domain.Booking{
		Start: start, End: end,
		RoomID: e.fx.Rooms[room].ID, OrderID: orderID,
		Price:      decimal.RequireFromString(price),
		Prepayment: decimal.RequireFromString(prepayment),
		Refund:     decimal.RequireFromString(price).Div(decimal.NewFromInt(2)),
	}
	if mutate != nil {
		mutate(&b)
	}
	return testutil.SeedBooking(t, e.db, b)
}

func (e *env) reload(t *testing.T, b *domain.Booking) domain.Booking {
	t.Helper()
	var got domain.Booking
	require.NoError(t, e.db.First(&got, b.ID).Error)
	return got
}

func TestSetPaid_ReconciliationScenario(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := testutil.SeedOrder(t, e.db)
	b := e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 11), "1000", "200", nil)

	o, err := e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(200))
	require.NoError(t, err)
	got := e.reload(t, b)
	assert.True(t, got.IsPrepaymentPaid)
	assert.False(t, got.IsPaid)
	assert.NotNil(t, o.DateFullPrepayment)
	assert.Nil(t, o.DateFullPaid)

	o, err = e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(1000))
	require.NoError(t, err)
	got = e.reload(t, b)
	assert.True(t, got.IsPaid)
	assert.NotNil(t, o.DateFullPaid)

	o, err = e.svc.SetPaid(ctx, order.ID, decimal.Zero)
	require.NoError(t, err)
	got = e.reload(t, b)
	assert.False(t, got.IsPaid)
	assert.False(t, got.IsPrepaymentPaid)
	assert.Nil(t, o.DateFullPaid)
	assert.Nil(t, o.DateFullPrepayment)

	var stored domain.Order
	require.NoError(t, e.db.First(&stored, order.ID).Error)
	assert.True(t, stored.Paid.IsZero())
	assert.Nil(t, stored.DateFullPrepayment)
}

func TestSetPaid_BelowPriceClearsPaidFlag(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := testutil.SeedOrder(t, e.db)
	// prepayment 0 so rule 2 and 3 cannot fire
	b := e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "0", nil)

	_, err := e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.True(t, e.reload(t, b).IsPaid)

	o, err := e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(50))
	require.NoError(t, err)
	assert.False(t, e.reload(t, b).IsPaid)
	assert.Nil(t, o.DateFullPaid)
}

func TestSetPaid_KeepsFirstStamp(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := testutil.SeedOrder(t, e.db)
	e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20", nil)

	first, err := e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	stamp := *first.DateFullPaid

	e.svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	second, err := e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(120))
	require.NoError(t, err)
	assert.True(t, stamp.Equal(*second.DateFullPaid))
}

func TestSetPaid_Validation(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := testutil.SeedOrder(t, e.db)
	e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20", nil)

	_, err := e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	_, err = e.svc.Refund(ctx, order.ID, decimal.NewFromInt(40))
	require.NoError(t, err)

	_, err = e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(30))
	assert.ErrorIs(t, err, domain.ErrValidation, "paid must stay >= refunded")

	_, err = e.svc.SetPaid(ctx, 9999, decimal.NewFromInt(1))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetPaid_RoundsToCents(t *testing.T) {
	e := newEnv(t, nil)
	order := testutil.SeedOrder(t, e.db)
	e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20", nil)

	o, err := e.svc.SetPaid(context.Background(), order.ID, decimal.RequireFromString("33.335"))
	require.NoError(t, err)
	assert.Equal(t, "33.34", o.Paid.StringFixed(2))
}

func TestRefund(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := testutil.SeedOrder(t, e.db)
	e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20", nil)
	_, err := e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(80))
	require.NoError(t, err)

	_, err = e.svc.Refund(ctx, order.ID, decimal.NewFromInt(81))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = e.svc.Refund(ctx, order.ID, decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, domain.ErrValidation)

	o, err := e.svc.Refund(ctx, order.ID, decimal.NewFromInt(80))
	require.NoError(t, err)
	assert.Equal(t, "80", o.Refunded.String())
}

func TestMarkPaid(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, events.OrderPaid, mock.Anything).Return(nil).Once()
	e := newEnv(t, pub)
	ctx := context.Background()
	order := testutil.SeedOrder(t, e.db)
	b1 := e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 3), "200", "40", nil)
	b2 := e.booking(t, order.ID, 1, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20", nil)

	o, err := e.svc.MarkPaid(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "300", o.Paid.String())
	assert.True(t, e.reload(t, b1).IsPaid)
	assert.True(t, e.reload(t, b2).IsPaid)
	stamp := *o.DateFullPaid

	// second call is a no-op and publishes nothing
	o, err = e.svc.MarkPaid(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stamp.Equal(*o.DateFullPaid))
	pub.AssertExpectations(t)
}

func TestMarkPaid_InvalidState(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	canceled := testutil.SeedOrder(t, e.db)
	require.NoError(t, e.db.Model(canceled).Update("date_canceled", fixedNow).Error)
	_, err := e.svc.MarkPaid(ctx, canceled.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)

	finished := testutil.SeedOrder(t, e.db)
	require.NoError(t, e.db.Model(finished).Update("date_finished", fixedNow).Error)
	_, err = e.svc.MarkPaid(ctx, finished.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidState)
}

func TestCancelOrder_SplitsBookings(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, events.OrderCanceled, mock.Anything).Return(nil).Once()
	e := newEnv(t, pub)
	ctx := context.Background()
	order := testutil.SeedOrder(t, e.db)

	paid := e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20",
		func(b *domain.Booking) { b.IsPaid = true })
	prepaid := e.booking(t, order.ID, 1, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20",
		func(b *domain.Booking) { b.IsPrepaymentPaid = true })
	unpaid := e.booking(t, order.ID, 2, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20", nil)

	o, err := e.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	require.NotNil(t, o.DateCanceled)
	assert.Nil(t, o.DateFinished)

	assert.True(t, e.reload(t, paid).IsCanceled)
	assert.True(t, e.reload(t, prepaid).IsCanceled)
	err = e.db.First(&domain.Booking{}, unpaid.ID).Error
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	stamp := *o.DateCanceled
	e.svc.now = func() time.Time { return fixedNow.Add(time.Hour) }
	again, err := e.svc.CancelOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.True(t, stamp.Equal(*again.DateCanceled), "second cancel is a no-op")
	pub.AssertExpectations(t)
}

func TestCancelBooking(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := testutil.SeedOrder(t, e.db)

	unpaid := e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20", nil)
	paid := e.booking(t, order.ID, 1, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20", nil)
	_, err := e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(200))
	require.NoError(t, err)
	require.NoError(t, e.db.Model(&domain.Booking{}).Where("id = ?", unpaid.ID).Update("is_paid", false).Error)

	deleted, err := e.svc.CancelBooking(ctx, unpaid.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = e.svc.CancelBooking(ctx, paid.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.True(t, e.reload(t, paid).IsCanceled)

	// canceled and paid contributes price - refund
	totals, err := e.store.Orders.Totals(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "50", totals.Price.String())

	_, err = e.svc.CancelBooking(ctx, 4242)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestFinishOrders(t *testing.T) {
	pub := new(mockPublisher)
	pub.On("Publish", mock.Anything, events.OrderFinished, mock.Anything).Return(nil)
	e := newEnv(t, pub)
	ctx := context.Background()
	past1, past2 := testutil.Date(2030, 6, 1), testutil.Date(2030, 6, 3)

	paidOrder := testutil.SeedOrder(t, e.db)
	e.booking(t, paidOrder.ID, 0, past1, past2, "200", "40", func(b *domain.Booking) { b.IsPaid = true })

	prepaidOrder := testutil.SeedOrder(t, e.db)
	prepaid := e.booking(t, prepaidOrder.ID, 1, past1, past2, "200", "40", func(b *domain.Booking) { b.IsPrepaymentPaid = true })

	unpaidOrder := testutil.SeedOrder(t, e.db)
	unpaid := e.booking(t, unpaidOrder.ID, 2, past1, past2, "200", "40", nil)

	futureOrder := testutil.SeedOrder(t, e.db)
	e.booking(t, futureOrder.ID, 3, past1, testutil.Date(2030, 6, 20), "200", "40", func(b *domain.Booking) { b.IsPaid = true })

	cart := &domain.Order{Kind: domain.KindCart}
	require.NoError(t, e.db.Create(cart).Error)
	cartBooking := e.booking(t, cart.ID, 0, testutil.Date(2030, 5, 1), testutil.Date(2030, 5, 2), "100", "20", nil)

	report, err := e.svc.FinishOrders(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, FinishReport{CanceledBookings: 1, DeletedBookings: 2, FinishedOrders: 2}, report)

	assert.True(t, e.reload(t, prepaid).IsCanceled)
	assert.ErrorIs(t, e.db.First(&domain.Booking{}, unpaid.ID).Error, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, e.db.First(&domain.Booking{}, cartBooking.ID).Error, gorm.ErrRecordNotFound, "ended cart bookings go too")
	assert.NoError(t, e.db.First(&domain.Order{}, cart.ID).Error, "the cart itself is left to cart cleanup")

	for id, want := range map[int64]bool{
		paidOrder.ID:    true,
		prepaidOrder.ID: true,
		unpaidOrder.ID:  false,
		futureOrder.ID:  false,
	} {
		var o domain.Order
		require.NoError(t, e.db.First(&o, id).Error)
		assert.Equal(t, want, o.DateFinished != nil, "order %d", id)
	}

	again, err := e.svc.FinishOrders(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, FinishReport{}, again, "second run changes nothing")
	pub.AssertNumberOfCalls(t, "Publish", 2)
}

func TestFinishOrders_CanceledOrders(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()

	// a paid booking survives cancellation and keeps price - refund = 50
	paid := testutil.SeedOrder(t, e.db)
	e.booking(t, paid.ID, 0, testutil.Date(2030, 6, 1), testutil.Date(2030, 6, 2), "100", "20", func(b *domain.Booking) { b.IsPaid = true })
	_, err := e.svc.CancelOrder(ctx, paid.ID)
	require.NoError(t, err)

	// unpaid bookings are deleted on cancel, leaving nothing to finish
	unpaid := testutil.SeedOrder(t, e.db)
	e.booking(t, unpaid.ID, 1, testutil.Date(2030, 6, 1), testutil.Date(2030, 6, 2), "100", "20", nil)
	_, err = e.svc.CancelOrder(ctx, unpaid.ID)
	require.NoError(t, err)

	report, err := e.svc.FinishOrders(ctx, fixedNow)
	require.NoError(t, err)
	assert.EqualValues(t, 1, report.FinishedOrders)

	var got domain.Order
	require.NoError(t, e.db.First(&got, paid.ID).Error)
	require.NotNil(t, got.DateFinished)
	assert.WithinDuration(t, fixedNow, *got.DateFinished, time.Second)
	assert.NotNil(t, got.DateCanceled)

	require.NoError(t, e.db.First(&got, unpaid.ID).Error)
	assert.Nil(t, got.DateFinished)

	report, err = e.svc.FinishOrders(ctx, fixedNow)
	require.NoError(t, err)
	assert.Zero(t, report.FinishedOrders)
}

func TestGetOrder(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	order := testutil.SeedOrder(t, e.db)
	e.booking(t, order.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 2), "100", "20", nil)
	_, err := e.svc.SetPaid(ctx, order.ID, decimal.NewFromInt(30))
	require.NoError(t, err)

	view, err := e.svc.GetOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, "100", view.Price.String())
	assert.Equal(t, "70", view.LeftToPay.String())
	assert.True(t, view.LeftToRefund.IsZero())
	assert.Len(t, view.Bookings, 1)
}

func TestClientOrders(t *testing.T) {
	e := newEnv(t, nil)
	ctx := context.Background()
	guest := &domain.Client{Email: "guest@example.com"}
	require.NoError(t, e.db.Create(guest).Error)

	mine := testutil.SeedOrder(t, e.db)
	require.NoError(t, e.db.Model(mine).Update("client_id", guest.ID).Error)
	e.booking(t, mine.ID, 0, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 3), "200", "40", nil)
	other := testutil.SeedOrder(t, e.db)
	e.booking(t, other.ID, 1, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 3), "200", "40", nil)

	views, err := e.svc.ClientOrders(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, mine.ID, views[0].ID)
	assert.Equal(t, "200", views[0].Price.String())

	views, err = e.svc.ClientOrders(ctx, guest.ID+100)
	require.NoError(t, err)
	assert.Empty(t, views)
}
