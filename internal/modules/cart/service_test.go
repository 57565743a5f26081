package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotelcore/internal/domain"
	"hotelcore/internal/modules/client"
	"hotelcore/internal/modules/pricing"
	"hotelcore/internal/pkg/events"
	"hotelcore/internal/pkg/identity"
	"hotelcore/internal/repository"
	"hotelcore/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, body string) error {
	return m.Called(ctx, to, subject, body).Error(0)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	return m.Called(ctx, routingKey, payload).Error(0)
}

var t0 = time.Date(2030, 6, 1, 9, 0, 0, 0, time.UTC)

type env struct {
	db       *gorm.DB
	svc      *Service
	fx       testutil.Fixture
	notifier *mockNotifier
	pub      *mockPublisher
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	store := repository.NewStore(db)
	log := testutil.QuietLogger()
	e := &env{
		db:       db,
		fx:       testutil.SeedCategory(t, db, "100", 20, 50, 2),
		notifier: new(mockNotifier),
		pub:      new(mockPublisher),
	}
	e.svc = NewService(Deps{
		Store:     store,
		Pricing:   pricing.NewService(store, log),
		Clients:   client.NewService(store, identity.NewBcryptHasher(4), log),
		Notifier:  e.notifier,
		Publisher: e.pub,
		Log:       log,
		TTL:       24 * time.Hour,
	})
	e.svc.now = func() time.Time { return t0 }
	return e
}

func (e *env) cartWithStay(t *testing.T) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	cart, err := e.svc.CreateCart(ctx)
	require.NoError(t, err)
	_, err = e.svc.AddBooking(ctx, *cart.CartUUID, e.fx.Category.ID, testutil.Date(2030, 7, 1), testutil.Date(2030, 7, 3))
	require.NoError(t, err)
	return *cart.CartUUID
}

func (e *env) count(t *testing.T, model any, query string, args ...any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(model).Where(query, args...).Count(&n).Error)
	return n
}

func TestAddBooking_AndView(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.cartWithStay(t)

	_, err := e.svc.AddBooking(ctx, id, e.fx.Category.ID, testutil.Date(2030, 7, 2), testutil.Date(2030, 7, 4))
	require.NoError(t, err)

	view, err := e.svc.GetByUUID(ctx, id)
	require.NoError(t, err)
	require.Len(t, view.Bookings, 2)
	assert.NotEqual(t, view.Bookings[0].RoomID, view.Bookings[1].RoomID)
	assert.Equal(t, "400", view.Price.String())
	assert.Equal(t, "80", view.Prepayment.String())

	_, err = e.svc.AddBooking(ctx, id, e.fx.Category.ID, testutil.Date(2030, 7, 2), testutil.Date(2030, 7, 3))
	assert.ErrorIs(t, err, domain.ErrNoRoomAvailable)

	_, err = e.svc.AddBooking(ctx, uuid.New(), e.fx.Category.ID, testutil.Date(2030, 8, 1), testutil.Date(2030, 8, 2))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemoveBooking(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	id := e.cartWithStay(t)
	view, err := e.svc.GetByUUID(ctx, id)
	require.NoError(t, err)

	require.NoError(t, e.svc.RemoveBooking(ctx, id, view.Bookings[0].ID))
	assert.ErrorIs(t, e.svc.RemoveBooking(ctx, id, view.Bookings[0].ID), domain.ErrNotFound)
}

func TestConfirmCart_Prepayment(t *testing.T) {
	e := newEnv(t)
	e.notifier.On("Send", mock.Anything, "guest@example.com", mock.Anything, mock.Anything).Return(nil).Once()
	e.pub.On("Publish", mock.Anything, events.OrderConfirmed, mock.Anything).Return(nil).Once()
	id := e.cartWithStay(t)

	order, err := e.svc.ConfirmCart(context.Background(), id, "Guest@Example.com", false, " late arrival ")
	require.NoError(t, err)

	assert.Equal(t, domain.KindOrder, order.Kind)
	assert.Equal(t, "40", order.Paid.String())
	assert.Equal(t, "late arrival", order.Comment)
	assert.NotNil(t, order.DateFullPrepayment)
	assert.Nil(t, order.DateFullPaid)
	require.NotNil(t, order.ClientID)

	var bookings []domain.Booking
	require.NoError(t, e.db.Where("order_id = ?", order.ID).Find(&bookings).Error)
	require.Len(t, bookings, 1)
	assert.True(t, bookings[0].IsPrepaymentPaid)
	assert.False(t, bookings[0].IsPaid)

	assert.Zero(t, e.count(t, &domain.Order{}, "kind = ?", domain.KindCart), "cart row is removed")
	e.notifier.AssertExpectations(t)
	e.pub.AssertExpectations(t)
}

func TestConfirmCart_FullyPaidReusesClient(t *testing.T) {
	e := newEnv(t)
	e.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	e.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	first, err := e.svc.ConfirmCart(ctx, e.cartWithStay(t), "guest@example.com", true, "")
	require.NoError(t, err)
	assert.Equal(t, "200", first.Paid.String())
	assert.NotNil(t, first.DateFullPaid)
	assert.Zero(t, e.count(t, &domain.Booking{}, "order_id = ? AND is_paid = ?", first.ID, false))

	second, err := e.svc.ConfirmCart(ctx, e.cartWithStay(t), "guest@example.com", true, "")
	require.NoError(t, err)
	assert.Equal(t, *first.ClientID, *second.ClientID)
	assert.Equal(t, int64(1), e.count(t, &domain.Client{}, "1 = 1"))
}

func TestConfirmCart_RollsBackOnInvalidEmail(t *testing.T) {
	e := newEnv(t)
	id := e.cartWithStay(t)

	_, err := e.svc.ConfirmCart(context.Background(), id, "not-an-email", false, "")
	require.ErrorIs(t, err, domain.ErrValidation)

	assert.Equal(t, int64(1), e.count(t, &domain.Order{}, "kind = ?", domain.KindCart))
	assert.Zero(t, e.count(t, &domain.Order{}, "kind = ?", domain.KindOrder))
	assert.Zero(t, e.count(t, &domain.Client{}, "1 = 1"))

	view, err := e.svc.GetByUUID(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, view.Bookings, 1)
	e.notifier.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	e.pub.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything, mock.Anything)
}

func TestConfirmCart_EmptyAndMissing(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	cart, err := e.svc.CreateCart(ctx)
	require.NoError(t, err)

	_, err = e.svc.ConfirmCart(ctx, *cart.CartUUID, "guest@example.com", false, "")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, int64(1), e.count(t, &domain.Order{}, "kind = ?", domain.KindCart))

	_, err = e.svc.ConfirmCart(ctx, uuid.New(), "guest@example.com", false, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfirmCart_NotificationFailureIsIgnored(t *testing.T) {
	e := newEnv(t)
	e.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	e.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("broker down"))
	id := e.cartWithStay(t)

	order, err := e.svc.ConfirmCart(context.Background(), id, "guest@example.com", false, "")
	require.NoError(t, err)
	assert.NotZero(t, order.ID)

	// the cart is gone, so a second confirm cannot create another order
	_, err = e.svc.ConfirmCart(context.Background(), id, "guest@example.com", false, "")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCleanCarts_Expiry(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.cartWithStay(t)

	removed, err := e.svc.CleanCarts(ctx, t0.Add(23*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Equal(t, int64(1), e.count(t, &domain.Booking{}, "1 = 1"))

	removed, err = e.svc.CleanCarts(ctx, t0.Add(25*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
	assert.Zero(t, e.count(t, &domain.Booking{}, "1 = 1"))
	assert.Zero(t, e.count(t, &domain.Order{}, "1 = 1"))

	removed, err = e.svc.CleanCarts(ctx, t0.Add(26*time.Hour))
	require.NoError(t, err)
	assert.Zero(t, removed)
}

func TestCleanCarts_LeavesOrders(t *testing.T) {
	e := newEnv(t)
	e.notifier.On("Send", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	e.pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	ctx := context.Background()

	order, err := e.svc.ConfirmCart(ctx, e.cartWithStay(t), "guest@example.com", false, "")
	require.NoError(t, err)

	_, err = e.svc.CleanCarts(ctx, t0.Add(72*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), e.count(t, &domain.Order{}, "id = ?", order.ID))
	assert.Equal(t, int64(1), e.count(t, &domain.Booking{}, "order_id = ?", order.ID))
}
