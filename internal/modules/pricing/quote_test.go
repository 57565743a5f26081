package pricing

import (
	"testing"
	"time"

	"hotelcore/internal/domain"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)

func category(price, prepayment, refund string) *domain.Category {
	return &domain.Category{
		ID:                1,
		Price:             decimal.RequireFromString(price),
		PrepaymentPercent: decimal.RequireFromString(prepayment),
		RefundPercent:     decimal.RequireFromString(refund),
	}
}

func discount(id int64, pct string, from, to time.Time) domain.Discount {
	return domain.Discount{ID: id, Percent: decimal.RequireFromString(pct), StartDate: from, EndDate: to}
}

func day(d int) time.Time { return time.Date(2030, 6, d, 0, 0, 0, 0, time.UTC) }

func TestCalculate_NoDiscount(t *testing.T) {
	q, err := Calculate(category("100", "20", "50"), day(10), day(13), nil, now)
	require.NoError(t, err)

	assert.Equal(t, 3, q.Nights)
	assert.Equal(t, "300", q.Base.String())
	assert.Equal(t, "300", q.Price.String())
	assert.Equal(t, "60", q.Prepayment.String())
	assert.Equal(t, "150", q.Refund.String())
	assert.Nil(t, q.DiscountID)
}

func TestCalculate_BestActiveDiscount(t *testing.T) {
	deleted := discount(4, "30", day(1), day(30))
	deletedAt := now
	deleted.DeletedAt = &deletedAt

	discounts := []domain.Discount{
		discount(1, "10", day(1), day(30)),
		discount(2, "25", day(1), day(30)),
		discount(3, "40", time.Date(2030, 5, 1, 0, 0, 0, 0, time.UTC), time.Date(2030, 5, 31, 0, 0, 0, 0, time.UTC)),
		deleted,
	}

	q, err := Calculate(category("100", "20", "50"), day(10), day(13), discounts, now)
	require.NoError(t, err)
	require.NotNil(t, q.DiscountID)
	assert.Equal(t, int64(2), *q.DiscountID)
	assert.Equal(t, "225", q.Price.String())
	assert.Equal(t, "45", q.Prepayment.String())
}

func TestCalculate_DiscountBoundsAreInclusive(t *testing.T) {
	d := discount(1, "10", now, now)
	q, err := Calculate(category("100", "0", "0"), day(10), day(11), []domain.Discount{d}, now)
	require.NoError(t, err)
	assert.Equal(t, "90", q.Price.String())
}

func TestBestDiscount_TieGoesToLowestID(t *testing.T) {
	discounts := []domain.Discount{
		discount(7, "15", day(1), day(30)),
		discount(3, "15", day(1), day(30)),
	}
	best := BestDiscount(discounts, now)
	require.NotNil(t, best)
	assert.Equal(t, int64(3), best.ID)

	assert.Nil(t, BestDiscount(nil, now))
}

func TestCalculate_RoundsOnlyTheResult(t *testing.T) {
	// price 10.01 at 50% off is 5.005; prepayment is taken from the exact value
	d := discount(1, "50", day(1), day(30))
	q, err := Calculate(category("10.01", "50", "0"), day(10), day(11), []domain.Discount{d}, now)
	require.NoError(t, err)

	assert.Equal(t, "5.01", q.Price.StringFixed(2))
	assert.Equal(t, "2.50", q.Prepayment.StringFixed(2))
}

func TestCalculate_Deterministic(t *testing.T) {
	cat := category("99.99", "33.3", "12.5")
	discounts := []domain.Discount{discount(1, "7.5", day(1), day(30))}

	first, err := Calculate(cat, day(2), day(9), discounts, now)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := Calculate(cat, day(2), day(9), discounts, now)
		require.NoError(t, err)
		assert.True(t, first.Price.Equal(again.Price))
		assert.True(t, first.Prepayment.Equal(again.Prepayment))
		assert.True(t, first.Refund.Equal(again.Refund))
	}
}

func TestCalculate_FractionalPercentsAreExact(t *testing.T) {
	d := discount(1, "33.33", day(1), day(30))
	q, err := Calculate(category("300", "33.33", "12.5"), day(10), day(11), []domain.Discount{d}, now)
	require.NoError(t, err)

	// 300 * (100 - 33.33) / 100 = 200.01
	assert.Equal(t, "200.01", q.Price.StringFixed(2))
	assert.Equal(t, "33.33", q.DiscountPercent.String())
	// 200.01 * 33.33% = 66.663333, 200.01 * 12.5% = 25.00125
	assert.Equal(t, "66.66", q.Prepayment.StringFixed(2))
	assert.Equal(t, "25.00", q.Refund.StringFixed(2))
}

func TestCalculate_RejectsEmptyStay(t *testing.T) {
	_, err := Calculate(category("100", "0", "0"), day(10), day(10), nil, now)
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = Calculate(category("100", "0", "0"), day(10), day(9), nil, now)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
