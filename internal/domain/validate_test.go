package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCategory() *Category {
	return &Category{
		Name: "Standard", Price: d("100"),
		PrepaymentPercent: d("20"), RefundPercent: d("50"),
		RoomsCount: 1, Floors: 1, Beds: 1, Square: 20,
	}
}

func TestValidateCategory(t *testing.T) {
	require.NoError(t, ValidateCategory(validCategory()))

	cases := map[string]func(c *Category){
		"name":       func(c *Category) { c.Name = "" },
		"price":      func(c *Category) { c.Price = d("0") },
		"prepayment": func(c *Category) { c.PrepaymentPercent = d("-1") },
		"refund":     func(c *Category) { c.RefundPercent = d("100.5") },
		"rooms":      func(c *Category) { c.RoomsCount = 0 },
		"floors":     func(c *Category) { c.Floors = 0 },
		"square":     func(c *Category) { c.Square = 19.9 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := validCategory()
			mutate(c)
			assert.ErrorIs(t, ValidateCategory(c), ErrValidation)
		})
	}
}

func TestValidateDiscount(t *testing.T) {
	ok := &Discount{Name: "Summer", Percent: d("15"), StartDate: day(2030, 6, 1), EndDate: day(2030, 8, 31)}
	require.NoError(t, ValidateDiscount(ok))

	for _, pct := range []string{"0", "100", "-5"} {
		bad := *ok
		bad.Percent = d(pct)
		assert.ErrorIs(t, ValidateDiscount(&bad), ErrValidation, pct)
	}

	fraction := *ok
	fraction.Percent = d("33.33")
	assert.NoError(t, ValidateDiscount(&fraction))

	backwards := *ok
	backwards.StartDate, backwards.EndDate = ok.EndDate, ok.StartDate
	assert.ErrorIs(t, ValidateDiscount(&backwards), ErrValidation)
}

func TestDiscountActiveAt(t *testing.T) {
	disc := &Discount{StartDate: day(2030, 6, 1), EndDate: day(2030, 6, 30)}
	assert.True(t, disc.ActiveAt(day(2030, 6, 1)))
	assert.True(t, disc.ActiveAt(day(2030, 6, 30)))
	assert.False(t, disc.ActiveAt(day(2030, 7, 1)))

	deleted := day(2030, 6, 2)
	disc.DeletedAt = &deleted
	assert.False(t, disc.ActiveAt(day(2030, 6, 10)))
}

func TestValidateClient_NormalizesEmail(t *testing.T) {
	c := &Client{Email: "  Guest@Example.COM "}
	require.NoError(t, ValidateClient(c))
	assert.Equal(t, "guest@example.com", c.Email)

	assert.ErrorIs(t, ValidateClient(&Client{Email: "no-at-sign"}), ErrValidation)
	assert.ErrorIs(t, ValidateClient(&Client{}), ErrValidation)
}

func TestValidateRoom(t *testing.T) {
	assert.NoError(t, ValidateRoom(&Room{CategoryID: 1}))
	assert.NoError(t, ValidateRoom(&Room{CategoryID: 1, RoomNumber: 12}))
	assert.ErrorIs(t, ValidateRoom(&Room{CategoryID: 1, RoomNumber: -1}), ErrValidation)
	assert.ErrorIs(t, ValidateRoom(&Room{RoomNumber: 3}), ErrValidation)
}

func TestErrors(t *testing.T) {
	assert.True(t, errors.Is(ErrNoRoomAvailable, ErrNotFound))

	err := &ValidationError{Message: "bad", Fields: map[string]string{"b": "2", "a": "1"}}
	assert.Equal(t, "validation error: bad (a=1, b=2)", err.Error())
	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, Invalidf("cart %d is empty", 3), ErrValidation)
}
