package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name    string  `json:"name" validate:"required"`
	Percent float64 `json:"percent" validate:"gte=0,lte=100"`
	Hidden  int     `json:"-" validate:"gte=1"`
}

func TestValidate_OK(t *testing.T) {
	assert.Nil(t, Validate(sample{Name: "x", Percent: 50, Hidden: 1}))
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	fields := Validate(sample{Percent: 120})

	assert.Equal(t, "required", fields["name"])
	assert.Equal(t, "lte=100", fields["percent"])
	assert.Equal(t, "gte=1", fields["Hidden"])
}
