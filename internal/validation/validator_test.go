package validation

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type movieBody struct {
	Title string           `json:"title" validate:"required,min=5,max=50"`
	Rate  *decimal.Decimal `json:"dailyRentalRate" validate:"omitempty,gte=0,lte=10"`
	Stock *int             `json:"numberInStock" validate:"required,gte=0,lte=50"`
}

func ptr[T any](v T) *T { return &v }

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(&movieBody{Title: "Casablanca", Rate: ptr(decimal.RequireFromString("9.99")), Stock: ptr(0)})
	assert.NoError(t, err)
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	v := New()
	err := v.Validate(&movieBody{Title: "Up", Rate: ptr(decimal.NewFromInt(11)), Stock: ptr(51)})
	require.Error(t, err)

	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.Contains(t, verr.Message, "title must be at least 5 characters")
	assert.Contains(t, verr.Message, "dailyRentalRate must be <= 10")
	assert.Contains(t, verr.Message, "numberInStock must be <= 50")
}

func TestValidate_NegativeRate(t *testing.T) {
	v := New()
	err := v.Validate(&movieBody{Title: "Casablanca", Rate: ptr(decimal.RequireFromString("-0.5")), Stock: ptr(1)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dailyRentalRate must be >= 0")
}
