package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name   string
		email  string
		expect bool
	}{
		{"valid simple", "user@example.com", true},
		{"valid with dots", "first.last@example.com", true},
		{"valid with plus", "user+tag@example.com", true},
		{"valid subdomain", "user@sub.domain.com", true},
		{"empty string", "", false},
		{"whitespace only", "   ", false},
		{"missing at sign", "userexample.com", false},
		{"missing domain", "user@", false},
		{"missing local part", "@example.com", false},
		{"no TLD", "user@example", false},
		{"with leading space trimmed", " user@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ValidateEmail(tt.email))
		})
	}
}

func TestValidatePhoneNumber(t *testing.T) {
	tests := []struct {
		name   string
		phone  string
		expect bool
	}{
		{"valid E.164 with plus", "+96895551234", true},
		{"valid without plus", "96895551234", true},
		{"valid short", "+1234", true},
		{"valid max length", "+123456789012345", true},
		{"leading zero", "0123456789", false},
		{"letters", "+96895ABC234", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, ValidatePhoneNumber(tt.phone))
		})
	}
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(23.588, 58.3829))
	assert.NoError(t, ValidateCoordinates(-90, -180))
	assert.NoError(t, ValidateCoordinates(90, 180))
	assert.Error(t, ValidateCoordinates(90.1, 0))
	assert.Error(t, ValidateCoordinates(0, 180.1))
	assert.Error(t, ValidateCoordinates(-91, -181))
}

func TestValidateAmount(t *testing.T) {
	assert.NoError(t, ValidateAmount(0))
	assert.NoError(t, ValidateAmount(99999.99))
	assert.Error(t, ValidateAmount(-0.01))
	assert.Error(t, ValidateAmount(100001))
}

func TestValidateCommissionRate(t *testing.T) {
	assert.NoError(t, ValidateCommissionRate(0))
	assert.NoError(t, ValidateCommissionRate(0.15))
	assert.NoError(t, ValidateCommissionRate(0.5))
	assert.Error(t, ValidateCommissionRate(-0.01))
	assert.Error(t, ValidateCommissionRate(0.51))
}

func TestValidateStringLength(t *testing.T) {
	assert.NoError(t, ValidateStringLength("shawarma", 1, 20))
	assert.Error(t, ValidateStringLength("", 1, 20))
	assert.Error(t, ValidateStringLength("  ", 1, 20))
	assert.Error(t, ValidateStringLength("too long for the limit", 1, 10))
	assert.NoError(t, ValidateStringLength("anything goes", 1, 0))
}

func TestValidateStruct_CustomTags(t *testing.T) {
	type probe struct {
		Latitude  float64 `validate:"latitude"`
		Longitude float64 `validate:"longitude"`
		Status    string  `validate:"order_status"`
		Method    string  `validate:"payment_method"`
		Role      string  `validate:"profile_role"`
		Rate      float64 `validate:"commission_rate"`
	}

	valid := probe{Latitude: 23.6, Longitude: 58.4, Status: "preparing", Method: "cash", Role: "provider", Rate: 0.12}
	assert.NoError(t, ValidateStruct(valid))

	invalid := probe{Latitude: 120, Longitude: 58.4, Status: "shipped", Method: "bitcoin", Role: "superuser", Rate: 0.9}
	err := ValidateStruct(invalid)
	require.Error(t, err)

	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.True(t, ve.HasErrors())
	assert.NotEmpty(t, ve.GetFieldError("latitude"))
	assert.NotEmpty(t, ve.GetFieldError("status"))
	assert.NotEmpty(t, ve.GetFieldError("method"))
	assert.NotEmpty(t, ve.GetFieldError("role"))
	assert.NotEmpty(t, ve.GetFieldError("rate"))
}

func TestValidationError_Error(t *testing.T) {
	ve := &ValidationError{
		Errors: map[string]string{
			"email": "email is required",
		},
	}
	assert.Equal(t, "email: email is required", ve.Error())
}

func TestValidationError_Error_MultipleFieldsSorted(t *testing.T) {
	ve := &ValidationError{
		Errors: map[string]string{
			"b_field": "second",
			"a_field": "first",
		},
	}
	assert.Equal(t, "a_field: first; b_field: second", ve.Error())
}

func TestValidationError_AddError_NilMap(t *testing.T) {
	ve := &ValidationError{Errors: nil}
	ve.AddError("field", "message")

	assert.NotNil(t, ve.Errors)
	assert.Equal(t, "message", ve.GetFieldError("field"))
}

func TestValidationError_HasErrors(t *testing.T) {
	ve := &ValidationError{Errors: make(map[string]string)}
	assert.False(t, ve.HasErrors())

	ve.AddError("x", "y")
	assert.True(t, ve.HasErrors())
}

func TestValidateBusinessHours(t *testing.T) {
	assert.NoError(t, ValidateBusinessHours("09:00", "23:00"))
	// overnight window
	assert.NoError(t, ValidateBusinessHours("18:00", "02:00"))
	assert.Error(t, ValidateBusinessHours("09:00", "09:00"))
	assert.Error(t, ValidateBusinessHours("9am", "23:00"))
	assert.Error(t, ValidateBusinessHours("09:00", "25:00"))
}

func TestValidateDateRange(t *testing.T) {
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7)

	assert.NoError(t, ValidateDateRange(start, end))
	assert.NoError(t, ValidateDateRange(start, start))
	assert.Error(t, ValidateDateRange(end, start))
}

func TestValidateDeliveryRadius(t *testing.T) {
	assert.NoError(t, ValidateDeliveryRadius(5))
	assert.NoError(t, ValidateDeliveryRadius(50))
	assert.Error(t, ValidateDeliveryRadius(0))
	assert.Error(t, ValidateDeliveryRadius(-1))
	assert.Error(t, ValidateDeliveryRadius(50.1))
}

func TestValidateOrderAmounts(t *testing.T) {
	assert.NoError(t, ValidateOrderAmounts(100, 10, 5, 105))
	assert.NoError(t, ValidateOrderAmounts(0, 0, 0, 0))

	err := ValidateOrderAmounts(100, 10, 5, 120)
	require.Error(t, err)
	ve, ok := err.(*ValidationError)
	require.True(t, ok)
	assert.NotEmpty(t, ve.GetFieldError("total"))

	err = ValidateOrderAmounts(100, -1, 200, 0)
	require.Error(t, err)
	ve = err.(*ValidationError)
	assert.NotEmpty(t, ve.GetFieldError("delivery_fee"))
	assert.NotEmpty(t, ve.GetFieldError("discount"))
}
