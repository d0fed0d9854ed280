package validation

import "time"

// Business rule validation beyond struct tags.

// ValidateBusinessHours checks that an open/close pair parses and is ordered.
// Times are "HH:MM" in the provider's local timezone.
func ValidateBusinessHours(open, close string) error {
	openT, err := time.Parse("15:04", open)
	if err != nil {
		return &ValidationError{Errors: map[string]string{"open": "must be in HH:MM format"}}
	}
	closeT, err := time.Parse("15:04", close)
	if err != nil {
		return &ValidationError{Errors: map[string]string{"close": "must be in HH:MM format"}}
	}
	// Overnight windows (close before open) are allowed for late-night kitchens,
	// but identical times make an empty window.
	if openT.Equal(closeT) {
		return &ValidationError{Errors: map[string]string{"hours": "open and close times cannot be equal"}}
	}
	return nil
}

// ValidateDateRange validates that end date is after start date
func ValidateDateRange(start, end time.Time) error {
	if end.Before(start) {
		return &ValidationError{
			Errors: map[string]string{
				"date_range": "End date must be after start date",
			},
		}
	}
	return nil
}

// ValidateDeliveryRadius checks the provider delivery radius in kilometers.
func ValidateDeliveryRadius(radiusKm float64) error {
	if radiusKm <= 0 {
		return &ValidationError{Errors: map[string]string{"delivery_radius_km": "must be greater than zero"}}
	}
	if radiusKm > 50 {
		return &ValidationError{Errors: map[string]string{"delivery_radius_km": "must not exceed 50 km"}}
	}
	return nil
}

// ValidateOrderAmounts cross-checks the money fields of an order.
func ValidateOrderAmounts(subtotal, deliveryFee, discount, total float64) error {
	ve := &ValidationError{Errors: make(map[string]string)}

	if subtotal < 0 {
		ve.AddError("subtotal", "cannot be negative")
	}
	if deliveryFee < 0 {
		ve.AddError("delivery_fee", "cannot be negative")
	}
	if discount < 0 {
		ve.AddError("discount", "cannot be negative")
	}
	if discount > subtotal {
		ve.AddError("discount", "cannot exceed subtotal")
	}

	const epsilon = 0.01
	expected := subtotal + deliveryFee - discount
	if diff := total - expected; diff > epsilon || diff < -epsilon {
		ve.AddError("total", "does not match subtotal + delivery fee - discount")
	}

	if ve.HasErrors() {
		return ve
	}
	return nil
}
