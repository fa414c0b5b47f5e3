package domain

import "errors"

// Common errors returned by the domain package.
var (
	// ErrInvalidDate is returned when a date string is not a valid
	// YYYY-MM-DD calendar day.
	ErrInvalidDate = errors.New("invalid date: expected YYYY-MM-DD")

	// ErrInvalidKwh is returned when an entry's energy amount is not a
	// positive number.
	ErrInvalidKwh = errors.New("invalid kWh: must be > 0")

	// ErrInvalidAmount is returned when a cost amount is not a positive
	// number.
	ErrInvalidAmount = errors.New("invalid amount: must be > 0")

	// ErrInvalidChargeType is returned when a charging category is not
	// one of public, public-xp, home, home-xp.
	ErrInvalidChargeType = errors.New("invalid charge type: must be public, public-xp, home, or home-xp")

	// ErrEmptyCategory is returned when a cost record has no category.
	ErrEmptyCategory = errors.New("empty cost category")
)

// Validate checks a charging entry before it is stored.
func (e ChargingEntry) Validate() error {
	if !IsValidDate(e.Date) {
		return ErrInvalidDate
	}
	if !(e.Kwh > 0) {
		return ErrInvalidKwh
	}
	if _, ok := ParseChargeType(string(e.Type)); !ok {
		return ErrInvalidChargeType
	}
	return nil
}

// Validate checks a cost record before it is stored.
func (c CostRecord) Validate() error {
	if !IsValidDate(c.Date) {
		return ErrInvalidDate
	}
	if c.Category == "" {
		return ErrEmptyCategory
	}
	if !(c.Amount > 0) {
		return ErrInvalidAmount
	}
	return nil
}
