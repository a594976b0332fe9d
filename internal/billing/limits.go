package billing

import (
	"github.com/shopspring/decimal"

	"billing-backend/internal/apperr"
)

// Column bounds. Money is stored as decimal(12,2) and durations as
// decimal(6,2), so values are exclusive of 10^10 and 10^4 respectively.
var (
	MaxAmount   = decimal.New(1, 10)
	MaxDuration = decimal.New(1, 4)
)

// fits reports whether value is exact at MinorUnits decimals and its
// absolute value is below limit. Trailing zeros such as 80.100 are allowed.
func fits(value, limit decimal.Decimal) bool {
	return value.Equal(value.Round(MinorUnits)) && value.Abs().LessThan(limit)
}

// CheckRate rejects a rate the money columns cannot hold exactly.
func CheckRate(rate decimal.Decimal) error {
	if rate.IsNegative() {
		return apperr.Validation("Invalid rate format: Rate cannot be negative.")
	}
	if !fits(rate, MaxAmount) {
		return apperr.Validation("Invalid rate format: Rate must have at most 2 decimals and be below %s.", MaxAmount)
	}
	return nil
}

// CheckDuration rejects a duration the duration column cannot hold exactly.
func CheckDuration(duration decimal.Decimal) error {
	if !duration.IsPositive() {
		return apperr.Validation("Invalid duration_hours format: Duration must be positive.")
	}
	if !fits(duration, MaxDuration) {
		return apperr.Validation("Invalid duration_hours format: Duration must have at most 2 decimals and be below %s.", MaxDuration)
	}
	return nil
}

// FitsAmount reports whether a rounded amount fits the money columns.
func FitsAmount(amount decimal.Decimal) bool {
	return fits(amount, MaxAmount)
}
