// Package billing prices treatments. Everything here is pure: the same
// treatment and method always produce the same line.
package billing

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"billing-backend/internal/apperr"
	"billing-backend/internal/models"
)

// MinorUnits is the number of decimals kept on every priced line.
const MinorUnits = 2

// Line is a priced treatment, ready to be copied into an invoice.
type Line struct {
	TreatmentID   uuid.UUID
	TreatmentDate models.Date
	Description   string
	BillingType   models.BillingType
	Quantity      decimal.Decimal
	UnitRate      decimal.Decimal
	Amount        decimal.Decimal
}

// Price computes the amount owed for one treatment under its method.
func Price(t models.Treatment, m models.TreatmentMethod) (Line, error) {
	if m.Rate.IsNegative() {
		return Line{}, apperr.Validation("rate of method %q cannot be negative", m.Name)
	}

	line := Line{
		TreatmentID:   t.ID,
		TreatmentDate: t.TreatmentDate,
		BillingType:   m.BillingType,
		UnitRate:      m.Rate,
	}

	switch m.BillingType {
	case models.BillingHourly:
		if t.DurationHours == nil {
			return Line{}, apperr.Validation("duration_hours is required for hourly method %q", m.Name)
		}
		if !t.DurationHours.IsPositive() {
			return Line{}, apperr.Validation("duration_hours must be positive for hourly method %q", m.Name)
		}
		line.Quantity = *t.DurationHours
		line.Amount = Round(m.Rate.Mul(*t.DurationHours))
		line.Description = fmt.Sprintf("%s %s (%s h)", t.TreatmentDate, m.Name, t.DurationHours.StringFixed(2))
	case models.BillingSession:
		if t.DurationHours != nil {
			return Line{}, apperr.Validation("duration_hours must be empty for session method %q", m.Name)
		}
		line.Quantity = decimal.NewFromInt(1)
		line.Amount = Round(m.Rate)
		line.Description = fmt.Sprintf("%s %s", t.TreatmentDate, m.Name)
	default:
		return Line{}, apperr.Validation("unknown billing_type %q", m.BillingType)
	}

	if !FitsAmount(line.Amount) {
		return Line{}, apperr.Validation("amount %s for method %q is too large to invoice", line.Amount, m.Name)
	}
	return line, nil
}

// Round rounds half-up to the currency's minor unit. Amounts are never
// negative, so rounding half away from zero is the same thing.
func Round(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(MinorUnits)
}

// Total sums already rounded line amounts.
func Total(lines []Line) decimal.Decimal {
	total := decimal.Zero
	for _, line := range lines {
		total = total.Add(line.Amount)
	}
	return total
}
