package invoicing

import (
	"strings"
	"time"

	"billing-backend/internal/apperr"
	"billing-backend/internal/models"
)

const (
	PeriodAll       = "all"
	PeriodLastMonth = "last_month"
	PeriodThisMonth = "this_month"
	PeriodCustom    = "custom"

	monthLayout = "2006-01"
)

// Period is an inclusive treatment date range. A nil bound is open.
type Period struct {
	Label string       `json:"label"`
	From  *models.Date `json:"from"`
	To    *models.Date `json:"to"`
}

func (p Period) Contains(date models.Date) bool {
	if p.From != nil && date.Before(*p.From) {
		return false
	}
	if p.To != nil && date.After(*p.To) {
		return false
	}
	return true
}

// ParsePeriod resolves a period label, or an explicit from/to pair, relative
// to now. Supported labels are all, last_month, this_month and YYYY-MM.
func ParsePeriod(label, from, to string, now time.Time) (Period, error) {
	label = strings.ToLower(strings.TrimSpace(label))
	from = strings.TrimSpace(from)
	to = strings.TrimSpace(to)

	if from != "" || to != "" {
		if label != "" && label != PeriodCustom {
			return Period{}, apperr.Validation("period %q cannot be combined with from/to", label)
		}
		return customPeriod(from, to)
	}

	today := models.DateOf(now)
	switch label {
	case "", PeriodAll:
		return Period{Label: PeriodAll}, nil
	case PeriodLastMonth:
		return monthPeriod(PeriodLastMonth, today.Year(), today.Month()-1), nil
	case PeriodThisMonth:
		return monthPeriod(PeriodThisMonth, today.Year(), today.Month()), nil
	}

	month, err := time.Parse(monthLayout, label)
	if err != nil {
		return Period{}, apperr.Validation("unknown period %q", label)
	}
	return monthPeriod(label, month.Year(), month.Month()), nil
}

func customPeriod(from, to string) (Period, error) {
	period := Period{Label: PeriodCustom}
	if from != "" {
		date, err := models.ParseDate(from)
		if err != nil {
			return Period{}, apperr.Validation("invalid from date %q, expected YYYY-MM-DD", from)
		}
		period.From = &date
	}
	if to != "" {
		date, err := models.ParseDate(to)
		if err != nil {
			return Period{}, apperr.Validation("invalid to date %q, expected YYYY-MM-DD", to)
		}
		period.To = &date
	}
	if period.From != nil && period.To != nil && period.To.Before(*period.From) {
		return Period{}, apperr.Validation("from date %s is after to date %s", period.From, period.To)
	}
	return period, nil
}

// monthPeriod normalizes month overflow, so month 0 is December of the
// previous year.
func monthPeriod(label string, year int, month time.Month) Period {
	first := models.NewDate(year, month, 1)
	last := models.DateOf(first.AddDate(0, 1, -1))
	return Period{Label: label, From: &first, To: &last}
}
