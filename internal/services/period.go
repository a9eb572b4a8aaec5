package services

import (
	"strings"
	"time"

	"github.com/sjperalta/hostel-api/internal/models"
)

// Period selects the reporting window for transactions
type Period string

const (
	PeriodDay   Period = "day"
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

var periodAliases = map[string]Period{
	"day":     PeriodDay,
	"today":   PeriodDay,
	"daily":   PeriodDay,
	"week":    PeriodWeek,
	"weekly":  PeriodWeek,
	"month":   PeriodMonth,
	"monthly": PeriodMonth,
	"all":     PeriodAll,
}

// ParsePeriod accepts a period name or one of its aliases. An empty string is PeriodAll.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PeriodAll, nil
	}
	p, ok := periodAliases[s]
	if !ok {
		return "", ErrInvalidPeriod
	}
	return p, nil
}

// Range resolves the period around ref in loc. PeriodAll returns nil (unbounded).
// Weeks run Monday to Sunday; every range ends one nanosecond before the next
// period starts so it can be matched with an inclusive BETWEEN.
func (p Period) Range(ref time.Time, loc *time.Location) (*models.DateRange, error) {
	if loc == nil {
		loc = time.UTC
	}
	ref = ref.In(loc)
	midnight := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, loc)

	var start, next time.Time
	switch p {
	case PeriodAll:
		return nil, nil
	case PeriodDay:
		start = midnight
		next = start.AddDate(0, 0, 1)
	case PeriodWeek:
		start = midnight.AddDate(0, 0, -((int(ref.Weekday()) + 6) % 7))
		next = start.AddDate(0, 0, 7)
	case PeriodMonth:
		start = time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, loc)
		next = start.AddDate(0, 1, 0)
	default:
		return nil, ErrInvalidPeriod
	}

	return &models.DateRange{Start: start, End: next.Add(-time.Nanosecond)}, nil
}
