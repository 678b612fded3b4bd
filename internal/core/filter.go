package core

import (
	"errors"
	"time"
)

const (
	SortDateDesc   Sort = "date_desc"
	SortDateAsc    Sort = "date_asc"
	SortAmountDesc Sort = "amount_desc"
	SortAmountAsc  Sort = "amount_asc"
)

type (
	// Sort selects exactly one ordering for a transaction query.
	Sort string

	// Month identifies a calendar month. The zero value means "no month filter".
	Month struct {
		Year  int
		Month time.Month
	}

	// TransactionFilter narrows a transaction query. Zero-valued fields apply
	// no constraint.
	TransactionFilter struct {
		Type  TransactionType // empty means all types
		Month Month
	}
)

var ErrInvalidMonth = errors.New("invalid month")

// ParseSort maps a query value to a Sort, defaulting to newest-first for
// unknown or empty input.
func ParseSort(s string) Sort {
	switch Sort(s) {
	case SortDateAsc, SortAmountDesc, SortAmountAsc:
		return Sort(s)
	default:
		return SortDateDesc
	}
}

// ParseMonth parses the HTML month-input format "2006-01".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, ErrInvalidMonth
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) IsZero() bool {
	return m.Year == 0 && m.Month == 0
}

// Range returns the UTC half-open interval [start, end) covering the month,
// using calendar arithmetic so month lengths are respected.
func (m Month) Range() (start, end time.Time) {
	start = time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, 0)
	return start, end
}

func (m Month) String() string {
	if m.IsZero() {
		return ""
	}
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

// Matches reports whether a creation timestamp falls inside the month.
// The first instant of the month is included; the first instant of the next
// month is excluded.
func (m Month) Matches(t time.Time) bool {
	if m.IsZero() {
		return true
	}
	start, end := m.Range()
	u := t.UTC()
	return !u.Before(start) && u.Before(end)
}

// Matches reports whether a transaction satisfies the filter.
func (f TransactionFilter) Matches(t Transaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	return f.Month.Matches(t.CreatedAt)
}
