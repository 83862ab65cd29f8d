package domain

import (
	"errors"
	"time"
)

const (
	dayLayout   = "2006-01-02"
	monthLayout = "2006-01"
)

var (
	// ErrInvalidDate indicates a date that is not a real calendar day in
	// ISO YYYY-MM-DD form.
	ErrInvalidDate = errors.New("invalid date, expected YYYY-MM-DD")
	// ErrInvalidMonth indicates a month that is not in ISO YYYY-MM form.
	ErrInvalidMonth = errors.New("invalid month, expected YYYY-MM")
)

// ValidateDate checks that s is a real calendar date in ISO form and
// returns it normalized.
func ValidateDate(s string) (string, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return "", ErrInvalidDate
	}
	// time.Parse tolerates some non-canonical spellings; round-trip to
	// reject them.
	if t.Format(dayLayout) != s {
		return "", ErrInvalidDate
	}
	return s, nil
}

// MonthRange turns a YYYY-MM month into the half-open day interval
// [first of month, first of next month). Computing the upper bound with
// real calendar rollover keeps day 28-31 edges correct for every month.
func MonthRange(month string) (start, end string, err error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return "", "", ErrInvalidMonth
	}
	if t.Format(monthLayout) != month {
		return "", "", ErrInvalidMonth
	}
	return t.Format(dayLayout), t.AddDate(0, 1, 0).Format(dayLayout), nil
}
