// Package calendar derives the month grid attendance is recorded against.
package calendar

import (
	"fmt"
	"strings"
	"time"

	"academy/internal/apperr"
)

// DateLayout is the day token format used as attendance keys.
const DateLayout = "2006-01-02"

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Of returns the month containing t, in t's location.
func Of(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, apperr.Invalid("month %q must be YYYY-MM", s)
	}
	return Of(t), nil
}

// ParseMonthToken parses the persisted "Month YYYY" form, e.g. "March 2025".
func ParseMonthToken(s string) (YearMonth, error) {
	t, err := time.Parse("January 2006", strings.TrimSpace(s))
	if err != nil {
		return YearMonth{}, apperr.Invalid("month token %q must look like \"March 2025\"", s)
	}
	return Of(t), nil
}

// Token renders the month the way attendance keys expect it.
func (ym YearMonth) Token() string {
	return fmt.Sprintf("%s %04d", ym.Month, ym.Year)
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Valid reports whether the month can be laid out.
func (ym YearMonth) Valid() bool {
	return ym.Year >= 1 && ym.Year <= 9999 && ym.Month >= time.January && ym.Month <= time.December
}

// Next returns the following month.
func (ym YearMonth) Next() YearMonth {
	if ym.Month == time.December {
		return YearMonth{Year: ym.Year + 1, Month: time.January}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month + 1}
}

// Prev returns the preceding month.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}

// IsLeap applies the Gregorian rule.
func IsLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysIn returns the number of days in the month.
func DaysIn(year int, month time.Month) int {
	switch month {
	case time.February:
		if IsLeap(year) {
			return 29
		}
		return 28
	case time.April, time.June, time.September, time.November:
		return 30
	default:
		return 31
	}
}

// ParseDate validates a YYYY-MM-DD token.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, apperr.Invalid("date %q must be YYYY-MM-DD", s)
	}
	return t, nil
}
