// Package attendance reconciles stored attendance with the calendar and
// in-session edits, and shapes the records that get persisted.
package attendance

import (
	"strings"

	"academy/internal/apperr"
	"academy/internal/calendar"
)

// Mode selects the keying scheme of a record.
type Mode string

const (
	MonthlyByStudent Mode = "monthly-by-student"
	DailyByBatch     Mode = "daily-by-batch"
)

// ParseMode validates a mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case MonthlyByStudent, DailyByBatch:
		return Mode(s), nil
	}
	return "", apperr.Invalid("unknown attendance mode %q", s)
}

// MonthlyKey is "{studentId}_{Month YYYY}", e.g. "abc123_March 2025".
func MonthlyKey(studentID string, ym calendar.YearMonth) string {
	return studentID + "_" + ym.Token()
}

// DailyKey is "{batchId}_{YYYY-MM-DD}".
func DailyKey(batchID, date string) string {
	return batchID + "_" + date
}

// SplitKey recovers the owner id and period token from a key. Ids may
// themselves contain underscores, so the split happens at the last one.
func SplitKey(key string) (owner, period string, mode Mode, err error) {
	i := strings.LastIndex(key, "_")
	if i <= 0 || i == len(key)-1 {
		return "", "", "", apperr.Invalid("malformed attendance key %q", key)
	}
	owner, period = key[:i], key[i+1:]
	if _, perr := calendar.ParseMonthToken(period); perr == nil {
		return owner, period, MonthlyByStudent, nil
	}
	if _, perr := calendar.ParseDate(period); perr == nil {
		return owner, period, DailyByBatch, nil
	}
	return "", "", "", apperr.Invalid("malformed attendance key %q", key)
}
