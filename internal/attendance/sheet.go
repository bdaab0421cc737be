package attendance

import (
	"maps"

	"academy/internal/apperr"
	"academy/internal/calendar"
	"academy/internal/model"
)

// Reconcile computes the authoritative mapping for grid: every calendar date
// takes its existing mark or defaults to Absent, keys outside the month are
// dropped, then each toggle flips its date. A toggle outside the month fails
// the whole call with OutOfRangeDate.
func Reconcile(existing map[string]model.Status, grid calendar.Grid, toggles ...string) (map[string]model.Status, error) {
	out := make(map[string]model.Status, grid.Days)
	for d := range grid.Dates() {
		st, ok := existing[d]
		if !ok || !st.Known() {
			st = model.Absent
		}
		out[d] = st
	}
	for _, d := range toggles {
		cur, ok := out[d]
		if !ok {
			return nil, apperr.OutOfRange(d, grid.Month.Token())
		}
		out[d] = cur.Flip()
	}
	return out, nil
}

// Sheet is one student's month being edited.
type Sheet struct {
	StudentID   string
	StudentName string
	BatchID     string
	Grid        calendar.Grid
	marks       map[string]model.Status
}

// NewSheet reconciles existing (nil when nothing is stored yet) onto grid.
func NewSheet(studentID, studentName, batchID string, grid calendar.Grid, existing map[string]model.Status) (*Sheet, error) {
	if studentID == "" {
		return nil, apperr.Invalid("student id is required")
	}
	marks, err := Reconcile(existing, grid)
	if err != nil {
		return nil, err
	}
	return &Sheet{
		StudentID:   studentID,
		StudentName: studentName,
		BatchID:     batchID,
		Grid:        grid,
		marks:       marks,
	}, nil
}

// Key is the persistence key of the sheet.
func (s *Sheet) Key() string {
	return MonthlyKey(s.StudentID, s.Grid.Month)
}

// Toggle flips one date. Dates outside the month are rejected and nothing changes.
func (s *Sheet) Toggle(date string) error {
	if !s.Grid.Contains(date) {
		return apperr.OutOfRange(date, s.Grid.Month.Token())
	}
	s.marks[date] = s.marks[date].Flip()
	return nil
}

// Set marks one date explicitly.
func (s *Sheet) Set(date string, st model.Status) error {
	if !s.Grid.Contains(date) {
		return apperr.OutOfRange(date, s.Grid.Month.Token())
	}
	if !st.Known() {
		return apperr.Invalid("unknown attendance status %q", st)
	}
	s.marks[date] = st
	return nil
}

// Status returns the mark of date and whether it is in the month.
func (s *Sheet) Status(date string) (model.Status, bool) {
	st, ok := s.marks[date]
	return st, ok
}

// Marks returns a copy of the full mapping.
func (s *Sheet) Marks() map[string]model.Status {
	return maps.Clone(s.marks)
}

// Payload packages the full mapping for a last-write-wins save.
func (s *Sheet) Payload() model.MonthlyAttendance {
	return model.MonthlyAttendance{
		ID:          s.Key(),
		StudentID:   s.StudentID,
		StudentName: s.StudentName,
		BatchID:     s.BatchID,
		Month:       s.Grid.Month.Token(),
		Attendance:  s.Marks(),
	}
}

// Summary counts the marks on the sheet.
func (s *Sheet) Summary() Summary {
	return Summarize(s.marks)
}

// Summary is a present/absent breakdown.
type Summary struct {
	Present int `json:"present"`
	Absent  int `json:"absent"`
	Total   int `json:"total"`
}

// Summarize counts marks of any record. Unknown marks count as Absent.
func Summarize(marks map[string]model.Status) Summary {
	var s Summary
	for _, st := range marks {
		if st == model.Present {
			s.Present++
		} else {
			s.Absent++
		}
	}
	s.Total = s.Present + s.Absent
	return s
}
