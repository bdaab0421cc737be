package attendance

import (
	"maps"

	"academy/internal/apperr"
	"academy/internal/calendar"
	"academy/internal/model"
)

// Roll is one batch's class on one date, being edited.
type Roll struct {
	BatchID string
	Date    string
	roster  []string
	marks   map[string]model.Status
}

// NewRoll lays existing marks over the batch roster. Students without a mark
// are Absent and marks for students no longer on the roster are dropped.
func NewRoll(batchID, date string, roster []string, existing map[string]model.Status) (*Roll, error) {
	if batchID == "" {
		return nil, apperr.Invalid("batch id is required")
	}
	if _, err := calendar.ParseDate(date); err != nil {
		return nil, err
	}
	marks := make(map[string]model.Status, len(roster))
	ids := make([]string, 0, len(roster))
	for _, id := range roster {
		if _, dup := marks[id]; dup {
			continue
		}
		st, ok := existing[id]
		if !ok || !st.Known() {
			st = model.Absent
		}
		marks[id] = st
		ids = append(ids, id)
	}
	return &Roll{BatchID: batchID, Date: date, roster: ids, marks: marks}, nil
}

// Key is the persistence key of the roll.
func (r *Roll) Key() string {
	return DailyKey(r.BatchID, r.Date)
}

// Roster returns the student ids in batch order.
func (r *Roll) Roster() []string {
	return append([]string(nil), r.roster...)
}

// Toggle flips one student's mark.
func (r *Roll) Toggle(studentID string) error {
	cur, ok := r.marks[studentID]
	if !ok {
		return r.notOnRoster(studentID)
	}
	r.marks[studentID] = cur.Flip()
	return nil
}

// Set marks one student explicitly.
func (r *Roll) Set(studentID string, st model.Status) error {
	if _, ok := r.marks[studentID]; !ok {
		return r.notOnRoster(studentID)
	}
	if !st.Known() {
		return apperr.Invalid("unknown attendance status %q", st)
	}
	r.marks[studentID] = st
	return nil
}

// Marks returns a copy of the full mapping.
func (r *Roll) Marks() map[string]model.Status {
	return maps.Clone(r.marks)
}

// Payload packages the full mapping for a last-write-wins save.
func (r *Roll) Payload() model.DailyAttendance {
	return model.DailyAttendance{
		ID:      r.Key(),
		BatchID: r.BatchID,
		Date:    r.Date,
		Records: r.Marks(),
	}
}

// Summary counts the marks on the roll.
func (r *Roll) Summary() Summary {
	return Summarize(r.marks)
}

func (r *Roll) notOnRoster(studentID string) error {
	return &apperr.Error{
		Kind:   apperr.KindInvalidInput,
		Entity: "student",
		ID:     studentID,
		Msg:    "student " + studentID + " is not on the roster of batch " + r.BatchID,
	}
}
