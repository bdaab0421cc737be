package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"academy/internal/apperr"
	"academy/internal/calendar"
	"academy/internal/model"
	"academy/internal/store"
)

func march2025(t *testing.T) calendar.Grid {
	t.Helper()
	g, err := calendar.BuildMonth(calendar.YearMonth{Year: 2025, Month: time.March})
	require.NoError(t, err)
	require.Equal(t, 6, g.Offset)
	require.Equal(t, 31, g.Days)
	return g
}

func TestReconcile_DefaultsAbsent(t *testing.T) {
	got, err := Reconcile(nil, march2025(t))
	require.NoError(t, err)
	assert.Len(t, got, 31)
	assert.Equal(t, Summary{Absent: 31, Total: 31}, Summarize(got))
}

func TestReconcile_KeepsExistingAndDropsForeignDates(t *testing.T) {
	existing := map[string]model.Status{
		"2025-03-10": model.Present,
		"2025-02-28": model.Present,
		"2025-03-11": model.Status("bogus"),
	}
	got, err := Reconcile(existing, march2025(t))
	require.NoError(t, err)
	assert.Len(t, got, 31)
	assert.Equal(t, model.Present, got["2025-03-10"])
	assert.Equal(t, model.Absent, got["2025-03-11"])
	assert.NotContains(t, got, "2025-02-28")
	assert.Equal(t, Summary{Absent: 2, Total: 2}, Summarize(map[string]model.Status{"a": model.Absent, "b": "bogus"}))
}

func TestReconcile_Idempotent(t *testing.T) {
	g := march2025(t)
	once, err := Reconcile(map[string]model.Status{"2025-03-03": model.Present}, g)
	require.NoError(t, err)
	twice, err := Reconcile(once, g)
	require.NoError(t, err)
	assert.Equal(t, once, twice)
}

func TestReconcile_ToggleInvolution(t *testing.T) {
	g := march2025(t)
	base, err := Reconcile(map[string]model.Status{"2025-03-20": model.Present}, g)
	require.NoError(t, err)
	for _, d := range []string{"2025-03-01", "2025-03-20", "2025-03-31"} {
		back, err := Reconcile(base, g, d, d)
		require.NoError(t, err)
		assert.Equal(t, base, back, d)
	}
}

func TestReconcile_ToggleOutOfRange(t *testing.T) {
	_, err := Reconcile(nil, march2025(t), "2025-03-05", "2025-04-01")
	assert.ErrorIs(t, err, apperr.ErrOutOfRangeDate)
}

func TestSheet_MarchScenario(t *testing.T) {
	sheet, err := NewSheet("s1", "Asha", "b1", march2025(t), nil)
	require.NoError(t, err)
	require.NoError(t, sheet.Toggle("2025-03-05"))

	p := sheet.Payload()
	assert.Equal(t, "s1_March 2025", p.ID)
	assert.Equal(t, "March 2025", p.Month)
	assert.Equal(t, "Asha", p.StudentName)
	assert.Equal(t, "b1", p.BatchID)
	assert.Len(t, p.Attendance, 31)
	assert.Equal(t, model.Present, p.Attendance["2025-03-05"])
	assert.Equal(t, Summary{Present: 1, Absent: 30, Total: 31}, Summarize(p.Attendance))

	// payload is a snapshot, later edits do not leak into it
	require.NoError(t, sheet.Toggle("2025-03-06"))
	assert.Equal(t, model.Absent, p.Attendance["2025-03-06"])
}

func TestSheet_OutOfRangeLeavesMarksUnchanged(t *testing.T) {
	sheet, err := NewSheet("s1", "Asha", "", march2025(t), nil)
	require.NoError(t, err)
	require.NoError(t, sheet.Toggle("2025-03-05"))
	before := sheet.Marks()

	assert.ErrorIs(t, sheet.Toggle("2025-04-01"), apperr.ErrOutOfRangeDate)
	assert.ErrorIs(t, sheet.Set("2025-02-28", model.Present), apperr.ErrOutOfRangeDate)
	assert.ErrorIs(t, sheet.Set("2025-03-02", model.Status("Late")), apperr.ErrInvalidInput)
	assert.Equal(t, before, sheet.Marks())
}

func TestSheet_RoundTripThroughStore(t *testing.T) {
	ctx := context.Background()
	s := store.NewMemory()
	g := march2025(t)

	sheet, err := NewSheet("s1", "Asha", "b1", g, nil)
	require.NoError(t, err)
	for _, d := range []string{"2025-03-05", "2025-03-12", "2025-03-31"} {
		require.NoError(t, sheet.Toggle(d))
	}
	payload := sheet.Payload()
	doc, err := model.Encode(payload)
	require.NoError(t, err)
	require.NoError(t, s.Upsert(ctx, store.Attendance, payload.ID, doc))

	rec, err := s.Get(ctx, store.Attendance, sheet.Key())
	require.NoError(t, err)
	var fetched model.MonthlyAttendance
	require.NoError(t, model.Decode(rec, &fetched))

	again, err := Reconcile(fetched.Attendance, g)
	require.NoError(t, err)
	assert.Equal(t, payload.Attendance, again)
}

func TestNewSheet_RequiresStudent(t *testing.T) {
	_, err := NewSheet("", "", "", march2025(t), nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestRoll(t *testing.T) {
	existing := map[string]model.Status{"s1": model.Present, "gone": model.Present}
	roll, err := NewRoll("b1", "2025-03-05", []string{"s1", "s2", "s1"}, existing)
	require.NoError(t, err)

	assert.Equal(t, "b1_2025-03-05", roll.Key())
	assert.Equal(t, []string{"s1", "s2"}, roll.Roster())
	assert.Equal(t, map[string]model.Status{"s1": model.Present, "s2": model.Absent}, roll.Marks())

	require.NoError(t, roll.Toggle("s2"))
	require.NoError(t, roll.Set("s1", model.Absent))
	assert.ErrorIs(t, roll.Toggle("s9"), apperr.ErrInvalidInput)

	p := roll.Payload()
	assert.Equal(t, "b1_2025-03-05", p.ID)
	assert.Equal(t, "2025-03-05", p.Date)
	assert.Equal(t, map[string]model.Status{"s1": model.Absent, "s2": model.Present}, p.Records)
	assert.Equal(t, Summary{Present: 1, Absent: 1, Total: 2}, roll.Summary())
}

func TestNewRoll_Validation(t *testing.T) {
	_, err := NewRoll("", "2025-03-05", nil, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = NewRoll("b1", "05/03/2025", nil, nil)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestKeys(t *testing.T) {
	ym := calendar.YearMonth{Year: 2025, Month: time.March}
	assert.Equal(t, "abc123_March 2025", MonthlyKey("abc123", ym))
	assert.Equal(t, "b1_2025-03-05", DailyKey("b1", "2025-03-05"))

	tests := []struct {
		key    string
		owner  string
		period string
		mode   Mode
		bad    bool
	}{
		{key: "abc123_March 2025", owner: "abc123", period: "March 2025", mode: MonthlyByStudent},
		{key: "snake_id_2025-03-05", owner: "snake_id", period: "2025-03-05", mode: DailyByBatch},
		{key: "nounderscore", bad: true},
		{key: "s1_", bad: true},
		{key: "s1_Someday", bad: true},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			owner, period, mode, err := SplitKey(tt.key)
			if tt.bad {
				assert.ErrorIs(t, err, apperr.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.period, period)
			assert.Equal(t, tt.mode, mode)
		})
	}
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("daily-by-batch")
	require.NoError(t, err)
	assert.Equal(t, DailyByBatch, m)
	_, err = ParseMode("weekly")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
