package academy

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"academy/internal/apperr"
	"academy/internal/attendance"
	"academy/internal/calendar"
	"academy/internal/metrics"
	"academy/internal/model"
	"academy/internal/queue"
	"academy/internal/roster"
	"academy/internal/store"
)

// OpenMonthly reconciles the stored record of one student and month into an
// editable sheet. batchID is optional; when set the batch must exist and
// carry the student.
func (s *Session) OpenMonthly(ctx context.Context, studentID, batchID string, ym calendar.YearMonth) (*attendance.Sheet, error) {
	if studentID == "" {
		return nil, apperr.Invalid("student id is required")
	}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	st, ok := s.student(studentID)
	if !ok {
		return nil, apperr.Dangling(roster.EntityStudent, studentID)
	}
	if batchID != "" {
		b, ok := s.batch(batchID)
		if !ok {
			return nil, apperr.Dangling("batch", batchID)
		}
		if !b.HasStudent(studentID) {
			return nil, apperr.Invalid("student %s is not in batch %s", studentID, batchID)
		}
	}

	grid, err := calendar.BuildMonth(ym)
	if err != nil {
		return nil, err
	}
	var existing map[string]model.Status
	rec, err := s.store.Get(ctx, store.Attendance, attendance.MonthlyKey(studentID, ym))
	switch {
	case err == nil:
		var stored model.MonthlyAttendance
		if err := model.Decode(rec, &stored); err != nil {
			return nil, err
		}
		existing = stored.Attendance
	case apperr.KindOf(err) == apperr.KindNotFound:
	default:
		return nil, err
	}
	return attendance.NewSheet(studentID, st.Name, batchID, grid, existing)
}

// SaveMonthly writes the full mapping of sheet under its key.
func (s *Session) SaveMonthly(ctx context.Context, sheet *attendance.Sheet) (err error) {
	defer func() {
		metrics.AttendanceSaves.WithLabelValues(string(attendance.MonthlyByStudent), metrics.Result(err)).Inc()
	}()

	payload := sheet.Payload()
	doc, err := model.Encode(payload)
	if err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, store.Attendance, payload.ID, doc); err != nil {
		return err
	}
	sum := sheet.Summary()
	s.log.Info("monthly attendance saved",
		zap.String("key", payload.ID),
		zap.Int("present", sum.Present),
		zap.Int("absent", sum.Absent))
	s.publish(ctx, queue.Event{
		Kind:       queue.AttendanceSaved,
		Collection: store.Attendance,
		ID:         payload.ID,
		Mode:       string(attendance.MonthlyByStudent),
	})
	return nil
}

// OpenDaily lays the stored roll of one batch and date over its current roster.
func (s *Session) OpenDaily(ctx context.Context, batchID, date string) (*attendance.Roll, error) {
	if batchID == "" {
		return nil, apperr.Invalid("batch id is required")
	}
	if _, err := calendar.ParseDate(date); err != nil {
		return nil, err
	}
	if err := s.ensure(ctx); err != nil {
		return nil, err
	}
	b, ok := s.batch(batchID)
	if !ok {
		return nil, apperr.Dangling("batch", batchID)
	}

	var existing map[string]model.Status
	rec, err := s.store.Get(ctx, store.Attendance, attendance.DailyKey(batchID, date))
	switch {
	case err == nil:
		var stored model.DailyAttendance
		if err := model.Decode(rec, &stored); err != nil {
			return nil, err
		}
		existing = stored.Records
	case apperr.KindOf(err) == apperr.KindNotFound:
	default:
		return nil, err
	}
	return attendance.NewRoll(batchID, date, b.StudentIDs, existing)
}

// SaveDaily writes the full roll under its key.
func (s *Session) SaveDaily(ctx context.Context, roll *attendance.Roll) (err error) {
	defer func() {
		metrics.AttendanceSaves.WithLabelValues(string(attendance.DailyByBatch), metrics.Result(err)).Inc()
	}()

	payload := roll.Payload()
	doc, err := model.Encode(payload)
	if err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, store.Attendance, payload.ID, doc); err != nil {
		return err
	}
	sum := roll.Summary()
	s.log.Info("daily attendance saved",
		zap.String("key", payload.ID),
		zap.Int("present", sum.Present),
		zap.Int("absent", sum.Absent))
	s.publish(ctx, queue.Event{
		Kind:       queue.AttendanceSaved,
		Collection: store.Attendance,
		ID:         payload.ID,
		Mode:       string(attendance.DailyByBatch),
	})
	return nil
}

// Attendance lists monthly records, newest month first, optionally for one
// student. Daily records share the collection and are skipped.
func (s *Session) Attendance(ctx context.Context, studentID string) ([]model.MonthlyAttendance, error) {
	recs, err := s.store.ListAll(ctx, store.Attendance)
	if err != nil {
		return nil, err
	}
	type dated struct {
		rec model.MonthlyAttendance
		ym  calendar.YearMonth
	}
	var rows []dated
	for _, rec := range recs {
		owner, period, mode, err := attendance.SplitKey(rec.ID)
		if err != nil || mode != attendance.MonthlyByStudent {
			continue
		}
		if studentID != "" && owner != studentID {
			continue
		}
		var m model.MonthlyAttendance
		if err := model.Decode(rec, &m); err != nil {
			s.log.Warn("skipping unreadable attendance record", zap.String("key", rec.ID), zap.Error(err))
			continue
		}
		ym, _ := calendar.ParseMonthToken(period)
		rows = append(rows, dated{rec: m, ym: ym})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].ym, rows[j].ym
		if a.Year != b.Year {
			return a.Year > b.Year
		}
		return a.Month > b.Month
	})
	out := make([]model.MonthlyAttendance, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.rec)
	}
	return out, nil
}
